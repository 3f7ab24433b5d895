// Copyright (C) 2024 the quixsi maintainers
// See root-dir/LICENSE for more information

package form

import (
	"net/url"
	"reflect"
	"strconv"
	"strings"
)

// Unmarshal copies the values of input into the fields of the struct target
// points to, matched by their `form` tag. Nested structs read keys prefixed
// with "<tag>.". Pointer fields stay nil unless their key is present, which
// lets a partial form produce a patch.
func Unmarshal(input url.Values, target any) error {
	val := reflect.ValueOf(target)
	if val.Kind() != reflect.Ptr || val.IsNil() {
		return &InvalidUnmarshalError{Type: reflect.TypeOf(target)}
	}
	return unmarshal(input, "", val.Elem())
}

func unmarshal(input url.Values, prefix string, v reflect.Value) error {
	ttype := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := ttype.Field(i)
		fieldName := field.Tag.Get("form")
		if fieldName == "" || fieldName == "-" || !field.IsExported() {
			continue
		}
		key := prefix + fieldName
		fieldVal := v.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := unmarshal(input, key+".", fieldVal); err != nil {
				return err
			}
			continue
		}

		value, exists := input[key]
		if !exists || len(value) == 0 {
			continue
		}

		if field.Type.Kind() == reflect.Slice && field.Type.Elem().Kind() == reflect.String {
			fieldVal.Set(reflect.ValueOf(append([]string(nil), value...)))
			continue
		}

		if field.Type.Kind() == reflect.Ptr {
			ptr := reflect.New(field.Type.Elem())
			set, err := setValue(ptr.Elem(), value[0])
			if err != nil {
				return &FieldError{Key: key, Err: err}
			}
			if set {
				fieldVal.Set(ptr)
			}
			continue
		}

		// NOTE: Take only the first value.
		if _, err := setValue(fieldVal, value[0]); err != nil {
			return &FieldError{Key: key, Err: err}
		}
	}
	return nil
}

func setValue(fieldVal reflect.Value, raw string) (bool, error) {
	switch fieldVal.Kind() {
	case reflect.String:
		fieldVal.SetString(raw)
	case reflect.Bool:
		// checkboxes submit "on"
		switch strings.ToLower(raw) {
		case "true", "on", "yes", "1":
			fieldVal.SetBool(true)
		default:
			fieldVal.SetBool(false)
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if raw == "" {
			return false, nil
		}
		intValue, err := strconv.ParseInt(raw, 10, fieldVal.Type().Bits())
		if err != nil {
			return false, err
		}
		fieldVal.SetInt(intValue)
	case reflect.Float32, reflect.Float64:
		if raw == "" {
			return false, nil
		}
		floatValue, err := strconv.ParseFloat(raw, fieldVal.Type().Bits())
		if err != nil {
			return false, err
		}
		fieldVal.SetFloat(floatValue)
	default:
		return false, nil
	}
	return true, nil
}

type FieldError struct {
	Key string
	Err error
}

func (e *FieldError) Error() string {
	return "form: field " + strconv.Quote(e.Key) + ": " + e.Err.Error()
}

func (e *FieldError) Unwrap() error { return e.Err }

type InvalidUnmarshalError struct {
	Type reflect.Type
}

func (e *InvalidUnmarshalError) Error() string {
	if e.Type == nil {
		return "form: Unmarshal(nil)"
	}

	if e.Type.Kind() != reflect.Pointer {
		return "form: Unmarshal(non-pointer " + e.Type.String() + ")"
	}
	return "form: Unmarshal(nil " + e.Type.String() + ")"
}
