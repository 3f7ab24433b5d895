// Copyright (C) 2024 the quixsi maintainers
// See root-dir/LICENSE for more information

package db

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// CorruptDataError describes a stored value that could not be decoded.
type CorruptDataError struct {
	Key string
	Err error
}

func (e *CorruptDataError) Error() string {
	return fmt.Sprintf("corrupt value for key %q: %v", e.Key, e.Err)
}

func (e *CorruptDataError) Unwrap() error { return e.Err }

type loadConfig struct {
	logger    *slog.Logger
	onCorrupt func(context.Context, *CorruptDataError)
}

type LoadOption func(*loadConfig)

func WithLogger(logger *slog.Logger) LoadOption {
	return func(c *loadConfig) { c.logger = logger }
}

// OnCorrupt registers a callback invoked when Load falls back to the default
// because the stored value was malformed.
func OnCorrupt(fn func(context.Context, *CorruptDataError)) LoadOption {
	return func(c *loadConfig) { c.onCorrupt = fn }
}

// Load reads key from s and decodes it into a T. A missing key yields def. So
// does a value that does not decode into T; in that case the raw bytes are
// copied to key+CorruptSuffix, a warning is logged and the OnCorrupt callback
// runs. Load never fails.
func Load[T any](ctx context.Context, s Storage, key string, def T, opts ...LoadOption) T {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "Load", trace.WithAttributes(attribute.String("key", key)))
	defer span.End()

	cfg := loadConfig{logger: slog.Default().WithGroup("db")}
	for _, opt := range opts {
		opt(&cfg)
	}

	raw, err := s.Get(ctx, key)
	switch {
	case errors.Is(err, ErrNotFound):
		span.AddEvent("key not found, use default")
		return def
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		cfg.logger.WarnContext(ctx, "could not read key, use default", "key", key, "error", err)
		return def
	}

	v, err := decode[T](raw)
	if err == nil {
		return v
	}

	cErr := &CorruptDataError{Key: key, Err: err}
	span.RecordError(cErr)
	span.SetStatus(codes.Error, cErr.Error())
	cfg.logger.WarnContext(ctx, "could not decode stored value, use default", "key", key, "error", err)
	if qErr := s.Put(ctx, key+CorruptSuffix, raw); qErr != nil {
		span.RecordError(qErr)
		cfg.logger.ErrorContext(ctx, "could not quarantine corrupt value", "key", key, "error", qErr)
	}
	if cfg.onCorrupt != nil {
		cfg.onCorrupt(ctx, cErr)
	}
	return def
}

// Save replaces the value at key with the JSON encoding of v.
func Save[T any](ctx context.Context, s Storage, key string, v T) error {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "Save", trace.WithAttributes(attribute.String("key", key)))
	defer span.End()

	data, err := json.Marshal(v)
	if err != nil {
		err = fmt.Errorf("encode %q: %w", key, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.AddEvent("put", trace.WithAttributes(attribute.Int("bytes", len(data))))
	if err := s.Put(ctx, key, data); err != nil {
		err = fmt.Errorf("write %q: %w", key, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

func decode[T any](raw []byte) (T, error) {
	var v T
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return v, errors.New("empty value")
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		return v, err
	}
	if dec.More() {
		return v, errors.New("trailing data after value")
	}
	return v, nil
}
