// Copyright (C) 2024 the quixsi maintainers
// See root-dir/LICENSE for more information

package jsondb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/quixsi/wedding/internal/db"
)

const ext = ".json"

// Store keeps every key in its own JSON file inside dir.
type Store struct {
	mu  sync.RWMutex
	dir string
}

// NewStore creates dir if it does not exist yet.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create storage folder: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "Get", trace.WithAttributes(attribute.String("key", key)))
	defer span.End()

	span.AddEvent("RLock")
	s.mu.RLock()
	defer span.AddEvent("RUnlock")
	defer s.mu.RUnlock()

	fileData, err := os.ReadFile(s.filename(key))
	if errors.Is(err, fs.ErrNotExist) {
		// File does not exist, nothing saved yet
		return nil, db.ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return fileData, nil
}

// Put stores value indented when it is valid JSON so that the files stay
// readable, and verbatim otherwise.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	var span trace.Span
	_, span = tracer.Start(ctx, "Put", trace.WithAttributes(attribute.String("key", key)))
	defer span.End()

	span.AddEvent("Lock")
	s.mu.Lock()
	defer span.AddEvent("Unlock")
	defer s.mu.Unlock()

	fileData := value
	var buf bytes.Buffer
	if err := json.Indent(&buf, value, "", "  "); err == nil {
		fileData = buf.Bytes()
	}

	span.AddEvent("save to file")
	if err := writeFile(s.filename(key), fileData); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

// writeFile replaces name through a temporary file, so a crash leaves either
// the old or the new content behind.
func writeFile(name string, data []byte) error {
	tmp := name + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp, name); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

func (s *Store) Keys(ctx context.Context) ([]string, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "Keys")
	defer span.End()

	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	var res []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ext) {
			continue
		}
		res = append(res, strings.TrimSuffix(e.Name(), ext))
	}
	sort.Strings(res)
	return res, nil
}

func (s *Store) Close() error { return nil }

func (s *Store) filename(key string) string {
	return filepath.Join(s.dir, key+ext)
}
