// Copyright (C) 2024 the quixsi maintainers
// See root-dir/LICENSE for more information

// Package redisdb stores snapshots as plain Redis string values.
package redisdb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/quixsi/wedding/internal/db"
)

const DefaultPrefix = "wedding:"

// Open connects to the server described by a redis:// URL and pings it.
func Open(ctx context.Context, url string) (*Store, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = 5 * time.Second
	}
	rdb := goredis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewStore(rdb, DefaultPrefix), nil
}

func NewStore(rdb goredis.UniversalClient, prefix string) *Store {
	return &Store{rdb: rdb, prefix: prefix}
}

type Store struct {
	rdb    goredis.UniversalClient
	prefix string
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "Get", trace.WithAttributes(attribute.String("key", key)))
	defer span.End()

	v, err := s.rdb.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, db.ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("redis get %q: %w", key, err)
	}
	return v, nil
}

func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "Put", trace.WithAttributes(attribute.String("key", key)))
	defer span.End()

	if err := s.rdb.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

func (s *Store) Keys(ctx context.Context) ([]string, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "Keys")
	defer span.End()

	var res []string
	iter := s.rdb.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		res = append(res, strings.TrimPrefix(iter.Val(), s.prefix))
	}
	if err := iter.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("redis scan: %w", err)
	}
	sort.Strings(res)
	return res, nil
}

func (s *Store) Close() error {
	return s.rdb.Close()
}
