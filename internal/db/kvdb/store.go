// Copyright (C) 2024 the quixsi maintainers
// See root-dir/LICENSE for more information

package kvdb

import (
	"context"
	"fmt"
	"slices"

	bolt "go.etcd.io/bbolt"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/quixsi/wedding/internal/db"
)

const bucketWedding = "wedding_store"

// Open opens (or creates) the bolt file at path.
func Open(path string) (*Store, error) {
	bdb, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("open bolt db: %w", err)
	}
	s, err := NewStore(bdb)
	if err != nil {
		_ = bdb.Close()
		return nil, err
	}
	return s, nil
}

func NewStore(bdb *bolt.DB) (*Store, error) {
	return &Store{db: bdb}, bdb.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketWedding))
		return err
	})
}

type Store struct {
	db *bolt.DB
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "Get", trace.WithAttributes(attribute.String("key", key)))
	defer span.End()

	span.AddEvent("View bucket")
	var res []byte
	return res, s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(bucketWedding)).Get([]byte(key))
		if v == nil {
			return db.ErrNotFound
		}
		// bolt values are only valid for the life of the transaction
		res = slices.Clone(v)
		return nil
	})
}

func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	var span trace.Span
	_, span = tracer.Start(ctx, "Put", trace.WithAttributes(attribute.String("key", key)))
	defer span.End()

	span.AddEvent("Update bucket")
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketWedding)).Put([]byte(key), value)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (s *Store) Keys(ctx context.Context) ([]string, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "Keys")
	defer span.End()

	span.AddEvent("View bucket")
	res := make([]string, 0)
	return res, s.db.View(func(tx *bolt.Tx) error {
		err := tx.Bucket([]byte(bucketWedding)).ForEach(func(k, _ []byte) error {
			res = append(res, string(k))
			return nil
		})
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		return err
	})
}

func (s *Store) Close() error {
	return s.db.Close()
}
