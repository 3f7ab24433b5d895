// Copyright (C) 2024 the quixsi maintainers
// See root-dir/LICENSE for more information

// Package backend opens a db.Storage from a connection string such as
// kvdb://testdata/wedding.db or redis://localhost:6379/0.
package backend

import (
	"context"
	"fmt"
	"net/url"

	"github.com/quixsi/wedding/internal/db"
	"github.com/quixsi/wedding/internal/db/jsondb"
	"github.com/quixsi/wedding/internal/db/kvdb"
	"github.com/quixsi/wedding/internal/db/memdb"
	"github.com/quixsi/wedding/internal/db/redisdb"
	"github.com/quixsi/wedding/internal/db/sqldb"
)

func Open(ctx context.Context, conn string) (db.Storage, error) {
	u, err := url.Parse(conn)
	if err != nil {
		return nil, fmt.Errorf("parse db connection string: %w", err)
	}

	path := u.Host + u.Path
	switch u.Scheme {
	case "kvdb":
		return storage(kvdb.Open(path))
	case "jsondb":
		return storage(jsondb.NewStore(path))
	case "sqlite":
		return storage(sqldb.Open(path))
	case "redis", "rediss":
		return storage(redisdb.Open(ctx, conn))
	case "mem":
		return memdb.NewStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", u.Scheme)
	}
}

// storage keeps a failed constructor from yielding a non-nil interface that
// wraps a nil pointer.
func storage[S db.Storage](s S, err error) (db.Storage, error) {
	if err != nil {
		return nil, err
	}
	return s, nil
}
