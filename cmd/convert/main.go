// Copyright (C) 2024 the quixsi maintainers
// See root-dir/LICENSE for more information

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/quixsi/wedding/internal/db"
	"github.com/quixsi/wedding/internal/db/backend"
)

func main() {
	var (
		src = flag.String("src", "jsondb://testdata", "source connection string")
		dst = flag.String("dst", "kvdb://output.db", "destination connection string")
	)
	flag.Parse()

	jsonHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{})
	logger := slog.New(jsonHandler)
	ctx := context.Background()

	from, err := backend.Open(ctx, *src)
	if err != nil {
		logger.Error("could not open source", "db", *src, "error", err)
		os.Exit(1)
	}
	to, err := backend.Open(ctx, *dst)
	if err != nil {
		from.Close()
		logger.Error("could not open destination", "db", *dst, "error", err)
		os.Exit(1)
	}

	logger.Info("start converting", "src", *src, "dst", *dst)
	n, err := into(ctx, to, from)
	if err != nil {
		logger.Error("converting failed", "copied", n, "error", err)
		os.Exit(1)
	}
	logger.Info("finished converting", "copied", n)
}

// into copies every key of src into dst and closes both.
func into(ctx context.Context, dst, src db.Storage) (n int, err error) {
	defer func() { err = errors.Join(err, src.Close(), dst.Close()) }()

	keys, err := src.Keys(ctx)
	if err != nil {
		return 0, fmt.Errorf("list keys: %w", err)
	}
	for _, key := range keys {
		value, err := src.Get(ctx, key)
		if err != nil {
			return n, fmt.Errorf("read %q: %w", key, err)
		}
		if err := dst.Put(ctx, key, value); err != nil {
			return n, fmt.Errorf("write %q: %w", key, err)
		}
		n++
	}
	return n, nil
}
