// Copyright (C) 2024 the quixsi maintainers
// See root-dir/LICENSE for more information

package db

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Storage.Get for a key that was never written.
var ErrNotFound = errors.New("key not found")

// Storage is the durable key/value medium. Every value is a complete
// serialized snapshot, there are no partial writes.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Keys(ctx context.Context) ([]string, error)
	Close() error
}

const (
	KeyWeddingDetails = "weddingDetails"
	KeyStoryEvents    = "storyEvents"
	KeyGuestResponses = "guestResponses"
	KeyGiftRegistry   = "giftRegistry"
	KeyGalleryItems   = "galleryItems"
)

// Keys lists the durable key of every entity kind.
var Keys = []string{
	KeyWeddingDetails,
	KeyStoryEvents,
	KeyGuestResponses,
	KeyGiftRegistry,
	KeyGalleryItems,
}

// CorruptSuffix is appended to a key to quarantine a value that failed to
// decode.
const CorruptSuffix = ".corrupt"
