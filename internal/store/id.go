// Copyright (C) 2024 the quixsi maintainers
// See root-dir/LICENSE for more information

package store

import (
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

type IDGenerator interface {
	NewID() string
}

// UUIDGenerator hands out random (v4) UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string { return uuid.NewString() }

// SequenceGenerator hands out Prefix+"1", Prefix+"2", ... It never repeats a
// value for the lifetime of the generator.
type SequenceGenerator struct {
	Prefix string
	n      atomic.Uint64
}

func (s *SequenceGenerator) NewID() string {
	return s.Prefix + strconv.FormatUint(s.n.Add(1), 10)
}
