// Copyright (C) 2024 the quixsi maintainers
// See root-dir/LICENSE for more information

// Package store holds ordered in-memory collections of records. A collection
// only mutates itself; persistence and notification are layered on top by the
// caller.
package store

import "slices"

// Record is implemented by value types stored in a Collection.
type Record[T any] interface {
	GetID() string
	WithID(id string) T
}

type Collection[T Record[T]] struct {
	ids     IDGenerator
	records []T
	// issued holds every id the collection ever contained, removed ones
	// included, so that an id is never handed out twice.
	issued map[string]struct{}
}

type Option[T Record[T]] func(*Collection[T])

func WithIDGenerator[T Record[T]](gen IDGenerator) Option[T] {
	return func(c *Collection[T]) { c.ids = gen }
}

func New[T Record[T]](initial []T, opts ...Option[T]) *Collection[T] {
	c := &Collection[T]{
		ids:    UUIDGenerator{},
		issued: make(map[string]struct{}, len(initial)),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.Replace(initial)
	return c
}

// List returns a copy of the records in insertion order. It is never nil, an
// empty collection serializes as [] rather than null.
func (c *Collection[T]) List() []T {
	return append(make([]T, 0, len(c.records)), c.records...)
}

func (c *Collection[T]) Len() int { return len(c.records) }

func (c *Collection[T]) Get(id string) (T, bool) {
	if i := c.index(id); i >= 0 {
		return c.records[i], true
	}
	var zero T
	return zero, false
}

// Add stores rec under a freshly generated id and returns that id. Any id
// already set on rec is ignored.
func (c *Collection[T]) Add(rec T) string {
	id := c.nextID()
	c.records = append(c.records, rec.WithID(id))
	return id
}

// Remove deletes the record with the given id. Removing an unknown id is a
// no-op and reports false.
func (c *Collection[T]) Remove(id string) bool {
	i := c.index(id)
	if i < 0 {
		return false
	}
	c.records = slices.Delete(c.records, i, i+1)
	return true
}

// Update replaces the record with patch(record). The id is kept even if patch
// changes it.
func (c *Collection[T]) Update(id string, patch func(T) T) bool {
	i := c.index(id)
	if i < 0 {
		return false
	}
	c.records[i] = patch(c.records[i]).WithID(id)
	return true
}

// Increment adds one to the counter selected by field.
func (c *Collection[T]) Increment(id string, field func(*T) *int) bool {
	i := c.index(id)
	if i < 0 {
		return false
	}
	*field(&c.records[i])++
	return true
}

// Replace swaps the whole collection. Records without an id get one, and so
// does every record repeating an id seen earlier in records.
func (c *Collection[T]) Replace(records []T) {
	next := make([]T, 0, len(records))
	for _, r := range records {
		if id := r.GetID(); id != "" {
			c.issued[id] = struct{}{}
		}
	}
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		_, dup := seen[r.GetID()]
		if r.GetID() == "" || dup {
			r = r.WithID(c.nextID())
		}
		seen[r.GetID()] = struct{}{}
		next = append(next, r)
	}
	c.records = next
}

func (c *Collection[T]) nextID() string {
	for {
		id := c.ids.NewID()
		if _, used := c.issued[id]; id == "" || used {
			continue
		}
		c.issued[id] = struct{}{}
		return id
	}
}

func (c *Collection[T]) index(id string) int {
	return slices.IndexFunc(c.records, func(r T) bool { return r.GetID() == id })
}
