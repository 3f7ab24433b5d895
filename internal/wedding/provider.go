// Copyright (C) 2024 the quixsi maintainers
// See root-dir/LICENSE for more information

// Package wedding is the single read/write surface over the site content:
// wedding details, story events, guest responses, gift registry and gallery.
// Every mutation updates memory, writes the affected collection to durable
// storage and then notifies, all before it returns.
package wedding

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/quixsi/wedding/internal/db"
	"github.com/quixsi/wedding/internal/model"
	"github.com/quixsi/wedding/internal/notify"
	"github.com/quixsi/wedding/internal/store"
)

type Provider struct {
	mu     sync.RWMutex
	closed bool

	storage  db.Storage
	sink     notify.Sink
	logger   *slog.Logger
	now      func() time.Time
	location *time.Location

	details   model.WeddingDetails
	story     *store.Collection[model.StoryEvent]
	responses *store.Collection[model.GuestResponse]
	registry  *store.Collection[model.GiftRegistryItem]
	gallery   *store.Collection[model.GalleryItem]

	// isAdmin is never persisted.
	isAdmin bool
	// warnings raised while loading, kept for the admin dashboard since
	// nobody is listening yet when they happen.
	warnings []string
}

type options struct {
	logger   *slog.Logger
	now      func() time.Time
	location *time.Location
	ids      store.IDGenerator
}

type Option func(*options)

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithClock sets the time source used for gallery upload timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithLocation sets the zone the wedding date and time are given in.
func WithLocation(loc *time.Location) Option {
	return func(o *options) { o.location = loc }
}

func WithIDGenerator(gen store.IDGenerator) Option {
	return func(o *options) { o.ids = gen }
}

// New loads every collection from storage, falling back to the built-in
// defaults for missing or unreadable keys. Unreadable keys are reported to
// sink with model.SeverityError.
func New(ctx context.Context, storage db.Storage, sink notify.Sink, opts ...Option) *Provider {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "Provider.New")
	defer span.End()

	o := options{
		logger:   slog.Default(),
		now:      time.Now,
		location: time.Local,
		ids:      store.UUIDGenerator{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	if sink == nil {
		sink = notify.Discard
	}

	p := &Provider{
		storage:  storage,
		sink:     sink,
		logger:   o.logger.WithGroup("wedding"),
		now:      o.now,
		location: o.location,
	}

	loadOpts := []db.LoadOption{
		db.WithLogger(p.logger),
		db.OnCorrupt(func(ctx context.Context, err *db.CorruptDataError) {
			msg := fmt.Sprintf("Saved %s could not be read, defaults restored", labels[err.Key])
			p.warnings = append(p.warnings, msg)
			p.sink.Notify(ctx, msg, model.SeverityError)
		}),
	}

	p.details = db.Load(ctx, storage, db.KeyWeddingDetails, defaultWeddingDetails(), loadOpts...)
	p.story = store.New(
		db.Load(ctx, storage, db.KeyStoryEvents, defaultStoryEvents(), loadOpts...),
		store.WithIDGenerator[model.StoryEvent](o.ids),
	)
	p.responses = store.New(
		db.Load(ctx, storage, db.KeyGuestResponses, []model.GuestResponse{}, loadOpts...),
		store.WithIDGenerator[model.GuestResponse](o.ids),
	)
	p.registry = store.New(
		db.Load(ctx, storage, db.KeyGiftRegistry, defaultGiftRegistry(), loadOpts...),
		store.WithIDGenerator[model.GiftRegistryItem](o.ids),
	)
	p.gallery = store.New(
		db.Load(ctx, storage, db.KeyGalleryItems, []model.GalleryItem{}, loadOpts...),
		store.WithIDGenerator[model.GalleryItem](o.ids),
	)

	span.SetAttributes(
		attribute.Int("story_events", p.story.Len()),
		attribute.Int("guest_responses", p.responses.Len()),
		attribute.Int("gift_registry", p.registry.Len()),
		attribute.Int("gallery_items", p.gallery.Len()),
	)
	return p
}

var labels = map[string]string{
	db.KeyWeddingDetails: "wedding details",
	db.KeyStoryEvents:    "story events",
	db.KeyGuestResponses: "guest responses",
	db.KeyGiftRegistry:   "gift registry",
	db.KeyGalleryItems:   "gallery items",
}

// Close deactivates the Provider. Any later call other than Close panics with
// a *MissingProviderError. The storage stays open, it belongs to the caller.
func (p *Provider) Close() {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
}

func (p *Provider) WeddingDetails() model.WeddingDetails {
	defer p.rlock("WeddingDetails")()
	return p.details
}

func (p *Provider) StoryEvents() []model.StoryEvent {
	defer p.rlock("StoryEvents")()
	return p.story.List()
}

func (p *Provider) GuestResponses() []model.GuestResponse {
	defer p.rlock("GuestResponses")()
	return p.responses.List()
}

func (p *Provider) GiftRegistry() []model.GiftRegistryItem {
	defer p.rlock("GiftRegistry")()
	return p.registry.List()
}

func (p *Provider) GalleryItems() []model.GalleryItem {
	defer p.rlock("GalleryItems")()
	return p.gallery.List()
}

// LoadWarnings returns the problems found while loading durable storage.
func (p *Provider) LoadWarnings() []string {
	defer p.rlock("LoadWarnings")()
	return append(make([]string, 0, len(p.warnings)), p.warnings...)
}

func (p *Provider) IsAdmin() bool {
	defer p.rlock("IsAdmin")()
	return p.isAdmin
}

// SetIsAdmin toggles the admin session flag. Credentials are checked by the
// caller; nothing is written to storage.
func (p *Provider) SetIsAdmin(v bool) {
	defer p.lock("SetIsAdmin")()
	p.isAdmin = v
}

func (p *Provider) UpdateWeddingDetails(ctx context.Context, patch model.WeddingDetailsPatch) error {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "Provider.UpdateWeddingDetails")
	defer span.End()
	defer p.lock("UpdateWeddingDetails")()

	prev := p.details
	p.details = patch.Apply(prev)
	if err := db.Save(ctx, p.storage, db.KeyWeddingDetails, p.details); err != nil {
		p.details = prev
		return p.fail(ctx, span, db.KeyWeddingDetails, err)
	}
	p.sink.Notify(ctx, "Wedding details updated", model.SeveritySuccess)
	return nil
}

func (p *Provider) AddGuestResponse(ctx context.Context, r model.GuestResponse) (string, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "Provider.AddGuestResponse")
	defer span.End()
	defer p.lock("AddGuestResponse")()

	var id string
	err := commit(ctx, p, span, db.KeyGuestResponses, p.responses, func() bool {
		id = p.responses.Add(r)
		return true
	}, "Response submitted! Thank you.")
	if err != nil {
		return "", err
	}
	return id, nil
}

func (p *Provider) AddStoryEvent(ctx context.Context, e model.StoryEvent) (string, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "Provider.AddStoryEvent")
	defer span.End()
	defer p.lock("AddStoryEvent")()

	var id string
	err := commit(ctx, p, span, db.KeyStoryEvents, p.story, func() bool {
		id = p.story.Add(e)
		return true
	}, "Story event added")
	if err != nil {
		return "", err
	}
	return id, nil
}

func (p *Provider) RemoveStoryEvent(ctx context.Context, id string) error {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "Provider.RemoveStoryEvent", trace.WithAttributes(attribute.String("id", id)))
	defer span.End()
	defer p.lock("RemoveStoryEvent")()

	return commit(ctx, p, span, db.KeyStoryEvents, p.story, func() bool {
		return p.story.Remove(id)
	}, "Story event removed")
}

// UpdateStoryEvents replaces all story events at once.
func (p *Provider) UpdateStoryEvents(ctx context.Context, events []model.StoryEvent) error {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "Provider.UpdateStoryEvents")
	defer span.End()
	defer p.lock("UpdateStoryEvents")()

	return commit(ctx, p, span, db.KeyStoryEvents, p.story, func() bool {
		p.story.Replace(events)
		return true
	}, "Story events updated")
}

func (p *Provider) AddGiftRegistryItem(ctx context.Context, item model.GiftRegistryItem) (string, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "Provider.AddGiftRegistryItem")
	defer span.End()
	defer p.lock("AddGiftRegistryItem")()

	var id string
	err := commit(ctx, p, span, db.KeyGiftRegistry, p.registry, func() bool {
		id = p.registry.Add(item)
		return true
	}, "Gift registry item added")
	if err != nil {
		return "", err
	}
	return id, nil
}

func (p *Provider) RemoveGiftRegistryItem(ctx context.Context, id string) error {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "Provider.RemoveGiftRegistryItem", trace.WithAttributes(attribute.String("id", id)))
	defer span.End()
	defer p.lock("RemoveGiftRegistryItem")()

	return commit(ctx, p, span, db.KeyGiftRegistry, p.registry, func() bool {
		return p.registry.Remove(id)
	}, "Gift registry item removed")
}

func (p *Provider) UpdateGiftRegistryItem(ctx context.Context, id string, patch model.GiftRegistryPatch) error {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "Provider.UpdateGiftRegistryItem", trace.WithAttributes(attribute.String("id", id)))
	defer span.End()
	defer p.lock("UpdateGiftRegistryItem")()

	return commit(ctx, p, span, db.KeyGiftRegistry, p.registry, func() bool {
		return p.registry.Update(id, patch.Apply)
	}, "Gift registry item updated")
}

// UpdateGiftRegistry replaces the whole registry at once.
func (p *Provider) UpdateGiftRegistry(ctx context.Context, items []model.GiftRegistryItem) error {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "Provider.UpdateGiftRegistry")
	defer span.End()
	defer p.lock("UpdateGiftRegistry")()

	return commit(ctx, p, span, db.KeyGiftRegistry, p.registry, func() bool {
		p.registry.Replace(items)
		return true
	}, "Gift registry updated")
}

// AddGalleryItem stores item stamped with the current time and zero likes.
func (p *Provider) AddGalleryItem(ctx context.Context, item model.GalleryItem) (string, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "Provider.AddGalleryItem", trace.WithAttributes(attribute.String("type", item.Type.String())))
	defer span.End()
	defer p.lock("AddGalleryItem")()

	item.UploadedAt = p.now().UTC()
	item.Likes = 0

	var id string
	err := commit(ctx, p, span, db.KeyGalleryItems, p.gallery, func() bool {
		id = p.gallery.Add(item)
		return true
	}, "Gallery item added")
	if err != nil {
		return "", err
	}
	return id, nil
}

func (p *Provider) RemoveGalleryItem(ctx context.Context, id string) error {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "Provider.RemoveGalleryItem", trace.WithAttributes(attribute.String("id", id)))
	defer span.End()
	defer p.lock("RemoveGalleryItem")()

	return commit(ctx, p, span, db.KeyGalleryItems, p.gallery, func() bool {
		return p.gallery.Remove(id)
	}, "Gallery item removed")
}

// LikeGalleryItem adds one like. Likes are not announced.
func (p *Provider) LikeGalleryItem(ctx context.Context, id string) error {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "Provider.LikeGalleryItem", trace.WithAttributes(attribute.String("id", id)))
	defer span.End()
	defer p.lock("LikeGalleryItem")()

	return commit(ctx, p, span, db.KeyGalleryItems, p.gallery, func() bool {
		return p.gallery.Increment(id, model.LikesField)
	}, "")
}

// commit runs mutate on c and writes c to key if mutate reports a change. A
// failed write restores the previous records, so memory never runs ahead of
// storage. Callers hold p.mu.
func commit[T store.Record[T]](
	ctx context.Context,
	p *Provider,
	span trace.Span,
	key string,
	c *store.Collection[T],
	mutate func() bool,
	success string,
) error {
	prev := c.List()
	if mutate() {
		span.AddEvent("save collection", trace.WithAttributes(attribute.Int("len", c.Len())))
		if err := db.Save(ctx, p.storage, key, c.List()); err != nil {
			c.Replace(prev)
			return p.fail(ctx, span, key, err)
		}
	} else {
		span.AddEvent("unknown id, nothing to save")
	}
	if success != "" {
		p.sink.Notify(ctx, success, model.SeveritySuccess)
	}
	return nil
}

func (p *Provider) fail(ctx context.Context, span trace.Span, key string, err error) error {
	err = fmt.Errorf("save %s: %w", labels[key], err)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	p.logger.ErrorContext(ctx, "could not persist change, rolled back", "key", key, "error", err)
	p.sink.Notify(ctx, fmt.Sprintf("Could not save %s", labels[key]), model.SeverityError)
	return err
}

func (p *Provider) lock(op string) func() {
	if p == nil {
		panic(&MissingProviderError{Op: op})
	}
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		panic(&MissingProviderError{Op: op})
	}
	return p.mu.Unlock
}

func (p *Provider) rlock(op string) func() {
	if p == nil {
		panic(&MissingProviderError{Op: op})
	}
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		panic(&MissingProviderError{Op: op})
	}
	return p.mu.RUnlock
}
