// Copyright (C) 2024 the quixsi maintainers
// See root-dir/LICENSE for more information

package wedding

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quixsi/wedding/internal/db"
	"github.com/quixsi/wedding/internal/db/memdb"
	"github.com/quixsi/wedding/internal/model"
	"github.com/quixsi/wedding/internal/notify"
)

var uploadTime = time.Date(2025, 4, 26, 18, 0, 0, 0, time.UTC)

func newTestProvider(t *testing.T, s db.Storage) (*Provider, *notify.Collector) {
	t.Helper()
	c := &notify.Collector{}
	p := New(context.Background(), s, c,
		WithClock(func() time.Time { return uploadTime }),
		WithLocation(time.UTC),
	)
	return p, c
}

func messages(toasts []notify.Toast) []string {
	res := make([]string, 0, len(toasts))
	for _, t := range toasts {
		res = append(res, t.Severity.String()+": "+t.Message)
	}
	return res
}

func TestNew_Defaults(t *testing.T) {
	p, c := newTestProvider(t, memdb.NewStore())

	assert.Equal(t, defaultWeddingDetails(), p.WeddingDetails())
	assert.Equal(t, defaultStoryEvents(), p.StoryEvents())
	assert.Equal(t, defaultGiftRegistry(), p.GiftRegistry())
	assert.Empty(t, p.GuestResponses())
	assert.Empty(t, p.GalleryItems())
	assert.False(t, p.IsAdmin())
	assert.Empty(t, c.Drain())
	assert.Empty(t, p.LoadWarnings())
}

func TestNew_CorruptKeyIsReported(t *testing.T) {
	ctx := context.Background()
	s := memdb.NewStore()
	require.NoError(t, s.Put(ctx, db.KeyGiftRegistry, []byte(`{"broken":`)))

	p, c := newTestProvider(t, s)

	assert.Equal(t, defaultGiftRegistry(), p.GiftRegistry())
	assert.Equal(t, []string{"error: Saved gift registry could not be read, defaults restored"}, messages(c.Drain()))
	assert.Equal(t, []string{"Saved gift registry could not be read, defaults restored"}, p.LoadWarnings())

	raw, err := s.Get(ctx, db.KeyGiftRegistry+db.CorruptSuffix)
	require.NoError(t, err)
	assert.Equal(t, `{"broken":`, string(raw))
}

func TestProvider_AddStoryEvent(t *testing.T) {
	ctx := context.Background()
	s := memdb.NewStore()
	p, c := newTestProvider(t, s)
	before := p.StoryEvents()

	event := model.StoryEvent{Date: "2020-06-15", Title: "First Meeting", Description: "..."}
	id, err := p.AddStoryEvent(ctx, event)
	require.NoError(t, err)

	after := p.StoryEvents()
	require.Len(t, after, len(before)+1)
	assert.NotEmpty(t, id)
	for _, e := range before {
		assert.NotEqual(t, e.ID, id)
	}
	event.ID = id
	assert.Equal(t, event, after[len(after)-1])
	assert.Equal(t, []string{"success: Story event added"}, messages(c.Drain()))

	// durable copy equals memory
	assert.Equal(t, after, db.Load[[]model.StoryEvent](ctx, s, db.KeyStoryEvents, nil))
}

func TestProvider_LikeGalleryItem(t *testing.T) {
	ctx := context.Background()
	s := memdb.NewStore()
	p, c := newTestProvider(t, s)

	id, err := p.AddGalleryItem(ctx, model.GalleryItem{Type: model.MediaKindImage, URL: "/a.jpg", Likes: 41})
	require.NoError(t, err)
	other, err := p.AddGalleryItem(ctx, model.GalleryItem{Type: model.MediaKindVideo, URL: "/b.mp4"})
	require.NoError(t, err)

	require.NoError(t, p.LikeGalleryItem(ctx, id))
	require.NoError(t, p.LikeGalleryItem(ctx, other))
	require.NoError(t, p.RemoveGalleryItem(ctx, other))
	require.NoError(t, p.LikeGalleryItem(ctx, id))
	require.NoError(t, p.LikeGalleryItem(ctx, "nonexistent-id"))

	items := p.GalleryItems()
	require.Len(t, items, 1)
	assert.Equal(t, model.GalleryItem{
		ID: id, Type: model.MediaKindImage, URL: "/a.jpg", UploadedAt: uploadTime, Likes: 2,
	}, items[0])
	assert.Equal(t, []string{
		"success: Gallery item added",
		"success: Gallery item added",
		"success: Gallery item removed",
	}, messages(c.Drain()))

	assert.Equal(t, items, db.Load[[]model.GalleryItem](ctx, s, db.KeyGalleryItems, nil))
}

func TestProvider_RemoveIsIdempotent(t *testing.T) {
	ctx := context.Background()

	tt := []struct {
		name   string
		remove func(p *Provider, id string) error
		list   func(p *Provider) any
	}{
		{
			name:   "gift registry",
			remove: func(p *Provider, id string) error { return p.RemoveGiftRegistryItem(ctx, id) },
			list:   func(p *Provider) any { return p.GiftRegistry() },
		},
		{
			name:   "story events",
			remove: func(p *Provider, id string) error { return p.RemoveStoryEvent(ctx, id) },
			list:   func(p *Provider) any { return p.StoryEvents() },
		},
		{
			name:   "gallery",
			remove: func(p *Provider, id string) error { return p.RemoveGalleryItem(ctx, id) },
			list:   func(p *Provider) any { return p.GalleryItems() },
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			s := memdb.NewStore()
			p, _ := newTestProvider(t, s)
			before := tc.list(p)

			require.NoError(t, tc.remove(p, "nonexistent-id"))
			assert.Equal(t, before, tc.list(p))

			// nothing was written for an unknown id
			keys, err := s.Keys(ctx)
			require.NoError(t, err)
			assert.Empty(t, keys)
		})
	}

	t.Run("twice", func(t *testing.T) {
		p, _ := newTestProvider(t, memdb.NewStore())
		require.NoError(t, p.RemoveGiftRegistryItem(ctx, "1"))
		once := p.GiftRegistry()
		require.NoError(t, p.RemoveGiftRegistryItem(ctx, "1"))
		assert.Equal(t, once, p.GiftRegistry())
		assert.Len(t, once, 1)
	})
}

func TestProvider_UpdateWeddingDetails(t *testing.T) {
	ctx := context.Background()
	s := memdb.NewStore()
	p, c := newTestProvider(t, s)

	venue, dressCode := "Garden Pavilion", "Semi-formal"
	require.NoError(t, p.UpdateWeddingDetails(ctx, model.WeddingDetailsPatch{Venue: &venue, DressCode: &dressCode}))

	want := defaultWeddingDetails()
	want.Venue = venue
	want.DressCode = dressCode
	assert.Equal(t, want, p.WeddingDetails())
	assert.Equal(t, want, db.Load(ctx, s, db.KeyWeddingDetails, model.WeddingDetails{}))
	assert.Equal(t, []string{"success: Wedding details updated"}, messages(c.Drain()))
}

func TestProvider_GiftRegistry(t *testing.T) {
	ctx := context.Background()
	s := memdb.NewStore()
	p, c := newTestProvider(t, s)

	id, err := p.AddGiftRegistryItem(ctx, model.GiftRegistryItem{Title: "Kitchen", Link: "https://example.com/kitchen"})
	require.NoError(t, err)

	title := "Kitchen Aid"
	require.NoError(t, p.UpdateGiftRegistryItem(ctx, id, model.GiftRegistryPatch{Title: &title}))
	require.NoError(t, p.UpdateGiftRegistryItem(ctx, "nonexistent-id", model.GiftRegistryPatch{Title: &title}))

	items := p.GiftRegistry()
	require.Len(t, items, 3)
	assert.Equal(t, model.GiftRegistryItem{ID: id, Title: "Kitchen Aid", Link: "https://example.com/kitchen"}, items[2])

	require.NoError(t, p.UpdateGiftRegistry(ctx, []model.GiftRegistryItem{{Title: "Only"}}))
	items = p.GiftRegistry()
	require.Len(t, items, 1)
	assert.NotEmpty(t, items[0].ID)
	assert.Equal(t, items, db.Load[[]model.GiftRegistryItem](ctx, s, db.KeyGiftRegistry, nil))

	assert.Equal(t, []string{
		"success: Gift registry item added",
		"success: Gift registry item updated",
		"success: Gift registry item updated",
		"success: Gift registry updated",
	}, messages(c.Drain()))
}

func TestProvider_GuestResponsesSurviveRestart(t *testing.T) {
	ctx := context.Background()
	s := memdb.NewStore()
	p, c := newTestProvider(t, s)

	resp := model.GuestResponse{Name: "Ana", Email: "ana@example.com", Attending: true, NumberOfGuests: 2}
	id, err := p.AddGuestResponse(ctx, resp)
	require.NoError(t, err)
	assert.Equal(t, []string{"success: Response submitted! Thank you."}, messages(c.Drain()))
	p.SetIsAdmin(true)

	restarted, _ := newTestProvider(t, s)
	resp.ID = id
	assert.Equal(t, []model.GuestResponse{resp}, restarted.GuestResponses())
	assert.False(t, restarted.IsAdmin())
}

func TestProvider_WriteFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	s := memdb.NewStore()
	p, c := newTestProvider(t, s)
	before := p.StoryEvents()
	details := p.WeddingDetails()

	s.FailPut = errors.New("quota exceeded")

	_, err := p.AddStoryEvent(ctx, model.StoryEvent{Date: "2024-01-01", Title: "Engaged"})
	require.ErrorIs(t, err, s.FailPut)
	assert.Equal(t, before, p.StoryEvents())

	venue := "Elsewhere"
	err = p.UpdateWeddingDetails(ctx, model.WeddingDetailsPatch{Venue: &venue})
	require.ErrorIs(t, err, s.FailPut)
	assert.Equal(t, details, p.WeddingDetails())

	assert.Equal(t, []string{
		"error: Could not save story events",
		"error: Could not save wedding details",
	}, messages(c.Drain()))
}

func TestProvider_InvalidMediaKindIsRejected(t *testing.T) {
	ctx := context.Background()
	p, c := newTestProvider(t, memdb.NewStore())

	_, err := p.AddGalleryItem(ctx, model.GalleryItem{URL: "/a.gif"})
	require.Error(t, err)
	assert.Empty(t, p.GalleryItems())
	assert.Equal(t, []string{"error: Could not save gallery items"}, messages(c.Drain()))
}

func TestProvider_SetIsAdminDoesNotPersist(t *testing.T) {
	ctx := context.Background()
	s := memdb.NewStore()
	p, c := newTestProvider(t, s)

	p.SetIsAdmin(true)
	assert.True(t, p.IsAdmin())
	p.SetIsAdmin(false)
	assert.False(t, p.IsAdmin())

	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)
	assert.Empty(t, c.Drain())
}

func TestMissingProvider(t *testing.T) {
	assertMissing := func(t *testing.T, fn func()) {
		t.Helper()
		defer func() {
			r := recover()
			require.NotNil(t, r, "expected panic")
			err, ok := r.(error)
			require.True(t, ok)
			var mErr *MissingProviderError
			assert.ErrorAs(t, err, &mErr)
		}()
		fn()
	}

	t.Run("context without provider", func(t *testing.T) {
		_, err := FromContext(context.Background())
		var mErr *MissingProviderError
		require.ErrorAs(t, err, &mErr)

		assertMissing(t, func() { MustFromContext(context.Background()) })
	})

	t.Run("nil provider", func(t *testing.T) {
		var p *Provider
		assertMissing(t, func() { p.StoryEvents() })
		assertMissing(t, func() { _, _ = p.AddStoryEvent(context.Background(), model.StoryEvent{}) })
		assertMissing(t, func() { p.SetIsAdmin(true) })
	})

	t.Run("closed provider", func(t *testing.T) {
		p, _ := newTestProvider(t, memdb.NewStore())
		p.Close()
		p.Close()
		assertMissing(t, func() { p.GalleryItems() })
		assertMissing(t, func() { _ = p.LikeGalleryItem(context.Background(), "1") })
	})

	t.Run("context with provider", func(t *testing.T) {
		p, _ := newTestProvider(t, memdb.NewStore())
		got, err := FromContext(NewContext(context.Background(), p))
		require.NoError(t, err)
		assert.Same(t, p, got)
	})
}
