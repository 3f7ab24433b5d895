// Copyright (C) 2024 the quixsi maintainers
// See root-dir/LICENSE for more information

package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quixsi/wedding/internal/db"
	"github.com/quixsi/wedding/internal/db/memdb"
	"github.com/quixsi/wedding/internal/model"
	"github.com/quixsi/wedding/internal/notify"
	"github.com/quixsi/wedding/internal/wedding"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	storage  *memdb.Store
	provider *wedding.Provider
	server   *Server
	// session is sent with every request once set by login.
	session *http.Cookie
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	s := memdb.NewStore()
	p := wedding.New(context.Background(), s, notify.ContextSink,
		wedding.WithLocation(time.UTC),
		wedding.WithClock(func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }),
	)
	t.Cleanup(p.Close)
	srv := NewServer("test", p,
		WithAdminPassword("secret"),
		WithClock(func() time.Time { return time.Date(2025, 4, 25, 15, 0, 0, 0, time.UTC) }),
		WithCORSOrigins("http://localhost:3000"),
	)
	return &testEnv{storage: s, provider: p, server: srv}
}

func (e *testEnv) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if e.session != nil {
		req.AddCookie(e.session)
	}
	rec := httptest.NewRecorder()
	e.server.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) login(t *testing.T) {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/admin/login", `{"password":"secret"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookie {
			e.session = c
		}
	}
	require.NotNil(t, e.session, "login did not set a session cookie")
	assert.True(t, e.session.HttpOnly)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestPublic_Reads(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/details", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Daisy", decode[model.WeddingDetails](t, rec).BrideName)

	rec = env.do(t, http.MethodGet, "/api/story", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]model.StoryEvent](t, rec), 2)

	rec = env.do(t, http.MethodGet, "/api/registry", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]model.GiftRegistryItem](t, rec), 2)

	rec = env.do(t, http.MethodGet, "/api/countdown", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, wedding.Countdown{Days: 1}, decode[wedding.Countdown](t, rec))
}

func TestPublic_RSVP(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{
			name:       "valid",
			body:       `{"name":"Ana","email":"ana@example.com","attending":true,"numberOfGuests":2}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "missing name",
			body:       `{"email":"ana@example.com","attending":true}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "invalid email",
			body:       `{"name":"Ana","email":"nope","attending":true}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "too many guests",
			body:       `{"name":"Ana","email":"ana@example.com","numberOfGuests":11}`,
			wantStatus: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			rec := env.do(t, http.MethodPost, "/api/rsvp", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantStatus == http.StatusCreated {
				assert.Len(t, env.provider.GuestResponses(), 1)
				assert.Contains(t, rec.Header().Get(toastHeader), "Response submitted! Thank you.")
			} else {
				assert.Empty(t, env.provider.GuestResponses())
			}
		})
	}
}

func TestPublic_RSVPForm(t *testing.T) {
	env := newTestEnv(t)
	form := url.Values{
		"name":             {"Ben"},
		"email":            {"ben@example.com"},
		"attending":        {"true"},
		"number_of_guests": {"3"},
	}
	req := httptest.NewRequest(http.MethodPost, "/api/rsvp", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	env.server.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	got := env.provider.GuestResponses()
	require.Len(t, got, 1)
	assert.Equal(t, 3, got[0].NumberOfGuests)
	assert.True(t, got[0].Attending)
}

func TestPublic_GalleryUploadAndLike(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/gallery", `{"type":"video","url":"/v.mp4","caption":"dance"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := decode[map[string]any](t, rec)["id"].(string)

	rec = env.do(t, http.MethodPost, "/api/gallery", `{"type":"image","url":"/a.jpg"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/gallery", `{"type":"audio","url":"/a.mp3"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	for i := 0; i < 2; i++ {
		rec = env.do(t, http.MethodPost, "/api/gallery/"+id+"/like", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get(toastHeader))
	}
	assert.EqualValues(t, 2, decode[map[string]any](t, rec)["likes"])

	rec = env.do(t, http.MethodGet, "/api/gallery?type=video", "")
	require.Equal(t, http.StatusOK, rec.Code)
	videos := decode[[]model.GalleryItem](t, rec)
	require.Len(t, videos, 1)
	assert.Equal(t, model.MediaKindVideo, videos[0].Type)

	rec = env.do(t, http.MethodGet, "/api/gallery?type=audio", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/gallery/unknown/like", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdmin_Gate(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/admin/dashboard", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, "/admin/login", `{"password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, env.provider.IsAdmin())

	env.login(t)
	assert.True(t, env.provider.IsAdmin())

	rec = env.do(t, http.MethodGet, "/admin/dashboard", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPost, "/admin/logout", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, env.provider.IsAdmin())
	rec = env.do(t, http.MethodGet, "/admin/dashboard", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdmin_GateIsPerClient(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)
	admin := env.session

	env.session = nil
	rec := env.do(t, http.MethodDelete, "/admin/registry/1", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = env.do(t, http.MethodGet, "/admin/responses", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Len(t, env.provider.GiftRegistry(), 2)

	env.session = &http.Cookie{Name: sessionCookie, Value: "forged"}
	rec = env.do(t, http.MethodGet, "/admin/dashboard", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// a stray logout without a session keeps the admin logged in
	env.session = nil
	rec = env.do(t, http.MethodPost, "/admin/logout", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.provider.IsAdmin())

	env.session = admin
	rec = env.do(t, http.MethodDelete, "/admin/registry/1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, env.provider.GiftRegistry(), 1)
}

func TestAdmin_Mutations(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	rec := env.do(t, http.MethodPut, "/admin/details", `{"venue":"Garden"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Garden", env.provider.WeddingDetails().Venue)
	assert.Equal(t, "Daisy", env.provider.WeddingDetails().BrideName)
	assert.Contains(t, rec.Header().Get(toastHeader), "Wedding details updated")

	rec = env.do(t, http.MethodPost, "/admin/story", `{"date":"2023-01-01","title":"Engagement"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Len(t, env.provider.StoryEvents(), 3)

	rec = env.do(t, http.MethodPost, "/admin/story", `{"date":"2023-01-01"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodDelete, "/admin/story/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, env.provider.StoryEvents(), 2)

	rec = env.do(t, http.MethodPatch, "/admin/registry/2", `{"title":"Honeymoon"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Honeymoon", env.provider.GiftRegistry()[1].Title)

	rec = env.do(t, http.MethodPatch, "/admin/registry/missing", `{"title":"x"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodPost, "/admin/registry", `{"title":"Kitchen","link":"not a url"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPut, "/admin/registry", `[{"title":"Only"}]`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Len(t, env.provider.GiftRegistry(), 1)
	assert.NotEmpty(t, env.provider.GiftRegistry()[0].ID)

	raw, err := env.storage.Get(context.Background(), db.KeyGiftRegistry)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Only")
}

func TestAdmin_SaveFailure(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)
	env.storage.FailPut = assert.AnError

	rec := env.do(t, http.MethodPost, "/admin/story", `{"date":"2023-01-01","title":"Engagement"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Header().Get(toastHeader), "Could not save story events")
	assert.Len(t, env.provider.StoryEvents(), 2)
}

func TestAdmin_Export(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	rec := env.do(t, http.MethodGet, "/admin/export", "")
	require.Equal(t, http.StatusOK, rec.Code)
	flat := decode[map[string]any](t, rec)
	assert.Equal(t, "Daisy", flat["weddingDetails.brideName"])
	assert.Equal(t, "First Meeting", flat["storyEvents.0.title"])
	assert.Equal(t, "Cash Gift", flat["giftRegistry.1.title"])
}

func TestNotFound(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"code":"PAGE_NOT_FOUND","message":"Page not found"}`, rec.Body.String())
}

func TestAdmin_DashboardShowsLoadWarnings(t *testing.T) {
	s := memdb.NewStore()
	require.NoError(t, s.Put(context.Background(), db.KeyStoryEvents, []byte(`not json`)))
	p := wedding.New(context.Background(), s, notify.ContextSink)
	t.Cleanup(p.Close)
	env := &testEnv{storage: s, provider: p, server: NewServer("test", p, WithAdminPassword("secret"))}
	env.login(t)

	rec := env.do(t, http.MethodGet, "/admin/dashboard", "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[struct {
		Warnings []string `json:"warnings"`
	}](t, rec)
	assert.Equal(t, []string{"Saved story events could not be read, defaults restored"}, got.Warnings)
}
