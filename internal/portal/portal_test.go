// Copyright (C) 2024 the quixsi maintainers
// See root-dir/LICENSE for more information

package portal

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quixsi/wedding/internal/db/memdb"
	"github.com/quixsi/wedding/internal/model"
	"github.com/quixsi/wedding/internal/notify"
	templates "github.com/quixsi/wedding/internal/portal/tmp"
	"github.com/quixsi/wedding/internal/wedding"
)

func newTestPortal(t *testing.T) (http.Handler, *wedding.Provider) {
	t.Helper()
	p := wedding.New(context.Background(), memdb.NewStore(), notify.ContextSink, wedding.WithLocation(time.UTC))
	t.Cleanup(p.Close)
	now := func() time.Time { return time.Date(2025, 4, 24, 15, 0, 0, 0, time.UTC) }
	return NewPortal(slog.Default(), templates.NewTemplateHandler(), p, now).Handler(), p
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestPages(t *testing.T) {
	h, p := newTestPortal(t)
	_, err := p.AddGalleryItem(context.Background(), model.GalleryItem{Type: model.MediaKindVideo, URL: "/first-dance.mp4", Caption: "First dance"})
	require.NoError(t, err)

	tests := []struct {
		target   string
		status   int
		contains []string
	}{
		{target: "/", status: http.StatusOK, contains: []string{"Daisy &amp; Reg", "2 days", `action="/rsvp"`}},
		{target: "/story", status: http.StatusOK, contains: []string{"First Meeting", "The Proposal"}},
		{target: "/registry", status: http.StatusOK, contains: []string{"Home Essentials", "Cash Gift"}},
		{target: "/gallery", status: http.StatusOK, contains: []string{"<video", "First dance"}},
		{target: "/gallery?type=image", status: http.StatusOK, contains: []string{"No photos yet."}},
		{target: "/gallery?type=audio", status: http.StatusBadRequest},
		{target: "/missing", status: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := get(t, h, tt.target)
			assert.Equal(t, tt.status, rec.Code)
			for _, s := range tt.contains {
				assert.Contains(t, rec.Body.String(), s)
			}
		})
	}
}

func TestRSVP(t *testing.T) {
	tests := []struct {
		name      string
		form      url.Values
		status    int
		responses int
		toast     string
	}{
		{
			name: "accepted",
			form: url.Values{
				"name":             {"Ana"},
				"email":            {"ana@example.com"},
				"attending":        {"on"},
				"number_of_guests": {"2"},
			},
			status:    http.StatusCreated,
			responses: 1,
			toast:     "Response submitted! Thank you.",
		},
		{
			name:   "invalid email",
			form:   url.Values{"name": {"Ana"}, "email": {"ana"}},
			status: http.StatusBadRequest,
			toast:  "Please check your RSVP details",
		},
		{
			name:   "not a number",
			form:   url.Values{"name": {"Ana"}, "email": {"ana@example.com"}, "number_of_guests": {"two"}},
			status: http.StatusBadRequest,
			toast:  "Please check your RSVP details",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, p := newTestPortal(t)
			req := httptest.NewRequest(http.MethodPost, "/rsvp", strings.NewReader(tt.form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			assert.Len(t, p.GuestResponses(), tt.responses)
			assert.Contains(t, rec.Body.String(), tt.toast)
		})
	}
}
