// Copyright (C) 2024 the quixsi maintainers
// See root-dir/LICENSE for more information

package portal

import (
	"context"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin/binding"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/quixsi/wedding/internal/model"
	"github.com/quixsi/wedding/internal/notify"
	"github.com/quixsi/wedding/internal/parser/form"
	"github.com/quixsi/wedding/internal/wedding"
)

type page struct {
	Details   model.WeddingDetails
	Toasts    []notify.Toast
	Countdown *wedding.Countdown
	Story     []model.StoryEvent
	Registry  []model.GiftRegistryItem
	Gallery   []model.GalleryItem
}

func (p *Portal) newPage(ctx context.Context) page {
	pg := page{Details: wedding.MustFromContext(ctx).WeddingDetails()}
	if c, ok := notify.CollectorFrom(ctx); ok {
		pg.Toasts = c.Drain()
	}
	return pg
}

func (p *Portal) render(w http.ResponseWriter, r *http.Request, status int, tmpl *template.Template, data page) {
	ctx := r.Context()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.Execute(w, data); err != nil {
		p.logger.ErrorContext(ctx, "failed to execute template", "error", err)
	}
}

func (p *Portal) home(w http.ResponseWriter, r *http.Request) {
	p.renderHome(w, r, http.StatusOK)
}

func (p *Portal) renderHome(w http.ResponseWriter, r *http.Request, status int) {
	ctx := r.Context()
	data := p.newPage(ctx)
	left, err := wedding.MustFromContext(ctx).Countdown(p.now())
	if err != nil {
		p.logger.WarnContext(ctx, "countdown unavailable", "error", err)
	} else {
		data.Countdown = &left
	}
	p.render(w, r, status, p.templates.TmplHome, data)
}

func (p *Portal) story(w http.ResponseWriter, r *http.Request) {
	data := p.newPage(r.Context())
	data.Story = wedding.MustFromContext(r.Context()).Timeline()
	p.render(w, r, http.StatusOK, p.templates.TmplStory, data)
}

func (p *Portal) registry(w http.ResponseWriter, r *http.Request) {
	data := p.newPage(r.Context())
	data.Registry = wedding.MustFromContext(r.Context()).GiftRegistry()
	p.render(w, r, http.StatusOK, p.templates.TmplRegistry, data)
}

func (p *Portal) gallery(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var kind *model.MediaKind
	if v := r.URL.Query().Get("type"); v != "" {
		k, err := model.ParseMediaKind(v)
		if err != nil {
			http.Error(w, "unknown gallery type", http.StatusBadRequest)
			return
		}
		kind = &k
	}
	data := p.newPage(ctx)
	data.Gallery = wedding.MustFromContext(ctx).Gallery(kind)
	p.render(w, r, http.StatusOK, p.templates.TmplGallery, data)
}

func (p *Portal) rsvp(w http.ResponseWriter, r *http.Request) {
	var span trace.Span
	ctx := r.Context()
	ctx, span = tracer.Start(ctx, "Portal.rsvp")
	defer span.End()
	r = r.WithContext(ctx)

	if err := r.ParseForm(); err != nil {
		span.RecordError(err)
		p.logger.ErrorContext(ctx, "could not parse form", "error", err)
		http.Error(w, "could not parse form", http.StatusBadRequest)
		return
	}

	var resp model.GuestResponse
	err := form.Unmarshal(r.PostForm, &resp)
	if err == nil {
		err = binding.Validator.ValidateStruct(&resp)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		p.logger.WarnContext(ctx, "invalid rsvp", "error", err)
		notify.ContextSink.Notify(ctx, "Please check your RSVP details", model.SeverityError)
		p.renderHome(w, r, http.StatusBadRequest)
		return
	}

	status := http.StatusCreated
	if _, err := wedding.MustFromContext(ctx).AddGuestResponse(ctx, resp); err != nil {
		status = http.StatusInternalServerError
	}
	p.renderHome(w, r, status)
}
