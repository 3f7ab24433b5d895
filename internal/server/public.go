// Copyright (C) 2024 the quixsi maintainers
// See root-dir/LICENSE for more information

package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/quixsi/wedding/internal/model"
	"github.com/quixsi/wedding/internal/wedding"
)

// PublicHandler serves the guest facing part of the API.
type PublicHandler struct {
	logger *slog.Logger
	now    func() time.Time
}

func (h *PublicHandler) Details(c *gin.Context) {
	c.JSON(http.StatusOK, wedding.MustFromContext(c.Request.Context()).WeddingDetails())
}

func (h *PublicHandler) Story(c *gin.Context) {
	c.JSON(http.StatusOK, wedding.MustFromContext(c.Request.Context()).Timeline())
}

func (h *PublicHandler) Registry(c *gin.Context) {
	c.JSON(http.StatusOK, wedding.MustFromContext(c.Request.Context()).GiftRegistry())
}

func (h *PublicHandler) Gallery(c *gin.Context) {
	var span trace.Span
	ctx := c.Request.Context()
	ctx, span = tracer.Start(ctx, "PublicHandler.Gallery")
	defer span.End()

	var kind *model.MediaKind
	if v := c.Query("type"); v != "" {
		k, err := model.ParseMediaKind(v)
		if err != nil {
			h.logger.WarnContext(ctx, "unknown gallery filter", "type", v)
			badRequest(c, span, err)
			return
		}
		kind = &k
	}
	c.JSON(http.StatusOK, wedding.MustFromContext(ctx).Gallery(kind))
}

func (h *PublicHandler) Countdown(c *gin.Context) {
	var span trace.Span
	ctx := c.Request.Context()
	ctx, span = tracer.Start(ctx, "PublicHandler.Countdown")
	defer span.End()

	left, err := wedding.MustFromContext(ctx).Countdown(h.now())
	if err != nil {
		h.logger.ErrorContext(ctx, "could not compute countdown", "error", err)
		fail(c, span, http.StatusUnprocessableEntity, "INVALID_DATE", err)
		return
	}
	c.JSON(http.StatusOK, left)
}

func (h *PublicHandler) RSVP(c *gin.Context) {
	var span trace.Span
	ctx := c.Request.Context()
	ctx, span = tracer.Start(ctx, "PublicHandler.RSVP")
	defer span.End()

	var r model.GuestResponse
	if err := c.ShouldBind(&r); err != nil {
		h.logger.WarnContext(ctx, "invalid rsvp", "error", err)
		badRequest(c, span, err)
		return
	}

	id, err := wedding.MustFromContext(ctx).AddGuestResponse(ctx, r)
	if err != nil {
		fail(c, span, http.StatusInternalServerError, "SAVE_FAILED", err)
		return
	}
	span.SetAttributes(attribute.String("id", id))
	respond(c, http.StatusCreated, gin.H{"id": id})
}

type galleryUpload struct {
	Type       string `json:"type" form:"type" binding:"required,oneof=image video"`
	URL        string `json:"url" form:"url" binding:"required"`
	Caption    string `json:"caption" form:"caption"`
	UploadedBy string `json:"uploadedBy" form:"uploaded_by"`
}

func (h *PublicHandler) Upload(c *gin.Context) {
	var span trace.Span
	ctx := c.Request.Context()
	ctx, span = tracer.Start(ctx, "PublicHandler.Upload")
	defer span.End()

	var req galleryUpload
	if err := c.ShouldBind(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid gallery item", "error", err)
		badRequest(c, span, err)
		return
	}
	kind, err := model.ParseMediaKind(req.Type)
	if err != nil {
		badRequest(c, span, err)
		return
	}

	id, err := wedding.MustFromContext(ctx).AddGalleryItem(ctx, model.GalleryItem{
		Type:       kind,
		URL:        req.URL,
		Caption:    req.Caption,
		UploadedBy: req.UploadedBy,
	})
	if err != nil {
		fail(c, span, http.StatusInternalServerError, "SAVE_FAILED", err)
		return
	}
	respond(c, http.StatusCreated, gin.H{"id": id})
}

func (h *PublicHandler) Like(c *gin.Context) {
	var span trace.Span
	ctx := c.Request.Context()
	id := c.Param("id")
	ctx, span = tracer.Start(ctx, "PublicHandler.Like", trace.WithAttributes(attribute.String("id", id)))
	defer span.End()

	p := wedding.MustFromContext(ctx)
	if err := p.LikeGalleryItem(ctx, id); err != nil {
		fail(c, span, http.StatusInternalServerError, "SAVE_FAILED", err)
		return
	}
	for _, it := range p.GalleryItems() {
		if it.ID == id {
			respond(c, http.StatusOK, gin.H{"id": id, "likes": it.Likes})
			return
		}
	}
	notFound(c)
}
