// Copyright (C) 2024 the quixsi maintainers
// See root-dir/LICENSE for more information

package server

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/jeremywohl/flatten/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/quixsi/wedding/internal/model"
	"github.com/quixsi/wedding/internal/wedding"
)

// AdminHandler serves the admin dashboard API. Everything except Login and
// Logout sits behind requireAdmin, which checks the session cookie set by
// Login.
type AdminHandler struct {
	logger   *slog.Logger
	password string
	sessions *sessions
}

type loginRequest struct {
	Password string `json:"password" form:"password" binding:"required"`
}

func (h *AdminHandler) Login(c *gin.Context) {
	var span trace.Span
	ctx := c.Request.Context()
	ctx, span = tracer.Start(ctx, "AdminHandler.Login")
	defer span.End()

	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, span, err)
		return
	}
	if subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.password)) != 1 {
		err := errors.New("wrong password")
		h.logger.WarnContext(ctx, "admin login rejected", "remote", c.ClientIP())
		span.SetStatus(codes.Error, err.Error())
		c.JSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "message": "Invalid password"})
		return
	}
	setSessionCookie(c, h.sessions.create(), 0)
	wedding.MustFromContext(ctx).SetIsAdmin(true)
	c.JSON(http.StatusOK, gin.H{"isAdmin": true})
}

// Logout ends the caller's session. Admin mode is left once no session
// remains.
func (h *AdminHandler) Logout(c *gin.Context) {
	token, _ := c.Cookie(sessionCookie)
	if h.sessions.valid(token) && h.sessions.drop(token) == 0 {
		wedding.MustFromContext(c.Request.Context()).SetIsAdmin(false)
	}
	setSessionCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"isAdmin": false})
}

func (h *AdminHandler) Dashboard(c *gin.Context) {
	p := wedding.MustFromContext(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"details":  p.WeddingDetails(),
		"stats":    p.Stats(),
		"warnings": p.LoadWarnings(),
	})
}

func (h *AdminHandler) Responses(c *gin.Context) {
	c.JSON(http.StatusOK, wedding.MustFromContext(c.Request.Context()).GuestResponses())
}

func (h *AdminHandler) UpdateDetails(c *gin.Context) {
	var span trace.Span
	ctx := c.Request.Context()
	ctx, span = tracer.Start(ctx, "AdminHandler.UpdateDetails")
	defer span.End()

	var patch model.WeddingDetailsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, span, err)
		return
	}
	p := wedding.MustFromContext(ctx)
	if err := p.UpdateWeddingDetails(ctx, patch); err != nil {
		fail(c, span, http.StatusInternalServerError, "SAVE_FAILED", err)
		return
	}
	respond(c, http.StatusOK, gin.H{"details": p.WeddingDetails()})
}

func (h *AdminHandler) AddStoryEvent(c *gin.Context) {
	var span trace.Span
	ctx := c.Request.Context()
	ctx, span = tracer.Start(ctx, "AdminHandler.AddStoryEvent")
	defer span.End()

	var e model.StoryEvent
	if err := c.ShouldBindJSON(&e); err != nil {
		badRequest(c, span, err)
		return
	}
	id, err := wedding.MustFromContext(ctx).AddStoryEvent(ctx, e)
	if err != nil {
		fail(c, span, http.StatusInternalServerError, "SAVE_FAILED", err)
		return
	}
	respond(c, http.StatusCreated, gin.H{"id": id})
}

func (h *AdminHandler) ReplaceStory(c *gin.Context) {
	var span trace.Span
	ctx := c.Request.Context()
	ctx, span = tracer.Start(ctx, "AdminHandler.ReplaceStory")
	defer span.End()

	var events []model.StoryEvent
	if err := c.ShouldBindJSON(&events); err != nil {
		badRequest(c, span, err)
		return
	}
	p := wedding.MustFromContext(ctx)
	if err := p.UpdateStoryEvents(ctx, events); err != nil {
		fail(c, span, http.StatusInternalServerError, "SAVE_FAILED", err)
		return
	}
	respond(c, http.StatusOK, gin.H{"story": p.StoryEvents()})
}

func (h *AdminHandler) RemoveStoryEvent(c *gin.Context) {
	var span trace.Span
	ctx := c.Request.Context()
	id := c.Param("id")
	ctx, span = tracer.Start(ctx, "AdminHandler.RemoveStoryEvent", trace.WithAttributes(attribute.String("id", id)))
	defer span.End()

	if err := wedding.MustFromContext(ctx).RemoveStoryEvent(ctx, id); err != nil {
		fail(c, span, http.StatusInternalServerError, "SAVE_FAILED", err)
		return
	}
	respond(c, http.StatusOK, gin.H{"id": id})
}

func (h *AdminHandler) AddRegistryItem(c *gin.Context) {
	var span trace.Span
	ctx := c.Request.Context()
	ctx, span = tracer.Start(ctx, "AdminHandler.AddRegistryItem")
	defer span.End()

	var item model.GiftRegistryItem
	if err := c.ShouldBindJSON(&item); err != nil {
		badRequest(c, span, err)
		return
	}
	id, err := wedding.MustFromContext(ctx).AddGiftRegistryItem(ctx, item)
	if err != nil {
		fail(c, span, http.StatusInternalServerError, "SAVE_FAILED", err)
		return
	}
	respond(c, http.StatusCreated, gin.H{"id": id})
}

func (h *AdminHandler) ReplaceRegistry(c *gin.Context) {
	var span trace.Span
	ctx := c.Request.Context()
	ctx, span = tracer.Start(ctx, "AdminHandler.ReplaceRegistry")
	defer span.End()

	var items []model.GiftRegistryItem
	if err := c.ShouldBindJSON(&items); err != nil {
		badRequest(c, span, err)
		return
	}
	p := wedding.MustFromContext(ctx)
	if err := p.UpdateGiftRegistry(ctx, items); err != nil {
		fail(c, span, http.StatusInternalServerError, "SAVE_FAILED", err)
		return
	}
	respond(c, http.StatusOK, gin.H{"registry": p.GiftRegistry()})
}

func (h *AdminHandler) UpdateRegistryItem(c *gin.Context) {
	var span trace.Span
	ctx := c.Request.Context()
	id := c.Param("id")
	ctx, span = tracer.Start(ctx, "AdminHandler.UpdateRegistryItem", trace.WithAttributes(attribute.String("id", id)))
	defer span.End()

	var patch model.GiftRegistryPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, span, err)
		return
	}
	p := wedding.MustFromContext(ctx)
	if !slices.ContainsFunc(p.GiftRegistry(), func(g model.GiftRegistryItem) bool { return g.ID == id }) {
		notFound(c)
		return
	}
	if err := p.UpdateGiftRegistryItem(ctx, id, patch); err != nil {
		fail(c, span, http.StatusInternalServerError, "SAVE_FAILED", err)
		return
	}
	respond(c, http.StatusOK, gin.H{"id": id})
}

func (h *AdminHandler) RemoveRegistryItem(c *gin.Context) {
	var span trace.Span
	ctx := c.Request.Context()
	id := c.Param("id")
	ctx, span = tracer.Start(ctx, "AdminHandler.RemoveRegistryItem", trace.WithAttributes(attribute.String("id", id)))
	defer span.End()

	if err := wedding.MustFromContext(ctx).RemoveGiftRegistryItem(ctx, id); err != nil {
		fail(c, span, http.StatusInternalServerError, "SAVE_FAILED", err)
		return
	}
	respond(c, http.StatusOK, gin.H{"id": id})
}

func (h *AdminHandler) RemoveGalleryItem(c *gin.Context) {
	var span trace.Span
	ctx := c.Request.Context()
	id := c.Param("id")
	ctx, span = tracer.Start(ctx, "AdminHandler.RemoveGalleryItem", trace.WithAttributes(attribute.String("id", id)))
	defer span.End()

	if err := wedding.MustFromContext(ctx).RemoveGalleryItem(ctx, id); err != nil {
		fail(c, span, http.StatusInternalServerError, "SAVE_FAILED", err)
		return
	}
	respond(c, http.StatusOK, gin.H{"id": id})
}

// Export returns every collection as one flat object keyed by dotted paths,
// e.g. "storyEvents.0.title".
func (h *AdminHandler) Export(c *gin.Context) {
	var span trace.Span
	ctx := c.Request.Context()
	ctx, span = tracer.Start(ctx, "AdminHandler.Export")
	defer span.End()

	p := wedding.MustFromContext(ctx)
	out, err := json.Marshal(gin.H{
		"weddingDetails": p.WeddingDetails(),
		"storyEvents":    p.StoryEvents(),
		"guestResponses": p.GuestResponses(),
		"giftRegistry":   p.GiftRegistry(),
		"galleryItems":   p.GalleryItems(),
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "could not encode export", "error", err)
		fail(c, span, http.StatusInternalServerError, "EXPORT_FAILED", err)
		return
	}
	var nested map[string]any
	if err := json.Unmarshal(out, &nested); err != nil {
		fail(c, span, http.StatusInternalServerError, "EXPORT_FAILED", err)
		return
	}
	flat, err := flatten.Flatten(nested, "", flatten.DotStyle)
	if err != nil {
		h.logger.ErrorContext(ctx, "could not flatten export", "error", err)
		fail(c, span, http.StatusInternalServerError, "EXPORT_FAILED", err)
		return
	}
	span.SetAttributes(attribute.Int("keys", len(flat)))
	c.JSON(http.StatusOK, flat)
}
