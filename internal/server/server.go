// Copyright (C) 2024 the quixsi maintainers
// See root-dir/LICENSE for more information

package server

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	sloggin "github.com/samber/slog-gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"

	"github.com/quixsi/wedding/internal/notify"
	"github.com/quixsi/wedding/internal/wedding"
)

type Option func(*Server)

func WithAdminPassword(password string) Option {
	return func(s *Server) { s.adminPassword = password }
}

func WithStaticDir(dir string) Option {
	return func(s *Server) { s.staticDir = dir }
}

func WithCORSOrigins(origins ...string) Option {
	return func(s *Server) { s.corsOrigins = origins }
}

func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

func NewServer(serviceName string, provider *wedding.Provider, opts ...Option) *Server {
	s := &Server{
		logger:        slog.Default().WithGroup("http"),
		serviceName:   serviceName,
		provider:      provider,
		adminPassword: "admin123",
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.handler = s.routes()
	return s
}

type Server struct {
	serviceName   string
	staticDir     string
	adminPassword string
	corsOrigins   []string
	now           func() time.Time
	logger        *slog.Logger
	provider      *wedding.Provider
	handler       http.Handler
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) routes() http.Handler {
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}
	mux := gin.New()

	mux.Use(
		sloggin.NewWithConfig(s.logger,
			sloggin.Config{
				DefaultLevel:     slog.LevelInfo,
				ClientErrorLevel: slog.LevelWarn,
				ServerErrorLevel: slog.LevelError,
			},
		),
		gin.Recovery(), otelgin.Middleware(s.serviceName), slogAddTraceAttributes,
		withProvider(s.provider),
	)

	if s.staticDir != "" {
		mux.Static("/static", s.staticDir)
	}

	api := mux.Group("/api")
	if len(s.corsOrigins) > 0 {
		api.Use(cors.New(cors.Config{
			AllowOrigins:     s.corsOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
			AllowHeaders:     []string{"Content-Type", "X-Requested-With"},
			ExposeHeaders:    []string{toastHeader},
			AllowCredentials: true,
		}))
	}

	public := &PublicHandler{logger: s.logger, now: s.now}
	api.GET("/details", public.Details)
	api.GET("/story", public.Story)
	api.GET("/registry", public.Registry)
	api.GET("/gallery", public.Gallery)
	api.GET("/countdown", public.Countdown)
	api.POST("/rsvp", public.RSVP)
	api.POST("/gallery", public.Upload)
	api.POST("/gallery/:id/like", public.Like)

	admin := &AdminHandler{logger: s.logger, password: s.adminPassword, sessions: newSessions()}
	adminArea := mux.Group("/admin")
	adminArea.POST("/login", admin.Login)
	adminArea.POST("/logout", admin.Logout)

	gated := adminArea.Group("", requireAdmin(admin.sessions))
	gated.GET("/dashboard", admin.Dashboard)
	gated.GET("/responses", admin.Responses)
	gated.PUT("/details", admin.UpdateDetails)
	gated.POST("/story", admin.AddStoryEvent)
	gated.PUT("/story", admin.ReplaceStory)
	gated.DELETE("/story/:id", admin.RemoveStoryEvent)
	gated.POST("/registry", admin.AddRegistryItem)
	gated.PUT("/registry", admin.ReplaceRegistry)
	gated.PATCH("/registry/:id", admin.UpdateRegistryItem)
	gated.DELETE("/registry/:id", admin.RemoveRegistryItem)
	gated.DELETE("/gallery/:id", admin.RemoveGalleryItem)
	gated.GET("/export", admin.Export)

	mux.NoRoute(notFound)
	return mux
}

// withProvider makes the Provider and a toast collector available to every
// handler through the request context.
func withProvider(p *wedding.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, _ := notify.WithCollector(wedding.NewContext(c.Request.Context(), p))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"code": "PAGE_NOT_FOUND", "message": "Page not found"})
}

func slogAddTraceAttributes(c *gin.Context) {
	sloggin.AddCustomAttributes(c,
		slog.String("trace-id", trace.SpanFromContext(c.Request.Context()).SpanContext().TraceID().String()),
	)
	sloggin.AddCustomAttributes(c,
		slog.String("span-id", trace.SpanFromContext(c.Request.Context()).SpanContext().SpanID().String()),
	)
	c.Next()
}
