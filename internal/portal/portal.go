// Copyright (C) 2024 the quixsi maintainers
// See root-dir/LICENSE for more information

// Package portal renders the public wedding site.
package portal

import (
	"log/slog"
	"net/http"
	"time"

	sloghttp "github.com/samber/slog-http"

	templates "github.com/quixsi/wedding/internal/portal/tmp"
	"github.com/quixsi/wedding/internal/wedding"
)

type Portal struct {
	logger    *slog.Logger
	routes    map[string]http.Handler
	templates *templates.TemplateHandler
	provider  *wedding.Provider
	now       func() time.Time
}

func NewPortal(
	logger *slog.Logger,
	templates *templates.TemplateHandler,
	provider *wedding.Provider,
	now func() time.Time,
) *Portal {
	if now == nil {
		now = time.Now
	}
	return &Portal{
		logger:    logger.WithGroup("portal"),
		templates: templates,
		provider:  provider,
		now:       now,
	}
}

// Handler returns the portal mux wrapped in request logging.
func (p *Portal) Handler() http.Handler {
	mux := http.NewServeMux()

	loggerMW := sloghttp.NewWithConfig(
		p.logger, sloghttp.Config{
			DefaultLevel:     slog.LevelInfo,
			ClientErrorLevel: slog.LevelWarn,
			ServerErrorLevel: slog.LevelError,
			WithUserAgent:    true,
		},
	)

	p.routes = p.addRoutes()
	registerRoutes(mux, p.routes)

	return loggerMW(withProvider(p.provider, mux))
}
