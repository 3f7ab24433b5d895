// Copyright (C) 2024 the quixsi maintainers
// See root-dir/LICENSE for more information

package portal

import (
	"net/http"

	"github.com/quixsi/wedding/internal/notify"
	"github.com/quixsi/wedding/internal/wedding"
)

// register provided routes to http.ServerMux
func registerRoutes(
	mux *http.ServeMux,
	routes map[string]http.Handler,
) {
	for route, handler := range routes {
		mux.Handle(route, handler)
	}
}

func (p *Portal) addRoutes() map[string]http.Handler {
	routes := make(map[string]http.Handler)

	routes["GET /{$}"] = http.HandlerFunc(p.home)
	routes["GET /story"] = http.HandlerFunc(p.story)
	routes["GET /registry"] = http.HandlerFunc(p.registry)
	routes["GET /gallery"] = http.HandlerFunc(p.gallery)
	routes["POST /rsvp"] = http.HandlerFunc(p.rsvp)

	return routes
}

func withProvider(provider *wedding.Provider, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, _ := notify.WithCollector(wedding.NewContext(r.Context(), provider))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
