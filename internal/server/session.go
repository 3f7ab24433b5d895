// Copyright (C) 2024 the quixsi maintainers
// See root-dir/LICENSE for more information

package server

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/quixsi/wedding/internal/wedding"
)

const sessionCookie = "wedding_admin"

// sessions holds the tokens of logged in admin clients. The Provider admin
// flag stays set while at least one of them is alive.
type sessions struct {
	mu     sync.Mutex
	tokens map[string]struct{}
}

func newSessions() *sessions {
	return &sessions{tokens: make(map[string]struct{})}
}

func (s *sessions) create() string {
	token := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = struct{}{}
	return token
}

func (s *sessions) valid(token string) bool {
	if token == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tokens[token]
	return ok
}

// drop ends the session and reports how many are left.
func (s *sessions) drop(token string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
	return len(s.tokens)
}

func setSessionCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(sessionCookie, token, maxAge, "/admin", "", c.Request.TLS != nil, true)
}

// requireAdmin lets a request through only if it carries a live session
// cookie and the Provider is in admin mode.
func requireAdmin(s *sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(sessionCookie)
		p, err := wedding.FromContext(c.Request.Context())
		if err != nil || !s.valid(token) || !p.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "message": "Admin login required"})
			return
		}
		c.Next()
	}
}
