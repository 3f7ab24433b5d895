// Copyright (C) 2024 the quixsi maintainers
// See root-dir/LICENSE for more information

package server

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/quixsi/wedding/internal/notify"
)

const toastHeader = "X-Toast"

// respond writes body as JSON together with the notifications raised while
// handling the request. Toasts go into the X-Toast header and the "toasts"
// field of body.
func respond(c *gin.Context, status int, body gin.H) {
	if col, ok := notify.CollectorFrom(c.Request.Context()); ok {
		if toasts := col.Drain(); len(toasts) > 0 {
			if raw, err := json.Marshal(toasts); err == nil {
				c.Header(toastHeader, string(raw))
			}
			body["toasts"] = toasts
		}
	}
	c.JSON(status, body)
}

func fail(c *gin.Context, span trace.Span, status int, code string, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	respond(c, status, gin.H{"code": code, "message": err.Error()})
}

func badRequest(c *gin.Context, span trace.Span, err error) {
	fail(c, span, http.StatusBadRequest, "INVALID_REQUEST", err)
}
