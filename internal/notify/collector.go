// Copyright (C) 2024 the quixsi maintainers
// See root-dir/LICENSE for more information

package notify

import (
	"context"
	"sync"

	"github.com/quixsi/wedding/internal/model"
)

type Toast struct {
	Message  string         `json:"message"`
	Severity model.Severity `json:"severity"`
}

// Collector buffers the notifications raised while serving one request so the
// handler can hand them back to the client.
type Collector struct {
	mu     sync.Mutex
	toasts []Toast
}

func (c *Collector) Notify(_ context.Context, message string, severity model.Severity) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.toasts = append(c.toasts, Toast{Message: message, Severity: severity})
}

// Drain returns the buffered toasts and empties the buffer.
func (c *Collector) Drain() []Toast {
	c.mu.Lock()
	defer c.mu.Unlock()
	res := c.toasts
	c.toasts = nil
	return res
}

type collectorKey struct{}

func WithCollector(ctx context.Context) (context.Context, *Collector) {
	c := &Collector{}
	return context.WithValue(ctx, collectorKey{}, c), c
}

func CollectorFrom(ctx context.Context) (*Collector, bool) {
	c, ok := ctx.Value(collectorKey{}).(*Collector)
	return c, ok
}

// ContextSink hands notifications to the Collector found in the context, if
// any, and drops them otherwise.
var ContextSink Sink = SinkFunc(func(ctx context.Context, message string, severity model.Severity) {
	if c, ok := CollectorFrom(ctx); ok {
		c.Notify(ctx, message, severity)
	}
})
