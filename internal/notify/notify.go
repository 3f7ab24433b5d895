// Copyright (C) 2024 the quixsi maintainers
// See root-dir/LICENSE for more information

// Package notify delivers short user facing messages ("toasts") about the
// outcome of a mutation. Delivery is fire-and-forget.
package notify

import (
	"context"
	"log/slog"

	"github.com/quixsi/wedding/internal/model"
)

type Sink interface {
	Notify(ctx context.Context, message string, severity model.Severity)
}

// SinkFunc adapts a plain function to a Sink.
type SinkFunc func(ctx context.Context, message string, severity model.Severity)

func (f SinkFunc) Notify(ctx context.Context, message string, severity model.Severity) {
	f(ctx, message, severity)
}

var Discard Sink = SinkFunc(func(context.Context, string, model.Severity) {})

// LogSink writes every notification to a slog.Logger, errors at error level.
type LogSink struct {
	Logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{Logger: logger.WithGroup("notify")}
}

func (l *LogSink) Notify(ctx context.Context, message string, severity model.Severity) {
	level := slog.LevelInfo
	if severity == model.SeverityError {
		level = slog.LevelError
	}
	l.Logger.Log(ctx, level, message, "severity", severity.String())
}

// Multi forwards each notification to all sinks in order.
func Multi(sinks ...Sink) Sink {
	return SinkFunc(func(ctx context.Context, message string, severity model.Severity) {
		for _, s := range sinks {
			s.Notify(ctx, message, severity)
		}
	})
}
