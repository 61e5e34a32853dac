// Package logging sets up the process-wide slog logger and the
// context-scoped field helpers used to attach delivery-id, repository, and
// pipeline-name attributes to log lines without threading a logger
// parameter through every call.
package logging

import (
	"context"
	"log/slog"
	"os"

	slogcontext "github.com/veqryn/slog-context"
)

// Format selects the slog handler implementation.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// New builds the process-wide logger. Callers should install it with
// slog.SetDefault so that packages using the package-level slog functions
// pick it up too.
func New(format Format, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch format {
	case FormatText:
		handler = slog.NewTextHandler(os.Stderr, opts)
	default:
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}

	// slogcontext.NewHandler lets WithFields below attach attributes that
	// are picked up automatically by any logger obtained via FromContext,
	// without needing to pass *slog.Logger through call chains.
	return slog.New(slogcontext.NewHandler(handler, nil))
}

// WithFields returns a context carrying the given attributes, to be picked
// up by every log call made with FromContext(ctx) further down the call
// chain (e.g. delivery-id for the lifetime of one webhook dispatch).
func WithFields(ctx context.Context, args ...any) context.Context {
	return slogcontext.Prepend(ctx, args...)
}

// FromContext returns a logger enriched with whatever fields were attached
// via WithFields along this context's lineage.
func FromContext(ctx context.Context) *slog.Logger {
	return slogcontext.FromCtx(ctx)
}
