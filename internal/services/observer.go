package services

import (
	"context"
	"log/slog"

	"pvcli/internal/analysis"
)

// slogObserver forwards core warnings to the request logger
type slogObserver struct {
	ctx    context.Context
	logger *slog.Logger
}

func (o slogObserver) Warn(w analysis.Warning) {
	o.logger.DebugContext(o.ctx, "data quality warning",
		slog.String("kind", string(w.Kind)),
		slog.Int("line", w.Line),
		slog.String("value", w.Value),
		slog.String("message", w.Message))
}
