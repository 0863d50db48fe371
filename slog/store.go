package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/sitelinks"
)

// Ensure LoggingStore implements sitelinks.LinkStore.
var _ sitelinks.LinkStore = (*LoggingStore)(nil)

// LoggingStore wraps a LinkStore with debug logging. The crawler saves after
// every page, so successful saves log at debug level and failures at warn.
type LoggingStore struct {
	next   sitelinks.LinkStore
	logger *slog.Logger
}

// NewLoggingStore creates a new LoggingStore.
func NewLoggingStore(next sitelinks.LinkStore, logger *slog.Logger) *LoggingStore {
	return &LoggingStore{next: next, logger: logger}
}

// Save delegates to the wrapped store.
func (s *LoggingStore) Save(ctx context.Context, links []string) (err error) {
	defer func(begin time.Time) {
		level := slog.LevelDebug
		if err != nil {
			level = slog.LevelWarn
		}
		s.logger.Log(ctx, level, "save links",
			"count", len(links),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Save(ctx, links)
}
