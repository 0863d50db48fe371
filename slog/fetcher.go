package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/sitelinks"
)

// Ensure LoggingFetcher implements sitelinks.Fetcher.
var _ sitelinks.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a Fetcher with debug logging of every render.
type LoggingFetcher struct {
	next   sitelinks.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next sitelinks.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch delegates to the wrapped fetcher and logs the outcome.
func (f *LoggingFetcher) Fetch(ctx context.Context, url string) (html string, err error) {
	defer func(begin time.Time) {
		f.logger.Debug("fetch",
			"url", url,
			"bytes", len(html),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.Fetch(ctx, url)
}

// Close delegates to the wrapped fetcher.
func (f *LoggingFetcher) Close() error {
	return f.next.Close()
}

// Ensure LoggingLauncher implements sitelinks.Launcher.
var _ sitelinks.Launcher = (*LoggingLauncher)(nil)

// LoggingLauncher logs browser startup and wraps every launched Fetcher in a
// LoggingFetcher.
type LoggingLauncher struct {
	next   sitelinks.Launcher
	logger *slog.Logger
}

// NewLoggingLauncher creates a new LoggingLauncher.
func NewLoggingLauncher(next sitelinks.Launcher, logger *slog.Logger) *LoggingLauncher {
	return &LoggingLauncher{next: next, logger: logger}
}

// Launch delegates to the wrapped launcher.
func (l *LoggingLauncher) Launch(ctx context.Context) (f sitelinks.Fetcher, err error) {
	defer func(begin time.Time) {
		l.logger.Info("launch",
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())

	f, err = l.next.Launch(ctx)
	if err != nil {
		return nil, err
	}
	return NewLoggingFetcher(f, l.logger), nil
}
