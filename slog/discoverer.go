package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/sitelinks"
)

// Ensure LoggingDiscoverer implements sitelinks.Discoverer.
var _ sitelinks.Discoverer = (*LoggingDiscoverer)(nil)

// LoggingDiscoverer wraps a Discoverer with logging of each run.
type LoggingDiscoverer struct {
	next   sitelinks.Discoverer
	logger *slog.Logger
}

// NewLoggingDiscoverer creates a new LoggingDiscoverer.
func NewLoggingDiscoverer(next sitelinks.Discoverer, logger *slog.Logger) *LoggingDiscoverer {
	return &LoggingDiscoverer{next: next, logger: logger}
}

// Discover delegates to the wrapped discoverer and logs the result.
func (d *LoggingDiscoverer) Discover(ctx context.Context, siteURL string) (res *sitelinks.DiscoveryResult, err error) {
	defer func(begin time.Time) {
		attrs := []any{
			"url", siteURL,
			"duration", time.Since(begin),
		}
		if res != nil {
			attrs = append(attrs,
				"run_id", res.RunID,
				"source", res.Source,
				"count", res.Count,
				"digest", res.Digest,
			)
		}
		if err != nil {
			attrs = append(attrs, "code", sitelinks.ErrorCode(err), "err", err)
			d.logger.Error("discovery", attrs...)
			return
		}
		d.logger.Info("discovery", attrs...)
	}(time.Now())
	return d.next.Discover(ctx, siteURL)
}
