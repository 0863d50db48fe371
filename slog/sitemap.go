package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/sitelinks"
)

// Ensure LoggingSitemapResolver implements sitelinks.SitemapResolver.
var _ sitelinks.SitemapResolver = (*LoggingSitemapResolver)(nil)

// LoggingSitemapResolver wraps a SitemapResolver with logging.
type LoggingSitemapResolver struct {
	next   sitelinks.SitemapResolver
	logger *slog.Logger
}

// NewLoggingSitemapResolver creates a new LoggingSitemapResolver.
func NewLoggingSitemapResolver(next sitelinks.SitemapResolver, logger *slog.Logger) *LoggingSitemapResolver {
	return &LoggingSitemapResolver{next: next, logger: logger}
}

// ResolveSitemap delegates to the wrapped resolver and logs the operation.
func (r *LoggingSitemapResolver) ResolveSitemap(ctx context.Context, s *sitelinks.Session) (links []string, err error) {
	defer func(begin time.Time) {
		r.logger.Info("sitemap resolution",
			"url", s.RootDomain(),
			"sitemaps", s.Sitemaps.Len(),
			"count", len(links),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return r.next.ResolveSitemap(ctx, s)
}
