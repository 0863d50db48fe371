package sitelinks

import "context"

// SitemapResolver discovers page URLs from a site's sitemaps.
type SitemapResolver interface {
	// ResolveSitemap collects the sitemaps declared in robots.txt, or the
	// conventional sitemap locations when none are declared, and expands
	// sitemap indexes recursively. Each sitemap URL is fetched at most once
	// per session.
	//
	// Failures of individual sitemaps contribute nothing; only context
	// cancellation is returned as an error. The result may be empty.
	ResolveSitemap(ctx context.Context, s *Session) ([]string, error)
}
