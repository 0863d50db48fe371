package mock

import (
	"context"

	"github.com/fwojciec/sitelinks"
)

var _ sitelinks.SitemapResolver = (*SitemapResolver)(nil)

// SitemapResolver is a mock implementation of sitelinks.SitemapResolver.
type SitemapResolver struct {
	ResolveSitemapFn func(ctx context.Context, s *sitelinks.Session) ([]string, error)
}

func (r *SitemapResolver) ResolveSitemap(ctx context.Context, s *sitelinks.Session) ([]string, error) {
	return r.ResolveSitemapFn(ctx, s)
}
