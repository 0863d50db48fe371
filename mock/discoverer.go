package mock

import (
	"context"

	"github.com/fwojciec/sitelinks"
)

var _ sitelinks.Discoverer = (*Discoverer)(nil)

// Discoverer is a mock implementation of sitelinks.Discoverer.
type Discoverer struct {
	DiscoverFn func(ctx context.Context, siteURL string) (*sitelinks.DiscoveryResult, error)
}

func (d *Discoverer) Discover(ctx context.Context, siteURL string) (*sitelinks.DiscoveryResult, error) {
	return d.DiscoverFn(ctx, siteURL)
}

var _ sitelinks.FallbackCrawler = (*FallbackCrawler)(nil)

// FallbackCrawler is a mock implementation of sitelinks.FallbackCrawler.
type FallbackCrawler struct {
	CrawlFn func(ctx context.Context, s *sitelinks.Session) ([]string, error)
}

func (c *FallbackCrawler) Crawl(ctx context.Context, s *sitelinks.Session) ([]string, error) {
	return c.CrawlFn(ctx, s)
}
