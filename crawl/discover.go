package crawl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fwojciec/sitelinks"
)

var _ sitelinks.Discoverer = (*Discoverer)(nil)

// Discoverer runs a discovery: robots check, sitemap resolution, crawl
// fallback and persistence of the final link set.
type Discoverer struct {
	Robots   sitelinks.RobotsChecker // nil allows every URL
	Sitemaps sitelinks.SitemapResolver
	Crawler  sitelinks.FallbackCrawler
	Store    sitelinks.LinkStore
	Logger   *slog.Logger

	// NewFrontier creates the frontier for each session. Defaults to an
	// in-memory Frontier.
	NewFrontier func() sitelinks.URLFrontier
}

// Discover produces the link set for siteURL.
//
// A non-empty sitemap result wins and the crawler is never started.
// Otherwise the crawler runs; whatever it accumulated is persisted even when
// it fails. A run that yields no links at all persists an empty artifact and
// returns EDISCOVERY.
func (d *Discoverer) Discover(ctx context.Context, siteURL string) (*sitelinks.DiscoveryResult, error) {
	root, err := sitelinks.ParseRootURL(siteURL)
	if err != nil {
		return nil, err
	}
	if d.Robots != nil && !d.Robots.Allowed(ctx, root.String()) {
		return nil, sitelinks.Errorf(sitelinks.EDISALLOWED, "robots.txt disallows crawling %s", root)
	}

	s := sitelinks.NewSession(root, d.newFrontier())
	log := d.logger().With("run_id", s.RunID, "url", s.RootURL)
	log.Info("discovery started")

	sitemapLinks, err := d.Sitemaps.ResolveSitemap(ctx, s)
	s.Links.AddAll(sitemapLinks)
	if err != nil {
		if perr := d.persist(ctx, s); perr != nil {
			log.Warn("persist partial links", "error", perr)
		}
		return nil, fmt.Errorf("discovery interrupted during sitemap resolution: %w", err)
	}
	if len(sitemapLinks) > 0 {
		log.Info("sitemap resolved", "links", s.Links.Len(), "sitemaps", s.Sitemaps.Len())
		if err := d.persist(ctx, s); err != nil {
			return nil, err
		}
		return d.result(s, sitelinks.SourceSitemap), nil
	}

	sitemapOutcome := fmt.Sprintf("sitemap yielded no links (%d sitemaps fetched)", s.Sitemaps.Len())
	log.Info("falling back to crawl", "reason", sitemapOutcome)

	crawled, crawlErr := d.Crawler.Crawl(ctx, s)
	s.Links.AddAll(crawled)
	if err := d.persist(ctx, s); err != nil {
		return nil, err
	}

	if crawlErr != nil {
		if ctx.Err() != nil && (errors.Is(crawlErr, context.Canceled) || errors.Is(crawlErr, context.DeadlineExceeded)) {
			log.Warn("discovery interrupted", "links", s.Links.Len())
			return nil, fmt.Errorf("discovery interrupted after %d links: %w", s.Links.Len(), crawlErr)
		}
		return nil, sitelinks.Errorf(sitelinks.EDISCOVERY, "both sitemap and crawl failed: %s; crawl: %v", sitemapOutcome, crawlErr)
	}
	if s.Links.Len() == 0 {
		return nil, sitelinks.Errorf(sitelinks.EDISCOVERY, "no links found: %s; crawl found none", sitemapOutcome)
	}

	log.Info("crawl finished", "links", s.Links.Len())
	return d.result(s, sitelinks.SourceCrawl), nil
}

// persist writes the session's sorted link set. The write is not aborted
// by cancellation of ctx.
func (d *Discoverer) persist(ctx context.Context, s *sitelinks.Session) error {
	if d.Store == nil {
		return nil
	}
	if err := d.Store.Save(context.WithoutCancel(ctx), s.Links.Sorted()); err != nil {
		return fmt.Errorf("persist links: %w", err)
	}
	return nil
}

func (d *Discoverer) result(s *sitelinks.Session, source sitelinks.Source) *sitelinks.DiscoveryResult {
	links := s.Links.Sorted()
	return &sitelinks.DiscoveryResult{
		RunID:   s.RunID,
		Source:  source,
		Links:   links,
		Count:   len(links),
		Elapsed: time.Since(s.Started),
		Digest:  Digest(links),
	}
}

func (d *Discoverer) newFrontier() sitelinks.URLFrontier {
	if d.NewFrontier != nil {
		return d.NewFrontier()
	}
	return NewFrontier()
}

func (d *Discoverer) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}
