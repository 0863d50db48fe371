package http

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/beevik/etree"
	"github.com/fwojciec/sitelinks"
	"github.com/temoto/robotstxt"
	"golang.org/x/net/html/charset"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Sitemap resolution defaults.
const (
	DefaultSitemapMaxDepth    = 10
	DefaultSitemapMaxInFlight = 8
)

// SitemapNamespace is the sitemaps.org XML namespace.
const SitemapNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// ConventionalSitemapPaths are tried, in order, when robots.txt declares no
// sitemap.
var ConventionalSitemapPaths = []string{
	"/sitemap.xml",
	"/sitemap_index.xml",
	"/media/sitemap/sitemap.xml",
	"/sitemaps/sitemap.xml",
	"/sitemap/sitemap.xml",
}

var _ sitelinks.SitemapResolver = (*SitemapService)(nil)

// RobotsSource supplies a site's parsed robots.txt. A nil result means the
// file is unavailable.
type RobotsSource interface {
	Robots(ctx context.Context, domain string) *robotstxt.RobotsData
}

// SitemapService resolves a site's sitemap tree over HTTP.
type SitemapService struct {
	client   *Client
	logger   *slog.Logger
	maxDepth int
	sem      *semaphore.Weighted
	robots   RobotsSource
}

// SitemapOption configures a SitemapService.
type SitemapOption func(*SitemapService)

// WithLogger sets the logger for per-sitemap failures.
func WithLogger(l *slog.Logger) SitemapOption {
	return func(s *SitemapService) {
		s.logger = l
	}
}

// WithMaxDepth limits how many index levels below the initial candidates
// are followed. Zero means unlimited.
func WithMaxDepth(n int) SitemapOption {
	return func(s *SitemapService) {
		s.maxDepth = n
	}
}

// WithMaxInFlight caps concurrent sitemap HTTP requests.
func WithMaxInFlight(n int) SitemapOption {
	return func(s *SitemapService) {
		if n > 0 {
			s.sem = semaphore.NewWeighted(int64(n))
		}
	}
}

// WithRobotsSource reads Sitemap directives from src instead of fetching
// robots.txt again.
func WithRobotsSource(src RobotsSource) SitemapOption {
	return func(s *SitemapService) {
		s.robots = src
	}
}

// NewSitemapService creates a SitemapService using client.
// If client is nil, NewClient() is used.
func NewSitemapService(client *Client, opts ...SitemapOption) *SitemapService {
	if client == nil {
		client = NewClient()
	}
	s := &SitemapService{
		client:   client,
		logger:   slog.Default(),
		maxDepth: DefaultSitemapMaxDepth,
		sem:      semaphore.NewWeighted(DefaultSitemapMaxInFlight),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ResolveSitemap returns every page URL reachable through the site's
// sitemaps, sorted and unfiltered. Sitemaps come from robots.txt Sitemap:
// directives or, failing that, the conventional paths.
//
// Candidates and the children of index documents are resolved concurrently.
// Each sitemap URL is fetched at most once per session, so cyclic indexes
// terminate. A sitemap that fails to fetch or parse contributes nothing; only
// context cancellation is returned as an error, together with the URLs
// gathered so far.
func (s *SitemapService) ResolveSitemap(ctx context.Context, sess *sitelinks.Session) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	domain := sess.RootDomain()
	candidates := s.robotsSitemaps(ctx, domain)
	if len(candidates) == 0 {
		for _, p := range ConventionalSitemapPaths {
			candidates = append(candidates, domain+p)
		}
	}

	pages := sitelinks.NewLinkSet()
	g, gctx := errgroup.WithContext(ctx)
	for _, u := range candidates {
		g.Go(func() error {
			return s.resolve(gctx, sess, pages, u, 0)
		})
	}
	err := g.Wait()

	links := pages.Sorted()
	s.logger.Debug("sitemap resolution finished",
		"domain", domain,
		"sitemaps", sess.Sitemaps.Len(),
		"links", len(links))
	return links, err
}

// resolve fetches one sitemap document and recurses into its children.
// Children are joined before it returns.
func (s *SitemapService) resolve(ctx context.Context, sess *sitelinks.Session, pages *sitelinks.LinkSet, sitemapURL string, depth int) error {
	if !sess.Sitemaps.Add(sitemapURL) {
		return nil
	}

	body, err := s.fetch(ctx, sitemapURL)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.logger.Debug("sitemap unavailable", "url", sitemapURL, "code", sitelinks.ErrorCode(err), "error", err)
		return nil
	}

	children, locs, err := ParseSitemap(body)
	if err != nil {
		s.logger.Warn("sitemap unreadable", "url", sitemapURL, "code", sitelinks.ErrorCode(err), "error", err)
		return nil
	}
	pages.AddAll(locs)

	if len(children) == 0 {
		return nil
	}
	if s.maxDepth > 0 && depth >= s.maxDepth {
		s.logger.Warn("sitemap depth ceiling reached", "url", sitemapURL, "depth", depth, "skipped", len(children))
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, child := range children {
		g.Go(func() error {
			return s.resolve(gctx, sess, pages, child, depth+1)
		})
	}
	return g.Wait()
}

// fetch holds a semaphore slot only for the duration of the request, never
// while waiting on children.
func (s *SitemapService) fetch(ctx context.Context, sitemapURL string) ([]byte, error) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer s.sem.Release(1)
	return s.client.GetOK(ctx, sitemapURL)
}

// robotsSitemaps returns the Sitemap: directives of domain's robots.txt in
// file order. Any failure yields none.
func (s *SitemapService) robotsSitemaps(ctx context.Context, domain string) []string {
	robots := s.loadRobots(ctx, domain)
	if robots == nil {
		return nil
	}

	base, err := url.Parse(domain + "/")
	if err != nil {
		return nil
	}
	var sitemaps []string
	for _, raw := range robots.Sitemaps {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		ref, err := url.Parse(raw)
		if err != nil {
			continue
		}
		sitemaps = append(sitemaps, base.ResolveReference(ref).String())
	}
	return sitemaps
}

func (s *SitemapService) loadRobots(ctx context.Context, domain string) *robotstxt.RobotsData {
	if s.robots != nil {
		return s.robots.Robots(ctx, domain)
	}
	body, err := s.fetch(ctx, domain+"/robots.txt")
	if err != nil {
		s.logger.Debug("robots.txt unavailable for sitemap discovery", "domain", domain, "error", err)
		return nil
	}
	robots, err := robotstxt.FromBytes(body)
	if err != nil {
		s.logger.Debug("robots.txt unparsable", "domain", domain, "error", err)
		return nil
	}
	return robots
}

// ParseSitemap classifies the <loc> entries of a sitemap document.
// <sitemap><loc> entries are nested sitemaps and <url><loc> entries are
// pages. Any other <loc> is a nested sitemap when it ends in ".xml" and a
// page otherwise. Locs in foreign namespaces (image:loc, video:loc) are
// ignored.
func ParseSitemap(body []byte) (children, pages []string, err error) {
	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = charset.NewReaderLabel
	doc.ReadSettings.Permissive = true
	if err := doc.ReadFromBytes(body); err != nil {
		return nil, nil, sitelinks.Errorf(sitelinks.EPARSE, "parse sitemap XML: %v", err)
	}
	if doc.Root() == nil {
		return nil, nil, sitelinks.Errorf(sitelinks.EPARSE, "empty sitemap document")
	}

	for _, loc := range doc.FindElements("//loc") {
		if loc.Space != "" && loc.NamespaceURI() != SitemapNamespace {
			continue
		}
		link := strings.TrimSpace(loc.Text())
		if link == "" {
			continue
		}

		parent := ""
		if p := loc.Parent(); p != nil {
			parent = p.Tag
		}
		switch {
		case parent == "sitemap":
			children = append(children, link)
		case parent == "url":
			pages = append(pages, link)
		case strings.HasSuffix(link, ".xml"):
			children = append(children, link)
		default:
			pages = append(pages, link)
		}
	}
	return children, pages, nil
}
