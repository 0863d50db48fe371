package sitelinks

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Source identifies which strategy produced a discovery result.
type Source string

// Discovery strategies.
const (
	SourceNone    Source = ""
	SourceSitemap Source = "sitemap"
	SourceCrawl   Source = "crawl"
)

// Session holds the mutable state of a single discovery run. Components
// receive the session explicitly instead of sharing package-level state.
// Links and Sitemaps only grow during a run.
type Session struct {
	// RunID identifies the run in logs and responses.
	RunID string

	// RootURL is the URL the run was started with.
	RootURL string

	// RootHost is the host[:port] that defines crawl scope.
	RootHost string

	// Started is when the session was created.
	Started time.Time

	// Links accumulates every discovered URL.
	Links *LinkSet

	// Sitemaps records sitemap URLs already fetched in this run.
	Sitemaps *LinkSet

	// Frontier holds in-scope URLs awaiting a visit and the visited set.
	Frontier URLFrontier

	rootDomain string
}

// NewSession creates a session for root. The frontier may be nil for runs
// that never fall back to crawling.
func NewSession(root *url.URL, frontier URLFrontier) *Session {
	return &Session{
		RunID:      uuid.NewString(),
		RootURL:    root.String(),
		RootHost:   root.Host,
		Started:    time.Now(),
		Links:      NewLinkSet(),
		Sitemaps:   NewLinkSet(),
		Frontier:   frontier,
		rootDomain: root.Scheme + "://" + root.Host,
	}
}

// RootDomain returns scheme://host of the root URL.
func (s *Session) RootDomain() string {
	return s.rootDomain
}

// ParseRootURL validates a user-supplied root URL.
func ParseRootURL(rawURL string) (*url.URL, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, Errorf(EINVALID, "URL required")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, Errorf(EINVALID, "invalid URL %q: %v", rawURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, Errorf(EINVALID, "URL %q must use http or https", rawURL)
	}
	if u.Host == "" {
		return nil, Errorf(EINVALID, "URL %q has no host", rawURL)
	}
	return u, nil
}

// DiscoveryResult is the outcome of a discovery run.
type DiscoveryResult struct {
	RunID   string
	Source  Source
	Links   []string // sorted
	Count   int
	Elapsed time.Duration

	// Digest fingerprints the sorted link set; equal sets have equal digests.
	Digest string
}

// Discoverer produces the full link set for a site.
type Discoverer interface {
	// Discover checks robots.txt, resolves sitemaps and falls back to
	// crawling when they yield nothing. The final set is persisted.
	Discover(ctx context.Context, siteURL string) (*DiscoveryResult, error)
}

// FallbackCrawler traverses a site when sitemaps yield no links.
type FallbackCrawler interface {
	// Crawl visits every reachable in-scope page starting from the session
	// root, accumulating links into the session. It returns the sorted
	// links accumulated so far, also on error.
	Crawl(ctx context.Context, s *Session) ([]string, error)
}
