// Package robotstxt answers robots.txt permission questions using
// github.com/temoto/robotstxt.
package robotstxt

import (
	"context"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/fwojciec/sitelinks"
	sitelinkshttp "github.com/fwojciec/sitelinks/http"
	"github.com/temoto/robotstxt"
	"golang.org/x/sync/singleflight"
)

// WildcardAgent is the user-agent group consulted by default.
const WildcardAgent = "*"

// DefaultTTL is how long a parsed robots.txt is reused before it is fetched
// again.
const DefaultTTL = time.Hour

var (
	_ sitelinks.RobotsChecker    = (*Checker)(nil)
	_ sitelinkshttp.RobotsSource = (*Checker)(nil)
)

// Checker fetches a site's robots.txt and tests URLs against it.
//
// It fails open: network errors, 5xx responses and unparsable files all
// allow crawling. Other statuses follow robotstxt semantics, so 4xx means
// no restrictions. Parsed files are cached per scheme://host for the TTL and
// concurrent first checks of a host share one fetch. Fail-open results are
// never cached, so the next check fetches again.
type Checker struct {
	client *sitelinkshttp.Client
	agent  string
	logger *slog.Logger
	ttl    time.Duration
	now    func() time.Time

	mu    sync.Mutex
	cache map[string]cacheEntry
	group singleflight.Group
}

type cacheEntry struct {
	robots  *robotstxt.RobotsData
	fetched time.Time
}

// Option configures a Checker.
type Option func(*Checker)

// WithAgent sets the user-agent group to test against.
func WithAgent(agent string) Option {
	return func(c *Checker) {
		c.agent = agent
	}
}

// WithLogger sets the logger for fail-open decisions.
func WithLogger(l *slog.Logger) Option {
	return func(c *Checker) {
		c.logger = l
	}
}

// WithTTL sets how long a parsed robots.txt stays cached. Values <= 0
// disable caching.
func WithTTL(d time.Duration) Option {
	return func(c *Checker) {
		c.ttl = d
	}
}

// WithClock overrides the time source used for cache expiry.
func WithClock(now func() time.Time) Option {
	return func(c *Checker) {
		c.now = now
	}
}

// NewChecker creates a Checker fetching through client.
func NewChecker(client *sitelinkshttp.Client, opts ...Option) *Checker {
	if client == nil {
		client = sitelinkshttp.NewClient()
	}
	c := &Checker{
		client: client,
		agent:  WildcardAgent,
		logger: slog.Default(),
		ttl:    DefaultTTL,
		now:    time.Now,
		cache:  make(map[string]cacheEntry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Allowed reports whether rawURL may be crawled.
func (c *Checker) Allowed(ctx context.Context, rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return true
	}

	robots := c.Robots(ctx, u.Scheme+"://"+u.Host)
	if robots == nil {
		return true
	}
	return robots.TestAgent(u.RequestURI(), c.agent)
}

// Robots returns the parsed robots.txt for domain (scheme://host), or nil
// when it could not be fetched or parsed. The result is shared with Allowed,
// so one discovery reads a single document for permissions and Sitemap
// directives.
func (c *Checker) Robots(ctx context.Context, domain string) *robotstxt.RobotsData {
	if robots, ok := c.cached(domain); ok {
		return robots
	}

	v, _, _ := c.group.Do(domain, func() (any, error) {
		robots := c.fetch(ctx, domain)
		if robots != nil && c.ttl > 0 {
			c.mu.Lock()
			c.cache[domain] = cacheEntry{robots: robots, fetched: c.now()}
			c.mu.Unlock()
		}
		return robots, nil
	})
	return v.(*robotstxt.RobotsData)
}

func (c *Checker) cached(domain string) (*robotstxt.RobotsData, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.cache[domain]
	if !ok {
		return nil, false
	}
	if c.now().Sub(entry.fetched) >= c.ttl {
		delete(c.cache, domain)
		return nil, false
	}
	return entry.robots, true
}

func (c *Checker) fetch(ctx context.Context, domain string) *robotstxt.RobotsData {
	robotsURL := domain + "/robots.txt"
	resp, err := c.client.Get(ctx, robotsURL)
	if err != nil {
		c.logger.Debug("robots.txt unavailable, allowing", "url", robotsURL, "error", err)
		return nil
	}
	if resp.StatusCode >= 500 {
		c.logger.Debug("robots.txt server error, allowing", "url", robotsURL, "status", resp.StatusCode)
		return nil
	}
	robots, err := robotstxt.FromStatusAndBytes(resp.StatusCode, resp.Body)
	if err != nil {
		c.logger.Debug("robots.txt unparsable, allowing", "url", robotsURL, "status", resp.StatusCode, "error", err)
		return nil
	}
	return robots
}
