package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/sitelinks"
	"github.com/fwojciec/sitelinks/crawl"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger

	Discoverer sitelinks.Discoverer

	// Crawler is the fallback crawler behind Discoverer, exposed so commands
	// can attach progress reporting. Nil when Discoverer is injected.
	Crawler *crawl.Crawler
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose bool `short:"v" env:"SITELINKS_VERBOSE" help:"Enable debug logging"`
	LogJSON bool `name:"log-json" env:"SITELINKS_LOG_JSON" help:"Write logs as JSON"`

	Output string `short:"o" default:"urls.json" env:"SITELINKS_OUTPUT" help:"Path of the JSON link artifact"`

	UserAgent   string        `name:"user-agent" default:"Mozilla/5.0 (compatible; MyCrawler/1.0; +http://example.com)" env:"SITELINKS_USER_AGENT" help:"User-Agent for robots.txt and sitemap requests"`
	HTTPTimeout time.Duration `name:"http-timeout" default:"20s" env:"SITELINKS_HTTP_TIMEOUT" help:"Timeout for robots.txt and sitemap requests"`

	SitemapConcurrency int `name:"sitemap-concurrency" default:"8" env:"SITELINKS_SITEMAP_CONCURRENCY" help:"Sitemap documents fetched in parallel"`
	SitemapDepth       int `name:"sitemap-depth" default:"10" env:"SITELINKS_SITEMAP_DEPTH" help:"Maximum sitemap index nesting (0 = unlimited)"`

	Static           bool          `env:"SITELINKS_STATIC" help:"Crawl with plain HTTP instead of a headless browser"`
	BrowserUserAgent string        `name:"browser-user-agent" default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/114.0.0.0 Safari/537.36" env:"SITELINKS_BROWSER_USER_AGENT" help:"User-Agent presented by the browser"`
	BrowserBin       string        `name:"browser-bin" env:"SITELINKS_BROWSER_BIN" help:"Chrome/Chromium binary (default: auto-detect or download)"`
	NoSandbox        bool          `name:"no-sandbox" env:"SITELINKS_NO_SANDBOX" help:"Disable the Chrome sandbox"`
	NavTimeout       time.Duration `name:"nav-timeout" default:"60s" env:"SITELINKS_NAV_TIMEOUT" help:"Navigation timeout per page"`
	Settle           time.Duration `default:"4s" env:"SITELINKS_SETTLE" help:"Wait after DOMContentLoaded before reading the page"`
	RecycleAfter     int64         `name:"recycle-after" default:"75" env:"SITELINKS_RECYCLE_AFTER" help:"Restart the browser after this many pages (0 = never)"`

	SkipNofollow bool `name:"skip-nofollow" env:"SITELINKS_SKIP_NOFOLLOW" help:"Ignore anchors marked rel=nofollow while crawling"`

	Concurrency int           `short:"c" default:"1" env:"SITELINKS_CONCURRENCY" help:"Pages rendered in parallel"`
	RPS         float64       `default:"1" env:"SITELINKS_RPS" help:"Page renders per second per host (0 = unlimited)"`
	MaxPages    int           `name:"max-pages" default:"0" env:"SITELINKS_MAX_PAGES" help:"Maximum pages rendered per crawl (0 = unlimited)"`
	MaxDuration time.Duration `name:"max-duration" default:"0s" env:"SITELINKS_MAX_DURATION" help:"Maximum crawl duration (0 = unlimited)"`
	Retries     int           `default:"0" env:"SITELINKS_RETRIES" help:"Retries per failed page render"`

	Discover DiscoverCmd `cmd:"" help:"Discover the links of a site and write them to the artifact"`
	Serve    ServeCmd    `cmd:"" help:"Serve discoveries over HTTP"`
}

// DiscoverCmd is the "discover" subcommand.
type DiscoverCmd struct {
	URL   string `arg:"" help:"Root URL of the site"`
	Print bool   `short:"p" help:"Print discovered links to stdout"`
	Quiet bool   `short:"q" help:"Do not report crawl progress"`
}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	Addr string `default:":8000" env:"SITELINKS_ADDR" help:"Listen address"`
}
