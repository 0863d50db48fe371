package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/sitelinks"
	"github.com/fwojciec/sitelinks/crawl"
	"github.com/fwojciec/sitelinks/fs"
	"github.com/fwojciec/sitelinks/goquery"
	sitelinkshttp "github.com/fwojciec/sitelinks/http"
	"github.com/fwojciec/sitelinks/robotstxt"
	"github.com/fwojciec/sitelinks/rod"
	sitelinksslog "github.com/fwojciec/sitelinks/slog"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Discoverer replaces the wired discovery pipeline. Set before calling
	// Run for end-to-end testing.
	Discoverer sitelinks.Discoverer
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{}
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("sitelinks"),
		kong.Description("Discover every link of a website from its sitemaps or by crawling it"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'sitelinks --help' to see available commands")
	}
	if cmd := args[0]; cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	deps.Logger = NewLogger(stderr, cli.Verbose, cli.LogJSON)
	if m.Discoverer != nil {
		deps.Discoverer = m.Discoverer
	} else {
		deps.Crawler, deps.Discoverer = wire(cli, deps.Logger)
	}

	return kongCtx.Run(deps)
}

// wire builds the discovery pipeline from the parsed flags.
func wire(cli *CLI, logger *slog.Logger) (*crawl.Crawler, sitelinks.Discoverer) {
	client := sitelinkshttp.NewClient(
		sitelinkshttp.WithTimeout(cli.HTTPTimeout),
		sitelinkshttp.WithUserAgent(cli.UserAgent),
	)
	robots := robotstxt.NewChecker(client, robotstxt.WithLogger(logger))
	sitemaps := sitelinkshttp.NewSitemapService(client,
		sitelinkshttp.WithLogger(logger),
		sitelinkshttp.WithMaxDepth(cli.SitemapDepth),
		sitelinkshttp.WithMaxInFlight(cli.SitemapConcurrency),
		sitelinkshttp.WithRobotsSource(robots),
	)
	store := sitelinksslog.NewLoggingStore(fs.NewJSONStore(cli.Output), logger)

	var launcher sitelinks.Launcher
	if cli.Static {
		launcher = sitelinkshttp.NewFetcher(client)
	} else {
		launcher = &rod.Launcher{
			ManagerOptions: []rod.ManagerOption{
				rod.WithMaxPages(cli.RecycleAfter),
				rod.WithBrowserBin(cli.BrowserBin),
				rod.WithNoSandbox(cli.NoSandbox),
			},
			FetcherOptions: []rod.FetcherOption{
				rod.WithNavigationTimeout(cli.NavTimeout),
				rod.WithSettleInterval(cli.Settle),
				rod.WithUserAgent(cli.BrowserUserAgent),
			},
		}
	}

	crawler := &crawl.Crawler{
		Launcher:    sitelinksslog.NewLoggingLauncher(launcher, logger),
		Links:       &goquery.LinkExtractor{SkipNofollow: cli.SkipNofollow},
		Store:       store,
		RateLimiter: crawl.NewDomainLimiter(cli.RPS),
		Logger:      logger,
		Concurrency: cli.Concurrency,
		MaxPages:    cli.MaxPages,
		MaxDuration: cli.MaxDuration,
		RetryDelays: crawl.BackoffDelays(cli.Retries),
	}

	discoverer := &crawl.Discoverer{
		Robots:   sitelinksslog.NewLoggingRobots(robots, logger),
		Sitemaps: sitelinksslog.NewLoggingSitemapResolver(sitemaps, logger),
		Crawler:  crawler,
		Store:    store,
		Logger:   logger,
	}
	return crawler, sitelinksslog.NewLoggingDiscoverer(discoverer, logger)
}
