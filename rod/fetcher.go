package rod

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/fwojciec/sitelinks"
	"github.com/go-rod/rod/lib/proto"
)

// Ensure Fetcher implements sitelinks.Fetcher at compile time.
var _ sitelinks.Fetcher = (*Fetcher)(nil)

const (
	// DefaultNavigationTimeout bounds navigation up to DOMContentLoaded.
	DefaultNavigationTimeout = 60 * time.Second

	// DefaultSettleInterval is how long a page is left running after
	// DOMContentLoaded so scripts can insert links.
	DefaultSettleInterval = 4 * time.Second

	// DefaultUserAgent is the desktop browser identity presented while
	// rendering.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/114.0.0.0 Safari/537.36"
)

// Fetcher renders pages in tabs of a shared browser.
// Fetcher is safe for concurrent use by multiple goroutines.
type Fetcher struct {
	manager    *BrowserManager
	navTimeout time.Duration
	settle     time.Duration
	userAgent  string
	closed     atomic.Bool
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithNavigationTimeout bounds each navigation. Values <= 0 disable the bound.
func WithNavigationTimeout(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		f.navTimeout = d
	}
}

// WithSettleInterval sets the wait after DOMContentLoaded before the markup
// is captured.
func WithSettleInterval(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		f.settle = d
	}
}

// WithUserAgent overrides the user agent for every tab. An empty string keeps
// the browser's own.
func WithUserAgent(ua string) FetcherOption {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// NewFetcher returns a Fetcher rendering through manager. The Fetcher owns
// the manager: closing the Fetcher closes the browser.
func NewFetcher(manager *BrowserManager, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		manager:    manager,
		navTimeout: DefaultNavigationTimeout,
		settle:     DefaultSettleInterval,
		userAgent:  DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch opens url in a fresh tab, waits for DOMContentLoaded and the settle
// interval, and returns the rendered HTML. The tab is closed before return.
//
// Cancellation of ctx is returned as ctx.Err(); every other failure is an
// ERENDER error.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if f.closed.Load() {
		return "", sitelinks.Errorf(sitelinks.EINVALID, "fetcher closed")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	browser, release := f.manager.Acquire()
	defer release()

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", renderError(ctx, url, "open tab", err)
	}
	defer page.Close()
	defer f.manager.IncrementPageCount()

	navCtx, cancel := f.navigationContext(ctx)
	defer cancel()
	nav := page.Context(navCtx)

	if f.userAgent != "" {
		err := nav.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: f.userAgent})
		if err != nil {
			return "", renderError(ctx, url, "set user agent", err)
		}
	}

	wait := nav.WaitNavigation(proto.PageLifecycleEventNameDOMContentLoaded)
	if err := nav.Navigate(url); err != nil {
		return "", renderError(ctx, url, "navigate", err)
	}
	wait()
	if err := navCtx.Err(); err != nil {
		return "", renderError(ctx, url, "wait for DOMContentLoaded", err)
	}

	if f.settle > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(f.settle):
		}
	}

	html, err := page.Context(ctx).HTML()
	if err != nil {
		return "", renderError(ctx, url, "read html", err)
	}
	return html, nil
}

// Close shuts down the browser. Close is safe to call multiple times.
func (f *Fetcher) Close() error {
	if !f.closed.CompareAndSwap(false, true) {
		return nil
	}
	if f.manager == nil {
		return nil
	}
	return f.manager.Close()
}

func (f *Fetcher) navigationContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if f.navTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, f.navTimeout)
}

// renderError keeps caller cancellation visible and classifies the rest.
func renderError(ctx context.Context, url, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return sitelinks.Errorf(sitelinks.ERENDER, "%s %s: navigation timed out", op, url)
	}
	return sitelinks.Errorf(sitelinks.ERENDER, "%s %s: %v", op, url, err)
}
