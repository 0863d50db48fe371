package crawl_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fwojciec/sitelinks"
	"github.com/fwojciec/sitelinks/crawl"
	"github.com/fwojciec/sitelinks/mock"
	"github.com/stretchr/testify/require"
)

// fakeSite serves pages whose HTML is simply their hrefs, one per line.
type fakeSite struct {
	pages map[string][]string
	fails map[string]error
	delay time.Duration

	mu       sync.Mutex
	visits   map[string]int
	closed   bool
	inFlight int
	maxIn    int
}

func newFakeSite(pages map[string][]string) *fakeSite {
	return &fakeSite{
		pages:  pages,
		fails:  make(map[string]error),
		visits: make(map[string]int),
	}
}

func (f *fakeSite) fetch(ctx context.Context, url string) (string, error) {
	f.mu.Lock()
	f.visits[url]++
	f.inFlight++
	f.maxIn = max(f.maxIn, f.inFlight)
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}()

	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(f.delay):
		}
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err, ok := f.fails[url]; ok {
		return "", err
	}
	hrefs, ok := f.pages[url]
	if !ok {
		return "", sitelinks.Errorf(sitelinks.ERENDER, "no page at %s", url)
	}
	return strings.Join(hrefs, "\n"), nil
}

func (f *fakeSite) launcher() *mock.Launcher {
	return &mock.Launcher{
		LaunchFn: func(_ context.Context) (sitelinks.Fetcher, error) {
			return &mock.Fetcher{
				FetchFn: f.fetch,
				CloseFn: func() error {
					f.mu.Lock()
					defer f.mu.Unlock()
					f.closed = true
					return nil
				},
			}, nil
		},
	}
}

func (f *fakeSite) visitCount(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.visits[url]
}

func (f *fakeSite) totalVisits() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, v := range f.visits {
		n += v
	}
	return n
}

func (f *fakeSite) visitedURLs() map[string]int {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]int, len(f.visits))
	for k, v := range f.visits {
		out[k] = v
	}
	return out
}

// lineExtractor applies the link filter to each line of the page.
func lineExtractor() *mock.LinkExtractor {
	return &mock.LinkExtractor{
		ExtractLinksFn: func(html string, baseURL string) ([]string, error) {
			base := strings.TrimRight(baseURL, "/")
			var out []string
			for _, href := range strings.Split(html, "\n") {
				if link, ok := sitelinks.FilterLink(href, base); ok {
					out = append(out, link)
				}
			}
			return out, nil
		},
	}
}

func newSession(t *testing.T, rawURL string) *sitelinks.Session {
	t.Helper()
	root, err := sitelinks.ParseRootURL(rawURL)
	require.NoError(t, err)
	return sitelinks.NewSession(root, crawl.NewFrontier())
}
