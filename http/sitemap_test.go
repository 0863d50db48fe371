package http_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fwojciec/sitelinks"
	sitelinkshttp "github.com/fwojciec/sitelinks/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/temoto/robotstxt"
)

func TestSitemapService_ResolveSitemap(t *testing.T) {
	t.Parallel()

	t.Run("robots sitemap index with two children", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, map[string]string{
			"/robots.txt": "User-agent: *\nDisallow: /private/\nSitemap: {{BASE}}/sitemap_index.xml\n",
			"/sitemap_index.xml": `<?xml version="1.0" encoding="UTF-8"?>
<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <sitemap><loc>{{BASE}}/sitemap-a.xml</loc></sitemap>
  <sitemap><loc>{{BASE}}/sitemap-b.xml</loc></sitemap>
</sitemapindex>`,
			"/sitemap-a.xml": urlset("{{BASE}}/a"),
			"/sitemap-b.xml": urlset("{{BASE}}/b"),
		})
		defer srv.Close()

		sess := newSession(t, srv.URL)
		links, err := newService(srv).ResolveSitemap(context.Background(), sess)

		require.NoError(t, err)
		assert.Equal(t, []string{srv.URL + "/a", srv.URL + "/b"}, links)
		assert.Equal(t, 3, sess.Sitemaps.Len())
	})

	t.Run("robots directives are case-insensitive and keep order", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, map[string]string{
			"/robots.txt":  "sitemap: {{BASE}}/one.xml\nSITEMAP:   {{BASE}}/two.xml  \n",
			"/one.xml":     urlset("{{BASE}}/1"),
			"/two.xml":     urlset("{{BASE}}/2"),
			"/sitemap.xml": urlset("{{BASE}}/never"),
		})
		defer srv.Close()

		links, err := newService(srv).ResolveSitemap(context.Background(), newSession(t, srv.URL))

		require.NoError(t, err)
		assert.Equal(t, []string{srv.URL + "/1", srv.URL + "/2"}, links)
	})

	t.Run("robots source replaces the robots.txt fetch", func(t *testing.T) {
		t.Parallel()

		var mu sync.Mutex
		hits := make(map[string]int)
		srv := newCountingServer(t, map[string]string{
			"/robots.txt":  "Sitemap: {{BASE}}/never.xml\n",
			"/shared.xml":  urlset("{{BASE}}/shared"),
			"/sitemap.xml": urlset("{{BASE}}/never"),
		}, &mu, hits)
		defer srv.Close()

		var domains []string
		src := robotsSourceFunc(func(_ context.Context, domain string) *robotstxt.RobotsData {
			domains = append(domains, domain)
			robots, err := robotstxt.FromString("User-agent: *\nSitemap: " + domain + "/shared.xml\n")
			require.NoError(t, err)
			return robots
		})
		svc := sitelinkshttp.NewSitemapService(
			sitelinkshttp.NewClient(sitelinkshttp.WithHTTPClient(srv.Client())),
			sitelinkshttp.WithRobotsSource(src),
		)

		links, err := svc.ResolveSitemap(context.Background(), newSession(t, srv.URL))

		require.NoError(t, err)
		assert.Equal(t, []string{srv.URL + "/shared"}, links)
		assert.Equal(t, []string{srv.URL}, domains)
		mu.Lock()
		defer mu.Unlock()
		assert.Zero(t, hits["/robots.txt"])
	})

	t.Run("unavailable robots source falls back to conventional paths", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, map[string]string{
			"/sitemap.xml": urlset("{{BASE}}/x"),
		})
		defer srv.Close()
		src := robotsSourceFunc(func(context.Context, string) *robotstxt.RobotsData { return nil })
		svc := sitelinkshttp.NewSitemapService(
			sitelinkshttp.NewClient(sitelinkshttp.WithHTTPClient(srv.Client())),
			sitelinkshttp.WithRobotsSource(src),
		)

		links, err := svc.ResolveSitemap(context.Background(), newSession(t, srv.URL))

		require.NoError(t, err)
		assert.Equal(t, []string{srv.URL + "/x"}, links)
	})

	t.Run("falls back to conventional paths", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, map[string]string{
			"/sitemaps/sitemap.xml":      urlset("{{BASE}}/x"),
			"/media/sitemap/sitemap.xml": urlset("{{BASE}}/y"),
		})
		defer srv.Close()

		sess := newSession(t, srv.URL+"/docs/start")
		links, err := newService(srv).ResolveSitemap(context.Background(), sess)

		require.NoError(t, err)
		assert.Equal(t, []string{srv.URL + "/x", srv.URL + "/y"}, links)
		assert.Equal(t, len(sitelinkshttp.ConventionalSitemapPaths), sess.Sitemaps.Len())
	})

	t.Run("no sitemap anywhere yields empty result", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, map[string]string{})
		defer srv.Close()

		links, err := newService(srv).ResolveSitemap(context.Background(), newSession(t, srv.URL))

		require.NoError(t, err)
		assert.Empty(t, links)
	})

	t.Run("cyclic indexes terminate with each sitemap fetched once", func(t *testing.T) {
		t.Parallel()

		var mu sync.Mutex
		hits := make(map[string]int)
		srv := newCountingServer(t, map[string]string{
			"/robots.txt": "Sitemap: {{BASE}}/a.xml\n",
			"/a.xml":      index("{{BASE}}/b.xml", "{{BASE}}/a.xml"),
			"/b.xml":      index("{{BASE}}/a.xml", "{{BASE}}/leaf.xml"),
			"/leaf.xml":   urlset("{{BASE}}/page"),
		}, &mu, hits)
		defer srv.Close()

		links, err := newService(srv).ResolveSitemap(context.Background(), newSession(t, srv.URL))

		require.NoError(t, err)
		assert.Equal(t, []string{srv.URL + "/page"}, links)
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, 1, hits["/a.xml"])
		assert.Equal(t, 1, hits["/b.xml"])
		assert.Equal(t, 1, hits["/leaf.xml"])
	})

	t.Run("broken children contribute nothing", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, map[string]string{
			"/robots.txt": "Sitemap: {{BASE}}/index.xml\n",
			"/index.xml":  index("{{BASE}}/good.xml", "{{BASE}}/missing.xml", "{{BASE}}/bad.xml"),
			"/good.xml":   urlset("{{BASE}}/ok"),
			"/bad.xml":    "<urlset><url><loc>unterminated",
		})
		defer srv.Close()

		links, err := newService(srv).ResolveSitemap(context.Background(), newSession(t, srv.URL))

		require.NoError(t, err)
		assert.Equal(t, []string{srv.URL + "/ok"}, links)
	})

	t.Run("depth ceiling stops nested indexes", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, map[string]string{
			"/robots.txt": "Sitemap: {{BASE}}/l0.xml\n",
			"/l0.xml":     index("{{BASE}}/l1.xml"),
			"/l1.xml":     index("{{BASE}}/l2.xml"),
			"/l2.xml":     urlset("{{BASE}}/deep"),
		})
		defer srv.Close()

		svc := sitelinkshttp.NewSitemapService(
			sitelinkshttp.NewClient(sitelinkshttp.WithHTTPClient(srv.Client())),
			sitelinkshttp.WithMaxDepth(1),
		)
		links, err := svc.ResolveSitemap(context.Background(), newSession(t, srv.URL))

		require.NoError(t, err)
		assert.Empty(t, links)

		unlimited := sitelinkshttp.NewSitemapService(
			sitelinkshttp.NewClient(sitelinkshttp.WithHTTPClient(srv.Client())),
			sitelinkshttp.WithMaxDepth(0),
		)
		links, err = unlimited.ResolveSitemap(context.Background(), newSession(t, srv.URL))

		require.NoError(t, err)
		assert.Equal(t, []string{srv.URL + "/deep"}, links)
	})

	t.Run("in-flight fetches never exceed the limit", func(t *testing.T) {
		t.Parallel()

		content := map[string]string{"/robots.txt": ""}
		var children []string
		for i := range 12 {
			path := fmt.Sprintf("/child-%d.xml", i)
			children = append(children, "{{BASE}}"+path)
			content[path] = urlset(fmt.Sprintf("{{BASE}}/p%d", i))
		}
		content["/robots.txt"] = "Sitemap: {{BASE}}/index.xml\n"
		content["/index.xml"] = index(children...)

		var inFlight, peak atomic.Int32
		var srv *httptest.Server
		srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			n := inFlight.Add(1)
			defer inFlight.Add(-1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			body, ok := content[r.URL.Path]
			if !ok {
				http.NotFound(w, r)
				return
			}
			_, _ = w.Write([]byte(strings.ReplaceAll(body, "{{BASE}}", srv.URL)))
		}))
		defer srv.Close()

		svc := sitelinkshttp.NewSitemapService(
			sitelinkshttp.NewClient(sitelinkshttp.WithHTTPClient(srv.Client())),
			sitelinkshttp.WithMaxInFlight(3),
		)
		links, err := svc.ResolveSitemap(context.Background(), newSession(t, srv.URL))

		require.NoError(t, err)
		assert.Len(t, links, 12)
		assert.LessOrEqual(t, peak.Load(), int32(3))
	})

	t.Run("cancellation is returned", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, map[string]string{})
		defer srv.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := newService(srv).ResolveSitemap(ctx, newSession(t, srv.URL))

		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestParseSitemap(t *testing.T) {
	t.Parallel()

	t.Run("classifies locs by parent element", func(t *testing.T) {
		t.Parallel()

		body := `<?xml version="1.0" encoding="UTF-8"?>
<root xmlns="http://www.sitemaps.org/schemas/sitemap/0.9"
      xmlns:image="http://www.google.com/schemas/sitemap-image/1.1">
  <sitemap><loc> https://example.com/child </loc></sitemap>
  <url>
    <loc>https://example.com/page.xml</loc>
    <image:image><image:loc>https://example.com/photo.jpg</image:loc></image:image>
  </url>
  <entry><loc>https://example.com/other.xml</loc></entry>
  <entry><loc>https://example.com/plain</loc></entry>
  <url><loc>   </loc></url>
</root>`

		children, pages, err := sitelinkshttp.ParseSitemap([]byte(body))

		require.NoError(t, err)
		assert.Equal(t, []string{"https://example.com/child", "https://example.com/other.xml"}, children)
		assert.Equal(t, []string{"https://example.com/page.xml", "https://example.com/plain"}, pages)
	})

	t.Run("decodes non-utf8 charsets", func(t *testing.T) {
		t.Parallel()

		body := append([]byte(`<?xml version="1.0" encoding="ISO-8859-1"?>
<urlset><url><loc>https://example.com/caf`), 0xe9)
		body = append(body, []byte(`</loc></url></urlset>`)...)

		_, pages, err := sitelinkshttp.ParseSitemap(body)

		require.NoError(t, err)
		assert.Equal(t, []string{"https://example.com/café"}, pages)
	})

	t.Run("malformed xml is a parse error", func(t *testing.T) {
		t.Parallel()

		_, _, err := sitelinkshttp.ParseSitemap([]byte("<urlset><url>"))

		assert.Equal(t, sitelinks.EPARSE, sitelinks.ErrorCode(err))
	})

	t.Run("empty document is a parse error", func(t *testing.T) {
		t.Parallel()

		_, _, err := sitelinkshttp.ParseSitemap([]byte("   "))

		assert.Equal(t, sitelinks.EPARSE, sitelinks.ErrorCode(err))
	})
}

type robotsSourceFunc func(ctx context.Context, domain string) *robotstxt.RobotsData

func (f robotsSourceFunc) Robots(ctx context.Context, domain string) *robotstxt.RobotsData {
	return f(ctx, domain)
}

func newService(srv *httptest.Server) *sitelinkshttp.SitemapService {
	return sitelinkshttp.NewSitemapService(sitelinkshttp.NewClient(sitelinkshttp.WithHTTPClient(srv.Client())))
}

func newSession(t *testing.T, rawURL string) *sitelinks.Session {
	t.Helper()
	u, err := url.Parse(rawURL)
	require.NoError(t, err)
	return sitelinks.NewSession(u, nil)
}

func urlset(locs ...string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">` + "\n")
	for _, loc := range locs {
		fmt.Fprintf(&b, "  <url><loc>%s</loc></url>\n", loc)
	}
	b.WriteString("</urlset>")
	return b.String()
}

func index(locs ...string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">` + "\n")
	for _, loc := range locs {
		fmt.Fprintf(&b, "  <sitemap><loc>%s</loc></sitemap>\n", loc)
	}
	b.WriteString("</sitemapindex>")
	return b.String()
}

func newTestServer(t *testing.T, content map[string]string) *httptest.Server {
	t.Helper()
	return newCountingServer(t, content, &sync.Mutex{}, make(map[string]int))
}

// newCountingServer serves content with {{BASE}} replaced by the server URL
// and counts requests per path.
func newCountingServer(t *testing.T, content map[string]string, mu *sync.Mutex, hits map[string]int) *httptest.Server {
	t.Helper()

	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits[r.URL.Path]++
		mu.Unlock()

		body, ok := content[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		if r.URL.Path == "/robots.txt" {
			w.Header().Set("Content-Type", "text/plain")
		} else {
			w.Header().Set("Content-Type", "application/xml")
		}
		_, _ = w.Write([]byte(strings.ReplaceAll(body, "{{BASE}}", srv.URL)))
	}))
	return srv
}
