// Package http implements the plain-HTTP parts of discovery: a shared
// client, the sitemap resolver, a static page fetcher and the trigger API.
package http

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/fwojciec/sitelinks"
	"golang.org/x/net/publicsuffix"
)

// Client defaults.
const (
	DefaultTimeout     = 20 * time.Second
	DefaultUserAgent   = "Mozilla/5.0 (compatible; MyCrawler/1.0; +http://example.com)"
	DefaultMaxBodySize = 50 << 20
)

// Client performs GET requests with the crawler's User-Agent and a
// per-request timeout. Redirects are followed and cookies set along the way
// are kept for later requests.
type Client struct {
	client      *http.Client
	timeout     time.Duration
	userAgent   string
	maxBodySize int64
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultTimeout (20s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithHTTPClient uses hc for requests. Its own timeout wins over WithTimeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client = hc
	}
}

// WithMaxBodySize caps how many bytes of a response body are read.
func WithMaxBodySize(n int64) Option {
	return func(c *Client) {
		c.maxBodySize = n
	}
}

// NewClient creates a Client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		timeout:     DefaultTimeout,
		userAgent:   DefaultUserAgent,
		maxBodySize: DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.client == nil {
		jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		c.client = &http.Client{Timeout: c.timeout, Jar: jar}
	}
	return c
}

// Response is a fully read HTTP response.
type Response struct {
	URL        string // final URL after redirects
	StatusCode int
	Body       []byte
}

// OK reports whether the response status is 200.
func (r *Response) OK() bool {
	return r.StatusCode == http.StatusOK
}

// Get fetches rawURL and reads its body. Any status code is a successful
// response; transport failures are EFETCH. Context errors are returned as is.
func (c *Client) Get(ctx context.Context, rawURL string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, sitelinks.Errorf(sitelinks.EFETCH, "invalid request for %s: %v", rawURL, err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, sitelinks.Errorf(sitelinks.EFETCH, "get %s: %v", rawURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, sitelinks.Errorf(sitelinks.EFETCH, "read %s: %v", rawURL, err)
	}

	return &Response{
		URL:        resp.Request.URL.String(),
		StatusCode: resp.StatusCode,
		Body:       body,
	}, nil
}

// GetOK is like Get but treats any status other than 200 as EFETCH.
func (c *Client) GetOK(ctx context.Context, rawURL string) ([]byte, error) {
	resp, err := c.Get(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, sitelinks.Errorf(sitelinks.EFETCH, "HTTP %d for %s", resp.StatusCode, rawURL)
	}
	return resp.Body, nil
}
