package http

import (
	"context"

	"github.com/fwojciec/sitelinks"
)

var (
	_ sitelinks.Fetcher  = (*Fetcher)(nil)
	_ sitelinks.Launcher = (*Fetcher)(nil)
)

// Fetcher retrieves page HTML with plain HTTP requests. Unlike rod.Fetcher
// it does not execute JavaScript, so it suits static sites only.
//
// It is its own Launcher: there is no browser to start.
type Fetcher struct {
	client *Client
}

// NewFetcher creates a Fetcher backed by client.
func NewFetcher(client *Client) *Fetcher {
	if client == nil {
		client = NewClient()
	}
	return &Fetcher{client: client}
}

// Fetch returns the body of url. Statuses other than 200 are EFETCH.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	body, err := f.client.GetOK(ctx, url)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// Launch returns f.
func (f *Fetcher) Launch(_ context.Context) (sitelinks.Fetcher, error) {
	return f, nil
}

// Close is a no-op; http.Client needs no cleanup.
func (f *Fetcher) Close() error {
	return nil
}
