package sitelinks

import "context"

// Fetcher retrieves rendered HTML from URLs.
// Implementations may use browser automation to handle JavaScript-rendered content.
type Fetcher interface {
	// Fetch opens the URL in a fresh page, waits for the document to parse
	// and for script-driven content to settle, and returns the rendered HTML.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases browser resources.
	// Must be called when the Fetcher is no longer needed.
	Close() error
}

// Launcher starts a rendering context. A crawl launches one Fetcher and
// closes it when the run ends.
type Launcher interface {
	Launch(ctx context.Context) (Fetcher, error)
}
