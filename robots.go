package sitelinks

import "context"

// RobotsChecker decides whether a URL may be crawled.
type RobotsChecker interface {
	// Allowed reports whether robots.txt permits the URL for the wildcard
	// user agent. Implementations fail open: fetch or parse errors allow.
	Allowed(ctx context.Context, url string) bool
}
