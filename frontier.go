package sitelinks

import "context"

// URLFrontier manages the set of in-scope URLs awaiting a visit together
// with the set of URLs already dispatched for rendering.
type URLFrontier interface {
	// Push queues a URL. Returns false if it was already visited or queued.
	Push(url string) bool

	// Next pops a queued URL and marks it visited in one step.
	// Returns false if the frontier is empty.
	Next() (string, bool)

	// MarkVisited records a URL as visited without queueing it.
	// Returns false if it was already visited.
	MarkVisited(url string) bool

	// Visited returns true if the URL has been dispatched for rendering.
	Visited(url string) bool

	// Len returns the number of URLs waiting in the queue.
	Len() int

	// VisitedCount returns the size of the visited set.
	VisitedCount() int
}

// DomainLimiter provides per-domain rate limiting.
type DomainLimiter interface {
	// Wait blocks until the rate limit allows a request to the domain.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, domain string) error
}
