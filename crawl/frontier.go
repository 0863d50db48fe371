package crawl

import (
	"sync"

	"github.com/fwojciec/sitelinks"
)

var _ sitelinks.URLFrontier = (*Frontier)(nil)

// Frontier is an in-memory FIFO of URLs awaiting a visit together with the
// run's VisitedSet. Popping and marking visited happen under one lock.
//
// Membership is exact: a URL is never skipped because it merely resembles
// one already seen. It is safe for concurrent use by multiple goroutines.
type Frontier struct {
	mu      sync.Mutex
	queue   []string
	pending map[string]struct{}
	visited map[string]struct{}
}

// NewFrontier creates an empty Frontier.
func NewFrontier() *Frontier {
	return &Frontier{
		pending: make(map[string]struct{}),
		visited: make(map[string]struct{}),
	}
}

// Push queues url unless it is already queued or visited.
func (f *Frontier) Push(url string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.visitedLocked(url) {
		return false
	}
	if _, ok := f.pending[url]; ok {
		return false
	}
	f.pending[url] = struct{}{}
	f.queue = append(f.queue, url)
	return true
}

// Next pops the oldest unvisited URL and marks it visited.
// Entries visited since they were queued are discarded.
// The bool result is false if the frontier is empty.
func (f *Frontier) Next() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for len(f.queue) > 0 {
		url := f.queue[0]
		f.queue[0] = ""
		f.queue = f.queue[1:]
		delete(f.pending, url)
		if f.markLocked(url) {
			return url, true
		}
	}
	f.queue = nil
	return "", false
}

// MarkVisited records url as visited. It returns false if it already was.
func (f *Frontier) MarkVisited(url string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.markLocked(url)
}

// Visited reports whether url has been visited.
func (f *Frontier) Visited(url string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.visitedLocked(url)
}

// Len returns the number of queued URLs.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue)
}

// VisitedCount returns the size of the VisitedSet.
func (f *Frontier) VisitedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.visited)
}

func (f *Frontier) visitedLocked(url string) bool {
	_, ok := f.visited[url]
	return ok
}

func (f *Frontier) markLocked(url string) bool {
	if f.visitedLocked(url) {
		return false
	}
	f.visited[url] = struct{}{}
	return true
}
