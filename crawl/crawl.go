// Package crawl implements the breadth-first fallback crawler and the
// discovery orchestrator that chooses between sitemap and crawl.
package crawl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fwojciec/sitelinks"
)

// State is the lifecycle phase of a crawl run.
type State int32

const (
	StateIdle State = iota
	StateSeeding
	StateDraining
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSeeding:
		return "seeding"
	case StateDraining:
		return "draining"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressVisiting
	ProgressCompleted
	ProgressFailed
	ProgressFinished
)

// ProgressEvent reports progress during a crawl run.
type ProgressEvent struct {
	Type    ProgressType
	State   State
	URL     string
	Found   int // links extracted from URL
	Queued  int // in-scope links newly pushed to the frontier
	Visited int
	Total   int // size of the result set
	Error   error
}

// ProgressFunc is a callback for reporting crawl progress. It is always
// invoked from the coordinating goroutine.
type ProgressFunc func(event ProgressEvent)

var _ sitelinks.FallbackCrawler = (*Crawler)(nil)

// Crawler renders pages starting from a session's root URL and follows
// in-scope links until the frontier is exhausted.
//
// Workers only render and extract. Every mutation of the frontier, the
// visited set and the result set happens on the coordinating goroutine.
type Crawler struct {
	Launcher    sitelinks.Launcher
	Links       sitelinks.LinkExtractor
	Store       sitelinks.LinkStore     // checkpoint target; nil disables checkpoints
	RateLimiter sitelinks.DomainLimiter // nil disables pacing
	Logger      *slog.Logger
	Progress    ProgressFunc

	Concurrency int           // workers; <= 0 means 1
	MaxPages    int           // pages rendered per run, root included; 0 = unlimited
	MaxDuration time.Duration // 0 = unlimited; reaching it is not an error
	RetryDelays []time.Duration

	state atomic.Int32
}

// State returns the phase of the current or most recent run.
func (c *Crawler) State() State {
	return State(c.state.Load())
}

type pageResult struct {
	url   string
	links []string
	err   error
}

// Crawl runs the fallback crawl for s and returns the sorted result set.
//
// Links are accumulated into s.Links and checkpointed to Store after the
// root page and after every other page. When ctx is canceled no new pages are
// dispatched, in-flight pages are merged, and the partial set is returned
// together with the wrapped context error.
func (c *Crawler) Crawl(ctx context.Context, s *sitelinks.Session) ([]string, error) {
	if s == nil || s.Frontier == nil {
		return nil, sitelinks.Errorf(sitelinks.EINVALID, "crawl session has no frontier")
	}
	if c.Launcher == nil || c.Links == nil {
		return nil, sitelinks.Errorf(sitelinks.EINVALID, "crawler is missing a launcher or link extractor")
	}
	c.setState(StateIdle)
	defer c.setState(StateDone)

	runCtx := ctx
	if c.MaxDuration > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.MaxDuration)
		defer cancel()
	}

	fetcher, err := c.Launcher.Launch(runCtx)
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}
	defer func() {
		if err := fetcher.Close(); err != nil {
			c.logger().Warn("close browser", "error", err)
		}
	}()

	c.emit(ProgressEvent{Type: ProgressStarted, URL: s.RootURL})

	// Seeding.
	c.setState(StateSeeding)
	s.Frontier.MarkVisited(s.RootURL)
	c.emit(ProgressEvent{Type: ProgressVisiting, URL: s.RootURL, Visited: s.Frontier.VisitedCount()})
	links, err := c.extract(runCtx, fetcher, s.RootURL)
	c.merge(ctx, s, pageResult{url: s.RootURL, links: links, err: err})
	if err != nil {
		// A failed root counts as an empty set and is still persisted.
		c.checkpoint(ctx, s)
	}
	c.logger().Info("initial scrape", "url", s.RootURL, "links", len(links), "queued", s.Frontier.Len())

	// Draining.
	c.setState(StateDraining)
	c.drain(ctx, runCtx, s, fetcher)

	result := s.Links.Sorted()
	c.emit(ProgressEvent{Type: ProgressFinished, Visited: s.Frontier.VisitedCount(), Total: len(result)})

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("crawl interrupted: %w", err)
	}
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		c.logger().Info("crawl duration ceiling reached", "max_duration", c.MaxDuration, "visited", s.Frontier.VisitedCount())
	}
	return result, nil
}

// drain pops frontier entries and hands them to a pool of workers until the
// frontier is empty and nothing is in flight, the page ceiling is reached, or
// runCtx is done.
//
// A URL is popped only when a worker slot is free, and is handed over in the
// same step, so every entry of the visited set has been dispatched.
func (c *Crawler) drain(ctx, runCtx context.Context, s *sitelinks.Session, fetcher sitelinks.Fetcher) {
	concurrency := max(c.Concurrency, 1)

	workCh := make(chan string, concurrency)
	resultCh := make(chan pageResult)

	var wg sync.WaitGroup
	for range concurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for url := range workCh {
				links, err := c.extract(runCtx, fetcher, url)
				resultCh <- pageResult{url: url, links: links, err: err}
			}
		}()
	}

	dispatched := 1 // root
	pending := 0
	done := runCtx.Done()
	stopped := false

	for {
		if !stopped && runCtx.Err() != nil {
			stopped = true
			done = nil
		}
		for !stopped && pending < concurrency && !c.pageLimitReached(dispatched) {
			url, ok := s.Frontier.Next()
			if !ok {
				break
			}
			workCh <- url
			dispatched++
			pending++
			c.emit(ProgressEvent{Type: ProgressVisiting, State: StateDraining, URL: url, Visited: s.Frontier.VisitedCount()})
			c.logger().Debug("visiting", "url", url)
		}
		if pending == 0 {
			break
		}

		select {
		case res := <-resultCh:
			pending--
			c.merge(ctx, s, res)
		case <-done:
			stopped = true
			done = nil
		}
	}

	close(workCh)
	wg.Wait()

	if c.pageLimitReached(dispatched) && s.Frontier.Len() > 0 {
		c.logger().Info("crawl page ceiling reached", "max_pages", c.MaxPages, "queued", s.Frontier.Len())
	}
}

func (c *Crawler) pageLimitReached(dispatched int) bool {
	return c.MaxPages > 0 && dispatched >= c.MaxPages
}

// extract paces, renders and extracts one page.
func (c *Crawler) extract(ctx context.Context, fetcher sitelinks.Fetcher, url string) ([]string, error) {
	if c.RateLimiter != nil {
		if err := c.RateLimiter.Wait(ctx, sitelinks.HostOf(url)); err != nil {
			return nil, err
		}
	}
	fetch := FetchFunc(fetcher.Fetch)
	if len(c.RetryDelays) > 0 {
		fetch = func(ctx context.Context, url string) (string, error) {
			return FetchWithRetryDelays(ctx, url, fetcher.Fetch, c.logger(), c.RetryDelays)
		}
	}
	return Extract(ctx, fetch, c.Links, url)
}

// merge unions a page's links into the result set, queues the in-scope
// unvisited ones and checkpoints. A failed page contributes nothing.
func (c *Crawler) merge(ctx context.Context, s *sitelinks.Session, res pageResult) {
	if res.err != nil {
		c.logger().Warn("extract failed", "url", res.url, "code", sitelinks.ErrorCode(res.err), "error", res.err)
		c.emit(ProgressEvent{Type: ProgressFailed, State: c.State(), URL: res.url, Visited: s.Frontier.VisitedCount(), Total: s.Links.Len(), Error: res.err})
		return
	}

	s.Links.AddAll(res.links)
	queued := 0
	for _, link := range res.links {
		if sitelinks.InScope(link, s.RootHost) && s.Frontier.Push(link) {
			queued++
		}
	}
	c.checkpoint(ctx, s)

	c.emit(ProgressEvent{
		Type:    ProgressCompleted,
		State:   c.State(),
		URL:     res.url,
		Found:   len(res.links),
		Queued:  queued,
		Visited: s.Frontier.VisitedCount(),
		Total:   s.Links.Len(),
	})
}

// checkpoint persists the current result set. It survives cancellation of
// ctx so an interrupted run still leaves its latest state on disk.
func (c *Crawler) checkpoint(ctx context.Context, s *sitelinks.Session) {
	if c.Store == nil {
		return
	}
	if err := c.Store.Save(context.WithoutCancel(ctx), s.Links.Sorted()); err != nil {
		c.logger().Warn("checkpoint failed", "error", err)
	}
}

func (c *Crawler) setState(st State) {
	c.state.Store(int32(st))
}

func (c *Crawler) emit(ev ProgressEvent) {
	if ev.State == StateIdle && ev.Type != ProgressStarted {
		ev.State = c.State()
	}
	if c.Progress != nil {
		c.Progress(ev)
	}
}

func (c *Crawler) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}
