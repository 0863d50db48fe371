package mock

import (
	"context"

	"github.com/fwojciec/sitelinks"
)

var _ sitelinks.URLFrontier = (*URLFrontier)(nil)

// URLFrontier is a mock implementation of sitelinks.URLFrontier.
type URLFrontier struct {
	PushFn         func(url string) bool
	NextFn         func() (string, bool)
	MarkVisitedFn  func(url string) bool
	VisitedFn      func(url string) bool
	LenFn          func() int
	VisitedCountFn func() int
}

func (f *URLFrontier) Push(url string) bool {
	return f.PushFn(url)
}

func (f *URLFrontier) Next() (string, bool) {
	return f.NextFn()
}

func (f *URLFrontier) MarkVisited(url string) bool {
	return f.MarkVisitedFn(url)
}

func (f *URLFrontier) Visited(url string) bool {
	return f.VisitedFn(url)
}

func (f *URLFrontier) Len() int {
	return f.LenFn()
}

func (f *URLFrontier) VisitedCount() int {
	return f.VisitedCountFn()
}

var _ sitelinks.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter is a mock implementation of sitelinks.DomainLimiter.
type DomainLimiter struct {
	WaitFn func(ctx context.Context, domain string) error
}

func (l *DomainLimiter) Wait(ctx context.Context, domain string) error {
	return l.WaitFn(ctx, domain)
}
