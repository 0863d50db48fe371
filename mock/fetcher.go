package mock

import (
	"context"

	"github.com/fwojciec/sitelinks"
)

var _ sitelinks.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of sitelinks.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (string, error)
	CloseFn func() error
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	return f.FetchFn(ctx, url)
}

func (f *Fetcher) Close() error {
	return f.CloseFn()
}

var _ sitelinks.Launcher = (*Launcher)(nil)

// Launcher is a mock implementation of sitelinks.Launcher.
type Launcher struct {
	LaunchFn func(ctx context.Context) (sitelinks.Fetcher, error)
}

func (l *Launcher) Launch(ctx context.Context) (sitelinks.Fetcher, error) {
	return l.LaunchFn(ctx)
}
