package rod

import (
	"context"

	"github.com/fwojciec/sitelinks"
)

// Ensure Launcher implements sitelinks.Launcher at compile time.
var _ sitelinks.Launcher = (*Launcher)(nil)

// Launcher starts one browser per crawl run. The zero value launches a
// headless browser with default fetch settings.
type Launcher struct {
	ManagerOptions []ManagerOption
	FetcherOptions []FetcherOption
}

// Launch starts the browser and returns a Fetcher that owns it.
func (l *Launcher) Launch(ctx context.Context) (sitelinks.Fetcher, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	manager, err := NewBrowserManager(l.ManagerOptions...)
	if err != nil {
		return nil, sitelinks.Errorf(sitelinks.ERENDER, "%v", err)
	}
	return NewFetcher(manager, l.FetcherOptions...), nil
}
