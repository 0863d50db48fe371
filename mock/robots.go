package mock

import (
	"context"

	"github.com/fwojciec/sitelinks"
)

var _ sitelinks.RobotsChecker = (*RobotsChecker)(nil)

// RobotsChecker is a mock implementation of sitelinks.RobotsChecker.
type RobotsChecker struct {
	AllowedFn func(ctx context.Context, url string) bool
}

func (r *RobotsChecker) Allowed(ctx context.Context, url string) bool {
	return r.AllowedFn(ctx, url)
}
