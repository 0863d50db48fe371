package slog

import (
	"context"
	"log/slog"

	"github.com/fwojciec/sitelinks"
)

// Ensure LoggingRobots implements sitelinks.RobotsChecker.
var _ sitelinks.RobotsChecker = (*LoggingRobots)(nil)

// LoggingRobots wraps a RobotsChecker and logs each decision.
type LoggingRobots struct {
	next   sitelinks.RobotsChecker
	logger *slog.Logger
}

// NewLoggingRobots creates a new LoggingRobots.
func NewLoggingRobots(next sitelinks.RobotsChecker, logger *slog.Logger) *LoggingRobots {
	return &LoggingRobots{next: next, logger: logger}
}

// Allowed delegates to the wrapped checker.
func (r *LoggingRobots) Allowed(ctx context.Context, url string) bool {
	allowed := r.next.Allowed(ctx, url)
	r.logger.Debug("robots check", "url", url, "allowed", allowed)
	return allowed
}
