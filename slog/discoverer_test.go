package slog_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/fwojciec/sitelinks"
	"github.com/fwojciec/sitelinks/mock"
	sitelinksslog "github.com/fwojciec/sitelinks/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingDiscoverer_Discover(t *testing.T) {
	t.Parallel()

	t.Run("logs result fields", func(t *testing.T) {
		t.Parallel()

		logger, buf := newLogger(slog.LevelInfo)
		inner := &mock.Discoverer{
			DiscoverFn: func(ctx context.Context, siteURL string) (*sitelinks.DiscoveryResult, error) {
				return &sitelinks.DiscoveryResult{
					RunID:   "run-1",
					Source:  sitelinks.SourceSitemap,
					Links:   []string{"https://example.com/a"},
					Count:   1,
					Elapsed: time.Second,
					Digest:  "00000000deadbeef",
				}, nil
			},
		}

		res, err := sitelinksslog.NewLoggingDiscoverer(inner, logger).Discover(context.Background(), "https://example.com")

		require.NoError(t, err)
		assert.Equal(t, 1, res.Count)
		output := buf.String()
		assert.Contains(t, output, "level=INFO")
		assert.Contains(t, output, "msg=discovery")
		assert.Contains(t, output, "url=https://example.com")
		assert.Contains(t, output, "run_id=run-1")
		assert.Contains(t, output, "source=sitemap")
		assert.Contains(t, output, "count=1")
		assert.Contains(t, output, "digest=00000000deadbeef")
	})

	t.Run("logs error code", func(t *testing.T) {
		t.Parallel()

		logger, buf := newLogger(slog.LevelInfo)
		inner := &mock.Discoverer{
			DiscoverFn: func(ctx context.Context, siteURL string) (*sitelinks.DiscoveryResult, error) {
				return nil, sitelinks.Errorf(sitelinks.EDISALLOWED, "robots.txt disallows %s", siteURL)
			},
		}

		_, err := sitelinksslog.NewLoggingDiscoverer(inner, logger).Discover(context.Background(), "https://example.com")

		require.Error(t, err)
		output := buf.String()
		assert.Contains(t, output, "level=ERROR")
		assert.Contains(t, output, "code=disallowed")
	})
}
