package sitelinks

import "context"

// LinkStore persists the accumulated link set. Every Save replaces the
// previous artifact, so the stored copy always reflects the latest
// checkpoint.
type LinkStore interface {
	Save(ctx context.Context, links []string) error
}
