package mock

import (
	"context"
	"slices"
	"sync"

	"github.com/fwojciec/sitelinks"
)

var _ sitelinks.LinkStore = (*LinkStore)(nil)

// LinkStore is a mock implementation of sitelinks.LinkStore.
type LinkStore struct {
	SaveFn func(ctx context.Context, links []string) error
}

func (s *LinkStore) Save(ctx context.Context, links []string) error {
	return s.SaveFn(ctx, links)
}

var _ sitelinks.LinkStore = (*RecordingStore)(nil)

// RecordingStore is an in-memory sitelinks.LinkStore that keeps every
// checkpoint it receives.
type RecordingStore struct {
	mu    sync.Mutex
	saves [][]string
}

func (s *RecordingStore) Save(_ context.Context, links []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves = append(s.saves, slices.Clone(links))
	return nil
}

// Saves returns the number of checkpoints received.
func (s *RecordingStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.saves)
}

// Last returns the most recent checkpoint, or nil if none was saved.
func (s *RecordingStore) Last() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.saves) == 0 {
		return nil
	}
	return s.saves[len(s.saves)-1]
}

// All returns every checkpoint in order.
func (s *RecordingStore) All() [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.saves)
}
