package sitelinks

import (
	"slices"
	"sync"
)

// LinkSet is a grow-only set of URLs compared by exact string equality.
// It is safe for concurrent use.
type LinkSet struct {
	mu    sync.Mutex
	links map[string]struct{}
}

// NewLinkSet returns an empty LinkSet.
func NewLinkSet() *LinkSet {
	return &LinkSet{links: make(map[string]struct{})}
}

// Add inserts link and reports whether it was not already present.
func (s *LinkSet) Add(link string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.links[link]; ok {
		return false
	}
	s.links[link] = struct{}{}
	return true
}

// AddAll inserts every link and returns how many were new.
func (s *LinkSet) AddAll(links []string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	added := 0
	for _, link := range links {
		if _, ok := s.links[link]; ok {
			continue
		}
		s.links[link] = struct{}{}
		added++
	}
	return added
}

// Has reports whether link is in the set.
func (s *LinkSet) Has(link string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.links[link]
	return ok
}

// Len returns the number of links in the set.
func (s *LinkSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.links)
}

// Sorted returns the links in lexicographic order. The result is never nil.
func (s *LinkSet) Sorted() []string {
	s.mu.Lock()
	out := make([]string, 0, len(s.links))
	for link := range s.links {
		out = append(out, link)
	}
	s.mu.Unlock()

	slices.Sort(out)
	return out
}
