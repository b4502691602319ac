package crawler

import "sync"

// VisitedSet holds the URLs already claimed during one crawl.
// Entries are compared by exact string and are never removed.
// It is safe for concurrent use.
type VisitedSet struct {
	mu   sync.Mutex
	urls map[string]struct{}
}

// NewVisitedSet returns an empty set.
func NewVisitedSet() *VisitedSet {
	return &VisitedSet{urls: make(map[string]struct{})}
}

// Add inserts url and reports whether it was absent.
// The test and the insert happen under one lock, so two callers racing on
// the same URL cannot both get true.
func (v *VisitedSet) Add(url string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, ok := v.urls[url]; ok {
		return false
	}
	v.urls[url] = struct{}{}
	return true
}

// Contains reports whether url has been added.
func (v *VisitedSet) Contains(url string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	_, ok := v.urls[url]
	return ok
}

// Len returns the number of URLs in the set.
func (v *VisitedSet) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()

	return len(v.urls)
}
