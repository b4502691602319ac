package model

import (
	"time"

	"github.com/google/uuid"
)

// SearchContext is the snippet of page text surrounding the first
// occurrence of the search string.
// Start and End are rune offsets into the page text; End is exclusive.
type SearchContext struct {
	// Start is the offset of the first rune of the window.
	Start int `json:"start"`

	// End is the offset one past the last rune of the window.
	End int `json:"end"`

	// Text is the window itself.
	Text string `json:"text"`
}

// Len returns the number of runes in the window.
func (c SearchContext) Len() int {
	return c.End - c.Start
}

// PageVisit records a page that was fetched successfully during a crawl.
type PageVisit struct {
	// URL is the URL exactly as it was requested.
	URL string `json:"url"`

	// Depth is the number of link hops from the seed page.
	Depth int `json:"depth"`
}

// Match is a page whose text contained the search string.
type Match struct {
	// URL is the page the match was found on.
	URL string `json:"url"`

	// Depth is the number of link hops from the seed page.
	Depth int `json:"depth"`

	// Context is the window around the first occurrence on the page.
	Context SearchContext `json:"context"`
}

// Result is the outcome of a single crawl run.
//
// Visited and Matches are in the order the pages were processed. For a
// sequential crawl that is depth-first, pre-order, link-declaration order.
type Result struct {
	// ID identifies the run across reports and the history database.
	ID string `json:"id"`

	// SeedURL is the page the crawl started from.
	SeedURL string `json:"seed_url"`

	// SearchString is the literal text that was searched for.
	SearchString string `json:"search_string"`

	// MaxDepth is the configured depth limit.
	MaxDepth int `json:"max_depth"`

	// StartedAt is when the crawl began.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt is when the crawl ended (normally or by cancellation).
	FinishedAt time.Time `json:"finished_at"`

	// Visited lists every page fetched successfully.
	Visited []PageVisit `json:"visited"`

	// Matches lists every page where the search string was found.
	Matches []Match `json:"matches"`
}

// NewResult creates an empty Result for a crawl that starts now.
func NewResult(seedURL, searchString string, maxDepth int) *Result {
	return &Result{
		ID:           uuid.NewString(),
		SeedURL:      seedURL,
		SearchString: searchString,
		MaxDepth:     maxDepth,
		StartedAt:    time.Now(),
		Visited:      make([]PageVisit, 0),
		Matches:      make([]Match, 0),
	}
}

// Duration returns how long the crawl took.
// It is zero until FinishedAt is set.
func (r *Result) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// PageCount returns the number of pages fetched.
func (r *Result) PageCount() int {
	return len(r.Visited)
}

// MatchCount returns the number of pages containing the search string.
func (r *Result) MatchCount() int {
	return len(r.Matches)
}

// HasMatches reports whether any page contained the search string.
func (r *Result) HasMatches() bool {
	return len(r.Matches) > 0
}
