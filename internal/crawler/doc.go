// Package crawler implements the sitegrep traversal engine.
//
// # Architecture
//
// The Spider walks a site from a seed page. For every page it fetches it
// prints a marker line, searches the page text for a literal string, prints
// the context around the first match, and then follows the page's links.
//
// # Components
//
//   - Spider: depth-bounded, deduplicated traversal
//   - VisitedSet: URLs already claimed in the current crawl
//   - IsCrawlable: heuristic that decides from a URL string alone whether a
//     link looks like a page
//   - ExtractContext: the fixed-radius window around the first match
//   - DocumentSource / HTTPSource: fetches and parses a page
//
// # Traversal
//
// The default traversal is sequential and uses an explicit stack, so deep
// or cyclic link graphs cannot exhaust the call stack and the visit order
// is depth-first, pre-order, in link-declaration order. A URL is claimed in
// the VisitedSet before it is fetched and is never fetched twice in a run.
// A page that fails to fetch is skipped silently together with every page
// reachable only through it.
//
// With WithConcurrency(n) for n > 1, children are expanded concurrently and
// at most n fetches are in flight. Deduplication is unchanged; only the
// output order across branches becomes nondeterministic.
//
// # Usage
//
//	source := crawler.NewHTTPSource(crawler.NewHTTPClient(30 * time.Second))
//	spider := crawler.NewSpider(source, crawler.WithOutput(os.Stdout))
//	result, err := spider.Crawl(ctx, crawler.Config{
//		SeedURL:      "https://example.com/",
//		MaxDepth:     2,
//		SearchString: "needle",
//	})
package crawler
