package crawler

import "strings"

// crawlableExtensions are the file extensions treated as pages.
var crawlableExtensions = map[string]bool{
	".html": true,
	".htm":  true,
	".txt":  true,
}

// IsCrawlable reports whether an absolute link looks like a page worth
// fetching, judged from the URL string alone.
//
// Rules, in order:
//  1. An empty string is not crawlable.
//  2. The link must start with "http" (which covers "https").
//  3. With the scheme removed, a link with no "/" or ending in "/" is a host
//     or directory and is crawlable.
//  4. Otherwise the last path segment decides: no "." means an extensionless
//     page (crawlable); an extension must be exactly .html, .htm or .txt.
//
// This is a heuristic, not a content-type check. Query strings and fragments
// are not stripped, so "page.html#top" is rejected and a dotted version
// segment such as "/v1.2" is misclassified as a file.
func IsCrawlable(href string) bool {
	if href == "" {
		return false
	}
	if !strings.HasPrefix(href, "http") {
		return false
	}

	rest := strings.TrimPrefix(href, "http")
	if i := strings.Index(rest, "://"); i >= 0 {
		rest = rest[i+len("://"):]
	}

	slash := strings.LastIndex(rest, "/")
	if slash == -1 || slash == len(rest)-1 {
		return true
	}

	segment := rest[slash:]
	dot := strings.LastIndex(segment, ".")
	if dot == -1 {
		return true
	}

	return crawlableExtensions[segment[dot:]]
}

// filterLinks keeps the crawlable links, preserving their order.
func filterLinks(links []string) []string {
	kept := make([]string, 0, len(links))
	for _, link := range links {
		if IsCrawlable(link) {
			kept = append(kept, link)
		}
	}
	return kept
}
