// Package main provides the entry point for the sitegrep CLI.
//
// sitegrep crawls a web site from a seed page up to a maximum link depth and
// prints, for every page it visits, the page URL and the text surrounding
// the first occurrence of a search string.
//
// Usage:
//
//	sitegrep <seed-url> <max-depth> <search-string>
//	sitegrep history [run-id]
//
// See --help for all available options.
package main

func main() {
	Execute()
}
