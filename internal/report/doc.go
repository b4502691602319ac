// Package report renders crawl results for people and tools.
//
// Writers:
//   - JSONWriter: the full result with a summary block, for scripting
//   - MarkdownWriter: a shareable summary with one section per match
//   - TextWriter: plain terminal output, also used for the run history
//
// All writers implement Writer and can be combined with MultiWriter.
// The live "In <url>" trace is written by the crawler itself; reports are
// produced once the crawl has finished.
package report
