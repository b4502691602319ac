// Package database stores the history of sitegrep runs in SQLite.
//
// Each saved run keeps its parameters, timing, the number of pages fetched
// and every match with its context window. The store is write-once per run:
// a crawl never reads it back, so nothing is resumed or deduplicated from
// history.
//
// The driver is modernc.org/sqlite, so the binary stays CGO-free. The
// database file lives in the XDG data directory by default.
package database
