package config

import "errors"

// Configuration errors. They are fatal: the run stops before any page is
// fetched. Callers match them with errors.Is.
var (
	// ErrNoSeedURL is returned when no seed URL is given.
	ErrNoSeedURL = errors.New("no seed URL specified")

	// ErrInvalidMaxDepth is returned when the max depth is not a positive
	// integer on the command line, or is negative in a Config.
	ErrInvalidMaxDepth = errors.New("please provide a positive integer for max depth")

	// ErrEmptySearchString is returned when the search string is empty.
	ErrEmptySearchString = errors.New("search string must not be empty")

	// ErrInvalidTimeout is returned when the fetch timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidConcurrency is returned when concurrency is not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidMaxBodySize is returned when the body size limit is not positive.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are given.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")
)
