package config

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultTimeout bounds a single page fetch. A fetch that exceeds it is
	// treated like any other fetch failure and its branch is skipped.
	DefaultTimeout = 30 * time.Second

	// DefaultConcurrency of 1 keeps the traversal sequential, which gives a
	// deterministic visit order.
	DefaultConcurrency = 1

	// DefaultMaxBodySize limits how much of each response is read.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultUserAgent identifies sitegrep in HTTP requests.
	DefaultUserAgent = "sitegrep/1.0 (+https://github.com/nao1215/sitegrep)"

	// AppName is the application name used for XDG directory paths.
	AppName = "sitegrep"
)

// Config holds all options for a sitegrep run.
// It is populated from positional arguments and flags and passed down
// explicitly; nothing reads it from global state.
type Config struct {
	// SeedURL is the page the crawl starts from.
	SeedURL string

	// MaxDepth is the maximum number of link hops from the seed.
	MaxDepth int

	// SearchString is the literal text to look for. Case-sensitive.
	SearchString string

	// Timeout is the per-fetch timeout.
	Timeout time.Duration

	// UserAgent is the User-Agent header sent with every request.
	// A site config may override it per host.
	UserAgent string

	// MaxBodySize is the maximum number of response bytes read per page.
	MaxBodySize int64

	// Concurrency is the maximum number of fetches in flight.
	// 1 means the sequential traversal.
	Concurrency int

	// Verbose enables debug logging.
	Verbose bool

	// ConfigFilePath is the path given with --config, if any.
	ConfigFilePath string

	// SiteConfigs holds per-host settings loaded from the config file.
	SiteConfigs *File

	// SaveToDB stores the finished run in the history database.
	SaveToDB bool

	// DBDir is the directory holding the history database.
	DBDir string

	// JSONReport writes a JSON summary of the run after the trace.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport writes a Markdown summary of the run after the trace.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is where the summary report goes. Empty means stdout.
	ReportFile string
}

// NewConfig creates a Config with default values.
func NewConfig() *Config {
	return &Config{
		Timeout:     DefaultTimeout,
		UserAgent:   DefaultUserAgent,
		MaxBodySize: DefaultMaxBodySize,
		Concurrency: DefaultConcurrency,
	}
}

// XDGDataDir returns the XDG data directory for sitegrep.
// On Linux: ~/.local/share/sitegrep
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for sitegrep.
// On Linux: ~/.config/sitegrep
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// ParseMaxDepth parses the max-depth command-line argument.
// Only integers greater than zero are accepted; anything else returns an
// error wrapping ErrInvalidMaxDepth.
func ParseMaxDepth(s string) (int, error) {
	depth, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer", ErrInvalidMaxDepth, s)
	}
	if depth <= 0 {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidMaxDepth, depth)
	}
	return depth, nil
}

// Validate checks the configuration and returns the first problem found.
// It is called once, before any page is fetched.
func (c *Config) Validate() error {
	if c.SeedURL == "" {
		return ErrNoSeedURL
	}

	if c.MaxDepth < 0 {
		return ErrInvalidMaxDepth
	}

	if c.SearchString == "" {
		return ErrEmptySearchString
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}

	if c.MaxBodySize <= 0 {
		return ErrInvalidMaxBodySize
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	return nil
}
