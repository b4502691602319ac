package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/nao1215/sitegrep/internal/model"
)

// ErrInvalidConfig is returned by Crawl when the Config fails validation.
// No page is fetched in that case.
var ErrInvalidConfig = errors.New("invalid crawl configuration")

// Config describes one crawl run. It is not modified during the run.
type Config struct {
	// SeedURL is the page the crawl starts from.
	SeedURL string

	// MaxDepth is the largest number of link hops from the seed that is
	// still fetched. 0 fetches only the seed page.
	MaxDepth int

	// SearchString is the literal text looked for on every page.
	SearchString string
}

// Validate checks the Config. It returns an error wrapping ErrInvalidConfig.
func (c Config) Validate() error {
	if c.SeedURL == "" {
		return fmt.Errorf("%w: seed URL is empty", ErrInvalidConfig)
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("%w: max depth %d is negative", ErrInvalidConfig, c.MaxDepth)
	}
	if c.SearchString == "" {
		return fmt.Errorf("%w: search string is empty", ErrInvalidConfig)
	}
	return nil
}

// Request is a page waiting to be visited.
type Request struct {
	URL   string
	Depth int
}

// Spider walks a site depth-first from a seed page, printing a marker line
// for every page it fetches and the context around the first occurrence of
// the search string on that page.
//
// A Spider holds no per-crawl state, so one Spider may run several crawls,
// including concurrently; each Crawl call gets its own visited set.
type Spider struct {
	// source fetches pages.
	source DocumentSource

	// output receives the trace lines.
	output io.Writer

	// logger receives diagnostics such as abandoned fetches.
	logger *slog.Logger

	// concurrency is the maximum number of fetches in flight.
	// 1 means the sequential, deterministic traversal.
	concurrency int
}

// SpiderOption configures a Spider.
type SpiderOption func(*Spider)

// WithOutput sets where trace lines are written. Default io.Discard.
func WithOutput(w io.Writer) SpiderOption {
	return func(s *Spider) {
		if w != nil {
			s.output = w
		}
	}
}

// WithLogger sets the logger. Default slog.Default().
func WithLogger(logger *slog.Logger) SpiderOption {
	return func(s *Spider) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithConcurrency sets the maximum number of fetches in flight.
// Values above 1 switch to concurrent expansion, in which output order
// across sibling branches is not deterministic.
func WithConcurrency(n int) SpiderOption {
	return func(s *Spider) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// NewSpider creates a Spider that fetches pages from source.
func NewSpider(source DocumentSource, opts ...SpiderOption) *Spider {
	s := &Spider{
		source:      source,
		output:      io.Discard,
		logger:      slog.Default(),
		concurrency: 1,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Crawl runs one crawl described by cfg.
//
// Fetch failures never abort the crawl: the failing page and everything
// reachable only through it are skipped. The returned error is non-nil only
// for an invalid cfg or a cancelled ctx; in the latter case the partial
// result is returned as well.
func (s *Spider) Crawl(ctx context.Context, cfg Config) (*model.Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	run := &crawlRun{
		spider:  s,
		cfg:     cfg,
		visited: NewVisitedSet(),
		result:  model.NewResult(cfg.SeedURL, cfg.SearchString, cfg.MaxDepth),
	}

	s.logger.Debug("crawl started",
		"seed", cfg.SeedURL,
		"maxDepth", cfg.MaxDepth,
		"concurrency", s.concurrency,
	)

	seed := Request{URL: cfg.SeedURL, Depth: 0}

	var err error
	if s.concurrency > 1 {
		run.sem = semaphore.NewWeighted(int64(s.concurrency))
		err = run.expand(ctx, seed)
	} else {
		err = run.walk(ctx, seed)
	}

	run.result.FinishedAt = time.Now()

	s.logger.Debug("crawl finished",
		"seed", cfg.SeedURL,
		"pages", run.result.PageCount(),
		"matches", run.result.MatchCount(),
		"elapsed", run.result.Duration(),
	)

	return run.result, err
}

// crawlRun is the state of a single Crawl call.
type crawlRun struct {
	spider  *Spider
	cfg     Config
	visited *VisitedSet

	// sem bounds in-flight fetches in concurrent mode; nil otherwise.
	sem *semaphore.Weighted

	// mu serializes writes to the output and the result.
	mu     sync.Mutex
	result *model.Result
}

// walk is the sequential traversal. It uses an explicit LIFO stack; children
// are pushed in reverse so they pop in link order, which gives the same
// depth-first pre-order as a recursive walk.
func (r *crawlRun) walk(ctx context.Context, seed Request) error {
	stack := []Request{seed}

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		req := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		children := r.visit(ctx, req)
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}

	return nil
}

// expand is the concurrent traversal: every child is expanded in its own
// goroutine and the semaphore limits how many fetches run at once.
func (r *crawlRun) expand(ctx context.Context, req Request) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	children := r.visit(ctx, req)
	if len(children) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, child := range children {
		g.Go(func() error {
			return r.expand(gctx, child)
		})
	}
	return g.Wait()
}

// visit processes one page and returns the requests for its crawlable links.
func (r *crawlRun) visit(ctx context.Context, req Request) []Request {
	if req.Depth > r.cfg.MaxDepth {
		return nil
	}
	if !r.visited.Add(req.URL) {
		return nil
	}

	doc, err := r.fetch(ctx, req.URL)
	if err != nil {
		r.spider.logger.Debug("fetch failed, skipping branch", "url", req.URL, "depth", req.Depth, "error", err)
		return nil
	}

	var found *model.SearchContext
	if sc, ok := ExtractContext(doc.Text(), r.cfg.SearchString); ok {
		found = &sc
	}
	r.record(req, found)

	// Links are followed whenever the configured limit is positive; the
	// depth guard at the top of visit is what stops the descent.
	if r.cfg.MaxDepth <= 0 {
		return nil
	}

	links := filterLinks(doc.Links())
	children := make([]Request, 0, len(links))
	for _, link := range links {
		children = append(children, Request{URL: link, Depth: req.Depth + 1})
	}
	return children
}

// fetch calls the DocumentSource, holding a semaphore slot when concurrent.
func (r *crawlRun) fetch(ctx context.Context, url string) (Document, error) {
	if r.sem != nil {
		if err := r.sem.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		defer r.sem.Release(1)
	}
	return r.spider.source.Fetch(ctx, url)
}

// record prints the page marker and, when found is non-nil, the context
// line, and adds both to the result. The lines for one page are never
// interleaved with another page's.
func (r *crawlRun) record(req Request, found *model.SearchContext) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintf(r.spider.output, "In %s\n", req.URL)
	r.result.Visited = append(r.result.Visited, model.PageVisit{URL: req.URL, Depth: req.Depth})

	if found == nil {
		return
	}

	fmt.Fprintln(r.spider.output, found.Text)
	r.result.Matches = append(r.result.Matches, model.Match{
		URL:     req.URL,
		Depth:   req.Depth,
		Context: *found,
	})
}
