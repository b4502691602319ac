package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/nao1215/sitegrep/internal/config"
	"github.com/nao1215/sitegrep/internal/crawler"
	"github.com/nao1215/sitegrep/internal/database"
	"github.com/nao1215/sitegrep/internal/log"
	"github.com/nao1215/sitegrep/internal/model"
	"github.com/nao1215/sitegrep/internal/report"
	"github.com/spf13/cobra"
)

// addCrawlFlags registers the flags of the crawl (root) command.
func addCrawlFlags(cmd *cobra.Command) {
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each page fetch")
	cmd.Flags().StringP("user-agent", "u", config.DefaultUserAgent,
		"User-Agent header sent with every request")
	cmd.Flags().Int64("max-body-size", config.DefaultMaxBodySize,
		"Maximum number of bytes read from each response")
	cmd.Flags().IntP("concurrency", "c", config.DefaultConcurrency,
		"Maximum number of pages fetched at once (1 keeps the visit order deterministic)")

	cmd.Flags().BoolP("save", "s", false,
		"Save the run to the history database")

	cmd.Flags().BoolP("json", "j", false,
		"Write a JSON report after the crawl (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Write a Markdown report after the crawl (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write the report to this file instead of stdout (creates directories if needed)")
}

// runCrawlCmd executes a crawl from the root command's arguments.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewSecureLogger(cmd.ErrOrStderr(), cfg.Verbose)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Warn("received shutdown signal, stopping crawl")
			cancel()
		case <-ctx.Done():
		}
	}()

	return runCrawl(ctx, cfg, cmd.OutOrStdout(), cmd.ErrOrStderr(), logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// getDBDir returns --db-dir, or the XDG data directory when unset.
func getDBDir(cmd *cobra.Command) string {
	dir, err := cmd.Flags().GetString("db-dir")
	if err != nil || dir == "" {
		return config.XDGDataDir()
	}
	return dir
}

// buildConfig creates a Config from positional arguments and flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	cfg.SeedURL = args[0]
	depth, err := config.ParseMaxDepth(args[1])
	if err != nil {
		return nil, err
	}
	cfg.MaxDepth = depth
	cfg.SearchString = args[2]

	if cfg.Timeout, err = cmd.Flags().GetDuration("timeout"); err != nil {
		return nil, err
	}
	if cfg.UserAgent, err = cmd.Flags().GetString("user-agent"); err != nil {
		return nil, err
	}
	if cfg.MaxBodySize, err = cmd.Flags().GetInt64("max-body-size"); err != nil {
		return nil, err
	}
	if cfg.Concurrency, err = cmd.Flags().GetInt("concurrency"); err != nil {
		return nil, err
	}
	if cfg.SaveToDB, err = cmd.Flags().GetBool("save"); err != nil {
		return nil, err
	}
	if cfg.JSONReport, err = cmd.Flags().GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = cmd.Flags().GetString("output"); err != nil {
		return nil, err
	}
	if cfg.ConfigFilePath, err = cmd.Flags().GetString("config"); err != nil {
		return nil, err
	}

	cfg.Verbose = getVerboseFlag(cmd)
	cfg.DBDir = getDBDir(cmd)

	cfg.SiteConfigs, err = loadSiteConfigs(cfg.ConfigFilePath)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadSiteConfigs loads the config file. An explicitly given file must
// exist; otherwise a missing file means no site settings.
func loadSiteConfigs(explicitPath string) (*config.File, error) {
	path := config.FindConfigFile(explicitPath)
	if path == "" {
		if explicitPath != "" {
			return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, explicitPath)
		}
		return config.EmptyFile(), nil
	}

	file, err := config.LoadConfigFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
	}
	return file, nil
}

// siteDecorator applies per-host cookie, headers and User-Agent from the
// config file to outgoing requests.
func siteDecorator(sites *config.File, logger *slog.Logger) crawler.RequestDecorator {
	return func(req *http.Request) {
		sc := sites.GetSiteConfig(req.URL.Host)
		if sc.IsZero() {
			return
		}
		if sc.UserAgent != "" {
			req.Header.Set("User-Agent", sc.UserAgent)
		}
		for k, v := range sc.Headers {
			req.Header.Set(k, v)
		}
		if sc.Cookie != "" {
			req.Header.Set("Cookie", sc.Cookie)
		}
		logger.Debug("applied site config",
			"host", req.URL.Host,
			"cookie", sc.Cookie,
			"headers", len(sc.Headers),
		)
	}
}

// newSource builds the HTTP document source described by cfg.
func newSource(cfg *config.Config, logger *slog.Logger) *crawler.HTTPSource {
	opts := []crawler.HTTPSourceOption{
		crawler.WithUserAgent(cfg.UserAgent),
		crawler.WithMaxBodySize(cfg.MaxBodySize),
	}
	if cfg.SiteConfigs != nil && (len(cfg.SiteConfigs.Sites) > 0 || !cfg.SiteConfigs.Defaults.IsZero()) {
		opts = append(opts, crawler.WithRequestDecorator(siteDecorator(cfg.SiteConfigs, logger)))
	}
	return crawler.NewHTTPSource(crawler.NewHTTPClient(cfg.Timeout), opts...)
}

// runCrawl crawls, then writes the report and saves the run if requested.
// The trace goes to stdout; status messages go to stderr.
func runCrawl(ctx context.Context, cfg *config.Config, stdout, stderr io.Writer, logger *slog.Logger) error {
	spider := crawler.NewSpider(newSource(cfg, logger),
		crawler.WithOutput(stdout),
		crawler.WithLogger(logger),
		crawler.WithConcurrency(cfg.Concurrency),
	)

	result, crawlErr := spider.Crawl(ctx, crawler.Config{
		SeedURL:      cfg.SeedURL,
		MaxDepth:     cfg.MaxDepth,
		SearchString: cfg.SearchString,
	})
	if result == nil {
		return crawlErr
	}
	if crawlErr != nil {
		logger.Warn("crawl interrupted, results are partial", "error", crawlErr)
	}

	if err := outputReport(cfg, result, stdout); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if cfg.SaveToDB {
		runID, err := saveResult(ctx, cfg.DBDir, result)
		if err != nil {
			return err
		}
		logger.Info("run saved", "id", runID, "dir", cfg.DBDir)
		fmt.Fprintf(stderr, "Saved as run %d\n", runID)
	}

	if crawlErr != nil {
		return fmt.Errorf("crawl interrupted: %w", crawlErr)
	}
	return nil
}

// outputReport writes the requested report, if any, to the report file or
// to stdout after the trace.
func outputReport(cfg *config.Config, result *model.Result, stdout io.Writer) error {
	if !cfg.JSONReport && !cfg.MarkdownReport {
		return nil
	}

	output := stdout
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	}

	var w report.Writer
	if cfg.JSONReport {
		w = report.NewJSONWriter(output, report.WithPrettyPrint(), report.WithVersion(getVersion()))
	} else {
		w = report.NewMarkdownWriter(output)
	}
	_, err := w.Write(result)
	return err
}

// saveResult stores result in the history database in dbDir.
func saveResult(ctx context.Context, dbDir string, result *model.Result) (int64, error) {
	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return 0, fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	// A cancelled crawl is still worth keeping.
	if ctx.Err() != nil {
		ctx = context.WithoutCancel(ctx)
	}

	runID, err := db.SaveResult(ctx, result)
	if err != nil {
		return 0, fmt.Errorf("failed to save run: %w", err)
	}
	return runID, nil
}
