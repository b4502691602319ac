package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/nao1215/sitegrep/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// NewRootCmd creates the root command. Given three positional arguments it
// runs a crawl; the subcommands cover setup and history.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sitegrep <seed-url> <max-depth> <search-string>",
		Short: "Search the text of a web site for a string",
		Long: `sitegrep crawls a web site starting at a seed page and searches the text of
every page it reaches for a literal, case-sensitive string.

For each visited page it prints "In <url>". When the page contains the
search string, the next line shows up to 64 characters on either side of
the first occurrence.

Links are followed depth first, in the order they appear on the page, until
<max-depth> hops from the seed. Only links that look like web pages (no
extension, .html, .htm or .txt) are followed, and every URL is fetched at
most once. Pages that fail to load are skipped.

Examples:
  # Search two levels deep
  sitegrep https://example.com/ 2 "contact us"

  # Fetch up to 8 pages at a time and write a Markdown report
  sitegrep -c 8 -m -o report.md https://example.com/ 3 "release notes"

  # Keep the run in the history database
  sitegrep --save https://example.com/ 1 "pricing"
  sitegrep history`,
		Args:          cobra.ExactArgs(3),
		RunE:          runCrawlCmd,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().String("config", "",
		"Configuration file path (default: .sitegrep in current or home directory)")
	cmd.PersistentFlags().String("db-dir", "",
		"History database directory (default: "+config.XDGDataDir()+")")

	addCrawlFlags(cmd)
	cmd.SetFlagErrorFunc(negativeDepthFlagError)

	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// negativeDepthFlagError reports a negative <max-depth> such as "-3" as an
// invalid depth. pflag reads it as a cluster of unknown shorthand flags.
func negativeDepthFlagError(cmd *cobra.Command, err error) error {
	if cmd.HasParent() {
		return err
	}
	var notExist *pflag.NotExistError
	if !errors.As(err, &notExist) {
		return err
	}
	token := "-" + notExist.GetSpecifiedShortnames()
	if _, convErr := strconv.Atoi(token); convErr != nil {
		return err
	}
	return fmt.Errorf("%w: got %s", config.ErrInvalidMaxDepth, token)
}

// Execute runs the root command and exits with status 1 on error.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
