package main

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/nao1215/sitegrep/internal/config"
	"github.com/spf13/cobra"
)

//go:embed templates/sitegrep.yaml
var configTemplate []byte

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a sitegrep configuration file",
		Long: `Init writes a commented configuration file for per-host request settings:
cookies and headers for pages behind a login, and a custom User-Agent.

By default the file is .sitegrep in the current directory. With --global it
is written to the XDG config directory, which sitegrep reads when no
.sitegrep is found in the current or home directory.

Examples:
  sitegrep init
  sitegrep init --global
  sitegrep init -o ~/work/.sitegrep -f`,
		Args: cobra.NoArgs,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile, "Output file path")
	cmd.Flags().BoolP("global", "g", false, "Write to "+config.GlobalConfigFile())
	cmd.Flags().BoolP("force", "f", false, "Overwrite an existing file")
	cmd.MarkFlagsMutuallyExclusive("output", "global")

	return cmd
}

func runInitCmd(cmd *cobra.Command, _ []string) error {
	path, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	global, err := cmd.Flags().GetBool("global")
	if err != nil {
		return err
	}
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}
	if global {
		path = config.GlobalConfigFile()
	}

	if err := writeConfigTemplate(path, force); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", path)
		}
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created configuration file: %s\n", path)
	return nil
}

// writeConfigTemplate creates path with owner-only permissions, since site
// entries hold cookies and tokens. Without force an existing file is left
// untouched and fs.ErrExist is returned.
func writeConfigTemplate(path string, force bool) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if force {
		flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}
	f, err := os.OpenFile(path, flags, 0600) //nolint:gosec // path comes from -o
	if err != nil {
		return err
	}
	if _, err := f.Write(configTemplate); err != nil {
		f.Close()
		return fmt.Errorf("failed to write configuration file: %w", err)
	}
	return f.Close()
}
