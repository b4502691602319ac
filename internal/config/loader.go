package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the name of the per-directory and per-user config file.
const DefaultConfigFile = ".sitegrep"

// globalConfigName is the file name inside the XDG config directory.
const globalConfigName = "config.yaml"

var (
	// ErrConfigNotFound is returned when the configuration file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")

	// ErrInvalidConfigFile is returned when the configuration file cannot be
	// decoded or names a site by URL instead of host.
	ErrInvalidConfigFile = errors.New("invalid configuration file")
)

// GlobalConfigFile returns the config file path in the XDG config directory.
func GlobalConfigFile() string {
	return filepath.Join(XDGConfigDir(), globalConfigName)
}

// LoadConfigFile reads the site settings at path. Unknown keys are rejected
// so a misspelled "userAgent" or "headers" does not silently do nothing.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from --config or the lookup order
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}
	return parseFile(data)
}

func parseFile(data []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfigFile, err)
	}

	for host := range f.Sites {
		if strings.Contains(host, "/") {
			return nil, fmt.Errorf("%w: site %q must be a host name such as example.com", ErrInvalidConfigFile, host)
		}
	}
	if f.Sites == nil {
		f.Sites = make(map[string]SiteConfig)
	}
	return &f, nil
}

// EmptyFile returns a File with no site settings.
func EmptyFile() *File {
	return &File{Sites: make(map[string]SiteConfig)}
}

// FindConfigFile returns the first existing file among the candidates, or ""
// when there is none. An explicit path is the only candidate when given.
// Otherwise the lookup order is the current directory, the home directory
// and then GlobalConfigFile.
func FindConfigFile(explicitPath string) string {
	var candidates []string
	if explicitPath != "" {
		candidates = []string{explicitPath}
	} else {
		if cwd, err := os.Getwd(); err == nil {
			candidates = append(candidates, filepath.Join(cwd, DefaultConfigFile))
		}
		if home, err := os.UserHomeDir(); err == nil {
			candidates = append(candidates, filepath.Join(home, DefaultConfigFile))
		}
		candidates = append(candidates, GlobalConfigFile())
	}

	for _, path := range candidates {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}
