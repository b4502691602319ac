// Package config provides configuration structures and utilities for
// sitegrep: the run configuration built from the command line, its
// validation rules, and the optional YAML file with per-host request
// settings (headers, cookies, User-Agent).
package config
