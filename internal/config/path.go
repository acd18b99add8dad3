// Package config provides configuration utilities for the application.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// ExpandPath expands ~ and environment variables in a file path.
// It handles both ~ for home directory and $VAR style environment variables.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = home
		}
	}

	return os.ExpandEnv(path)
}

// Files names the taxonomy and rule snapshots a session works against.
type Files struct {
	Taxonomy string
	Rules    string
}

// ResolveFiles returns the configured snapshot locations, defaulting to
// groups.txt and rules.json in the ledger's directory.
func ResolveFiles(ledgerPath string) Files {
	dir := filepath.Dir(ExpandPath(ledgerPath))

	taxonomy := viper.GetString("files.taxonomy")
	if taxonomy == "" {
		taxonomy = filepath.Join(dir, "groups.txt")
	}
	rules := viper.GetString("files.rules")
	if rules == "" {
		rules = filepath.Join(dir, "rules.json")
	}

	return Files{
		Taxonomy: ExpandPath(taxonomy),
		Rules:    ExpandPath(rules),
	}
}
