// Package commands wires the CLI subcommands onto the root application.
package commands

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hyeonlog/jangteo/internal/api"
	"github.com/hyeonlog/jangteo/internal/core/auth"
	"github.com/hyeonlog/jangteo/internal/core/config"
	"github.com/hyeonlog/jangteo/internal/live"
)

type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string
	DataDir    string

	// Config is loaded in the Before hook and available to all commands
	Config *config.Config

	// API is the marketplace REST client
	API *api.Client

	// Creds is the persisted credential store
	Creds auth.Store
}

// DefaultConfigPath returns the default config file path using XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "jangteo", "config.yaml")
}

// DefaultDataDir returns the default data directory using XDG_DATA_HOME.
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "jangteo")
}

// credentials loads the stored credentials, treating "not logged in" as
// empty credentials rather than an error.
func (f *Flags) credentials(ctx context.Context) auth.Credentials {
	creds, err := f.Creds.Load(ctx)
	if err != nil {
		return auth.Credentials{}
	}
	return creds
}

// liveManager builds the push connection manager for the current session.
// Without a push-capable token the manager stays silent and views fall
// back to fetch-only behavior.
func (f *Flags) liveManager(ctx context.Context) *live.Manager {
	creds := f.credentials(ctx)
	token := ""
	if creds.CanPush() {
		token = creds.AccessToken
	}
	return live.NewManager(live.Options{
		URL:            f.Config.WSURL,
		Token:          token,
		ReconnectDelay: f.Config.ReconnectDelay,
	})
}

// expandImageGlobs resolves image path arguments, expanding glob patterns
// like "photos/**/*.jpg" into concrete file paths.
func expandImageGlobs(patterns []string) ([]string, error) {
	var paths []string
	for _, pattern := range patterns {
		if !strings.ContainsAny(pattern, "*?[{") {
			paths = append(paths, pattern)
			continue
		}
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, err
		}
		paths = append(paths, matches...)
	}
	return paths, nil
}
