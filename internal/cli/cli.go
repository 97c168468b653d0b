// Package cli implements the relink command-line interface.
//
// # Commands
//
//   - recalc: replay an event script on a diagram and write the result
//   - validate: check a diagram (and optionally an event script)
//   - visualize: export a diagram as SVG, DOT or JSON
//   - inspect: browse the triggers and actions of a replay interactively
//   - serve: run the HTTP API
//   - cache: manage the local replay cache
//
// Settings come from relink.toml in the XDG config directory, or the file
// given with --config. See package config for the format.
//
// # Logging
//
// Commands log to stderr through charmbracelet/log; --verbose switches to
// debug level.
package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/relink/pkg/buildinfo"
	"github.com/matzehuels/relink/pkg/cache"
	"github.com/matzehuels/relink/pkg/config"
	"github.com/matzehuels/relink/pkg/pipeline"
	"github.com/matzehuels/relink/pkg/storage"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	cfg        *config.Config
}

// New creates a CLI that logs to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// loadConfig loads the configuration once per invocation.
func (c *CLI) loadConfig() (config.Config, error) {
	if c.cfg != nil {
		return *c.cfg, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return config.Config{}, err
	}
	c.cfg = &cfg
	return cfg, nil
}

// newRunner creates a pipeline runner from the configuration.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	cc, err := newCache(ctx, cfg, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cc, versionKeyer(), cfg.NewEngine(c.Logger), c.Logger), nil
}

// versionKeyer keeps cache entries of different relink builds apart.
func versionKeyer() cache.Keyer {
	return cache.NewScopedKeyer(nil, "v"+buildinfo.Version+":")
}

// newCache opens the configured cache backend. A file cache whose directory
// cannot be determined disables caching.
func newCache(ctx context.Context, cfg config.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Cache.Backend {
	case config.BackendRedis:
		return cache.NewRedisCache(ctx, cfg.Cache.Redis)
	case config.BackendFile:
		dir := cfg.Cache.Dir
		if dir == "" {
			var err error
			if dir, err = config.CacheDir(); err != nil {
				return cache.NewNullCache(), nil
			}
		}
		return cache.NewFileCache(dir)
	default:
		return cache.NewNullCache(), nil
	}
}

// newStore opens the configured diagram store.
func newStore(ctx context.Context, cfg config.Config) (storage.Store, error) {
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		return storage.NewMemoryStore(), nil
	case config.BackendMongo:
		return storage.NewMongoStore(ctx, cfg.Storage.Mongo)
	case config.BackendFile:
		dir := cfg.Storage.Dir
		if dir == "" {
			data, err := config.DataDir()
			if err != nil {
				return nil, fmt.Errorf("get data dir: %w", err)
			}
			dir = filepath.Join(data, "diagrams")
		}
		return storage.NewFileStore(dir)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// replayOptions builds pipeline options from the configuration and flags.
func (c *CLI) replayOptions(events []pipeline.Event, ed editorFlags, refresh bool) (pipeline.Options, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return pipeline.Options{}, err
	}
	return pipeline.Options{
		Events:     events,
		Editor:     ed.editor(),
		ConfigHash: cfg.Hash(),
		Refresh:    refresh,
	}, nil
}
