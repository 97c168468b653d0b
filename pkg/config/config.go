// Package config loads relink's TOML configuration.
//
// A configuration file is optional. Missing keys keep their defaults, so a
// file only needs the settings it changes:
//
//	[engine]
//	container_margin = 60
//
//	[engine.policy]
//	cosmetic_fields = ["name", "isManuallyLayouted"]
//	max_cosmetic_fields = 1
//
//	[layout]
//	margin = 30
//
//	[cache]
//	backend = "redis"
//	[cache.redis]
//	addr = "localhost:6379"
//
//	[storage]
//	backend = "mongo"
//	[storage.mongo]
//	uri = "mongodb://localhost:27017"
//
// Unknown keys are rejected so typos do not silently fall back to defaults.
package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/relink/pkg/cache"
	"github.com/matzehuels/relink/pkg/engine"
	relerrors "github.com/matzehuels/relink/pkg/errors"
	"github.com/matzehuels/relink/pkg/layout"
	"github.com/matzehuels/relink/pkg/policy"
	"github.com/matzehuels/relink/pkg/server"
	"github.com/matzehuels/relink/pkg/storage"
)

// AppName names the configuration, cache and data directories.
const AppName = "relink"

// Backend names.
const (
	BackendNone   = "none"
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Config is the complete relink configuration.
type Config struct {
	Engine  EngineConfig  `toml:"engine"`
	Layout  LayoutConfig  `toml:"layout"`
	Cache   CacheConfig   `toml:"cache"`
	Storage StorageConfig `toml:"storage"`
	Server  server.Config `toml:"server"`
}

// EngineConfig holds the recalculation tunables.
type EngineConfig struct {
	ContainerMargin float64       `toml:"container_margin"`
	Policy          policy.Policy `toml:"policy"`
}

// LayoutConfig holds the built-in layouter options.
type LayoutConfig struct {
	Margin       float64  `toml:"margin"`
	MessageTypes []string `toml:"message_types"`
}

// CacheConfig selects the replay cache backend.
type CacheConfig struct {
	Backend string            `toml:"backend"` // file, redis or none
	Dir     string            `toml:"dir"`     // file backend; empty = XDG cache dir
	Redis   cache.RedisConfig `toml:"redis"`
}

// StorageConfig selects where the server keeps diagrams.
type StorageConfig struct {
	Backend string              `toml:"backend"` // file, mongo or memory
	Dir     string              `toml:"dir"`     // file backend; empty = XDG data dir
	Mongo   storage.MongoConfig `toml:"mongo"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	ec := engine.DefaultConfig()
	lo := layout.DefaultOptions()
	return Config{
		Engine: EngineConfig{
			ContainerMargin: ec.ContainerMargin,
			Policy:          ec.Policy,
		},
		Layout: LayoutConfig{
			Margin:       lo.Margin,
			MessageTypes: lo.MessageTypes,
		},
		Cache: CacheConfig{
			Backend: BackendFile,
			Redis:   cache.RedisConfig{Addr: "localhost:6379", Prefix: "relink:", DialTimeout: 5 * time.Second},
		},
		Storage: StorageConfig{
			Backend: BackendFile,
			Mongo:   storage.MongoConfig{Database: "relink", Collection: "diagrams", Timeout: 10 * time.Second},
		},
		Server: server.DefaultConfig(),
	}
}

// Load reads the file at path over the defaults. An empty path loads the
// default location and tolerates its absence; an explicit path must exist.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		dir, err := ConfigDir()
		if err != nil {
			return cfg, nil
		}
		path = filepath.Join(dir, AppName+".toml")
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if !explicit {
				return Default(), nil
			}
			return Config{}, relerrors.Wrap(relerrors.ErrCodeFileNotFound, err, "config %s", path)
		}
		return Config{}, relerrors.Wrap(relerrors.ErrCodeInvalidInput, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, relerrors.New(relerrors.ErrCodeInvalidInput, "config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse decodes TOML text over the defaults.
func Parse(data string) (Config, error) {
	cfg := Default()
	md, err := toml.Decode(data, &cfg)
	if err != nil {
		return Config{}, relerrors.Wrap(relerrors.ErrCodeInvalidInput, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, relerrors.New(relerrors.ErrCodeInvalidInput, "unknown config key %s", undecoded[0])
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges and backend names.
func (c Config) Validate() error {
	if c.Engine.ContainerMargin < 0 {
		return relerrors.New(relerrors.ErrCodeInvalidInput, "engine.container_margin must be >= 0")
	}
	if c.Engine.Policy.MaxCosmeticFields < 0 {
		return relerrors.New(relerrors.ErrCodeInvalidInput, "engine.policy.max_cosmetic_fields must be >= 0")
	}
	if c.Layout.Margin <= 0 {
		return relerrors.New(relerrors.ErrCodeInvalidInput, "layout.margin must be > 0")
	}
	switch c.Cache.Backend {
	case BackendNone, BackendFile, BackendRedis:
	default:
		return relerrors.New(relerrors.ErrCodeInvalidInput, "cache.backend %q (want none, file or redis)", c.Cache.Backend)
	}
	switch c.Storage.Backend {
	case BackendMemory, BackendFile, BackendMongo:
	default:
		return relerrors.New(relerrors.ErrCodeInvalidInput, "storage.backend %q (want memory, file or mongo)", c.Storage.Backend)
	}
	if c.Server.MaxBodyBytes <= 0 {
		return relerrors.New(relerrors.ErrCodeInvalidInput, "server.max_body_bytes must be > 0")
	}
	return nil
}

// EngineOptions converts the engine section.
func (c Config) EngineOptions() engine.Config {
	return engine.Config{
		Policy:          c.Engine.Policy,
		ContainerMargin: c.Engine.ContainerMargin,
	}
}

// LayoutOptions converts the layout section.
func (c Config) LayoutOptions() layout.Options {
	return layout.Options{
		Margin:       c.Layout.Margin,
		MessageTypes: c.Layout.MessageTypes,
	}
}

// Hash identifies the settings that change replay results. It is empty if
// they cannot be encoded.
func (c Config) Hash() string {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	if err := enc.Encode(struct {
		Engine EngineConfig `toml:"engine"`
		Layout LayoutConfig `toml:"layout"`
	}{c.Engine, c.Layout}); err != nil {
		return ""
	}
	return cache.Hash(buf.Bytes())
}

// NewEngine builds an engine with a registry of the built-in layouters.
func (c Config) NewEngine(logger *log.Logger) *engine.Engine {
	return engine.New(c.EngineOptions(), layout.NewRegistry(c.LayoutOptions()), logger)
}
