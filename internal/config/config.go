// Package config provides configuration types and defaults for roster.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zjrosen/roster/internal/flags"
	"github.com/zjrosen/roster/internal/log"
)

// Config holds all configuration options for roster.
type Config struct {
	SourceDir string          `mapstructure:"source_dir"` // directory holding the .go resources
	Loader    LoaderConfig    `mapstructure:"loader"`
	Watch     WatchConfig     `mapstructure:"watch"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Log       LogConfig       `mapstructure:"log"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
	Flags     map[string]bool `mapstructure:"flags"`
}

// LoaderConfig controls how resources are compiled.
type LoaderConfig struct {
	// ResetOnReload compiles every reload into a fresh type space instead of
	// the cumulative one shared with earlier builds.
	ResetOnReload  bool `mapstructure:"reset_on_reload"`
	CompileWorkers int  `mapstructure:"compile_workers"` // 1 = sequential
	// ParseCacheSize bounds the number of parsed resources kept between
	// reloads, keyed by content hash. 0 disables the cache.
	ParseCacheSize int `mapstructure:"parse_cache_size"`
}

// WatchConfig holds settings for `roster watch`.
type WatchConfig struct {
	Debounce    time.Duration `mapstructure:"debounce"`
	MetricsAddr string        `mapstructure:"metrics_addr"` // empty disables the metrics endpoint
}

// CacheConfig holds dispatch cache settings.
type CacheConfig struct {
	Backend   string        `mapstructure:"backend"` // "memory" or "redis"
	TTL       time.Duration `mapstructure:"ttl"`
	RedisAddr string        `mapstructure:"redis_addr"`
	RedisDB   int           `mapstructure:"redis_db"`
	Prefix    string        `mapstructure:"prefix"` // redis key prefix
}

// Cache backends.
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// CatalogConfig holds build catalog settings.
type CatalogConfig struct {
	// Path is the SQLite database file. Default: ~/.roster/catalog.db
	Path string `mapstructure:"path"`
}

// LogConfig holds debug log settings.
type LogConfig struct {
	Path  string `mapstructure:"path"`  // "-" for stderr
	Level string `mapstructure:"level"` // debug, info, warn, error
}

// TracingConfig holds distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether tracing is active.
	Enabled bool `mapstructure:"enabled"`

	// Exporter specifies the trace export backend.
	// Valid values: "none", "file", "stdout", "otlp"
	Exporter string `mapstructure:"exporter"`

	// FilePath is the output path for the file exporter.
	FilePath string `mapstructure:"file_path"`

	// OTLPEndpoint is the collector endpoint for the otlp exporter.
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`

	// SampleRate is the fraction of builds traced (0.0-1.0).
	SampleRate float64 `mapstructure:"sample_rate"`
}

// DefaultCatalogPath returns the default catalog database location.
func DefaultCatalogPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".roster", "catalog.db")
	}
	return filepath.Join(home, ".roster", "catalog.db")
}

// DefaultTracesFilePath returns the default path for trace files.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "roster", "traces", "traces.jsonl")
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		SourceDir: ".",
		Loader: LoaderConfig{
			ResetOnReload:  true,
			CompileWorkers: 1,
			ParseCacheSize: 256,
		},
		Watch: WatchConfig{
			Debounce: 300 * time.Millisecond,
		},
		Cache: CacheConfig{
			Backend:   CacheBackendMemory,
			TTL:       10 * time.Minute,
			RedisAddr: "localhost:6379",
			Prefix:    "roster",
		},
		Catalog: CatalogConfig{
			Path: DefaultCatalogPath(),
		},
		Log: LogConfig{
			Path:  "debug.log",
			Level: "debug",
		},
		Tracing: TracingConfig{
			Enabled:      false,
			Exporter:     "file",
			FilePath:     "", // Derived from config dir at runtime
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
		},
		Flags: flags.Defaults(),
	}
}

// Validate checks the configuration for invalid values.
func Validate(c Config) error {
	if c.SourceDir == "" {
		return fmt.Errorf("source_dir is required")
	}
	if c.Loader.CompileWorkers < 0 {
		return fmt.Errorf("loader.compile_workers must not be negative, got %d", c.Loader.CompileWorkers)
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative, got %s", c.Watch.Debounce)
	}
	if c.Loader.ParseCacheSize < 0 {
		return fmt.Errorf("loader.parse_cache_size must not be negative, got %d", c.Loader.ParseCacheSize)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative, got %s", c.Cache.TTL)
	}
	switch c.Cache.Backend {
	case "", CacheBackendMemory:
	case CacheBackendRedis:
		if c.Cache.RedisAddr == "" {
			return fmt.Errorf("cache.redis_addr is required when backend is %q", CacheBackendRedis)
		}
	default:
		return fmt.Errorf("cache.backend must be %q or %q, got %q", CacheBackendMemory, CacheBackendRedis, c.Cache.Backend)
	}
	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be \"debug\", \"info\", \"warn\", or \"error\", got %q", c.Log.Level)
	}
	return ValidateTracing(c.Tracing)
}

// ValidateTracing validates tracing configuration.
func ValidateTracing(tracing TracingConfig) error {
	if tracing.SampleRate < 0.0 || tracing.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", tracing.SampleRate)
	}

	if tracing.Exporter != "" {
		switch tracing.Exporter {
		case "none", "file", "stdout", "otlp":
		default:
			return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", tracing.Exporter)
		}
	}

	if tracing.Enabled {
		// OTLPEndpoint is required when Exporter is "otlp"
		if tracing.Exporter == "otlp" && tracing.OTLPEndpoint == "" {
			return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
		}
	}

	return nil
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# Roster Configuration

# Directory holding the .go resources to classify (default: current directory)
source_dir: .

# Resource compilation
loader:
  reset_on_reload: true   # Compile each reload into a fresh type space
  compile_workers: 1      # Parse resources in parallel when > 1
  parse_cache_size: 256   # Parsed resources kept between reloads (0 disables)

# roster watch settings
watch:
  debounce: 300ms         # Coalesce bursts of file changes
  # metrics_addr: :9090   # Serve Prometheus metrics on this address

# URI dispatch cache
cache:
  backend: memory         # memory or redis
  ttl: 10m
  # redis_addr: localhost:6379
  # redis_db: 0
  # prefix: roster

# Build history
# catalog:
#   path: ~/.roster/catalog.db

# Debug log (enabled with --debug or ROSTER_DEBUG=1)
log:
  path: debug.log         # "-" writes to stderr; ROSTER_LOG overrides
  level: debug

# Feature flags
flags:
  strict-names: false     # Fail a build when two artifacts share a name
  dispatch-cache: true    # Memoize URI dispatch per build
  catalog: true           # Record builds in the catalog

# Distributed tracing of builds
# tracing:
#   enabled: false                 # Enable/disable tracing (default: false)
#   exporter: file                 # Export backend: none, file, stdout, otlp (default: file)
#   file_path: ~/.config/roster/traces/traces.jsonl  # Output file for file exporter
#   otlp_endpoint: localhost:4317  # OTLP collector endpoint (for otlp exporter)
#   sample_rate: 1.0               # Trace sampling rate 0.0-1.0 (default: 1.0)
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
