package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/roster/internal/config"
	"github.com/zjrosen/roster/internal/flags"
	"github.com/zjrosen/roster/internal/log"
	"github.com/zjrosen/roster/internal/presentation"
)

const projectConfigPath = ".roster/config.yaml"

var (
	version   = "dev"
	cfgFile   string
	debugFlag bool
	cfg       config.Config
	logClose  func()
)

var rootCmd = &cobra.Command{
	Use:   "roster",
	Short: "Discover and classify application artifacts from Go sources",
	Long: `roster compiles the Go sources of an application directory and classifies
the declared types into domain classes, request handlers, flows, services and
a data source, by naming and structural conventions.

Examples:
  roster list                           # every published artifact
  roster list --role handler -o table   # request handlers as a table
  roster lookup domain book             # one artifact by role and key
  roster dispatch /book/show            # which handler serves a URI
  roster watch --addr :9090             # rebuild on change, serve the API`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initLogging(cmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logClose != nil {
			logClose()
			logClose = nil
		}
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: .roster/config.yaml, then ~/.config/roster/config.yaml)")
	rootCmd.PersistentFlags().StringP("source", "s", "",
		"source directory to classify (overrides source_dir)")
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false,
		"enable debug logging (or set ROSTER_DEBUG)")

	_ = viper.BindPFlag("source_dir", rootCmd.PersistentFlags().Lookup("source"))
}

func initConfig() {
	// .env values are overridden by the real environment.
	_ = godotenv.Load()

	defaults := config.Defaults()
	viper.SetDefault("source_dir", defaults.SourceDir)
	viper.SetDefault("loader.reset_on_reload", defaults.Loader.ResetOnReload)
	viper.SetDefault("loader.compile_workers", defaults.Loader.CompileWorkers)
	viper.SetDefault("loader.parse_cache_size", defaults.Loader.ParseCacheSize)
	viper.SetDefault("watch.debounce", defaults.Watch.Debounce)
	viper.SetDefault("watch.metrics_addr", defaults.Watch.MetricsAddr)
	viper.SetDefault("cache.backend", defaults.Cache.Backend)
	viper.SetDefault("cache.ttl", defaults.Cache.TTL)
	viper.SetDefault("cache.redis_addr", defaults.Cache.RedisAddr)
	viper.SetDefault("cache.redis_db", defaults.Cache.RedisDB)
	viper.SetDefault("cache.prefix", defaults.Cache.Prefix)
	viper.SetDefault("catalog.path", defaults.Catalog.Path)
	viper.SetDefault("log.path", defaults.Log.Path)
	viper.SetDefault("log.level", defaults.Log.Level)
	viper.SetDefault("tracing.enabled", defaults.Tracing.Enabled)
	viper.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	viper.SetDefault("tracing.file_path", defaults.Tracing.FilePath)
	viper.SetDefault("tracing.otlp_endpoint", defaults.Tracing.OTLPEndpoint)
	viper.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)

	viper.SetEnvPrefix("ROSTER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .roster/config.yaml (current directory)
		// 2. ~/.config/roster/config.yaml (user config)
		if _, err := os.Stat(projectConfigPath); err == nil {
			viper.SetConfigFile(projectConfigPath)
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(filepath.Join(home, ".config", "roster"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "warning: reading config: %v\n", err)
		}
		// No config file: run on defaults. `roster init` writes one.
	}

	cfg = config.Defaults()
	if err := viper.Unmarshal(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "warning: decoding config: %v\n", err)
	}
	cfg.Flags = mergeFlags(flags.Defaults(), cfg.Flags)
	if cfg.Tracing.FilePath == "" {
		cfg.Tracing.FilePath = config.DefaultTracesFilePath()
	}
}

// mergeFlags overlays configured flags on the defaults so a partial flags
// section keeps the default for every flag it omits.
func mergeFlags(defaults, configured map[string]bool) map[string]bool {
	for name, enabled := range configured {
		defaults[name] = enabled
	}
	return defaults
}

func initLogging(cmd *cobra.Command) error {
	debug := debugFlag || os.Getenv("ROSTER_DEBUG") != ""
	if !debug {
		return nil
	}
	path := os.Getenv("ROSTER_LOG")
	if path == "" {
		path = cfg.Log.Path
	}
	if path == "-" {
		log.InitWriter(cmd.Root().ErrOrStderr())
	} else {
		cleanup, err := log.Init(path)
		if err != nil {
			return fmt.Errorf("initializing logging: %w", err)
		}
		logClose = cleanup
	}
	log.SetMinLevel(log.ParseLevel(cfg.Log.Level))
	log.Debug(log.CatConfig, "Config loaded", "file", viper.ConfigFileUsed(), "source", cfg.SourceDir)
	return nil
}

// configPath is the file `init` and `flags set` write to.
func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if used := viper.ConfigFileUsed(); used != "" {
		return used
	}
	return projectConfigPath
}

// Execute runs the root command. Errors the printer has not already shown
// are written to stderr.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil && !presentation.Reported(err) {
		fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", err)
	}
	return err
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
