// Package config loads and validates the application configuration from
// defaults, a TOML config file, MULTI_SAXON_* environment variables, and
// command-line flags, in ascending priority.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Pantagrueliste/multi-saxon/pkg/pipeline"
)

const (
	// EnvPrefix namespaces environment variables, e.g.
	// MULTI_SAXON_INPUT_DIRECTORY overrides input.directory.
	EnvPrefix = "MULTI_SAXON"
	// DefaultConfigName is the basename searched in the default locations.
	DefaultConfigName = "config"
)

// DefaultXSLTCommand invokes a Saxon-HE jar from the working directory.
// Overridable via xslt.command.
var DefaultXSLTCommand = []string{"java", "-jar", "saxon-he.jar"}

// Settings is the validated application configuration: the pipeline
// options plus the CLI-level concerns (logging sink, UI mode) the
// library does not own.
type Settings struct {
	Options pipeline.Options

	XSLTCommand  []string
	LogFile      string
	LogLevel     slog.Level
	Verbose      bool
	NoTUI        bool
	OutputFormat pipeline.OutputFormat
}

// fileConfig mirrors the TOML table layout.
type fileConfig struct {
	Input struct {
		Directory string `mapstructure:"directory"`
	} `mapstructure:"input"`
	Output struct {
		Directory    string `mapstructure:"directory"`
		MetadataFile string `mapstructure:"metadata_file"`
	} `mapstructure:"output"`
	XSLT struct {
		FilePath string   `mapstructure:"file_path"`
		Command  []string `mapstructure:"command"`
	} `mapstructure:"xslt"`
	Performance struct {
		MaxWorkers int    `mapstructure:"max_workers"`
		BatchSize  int    `mapstructure:"batch_size"`
		MaxRetries int    `mapstructure:"max_retries"`
		RetryDelay string `mapstructure:"retry_delay"`
	} `mapstructure:"performance"`
	Logging struct {
		Filename string `mapstructure:"filename"`
		Level    string `mapstructure:"level"`
	} `mapstructure:"logging"`
	UI struct {
		NoTUI        bool   `mapstructure:"no_tui"`
		OutputFormat string `mapstructure:"output_format"`
	} `mapstructure:"ui"`
}

// flagBindings maps flag names to the viper keys they override.
var flagBindings = map[string]string{
	"input-dir":     "input.directory",
	"output-dir":    "output.directory",
	"metadata-file": "output.metadata_file",
	"xslt-file":     "xslt.file_path",
	"workers":       "performance.max_workers",
	"batch-size":    "performance.batch_size",
	"max-retries":   "performance.max_retries",
	"retry-delay":   "performance.retry_delay",
	"log-file":      "logging.filename",
	"log-level":     "logging.level",
	"no-tui":        "ui.no_tui",
	"output-format": "ui.output_format",
}

// LoadAndValidate merges all configuration sources and returns validated
// settings. Validation failures wrap pipeline.ErrConfigValidation so the
// caller can distinguish them from runtime errors.
func LoadAndValidate(cfgFile string, verbose bool, flags *pflag.FlagSet) (Settings, error) {
	var s Settings
	v := viper.New()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(DefaultConfigName)
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "multi_saxon"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) && cfgFile == "" {
			// No config file is fine; env vars and flags may carry the
			// required settings.
		} else {
			return s, fmt.Errorf("%w: cannot read config file: %w", pipeline.ErrConfigValidation, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	for flagName, key := range flagBindings {
		if f := flags.Lookup(flagName); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return s, fmt.Errorf("%w: cannot bind flag --%s: %w", pipeline.ErrConfigValidation, flagName, err)
			}
		}
	}

	var fc fileConfig
	if err := v.Unmarshal(&fc); err != nil {
		return s, fmt.Errorf("%w: cannot decode configuration: %w", pipeline.ErrConfigValidation, err)
	}

	var missing []string
	if fc.Input.Directory == "" {
		missing = append(missing, "input.directory")
	}
	if fc.Output.Directory == "" {
		missing = append(missing, "output.directory")
	}
	if fc.Output.MetadataFile == "" {
		missing = append(missing, "output.metadata_file")
	}
	if fc.XSLT.FilePath == "" {
		missing = append(missing, "xslt.file_path")
	}
	if len(missing) > 0 {
		return s, fmt.Errorf("%w: missing required configuration: %s", pipeline.ErrConfigValidation, strings.Join(missing, ", "))
	}

	if fc.Performance.MaxWorkers < 0 {
		return s, fmt.Errorf("%w: performance.max_workers must be >= 0, got %d", pipeline.ErrConfigValidation, fc.Performance.MaxWorkers)
	}
	if fc.Performance.BatchSize < 0 {
		return s, fmt.Errorf("%w: performance.batch_size must be >= 0, got %d", pipeline.ErrConfigValidation, fc.Performance.BatchSize)
	}
	if fc.Performance.MaxRetries < 0 {
		return s, fmt.Errorf("%w: performance.max_retries must be >= 0, got %d", pipeline.ErrConfigValidation, fc.Performance.MaxRetries)
	}

	retryDelay := pipeline.DefaultRetryDelay
	if fc.Performance.RetryDelay != "" {
		d, err := time.ParseDuration(fc.Performance.RetryDelay)
		if err != nil || d < 0 {
			return s, fmt.Errorf("%w: invalid performance.retry_delay %q", pipeline.ErrConfigValidation, fc.Performance.RetryDelay)
		}
		retryDelay = d
	}

	level, err := ParseLevel(fc.Logging.Level)
	if err != nil {
		return s, fmt.Errorf("%w: %w", pipeline.ErrConfigValidation, err)
	}

	format := pipeline.OutputFormat(fc.UI.OutputFormat)
	switch format {
	case pipeline.OutputFormatText, pipeline.OutputFormatJSON:
	default:
		return s, fmt.Errorf("%w: invalid ui.output_format %q (allowed: text, json)", pipeline.ErrConfigValidation, fc.UI.OutputFormat)
	}

	absInput, err := filepath.Abs(fc.Input.Directory)
	if err != nil {
		return s, fmt.Errorf("%w: cannot resolve input directory %q: %w", pipeline.ErrConfigValidation, fc.Input.Directory, err)
	}
	info, err := os.Stat(absInput)
	if err != nil {
		return s, fmt.Errorf("%w: input directory %q does not exist or is unreadable: %w", pipeline.ErrConfigValidation, absInput, err)
	}
	if !info.IsDir() {
		return s, fmt.Errorf("%w: input path %q is not a directory", pipeline.ErrConfigValidation, absInput)
	}

	absOutput, err := filepath.Abs(fc.Output.Directory)
	if err != nil {
		return s, fmt.Errorf("%w: cannot resolve output directory %q: %w", pipeline.ErrConfigValidation, fc.Output.Directory, err)
	}

	// The partitioning strategy is an explicit choice derived exactly
	// once, here: a configured batch size selects fixed-batch, otherwise
	// documents are striped evenly across workers.
	strategy := pipeline.StrategyStriped
	if fc.Performance.BatchSize > 0 {
		strategy = pipeline.StrategyFixedBatch
	}

	command := fc.XSLT.Command
	if len(command) == 0 {
		command = DefaultXSLTCommand
	}

	s = Settings{
		Options: pipeline.Options{
			InputPath:      absInput,
			OutputPath:     absOutput,
			MetadataFile:   fc.Output.MetadataFile,
			StylesheetPath: fc.XSLT.FilePath,
			MaxWorkers:     fc.Performance.MaxWorkers,
			Strategy:       strategy,
			BatchSize:      fc.Performance.BatchSize,
			MaxRetries:     fc.Performance.MaxRetries,
			RetryDelay:     retryDelay,
			OutputFormat:   format,
		},
		XSLTCommand:  command,
		LogFile:      fc.Logging.Filename,
		LogLevel:     level,
		Verbose:      verbose,
		NoTUI:        fc.UI.NoTUI,
		OutputFormat: format,
	}
	return s, nil
}

// ParseLevel maps the configured level names onto slog levels. CRITICAL
// has no slog equivalent and maps above ERROR.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		return slog.LevelDebug, nil
	case "", "INFO":
		return slog.LevelInfo, nil
	case "WARNING", "WARN":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	case "CRITICAL":
		return slog.LevelError + 4, nil
	default:
		return 0, fmt.Errorf("invalid logging.level %q (allowed: DEBUG, INFO, WARNING, ERROR, CRITICAL)", name)
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("input.directory", "")
	v.SetDefault("output.directory", "")
	v.SetDefault("output.metadata_file", "")
	v.SetDefault("xslt.file_path", "")
	v.SetDefault("xslt.command", []string{})
	v.SetDefault("performance.max_workers", pipeline.DefaultMaxWorkers)
	v.SetDefault("performance.batch_size", pipeline.DefaultBatchSize)
	v.SetDefault("performance.max_retries", pipeline.DefaultMaxRetries)
	v.SetDefault("performance.retry_delay", pipeline.DefaultRetryDelay.String())
	v.SetDefault("logging.filename", pipeline.DefaultLogFilename)
	v.SetDefault("logging.level", pipeline.DefaultLogLevel)
	v.SetDefault("ui.no_tui", false)
	v.SetDefault("ui.output_format", string(pipeline.DefaultOutputFormat))
}
