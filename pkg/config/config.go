// Package config provides the configuration system for go-anndata.
// Settings cover the storage backend, block compression, and logging,
// and can come from defaults, a config file, or ANNDATA_* environment
// variables, in increasing order of precedence.
package config

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/JaneliaSciComp/go-anndata/pkg/compression"
	"github.com/JaneliaSciComp/go-anndata/pkg/errors"
	"github.com/JaneliaSciComp/go-anndata/pkg/logger"
)

// Config is the top-level configuration.
type Config struct {
	Store       StoreConfig       `mapstructure:"store" yaml:"store" json:"store"`
	Compression CompressionConfig `mapstructure:"compression" yaml:"compression" json:"compression"`
	Logging     LoggingConfig     `mapstructure:"logging" yaml:"logging" json:"logging"`
}

// StoreConfig selects and tunes the storage backend.
type StoreConfig struct {
	// Path is the root directory of the filesystem store.
	Path string `mapstructure:"path" yaml:"path" json:"path"`
	// BufferSize sets the buffer size for streaming block I/O.
	BufferSize int `mapstructure:"buffer_size" yaml:"buffer_size" json:"buffer_size"`
}

// CompressionConfig selects the block codec for dataset writes.
type CompressionConfig struct {
	// Algorithm selects the codec (none, gzip, snappy, lz4, zstd, s2, deflate).
	Algorithm string `mapstructure:"algorithm" yaml:"algorithm" json:"algorithm"`
	// Level sets the speed/ratio trade-off (1-9).
	Level int `mapstructure:"level" yaml:"level" json:"level"`
}

// LoggingConfig tunes the structured logger.
type LoggingConfig struct {
	// Level sets verbosity (debug, info, warn, error).
	Level string `mapstructure:"level" yaml:"level" json:"level"`
	// Encoding selects json or console output.
	Encoding string `mapstructure:"encoding" yaml:"encoding" json:"encoding"`
	// Development enables colored, stack-traced output.
	Development bool `mapstructure:"development" yaml:"development" json:"development"`
}

// Default returns the default configuration: gzip blocks and json info
// logging.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			BufferSize: 64 * 1024,
		},
		Compression: CompressionConfig{
			Algorithm: string(compression.Gzip),
			Level:     int(compression.Default),
		},
		Logging: LoggingConfig{
			Level:    "info",
			Encoding: "json",
		},
	}
}

// Load builds the configuration from defaults, an optional config file,
// and ANNDATA_* environment variables (e.g. ANNDATA_COMPRESSION_ALGORITHM).
func Load(file string) (*Config, error) {
	v := viper.New()

	defaults := Default()
	v.SetDefault("store.path", defaults.Store.Path)
	v.SetDefault("store.buffer_size", defaults.Store.BufferSize)
	v.SetDefault("compression.algorithm", defaults.Compression.Algorithm)
	v.SetDefault("compression.level", defaults.Compression.Level)
	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.encoding", defaults.Logging.Encoding)
	v.SetDefault("logging.development", defaults.Logging.Development)

	v.SetEnvPrefix("ANNDATA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeConfig, "reading config file").
				WithDetail("file", file)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "decoding configuration")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if _, err := compression.ParseAlgorithm(c.Compression.Algorithm); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "invalid compression algorithm")
	}
	if c.Compression.Level < 0 || c.Compression.Level > int(compression.Best) {
		return errors.Newf(errors.ErrorTypeConfig, "compression level %d out of range [0, %d]",
			c.Compression.Level, int(compression.Best))
	}
	if c.Store.BufferSize <= 0 {
		return errors.New(errors.ErrorTypeConfig, "store buffer_size must be positive")
	}
	switch c.Logging.Encoding {
	case "json", "console":
	default:
		return errors.Newf(errors.ErrorTypeConfig, "unknown logging encoding %q", c.Logging.Encoding)
	}
	return nil
}

// CompressorConfig builds the block codec configuration for the store.
func (c *Config) CompressorConfig() *compression.Config {
	algorithm, _ := compression.ParseAlgorithm(c.Compression.Algorithm)
	return &compression.Config{
		Algorithm:  algorithm,
		Level:      compression.Level(c.Compression.Level),
		BufferSize: c.Store.BufferSize,
	}
}

// LoggerConfig builds the logger configuration.
func (c *Config) LoggerConfig() logger.Config {
	return logger.Config{
		Level:       c.Logging.Level,
		Encoding:    c.Logging.Encoding,
		Development: c.Logging.Development,
	}
}
