// Package config provides Viper-based configuration loading for bstats.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. BSTATS_BATCH_WORKERS.
const EnvPrefix = "BSTATS"

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// ParserConfig controls how match files are read.
type ParserConfig struct {
	// PlayerTokens are the zero-based dash-separated positions of the two
	// player ids in a match file name.
	PlayerTokens []int `mapstructure:"player_tokens"`
	// Format forces the input format: "auto", "html" or "log".
	Format string `mapstructure:"format"`
}

// BatchConfig controls multi-file runs.
type BatchConfig struct {
	Workers         int  `mapstructure:"workers"`
	ContinueOnError bool `mapstructure:"continue_on_error"`
}

type OutputConfig struct {
	// Dir receives combatants.csv and players.csv. Empty disables CSV output.
	Dir string `mapstructure:"dir"`
}

type StorageConfig struct {
	Path string `mapstructure:"path"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Parser  ParserConfig  `mapstructure:"parser"`
	Batch   BatchConfig   `mapstructure:"batch"`
	Output  OutputConfig  `mapstructure:"output"`
	Storage StorageConfig `mapstructure:"storage"`
}

// Tokens returns the player token positions as a pair.
//
// Precondition: Validate has accepted the configuration.
func (p ParserConfig) Tokens() [2]int {
	return [2]int{p.PlayerTokens[0], p.PlayerTokens[1]}
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateParser(c.Parser); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Batch.Workers < 1 {
		errs = append(errs, fmt.Sprintf("batch.workers must be >= 1, got %d", c.Batch.Workers))
	}
	if c.Storage.Path == "" {
		errs = append(errs, "storage.path must not be empty")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateParser(p ParserConfig) error {
	var errs []string
	if len(p.PlayerTokens) != 2 {
		errs = append(errs, fmt.Sprintf("parser.player_tokens must hold exactly 2 positions, got %d", len(p.PlayerTokens)))
	} else {
		if p.PlayerTokens[0] < 0 || p.PlayerTokens[1] < 0 {
			errs = append(errs, "parser.player_tokens must not be negative")
		}
		if p.PlayerTokens[0] == p.PlayerTokens[1] {
			errs = append(errs, "parser.player_tokens must be distinct")
		}
	}
	validFormats := map[string]bool{"auto": true, "html": true, "log": true}
	if !validFormats[p.Format] {
		errs = append(errs, fmt.Sprintf("parser.format must be one of [auto, html, log], got %q", p.Format))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// Load reads an optional YAML configuration file, applies .env and
// environment variable overrides, and validates the result. An empty path
// uses defaults and the environment only.
//
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	if err := LoadDotEnv(".env"); err != nil {
		return Config{}, err
	}

	v := New()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}
	return LoadFromViper(v)
}

// New returns a Viper instance with defaults and BSTATS_ environment
// overrides installed. Commands bind their flags onto it.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadDotEnv reads KEY=VALUE pairs from path into the process environment.
// A missing file is not an error; variables already set are kept.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("parser.player_tokens", []int{4, 5})
	v.SetDefault("parser.format", "auto")

	v.SetDefault("batch.workers", 4)
	v.SetDefault("batch.continue_on_error", true)

	v.SetDefault("output.dir", "")
	v.SetDefault("storage.path", "bstats.db")
}
