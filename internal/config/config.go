// Package config loads hierrec settings from flags, HIERREC_* environment
// variables, .env files and an optional .hierrec.yaml file, in that order of
// precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sartorproj/goreconcile/hierarchical"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "HIERREC"

// Config keys.
const (
	KeyLogLevel  = "log_level"
	KeyLogFormat = "log_format"
	KeyParallel  = "parallel"
	KeyMethods   = "methods"
)

// Config is the resolved hierrec configuration.
type Config struct {
	// File is the config file that was read, if any.
	File      string
	LogLevel  string
	LogFormat string
	Parallel  int
	Methods   []hierarchical.Spec
}

// Options controls where Load looks.
type Options struct {
	// ConfigFile is an explicit config file. It must exist when set.
	ConfigFile string
	// SearchPaths are searched for .hierrec.yaml when ConfigFile is empty.
	SearchPaths []string
	// EnvFiles are loaded into the environment first. Missing files are skipped.
	EnvFiles []string
	// Flags are bound by key, with dashes in flag names read as underscores.
	Flags *pflag.FlagSet
}

// DefaultOptions searches the working directory and loads .env and .env.local.
func DefaultOptions() Options {
	return Options{
		SearchPaths: []string{"."},
		EnvFiles:    []string{".env", ".env.local"},
	}
}

// Load resolves the configuration.
func Load(opts Options) (*Config, error) {
	for _, file := range opts.EnvFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", file, err)
		}
	}

	v := viper.New()
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "auto")
	v.SetDefault(KeyParallel, 1)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if opts.Flags != nil {
		for _, key := range []string{KeyLogLevel, KeyLogFormat, KeyParallel} {
			if f := opts.Flags.Lookup(strings.ReplaceAll(key, "_", "-")); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("binding flag %s: %w", f.Name, err)
				}
			}
		}
	}

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", opts.ConfigFile, err)
		}
	} else if len(opts.SearchPaths) > 0 {
		for _, p := range opts.SearchPaths {
			v.AddConfigPath(p)
		}
		v.SetConfigName(".hierrec")
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	cfg := &Config{
		File:      v.ConfigFileUsed(),
		LogLevel:  v.GetString(KeyLogLevel),
		LogFormat: v.GetString(KeyLogFormat),
		Parallel:  v.GetInt(KeyParallel),
	}

	methods, err := methodsFrom(v)
	if err != nil {
		return nil, err
	}
	cfg.Methods = methods
	return cfg, nil
}

// methodsFrom reads the methods key: a list of specs from a config file, or
// a semicolon-separated list of "name:k=v" specs from the environment.
func methodsFrom(v *viper.Viper) ([]hierarchical.Spec, error) {
	if !v.IsSet(KeyMethods) {
		return nil, nil
	}
	if raw, ok := v.Get(KeyMethods).(string); ok {
		return ParseMethodList(raw)
	}

	var specs []hierarchical.Spec
	if err := v.UnmarshalKey(KeyMethods, &specs); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", KeyMethods, err)
	}
	return specs, nil
}

// ParseMethodList parses "bottom_up;min_trace:method=ols".
func ParseMethodList(raw string) ([]hierarchical.Spec, error) {
	var specs []hierarchical.Spec
	for _, part := range strings.Split(raw, ";") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		spec, err := hierarchical.ParseSpec(part)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}
