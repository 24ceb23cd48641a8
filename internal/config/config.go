package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// FileName is the config file looked up in the home and working directories.
const FileName = ".archived.toml"

// Config represents archived configuration.
// Values are layered: defaults, ~/.archived.toml, ./.archived.toml,
// ARCHIVED_* environment variables, then command-line flags.
type Config struct {
	Color  ColorConfig  `mapstructure:"color"`
	Log    LogConfig    `mapstructure:"log"`
	Replay ReplayConfig `mapstructure:"replay"`
}

// ColorConfig holds color settings
type ColorConfig struct {
	UI bool `mapstructure:"ui"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Verbose bool `mapstructure:"verbose"`
}

// ReplayConfig holds scenario replay settings
type ReplayConfig struct {
	Dump     bool          `mapstructure:"dump"`
	Debounce time.Duration `mapstructure:"debounce"`
}

var defaults = map[string]any{
	"color.ui":        true,
	"log.verbose":     false,
	"replay.dump":     false,
	"replay.debounce": "200ms",
}

// Keys returns every known configuration key in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(defaults))
	for k := range defaults {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// SetDefaults registers the built-in defaults with viper.
func SetDefaults() {
	for k, v := range defaults {
		viper.SetDefault(k, v)
	}
}

// globalConfigPath returns the path to the global config file
func globalConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, FileName), nil
}

// Init wires viper to the config files and the environment. When cfgFile is
// set, it is the only file read. Otherwise the global file is read first and
// the working directory's file is merged over it.
func Init(cfgFile string) error {
	SetDefaults()

	viper.SetEnvPrefix("ARCHIVED")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	var paths []string
	if cfgFile != "" {
		paths = []string{cfgFile}
	} else {
		if global, err := globalConfigPath(); err == nil {
			paths = append(paths, global)
		}
		paths = append(paths, FileName)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			if cfgFile != "" {
				return fmt.Errorf("config file: %w", err)
			}
			continue
		}
		viper.SetConfigFile(path)
		if err := viper.MergeInConfig(); err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
	}
	return nil
}

// Load returns the effective configuration.
func Load() (Config, error) {
	SetDefaults()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// GetValue retrieves a configuration value by key (e.g., "color.ui")
func GetValue(key string) (string, error) {
	if _, ok := defaults[key]; !ok {
		return "", fmt.Errorf("unknown config key: %s", key)
	}
	SetDefaults()
	return viper.GetString(key), nil
}

// SetValue sets a configuration value by key and writes it to the global
// or the working directory's config file.
func SetValue(key, value string, global bool) error {
	typed, err := parseValue(key, value)
	if err != nil {
		return err
	}

	path := FileName
	if global {
		if path, err = globalConfigPath(); err != nil {
			return err
		}
	}

	file := viper.New()
	file.SetConfigFile(path)
	if _, err := os.Stat(path); err == nil {
		if err := file.ReadInConfig(); err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
	}
	file.Set(key, typed)
	if err := file.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	viper.Set(key, typed)
	return nil
}

func parseValue(key, value string) (any, error) {
	def, ok := defaults[key]
	if !ok {
		return nil, fmt.Errorf("unknown config key: %s", key)
	}

	switch def.(type) {
	case bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("%s expects true or false, got %q", key, value)
		}
		return b, nil
	default:
		if _, err := time.ParseDuration(value); err != nil {
			return nil, fmt.Errorf("%s expects a duration, got %q", key, value)
		}
		return value, nil
	}
}
