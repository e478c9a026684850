package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	// The result is not validated; callers apply their own overrides first
	// and then call Validate.
	Load() (*Config, error)
}

type loader struct {
	rootDir    string
	configFile string
}

// NewLoader creates a new configuration loader for the given root directory.
func NewLoader(rootDir string) Loader {
	return &loader{
		rootDir: rootDir,
	}
}

// NewFileLoader creates a loader that reads an explicit config file instead of
// searching rootDir.
func NewFileLoader(configFile string) Loader {
	return &loader{
		configFile: configFile,
	}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (EXACTSRC_*)
// 2. Config file (.exactsrc/config.yml or .exactsrc/config.yaml)
// 3. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(filepath.Join(l.rootDir, ".exactsrc"))
	}

	// Replace . with _ in env var names (e.g., EXACTSRC_EXTRACT_END_COLUMN_SLACK)
	v.SetEnvPrefix("EXACTSRC")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.BindEnv("language")
	v.BindEnv("extract.end_column_slack")
	v.BindEnv("extract.first_line_cut")
	v.BindEnv("check.kinds")
	v.BindEnv("check.ignore")
	v.BindEnv("check.format")
	v.BindEnv("check.color")
	v.BindEnv("check.strict")
	v.BindEnv("log.level")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine when searching; an explicit file must exist.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || l.configFile != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("language", defaults.Language)

	v.SetDefault("extract.end_column_slack", defaults.Extract.EndColumnSlack)
	v.SetDefault("extract.first_line_cut", defaults.Extract.FirstLineCut)

	v.SetDefault("check.kinds", defaults.Check.Kinds)
	v.SetDefault("check.ignore", defaults.Check.Ignore)
	v.SetDefault("check.format", defaults.Check.Format)
	v.SetDefault("check.color", defaults.Check.Color)
	v.SetDefault("check.strict", defaults.Check.Strict)

	v.SetDefault("log.level", defaults.Log.Level)
}

// LoadConfig is a convenience function that creates a loader and loads config.
// It uses the current working directory as the root.
func LoadConfig() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewLoader(wd).Load()
}

// LoadConfigFromDir loads configuration from a specific directory.
func LoadConfigFromDir(rootDir string) (*Config, error) {
	return NewLoader(rootDir).Load()
}
