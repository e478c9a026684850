// Package config loads exactsrc settings from .exactsrc/config.yml with
// EXACTSRC_* environment overrides.
package config

import (
	"github.com/mvp-joe/exactsrc/internal/exactsrc"
)

// Config represents the complete exactsrc configuration.
type Config struct {
	// Language forces a grammar; empty picks one from the file extension.
	Language string        `yaml:"language" mapstructure:"language"`
	Extract  ExtractConfig `yaml:"extract" mapstructure:"extract"`
	Check    CheckConfig   `yaml:"check" mapstructure:"check"`
	Log      LogConfig     `yaml:"log" mapstructure:"log"`
}

// ExtractConfig tunes how spans are cut out of the source.
type ExtractConfig struct {
	EndColumnSlack int  `yaml:"end_column_slack" mapstructure:"end_column_slack"` // bytes kept past the end column on the last line
	FirstLineCut   bool `yaml:"first_line_cut" mapstructure:"first_line_cut"`     // drop code before the start column on the first line
}

// CheckConfig configures the check command.
type CheckConfig struct {
	Kinds  []string `yaml:"kinds" mapstructure:"kinds"`   // glob patterns of node kinds to verify
	Ignore []string `yaml:"ignore" mapstructure:"ignore"` // path globs skipped when walking directories
	Format string   `yaml:"format" mapstructure:"format"` // "text", "json" or "yaml"
	Color  string   `yaml:"color" mapstructure:"color"`   // "auto", "always" or "never"
	Strict bool     `yaml:"strict" mapstructure:"strict"` // fail when any span is unverified
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"` // zap level name
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Language: "",
		Extract: ExtractConfig{
			EndColumnSlack: exactsrc.DefaultEndColumnSlack,
			FirstLineCut:   false,
		},
		Check: CheckConfig{
			Kinds: []string{
				"*_statement",
				"*_definition",
				"*_declaration",
			},
			Ignore: []string{
				"**/.git/**",
				"**/.exactsrc/**",
				"**/node_modules/**",
				"**/vendor/**",
			},
			Format: "text",
			Color:  "auto",
			Strict: false,
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// ExtractOptions converts the extract settings to extractor options.
func (c *Config) ExtractOptions() []exactsrc.Option {
	opts := []exactsrc.Option{exactsrc.WithEndColumnSlack(c.Extract.EndColumnSlack)}
	if c.Extract.FirstLineCut {
		opts = append(opts, exactsrc.WithFirstLineCut())
	}
	return opts
}
