package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

// Test Plan for Config System:
// - Default() returns valid configuration with all expected defaults
// - Load() uses defaults when no config file exists
// - Load() reads .exactsrc/config.yml and merges it with defaults
// - Environment variables override config file values
// - An explicit config file must exist
// - Load() returns error for malformed YAML; invalid values load and are left
//   for Validate() so callers can override them first
// - Validate() reports every invalid field with its sentinel error
// - ExtractOptions() reflects the extract settings

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	configDir := filepath.Join(dir, ".exactsrc")
	require.NoError(t, os.MkdirAll(configDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.yml"), []byte(content), 0644))
}

func TestDefault_ReturnsValidConfiguration(t *testing.T) {
	cfg := Default()

	require.NotNil(t, cfg)
	assert.Equal(t, "", cfg.Language)
	assert.Equal(t, 1, cfg.Extract.EndColumnSlack)
	assert.False(t, cfg.Extract.FirstLineCut)
	assert.Equal(t, []string{"*_statement", "*_definition", "*_declaration"}, cfg.Check.Kinds)
	assert.Contains(t, cfg.Check.Ignore, "**/.git/**")
	assert.Equal(t, "text", cfg.Check.Format)
	assert.Equal(t, "auto", cfg.Check.Color)
	assert.False(t, cfg.Check.Strict)
	assert.Equal(t, "warn", cfg.Log.Level)

	assert.NoError(t, Validate(cfg))
}

func TestLoad_UsesDefaultsWhenNoConfigFile(t *testing.T) {
	cfg, err := NewLoader(t.TempDir()).Load()

	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_MergesConfigFileWithDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
language: ruby
extract:
  end_column_slack: 0
  first_line_cut: true
check:
  kinds: ["binary", "call"]
`)

	cfg, err := NewLoader(dir).Load()
	require.NoError(t, err)

	assert.Equal(t, "ruby", cfg.Language)
	assert.Equal(t, 0, cfg.Extract.EndColumnSlack)
	assert.True(t, cfg.Extract.FirstLineCut)
	assert.Equal(t, []string{"binary", "call"}, cfg.Check.Kinds)

	// Untouched sections keep their defaults
	assert.Equal(t, "text", cfg.Check.Format)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
check:
  format: json
`)
	t.Setenv("EXACTSRC_CHECK_FORMAT", "yaml")
	t.Setenv("EXACTSRC_EXTRACT_END_COLUMN_SLACK", "0")
	t.Setenv("EXACTSRC_LOG_LEVEL", "debug")

	cfg, err := NewLoader(dir).Load()
	require.NoError(t, err)

	assert.Equal(t, "yaml", cfg.Check.Format)
	assert.Equal(t, 0, cfg.Extract.EndColumnSlack)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_ExplicitFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("language: rust\n"), 0644))

	cfg, err := NewFileLoader(path).Load()
	require.NoError(t, err)
	assert.Equal(t, "rust", cfg.Language)

	_, err = NewFileLoader(filepath.Join(dir, "missing.yaml")).Load()
	assert.Error(t, err)
}

func TestLoad_RejectsBadInput(t *testing.T) {
	t.Run("malformed yaml", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, "check: [unclosed\n")

		_, err := NewLoader(dir).Load()
		assert.Error(t, err)
	})

	t.Run("invalid values load and fail validation", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, "language: cobol\n")

		cfg, err := NewLoader(dir).Load()
		require.NoError(t, err)
		assert.Equal(t, "cobol", cfg.Language)
		assert.ErrorIs(t, Validate(cfg), ErrInvalidLanguage)
	})
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.Language = "cobol"
	cfg.Extract.EndColumnSlack = -1
	cfg.Check.Kinds = nil
	cfg.Check.Format = "xml"
	cfg.Check.Color = "sometimes"
	cfg.Log.Level = "loud"

	err := Validate(cfg)
	require.Error(t, err)

	assert.ErrorIs(t, err, ErrInvalidLanguage)
	assert.ErrorIs(t, err, ErrInvalidSlack)
	assert.ErrorIs(t, err, ErrEmptyKinds)
	assert.ErrorIs(t, err, ErrInvalidFormat)
	assert.ErrorIs(t, err, ErrInvalidColor)
	assert.ErrorIs(t, err, ErrInvalidLogLevel)
	assert.Len(t, multierr.Errors(err), 6)
}

func TestValidate_InvalidKindPattern(t *testing.T) {
	cfg := Default()
	cfg.Check.Kinds = []string{"[unclosed"}

	assert.ErrorIs(t, Validate(cfg), ErrInvalidKind)
}

func TestValidate_InvalidIgnorePattern(t *testing.T) {
	cfg := Default()
	cfg.Check.Ignore = []string{"**/vendor/**", "[unclosed"}

	assert.ErrorIs(t, Validate(cfg), ErrInvalidIgnore)
}

func TestConfig_ExtractOptions(t *testing.T) {
	cfg := Default()
	assert.Len(t, cfg.ExtractOptions(), 1)

	cfg.Extract.FirstLineCut = true
	assert.Len(t, cfg.ExtractOptions(), 2)
}
