package config

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"

	"github.com/mvp-joe/exactsrc/internal/discovery"
	"github.com/mvp-joe/exactsrc/internal/syntax"
)

var (
	// ErrInvalidLanguage indicates a language with no grammar
	ErrInvalidLanguage = errors.New("invalid language")

	// ErrInvalidSlack indicates a negative end column slack
	ErrInvalidSlack = errors.New("invalid end column slack")

	// ErrEmptyKinds indicates no node kind patterns for check
	ErrEmptyKinds = errors.New("empty check kinds")

	// ErrInvalidKind indicates a node kind pattern that does not compile
	ErrInvalidKind = errors.New("invalid check kind")

	// ErrInvalidIgnore indicates an ignore pattern that does not compile
	ErrInvalidIgnore = errors.New("invalid ignore pattern")

	// ErrInvalidFormat indicates an unsupported report format
	ErrInvalidFormat = errors.New("invalid report format")

	// ErrInvalidColor indicates an unsupported color mode
	ErrInvalidColor = errors.New("invalid color mode")

	// ErrInvalidLogLevel indicates an unknown log level
	ErrInvalidLogLevel = errors.New("invalid log level")
)

// Validate checks that the configuration is valid and complete. Every problem
// is reported; errors.Is works against each sentinel.
func Validate(cfg *Config) error {
	var err error
	err = multierr.Append(err, validateLanguage(cfg.Language))
	err = multierr.Append(err, validateExtract(&cfg.Extract))
	err = multierr.Append(err, validateCheck(&cfg.Check))
	err = multierr.Append(err, validateLog(&cfg.Log))
	return err
}

func validateLanguage(lang string) error {
	if lang == "" {
		return nil
	}
	if _, err := syntax.Lookup(lang); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLanguage, err)
	}
	return nil
}

func validateExtract(cfg *ExtractConfig) error {
	if cfg.EndColumnSlack < 0 {
		return fmt.Errorf("%w: end_column_slack cannot be negative, got %d", ErrInvalidSlack, cfg.EndColumnSlack)
	}
	return nil
}

func validateCheck(cfg *CheckConfig) error {
	var err error

	if len(cfg.Kinds) == 0 {
		err = multierr.Append(err, fmt.Errorf("%w: at least one pattern required", ErrEmptyKinds))
	}
	if _, kindErr := syntax.NewKindFilter(cfg.Kinds); kindErr != nil {
		err = multierr.Append(err, fmt.Errorf("%w: %v", ErrInvalidKind, kindErr))
	}
	if _, ignoreErr := discovery.NewFileDiscovery(cfg.Ignore); ignoreErr != nil {
		err = multierr.Append(err, fmt.Errorf("%w: %v", ErrInvalidIgnore, ignoreErr))
	}

	switch strings.ToLower(cfg.Format) {
	case "text", "json", "yaml":
	default:
		err = multierr.Append(err, fmt.Errorf("%w: must be 'text', 'json' or 'yaml', got '%s'", ErrInvalidFormat, cfg.Format))
	}

	switch strings.ToLower(cfg.Color) {
	case "auto", "always", "never":
	default:
		err = multierr.Append(err, fmt.Errorf("%w: must be 'auto', 'always' or 'never', got '%s'", ErrInvalidColor, cfg.Color))
	}

	return err
}

func validateLog(cfg *LogConfig) error {
	if _, err := zapcore.ParseLevel(cfg.Level); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLogLevel, err)
	}
	return nil
}
