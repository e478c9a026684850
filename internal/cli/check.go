package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/mvp-joe/exactsrc/internal/config"
	"github.com/mvp-joe/exactsrc/internal/discovery"
	"github.com/mvp-joe/exactsrc/internal/exactsrc"
	"github.com/mvp-joe/exactsrc/internal/macro"
	"github.com/mvp-joe/exactsrc/internal/syntax"
	"github.com/mvp-joe/exactsrc/internal/watch"
)

var (
	checkKinds    []string
	checkFormat   string
	checkColor    string
	checkStrict   bool
	checkLanguage string
	checkQuiet    bool
	checkWatch    bool
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check PATH...",
	Short: "Verify exact source recovery for every matching node",
	Long: `Check parses each file and runs exact_src on every node whose kind matches
one of the configured glob patterns (check.kinds, or --kind). Spans that fail
verification are reported with their unverified text; any other error stops
the run.

Directories are searched for files with a supported extension, skipping
paths that match check.ignore.

Examples:
  exactsrc check app.py
  exactsrc check src/
  exactsrc check --kind call --kind '*_statement' src/*.py
  exactsrc check --format json --strict lib/*.rb
  exactsrc check --watch src/`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringSliceVar(&checkKinds, "kind", nil, "node kind glob to verify (repeatable, default from config)")
	checkCmd.Flags().StringVar(&checkFormat, "format", "", "output format: text, json or yaml")
	checkCmd.Flags().StringVar(&checkColor, "color", "", "colorize text output: auto, always or never")
	checkCmd.Flags().BoolVar(&checkStrict, "strict", false, "exit non-zero when any span is unverified")
	checkCmd.Flags().StringVar(&checkLanguage, "lang", "", "grammar to use for every file (default from extension)")
	checkCmd.Flags().BoolVarP(&checkQuiet, "quiet", "q", false, "suppress the progress bar")
	checkCmd.Flags().BoolVarP(&checkWatch, "watch", "w", false, "re-check files as they change")
}

// checkOptions is one check invocation after flag and config merging.
type checkOptions struct {
	Language string
	Kinds    *syntax.KindFilter
	Extract  []exactsrc.Option
	Progress *checkProgress
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(loadConfig, func(cfg *config.Config) {
		applyCheckFlags(cmd, cfg)
	})
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.Log.Level, verbose)
	if err != nil {
		return err
	}
	defer logger.Sync()

	filter, err := syntax.NewKindFilter(cfg.Check.Kinds)
	if err != nil {
		return err
	}
	fd, err := discovery.NewFileDiscovery(cfg.Check.Ignore)
	if err != nil {
		return err
	}
	paths, err := fd.Expand(args)
	if err != nil {
		return err
	}
	logger.Debug("discovered files", zap.Int("count", len(paths)))

	showBar := !checkQuiet && len(paths) > 1 && term.IsTerminal(int(os.Stderr.Fd()))
	opts := checkOptions{
		Language: cfg.Language,
		Kinds:    filter,
		Extract:  cfg.ExtractOptions(),
		Progress: newCheckProgress(cmd.ErrOrStderr(), !showBar),
	}

	report, err := checkFiles(paths, opts, logger)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	colored := useColor(cfg.Check.Color, out)
	if err := writeReport(out, report, cfg.Check.Format, colored); err != nil {
		return err
	}
	if checkWatch {
		opts.Progress = newCheckProgress(io.Discard, true)
		return watchFiles(cmd.Context(), args, fd, opts, logger, func(r *Report) error {
			return writeReport(out, r, cfg.Check.Format, colored)
		})
	}
	if cfg.Check.Strict && report.Unverified > 0 {
		return fmt.Errorf("%d of %d spans failed verification", report.Unverified, report.Checked)
	}
	return nil
}

func applyCheckFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("kind") {
		cfg.Check.Kinds = checkKinds
	}
	if flags.Changed("format") {
		cfg.Check.Format = checkFormat
	}
	if flags.Changed("color") {
		cfg.Check.Color = checkColor
	}
	if flags.Changed("strict") {
		cfg.Check.Strict = checkStrict
	}
	if flags.Changed("lang") {
		cfg.Language = checkLanguage
	}
}

func checkFiles(paths []string, opts checkOptions, logger *zap.Logger) (*Report, error) {
	table := macro.NewTable(opts.Extract...)
	report := &Report{}

	opts.Progress.Start(len(paths))
	for _, path := range paths {
		fr, err := checkFile(path, table, opts, logger)
		if err != nil {
			return nil, err
		}
		report.add(fr)
		opts.Progress.FileChecked(path)
	}
	opts.Progress.Finish(report)
	return report, nil
}

// watchFiles re-checks changed files under roots until interrupted. Paths that
// fd ignores are neither watched nor checked.
func watchFiles(ctx context.Context, roots []string, fd *discovery.FileDiscovery, opts checkOptions, logger *zap.Logger, emit func(*Report) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	w, err := watch.New(roots, func(path string) bool {
		if opts.Language != "" {
			return true
		}
		_, err := syntax.ForPath(path)
		return err == nil
	}, watch.WithIgnore(fd.Ignored), watch.WithLogger(logger))
	if err != nil {
		return err
	}
	logger.Info("watching for changes", zap.Strings("roots", roots))

	err = w.Run(ctx, func(paths []string) {
		report, err := checkFiles(paths, opts, logger)
		if err != nil {
			logger.Error("check failed", zap.Error(err))
			return
		}
		if err := emit(report); err != nil {
			logger.Error("failed to write report", zap.Error(err))
		}
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// spanError ties a verification failure to the node it was raised for.
type spanError struct {
	node *syntax.Node
	err  error
}

func (e *spanError) Error() string {
	return fmt.Sprintf("%s at %s: %v", e.node.Kind(), e.node.Start(), e.err)
}

func (e *spanError) Unwrap() error { return e.err }

func checkFile(path string, table *macro.Table, opts checkOptions, logger *zap.Logger) (FileReport, error) {
	g, err := resolveGrammar(opts.Language, path)
	if err != nil {
		return FileReport{}, err
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return FileReport{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	file, err := syntax.ParseFile(g, path, src)
	if err != nil {
		return FileReport{}, err
	}
	defer file.Close()

	fr := FileReport{Path: path, Language: g.Name, SyntaxErrors: file.HasErrors()}
	if fr.SyntaxErrors {
		logger.Warn("file has syntax errors", zap.String("path", path))
	}

	ctx := table.Bind(macro.UnitOf(file), logger)
	exactSrc, err := macro.ExactSource(ctx)
	if err != nil {
		return FileReport{}, err
	}

	caught, err := syntax.Walk(file.Root(), func(n *syntax.Node) error {
		if !opts.Kinds.Match(n.Kind()) {
			return nil
		}
		fr.Checked++
		if _, err := exactSrc(n); err != nil {
			return &spanError{node: n, err: err}
		}
		fr.Verified++
		return nil
	}, exactsrc.ErrVerification)
	if err != nil {
		return FileReport{}, fmt.Errorf("%s: %w", path, err)
	}

	for _, e := range multierr.Errors(caught) {
		var se *spanError
		if !errors.As(e, &se) {
			return FileReport{}, e
		}
		fr.Findings = append(fr.Findings, newFinding(se))
	}
	ctx.Logger.Debug("checked file",
		zap.Int("checked", fr.Checked),
		zap.Int("unverified", len(fr.Findings)))
	return fr, nil
}

func newFinding(se *spanError) Finding {
	f := Finding{
		Kind:  se.node.Kind(),
		Start: se.node.Start().String(),
		End:   se.node.End().String(),
		Cause: "error",
	}
	switch {
	case errors.Is(se.err, exactsrc.ErrSyntax):
		f.Cause = "syntax"
	case errors.Is(se.err, exactsrc.ErrMismatch):
		f.Cause = "mismatch"
	}
	var verr *exactsrc.ExtractionVerificationError
	if errors.As(se.err, &verr) {
		f.Payload = verr.Text
		f.Want = verr.Want
		f.Got = verr.Got
	}
	return f
}

// useColor resolves a color mode against the output writer.
func useColor(mode string, w io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
