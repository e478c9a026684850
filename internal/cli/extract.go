package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mvp-joe/exactsrc/internal/config"
	"github.com/mvp-joe/exactsrc/internal/exactsrc"
	"github.com/mvp-joe/exactsrc/internal/macro"
	"github.com/mvp-joe/exactsrc/internal/syntax"
)

var (
	extractStart        string
	extractEnd          string
	extractCategory     string
	extractLanguage     string
	extractSlack        int
	extractFirstLineCut bool
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract FILE",
	Short: "Print the verified source text of a span",
	Long: `Extract locates the node, or the run of sibling nodes, that spans exactly
--start to --end in FILE and prints its original source text once the text has
been verified by re-parsing.

Locations are LINE:COLUMN with a 1-based line and a 0-based byte column, the
way tree-sitter reports them.

When verification fails the unverified text is still printed and the command
exits non-zero. With --verbose a diff of the canonical forms is written to
stderr.`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVar(&extractStart, "start", "", "start location LINE:COLUMN (required)")
	extractCmd.Flags().StringVar(&extractEnd, "end", "", "end location LINE:COLUMN (required)")
	extractCmd.Flags().StringVar(&extractCategory, "category", "", "override the node category (expression, statement, other)")
	extractCmd.Flags().StringVar(&extractLanguage, "lang", "", "grammar to use (default from config or file extension)")
	extractCmd.Flags().IntVar(&extractSlack, "slack", exactsrc.DefaultEndColumnSlack, "bytes kept past the end column on the last line")
	extractCmd.Flags().BoolVar(&extractFirstLineCut, "first-line-cut", false, "drop text before the start column on the first line")
	extractCmd.MarkFlagRequired("start")
	extractCmd.MarkFlagRequired("end")
}

// extractRequest is one extract invocation after flag and config merging.
type extractRequest struct {
	Path     string
	Start    exactsrc.Position
	End      exactsrc.Position
	Category string
	Language string
	Options  []exactsrc.Option
	Verbose  bool
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(loadConfig, func(cfg *config.Config) {
		if cmd.Flags().Changed("slack") {
			cfg.Extract.EndColumnSlack = extractSlack
		}
		if cmd.Flags().Changed("first-line-cut") {
			cfg.Extract.FirstLineCut = extractFirstLineCut
		}
		if extractLanguage != "" {
			cfg.Language = extractLanguage
		}
	})
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.Log.Level, verbose)
	if err != nil {
		return err
	}
	defer logger.Sync()

	start, err := parseLocation(extractStart)
	if err != nil {
		return fmt.Errorf("--start: %w", err)
	}
	end, err := parseLocation(extractEnd)
	if err != nil {
		return fmt.Errorf("--end: %w", err)
	}


	return extract(cmd.OutOrStdout(), cmd.ErrOrStderr(), extractRequest{
		Path:     args[0],
		Start:    start,
		End:      end,
		Category: extractCategory,
		Language: cfg.Language,
		Options:  cfg.ExtractOptions(),
		Verbose:  verbose,
	}, logger)
}

func extract(stdout, stderr io.Writer, req extractRequest, logger *zap.Logger) error {
	if req.End.Before(req.Start) {
		return fmt.Errorf("end %s is before start %s", req.End, req.Start)
	}

	g, err := resolveGrammar(req.Language, req.Path)
	if err != nil {
		return err
	}
	src, err := os.ReadFile(req.Path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", req.Path, err)
	}
	file, err := syntax.ParseFile(g, req.Path, src)
	if err != nil {
		return err
	}
	defer file.Close()
	if file.HasErrors() {
		logger.Warn("file has syntax errors", zap.String("path", req.Path))
	}

	run, ok := file.RunAt(req.Start, req.End)
	if !ok {
		return fmt.Errorf("no node or sibling run spans %s-%s in %s", req.Start, req.End, req.Path)
	}
	nodes := syntax.Nodes(run)
	if req.Category != "" {
		if len(run) != 1 {
			return fmt.Errorf("--category applies to a single node, span covers %d", len(run))
		}
		cat, err := exactsrc.ParseCategory(req.Category)
		if err != nil {
			return err
		}
		nodes = []exactsrc.Node{recategorized{Node: run[0], category: cat}}
	}
	logger.Debug("located span",
		zap.String("first", run[0].Kind()),
		zap.Int("nodes", len(run)))

	ctx := macro.NewTable(req.Options...).Bind(macro.UnitOf(file), logger)
	exactSrc, err := macro.ExactSource(ctx)
	if err != nil {
		return err
	}

	text, err := exactSrc(nodes...)
	if err != nil {
		var verr *exactsrc.ExtractionVerificationError
		if !errors.As(err, &verr) {
			return err
		}
		fmt.Fprintln(stdout, verr.Text)
		if req.Verbose && (verr.Want != "" || verr.Got != "") {
			fmt.Fprint(stderr, canonicalDiff(verr.Want, verr.Got))
		}
		return err
	}
	fmt.Fprintln(stdout, text)
	return nil
}

// recategorized overrides the category a grammar assigns to a node.
type recategorized struct {
	*syntax.Node
	category exactsrc.Category
}

func (r recategorized) Category() exactsrc.Category { return r.category }

// resolveGrammar picks the grammar by name, or from the path when name is
// empty. Files without an extension get the default grammar.
func resolveGrammar(name, path string) (*syntax.Grammar, error) {
	if name != "" {
		return syntax.Lookup(name)
	}
	if filepath.Ext(path) == "" {
		return syntax.Lookup(syntax.DefaultLanguage)
	}
	return syntax.ForPath(path)
}

// parseLocation parses "LINE:COLUMN".
func parseLocation(s string) (exactsrc.Position, error) {
	line, col, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return exactsrc.Position{}, fmt.Errorf("invalid location %q: want LINE:COLUMN", s)
	}
	l, err := strconv.Atoi(line)
	if err != nil || l < 1 {
		return exactsrc.Position{}, fmt.Errorf("invalid line in %q", s)
	}
	c, err := strconv.Atoi(col)
	if err != nil || c < 0 {
		return exactsrc.Position{}, fmt.Errorf("invalid column in %q", s)
	}
	return exactsrc.Position{Line: l, Column: c}, nil
}

// canonicalDiff renders a unified diff from the original canonical form to the
// re-parsed one.
func canonicalDiff(want, got string) string {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(breakSExpr(want)),
		B:        difflib.SplitLines(breakSExpr(got)),
		FromFile: "original",
		ToFile:   "extracted",
		Context:  3,
	})
	if err != nil {
		return fmt.Sprintf("diff unavailable: %v\n", err)
	}
	return diff
}

// breakSExpr puts each parenthesised node on its own line so diffs point at the
// differing node rather than one long line.
func breakSExpr(s string) string {
	var b strings.Builder
	inQuote := false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case inQuote && ch == '\\' && i+1 < len(s):
			b.WriteByte(ch)
			i++
			ch = s[i]
		case ch == '"':
			inQuote = !inQuote
		case ch == '(' && !inQuote && i > 0:
			b.WriteByte('\n')
		}
		b.WriteByte(ch)
	}
	b.WriteByte('\n')
	return b.String()
}
