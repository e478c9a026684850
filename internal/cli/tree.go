package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/exactsrc/internal/config"
	"github.com/mvp-joe/exactsrc/internal/syntax"
)

var (
	treeKinds    []string
	treeLanguage string
)

// treeCmd represents the tree command
var treeCmd = &cobra.Command{
	Use:   "tree FILE",
	Short: "Print the named nodes of a file with their spans",
	Long: `Tree prints every named node of FILE, indented by depth, with the
LINE:COLUMN span and category exactsrc sees for it. The spans can be passed
straight to extract.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveConfig(loadConfig, func(cfg *config.Config) {
			if treeLanguage != "" {
				cfg.Language = treeLanguage
			}
		})
		if err != nil {
			return err
		}

		var filter *syntax.KindFilter
		if len(treeKinds) > 0 {
			if filter, err = syntax.NewKindFilter(treeKinds); err != nil {
				return err
			}
		}
		return dumpTree(cmd.OutOrStdout(), args[0], cfg.Language, filter)
	},
}

func init() {
	rootCmd.AddCommand(treeCmd)

	treeCmd.Flags().StringSliceVar(&treeKinds, "kind", nil, "only print nodes whose kind matches (repeatable)")
	treeCmd.Flags().StringVar(&treeLanguage, "lang", "", "grammar to use (default from config or file extension)")
}

func dumpTree(w io.Writer, path, lang string, filter *syntax.KindFilter) error {
	g, err := resolveGrammar(lang, path)
	if err != nil {
		return err
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	file, err := syntax.ParseFile(g, path, src)
	if err != nil {
		return err
	}
	defer file.Close()

	writeNode(w, file.Root(), 0, filter)
	return nil
}

func writeNode(w io.Writer, n *syntax.Node, depth int, filter *syntax.KindFilter) {
	indent := depth
	if filter != nil {
		indent = 0
	}
	if filter == nil || filter.Match(n.Kind()) {
		fmt.Fprintf(w, "%s%s %s-%s %s\n",
			strings.Repeat("  ", indent), n.Kind(), n.Start(), n.End(), n.Category())
	}
	for _, child := range n.Children() {
		writeNode(w, child, depth+1, filter)
	}
}
