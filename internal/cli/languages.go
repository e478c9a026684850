package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/exactsrc/internal/syntax"
)

// languagesCmd represents the languages command
var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "List the supported grammars",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		for _, g := range syntax.Grammars() {
			marker := " "
			if g.Name == syntax.DefaultLanguage {
				marker = "*"
			}
			fmt.Fprintf(out, "%s %-12s %s\n", marker, g.Name, strings.Join(g.Extensions, " "))
		}
	},
}

func init() {
	rootCmd.AddCommand(languagesCmd)
}
