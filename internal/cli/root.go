package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mvp-joe/exactsrc/internal/config"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "exactsrc",
	Short: "Recover and verify the exact source text of syntax-tree spans",
	Long: `exactsrc cuts the original source text of a node, or of a run of adjacent
nodes, out of a file using only the parser's position metadata, then proves the
text is right by parsing it again and comparing canonical forms.

Configuration is read from .exactsrc/config.yml (or --config) and EXACTSRC_*
environment variables.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .exactsrc/config.yml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Bind flags to viper
	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// loadConfig reads the config file named by --config, or searches the working
// directory.
func loadConfig() (*config.Config, error) {
	if path := viper.GetString("config"); path != "" {
		return config.NewFileLoader(path).Load()
	}
	return config.LoadConfig()
}

// resolveConfig loads configuration, applies the command's flag overrides and
// validates the merged result once.
func resolveConfig(load func() (*config.Config, error), override func(*config.Config)) (*config.Config, error) {
	cfg, err := load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if override != nil {
		override(cfg)
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
