// Package cmd implements the CLI commands for adocpipe using Cobra.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/gaurav-prasanna/adocpipe/internal/config"
	"github.com/gaurav-prasanna/adocpipe/internal/logging"
)

var (
	flagConfig  string
	flagVerbose bool

	// cfg is loaded before any subcommand runs.
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "adocpipe",
	Short: "adocpipe — convert AsciiDoc into a structured JSON document tree",
	Long: `adocpipe is a deterministic conversion pipeline that turns AsciiDoc
documents into a JSON block tree, with Markdown, PDF and Embeddings
renderings of the same tree.

Usage:
  adocpipe convert <input> [output] [flags]`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default: ./adocpipe.yaml or ~/.config/adocpipe/adocpipe.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")
}

// loadConfig merges the config file, environment and flags of the running
// command, then configures logging.
func loadConfig(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	bindings := map[string]*pflag.Flag{
		"output.pretty":         flags.Lookup("pretty"),
		"output.dir":            flags.Lookup("output_dir"),
		"embeddings.model":      flags.Lookup("model"),
		"embeddings.chunk_size": flags.Lookup("chunk_size"),
	}

	loaded, err := config.Load(flagConfig, bindings)
	if err != nil {
		return err
	}
	if flagVerbose {
		loaded.Log.Level = "debug"
	}
	if err := logging.Setup(loaded.Log.Level, loaded.Log.Format, os.Stderr); err != nil {
		return err
	}
	cfg = loaded
	return nil
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
