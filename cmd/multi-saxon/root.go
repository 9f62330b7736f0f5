package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Pantagrueliste/multi-saxon/internal/cli"
	"github.com/Pantagrueliste/multi-saxon/internal/cli/config"
	"github.com/Pantagrueliste/multi-saxon/pkg/pipeline"
)

var (
	// Set at build time via -ldflags.
	version = "dev"
	commit  = "none"
	date    = "unknown"

	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "multi-saxon",
	Short: "Transforms TEI/XML corpora to plain text in parallel.",
	Long: `multi-saxon applies an XSLT stylesheet to every XML document under an
input directory, extracts TEI header metadata, and writes plain-text
output grouped by language alongside a consolidated CSV metadata report.

It features:
  - Parallel processing across a configurable worker pool.
  - Fixed-batch or striped partitioning of the document set.
  - Bounded per-document retries with live progress reporting.
  - Cancellation-safe partial reports on interrupt.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: false,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		settings, err := config.LoadAndValidate(cfgFile, verbose, cmd.Flags())
		if err != nil {
			return err
		}

		if code := cli.Run(ctx, settings); code != cli.ExitCodeSuccess {
			// The runner already reported the failure; just set the exit code.
			cmd.SilenceErrors = true
			return fmt.Errorf("run failed")
		}
		return nil
	},
}

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a starter configuration file.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "config.toml"
		if len(args) == 1 {
			path = args[0]
		}
		force, _ := cmd.Flags().GetBool("force")
		if err := config.WriteTemplate(path, force); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote configuration template to %s\n", path)
		return nil
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration without processing anything.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := config.LoadAndValidate(cfgFile, verbose, cmd.Flags())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Configuration OK")
		fmt.Fprintf(out, "  input:         %s\n", settings.Options.InputPath)
		fmt.Fprintf(out, "  output:        %s\n", settings.Options.OutputPath)
		fmt.Fprintf(out, "  metadata file: %s\n", settings.Options.MetadataFile)
		fmt.Fprintf(out, "  stylesheet:    %s\n", settings.Options.StylesheetPath)
		fmt.Fprintf(out, "  strategy:      %s\n", settings.Options.Strategy)
		fmt.Fprintf(out, "  workers:       %d (0 = all CPU cores)\n", settings.Options.MaxWorkers)
		return nil
	},
}

// Execute runs the root command. Cobra prints any returned error and
// the process exits non-zero via main.
func Execute() error {
	rootCmd.SetVersionTemplate(`{{.Use}} version {{.Version}}` + "\n")
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfgFile, "config", "c", "", "Configuration file path (default: search ./config.toml, ~/.config/multi_saxon/)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose (debug) logging to stderr (disables TUI)")

	// Flag names align with the viper keys bound in internal/cli/config.
	addProcessingFlags := func(cmd *cobra.Command) {
		f := cmd.Flags()
		f.StringP("input-dir", "i", "", "Directory containing XML documents to transform")
		f.StringP("output-dir", "o", "", "Directory for plain-text output")
		f.StringP("metadata-file", "m", "", "Path of the consolidated CSV metadata report")
		f.StringP("xslt-file", "x", "", "XSLT stylesheet to apply")
		f.Int("workers", pipeline.DefaultMaxWorkers, "Number of parallel workers (0 for all CPU cores)")
		f.Int("batch-size", pipeline.DefaultBatchSize, "Fixed batch size per chunk (0 stripes files across workers)")
		f.Int("max-retries", pipeline.DefaultMaxRetries, "Retries per document after the first failed attempt")
		f.String("retry-delay", pipeline.DefaultRetryDelay.String(), "Delay between retry attempts (e.g. '1s', '500ms')")
		f.String("log-file", pipeline.DefaultLogFilename, "Log file path")
		f.String("log-level", pipeline.DefaultLogLevel, `Log level ("DEBUG", "INFO", "WARNING", "ERROR", "CRITICAL")`)
		f.Bool("no-tui", false, "Disable the interactive terminal UI even in a TTY")
		f.String("output-format", string(pipeline.DefaultOutputFormat), `Final summary format ("text", "json")`)
	}
	addProcessingFlags(rootCmd)
	addProcessingFlags(validateCmd)

	initCmd.Flags().BoolP("force", "f", false, "Overwrite an existing configuration file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(validateCmd)
}
