// Command pdfchapters splits a PDF book into one text file per chapter.
//
// Usage:
//
//	pdfchapters [flags] <file.pdf>
//	pdfchapters ops <file.pdf> --page N [--raw]
//	pdfchapters version
//
// The files are written to a folder named after the input, which is
// removed and recreated on every run.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/tsawler/pdfchapters"
	"github.com/tsawler/pdfchapters/internal/config"
	"github.com/tsawler/pdfchapters/internal/logging"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

type rootFlags struct {
	configFiles        []string
	outputRoot         string
	logLevel           string
	distinctAppendices bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var flags rootFlags

	cmd := &cobra.Command{
		Use:   "pdfchapters [flags] <file.pdf>",
		Short: "Split a PDF book into one text file per chapter",
		Long: `Reads the text of every page and starts a new file at each page that
begins with "Chapter NN" (NN.txt) or "Appendix" (A.txt). Text before the
first chapter goes to 00.txt once an "Introduction" page is seen; "Part "
and "Index" pages stop output until the next marker.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return pdfchapters.ErrArgumentMissing
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSplit(cmd, &flags, args[0])
		},
	}

	cmd.Flags().StringArrayVarP(&flags.configFiles, "config", "c", nil, "Configuration file path (can be specified multiple times, later files override earlier ones)")
	cmd.Flags().StringVar(&flags.outputRoot, "out", "", "Directory that receives the output folder (overrides config)")
	cmd.Flags().StringVar(&flags.logLevel, "log-level", "", "Log level: trace, debug, info, warn, error, fatal or disabled (overrides config)")
	cmd.Flags().BoolVar(&flags.distinctAppendices, "distinct-appendices", false, "Write each appendix to its own file (A.txt, B.txt, ...)")

	cmd.AddCommand(newOpsCmd(), newVersionCmd())
	return cmd
}

// loadConfig resolves settings: defaults -> files -> environment -> flags.
func loadConfig(cmd *cobra.Command, flags *rootFlags) (*config.Config, error) {
	cfg, err := config.LoadFromFiles(flags.configFiles...)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("out") {
		cfg.Output.Root = flags.outputRoot
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Logging.Level = flags.logLevel
	}
	if cmd.Flags().Changed("distinct-appendices") {
		cfg.Classifier.DistinctAppendices = flags.distinctAppendices
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runSplit(cmd *cobra.Command, flags *rootFlags, source string) error {
	cfg, err := loadConfig(cmd, flags)
	if err != nil {
		return err
	}
	logger := logging.New(cfg.Logging)

	logger.Debug().
		Strs("config_files", flags.configFiles).
		Str("output_root", cfg.Output.Root).
		Str("log_level", cfg.Logging.Level).
		Bool("distinct_appendices", cfg.Classifier.DistinctAppendices).
		Float64("min_font_height", cfg.Extract.MinFontHeight).
		Msg("Resolved configuration")

	summary, err := pdfchapters.Open(source).
		Configure(cfg).
		Logger(logger).
		Run(cmd.Context())
	if err != nil {
		logger.Error().Str("source", source).Err(err).Msg("Split failed")
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d pages, %d written, %d suppressed, %d files, %s\n",
		summary.Folder, summary.Pages, summary.Written, summary.Suppressed,
		len(summary.Files), humanize.Bytes(uint64(summary.Bytes)))
	return nil
}
