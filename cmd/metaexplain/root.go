package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/crobbins327/histocartography/internal/config"
	"github.com/crobbins327/histocartography/internal/explanations"
	"github.com/crobbins327/histocartography/internal/metaexplain"
	"github.com/crobbins327/histocartography/internal/projection"
)

// version is set at build time via -ldflags.
var version = "dev"

// runFlags are shared by every subcommand that resolves a run.
type runFlags struct {
	variant         string
	config          string
	outputRoot      string
	extractPerLevel bool
}

func (f *runFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.variant, "variant", "", "Explanation variant: graph or image (required)")
	fs.StringVar(&f.config, "config", "", "YAML run configuration (required)")
	fs.StringVar(&f.outputRoot, "output-root", "", "Output root (default: explain.output_root)")
	fs.BoolVar(&f.extractPerLevel, "extract-per-level", false, "Read every pruning level from its own record data")

	_ = cmd.MarkFlagRequired("variant")
	_ = cmd.MarkFlagRequired("config")
}

// resolve loads the service configuration and the run configuration and
// builds the options for a run.
func (f *runFlags) resolve(cmd *cobra.Command) (explanations.Variant, metaexplain.RunConfig, metaexplain.Options, error) {
	var opts metaexplain.Options

	variant, err := explanations.ParseVariant(f.variant)
	if err != nil {
		return "", metaexplain.RunConfig{}, opts, err
	}

	cfg, err := config.Load()
	if err != nil {
		return "", metaexplain.RunConfig{}, opts, fmt.Errorf("load config: %w", err)
	}

	rc, err := metaexplain.LoadRunConfig(f.config)
	if err != nil {
		return "", metaexplain.RunConfig{}, opts, err
	}

	root := cfg.Explain.OutputRoot
	if f.outputRoot != "" {
		root = f.outputRoot
	}

	opts = metaexplain.Options{
		OutputRoot:      root,
		Plotter:         projection.NewScatterPlotter(rc.ExplanationType, cfg.Explain.PlotSize),
		Logger:          newLogger(cmd, cfg),
		ExtractPerLevel: f.extractPerLevel || cfg.Explain.ExtractPerLevel,
	}
	return variant, rc, opts, nil
}

func newLogger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	return cfg.Logging.NewLogger(cmd.ErrOrStderr()).With("cmd", cmd.Name())
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "metaexplain",
		Short: "Dataset-level meta-explanations of histology classifier explanations",
		Long: "metaexplain aggregates per-sample explanation records into metric reports\n" +
			"and latent-space projections for graph and image models.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
	}

	root.AddCommand(newRunCmd())
	root.AddCommand(newShowCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
