package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/crobbins327/histocartography/internal/metaexplain"
)

func newRunCmd() *cobra.Command {
	var (
		flags   runFlags
		records string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Evaluate explanation records and write the meta-explanation",
		Long: "run decodes a JSON array of explanation records, evaluates every metric\n" +
			"and writes meta_explanation.json (plus one projection plot per pruning\n" +
			"level for graph models). Written files are printed one per line.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			variant, rc, opts, err := flags.resolve(cmd)
			if err != nil {
				return err
			}

			f, err := os.Open(records)
			if err != nil {
				return fmt.Errorf("open records: %w", err)
			}
			defer f.Close()

			explainer, err := metaexplain.New(variant, rc, f, opts)
			if err != nil {
				return err
			}
			if err := explainer.Write(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, path := range explainer.Artifacts() {
				fmt.Fprintln(out, path)
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&records, "records", "", "JSON array of explanation records (required)")
	_ = cmd.MarkFlagRequired("records")

	return cmd
}
