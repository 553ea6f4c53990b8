package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/crobbins327/histocartography/internal/metaexplain"
)

func newShowCmd() *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the report written by a previous run",
		RunE: func(cmd *cobra.Command, _ []string) error {
			variant, rc, opts, err := flags.resolve(cmd)
			if err != nil {
				return err
			}

			dir, err := metaexplain.SavePath(variant, rc, opts)
			if err != nil {
				return err
			}

			report, err := metaexplain.ReadReport(dir)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		},
	}

	flags.register(cmd)
	return cmd
}
