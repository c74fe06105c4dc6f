package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pxl/internal/workflow"
)

func newBuildCommand(ctx *commandContext) *cobra.Command {
	var output string
	var design string

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Render the catalog into a static site",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.service(cmd)
			if err != nil {
				return err
			}
			result, err := svc.Build(cmd.Context(), workflow.BuildRequest{OutputDir: output, DesignDir: design})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Built %d albums (%d photos) into %s\n",
				len(result.Overview.Albums), result.Overview.ImageCount(), result.OutputDir)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output directory (defaults to site.output_dir)")
	cmd.Flags().StringVar(&design, "design", "", "Design directory with templates, css/, js/ and 404.html (defaults to the built-in design)")
	return cmd
}
