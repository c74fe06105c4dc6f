package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCleanCommand(ctx *commandContext) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:         "clean",
		Short:       "Remove the local pxl configuration",
		Annotations: skipConfigLoad,
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.configStore()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "This removes the pxl configuration at %s.\n", store.Location())
			fmt.Fprintln(out, "Uploaded images and the remote catalog are unaffected.")

			if !yes {
				ok, err := ctx.prompter(cmd).Confirm("Do you want to continue?", false)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(out, "Not confirmed. Nothing removed.")
					return nil
				}
			}
			if err := store.Remove(); err != nil {
				return err
			}
			fmt.Fprintln(out, "Configuration removed.")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}
