package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"pxl/internal/objectstore"
)

func newUnlockCommand(ctx *commandContext) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "unlock",
		Short: "Show and remove a stale upload lock",
		Long: "Show who holds the remote upload lock and remove it.\n" +
			"Only do this when the holder is no longer running; the lock never expires on its own.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.service(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			holder, err := svc.Locks().Inspect(cmd.Context())
			switch {
			case errors.Is(err, objectstore.ErrNotFound):
				fmt.Fprintln(out, "No lock is held.")
				return nil
			case err != nil:
				fmt.Fprintf(out, "A lock is held but could not be read: %v\n", err)
			default:
				fmt.Fprintf(out, "Lock held by %s\n", holder)
			}

			if !yes {
				ok, err := ctx.prompter(cmd).Confirm("Remove the lock?", false)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(out, "Lock kept.")
					return nil
				}
			}
			if err := svc.Locks().Break(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(out, "Lock removed.")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Remove without asking")
	return cmd
}
