package main

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newAlbumsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "albums",
		Short: "List the albums in the remote catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.service(cmd)
			if err != nil {
				return err
			}
			overview, err := svc.Catalog().Fetch(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(overview.Albums) == 0 {
				fmt.Fprintln(out, "No albums yet. Upload a directory with `pxl upload DIR`.")
				return nil
			}

			rows := make([][]string, 0, len(overview.Albums))
			for _, album := range overview.Albums {
				rows = append(rows, []string{
					album.NameDisplay,
					album.NameNav,
					fmt.Sprintf("%s (%s)", album.CreatedHuman(), humanize.Time(album.Created)),
					strconv.Itoa(len(album.Images)),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Album", "Slug", "Created", "Photos"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight},
			))
			fmt.Fprintf(out, "%s photos in %d albums\n", humanize.Comma(int64(overview.ImageCount())), len(overview.Albums))
			return nil
		},
	}
}
