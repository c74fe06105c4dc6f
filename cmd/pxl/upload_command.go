package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"pxl/internal/catalog"
	"pxl/internal/workflow"
)

func newUploadCommand(ctx *commandContext) *cobra.Command {
	var force bool
	var name string
	var yes bool

	cmd := &cobra.Command{
		Use:   "upload DIR",
		Short: "Upload the JPEG files of a directory into an album",
		Long: "Upload every .jpg/.jpeg file at the top level of DIR and add them to an album.\n" +
			"The album is created when no album with that name exists yet.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]
			svc, err := ctx.service(cmd)
			if err != nil {
				return err
			}
			p := ctx.prompter(cmd)

			albumName := strings.TrimSpace(name)
			if albumName == "" {
				albumName, err = p.Ask("Album name", defaultAlbumName(dir), nil)
				if err != nil {
					return err
				}
			}

			req := workflow.UploadRequest{Dir: dir, AlbumName: albumName, BreakLock: force}
			if !yes {
				req.ConfirmAppend = func(existing catalog.Album) (bool, error) {
					question := fmt.Sprintf("Album %q already has %d photos. Append to it?", existing.NameDisplay, len(existing.Images))
					return p.Confirm(question, true)
				}
			}

			result, err := svc.Upload(cmd.Context(), req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			verb := "Added"
			if result.Created {
				verb = "Created album with"
			}
			fmt.Fprintf(out, "%s %d photos in %q (%d total, /%s/)\n",
				verb, len(result.Added), result.Album.NameDisplay, len(result.Album.Images), result.Album.NameNav)
			for _, skipped := range result.Skipped {
				fmt.Fprintf(out, "  skipped %s: %s\n", skipped.Name, skipped.Reason)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Break an existing lock")
	cmd.Flags().StringVarP(&name, "name", "n", "", "Album name (prompted when omitted)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Append to an existing album without asking")
	return cmd
}

// defaultAlbumName title-cases the directory name, e.g. "summer trip" becomes
// "Summer Trip".
func defaultAlbumName(dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = dir
	}
	return cases.Title(language.Und).String(filepath.Base(abs))
}
