package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"pxl/internal/config"
)

var skipConfigLoad = map[string]string{"skipConfigLoad": "true"}

func newInitCommand(ctx *commandContext) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create the pxl configuration interactively",
		Annotations: skipConfigLoad,
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.configStore()
			if err != nil {
				return err
			}
			exists, err := store.Exists()
			if err != nil {
				return err
			}
			if exists && !force {
				return fmt.Errorf("pxl is already initialized at %s; add --force to overwrite", store.Location())
			}

			base := config.Default()
			if exists {
				if previous, err := store.Load(); err == nil {
					base = *previous.Clone()
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "We need some information. Please answer the prompts.")
			fmt.Fprintln(out, "Defaults are shown between parentheses.")
			fmt.Fprintln(out)

			p := ctx.prompter(cmd)
			cfg := base
			cfg.Storage.Backend = config.BackendS3
			if cfg.S3.Endpoint, err = p.Ask("S3 endpoint", base.S3.Endpoint, noScheme); err != nil {
				return err
			}
			if cfg.S3.Region, err = p.Ask("S3 region", base.S3.Region, nil); err != nil {
				return err
			}
			if cfg.S3.Bucket, err = p.Ask("S3 bucket", base.S3.Bucket, nil); err != nil {
				return err
			}
			if cfg.S3.KeyID, err = p.Ask("S3 key ID", base.S3.KeyID, nil); err != nil {
				return err
			}
			if cfg.S3.KeySecret, err = p.Secret("S3 key secret"); err != nil {
				return err
			}

			if err := store.Save(&cfg); err != nil {
				return err
			}
			if _, err := store.Load(); err != nil {
				return fmt.Errorf("saved configuration is invalid: %w", err)
			}
			fmt.Fprintf(out, "Wrote configuration to %s\n", store.Location())
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing configuration")
	return cmd
}

func noScheme(value string) error {
	if strings.Contains(value, "://") {
		return errors.New("enter the host only, e.g. digitaloceanspaces.com")
	}
	return nil
}
