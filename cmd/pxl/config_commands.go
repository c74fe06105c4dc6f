package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pxl/internal/config"
	"pxl/internal/preflight"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigValidateCommand(ctx))

	return configCmd
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.configStore()
			if err != nil {
				return err
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", store.Location())
			fmt.Fprintf(out, "Storage backend: %s\n", cfg.Storage.Backend)
			switch cfg.Storage.Backend {
			case config.BackendFS:
				fmt.Fprintf(out, "Storage root: %s\n", cfg.Storage.Root)
			default:
				fmt.Fprintf(out, "Bucket: %s (%s.%s)\n", cfg.S3.Bucket, cfg.S3.Region, cfg.S3.Endpoint)
			}
			fmt.Fprintf(out, "Image base URL: %s\n", cfg.PublicBaseURL())
			fmt.Fprintf(out, "Resized variants: %s\n", yesNo(cfg.Upload.Variants))
			fmt.Fprintln(out, "Configuration valid")

			if !check {
				return nil
			}
			logger, err := ctx.logger(cmd)
			if err != nil {
				return err
			}
			gw, err := ctx.deps.newGateway(cfg, logger)
			if err != nil {
				return err
			}
			results := preflight.RunAll(cmd.Context(), cfg, gw)
			rows := make([][]string, 0, len(results))
			for _, r := range results {
				status := "ok"
				if !r.Passed {
					status = "FAIL"
				}
				rows = append(rows, []string{r.Name, status, r.Detail})
			}
			fmt.Fprintln(out, renderTable([]string{"Check", "Status", "Detail"}, rows, nil))
			if failed := preflight.Failed(results); len(failed) > 0 {
				return fmt.Errorf("%d preflight checks failed", len(failed))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "Also check bucket access and local paths")
	return cmd
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
