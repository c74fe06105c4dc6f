package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"pxl/internal/config"
	"pxl/internal/logging"
	"pxl/internal/objectstore"
	"pxl/internal/prompt"
	"pxl/internal/workflow"
)

// commandDeps lets tests replace the configuration store, terminal input,
// and gateway construction.
type commandDeps struct {
	store      config.Store
	stdin      io.Reader
	newGateway func(*config.Config, *slog.Logger) (objectstore.Gateway, error)
	workflow   []workflow.Option
}

type commandContext struct {
	configFlag   *string
	logLevelFlag *string
	deps         commandDeps

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag, logLevelFlag *string, deps commandDeps) *commandContext {
	if deps.newGateway == nil {
		deps.newGateway = newGateway
	}
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
		deps:         deps,
	}
}

func (c *commandContext) configStore() (config.Store, error) {
	if c.deps.store != nil {
		return c.deps.store, nil
	}
	var path string
	if c.configFlag != nil {
		path = strings.TrimSpace(*c.configFlag)
	}
	return config.NewFileStore(path)
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		store, err := c.configStore()
		if err != nil {
			c.configErr = err
			return
		}
		cfg, err := store.Load()
		if err != nil {
			c.configErr = fmt.Errorf("load config from %s: %w", store.Location(), err)
			return
		}
		if c.logLevelFlag != nil {
			if level := strings.ToLower(strings.TrimSpace(*c.logLevelFlag)); level != "" {
				cfg = cfg.Clone()
				cfg.Logging.Level = level
			}
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) logger(cmd *cobra.Command) (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Writer: cmd.ErrOrStderr(),
	})
}

func (c *commandContext) prompter(cmd *cobra.Command) *prompt.Prompter {
	in := c.deps.stdin
	if in == nil {
		in = cmd.InOrStdin()
	}
	return prompt.New(in, cmd.OutOrStdout())
}

func (c *commandContext) service(cmd *cobra.Command) (*workflow.Service, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.logger(cmd)
	if err != nil {
		return nil, err
	}
	gw, err := c.deps.newGateway(cfg, logger)
	if err != nil {
		return nil, err
	}
	return workflow.New(cfg, gw, logger, c.deps.workflow...), nil
}

func newGateway(cfg *config.Config, logger *slog.Logger) (objectstore.Gateway, error) {
	switch cfg.Storage.Backend {
	case config.BackendFS:
		return objectstore.NewFS(cfg.Storage.Root), nil
	case config.BackendS3:
		gw, err := objectstore.NewS3(objectstore.S3Options{
			Endpoint:  cfg.S3.Endpoint,
			Region:    cfg.S3.Region,
			Bucket:    cfg.S3.Bucket,
			KeyID:     cfg.S3.KeyID,
			KeySecret: cfg.S3.KeySecret,
			Insecure:  cfg.S3.Insecure,
		})
		if err != nil {
			return nil, err
		}
		return objectstore.WithRetry(gw, objectstore.DefaultRetryPolicy(), logger), nil
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.Storage.Backend)
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
