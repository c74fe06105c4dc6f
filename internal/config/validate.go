package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateUpload(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateStorage() error {
	switch c.Storage.Backend {
	case BackendS3:
		return c.validateS3()
	case BackendFS:
		if strings.TrimSpace(c.Storage.Root) == "" {
			return errors.New("storage.root must be set when storage.backend is \"fs\"")
		}
		return nil
	default:
		return fmt.Errorf("storage.backend: unsupported value %q (want %q or %q)", c.Storage.Backend, BackendS3, BackendFS)
	}
}

func (c *Config) validateS3() error {
	required := []struct{ key, value string }{
		{"s3.endpoint", c.S3.Endpoint},
		{"s3.region", c.S3.Region},
		{"s3.bucket", c.S3.Bucket},
		{"s3.key_id", c.S3.KeyID},
		{"s3.key_secret", c.S3.KeySecret},
	}
	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			return fmt.Errorf("%s must be set (edit the config or run `pxl init --force`)", field.key)
		}
	}
	return nil
}

func (c *Config) validateUpload() error {
	if c.Upload.Concurrency < 1 {
		return errors.New("upload.concurrency must be >= 1")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
