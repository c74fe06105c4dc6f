package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeStorage()
	c.normalizeS3()
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLogging()
	if c.Upload.Concurrency <= 0 {
		c.Upload.Concurrency = defaultUploadConcurrency
	}
	return nil
}

func (c *Config) normalizeStorage() {
	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	if c.Storage.Backend == "" {
		c.Storage.Backend = defaultBackend
	}
}

func (c *Config) normalizeS3() {
	endpoint := strings.TrimSpace(c.S3.Endpoint)
	endpoint = strings.TrimPrefix(endpoint, "https://")
	endpoint = strings.TrimPrefix(endpoint, "http://")
	c.S3.Endpoint = strings.TrimRight(endpoint, "/")
	c.S3.Region = strings.TrimSpace(c.S3.Region)
	c.S3.Bucket = strings.TrimSpace(c.S3.Bucket)
	c.S3.KeyID = strings.TrimSpace(c.S3.KeyID)
	c.S3.PublicURL = strings.TrimSpace(c.S3.PublicURL)
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Storage.Root, err = expandPath(strings.TrimSpace(c.Storage.Root)); err != nil {
		return fmt.Errorf("storage.root: %w", err)
	}
	if strings.TrimSpace(c.Site.OutputDir) == "" {
		c.Site.OutputDir = defaultOutputDir
	}
	if c.Site.OutputDir, err = expandPath(c.Site.OutputDir); err != nil {
		return fmt.Errorf("site.output_dir: %w", err)
	}
	if c.Site.DesignDir, err = expandPath(strings.TrimSpace(c.Site.DesignDir)); err != nil {
		return fmt.Errorf("site.design_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	format := strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if format == "" {
		format = defaultLogFormat
	}
	c.Logging.Format = format

	level := strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if level == "" {
		level = defaultLogLevel
	}
	c.Logging.Level = level
}
