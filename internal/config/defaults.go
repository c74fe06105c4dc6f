package config

const (
	BackendS3 = "s3"
	BackendFS = "fs"
)

const (
	defaultConfigPath        = "~/.config/pxl/config.toml"
	defaultBackend           = BackendS3
	defaultS3Endpoint        = "digitaloceanspaces.com"
	defaultS3Region          = "ams3"
	defaultUploadConcurrency = 4
	defaultOutputDir         = "build"
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Storage: Storage{
			Backend: defaultBackend,
		},
		S3: S3{
			Endpoint: defaultS3Endpoint,
			Region:   defaultS3Region,
		},
		Upload: Upload{
			Variants:    true,
			Concurrency: defaultUploadConcurrency,
		},
		Site: Site{
			OutputDir: defaultOutputDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
