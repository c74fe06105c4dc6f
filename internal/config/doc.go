// Package config loads, normalizes, and validates pxl configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours PXL_* environment overrides so
// credentials can stay out of the file. The Config type centralizes every knob
// the CLI needs: object store credentials, upload behaviour, site paths, and
// logging.
//
// Configuration is reached through a Store handle rather than a fixed path so
// commands can be exercised against an in-memory store under test.
package config
