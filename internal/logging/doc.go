// Package logging assembles structured slog loggers used across pxl.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and provides a no-op logger for tests and wiring code that cannot
// fail. Components tag their lines with NewComponentLogger so console output
// reads "component: message key=value".
package logging
