// Package main hosts the pxl CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration, builds the object store
// gateway for the configured backend, and hands off to the workflow package.
// Commands stay thin: prompting and output formatting live here, catalog
// semantics live in internal packages.
package main
