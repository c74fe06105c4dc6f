package preflight

import (
	"context"

	"pxl/internal/config"
	"pxl/internal/objectstore"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config, gw objectstore.Gateway) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	if cfg.Storage.Backend == config.BackendFS {
		results = append(results, CheckDirectoryAccess("Storage root", cfg.Storage.Root))
	}
	if gw != nil {
		results = append(results, CheckStorage(ctx, gw))
	}
	results = append(results, CheckOutputDir(cfg.Site.OutputDir))
	results = append(results, CheckDesign(cfg.Site.DesignDir))
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
