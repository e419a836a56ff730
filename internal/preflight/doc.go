// Package preflight checks that the environment can take generated
// configurations before a run is rendered.
//
// The checks cover:
//   - Write permission and free space in the data directory
//   - Template search-path directories that do not exist
//   - Resolution of the base templates every plan needs
//   - The lbne-artdaq package that clone-generator copies from
//
// Use the Checker type to run all checks:
//
//	checker := preflight.New(preflight.WithTemplates(st))
//	results := checker.RunAll(ctx, cfg.Output.DataDir)
//	if checker.HasCriticalFailures(results) {
//	    // Handle failures
//	}
package preflight
