package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"

	daqerrors "github.com/dune-daq/daqgen/internal/errors"
	"github.com/dune-daq/daqgen/internal/preflight"
)

func newDoctorCmd(a *app) *cobra.Command {
	var (
		jsonOutput bool
		verbose    bool
		templates  []string
		root       string
	)

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the environment before generating a run",
		Long: `Check that the data directory is writable and has room, that every
template search-path directory exists, that the base templates resolve and
that clone-generator has ToySimulator sources to copy.

Exits non-zero when a required check fails.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := []preflight.Option{
				preflight.WithOutput(cmd.OutOrStdout()),
				preflight.WithVerbose(verbose),
				preflight.WithTemplates(a.store),
				preflight.WithCloneRoot(root),
			}
			if len(templates) > 0 {
				opts = append(opts, preflight.WithRequiredTemplates(templates...))
			}
			checker := preflight.New(opts...)
			results := checker.RunAll(cmd.Context(), a.cfg.Output.DataDir)

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(results); err != nil {
					return err
				}
			} else {
				checker.PrintResults(results)
			}

			if checker.HasCriticalFailures(results) {
				return daqerrors.ConfigError("environment check failed", nil).
					WithSuggestion("fix the FAIL entries above")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show details of each check")
	cmd.Flags().StringSliceVar(&templates, "template", nil, "Base template that must resolve (repeatable, default: ToySimulator.fcl,WFViewer.fcl)")
	cmd.Flags().StringVar(&root, "root", "", "Package root checked for clone sources (default: $LBNEARTDAQ_REPO/lbne-artdaq)")
	return cmd
}
