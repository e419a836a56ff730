package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dune-daq/daqgen/internal/output"
	"github.com/dune-daq/daqgen/internal/store"
)

func newTemplatesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "templates",
		Aliases: []string{"tmpl"},
		Short:   "Inspect the base templates",
		Long: `Base templates are looked up in --template-dir, templates.search_path,
FHICL_FILE_PATH and finally the templates built into daqgen. The first
match wins.`,
	}

	cmd.AddCommand(newTemplatesListCmd(a))
	cmd.AddCommand(newTemplatesShowCmd(a))
	cmd.AddCommand(newTemplatesPathCmd(a))
	return cmd
}

func newTemplatesListCmd(a *app) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List resolvable base templates",
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries, err := a.store.List()
			if err != nil {
				return err
			}
			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}

			out := output.New(cmd.OutOrStdout())
			if len(entries) == 0 {
				out.Warning("No base templates found")
				return nil
			}
			rows := make([][2]string, len(entries))
			for i, e := range entries {
				rows[i] = [2]string{e.Name, e.Source}
			}
			out.KeyValue(rows)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newTemplatesShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show NAME",
		Short: "Print a base template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entry, text, err := a.store.Resolve(args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "# %s (%s)\n", entry.Name, entry.Source)
			_, _ = fmt.Fprint(cmd.OutOrStdout(), text)
			return nil
		},
	}
}

func newTemplatesPathCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the template search path",
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, d := range a.store.Dirs() {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), d)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), store.EmbeddedSource)
			return nil
		},
	}
}
