package cmd

import (
	"github.com/spf13/cobra"

	"github.com/dune-daq/daqgen/internal/output"
	"github.com/dune-daq/daqgen/internal/scaffold"
)

func newCloneCmd(a *app) *cobra.Command {
	var (
		opts        scaffold.CloneOptions
		overlaysLib string
	)

	cmd := &cobra.Command{
		Use:   "clone-generator [GENERATOR_TOKEN] [FRAGMENT_TOKEN]",
		Short: "Scaffold a fragment generator from the ToySimulator sources",
		Long: `Copy the ToySimulator generator and ToyFragment overlay sources into
new files, replacing "ToySimulator" with GENERATOR_TOKEN and then "Toy" with
FRAGMENT_TOKEN in both file names and contents.

The package root defaults to $LBNEARTDAQ_REPO/lbne-artdaq. Existing files
are never overwritten. Missing tokens are prompted for on a terminal.

The CMake plugin snippet for the new generator is printed afterwards; add it
to Generators/CMakeLists.txt yourself.`,
		Example: `  daqgen clone-generator TpcRceReceiver TpcMilliSlice
  daqgen clone-generator --root ./lbne-artdaq --dry-run PennReceiver PennMilliSlice`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				opts.GeneratorToken = args[0]
			}
			if len(args) > 1 {
				opts.FragmentToken = args[1]
			}
			opts.Logger = a.logger

			var prompter scaffold.Prompter
			if output.IsInteractive(cmd.InOrStdin()) {
				prompter = scaffold.SurveyPrompter{}
			}
			if err := scaffold.CompleteTokens(cmd.Context(), prompter, &opts); err != nil {
				return err
			}

			res, err := scaffold.Clone(cmd.Context(), opts)
			if err != nil {
				return err
			}

			out := output.New(cmd.OutOrStdout())
			verb := "Created"
			if opts.DryRun {
				verb = "Would create"
			}
			for _, c := range res.Copies {
				out.Successf("%s %s", verb, c.Target)
			}

			snippet, err := scaffold.PluginSnippet(opts.GeneratorToken, overlaysLib)
			if err != nil {
				return err
			}
			out.Newline()
			out.Status("→", "Add to Generators/CMakeLists.txt:")
			out.Code(snippet)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Root, "root", "", "Package root holding Generators/ and Overlays/ (default: $LBNEARTDAQ_REPO/lbne-artdaq)")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Show the copies without writing them")
	cmd.Flags().StringVar(&overlaysLib, "overlays-lib", scaffold.DefaultOverlaysLibrary, "Overlays library linked by the plugin")
	return cmd
}
