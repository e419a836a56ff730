package cmd

import (
	"regexp"

	"github.com/spf13/cobra"

	daqerrors "github.com/dune-daq/daqgen/internal/errors"
	"github.com/dune-daq/daqgen/internal/logging"
	"github.com/dune-daq/daqgen/internal/output"
)

func newLogsCmd() *cobra.Command {
	var (
		lines   int
		level   string
		pattern string
		file    string
		noColor bool
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the debug log",
		Long: `Show the last entries of the log written by --debug runs
(~/.daqgen/logs/daqgen.log).`,
		Example: `  daqgen logs
  daqgen logs -n 200 --level warn
  daqgen logs --grep "template changed"`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := logging.FindLogFile(file)
			if err != nil {
				return daqerrors.ValidationError(err.Error(), nil).
					WithSuggestion("run any command with --debug to start logging")
			}

			cfg := logging.ViewerConfig{
				Level:   level,
				NoColor: noColor || output.DetectNoColor() || !output.IsTTY(cmd.OutOrStdout()),
			}
			if pattern != "" {
				re, err := regexp.Compile(pattern)
				if err != nil {
					return daqerrors.ValidationError("invalid --grep pattern", err)
				}
				cfg.Pattern = re
			}

			viewer := logging.NewViewer(cfg, cmd.OutOrStdout())
			entries, err := viewer.Tail(path, lines)
			if err != nil {
				return daqerrors.New(daqerrors.ErrCodeInternal, "read log", err)
			}
			if len(entries) == 0 {
				output.New(cmd.ErrOrStderr(), output.WithColor(!cfg.NoColor)).
					Warningf("No log entries match in %s", path)
				return nil
			}
			viewer.Print(entries)
			return nil
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of lines to read from the end")
	cmd.Flags().StringVar(&level, "level", "", "Minimum level: debug, info, warn, error")
	cmd.Flags().StringVar(&pattern, "grep", "", "Only entries whose message or attributes match this regexp")
	cmd.Flags().StringVar(&file, "file", "", "Log file (default: ~/.daqgen/logs/daqgen.log)")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colors")
	return cmd
}
