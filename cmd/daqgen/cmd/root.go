// Package cmd provides the CLI commands for daqgen.
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/dune-daq/daqgen/configs"
	"github.com/dune-daq/daqgen/internal/config"
	"github.com/dune-daq/daqgen/internal/daq"
	daqerrors "github.com/dune-daq/daqgen/internal/errors"
	"github.com/dune-daq/daqgen/internal/fhicl"
	"github.com/dune-daq/daqgen/internal/logging"
	"github.com/dune-daq/daqgen/internal/store"
	"github.com/dune-daq/daqgen/pkg/version"
)

// app is the state shared by every command of one invocation.
type app struct {
	debug        bool
	seed         int64
	templateDirs []string

	cfg            *config.Config
	store          *store.FileStore
	logger         *slog.Logger
	loggingCleanup func()
}

// NewRootCmd creates the root command for the daqgen CLI.
func NewRootCmd() *cobra.Command {
	cmd, _ := newRootCmd()
	return cmd
}

func newRootCmd() (*cobra.Command, *app) {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "daqgen",
		Short: "Generate FHiCL configurations for an artdaq DAQ",
		Long: `daqgen renders the FHiCL documents run by the processes of an artdaq
data-acquisition system: board readers (toy simulator, TPC, Penn, SSP),
event builders and aggregators, along with the waveform viewer and the SSP
software trigger they embed.

Base templates are looked up in templates.search_path, then FHICL_FILE_PATH,
then the set built into daqgen.

It also scaffolds new fragment generators from the ToySimulator sources.`,
		Version:       version.Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			a.teardown()
			return nil
		},
	}

	cmd.SetVersionTemplate("daqgen version {{.Version}}\n")

	cmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging to ~/.daqgen/logs/")
	cmd.PersistentFlags().Int64Var(&a.seed, "seed", 0, "Fixed seed for simulator random seeds (default: time based)")
	cmd.PersistentFlags().StringSliceVar(&a.templateDirs, "template-dir", nil,
		"Directory searched for base templates before the configured search path (repeatable)")

	cmd.AddCommand(newGenerateCmd(a))
	cmd.AddCommand(newTemplatesCmd(a))
	cmd.AddCommand(newCloneCmd(a))
	cmd.AddCommand(newConfigCmd(a))
	cmd.AddCommand(newDoctorCmd(a))
	cmd.AddCommand(newLogsCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd, a
}

// setup loads configuration, starts logging and opens the template store.
func (a *app) setup(cmd *cobra.Command) error {
	dir, err := os.Getwd()
	if err != nil {
		return daqerrors.InternalError("get working directory", err)
	}
	cfg, err := config.Load(dir)
	if err != nil {
		return err
	}
	a.cfg = cfg

	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.LogLevel
	if a.debug {
		logCfg = logging.DebugConfig()
	}
	logCfg.Stderr = cmd.ErrOrStderr()
	cleanup, err := logging.SetupDefault(logCfg)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	logger := slog.Default()
	a.logger = logger
	a.loggingCleanup = cleanup
	if a.debug {
		logger.Info("debug logging enabled",
			slog.String("log_file", logCfg.FilePath),
			slog.String("version", version.Short()),
			slog.String("command", cmd.CommandPath()))
	}

	dirs := append(append([]string{}, a.templateDirs...), cfg.Templates.SearchPath...)
	a.store = store.New(
		store.WithDirs(dirs...),
		store.WithEnvSearchPath(),
		store.WithFallback(configs.BaseTemplates()),
		store.WithCacheSize(cfg.Templates.CacheSize),
		store.WithLogger(logger),
	)
	return nil
}

func (a *app) teardown() {
	if a.loggingCleanup != nil {
		a.loggingCleanup()
		a.loggingCleanup = nil
	}
}

// generator returns a Generator over the app's store. --seed fixes the
// random source.
func (a *app) generator(cmd *cobra.Command) *daq.Generator {
	random := fhicl.DefaultRandom()
	if cmd.Flags().Changed("seed") {
		random = fhicl.NewRandom(a.seed)
	}
	return daq.NewGenerator(a.store, daq.WithRandom(random), daq.WithLogger(a.logger))
}

// Execute runs the root command and prints any error.
func Execute() error {
	return run(newRootCmd())
}

// run executes root and reports a failure on stderr, as JSON when the
// failing command was asked for JSON output. Logging is closed either way.
func run(root *cobra.Command, a *app) error {
	defer a.teardown()

	ran, err := root.ExecuteC()
	if err == nil {
		return nil
	}
	if a.logger != nil {
		logFailure(a.logger, "command failed", err)
	}

	if ran != nil && wantsJSON(ran) {
		data, jerr := daqerrors.FormatJSON(err)
		if jerr == nil {
			_, _ = fmt.Fprintln(root.ErrOrStderr(), string(data))
			return err
		}
	}
	_, _ = fmt.Fprint(root.ErrOrStderr(), daqerrors.FormatForCLI(err))
	return err
}

func wantsJSON(cmd *cobra.Command) bool {
	f := cmd.Flags().Lookup("json")
	return f != nil && f.Value.String() == "true"
}

// logFailure records err's code, category and details at debug level.
func logFailure(logger *slog.Logger, msg string, err error) {
	fields := daqerrors.FormatForLog(err)
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	attrs := make([]any, 0, len(keys))
	for _, k := range keys {
		attrs = append(attrs, slog.Any(k, fields[k]))
	}
	logger.Debug(msg, attrs...)
}
