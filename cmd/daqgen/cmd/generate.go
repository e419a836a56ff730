package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dune-daq/daqgen/internal/daq"
	daqerrors "github.com/dune-daq/daqgen/internal/errors"
	"github.com/dune-daq/daqgen/internal/output"
)

func newGenerateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "generate",
		Aliases: []string{"gen"},
		Short:   "Render FHiCL documents",
		Long: `Render one FHiCL document, or every document of a run plan.

Each subcommand prints the document to stdout unless --output names a
directory to write it into.`,
	}

	cmd.PersistentFlags().StringP("output", "o", "", "Directory to write documents into (default: stdout)")

	cmd.AddCommand(newEventBuilderCmd(a))
	cmd.AddCommand(newAggregatorCmd(a))
	for _, kind := range daq.BoardKinds {
		cmd.AddCommand(newBoardCmd(a, kind))
	}
	cmd.AddCommand(newWFViewerCmd(a))
	cmd.AddCommand(newTriggerCmd())
	cmd.AddCommand(newRunCmd(a))
	return cmd
}

// emit prints docs, or writes them when --output is set.
func emit(cmd *cobra.Command, docs ...daq.Document) error {
	dir, _ := cmd.Flags().GetString("output")
	if dir == "" {
		for _, d := range docs {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), d.Text)
		}
		return nil
	}

	paths, err := daq.WriteDocuments(dir, docs)
	if err != nil {
		return err
	}
	out := output.New(cmd.ErrOrStderr())
	for _, p := range paths {
		out.Successf("Wrote %s", p)
	}
	return nil
}

// intOr returns the named int flag if it was given, else def.
func intOr(cmd *cobra.Command, name string, def int) int {
	if cmd.Flags().Changed(name) {
		v, _ := cmd.Flags().GetInt(name)
		return v
	}
	return def
}

func stringOr(cmd *cobra.Command, name, def string) string {
	if cmd.Flags().Changed(name) {
		v, _ := cmd.Flags().GetString(name)
		return v
	}
	return def
}

// optionalInt returns a pointer to the named flag's value if it was given.
func optionalInt(cmd *cobra.Command, name string) *int {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetInt(name)
	return &v
}

func optionalBool(cmd *cobra.Command, name string) *bool {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetBool(name)
	return &v
}

// wfviewerFlags are shared by the commands that may embed the viewer.
type wfviewerFlags struct {
	fragmentTypes []string
}

func (f *wfviewerFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&f.fragmentTypes, "fragment-types", nil,
		"Fragment type of each board reader, in fragment id order")
	cmd.Flags().Int("prescale", 0, "Waveform viewer prescale (default: base template)")
	cmd.Flags().Bool("digital-sum-only", false, "Waveform viewer shows only digital sums (default: base template)")
}

// render builds the viewer block for totalFRs board readers.
func (f *wfviewerFlags) render(a *app, cmd *cobra.Command, g *daq.Generator, totalFRs int) (string, error) {
	if len(f.fragmentTypes) != totalFRs {
		return "", daqerrors.ValidationError(
			fmt.Sprintf("online monitoring needs %d fragment types, got %d", totalFRs, len(f.fragmentTypes)), nil).
			WithSuggestion("pass one --fragment-types entry per board reader")
	}
	ids := make([]int, totalFRs)
	for i := range ids {
		ids[i] = i
	}
	return g.WFViewer(daq.WFViewerParams{
		TotalFRs:          totalFRs,
		FragmentsPerBoard: intOr(cmd, "fragments-per-board", a.cfg.DAQ.FragmentsPerBoard),
		FragmentIDs:       ids,
		FragmentTypes:     f.fragmentTypes,
		Prescale:          optionalInt(cmd, "prescale"),
		DigitalSumOnly:    optionalBool(cmd, "digital-sum-only"),
	})
}

func newEventBuilderCmd(a *app) *cobra.Command {
	var (
		index, frs, ebs, ags int
		onmon, trigger, disk bool
		viewer               wfviewerFlags
	)

	cmd := &cobra.Command{
		Use:     "eventbuilder",
		Aliases: []string{"eb"},
		Short:   "Render an EventBuilderMain document",
		Long: `Render the document of one event builder.

With at least one aggregator the event builder forwards events over NetMon.
Without aggregators it writes ROOT files when --disk-writing is set and
hosts the waveform viewer when --onmon is set.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			g := a.generator(cmd)
			p := daq.EventBuilderParams{
				Index:              index,
				TotalFRs:           frs,
				TotalEBs:           ebs,
				TotalAGs:           ags,
				DataDir:            stringOr(cmd, "data-dir", a.cfg.Output.DataDir),
				OnmonEnabled:       onmon,
				TriggerEnabled:     trigger,
				DiskWritingEnabled: disk,
				FragSizeWords:      intOr(cmd, "frag-size-words", a.cfg.DAQ.FragmentSizeWords),
				TotalFragments:     intOr(cmd, "total-fragments", frs*max(intOr(cmd, "fragments-per-board", a.cfg.DAQ.FragmentsPerBoard), 1)),
				BufferMultiplier:   intOr(cmd, "buffer-multiplier", a.cfg.DAQ.BufferMultiplier),
				FilePrefix:         stringOr(cmd, "prefix", a.cfg.Output.EventBuilderPrefix),
			}
			if onmon && ags == 0 {
				wf, err := viewer.render(a, cmd, g, frs)
				if err != nil {
					return err
				}
				p.WFViewer = wf
			}
			text, err := g.EventBuilder(p)
			if err != nil {
				return err
			}
			return emit(cmd, daq.Document{
				Name: fmt.Sprintf("eventbuilder_%02d.fcl", index),
				Role: daq.RoleEventBuilder,
				Text: text,
			})
		},
	}

	cmd.Flags().IntVar(&index, "index", 0, "Index of this event builder")
	cmd.Flags().IntVar(&frs, "frs", 1, "Number of board readers")
	cmd.Flags().IntVar(&ebs, "ebs", 1, "Number of event builders")
	cmd.Flags().IntVar(&ags, "ags", 0, "Number of aggregators")
	cmd.Flags().BoolVar(&onmon, "onmon", false, "Run online monitoring")
	cmd.Flags().BoolVar(&trigger, "trigger", false, "Splice in the SSP software trigger")
	cmd.Flags().BoolVar(&disk, "disk-writing", false, "Write ROOT files")
	cmd.Flags().String("data-dir", "", "Directory for ROOT files (default: output.data_dir)")
	cmd.Flags().Int("frag-size-words", 0, "Maximum fragment size in words (default: daq.fragment_size_words)")
	cmd.Flags().Int("fragments-per-board", 0, "Fragments each board reader sends per event (default: daq.fragments_per_board)")
	cmd.Flags().Int("total-fragments", 0, "Fragments per event (default: frs * fragments-per-board)")
	cmd.Flags().Int("buffer-multiplier", 0, "NetMon buffers per aggregator (default: daq.buffer_multiplier)")
	cmd.Flags().String("prefix", "", "Output file prefix (default: output.eventbuilder_prefix)")
	viewer.register(cmd)
	return cmd
}

func newAggregatorCmd(a *app) *cobra.Command {
	var (
		index, ags, frs, ebs int
		onmon, disk          bool
		xmlrpc               string
		viewer               wfviewerFlags
	)

	cmd := &cobra.Command{
		Use:     "aggregator",
		Aliases: []string{"ag"},
		Short:   "Render an AggregatorMain document",
		Long: `Render the document of one aggregator.

Aggregator 0 is the data logger. It writes files when --disk-writing is set
and runs monitoring only when it is the sole aggregator. Every other index
is a dispatcher that feeds monitoring.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			g := a.generator(cmd)
			p := daq.AggregatorParams{
				Index:               index,
				TotalAGs:            ags,
				TotalFRs:            frs,
				TotalEBs:            ebs,
				BunchSize:           intOr(cmd, "bunch-size", a.cfg.DAQ.BunchSize),
				DataDir:             stringOr(cmd, "data-dir", a.cfg.Output.DataDir),
				OnmonEnabled:        onmon,
				DiskWritingEnabled:  disk,
				FragSizeWords:       intOr(cmd, "frag-size-words", a.cfg.DAQ.FragmentSizeWords),
				XMLRPCClients:       xmlrpc,
				FileSizeThresholdMB: intOr(cmd, "file-size", a.cfg.DAQ.FileSizeThresholdMB),
				FileDurationSecs:    intOr(cmd, "file-duration", a.cfg.DAQ.FileDurationSecs),
				FileEventCount:      intOr(cmd, "file-events", a.cfg.DAQ.FileEventCount),
				OnmonEventPrescale:  intOr(cmd, "onmon-prescale", a.cfg.DAQ.OnmonEventPrescale),
				FilePrefix:          stringOr(cmd, "prefix", a.cfg.Output.AggregatorPrefix),
			}
			if daq.ResolveAggregatorRole(p).Onmon {
				wf, err := viewer.render(a, cmd, g, frs)
				if err != nil {
					return err
				}
				p.WFViewer = wf
			}
			text, role, err := g.Aggregator(p)
			if err != nil {
				return err
			}
			a.logger.Debug("aggregator role",
				slog.Int("index", role.Index),
				slog.String("role", role.Name()),
				slog.Bool("disk_writing", role.DiskWriting),
				slog.Bool("onmon", role.Onmon))
			return emit(cmd, daq.Document{
				Name: fmt.Sprintf("aggregator_%02d.fcl", index),
				Role: daq.RoleAggregator,
				Text: text,
			})
		},
	}

	cmd.Flags().IntVar(&index, "index", 0, "Index of this aggregator")
	cmd.Flags().IntVar(&ags, "ags", 1, "Number of aggregators")
	cmd.Flags().IntVar(&frs, "frs", 1, "Number of board readers")
	cmd.Flags().IntVar(&ebs, "ebs", 1, "Number of event builders")
	cmd.Flags().BoolVar(&onmon, "onmon", false, "Run online monitoring")
	cmd.Flags().BoolVar(&disk, "disk-writing", false, "Write ROOT files")
	cmd.Flags().StringVar(&xmlrpc, "xmlrpc-clients", "", "XML-RPC client list of the run control")
	cmd.Flags().String("data-dir", "", "Directory for ROOT files (default: output.data_dir)")
	cmd.Flags().Int("bunch-size", 0, "Events per bunch (default: daq.bunch_size)")
	cmd.Flags().Int("frag-size-words", 0, "Maximum fragment size in words (default: daq.fragment_size_words)")
	cmd.Flags().Int("fragments-per-board", 0, "Fragments each board reader sends per event (default: daq.fragments_per_board)")
	cmd.Flags().Int("file-size", 0, "File size threshold in MB, 0 for none (default: daq.file_size_threshold_mb)")
	cmd.Flags().Int("file-duration", 0, "File duration in seconds, 0 for none (default: daq.file_duration_secs)")
	cmd.Flags().Int("file-events", 0, "Events per file, 0 for none (default: daq.file_event_count)")
	cmd.Flags().Int("onmon-prescale", 0, "Online monitoring event prescale (default: daq.onmon_event_prescale)")
	cmd.Flags().String("prefix", "", "Output file prefix (default: output.aggregator_prefix)")
	viewer.register(cmd)
	return cmd
}

func newBoardCmd(a *app, kind daq.BoardKind) *cobra.Command {
	var (
		fragmentID, boardID int
		fragmentType        string
		wrap                bool
	)

	short := map[daq.BoardKind]string{
		daq.BoardToy:  "Render a ToySimulator generator block",
		daq.BoardTPC:  "Render a TpcRceReceiver generator block",
		daq.BoardPenn: "Render a PennReceiver generator block",
		daq.BoardSSP:  "Render an SSP generator block",
	}[kind]

	cmd := &cobra.Command{
		Use:   string(kind),
		Short: short,
		RunE: func(cmd *cobra.Command, _ []string) error {
			g := a.generator(cmd)
			p := daq.BoardParams{
				FragmentID:    fragmentID,
				BoardID:       boardID,
				FragmentType:  fragmentType,
				RandomSeed:    optionalInt(cmd, "random-seed"),
				ThrottleUsecs: optionalInt(cmd, "throttle-usecs"),
				NADCCounts:    optionalInt(cmd, "nadc-counts"),
				InterfaceType: intOr(cmd, "interface-type", 0),
			}
			text, err := g.Board(kind, p)
			if err != nil {
				return err
			}
			if wrap {
				text, err = g.BoardReader(intOr(cmd, "frag-size-words", a.cfg.DAQ.FragmentSizeWords), text)
				if err != nil {
					return err
				}
			}
			return emit(cmd, daq.Document{
				Name: kind.DocumentName(boardID),
				Role: daq.RoleBoardReader,
				Text: text,
			})
		},
	}

	cmd.Flags().IntVar(&fragmentID, "fragment-id", 0, "Fragment id")
	cmd.Flags().IntVar(&boardID, "board-id", 0, "Board id")
	cmd.Flags().StringVar(&fragmentType, "fragment-type", "", "Fragment type label")
	cmd.Flags().BoolVar(&wrap, "boardreader", false, "Wrap the block in a BoardReaderMain document")
	cmd.Flags().Int("frag-size-words", 0, "Maximum fragment size in words, with --boardreader (default: daq.fragment_size_words)")
	_ = cmd.MarkFlagRequired("fragment-type")

	switch kind {
	case daq.BoardToy:
		cmd.Flags().Int("random-seed", 0, "Simulator seed (default: drawn at random)")
		cmd.Flags().Int("throttle-usecs", 0, "Delay between fragments (default: base template)")
		cmd.Flags().Int("nadc-counts", 0, "ADC counts per fragment (default: base template)")
	case daq.BoardSSP:
		cmd.Flags().Int("interface-type", daq.DefaultSSPInterfaceType, "SSP interface type")
	}
	return cmd
}

func newWFViewerCmd(a *app) *cobra.Command {
	var (
		frs    int
		viewer wfviewerFlags
	)

	cmd := &cobra.Command{
		Use:   "wfviewer",
		Short: "Render the waveform viewer analyzer block",
		RunE: func(cmd *cobra.Command, _ []string) error {
			g := a.generator(cmd)
			text, err := viewer.render(a, cmd, g, frs)
			if err != nil {
				return err
			}
			return emit(cmd, daq.Document{Name: "wfviewer.fcl", Text: text})
		},
	}

	cmd.Flags().IntVar(&frs, "frs", 1, "Number of board readers")
	cmd.Flags().Int("fragments-per-board", 0, "Fragments each board reader sends per event (default: daq.fragments_per_board)")
	viewer.register(cmd)
	return cmd
}

func newTriggerCmd() *cobra.Command {
	var part string

	cmd := &cobra.Command{
		Use:   "trigger",
		Short: "Print the SSP software trigger blocks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			t := daq.NewTrigger()
			var text string
			switch part {
			case "output":
				text = t.Output
			case "filters":
				text = t.Filters
			case "paths":
				text = t.Paths
			case "all":
				text = t.Output + "\n" + t.Filters + "\n" + t.Paths
			default:
				return daqerrors.ValidationError(fmt.Sprintf("unknown trigger part %q", part), nil).
					WithSuggestion("use output, filters, paths or all")
			}
			return emit(cmd, daq.Document{Name: "trigger_" + part + ".fcl", Text: text})
		},
	}

	cmd.Flags().StringVar(&part, "part", "all", "Block to print: output, filters, paths or all")
	return cmd
}

func newRunCmd(a *app) *cobra.Command {
	var (
		planPath string
		watch    bool
		dryRun   bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Render every document of a run plan",
		Long: `Render every board reader, event builder and aggregator document of
the run described by a YAML plan. Unset plan fields take their values from
the configuration. Either every document is written or none is.

Example plan:

  event_builders: 2
  aggregators: 2
  onmon: true
  disk_writing: true
  boards:
    - {kind: toy, board_id: 0, fragment_type: TOY1}
    - {kind: tpc, board_id: 1, fragment_type: TPC}

With --watch the plan is rendered again whenever a base template in the
search path changes.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := a.renderPlan(ctx, cmd, planPath, dryRun); err != nil {
				return err
			}
			if !watch {
				return nil
			}
			return a.watchPlan(ctx, cmd, planPath, dryRun)
		},
	}

	cmd.Flags().StringVarP(&planPath, "plan", "p", "", "Path to the YAML run plan")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Render again when base templates change")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List the documents without writing them")
	_ = cmd.MarkFlagRequired("plan")
	return cmd
}

func (a *app) renderPlan(ctx context.Context, cmd *cobra.Command, path string, dryRun bool) error {
	plan, err := daq.LoadPlan(path)
	if err != nil {
		return err
	}
	plan.ApplyDefaults(a.cfg)

	docs, err := a.generator(cmd).RenderPlan(ctx, plan)
	if err != nil {
		return err
	}

	if dryRun {
		out := output.New(cmd.OutOrStdout())
		rows := make([][2]string, len(docs))
		for i, d := range docs {
			rows[i] = [2]string{d.Name, d.Role}
		}
		out.KeyValue(rows)
		return nil
	}
	return emit(cmd, docs...)
}

// watchPlan re-renders the plan on every template change until ctx ends.
// Render failures are reported and the watch continues.
func (a *app) watchPlan(ctx context.Context, cmd *cobra.Command, path string, dryRun bool) error {
	out := output.New(cmd.ErrOrStderr())
	errc := make(chan error, 1)
	go func() { errc <- a.store.Watch(ctx) }()

	out.Statusf("👀", "Watching %d template directories, Ctrl-C to stop", len(a.store.Dirs()))
	var dropped uint64
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-errc:
			return err
		case names := <-a.store.Changes():
			a.logger.Info("templates changed, rendering plan again", slog.Any("templates", names))
			if err := a.renderPlan(ctx, cmd, path, dryRun); err != nil {
				logFailure(a.logger, "render after template change failed", err)
				if daqerrors.IsFatal(err) {
					return err
				}
				out.Error(daqerrors.FormatForCLI(err))
				continue
			}
			out.Successf("Rendered plan after %d template change(s)", len(names))
			if n := a.store.DroppedChanges(); n > dropped {
				out.Warningf("%d template change batch(es) were dropped; the plan was rendered from the files on disk", n-dropped)
				dropped = n
			}
		}
	}
}
