package daq

import (
	"log/slog"

	"github.com/dune-daq/daqgen/internal/fhicl"
)

// agBuffersPerEventBuilder sizes the aggregator's MPI buffers per event
// builder.
const agBuffersPerEventBuilder = 10

// OnmonModules lists the analyzers run by online monitoring.
var OnmonModules = []string{"app", "wf"}

// AggregatorParams parameterizes one aggregator document.
type AggregatorParams struct {
	Index               int
	TotalAGs            int
	TotalFRs            int
	TotalEBs            int
	BunchSize           int
	DataDir             string
	OnmonEnabled        bool
	DiskWritingEnabled  bool
	FragSizeWords       int
	XMLRPCClients       string
	FileSizeThresholdMB int
	FileDurationSecs    int
	FileEventCount      int
	OnmonEventPrescale  int

	// FilePrefix names the output file. Empty means DefaultAggregatorPrefix.
	FilePrefix string

	// WFViewer is the rendered waveform-viewer analyzer block.
	WFViewer string
}

// AggregatorRole is the resolved behaviour of one aggregator.
type AggregatorRole struct {
	Index        int
	DataLogger   bool
	DiskWriting  bool
	Onmon        bool
	QueueDepth   int
	QueueTimeout int
}

// Name returns "data logger" or "dispatcher".
func (r AggregatorRole) Name() string {
	if r.DataLogger {
		return "data logger"
	}
	return "dispatcher"
}

func (r AggregatorRole) typeParam() string {
	if r.DataLogger {
		return "is_data_logger: true"
	}
	return "is_dispatcher: true"
}

// Validate reports parameter errors.
func (p AggregatorParams) Validate() error {
	if err := checkNonNegative("aggregator", map[string]int{
		"index":                  p.Index,
		"total_ags":              p.TotalAGs,
		"total_frs":              p.TotalFRs,
		"total_ebs":              p.TotalEBs,
		"bunch_size":             p.BunchSize,
		"frag_size_words":        p.FragSizeWords,
		"file_size_threshold_mb": p.FileSizeThresholdMB,
		"file_duration_secs":     p.FileDurationSecs,
		"file_event_count":       p.FileEventCount,
		"onmon_event_prescale":   p.OnmonEventPrescale,
	}); err != nil {
		return err
	}
	if p.TotalAGs > 0 && p.Index >= p.TotalAGs {
		return invalidParams("aggregator", "index %d out of range for %d aggregators", p.Index, p.TotalAGs)
	}
	return nil
}

// ResolveAggregatorRole decides what aggregator p.Index does. Index 0 is
// the data logger: it writes files and runs monitoring only when it is the
// sole aggregator. Every other index is a dispatcher feeding monitoring and
// never writes files.
func ResolveAggregatorRole(p AggregatorParams) AggregatorRole {
	if p.Index == 0 {
		return AggregatorRole{
			Index:        0,
			DataLogger:   true,
			DiskWriting:  p.DiskWritingEnabled,
			Onmon:        p.OnmonEnabled && p.TotalAGs <= 1,
			QueueDepth:   20,
			QueueTimeout: 5,
		}
	}
	return AggregatorRole{
		Index:        p.Index,
		DiskWriting:  false,
		Onmon:        p.OnmonEnabled,
		QueueDepth:   2,
		QueueTimeout: 1,
	}
}

// Aggregator renders the AggregatorMain document and returns the role it
// was rendered for.
func (g *Generator) Aggregator(p AggregatorParams) (string, AggregatorRole, error) {
	if err := p.Validate(); err != nil {
		return "", AggregatorRole{}, err
	}

	role := ResolveAggregatorRole(p)

	params := fhicl.NewParams().
		Set("size_words", fhicl.Int(p.FragSizeWords)).
		Set("ag_buffer_count", fhicl.Int(p.TotalEBs*agBuffersPerEventBuilder)).
		Set("total_frs", fhicl.Int(p.TotalFRs)).
		Set("total_ebs", fhicl.Int(p.TotalEBs)).
		Set("bunch_size", fhicl.Int(p.BunchSize)).
		Set("queue_depth", fhicl.Int(role.QueueDepth)).
		Set("queue_timeout", fhicl.Int(role.QueueTimeout)).
		Set("onmon_event_prescale", fhicl.Int(p.OnmonEventPrescale)).
		Set("xmlrpc_client_list", fhicl.String(p.XMLRPCClients)).
		Set("file_size", fhicl.Int(p.FileSizeThresholdMB)).
		Set("file_duration", fhicl.Int(p.FileDurationSecs)).
		Set("file_event_count", fhicl.Int(p.FileEventCount)).
		Set("ag_type_param", fhicl.String(role.typeParam())).
		Set("output_file", fhicl.String(AggregatorFileName(p.DataDir, p.FilePrefix))).
		Set("onmon_modules", fhicl.StringList(OnmonModules)).
		Block(blockRootOutput, fhicl.BlockFor(role.DiskWriting)).
		Block(blockEnableOnmon, fhicl.BlockFor(role.Onmon))

	if role.Onmon {
		params.Set("phys_anal_onmon_cfg", fhicl.Raw(p.WFViewer))
	} else {
		params.Set("phys_anal_onmon_cfg", fhicl.Raw(""))
	}

	out, err := g.render("aggregator", aggregatorTemplate, params)
	if err != nil {
		return "", AggregatorRole{}, err
	}

	g.logger.Info("rendered aggregator",
		slog.Int("index", p.Index),
		slog.String("role", role.Name()),
		slog.Bool("disk_writing", role.DiskWriting),
		slog.Bool("onmon", role.Onmon))
	return out, role, nil
}
