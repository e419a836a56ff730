package daq

import (
	"log/slog"

	"github.com/dune-daq/daqgen/internal/fhicl"
)

// DefaultBufferMultiplier sizes the NetMon output buffers per aggregator.
const DefaultBufferMultiplier = 4

// ebBuffersPerReceiver sizes the event builder's MPI buffers per fragment
// receiver.
const ebBuffersPerReceiver = 8

// EventBuilderParams parameterizes one event builder document.
type EventBuilderParams struct {
	Index              int
	TotalFRs           int
	TotalEBs           int
	TotalAGs           int
	DataDir            string
	OnmonEnabled       bool
	TriggerEnabled     bool
	DiskWritingEnabled bool
	FragSizeWords      int
	TotalFragments     int

	// BufferMultiplier scales netmonout_buffer_count per aggregator.
	// Zero means DefaultBufferMultiplier.
	BufferMultiplier int

	// FilePrefix names the output file. Empty means DefaultEventBuilderPrefix.
	FilePrefix string

	// WFViewer is the rendered waveform-viewer analyzer block, used when
	// online monitoring runs in the event builder.
	WFViewer string
}

// Validate reports parameter errors.
func (p EventBuilderParams) Validate() error {
	if err := checkNonNegative("eventbuilder", map[string]int{
		"index":             p.Index,
		"total_frs":         p.TotalFRs,
		"total_ebs":         p.TotalEBs,
		"total_ags":         p.TotalAGs,
		"frag_size_words":   p.FragSizeWords,
		"total_fragments":   p.TotalFragments,
		"buffer_multiplier": p.BufferMultiplier,
	}); err != nil {
		return err
	}
	if p.TotalEBs > 0 && p.Index >= p.TotalEBs {
		return invalidParams("eventbuilder", "index %d out of range for %d event builders", p.Index, p.TotalEBs)
	}
	return nil
}

// EventBuilder renders the EventBuilderMain document.
//
// With at least one aggregator the event builder forwards events over
// NetMon and neither writes files nor runs online monitoring itself.
// Without aggregators it writes ROOT files when disk writing is enabled
// and hosts the waveform viewer when monitoring is enabled.
func (g *Generator) EventBuilder(p EventBuilderParams) (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}

	multiplier := p.BufferMultiplier
	if multiplier == 0 {
		multiplier = DefaultBufferMultiplier
	}

	forwarding := p.TotalAGs >= 1
	onmon := !forwarding && p.OnmonEnabled

	params := fhicl.NewParams().
		Set("ag_rank", fhicl.Int(p.TotalFRs+p.TotalEBs)).
		Set("ag_count", fhicl.Int(p.TotalAGs)).
		Set("size_words", fhicl.Int(p.FragSizeWords)).
		Set("netmonout_buffer_count", fhicl.Int(p.TotalAGs*multiplier)).
		Set("eb_buffer_count", fhicl.Int(p.TotalFRs*ebBuffersPerReceiver)).
		Set("total_frs", fhicl.Int(p.TotalFRs)).
		Set("total_fragments", fhicl.Int(p.TotalFragments)).
		Set("verbose", fhicl.Bool(!forwarding)).
		Set("output_file", fhicl.String(EventBuilderFileName(p.DataDir, p.FilePrefix, p.Index))).
		Block(blockNetmonOutput, fhicl.BlockFor(forwarding)).
		Block(blockRootOutput, fhicl.BlockFor(!forwarding && p.DiskWritingEnabled)).
		Block(blockEnableOnmon, fhicl.BlockFor(onmon))

	if onmon {
		params.Set("phys_anal_onmon_cfg", fhicl.Raw(p.WFViewer))
	} else {
		params.Set("phys_anal_onmon_cfg", fhicl.Raw(""))
	}

	trig := Trigger{}
	if p.TriggerEnabled {
		trig = NewTrigger()
	}
	params.
		Set("trigger_output", fhicl.Raw(trig.Output)).
		Set("trigger_code", fhicl.Raw(trig.Filters)).
		Set("trigger_path", fhicl.Raw(trig.Paths))

	out, err := g.render("eventbuilder", eventBuilderTemplate, params)
	if err != nil {
		return "", err
	}

	g.logger.Debug("rendered event builder",
		slog.Int("index", p.Index),
		slog.Bool("forwarding", forwarding),
		slog.Bool("onmon", onmon))
	return out, nil
}
