package daq

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dune-daq/daqgen/internal/config"
	daqerrors "github.com/dune-daq/daqgen/internal/errors"
)

// Plan describes every process of one DAQ run.
type Plan struct {
	DataDir             string `yaml:"data_dir"`
	FragmentSizeWords   int    `yaml:"fragment_size_words"`
	FragmentsPerBoard   int    `yaml:"fragments_per_board"`
	EventBuilders       int    `yaml:"event_builders"`
	Aggregators         int    `yaml:"aggregators"`
	BunchSize           int    `yaml:"bunch_size"`
	BufferMultiplier    int    `yaml:"buffer_multiplier"`
	Onmon               bool   `yaml:"onmon"`
	DiskWriting         bool   `yaml:"disk_writing"`
	Trigger             bool   `yaml:"trigger"`
	XMLRPCClients       string `yaml:"xmlrpc_clients"`
	FileSizeThresholdMB int    `yaml:"file_size_threshold_mb"`
	FileDurationSecs    int    `yaml:"file_duration_secs"`
	FileEventCount      int    `yaml:"file_event_count"`
	OnmonEventPrescale  int    `yaml:"onmon_event_prescale"`
	EventBuilderPrefix  string `yaml:"eventbuilder_prefix"`
	AggregatorPrefix    string `yaml:"aggregator_prefix"`

	WFViewer PlanWFViewer `yaml:"wfviewer"`
	Boards   []PlanBoard  `yaml:"boards"`
}

// PlanWFViewer holds the optional waveform-viewer overrides of a plan.
type PlanWFViewer struct {
	Prescale       *int  `yaml:"prescale"`
	DigitalSumOnly *bool `yaml:"digital_sum_only"`
}

// PlanBoard is one board reader of a plan.
type PlanBoard struct {
	Kind          BoardKind `yaml:"kind"`
	BoardID       int       `yaml:"board_id"`
	FragmentType  string    `yaml:"fragment_type"`
	ThrottleUsecs *int      `yaml:"throttle_usecs,omitempty"`
	NADCCounts    *int      `yaml:"nadc_counts,omitempty"`
	InterfaceType int       `yaml:"interface_type,omitempty"`
}

// LoadPlan reads a plan from a YAML file. Unknown keys are rejected.
func LoadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, daqerrors.New(daqerrors.ErrCodeInvalidPlan,
			fmt.Sprintf("read plan %s", path), err)
	}
	return ParsePlan(data)
}

// ParsePlan decodes a plan from YAML. Unknown keys are rejected.
func ParsePlan(data []byte) (*Plan, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var p Plan
	if err := dec.Decode(&p); err != nil {
		return nil, daqerrors.New(daqerrors.ErrCodeInvalidPlan, "parse plan", err).
			WithSuggestion("check the plan against 'daqgen generate run --help'")
	}
	return &p, nil
}

// ApplyDefaults fills zero-valued plan fields from cfg.
func (p *Plan) ApplyDefaults(cfg *config.Config) {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	setDefault(&p.FragmentSizeWords, cfg.DAQ.FragmentSizeWords)
	setDefault(&p.FragmentsPerBoard, cfg.DAQ.FragmentsPerBoard)
	setDefault(&p.BunchSize, cfg.DAQ.BunchSize)
	setDefault(&p.BufferMultiplier, cfg.DAQ.BufferMultiplier)
	setDefault(&p.FileSizeThresholdMB, cfg.DAQ.FileSizeThresholdMB)
	setDefault(&p.FileDurationSecs, cfg.DAQ.FileDurationSecs)
	setDefault(&p.FileEventCount, cfg.DAQ.FileEventCount)
	setDefault(&p.OnmonEventPrescale, cfg.DAQ.OnmonEventPrescale)
	if p.DataDir == "" {
		p.DataDir = cfg.Output.DataDir
	}
	if p.EventBuilderPrefix == "" {
		p.EventBuilderPrefix = cfg.Output.EventBuilderPrefix
	}
	if p.AggregatorPrefix == "" {
		p.AggregatorPrefix = cfg.Output.AggregatorPrefix
	}
}

func setDefault(dst *int, v int) {
	if *dst == 0 {
		*dst = v
	}
}

// Validate reports the first problem with the plan. Board kinds are
// normalized to lower case.
func (p *Plan) Validate() error {
	if len(p.Boards) == 0 {
		return invalidPlan("a plan needs at least one board")
	}
	if p.EventBuilders < 1 {
		return invalidPlan("a plan needs at least one event builder, got %d", p.EventBuilders)
	}
	if p.Aggregators < 0 {
		return invalidPlan("aggregators must be non-negative, got %d", p.Aggregators)
	}
	if p.DataDir == "" && (p.DiskWriting || p.Aggregators > 0) {
		return invalidPlan("data_dir is required when files are written")
	}

	seen := make(map[string]int, len(p.Boards))
	for i, b := range p.Boards {
		kind, err := ParseBoardKind(string(b.Kind))
		if err != nil {
			return invalidPlan("board %d: unknown kind %q", i, b.Kind)
		}
		p.Boards[i].Kind = kind
		if b.BoardID < 0 {
			return invalidPlan("board %d: board_id must be non-negative", i)
		}
		if b.FragmentType == "" {
			return invalidPlan("board %d: fragment_type is required", i)
		}
		if kind != BoardToy && (b.ThrottleUsecs != nil || b.NADCCounts != nil) {
			return invalidPlan("board %d: throttle_usecs and nadc_counts apply to toy boards only, not %s", i, kind)
		}
		if kind != BoardSSP && b.InterfaceType != 0 {
			return invalidPlan("board %d: interface_type applies to ssp boards only, not %s", i, kind)
		}
		key := fmt.Sprintf("%s/%d", kind, b.BoardID)
		if j, dup := seen[key]; dup {
			return invalidPlan("boards %d and %d are both %s board %d", j, i, kind, b.BoardID)
		}
		seen[key] = i
	}
	return nil
}

// FragmentIDs returns the fragment id of each board, assigned in board
// order.
func (p *Plan) FragmentIDs() []int {
	ids := make([]int, len(p.Boards))
	for i := range p.Boards {
		ids[i] = i
	}
	return ids
}

// FragmentTypes returns the fragment type of each board.
func (p *Plan) FragmentTypes() []string {
	types := make([]string, len(p.Boards))
	for i, b := range p.Boards {
		types[i] = b.FragmentType
	}
	return types
}

func invalidPlan(format string, args ...any) error {
	return daqerrors.New(daqerrors.ErrCodeInvalidPlan, fmt.Sprintf(format, args...), nil)
}
