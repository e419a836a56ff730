package daq

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dune-daq/daqgen/internal/config"
	daqerrors "github.com/dune-daq/daqgen/internal/errors"
)

const samplePlan = `
data_dir: /data
event_builders: 2
aggregators: 1
onmon: true
disk_writing: true
trigger: false
wfviewer:
  prescale: 10
boards:
  - kind: toy
    board_id: 1
    fragment_type: TOY1
    throttle_usecs: 5000
  - kind: TPC
    board_id: 1
    fragment_type: TPC
  - kind: ssp
    board_id: 11
    fragment_type: PHOTON
    interface_type: 2
`

var errInvalidPlan = daqerrors.Sentinel(daqerrors.ErrCodeInvalidPlan)

func TestParsePlan(t *testing.T) {
	plan, err := ParsePlan([]byte(samplePlan))

	require.NoError(t, err)
	assert.Equal(t, "/data", plan.DataDir)
	assert.Equal(t, 2, plan.EventBuilders)
	assert.Equal(t, 1, plan.Aggregators)
	assert.True(t, plan.Onmon)
	require.NotNil(t, plan.WFViewer.Prescale)
	assert.Equal(t, 10, *plan.WFViewer.Prescale)
	assert.Nil(t, plan.WFViewer.DigitalSumOnly)

	want := []PlanBoard{
		{Kind: BoardToy, BoardID: 1, FragmentType: "TOY1", ThrottleUsecs: intPtr(5000)},
		{Kind: "TPC", BoardID: 1, FragmentType: "TPC"},
		{Kind: BoardSSP, BoardID: 11, FragmentType: "PHOTON", InterfaceType: 2},
	}
	if diff := cmp.Diff(want, plan.Boards); diff != "" {
		t.Errorf("boards mismatch (-want +got):\n%s", diff)
	}
}

func TestParsePlan_RejectsUnknownKeys(t *testing.T) {
	_, err := ParsePlan([]byte("event_builders: 1\nevent_bulders: 2\n"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, errInvalidPlan))
}

func TestLoadPlan(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte(samplePlan), 0o644))

	plan, err := LoadPlan(path)
	require.NoError(t, err)
	assert.Len(t, plan.Boards, 3)

	_, err = LoadPlan(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, errors.Is(err, errInvalidPlan))
}

func TestPlan_ApplyDefaults(t *testing.T) {
	// Given: a plan that sets only the fragment size
	cfg := config.NewConfig()
	cfg.Output.DataDir = "/scratch"
	plan := &Plan{FragmentSizeWords: 1024}

	// When: applying defaults
	plan.ApplyDefaults(cfg)

	// Then: explicit values win and the rest come from config
	assert.Equal(t, 1024, plan.FragmentSizeWords)
	assert.Equal(t, cfg.DAQ.FragmentsPerBoard, plan.FragmentsPerBoard)
	assert.Equal(t, cfg.DAQ.BufferMultiplier, plan.BufferMultiplier)
	assert.Equal(t, cfg.DAQ.BunchSize, plan.BunchSize)
	assert.Equal(t, cfg.DAQ.OnmonEventPrescale, plan.OnmonEventPrescale)
	assert.Equal(t, "/scratch", plan.DataDir)
	assert.Equal(t, cfg.Output.EventBuilderPrefix, plan.EventBuilderPrefix)
	assert.Equal(t, cfg.Output.AggregatorPrefix, plan.AggregatorPrefix)
}

func TestPlan_ApplyDefaultsNilConfig(t *testing.T) {
	plan := &Plan{}

	plan.ApplyDefaults(nil)

	assert.Equal(t, config.NewConfig().DAQ.FragmentSizeWords, plan.FragmentSizeWords)
}

func TestPlan_Validate(t *testing.T) {
	board := PlanBoard{Kind: BoardToy, BoardID: 1, FragmentType: "TOY1"}

	tests := []struct {
		name    string
		plan    Plan
		wantErr bool
	}{
		{"valid", Plan{EventBuilders: 1, Boards: []PlanBoard{board}}, false},
		{"no boards", Plan{EventBuilders: 1}, true},
		{"no event builders", Plan{Boards: []PlanBoard{board}}, true},
		{"negative aggregators", Plan{EventBuilders: 1, Aggregators: -1, Boards: []PlanBoard{board}}, true},
		{"aggregators need data dir", Plan{EventBuilders: 1, Aggregators: 1, Boards: []PlanBoard{board}}, true},
		{"disk writing needs data dir", Plan{EventBuilders: 1, DiskWriting: true, Boards: []PlanBoard{board}}, true},
		{"unknown kind", Plan{EventBuilders: 1, Boards: []PlanBoard{{Kind: "caen", FragmentType: "X"}}}, true},
		{"missing fragment type", Plan{EventBuilders: 1, Boards: []PlanBoard{{Kind: BoardTPC, BoardID: 1}}}, true},
		{"negative board id", Plan{EventBuilders: 1, Boards: []PlanBoard{{Kind: BoardTPC, BoardID: -1, FragmentType: "TPC"}}}, true},
		{"duplicate board", Plan{EventBuilders: 1, Boards: []PlanBoard{board, {Kind: "TOY", BoardID: 1, FragmentType: "TOY2"}}}, true},
		{"throttle on tpc", Plan{EventBuilders: 1, Boards: []PlanBoard{{Kind: BoardTPC, BoardID: 1, FragmentType: "TPC", ThrottleUsecs: intPtr(5)}}}, true},
		{"adc counts on penn", Plan{EventBuilders: 1, Boards: []PlanBoard{{Kind: BoardPenn, BoardID: 1, FragmentType: "TRIGGER", NADCCounts: intPtr(5)}}}, true},
		{"interface type on toy", Plan{EventBuilders: 1, Boards: []PlanBoard{{Kind: BoardToy, BoardID: 1, FragmentType: "TOY1", InterfaceType: 2}}}, true},
		{"interface type on ssp", Plan{EventBuilders: 1, Boards: []PlanBoard{{Kind: BoardSSP, BoardID: 1, FragmentType: "PHOTON", InterfaceType: 2}}}, false},
		{"toy overrides", Plan{EventBuilders: 1, Boards: []PlanBoard{{Kind: BoardToy, BoardID: 1, FragmentType: "TOY1", ThrottleUsecs: intPtr(5), NADCCounts: intPtr(40)}}}, false},
		{"same id different kind", Plan{EventBuilders: 1, Boards: []PlanBoard{board, {Kind: BoardTPC, BoardID: 1, FragmentType: "TPC"}}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.plan.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, errInvalidPlan))
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestPlan_ValidateNormalizesKinds(t *testing.T) {
	plan := &Plan{EventBuilders: 1, Boards: []PlanBoard{{Kind: "Penn", BoardID: 1, FragmentType: "TRIGGER"}}}

	require.NoError(t, plan.Validate())

	assert.Equal(t, BoardPenn, plan.Boards[0].Kind)
}

func TestPlan_FragmentLists(t *testing.T) {
	plan, err := ParsePlan([]byte(samplePlan))
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1, 2}, plan.FragmentIDs())
	assert.Equal(t, []string{"TOY1", "TPC", "PHOTON"}, plan.FragmentTypes())
}
