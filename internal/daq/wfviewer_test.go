package daq

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	daqerrors "github.com/dune-daq/daqgen/internal/errors"
)

func TestWFViewer_Lists(t *testing.T) {
	// Given: two toy boards
	g := newTestGenerator(t, 1)

	// When: rendering the viewer
	out, err := g.WFViewer(WFViewerParams{
		TotalFRs:          2,
		FragmentsPerBoard: 1,
		FragmentIDs:       []int{0, 1},
		FragmentTypes:     []string{"TOY1", "TOY2"},
	})

	// Then: lists use the FHiCL list format and the base defaults are kept
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "    app: {\n      module_type: RootApplication\n"))
	assert.Contains(t, out, "      fragment_receiver_count: 2\n")
	assert.Contains(t, out, "      fragment_ids: [ 0, 1]\n")
	assert.Contains(t, out, "      fragment_type_labels: [ TOY1, TOY2]\n")
	assert.Contains(t, out, "      prescale: 100\n")
	assert.Contains(t, out, "      digital_sum_only: false\n")
	assert.True(t, strings.HasSuffix(out, "\n    }"))
}

func TestWFViewer_EmptyLists(t *testing.T) {
	g := newTestGenerator(t, 1)

	out, err := g.WFViewer(WFViewerParams{})

	require.NoError(t, err)
	assert.Contains(t, out, "      fragment_ids: []\n")
	assert.Contains(t, out, "      fragment_type_labels: []\n")
}

func TestWFViewer_Overrides(t *testing.T) {
	g := newTestGenerator(t, 1)

	out, err := g.WFViewer(WFViewerParams{
		TotalFRs:       1,
		FragmentIDs:    []int{0},
		FragmentTypes:  []string{"TPC"},
		Prescale:       intPtr(50),
		DigitalSumOnly: boolPtr(true),
	})

	require.NoError(t, err)
	assert.Contains(t, out, "      prescale: 50\n")
	assert.Contains(t, out, "      digital_sum_only: true\n")
	assert.NotContains(t, out, "prescale: 100")
}

func TestWFViewer_InvalidParams(t *testing.T) {
	tests := []struct {
		name   string
		params WFViewerParams
	}{
		{"mismatched lists", WFViewerParams{FragmentIDs: []int{0, 1}, FragmentTypes: []string{"TOY1"}}},
		{"zero prescale", WFViewerParams{Prescale: intPtr(0)}},
		{"negative receivers", WFViewerParams{TotalFRs: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGenerator(t, 1)

			out, err := g.WFViewer(tt.params)

			require.Error(t, err)
			assert.Empty(t, out)
			assert.True(t, errors.Is(err, daqerrors.Sentinel(daqerrors.ErrCodeInvalidInput)))
		})
	}
}
