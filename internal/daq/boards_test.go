package daq

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	daqerrors "github.com/dune-daq/daqgen/internal/errors"
	"github.com/dune-daq/daqgen/internal/fhicl"
	"github.com/dune-daq/daqgen/internal/store"
)

func TestToy_DrawsSeedFromSource(t *testing.T) {
	// Given: a generator seeded with 42
	g := newTestGenerator(t, 42)
	want := fhicl.NewRandom(42).Intn(fhicl.SeedBound)

	// When: rendering a toy board without an explicit seed
	out, err := g.Toy(BoardParams{FragmentID: 0, BoardID: 3, FragmentType: "TOY1"})

	// Then: the seed is the source's first draw and base defaults survive
	require.NoError(t, err)
	assert.Contains(t, out, fmt.Sprintf("    random_seed: %d\n", want))
	assert.Contains(t, out, "    generator: ToySimulator\n")
	assert.Contains(t, out, "    fragment_type: TOY1\n")
	assert.Contains(t, out, "    board_id: 3\n")
	assert.Contains(t, out, "    nADCcounts: 100\n")
	assert.Contains(t, out, "    throttle_usecs: 100000\n")
	assert.True(t, strings.HasSuffix(out, "throttle_usecs_check: 10000"))
}

func TestToy_SameSeedSameOutput(t *testing.T) {
	p := BoardParams{FragmentID: 1, BoardID: 1, FragmentType: "TOY2"}

	first, err := newTestGenerator(t, 7).Toy(p)
	require.NoError(t, err)
	second, err := newTestGenerator(t, 7).Toy(p)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestToy_ExplicitSeed(t *testing.T) {
	g := newTestGenerator(t, 42)

	out, err := g.Toy(BoardParams{BoardID: 1, FragmentType: "TOY1", RandomSeed: intPtr(1234)})

	require.NoError(t, err)
	assert.Contains(t, out, "    random_seed: 1234\n")
}

func TestToy_Overrides(t *testing.T) {
	tests := []struct {
		name     string
		params   BoardParams
		contains []string
		absent   []string
	}{
		{
			name:     "nADCcounts",
			params:   BoardParams{FragmentType: "TOY1", NADCCounts: intPtr(40)},
			contains: []string{"    nADCcounts: 40\n", "    throttle_usecs: 100000\n"},
			absent:   []string{"nADCcounts: 100"},
		},
		{
			name:     "throttle leaves the check interval alone",
			params:   BoardParams{FragmentType: "TOY1", ThrottleUsecs: intPtr(5000)},
			contains: []string{"    throttle_usecs: 5000\n", "    throttle_usecs_check: 10000"},
			absent:   []string{"throttle_usecs: 100000"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGenerator(t, 1)

			out, err := g.Toy(tt.params)

			require.NoError(t, err)
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.absent {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestToy_OverrideWithoutDefaultLine(t *testing.T) {
	// Given: a toy base template that lacks nADCcounts
	st := store.New(store.WithFallback(fstest.MapFS{
		ToyBaseName: {Data: []byte("    throttle_usecs: 100000\n")},
	}))
	g := NewGenerator(st, WithRandom(fhicl.NewRandom(1)))

	// When: overriding it
	out, err := g.Toy(BoardParams{FragmentType: "TOY1", NADCCounts: intPtr(40)})

	// Then: the missing default line is reported
	require.Error(t, err)
	assert.Empty(t, out)
	assert.True(t, errors.Is(err, fhicl.ErrMalformedDefaultLine))
}

func TestReceivers(t *testing.T) {
	tests := []struct {
		name      string
		render    func(*Generator, BoardParams) (string, error)
		generator string
		baseLine  string
	}{
		{"tpc", (*Generator).TPC, "TpcRceReceiver", "    rce_client_host_addr: \"192.168.1.101\""},
		{"penn", (*Generator).Penn, "PennReceiver", "    penn_client_host_addr: \"192.168.1.205\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGenerator(t, 1)

			out, err := tt.render(g, BoardParams{FragmentID: 2, BoardID: 1, FragmentType: "TPC"})

			require.NoError(t, err)
			assert.Contains(t, out, "    generator: "+tt.generator+"\n")
			assert.Contains(t, out, "    fragment_id: 2\n")
			assert.Contains(t, out, "    sleep_on_stop_us: 500000\n")
			assert.Contains(t, out, tt.baseLine)
			assert.NotContains(t, out, "random_seed")
		})
	}
}

func TestReceivers_MissingBaseTemplate(t *testing.T) {
	g := newTestGenerator(t, 1)

	_, tpcErr := g.TPC(BoardParams{BoardID: 5, FragmentType: "TPC"})
	_, pennErr := g.Penn(BoardParams{BoardID: 7, FragmentType: "TRIGGER"})

	require.Error(t, tpcErr)
	require.Error(t, pennErr)
	assert.True(t, errors.Is(tpcErr, store.ErrTemplateNotFound))
	assert.True(t, errors.Is(pennErr, store.ErrTemplateNotFound))
	assert.Contains(t, tpcErr.Error(), "TpcRceReceiver05.fcl")
	assert.Contains(t, pennErr.Error(), "PennReceiver07.fcl")
}

func TestReceivers_UnpaddedBaseFallback(t *testing.T) {
	tests := []struct {
		name   string
		files  fstest.MapFS
		render func(*Generator, BoardParams) (string, error)
		want   string
	}{
		{
			name:   "tpc unpadded only",
			files:  fstest.MapFS{"TpcRceReceiver3.fcl": {Data: []byte("    udp_receive_port: 9003\n")}},
			render: (*Generator).TPC,
			want:   "    udp_receive_port: 9003",
		},
		{
			name:   "penn unpadded only",
			files:  fstest.MapFS{"PennReceiver3.fcl": {Data: []byte("    receive_port: 9103\n")}},
			render: (*Generator).Penn,
			want:   "    receive_port: 9103",
		},
		{
			name: "padded wins",
			files: fstest.MapFS{
				"TpcRceReceiver03.fcl": {Data: []byte("    udp_receive_port: 1\n")},
				"TpcRceReceiver3.fcl":  {Data: []byte("    udp_receive_port: 2\n")},
			},
			render: (*Generator).TPC,
			want:   "    udp_receive_port: 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Given: a site that names its base template without zero padding
			g := NewGenerator(store.New(store.WithFallback(tt.files)))

			// When: rendering board 3
			out, err := tt.render(g, BoardParams{BoardID: 3, FragmentType: "TPC"})

			// Then: the available base template is used
			require.NoError(t, err)
			assert.Contains(t, out, tt.want)
		})
	}
}

func TestReceivers_RandomSeed(t *testing.T) {
	files := fstest.MapFS{"TpcRceReceiver01.fcl": {Data: []byte("    random_seed: %{random_seed}\n")}}
	g := NewGenerator(store.New(store.WithFallback(files)), WithRandom(fhicl.NewRandom(11)))

	explicit, err := g.TPC(BoardParams{BoardID: 1, FragmentType: "TPC", RandomSeed: intPtr(77)})
	require.NoError(t, err)
	assert.Contains(t, explicit, "    random_seed: 77\n")

	drawn, err := g.TPC(BoardParams{BoardID: 1, FragmentType: "TPC"})
	require.NoError(t, err)
	assert.Contains(t, drawn, fmt.Sprintf("    random_seed: %d\n", fhicl.NewRandom(11).Intn(fhicl.SeedBound)))
}

func TestSSP(t *testing.T) {
	g := newTestGenerator(t, 1)

	out, err := g.SSP(BoardParams{FragmentID: 4, BoardID: 11, FragmentType: "PHOTON"})

	require.NoError(t, err)
	want := `    generator: SSP
    fragment_type: PHOTON
    fragment_id: 4
    board_id: 11
    interface_type: 1`
	assert.Equal(t, want, out)

	out, err = g.SSP(BoardParams{BoardID: 11, FragmentType: "PHOTON", InterfaceType: 2})
	require.NoError(t, err)
	assert.Contains(t, out, "interface_type: 2")
}

func TestBoard_Validation(t *testing.T) {
	tests := []struct {
		name   string
		kind   BoardKind
		params BoardParams
	}{
		{"missing fragment type", BoardToy, BoardParams{BoardID: 1}},
		{"negative board id", BoardSSP, BoardParams{BoardID: -1, FragmentType: "PHOTON"}},
		{"unknown kind", BoardKind("caen"), BoardParams{FragmentType: "X"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGenerator(t, 1)

			out, err := g.Board(tt.kind, tt.params)

			require.Error(t, err)
			assert.Empty(t, out)
			assert.True(t, errors.Is(err, daqerrors.Sentinel(daqerrors.ErrCodeInvalidInput)))
		})
	}
}

func TestParseBoardKind(t *testing.T) {
	for _, in := range []string{"toy", "TPC", " Penn ", "ssp"} {
		kind, err := ParseBoardKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, strings.ToLower(strings.TrimSpace(in)), kind.String())
	}

	_, err := ParseBoardKind("caen")
	assert.Error(t, err)
}

func TestBoardKind_DocumentName(t *testing.T) {
	assert.Equal(t, "boardreader_toy_03.fcl", BoardToy.DocumentName(3))
	assert.Equal(t, "boardreader_tpc_12.fcl", BoardTPC.DocumentName(12))
}

func TestBoardReader_WrapsGeneratorCode(t *testing.T) {
	g := newTestGenerator(t, 1)
	code, err := g.SSP(BoardParams{BoardID: 1, FragmentType: "PHOTON"})
	require.NoError(t, err)

	out, err := g.BoardReader(1024, code)

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "daq: {\n  max_fragment_size_words: 1024\n"))
	assert.Contains(t, out, "    mpi_sync_interval: 50\n\n"+code+"\n  }\n")
	assert.Contains(t, out, "br_%UID%_metrics.log")

	_, err = g.BoardReader(-1, code)
	assert.Error(t, err)
}
