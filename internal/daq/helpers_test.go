package daq

import (
	"testing"
	"testing/fstest"

	"github.com/dune-daq/daqgen/internal/fhicl"
	"github.com/dune-daq/daqgen/internal/store"
)

const testToyBase = `
    nADCcounts: 100
    throttle_usecs: 100000
    throttle_usecs_check: 10000
`

const testWFViewerBase = `
      prescale: 100
      digital_sum_only: false
`

const (
	testTPCBase  = "    rce_client_host_addr: \"192.168.1.101\"\n    udp_receive_port: 8992\n"
	testPennBase = "    penn_client_host_addr: \"192.168.1.205\"\n    receive_port: 8992\n"
)

func testTemplates() fstest.MapFS {
	return fstest.MapFS{
		ToyBaseName:            {Data: []byte(testToyBase)},
		WFViewerBaseName:       {Data: []byte(testWFViewerBase)},
		"TpcRceReceiver01.fcl": {Data: []byte(testTPCBase)},
		"PennReceiver01.fcl":   {Data: []byte(testPennBase)},
	}
}

func newTestGenerator(t *testing.T, seed int64) *Generator {
	t.Helper()
	st := store.New(store.WithFallback(testTemplates()))
	return NewGenerator(st, WithRandom(fhicl.NewRandom(seed)))
}

func intPtr(n int) *int {
	return &n
}

func boolPtr(b bool) *bool {
	return &b
}
