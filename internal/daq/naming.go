package daq

import (
	"fmt"
	"path/filepath"
	"sort"
)

// RunFilePattern is the art file-name pattern expanded by RootOutput at run
// time: run number, subrun number and open timestamp.
const RunFilePattern = "r%06r_sr%02s_%to.root"

// Default file-name prefixes.
const (
	DefaultEventBuilderPrefix = "lbne"
	DefaultAggregatorPrefix   = "dune"
)

// EventBuilderFileName returns the output file path of event builder index.
// The index is zero-padded to two digits.
func EventBuilderFileName(dataDir, prefix string, index int) string {
	if prefix == "" {
		prefix = DefaultEventBuilderPrefix
	}
	return filepath.Join(dataDir, fmt.Sprintf("%s_eb%02d_", prefix, index)+RunFilePattern)
}

// AggregatorFileName returns the output file path of the data logger.
func AggregatorFileName(dataDir, prefix string) string {
	if prefix == "" {
		prefix = DefaultAggregatorPrefix
	}
	return filepath.Join(dataDir, prefix+"_"+RunFilePattern)
}

// baseNames returns the base template candidates of a receiver board: the
// two-digit name, then the unpadded one (TpcRceReceiver1.fcl) when it
// differs.
func baseNames(generator string, boardID int) []string {
	padded := fmt.Sprintf("%s%02d.fcl", generator, boardID)
	plain := fmt.Sprintf("%s%d.fcl", generator, boardID)
	if plain == padded {
		return []string{padded}
	}
	return []string{padded, plain}
}

// Base templates of the single-file generators.
const (
	ToyBaseName      = "ToySimulator.fcl"
	WFViewerBaseName = "WFViewer.fcl"
)

func sortedFieldNames(m map[string]int) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
