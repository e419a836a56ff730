package daq

import (
	"github.com/dune-daq/daqgen/internal/fhicl"
)

// WFViewerParams parameterizes the waveform-viewer analyzer block.
type WFViewerParams struct {
	TotalFRs          int
	FragmentsPerBoard int
	FragmentIDs       []int
	FragmentTypes     []string

	// Prescale and DigitalSumOnly override the base template. Nil keeps
	// the base value.
	Prescale       *int
	DigitalSumOnly *bool
}

// Validate reports parameter errors.
func (p WFViewerParams) Validate() error {
	if err := checkNonNegative("wfviewer", map[string]int{
		"total_frs":           p.TotalFRs,
		"fragments_per_board": p.FragmentsPerBoard,
	}); err != nil {
		return err
	}
	if len(p.FragmentIDs) != len(p.FragmentTypes) {
		return invalidParams("wfviewer", "%d fragment ids but %d fragment types",
			len(p.FragmentIDs), len(p.FragmentTypes))
	}
	if p.Prescale != nil && *p.Prescale < 1 {
		return invalidParams("wfviewer", "prescale must be at least 1, got %d", *p.Prescale)
	}
	return nil
}

// WFViewer renders the RootApplication and WFViewer analyzer block.
func (g *Generator) WFViewer(p WFViewerParams) (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}
	tmpl, err := g.withBaseTemplate("wfviewer", wfViewerHeader, wfViewerFooter, WFViewerBaseName)
	if err != nil {
		return "", err
	}

	params := fhicl.NewParams().
		Set("fragments_per_board", fhicl.Int(p.FragmentsPerBoard)).
		Set("total_frs", fhicl.Int(p.TotalFRs)).
		Set("fragment_ids", fhicl.IntList(p.FragmentIDs)).
		Set("fragment_type_labels", fhicl.StringList(p.FragmentTypes)).
		Override("prescale", fhicl.OptionalInt(p.Prescale)).
		Override("digital_sum_only", fhicl.OptionalBool(p.DigitalSumOnly))
	return g.render("wfviewer", tmpl, params)
}
