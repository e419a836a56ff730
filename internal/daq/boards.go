package daq

import (
	"fmt"
	"strings"

	"github.com/dune-daq/daqgen/internal/fhicl"
)

// BoardKind is the fragment generator behind a board reader.
type BoardKind string

// Supported board kinds.
const (
	BoardToy  BoardKind = "toy"
	BoardTPC  BoardKind = "tpc"
	BoardPenn BoardKind = "penn"
	BoardSSP  BoardKind = "ssp"
)

// BoardKinds lists the supported kinds in display order.
var BoardKinds = []BoardKind{BoardToy, BoardTPC, BoardPenn, BoardSSP}

// ParseBoardKind parses a kind name case-insensitively.
func ParseBoardKind(s string) (BoardKind, error) {
	k := BoardKind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range BoardKinds {
		if k == known {
			return k, nil
		}
	}
	return "", invalidParams("board", "unknown board kind %q", s)
}

// DefaultSSPInterfaceType selects the SSP's USB interface.
const DefaultSSPInterfaceType = 1

// BoardParams parameterizes one fragment generator block.
type BoardParams struct {
	FragmentID   int
	BoardID      int
	FragmentType string

	// RandomSeed fixes the random_seed of the generator block. Nil draws
	// one from the generator's random source when the template asks for it.
	RandomSeed *int

	// ThrottleUsecs and NADCCounts override the toy simulator base
	// template. Nil keeps the base value.
	ThrottleUsecs *int
	NADCCounts    *int

	// InterfaceType selects the SSP interface. Zero means
	// DefaultSSPInterfaceType.
	InterfaceType int
}

func (p BoardParams) validate(kind BoardKind) error {
	if err := checkNonNegative(string(kind), map[string]int{
		"fragment_id":    p.FragmentID,
		"board_id":       p.BoardID,
		"interface_type": p.InterfaceType,
	}); err != nil {
		return err
	}
	if p.FragmentType == "" {
		return invalidParams(string(kind), "fragment type is required")
	}
	return nil
}

func (p BoardParams) common() *fhicl.Params {
	return fhicl.NewParams().
		Set("fragment_type", fhicl.String(p.FragmentType)).
		Set("fragment_id", fhicl.Int(p.FragmentID)).
		Set("board_id", fhicl.Int(p.BoardID))
}

// Toy renders the ToySimulator generator block.
func (g *Generator) Toy(p BoardParams) (string, error) {
	if err := p.validate(BoardToy); err != nil {
		return "", err
	}
	tmpl, err := g.withBaseTemplate("toy", toyHeader, "", ToyBaseName)
	if err != nil {
		return "", err
	}

	params := p.common().
		Override("nADCcounts", fhicl.OptionalInt(p.NADCCounts)).
		Override("throttle_usecs", fhicl.OptionalInt(p.ThrottleUsecs))
	if p.RandomSeed != nil {
		params.Set(fhicl.RandomSeedKey, fhicl.Int(*p.RandomSeed))
	}
	return g.render("toy", tmpl, params)
}

// TPC renders the TpcRceReceiver generator block from the board's base
// template.
func (g *Generator) TPC(p BoardParams) (string, error) {
	return g.receiver(BoardTPC, "TpcRceReceiver", p)
}

// Penn renders the PennReceiver generator block from the board's base
// template.
func (g *Generator) Penn(p BoardParams) (string, error) {
	return g.receiver(BoardPenn, "PennReceiver", p)
}

func (g *Generator) receiver(kind BoardKind, generator string, p BoardParams) (string, error) {
	if err := p.validate(kind); err != nil {
		return "", err
	}
	tmpl, err := g.withBaseTemplate(string(kind), receiverHeader, "", baseNames(generator, p.BoardID)...)
	if err != nil {
		return "", err
	}
	params := p.common().Set("generator", fhicl.String(generator))
	if p.RandomSeed != nil {
		params.Set(fhicl.RandomSeedKey, fhicl.Int(*p.RandomSeed))
	}
	return g.render(string(kind), tmpl, params)
}

// SSP renders the SSP generator block. It has no base template.
func (g *Generator) SSP(p BoardParams) (string, error) {
	if err := p.validate(BoardSSP); err != nil {
		return "", err
	}
	iface := p.InterfaceType
	if iface == 0 {
		iface = DefaultSSPInterfaceType
	}
	return g.render("ssp", sspTemplate, p.common().Set("interface_type", fhicl.Int(iface)))
}

// Board renders the generator block for kind.
func (g *Generator) Board(kind BoardKind, p BoardParams) (string, error) {
	switch kind {
	case BoardToy:
		return g.Toy(p)
	case BoardTPC:
		return g.TPC(p)
	case BoardPenn:
		return g.Penn(p)
	case BoardSSP:
		return g.SSP(p)
	default:
		return "", invalidParams("board", "unknown board kind %q", kind)
	}
}

// BoardReader wraps a generator block in the BoardReaderMain document.
func (g *Generator) BoardReader(fragSizeWords int, generatorCode string) (string, error) {
	if fragSizeWords < 0 {
		return "", invalidParams("boardreader", "frag_size_words must be non-negative, got %d", fragSizeWords)
	}
	params := fhicl.NewParams().
		Set("size_words", fhicl.Int(fragSizeWords)).
		Set("generator_code", fhicl.Raw(generatorCode))
	return g.render("boardreader", boardReaderTemplate, params)
}

// String implements fmt.Stringer.
func (k BoardKind) String() string {
	return string(k)
}

// DocumentName returns the file name used for a board reader document.
func (k BoardKind) DocumentName(boardID int) string {
	return fmt.Sprintf("boardreader_%s_%02d.fcl", k, boardID)
}
