package fhicl

// BlockState is the resolved state of a conditional block.
type BlockState int

const (
	// Active emits the block's lines verbatim.
	Active BlockState = iota + 1
	// Inactive comments the block's lines out.
	Inactive
)

// BlockFor maps a boolean control to a BlockState.
func BlockFor(on bool) BlockState {
	if on {
		return Active
	}
	return Inactive
}

// String returns a human-readable representation of the state.
func (s BlockState) String() string {
	switch s {
	case Active:
		return "active"
	case Inactive:
		return "inactive"
	default:
		return "invalid"
	}
}

// DefaultDisableToken is the FHiCL comment marker.
const DefaultDisableToken = "#"
