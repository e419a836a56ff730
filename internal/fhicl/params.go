package fhicl

// Params is the parameter set for a single render call.
type Params struct {
	// Values holds value placeholders by name.
	Values map[string]Value
	// Blocks holds the state of every conditional block by name.
	Blocks map[string]BlockState
	// Overrides replaces default-setting lines by key. Unset entries are
	// ignored.
	Overrides map[string]Value
}

// NewParams returns an empty parameter set.
func NewParams() *Params {
	return &Params{
		Values:    make(map[string]Value),
		Blocks:    make(map[string]BlockState),
		Overrides: make(map[string]Value),
	}
}

// Set assigns a value placeholder.
func (p *Params) Set(name string, v Value) *Params {
	p.Values[name] = v
	return p
}

// Block assigns the state of a conditional block.
func (p *Params) Block(name string, state BlockState) *Params {
	p.Blocks[name] = state
	return p
}

// Override requests that the default-setting line for key be replaced.
func (p *Params) Override(key string, v Value) *Params {
	p.Overrides[key] = v
	return p
}
