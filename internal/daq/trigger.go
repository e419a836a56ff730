package daq

// Trigger holds the three pieces of the SSP software trigger that the event
// builder splices into its document.
type Trigger struct {
	// Output is the SelectEvents clause of the NetMon output module.
	Output string
	// Filters is the physics filters and producers block.
	Filters string
	// Paths declares the trigger paths.
	Paths string
}

// NewTrigger returns the standard SSP loose/tight/random trigger.
func NewTrigger() Trigger {
	return Trigger{
		Output:  triggerOutput,
		Filters: triggerFilters,
		Paths:   triggerPaths,
	}
}
