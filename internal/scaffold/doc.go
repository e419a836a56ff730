// Package scaffold creates a new fragment generator and fragment overlay
// pair by cloning the ToySimulator sources of an artdaq package.
//
// Clone copies
//
//	Generators/ToySimulator.hh           -> Generators/<Gen>.hh
//	Generators/ToySimulator_generator.cc -> Generators/<Gen>_generator.cc
//	Overlays/ToyFragment.hh              -> Overlays/<Frag>Fragment.hh
//	Overlays/ToyFragment.cc              -> Overlays/<Frag>Fragment.cc
//	Overlays/ToyFragmentWriter.hh        -> Overlays/<Frag>FragmentWriter.hh
//
// and renames ToySimulator to <Gen>, then Toy to <Frag>, in every copy.
// The build file is left alone; PluginSnippet renders the CMake stanza to
// add by hand.
package scaffold
