// Package fhicl renders FHiCL configuration documents from string templates.
//
// A Template is plain FHiCL text containing %{name} placeholders. Two kinds
// of placeholder exist:
//
//   - value placeholders, replaced by the rendered Value of the same name;
//   - block markers, declared with WithBlocks, which gate whole lines. A
//     line whose markers all resolve Active is emitted verbatim; a line with
//     at least one Inactive marker is commented out with a single disable
//     token.
//
// Templates may also carry default-setting lines ("key: value") inherited
// from a base template. Params.Overrides replaces such a line by key; the
// Unset value leaves the default alone.
//
// Rendering is pure. The only source of nondeterminism is the random_seed
// placeholder, which is drawn from an injected RandomSource when the caller
// does not supply it.
//
// Usage:
//
//	tmpl := fhicl.MustParse("toy", text, fhicl.WithBlocks("root_output"))
//	params := fhicl.NewParams().
//	    Set("fragment_id", fhicl.Int(3)).
//	    Block("root_output", fhicl.BlockFor(diskWriting))
//	doc, err := fhicl.NewRenderer(fhicl.WithRandom(src)).Render(tmpl, params)
package fhicl
