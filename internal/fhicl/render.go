package fhicl

import (
	"log/slog"
	"strings"
)

// Renderer turns a Template and Params into a finished document. A Renderer
// holds no per-render state and may be shared.
type Renderer struct {
	random  RandomSource
	disable string
	logger  *slog.Logger
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithRandom sets the source for an omitted random_seed. Without one, an
// omitted random_seed is a missing parameter.
func WithRandom(src RandomSource) Option {
	return func(r *Renderer) {
		r.random = src
	}
}

// WithDisableToken replaces the "#" prefix written on inactive lines.
func WithDisableToken(token string) Option {
	return func(r *Renderer) {
		if token != "" {
			r.disable = token
		}
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRenderer creates a Renderer.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{
		disable: DefaultDisableToken,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render produces the document for tmpl. On error no text is returned.
func (r *Renderer) Render(tmpl *Template, params *Params) (string, error) {
	if tmpl == nil {
		return "", invalidTemplate("", "template is nil")
	}
	if params == nil {
		params = NewParams()
	}

	for name := range params.Blocks {
		if !tmpl.HasBlock(name) {
			return "", unknownBlock(tmpl.name, name)
		}
	}
	for _, name := range tmpl.used {
		if s, ok := params.Blocks[name]; !ok || (s != Active && s != Inactive) {
			return "", missingParameter(tmpl.name, name)
		}
	}

	overridden, err := r.resolveOverrides(tmpl, params)
	if err != nil {
		return "", err
	}

	values := make(map[string]string, len(tmpl.placeholders))
	lookup := func(name string) (string, error) {
		if v, ok := values[name]; ok {
			return v, nil
		}
		v, ok := params.Values[name]
		if !ok || v.IsUnset() {
			if name != RandomSeedKey || r.random == nil {
				return "", missingParameter(tmpl.name, name)
			}
			v = Int(r.random.Intn(SeedBound))
		}
		values[name] = v.String()
		return values[name], nil
	}

	var sb strings.Builder
	for i, ln := range tmpl.lines {
		if i > 0 {
			sb.WriteByte('\n')
		}

		segments := ln.segments
		blockAt := ln.blockAt
		if text, ok := overridden[i]; ok {
			segments = []segment{{text: ln.indent}, {text: ln.markerIndent + text}}
			if blockAt > 0 {
				blockAt = 1
			}
		}

		disabled := false
		for _, b := range ln.blocks {
			if params.Blocks[b] == Inactive {
				disabled = true
				break
			}
		}

		for j, seg := range segments {
			if disabled && j == blockAt {
				sb.WriteString(r.disable)
			}
			if !seg.placeholder {
				sb.WriteString(seg.text)
				continue
			}
			v, err := lookup(seg.text)
			if err != nil {
				return "", err
			}
			sb.WriteString(v)
		}
		if disabled && blockAt >= len(segments) {
			sb.WriteString(r.disable)
		}
	}

	out := sb.String()
	if m := placeholderPattern.FindStringSubmatch(out); m != nil {
		return "", missingParameter(tmpl.name, m[1])
	}

	r.logger.Debug("rendered template",
		slog.String("template", tmpl.name),
		slog.Int("lines", len(tmpl.lines)),
		slog.Int("values", len(values)))

	return out, nil
}

func (r *Renderer) resolveOverrides(tmpl *Template, params *Params) (map[int]string, error) {
	if len(params.Overrides) == 0 {
		return nil, nil
	}
	out := make(map[int]string)
	for _, key := range sortedOverrideKeys(params.Overrides) {
		v := params.Overrides[key]
		if v.IsUnset() {
			continue
		}
		idx := tmpl.keys[key]
		if len(idx) == 0 {
			return nil, malformedDefaultLine(tmpl.name, key)
		}
		for _, i := range idx {
			out[i] = key + ": " + v.String()
		}
	}
	return out, nil
}

func sortedOverrideKeys(m map[string]Value) []string {
	set := make(map[string]struct{}, len(m))
	for k := range m {
		set[k] = struct{}{}
	}
	return sortedKeys(set)
}
