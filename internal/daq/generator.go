package daq

import (
	"errors"
	"fmt"
	"log/slog"

	daqerrors "github.com/dune-daq/daqgen/internal/errors"
	"github.com/dune-daq/daqgen/internal/fhicl"
	"github.com/dune-daq/daqgen/internal/store"
)

// Generator renders DAQ documents. It is safe for concurrent use when its
// store and random source are.
type Generator struct {
	renderer *fhicl.Renderer
	store    store.Store
	random   fhicl.RandomSource
	logger   *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithRandom sets the source of simulator random seeds.
func WithRandom(src fhicl.RandomSource) Option {
	return func(g *Generator) {
		g.random = src
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// NewGenerator creates a Generator reading base templates from st.
func NewGenerator(st store.Store, opts ...Option) *Generator {
	g := &Generator{
		store:  st,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.renderer = fhicl.NewRenderer(fhicl.WithRandom(g.random), fhicl.WithLogger(g.logger))
	return g
}

// render renders tmpl and tags any failure with the document kind.
func (g *Generator) render(kind string, tmpl *fhicl.Template, params *fhicl.Params) (string, error) {
	out, err := g.renderer.Render(tmpl, params)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", kind, err)
	}
	return out, nil
}

// withBaseTemplate loads the first of bases found in the store and parses
// header+base+footer. A lookup failure reports the first name.
func (g *Generator) withBaseTemplate(kind, header, footer string, bases ...string) (*fhicl.Template, error) {
	if g.store == nil {
		return nil, daqerrors.InternalError("generator has no template store", nil)
	}
	var firstErr error
	for _, base := range bases {
		text, err := g.store.Load(base)
		if err == nil {
			return fhicl.Parse(base, withBase(header, text, footer))
		}
		if firstErr == nil {
			firstErr = err
		}
		if !errors.Is(err, store.ErrTemplateNotFound) {
			break
		}
	}
	if firstErr == nil {
		return nil, daqerrors.InternalError(kind+": no base template named", nil)
	}
	return nil, fmt.Errorf("render %s: %w", kind, firstErr)
}

func invalidParams(kind, format string, args ...any) error {
	return daqerrors.ValidationError(fmt.Sprintf("%s: %s", kind, fmt.Sprintf(format, args...)), nil).
		WithDetail("document", kind)
}

func checkNonNegative(kind string, fields map[string]int) error {
	for _, name := range sortedFieldNames(fields) {
		if fields[name] < 0 {
			return invalidParams(kind, "%s must be non-negative, got %d", name, fields[name])
		}
	}
	return nil
}
