package fhicl

import (
	"fmt"

	daqerrors "github.com/dune-daq/daqgen/internal/errors"
)

// Sentinels for errors.Is.
var (
	ErrMissingParameter     = daqerrors.Sentinel(daqerrors.ErrCodeMissingParameter)
	ErrUnknownBlock         = daqerrors.Sentinel(daqerrors.ErrCodeUnknownBlock)
	ErrMalformedDefaultLine = daqerrors.Sentinel(daqerrors.ErrCodeMalformedDefaultLine)
	ErrInvalidTemplate      = daqerrors.Sentinel(daqerrors.ErrCodeInvalidInput)
)

func missingParameter(tmpl, name string) error {
	return daqerrors.New(daqerrors.ErrCodeMissingParameter,
		fmt.Sprintf("template %q: missing parameter %q", tmpl, name), nil).
		WithDetail("template", tmpl).
		WithDetail("parameter", name)
}

func unknownBlock(tmpl, name string) error {
	return daqerrors.New(daqerrors.ErrCodeUnknownBlock,
		fmt.Sprintf("template %q: unknown block %q", tmpl, name), nil).
		WithDetail("template", tmpl).
		WithDetail("block", name)
}

func malformedDefaultLine(tmpl, key string) error {
	return daqerrors.New(daqerrors.ErrCodeMalformedDefaultLine,
		fmt.Sprintf("template %q: no default line for %q", tmpl, key), nil).
		WithDetail("template", tmpl).
		WithDetail("key", key).
		WithSuggestion("check that the base template defines " + key)
}

func invalidTemplate(tmpl, reason string) error {
	return daqerrors.New(daqerrors.ErrCodeInvalidInput,
		fmt.Sprintf("template %q: %s", tmpl, reason), nil).
		WithDetail("template", tmpl)
}
