package scaffold

import (
	"context"
	"errors"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"

	daqerrors "github.com/dune-daq/daqgen/internal/errors"
)

// ErrAborted is returned when the user interrupts a prompt.
var ErrAborted = errors.New("scaffold: prompt aborted")

// Prompter asks the user for a single token.
type Prompter interface {
	Token(ctx context.Context, message, help string) (string, error)
}

// SurveyPrompter prompts on the terminal.
type SurveyPrompter struct{}

// Token prompts until the answer is a valid C++ identifier.
func (SurveyPrompter) Token(ctx context.Context, message, help string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var out string
	prompt := &survey.Input{
		Message: message,
		Help:    help,
	}
	validate := func(ans interface{}) error {
		s, _ := ans.(string)
		return ValidateToken(s)
	}
	if err := survey.AskOne(prompt, &out, survey.WithValidator(validate)); err != nil {
		if errors.Is(err, terminal.InterruptErr) {
			return "", ErrAborted
		}
		return "", err
	}
	return out, nil
}

// CompleteTokens fills empty tokens of opts. With a nil prompter, missing
// tokens are a validation error.
func CompleteTokens(ctx context.Context, p Prompter, opts *CloneOptions) error {
	if opts.GeneratorToken == "" {
		if p == nil {
			return missingToken("generator")
		}
		tok, err := p.Token(ctx, "Fragment generator name:",
			"Replaces ToySimulator, e.g. TpcRceReceiver")
		if err != nil {
			return err
		}
		opts.GeneratorToken = tok
	}
	if opts.FragmentToken == "" {
		if p == nil {
			return missingToken("fragment")
		}
		tok, err := p.Token(ctx, "Fragment name:",
			"Replaces Toy; overlays are named <name>Fragment, e.g. TpcMilliSlice")
		if err != nil {
			return err
		}
		opts.FragmentToken = tok
	}
	return nil
}

func missingToken(which string) error {
	return daqerrors.ValidationError(which+" token is required", nil).
		WithSuggestion("pass GENERATOR_TOKEN and FRAGMENT_TOKEN, or run in a terminal to be prompted")
}
