package prompt

import (
	"errors"
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
)

const (
	abortedMessageConstant         = "prompt aborted"
	noOptionsMessageConstant       = "no options to choose from"
	confirmAffirmativeConstant     = "Yes"
	confirmNegativeConstant        = "No"
	selectFilteringEnabledConstant = true
)

var (
	// ErrAborted indicates the user interrupted a prompt.
	ErrAborted = errors.New(abortedMessageConstant)
	// ErrNoOptions indicates Select was called without options.
	ErrNoOptions = errors.New(noOptionsMessageConstant)
)

// Prompter asks the user questions.
type Prompter interface {
	Confirm(message string) (bool, error)
	Select(title string, options []string) (string, error)
}

// IsInteractive reports whether the file is attached to a terminal.
func IsInteractive(file *os.File) bool {
	if file == nil {
		return false
	}
	return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
}

// New returns a form-based prompter when input is a terminal and a line prompter otherwise.
func New(input *os.File, output io.Writer) Prompter {
	if IsInteractive(input) {
		return NewFormPrompter(input, output)
	}
	return NewLinePrompter(input, output)
}

// FormPrompter renders huh forms.
type FormPrompter struct {
	input  io.Reader
	output io.Writer
}

// NewFormPrompter constructs a FormPrompter bound to the provided streams.
func NewFormPrompter(input io.Reader, output io.Writer) *FormPrompter {
	return &FormPrompter{input: input, output: output}
}

// Confirm shows a yes/no form defaulting to no.
func (prompter *FormPrompter) Confirm(message string) (bool, error) {
	confirmed := false
	field := huh.NewConfirm().
		Title(message).
		Affirmative(confirmAffirmativeConstant).
		Negative(confirmNegativeConstant).
		Value(&confirmed)

	if runError := prompter.run(field); runError != nil {
		return false, runError
	}
	return confirmed, nil
}

// Select shows a filterable list and returns the chosen option.
func (prompter *FormPrompter) Select(title string, options []string) (string, error) {
	if len(options) == 0 {
		return "", ErrNoOptions
	}

	selected := options[0]
	field := huh.NewSelect[string]().
		Title(title).
		Options(huh.NewOptions(options...)...).
		Filtering(selectFilteringEnabledConstant).
		Value(&selected)

	if runError := prompter.run(field); runError != nil {
		return "", runError
	}
	return selected, nil
}

func (prompter *FormPrompter) run(field huh.Field) error {
	form := huh.NewForm(huh.NewGroup(field)).WithShowHelp(true)
	if prompter.input != nil {
		form = form.WithInput(prompter.input)
	}
	if prompter.output != nil {
		form = form.WithOutput(prompter.output)
	}

	runError := form.Run()
	if errors.Is(runError, huh.ErrUserAborted) {
		return ErrAborted
	}
	return runError
}
