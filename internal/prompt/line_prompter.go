package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	confirmSuffixConstant            = " [y/N]: "
	selectOptionTemplateConstant     = "  %d) %s\n"
	selectPromptTemplateConstant     = "%s [1-%d]: "
	invalidSelectionTemplateConstant = "invalid selection %q"
)

var affirmativeResponses = map[string]struct{}{
	"y":   {},
	"yes": {},
}

// LinePrompter reads answers line by line from an io.Reader.
type LinePrompter struct {
	reader *bufio.Reader
	writer io.Writer
}

// NewLinePrompter constructs a prompter from the provided reader and writer.
func NewLinePrompter(input io.Reader, output io.Writer) *LinePrompter {
	return &LinePrompter{reader: bufio.NewReader(input), writer: output}
}

// Confirm writes the question and accepts y or yes, case-insensitively. Closed input declines.
func (prompter *LinePrompter) Confirm(message string) (bool, error) {
	if writeError := prompter.write(message + confirmSuffixConstant); writeError != nil {
		return false, writeError
	}

	response, readError := prompter.readLine()
	if errors.Is(readError, ErrAborted) {
		return false, nil
	}
	if readError != nil {
		return false, readError
	}

	_, affirmative := affirmativeResponses[strings.ToLower(response)]
	return affirmative, nil
}

// Select prints numbered options and reads the chosen number. An exact option name is accepted too.
// Closed input aborts.
func (prompter *LinePrompter) Select(title string, options []string) (string, error) {
	if len(options) == 0 {
		return "", ErrNoOptions
	}

	var listing strings.Builder
	listing.WriteString(title)
	listing.WriteString("\n")
	for index, option := range options {
		fmt.Fprintf(&listing, selectOptionTemplateConstant, index+1, option)
	}
	fmt.Fprintf(&listing, selectPromptTemplateConstant, title, len(options))
	if writeError := prompter.write(listing.String()); writeError != nil {
		return "", writeError
	}

	response, readError := prompter.readLine()
	if readError != nil {
		return "", readError
	}

	if selectedIndex, parseError := strconv.Atoi(response); parseError == nil {
		if selectedIndex >= 1 && selectedIndex <= len(options) {
			return options[selectedIndex-1], nil
		}
	}
	for _, option := range options {
		if option == response {
			return option, nil
		}
	}
	return "", fmt.Errorf(invalidSelectionTemplateConstant, response)
}

func (prompter *LinePrompter) write(text string) error {
	if prompter.writer == nil {
		return nil
	}
	_, writeError := io.WriteString(prompter.writer, text)
	return writeError
}

func (prompter *LinePrompter) readLine() (string, error) {
	response, readError := prompter.reader.ReadString('\n')
	if readError != nil {
		if !errors.Is(readError, io.EOF) {
			return "", readError
		}
		if len(response) == 0 {
			return "", ErrAborted
		}
	}
	return strings.TrimSpace(response), nil
}
