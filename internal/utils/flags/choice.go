package flags

import (
	"fmt"
	"strings"
)

const (
	choicePlaceholderPrefix   = "<"
	choicePlaceholderSuffix   = ">"
	choiceSeparatorLiteral    = "|"
	choiceListSeparator       = ", "
	choiceUsageEmptyTemplate  = "`%s`"
	choiceUsageFullTemplate   = "`%s` %s"
	choiceInvalidTemplate     = "invalid value %q (expected one of %s)"
	choiceValueTypeIdentifier = "string"
)

// FormatChoiceUsage builds a usage string where the default option is capitalized inside a placeholder.
func FormatChoiceUsage(defaultChoice string, choices []string, description string) string {
	placeholder := choicePlaceholderPrefix + strings.Join(highlightDefaultChoice(defaultChoice, choices), choiceSeparatorLiteral) + choicePlaceholderSuffix
	if len(strings.TrimSpace(description)) == 0 {
		return fmt.Sprintf(choiceUsageEmptyTemplate, placeholder)
	}
	return fmt.Sprintf(choiceUsageFullTemplate, placeholder, description)
}

// ChoiceValue is a pflag.Value restricted to a fixed set of case-insensitive choices.
// Its Type is "string", so FlagSet.GetString reads it.
type ChoiceValue struct {
	value   string
	choices []string
}

// NewChoiceValue constructs a ChoiceValue holding defaultChoice, which is not validated.
func NewChoiceValue(defaultChoice string, choices []string) *ChoiceValue {
	duplicatedChoices := make([]string, len(choices))
	copy(duplicatedChoices, choices)
	return &ChoiceValue{value: defaultChoice, choices: duplicatedChoices}
}

// String returns the current value.
func (choiceValue *ChoiceValue) String() string {
	if choiceValue == nil {
		return ""
	}
	return choiceValue.value
}

// Set accepts one of the configured choices, normalized to its declared spelling.
func (choiceValue *ChoiceValue) Set(candidate string) error {
	normalizedCandidate := strings.ToLower(strings.TrimSpace(candidate))
	for _, choice := range choiceValue.choices {
		if strings.ToLower(choice) == normalizedCandidate {
			choiceValue.value = choice
			return nil
		}
	}
	return fmt.Errorf(choiceInvalidTemplate, candidate, strings.Join(choiceValue.choices, choiceListSeparator))
}

// Type identifies the value as a string flag.
func (choiceValue *ChoiceValue) Type() string {
	return choiceValueTypeIdentifier
}

func highlightDefaultChoice(defaultChoice string, choices []string) []string {
	normalizedDefault := strings.ToLower(strings.TrimSpace(defaultChoice))
	highlighted := make([]string, 0, len(choices))
	seen := make(map[string]struct{}, len(choices))

	for _, choice := range choices {
		trimmedChoice := strings.TrimSpace(choice)
		normalizedChoice := strings.ToLower(trimmedChoice)
		if _, exists := seen[normalizedChoice]; exists || len(trimmedChoice) == 0 {
			continue
		}
		seen[normalizedChoice] = struct{}{}

		if normalizedChoice == normalizedDefault {
			trimmedChoice = strings.ToUpper(trimmedChoice)
		}
		highlighted = append(highlighted, trimmedChoice)
	}

	return highlighted
}
