package pullrequests

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Format selects how pull requests are printed.
type Format string

// Supported output formats.
const (
	FormatText     Format = "text"
	FormatPlain    Format = "plain"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

const (
	unsupportedFormatTemplateConstant = "unsupported --format value %q (expected text, json, markdown, or plain)"
	hyperlinkTemplateConstant         = "\x1b]8;;%s\x1b\\#%d\x1b]8;;\x1b\\\n"
	plainLineTemplateConstant         = "#%d\n"
	markdownHeadingTemplateConstant   = "## Merged PRs (%s)\n\n"
	markdownItemTemplateConstant      = "- [#%d](%s) %s"
	markdownAuthorTemplateConstant    = " (@%s)"
	jsonIndentConstant                = "  "
	jsonEncodingErrorTemplateConstant = "unable to encode pull requests: %w"
)

// ParseFormat maps a flag value onto a Format. An empty value selects text.
func ParseFormat(value string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(value))) {
	case "", FormatText:
		return FormatText, nil
	case FormatPlain:
		return FormatPlain, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatMarkdown:
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf(unsupportedFormatTemplateConstant, value)
	}
}

// Render writes the report in the requested format.
func Render(output io.Writer, report Report, format Format) error {
	switch format {
	case FormatJSON:
		encoded, encodingError := json.MarshalIndent(report, "", jsonIndentConstant)
		if encodingError != nil {
			return fmt.Errorf(jsonEncodingErrorTemplateConstant, encodingError)
		}
		fmt.Fprintln(output, string(encoded))
	case FormatMarkdown:
		fmt.Fprintf(output, markdownHeadingTemplateConstant, report.Range)
		for _, pullRequest := range report.Pulls {
			fmt.Fprintf(output, markdownItemTemplateConstant, pullRequest.Number, pullRequest.URL, pullRequest.Title)
			if len(pullRequest.Author) > 0 {
				fmt.Fprintf(output, markdownAuthorTemplateConstant, pullRequest.Author)
			}
			fmt.Fprintln(output)
		}
	case FormatPlain:
		for _, pullRequest := range report.Pulls {
			fmt.Fprintf(output, plainLineTemplateConstant, pullRequest.Number)
		}
	default:
		// OSC 8 hyperlink around the number
		for _, pullRequest := range report.Pulls {
			fmt.Fprintf(output, hyperlinkTemplateConstant, pullRequest.URL, pullRequest.Number)
		}
	}
	return nil
}
