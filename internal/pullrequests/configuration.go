package pullrequests

import (
	"fmt"
	"strings"
)

// Source selects where pull request details come from.
type Source string

// Supported detail sources.
const (
	SourceCLI Source = "cli"
	SourceAPI Source = "api"
)

const unsupportedSourceTemplateConstant = "unsupported --source value %q (expected cli or api)"

// ParseSource maps a flag value onto a Source. An empty value selects the gh CLI.
func ParseSource(value string) (Source, error) {
	switch Source(strings.ToLower(strings.TrimSpace(value))) {
	case "", SourceCLI:
		return SourceCLI, nil
	case SourceAPI:
		return SourceAPI, nil
	default:
		return "", fmt.Errorf(unsupportedSourceTemplateConstant, value)
	}
}

// CommandConfiguration captures application configuration for pr-merged.
type CommandConfiguration struct {
	Format string `mapstructure:"format"`
	Source string `mapstructure:"source"`
	// TokenEnv names an extra environment variable consulted before GH_TOKEN and friends.
	TokenEnv string `mapstructure:"token_env"`
	APIURL   string `mapstructure:"api_url"`
}

// DefaultCommandConfiguration provides baseline configuration values.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{Format: string(FormatText), Source: string(SourceCLI)}
}

// Sanitize trims configuration values and fills empty format and source with defaults.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.Format = strings.ToLower(strings.TrimSpace(configuration.Format))
	if len(sanitized.Format) == 0 {
		sanitized.Format = string(FormatText)
	}
	sanitized.Source = strings.ToLower(strings.TrimSpace(configuration.Source))
	if len(sanitized.Source) == 0 {
		sanitized.Source = string(SourceCLI)
	}
	sanitized.TokenEnv = strings.TrimSpace(configuration.TokenEnv)
	sanitized.APIURL = strings.TrimSpace(configuration.APIURL)
	return sanitized
}
