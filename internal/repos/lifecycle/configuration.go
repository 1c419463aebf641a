package lifecycle

import (
	"strconv"
	"strings"

	"github.com/temirov/gitutils/internal/gitconfig"
)

// CommandConfiguration captures application configuration for the repository lifecycle commands.
// Root and PreferSSH only apply when git configuration leaves git-repo.root and git-repo.prefer-ssh unset.
type CommandConfiguration struct {
	Root      string `mapstructure:"root"`
	PreferSSH bool   `mapstructure:"prefer_ssh"`
	OnExists  string `mapstructure:"on_exists"`
}

// DefaultCommandConfiguration provides baseline configuration values.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{}
}

// Sanitize trims configuration values without applying implicit defaults.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.Root = strings.TrimSpace(configuration.Root)
	sanitized.OnExists = strings.ToLower(strings.TrimSpace(configuration.OnExists))
	return sanitized
}

// FallbackProvider exposes the configuration as the lowest-precedence git configuration layer.
func (configuration CommandConfiguration) FallbackProvider() gitconfig.MapProvider {
	fallback := gitconfig.MapProvider{gitconfig.RepositoryRootKey: configuration.Root}
	if configuration.PreferSSH {
		fallback[gitconfig.PreferSSHKey] = strconv.FormatBool(configuration.PreferSSH)
	}
	return fallback
}
