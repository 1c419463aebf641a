package cleanup

import "strings"

// CommandConfiguration captures application configuration for the branch-delete command.
type CommandConfiguration struct {
	RemoteName   string `mapstructure:"remote"`
	BaseBranch   string `mapstructure:"base"`
	DeleteRemote bool   `mapstructure:"delete_remote"`
}

// DefaultCommandConfiguration provides baseline configuration values for branch deletion.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		RemoteName:   defaultRemoteNameConstant,
		BaseBranch:   "",
		DeleteRemote: false,
	}
}

// Sanitize trims configuration values without applying implicit defaults.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.RemoteName = strings.TrimSpace(configuration.RemoteName)
	sanitized.BaseBranch = strings.TrimSpace(configuration.BaseBranch)
	return sanitized
}
