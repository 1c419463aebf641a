package utils

import (
	"context"
	"time"
)

const (
	configurationFilePathContextKeyConstant = commandContextKey("configurationFilePath")
	commandTimeoutContextKeyConstant        = commandContextKey("commandTimeout")
)

type commandContextKey string

// CommandContextAccessor manages values stored in command execution contexts.
type CommandContextAccessor struct{}

// NewCommandContextAccessor constructs a CommandContextAccessor instance.
func NewCommandContextAccessor() CommandContextAccessor {
	return CommandContextAccessor{}
}

// WithConfigurationFilePath attaches the configuration file path to the provided context.
func (accessor CommandContextAccessor) WithConfigurationFilePath(parentContext context.Context, configurationFilePath string) context.Context {
	if parentContext == nil {
		parentContext = context.Background()
	}
	return context.WithValue(parentContext, configurationFilePathContextKeyConstant, configurationFilePath)
}

// ConfigurationFilePath extracts the configuration file path from the provided context.
func (accessor CommandContextAccessor) ConfigurationFilePath(executionContext context.Context) (string, bool) {
	if executionContext == nil {
		return "", false
	}
	configurationFilePath, configurationFilePathAvailable := executionContext.Value(configurationFilePathContextKeyConstant).(string)
	if !configurationFilePathAvailable {
		return "", false
	}
	return configurationFilePath, true
}

// WithCommandTimeout attaches the external command timeout to the provided context.
func (accessor CommandContextAccessor) WithCommandTimeout(parentContext context.Context, commandTimeout time.Duration) context.Context {
	if parentContext == nil {
		parentContext = context.Background()
	}
	return context.WithValue(parentContext, commandTimeoutContextKeyConstant, commandTimeout)
}

// CommandTimeout extracts the external command timeout. Zero means unbounded.
func (accessor CommandContextAccessor) CommandTimeout(executionContext context.Context) (time.Duration, bool) {
	if executionContext == nil {
		return 0, false
	}
	commandTimeout, commandTimeoutAvailable := executionContext.Value(commandTimeoutContextKeyConstant).(time.Duration)
	return commandTimeout, commandTimeoutAvailable
}
