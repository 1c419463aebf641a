package listing

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/gitutils/internal/gitconfig"
	"github.com/temirov/gitutils/internal/repos/dependencies"
	"github.com/temirov/gitutils/internal/repos/filesystem"
	"github.com/temirov/gitutils/internal/repos/lifecycle"
	pathutils "github.com/temirov/gitutils/internal/utils/path"
)

const (
	commandUseConstant              = "ls"
	commandShortDescriptionConstant = "List all managed repositories"
	commandLongDescriptionConstant  = "ls scans git-repo.root down to <domain>/<user>/<repo> and prints every repository it finds."
	commandExampleConstant          = "gitutils repo ls --long --dirty"
	longFlagNameConstant            = "long"
	longFlagShorthandConstant       = "l"
	longFlagUsageConstant           = "Show detailed information"
	absoluteFlagNameConstant        = "absolute"
	absoluteFlagShorthandConstant   = "a"
	absoluteFlagUsageConstant       = "Show absolute paths"
	dirtyFlagNameConstant           = "dirty"
	dirtyFlagUsageConstant          = "Show only dirty repositories"
	jsonFlagNameConstant            = "json"
	jsonFlagUsageConstant           = "Output as JSON"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the ls command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	GitConfiguration      gitconfig.Provider
	FileSystem            filesystem.FileSystem
	HomeExpander          *pathutils.HomeExpander
	ConfigurationProvider func() lifecycle.CommandConfiguration
}

// Build constructs the ls command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:     commandUseConstant,
		Short:   commandShortDescriptionConstant,
		Long:    commandLongDescriptionConstant,
		Example: commandExampleConstant,
		Args:    cobra.NoArgs,
		RunE:    builder.run,
	}

	command.Flags().BoolP(longFlagNameConstant, longFlagShorthandConstant, false, longFlagUsageConstant)
	command.Flags().BoolP(absoluteFlagNameConstant, absoluteFlagShorthandConstant, false, absoluteFlagUsageConstant)
	command.Flags().Bool(dirtyFlagNameConstant, false, dirtyFlagUsageConstant)
	command.Flags().Bool(jsonFlagNameConstant, false, jsonFlagUsageConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, _ []string) error {
	options := Options{}
	options.Long, _ = command.Flags().GetBool(longFlagNameConstant)
	options.Absolute, _ = command.Flags().GetBool(absoluteFlagNameConstant)
	options.DirtyOnly, _ = command.Flags().GetBool(dirtyFlagNameConstant)
	options.JSON, _ = command.Flags().GetBool(jsonFlagNameConstant)

	logger := builder.resolveLogger()
	configuration := lifecycle.DefaultCommandConfiguration()
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider().Sanitize()
	}

	workingDirectory, _ := os.Getwd()
	configurationProvider, providerError := dependencies.ResolveConfigurationProvider(builder.GitConfiguration, workingDirectory, configuration.FallbackProvider())
	if providerError != nil {
		return providerError
	}

	lifecycleService, lifecycleError := lifecycle.NewService(lifecycle.ServiceDependencies{
		ConfigurationProvider: configurationProvider,
		FileSystem:            builder.FileSystem,
		HomeExpander:          builder.HomeExpander,
		Logger:                logger,
	})
	if lifecycleError != nil {
		return lifecycleError
	}

	service, serviceError := NewService(ServiceDependencies{
		Lister: lifecycleService,
		Logger: logger,
		Output: command.OutOrStdout(),
	})
	if serviceError != nil {
		return serviceError
	}
	return service.List(options)
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
