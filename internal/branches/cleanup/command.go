package cleanup

import (
	"errors"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/gitutils/internal/gitconfig"
	"github.com/temirov/gitutils/internal/gitrepo"
	"github.com/temirov/gitutils/internal/prompt"
	"github.com/temirov/gitutils/internal/repos/dependencies"
	flagutils "github.com/temirov/gitutils/internal/utils/flags"
)

const (
	commandUseConstant                 = "branch-delete"
	commandAliasConstant               = "bd"
	commandShortDescriptionConstant    = "Delete local branches interactively"
	commandLongDescriptionConstant     = "branch-delete removes local branches other than the current and base branches. By default only branches whose work already landed on the base branch are offered; --all offers every branch and --select asks about each one."
	commandExampleConstant             = "gitutils branch-delete --select --remote"
	unexpectedArgumentsMessageConstant = "branch-delete does not accept positional arguments"
	flagAllNameConstant                = "all"
	flagAllShorthandConstant           = "a"
	flagAllUsageConstant               = "Delete all branches except base and current"
	flagMergedNameConstant             = "merged"
	flagMergedShorthandConstant        = "m"
	flagMergedUsageConstant            = "Delete only merged branches (default)"
	flagSelectNameConstant             = "select"
	flagSelectShorthandConstant        = "s"
	flagSelectUsageConstant            = "Select branches one by one"
	flagForceNameConstant              = "force"
	flagForceShorthandConstant         = "f"
	flagForceUsageConstant             = "Force delete unmerged branches"
	flagDeleteRemoteNameConstant       = "remote"
	flagDeleteRemoteShorthandConstant  = "r"
	flagDeleteRemoteUsageConstant      = "Also delete the matching remote branches"
	flagRemoteNameNameConstant         = "remote-name"
	flagRemoteNameUsageConstant        = "Remote holding the branches removed by --remote"
)

var errUnexpectedArguments = errors.New(unexpectedArgumentsMessageConstant)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the branch-delete command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	GitExecutor           gitrepo.GitExecutor
	Prompter              prompt.Prompter
	GitConfiguration      gitconfig.Provider
	ConfigurationProvider func() CommandConfiguration
	WorkingDirectory      string
}

// Build constructs the branch-delete command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:     commandUseConstant,
		Aliases: []string{commandAliasConstant},
		Short:   commandShortDescriptionConstant,
		Long:    commandLongDescriptionConstant,
		Example: commandExampleConstant,
		RunE:    builder.run,
	}

	configuration := builder.resolveConfiguration()

	command.Flags().BoolP(flagAllNameConstant, flagAllShorthandConstant, false, flagAllUsageConstant)
	command.Flags().BoolP(flagMergedNameConstant, flagMergedShorthandConstant, false, flagMergedUsageConstant)
	command.Flags().BoolP(flagSelectNameConstant, flagSelectShorthandConstant, false, flagSelectUsageConstant)
	command.Flags().BoolP(flagForceNameConstant, flagForceShorthandConstant, false, flagForceUsageConstant)
	command.Flags().BoolP(flagDeleteRemoteNameConstant, flagDeleteRemoteShorthandConstant, configuration.DeleteRemote, flagDeleteRemoteUsageConstant)
	command.Flags().String(flagRemoteNameNameConstant, configuration.RemoteName, flagRemoteNameUsageConstant)
	flagutils.BindExecutionFlags(command, flagutils.ExecutionDefaults{}, flagutils.ExecutionFlagDefinitions{
		AssumeYes: flagutils.ExecutionFlagDefinition{
			Name:      flagutils.AssumeYesFlagName,
			Shorthand: flagutils.AssumeYesFlagShorthand,
			Usage:     flagutils.AssumeYesFlagUsage,
			Enabled:   true,
		},
	})

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}

	options := builder.parseOptions(command)
	if validationError := options.Validate(); validationError != nil {
		return validationError
	}

	logger := builder.resolveLogger()
	gitExecutor, executorError := dependencies.ResolveGitExecutor(command.Context(), builder.GitExecutor, logger)
	if executorError != nil {
		return executorError
	}

	repository, openError := gitrepo.Open(builder.resolveWorkingDirectory(), gitExecutor)
	if openError != nil {
		return openError
	}
	defer repository.Close()

	configuration := builder.resolveConfiguration()
	configurationProvider, providerError := dependencies.ResolveConfigurationProvider(builder.GitConfiguration, repository.Path(), gitconfig.MapProvider{
		gitconfig.BaseBranchKey: configuration.BaseBranch,
	})
	if providerError != nil {
		return providerError
	}

	service, serviceError := NewService(ServiceDependencies{
		Repository:            repository,
		Prompter:              dependencies.ResolvePrompter(builder.Prompter, command.InOrStdin(), command.ErrOrStderr()),
		ConfigurationProvider: configurationProvider,
		Logger:                logger,
		Output:                command.OutOrStdout(),
		ErrorOutput:           command.ErrOrStderr(),
	})
	if serviceError != nil {
		return serviceError
	}

	_, runError := service.Run(command.Context(), options)
	return runError
}

func (builder *CommandBuilder) parseOptions(command *cobra.Command) Options {
	allValue, _ := command.Flags().GetBool(flagAllNameConstant)
	mergedValue, _ := command.Flags().GetBool(flagMergedNameConstant)
	selectValue, _ := command.Flags().GetBool(flagSelectNameConstant)
	forceValue, _ := command.Flags().GetBool(flagForceNameConstant)
	deleteRemoteValue, _ := command.Flags().GetBool(flagDeleteRemoteNameConstant)
	remoteNameValue, _ := command.Flags().GetString(flagRemoteNameNameConstant)
	assumeYesValue := flagutils.ReadExecutionFlags(command).AssumeYes

	return Options{
		All:          allValue,
		MergedOnly:   mergedValue,
		Select:       selectValue,
		Force:        forceValue,
		DeleteRemote: deleteRemoteValue,
		RemoteName:   strings.TrimSpace(remoteNameValue),
		AssumeYes:    assumeYesValue,
	}
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
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

func (builder *CommandBuilder) resolveWorkingDirectory() string {
	if len(strings.TrimSpace(builder.WorkingDirectory)) > 0 {
		return builder.WorkingDirectory
	}
	workingDirectory, workingDirectoryError := os.Getwd()
	if workingDirectoryError != nil {
		return "."
	}
	return workingDirectory
}
