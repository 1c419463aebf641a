package lifecycle

import (
	"errors"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/gitutils/internal/gitconfig"
	"github.com/temirov/gitutils/internal/githubauth"
	"github.com/temirov/gitutils/internal/gitrepo"
	"github.com/temirov/gitutils/internal/prompt"
	"github.com/temirov/gitutils/internal/repos/dependencies"
	"github.com/temirov/gitutils/internal/repos/filesystem"
	flagutils "github.com/temirov/gitutils/internal/utils/flags"
	pathutils "github.com/temirov/gitutils/internal/utils/path"
)

const (
	cloneUseConstant                   = "clone <url>"
	cloneShortDescriptionConstant      = "Clone a repository into the managed tree"
	cloneLongDescriptionConstant       = "clone places the repository at <root>/<domain>/<user>/<repo>, where root comes from git-repo.root."
	cloneExampleConstant               = "gitutils repo clone https://github.com/temirov/gitutils.git --shallow"
	deleteUseConstant                  = "delete [path]"
	deleteShortDescriptionConstant     = "Delete a repository from the managed tree"
	deleteLongDescriptionConstant      = "delete removes a repository below git-repo.root after warning about uncommitted changes and unpushed commits."
	deleteExampleConstant              = "gitutils repo delete github.com/temirov/gitutils --dry-run"
	shallowFlagNameConstant            = "shallow"
	shallowFlagUsageConstant           = "Shallow clone with --depth=1"
	bareFlagNameConstant               = "bare"
	bareFlagUsageConstant              = "Clone as bare repository"
	branchFlagNameConstant             = "branch"
	branchFlagShorthandConstant        = "b"
	branchFlagUsageConstant            = "Checkout specific branch"
	onExistsFlagNameConstant           = "on-exists"
	onExistsFlagUsageConstant          = "what to do when the target directory exists; prompts when unset and a terminal is attached, skips otherwise"
	interactiveFlagNameConstant        = "interactive"
	interactiveFlagShorthandConstant   = "i"
	interactiveFlagUsageConstant       = "Interactive selection"
	forceFlagNameConstant              = "force"
	forceFlagShorthandConstant         = "f"
	forceFlagUsageConstant             = "Force delete without warnings"
	dryRunFlagUsageConstant            = "Dry run (preview only)"
	assumeYesFlagUsageConstant         = "Skip the final confirmation"
	pathWithInteractiveMessageConstant = "specify a repository path or --interactive, not both"
)

// ErrPathWithInteractive rejects a positional path together with --interactive.
var ErrPathWithInteractive = errors.New(pathWithInteractiveMessageConstant)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandDependencies carries the collaborators shared by the lifecycle commands.
type CommandDependencies struct {
	LoggerProvider        LoggerProvider
	GitExecutor           gitrepo.GitExecutor
	Prompter              prompt.Prompter
	GitConfiguration      gitconfig.Provider
	FileSystem            filesystem.FileSystem
	Cloner                Cloner
	HomeExpander          *pathutils.HomeExpander
	ConfigurationProvider func() CommandConfiguration
}

// CloneCommandBuilder assembles the clone command.
type CloneCommandBuilder struct {
	CommandDependencies
}

// DeleteCommandBuilder assembles the delete command.
type DeleteCommandBuilder struct {
	CommandDependencies
}

// Build constructs the clone command.
func (builder *CloneCommandBuilder) Build() (*cobra.Command, error) {
	configuration := builder.resolveConfiguration()
	command := &cobra.Command{
		Use:     cloneUseConstant,
		Short:   cloneShortDescriptionConstant,
		Long:    cloneLongDescriptionConstant,
		Example: cloneExampleConstant,
		Args:    cobra.ExactArgs(1),
		RunE:    builder.run,
	}

	command.Flags().Bool(shallowFlagNameConstant, false, shallowFlagUsageConstant)
	command.Flags().Bool(bareFlagNameConstant, false, bareFlagUsageConstant)
	command.Flags().StringP(branchFlagNameConstant, branchFlagShorthandConstant, "", branchFlagUsageConstant)
	command.Flags().String(onExistsFlagNameConstant, configuration.OnExists, flagutils.FormatChoiceUsage(configuration.OnExists, collisionPolicyNames(), onExistsFlagUsageConstant))

	return command, nil
}

func (builder *CloneCommandBuilder) run(command *cobra.Command, arguments []string) error {
	onExistsValue, _ := command.Flags().GetString(onExistsFlagNameConstant)
	collisionPolicy, policyError := ParseCollisionPolicy(onExistsValue)
	if policyError != nil {
		return policyError
	}

	options := CloneOptions{
		URL:         arguments[0],
		Interactive: dependencies.ResolveInteractive(builder.Prompter, command.InOrStdin()),
		Collision:   collisionPolicy,
	}
	options.Shallow, _ = command.Flags().GetBool(shallowFlagNameConstant)
	options.Bare, _ = command.Flags().GetBool(bareFlagNameConstant)
	options.Branch, _ = command.Flags().GetString(branchFlagNameConstant)

	service, serviceError := builder.newService(command)
	if serviceError != nil {
		return serviceError
	}
	_, cloneError := service.Clone(command.Context(), options)
	return cloneError
}

// Build constructs the delete command.
func (builder *DeleteCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:     deleteUseConstant,
		Short:   deleteShortDescriptionConstant,
		Long:    deleteLongDescriptionConstant,
		Example: deleteExampleConstant,
		Args:    cobra.MaximumNArgs(1),
		RunE:    builder.run,
	}

	command.Flags().BoolP(interactiveFlagNameConstant, interactiveFlagShorthandConstant, false, interactiveFlagUsageConstant)
	command.Flags().BoolP(forceFlagNameConstant, forceFlagShorthandConstant, false, forceFlagUsageConstant)
	flagutils.BindExecutionFlags(command, flagutils.ExecutionDefaults{}, flagutils.ExecutionFlagDefinitions{
		DryRun:    flagutils.ExecutionFlagDefinition{Usage: dryRunFlagUsageConstant, Enabled: true},
		AssumeYes: flagutils.ExecutionFlagDefinition{Shorthand: flagutils.AssumeYesFlagShorthand, Usage: assumeYesFlagUsageConstant, Enabled: true},
	})

	return command, nil
}

func (builder *DeleteCommandBuilder) run(command *cobra.Command, arguments []string) error {
	options := DeleteOptions{}
	if len(arguments) > 0 {
		options.RelativePath = strings.TrimSpace(arguments[0])
	}
	options.Interactive, _ = command.Flags().GetBool(interactiveFlagNameConstant)
	options.Force, _ = command.Flags().GetBool(forceFlagNameConstant)
	executionFlags := flagutils.ReadExecutionFlags(command)
	options.DryRun = executionFlags.DryRun
	options.AssumeYes = executionFlags.AssumeYes
	if options.Interactive && len(options.RelativePath) > 0 {
		return ErrPathWithInteractive
	}

	service, serviceError := builder.newService(command)
	if serviceError != nil {
		return serviceError
	}
	_, deleteError := service.Delete(options)
	return deleteError
}

func (dependenciesSet CommandDependencies) newService(command *cobra.Command) (*Service, error) {
	logger := dependenciesSet.resolveLogger()
	gitExecutor, executorError := dependencies.ResolveGitExecutor(command.Context(), dependenciesSet.GitExecutor, logger)
	if executorError != nil {
		return nil, executorError
	}

	workingDirectory, _ := os.Getwd()
	configurationProvider, providerError := dependencies.ResolveConfigurationProvider(
		dependenciesSet.GitConfiguration,
		workingDirectory,
		dependenciesSet.resolveConfiguration().FallbackProvider(),
	)
	if providerError != nil {
		return nil, providerError
	}

	token, _ := githubauth.ResolveToken()
	return NewService(ServiceDependencies{
		ConfigurationProvider: configurationProvider,
		FileSystem:            dependenciesSet.FileSystem,
		Cloner:                dependenciesSet.Cloner,
		GitExecutor:           gitExecutor,
		Prompter:              dependencies.ResolvePrompter(dependenciesSet.Prompter, command.InOrStdin(), command.ErrOrStderr()),
		HomeExpander:          dependenciesSet.HomeExpander,
		Token:                 token,
		Logger:                logger,
		Output:                command.OutOrStdout(),
		ErrorOutput:           command.ErrOrStderr(),
	})
}

func (dependenciesSet CommandDependencies) resolveConfiguration() CommandConfiguration {
	if dependenciesSet.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return dependenciesSet.ConfigurationProvider().Sanitize()
}

func (dependenciesSet CommandDependencies) resolveLogger() *zap.Logger {
	if dependenciesSet.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := dependenciesSet.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
