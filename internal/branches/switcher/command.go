package switcher

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/gitutils/internal/gitconfig"
	"github.com/temirov/gitutils/internal/gitrepo"
	"github.com/temirov/gitutils/internal/prompt"
	"github.com/temirov/gitutils/internal/repos/dependencies"
)

const (
	commandUseConstant              = "branch-switch [pattern]"
	commandAliasConstant            = "bs"
	commandShortDescriptionConstant = "Switch branches interactively"
	commandLongDescriptionConstant  = "branch-switch lists local branches, or recently checked-out branches with --recent, narrows them by an optional pattern and merge status, and checks out the selected branch."
	commandExampleConstant          = "gitutils branch-switch feat --fuzzy --no-merged"
	flagRecentNameConstant          = "recent"
	flagRecentShorthandConstant     = "r"
	flagRecentUsageConstant         = "Show recently used branches"
	flagMergedNameConstant          = "merged"
	flagMergedShorthandConstant     = "m"
	flagMergedUsageConstant         = "Show only merged branches"
	flagNoMergedNameConstant        = "no-merged"
	flagNoMergedUsageConstant       = "Show only unmerged branches"
	flagFuzzyNameConstant           = "fuzzy"
	flagFuzzyUsageConstant          = "Rank branches by fuzzy match instead of substring filtering"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the branch-switch command.
type CommandBuilder struct {
	LoggerProvider   LoggerProvider
	GitExecutor      gitrepo.GitExecutor
	Prompter         prompt.Prompter
	GitConfiguration gitconfig.Provider
	BaseBranch       func() string
	WorkingDirectory string
}

// Build constructs the branch-switch command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:     commandUseConstant,
		Aliases: []string{commandAliasConstant},
		Short:   commandShortDescriptionConstant,
		Long:    commandLongDescriptionConstant,
		Example: commandExampleConstant,
		Args:    cobra.MaximumNArgs(1),
		RunE:    builder.run,
	}

	command.Flags().BoolP(flagRecentNameConstant, flagRecentShorthandConstant, false, flagRecentUsageConstant)
	command.Flags().BoolP(flagMergedNameConstant, flagMergedShorthandConstant, false, flagMergedUsageConstant)
	command.Flags().Bool(flagNoMergedNameConstant, false, flagNoMergedUsageConstant)
	command.Flags().Bool(flagFuzzyNameConstant, false, flagFuzzyUsageConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	options := Options{}
	if len(arguments) > 0 {
		options.Pattern = strings.TrimSpace(arguments[0])
	}
	options.Recent, _ = command.Flags().GetBool(flagRecentNameConstant)
	options.MergedOnly, _ = command.Flags().GetBool(flagMergedNameConstant)
	options.UnmergedOnly, _ = command.Flags().GetBool(flagNoMergedNameConstant)
	options.Fuzzy, _ = command.Flags().GetBool(flagFuzzyNameConstant)
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

	fallbackBase := ""
	if builder.BaseBranch != nil {
		fallbackBase = strings.TrimSpace(builder.BaseBranch())
	}
	configurationProvider, providerError := dependencies.ResolveConfigurationProvider(builder.GitConfiguration, repository.Path(), gitconfig.MapProvider{
		gitconfig.BaseBranchKey: fallbackBase,
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
	})
	if serviceError != nil {
		return serviceError
	}

	_, runError := service.Run(command.Context(), options)
	return runError
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
