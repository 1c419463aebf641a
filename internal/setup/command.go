package setup

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/gitutils/internal/repos/filesystem"
	pathutils "github.com/temirov/gitutils/internal/utils/path"
)

const (
	commandUseConstant              = "setup"
	commandShortDescriptionConstant = "Set up the gitutils shell environment"
	commandLongDescriptionConstant  = "setup writes ~/.git-utils/env.sh and env.fish (keeping edited copies), refreshes their .example templates, and sources them from the shell startup file."
	commandExampleConstant          = "gitutils setup --shell zsh"
	shellFlagNameConstant           = "shell"
	shellFlagUsageConstant          = "Specify shell (bash, zsh, fish)"
	printFlagNameConstant           = "print"
	printFlagUsageConstant          = "Print configuration snippet for the given shell (bash, zsh, fish)"
	gitConfigFlagNameConstant       = "gitconfig"
	gitConfigFlagUsageConstant      = "Print gitconfig settings"
	uninstallFlagNameConstant       = "uninstall"
	uninstallFlagUsageConstant      = "Uninstall git-utils setup"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the setup command.
type CommandBuilder struct {
	LoggerProvider LoggerProvider
	FileSystem     filesystem.FileSystem
	HomeExpander   *pathutils.HomeExpander
	Environment    EnvironmentLookup
}

// Build constructs the setup command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:     commandUseConstant,
		Short:   commandShortDescriptionConstant,
		Long:    commandLongDescriptionConstant,
		Example: commandExampleConstant,
		Args:    cobra.NoArgs,
		RunE:    builder.run,
	}

	command.Flags().String(shellFlagNameConstant, "", shellFlagUsageConstant)
	command.Flags().String(printFlagNameConstant, "", printFlagUsageConstant)
	command.Flags().Bool(gitConfigFlagNameConstant, false, gitConfigFlagUsageConstant)
	command.Flags().Bool(uninstallFlagNameConstant, false, uninstallFlagUsageConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, _ []string) error {
	environment := builder.Environment
	if environment == nil {
		environment = os.LookupEnv
	}
	logger := zap.NewNop()
	if builder.LoggerProvider != nil && builder.LoggerProvider() != nil {
		logger = builder.LoggerProvider()
	}

	service := NewService(ServiceDependencies{
		FileSystem:   builder.FileSystem,
		HomeExpander: builder.HomeExpander,
		Environment:  environment,
		Logger:       logger,
		Output:       command.OutOrStdout(),
	})

	uninstall, _ := command.Flags().GetBool(uninstallFlagNameConstant)
	if uninstall {
		return service.Uninstall()
	}
	printGitConfig, _ := command.Flags().GetBool(gitConfigFlagNameConstant)
	if printGitConfig {
		service.PrintGitConfig()
		return nil
	}
	printShell, _ := command.Flags().GetString(printFlagNameConstant)
	if command.Flags().Changed(printFlagNameConstant) {
		return service.PrintSnippet(printShell)
	}
	shellName, _ := command.Flags().GetString(shellFlagNameConstant)
	return service.Install(shellName)
}
