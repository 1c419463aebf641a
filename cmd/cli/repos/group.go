package repos

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/gitutils/internal/repos/lifecycle"
	"github.com/temirov/gitutils/internal/repos/listing"
)

const (
	groupUseConstant      = "repo"
	groupShortDescription = "Manage the tree of cloned repositories"
	groupLongDescription  = "repo clones, lists, and deletes repositories kept under <root>/<domain>/<user>/<repo>."
)

// CommandGroupBuilder assembles the repo command group.
type CommandGroupBuilder struct {
	LoggerProvider        func() *zap.Logger
	ConfigurationProvider func() lifecycle.CommandConfiguration
}

// Build constructs the repo command hierarchy.
func (builder *CommandGroupBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   groupUseConstant,
		Short: groupShortDescription,
		Long:  groupLongDescription,
	}

	sharedDependencies := lifecycle.CommandDependencies{
		LoggerProvider:        builder.LoggerProvider,
		ConfigurationProvider: builder.ConfigurationProvider,
	}

	cloneBuilder := lifecycle.CloneCommandBuilder{CommandDependencies: sharedDependencies}
	cloneCommand, cloneError := cloneBuilder.Build()
	if cloneError != nil {
		return nil, cloneError
	}

	listBuilder := listing.CommandBuilder{
		LoggerProvider:        builder.LoggerProvider,
		ConfigurationProvider: builder.ConfigurationProvider,
	}
	listCommand, listError := listBuilder.Build()
	if listError != nil {
		return nil, listError
	}

	deleteBuilder := lifecycle.DeleteCommandBuilder{CommandDependencies: sharedDependencies}
	deleteCommand, deleteError := deleteBuilder.Build()
	if deleteError != nil {
		return nil, deleteError
	}

	command.AddCommand(cloneCommand, listCommand, deleteCommand)
	return command, nil
}
