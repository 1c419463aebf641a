// Package flags binds the flags shared by several commands and validates choice-valued flags.
package flags

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	// DryRunFlagName exposes the shared dry-run flag name.
	DryRunFlagName = "dry-run"
	// DryRunFlagUsage describes the shared dry-run flag purpose.
	DryRunFlagUsage = "Preview operations without making changes"
	// AssumeYesFlagName exposes the shared assume-yes flag name.
	AssumeYesFlagName = "yes"
	// AssumeYesFlagShorthand provides the shorthand for the assume-yes flag.
	AssumeYesFlagShorthand = "y"
	// AssumeYesFlagUsage describes the shared assume-yes flag purpose.
	AssumeYesFlagUsage = "Automatically confirm prompts"
)

// ExecutionDefaults describes default flag values shared across commands.
type ExecutionDefaults struct {
	DryRun    bool
	AssumeYes bool
}

// ExecutionFlagDefinition captures a single flag's configuration. An empty Name falls back to the shared name.
type ExecutionFlagDefinition struct {
	Name      string
	Usage     string
	Shorthand string
	Enabled   bool
}

// ExecutionFlagDefinitions groups execution flag definitions.
type ExecutionFlagDefinitions struct {
	DryRun    ExecutionFlagDefinition
	AssumeYes ExecutionFlagDefinition
}

// ExecutionFlags holds the parsed execution flag values.
type ExecutionFlags struct {
	DryRun    bool
	AssumeYes bool
}

// BindExecutionFlags attaches the enabled execution flags to the command using persistent scope.
func BindExecutionFlags(command *cobra.Command, defaults ExecutionDefaults, definitions ExecutionFlagDefinitions) {
	if command == nil {
		return
	}

	persistentFlagSet := command.PersistentFlags()

	bindBoolFlag(persistentFlagSet, definitions.DryRun, DryRunFlagName, defaults.DryRun)
	bindBoolFlag(persistentFlagSet, definitions.AssumeYes, AssumeYesFlagName, defaults.AssumeYes)
}

// ReadExecutionFlags reads the shared execution flags from the command. Flags that were never
// bound read as false.
func ReadExecutionFlags(command *cobra.Command) ExecutionFlags {
	if command == nil {
		return ExecutionFlags{}
	}
	executionFlags := ExecutionFlags{}
	executionFlags.DryRun, _ = command.Flags().GetBool(DryRunFlagName)
	executionFlags.AssumeYes, _ = command.Flags().GetBool(AssumeYesFlagName)
	return executionFlags
}

func bindBoolFlag(flagSet *pflag.FlagSet, definition ExecutionFlagDefinition, fallbackName string, defaultValue bool) {
	if !definition.Enabled {
		return
	}
	name := definition.Name
	if len(name) == 0 {
		name = fallbackName
	}

	if len(definition.Shorthand) > 0 {
		flagSet.BoolP(name, definition.Shorthand, defaultValue, definition.Usage)
		return
	}

	flagSet.Bool(name, defaultValue, definition.Usage)
}
