package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const (
	configGroupUseConstant              = "config"
	configGroupShortDescriptionConstant = "Inspect gitutils configuration"
	configShowUseConstant               = "show"
	configShowShortDescriptionConstant  = "Print the effective configuration as YAML"
	configShowLongDescriptionConstant   = "show merges the built-in defaults, the configuration file, GITUTILS_* environment variables, and command-line overrides, then prints the result."
	configFileCommentTemplateConstant   = "# %s\n"
	configEncodeErrorTemplateConstant   = "unable to render configuration: %w"
	commonSectionKeyConstant            = "common"
	yamlIndentConstant                  = 2
)

func (application *Application) newConfigCommand() *cobra.Command {
	groupCommand := &cobra.Command{
		Use:   configGroupUseConstant,
		Short: configGroupShortDescriptionConstant,
	}

	showCommand := &cobra.Command{
		Use:   configShowUseConstant,
		Short: configShowShortDescriptionConstant,
		Long:  configShowLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			output := command.OutOrStdout()
			if configFile := application.configurationMetadata.ConfigFileUsed; len(configFile) > 0 {
				fmt.Fprintf(output, configFileCommentTemplateConstant, configFile)
			}

			encoder := yaml.NewEncoder(output)
			encoder.SetIndent(yamlIndentConstant)
			if encodeError := encoder.Encode(application.configurationMetadata.Settings); encodeError != nil {
				return fmt.Errorf(configEncodeErrorTemplateConstant, encodeError)
			}
			return encoder.Close()
		},
	}

	groupCommand.AddCommand(showCommand)
	return groupCommand
}
