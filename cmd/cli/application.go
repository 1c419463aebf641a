package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/gitutils/cmd/cli/repos"
	"github.com/temirov/gitutils/internal/branches/cleanup"
	"github.com/temirov/gitutils/internal/branches/switcher"
	"github.com/temirov/gitutils/internal/prompt"
	"github.com/temirov/gitutils/internal/pullrequests"
	"github.com/temirov/gitutils/internal/repos/lifecycle"
	"github.com/temirov/gitutils/internal/setup"
	"github.com/temirov/gitutils/internal/utils"
)

const (
	applicationNameConstant                 = "gitutils"
	applicationShortDescriptionConstant     = "Everyday git helpers for branches, pull requests, and clone trees"
	applicationLongDescriptionConstant      = "gitutils deletes stale branches, switches branches interactively, lists merged pull requests, and manages a tree of clones under a configured root."
	configFileFlagNameConstant              = "config"
	configFileFlagUsageConstant             = "Optional path to a configuration file (YAML)."
	logLevelFlagNameConstant                = "log-level"
	logLevelFlagUsageConstant               = "Override the configured log level (debug, info, warn, error)."
	logFormatFlagNameConstant               = "log-format"
	logFormatFlagUsageConstant              = "Override the configured log format (structured or console)."
	environmentPrefixConstant               = "GITUTILS"
	configurationNameConstant               = "config"
	configurationTypeConstant               = "yaml"
	workingDirectorySearchPathConstant      = "."
	homeDirectorySearchPathConstant         = "$HOME/.gitutils"
	configurationInitializedMessageConstant = "configuration initialized"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
	configurationFileFieldConstant          = "config_file"
	commandTimeoutFieldConstant             = "command_timeout"
	configurationLoadErrorTemplateConstant  = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant     = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
	errorOutputTemplateConstant             = "%v\n"
	exitCodeFailureConstant                 = 1
	exitCodeInterruptedConstant             = 130
)

// ApplicationConfiguration describes the persisted configuration for the CLI.
type ApplicationConfiguration struct {
	Common ApplicationCommonConfiguration `mapstructure:"common"`
	Tools  ApplicationToolsConfiguration  `mapstructure:"tools"`
}

// ApplicationCommonConfiguration stores settings shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
	// CommandTimeout bounds every external git or gh process. Zero leaves them unbounded.
	CommandTimeout time.Duration `mapstructure:"command_timeout"`
}

// ApplicationToolsConfiguration holds configuration for each tool.
type ApplicationToolsConfiguration struct {
	BranchDelete cleanup.CommandConfiguration      `mapstructure:"branch_delete"`
	BranchSwitch BranchSwitchConfiguration         `mapstructure:"branch_switch"`
	Repo         lifecycle.CommandConfiguration    `mapstructure:"repo"`
	PullRequests pullrequests.CommandConfiguration `mapstructure:"pr_merged"`
}

// BranchSwitchConfiguration configures branch-switch.
type BranchSwitchConfiguration struct {
	Base string `mapstructure:"base"`
}

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand            *cobra.Command
	configurationLoader    *utils.ConfigurationLoader
	loggerFactory          *utils.LoggerFactory
	logger                 *zap.Logger
	configuration          ApplicationConfiguration
	configurationMetadata  utils.LoadedConfiguration
	configurationFilePath  string
	logLevelFlagValue      string
	logFormatFlagValue     string
	commandContextAccessor utils.CommandContextAccessor
}

// NewApplication assembles a fully wired CLI application whose diagnostics go to diagnosticOutput.
func NewApplication(diagnosticOutput io.Writer) (*Application, error) {
	application := &Application{
		configurationLoader: utils.NewConfigurationLoader(utils.ConfigurationLoaderOptions{
			Name:              configurationNameConstant,
			Type:              configurationTypeConstant,
			EnvironmentPrefix: environmentPrefixConstant,
			SearchPaths:       []string{workingDirectorySearchPathConstant, homeDirectorySearchPathConstant},
			EmbeddedDefaults:  EmbeddedDefaultConfiguration(),
		}),
		loggerFactory:          utils.NewLoggerFactory(diagnosticOutput),
		logger:                 zap.NewNop(),
		commandContextAccessor: utils.NewCommandContextAccessor(),
	}

	rootCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
	}
	rootCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	rootCommand.PersistentFlags().StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	rootCommand.PersistentFlags().StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", logFormatFlagUsageConstant)

	subcommands, buildError := application.buildSubcommands()
	if buildError != nil {
		return nil, buildError
	}
	rootCommand.AddCommand(subcommands...)

	application.rootCommand = rootCommand
	return application, nil
}

func (application *Application) buildSubcommands() ([]*cobra.Command, error) {
	loggerProvider := func() *zap.Logger {
		return application.logger
	}

	branchDeleteBuilder := cleanup.CommandBuilder{
		LoggerProvider: loggerProvider,
		ConfigurationProvider: func() cleanup.CommandConfiguration {
			return application.configuration.Tools.BranchDelete
		},
	}
	branchSwitchBuilder := switcher.CommandBuilder{
		LoggerProvider: loggerProvider,
		BaseBranch: func() string {
			return application.configuration.Tools.BranchSwitch.Base
		},
	}
	repoBuilder := repos.CommandGroupBuilder{
		LoggerProvider: loggerProvider,
		ConfigurationProvider: func() lifecycle.CommandConfiguration {
			return application.configuration.Tools.Repo
		},
	}
	pullRequestsBuilder := pullrequests.CommandBuilder{
		LoggerProvider: loggerProvider,
		ConfigurationProvider: func() pullrequests.CommandConfiguration {
			return application.configuration.Tools.PullRequests
		},
	}
	setupBuilder := setup.CommandBuilder{LoggerProvider: loggerProvider}

	builders := []interface {
		Build() (*cobra.Command, error)
	}{&branchDeleteBuilder, &branchSwitchBuilder, &repoBuilder, &pullRequestsBuilder, &setupBuilder}

	commands := make([]*cobra.Command, 0, len(builders)+1)
	for _, builder := range builders {
		command, buildError := builder.Build()
		if buildError != nil {
			return nil, buildError
		}
		commands = append(commands, command)
	}
	commands = append(commands, application.newConfigCommand())
	return commands, nil
}

// Execute runs the command tree with the provided arguments and flushes the logger afterwards.
func (application *Application) Execute(executionContext context.Context, arguments []string) error {
	application.rootCommand.SetArgs(arguments)
	executionError := application.rootCommand.ExecuteContext(executionContext)
	if syncError := syncLogger(application.logger); syncError != nil && executionError == nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// SetOutput redirects user-facing output and prompt input.
func (application *Application) SetOutput(input io.Reader, output io.Writer, errorOutput io.Writer) {
	application.rootCommand.SetIn(input)
	application.rootCommand.SetOut(output)
	application.rootCommand.SetErr(errorOutput)
}

// Main runs gitutils with the process arguments, prefixed by toolPath, and returns the exit code.
// The per-tool binaries pass their subcommand name as toolPath.
func Main(toolPath ...string) int {
	executionContext, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	arguments := append(append([]string(nil), toolPath...), os.Args[1:]...)
	application, buildError := NewApplication(os.Stderr)
	if buildError != nil {
		fmt.Fprintf(os.Stderr, errorOutputTemplateConstant, buildError)
		return exitCodeFailureConstant
	}

	executionError := application.Execute(executionContext, arguments)
	if executionError == nil {
		return 0
	}
	if !errors.Is(executionError, prompt.ErrAborted) {
		fmt.Fprintf(os.Stderr, errorOutputTemplateConstant, executionError)
	}
	return ExitCode(executionError)
}

// ExitCode maps a command error to the process exit status.
func ExitCode(executionError error) int {
	switch {
	case executionError == nil:
		return 0
	case errors.Is(executionError, prompt.ErrAborted), errors.Is(executionError, context.Canceled):
		return exitCodeInterruptedConstant
	default:
		return exitCodeFailureConstant
	}
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}
	application.configurationMetadata = loadedConfiguration

	if persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
		application.overrideSetting(configurationLogLevelFieldConstant, application.logLevelFlagValue)
	}
	if persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
		application.overrideSetting(configurationLogFormatFieldConstant, application.logFormatFlagValue)
	}

	logLevel, levelError := utils.ParseLogLevel(application.configuration.Common.LogLevel)
	if levelError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, levelError)
	}
	logFormat, formatError := utils.ParseLogFormat(application.configuration.Common.LogFormat)
	if formatError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, formatError)
	}
	logger, loggerError := application.loggerFactory.CreateLogger(logLevel, logFormat)
	if loggerError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerError)
	}
	application.logger = logger

	application.logger.Info(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, string(logLevel)),
		zap.String(configurationLogFormatFieldConstant, string(logFormat)),
		zap.String(configurationFileFieldConstant, loadedConfiguration.ConfigFileUsed),
		zap.Duration(commandTimeoutFieldConstant, application.configuration.Common.CommandTimeout),
	)

	updatedContext := application.commandContextAccessor.WithConfigurationFilePath(command.Context(), loadedConfiguration.ConfigFileUsed)
	updatedContext = application.commandContextAccessor.WithCommandTimeout(updatedContext, application.configuration.Common.CommandTimeout)
	command.SetContext(updatedContext)
	return nil
}

// overrideSetting keeps the settings shown by config show aligned with command-line overrides.
func (application *Application) overrideSetting(commonKey string, value string) {
	if application.configurationMetadata.Settings == nil {
		application.configurationMetadata.Settings = map[string]any{}
	}
	commonSettings, isMap := application.configurationMetadata.Settings[commonSectionKeyConstant].(map[string]any)
	if !isMap {
		commonSettings = map[string]any{}
		application.configurationMetadata.Settings[commonSectionKeyConstant] = commonSettings
	}
	commonSettings[commonKey] = value
}

func syncLogger(logger *zap.Logger) error {
	if logger == nil {
		return nil
	}

	syncError := logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP), errors.Is(syncError, syscall.EINVAL), errors.Is(syncError, syscall.ENOTTY):
		return nil
	default:
		return syncError
	}
}

func persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{command.PersistentFlags(), command.InheritedFlags()}
	if rootCommand := command.Root(); rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet != nil && flagSet.Changed(flagName) {
			return true
		}
	}
	return false
}
