package pullrequests

import (
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/gitutils/internal/githubapi"
	"github.com/temirov/gitutils/internal/githubauth"
	"github.com/temirov/gitutils/internal/githubcli"
	"github.com/temirov/gitutils/internal/gitrepo"
	"github.com/temirov/gitutils/internal/repos/dependencies"
	flagutils "github.com/temirov/gitutils/internal/utils/flags"
)

const (
	commandUseConstant              = "pr-merged [revision-range]"
	commandShortDescriptionConstant = "List merged pull requests in a revision range"
	commandLongDescriptionConstant  = "pr-merged scans commit subjects in a revision range (default: latest tag..HEAD, or HEAD~10..HEAD without tags) for #N references and prints the matching GitHub pull requests."
	commandExampleConstant          = "gitutils pr-merged v1.0.0..v1.1.0 --format markdown"
	countFlagNameConstant           = "count"
	countFlagShorthandConstant      = "c"
	countFlagUsageConstant          = "Number of commits to check (alternative to revision range)"
	webFlagNameConstant             = "web"
	webFlagShorthandConstant        = "w"
	webFlagUsageConstant            = "Open PR list in web browser"
	formatFlagNameConstant          = "format"
	formatFlagDescriptionConstant   = "Output format"
	sourceFlagNameConstant          = "source"
	sourceFlagDescriptionConstant   = "Where pull request details come from"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the pr-merged command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	GitExecutor           gitrepo.GitExecutor
	GitHubExecutor        githubcli.GitHubCommandExecutor
	HTTPClient            *http.Client
	WorkingDirectory      string
	ConfigurationProvider func() CommandConfiguration
}

// Build constructs the pr-merged command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	configuration := builder.resolveConfiguration()
	command := &cobra.Command{
		Use:     commandUseConstant,
		Short:   commandShortDescriptionConstant,
		Long:    commandLongDescriptionConstant,
		Example: commandExampleConstant,
		Args:    cobra.MaximumNArgs(1),
		RunE:    builder.run,
	}

	formatChoices := []string{string(FormatText), string(FormatJSON), string(FormatMarkdown), string(FormatPlain)}
	sourceChoices := []string{string(SourceCLI), string(SourceAPI)}

	command.Flags().IntP(countFlagNameConstant, countFlagShorthandConstant, 0, countFlagUsageConstant)
	command.Flags().BoolP(webFlagNameConstant, webFlagShorthandConstant, false, webFlagUsageConstant)
	command.Flags().Var(flagutils.NewChoiceValue(configuration.Format, formatChoices), formatFlagNameConstant, flagutils.FormatChoiceUsage(configuration.Format, formatChoices, formatFlagDescriptionConstant))
	command.Flags().Var(flagutils.NewChoiceValue(configuration.Source, sourceChoices), sourceFlagNameConstant, flagutils.FormatChoiceUsage(configuration.Source, sourceChoices, sourceFlagDescriptionConstant))

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration := builder.resolveConfiguration()

	options := Options{}
	if len(arguments) > 0 {
		options.RevisionRange = strings.TrimSpace(arguments[0])
	}
	options.Count, _ = command.Flags().GetInt(countFlagNameConstant)
	options.Web, _ = command.Flags().GetBool(webFlagNameConstant)
	formatValue, _ := command.Flags().GetString(formatFlagNameConstant)
	options.Format = Format(formatValue)
	if validationError := options.Validate(); validationError != nil {
		return validationError
	}
	sourceValue, _ := command.Flags().GetString(sourceFlagNameConstant)
	source, sourceError := ParseSource(sourceValue)
	if sourceError != nil {
		return sourceError
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

	serviceDependencies := ServiceDependencies{
		Repository:  repository,
		Logger:      logger,
		Output:      command.OutOrStdout(),
		ErrorOutput: command.ErrOrStderr(),
	}

	// gh is needed for the CLI source and for --web.
	if source == SourceCLI || options.Web {
		gitHubExecutor, gitHubExecutorError := dependencies.ResolveGitHubExecutor(command.Context(), builder.GitHubExecutor, logger)
		if gitHubExecutorError != nil {
			return gitHubExecutorError
		}
		cliClient, clientError := githubcli.NewClient(gitHubExecutor)
		if clientError != nil {
			return clientError
		}
		serviceDependencies.Availability = cliClient
		serviceDependencies.Browser = cliClient
		serviceDependencies.Details = CLISource{Client: cliClient}
	}

	if source == SourceAPI {
		httpClient := builder.HTTPClient
		if httpClient == nil {
			token, _ := githubauth.ResolveToken(configuration.TokenEnv)
			httpClient = githubauth.NewHTTPClient(command.Context(), token)
		}
		apiClient, clientError := githubapi.NewClient(httpClient, configuration.APIURL)
		if clientError != nil {
			return clientError
		}
		serviceDependencies.Details = APISource{Client: apiClient}
	}

	service, serviceError := NewService(serviceDependencies)
	if serviceError != nil {
		return serviceError
	}

	_, runError := service.Run(command.Context(), options)
	return runError
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
