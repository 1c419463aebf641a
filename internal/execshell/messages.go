package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	commandLabelTemplateConstant            = "%s%s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	defaultWorkingDirectoryLabelConstant    = "current directory"
	fallbackUnknownValueLabelConstant       = "unknown"
	flagPrefixConstant                      = "-"
)

const (
	gitBranchSubcommandNameConstant   = "branch"
	gitPushSubcommandNameConstant     = "push"
	gitPullSubcommandNameConstant     = "pull"
	gitCheckoutSubcommandNameConstant = "checkout"
	gitLogSubcommandNameConstant      = "log"
	gitDescribeSubcommandNameConstant = "describe"
	gitDeleteFlagConstant             = "--delete"
	gitForceFlagConstant              = "--force"
)

const (
	gitBranchDeletionStartTemplateConstant            = "Removing local branch %s in %s"
	gitBranchForceDeletionStartTemplateConstant       = "Force removing local branch %s in %s"
	gitBranchDeletionSuccessTemplateConstant          = "Removed local branch %s in %s"
	gitBranchDeletionFailureTemplateConstant          = "Failed to remove local branch %s in %s (exit code %d%s)"
	gitBranchDeletionExecutionFailureTemplateConstant = "Unable to remove local branch %s in %s: %s"
	gitPushDeletionStartTemplateConstant              = "Deleting remote branch %s from %s in %s"
	gitPushDeletionSuccessTemplateConstant            = "Deleted remote branch %s from %s in %s"
	gitPushDeletionFailureTemplateConstant            = "Failed to delete remote branch %s from %s in %s (exit code %d%s)"
	gitPushDeletionExecutionFailureTemplateConstant   = "Unable to delete remote branch %s from %s in %s: %s"
	gitPullStartTemplateConstant                      = "Pulling latest changes in %s"
	gitPullSuccessTemplateConstant                    = "Pulled latest changes in %s"
	gitPullFailureTemplateConstant                    = "Failed to pull latest changes in %s (exit code %d%s)"
	gitPullExecutionFailureTemplateConstant           = "Unable to pull latest changes in %s: %s"
	gitCheckoutStartTemplateConstant                  = "Switching %s to branch %s"
	gitCheckoutSuccessTemplateConstant                = "%s now on branch %s"
	gitCheckoutFailureTemplateConstant                = "Failed to switch %s to branch %s (exit code %d%s)"
	gitCheckoutExecutionFailureTemplateConstant       = "Unable to switch %s to branch %s: %s"
	gitLogStartTemplateConstant                       = "Reading commit subjects for %s in %s"
	gitLogSuccessTemplateConstant                     = "Read commit subjects for %s in %s"
	gitLogFailureTemplateConstant                     = "Failed to read commit subjects for %s in %s (exit code %d%s)"
	gitLogExecutionFailureTemplateConstant            = "Unable to read commit subjects for %s in %s: %s"
	gitDescribeStartTemplateConstant                  = "Looking up latest tag in %s"
	gitDescribeSuccessTemplateConstant                = "Found latest tag in %s"
	gitDescribeFailureTemplateConstant                = "No tag found in %s (exit code %d%s)"
	gitDescribeExecutionFailureTemplateConstant       = "Unable to look up latest tag in %s: %s"
)

const (
	githubPullRequestSubcommandNameConstant     = "pr"
	githubPullRequestViewSubcommandNameConstant = "view"
	githubPullRequestListSubcommandNameConstant = "list"
	githubRepoFlagConstant                      = "--repo"
	githubWebFlagConstant                       = "--web"
	githubCurrentRepositoryLabelConstant        = "current repository"
)

const (
	githubPullRequestViewStartTemplateConstant            = "Retrieving pull request #%s from %s"
	githubPullRequestViewSuccessTemplateConstant          = "Retrieved pull request #%s from %s"
	githubPullRequestViewFailureTemplateConstant          = "Failed to retrieve pull request #%s from %s (exit code %d%s)"
	githubPullRequestViewExecutionFailureTemplateConstant = "Unable to retrieve pull request #%s from %s: %s"
	githubPullRequestWebStartTemplateConstant             = "Opening pull requests for %s in the browser"
	githubPullRequestWebSuccessTemplateConstant           = "Opened pull requests for %s in the browser"
	githubPullRequestWebFailureTemplateConstant           = "Failed to open pull requests for %s in the browser (exit code %d%s)"
	githubPullRequestWebExecutionFailureTemplateConstant  = "Unable to open pull requests for %s in the browser: %s"
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	switch command.Name {
	case CommandGit:
		return formatter.describeGitMessage(command, result, failure, stage)
	case CommandGitHub:
		return formatter.describeGitHubMessage(command, result, failure, stage)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if len(command.Details.Arguments) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	switch strings.TrimSpace(command.Details.Arguments[0]) {
	case gitBranchSubcommandNameConstant:
		if containsArgument(command.Details.Arguments, gitDeleteFlagConstant) {
			return formatter.describeGitBranchDeletion(command, result, failure, stage)
		}
	case gitPushSubcommandNameConstant:
		if containsArgument(command.Details.Arguments, gitDeleteFlagConstant) {
			return formatter.describeGitPushDeletion(command, result, failure, stage)
		}
	case gitPullSubcommandNameConstant:
		return formatter.describeByStage(stage, result, failure,
			fmt.Sprintf(gitPullStartTemplateConstant, formatter.describeWorkingDirectory(command)),
			fmt.Sprintf(gitPullSuccessTemplateConstant, formatter.describeWorkingDirectory(command)),
			gitPullFailureTemplateConstant, gitPullExecutionFailureTemplateConstant,
			formatter.describeWorkingDirectory(command))
	case gitCheckoutSubcommandNameConstant:
		branchName := formatter.ensureValue(formatter.extractLastNonFlagArgument(command.Details.Arguments[1:]))
		workingDirectory := formatter.describeWorkingDirectory(command)
		return formatter.describeByStage(stage, result, failure,
			fmt.Sprintf(gitCheckoutStartTemplateConstant, workingDirectory, branchName),
			fmt.Sprintf(gitCheckoutSuccessTemplateConstant, workingDirectory, branchName),
			gitCheckoutFailureTemplateConstant, gitCheckoutExecutionFailureTemplateConstant,
			workingDirectory, branchName)
	case gitLogSubcommandNameConstant:
		revisionRange := formatter.ensureValue(formatter.extractLastNonFlagArgument(command.Details.Arguments[1:]))
		workingDirectory := formatter.describeWorkingDirectory(command)
		return formatter.describeByStage(stage, result, failure,
			fmt.Sprintf(gitLogStartTemplateConstant, revisionRange, workingDirectory),
			fmt.Sprintf(gitLogSuccessTemplateConstant, revisionRange, workingDirectory),
			gitLogFailureTemplateConstant, gitLogExecutionFailureTemplateConstant,
			revisionRange, workingDirectory)
	case gitDescribeSubcommandNameConstant:
		workingDirectory := formatter.describeWorkingDirectory(command)
		return formatter.describeByStage(stage, result, failure,
			fmt.Sprintf(gitDescribeStartTemplateConstant, workingDirectory),
			fmt.Sprintf(gitDescribeSuccessTemplateConstant, workingDirectory),
			gitDescribeFailureTemplateConstant, gitDescribeExecutionFailureTemplateConstant,
			workingDirectory)
	}

	return formatter.buildGenericMessage(command, result, failure, stage)
}

func (formatter CommandMessageFormatter) describeGitBranchDeletion(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	branchName := formatter.ensureValue(formatter.extractLastNonFlagArgument(command.Details.Arguments))
	workingDirectory := formatter.describeWorkingDirectory(command)
	startMessage := fmt.Sprintf(gitBranchDeletionStartTemplateConstant, branchName, workingDirectory)
	if containsArgument(command.Details.Arguments, gitForceFlagConstant) {
		startMessage = fmt.Sprintf(gitBranchForceDeletionStartTemplateConstant, branchName, workingDirectory)
	}
	return formatter.describeByStage(stage, result, failure,
		startMessage,
		fmt.Sprintf(gitBranchDeletionSuccessTemplateConstant, branchName, workingDirectory),
		gitBranchDeletionFailureTemplateConstant, gitBranchDeletionExecutionFailureTemplateConstant,
		branchName, workingDirectory)
}

func (formatter CommandMessageFormatter) describeGitPushDeletion(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	remoteName := formatter.ensureValue(formatter.argumentAtIndex(arguments, 1))
	deletionTarget := formatter.ensureValue(formatter.extractFlagValue(arguments, gitDeleteFlagConstant))
	workingDirectory := formatter.describeWorkingDirectory(command)
	return formatter.describeByStage(stage, result, failure,
		fmt.Sprintf(gitPushDeletionStartTemplateConstant, deletionTarget, remoteName, workingDirectory),
		fmt.Sprintf(gitPushDeletionSuccessTemplateConstant, deletionTarget, remoteName, workingDirectory),
		gitPushDeletionFailureTemplateConstant, gitPushDeletionExecutionFailureTemplateConstant,
		deletionTarget, remoteName, workingDirectory)
}

func (formatter CommandMessageFormatter) describeGitHubMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	if len(arguments) < 2 || strings.TrimSpace(arguments[0]) != githubPullRequestSubcommandNameConstant {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	repository := strings.TrimSpace(formatter.extractFlagValue(arguments, githubRepoFlagConstant))
	if len(repository) == 0 {
		repository = githubCurrentRepositoryLabelConstant
	}

	switch strings.TrimSpace(arguments[1]) {
	case githubPullRequestViewSubcommandNameConstant:
		pullRequestNumber := formatter.ensureValue(formatter.argumentAtIndex(arguments, 2))
		return formatter.describeByStage(stage, result, failure,
			fmt.Sprintf(githubPullRequestViewStartTemplateConstant, pullRequestNumber, repository),
			fmt.Sprintf(githubPullRequestViewSuccessTemplateConstant, pullRequestNumber, repository),
			githubPullRequestViewFailureTemplateConstant, githubPullRequestViewExecutionFailureTemplateConstant,
			pullRequestNumber, repository)
	case githubPullRequestListSubcommandNameConstant:
		if containsArgument(arguments, githubWebFlagConstant) {
			return formatter.describeByStage(stage, result, failure,
				fmt.Sprintf(githubPullRequestWebStartTemplateConstant, repository),
				fmt.Sprintf(githubPullRequestWebSuccessTemplateConstant, repository),
				githubPullRequestWebFailureTemplateConstant, githubPullRequestWebExecutionFailureTemplateConstant,
				repository)
		}
	}

	return formatter.buildGenericMessage(command, result, failure, stage)
}

// describeByStage picks the message for the stage. Failure templates receive the
// subject values followed by the exit code and standard error suffix; execution
// failure templates receive the subject values followed by the failure text.
func (formatter CommandMessageFormatter) describeByStage(stage messageStage, result ExecutionResult, failure error, startMessage string, successMessage string, failureTemplate string, executionFailureTemplate string, subjects ...any) string {
	switch stage {
	case messageStageStart:
		return startMessage
	case messageStageSuccess:
		return successMessage
	case messageStageFailure:
		values := append(append([]any{}, subjects...), result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
		return fmt.Sprintf(failureTemplate, values...)
	case messageStageExecutionFailure:
		values := append(append([]any{}, subjects...), formatter.describeFailure(failure))
		return fmt.Sprintf(executionFailureTemplate, values...)
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatter.formatCommandLabel(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	commandLabel := string(command.Name)
	if len(command.Details.Arguments) > 0 {
		commandLabel = fmt.Sprintf("%s %s", commandLabel, strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant))
	}
	workingDirectorySuffix := emptyStringConstant
	if trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory); len(trimmedWorkingDirectory) > 0 {
		workingDirectorySuffix = fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
	}
	return fmt.Sprintf(commandLabelTemplateConstant, commandLabel, workingDirectorySuffix)
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func (formatter CommandMessageFormatter) argumentAtIndex(arguments []string, index int) string {
	if index >= 0 && index < len(arguments) {
		return arguments[index]
	}
	return emptyStringConstant
}

func (formatter CommandMessageFormatter) ensureValue(value string) string {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) == 0 {
		return fallbackUnknownValueLabelConstant
	}
	return trimmed
}

func (formatter CommandMessageFormatter) extractLastNonFlagArgument(arguments []string) string {
	for index := len(arguments) - 1; index >= 0; index-- {
		argument := strings.TrimSpace(arguments[index])
		if len(argument) == 0 || strings.HasPrefix(argument, flagPrefixConstant) {
			continue
		}
		return argument
	}
	return emptyStringConstant
}

func (formatter CommandMessageFormatter) extractFlagValue(arguments []string, flag string) string {
	for index := 0; index+1 < len(arguments); index++ {
		if strings.TrimSpace(arguments[index]) == flag {
			return arguments[index+1]
		}
	}
	return emptyStringConstant
}

func containsArgument(arguments []string, value string) bool {
	for _, argument := range arguments {
		if strings.TrimSpace(argument) == value {
			return true
		}
	}
	return false
}
