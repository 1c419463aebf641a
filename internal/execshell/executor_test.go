package execshell_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/gitutils/internal/execshell"
)

type recordingCommandRunner struct {
	executionResult   execshell.ExecutionResult
	executionError    error
	recordedCommands  []execshell.ShellCommand
	recordedDeadlines []bool
}

func (runner *recordingCommandRunner) Run(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	runner.recordedCommands = append(runner.recordedCommands, command)
	_, hasDeadline := executionContext.Deadline()
	runner.recordedDeadlines = append(runner.recordedDeadlines, hasDeadline)
	return runner.executionResult, runner.executionError
}

func TestNewShellExecutorValidatesCollaborators(testInstance *testing.T) {
	_, loggerError := execshell.NewShellExecutor(nil, &recordingCommandRunner{})
	require.ErrorIs(testInstance, loggerError, execshell.ErrLoggerNotConfigured)

	_, runnerError := execshell.NewShellExecutor(zap.NewNop(), nil)
	require.ErrorIs(testInstance, runnerError, execshell.ErrCommandRunnerNotConfigured)

	executor, creationError := execshell.NewShellExecutor(zap.NewNop(), &recordingCommandRunner{}, nil)
	require.NoError(testInstance, creationError)
	require.NotNil(testInstance, executor)
}

func TestShellExecutorBranchDeletionOutcomes(testInstance *testing.T) {
	deletion := execshell.CommandDetails{Arguments: []string{"branch", "--delete", "topic"}, WorkingDirectory: "/work/app"}

	testCases := []struct {
		name              string
		runnerResult      execshell.ExecutionResult
		runnerError       error
		expectedError     any
		expectedOutput    string
		expectedLevels    []zapcore.Level
		expectedLastEntry string
	}{
		{
			name:              "deleted",
			runnerResult:      execshell.ExecutionResult{StandardOutput: "Deleted branch topic (was 1a2b3c4).\n"},
			expectedOutput:    "Deleted branch topic (was 1a2b3c4).\n",
			expectedLevels:    []zapcore.Level{zapcore.InfoLevel, zapcore.InfoLevel},
			expectedLastEntry: "Removed local branch topic in /work/app",
		},
		{
			name:              "not_fully_merged",
			runnerResult:      execshell.ExecutionResult{StandardError: "error: the branch 'topic' is not fully merged", ExitCode: 1},
			expectedError:     execshell.CommandFailedError{},
			expectedLevels:    []zapcore.Level{zapcore.InfoLevel, zapcore.WarnLevel},
			expectedLastEntry: "Failed to remove local branch topic in /work/app",
		},
		{
			name:              "git_missing",
			runnerError:       errors.New("exec: \"git\": executable file not found in $PATH"),
			expectedError:     execshell.CommandExecutionError{},
			expectedLevels:    []zapcore.Level{zapcore.InfoLevel, zapcore.ErrorLevel},
			expectedLastEntry: "Unable to remove local branch topic in /work/app",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			observerCore, observerLogs := observer.New(zap.DebugLevel)
			recordingRunner := &recordingCommandRunner{executionResult: testCase.runnerResult, executionError: testCase.runnerError}
			shellExecutor, creationError := execshell.NewShellExecutor(zap.New(observerCore), recordingRunner)
			require.NoError(testInstance, creationError)

			executionResult, executionError := shellExecutor.ExecuteGit(context.Background(), deletion)
			if testCase.expectedError != nil {
				require.IsType(testInstance, testCase.expectedError, executionError)
				require.Empty(testInstance, executionResult.StandardOutput)
			} else {
				require.NoError(testInstance, executionError)
				require.Equal(testInstance, testCase.expectedOutput, executionResult.StandardOutput)
			}

			entries := observerLogs.All()
			require.Len(testInstance, entries, len(testCase.expectedLevels))
			require.Equal(testInstance, "Removing local branch topic in /work/app", entries[0].Message)
			for entryIndex, expectedLevel := range testCase.expectedLevels {
				require.Equal(testInstance, expectedLevel, entries[entryIndex].Level)
			}
			require.Contains(testInstance, entries[len(entries)-1].Message, testCase.expectedLastEntry)
		})
	}
}

func TestCommandFailedErrorCarriesStandardError(testInstance *testing.T) {
	recordingRunner := &recordingCommandRunner{
		executionResult: execshell.ExecutionResult{StandardError: "error: branch 'topic' not found.\n", ExitCode: 1},
	}
	shellExecutor, creationError := execshell.NewShellExecutor(zap.NewNop(), recordingRunner)
	require.NoError(testInstance, creationError)

	_, executionError := shellExecutor.ExecuteGit(context.Background(), execshell.CommandDetails{Arguments: []string{"branch", "--delete", "topic"}})

	var failedError execshell.CommandFailedError
	require.ErrorAs(testInstance, executionError, &failedError)
	require.Equal(testInstance, "error: branch 'topic' not found.", failedError.StandardError())
	require.Equal(testInstance, "git branch --delete topic failed with exit code 1: error: branch 'topic' not found.", failedError.Error())
}

func TestShellExecutorAppliesCommandTimeout(testInstance *testing.T) {
	testCases := []struct {
		name             string
		options          []execshell.ExecutorOption
		expectedDeadline bool
	}{
		{name: "no_timeout", expectedDeadline: false},
		{name: "with_timeout", options: []execshell.ExecutorOption{execshell.WithCommandTimeout(time.Minute)}, expectedDeadline: true},
		{name: "negative_timeout_disabled", options: []execshell.ExecutorOption{execshell.WithCommandTimeout(-time.Second)}, expectedDeadline: false},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			recordingRunner := &recordingCommandRunner{}
			shellExecutor, creationError := execshell.NewShellExecutor(zap.NewNop(), recordingRunner, testCase.options...)
			require.NoError(testInstance, creationError)

			_, executionError := shellExecutor.ExecuteGit(context.Background(), execshell.CommandDetails{})
			require.NoError(testInstance, executionError)
			require.Equal(testInstance, []bool{testCase.expectedDeadline}, recordingRunner.recordedDeadlines)
		})
	}
}

func TestShellExecutorWrappersSetCommandNames(testInstance *testing.T) {
	observerCore, _ := observer.New(zap.DebugLevel)
	logger := zap.New(observerCore)

	testCases := []struct {
		name            string
		invoke          func(executor *execshell.ShellExecutor) error
		expectedCommand execshell.CommandName
	}{
		{
			name: "git",
			invoke: func(executor *execshell.ShellExecutor) error {
				_, executionError := executor.ExecuteGit(context.Background(), execshell.CommandDetails{})
				return executionError
			},
			expectedCommand: execshell.CommandGit,
		},
		{
			name: "gh",
			invoke: func(executor *execshell.ShellExecutor) error {
				_, executionError := executor.ExecuteGitHubCLI(context.Background(), execshell.CommandDetails{})
				return executionError
			},
			expectedCommand: execshell.CommandGitHub,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			recordingRunner := &recordingCommandRunner{
				executionResult: execshell.ExecutionResult{ExitCode: 1},
			}

			executor, creationError := execshell.NewShellExecutor(logger, recordingRunner)
			require.NoError(testInstance, creationError)

			executionError := testCase.invoke(executor)
			require.Error(testInstance, executionError)
			require.Len(testInstance, recordingRunner.recordedCommands, 1)
			require.Equal(testInstance, testCase.expectedCommand, recordingRunner.recordedCommands[0].Name)
		})
	}
}
