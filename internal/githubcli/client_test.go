package githubcli_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/gitutils/internal/execshell"
	"github.com/temirov/gitutils/internal/githubcli"
)

const (
	testRepositoryIdentifierConstant          = "owner/example"
	testPullRequestTitleConstant              = "Example"
	testPullRequestURLConstant                = "https://github.com/owner/example/pull/42"
	testViewSuccessCaseNameConstant           = "view_success"
	testViewMissingFieldsCaseNameConstant     = "view_missing_optional_fields"
	testViewDecodeFailureCaseNameConstant     = "view_decode_failure"
	testViewCommandFailureCaseNameConstant    = "view_command_failure"
	testViewRepositoryValidationCaseNameConst = "view_repository_validation"
	testViewNumberValidationCaseNameConstant  = "view_number_validation"
)

type stubGitHubExecutor struct {
	executeFunc     func(context.Context, execshell.CommandDetails) (execshell.ExecutionResult, error)
	recordedDetails []execshell.CommandDetails
}

func (executor *stubGitHubExecutor) ExecuteGitHubCLI(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recordedDetails = append(executor.recordedDetails, details)
	if executor.executeFunc != nil {
		return executor.executeFunc(executionContext, details)
	}
	return execshell.ExecutionResult{}, nil
}

func failingExecutor() *stubGitHubExecutor {
	return &stubGitHubExecutor{executeFunc: func(context.Context, execshell.CommandDetails) (execshell.ExecutionResult, error) {
		return execshell.ExecutionResult{}, execshell.CommandFailedError{Command: execshell.ShellCommand{Name: execshell.CommandGitHub}, Result: execshell.ExecutionResult{ExitCode: 1}}
	}}
}

func TestNewClientValidation(testInstance *testing.T) {
	testInstance.Run("nil_executor", func(testInstance *testing.T) {
		client, creationError := githubcli.NewClient(nil)
		require.Error(testInstance, creationError)
		require.ErrorIs(testInstance, creationError, githubcli.ErrExecutorNotConfigured)
		require.Nil(testInstance, client)
	})
}

func TestCheckAvailability(testInstance *testing.T) {
	executor := &stubGitHubExecutor{}
	client, creationError := githubcli.NewClient(executor)
	require.NoError(testInstance, creationError)
	require.NoError(testInstance, client.CheckAvailability(context.Background()))
	require.Equal(testInstance, []string{"--version"}, executor.recordedDetails[0].Arguments)

	client, creationError = githubcli.NewClient(failingExecutor())
	require.NoError(testInstance, creationError)
	availabilityError := client.CheckAvailability(context.Background())
	require.ErrorIs(testInstance, availabilityError, githubcli.ErrUnavailable)
	require.IsType(testInstance, githubcli.OperationError{}, availabilityError)
}

func TestViewPullRequest(testInstance *testing.T) {
	testCases := []struct {
		name        string
		repository  string
		number      int
		executor    *stubGitHubExecutor
		expectError bool
		errorType   any
		expected    githubcli.PullRequest
	}{
		{
			name:       testViewSuccessCaseNameConstant,
			repository: testRepositoryIdentifierConstant,
			number:     42,
			executor: &stubGitHubExecutor{executeFunc: func(context.Context, execshell.CommandDetails) (execshell.ExecutionResult, error) {
				return execshell.ExecutionResult{StandardOutput: `{"number":42,"title":"Example","url":"https://github.com/owner/example/pull/42","mergedAt":"2024-05-01T10:00:00Z","author":{"login":"octocat"}}`}, nil
			}},
			expected: githubcli.PullRequest{
				Number:   42,
				Title:    testPullRequestTitleConstant,
				URL:      testPullRequestURLConstant,
				MergedAt: "2024-05-01T10:00:00Z",
				Author:   "octocat",
			},
		},
		{
			name:       testViewMissingFieldsCaseNameConstant,
			repository: testRepositoryIdentifierConstant,
			number:     42,
			executor: &stubGitHubExecutor{executeFunc: func(context.Context, execshell.CommandDetails) (execshell.ExecutionResult, error) {
				return execshell.ExecutionResult{StandardOutput: `{"number":42,"title":"Example","url":"https://github.com/owner/example/pull/42","mergedAt":null,"author":null}`}, nil
			}},
			expected: githubcli.PullRequest{Number: 42, Title: testPullRequestTitleConstant, URL: testPullRequestURLConstant},
		},
		{
			name:       testViewDecodeFailureCaseNameConstant,
			repository: testRepositoryIdentifierConstant,
			number:     42,
			executor: &stubGitHubExecutor{executeFunc: func(context.Context, execshell.CommandDetails) (execshell.ExecutionResult, error) {
				return execshell.ExecutionResult{StandardOutput: "not-json"}, nil
			}},
			expectError: true,
			errorType:   githubcli.ResponseDecodingError{},
		},
		{
			name:        testViewCommandFailureCaseNameConstant,
			repository:  testRepositoryIdentifierConstant,
			number:      42,
			executor:    failingExecutor(),
			expectError: true,
			errorType:   githubcli.OperationError{},
		},
		{
			name:        testViewRepositoryValidationCaseNameConst,
			repository:  "  ",
			number:      42,
			executor:    &stubGitHubExecutor{},
			expectError: true,
			errorType:   githubcli.InvalidInputError{},
		},
		{
			name:        testViewNumberValidationCaseNameConstant,
			repository:  testRepositoryIdentifierConstant,
			number:      0,
			executor:    &stubGitHubExecutor{},
			expectError: true,
			errorType:   githubcli.InvalidInputError{},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			client, creationError := githubcli.NewClient(testCase.executor)
			require.NoError(testInstance, creationError)

			pullRequest, viewError := client.ViewPullRequest(context.Background(), testCase.repository, testCase.number)
			if testCase.expectError {
				require.Error(testInstance, viewError)
				require.IsType(testInstance, testCase.errorType, viewError)
				return
			}
			require.NoError(testInstance, viewError)
			require.Equal(testInstance, testCase.expected, pullRequest)
			require.Equal(testInstance,
				[]string{"pr", "view", "42", "--repo", testRepositoryIdentifierConstant, "--json", "number,title,url,mergedAt,author"},
				testCase.executor.recordedDetails[0].Arguments)
		})
	}
}

func TestOpenPullRequestList(testInstance *testing.T) {
	executor := &stubGitHubExecutor{}
	client, creationError := githubcli.NewClient(executor)
	require.NoError(testInstance, creationError)
	require.NoError(testInstance, client.OpenPullRequestList(context.Background(), testRepositoryIdentifierConstant))
	require.Equal(testInstance, []string{"pr", "list", "--web", "--repo", testRepositoryIdentifierConstant}, executor.recordedDetails[0].Arguments)

	var inputError githubcli.InvalidInputError
	require.True(testInstance, errors.As(client.OpenPullRequestList(context.Background(), " "), &inputError))

	client, creationError = githubcli.NewClient(failingExecutor())
	require.NoError(testInstance, creationError)
	require.IsType(testInstance, githubcli.OperationError{}, client.OpenPullRequestList(context.Background(), testRepositoryIdentifierConstant))
}
