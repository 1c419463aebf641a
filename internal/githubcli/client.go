package githubcli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/temirov/gitutils/internal/execshell"
)

const (
	versionFlagConstant                      = "--version"
	pullRequestSubcommandConstant            = "pr"
	viewSubcommandConstant                   = "view"
	listSubcommandConstant                   = "list"
	jsonFlagConstant                         = "--json"
	repoFlagConstant                         = "--repo"
	webFlagConstant                          = "--web"
	repositoryFieldNameConstant              = "repository"
	numberFieldNameConstant                  = "number"
	requiredValueMessageConstant             = "value required"
	positiveValueMessageConstant             = "must be positive"
	executorNotConfiguredMessageConstant     = "github cli executor not configured"
	pullRequestJSONFieldsConstant            = "number,title,url,mergedAt,author"
	operationErrorMessageTemplateConstant    = "%s operation failed"
	operationErrorWithCauseTemplateConstant  = "%s operation failed: %s"
	responseDecodingErrorTemplateConstant    = "%s response decoding failed: %s"
	invalidInputErrorTemplateConstant        = "%s: %s"
	unavailableMessageConstant               = "gh command not found. Please install GitHub CLI: https://cli.github.com/"
	checkAvailabilityOperationNameConstant   = OperationName("CheckAvailability")
	viewPullRequestOperationNameConstant     = OperationName("ViewPullRequest")
	openPullRequestListOperationNameConstant = OperationName("OpenPullRequestList")
)

// OperationName describes a named GitHub CLI workflow supported by the client.
type OperationName string

// PullRequest holds the pull request details reported by gh pr view.
// MergedAt and Author are empty when GitHub does not report them.
type PullRequest struct {
	Number   int
	Title    string
	URL      string
	MergedAt string
	Author   string
}

// GitHubCommandExecutor is the minimal interface required from execshell.ShellExecutor.
type GitHubCommandExecutor interface {
	ExecuteGitHubCLI(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Client coordinates GitHub CLI invocations through execshell.
type Client struct {
	executor GitHubCommandExecutor
}

var (
	// ErrExecutorNotConfigured indicates the client was constructed without an executor.
	ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)
	// ErrUnavailable indicates gh is not installed or does not run.
	ErrUnavailable = errors.New(unavailableMessageConstant)
)

// InvalidInputError surfaces validation issues for operation inputs.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputErrorTemplateConstant, inputError.FieldName, inputError.Message)
}

// OperationError wraps execution issues for GitHub CLI operations.
type OperationError struct {
	Operation OperationName
	Cause     error
}

// Error describes the operation failure.
func (operationError OperationError) Error() string {
	if operationError.Cause == nil {
		return fmt.Sprintf(operationErrorMessageTemplateConstant, operationError.Operation)
	}
	return fmt.Sprintf(operationErrorWithCauseTemplateConstant, operationError.Operation, operationError.Cause)
}

// Unwrap exposes the underlying cause.
func (operationError OperationError) Unwrap() error {
	return operationError.Cause
}

// ResponseDecodingError indicates JSON decoding failures.
type ResponseDecodingError struct {
	Operation OperationName
	Cause     error
}

// Error describes the decoding failure.
func (decodingError ResponseDecodingError) Error() string {
	return fmt.Sprintf(responseDecodingErrorTemplateConstant, decodingError.Operation, decodingError.Cause)
}

// Unwrap exposes the underlying JSON error.
func (decodingError ResponseDecodingError) Unwrap() error {
	return decodingError.Cause
}

// NewClient constructs a GitHub CLI client.
func NewClient(executor GitHubCommandExecutor) (*Client, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &Client{executor: executor}, nil
}

// CheckAvailability runs gh --version and reports ErrUnavailable when it fails.
func (client *Client) CheckAvailability(executionContext context.Context) error {
	_, executionError := client.executor.ExecuteGitHubCLI(executionContext, execshell.CommandDetails{
		Arguments: []string{versionFlagConstant},
	})
	if executionError != nil {
		return OperationError{Operation: checkAvailabilityOperationNameConstant, Cause: errors.Join(ErrUnavailable, executionError)}
	}
	return nil
}

// ViewPullRequest retrieves one pull request using gh pr view.
func (client *Client) ViewPullRequest(executionContext context.Context, repository string, number int) (PullRequest, error) {
	repositoryIdentifier := strings.TrimSpace(repository)
	if len(repositoryIdentifier) == 0 {
		return PullRequest{}, InvalidInputError{FieldName: repositoryFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if number <= 0 {
		return PullRequest{}, InvalidInputError{FieldName: numberFieldNameConstant, Message: positiveValueMessageConstant}
	}

	commandDetails := execshell.CommandDetails{
		Arguments: []string{
			pullRequestSubcommandConstant,
			viewSubcommandConstant,
			strconv.Itoa(number),
			repoFlagConstant,
			repositoryIdentifier,
			jsonFlagConstant,
			pullRequestJSONFieldsConstant,
		},
	}

	executionResult, executionError := client.executor.ExecuteGitHubCLI(executionContext, commandDetails)
	if executionError != nil {
		return PullRequest{}, OperationError{Operation: viewPullRequestOperationNameConstant, Cause: executionError}
	}

	var response struct {
		Number   int     `json:"number"`
		Title    string  `json:"title"`
		URL      string  `json:"url"`
		MergedAt *string `json:"mergedAt"`
		Author   *struct {
			Login string `json:"login"`
		} `json:"author"`
	}

	decodingError := json.Unmarshal([]byte(executionResult.StandardOutput), &response)
	if decodingError != nil {
		return PullRequest{}, ResponseDecodingError{Operation: viewPullRequestOperationNameConstant, Cause: decodingError}
	}

	pullRequest := PullRequest{Number: number, Title: response.Title, URL: response.URL}
	if response.MergedAt != nil {
		pullRequest.MergedAt = *response.MergedAt
	}
	if response.Author != nil {
		pullRequest.Author = response.Author.Login
	}
	return pullRequest, nil
}

// OpenPullRequestList opens the repository pull request list in a browser using gh pr list --web.
func (client *Client) OpenPullRequestList(executionContext context.Context, repository string) error {
	repositoryIdentifier := strings.TrimSpace(repository)
	if len(repositoryIdentifier) == 0 {
		return InvalidInputError{FieldName: repositoryFieldNameConstant, Message: requiredValueMessageConstant}
	}

	_, executionError := client.executor.ExecuteGitHubCLI(executionContext, execshell.CommandDetails{
		Arguments: []string{pullRequestSubcommandConstant, listSubcommandConstant, webFlagConstant, repoFlagConstant, repositoryIdentifier},
	})
	if executionError != nil {
		return OperationError{Operation: openPullRequestListOperationNameConstant, Cause: executionError}
	}
	return nil
}
