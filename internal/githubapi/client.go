package githubapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v68/github"
)

const (
	repositorySeparatorConstant            = "/"
	trailingSlashConstant                  = "/"
	invalidRepositoryTemplateConstant      = "repository %q is not in owner/name form"
	invalidBaseURLTemplateConstant         = "invalid GitHub API base URL %q: %w"
	pullRequestRequestTemplateConstant     = "unable to fetch pull request #%d from %s: %w"
	httpClientNotConfiguredMessageConstant = "github api http client not configured"
)

// ErrHTTPClientNotConfigured indicates NewClient received no HTTP client.
var ErrHTTPClientNotConfigured = errors.New(httpClientNotConfiguredMessageConstant)

// InvalidRepositoryError reports a repository identifier that is not owner/name.
type InvalidRepositoryError struct {
	Repository string
}

// Error describes the malformed identifier.
func (repositoryError InvalidRepositoryError) Error() string {
	return fmt.Sprintf(invalidRepositoryTemplateConstant, repositoryError.Repository)
}

// Client reads pull requests through the GitHub REST API.
type Client struct {
	client *github.Client
}

// NewClient wraps go-github around the HTTP client. A non-empty baseURL points the client at
// another API host, which tests use for an httptest server.
func NewClient(httpClient *http.Client, baseURL string) (*Client, error) {
	if httpClient == nil {
		return nil, ErrHTTPClientNotConfigured
	}
	client := github.NewClient(httpClient)

	trimmedBaseURL := strings.TrimSpace(baseURL)
	if len(trimmedBaseURL) > 0 {
		if !strings.HasSuffix(trimmedBaseURL, trailingSlashConstant) {
			trimmedBaseURL += trailingSlashConstant
		}
		parsedURL, parseError := url.Parse(trimmedBaseURL)
		if parseError != nil {
			return nil, fmt.Errorf(invalidBaseURLTemplateConstant, baseURL, parseError)
		}
		client.BaseURL = parsedURL
	}
	return &Client{client: client}, nil
}

// PullRequest fetches one pull request of an owner/name repository.
func (client *Client) PullRequest(executionContext context.Context, repository string, number int) (*github.PullRequest, error) {
	owner, name, splitError := splitRepository(repository)
	if splitError != nil {
		return nil, splitError
	}
	pullRequest, _, requestError := client.client.PullRequests.Get(executionContext, owner, name, number)
	if requestError != nil {
		return nil, fmt.Errorf(pullRequestRequestTemplateConstant, number, repository, requestError)
	}
	return pullRequest, nil
}

func splitRepository(repository string) (string, string, error) {
	owner, name, found := strings.Cut(strings.TrimSpace(repository), repositorySeparatorConstant)
	if !found || len(owner) == 0 || len(name) == 0 || strings.Contains(name, repositorySeparatorConstant) {
		return "", "", InvalidRepositoryError{Repository: repository}
	}
	return owner, name, nil
}
