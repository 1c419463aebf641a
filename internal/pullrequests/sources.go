package pullrequests

import (
	"context"
	"errors"
	"time"

	"github.com/temirov/gitutils/internal/githubapi"
	"github.com/temirov/gitutils/internal/githubcli"
)

const sourceClientMissingMessageConstant = "pull request source client not configured"

// ErrSourceClientNotConfigured indicates a detail source was used without its client.
var ErrSourceClientNotConfigured = errors.New(sourceClientMissingMessageConstant)

// CLISource reads pull request details through gh pr view.
type CLISource struct {
	Client *githubcli.Client
}

// PullRequest implements DetailSource.
func (source CLISource) PullRequest(executionContext context.Context, repository string, number int) (PullRequest, error) {
	if source.Client == nil {
		return PullRequest{}, ErrSourceClientNotConfigured
	}
	details, viewError := source.Client.ViewPullRequest(executionContext, repository, number)
	if viewError != nil {
		return PullRequest{}, viewError
	}
	return PullRequest{
		Number:   number,
		Title:    details.Title,
		URL:      details.URL,
		MergedAt: details.MergedAt,
		Author:   details.Author,
	}, nil
}

// APISource reads pull request details from the GitHub REST API.
type APISource struct {
	Client *githubapi.Client
}

// PullRequest implements DetailSource.
func (source APISource) PullRequest(executionContext context.Context, repository string, number int) (PullRequest, error) {
	if source.Client == nil {
		return PullRequest{}, ErrSourceClientNotConfigured
	}
	details, requestError := source.Client.PullRequest(executionContext, repository, number)
	if requestError != nil {
		return PullRequest{}, requestError
	}
	pullRequest := PullRequest{
		Number: number,
		Title:  details.GetTitle(),
		URL:    details.GetHTMLURL(),
		Author: details.GetUser().GetLogin(),
	}
	if mergedAt := details.GetMergedAt(); !mergedAt.IsZero() {
		pullRequest.MergedAt = mergedAt.UTC().Format(time.RFC3339)
	}
	return pullRequest, nil
}
