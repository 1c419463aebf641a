package pullrequests_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/gitutils/internal/pullrequests"
)

const (
	testRemoteURLConstant  = "git@github.com:owner/example.git"
	testRepositoryConstant = "owner/example"
)

type stubHistory struct {
	subjects       []string
	logError       error
	tag            string
	remoteURL      string
	remoteError    error
	requestedRange string
}

func (history *stubHistory) CommitSubjects(_ context.Context, revisionRange string) ([]string, error) {
	history.requestedRange = revisionRange
	return history.subjects, history.logError
}

func (history *stubHistory) LatestTag(context.Context) (string, bool) {
	return history.tag, len(history.tag) > 0
}

func (history *stubHistory) RemoteURL(string) (string, error) {
	if history.remoteError != nil {
		return "", history.remoteError
	}
	if len(history.remoteURL) == 0 {
		return testRemoteURLConstant, nil
	}
	return history.remoteURL, nil
}

type stubDetails struct {
	pullRequests map[int]pullrequests.PullRequest
	requested    []int
}

func (details *stubDetails) PullRequest(_ context.Context, repository string, number int) (pullrequests.PullRequest, error) {
	details.requested = append(details.requested, number)
	pullRequest, found := details.pullRequests[number]
	if !found || repository != testRepositoryConstant {
		return pullrequests.PullRequest{}, errors.New("not found")
	}
	return pullRequest, nil
}

type stubBrowser struct {
	opened []string
	err    error
}

func (browser *stubBrowser) OpenPullRequestList(_ context.Context, repository string) error {
	browser.opened = append(browser.opened, repository)
	return browser.err
}

type stubAvailability struct {
	err error
}

func (availability stubAvailability) CheckAvailability(context.Context) error {
	return availability.err
}

func newDetails() *stubDetails {
	return &stubDetails{pullRequests: map[int]pullrequests.PullRequest{
		12: {Title: "Add feature", URL: "https://github.com/owner/example/pull/12", MergedAt: "2024-05-01T10:00:00Z", Author: "octocat"},
		7:  {Title: "Fix bug", URL: "https://github.com/owner/example/pull/7"},
	}}
}

func TestExtractNumbers(testInstance *testing.T) {
	testCases := []struct {
		name     string
		subjects []string
		expected []int
	}{
		{name: "merge_and_squash_subjects", subjects: []string{"Merge pull request #12 from owner/feature", "Fix bug (#7)"}, expected: []int{12, 7}},
		{name: "deduplicated_in_first_seen_order", subjects: []string{"Refs #7 and #12", "Revert #7"}, expected: []int{7, 12}},
		{name: "no_references", subjects: []string{"Initial commit", "# heading"}, expected: nil},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expected, pullrequests.ExtractNumbers(testCase.subjects))
		})
	}
}

func TestOwnerRepository(testInstance *testing.T) {
	testCases := []struct {
		name        string
		remoteURL   string
		expected    string
		expectError bool
	}{
		{name: "ssh", remoteURL: "git@github.com:owner/example.git", expected: testRepositoryConstant},
		{name: "https", remoteURL: "https://github.com/owner/example.git", expected: testRepositoryConstant},
		{name: "other_host", remoteURL: "https://gitlab.com/owner/example.git", expectError: true},
		{name: "malformed", remoteURL: "not a url", expectError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			repository, resolveError := pullrequests.OwnerRepository(testCase.remoteURL)
			if testCase.expectError {
				require.ErrorIs(testInstance, resolveError, pullrequests.ErrNotGitHubRepository)
				return
			}
			require.NoError(testInstance, resolveError)
			require.Equal(testInstance, testCase.expected, repository)
		})
	}
}

func TestResolveRange(testInstance *testing.T) {
	testCases := []struct {
		name     string
		options  pullrequests.Options
		tag      string
		expected string
	}{
		{name: "explicit", options: pullrequests.Options{RevisionRange: " v1.0.0..v1.1.0 "}, tag: "v0.9.0", expected: "v1.0.0..v1.1.0"},
		{name: "count", options: pullrequests.Options{Count: 5}, tag: "v0.9.0", expected: "HEAD~5..HEAD"},
		{name: "latest_tag", tag: "v0.9.0", expected: "v0.9.0..HEAD"},
		{name: "default", expected: "HEAD~10..HEAD"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			service, serviceError := pullrequests.NewService(pullrequests.ServiceDependencies{
				Repository: &stubHistory{tag: testCase.tag},
				Details:    newDetails(),
			})
			require.NoError(testInstance, serviceError)
			require.Equal(testInstance, testCase.expected, service.ResolveRange(context.Background(), testCase.options))
		})
	}
}

func TestOptionsValidate(testInstance *testing.T) {
	require.ErrorIs(testInstance, pullrequests.Options{RevisionRange: "a..b", Count: 3}.Validate(), pullrequests.ErrConflictingRange)
	require.Error(testInstance, pullrequests.Options{Count: -1}.Validate())
	require.Error(testInstance, pullrequests.Options{Format: "html"}.Validate())
	require.NoError(testInstance, pullrequests.Options{Format: "Markdown"}.Validate())
}

func TestRunPrintsPullRequests(testInstance *testing.T) {
	history := &stubHistory{subjects: []string{"Merge pull request #12 from owner/feature", "Unknown (#99)", "Fix bug (#7)", "Again #12"}}
	details := newDetails()
	output := &bytes.Buffer{}
	errorOutput := &bytes.Buffer{}
	core, logs := observer.New(zap.DebugLevel)

	service, serviceError := pullrequests.NewService(pullrequests.ServiceDependencies{
		Repository:  history,
		Details:     details,
		Logger:      zap.New(core),
		Output:      output,
		ErrorOutput: errorOutput,
	})
	require.NoError(testInstance, serviceError)

	report, runError := service.Run(context.Background(), pullrequests.Options{RevisionRange: "v1.0.0..HEAD", Format: pullrequests.FormatPlain})
	require.NoError(testInstance, runError)
	require.Equal(testInstance, "v1.0.0..HEAD", history.requestedRange)
	require.Equal(testInstance, []int{12, 99, 7}, details.requested)
	require.Equal(testInstance, "#12\n#7\n", output.String())
	require.Equal(testInstance, "github", report.Platform)
	require.Len(testInstance, report.Pulls, 2)
	require.Equal(testInstance, 12, report.Pulls[0].Number)
	require.Equal(testInstance, 1, logs.FilterMessage("skipping pull request without details").Len())
	require.Equal(testInstance, "Skipping #99: not found\n", errorOutput.String())
}

func TestRunWithoutReferences(testInstance *testing.T) {
	output := &bytes.Buffer{}
	details := newDetails()
	service, serviceError := pullrequests.NewService(pullrequests.ServiceDependencies{
		Repository: &stubHistory{subjects: []string{"Initial commit"}},
		Details:    details,
		Output:     output,
	})
	require.NoError(testInstance, serviceError)

	report, runError := service.Run(context.Background(), pullrequests.Options{})
	require.NoError(testInstance, runError)
	require.Equal(testInstance, "No merged pull requests found in range: HEAD~10..HEAD\n", output.String())
	require.Empty(testInstance, report.Pulls)
	require.Empty(testInstance, details.requested)
}

func TestRunOpensBrowser(testInstance *testing.T) {
	output := &bytes.Buffer{}
	browser := &stubBrowser{}
	details := newDetails()
	service, serviceError := pullrequests.NewService(pullrequests.ServiceDependencies{
		Repository: &stubHistory{subjects: []string{"Fix (#7)", "Feature (#12)"}},
		Details:    details,
		Browser:    browser,
		Output:     output,
	})
	require.NoError(testInstance, serviceError)

	_, runError := service.Run(context.Background(), pullrequests.Options{Web: true})
	require.NoError(testInstance, runError)
	require.Equal(testInstance, []string{testRepositoryConstant}, browser.opened)
	require.Equal(testInstance, "Opened in browser: https://github.com/owner/example/pulls?q=is:pr+is:merged+7+12\n", output.String())
	require.Empty(testInstance, details.requested)
}

func TestRunFailures(testInstance *testing.T) {
	unavailable := errors.New("gh missing")
	logFailure := errors.New("bad revision")

	testCases := []struct {
		name         string
		dependencies pullrequests.ServiceDependencies
		options      pullrequests.Options
		verify       func(testInstance *testing.T, runError error)
	}{
		{
			name:         "conflicting_range",
			dependencies: pullrequests.ServiceDependencies{Repository: &stubHistory{}, Details: newDetails()},
			options:      pullrequests.Options{RevisionRange: "a..b", Count: 2},
			verify: func(testInstance *testing.T, runError error) {
				require.ErrorIs(testInstance, runError, pullrequests.ErrConflictingRange)
			},
		},
		{
			name:         "gh_unavailable",
			dependencies: pullrequests.ServiceDependencies{Repository: &stubHistory{}, Details: newDetails(), Availability: stubAvailability{err: unavailable}},
			verify: func(testInstance *testing.T, runError error) {
				require.ErrorIs(testInstance, runError, unavailable)
			},
		},
		{
			name:         "not_github",
			dependencies: pullrequests.ServiceDependencies{Repository: &stubHistory{remoteURL: "https://gitlab.com/owner/example.git"}, Details: newDetails()},
			verify: func(testInstance *testing.T, runError error) {
				require.ErrorIs(testInstance, runError, pullrequests.ErrNotGitHubRepository)
			},
		},
		{
			name:         "invalid_range",
			dependencies: pullrequests.ServiceDependencies{Repository: &stubHistory{logError: logFailure}, Details: newDetails()},
			options:      pullrequests.Options{RevisionRange: "nope..HEAD"},
			verify: func(testInstance *testing.T, runError error) {
				var rangeError pullrequests.InvalidRangeError
				require.ErrorAs(testInstance, runError, &rangeError)
				require.Equal(testInstance, "Invalid revision range: nope..HEAD", rangeError.Error())
				require.ErrorIs(testInstance, runError, logFailure)
			},
		},
		{
			name:         "web_without_browser",
			dependencies: pullrequests.ServiceDependencies{Repository: &stubHistory{subjects: []string{"#1"}}, Details: newDetails()},
			options:      pullrequests.Options{Web: true},
			verify: func(testInstance *testing.T, runError error) {
				require.ErrorIs(testInstance, runError, pullrequests.ErrBrowserNotConfigured)
			},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			service, serviceError := pullrequests.NewService(testCase.dependencies)
			require.NoError(testInstance, serviceError)
			_, runError := service.Run(context.Background(), testCase.options)
			testCase.verify(testInstance, runError)
		})
	}
}

func TestNewServiceValidation(testInstance *testing.T) {
	_, repositoryError := pullrequests.NewService(pullrequests.ServiceDependencies{Details: newDetails()})
	require.ErrorIs(testInstance, repositoryError, pullrequests.ErrRepositoryNotConfigured)
	_, detailsError := pullrequests.NewService(pullrequests.ServiceDependencies{Repository: &stubHistory{}})
	require.ErrorIs(testInstance, detailsError, pullrequests.ErrDetailSourceNotConfigured)
}
