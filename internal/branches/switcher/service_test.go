package switcher_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/gitutils/internal/branches/switcher"
	"github.com/temirov/gitutils/internal/gitconfig"
	"github.com/temirov/gitutils/internal/gitrepo"
	"github.com/temirov/gitutils/internal/gitrepo/testsupport"
	"github.com/temirov/gitutils/internal/prompt"
)

type selectingPrompter struct {
	choice  int
	err     error
	title   string
	options []string
}

func (prompter *selectingPrompter) Confirm(string) (bool, error) {
	return false, errors.New("unexpected confirm")
}

func (prompter *selectingPrompter) Select(title string, options []string) (string, error) {
	prompter.title = title
	prompter.options = append([]string(nil), options...)
	if prompter.err != nil {
		return "", prompter.err
	}
	return options[prompter.choice], nil
}

type switchFixture struct {
	builder  *testsupport.RepositoryBuilder
	executor *testsupport.GitExecutorStub
	output   *bytes.Buffer
}

// newSwitchFixture builds main with two commits, "done" at the first commit and "wip" with its own commit.
func newSwitchFixture(testInstance *testing.T) *switchFixture {
	testInstance.Helper()
	builder := testsupport.NewRepository(testInstance)
	builder.Commit("README.md", "hello", "initial")
	builder.CreateBranch("done")
	builder.CreateBranch("wip")
	builder.Checkout("wip")
	builder.Commit("wip.txt", "wip", "work in progress")
	builder.Checkout("main")
	builder.Commit("trunk.txt", "trunk", "trunk work")

	return &switchFixture{
		builder:  builder,
		executor: &testsupport.GitExecutorStub{Failures: map[string]error{}},
		output:   &bytes.Buffer{},
	}
}

func (fixture *switchFixture) service(testInstance *testing.T, prompter prompt.Prompter, provider gitconfig.Provider) *switcher.Service {
	testInstance.Helper()
	repository, openError := gitrepo.Open(fixture.builder.Path, fixture.executor)
	require.NoError(testInstance, openError)
	testInstance.Cleanup(func() { _ = repository.Close() })

	service, serviceError := switcher.NewService(switcher.ServiceDependencies{
		Repository:            repository,
		Prompter:              prompter,
		ConfigurationProvider: provider,
		Output:                fixture.output,
	})
	require.NoError(testInstance, serviceError)
	return service
}

func TestNewServiceValidatesDependencies(testInstance *testing.T) {
	_, serviceError := switcher.NewService(switcher.ServiceDependencies{Prompter: &selectingPrompter{}})
	require.ErrorIs(testInstance, serviceError, switcher.ErrRepositoryNotConfigured)

	fixture := newSwitchFixture(testInstance)
	repository, openError := gitrepo.Open(fixture.builder.Path, nil)
	require.NoError(testInstance, openError)
	defer repository.Close()

	_, serviceError = switcher.NewService(switcher.ServiceDependencies{Repository: repository})
	require.ErrorIs(testInstance, serviceError, switcher.ErrPrompterNotConfigured)
}

func TestCandidates(testInstance *testing.T) {
	testCases := []struct {
		name           string
		options        switcher.Options
		checkouts      []string
		provider       gitconfig.Provider
		expectedLabels []string
	}{
		{
			name:           "all_local_branches_except_current",
			options:        switcher.Options{},
			expectedLabels: []string{"done [merged]", "wip"},
		},
		{
			name:           "substring_pattern",
			options:        switcher.Options{Pattern: "wi"},
			expectedLabels: []string{"wip"},
		},
		{
			name:           "fuzzy_pattern",
			options:        switcher.Options{Pattern: "dn", Fuzzy: true},
			expectedLabels: []string{"done [merged]"},
		},
		{
			name:           "merged_only",
			options:        switcher.Options{MergedOnly: true},
			expectedLabels: []string{"done [merged]"},
		},
		{
			name:           "unmerged_only",
			options:        switcher.Options{UnmergedOnly: true},
			expectedLabels: []string{"wip"},
		},
		{
			name:           "recent_order",
			options:        switcher.Options{Recent: true},
			checkouts:      []string{"main", "done", "wip", "main"},
			expectedLabels: []string{"wip", "done [merged]"},
		},
		{
			name:           "missing_base_drops_labels",
			options:        switcher.Options{},
			provider:       gitconfig.MapProvider{gitconfig.BaseBranchKey: "missing"},
			expectedLabels: []string{"done", "wip"},
		},
		{
			name:           "missing_base_excludes_filtered_branches",
			options:        switcher.Options{UnmergedOnly: true},
			provider:       gitconfig.MapProvider{gitconfig.BaseBranchKey: "missing"},
			expectedLabels: []string{},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			fixture := newSwitchFixture(testInstance)
			if len(testCase.checkouts) > 0 {
				fixture.builder.RecordCheckouts(testCase.checkouts...)
			}
			provider := testCase.provider
			if provider == nil {
				provider = gitconfig.MapProvider{}
			}
			service := fixture.service(testInstance, &selectingPrompter{}, provider)

			labels, candidatesError := service.Candidates(testCase.options)
			require.NoError(testInstance, candidatesError)
			require.Equal(testInstance, testCase.expectedLabels, labels)
		})
	}
}

func TestCandidatesRejectsConflictingFilters(testInstance *testing.T) {
	fixture := newSwitchFixture(testInstance)
	service := fixture.service(testInstance, &selectingPrompter{}, gitconfig.MapProvider{})

	_, candidatesError := service.Candidates(switcher.Options{MergedOnly: true, UnmergedOnly: true})
	require.ErrorIs(testInstance, candidatesError, switcher.ErrConflictingMergeFilters)
}

func TestRunChecksOutSelectedBranch(testInstance *testing.T) {
	fixture := newSwitchFixture(testInstance)
	prompter := &selectingPrompter{choice: 0}
	service := fixture.service(testInstance, prompter, gitconfig.MapProvider{})

	result, runError := service.Run(context.Background(), switcher.Options{})
	require.NoError(testInstance, runError)
	require.Equal(testInstance, switcher.Result{BranchName: "done", Switched: true}, result)
	require.Equal(testInstance, "Select a branch:", prompter.title)
	require.Equal(testInstance, []string{"done [merged]", "wip"}, prompter.options)
	require.Equal(testInstance, []string{"checkout done"}, fixture.executor.RecordedArguments())
	require.Equal(testInstance, "Switched to branch 'done'\n", fixture.output.String())
}

func TestRunReportsEmptyCandidates(testInstance *testing.T) {
	fixture := newSwitchFixture(testInstance)
	prompter := &selectingPrompter{}
	service := fixture.service(testInstance, prompter, gitconfig.MapProvider{})

	result, runError := service.Run(context.Background(), switcher.Options{Pattern: "nothing-matches"})
	require.NoError(testInstance, runError)
	require.False(testInstance, result.Switched)
	require.Empty(testInstance, prompter.title)
	require.Equal(testInstance, "No branches found\n", fixture.output.String())
}

func TestRunPropagatesPromptAbort(testInstance *testing.T) {
	fixture := newSwitchFixture(testInstance)
	service := fixture.service(testInstance, &selectingPrompter{err: prompt.ErrAborted}, gitconfig.MapProvider{})

	_, runError := service.Run(context.Background(), switcher.Options{})
	require.ErrorIs(testInstance, runError, prompt.ErrAborted)
	require.Empty(testInstance, fixture.executor.Recorded)
}

func TestRunReturnsCheckoutFailure(testInstance *testing.T) {
	fixture := newSwitchFixture(testInstance)
	checkoutFailure := errors.New("local changes would be overwritten")
	fixture.executor.Failures["wip"] = checkoutFailure
	service := fixture.service(testInstance, &selectingPrompter{choice: 1}, gitconfig.MapProvider{})

	result, runError := service.Run(context.Background(), switcher.Options{})
	require.ErrorIs(testInstance, runError, checkoutFailure)
	require.Equal(testInstance, switcher.Result{BranchName: "wip"}, result)
	require.Empty(testInstance, fixture.output.String())
}
