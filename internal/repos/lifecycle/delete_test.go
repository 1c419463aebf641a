package lifecycle_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/gitutils/internal/gitconfig"
	"github.com/temirov/gitutils/internal/gitrepo"
	"github.com/temirov/gitutils/internal/gitrepo/testsupport"
	"github.com/temirov/gitutils/internal/prompt"
	"github.com/temirov/gitutils/internal/repos/lifecycle"
)

var toolRelativePath = filepath.Join("github.com", "alice", "tool")

func (fixture *lifecycleFixture) committedRepository(testInstance *testing.T) *testsupport.RepositoryBuilder {
	testInstance.Helper()
	repositoryBuilder := testsupport.NewRepositoryAt(testInstance, fixture.path(toolRelativePath))
	repositoryBuilder.Commit("README.md", "hello", "initial")
	return repositoryBuilder
}

func TestDeleteCleanRepositoryAfterConfirmation(testInstance *testing.T) {
	fixture := newLifecycleFixture(testInstance, nil)
	repositoryBuilder := fixture.committedRepository(testInstance)
	fixture.prompter.confirmations = []bool{true}

	result, deleteError := fixture.service.Delete(lifecycle.DeleteOptions{RelativePath: toolRelativePath})
	require.NoError(testInstance, deleteError)
	require.True(testInstance, result.Deleted)
	require.NoDirExists(testInstance, repositoryBuilder.Path)
	require.Equal(testInstance, []string{"Delete repository '" + toolRelativePath + "'?"}, fixture.prompter.confirmed)
	require.Equal(testInstance, "Deleted repository: "+toolRelativePath+"\n", fixture.output.String())
	require.Empty(testInstance, fixture.errorOutput.String())
}

func TestDeleteDeclinedFinalConfirmation(testInstance *testing.T) {
	fixture := newLifecycleFixture(testInstance, nil)
	repositoryBuilder := fixture.committedRepository(testInstance)

	result, deleteError := fixture.service.Delete(lifecycle.DeleteOptions{RelativePath: toolRelativePath})
	require.NoError(testInstance, deleteError)
	require.False(testInstance, result.Deleted)
	require.DirExists(testInstance, repositoryBuilder.Path)
	require.Equal(testInstance, "Cancelled\n", fixture.output.String())
}

func TestDeleteWarnings(testInstance *testing.T) {
	testCases := []struct {
		name                 string
		prepare              func(*testsupport.RepositoryBuilder)
		options              lifecycle.DeleteOptions
		confirmations        []bool
		expectedDeleted      bool
		expectedPrompts      []string
		expectedWarnings     string
		expectedOutputPrefix string
		expectRepositoryKept bool
	}{
		{
			name:                 "dirty_declined",
			prepare:              func(builder *testsupport.RepositoryBuilder) { builder.WriteFile("README.md", "edited") },
			options:              lifecycle.DeleteOptions{RelativePath: toolRelativePath},
			confirmations:        []bool{false},
			expectedPrompts:      []string{"Continue anyway?"},
			expectedWarnings:     "Warning: Repository has uncommitted changes\n",
			expectRepositoryKept: true,
		},
		{
			name:             "dirty_accepted",
			prepare:          func(builder *testsupport.RepositoryBuilder) { builder.WriteFile("README.md", "edited") },
			options:          lifecycle.DeleteOptions{RelativePath: toolRelativePath},
			confirmations:    []bool{true, true},
			expectedDeleted:  true,
			expectedPrompts:  []string{"Continue anyway?", "Delete repository '" + toolRelativePath + "'?"},
			expectedWarnings: "Warning: Repository has uncommitted changes\n",
		},
		{
			name: "unpushed_declined",
			prepare: func(builder *testsupport.RepositoryBuilder) {
				builder.SetRemoteBranch("origin", "main", builder.BranchHash("main"))
				builder.Commit("local.txt", "local", "local work")
			},
			options:              lifecycle.DeleteOptions{RelativePath: toolRelativePath},
			confirmations:        []bool{false},
			expectedPrompts:      []string{"Continue anyway?"},
			expectedWarnings:     "Warning: Repository has unpushed commits\n",
			expectRepositoryKept: true,
		},
		{
			name: "force_skips_checks",
			prepare: func(builder *testsupport.RepositoryBuilder) {
				builder.SetRemoteBranch("origin", "main", builder.BranchHash("main"))
				builder.Commit("local.txt", "local", "local work")
				builder.WriteFile("README.md", "edited")
			},
			options:         lifecycle.DeleteOptions{RelativePath: toolRelativePath, Force: true},
			confirmations:   []bool{true},
			expectedDeleted: true,
			expectedPrompts: []string{"Delete repository '" + toolRelativePath + "'?"},
		},
		{
			name:                 "dry_run_prints_warnings_without_prompting",
			prepare:              func(builder *testsupport.RepositoryBuilder) { builder.WriteFile("README.md", "edited") },
			options:              lifecycle.DeleteOptions{RelativePath: toolRelativePath, DryRun: true},
			expectedWarnings:     "Warning: Repository has uncommitted changes\n",
			expectedOutputPrefix: "Would delete: " + toolRelativePath + "\nPath: ",
			expectRepositoryKept: true,
		},
		{
			name:            "assume_yes_skips_final_confirmation",
			options:         lifecycle.DeleteOptions{RelativePath: toolRelativePath, AssumeYes: true},
			expectedDeleted: true,
		},
		{
			name: "missing_upstream_is_not_ahead",
			prepare: func(builder *testsupport.RepositoryBuilder) {
				builder.Commit("local.txt", "local", "local work")
			},
			options:         lifecycle.DeleteOptions{RelativePath: toolRelativePath},
			confirmations:   []bool{true},
			expectedDeleted: true,
			expectedPrompts: []string{"Delete repository '" + toolRelativePath + "'?"},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			fixture := newLifecycleFixture(testInstance, nil)
			repositoryBuilder := fixture.committedRepository(testInstance)
			if testCase.prepare != nil {
				testCase.prepare(repositoryBuilder)
			}
			fixture.prompter.confirmations = testCase.confirmations

			result, deleteError := fixture.service.Delete(testCase.options)
			require.NoError(testInstance, deleteError)
			require.Equal(testInstance, testCase.expectedDeleted, result.Deleted)
			require.Equal(testInstance, testCase.expectedPrompts, fixture.prompter.confirmed)
			require.Equal(testInstance, testCase.expectedWarnings, fixture.errorOutput.String())
			if len(testCase.expectedOutputPrefix) > 0 {
				require.Equal(testInstance, testCase.expectedOutputPrefix+repositoryBuilder.Path+"\n", fixture.output.String())
			}
			if testCase.expectRepositoryKept {
				require.DirExists(testInstance, repositoryBuilder.Path)
			} else {
				require.NoDirExists(testInstance, repositoryBuilder.Path)
			}
		})
	}
}

func TestDeleteTargetResolutionErrors(testInstance *testing.T) {
	fixture := newLifecycleFixture(testInstance, nil)
	require.NoError(testInstance, os.MkdirAll(fixture.path("github.com", "alice", "plain"), directoryPermissions))

	_, deleteError := fixture.service.Delete(lifecycle.DeleteOptions{})
	require.ErrorIs(testInstance, deleteError, lifecycle.ErrTargetRequired)

	_, deleteError = fixture.service.Delete(lifecycle.DeleteOptions{RelativePath: "github.com/alice/absent"})
	require.Equal(testInstance, lifecycle.RepositoryNotFoundError{RelativePath: "github.com/alice/absent"}, deleteError)

	_, deleteError = fixture.service.Delete(lifecycle.DeleteOptions{RelativePath: "../outside"})
	var notFound lifecycle.RepositoryNotFoundError
	require.True(testInstance, errors.As(deleteError, &notFound))

	_, deleteError = fixture.service.Delete(lifecycle.DeleteOptions{RelativePath: "github.com/alice/plain"})
	require.ErrorIs(testInstance, deleteError, gitrepo.ErrNotARepository)
	require.DirExists(testInstance, fixture.path("github.com", "alice", "plain"))

	missingRoot := filepath.Join(fixture.root, "absent")
	missingFixture := newLifecycleFixture(testInstance, gitconfig.MapProvider{gitconfig.RepositoryRootKey: missingRoot})
	_, deleteError = missingFixture.service.Delete(lifecycle.DeleteOptions{RelativePath: toolRelativePath})
	require.EqualError(testInstance, deleteError, "repository root does not exist: "+missingRoot)
}

func TestDeleteInteractiveSelection(testInstance *testing.T) {
	fixture := newLifecycleFixture(testInstance, nil)
	fixture.committedRepository(testInstance)
	secondRepository := testsupport.NewRepositoryAt(testInstance, fixture.path("gitlab.com", "bob", "service"))
	secondRepository.Commit("README.md", "hello", "initial")
	fixture.prompter.selection = filepath.Join("gitlab.com", "bob", "service")
	fixture.prompter.confirmations = []bool{true}

	result, deleteError := fixture.service.Delete(lifecycle.DeleteOptions{Interactive: true})
	require.NoError(testInstance, deleteError)
	require.True(testInstance, result.Deleted)
	require.Equal(testInstance, []string{"Select repository to delete:"}, fixture.prompter.selectTitles)
	require.Equal(testInstance, [][]string{{toolRelativePath, filepath.Join("gitlab.com", "bob", "service")}}, fixture.prompter.selectOptions)
	require.NoDirExists(testInstance, secondRepository.Path)
	require.DirExists(testInstance, fixture.path(toolRelativePath))
}

func TestDeleteInteractiveHandlesEmptyTreeAndAbort(testInstance *testing.T) {
	fixture := newLifecycleFixture(testInstance, nil)
	_, deleteError := fixture.service.Delete(lifecycle.DeleteOptions{Interactive: true})
	require.ErrorIs(testInstance, deleteError, lifecycle.ErrNoRepositories)

	fixture.committedRepository(testInstance)
	fixture.prompter.selectError = prompt.ErrAborted
	_, deleteError = fixture.service.Delete(lifecycle.DeleteOptions{Interactive: true})
	require.ErrorIs(testInstance, deleteError, prompt.ErrAborted)
	require.DirExists(testInstance, fixture.path(toolRelativePath))
}
