// Package testsupport builds throwaway git repositories and stub executors for tests.
package testsupport

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"

	"github.com/temirov/gitutils/internal/execshell"
)

const (
	defaultBranchNameConstant       = "main"
	authorNameConstant              = "Test Author"
	authorEmailConstant             = "author@example.com"
	fileModeConstant                = 0o644
	directoryModeConstant           = 0o755
	reflogDirectoryConstant         = "logs"
	reflogFileConstant              = "HEAD"
	reflogLineTemplateConstant      = "%s %s %s <%s> %d +0000\t%s\n"
	checkoutMessageTemplateConstant = "checkout: moving from %s to %s"
)

var baseCommitTime = time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)

// RepositoryBuilder drives a go-git repository created in a temporary directory.
type RepositoryBuilder struct {
	testingInstance testing.TB
	Path            string
	Repository      *git.Repository
	commitCount     int
}

// NewRepository initializes a repository whose HEAD points at an unborn main branch.
func NewRepository(testingInstance testing.TB) *RepositoryBuilder {
	testingInstance.Helper()
	return NewRepositoryAt(testingInstance, testingInstance.TempDir())
}

// NewRepositoryAt initializes a repository at the provided path.
func NewRepositoryAt(testingInstance testing.TB, repositoryPath string) *RepositoryBuilder {
	testingInstance.Helper()
	require.NoError(testingInstance, os.MkdirAll(repositoryPath, directoryModeConstant))
	repository, initError := git.PlainInitWithOptions(repositoryPath, &git.PlainInitOptions{
		InitOptions: git.InitOptions{DefaultBranch: plumbing.NewBranchReferenceName(defaultBranchNameConstant)},
	})
	require.NoError(testingInstance, initError)
	return &RepositoryBuilder{testingInstance: testingInstance, Path: repositoryPath, Repository: repository}
}

// Commit writes fileName with content, stages it, and commits on the current branch.
func (builder *RepositoryBuilder) Commit(fileName string, content string, message string) plumbing.Hash {
	builder.testingInstance.Helper()
	builder.WriteFile(fileName, content)

	worktree, worktreeError := builder.Repository.Worktree()
	require.NoError(builder.testingInstance, worktreeError)
	_, addError := worktree.Add(fileName)
	require.NoError(builder.testingInstance, addError)

	builder.commitCount++
	commitHash, commitError := worktree.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  authorNameConstant,
			Email: authorEmailConstant,
			When:  baseCommitTime.Add(time.Duration(builder.commitCount) * time.Minute),
		},
	})
	require.NoError(builder.testingInstance, commitError)
	return commitHash
}

// WriteFile writes a file in the working tree without staging it.
func (builder *RepositoryBuilder) WriteFile(fileName string, content string) {
	builder.testingInstance.Helper()
	filePath := filepath.Join(builder.Path, fileName)
	require.NoError(builder.testingInstance, os.MkdirAll(filepath.Dir(filePath), directoryModeConstant))
	require.NoError(builder.testingInstance, os.WriteFile(filePath, []byte(content), fileModeConstant))
}

// CreateBranch points a new local branch at the current HEAD commit.
func (builder *RepositoryBuilder) CreateBranch(branchName string) {
	builder.testingInstance.Helper()
	headReference, headError := builder.Repository.Head()
	require.NoError(builder.testingInstance, headError)
	builder.SetBranch(branchName, headReference.Hash())
}

// SetBranch points a local branch at the commit.
func (builder *RepositoryBuilder) SetBranch(branchName string, commitHash plumbing.Hash) {
	builder.testingInstance.Helper()
	reference := plumbing.NewHashReference(plumbing.NewBranchReferenceName(branchName), commitHash)
	require.NoError(builder.testingInstance, builder.Repository.Storer.SetReference(reference))
}

// SetRemoteBranch creates refs/remotes/<remote>/<branch> at the commit.
func (builder *RepositoryBuilder) SetRemoteBranch(remoteName string, branchName string, commitHash plumbing.Hash) {
	builder.testingInstance.Helper()
	reference := plumbing.NewHashReference(plumbing.NewRemoteReferenceName(remoteName, branchName), commitHash)
	require.NoError(builder.testingInstance, builder.Repository.Storer.SetReference(reference))
}

// Checkout switches the working tree to an existing local branch.
func (builder *RepositoryBuilder) Checkout(branchName string) {
	builder.testingInstance.Helper()
	worktree, worktreeError := builder.Repository.Worktree()
	require.NoError(builder.testingInstance, worktreeError)
	require.NoError(builder.testingInstance, worktree.Checkout(&git.CheckoutOptions{Branch: plumbing.NewBranchReferenceName(branchName)}))
}

// DetachHead points HEAD directly at the commit.
func (builder *RepositoryBuilder) DetachHead(commitHash plumbing.Hash) {
	builder.testingInstance.Helper()
	require.NoError(builder.testingInstance, builder.Repository.Storer.SetReference(plumbing.NewHashReference(plumbing.HEAD, commitHash)))
}

// AddRemote configures a remote with a single URL.
func (builder *RepositoryBuilder) AddRemote(remoteName string, remoteURL string) {
	builder.testingInstance.Helper()
	_, remoteError := builder.Repository.CreateRemote(&config.RemoteConfig{Name: remoteName, URLs: []string{remoteURL}})
	require.NoError(builder.testingInstance, remoteError)
}

// RecordCheckouts appends HEAD reflog entries for each consecutive pair of branch names, oldest first.
func (builder *RepositoryBuilder) RecordCheckouts(branchNames ...string) {
	builder.testingInstance.Helper()
	reflogDirectory := filepath.Join(builder.Path, git.GitDirName, reflogDirectoryConstant)
	require.NoError(builder.testingInstance, os.MkdirAll(reflogDirectory, directoryModeConstant))

	reflogFile, openError := os.OpenFile(filepath.Join(reflogDirectory, reflogFileConstant), os.O_APPEND|os.O_CREATE|os.O_WRONLY, fileModeConstant)
	require.NoError(builder.testingInstance, openError)
	defer reflogFile.Close()

	zeroHash := plumbing.ZeroHash.String()
	for index := 1; index < len(branchNames); index++ {
		message := fmt.Sprintf(checkoutMessageTemplateConstant, branchNames[index-1], branchNames[index])
		line := fmt.Sprintf(reflogLineTemplateConstant, zeroHash, zeroHash, authorNameConstant, authorEmailConstant, baseCommitTime.Unix()+int64(index), message)
		_, writeError := reflogFile.WriteString(line)
		require.NoError(builder.testingInstance, writeError)
	}
}

// BranchHash resolves a local branch to its commit.
func (builder *RepositoryBuilder) BranchHash(branchName string) plumbing.Hash {
	builder.testingInstance.Helper()
	reference, referenceError := builder.Repository.Reference(plumbing.NewBranchReferenceName(branchName), true)
	require.NoError(builder.testingInstance, referenceError)
	return reference.Hash()
}

// GitExecutorStub records git invocations and fails those whose arguments contain a configured marker.
type GitExecutorStub struct {
	Recorded []execshell.CommandDetails
	// Failures maps an argument (for example a branch name) to the error returned when it is present.
	Failures map[string]error
	// Outputs maps the first argument (the subcommand) to the standard output returned for it.
	Outputs map[string]string
}

// ExecuteGit records the invocation and returns the configured output or failure.
func (stub *GitExecutorStub) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	stub.Recorded = append(stub.Recorded, details)
	for _, argument := range details.Arguments {
		if failure, configured := stub.Failures[argument]; configured {
			return execshell.ExecutionResult{}, failure
		}
	}
	if len(details.Arguments) > 0 {
		if output, configured := stub.Outputs[details.Arguments[0]]; configured {
			return execshell.ExecutionResult{StandardOutput: output}, nil
		}
	}
	return execshell.ExecutionResult{}, nil
}

// RecordedArguments returns the joined argument lists of every recorded invocation.
func (stub *GitExecutorStub) RecordedArguments() []string {
	joined := make([]string, 0, len(stub.Recorded))
	for _, details := range stub.Recorded {
		joined = append(joined, strings.Join(details.Arguments, " "))
	}
	return joined
}
