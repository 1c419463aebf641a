package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
	"github.com/go-git/go-git/v5/storage/filesystem"

	"github.com/temirov/gitutils/internal/execshell"
)

const (
	defaultRemoteNameConstant                = "origin"
	gitBranchSubcommandConstant              = "branch"
	gitDeleteFlagConstant                    = "--delete"
	gitForceFlagConstant                     = "--force"
	gitPushSubcommandConstant                = "push"
	gitPullSubcommandConstant                = "pull"
	gitCheckoutSubcommandConstant            = "checkout"
	gitLogSubcommandConstant                 = "log"
	gitSubjectFormatFlagConstant             = "--format=%s"
	gitDescribeSubcommandConstant            = "describe"
	gitTagsFlagConstant                      = "--tags"
	gitAbbrevZeroFlagConstant                = "--abbrev=0"
	gitTerminalPromptEnvironmentNameConstant = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptDisabledValueConstant   = "0"
	executorNotConfiguredMessageConstant     = "git executor not configured"
	openRepositoryErrorTemplateConstant      = "failed to open repository at %s: %w"
	readHeadErrorTemplateConstant            = "failed to read HEAD: %w"
	listBranchesErrorTemplateConstant        = "failed to list local branches: %w"
	readCommitErrorTemplateConstant          = "failed to read commit %s: %w"
	ancestryErrorTemplateConstant            = "failed to compare %s with %s: %w"
	readStatusErrorTemplateConstant          = "failed to read working tree status: %w"
	readConfigErrorTemplateConstant          = "failed to read repository configuration: %w"
	walkHistoryErrorTemplateConstant         = "failed to walk history of %s: %w"
	remoteLookupErrorTemplateConstant        = "failed to read remote %s: %w"
	remoteWithoutURLTemplateConstant         = "remote %s has no URL"
)

// ErrGitExecutorNotConfigured indicates a mutation was requested on a repository opened without an executor.
var ErrGitExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)

// GitExecutor runs git commands.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// DeleteBranchOptions configures a local branch deletion.
type DeleteBranchOptions struct {
	BranchName     string
	BaseBranchName string
	Force          bool
}

// Repository is an opened local repository. It is owned by a single invocation and released by Close.
type Repository struct {
	repository       *git.Repository
	workingDirectory string
	metadata         billy.Filesystem
	executor         GitExecutor
}

// Open discovers the repository containing repositoryPath. The executor may be nil when only reads are needed.
func Open(repositoryPath string, executor GitExecutor) (*Repository, error) {
	openedRepository, openError := git.PlainOpenWithOptions(repositoryPath, &git.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if openError != nil {
		if errors.Is(openError, git.ErrRepositoryNotExists) {
			return nil, ErrNotARepository
		}
		return nil, fmt.Errorf(openRepositoryErrorTemplateConstant, repositoryPath, openError)
	}

	repository := &Repository{repository: openedRepository, executor: executor, workingDirectory: repositoryPath}
	if storage, isFilesystemStorage := openedRepository.Storer.(*filesystem.Storage); isFilesystemStorage {
		repository.metadata = storage.Filesystem()
		repository.workingDirectory = storage.Filesystem().Root()
	}
	if worktree, worktreeError := openedRepository.Worktree(); worktreeError == nil {
		repository.workingDirectory = worktree.Filesystem.Root()
	}

	return repository, nil
}

// Close releases the underlying storage.
func (repository *Repository) Close() error {
	if repository == nil || repository.repository == nil {
		return nil
	}
	if closer, isCloser := repository.repository.Storer.(io.Closer); isCloser {
		return closer.Close()
	}
	return nil
}

// Path returns the working tree root, or the git directory for bare repositories.
func (repository *Repository) Path() string {
	return repository.workingDirectory
}

// HeadBranch returns the branch HEAD symbolically points at, including unborn branches.
func (repository *Repository) HeadBranch() (string, error) {
	headReference, referenceError := repository.repository.Reference(plumbing.HEAD, false)
	if referenceError != nil {
		return "", fmt.Errorf(readHeadErrorTemplateConstant, referenceError)
	}
	if headReference.Type() != plumbing.SymbolicReference || !headReference.Target().IsBranch() {
		return "", ErrDetachedHead
	}
	return headReference.Target().Short(), nil
}

// LocalBranches lists local branch names in lexical order.
func (repository *Repository) LocalBranches() ([]string, error) {
	branchIterator, iteratorError := repository.repository.Branches()
	if iteratorError != nil {
		return nil, fmt.Errorf(listBranchesErrorTemplateConstant, iteratorError)
	}
	defer branchIterator.Close()

	var branchNames []string
	iterationError := branchIterator.ForEach(func(reference *plumbing.Reference) error {
		branchNames = append(branchNames, reference.Name().Short())
		return nil
	})
	if iterationError != nil {
		return nil, fmt.Errorf(listBranchesErrorTemplateConstant, iterationError)
	}

	sort.Strings(branchNames)
	return branchNames, nil
}

// BranchExists reports whether a local branch resolves to a commit.
func (repository *Repository) BranchExists(branchName string) bool {
	_, tipError := repository.branchTip(branchName)
	return tipError == nil
}

// RemoteBranchExists reports whether refs/remotes/<remote>/<branch> exists.
func (repository *Repository) RemoteBranchExists(remoteName string, branchName string) bool {
	_, referenceError := repository.repository.Reference(plumbing.NewRemoteReferenceName(remoteName, branchName), true)
	return referenceError == nil
}

// RemoteURL returns the first configured URL of the remote.
func (repository *Repository) RemoteURL(remoteName string) (string, error) {
	remote, remoteError := repository.repository.Remote(remoteName)
	if remoteError != nil {
		return "", fmt.Errorf(remoteLookupErrorTemplateConstant, remoteName, remoteError)
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", fmt.Errorf(remoteWithoutURLTemplateConstant, remoteName)
	}
	return urls[0], nil
}

// IsBranchAncestor reports whether the tip of ancestorBranch is reachable from, or equal to, the tip of descendantBranch.
func (repository *Repository) IsBranchAncestor(ancestorBranch string, descendantBranch string) (bool, error) {
	ancestorHash, ancestorError := repository.branchTip(ancestorBranch)
	if ancestorError != nil {
		return false, ancestorError
	}
	descendantHash, descendantError := repository.branchTip(descendantBranch)
	if descendantError != nil {
		return false, descendantError
	}
	return repository.isAncestor(ancestorHash, descendantHash)
}

// IsDirty reports uncommitted changes in the working tree or index. Bare repositories are never dirty.
func (repository *Repository) IsDirty() (bool, error) {
	worktree, worktreeError := repository.repository.Worktree()
	if errors.Is(worktreeError, git.ErrIsBareRepository) {
		return false, nil
	}
	if worktreeError != nil {
		return false, fmt.Errorf(readStatusErrorTemplateConstant, worktreeError)
	}

	status, statusError := worktree.Status()
	if statusError != nil {
		return false, fmt.Errorf(readStatusErrorTemplateConstant, statusError)
	}
	return !status.IsClean(), nil
}

// AheadOfUpstream counts commits on the current branch that its upstream does not contain.
// Detached HEAD and a missing upstream both count as zero.
func (repository *Repository) AheadOfUpstream() (int, error) {
	branchName, headError := repository.HeadBranch()
	if headError != nil {
		if errors.Is(headError, ErrDetachedHead) {
			return 0, nil
		}
		return 0, headError
	}

	localHash, localError := repository.branchTip(branchName)
	if localError != nil {
		return 0, nil
	}

	upstreamReferenceName, upstreamError := repository.upstreamReferenceName(branchName)
	if upstreamError != nil {
		return 0, upstreamError
	}
	upstreamReference, referenceError := repository.repository.Reference(upstreamReferenceName, true)
	if referenceError != nil {
		return 0, nil
	}

	upstreamHash := upstreamReference.Hash()
	if upstreamHash == localHash {
		return 0, nil
	}

	upstreamHistory, historyError := repository.reachableCommits(upstreamHash)
	if historyError != nil {
		return 0, historyError
	}

	commitIterator, logError := repository.repository.Log(&git.LogOptions{From: localHash})
	if logError != nil {
		return 0, fmt.Errorf(walkHistoryErrorTemplateConstant, branchName, logError)
	}
	defer commitIterator.Close()

	aheadCount := 0
	iterationError := commitIterator.ForEach(func(commit *object.Commit) error {
		if _, reachable := upstreamHistory[commit.Hash]; reachable {
			return nil
		}
		aheadCount++
		return nil
	})
	if iterationError != nil {
		return 0, fmt.Errorf(walkHistoryErrorTemplateConstant, branchName, iterationError)
	}

	return aheadCount, nil
}

// Checkout switches the working tree to the branch using the git executable so the reflog records the move.
func (repository *Repository) Checkout(executionContext context.Context, branchName string) error {
	return repository.runGit(executionContext, nil, gitCheckoutSubcommandConstant, branchName)
}

// DeleteBranch removes a local branch. Without Force the branch tip must be reachable from BaseBranchName;
// the check runs here regardless of any filtering the caller already applied.
// git is always invoked with --force so the base branch check above is the only merge gate.
func (repository *Repository) DeleteBranch(executionContext context.Context, options DeleteBranchOptions) error {
	if !repository.BranchExists(options.BranchName) {
		return BranchNotFoundError{BranchName: options.BranchName}
	}

	if !options.Force {
		merged, mergeError := repository.IsBranchAncestor(options.BranchName, options.BaseBranchName)
		if mergeError != nil || !merged {
			return BranchNotMergedError{BranchName: options.BranchName, BaseBranchName: options.BaseBranchName}
		}
	}

	return repository.runGit(executionContext, nil, gitBranchSubcommandConstant, gitDeleteFlagConstant, gitForceFlagConstant, options.BranchName)
}

// DeleteRemoteBranch deletes the branch on the remote with git push --delete.
func (repository *Repository) DeleteRemoteBranch(executionContext context.Context, remoteName string, branchName string) error {
	return repository.runGit(executionContext, nonInteractiveEnvironment(), gitPushSubcommandConstant, remoteName, gitDeleteFlagConstant, branchName)
}

// Pull runs git pull in the working tree.
func (repository *Repository) Pull(executionContext context.Context) error {
	return repository.runGit(executionContext, nonInteractiveEnvironment(), gitPullSubcommandConstant)
}

// CommitSubjects returns commit subjects for the revision range, newest first.
func (repository *Repository) CommitSubjects(executionContext context.Context, revisionRange string) ([]string, error) {
	if repository.executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	executionResult, executionError := repository.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitLogSubcommandConstant, gitSubjectFormatFlagConstant, revisionRange},
		WorkingDirectory: repository.workingDirectory,
	})
	if executionError != nil {
		return nil, executionError
	}

	var subjects []string
	for _, line := range strings.Split(executionResult.StandardOutput, "\n") {
		trimmedLine := strings.TrimSpace(line)
		if len(trimmedLine) > 0 {
			subjects = append(subjects, trimmedLine)
		}
	}
	return subjects, nil
}

// LatestTag returns the most recent tag reachable from HEAD.
func (repository *Repository) LatestTag(executionContext context.Context) (string, bool) {
	if repository.executor == nil {
		return "", false
	}
	executionResult, executionError := repository.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitDescribeSubcommandConstant, gitTagsFlagConstant, gitAbbrevZeroFlagConstant},
		WorkingDirectory: repository.workingDirectory,
	})
	if executionError != nil {
		return "", false
	}
	tag := strings.TrimSpace(executionResult.StandardOutput)
	return tag, len(tag) > 0
}

func (repository *Repository) runGit(executionContext context.Context, environment map[string]string, arguments ...string) error {
	if repository.executor == nil {
		return ErrGitExecutorNotConfigured
	}
	_, executionError := repository.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:            arguments,
		WorkingDirectory:     repository.workingDirectory,
		EnvironmentVariables: environment,
	})
	return executionError
}

func (repository *Repository) branchTip(branchName string) (plumbing.Hash, error) {
	reference, referenceError := repository.repository.Reference(plumbing.NewBranchReferenceName(branchName), true)
	if referenceError != nil {
		return plumbing.ZeroHash, BranchNotFoundError{BranchName: branchName}
	}
	return reference.Hash(), nil
}

func (repository *Repository) isAncestor(ancestorHash plumbing.Hash, descendantHash plumbing.Hash) (bool, error) {
	if ancestorHash == descendantHash {
		return true, nil
	}

	ancestorCommit, ancestorError := repository.repository.CommitObject(ancestorHash)
	if ancestorError != nil {
		return false, fmt.Errorf(readCommitErrorTemplateConstant, ancestorHash, ancestorError)
	}
	descendantCommit, descendantError := repository.repository.CommitObject(descendantHash)
	if descendantError != nil {
		return false, fmt.Errorf(readCommitErrorTemplateConstant, descendantHash, descendantError)
	}

	isAncestor, ancestryError := ancestorCommit.IsAncestor(descendantCommit)
	if ancestryError != nil {
		return false, fmt.Errorf(ancestryErrorTemplateConstant, ancestorHash, descendantHash, ancestryError)
	}
	return isAncestor, nil
}

func (repository *Repository) upstreamReferenceName(branchName string) (plumbing.ReferenceName, error) {
	configuration, configurationError := repository.repository.Config()
	if configurationError != nil {
		return "", fmt.Errorf(readConfigErrorTemplateConstant, configurationError)
	}

	if branchConfiguration, configured := configuration.Branches[branchName]; configured && branchConfiguration != nil {
		remoteName := strings.TrimSpace(branchConfiguration.Remote)
		mergeReference := branchConfiguration.Merge
		if len(remoteName) > 0 && mergeReference.IsBranch() {
			return plumbing.NewRemoteReferenceName(remoteName, mergeReference.Short()), nil
		}
	}

	return plumbing.NewRemoteReferenceName(defaultRemoteNameConstant, branchName), nil
}

func (repository *Repository) reachableCommits(fromHash plumbing.Hash) (map[plumbing.Hash]struct{}, error) {
	commitIterator, logError := repository.repository.Log(&git.LogOptions{From: fromHash})
	if logError != nil {
		return nil, fmt.Errorf(walkHistoryErrorTemplateConstant, fromHash, logError)
	}
	defer commitIterator.Close()

	reachable := make(map[plumbing.Hash]struct{})
	iterationError := commitIterator.ForEach(func(commit *object.Commit) error {
		reachable[commit.Hash] = struct{}{}
		return nil
	})
	if iterationError != nil && !errors.Is(iterationError, storer.ErrStop) {
		return nil, fmt.Errorf(walkHistoryErrorTemplateConstant, fromHash, iterationError)
	}
	return reachable, nil
}

func nonInteractiveEnvironment() map[string]string {
	return map[string]string{gitTerminalPromptEnvironmentNameConstant: gitTerminalPromptDisabledValueConstant}
}
