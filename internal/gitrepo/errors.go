package gitrepo

import (
	"errors"
	"fmt"
)

const (
	notARepositoryMessageConstant        = "not a git repository"
	detachedHeadMessageConstant          = "HEAD is detached; check out a branch first"
	baseBranchNotFoundMessageConstant    = "no base branch found (tried main, master, develop)"
	dirtyWorkingTreeMessageConstant      = "repository has uncommitted changes"
	unpushedCommitsMessageConstant       = "repository has unpushed commits"
	branchNotFoundTemplateConstant       = "branch '%s' not found"
	branchNotMergedTemplateConstant      = "branch '%s' is not merged into '%s'"
	invalidRepositoryURLTemplateConstant = "invalid repository URL %q: %s"
	ioFailureTemplateConstant            = "%s %s: %v"
)

var (
	// ErrNotARepository indicates the path is not inside a git repository.
	ErrNotARepository = errors.New(notARepositoryMessageConstant)
	// ErrDetachedHead indicates HEAD does not point at a named branch.
	ErrDetachedHead = errors.New(detachedHeadMessageConstant)
	// ErrBaseBranchNotFound indicates no configured or conventional base branch exists.
	ErrBaseBranchNotFound = errors.New(baseBranchNotFoundMessageConstant)
	// ErrDirtyWorkingTree indicates uncommitted changes in the working tree or index.
	ErrDirtyWorkingTree = errors.New(dirtyWorkingTreeMessageConstant)
	// ErrUnpushedCommits indicates the current branch is ahead of its upstream.
	ErrUnpushedCommits = errors.New(unpushedCommitsMessageConstant)
)

// BranchNotFoundError reports a missing local branch.
type BranchNotFoundError struct {
	BranchName string
}

// Error describes the missing branch.
func (notFoundError BranchNotFoundError) Error() string {
	return fmt.Sprintf(branchNotFoundTemplateConstant, notFoundError.BranchName)
}

// BranchNotMergedError reports a non-forced deletion of a branch whose work has not landed on the base.
type BranchNotMergedError struct {
	BranchName     string
	BaseBranchName string
}

// Error describes the unmerged branch.
func (notMergedError BranchNotMergedError) Error() string {
	return fmt.Sprintf(branchNotMergedTemplateConstant, notMergedError.BranchName, notMergedError.BaseBranchName)
}

// InvalidRepositoryURLError reports a clone URL that does not name a user and repository.
type InvalidRepositoryURLError struct {
	URL    string
	Reason string
}

// Error describes the invalid URL.
func (urlError InvalidRepositoryURLError) Error() string {
	return fmt.Sprintf(invalidRepositoryURLTemplateConstant, urlError.URL, urlError.Reason)
}

// IOFailureError wraps filesystem failures with the operation and path involved.
type IOFailureError struct {
	Operation string
	Path      string
	Cause     error
}

// Error describes the filesystem failure.
func (ioError IOFailureError) Error() string {
	return fmt.Sprintf(ioFailureTemplateConstant, ioError.Operation, ioError.Path, ioError.Cause)
}

// Unwrap exposes the underlying filesystem error.
func (ioError IOFailureError) Unwrap() error {
	return ioError.Cause
}
