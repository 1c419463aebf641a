package lifecycle

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/temirov/gitutils/internal/gitrepo"
	"github.com/temirov/gitutils/internal/repos/filesystem"
)

const (
	targetRequiredMessageConstant      = "either specify a repository path or use --interactive"
	noRepositoriesMessageConstant      = "no repositories found"
	repositoryNotFoundTemplateConstant = "repository not found: %s"
	notARepositoryTemplateConstant     = "%w: %s"
	selectRepositoryTitleConstant      = "Select repository to delete:"
	uncommittedWarningConstant         = "Warning: Repository has uncommitted changes"
	unpushedWarningConstant            = "Warning: Repository has unpushed commits"
	continuePromptConstant             = "Continue anyway?"
	wouldDeleteTemplateConstant        = "Would delete: %s\n"
	wouldDeletePathTemplateConstant    = "Path: %s\n"
	deletePromptTemplateConstant       = "Delete repository '%s'?"
	cancelledMessageConstant           = "Cancelled"
	deletedTemplateConstant            = "Deleted repository: %s\n"
	gitMetadataEntryNameConstant       = ".git"
	parentDirectoryReferenceConstant   = ".."
	currentDirectoryReferenceConstant  = "."
)

var (
	// ErrTargetRequired indicates Delete received neither a path nor an interactive request.
	ErrTargetRequired = errors.New(targetRequiredMessageConstant)
	// ErrNoRepositories indicates interactive selection found nothing below the root.
	ErrNoRepositories = errors.New(noRepositoriesMessageConstant)
)

// RepositoryNotFoundError reports a relative path that does not exist below the root.
type RepositoryNotFoundError struct {
	RelativePath string
}

// Error describes the missing repository.
func (notFoundError RepositoryNotFoundError) Error() string {
	return fmt.Sprintf(repositoryNotFoundTemplateConstant, notFoundError.RelativePath)
}

// DeleteOptions configures Delete.
type DeleteOptions struct {
	RelativePath string
	Interactive  bool
	// Force skips the uncommitted and unpushed checks.
	Force  bool
	DryRun bool
	// AssumeYes skips the final confirmation.
	AssumeYes bool
}

// DeleteResult describes the repository Delete resolved and whether it was removed.
type DeleteResult struct {
	RelativePath string
	AbsolutePath string
	Deleted      bool
}

// Delete removes a repository below the root after its safety checks pass. A declined prompt
// leaves the repository in place and is not an error.
func (service *Service) Delete(options DeleteOptions) (DeleteResult, error) {
	root, rootError := service.Root()
	if rootError != nil {
		return DeleteResult{}, rootError
	}
	if !filesystem.Exists(service.fileSystem, root) {
		return DeleteResult{}, RootMissingError{Path: root}
	}

	result, targetError := service.resolveDeleteTarget(root, options)
	if targetError != nil {
		return result, targetError
	}

	if _, statError := service.fileSystem.Lstat(filepath.Join(result.AbsolutePath, gitMetadataEntryNameConstant)); statError != nil {
		return result, fmt.Errorf(notARepositoryTemplateConstant, gitrepo.ErrNotARepository, result.RelativePath)
	}

	if !options.Force {
		proceed, checkError := service.confirmSafety(result.AbsolutePath, options)
		if checkError != nil || !proceed {
			return result, checkError
		}
	}

	if options.DryRun {
		fmt.Fprintf(service.output, wouldDeleteTemplateConstant, result.RelativePath)
		fmt.Fprintf(service.output, wouldDeletePathTemplateConstant, result.AbsolutePath)
		return result, nil
	}

	if !options.AssumeYes {
		confirmed, confirmError := service.confirm(fmt.Sprintf(deletePromptTemplateConstant, result.RelativePath))
		if confirmError != nil {
			return result, confirmError
		}
		if !confirmed {
			fmt.Fprintln(service.output, cancelledMessageConstant)
			return result, nil
		}
	}

	if removeError := service.fileSystem.RemoveAll(result.AbsolutePath); removeError != nil {
		return result, gitrepo.IOFailureError{Operation: removeOperationConstant, Path: result.AbsolutePath, Cause: removeError}
	}
	result.Deleted = true
	fmt.Fprintf(service.output, deletedTemplateConstant, result.RelativePath)
	return result, nil
}

func (service *Service) resolveDeleteTarget(root string, options DeleteOptions) (DeleteResult, error) {
	if options.Interactive {
		if service.prompter == nil {
			return DeleteResult{}, ErrPrompterNotConfigured
		}
		entries, scanError := service.scanner.Scan(root)
		if scanError != nil {
			return DeleteResult{}, scanError
		}
		labels := make([]string, 0, len(entries))
		for _, entry := range entries {
			if entry.RelativePath == currentDirectoryReferenceConstant {
				continue
			}
			labels = append(labels, entry.RelativePath)
		}
		if len(labels) == 0 {
			return DeleteResult{}, ErrNoRepositories
		}
		sort.Strings(labels)
		selected, selectError := service.prompter.Select(selectRepositoryTitleConstant, labels)
		if selectError != nil {
			return DeleteResult{}, selectError
		}
		return DeleteResult{RelativePath: selected, AbsolutePath: filepath.Join(root, selected)}, nil
	}

	relativePath := strings.TrimSpace(options.RelativePath)
	if len(relativePath) == 0 {
		return DeleteResult{}, ErrTargetRequired
	}

	absolutePath := filepath.Join(root, relativePath)
	cleanedRelative, contained := relativeWithinRoot(root, absolutePath)
	if !contained {
		return DeleteResult{}, RepositoryNotFoundError{RelativePath: relativePath}
	}
	if !filesystem.Exists(service.fileSystem, absolutePath) {
		return DeleteResult{}, RepositoryNotFoundError{RelativePath: relativePath}
	}
	return DeleteResult{RelativePath: cleanedRelative, AbsolutePath: absolutePath}, nil
}

// confirmSafety warns about uncommitted work and commits ahead of the upstream. Each warning needs
// confirmation, except during a dry run where warnings are only printed.
func (service *Service) confirmSafety(repositoryPath string, options DeleteOptions) (bool, error) {
	repository, openError := gitrepo.Open(repositoryPath, nil)
	if openError != nil {
		return false, openError
	}
	defer repository.Close()

	dirty, statusError := repository.IsDirty()
	if statusError != nil {
		return false, statusError
	}
	if dirty {
		proceed, warnError := service.warn(uncommittedWarningConstant, options)
		if warnError != nil || !proceed {
			return false, warnError
		}
	}

	aheadCount, aheadError := repository.AheadOfUpstream()
	if aheadError != nil {
		return false, aheadError
	}
	if aheadCount > 0 {
		return service.warn(unpushedWarningConstant, options)
	}
	return true, nil
}

func (service *Service) warn(warning string, options DeleteOptions) (bool, error) {
	fmt.Fprintln(service.errorOutput, warning)
	if options.DryRun {
		return true, nil
	}
	return service.confirm(continuePromptConstant)
}
