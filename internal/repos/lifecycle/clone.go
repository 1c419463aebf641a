package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/gitutils/internal/gitconfig"
	"github.com/temirov/gitutils/internal/gitrepo"
	"github.com/temirov/gitutils/internal/repos/filesystem"
)

const (
	urlRequiredMessageConstant        = "repository URL required"
	alreadyExistsTemplateConstant     = "Directory already exists: %s\n"
	alreadyClonedMessageConstant      = "Repository already cloned"
	collisionPromptTemplateConstant   = "Directory already exists: %s. What do you want to do?"
	updatingTemplateConstant          = "Updating %s...\n"
	updatedTemplateConstant           = "Updated %s\n"
	removingTemplateConstant          = "Removing %s...\n"
	cloningTemplateConstant           = "Cloning %s to %s...\n"
	clonedTemplateConstant            = "Successfully cloned to %s\n"
	createParentOperationConstant     = "create directory"
	removeOperationConstant           = "remove"
	collisionDefaultedLogConstant     = "target exists without an interactive terminal, skipping"
	logFieldTargetPathConstant        = "target_path"
	parentDirectoryPermissionConstant = 0o755
)

// ErrURLRequired indicates Clone received an empty URL.
var ErrURLRequired = errors.New(urlRequiredMessageConstant)

// CloneOutcome names what Clone did.
type CloneOutcome string

// Clone outcomes.
const (
	CloneOutcomeCloned   CloneOutcome = CloneOutcome("cloned")
	CloneOutcomeSkipped  CloneOutcome = CloneOutcome("skipped")
	CloneOutcomeUpdated  CloneOutcome = CloneOutcome("updated")
	CloneOutcomeReplaced CloneOutcome = CloneOutcome("replaced")
	CloneOutcomeRenamed  CloneOutcome = CloneOutcome("renamed")
)

// CloneOptions configures Clone.
type CloneOptions struct {
	URL     string
	Shallow bool
	Bare    bool
	Branch  string
	// Interactive allows prompting for a collision policy.
	Interactive bool
	Collision   CollisionPolicy
}

// CloneResult describes the clone that was performed.
type CloneResult struct {
	URL        string
	TargetPath string
	Outcome    CloneOutcome
}

// Clone places the repository at its canonical path below the root, applying the collision policy
// when that path is taken. prefer-ssh rewrites HTTPS URLs to SSH before the path is derived.
func (service *Service) Clone(executionContext context.Context, options CloneOptions) (CloneResult, error) {
	repositoryURL := strings.TrimSpace(options.URL)
	if len(repositoryURL) == 0 {
		return CloneResult{}, ErrURLRequired
	}

	root, rootError := service.Root()
	if rootError != nil {
		return CloneResult{}, rootError
	}
	if gitconfig.BoolValue(service.configurationProvider, gitconfig.PreferSSHKey) {
		repositoryURL = gitrepo.ConvertToSSH(repositoryURL)
	}

	targetPath, _, targetError := service.TargetPath(root, repositoryURL)
	if targetError != nil {
		return CloneResult{}, targetError
	}
	result := CloneResult{URL: repositoryURL, TargetPath: targetPath}

	if !filesystem.Exists(service.fileSystem, targetPath) {
		result.Outcome = CloneOutcomeCloned
		return result, service.cloneInto(executionContext, options, repositoryURL, targetPath)
	}

	policy, policyError := service.resolveCollision(options, targetPath)
	if policyError != nil {
		return result, policyError
	}

	switch policy {
	case CollisionPolicyUpdate:
		result.Outcome = CloneOutcomeUpdated
		return result, service.update(executionContext, targetPath)
	case CollisionPolicyReplace:
		result.Outcome = CloneOutcomeReplaced
		fmt.Fprintf(service.output, removingTemplateConstant, targetPath)
		if removeError := service.fileSystem.RemoveAll(targetPath); removeError != nil {
			return result, gitrepo.IOFailureError{Operation: removeOperationConstant, Path: targetPath, Cause: removeError}
		}
		return result, service.cloneInto(executionContext, options, repositoryURL, targetPath)
	case CollisionPolicyRename:
		result.Outcome = CloneOutcomeRenamed
		result.TargetPath = NextAvailablePath(service.fileSystem, targetPath)
		return result, service.cloneInto(executionContext, options, repositoryURL, result.TargetPath)
	default:
		result.Outcome = CloneOutcomeSkipped
		fmt.Fprintf(service.output, alreadyExistsTemplateConstant, targetPath)
		fmt.Fprintln(service.output, alreadyClonedMessageConstant)
		return result, nil
	}
}

func (service *Service) resolveCollision(options CloneOptions, targetPath string) (CollisionPolicy, error) {
	if options.Collision != CollisionPolicyAsk {
		return options.Collision, nil
	}
	if !options.Interactive || service.prompter == nil {
		service.logger.Debug(collisionDefaultedLogConstant, zap.String(logFieldTargetPathConstant, targetPath))
		return CollisionPolicySkip, nil
	}

	selectedLabel, selectError := service.prompter.Select(fmt.Sprintf(collisionPromptTemplateConstant, targetPath), collisionChoiceLabelsInOrder())
	if selectError != nil {
		return CollisionPolicyAsk, selectError
	}
	return collisionPolicyForLabel(selectedLabel), nil
}

func (service *Service) update(executionContext context.Context, targetPath string) error {
	repository, openError := gitrepo.Open(targetPath, service.gitExecutor)
	if openError != nil {
		return openError
	}
	defer repository.Close()

	dirty, statusError := repository.IsDirty()
	if statusError != nil {
		return statusError
	}
	if dirty {
		return gitrepo.ErrDirtyWorkingTree
	}

	fmt.Fprintf(service.output, updatingTemplateConstant, targetPath)
	if pullError := repository.Pull(executionContext); pullError != nil {
		return pullError
	}
	fmt.Fprintf(service.output, updatedTemplateConstant, targetPath)
	return nil
}

func (service *Service) cloneInto(executionContext context.Context, options CloneOptions, repositoryURL string, targetPath string) error {
	parentDirectory := filepath.Dir(targetPath)
	if mkdirError := service.fileSystem.MkdirAll(parentDirectory, parentDirectoryPermissionConstant); mkdirError != nil {
		return gitrepo.IOFailureError{Operation: createParentOperationConstant, Path: parentDirectory, Cause: mkdirError}
	}

	fmt.Fprintf(service.output, cloningTemplateConstant, repositoryURL, targetPath)
	cloneError := service.cloner(executionContext, gitrepo.CloneOptions{
		URL:        repositoryURL,
		TargetPath: targetPath,
		Shallow:    options.Shallow,
		Bare:       options.Bare,
		Branch:     options.Branch,
		Token:      service.token,
	})
	if cloneError != nil {
		return cloneError
	}
	fmt.Fprintf(service.output, clonedTemplateConstant, targetPath)
	return nil
}
