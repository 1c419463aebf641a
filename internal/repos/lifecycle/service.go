package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/gitutils/internal/gitconfig"
	"github.com/temirov/gitutils/internal/gitrepo"
	"github.com/temirov/gitutils/internal/prompt"
	"github.com/temirov/gitutils/internal/repos/discovery"
	"github.com/temirov/gitutils/internal/repos/filesystem"
	pathutils "github.com/temirov/gitutils/internal/utils/path"
)

const (
	configurationMissingMessageConstant = "repository lifecycle configuration provider not configured"
	prompterMissingMessageConstant      = "repository lifecycle prompter not configured"
	rootNotConfiguredMessageConstant    = "git-repo.root not configured. Run 'git config --global git-repo.root <path>'"
	rootMissingTemplateConstant         = "repository root does not exist: %s"
	targetOutsideRootReasonConstant     = "target path does not stay within <root>/<domain>/<user>/<repo>"
)

var (
	// ErrConfigurationNotConfigured indicates NewService received no configuration provider.
	ErrConfigurationNotConfigured = errors.New(configurationMissingMessageConstant)
	// ErrPrompterNotConfigured indicates a confirmation was required without a prompter.
	ErrPrompterNotConfigured = errors.New(prompterMissingMessageConstant)
	// ErrRootNotConfigured indicates git-repo.root is unset.
	ErrRootNotConfigured = errors.New(rootNotConfiguredMessageConstant)
)

// RootMissingError reports a configured root directory that does not exist.
type RootMissingError struct {
	Path string
}

// Error describes the missing root.
func (missingError RootMissingError) Error() string {
	return fmt.Sprintf(rootMissingTemplateConstant, missingError.Path)
}

// Cloner materializes a clone on disk.
type Cloner func(executionContext context.Context, options gitrepo.CloneOptions) error

// ServiceDependencies enumerates collaborators required by the service.
type ServiceDependencies struct {
	ConfigurationProvider gitconfig.Provider
	FileSystem            filesystem.FileSystem
	Scanner               *discovery.TreeScanner
	Cloner                Cloner
	GitExecutor           gitrepo.GitExecutor
	Prompter              prompt.Prompter
	HomeExpander          *pathutils.HomeExpander
	// Token authenticates HTTPS clones.
	Token       string
	Logger      *zap.Logger
	Output      io.Writer
	ErrorOutput io.Writer
}

// Service manages the tree of clones below the configured root.
type Service struct {
	configurationProvider gitconfig.Provider
	fileSystem            filesystem.FileSystem
	scanner               *discovery.TreeScanner
	cloner                Cloner
	gitExecutor           gitrepo.GitExecutor
	prompter              prompt.Prompter
	homeExpander          *pathutils.HomeExpander
	token                 string
	logger                *zap.Logger
	output                io.Writer
	errorOutput           io.Writer
}

// NewService validates dependencies and constructs a Service. Only the configuration provider is required.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.ConfigurationProvider == nil {
		return nil, ErrConfigurationNotConfigured
	}

	service := &Service{
		configurationProvider: dependencies.ConfigurationProvider,
		fileSystem:            dependencies.FileSystem,
		scanner:               dependencies.Scanner,
		cloner:                dependencies.Cloner,
		gitExecutor:           dependencies.GitExecutor,
		prompter:              dependencies.Prompter,
		homeExpander:          dependencies.HomeExpander,
		token:                 dependencies.Token,
		logger:                dependencies.Logger,
		output:                dependencies.Output,
		errorOutput:           dependencies.ErrorOutput,
	}
	if service.fileSystem == nil {
		service.fileSystem = filesystem.OSFileSystem{}
	}
	if service.logger == nil {
		service.logger = zap.NewNop()
	}
	if service.scanner == nil {
		service.scanner = discovery.NewTreeScanner(service.fileSystem, service.logger)
	}
	if service.cloner == nil {
		service.cloner = gitrepo.Clone
	}
	if service.homeExpander == nil {
		service.homeExpander = pathutils.NewHomeExpander()
	}
	if service.output == nil {
		service.output = io.Discard
	}
	if service.errorOutput == nil {
		service.errorOutput = io.Discard
	}
	return service, nil
}

// Root returns the configured root directory with a leading tilde expanded.
func (service *Service) Root() (string, error) {
	configuredRoot := gitconfig.StringValue(service.configurationProvider, gitconfig.RepositoryRootKey)
	if len(configuredRoot) == 0 {
		return "", ErrRootNotConfigured
	}
	return filepath.Clean(service.homeExpander.Expand(configuredRoot)), nil
}

// TargetPath derives <root>/<domain>/<user>/<repo> for a clone URL.
func (service *Service) TargetPath(root string, repositoryURL string) (string, gitrepo.RepoInfo, error) {
	info, parseError := gitrepo.ParseRepoInfo(repositoryURL)
	if parseError != nil {
		return "", gitrepo.RepoInfo{}, parseError
	}
	targetPath := filepath.Join(root, filepath.FromSlash(info.RelativePath()))
	relativePath, contained := relativeWithinRoot(root, targetPath)
	if !contained || relativePath != info.RelativePath() {
		return "", gitrepo.RepoInfo{}, gitrepo.InvalidRepositoryURLError{URL: repositoryURL, Reason: targetOutsideRootReasonConstant}
	}
	return targetPath, info, nil
}

// relativeWithinRoot returns path relative to root, and false when it is root itself or lies outside it.
func relativeWithinRoot(root string, path string) (string, bool) {
	relativePath, relativeError := filepath.Rel(root, path)
	if relativeError != nil {
		return "", false
	}
	if relativePath == currentDirectoryReferenceConstant || relativePath == parentDirectoryReferenceConstant || strings.HasPrefix(relativePath, parentDirectoryReferenceConstant+string(filepath.Separator)) {
		return relativePath, false
	}
	return relativePath, true
}

// Repositories scans the root and returns entries sorted by relative path.
// A missing root yields RootMissingError.
func (service *Service) Repositories() (string, []discovery.RepoEntry, error) {
	root, rootError := service.Root()
	if rootError != nil {
		return "", nil, rootError
	}
	if !filesystem.Exists(service.fileSystem, root) {
		return root, nil, RootMissingError{Path: root}
	}

	entries, scanError := service.scanner.Scan(root)
	if scanError != nil {
		return root, nil, scanError
	}
	sort.Slice(entries, func(left int, right int) bool {
		return entries[left].RelativePath < entries[right].RelativePath
	})
	return root, entries, nil
}

func (service *Service) confirm(message string) (bool, error) {
	if service.prompter == nil {
		return false, ErrPrompterNotConfigured
	}
	return service.prompter.Confirm(message)
}
