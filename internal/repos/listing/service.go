package listing

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/temirov/gitutils/internal/gitrepo"
	"github.com/temirov/gitutils/internal/repos/discovery"
	"github.com/temirov/gitutils/internal/repos/lifecycle"
)

const (
	listerMissingMessageConstant      = "repository lister not configured"
	rootMissingTemplateConstant       = "Repository root does not exist: %s\n"
	noRepositoriesMessageConstant     = "No repositories found"
	longLineTemplateConstant          = "%-50s %-20s %s\n"
	jsonIndentConstant                = "  "
	cleanStatusConstant               = "[clean]"
	dirtyStatusConstant               = "[dirty]"
	detachedBranchLabelConstant       = "HEAD"
	dirtyStatusColorConstant          = "3"
	inspectFailedLogMessageConstant   = "unable to inspect repository"
	logFieldRepositoryPathConstant    = "repository_path"
	jsonEncodingErrorTemplateConstant = "unable to encode repository list: %w"
)

// ErrListerNotConfigured indicates NewService received no lister.
var ErrListerNotConfigured = errors.New(listerMissingMessageConstant)

// RepositoryLister enumerates the repositories below the managed root.
type RepositoryLister interface {
	Repositories() (string, []discovery.RepoEntry, error)
}

// Options selects what List prints.
type Options struct {
	Long     bool
	Absolute bool
	// DirtyOnly keeps repositories with uncommitted changes.
	DirtyOnly bool
	JSON      bool
}

// Entry is one listed repository. Branch and Status are filled for long and JSON output.
type Entry struct {
	Path         string `json:"path"`
	AbsolutePath string `json:"absolute_path,omitempty"`
	Branch       string `json:"branch,omitempty"`
	Status       string `json:"status,omitempty"`
}

// ServiceDependencies enumerates collaborators required by the service.
type ServiceDependencies struct {
	Lister RepositoryLister
	Logger *zap.Logger
	Output io.Writer
}

// Service prints the repositories of the managed tree.
type Service struct {
	lister     RepositoryLister
	logger     *zap.Logger
	output     io.Writer
	dirtyStyle lipgloss.Style
}

// NewService validates dependencies and constructs a Service.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.Lister == nil {
		return nil, ErrListerNotConfigured
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	output := dependencies.Output
	if output == nil {
		output = io.Discard
	}
	return &Service{
		lister:     dependencies.Lister,
		logger:     logger,
		output:     output,
		dirtyStyle: lipgloss.NewRenderer(output).NewStyle().Foreground(lipgloss.Color(dirtyStatusColorConstant)),
	}, nil
}

// Entries scans the tree and builds the entries the options ask for, sorted by path.
func (service *Service) Entries(options Options) ([]Entry, error) {
	_, repositories, listError := service.lister.Repositories()
	if listError != nil {
		return nil, listError
	}

	entries := make([]Entry, 0, len(repositories))
	for _, repository := range repositories {
		entry := Entry{Path: repository.RelativePath}
		if options.Absolute {
			entry.AbsolutePath = repository.AbsolutePath
		}

		needsState := options.DirtyOnly || options.Long || options.JSON
		if needsState {
			branchName, dirty, inspected := service.inspect(repository.AbsolutePath)
			if options.DirtyOnly && inspected && !dirty {
				continue
			}
			if inspected && (options.Long || options.JSON) {
				entry.Branch = branchName
				entry.Status = cleanStatusConstant
				if dirty {
					entry.Status = dirtyStatusConstant
				}
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// List prints the repositories one per line, as aligned columns with Long, or as a JSON array.
func (service *Service) List(options Options) error {
	entries, entriesError := service.Entries(options)
	if entriesError != nil {
		var missingRoot lifecycle.RootMissingError
		if errors.As(entriesError, &missingRoot) {
			fmt.Fprintf(service.output, rootMissingTemplateConstant, missingRoot.Path)
			return nil
		}
		return entriesError
	}

	if options.JSON {
		encoded, encodingError := json.MarshalIndent(entries, "", jsonIndentConstant)
		if encodingError != nil {
			return fmt.Errorf(jsonEncodingErrorTemplateConstant, encodingError)
		}
		fmt.Fprintln(service.output, string(encoded))
		return nil
	}

	if len(entries) == 0 {
		fmt.Fprintln(service.output, noRepositoriesMessageConstant)
		return nil
	}

	for _, entry := range entries {
		displayPath := entry.Path
		if options.Absolute {
			displayPath = entry.AbsolutePath
		}
		if !options.Long {
			fmt.Fprintln(service.output, displayPath)
			continue
		}
		status := entry.Status
		if status == dirtyStatusConstant {
			status = service.dirtyStyle.Render(status)
		}
		fmt.Fprintf(service.output, longLineTemplateConstant, displayPath, entry.Branch, status)
	}
	return nil
}

// inspect reports the checked-out branch and whether the working tree is dirty. Repositories that
// cannot be opened are reported as not inspected and kept in every listing.
func (service *Service) inspect(repositoryPath string) (string, bool, bool) {
	repository, openError := gitrepo.Open(repositoryPath, nil)
	if openError != nil {
		service.logger.Debug(inspectFailedLogMessageConstant, zap.String(logFieldRepositoryPathConstant, repositoryPath), zap.Error(openError))
		return "", false, false
	}
	defer repository.Close()

	dirty, statusError := repository.IsDirty()
	if statusError != nil {
		service.logger.Debug(inspectFailedLogMessageConstant, zap.String(logFieldRepositoryPathConstant, repositoryPath), zap.Error(statusError))
		return "", false, false
	}

	branchName, headError := repository.HeadBranch()
	if errors.Is(headError, gitrepo.ErrDetachedHead) {
		branchName = detachedBranchLabelConstant
	} else if headError != nil {
		branchName = ""
	}
	return branchName, dirty, true
}
