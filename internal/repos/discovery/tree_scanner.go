package discovery

import (
	"errors"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/temirov/gitutils/internal/gitrepo"
	"github.com/temirov/gitutils/internal/repos/filesystem"
)

const (
	// DefaultMaximumDepth covers the <root>/<domain>/<user>/<repo> layout.
	DefaultMaximumDepth = 3

	gitMetadataEntryNameConstant       = ".git"
	resolveOperationConstant           = "resolve"
	statOperationConstant              = "stat"
	readDirectoryOperationConstant     = "read directory"
	notDirectoryMessageConstant        = "not a directory"
	skippedDirectoryLogMessageConstant = "skipping unreadable directory"
	logFieldPathConstant               = "path"
)

var errNotDirectory = errors.New(notDirectoryMessageConstant)

// RepoEntry identifies a repository found below a scan root.
type RepoEntry struct {
	RelativePath string
	AbsolutePath string
}

// ScannerOption customizes a TreeScanner.
type ScannerOption func(*TreeScanner)

// WithMaximumDepth bounds how many directory levels below the root are descended.
func WithMaximumDepth(maximumDepth int) ScannerOption {
	return func(scanner *TreeScanner) {
		if maximumDepth >= 0 {
			scanner.maximumDepth = maximumDepth
		}
	}
}

// TreeScanner locates repository roots below a directory without descending into repositories.
type TreeScanner struct {
	fileSystem   filesystem.FileSystem
	logger       *zap.Logger
	maximumDepth int
}

type pendingDirectory struct {
	path  string
	depth int
}

// NewTreeScanner constructs a TreeScanner. Nil collaborators fall back to the OS filesystem and a no-op logger.
func NewTreeScanner(fileSystem filesystem.FileSystem, logger *zap.Logger, options ...ScannerOption) *TreeScanner {
	if fileSystem == nil {
		fileSystem = filesystem.OSFileSystem{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	scanner := &TreeScanner{fileSystem: fileSystem, logger: logger, maximumDepth: DefaultMaximumDepth}
	for _, option := range options {
		if option != nil {
			option(scanner)
		}
	}
	return scanner
}

// Scan walks root with an explicit stack. A directory holding a .git entry (file or directory) is
// recorded and not descended. Symbolic links are never followed. Unreadable directories below the
// root are skipped; an unreadable root is an IOFailureError. Entries come back in walk order.
func (scanner *TreeScanner) Scan(root string) ([]RepoEntry, error) {
	absoluteRoot, absoluteError := scanner.fileSystem.Abs(root)
	if absoluteError != nil {
		return nil, gitrepo.IOFailureError{Operation: resolveOperationConstant, Path: root, Cause: absoluteError}
	}
	rootInfo, statError := scanner.fileSystem.Stat(absoluteRoot)
	if statError != nil {
		return nil, gitrepo.IOFailureError{Operation: statOperationConstant, Path: absoluteRoot, Cause: statError}
	}
	if !rootInfo.IsDir() {
		return nil, gitrepo.IOFailureError{Operation: statOperationConstant, Path: absoluteRoot, Cause: errNotDirectory}
	}

	var entries []RepoEntry
	stack := []pendingDirectory{{path: absoluteRoot, depth: 0}}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if scanner.isRepository(current.path) {
			relativePath, relativeError := filepath.Rel(absoluteRoot, current.path)
			if relativeError != nil {
				relativePath = current.path
			}
			entries = append(entries, RepoEntry{RelativePath: relativePath, AbsolutePath: current.path})
			continue
		}
		if current.depth >= scanner.maximumDepth {
			continue
		}

		directoryEntries, readError := scanner.fileSystem.ReadDir(current.path)
		if readError != nil {
			if current.path == absoluteRoot {
				return nil, gitrepo.IOFailureError{Operation: readDirectoryOperationConstant, Path: absoluteRoot, Cause: readError}
			}
			scanner.logger.Warn(skippedDirectoryLogMessageConstant, zap.String(logFieldPathConstant, current.path), zap.Error(readError))
			continue
		}

		// Pushed in reverse so siblings pop in name order.
		for index := len(directoryEntries) - 1; index >= 0; index-- {
			directoryEntry := directoryEntries[index]
			if !directoryEntry.IsDir() {
				continue
			}
			stack = append(stack, pendingDirectory{
				path:  filepath.Join(current.path, directoryEntry.Name()),
				depth: current.depth + 1,
			})
		}
	}

	return entries, nil
}

func (scanner *TreeScanner) isRepository(directoryPath string) bool {
	_, statError := scanner.fileSystem.Lstat(filepath.Join(directoryPath, gitMetadataEntryNameConstant))
	return statError == nil
}
