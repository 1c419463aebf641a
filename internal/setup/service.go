package setup

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/gitutils/internal/gitrepo"
	"github.com/temirov/gitutils/internal/repos/filesystem"
	pathutils "github.com/temirov/gitutils/internal/utils/path"
)

const (
	environmentDirectoryConstant      = ".git-utils"
	envShellFileConstant              = "env.sh"
	envFishFileConstant               = "env.fish"
	exampleSuffixConstant             = ".example"
	markerLineConstant                = "# git-utils"
	sourceLineNeedleConstant          = "git-utils/env"
	shellEnvironmentVariableConstant  = "SHELL"
	directoryPermissionsConstant      = fs.FileMode(0o755)
	filePermissionsConstant           = fs.FileMode(0o644)
	shellUndetectedMessageConstant    = "Could not detect shell. Please specify with --shell"
	createdDirectoryTemplateConstant  = "Created directory: %s\n"
	updatedTemplatesHeaderConstant    = "Updated template files:"
	createdFilesHeaderConstant        = "\nCreated environment files:"
	preservedFilesHeaderConstant      = "\nExisting files preserved (not overwritten):"
	compareHintHeaderConstant         = "\nTo update your env files with new templates, compare with .example files:"
	compareHintTemplateConstant       = "  git diff --no-index %s %s\n"
	listedPathTemplateConstant        = "  %s\n"
	sourceLineExistsTemplateConstant  = "Source line already exists in %s\n"
	sourceLineAddedTemplateConstant   = "Added source line to %s\n"
	setupCompleteMessageConstant      = "\nSetup complete!"
	restartHintTemplateConstant       = "Please restart your shell or run: source ~/%s\n"
	snippetHeaderTemplateConstant     = "# Add this to your ~/%s:\n"
	sourceLineRemovedTemplateConstant = "Removed source line from %s\n"
	removedDirectoryTemplateConstant  = "Removed directory: %s\n"
	uninstallCompleteMessageConstant  = "Uninstall complete!"
	writeOperationConstant            = "write"
	readOperationConstant             = "read"
	createOperationConstant           = "create directory"
	removeOperationConstant           = "remove"
	installLogMessageConstant         = "installing shell environment"
	logFieldShellConstant             = "shell"
	logFieldDirectoryConstant         = "directory"
)

// ErrShellNotDetected indicates neither --shell nor $SHELL named a shell.
var ErrShellNotDetected = errors.New(shellUndetectedMessageConstant)

// EnvironmentLookup reads an environment variable.
type EnvironmentLookup func(key string) (string, bool)

// ServiceDependencies enumerates collaborators required by the service.
type ServiceDependencies struct {
	FileSystem   filesystem.FileSystem
	HomeExpander *pathutils.HomeExpander
	Environment  EnvironmentLookup
	Logger       *zap.Logger
	Output       io.Writer
}

// Service installs and removes the shell integration under ~/.git-utils.
type Service struct {
	fileSystem   filesystem.FileSystem
	homeExpander *pathutils.HomeExpander
	environment  EnvironmentLookup
	logger       *zap.Logger
	output       io.Writer
}

// NewService constructs a Service, defaulting to the OS filesystem, home directory, and environment.
func NewService(dependencies ServiceDependencies) *Service {
	service := &Service{
		fileSystem:   dependencies.FileSystem,
		homeExpander: dependencies.HomeExpander,
		environment:  dependencies.Environment,
		logger:       dependencies.Logger,
		output:       dependencies.Output,
	}
	if service.fileSystem == nil {
		service.fileSystem = filesystem.OSFileSystem{}
	}
	if service.homeExpander == nil {
		service.homeExpander = pathutils.NewHomeExpander()
	}
	if service.environment == nil {
		service.environment = noEnvironment
	}
	if service.logger == nil {
		service.logger = zap.NewNop()
	}
	if service.output == nil {
		service.output = io.Discard
	}
	return service
}

// PrintGitConfig prints the recommended git configuration.
func (service *Service) PrintGitConfig() {
	fmt.Fprintln(service.output, string(gitConfigTemplate))
}

// PrintSnippet prints the source line for the shell together with the file it belongs in.
func (service *Service) PrintSnippet(shellName string) error {
	shell, shellError := ParseShell(shellName)
	if shellError != nil {
		return shellError
	}
	fmt.Fprintf(service.output, snippetHeaderTemplateConstant, filepath.ToSlash(shell.RCFile()))
	fmt.Fprintln(service.output, shell.SourceLine())
	return nil
}

// Install writes the environment files, keeping existing ones, and adds the source line to the
// shell startup file once. An empty shellName falls back to $SHELL.
func (service *Service) Install(shellName string) error {
	shell, shellError := service.resolveShell(shellName)
	if shellError != nil {
		return shellError
	}

	homeDirectory, homeError := service.homeExpander.HomeDirectory()
	if homeError != nil {
		return homeError
	}
	environmentDirectory := filepath.Join(homeDirectory, environmentDirectoryConstant)
	service.logger.Debug(installLogMessageConstant, zap.String(logFieldShellConstant, string(shell)), zap.String(logFieldDirectoryConstant, environmentDirectory))

	if !filesystem.Exists(service.fileSystem, environmentDirectory) {
		if mkdirError := service.fileSystem.MkdirAll(environmentDirectory, directoryPermissionsConstant); mkdirError != nil {
			return gitrepo.IOFailureError{Operation: createOperationConstant, Path: environmentDirectory, Cause: mkdirError}
		}
		fmt.Fprintf(service.output, createdDirectoryTemplateConstant, environmentDirectory)
	}

	templates := []struct {
		path    string
		content []byte
	}{
		{path: filepath.Join(environmentDirectory, envShellFileConstant), content: envShellTemplate},
		{path: filepath.Join(environmentDirectory, envFishFileConstant), content: envFishTemplate},
	}

	fmt.Fprintln(service.output, updatedTemplatesHeaderConstant)
	for _, template := range templates {
		examplePath := template.path + exampleSuffixConstant
		if writeError := service.writeFile(examplePath, template.content); writeError != nil {
			return writeError
		}
		fmt.Fprintf(service.output, listedPathTemplateConstant, examplePath)
	}

	var createdPaths, preservedPaths []string
	for _, template := range templates {
		if filesystem.Exists(service.fileSystem, template.path) {
			preservedPaths = append(preservedPaths, template.path)
			continue
		}
		if writeError := service.writeFile(template.path, template.content); writeError != nil {
			return writeError
		}
		createdPaths = append(createdPaths, template.path)
	}

	if len(createdPaths) > 0 {
		fmt.Fprintln(service.output, createdFilesHeaderConstant)
		for _, createdPath := range createdPaths {
			fmt.Fprintf(service.output, listedPathTemplateConstant, createdPath)
		}
	}
	if len(preservedPaths) > 0 {
		fmt.Fprintln(service.output, preservedFilesHeaderConstant)
		for _, preservedPath := range preservedPaths {
			fmt.Fprintf(service.output, listedPathTemplateConstant, preservedPath)
		}
		fmt.Fprintln(service.output, compareHintHeaderConstant)
		for _, template := range templates {
			fmt.Fprintf(service.output, compareHintTemplateConstant, template.path, template.path+exampleSuffixConstant)
		}
	}

	if sourceError := service.addSourceLine(homeDirectory, shell); sourceError != nil {
		return sourceError
	}

	fmt.Fprintln(service.output, setupCompleteMessageConstant)
	fmt.Fprintf(service.output, restartHintTemplateConstant, filepath.ToSlash(shell.RCFile()))
	return nil
}

// Uninstall removes the source lines from every shell startup file and deletes ~/.git-utils.
func (service *Service) Uninstall() error {
	homeDirectory, homeError := service.homeExpander.HomeDirectory()
	if homeError != nil {
		return homeError
	}

	for _, shell := range Shells {
		rcPath := filepath.Join(homeDirectory, shell.RCFile())
		if !filesystem.Exists(service.fileSystem, rcPath) {
			continue
		}
		content, readError := service.fileSystem.ReadFile(rcPath)
		if readError != nil {
			return gitrepo.IOFailureError{Operation: readOperationConstant, Path: rcPath, Cause: readError}
		}
		cleaned, removed := RemoveSourceLines(string(content))
		if !removed {
			continue
		}
		if writeError := service.writeFile(rcPath, []byte(cleaned)); writeError != nil {
			return writeError
		}
		fmt.Fprintf(service.output, sourceLineRemovedTemplateConstant, rcPath)
	}

	environmentDirectory := filepath.Join(homeDirectory, environmentDirectoryConstant)
	if filesystem.Exists(service.fileSystem, environmentDirectory) {
		if removeError := service.fileSystem.RemoveAll(environmentDirectory); removeError != nil {
			return gitrepo.IOFailureError{Operation: removeOperationConstant, Path: environmentDirectory, Cause: removeError}
		}
		fmt.Fprintf(service.output, removedDirectoryTemplateConstant, environmentDirectory)
	}

	fmt.Fprintln(service.output, uninstallCompleteMessageConstant)
	return nil
}

// RemoveSourceLines drops every "# git-utils" marker together with the source line right after it.
// It reports whether anything was removed.
func RemoveSourceLines(content string) (string, bool) {
	lines := strings.Split(strings.TrimSuffix(content, "\n"), "\n")
	kept := make([]string, 0, len(lines))
	removed := false
	afterMarker := false
	for _, line := range lines {
		if strings.Contains(line, markerLineConstant) {
			afterMarker = true
			removed = true
			continue
		}
		if afterMarker && strings.Contains(line, sourceLineNeedleConstant) {
			afterMarker = false
			continue
		}
		afterMarker = false
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n") + "\n", removed
}

func (service *Service) addSourceLine(homeDirectory string, shell Shell) error {
	rcPath := filepath.Join(homeDirectory, shell.RCFile())
	if mkdirError := service.fileSystem.MkdirAll(filepath.Dir(rcPath), directoryPermissionsConstant); mkdirError != nil {
		return gitrepo.IOFailureError{Operation: createOperationConstant, Path: filepath.Dir(rcPath), Cause: mkdirError}
	}

	var existing []byte
	if filesystem.Exists(service.fileSystem, rcPath) {
		content, readError := service.fileSystem.ReadFile(rcPath)
		if readError != nil {
			return gitrepo.IOFailureError{Operation: readOperationConstant, Path: rcPath, Cause: readError}
		}
		if strings.Contains(string(content), sourceLineNeedleConstant) {
			fmt.Fprintf(service.output, sourceLineExistsTemplateConstant, rcPath)
			return nil
		}
		existing = content
	}

	updated := string(existing) + "\n" + markerLineConstant + "\n" + shell.SourceLine() + "\n"
	if writeError := service.writeFile(rcPath, []byte(updated)); writeError != nil {
		return writeError
	}
	fmt.Fprintf(service.output, sourceLineAddedTemplateConstant, rcPath)
	return nil
}

func (service *Service) resolveShell(shellName string) (Shell, error) {
	if len(strings.TrimSpace(shellName)) > 0 {
		return ParseShell(shellName)
	}
	detected, found := service.environment(shellEnvironmentVariableConstant)
	if !found || len(strings.TrimSpace(detected)) == 0 {
		return "", ErrShellNotDetected
	}
	return ParseShell(detected)
}

func (service *Service) writeFile(path string, content []byte) error {
	if writeError := service.fileSystem.WriteFile(path, content, filePermissionsConstant); writeError != nil {
		return gitrepo.IOFailureError{Operation: writeOperationConstant, Path: path, Cause: writeError}
	}
	return nil
}

func noEnvironment(string) (string, bool) {
	return "", false
}
