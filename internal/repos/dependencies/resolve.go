package dependencies

import (
	"context"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/temirov/gitutils/internal/execshell"
	"github.com/temirov/gitutils/internal/gitconfig"
	"github.com/temirov/gitutils/internal/githubcli"
	"github.com/temirov/gitutils/internal/gitrepo"
	"github.com/temirov/gitutils/internal/prompt"
	"github.com/temirov/gitutils/internal/utils"
)

// ResolveShellExecutor constructs a shell-backed executor bounded by the command timeout stored in the context.
func ResolveShellExecutor(executionContext context.Context, logger *zap.Logger) (*execshell.ShellExecutor, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	commandTimeout, _ := utils.NewCommandContextAccessor().CommandTimeout(executionContext)
	return execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner(), execshell.WithCommandTimeout(commandTimeout))
}

// ResolveGitExecutor returns the provided executor or constructs a shell-backed default.
func ResolveGitExecutor(executionContext context.Context, existing gitrepo.GitExecutor, logger *zap.Logger) (gitrepo.GitExecutor, error) {
	if existing != nil {
		return existing, nil
	}
	shellExecutor, executorError := ResolveShellExecutor(executionContext, logger)
	if executorError != nil {
		return nil, executorError
	}
	return shellExecutor, nil
}

// ResolveGitHubExecutor returns the provided executor or constructs a shell-backed default.
func ResolveGitHubExecutor(executionContext context.Context, existing githubcli.GitHubCommandExecutor, logger *zap.Logger) (githubcli.GitHubCommandExecutor, error) {
	if existing != nil {
		return existing, nil
	}
	shellExecutor, executorError := ResolveShellExecutor(executionContext, logger)
	if executorError != nil {
		return nil, executorError
	}
	return shellExecutor, nil
}

// ResolvePrompter returns the provided prompter, or a terminal-aware prompter reading input and writing to output.
func ResolvePrompter(existing prompt.Prompter, input io.Reader, output io.Writer) prompt.Prompter {
	if existing != nil {
		return existing
	}
	if inputFile, isFile := input.(*os.File); isFile {
		return prompt.New(inputFile, output)
	}
	return prompt.NewLinePrompter(input, output)
}

// ResolveInteractive reports whether prompts can reach a user: an injected prompter counts as interactive.
func ResolveInteractive(existing prompt.Prompter, input io.Reader) bool {
	if existing != nil {
		return true
	}
	inputFile, isFile := input.(*os.File)
	return isFile && prompt.IsInteractive(inputFile)
}

// ResolveConfigurationProvider layers git configuration over application defaults.
// The provided provider replaces the git lookup when set.
func ResolveConfigurationProvider(existing gitconfig.Provider, repositoryPath string, fallback gitconfig.MapProvider) (gitconfig.Provider, error) {
	primary := existing
	if primary == nil {
		gitProvider, providerError := gitconfig.NewGitProvider(repositoryPath)
		if providerError != nil {
			return nil, providerError
		}
		primary = gitProvider
	}
	return gitconfig.LayeredProvider{primary, fallback}, nil
}
