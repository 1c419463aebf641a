package setup_test

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/gitutils/internal/setup"
	pathutils "github.com/temirov/gitutils/internal/utils/path"
)

func TestSetupCommand(testInstance *testing.T) {
	testCases := []struct {
		name      string
		arguments []string
		verify    func(testInstance *testing.T, home string, output string)
	}{
		{
			name:      "print_snippet",
			arguments: []string{"--print", "fish"},
			verify: func(testInstance *testing.T, home string, output string) {
				require.Equal(testInstance, "# Add this to your ~/.config/fish/config.fish:\ntest -f ~/.git-utils/env.fish && source ~/.git-utils/env.fish\n", output)
				require.NoDirExists(testInstance, filepath.Join(home, ".git-utils"))
			},
		},
		{
			name:      "print_gitconfig",
			arguments: []string{"--gitconfig"},
			verify: func(testInstance *testing.T, home string, output string) {
				require.Contains(testInstance, output, "[git-repo]\n    root = ~/src\n")
				require.Contains(testInstance, output, "bs = !git-branch-switch")
			},
		},
		{
			name:      "install_from_shell_variable",
			arguments: nil,
			verify: func(testInstance *testing.T, home string, output string) {
				require.FileExists(testInstance, filepath.Join(home, ".zshrc"))
				require.Contains(testInstance, output, "source ~/.zshrc")
			},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			home := testInstance.TempDir()
			builder := setup.CommandBuilder{
				HomeExpander: pathutils.NewHomeExpanderWithProvider(func() (string, error) { return home, nil }),
				Environment: func(key string) (string, bool) {
					return "/usr/bin/zsh", key == "SHELL"
				},
			}
			command, buildError := builder.Build()
			require.NoError(testInstance, buildError)

			output := &bytes.Buffer{}
			command.SetArgs(testCase.arguments)
			command.SetOut(output)
			command.SetErr(&bytes.Buffer{})
			require.NoError(testInstance, command.ExecuteContext(context.Background()))
			testCase.verify(testInstance, home, output.String())
		})
	}
}

func TestSetupCommandRejectsUnknownPrintShell(testInstance *testing.T) {
	builder := setup.CommandBuilder{}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)
	command.SetArgs([]string{"--print", "csh"})
	command.SetOut(&bytes.Buffer{})
	command.SetErr(&bytes.Buffer{})
	require.EqualError(testInstance, command.ExecuteContext(context.Background()), "Unsupported shell: csh")
}
