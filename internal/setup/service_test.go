package setup_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/gitutils/internal/setup"
	pathutils "github.com/temirov/gitutils/internal/utils/path"
)

type setupFixture struct {
	home    string
	output  *bytes.Buffer
	service *setup.Service
}

func newSetupFixture(testInstance *testing.T, shellVariable string) *setupFixture {
	testInstance.Helper()
	home := testInstance.TempDir()
	output := &bytes.Buffer{}
	service := setup.NewService(setup.ServiceDependencies{
		HomeExpander: pathutils.NewHomeExpanderWithProvider(func() (string, error) { return home, nil }),
		Environment: func(key string) (string, bool) {
			if key == "SHELL" && len(shellVariable) > 0 {
				return shellVariable, true
			}
			return "", false
		},
		Output: output,
	})
	return &setupFixture{home: home, output: output, service: service}
}

func (fixture *setupFixture) read(testInstance *testing.T, relativePath string) string {
	testInstance.Helper()
	content, readError := os.ReadFile(filepath.Join(fixture.home, relativePath))
	require.NoError(testInstance, readError)
	return string(content)
}

func TestParseShell(testInstance *testing.T) {
	testCases := []struct {
		value       string
		expected    setup.Shell
		expectError bool
	}{
		{value: "bash", expected: setup.ShellBash},
		{value: "/usr/bin/zsh", expected: setup.ShellZsh},
		{value: " fish ", expected: setup.ShellFish},
		{value: "tcsh", expectError: true},
		{value: "", expectError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.value, func(testInstance *testing.T) {
			shell, parseError := setup.ParseShell(testCase.value)
			if testCase.expectError {
				require.ErrorAs(testInstance, parseError, &setup.UnsupportedShellError{})
				return
			}
			require.NoError(testInstance, parseError)
			require.Equal(testInstance, testCase.expected, shell)
		})
	}
}

func TestInstallFreshHome(testInstance *testing.T) {
	fixture := newSetupFixture(testInstance, "/bin/bash")
	require.NoError(testInstance, fixture.service.Install(""))

	environmentDirectory := filepath.Join(fixture.home, ".git-utils")
	require.FileExists(testInstance, filepath.Join(environmentDirectory, "env.sh"))
	require.FileExists(testInstance, filepath.Join(environmentDirectory, "env.fish"))
	require.FileExists(testInstance, filepath.Join(environmentDirectory, "env.sh.example"))
	require.FileExists(testInstance, filepath.Join(environmentDirectory, "env.fish.example"))
	require.Equal(testInstance, "\n# git-utils\n[ -f ~/.git-utils/env.sh ] && source ~/.git-utils/env.sh\n", fixture.read(testInstance, ".bashrc"))

	output := fixture.output.String()
	require.Contains(testInstance, output, "Created directory: "+environmentDirectory+"\n")
	require.Contains(testInstance, output, "\nCreated environment files:\n")
	require.NotContains(testInstance, output, "Existing files preserved")
	require.Contains(testInstance, output, "Added source line to "+filepath.Join(fixture.home, ".bashrc")+"\n")
	require.True(testInstance, strings.HasSuffix(output, "\nSetup complete!\nPlease restart your shell or run: source ~/.bashrc\n"))
}

func TestInstallIsIdempotentAndPreservesEdits(testInstance *testing.T) {
	fixture := newSetupFixture(testInstance, "")
	require.NoError(testInstance, fixture.service.Install("fish"))

	editedPath := filepath.Join(fixture.home, ".git-utils", "env.fish")
	require.NoError(testInstance, os.WriteFile(editedPath, []byte("# mine\n"), 0o644))
	fixture.output.Reset()

	require.NoError(testInstance, fixture.service.Install("fish"))
	require.Equal(testInstance, "# mine\n", fixture.read(testInstance, filepath.Join(".git-utils", "env.fish")))
	require.Equal(testInstance, "\n# git-utils\ntest -f ~/.git-utils/env.fish && source ~/.git-utils/env.fish\n", fixture.read(testInstance, filepath.Join(".config", "fish", "config.fish")))

	output := fixture.output.String()
	require.NotContains(testInstance, output, "Created directory")
	require.Contains(testInstance, output, "\nExisting files preserved (not overwritten):\n")
	require.Contains(testInstance, output, "  git diff --no-index "+editedPath+" "+editedPath+".example\n")
	require.Contains(testInstance, output, "Source line already exists in "+filepath.Join(fixture.home, ".config", "fish", "config.fish")+"\n")
}

func TestInstallAppendsToExistingRCFile(testInstance *testing.T) {
	fixture := newSetupFixture(testInstance, "")
	require.NoError(testInstance, os.WriteFile(filepath.Join(fixture.home, ".zshrc"), []byte("export EDITOR=vim\n"), 0o644))

	require.NoError(testInstance, fixture.service.Install("zsh"))
	require.Equal(testInstance, "export EDITOR=vim\n\n# git-utils\n[ -f ~/.git-utils/env.sh ] && source ~/.git-utils/env.sh\n", fixture.read(testInstance, ".zshrc"))
}

func TestInstallShellResolutionFailures(testInstance *testing.T) {
	undetected := newSetupFixture(testInstance, "")
	require.ErrorIs(testInstance, undetected.service.Install(""), setup.ErrShellNotDetected)

	unsupported := newSetupFixture(testInstance, "/bin/tcsh")
	require.EqualError(testInstance, unsupported.service.Install(""), "Unsupported shell: /bin/tcsh")
	require.NoDirExists(testInstance, filepath.Join(unsupported.home, ".git-utils"))
}

func TestUninstall(testInstance *testing.T) {
	fixture := newSetupFixture(testInstance, "")
	require.NoError(testInstance, os.WriteFile(filepath.Join(fixture.home, ".zshrc"), []byte("export EDITOR=vim\n"), 0o644))
	require.NoError(testInstance, fixture.service.Install("zsh"))
	require.NoError(testInstance, fixture.service.Install("bash"))
	fixture.output.Reset()

	require.NoError(testInstance, fixture.service.Uninstall())
	require.Equal(testInstance, "export EDITOR=vim\n\n", fixture.read(testInstance, ".zshrc"))
	require.Equal(testInstance, "\n", fixture.read(testInstance, ".bashrc"))
	require.NoDirExists(testInstance, filepath.Join(fixture.home, ".git-utils"))
	require.Equal(testInstance,
		"Removed source line from "+filepath.Join(fixture.home, ".bashrc")+"\n"+
			"Removed source line from "+filepath.Join(fixture.home, ".zshrc")+"\n"+
			"Removed directory: "+filepath.Join(fixture.home, ".git-utils")+"\n"+
			"Uninstall complete!\n",
		fixture.output.String())
}

func TestRemoveSourceLines(testInstance *testing.T) {
	testCases := []struct {
		name            string
		content         string
		expected        string
		expectedRemoved bool
	}{
		{
			name:            "marker_and_source_line",
			content:         "a\n\n# git-utils\n[ -f ~/.git-utils/env.sh ] && source ~/.git-utils/env.sh\nb\n",
			expected:        "a\n\nb\n",
			expectedRemoved: true,
		},
		{
			name:            "marker_without_source_line_keeps_next_line",
			content:         "# git-utils\nexport A=1\n",
			expected:        "export A=1\n",
			expectedRemoved: true,
		},
		{
			name:     "untouched",
			content:  "export A=1",
			expected: "export A=1\n",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			cleaned, removed := setup.RemoveSourceLines(testCase.content)
			require.Equal(testInstance, testCase.expected, cleaned)
			require.Equal(testInstance, testCase.expectedRemoved, removed)
		})
	}
}
