package cli_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/temirov/gitutils/cmd/cli"
	"github.com/temirov/gitutils/internal/prompt"
)

type effectiveConfiguration struct {
	Common struct {
		LogLevel       string `yaml:"log_level"`
		LogFormat      string `yaml:"log_format"`
		CommandTimeout string `yaml:"command_timeout"`
	} `yaml:"common"`
	Tools struct {
		BranchDelete struct {
			Remote string `yaml:"remote"`
		} `yaml:"branch_delete"`
		Repo struct {
			Root string `yaml:"root"`
		} `yaml:"repo"`
		PullRequests struct {
			Format string `yaml:"format"`
			Source string `yaml:"source"`
		} `yaml:"pr_merged"`
	} `yaml:"tools"`
}

func runApplication(testInstance *testing.T, arguments ...string) (string, string, error) {
	testInstance.Helper()
	testInstance.Setenv("HOME", testInstance.TempDir())
	var diagnostics, output, errorOutput bytes.Buffer
	application, buildError := cli.NewApplication(&diagnostics)
	require.NoError(testInstance, buildError)
	application.SetOutput(strings.NewReader(""), &output, &errorOutput)
	executionError := application.Execute(context.Background(), arguments)
	return output.String(), diagnostics.String(), executionError
}

func TestConfigShow(testInstance *testing.T) {
	testCases := []struct {
		name           string
		environment    map[string]string
		fileContent    string
		arguments      []string
		expectedLevel  string
		expectedRoot   string
		expectedSource string
		expectedHeader bool
	}{
		{
			name:           "defaults",
			arguments:      []string{"config", "show"},
			expectedLevel:  "warn",
			expectedSource: "cli",
		},
		{
			name:           "environment_and_flag",
			environment:    map[string]string{"GITUTILS_TOOLS_REPO_ROOT": "/srv/code"},
			arguments:      []string{"--log-level", "debug", "config", "show"},
			expectedLevel:  "debug",
			expectedRoot:   "/srv/code",
			expectedSource: "cli",
		},
		{
			name:           "configuration_file",
			fileContent:    "common:\n  log_level: info\ntools:\n  pr_merged:\n    source: api\n",
			arguments:      []string{"config", "show"},
			expectedLevel:  "info",
			expectedSource: "api",
			expectedHeader: true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			for name, value := range testCase.environment {
				testInstance.Setenv(name, value)
			}
			arguments := testCase.arguments
			if len(testCase.fileContent) > 0 {
				configurationPath := filepath.Join(testInstance.TempDir(), "config.yaml")
				require.NoError(testInstance, os.WriteFile(configurationPath, []byte(testCase.fileContent), 0o600))
				arguments = append([]string{"--config", configurationPath}, arguments...)
			}

			output, _, executionError := runApplication(testInstance, arguments...)
			require.NoError(testInstance, executionError)
			require.Equal(testInstance, testCase.expectedHeader, strings.HasPrefix(output, "# "))

			var rendered effectiveConfiguration
			require.NoError(testInstance, yaml.Unmarshal([]byte(output), &rendered))
			require.Equal(testInstance, testCase.expectedLevel, rendered.Common.LogLevel)
			require.Equal(testInstance, "console", rendered.Common.LogFormat)
			require.Equal(testInstance, "0s", rendered.Common.CommandTimeout)
			require.Equal(testInstance, "origin", rendered.Tools.BranchDelete.Remote)
			require.Equal(testInstance, testCase.expectedRoot, rendered.Tools.Repo.Root)
			require.Equal(testInstance, "text", rendered.Tools.PullRequests.Format)
			require.Equal(testInstance, testCase.expectedSource, rendered.Tools.PullRequests.Source)
		})
	}
}

func TestDiagnosticsFollowLogSettings(testInstance *testing.T) {
	_, quietDiagnostics, quietError := runApplication(testInstance, "config", "show")
	require.NoError(testInstance, quietError)
	require.Empty(testInstance, quietDiagnostics)

	_, verboseDiagnostics, verboseError := runApplication(testInstance, "--log-level", "info", "--log-format", "structured", "config", "show")
	require.NoError(testInstance, verboseError)
	require.Contains(testInstance, verboseDiagnostics, `"msg":"configuration initialized"`)
	require.Contains(testInstance, verboseDiagnostics, `"log_level":"info"`)
}

func TestApplicationRejectsInvalidSettings(testInstance *testing.T) {
	testCases := []struct {
		name          string
		arguments     []string
		expectedError string
	}{
		{name: "log_level", arguments: []string{"--log-level", "loud", "config", "show"}, expectedError: "unsupported log level: loud"},
		{name: "log_format", arguments: []string{"--log-format", "xml", "config", "show"}, expectedError: "unsupported log format: xml"},
		{name: "missing_file", arguments: []string{"--config", "/nonexistent/config.yaml", "config", "show"}, expectedError: "unable to load configuration"},
		{name: "conflicting_branch_flags", arguments: []string{"branch-delete", "--force", "--merged"}, expectedError: "--force cannot be combined with --merged"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			_, _, executionError := runApplication(testInstance, testCase.arguments...)
			require.ErrorContains(testInstance, executionError, testCase.expectedError)
		})
	}
}

func TestExitCode(testInstance *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "success", err: nil, expected: 0},
		{name: "failure", err: errors.New("boom"), expected: 1},
		{name: "aborted_prompt", err: fmt.Errorf("selection: %w", prompt.ErrAborted), expected: 130},
		{name: "interrupted", err: context.Canceled, expected: 130},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expected, cli.ExitCode(testCase.err))
		})
	}
}
