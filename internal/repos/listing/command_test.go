package listing_test

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/gitutils/internal/gitconfig"
	"github.com/temirov/gitutils/internal/repos/lifecycle"
	"github.com/temirov/gitutils/internal/repos/listing"
)

func TestListCommand(testInstance *testing.T) {
	testCases := []struct {
		name          string
		configuration gitconfig.MapProvider
		fallbackRoot  func(root string) string
		arguments     []string
		expected      func(root string) string
	}{
		{
			name:          "git_config_root",
			configuration: nil,
			arguments:     []string{"--dirty"},
			expected: func(string) string {
				return filepath.Join("github.com", "alice", "dirty") + "\n" + filepath.Join("gitlab.com", "bob", "broken") + "\n"
			},
		},
		{
			name:          "fallback_root_absolute",
			configuration: gitconfig.MapProvider{},
			fallbackRoot:  func(root string) string { return root },
			arguments:     []string{"-a"},
			expected: func(root string) string {
				return filepath.Join(root, "github.com", "alice", "clean") + "\n" +
					filepath.Join(root, "github.com", "alice", "dirty") + "\n" +
					filepath.Join(root, "gitlab.com", "bob", "broken") + "\n"
			},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			fixture := newListingFixture(testInstance)
			configuration := testCase.configuration
			if configuration == nil {
				configuration = gitconfig.MapProvider{gitconfig.RepositoryRootKey: fixture.root}
			}
			builder := listing.CommandBuilder{GitConfiguration: configuration}
			if testCase.fallbackRoot != nil {
				builder.ConfigurationProvider = func() lifecycle.CommandConfiguration {
					return lifecycle.CommandConfiguration{Root: testCase.fallbackRoot(fixture.root)}
				}
			}

			command, buildError := builder.Build()
			require.NoError(testInstance, buildError)
			output := &bytes.Buffer{}
			command.SetArgs(testCase.arguments)
			command.SetOut(output)
			command.SetErr(&bytes.Buffer{})
			require.NoError(testInstance, command.ExecuteContext(context.Background()))
			require.Equal(testInstance, testCase.expected(fixture.root), output.String())
		})
	}
}

func TestListCommandRequiresRoot(testInstance *testing.T) {
	builder := listing.CommandBuilder{GitConfiguration: gitconfig.MapProvider{}}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)
	command.SetArgs([]string{})
	command.SetOut(&bytes.Buffer{})
	command.SetErr(&bytes.Buffer{})
	require.ErrorIs(testInstance, command.ExecuteContext(context.Background()), lifecycle.ErrRootNotConfigured)
}
