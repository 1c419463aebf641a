package githubauth

import (
	"os"
	"strings"
)

// Environment variables consulted for a GitHub token, in order of preference.
const (
	EnvGitHubCLIToken = "GH_TOKEN"
	EnvGitHubToken    = "GITHUB_TOKEN"
	EnvGitHubAPIToken = "GITHUB_API_TOKEN"
)

// EnvironmentLookup reads a single environment variable.
type EnvironmentLookup func(name string) (string, bool)

// TokenResolver finds a GitHub token among environment variables.
type TokenResolver struct {
	Lookup EnvironmentLookup
	// PreferredVariables are consulted before the standard GitHub variables.
	PreferredVariables []string
}

// Resolve returns the first non-blank token.
func (resolver TokenResolver) Resolve() (string, bool) {
	lookup := resolver.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}

	candidates := append(append([]string(nil), resolver.PreferredVariables...), EnvGitHubCLIToken, EnvGitHubToken, EnvGitHubAPIToken)
	for _, variableName := range candidates {
		variableName = strings.TrimSpace(variableName)
		if len(variableName) == 0 {
			continue
		}
		value, present := lookup(variableName)
		value = strings.TrimSpace(value)
		if present && len(value) > 0 {
			return value, true
		}
	}
	return "", false
}

// ResolveToken reads the process environment, consulting preferredVariables first.
func ResolveToken(preferredVariables ...string) (string, bool) {
	return TokenResolver{PreferredVariables: preferredVariables}.Resolve()
}
