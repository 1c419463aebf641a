package gitconfig

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	formatconfig "github.com/go-git/go-git/v5/plumbing/format/config"
)

const (
	keySeparatorConstant                 = "."
	readLocalConfigErrorTemplateConstant = "failed to read repository configuration: %w"
	readScopeErrorTemplateConstant       = "failed to read %s git configuration: %w"
	globalScopeNameConstant              = "global"
	systemScopeNameConstant              = "system"
)

// Configuration keys read by the tools.
const (
	RepositoryRootKey = "git-repo.root"
	PreferSSHKey      = "git-repo.prefer-ssh"
	BaseBranchKey     = "git-branch-delete.base"
)

var truthyValues = map[string]struct{}{
	"true": {},
	"yes":  {},
	"on":   {},
	"1":    {},
}

// Provider resolves configuration values by dotted git-config key.
type Provider interface {
	Value(key string) (string, bool)
}

// ScopeLoader loads a non-local git configuration scope.
type ScopeLoader func(scope config.Scope) (*config.Config, error)

// GitProvider answers lookups from the local, global, and system git configuration, in that order.
type GitProvider struct {
	scopes []*formatconfig.Config
}

// NewGitProvider reads git configuration for the repository containing repositoryPath.
// An empty path, or a path outside any repository, consults only the global and system scopes.
func NewGitProvider(repositoryPath string) (*GitProvider, error) {
	return NewGitProviderWithLoader(repositoryPath, config.LoadConfig)
}

// NewGitProviderWithLoader is NewGitProvider with an explicit loader for the global and system scopes.
func NewGitProviderWithLoader(repositoryPath string, loader ScopeLoader) (*GitProvider, error) {
	if loader == nil {
		loader = config.LoadConfig
	}

	provider := &GitProvider{}
	if len(strings.TrimSpace(repositoryPath)) > 0 {
		localConfiguration, localError := readLocalConfiguration(repositoryPath)
		if localError != nil {
			return nil, localError
		}
		if localConfiguration != nil {
			provider.scopes = append(provider.scopes, localConfiguration)
		}
	}

	for _, scope := range []struct {
		name  string
		scope config.Scope
	}{
		{name: globalScopeNameConstant, scope: config.GlobalScope},
		{name: systemScopeNameConstant, scope: config.SystemScope},
	} {
		scopeConfiguration, scopeError := loader(scope.scope)
		if scopeError != nil {
			return nil, fmt.Errorf(readScopeErrorTemplateConstant, scope.name, scopeError)
		}
		if scopeConfiguration != nil && scopeConfiguration.Raw != nil {
			provider.scopes = append(provider.scopes, scopeConfiguration.Raw)
		}
	}

	return provider, nil
}

// Value returns the first value found for key across the scopes.
func (provider *GitProvider) Value(key string) (string, bool) {
	if provider == nil {
		return "", false
	}
	sectionName, subsectionName, optionName, valid := splitKey(key)
	if !valid {
		return "", false
	}

	for _, scope := range provider.scopes {
		if !scope.HasSection(sectionName) {
			continue
		}
		section := scope.Section(sectionName)
		if len(subsectionName) == 0 {
			if section.HasOption(optionName) {
				return section.Option(optionName), true
			}
			continue
		}
		if !section.HasSubsection(subsectionName) {
			continue
		}
		subsection := section.Subsection(subsectionName)
		if subsection.HasOption(optionName) {
			return subsection.Option(optionName), true
		}
	}
	return "", false
}

func readLocalConfiguration(repositoryPath string) (*formatconfig.Config, error) {
	repository, openError := git.PlainOpenWithOptions(repositoryPath, &git.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if openError != nil {
		if errors.Is(openError, git.ErrRepositoryNotExists) {
			return nil, nil
		}
		return nil, fmt.Errorf(readLocalConfigErrorTemplateConstant, openError)
	}

	repositoryConfiguration, configurationError := repository.Config()
	if configurationError != nil {
		return nil, fmt.Errorf(readLocalConfigErrorTemplateConstant, configurationError)
	}
	return repositoryConfiguration.Raw, nil
}

// splitKey splits section[.subsection].option; the subsection may itself contain dots.
func splitKey(key string) (string, string, string, bool) {
	trimmedKey := strings.TrimSpace(key)
	firstSeparator := strings.Index(trimmedKey, keySeparatorConstant)
	lastSeparator := strings.LastIndex(trimmedKey, keySeparatorConstant)
	if firstSeparator <= 0 || lastSeparator == len(trimmedKey)-1 {
		return "", "", "", false
	}

	sectionName := trimmedKey[:firstSeparator]
	optionName := trimmedKey[lastSeparator+1:]
	subsectionName := ""
	if lastSeparator > firstSeparator {
		subsectionName = trimmedKey[firstSeparator+1 : lastSeparator]
	}
	return sectionName, subsectionName, optionName, true
}

// MapProvider serves values from memory. Keys are matched exactly.
type MapProvider map[string]string

// Value returns the stored value for key.
func (provider MapProvider) Value(key string) (string, bool) {
	value, found := provider[key]
	return value, found
}

// LayeredProvider consults each provider in order and returns the first non-empty answer.
type LayeredProvider []Provider

// Value returns the first non-empty value among the layers.
func (layers LayeredProvider) Value(key string) (string, bool) {
	for _, layer := range layers {
		if layer == nil {
			continue
		}
		value, found := layer.Value(key)
		if found && len(strings.TrimSpace(value)) > 0 {
			return value, true
		}
	}
	return "", false
}

// BoolValue interprets key as a git boolean. A key present without a value is true, as in git.
// For a LayeredProvider the first layer defining the key decides. Missing or unrecognized values are false.
func BoolValue(provider Provider, key string) bool {
	if layers, layered := provider.(LayeredProvider); layered {
		for _, layer := range layers {
			if layer == nil {
				continue
			}
			if _, found := layer.Value(key); found {
				return BoolValue(layer, key)
			}
		}
		return false
	}
	if provider == nil {
		return false
	}
	value, found := provider.Value(key)
	if !found {
		return false
	}
	normalizedValue := strings.ToLower(strings.TrimSpace(value))
	if len(normalizedValue) == 0 {
		return true
	}
	_, truthy := truthyValues[normalizedValue]
	return truthy
}

// StringValue returns the trimmed value for key, or an empty string.
func StringValue(provider Provider, key string) string {
	if provider == nil {
		return ""
	}
	value, found := provider.Value(key)
	if !found {
		return ""
	}
	return strings.TrimSpace(value)
}
