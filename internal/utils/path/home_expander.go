package pathutils

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	tildeSymbolConstant              = "~"
	homeDirectoryUnavailableConstant = "could not determine home directory"
)

// ErrHomeDirectoryUnavailable indicates the home directory lookup failed or returned nothing.
var ErrHomeDirectoryUnavailable = errors.New(homeDirectoryUnavailableConstant)

// HomeDirectoryProvider resolves the current user's home directory path.
type HomeDirectoryProvider func() (string, error)

// HomeExpander resolves the user's home directory once and expands ~ prefixes against it.
type HomeExpander struct {
	homeDirectoryProvider HomeDirectoryProvider
	homeDirectory         string
	homeDirectoryError    error
	initializationGuard   sync.Once
}

// NewHomeExpander constructs a HomeExpander using the operating system lookup.
func NewHomeExpander() *HomeExpander {
	return NewHomeExpanderWithProvider(os.UserHomeDir)
}

// NewHomeExpanderWithProvider constructs a HomeExpander with a custom provider, as tests do.
func NewHomeExpanderWithProvider(provider HomeDirectoryProvider) *HomeExpander {
	if provider == nil {
		provider = os.UserHomeDir
	}
	return &HomeExpander{homeDirectoryProvider: provider}
}

// HomeDirectory returns the resolved home directory.
func (expander *HomeExpander) HomeDirectory() (string, error) {
	if expander == nil {
		return "", ErrHomeDirectoryUnavailable
	}
	expander.initializationGuard.Do(func() {
		expander.homeDirectory, expander.homeDirectoryError = expander.homeDirectoryProvider()
		if expander.homeDirectoryError == nil && len(strings.TrimSpace(expander.homeDirectory)) == 0 {
			expander.homeDirectoryError = ErrHomeDirectoryUnavailable
		}
	})
	if expander.homeDirectoryError != nil {
		return "", errors.Join(ErrHomeDirectoryUnavailable, expander.homeDirectoryError)
	}
	return expander.homeDirectory, nil
}

// Expand replaces a leading "~" or "~/" with the home directory. Paths such as "~alice" and
// paths without a tilde are returned unchanged, as is everything when the lookup fails.
func (expander *HomeExpander) Expand(candidatePath string) string {
	if !strings.HasPrefix(candidatePath, tildeSymbolConstant) {
		return candidatePath
	}
	remainder := strings.TrimPrefix(candidatePath, tildeSymbolConstant)
	if len(remainder) > 0 && remainder[0] != '/' && remainder[0] != os.PathSeparator {
		return candidatePath
	}

	homeDirectory, homeError := expander.HomeDirectory()
	if homeError != nil {
		return candidatePath
	}
	return filepath.Join(homeDirectory, remainder)
}
