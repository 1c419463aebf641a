package setup

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// Shell identifies a supported interactive shell.
type Shell string

// Supported shells.
const (
	ShellBash Shell = "bash"
	ShellZsh  Shell = "zsh"
	ShellFish Shell = "fish"
)

// Shells lists every supported shell in uninstall order.
var Shells = []Shell{ShellBash, ShellZsh, ShellFish}

const (
	unsupportedShellTemplateConstant = "Unsupported shell: %s"
	posixSourceLineConstant          = "[ -f ~/.git-utils/env.sh ] && source ~/.git-utils/env.sh"
	fishSourceLineConstant           = "test -f ~/.git-utils/env.fish && source ~/.git-utils/env.fish"
	bashRCFileConstant               = ".bashrc"
	zshRCFileConstant                = ".zshrc"
	fishConfigFileConstant           = ".config/fish/config.fish"
)

// UnsupportedShellError reports a shell name outside Shells.
type UnsupportedShellError struct {
	Name string
}

// Error describes the unsupported shell.
func (shellError UnsupportedShellError) Error() string {
	return fmt.Sprintf(unsupportedShellTemplateConstant, shellError.Name)
}

// ParseShell accepts a shell name or a path to a shell binary such as /usr/bin/zsh.
func ParseShell(value string) (Shell, error) {
	name := path.Base(strings.TrimSpace(value))
	for _, shell := range Shells {
		if string(shell) == name {
			return shell, nil
		}
	}
	return "", UnsupportedShellError{Name: strings.TrimSpace(value)}
}

// RCFile is the startup file, relative to the home directory, that sources the environment.
func (shell Shell) RCFile() string {
	switch shell {
	case ShellZsh:
		return zshRCFileConstant
	case ShellFish:
		return filepath.FromSlash(fishConfigFileConstant)
	default:
		return bashRCFileConstant
	}
}

// SourceLine is the line added to RCFile.
func (shell Shell) SourceLine() string {
	if shell == ShellFish {
		return fishSourceLineConstant
	}
	return posixSourceLineConstant
}

// EnvironmentFile names the file under ~/.git-utils the shell sources.
func (shell Shell) EnvironmentFile() string {
	if shell == ShellFish {
		return envFishFileConstant
	}
	return envShellFileConstant
}
