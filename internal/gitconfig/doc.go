// Package gitconfig reads tool settings from git configuration scopes and layers them with application defaults.
package gitconfig
