// Package switcher implements the branch-switch command: filter local or recent branches and check out the chosen one.
package switcher
