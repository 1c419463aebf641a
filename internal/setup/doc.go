// Package setup installs the gitutils shell integration: environment files under ~/.git-utils,
// a marked source line in the shell startup file, and the recommended git configuration.
package setup
