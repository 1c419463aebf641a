// Package dependencies builds default collaborators for commands that were not given test doubles.
package dependencies
