// Package discovery finds repository roots inside a bounded-depth directory tree.
package discovery
