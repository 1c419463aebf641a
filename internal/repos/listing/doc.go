// Package listing implements the repo ls command.
package listing
