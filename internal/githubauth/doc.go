// Package githubauth locates GitHub credentials in the environment and turns them into
// authenticated HTTP clients.
package githubauth
