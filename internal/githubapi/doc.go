// Package githubapi reads pull request details from the GitHub REST API via go-github.
package githubapi
