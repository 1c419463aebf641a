// Package githubcli wraps the GitHub CLI for the pr-merged tool.
//
// It layers typed request and response structures over gh subcommands and runs them through
// execshell so interactions with GitHub can be stubbed during testing.
package githubcli
