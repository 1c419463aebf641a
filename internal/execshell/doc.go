// Package execshell runs the external tools the utilities delegate to.
//
// ShellExecutor wraps a CommandRunner with zap logging, an optional per-command
// timeout, and typed errors: CommandFailedError carries the captured standard
// error of a non-zero exit, CommandExecutionError reports a process that could
// not run at all. OSCommandRunner is the os/exec backed runner.
package execshell
