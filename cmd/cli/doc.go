// Package cli assembles the gitutils command tree. It loads the layered
// configuration, builds the zap logger, and mounts branch-delete,
// branch-switch, repo, pr-merged, setup, and config under one root so the
// per-tool binaries only choose which subcommand to run.
package cli
