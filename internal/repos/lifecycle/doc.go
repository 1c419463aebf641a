// Package lifecycle clones repositories into the managed tree under git-repo.root and removes them again.
//
// Clone derives the canonical <root>/<domain>/<user>/<repo> path from the URL and applies a
// CollisionPolicy when the path is taken. Delete refuses to remove anything outside the root or
// anything without a .git entry, and warns about uncommitted changes and commits ahead of the
// upstream before asking for confirmation.
package lifecycle
