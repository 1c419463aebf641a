package cleanup

import (
	"errors"
	"strings"
)

const (
	defaultRemoteNameConstant      = "origin"
	forceWithMergedMessageConstant = "--force cannot be combined with --merged"
	allWithMergedMessageConstant   = "--all cannot be combined with --merged"
	allWithSelectMessageConstant   = "--all cannot be combined with --select"
)

var (
	// ErrForceWithMerged rejects forced deletion restricted to merged branches.
	ErrForceWithMerged = errors.New(forceWithMergedMessageConstant)
	// ErrAllWithMerged rejects --all together with --merged.
	ErrAllWithMerged = errors.New(allWithMergedMessageConstant)
	// ErrAllWithSelect rejects --all together with --select.
	ErrAllWithSelect = errors.New(allWithSelectMessageConstant)
)

// Options selects which branches to delete and how.
// With neither All nor Force set only merged branches are candidates, whether or not MergedOnly is set.
type Options struct {
	All          bool
	MergedOnly   bool
	Select       bool
	Force        bool
	DeleteRemote bool
	RemoteName   string
	AssumeYes    bool
}

// Validate rejects contradictory selections. It does not touch any repository.
func (options Options) Validate() error {
	if options.Force && options.MergedOnly {
		return ErrForceWithMerged
	}
	if options.All && options.MergedOnly {
		return ErrAllWithMerged
	}
	if options.All && options.Select {
		return ErrAllWithSelect
	}
	return nil
}

func (options Options) filtersMerged() bool {
	return !options.All && !options.Force
}

func (options Options) remoteName() string {
	trimmedRemoteName := strings.TrimSpace(options.RemoteName)
	if len(trimmedRemoteName) == 0 {
		return defaultRemoteNameConstant
	}
	return trimmedRemoteName
}
