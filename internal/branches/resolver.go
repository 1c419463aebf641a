package branches

import (
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/gitutils/internal/gitconfig"
	"github.com/temirov/gitutils/internal/gitrepo"
)

const (
	branchSourceMissingMessageConstant = "branch source not configured"
	checkoutReflogPrefixConstant       = "checkout: moving from "
	mergedLabelSuffixConstant          = " [merged]"
	mergeQueryFailedMessageConstant    = "merge status unavailable, treating branch as not merged"
	logFieldBranchConstant             = "branch"
	logFieldBaseBranchConstant         = "base_branch"
)

// Base branch names tried in order when none is configured.
var defaultBaseBranchCandidates = []string{"main", "master", "develop"}

// ErrBranchSourceNotConfigured indicates NewResolver received a nil source.
var ErrBranchSourceNotConfigured = errors.New(branchSourceMissingMessageConstant)

// BranchSource exposes the repository reads the resolver depends on.
type BranchSource interface {
	HeadBranch() (string, error)
	LocalBranches() ([]string, error)
	BranchExists(branchName string) bool
	IsBranchAncestor(ancestorBranch string, descendantBranch string) (bool, error)
	HeadReflogMessages() ([]string, error)
}

// Resolver derives branch state from a single open repository.
type Resolver struct {
	source BranchSource
	logger *zap.Logger
}

// NewResolver constructs a Resolver. A nil logger is replaced with a no-op logger.
func NewResolver(source BranchSource, logger *zap.Logger) (*Resolver, error) {
	if source == nil {
		return nil, ErrBranchSourceNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{source: source, logger: logger}, nil
}

// CurrentBranch returns the branch HEAD points at, or gitrepo.ErrDetachedHead.
func (resolver *Resolver) CurrentBranch() (string, error) {
	return resolver.source.HeadBranch()
}

// ResolveBaseBranch returns git-branch-delete.base when configured, otherwise the first
// existing branch among main, master, and develop.
func (resolver *Resolver) ResolveBaseBranch(provider gitconfig.Provider) (string, error) {
	if configuredBase := gitconfig.StringValue(provider, gitconfig.BaseBranchKey); len(configuredBase) > 0 {
		return configuredBase, nil
	}

	for _, candidate := range defaultBaseBranchCandidates {
		if resolver.source.BranchExists(candidate) {
			return candidate, nil
		}
	}
	return "", gitrepo.ErrBaseBranchNotFound
}

// IsMerged reports whether branchName's work has landed on baseBranchName: the branch tip
// is an ancestor of, or equal to, the base tip. Any failure yields false.
func (resolver *Resolver) IsMerged(branchName string, baseBranchName string) bool {
	merged, queryError := resolver.source.IsBranchAncestor(branchName, baseBranchName)
	if queryError != nil {
		resolver.logger.Debug(
			mergeQueryFailedMessageConstant,
			zap.String(logFieldBranchConstant, branchName),
			zap.String(logFieldBaseBranchConstant, baseBranchName),
			zap.Error(queryError),
		)
		return false
	}
	return merged
}

// MergeLabel renders the branch name with a [merged] marker when IsMerged holds.
func (resolver *Resolver) MergeLabel(branchName string, baseBranchName string) string {
	if len(baseBranchName) > 0 && resolver.IsMerged(branchName, baseBranchName) {
		return branchName + mergedLabelSuffixConstant
	}
	return branchName
}

// LocalBranches lists local branches in lexical order.
func (resolver *Resolver) LocalBranches() ([]string, error) {
	return resolver.source.LocalBranches()
}

// RecentBranches lists checkout destinations from the HEAD reflog, most recent first,
// each branch once. Destinations that are no longer local branches are omitted.
func (resolver *Resolver) RecentBranches() ([]string, error) {
	messages, reflogError := resolver.source.HeadReflogMessages()
	if reflogError != nil {
		return nil, reflogError
	}

	seen := make(map[string]struct{})
	var recentBranches []string
	for _, message := range messages {
		if !strings.HasPrefix(message, checkoutReflogPrefixConstant) {
			continue
		}
		fields := strings.Fields(message)
		destination := fields[len(fields)-1]
		if _, duplicate := seen[destination]; duplicate {
			continue
		}
		seen[destination] = struct{}{}
		if !resolver.source.BranchExists(destination) {
			continue
		}
		recentBranches = append(recentBranches, destination)
	}
	return recentBranches, nil
}

// TrimMergeLabel strips the [merged] marker added by MergeLabel.
func TrimMergeLabel(label string) string {
	return strings.TrimSuffix(label, mergedLabelSuffixConstant)
}
