package lifecycle

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/temirov/gitutils/internal/repos/filesystem"
)

// CollisionPolicy decides what Clone does when the target directory already exists.
type CollisionPolicy string

// Supported collision policies. CollisionPolicyAsk defers to the prompter, or to Skip without a terminal.
const (
	CollisionPolicyAsk     CollisionPolicy = CollisionPolicy("")
	CollisionPolicySkip    CollisionPolicy = CollisionPolicy("skip")
	CollisionPolicyUpdate  CollisionPolicy = CollisionPolicy("update")
	CollisionPolicyReplace CollisionPolicy = CollisionPolicy("replace")
	CollisionPolicyRename  CollisionPolicy = CollisionPolicy("rename")
)

const (
	invalidCollisionPolicyTemplateConstant = "unsupported --on-exists value %q (expected skip, update, replace, or rename)"
	renameSuffixTemplateConstant           = "%s-%d"
	firstRenameSuffixConstant              = 2
	collisionChoiceSkipConstant            = "Skip"
	collisionChoiceUpdateConstant          = "Update (git pull)"
	collisionChoiceReplaceConstant         = "Replace (delete and re-clone)"
	collisionChoiceRenameConstant          = "Rename (clone next to it)"
)

// CollisionPolicies lists the selectable policies in prompt order.
var CollisionPolicies = []CollisionPolicy{
	CollisionPolicySkip,
	CollisionPolicyUpdate,
	CollisionPolicyReplace,
	CollisionPolicyRename,
}

var collisionChoiceLabels = map[CollisionPolicy]string{
	CollisionPolicySkip:    collisionChoiceSkipConstant,
	CollisionPolicyUpdate:  collisionChoiceUpdateConstant,
	CollisionPolicyReplace: collisionChoiceReplaceConstant,
	CollisionPolicyRename:  collisionChoiceRenameConstant,
}

// ParseCollisionPolicy normalizes a flag or configuration value. Empty input means ask.
func ParseCollisionPolicy(value string) (CollisionPolicy, error) {
	normalized := CollisionPolicy(strings.ToLower(strings.TrimSpace(value)))
	if normalized == CollisionPolicyAsk {
		return CollisionPolicyAsk, nil
	}
	for _, policy := range CollisionPolicies {
		if policy == normalized {
			return policy, nil
		}
	}
	return CollisionPolicyAsk, fmt.Errorf(invalidCollisionPolicyTemplateConstant, value)
}

// NextAvailablePath returns targetPath with the lowest integer suffix, starting at 2, that does not exist.
func NextAvailablePath(fileSystem filesystem.FileSystem, targetPath string) string {
	directory := filepath.Dir(targetPath)
	baseName := filepath.Base(targetPath)
	for suffix := firstRenameSuffixConstant; ; suffix++ {
		candidate := filepath.Join(directory, fmt.Sprintf(renameSuffixTemplateConstant, baseName, suffix))
		if !filesystem.Exists(fileSystem, candidate) {
			return candidate
		}
	}
}

func collisionChoiceLabelsInOrder() []string {
	labels := make([]string, 0, len(CollisionPolicies))
	for _, policy := range CollisionPolicies {
		labels = append(labels, collisionChoiceLabels[policy])
	}
	return labels
}

func collisionPolicyForLabel(label string) CollisionPolicy {
	for policy, policyLabel := range collisionChoiceLabels {
		if policyLabel == label {
			return policy
		}
	}
	return CollisionPolicySkip
}

// String renders the policy as accepted by --on-exists.
func (policy CollisionPolicy) String() string {
	return string(policy)
}

func collisionPolicyNames() []string {
	names := make([]string, 0, len(CollisionPolicies))
	for _, policy := range CollisionPolicies {
		names = append(names, policy.String())
	}
	return names
}
