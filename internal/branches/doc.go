// Package branches answers questions about local branch state: the current branch,
// the base branch, merge reachability, and recently checked-out branches.
//
// The cleanup and switcher subpackages build the branch-delete and branch-switch
// tools on top of Resolver.
package branches
