// Package cleanup implements the branch-delete command.
//
// Service plans candidates from the branch resolver, confirms them through a prompt.Prompter,
// and deletes them one by one. Every non-forced deletion is re-checked against the base branch
// inside gitrepo.Repository.DeleteBranch, so a stale or failed merge query in the planning step
// can never remove unmerged work.
package cleanup
