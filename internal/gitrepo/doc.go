// Package gitrepo opens local repositories and answers the ref, commit, and
// status questions the branch and repository tools ask.
//
// Repository wraps a go-git repository for reads (branches, HEAD, ancestry,
// working tree status, reflog, configuration) and delegates the mutations
// go-git handles poorly (branch deletion, checkout, pull, remote branch
// deletion) to the git executable through execshell. RepoInfo parses clone
// URLs into the domain/user/repository triple used for on-disk layout.
package gitrepo
