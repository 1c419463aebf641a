// Package prompt asks users to confirm destructive steps and to choose among options.
//
// Terminal sessions get huh forms; redirected input falls back to a line-based prompter.
package prompt
