// Package pullrequests implements pr-merged: it finds the #N pull request references in a
// revision range, fetches their details through gh or the GitHub API, and prints them as
// terminal hyperlinks, plain numbers, JSON, or Markdown.
package pullrequests
