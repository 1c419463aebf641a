package githubauth

import (
	"context"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
)

// NewHTTPClient returns an HTTP client that authenticates GitHub API calls with the token.
// An empty token yields an unauthenticated client.
func NewHTTPClient(executionContext context.Context, token string) *http.Client {
	trimmedToken := strings.TrimSpace(token)
	if len(trimmedToken) == 0 {
		return &http.Client{}
	}
	tokenSource := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: trimmedToken})
	return oauth2.NewClient(executionContext, tokenSource)
}
