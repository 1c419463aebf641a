package gitrepo

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
)

const (
	shallowCloneDepthConstant       = 1
	tokenAuthenticationUserConstant = "x-access-token"
	cloneErrorTemplateConstant      = "failed to clone %s into %s: %w"
	httpSchemePrefixConstant        = "http"
)

// CloneOptions configures Clone.
type CloneOptions struct {
	URL        string
	TargetPath string
	Shallow    bool
	Bare       bool
	Branch     string
	// Token authenticates HTTP(S) clones; ignored for SSH URLs.
	Token    string
	Progress io.Writer
}

// Clone creates a new clone at TargetPath. SSH URLs authenticate through the SSH agent.
func Clone(executionContext context.Context, options CloneOptions) error {
	cloneOptions := &git.CloneOptions{
		URL:      options.URL,
		Progress: options.Progress,
	}
	if options.Shallow {
		cloneOptions.Depth = shallowCloneDepthConstant
	}
	if branchName := strings.TrimSpace(options.Branch); len(branchName) > 0 {
		cloneOptions.ReferenceName = plumbing.NewBranchReferenceName(branchName)
		cloneOptions.SingleBranch = true
	}
	if len(options.Token) > 0 && strings.HasPrefix(options.URL, httpSchemePrefixConstant) {
		cloneOptions.Auth = &http.BasicAuth{Username: tokenAuthenticationUserConstant, Password: options.Token}
	}

	if _, cloneError := git.PlainCloneContext(executionContext, options.TargetPath, options.Bare, cloneOptions); cloneError != nil {
		return fmt.Errorf(cloneErrorTemplateConstant, options.URL, options.TargetPath, cloneError)
	}
	return nil
}
