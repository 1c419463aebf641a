package gitrepo

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

const (
	schemeSeparatorConstant         = "://"
	sshUserDelimiterConstant        = "@"
	sshPathDelimiterConstant        = ":"
	pathSeparatorConstant           = "/"
	gitSuffixConstant               = ".git"
	httpsSchemeConstant             = "https"
	httpSchemeConstant              = "http"
	sshURLTemplateConstant          = "git@%s:%s/%s.git"
	httpsURLTemplateConstant        = "https://%s/%s/%s.git"
	sshConvertedURLTemplateConstant = "git@%s:%s"
	fullNameTemplateConstant        = "%s/%s"
	minimumPathSegmentsConstant     = 2
	emptyURLReasonConstant          = "URL is empty"
	missingSSHPathReasonConstant    = "missing ':' separating host and path"
	missingHostReasonConstant       = "missing host"
	tooFewSegmentsReasonConstant    = "expected at least <user>/<repository> in the path"
	unparsableURLReasonTemplate     = "cannot parse URL: %v"
	invalidComponentReasonTemplate  = "%q is not a valid %s name"
	domainComponentLabelConstant    = "domain"
	userComponentLabelConstant      = "user"
	repositoryComponentLabel        = "repository"
	currentDirectoryComponent       = "."
	parentDirectoryComponent        = ".."
	forbiddenComponentCharacters    = "/\\\x00"
)

// RepoInfo identifies a repository by hosting domain, owning user or organization, and name.
type RepoInfo struct {
	Domain     string
	User       string
	Repository string
}

// ParseRepoInfo extracts the domain, user, and repository name from an SSH
// (user@host:user/repo.git) or scheme-based (https://host/user/repo.git) URL.
func ParseRepoInfo(repositoryURL string) (RepoInfo, error) {
	trimmedURL := strings.TrimSpace(repositoryURL)
	if len(trimmedURL) == 0 {
		return RepoInfo{}, InvalidRepositoryURLError{URL: repositoryURL, Reason: emptyURLReasonConstant}
	}

	if strings.Contains(trimmedURL, schemeSeparatorConstant) {
		return parseSchemeURL(trimmedURL)
	}
	return parseSSHURL(trimmedURL)
}

func parseSchemeURL(repositoryURL string) (RepoInfo, error) {
	parsedURL, parseError := url.Parse(repositoryURL)
	if parseError != nil {
		return RepoInfo{}, InvalidRepositoryURLError{URL: repositoryURL, Reason: fmt.Sprintf(unparsableURLReasonTemplate, parseError)}
	}

	host := parsedURL.Hostname()
	if len(host) == 0 {
		return RepoInfo{}, InvalidRepositoryURLError{URL: repositoryURL, Reason: missingHostReasonConstant}
	}

	return buildRepoInfo(repositoryURL, host, parsedURL.Path)
}

func parseSSHURL(repositoryURL string) (RepoInfo, error) {
	authority, repositoryPath, hasPath := strings.Cut(repositoryURL, sshPathDelimiterConstant)
	if !hasPath {
		return RepoInfo{}, InvalidRepositoryURLError{URL: repositoryURL, Reason: missingSSHPathReasonConstant}
	}

	host := authority
	if _, afterUser, hasUser := strings.Cut(authority, sshUserDelimiterConstant); hasUser {
		host = afterUser
	}
	if len(strings.TrimSpace(host)) == 0 {
		return RepoInfo{}, InvalidRepositoryURLError{URL: repositoryURL, Reason: missingHostReasonConstant}
	}

	return buildRepoInfo(repositoryURL, host, repositoryPath)
}

func buildRepoInfo(repositoryURL string, host string, repositoryPath string) (RepoInfo, error) {
	trimmedPath := strings.Trim(repositoryPath, pathSeparatorConstant)
	trimmedPath = strings.TrimSuffix(trimmedPath, gitSuffixConstant)

	segments := strings.Split(trimmedPath, pathSeparatorConstant)
	if len(segments) < minimumPathSegmentsConstant {
		return RepoInfo{}, InvalidRepositoryURLError{URL: repositoryURL, Reason: tooFewSegmentsReasonConstant}
	}

	user := strings.TrimSpace(segments[0])
	repository := strings.TrimSuffix(strings.TrimSpace(segments[1]), gitSuffixConstant)
	if len(user) == 0 || len(repository) == 0 {
		return RepoInfo{}, InvalidRepositoryURLError{URL: repositoryURL, Reason: tooFewSegmentsReasonConstant}
	}

	for _, component := range []struct {
		value string
		label string
	}{
		{value: host, label: domainComponentLabelConstant},
		{value: user, label: userComponentLabelConstant},
		{value: repository, label: repositoryComponentLabel},
	} {
		if !isPathComponent(component.value) {
			return RepoInfo{}, InvalidRepositoryURLError{URL: repositoryURL, Reason: fmt.Sprintf(invalidComponentReasonTemplate, component.value, component.label)}
		}
	}

	return RepoInfo{Domain: host, User: user, Repository: repository}, nil
}

// isPathComponent reports whether value can stand as a single directory name below the root.
func isPathComponent(value string) bool {
	if len(value) == 0 || value == currentDirectoryComponent || value == parentDirectoryComponent {
		return false
	}
	return !strings.ContainsAny(value, forbiddenComponentCharacters)
}

// RelativePath returns domain/user/repository joined with the OS separator.
func (info RepoInfo) RelativePath() string {
	return filepath.Join(info.Domain, info.User, info.Repository)
}

// FullName returns user/repository, the form GitHub tooling expects.
func (info RepoInfo) FullName() string {
	return fmt.Sprintf(fullNameTemplateConstant, info.User, info.Repository)
}

// SSHURL reconstructs the canonical SSH clone URL.
func (info RepoInfo) SSHURL() string {
	return fmt.Sprintf(sshURLTemplateConstant, info.Domain, info.User, info.Repository)
}

// HTTPSURL reconstructs the canonical HTTPS clone URL.
func (info RepoInfo) HTTPSURL() string {
	return fmt.Sprintf(httpsURLTemplateConstant, info.Domain, info.User, info.Repository)
}

// ConvertToSSH rewrites http(s) URLs into the git@host:path form and leaves everything else untouched.
func ConvertToSSH(repositoryURL string) string {
	trimmedURL := strings.TrimSpace(repositoryURL)
	parsedURL, parseError := url.Parse(trimmedURL)
	if parseError != nil {
		return repositoryURL
	}
	if parsedURL.Scheme != httpsSchemeConstant && parsedURL.Scheme != httpSchemeConstant {
		return repositoryURL
	}
	if len(parsedURL.Hostname()) == 0 {
		return repositoryURL
	}
	return fmt.Sprintf(sshConvertedURLTemplateConstant, parsedURL.Hostname(), strings.TrimPrefix(parsedURL.Path, pathSeparatorConstant))
}
