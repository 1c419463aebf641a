package pullrequests

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/gitutils/internal/gitrepo"
)

const (
	repositoryMissingMessageConstant    = "pull request history repository not configured"
	detailSourceMissingMessageConstant  = "pull request detail source not configured"
	browserMissingMessageConstant       = "pull request browser opener not configured"
	conflictingRangeMessageConstant     = "--count cannot be combined with a revision range"
	negativeCountTemplateConstant       = "--count must be positive, got %d"
	notGitHubMessageConstant            = "Not a GitHub repository"
	invalidRangeTemplateConstant        = "Invalid revision range: %s"
	noPullRequestsTemplateConstant      = "No merged pull requests found in range: %s\n"
	openedInBrowserTemplateConstant     = "Opened in browser: %s\n"
	detailFetchFailedTemplateConstant   = "Skipping #%d: %v\n"
	browserURLTemplateConstant          = "https://github.com/%s/pulls?q=is:pr+is:merged+%s"
	countRangeTemplateConstant          = "HEAD~%d..HEAD"
	tagRangeTemplateConstant            = "%s..HEAD"
	defaultRangeConstant                = "HEAD~10..HEAD"
	originRemoteNameConstant            = "origin"
	githubDomainConstant                = "github.com"
	githubPlatformConstant              = "github"
	browserQuerySeparatorConstant       = "+"
	detailFetchFailedLogMessageConstant = "skipping pull request without details"
	logFieldNumberConstant              = "number"
	logFieldRepositoryConstant          = "repository"
	logFieldRangeConstant               = "range"
	rangeResolvedLogMessageConstant     = "resolved revision range"
)

var pullRequestReferencePattern = regexp.MustCompile(`#(\d+)`)

var (
	// ErrRepositoryNotConfigured indicates NewService received no repository.
	ErrRepositoryNotConfigured = errors.New(repositoryMissingMessageConstant)
	// ErrDetailSourceNotConfigured indicates NewService received no detail source.
	ErrDetailSourceNotConfigured = errors.New(detailSourceMissingMessageConstant)
	// ErrBrowserNotConfigured indicates --web was requested without a browser opener.
	ErrBrowserNotConfigured = errors.New(browserMissingMessageConstant)
	// ErrConflictingRange rejects --count together with an explicit range.
	ErrConflictingRange = errors.New(conflictingRangeMessageConstant)
	// ErrNotGitHubRepository indicates the origin remote does not point at github.com.
	ErrNotGitHubRepository = errors.New(notGitHubMessageConstant)
)

// InvalidRangeError reports a revision range git log rejected.
type InvalidRangeError struct {
	Range string
	Cause error
}

// Error describes the rejected range.
func (rangeError InvalidRangeError) Error() string {
	return fmt.Sprintf(invalidRangeTemplateConstant, rangeError.Range)
}

// Unwrap exposes the git failure.
func (rangeError InvalidRangeError) Unwrap() error {
	return rangeError.Cause
}

// History is the subset of gitrepo.Repository pr-merged reads.
type History interface {
	CommitSubjects(executionContext context.Context, revisionRange string) ([]string, error)
	LatestTag(executionContext context.Context) (string, bool)
	RemoteURL(remoteName string) (string, error)
}

// DetailSource fetches pull request details for an owner/name repository.
type DetailSource interface {
	PullRequest(executionContext context.Context, repository string, number int) (PullRequest, error)
}

// BrowserOpener opens the repository pull request list in a browser.
type BrowserOpener interface {
	OpenPullRequestList(executionContext context.Context, repository string) error
}

// AvailabilityChecker verifies an external tool is installed before any work starts.
type AvailabilityChecker interface {
	CheckAvailability(executionContext context.Context) error
}

// PullRequest is one merged pull request. MergedAt and Author are omitted from JSON when unknown.
type PullRequest struct {
	Number   int    `json:"number"`
	Title    string `json:"title"`
	URL      string `json:"url"`
	MergedAt string `json:"merged_at,omitempty"`
	Author   string `json:"author,omitempty"`
}

// Report is the result of one pr-merged run.
type Report struct {
	Range    string        `json:"range"`
	Platform string        `json:"platform"`
	Pulls    []PullRequest `json:"pulls"`
}

// Options configures a pr-merged run.
type Options struct {
	RevisionRange string
	Count         int
	Web           bool
	Format        Format
}

// Validate rejects conflicting range selectors and unknown formats.
func (options Options) Validate() error {
	if options.Count < 0 {
		return fmt.Errorf(negativeCountTemplateConstant, options.Count)
	}
	if options.Count > 0 && len(strings.TrimSpace(options.RevisionRange)) > 0 {
		return ErrConflictingRange
	}
	_, formatError := ParseFormat(string(options.Format))
	return formatError
}

// ServiceDependencies enumerates collaborators required by the service.
type ServiceDependencies struct {
	Repository   History
	Details      DetailSource
	Browser      BrowserOpener
	Availability AvailabilityChecker
	Logger       *zap.Logger
	Output       io.Writer
	ErrorOutput  io.Writer
}

// Service lists the pull requests merged in a revision range.
type Service struct {
	repository   History
	details      DetailSource
	browser      BrowserOpener
	availability AvailabilityChecker
	logger       *zap.Logger
	output       io.Writer
	errorOutput  io.Writer
}

// NewService validates dependencies and constructs a Service.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.Repository == nil {
		return nil, ErrRepositoryNotConfigured
	}
	if dependencies.Details == nil {
		return nil, ErrDetailSourceNotConfigured
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	output := dependencies.Output
	if output == nil {
		output = io.Discard
	}
	errorOutput := dependencies.ErrorOutput
	if errorOutput == nil {
		errorOutput = io.Discard
	}
	return &Service{
		repository:   dependencies.Repository,
		details:      dependencies.Details,
		browser:      dependencies.Browser,
		availability: dependencies.Availability,
		logger:       logger,
		output:       output,
		errorOutput:  errorOutput,
	}, nil
}

// ResolveRange picks the explicit range, HEAD~count..HEAD, <latest tag>..HEAD, or HEAD~10..HEAD.
func (service *Service) ResolveRange(executionContext context.Context, options Options) string {
	explicitRange := strings.TrimSpace(options.RevisionRange)
	if len(explicitRange) > 0 {
		return explicitRange
	}
	if options.Count > 0 {
		return fmt.Sprintf(countRangeTemplateConstant, options.Count)
	}
	if tag, found := service.repository.LatestTag(executionContext); found {
		return fmt.Sprintf(tagRangeTemplateConstant, tag)
	}
	return defaultRangeConstant
}

// Run resolves the range, collects the referenced pull requests, and prints them.
// With Web set it opens the pull request list instead of printing details.
func (service *Service) Run(executionContext context.Context, options Options) (Report, error) {
	if validationError := options.Validate(); validationError != nil {
		return Report{}, validationError
	}
	format, _ := ParseFormat(string(options.Format))

	revisionRange := service.ResolveRange(executionContext, options)
	service.logger.Debug(rangeResolvedLogMessageConstant, zap.String(logFieldRangeConstant, revisionRange))
	report := Report{Range: revisionRange, Platform: githubPlatformConstant, Pulls: []PullRequest{}}

	if service.availability != nil {
		if availabilityError := service.availability.CheckAvailability(executionContext); availabilityError != nil {
			return report, availabilityError
		}
	}

	repository, repositoryError := service.githubRepository()
	if repositoryError != nil {
		return report, repositoryError
	}

	subjects, logError := service.repository.CommitSubjects(executionContext, revisionRange)
	if logError != nil {
		return report, InvalidRangeError{Range: revisionRange, Cause: logError}
	}

	numbers := ExtractNumbers(subjects)
	if len(numbers) == 0 {
		fmt.Fprintf(service.output, noPullRequestsTemplateConstant, revisionRange)
		return report, nil
	}

	if options.Web {
		return report, service.openInBrowser(executionContext, repository, numbers)
	}

	for _, number := range numbers {
		pullRequest, detailError := service.details.PullRequest(executionContext, repository, number)
		if detailError != nil {
			service.logger.Debug(detailFetchFailedLogMessageConstant, zap.Int(logFieldNumberConstant, number), zap.String(logFieldRepositoryConstant, repository), zap.Error(detailError))
			fmt.Fprintf(service.errorOutput, detailFetchFailedTemplateConstant, number, detailError)
			continue
		}
		pullRequest.Number = number
		report.Pulls = append(report.Pulls, pullRequest)
	}

	return report, Render(service.output, report, format)
}

// ExtractNumbers returns every #N reference in the subjects, deduplicated in first-seen order.
func ExtractNumbers(subjects []string) []int {
	seen := make(map[int]struct{})
	var numbers []int
	for _, subject := range subjects {
		for _, match := range pullRequestReferencePattern.FindAllStringSubmatch(subject, -1) {
			number, parseError := strconv.Atoi(match[1])
			if parseError != nil {
				continue
			}
			if _, duplicate := seen[number]; duplicate {
				continue
			}
			seen[number] = struct{}{}
			numbers = append(numbers, number)
		}
	}
	return numbers
}

// OwnerRepository converts a github.com remote URL into owner/name.
func OwnerRepository(remoteURL string) (string, error) {
	info, parseError := gitrepo.ParseRepoInfo(remoteURL)
	if parseError != nil || !strings.EqualFold(info.Domain, githubDomainConstant) {
		return "", ErrNotGitHubRepository
	}
	return info.User + "/" + info.Repository, nil
}

func (service *Service) githubRepository() (string, error) {
	remoteURL, remoteError := service.repository.RemoteURL(originRemoteNameConstant)
	if remoteError != nil {
		return "", remoteError
	}
	return OwnerRepository(remoteURL)
}

func (service *Service) openInBrowser(executionContext context.Context, repository string, numbers []int) error {
	if service.browser == nil {
		return ErrBrowserNotConfigured
	}
	if openError := service.browser.OpenPullRequestList(executionContext, repository); openError != nil {
		return openError
	}
	query := make([]string, 0, len(numbers))
	for _, number := range numbers {
		query = append(query, strconv.Itoa(number))
	}
	fmt.Fprintf(service.output, openedInBrowserTemplateConstant, fmt.Sprintf(browserURLTemplateConstant, repository, strings.Join(query, browserQuerySeparatorConstant)))
	return nil
}
