package switcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sahilm/fuzzy"
	"go.uber.org/zap"

	"github.com/temirov/gitutils/internal/branches"
	"github.com/temirov/gitutils/internal/gitconfig"
	"github.com/temirov/gitutils/internal/prompt"
)

const (
	repositoryMissingMessageConstant  = "branch switch repository not configured"
	prompterMissingMessageConstant    = "branch switch prompter not configured"
	mergedFiltersMessageConstant      = "--merged cannot be combined with --no-merged"
	noBranchesMessageConstant         = "No branches found"
	selectTitleConstant               = "Select a branch:"
	switchedMessageTemplateConstant   = "Switched to branch '%s'\n"
	baseUnavailableLogMessageConstant = "base branch unavailable, omitting merge labels"
)

var (
	// ErrRepositoryNotConfigured indicates NewService received no repository.
	ErrRepositoryNotConfigured = errors.New(repositoryMissingMessageConstant)
	// ErrPrompterNotConfigured indicates NewService received no prompter.
	ErrPrompterNotConfigured = errors.New(prompterMissingMessageConstant)
	// ErrConflictingMergeFilters rejects --merged together with --no-merged.
	ErrConflictingMergeFilters = errors.New(mergedFiltersMessageConstant)
)

// Repository is the subset of gitrepo.Repository needed to pick and check out a branch.
type Repository interface {
	branches.BranchSource
	Checkout(executionContext context.Context, branchName string) error
}

// Options narrows the branches offered for selection.
type Options struct {
	Pattern      string
	Fuzzy        bool
	Recent       bool
	MergedOnly   bool
	UnmergedOnly bool
}

// Validate rejects contradictory merge filters.
func (options Options) Validate() error {
	if options.MergedOnly && options.UnmergedOnly {
		return ErrConflictingMergeFilters
	}
	return nil
}

// Result describes the outcome of a switch.
type Result struct {
	BranchName string
	Switched   bool
}

// ServiceDependencies enumerates collaborators required by the service.
type ServiceDependencies struct {
	Repository            Repository
	Prompter              prompt.Prompter
	ConfigurationProvider gitconfig.Provider
	Logger                *zap.Logger
	Output                io.Writer
}

// Service offers local branches for selection and checks out the chosen one.
type Service struct {
	repository            Repository
	resolver              *branches.Resolver
	prompter              prompt.Prompter
	configurationProvider gitconfig.Provider
	logger                *zap.Logger
	output                io.Writer
}

// NewService validates dependencies and constructs a Service.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.Repository == nil {
		return nil, ErrRepositoryNotConfigured
	}
	if dependencies.Prompter == nil {
		return nil, ErrPrompterNotConfigured
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	output := dependencies.Output
	if output == nil {
		output = io.Discard
	}

	resolver, resolverError := branches.NewResolver(dependencies.Repository, logger)
	if resolverError != nil {
		return nil, resolverError
	}

	return &Service{
		repository:            dependencies.Repository,
		resolver:              resolver,
		prompter:              dependencies.Prompter,
		configurationProvider: dependencies.ConfigurationProvider,
		logger:                logger,
		output:                output,
	}, nil
}

// Candidates returns selection labels for every branch the options allow, excluding the current branch.
func (service *Service) Candidates(options Options) ([]string, error) {
	if validationError := options.Validate(); validationError != nil {
		return nil, validationError
	}

	currentBranch, currentError := service.resolver.CurrentBranch()
	if currentError != nil {
		return nil, currentError
	}

	var branchNames []string
	var listError error
	if options.Recent {
		branchNames, listError = service.resolver.RecentBranches()
	} else {
		branchNames, listError = service.resolver.LocalBranches()
	}
	if listError != nil {
		return nil, listError
	}

	branchNames = filterByPattern(branchNames, options)

	baseBranch, baseError := service.resolver.ResolveBaseBranch(service.configurationProvider)
	if options.MergedOnly || options.UnmergedOnly {
		if baseError != nil {
			return nil, baseError
		}
		filtered := make([]string, 0, len(branchNames))
		for _, branchName := range branchNames {
			if service.keepForMergeFilter(branchName, baseBranch, options) {
				filtered = append(filtered, branchName)
			}
		}
		branchNames = filtered
	}
	if baseError != nil {
		service.logger.Debug(baseUnavailableLogMessageConstant, zap.Error(baseError))
		baseBranch = ""
	}

	labels := make([]string, 0, len(branchNames))
	for _, branchName := range branchNames {
		if branchName == currentBranch {
			continue
		}
		labels = append(labels, service.resolver.MergeLabel(branchName, baseBranch))
	}
	return labels, nil
}

// Run prompts for a branch among the candidates and checks it out.
func (service *Service) Run(executionContext context.Context, options Options) (Result, error) {
	labels, candidatesError := service.Candidates(options)
	if candidatesError != nil {
		return Result{}, candidatesError
	}
	if len(labels) == 0 {
		fmt.Fprintln(service.output, noBranchesMessageConstant)
		return Result{}, nil
	}

	selectedLabel, selectError := service.prompter.Select(selectTitleConstant, labels)
	if selectError != nil {
		return Result{}, selectError
	}
	branchName := branches.TrimMergeLabel(selectedLabel)

	if checkoutError := service.repository.Checkout(executionContext, branchName); checkoutError != nil {
		return Result{BranchName: branchName}, checkoutError
	}
	fmt.Fprintf(service.output, switchedMessageTemplateConstant, branchName)
	return Result{BranchName: branchName, Switched: true}, nil
}

// keepForMergeFilter excludes branches whose merge status cannot be determined under either filter.
func (service *Service) keepForMergeFilter(branchName string, baseBranch string, options Options) bool {
	if !service.repository.BranchExists(branchName) || !service.repository.BranchExists(baseBranch) {
		return false
	}
	merged := service.resolver.IsMerged(branchName, baseBranch)
	if options.MergedOnly {
		return merged
	}
	return !merged
}

func filterByPattern(branchNames []string, options Options) []string {
	pattern := strings.TrimSpace(options.Pattern)
	if len(pattern) == 0 {
		return branchNames
	}

	if options.Fuzzy {
		matches := fuzzy.Find(pattern, branchNames)
		ranked := make([]string, 0, len(matches))
		for _, match := range matches {
			ranked = append(ranked, match.Str)
		}
		return ranked
	}

	filtered := make([]string, 0, len(branchNames))
	for _, branchName := range branchNames {
		if strings.Contains(branchName, pattern) {
			filtered = append(filtered, branchName)
		}
	}
	return filtered
}
