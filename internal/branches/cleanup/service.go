package cleanup

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/temirov/gitutils/internal/branches"
	"github.com/temirov/gitutils/internal/execshell"
	"github.com/temirov/gitutils/internal/gitconfig"
	"github.com/temirov/gitutils/internal/gitrepo"
	"github.com/temirov/gitutils/internal/prompt"
)

const (
	repositoryMissingMessageConstant           = "branch cleanup repository not configured"
	prompterMissingMessageConstant             = "branch cleanup prompter not configured"
	baseBranchMessageTemplateConstant          = "Base branch: %s\n"
	currentBranchMessageTemplateConstant       = "Current branch: %s\n"
	noCandidatesMessageConstant                = "No branches to delete"
	noneDeletedMessageConstant                 = "No branches deleted"
	candidatesHeaderMessageConstant            = "\nBranches to be deleted:"
	candidateLineTemplateConstant              = "  %s\n"
	confirmBatchTemplateConstant               = "Delete %d branches?"
	confirmBranchTemplateConstant              = "Delete branch '%s'?"
	confirmRemoteTemplateConstant              = "Delete remote branch '%s/%s'?"
	deletedLocalTemplateConstant               = "Deleted local branch '%s'\n"
	deletedRemoteTemplateConstant              = "Deleted remote branch '%s/%s'\n"
	failedLocalTemplateConstant                = "Failed to delete branch '%s': %v\n"
	failedRemoteTemplateConstant               = "Failed to delete remote branch '%s/%s': %v\n"
	deletedLocalSummaryTemplateConstant        = "\nDeleted %d local branches\n"
	deletedRemoteSummaryTemplateConstant       = "Deleted %d remote branches\n"
	skippedLocalSummaryTemplateConstant        = "Skipped %d branches\n"
	failedRemoteSummaryTemplateConstant        = "Failed to delete %d remote branches\n"
	mergedMarkerConstant                       = "[merged]"
	mergedMarkerColorConstant                  = "2"
	logFieldBranchConstant                     = "branch"
	logFieldRemoteConstant                     = "remote"
	branchDeletedLogMessageConstant            = "deleted local branch"
	branchDeleteFailedLogMessageConstant       = "local branch deletion failed"
	remoteBranchDeleteFailedLogMessageConstant = "remote branch deletion failed"
)

var (
	// ErrRepositoryNotConfigured indicates NewService received no repository.
	ErrRepositoryNotConfigured = errors.New(repositoryMissingMessageConstant)
	// ErrPrompterNotConfigured indicates NewService received no prompter.
	ErrPrompterNotConfigured = errors.New(prompterMissingMessageConstant)
)

// Repository is the subset of gitrepo.Repository the cleanup service mutates.
type Repository interface {
	branches.BranchSource
	DeleteBranch(executionContext context.Context, options gitrepo.DeleteBranchOptions) error
	RemoteBranchExists(remoteName string, branchName string) bool
	DeleteRemoteBranch(executionContext context.Context, remoteName string, branchName string) error
}

// ServiceDependencies enumerates collaborators required by the service.
type ServiceDependencies struct {
	Repository            Repository
	Prompter              prompt.Prompter
	ConfigurationProvider gitconfig.Provider
	Logger                *zap.Logger
	Output                io.Writer
	ErrorOutput           io.Writer
}

// Candidate is a branch eligible for deletion with its merge status.
type Candidate struct {
	BranchName string
	Merged     bool
}

// Plan is the resolved set of deletion candidates.
type Plan struct {
	BaseBranch    string
	CurrentBranch string
	Candidates    []Candidate
}

// BranchFailure records a branch that could not be deleted.
type BranchFailure struct {
	BranchName string
	Cause      error
}

// Report summarizes a deletion batch.
type Report struct {
	Deleted       []string
	Skipped       []BranchFailure
	RemoteDeleted []string
	RemoteFailed  []BranchFailure
}

// Service deletes local branches, and optionally their remote counterparts, from one repository.
type Service struct {
	repository            Repository
	resolver              *branches.Resolver
	prompter              prompt.Prompter
	configurationProvider gitconfig.Provider
	logger                *zap.Logger
	output                io.Writer
	errorOutput           io.Writer
	mergedMarker          string
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
	errorOutput := dependencies.ErrorOutput
	if errorOutput == nil {
		errorOutput = io.Discard
	}

	resolver, resolverError := branches.NewResolver(dependencies.Repository, logger)
	if resolverError != nil {
		return nil, resolverError
	}

	mergedStyle := lipgloss.NewRenderer(output).NewStyle().Foreground(lipgloss.Color(mergedMarkerColorConstant))

	return &Service{
		repository:            dependencies.Repository,
		resolver:              resolver,
		prompter:              dependencies.Prompter,
		configurationProvider: dependencies.ConfigurationProvider,
		logger:                logger,
		output:                output,
		errorOutput:           errorOutput,
		mergedMarker:          mergedStyle.Render(mergedMarkerConstant),
	}, nil
}

// Plan resolves the current and base branches and the candidates the options allow.
func (service *Service) Plan(options Options) (Plan, error) {
	if validationError := options.Validate(); validationError != nil {
		return Plan{}, validationError
	}

	currentBranch, currentError := service.resolver.CurrentBranch()
	if currentError != nil {
		return Plan{}, currentError
	}
	baseBranch, baseError := service.resolver.ResolveBaseBranch(service.configurationProvider)
	if baseError != nil {
		return Plan{}, baseError
	}

	localBranches, listError := service.resolver.LocalBranches()
	if listError != nil {
		return Plan{}, listError
	}

	plan := Plan{BaseBranch: baseBranch, CurrentBranch: currentBranch}
	for _, branchName := range localBranches {
		if branchName == currentBranch || branchName == baseBranch {
			continue
		}
		merged := service.resolver.IsMerged(branchName, baseBranch)
		if options.filtersMerged() && !merged {
			continue
		}
		plan.Candidates = append(plan.Candidates, Candidate{BranchName: branchName, Merged: merged})
	}
	return plan, nil
}

// Run plans, confirms, and deletes. Prompt aborts stop the run before any deletion that was not yet confirmed.
func (service *Service) Run(executionContext context.Context, options Options) (Report, error) {
	plan, planError := service.Plan(options)
	if planError != nil {
		return Report{}, planError
	}

	fmt.Fprintf(service.output, baseBranchMessageTemplateConstant, plan.BaseBranch)
	fmt.Fprintf(service.output, currentBranchMessageTemplateConstant, plan.CurrentBranch)

	if len(plan.Candidates) == 0 {
		fmt.Fprintln(service.output, noCandidatesMessageConstant)
		return Report{}, nil
	}

	selected, selectionError := service.confirmCandidates(plan, options)
	if selectionError != nil {
		return Report{}, selectionError
	}
	if len(selected) == 0 {
		fmt.Fprintln(service.output, noneDeletedMessageConstant)
		return Report{}, nil
	}

	return service.Execute(executionContext, plan, selected, options)
}

// Execute deletes the selected branches. Individual failures are recorded and never stop the batch.
func (service *Service) Execute(executionContext context.Context, plan Plan, selected []string, options Options) (Report, error) {
	report := Report{}
	remoteName := options.remoteName()

	for _, branchName := range selected {
		deleteError := service.repository.DeleteBranch(executionContext, gitrepo.DeleteBranchOptions{
			BranchName:     branchName,
			BaseBranchName: plan.BaseBranch,
			Force:          options.Force,
		})
		if deleteError != nil {
			service.logger.Debug(branchDeleteFailedLogMessageConstant, zap.String(logFieldBranchConstant, branchName), zap.Error(deleteError))
			fmt.Fprintf(service.errorOutput, failedLocalTemplateConstant, branchName, describeFailure(deleteError))
			report.Skipped = append(report.Skipped, BranchFailure{BranchName: branchName, Cause: deleteError})
			continue
		}

		service.logger.Debug(branchDeletedLogMessageConstant, zap.String(logFieldBranchConstant, branchName))
		fmt.Fprintf(service.output, deletedLocalTemplateConstant, branchName)
		report.Deleted = append(report.Deleted, branchName)

		if !options.DeleteRemote || !service.repository.RemoteBranchExists(remoteName, branchName) {
			continue
		}

		confirmed, confirmError := service.confirm(fmt.Sprintf(confirmRemoteTemplateConstant, remoteName, branchName), options)
		if confirmError != nil {
			service.printSummary(report, options)
			return report, confirmError
		}
		if !confirmed {
			continue
		}

		remoteError := service.repository.DeleteRemoteBranch(executionContext, remoteName, branchName)
		if remoteError != nil {
			service.logger.Debug(remoteBranchDeleteFailedLogMessageConstant, zap.String(logFieldBranchConstant, branchName), zap.String(logFieldRemoteConstant, remoteName), zap.Error(remoteError))
			fmt.Fprintf(service.errorOutput, failedRemoteTemplateConstant, remoteName, branchName, describeFailure(remoteError))
			report.RemoteFailed = append(report.RemoteFailed, BranchFailure{BranchName: branchName, Cause: remoteError})
			continue
		}
		fmt.Fprintf(service.output, deletedRemoteTemplateConstant, remoteName, branchName)
		report.RemoteDeleted = append(report.RemoteDeleted, branchName)
	}

	service.printSummary(report, options)
	return report, nil
}

func (service *Service) confirmCandidates(plan Plan, options Options) ([]string, error) {
	if options.Select {
		var selected []string
		for _, candidate := range plan.Candidates {
			confirmed, confirmError := service.confirm(fmt.Sprintf(confirmBranchTemplateConstant, candidateLabel(candidate)), options)
			if confirmError != nil {
				return nil, confirmError
			}
			if confirmed {
				selected = append(selected, candidate.BranchName)
			}
		}
		return selected, nil
	}

	fmt.Fprintln(service.output, candidatesHeaderMessageConstant)
	for _, candidate := range plan.Candidates {
		fmt.Fprintf(service.output, candidateLineTemplateConstant, service.styledLabel(candidate))
	}

	confirmed, confirmError := service.confirm(fmt.Sprintf(confirmBatchTemplateConstant, len(plan.Candidates)), options)
	if confirmError != nil {
		return nil, confirmError
	}
	if !confirmed {
		return nil, nil
	}

	selected := make([]string, 0, len(plan.Candidates))
	for _, candidate := range plan.Candidates {
		selected = append(selected, candidate.BranchName)
	}
	return selected, nil
}

func (service *Service) confirm(message string, options Options) (bool, error) {
	if options.AssumeYes {
		return true, nil
	}
	return service.prompter.Confirm(message)
}

func (service *Service) printSummary(report Report, options Options) {
	fmt.Fprintf(service.output, deletedLocalSummaryTemplateConstant, len(report.Deleted))
	if len(report.Skipped) > 0 {
		fmt.Fprintf(service.output, skippedLocalSummaryTemplateConstant, len(report.Skipped))
	}
	if options.DeleteRemote && len(report.RemoteDeleted) > 0 {
		fmt.Fprintf(service.output, deletedRemoteSummaryTemplateConstant, len(report.RemoteDeleted))
	}
	if len(report.RemoteFailed) > 0 {
		fmt.Fprintf(service.output, failedRemoteSummaryTemplateConstant, len(report.RemoteFailed))
	}
}

func (service *Service) styledLabel(candidate Candidate) string {
	if !candidate.Merged {
		return candidate.BranchName
	}
	return candidate.BranchName + " " + service.mergedMarker
}

func candidateLabel(candidate Candidate) string {
	if !candidate.Merged {
		return candidate.BranchName
	}
	return candidate.BranchName + " " + mergedMarkerConstant
}

// describeFailure prefers the git error text over the wrapped command description.
func describeFailure(failure error) string {
	var commandFailedError execshell.CommandFailedError
	if errors.As(failure, &commandFailedError) {
		if standardError := commandFailedError.StandardError(); len(standardError) > 0 {
			return standardError
		}
	}
	return failure.Error()
}
