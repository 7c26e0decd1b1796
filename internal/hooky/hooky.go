// Package hooky processes GitHub webhook events.
//
// Comments and reviews on pull requests containing a trigger phrase assign
// the pull request to a reviewer or back to its author and update the
// labels. New issues are assigned to a user in round-robin order. Pull
// requests are checked for a change file, the result is reported as commit
// status.
package hooky

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/go-github/v60/github"
	"go.uber.org/zap"

	"github.com/simplesurance/hooky/internal/githubclt"
	"github.com/simplesurance/hooky/internal/logfields"
	"github.com/simplesurance/hooky/internal/repocfg"
	"github.com/simplesurance/hooky/internal/selection"
)

const loggerName = "hooky"

// DefStatusTargetURL is the URL that commit statuses link to by default.
const DefStatusTargetURL = "https://github.com/pydantic/hooky#readme"

//go:generate mockgen -destination=mocks/githubclient.go -package=mocks github.com/simplesurance/hooky/internal/hooky GithubClient,ClientFactory

// GithubClient is the GitHub API client used to process events.
type GithubClient interface {
	PullRequest(ctx context.Context, owner, repo string, number int) (*github.PullRequest, error)
	Collaborators(ctx context.Context, owner, repo string) ([]string, error)
	IssueLabels(ctx context.Context, owner, repo string, number int) ([]string, error)
	AddLabel(ctx context.Context, owner, repo string, number int, label string) error
	RemoveLabel(ctx context.Context, owner, repo string, number int, label string) error
	AddAssignees(ctx context.Context, owner, repo string, number int, assignees ...string) error
	RemoveAssignees(ctx context.Context, owner, repo string, number int, assignees ...string) error
	ReactToIssueComment(ctx context.Context, owner, repo string, commentID int64, reaction string) error
	ReactToIssue(ctx context.Context, owner, repo string, number int, reaction string) error
	EditBody(ctx context.Context, owner, repo string, number int, body string) error
	AddedFiles(ctx context.Context, owner, repo string, number int) ([]string, error)
	LatestCommitSHA(ctx context.Context, owner, repo string, number int) (string, error)
	CreateStatus(ctx context.Context, owner, repo, sha string, status *githubclt.CommitStatus) error
	FileContent(ctx context.Context, owner, repo, path, ref string) ([]byte, error)
}

// ClientFactory returns clients that are authorized to access a repository.
type ClientFactory interface {
	ForRepository(ctx context.Context, owner, repo string) (GithubClient, error)
}

// ConfigLoader returns the hooky configuration of a repository.
type ConfigLoader interface {
	Load(ctx context.Context, fetcher repocfg.FileFetcher, target *repocfg.Target) (*repocfg.RepoConfig, error)
}

// Selector selects a user for a role in round-robin order.
type Selector interface {
	Select(ctx context.Context, candidates []string, role selection.Role, target selection.Target) (string, error)
}

// Result is the outcome of processing an event.
type Result struct {
	// Acted is true if the event caused changes on GitHub.
	Acted bool
	// Message describes what was done or why nothing was done.
	Message string
}

func (r *Result) String() string {
	if r.Acted {
		return "Action taken: " + r.Message
	}
	return "Webhook ignored: " + r.Message
}

func acted(prefix, format string, a ...any) *Result {
	return &Result{Acted: true, Message: prefix + fmt.Sprintf(format, a...)}
}

func ignored(prefix, format string, a ...any) *Result {
	return &Result{Message: prefix + fmt.Sprintf(format, a...)}
}

// Processor processes webhook events.
type Processor struct {
	clients         ClientFactory
	configs         ConfigLoader
	selector        Selector
	statusTargetURL string
	dryRun          bool
	logger          *zap.Logger
}

type ProcessorOpt func(*Processor)

// WithStatusTargetURL sets the URL that created commit statuses link to.
func WithStatusTargetURL(url string) ProcessorOpt {
	return func(p *Processor) {
		p.statusTargetURL = url
	}
}

// WithDryRun configures the Processor to only simulate changes on GitHub.
func WithDryRun() ProcessorOpt {
	return func(p *Processor) {
		p.dryRun = true
	}
}

func NewProcessor(clients ClientFactory, configs ConfigLoader, selector Selector, opts ...ProcessorOpt) *Processor {
	p := Processor{
		clients:         clients,
		configs:         configs,
		selector:        selector,
		statusTargetURL: DefStatusTargetURL,
		logger:          zap.L().Named(loggerName),
	}

	for _, opt := range opts {
		opt(&p)
	}

	return &p
}

// Process runs the workflow for the event.
// Policy violations and events that do not require any action are reported
// via a Result with Acted false. Failed GitHub API operations are returned as
// error, changes that were already done are not reverted.
func (p *Processor) Process(ctx context.Context, event Event) (*Result, error) {
	repo := event.Repository()
	logger := p.logger.With(
		logfields.RepositoryOwner(repo.Owner),
		logfields.Repository(repo.Name),
	)

	// result is set when the event can be ignored without querying
	// GitHub, otherwise run is called
	var result *Result
	var run func(GithubClient) (*Result, error)

	switch ev := event.(type) {
	case *IssueCommentEvent:
		logger = logger.With(logfields.PullRequest(ev.Number), logfields.User(ev.Commenter), logfields.Action(ev.Action))
		if !ev.IsPullRequest {
			result = ignored(labelAssignPrefix, "action only applies to pull requests, not issues")
			break
		}

		req := labelAssignRequest{
			eventType: eventTypeComment,
			repo:      repo,
			number:    ev.Number,
			author:    ev.Author,
			commenter: ev.Commenter,
			body:      &ev.CommentBody,
			commentID: ev.CommentID,
			action:    ev.Action,
		}
		if result = req.precheck(); result == nil {
			run = func(clt GithubClient) (*Result, error) { return p.labelAssign(ctx, logger, clt, &req) }
		}

	case *PullRequestReviewEvent:
		logger = logger.With(logfields.PullRequest(ev.Number), logfields.User(ev.Reviewer), logfields.Action(ev.Action))
		req := labelAssignRequest{
			eventType:         eventTypeReview,
			repo:              repo,
			number:            ev.Number,
			author:            ev.Author,
			commenter:         ev.Reviewer,
			body:              ev.ReviewBody,
			forceAssignAuthor: ev.ReviewState == "changes_requested",
			action:            ev.Action,
		}
		if result = req.precheck(); result == nil {
			run = func(clt GithubClient) (*Result, error) { return p.labelAssign(ctx, logger, clt, &req) }
		}

	case *PullRequestUpdateEvent:
		logger = logger.With(logfields.PullRequest(ev.Number), logfields.Action(ev.Action))
		if result = changeFilePrecheck(ev); result == nil {
			run = func(clt GithubClient) (*Result, error) { return p.checkChangeFile(ctx, logger, clt, ev) }
		}

	case *IssueEvent:
		logger = logger.With(logfields.Issue(ev.Number), logfields.Action(ev.Action))
		if result = issuePrecheck(ev); result == nil {
			run = func(clt GithubClient) (*Result, error) { return p.assignNewIssue(ctx, logger, clt, ev) }
		}

	default:
		return nil, fmt.Errorf("unsupported event type %T", event)
	}

	if result == nil {
		clt, err := p.client(ctx, repo)
		if err != nil {
			metrics.EventProcessedInc(event, resultLabelError)
			return nil, fmt.Errorf("creating github client for %s failed: %w", repo, err)
		}

		result, err = run(clt)
		if err != nil {
			metrics.EventProcessedInc(event, resultLabelError)
			logger.Info("processing event failed", logfields.Event("event_processing_failed"), zap.Error(err))
			return nil, err
		}
	}

	if result.Acted {
		metrics.EventProcessedInc(event, resultLabelActed)
	} else {
		metrics.EventProcessedInc(event, resultLabelIgnored)
	}

	logger.Info(result.String(), logfields.Event("event_processed"), zap.Bool("acted", result.Acted))

	return result, nil
}

func (p *Processor) client(ctx context.Context, repo *Repository) (GithubClient, error) {
	clt, err := p.clients.ForRepository(ctx, repo.Owner, repo.Name)
	if err != nil {
		return nil, err
	}

	if p.dryRun {
		return NewDryGithubClient(clt, p.logger), nil
	}

	return clt, nil
}

// AppClients is a ClientFactory that authenticates as installation of a
// GitHub App.
type AppClients struct {
	App *githubclt.App
}

func (a *AppClients) ForRepository(ctx context.Context, owner, repo string) (GithubClient, error) {
	clt, err := a.App.ForRepository(ctx, owner, repo)
	if err != nil {
		return nil, err
	}

	return clt, nil
}

func isConflict(err error) (*selection.ConflictError, bool) {
	var conflictErr *selection.ConflictError
	if errors.As(err, &conflictErr) {
		return conflictErr, true
	}

	return nil, false
}
