package hooky

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/simplesurance/hooky/internal/logfields"
	"github.com/simplesurance/hooky/internal/repocfg"
	"github.com/simplesurance/hooky/internal/selection"
)

const labelAssignPrefix = "[Label and assign] "

const reactionThumbsUp = "+1"

type eventType string

const (
	eventTypeComment eventType = "comment"
	eventTypeReview  eventType = "review"
)

type labelAssignRequest struct {
	eventType eventType
	repo      *Repository
	number    int
	// author is the author of the pull request
	author    string
	commenter string
	// body of the comment or review, nil if the review has no body
	body *string
	// commentID is only set for comments
	commentID         int64
	forceAssignAuthor bool
	action            string
}

// precheck returns a Result if the request does not require any action.
func (r *labelAssignRequest) precheck() *Result {
	if r.body == nil {
		return ignored(labelAssignPrefix, "review has no body")
	}

	if r.eventType == eventTypeComment && r.action == "deleted" {
		return ignored(labelAssignPrefix, "comment action %q is ignored", r.action)
	}

	if r.eventType == eventTypeReview && r.action == "dismissed" {
		return ignored(labelAssignPrefix, "review action %q is ignored", r.action)
	}

	return nil
}

// labelAssigner runs the label and assign workflows for a pull request.
type labelAssigner struct {
	req       *labelAssignRequest
	clt       GithubClient
	cfg       *repocfg.RepoConfig
	selector  Selector
	reviewers []string
	prBody    string
	logger    *zap.Logger
}

func (p *Processor) labelAssign(ctx context.Context, logger *zap.Logger, clt GithubClient, req *labelAssignRequest) (*Result, error) {
	pr, err := clt.PullRequest(ctx, req.repo.Owner, req.repo.Name, req.number)
	if err != nil {
		return nil, fmt.Errorf("retrieving pull request failed: %w", err)
	}

	cfg, err := p.configs.Load(ctx, clt, &repocfg.Target{
		Owner: req.repo.Owner,
		Repo:  req.repo.Name,
		Ref:   pr.GetBase().GetRef(),
	})
	if err != nil {
		return nil, fmt.Errorf("loading repository config failed: %w", err)
	}

	body := strings.ToLower(*req.body)
	logger.Debug("processing comment", logfields.Event("label_assign_started"), zap.String("body", body))

	var workflow func(context.Context, *labelAssigner) (*Result, error)
	switch {
	case strings.Contains(body, strings.ToLower(cfg.RequestReviewTrigger)):
		workflow = requestReview
	case strings.Contains(body, strings.ToLower(cfg.RequestUpdateTrigger)) || req.forceAssignAuthor:
		workflow = assignAuthor
	default:
		return ignored(
			labelAssignPrefix,
			"neither '%s' nor '%s' found in comment body",
			cfg.RequestUpdateTrigger, cfg.RequestReviewTrigger,
		), nil
	}

	reviewers := cfg.Reviewers
	if len(reviewers) == 0 {
		reviewers, err = clt.Collaborators(ctx, req.repo.Owner, req.repo.Name)
		if err != nil {
			return nil, fmt.Errorf("retrieving repository collaborators failed: %w", err)
		}
	}

	return workflow(ctx, &labelAssigner{
		req:       req,
		clt:       clt,
		cfg:       cfg,
		selector:  p.selector,
		reviewers: reviewers,
		prBody:    pr.GetBody(),
		logger:    logger,
	})
}

func assignAuthor(ctx context.Context, la *labelAssigner) (*Result, error) {
	if !la.commenterIsReviewer() {
		return ignored(
			labelAssignPrefix,
			"Only reviewers %s can assign the author, not %q",
			la.showReviewers(), la.req.commenter,
		), nil
	}

	if err := la.react(ctx); err != nil {
		return nil, err
	}

	if err := la.addLabel(ctx, la.cfg.AwaitingUpdateLabel); err != nil {
		return nil, err
	}

	if err := la.removeLabel(ctx, la.cfg.AwaitingReviewLabel); err != nil {
		return nil, err
	}

	repo := la.req.repo
	if err := la.clt.AddAssignees(ctx, repo.Owner, repo.Name, la.req.number, la.req.author); err != nil {
		return nil, fmt.Errorf("assigning author failed: %w", err)
	}

	toRemove := slices.DeleteFunc(slices.Clone(la.reviewers), func(r string) bool {
		return r == la.req.author
	})
	if len(toRemove) > 0 {
		if err := la.clt.RemoveAssignees(ctx, repo.Owner, repo.Name, la.req.number, toRemove...); err != nil {
			return nil, fmt.Errorf("unassigning reviewers failed: %w", err)
		}
	}

	return acted(
		labelAssignPrefix,
		"Author %s successfully assigned to PR, %q label added",
		la.req.author, la.cfg.AwaitingUpdateLabel,
	), nil
}

func requestReview(ctx context.Context, la *labelAssigner) (*Result, error) {
	if !la.commenterIsReviewer() && la.req.commenter != la.req.author {
		return ignored(
			labelAssignPrefix,
			"Only the PR author @%s or reviewers can request a review, not %q",
			la.req.author, la.req.commenter,
		), nil
	}

	if err := la.react(ctx); err != nil {
		return nil, err
	}

	if err := la.addLabel(ctx, la.cfg.AwaitingReviewLabel); err != nil {
		return nil, err
	}

	if err := la.removeLabel(ctx, la.cfg.AwaitingUpdateLabel); err != nil {
		return nil, err
	}

	repo := la.req.repo
	reviewer, err := la.selector.Select(ctx, la.reviewers, selection.RoleReviewer, &issueTarget{
		clt:    la.clt,
		repo:   repo,
		number: la.req.number,
		author: la.req.author,
		body:   la.prBody,
	})
	if err != nil {
		if conflictErr, ok := isConflict(err); ok {
			return ignored(labelAssignPrefix, "%s", conflictErr.Error()), nil
		}

		if errors.Is(err, selection.ErrNoCandidates) {
			return ignored(labelAssignPrefix, "no reviewers configured and the repository has no collaborators"), nil
		}

		return nil, fmt.Errorf("selecting reviewer failed: %w", err)
	}

	if reviewer != la.req.author {
		if err := la.clt.RemoveAssignees(ctx, repo.Owner, repo.Name, la.req.number, la.req.author); err != nil {
			return nil, fmt.Errorf("unassigning author failed: %w", err)
		}

		if err := la.clt.AddAssignees(ctx, repo.Owner, repo.Name, la.req.number, reviewer); err != nil {
			return nil, fmt.Errorf("assigning reviewer failed: %w", err)
		}
	}

	return acted(
		labelAssignPrefix,
		"@%s successfully assigned to PR as reviewer, %q label added",
		reviewer, la.cfg.AwaitingReviewLabel,
	), nil
}

func (la *labelAssigner) commenterIsReviewer() bool {
	return slices.Contains(la.reviewers, la.req.commenter)
}

func (la *labelAssigner) showReviewers() string {
	if len(la.reviewers) == 0 {
		return "(no reviewers configured)"
	}

	quoted := make([]string, 0, len(la.reviewers))
	for _, r := range la.reviewers {
		quoted = append(quoted, fmt.Sprintf("%q", r))
	}

	return strings.Join(quoted, ", ")
}

// react adds a reaction to the triggering comment.
// GitHub does not support reactions on review bodies, reviews are skipped.
func (la *labelAssigner) react(ctx context.Context) error {
	if la.req.eventType != eventTypeComment {
		return nil
	}

	repo := la.req.repo
	if err := la.clt.ReactToIssueComment(ctx, repo.Owner, repo.Name, la.req.commentID, reactionThumbsUp); err != nil {
		return fmt.Errorf("adding reaction to comment failed: %w", err)
	}

	return nil
}

func (la *labelAssigner) addLabel(ctx context.Context, label string) error {
	repo := la.req.repo
	if err := la.clt.AddLabel(ctx, repo.Owner, repo.Name, la.req.number, label); err != nil {
		return fmt.Errorf("adding label %q failed: %w", label, err)
	}

	return nil
}

// removeLabel removes the label from the pull request if it is set.
func (la *labelAssigner) removeLabel(ctx context.Context, label string) error {
	repo := la.req.repo

	labels, err := la.clt.IssueLabels(ctx, repo.Owner, repo.Name, la.req.number)
	if err != nil {
		return fmt.Errorf("retrieving labels failed: %w", err)
	}

	if !slices.Contains(labels, label) {
		return nil
	}

	if err := la.clt.RemoveLabel(ctx, repo.Owner, repo.Name, la.req.number, label); err != nil {
		return fmt.Errorf("removing label %q failed: %w", label, err)
	}

	la.logger.Debug("label removed", logfields.Event("label_removed"), logfields.Label(label))

	return nil
}
