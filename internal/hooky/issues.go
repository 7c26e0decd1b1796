package hooky

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/simplesurance/hooky/internal/logfields"
	"github.com/simplesurance/hooky/internal/repocfg"
	"github.com/simplesurance/hooky/internal/selection"
)

const assignIssuePrefix = "[Assign issue] "

var issueActions = []string{"opened", "reopened"}

func issuePrecheck(ev *IssueEvent) *Result {
	if !slices.Contains(issueActions, ev.Action) {
		return ignored(assignIssuePrefix, "Ignoring event action %q", ev.Action)
	}

	return nil
}

func (p *Processor) assignNewIssue(ctx context.Context, logger *zap.Logger, clt GithubClient, ev *IssueEvent) (*Result, error) {
	repo := &ev.Repo

	cfg, err := p.configs.Load(ctx, clt, &repocfg.Target{Owner: repo.Owner, Repo: repo.Name})
	if err != nil {
		return nil, fmt.Errorf("loading repository config failed: %w", err)
	}

	if slices.Contains(cfg.Assignees, ev.Author) {
		return ignored(assignIssuePrefix, "@%s is in repo assignees list, doing nothing", ev.Author), nil
	}

	assignee, err := p.selector.Select(ctx, cfg.Assignees, selection.RoleAssignee, &issueTarget{
		clt:    clt,
		repo:   repo,
		number: ev.Number,
		author: ev.Author,
		body:   ev.Body,
	})
	if err != nil {
		if conflictErr, ok := isConflict(err); ok {
			return ignored(assignIssuePrefix, "%s", conflictErr.Error()), nil
		}

		if errors.Is(err, selection.ErrNoCandidates) {
			return ignored(assignIssuePrefix, "no assignees configured"), nil
		}

		return nil, fmt.Errorf("selecting assignee failed: %w", err)
	}

	if !slices.Contains(ev.Assignees, assignee) {
		if err := clt.AddAssignees(ctx, repo.Owner, repo.Name, ev.Number, assignee); err != nil {
			return nil, fmt.Errorf("assigning issue failed: %w", err)
		}
	} else {
		logger.Debug("selected user is already assigned", logfields.Event("issue_already_assigned"), logfields.User(assignee))
	}

	if !slices.Contains(ev.Labels, cfg.UnconfirmedLabel) {
		if err := clt.AddLabel(ctx, repo.Owner, repo.Name, ev.Number, cfg.UnconfirmedLabel); err != nil {
			return nil, fmt.Errorf("adding label %q failed: %w", cfg.UnconfirmedLabel, err)
		}
	}

	if err := clt.ReactToIssue(ctx, repo.Owner, repo.Name, ev.Number, reactionThumbsUp); err != nil {
		return nil, fmt.Errorf("adding reaction to issue failed: %w", err)
	}

	return acted(
		assignIssuePrefix,
		"@%s successfully assigned to issue, %q label added",
		assignee, cfg.UnconfirmedLabel,
	), nil
}
