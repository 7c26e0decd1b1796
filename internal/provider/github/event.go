package github

import (
	"errors"
	"fmt"

	"github.com/google/go-github/v60/github"

	"github.com/simplesurance/hooky/internal/hooky"
)

// ErrUnsupportedEvent is returned when a webhook event is not processed by
// hooky.
var ErrUnsupportedEvent = errors.New("unsupported event type")

// ToEvent converts a webhook event returned by github.ParseWebHook() to a
// hooky.Event.
func ToEvent(payload any) (hooky.Event, error) {
	switch ev := payload.(type) {
	case *github.IssueCommentEvent:
		return issueCommentEvent(ev)
	case *github.PullRequestReviewEvent:
		return pullRequestReviewEvent(ev)
	case *github.PullRequestEvent:
		return pullRequestEvent(ev)
	case *github.IssuesEvent:
		return issuesEvent(ev)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedEvent, payload)
	}
}

func repository(repo *github.Repository) (hooky.Repository, error) {
	r := hooky.Repository{
		Owner: repo.GetOwner().GetLogin(),
		Name:  repo.GetName(),
	}
	if r.Owner == "" || r.Name == "" {
		return r, errors.New("repository owner or name missing in event")
	}

	return r, nil
}

func issueCommentEvent(ev *github.IssueCommentEvent) (*hooky.IssueCommentEvent, error) {
	repo, err := repository(ev.GetRepo())
	if err != nil {
		return nil, err
	}

	issue := ev.GetIssue()
	if issue == nil {
		return nil, errors.New("issue missing in issue_comment event")
	}

	return &hooky.IssueCommentEvent{
		Repo:          repo,
		Action:        ev.GetAction(),
		IsPullRequest: issue.IsPullRequest(),
		Number:        issue.GetNumber(),
		Author:        issue.GetUser().GetLogin(),
		CommentID:     ev.GetComment().GetID(),
		CommentBody:   ev.GetComment().GetBody(),
		Commenter:     ev.GetComment().GetUser().GetLogin(),
	}, nil
}

func pullRequestReviewEvent(ev *github.PullRequestReviewEvent) (*hooky.PullRequestReviewEvent, error) {
	repo, err := repository(ev.GetRepo())
	if err != nil {
		return nil, err
	}

	review := ev.GetReview()
	if review == nil {
		return nil, errors.New("review missing in pull_request_review event")
	}

	pr := ev.GetPullRequest()

	return &hooky.PullRequestReviewEvent{
		Repo:        repo,
		Action:      ev.GetAction(),
		Number:      pr.GetNumber(),
		Author:      pr.GetUser().GetLogin(),
		ReviewBody:  review.Body,
		ReviewState: review.GetState(),
		Reviewer:    review.GetUser().GetLogin(),
	}, nil
}

func pullRequestEvent(ev *github.PullRequestEvent) (*hooky.PullRequestUpdateEvent, error) {
	repo, err := repository(ev.GetRepo())
	if err != nil {
		return nil, err
	}

	pr := ev.GetPullRequest()
	if pr == nil {
		return nil, errors.New("pull request missing in pull_request event")
	}

	return &hooky.PullRequestUpdateEvent{
		Repo:    repo,
		Action:  ev.GetAction(),
		Number:  pr.GetNumber(),
		Author:  pr.GetUser().GetLogin(),
		State:   pr.GetState(),
		Body:    pr.GetBody(),
		BaseRef: pr.GetBase().GetRef(),
	}, nil
}

func issuesEvent(ev *github.IssuesEvent) (*hooky.IssueEvent, error) {
	repo, err := repository(ev.GetRepo())
	if err != nil {
		return nil, err
	}

	issue := ev.GetIssue()
	if issue == nil {
		return nil, errors.New("issue missing in issues event")
	}

	assignees := make([]string, 0, len(issue.Assignees))
	for _, u := range issue.Assignees {
		assignees = append(assignees, u.GetLogin())
	}

	labels := make([]string, 0, len(issue.Labels))
	for _, l := range issue.Labels {
		labels = append(labels, l.GetName())
	}

	return &hooky.IssueEvent{
		Repo:      repo,
		Action:    ev.GetAction(),
		Number:    issue.GetNumber(),
		Author:    issue.GetUser().GetLogin(),
		Body:      issue.GetBody(),
		Assignees: assignees,
		Labels:    labels,
	}, nil
}
