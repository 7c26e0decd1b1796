package hooky

// Event is a webhook event that is processed.
// It is one of *IssueCommentEvent, *PullRequestReviewEvent,
// *PullRequestUpdateEvent or *IssueEvent.
type Event interface {
	Repository() *Repository
	isEvent()
}

// Repository identifies a GitHub repository.
type Repository struct {
	Owner string
	Name  string
}

// FullName returns the name in the "owner/name" format.
func (r *Repository) FullName() string {
	return r.Owner + "/" + r.Name
}

func (r *Repository) String() string {
	return r.FullName()
}

// IssueCommentEvent is a comment on an issue or pull request.
type IssueCommentEvent struct {
	Repo   Repository
	Action string
	// IsPullRequest is true if the comment was created on a pull request.
	IsPullRequest bool
	Number        int
	// Author is the author of the issue or pull request.
	Author      string
	CommentID   int64
	CommentBody string
	Commenter   string
}

// PullRequestReviewEvent is a submitted pull request review.
type PullRequestReviewEvent struct {
	Repo   Repository
	Action string
	Number int
	// Author is the author of the pull request.
	Author string
	// ReviewBody is nil if the review has no body.
	ReviewBody  *string
	ReviewState string
	Reviewer    string
}

// PullRequestUpdateEvent is a change of a pull request.
type PullRequestUpdateEvent struct {
	Repo   Repository
	Action string
	Number int
	Author string
	// State is "open" or "closed".
	State   string
	Body    string
	BaseRef string
}

// IssueEvent is a change of an issue.
type IssueEvent struct {
	Repo      Repository
	Action    string
	Number    int
	Author    string
	Body      string
	Assignees []string
	Labels    []string
}

func (e *IssueCommentEvent) Repository() *Repository      { return &e.Repo }
func (e *PullRequestReviewEvent) Repository() *Repository { return &e.Repo }
func (e *PullRequestUpdateEvent) Repository() *Repository { return &e.Repo }
func (e *IssueEvent) Repository() *Repository             { return &e.Repo }

func (*IssueCommentEvent) isEvent()      {}
func (*PullRequestReviewEvent) isEvent() {}
func (*PullRequestUpdateEvent) isEvent() {}
func (*IssueEvent) isEvent()             {}
