package hooky

import (
	"context"

	"github.com/google/go-github/v60/github"
	"go.uber.org/zap"

	"github.com/simplesurance/hooky/internal/githubclt"
	"github.com/simplesurance/hooky/internal/logfields"
)

// DryGithubClient is a github-client that does not do any changes on github.
// All operations that could cause a change are simulated and always succeed.
// All other operations are forwarded to a wrapped GithubClient.
type DryGithubClient struct {
	clt    GithubClient
	logger *zap.Logger
}

func NewDryGithubClient(clt GithubClient, logger *zap.Logger) *DryGithubClient {
	return &DryGithubClient{
		clt:    clt,
		logger: logger.Named("dry_github_client"),
	}
}

func (c *DryGithubClient) simulated(msg string, owner, repo string, number int, fields ...zap.Field) {
	c.logger.Info(
		msg,
		append(
			fields,
			logfields.Event("github_operation_simulated"),
			logfields.RepositoryOwner(owner),
			logfields.Repository(repo),
			zap.Int("github.number", number),
		)...,
	)
}

func (c *DryGithubClient) PullRequest(ctx context.Context, owner, repo string, number int) (*github.PullRequest, error) {
	return c.clt.PullRequest(ctx, owner, repo, number)
}

func (c *DryGithubClient) Collaborators(ctx context.Context, owner, repo string) ([]string, error) {
	return c.clt.Collaborators(ctx, owner, repo)
}

func (c *DryGithubClient) IssueLabels(ctx context.Context, owner, repo string, number int) ([]string, error) {
	return c.clt.IssueLabels(ctx, owner, repo, number)
}

func (c *DryGithubClient) AddLabel(_ context.Context, owner, repo string, number int, label string) error {
	c.simulated("simulated adding label", owner, repo, number, logfields.Label(label))
	return nil
}

func (c *DryGithubClient) RemoveLabel(_ context.Context, owner, repo string, number int, label string) error {
	c.simulated("simulated removing label", owner, repo, number, logfields.Label(label))
	return nil
}

func (c *DryGithubClient) AddAssignees(_ context.Context, owner, repo string, number int, assignees ...string) error {
	c.simulated("simulated assigning users", owner, repo, number, zap.Strings("assignees", assignees))
	return nil
}

func (c *DryGithubClient) RemoveAssignees(_ context.Context, owner, repo string, number int, assignees ...string) error {
	c.simulated("simulated unassigning users", owner, repo, number, zap.Strings("assignees", assignees))
	return nil
}

func (c *DryGithubClient) ReactToIssueComment(_ context.Context, owner, repo string, commentID int64, reaction string) error {
	c.simulated("simulated reacting to comment", owner, repo, 0, zap.Int64("comment_id", commentID), zap.String("reaction", reaction))
	return nil
}

func (c *DryGithubClient) ReactToIssue(_ context.Context, owner, repo string, number int, reaction string) error {
	c.simulated("simulated reacting to issue", owner, repo, number, zap.String("reaction", reaction))
	return nil
}

func (c *DryGithubClient) EditBody(_ context.Context, owner, repo string, number int, body string) error {
	c.simulated("simulated editing body", owner, repo, number, zap.String("body", body))
	return nil
}

func (c *DryGithubClient) AddedFiles(ctx context.Context, owner, repo string, number int) ([]string, error) {
	return c.clt.AddedFiles(ctx, owner, repo, number)
}

func (c *DryGithubClient) LatestCommitSHA(ctx context.Context, owner, repo string, number int) (string, error) {
	return c.clt.LatestCommitSHA(ctx, owner, repo, number)
}

func (c *DryGithubClient) CreateStatus(_ context.Context, owner, repo, sha string, status *githubclt.CommitStatus) error {
	c.simulated(
		"simulated creating commit status", owner, repo, 0,
		logfields.Commit(sha),
		zap.String("state", status.State),
		zap.String("description", status.Description),
	)
	return nil
}

func (c *DryGithubClient) FileContent(ctx context.Context, owner, repo, path, ref string) ([]byte, error) {
	return c.clt.FileContent(ctx, owner, repo, path, ref)
}
