package githubclt

import (
	"context"
	"errors"

	"github.com/shurcooL/githubv4"
)

// LatestCommitSHA returns the SHA of the most recent commit of a pull request.
func (clt *Client) LatestCommitSHA(ctx context.Context, owner, repo string, prNumber int) (string, error) {
	var q struct {
		Repository struct {
			PullRequest struct {
				Commits struct {
					Nodes []struct {
						Commit struct {
							Oid string
						}
					}
				} `graphql:"commits(last: $commitsLast)"`
			} `graphql:"pullRequest(number: $number)"`
		} `graphql:"repository(owner: $owner, name: $name)"`
	}

	vars := map[string]any{
		"owner":       githubv4.String(owner),
		"name":        githubv4.String(repo),
		"number":      githubv4.Int(prNumber),
		"commitsLast": githubv4.Int(1),
	}

	if err := clt.graphQLClt.Query(ctx, &q, vars); err != nil {
		return "", clt.wrapGraphQLRetryableErrors(err)
	}

	nodes := q.Repository.PullRequest.Commits.Nodes
	if len(nodes) == 0 || nodes[0].Commit.Oid == "" {
		return "", errors.New("github returned no commits for the pull request")
	}

	return nodes[0].Commit.Oid, nil
}
