package hooky

import "context"

// issueTarget is the pull request or issue for that a user is selected.
// Both are issues in the GitHub API, their bodies are edited the same way.
type issueTarget struct {
	clt    GithubClient
	repo   *Repository
	number int
	author string
	body   string
}

func (t *issueTarget) RepositoryFullName() string {
	return t.repo.FullName()
}

func (t *issueTarget) Author() string {
	return t.author
}

func (t *issueTarget) Body() string {
	return t.body
}

func (t *issueTarget) UpdateBody(ctx context.Context, body string) error {
	if err := t.clt.EditBody(ctx, t.repo.Owner, t.repo.Name, t.number, body); err != nil {
		return err
	}

	t.body = body

	return nil
}
