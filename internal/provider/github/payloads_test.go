package github

const issueCommentPayload = `{
  "action": "created",
  "issue": {
    "number": 123,
    "user": {"login": "the_author"},
    "pull_request": {"url": "https://api.github.com/repos/testman/repo/pulls/123"}
  },
  "comment": {
    "id": 456,
    "body": "please review",
    "user": {"login": "user1"}
  },
  "repository": {
    "name": "repo",
    "full_name": "testman/repo",
    "owner": {"login": "testman"}
  }
}`

const reviewWithoutBodyPayload = `{
  "action": "submitted",
  "review": {
    "body": null,
    "state": "approved",
    "user": {"login": "user2"}
  },
  "pull_request": {
    "number": 5,
    "user": {"login": "the_author"}
  },
  "repository": {
    "name": "repo",
    "owner": {"login": "testman"}
  }
}`

const pullRequestPayload = `{
  "action": "synchronize",
  "number": 9,
  "pull_request": {
    "number": 9,
    "state": "open",
    "body": "fixes #8",
    "user": {"login": "foobar"},
    "base": {"ref": "main"}
  },
  "repository": {
    "name": "repo",
    "owner": {"login": "testman"}
  }
}`

const issuesPayload = `{
  "action": "opened",
  "issue": {
    "number": 7,
    "body": "it is broken",
    "user": {"login": "reporter"},
    "assignees": [{"login": "user1"}],
    "labels": [{"name": "bug"}, {"name": "unconfirmed"}]
  },
  "repository": {
    "name": "repo",
    "owner": {"login": "testman"}
  }
}`

const pushPayload = `{
  "ref": "refs/heads/main",
  "repository": {
    "name": "repo",
    "owner": {"login": "testman"}
  }
}`
