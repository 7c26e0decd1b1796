// Package githubclt provides a github API client.
package githubclt

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"
	"github.com/google/go-github/v60/github"
	"github.com/gregjones/httpcache"
	"github.com/shurcooL/githubv4"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/simplesurance/hooky/internal/hookyerr"
	"github.com/simplesurance/hooky/internal/logfields"
)

const DefaultHTTPClientTimeout = time.Minute

// DefaultAPIURL is the base URL of the github.com REST API.
const DefaultAPIURL = "https://api.github.com/"

const loggerName = "github_client"

// ErrNotFound is returned when a requested resource does not exist.
// errors.Is(err, fs.ErrNotExist) is true for it.
var ErrNotFound = fmt.Errorf("not found: %w", fs.ErrNotExist)

// revalidateCacheControl makes every cached response stale for
// httpcache, GET requests are then sent with If-None-Match and the cached
// body is only used when GitHub answers with 304 Not Modified.
// min-fresh keeps cached responses stale when the local clock is behind the
// Date header of the response.
const revalidateCacheControl = "max-age=0, min-fresh=86400"

// NewTransport returns the transport that is shared by clients.
// It revalidates cached responses by their ETag on every request and delays
// requests when the secondary ratelimit of the GitHub API is exceeded.
func NewTransport() http.RoundTripper {
	return github_ratelimit.NewClient(&revalidatingTransport{
		next: httpcache.NewMemoryCacheTransport(),
	}).Transport
}

// revalidatingTransport forbids next to answer requests from its cache
// without contacting the server.
// GitHub sends "Cache-Control: private, max-age=60" for authenticated GETs,
// a write to an issue does not invalidate the cached pull request or file
// list of the same number.
type revalidatingTransport struct {
	next http.RoundTripper
}

func (t *revalidatingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet && req.Method != http.MethodHead {
		return t.next.RoundTrip(req)
	}

	req = req.Clone(req.Context())
	req.Header.Set("Cache-Control", revalidateCacheControl)

	return t.next.RoundTrip(req)
}

type Opt func(*options)

type options struct {
	baseURL   string
	transport http.RoundTripper
}

// WithBaseURL sets the base URL of the REST API, the GraphQL endpoint is
// expected at <baseURL>/graphql.
func WithBaseURL(baseURL string) Opt {
	return func(o *options) {
		o.baseURL = baseURL
	}
}

// WithTransport sets the transport that is used for requests.
func WithTransport(transport http.RoundTripper) Opt {
	return func(o *options) {
		o.transport = transport
	}
}

// New returns a new github api client.
// The token is sent as bearer token, it can be an installation access token
// or an app JWT.
func New(apiToken string, opts ...Opt) (*Client, error) {
	o := options{baseURL: DefaultAPIURL}
	for _, opt := range opts {
		opt(&o)
	}

	httpClient := newHTTPClient(o.transport, apiToken)
	restClt := github.NewClient(httpClient)
	graphQLURL := "https://api.github.com/graphql"

	if o.baseURL != DefaultAPIURL {
		baseURL, err := url.Parse(strings.TrimSuffix(o.baseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("parsing base url failed: %w", err)
		}

		restClt.BaseURL = baseURL
		graphQLURL = baseURL.JoinPath("graphql").String()
	}

	return &Client{
		restClt:    restClt,
		graphQLClt: githubv4.NewEnterpriseClient(graphQLURL, httpClient),
		logger:     zap.L().Named(loggerName),
	}, nil
}

func newHTTPClient(transport http.RoundTripper, apiToken string) *http.Client {
	if transport == nil {
		transport = http.DefaultTransport
	}

	if apiToken == "" {
		return &http.Client{
			Transport: transport,
			Timeout:   DefaultHTTPClientTimeout,
		}
	}

	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: apiToken},
	)

	return &http.Client{
		Transport: &oauth2.Transport{Source: ts, Base: transport},
		Timeout:   DefaultHTTPClientTimeout,
	}
}

// Client is an github API client.
// All methods return a hookyerr.RetryableError when an operation can be retried.
// This can be e.g. the case when the API ratelimit is exceeded.
type Client struct {
	restClt    *github.Client
	graphQLClt *githubv4.Client
	logger     *zap.Logger
}

// PullRequest returns the pull request with the given number.
func (clt *Client) PullRequest(ctx context.Context, owner, repo string, number int) (*github.PullRequest, error) {
	pr, _, err := clt.restClt.PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		return nil, clt.wrapRetryableErrors(err)
	}

	return pr, nil
}

// Collaborators returns the logins of all collaborators of the repository.
func (clt *Client) Collaborators(ctx context.Context, owner, repo string) ([]string, error) {
	var result []string

	opts := github.ListCollaboratorsOptions{ListOptions: github.ListOptions{PerPage: 100}}
	for {
		users, resp, err := clt.restClt.Repositories.ListCollaborators(ctx, owner, repo, &opts)
		if err != nil {
			return nil, clt.wrapRetryableErrors(err)
		}

		for _, u := range users {
			result = append(result, u.GetLogin())
		}

		if resp.NextPage == 0 {
			return result, nil
		}
		opts.Page = resp.NextPage
	}
}

// IssueLabels returns the names of the labels of a Pull-Request or Issue.
func (clt *Client) IssueLabels(ctx context.Context, owner, repo string, pullRequestOrIssueNumber int) ([]string, error) {
	var result []string

	opts := github.ListOptions{PerPage: 100}
	for {
		labels, resp, err := clt.restClt.Issues.ListLabelsByIssue(ctx, owner, repo, pullRequestOrIssueNumber, &opts)
		if err != nil {
			return nil, clt.wrapRetryableErrors(err)
		}

		for _, l := range labels {
			result = append(result, l.GetName())
		}

		if resp.NextPage == 0 {
			return result, nil
		}
		opts.Page = resp.NextPage
	}
}

// AddLabel adds a label to Pull-Request or Issue.
func (clt *Client) AddLabel(ctx context.Context, owner, repo string, pullRequestOrIssueNumber int, label string) error {
	if label == "" {
		// by default github removes all labels when none is provided,
		// we do not need this functionality, as safe guard fail if
		// because of a bug an empty label value is passed:
		return errors.New("provided label is empty")
	}
	_, _, err := clt.restClt.Issues.AddLabelsToIssue(ctx, owner, repo, pullRequestOrIssueNumber, []string{label})
	return clt.wrapRetryableErrors(err)
}

// RemoveLabel removes a label from a Pull-Request or issue.
// If the issue or PR does not have the label, the operation succeeds.
func (clt *Client) RemoveLabel(ctx context.Context, owner, repo string, pullRequestOrIssueNumber int, label string) error {
	_, err := clt.restClt.Issues.RemoveLabelForIssue(
		ctx,
		owner,
		repo,
		pullRequestOrIssueNumber,
		label,
	)
	if err != nil {
		var respErr *github.ErrorResponse
		if errors.As(err, &respErr) && respErr.Response.StatusCode == http.StatusNotFound {
			clt.logger.Debug("removing label returned a not found response, interpreting it as success",
				logfields.RepositoryOwner(owner),
				logfields.Repository(repo),
				logfields.PullRequest(pullRequestOrIssueNumber),
				logfields.Label(label),
				logfields.Event("github_remove_label_returned_not_found"),
				zap.Error(err),
			)

			return nil
		}

		return clt.wrapRetryableErrors(err)
	}

	return nil
}

// AddAssignees assigns users to a Pull-Request or Issue.
func (clt *Client) AddAssignees(ctx context.Context, owner, repo string, pullRequestOrIssueNumber int, assignees ...string) error {
	_, _, err := clt.restClt.Issues.AddAssignees(ctx, owner, repo, pullRequestOrIssueNumber, assignees)
	return clt.wrapRetryableErrors(err)
}

// RemoveAssignees unassigns users from a Pull-Request or Issue.
// Users that are not assigned are ignored.
func (clt *Client) RemoveAssignees(ctx context.Context, owner, repo string, pullRequestOrIssueNumber int, assignees ...string) error {
	_, _, err := clt.restClt.Issues.RemoveAssignees(ctx, owner, repo, pullRequestOrIssueNumber, assignees)
	return clt.wrapRetryableErrors(err)
}

// ReactToIssueComment adds a reaction to a comment of an issue or Pull-Request.
// Valid reactions are listed in the documentation of
// github.ReactionsService.CreateIssueCommentReaction.
func (clt *Client) ReactToIssueComment(ctx context.Context, owner, repo string, commentID int64, reaction string) error {
	_, _, err := clt.restClt.Reactions.CreateIssueCommentReaction(ctx, owner, repo, commentID, reaction)
	return clt.wrapRetryableErrors(err)
}

// ReactToIssue adds a reaction to an issue or Pull-Request.
func (clt *Client) ReactToIssue(ctx context.Context, owner, repo string, pullRequestOrIssueNumber int, reaction string) error {
	_, _, err := clt.restClt.Reactions.CreateIssueReaction(ctx, owner, repo, pullRequestOrIssueNumber, reaction)
	return clt.wrapRetryableErrors(err)
}

// EditBody replaces the description of a Pull-Request or Issue.
func (clt *Client) EditBody(ctx context.Context, owner, repo string, pullRequestOrIssueNumber int, body string) error {
	_, _, err := clt.restClt.Issues.Edit(ctx, owner, repo, pullRequestOrIssueNumber, &github.IssueRequest{Body: &body})
	return clt.wrapRetryableErrors(err)
}

// AddedFiles returns the paths of the files that a Pull-Request adds.
// Modified, renamed and removed files are not returned.
func (clt *Client) AddedFiles(ctx context.Context, owner, repo string, pullRequestNumber int) ([]string, error) {
	var result []string

	opts := github.ListOptions{PerPage: 100}
	for {
		files, resp, err := clt.restClt.PullRequests.ListFiles(ctx, owner, repo, pullRequestNumber, &opts)
		if err != nil {
			return nil, clt.wrapRetryableErrors(err)
		}

		for _, f := range files {
			if f.GetStatus() == "added" {
				result = append(result, f.GetFilename())
			}
		}

		if resp.NextPage == 0 {
			return result, nil
		}
		opts.Page = resp.NextPage
	}
}

// CommitStatus is the state of a commit status check.
type CommitStatus struct {
	State       string
	Description string
	TargetURL   string
	Context     string
}

// CreateStatus creates a commit status for the commit with the given SHA.
func (clt *Client) CreateStatus(ctx context.Context, owner, repo, sha string, status *CommitStatus) error {
	repoStatus := github.RepoStatus{
		State:       github.String(status.State),
		Description: github.String(status.Description),
		Context:     github.String(status.Context),
	}
	if status.TargetURL != "" {
		repoStatus.TargetURL = github.String(status.TargetURL)
	}

	_, _, err := clt.restClt.Repositories.CreateStatus(ctx, owner, repo, sha, &repoStatus)
	return clt.wrapRetryableErrors(err)
}

// FileContent returns the content of a file in the repository at ref.
// If ref is empty, the file is read from the default branch.
// If the file does not exist an error wrapping ErrNotFound is returned.
func (clt *Client) FileContent(ctx context.Context, owner, repo, path, ref string) ([]byte, error) {
	var opts *github.RepositoryContentGetOptions
	if ref != "" {
		opts = &github.RepositoryContentGetOptions{Ref: ref}
	}

	file, _, _, err := clt.restClt.Repositories.GetContents(ctx, owner, repo, path, opts)
	if err != nil {
		var respErr *github.ErrorResponse
		if errors.As(err, &respErr) && respErr.Response.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}

		return nil, clt.wrapRetryableErrors(err)
	}

	if file == nil {
		return nil, fmt.Errorf("%s: is a directory: %w", path, ErrNotFound)
	}

	content, err := file.GetContent()
	if err != nil {
		return nil, fmt.Errorf("decoding content of %s failed: %w", path, err)
	}

	return []byte(content), nil
}

func (clt *Client) wrapRetryableErrors(err error) error {
	switch v := err.(type) {
	case *github.RateLimitError:
		clt.logger.Info(
			"rate limit exceeded",
			logfields.Event("github_api_rate_limit_exceeded"),
			zap.Int("github_api_rate_limit", v.Rate.Limit),
			zap.Time("github_api_rate_limit_reset_time", v.Rate.Reset.Time),
		)

		return hookyerr.NewRetryableError(err, v.Rate.Reset.Time)

	case *github.AbuseRateLimitError:
		if v.RetryAfter != nil {
			return hookyerr.NewRetryableError(err, time.Now().Add(*v.RetryAfter))
		}

		return hookyerr.NewRetryableAnytimeError(err)

	case *github.ErrorResponse:
		if v.Response.StatusCode >= 500 && v.Response.StatusCode < 600 {
			return hookyerr.NewRetryableAnytimeError(err)
		}
	}

	return err
}

var graphQlHTTPStatusErrRe = regexp.MustCompile(`^non-200 OK status code: ([0-9]+) .*`)

func (clt *Client) wrapGraphQLRetryableErrors(err error) error {
	matches := graphQlHTTPStatusErrRe.FindStringSubmatch(err.Error())
	if len(matches) != 2 {
		return err
	}

	errcode, atoiErr := strconv.Atoi(matches[1])
	if atoiErr != nil {
		clt.logger.Info(
			"parsing http code from error string failed",
			zap.Error(atoiErr),
			zap.String("error_string", err.Error()),
			zap.String("http_errcode", matches[1]),
		)
		return err
	}

	if errcode >= 500 && errcode < 600 {
		return hookyerr.NewRetryableAnytimeError(err)
	}

	return err
}
