package hooky_test

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang/mock/gomock"
	"github.com/google/go-github/v60/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/simplesurance/hooky/internal/githubclt"
	"github.com/simplesurance/hooky/internal/hooky"
	"github.com/simplesurance/hooky/internal/hooky/mocks"
	"github.com/simplesurance/hooky/internal/hookyerr"
	"github.com/simplesurance/hooky/internal/kvstore/kvtest"
	"github.com/simplesurance/hooky/internal/magiccomment"
	"github.com/simplesurance/hooky/internal/repocfg"
	"github.com/simplesurance/hooky/internal/selection"
)

const (
	repoOwner = "testman"
	repoName  = "repo"
	prNumber  = 123
	commentID = 456
	prAuthor  = "the_author"
)

var repo = hooky.Repository{Owner: repoOwner, Name: repoName}

const reviewersConfig = `
[tool.hooky]
reviewers = ["user1", "user2"]
`

type testEnv struct {
	clt       *mocks.MockGithubClient
	processor *hooky.Processor
	redis     *miniredis.Miniredis
}

func newTestEnv(t *testing.T, repoConfig string, opts ...hooky.ProcessorOpt) *testEnv {
	t.Helper()
	t.Cleanup(zap.ReplaceGlobals(zaptest.NewLogger(t).Named(t.Name())))

	mockctrl := gomock.NewController(t)
	clt := mocks.NewMockGithubClient(mockctrl)
	clients := mocks.NewMockClientFactory(mockctrl)
	clients.EXPECT().ForRepository(gomock.Any(), repoOwner, repoName).Return(clt, nil).AnyTimes()

	clt.EXPECT().
		FileContent(gomock.Any(), repoOwner, repoName, gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _, path, _ string) ([]byte, error) {
			if repoConfig != "" && path == ".hooky.toml" {
				return []byte(repoConfig), nil
			}
			return nil, githubclt.ErrNotFound
		}).
		AnyTimes()

	kv, srv := kvtest.NewRedis(t)

	return &testEnv{
		clt: clt,
		processor: hooky.NewProcessor(
			clients,
			repocfg.NewResolver(kv),
			selection.NewSelector(&selection.KVCounter{Store: kv}, magiccomment.Codec{}),
			opts...,
		),
		redis: srv,
	}
}

func (e *testEnv) expectPullRequest(body string) *gomock.Call {
	return e.clt.EXPECT().
		PullRequest(gomock.Any(), repoOwner, repoName, prNumber).
		Return(&github.PullRequest{
			Number: github.Int(prNumber),
			Body:   github.String(body),
			User:   &github.User{Login: github.String(prAuthor)},
			Base:   &github.PullRequestBranch{Ref: github.String("main")},
		}, nil)
}

func commentEvent(commenter, body string) *hooky.IssueCommentEvent {
	return &hooky.IssueCommentEvent{
		Repo:          repo,
		Action:        "created",
		IsPullRequest: true,
		Number:        prNumber,
		Author:        prAuthor,
		CommentID:     commentID,
		CommentBody:   body,
		Commenter:     commenter,
	}
}

func TestRequestReviewAssignsRoundRobinReviewer(t *testing.T) {
	env := newTestEnv(t, reviewersConfig)

	gomock.InOrder(
		env.expectPullRequest("this is the pr body"),
		env.clt.EXPECT().ReactToIssueComment(gomock.Any(), repoOwner, repoName, int64(commentID), "+1"),
		env.clt.EXPECT().AddLabel(gomock.Any(), repoOwner, repoName, prNumber, "ready for review"),
		env.clt.EXPECT().IssueLabels(gomock.Any(), repoOwner, repoName, prNumber).
			Return([]string{"awaiting author revision"}, nil),
		env.clt.EXPECT().RemoveLabel(gomock.Any(), repoOwner, repoName, prNumber, "awaiting author revision"),
		env.clt.EXPECT().EditBody(gomock.Any(), repoOwner, repoName, prNumber,
			"this is the pr body\n\nSelected Reviewer: @user1"),
		env.clt.EXPECT().RemoveAssignees(gomock.Any(), repoOwner, repoName, prNumber, prAuthor),
		env.clt.EXPECT().AddAssignees(gomock.Any(), repoOwner, repoName, prNumber, "user1"),
	)

	res, err := env.processor.Process(context.Background(), commentEvent(prAuthor, "Please Review"))
	require.NoError(t, err)

	assert.True(t, res.Acted)
	assert.Equal(t,
		`[Label and assign] @user1 successfully assigned to PR as reviewer, "ready for review" label added`,
		res.Message,
	)

	val, err := env.redis.Get("reviewer:testman/repo")
	require.NoError(t, err)
	assert.Equal(t, "1", val)
}

func TestRequestReviewReusesRecordedReviewer(t *testing.T) {
	env := newTestEnv(t, reviewersConfig)

	env.expectPullRequest("body\n\nSelected Reviewer: @user2")
	env.clt.EXPECT().ReactToIssueComment(gomock.Any(), repoOwner, repoName, int64(commentID), "+1")
	env.clt.EXPECT().AddLabel(gomock.Any(), repoOwner, repoName, prNumber, "ready for review")
	env.clt.EXPECT().IssueLabels(gomock.Any(), repoOwner, repoName, prNumber).Return(nil, nil)
	env.clt.EXPECT().RemoveAssignees(gomock.Any(), repoOwner, repoName, prNumber, prAuthor)
	env.clt.EXPECT().AddAssignees(gomock.Any(), repoOwner, repoName, prNumber, "user2")

	res, err := env.processor.Process(context.Background(), commentEvent("user1", "please review"))
	require.NoError(t, err)
	assert.True(t, res.Acted)
	assert.Contains(t, res.Message, "@user2 successfully assigned")

	assert.False(t, env.redis.Exists("reviewer:testman/repo"))
}

func TestRequestReviewRecordedReviewerNotInReviewers(t *testing.T) {
	env := newTestEnv(t, reviewersConfig)

	env.expectPullRequest("body\n\nSelected Reviewer: @someone")
	env.clt.EXPECT().ReactToIssueComment(gomock.Any(), repoOwner, repoName, int64(commentID), "+1")
	env.clt.EXPECT().AddLabel(gomock.Any(), repoOwner, repoName, prNumber, "ready for review")
	env.clt.EXPECT().IssueLabels(gomock.Any(), repoOwner, repoName, prNumber).Return(nil, nil)

	res, err := env.processor.Process(context.Background(), commentEvent(prAuthor, "please review"))
	require.NoError(t, err)
	assert.False(t, res.Acted)
	assert.Equal(t, "[Label and assign] Selected reviewer @someone not in reviewers.", res.Message)

	assert.False(t, env.redis.Exists("reviewer:testman/repo"))
}

func TestRequestReviewSkipsAuthorAsReviewer(t *testing.T) {
	env := newTestEnv(t, `
[tool.hooky]
reviewers = ["the_author", "user2"]
`)

	env.expectPullRequest("")
	env.clt.EXPECT().ReactToIssueComment(gomock.Any(), repoOwner, repoName, int64(commentID), "+1")
	env.clt.EXPECT().AddLabel(gomock.Any(), repoOwner, repoName, prNumber, "ready for review")
	env.clt.EXPECT().IssueLabels(gomock.Any(), repoOwner, repoName, prNumber).Return(nil, nil)
	env.clt.EXPECT().EditBody(gomock.Any(), repoOwner, repoName, prNumber, "\n\nSelected Reviewer: @user2")
	env.clt.EXPECT().RemoveAssignees(gomock.Any(), repoOwner, repoName, prNumber, prAuthor)
	env.clt.EXPECT().AddAssignees(gomock.Any(), repoOwner, repoName, prNumber, "user2")

	res, err := env.processor.Process(context.Background(), commentEvent(prAuthor, "please review"))
	require.NoError(t, err)
	assert.True(t, res.Acted)
	assert.Contains(t, res.Message, "@user2 successfully assigned")
}

func TestRequestReviewDeniedForOtherUsers(t *testing.T) {
	env := newTestEnv(t, reviewersConfig)
	env.expectPullRequest("")

	res, err := env.processor.Process(context.Background(), commentEvent("other", "please review"))
	require.NoError(t, err)
	assert.False(t, res.Acted)
	assert.Equal(t,
		`[Label and assign] Only the PR author @the_author or reviewers can request a review, not "other"`,
		res.Message,
	)
}

func TestRequestReviewWithCollaboratorsAsReviewers(t *testing.T) {
	env := newTestEnv(t, "")

	env.expectPullRequest("")
	env.clt.EXPECT().Collaborators(gomock.Any(), repoOwner, repoName).Return([]string{"colab1", "colab2"}, nil)
	env.clt.EXPECT().ReactToIssueComment(gomock.Any(), repoOwner, repoName, int64(commentID), "+1")
	env.clt.EXPECT().AddLabel(gomock.Any(), repoOwner, repoName, prNumber, "ready for review")
	env.clt.EXPECT().IssueLabels(gomock.Any(), repoOwner, repoName, prNumber).Return(nil, nil)
	env.clt.EXPECT().EditBody(gomock.Any(), repoOwner, repoName, prNumber, "\n\nSelected Reviewer: @colab1")
	env.clt.EXPECT().RemoveAssignees(gomock.Any(), repoOwner, repoName, prNumber, prAuthor)
	env.clt.EXPECT().AddAssignees(gomock.Any(), repoOwner, repoName, prNumber, "colab1")

	res, err := env.processor.Process(context.Background(), commentEvent(prAuthor, "please review"))
	require.NoError(t, err)
	assert.True(t, res.Acted)
}

func TestAssignAuthor(t *testing.T) {
	env := newTestEnv(t, reviewersConfig)

	gomock.InOrder(
		env.expectPullRequest(""),
		env.clt.EXPECT().ReactToIssueComment(gomock.Any(), repoOwner, repoName, int64(commentID), "+1"),
		env.clt.EXPECT().AddLabel(gomock.Any(), repoOwner, repoName, prNumber, "awaiting author revision"),
		env.clt.EXPECT().IssueLabels(gomock.Any(), repoOwner, repoName, prNumber).Return([]string{"ready for review"}, nil),
		env.clt.EXPECT().RemoveLabel(gomock.Any(), repoOwner, repoName, prNumber, "ready for review"),
		env.clt.EXPECT().AddAssignees(gomock.Any(), repoOwner, repoName, prNumber, prAuthor),
		env.clt.EXPECT().RemoveAssignees(gomock.Any(), repoOwner, repoName, prNumber, "user1", "user2"),
	)

	res, err := env.processor.Process(context.Background(), commentEvent("user1", "please update the tests"))
	require.NoError(t, err)
	assert.True(t, res.Acted)
	assert.Equal(t,
		`[Label and assign] Author the_author successfully assigned to PR, "awaiting author revision" label added`,
		res.Message,
	)
}

func TestAssignAuthorDeniedForNonReviewers(t *testing.T) {
	env := newTestEnv(t, reviewersConfig)
	env.expectPullRequest("")

	res, err := env.processor.Process(context.Background(), commentEvent(prAuthor, "please update"))
	require.NoError(t, err)
	assert.False(t, res.Acted)
	assert.Equal(t,
		`[Label and assign] Only reviewers "user1", "user2" can assign the author, not "the_author"`,
		res.Message,
	)
}

func TestReviewRequestingChangesAssignsAuthor(t *testing.T) {
	env := newTestEnv(t, reviewersConfig)

	env.expectPullRequest("")
	env.clt.EXPECT().AddLabel(gomock.Any(), repoOwner, repoName, prNumber, "awaiting author revision")
	env.clt.EXPECT().IssueLabels(gomock.Any(), repoOwner, repoName, prNumber).Return(nil, nil)
	env.clt.EXPECT().AddAssignees(gomock.Any(), repoOwner, repoName, prNumber, prAuthor)
	env.clt.EXPECT().RemoveAssignees(gomock.Any(), repoOwner, repoName, prNumber, "user1", "user2")

	res, err := env.processor.Process(context.Background(), &hooky.PullRequestReviewEvent{
		Repo:        repo,
		Action:      "submitted",
		Number:      prNumber,
		Author:      prAuthor,
		ReviewBody:  github.String("some remarks"),
		ReviewState: "changes_requested",
		Reviewer:    "user2",
	})
	require.NoError(t, err)
	assert.True(t, res.Acted)
}

func TestIgnoredLabelAssignEvents(t *testing.T) {
	tcs := []struct {
		name    string
		event   hooky.Event
		message string
	}{
		{
			name: "reviewWithoutBody",
			event: &hooky.PullRequestReviewEvent{
				Repo:        repo,
				Action:      "submitted",
				Number:      prNumber,
				Author:      prAuthor,
				ReviewState: "approved",
				Reviewer:    "user1",
			},
			message: "[Label and assign] review has no body",
		},
		{
			name: "commentOnIssue",
			event: &hooky.IssueCommentEvent{
				Repo:        repo,
				Action:      "created",
				Number:      prNumber,
				CommentBody: "please review",
				Commenter:   "user1",
			},
			message: "[Label and assign] action only applies to pull requests, not issues",
		},
		{
			name: "deletedComment",
			event: &hooky.IssueCommentEvent{
				Repo:          repo,
				Action:        "deleted",
				IsPullRequest: true,
				Number:        prNumber,
				CommentBody:   "please review",
				Commenter:     "user1",
			},
			message: `[Label and assign] comment action "deleted" is ignored`,
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t, reviewersConfig)

			res, err := env.processor.Process(context.Background(), tc.event)
			require.NoError(t, err)
			assert.False(t, res.Acted)
			assert.Equal(t, tc.message, res.Message)
		})
	}
}

func TestCommentWithoutTrigger(t *testing.T) {
	env := newTestEnv(t, reviewersConfig)
	env.expectPullRequest("")

	res, err := env.processor.Process(context.Background(), commentEvent("user1", "looks good"))
	require.NoError(t, err)
	assert.False(t, res.Acted)
	assert.Equal(t,
		"[Label and assign] neither 'please update' nor 'please review' found in comment body",
		res.Message,
	)
}

func TestGithubErrorsArePropagated(t *testing.T) {
	env := newTestEnv(t, reviewersConfig)

	apiErr := hookyerr.NewRetryableAnytimeError(errors.New("502 bad gateway"))

	env.expectPullRequest("")
	env.clt.EXPECT().ReactToIssueComment(gomock.Any(), repoOwner, repoName, int64(commentID), "+1")
	env.clt.EXPECT().AddLabel(gomock.Any(), repoOwner, repoName, prNumber, "awaiting author revision").Return(apiErr)

	res, err := env.processor.Process(context.Background(), commentEvent("user1", "please update"))
	require.Error(t, err)
	assert.Nil(t, res)

	var retryableErr *hookyerr.RetryableError
	assert.ErrorAs(t, err, &retryableErr)
}

func TestClientCreationErrorIsPropagated(t *testing.T) {
	t.Cleanup(zap.ReplaceGlobals(zaptest.NewLogger(t).Named(t.Name())))

	mockctrl := gomock.NewController(t)
	clients := mocks.NewMockClientFactory(mockctrl)
	clients.EXPECT().ForRepository(gomock.Any(), repoOwner, repoName).Return(nil, errors.New("no installation"))

	kv, _ := kvtest.NewRedis(t)
	processor := hooky.NewProcessor(
		clients,
		repocfg.NewResolver(kv),
		selection.NewSelector(&selection.KVCounter{Store: kv}, magiccomment.Codec{}),
	)

	_, err := processor.Process(context.Background(), commentEvent("user1", "please update"))
	assert.Error(t, err)
}

func TestDryRunDoesNotChangeAnything(t *testing.T) {
	env := newTestEnv(t, reviewersConfig, hooky.WithDryRun())

	env.expectPullRequest("")
	env.clt.EXPECT().IssueLabels(gomock.Any(), repoOwner, repoName, prNumber).Return(nil, nil)

	res, err := env.processor.Process(context.Background(), commentEvent("user1", "please review"))
	require.NoError(t, err)
	assert.True(t, res.Acted)
	assert.Contains(t, res.Message, "@user1 successfully assigned")
}

func TestResultString(t *testing.T) {
	assert.Equal(t, "Action taken: done", (&hooky.Result{Acted: true, Message: "done"}).String())
	assert.Equal(t, "Webhook ignored: nothing", (&hooky.Result{Message: "nothing"}).String())
}
