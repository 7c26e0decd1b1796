package hooky_test

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simplesurance/hooky/internal/hooky"
)

const assigneesConfig = `
[tool.hooky]
assignees = ["user1", "user2"]
`

const issueNumber = 7

func issueEvent(author string) *hooky.IssueEvent {
	return &hooky.IssueEvent{
		Repo:   repo,
		Action: "opened",
		Number: issueNumber,
		Author: author,
		Body:   "it is broken",
	}
}

func TestAssignNewIssue(t *testing.T) {
	env := newTestEnv(t, assigneesConfig)

	gomock.InOrder(
		env.clt.EXPECT().EditBody(gomock.Any(), repoOwner, repoName, issueNumber, "it is broken\n\nSelected Assignee: @user1"),
		env.clt.EXPECT().AddAssignees(gomock.Any(), repoOwner, repoName, issueNumber, "user1"),
		env.clt.EXPECT().AddLabel(gomock.Any(), repoOwner, repoName, issueNumber, "unconfirmed"),
		env.clt.EXPECT().ReactToIssue(gomock.Any(), repoOwner, repoName, issueNumber, "+1"),
	)

	res, err := env.processor.Process(context.Background(), issueEvent("reporter"))
	require.NoError(t, err)
	assert.True(t, res.Acted)
	assert.Equal(t, `[Assign issue] @user1 successfully assigned to issue, "unconfirmed" label added`, res.Message)

	val, err := env.redis.Get("assignee:testman/repo")
	require.NoError(t, err)
	assert.Equal(t, "1", val)
}

func TestAssignNewIssueRoundRobin(t *testing.T) {
	env := newTestEnv(t, assigneesConfig)

	env.clt.EXPECT().EditBody(gomock.Any(), repoOwner, repoName, issueNumber, gomock.Any()).Times(3)
	env.clt.EXPECT().AddLabel(gomock.Any(), repoOwner, repoName, issueNumber, "unconfirmed").Times(3)
	env.clt.EXPECT().ReactToIssue(gomock.Any(), repoOwner, repoName, issueNumber, "+1").Times(3)
	gomock.InOrder(
		env.clt.EXPECT().AddAssignees(gomock.Any(), repoOwner, repoName, issueNumber, "user1"),
		env.clt.EXPECT().AddAssignees(gomock.Any(), repoOwner, repoName, issueNumber, "user2"),
		env.clt.EXPECT().AddAssignees(gomock.Any(), repoOwner, repoName, issueNumber, "user1"),
	)

	for range 3 {
		res, err := env.processor.Process(context.Background(), issueEvent("reporter"))
		require.NoError(t, err)
		assert.True(t, res.Acted)
	}
}

func TestAssignNewIssueAlreadyAssignedAndLabeled(t *testing.T) {
	env := newTestEnv(t, assigneesConfig)

	env.clt.EXPECT().EditBody(gomock.Any(), repoOwner, repoName, issueNumber, gomock.Any())
	env.clt.EXPECT().ReactToIssue(gomock.Any(), repoOwner, repoName, issueNumber, "+1")

	ev := issueEvent("reporter")
	ev.Action = "reopened"
	ev.Assignees = []string{"user1"}
	ev.Labels = []string{"bug", "unconfirmed"}

	res, err := env.processor.Process(context.Background(), ev)
	require.NoError(t, err)
	assert.True(t, res.Acted)
}

func TestIgnoredIssueEvents(t *testing.T) {
	tcs := []struct {
		name    string
		config  string
		event   *hooky.IssueEvent
		message string
	}{
		{
			name:    "authorIsAssignee",
			config:  assigneesConfig,
			event:   issueEvent("user2"),
			message: "[Assign issue] @user2 is in repo assignees list, doing nothing",
		},
		{
			name:    "noAssignees",
			event:   issueEvent("reporter"),
			message: "[Assign issue] no assignees configured",
		},
		{
			name:   "closed",
			config: assigneesConfig,
			event: &hooky.IssueEvent{
				Repo:   repo,
				Action: "closed",
				Number: issueNumber,
				Author: "reporter",
			},
			message: `[Assign issue] Ignoring event action "closed"`,
		},
		{
			name:   "recordedAssigneeRemoved",
			config: assigneesConfig,
			event: &hooky.IssueEvent{
				Repo:   repo,
				Action: "opened",
				Number: issueNumber,
				Author: "reporter",
				Body:   "text\n\nSelected Assignee: @user3",
			},
			message: "[Assign issue] Selected assignee @user3 not in assignees.",
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t, tc.config)

			res, err := env.processor.Process(context.Background(), tc.event)
			require.NoError(t, err)
			assert.False(t, res.Acted)
			assert.Equal(t, tc.message, res.Message)
		})
	}
}
