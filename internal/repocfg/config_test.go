package repocfg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
[tool.hooky]
reviewers = ["user1", "user2"]
`))
	require.NoError(t, err)

	expected := Default()
	expected.Reviewers = []string{"user1", "user2"}
	assert.Equal(t, expected, cfg)
}

func TestParseAllFields(t *testing.T) {
	cfg, err := Parse([]byte(`
[tool.black]
line-length = 79

[tool.hooky]
reviewers = ["a", "b-c"]
request_update_trigger = "update pls"
request_review_trigger = "review pls"
awaiting_update_label = "waiting"
awaiting_review_label = "reviewable"
no_change_file = "no changes"
require_change_file = false
assignees = ["d_e"]
unconfirmed_label = "triage"
`))
	require.NoError(t, err)

	assert.Equal(t, &RepoConfig{
		Reviewers:            []string{"a", "b-c"},
		RequestUpdateTrigger: "update pls",
		RequestReviewTrigger: "review pls",
		AwaitingUpdateLabel:  "waiting",
		AwaitingReviewLabel:  "reviewable",
		NoChangeFile:         "no changes",
		RequireChangeFile:    false,
		Assignees:            []string{"d_e"},
		UnconfirmedLabel:     "triage",
	}, cfg)
}

func TestParseErrors(t *testing.T) {
	tcs := []struct {
		name string
		data string
		err  error
	}{
		{
			name: "invalidToml",
			data: "[tool.hooky\nreviewers = [",
			err:  ErrInvalidFile,
		},
		{
			name: "noTable",
			data: "[tool.other]\nreviewers = [\"a\"]\n",
			err:  ErrNoTable,
		},
		{
			name: "emptyFile",
			data: "",
			err:  ErrNoTable,
		},
		{
			name: "reviewersNotAList",
			data: "[tool.hooky]\nreviewers = \"foobar\"\n",
			err:  ErrInvalidConfig,
		},
		{
			name: "invalidUsername",
			data: "[tool.hooky]\nassignees = [\"foo bar\"]\n",
			err:  ErrInvalidConfig,
		},
		{
			name: "emptyTrigger",
			data: "[tool.hooky]\nrequest_review_trigger = \"\"\n",
			err:  ErrInvalidConfig,
		},
		{
			name: "hookyNotATable",
			data: "[tool]\nhooky = 1\n",
			err:  ErrInvalidConfig,
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := Parse([]byte(tc.data))
			assert.ErrorIs(t, err, tc.err)
			assert.Nil(t, cfg)
		})
	}
}

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}
