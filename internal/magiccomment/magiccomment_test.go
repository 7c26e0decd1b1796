package magiccomment

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/simplesurance/hooky/internal/selection"
)

func TestRead(t *testing.T) {
	testcases := []struct {
		name         string
		body         string
		role         selection.Role
		expectedUser string
		expectFound  bool
	}{
		{
			name:         "reviewer",
			body:         "this is the pr body\n\nSelected Reviewer: @user2",
			role:         selection.RoleReviewer,
			expectedUser: "user2",
			expectFound:  true,
		},
		{
			name:         "caseInsensitiveWithDash",
			body:         "SELECTED-REVIEWER:   @Some-User_1",
			role:         selection.RoleReviewer,
			expectedUser: "Some-User_1",
			expectFound:  true,
		},
		{
			name:         "assignee",
			body:         "issue body\n\nSelected Assignee: @user1",
			role:         selection.RoleAssignee,
			expectedUser: "user1",
			expectFound:  true,
		},
		{
			name: "otherRole",
			body: "issue body\n\nSelected Assignee: @user1",
			role: selection.RoleReviewer,
		},
		{
			name: "notAtEnd",
			body: "Selected Reviewer: @user1\n\nmore text",
			role: selection.RoleReviewer,
		},
		{
			name:         "lastMarkerWins",
			body:         "body\n\nSelected Reviewer: @user1\n\nSelected Reviewer: @user2",
			role:         selection.RoleReviewer,
			expectedUser: "user2",
			expectFound:  true,
		},
		{
			name:         "trailingWhitespace",
			body:         "body\r\n\r\nSelected Reviewer: @user1\r\n",
			role:         selection.RoleReviewer,
			expectedUser: "user1",
			expectFound:  true,
		},
		{
			name: "empty",
			body: "",
			role: selection.RoleReviewer,
		},
		{
			name: "noUsername",
			body: "Selected Reviewer: @",
			role: selection.RoleReviewer,
		},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			user, found := Codec{}.Read(tc.body, tc.role)
			assert.Equal(t, tc.expectFound, found)
			assert.Equal(t, tc.expectedUser, user)
		})
	}
}

func TestWrite(t *testing.T) {
	assert.Equal(
		t,
		"this is the pr body\n\nSelected Reviewer: @user1",
		Codec{}.Write("this is the pr body", selection.RoleReviewer, "user1"),
	)

	assert.Equal(
		t,
		"\n\nSelected Assignee: @user1",
		Codec{}.Write("", selection.RoleAssignee, "user1"),
	)
}

func TestWrittenMarkerIsRead(t *testing.T) {
	body := Codec{}.Write("body", selection.RoleReviewer, "user1")
	body = Codec{}.Write(body, selection.RoleReviewer, "user-2")

	user, found := Codec{}.Read(body, selection.RoleReviewer)
	assert.True(t, found)
	assert.Equal(t, "user-2", user)
}
