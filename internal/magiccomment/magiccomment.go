// Package magiccomment reads and writes the marker line that records the
// selected reviewer or assignee in the body of a pull request or issue, e.g.:
//
//	Selected Reviewer: @octocat
//
// Only a marker at the end of the body, optionally followed by whitespace, is
// recognized.
package magiccomment

import (
	"fmt"
	"regexp"

	"github.com/simplesurance/hooky/internal/selection"
)

var markerRegexps = map[selection.Role]*regexp.Regexp{
	selection.RoleReviewer: markerRegexp(selection.RoleReviewer),
	selection.RoleAssignee: markerRegexp(selection.RoleAssignee),
}

func markerRegexp(role selection.Role) *regexp.Regexp {
	return regexp.MustCompile(`(?i)selected[ -]` + regexp.QuoteMeta(role.Lower()) + `:\s*@([\w-]+)\s*$`)
}

// Codec implements selection.Codec.
type Codec struct{}

// Read returns the username of the marker for role at the end of body.
func (Codec) Read(body string, role selection.Role) (string, bool) {
	re, exists := markerRegexps[role]
	if !exists {
		re = markerRegexp(role)
	}

	m := re.FindStringSubmatch(body)
	if m == nil {
		return "", false
	}

	return m[1], true
}

// Write appends a marker for role and username to body.
// An existing marker is not replaced.
func (Codec) Write(body string, role selection.Role, username string) string {
	return fmt.Sprintf("%s\n\nSelected %s: @%s", body, role, username)
}
