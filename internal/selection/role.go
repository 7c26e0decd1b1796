package selection

import "strings"

// Role is the part a selected user plays for a pull request or issue.
type Role string

const (
	RoleReviewer Role = "Reviewer"
	RoleAssignee Role = "Assignee"
)

func (r Role) String() string {
	return string(r)
}

// Lower returns the role in lower case, e.g. "reviewer".
func (r Role) Lower() string {
	return strings.ToLower(string(r))
}

// excludesAuthor returns true if the author of the pull request or issue
// must not be selected for the role.
func (r Role) excludesAuthor() bool {
	return r == RoleReviewer
}

// CounterKey returns the key of the round-robin counter of the role for a
// repository.
func CounterKey(role Role, repositoryFullName string) string {
	return role.Lower() + ":" + repositoryFullName
}
