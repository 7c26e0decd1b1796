package selection

import (
	"errors"
	"fmt"
)

// ErrNoCandidates is returned when Select is called with an empty candidate
// list.
var ErrNoCandidates = errors.New("candidate list is empty")

// ConflictError is returned when the pull request or issue body records a
// selected user that is not a candidate anymore.
// It must be resolved by editing the body, the selection is not redone
// automatically.
type ConflictError struct {
	Role     Role
	Username string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("Selected %s @%s not in %ss.", e.Role.Lower(), e.Username, e.Role.Lower())
}
