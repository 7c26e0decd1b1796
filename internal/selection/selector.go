// Package selection selects reviewers and assignees for pull requests and
// issues in round-robin order.
//
// The position in the round-robin sequence is an integer counter per
// repository and role in a shared key-value store, it is incremented
// atomically for every new selection. A selection is recorded in the body of
// the pull request or issue, when it is found there it is reused instead of
// selecting a new user.
package selection

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/simplesurance/hooky/internal/logfields"
)

const loggerName = "selection"

// DefOverflowMultiple is the default multiple of the candidate count at
// which the counter is wrapped around.
// It keeps the counter far below the int64 limit of the store.
const DefOverflowMultiple = 1 << 32

// Counter is a shared integer counter.
type Counter interface {
	// Increment atomically increments the counter at key and returns the
	// new value. A non-existing counter has the value 0.
	Increment(ctx context.Context, key string) (int64, error)
	// Reset sets the counter at key to value.
	Reset(ctx context.Context, key string, value int64) error
}

// Codec reads and records a selection in the body of a pull request or
// issue.
type Codec interface {
	Read(body string, role Role) (username string, found bool)
	Write(body string, role Role, username string) string
}

// Target is the pull request or issue for that a user is selected.
type Target interface {
	// RepositoryFullName returns the name of the repository in the
	// "owner/name" format.
	RepositoryFullName() string
	Author() string
	Body() string
	// UpdateBody stores a new body of the pull request or issue.
	UpdateBody(ctx context.Context, body string) error
}

// Selector selects users in round-robin order.
type Selector struct {
	counter          Counter
	codec            Codec
	overflowMultiple int64
	logger           *zap.Logger
}

// WithOverflowMultiple sets the multiple of the candidate count at which the
// counter wraps around.
func WithOverflowMultiple(multiple int64) func(*Selector) {
	return func(s *Selector) {
		s.overflowMultiple = multiple
	}
}

func NewSelector(counter Counter, codec Codec, opts ...func(*Selector)) *Selector {
	s := Selector{
		counter:          counter,
		codec:            codec,
		overflowMultiple: DefOverflowMultiple,
	}

	for _, opt := range opts {
		opt(&s)
	}

	if s.overflowMultiple <= 0 {
		s.overflowMultiple = DefOverflowMultiple
	}

	if s.logger == nil {
		s.logger = zap.L().Named(loggerName)
	}

	return &s
}

// Select returns the user from candidates for role.
//
// If the body of target records a selection for the role, the recorded user
// is returned without incrementing the counter. When the recorded user is
// not in candidates a *ConflictError is returned.
// Otherwise the next user in round-robin order is selected and the selection
// is recorded in the body of target.
// For RoleReviewer the author of target is skipped, this consumes an
// additional position of the counter.
func (s *Selector) Select(ctx context.Context, candidates []string, role Role, target Target) (string, error) {
	if len(candidates) == 0 {
		return "", ErrNoCandidates
	}

	logger := s.logger.With(
		logfields.Role(role.Lower()),
		logfields.Repository(target.RepositoryFullName()),
	)

	body := target.Body()
	if username, found := s.codec.Read(body, role); found {
		if !slices.Contains(candidates, username) {
			logger.Info(
				"user recorded in body is not a candidate",
				logfields.Event("selection_conflict"),
				logfields.Candidate(username),
			)

			return "", &ConflictError{Role: role, Username: username}
		}

		logger.Debug(
			"reusing selection recorded in body",
			logfields.Event("selection_reused"),
			logfields.Candidate(username),
		)
		metrics.SelectionInc(role, selectionSourceRecorded)

		return username, nil
	}

	key := CounterKey(role, target.RepositoryFullName())
	logger = logger.With(logfields.CounterKey(key))

	selected, err := s.next(ctx, key, candidates)
	if err != nil {
		return "", err
	}

	if role.excludesAuthor() && selected == target.Author() {
		logger.Debug(
			"selected user is the author, selecting next candidate",
			logfields.Event("selection_skipped_author"),
			logfields.Candidate(selected),
		)

		selected, err = s.next(ctx, key, candidates)
		if err != nil {
			return "", err
		}
	}

	if err := target.UpdateBody(ctx, s.codec.Write(body, role, selected)); err != nil {
		return "", fmt.Errorf("recording selected %s in body failed: %w", role.Lower(), err)
	}

	logger.Info(
		"selected user in round-robin order",
		logfields.Event("selection_round_robin"),
		logfields.Candidate(selected),
	)
	metrics.SelectionInc(role, selectionSourceRoundRobin)

	return selected, nil
}

// next increments the counter and returns the candidate at the position.
// When the position reaches overflowMultiple*len(candidates) the counter is
// reset to a smaller value with the same remainder.
func (s *Selector) next(ctx context.Context, key string, candidates []string) (string, error) {
	cnt := int64(len(candidates))

	val, err := s.counter.Increment(ctx, key)
	if err != nil {
		return "", fmt.Errorf("incrementing round-robin counter failed: %w", err)
	}

	idx := val - 1
	if idx < 0 {
		return "", errors.New("round-robin counter has a negative value")
	}

	if idx >= s.overflowMultiple*cnt {
		idx %= cnt

		if err := s.counter.Reset(ctx, key, idx+1); err != nil {
			return "", fmt.Errorf("resetting round-robin counter failed: %w", err)
		}

		s.logger.Info(
			"round-robin counter wrapped around",
			logfields.Event("selection_counter_wrapped"),
			logfields.CounterKey(key),
			zap.Int64("counter_value", idx+1),
		)
	}

	return candidates[idx%cnt], nil
}
