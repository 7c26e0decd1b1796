// Package repocfg loads the hooky configuration of a repository.
//
// The configuration is read from the [tool.hooky] table of the .hooky.toml
// file in the repository, or if it does not exist, from pyproject.toml.
package repocfg

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml"
)

// FileNames are the names of the files that are searched for the
// configuration, in order of preference.
var FileNames = []string{".hooky.toml", "pyproject.toml"}

const tableKey = "tool.hooky"

var (
	ErrInvalidFile   = errors.New("invalid config file")
	ErrNoTable       = errors.New("no [tool.hooky] section found")
	ErrInvalidConfig = errors.New("error validating hooky config")
)

var usernameRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// RepoConfig is the policy for a repository.
// The order of Reviewers and Assignees is the round-robin order.
type RepoConfig struct {
	Reviewers            []string `toml:"reviewers" json:"reviewers"`
	RequestUpdateTrigger string   `toml:"request_update_trigger" default:"please update" json:"request_update_trigger"`
	RequestReviewTrigger string   `toml:"request_review_trigger" default:"please review" json:"request_review_trigger"`
	AwaitingUpdateLabel  string   `toml:"awaiting_update_label" default:"awaiting author revision" json:"awaiting_update_label"`
	AwaitingReviewLabel  string   `toml:"awaiting_review_label" default:"ready for review" json:"awaiting_review_label"`
	NoChangeFile         string   `toml:"no_change_file" default:"skip change file check" json:"no_change_file"`
	RequireChangeFile    bool     `toml:"require_change_file" default:"true" json:"require_change_file"`
	Assignees            []string `toml:"assignees" json:"assignees"`
	UnconfirmedLabel     string   `toml:"unconfirmed_label" default:"unconfirmed" json:"unconfirmed_label"`
}

// Default returns the configuration that applies when a repository does
// not contain a valid configuration.
func Default() *RepoConfig {
	return &RepoConfig{
		Reviewers:            []string{},
		RequestUpdateTrigger: "please update",
		RequestReviewTrigger: "please review",
		AwaitingUpdateLabel:  "awaiting author revision",
		AwaitingReviewLabel:  "ready for review",
		NoChangeFile:         "skip change file check",
		RequireChangeFile:    true,
		Assignees:            []string{},
		UnconfirmedLabel:     "unconfirmed",
	}
}

func (c *RepoConfig) String() string {
	return fmt.Sprintf(
		"reviewers=%q request_update_trigger=%q request_review_trigger=%q "+
			"awaiting_update_label=%q awaiting_review_label=%q no_change_file=%q "+
			"require_change_file=%t assignees=%q unconfirmed_label=%q",
		c.Reviewers, c.RequestUpdateTrigger, c.RequestReviewTrigger,
		c.AwaitingUpdateLabel, c.AwaitingReviewLabel, c.NoChangeFile,
		c.RequireChangeFile, c.Assignees, c.UnconfirmedLabel,
	)
}

// Validate returns an error if a field has an invalid value.
func (c *RepoConfig) Validate() error {
	var errs []error

	for key, val := range map[string]string{
		"request_update_trigger": c.RequestUpdateTrigger,
		"request_review_trigger": c.RequestReviewTrigger,
		"awaiting_update_label":  c.AwaitingUpdateLabel,
		"awaiting_review_label":  c.AwaitingReviewLabel,
		"no_change_file":         c.NoChangeFile,
		"unconfirmed_label":      c.UnconfirmedLabel,
	} {
		if strings.TrimSpace(val) == "" {
			errs = append(errs, fmt.Errorf("%s: must not be empty", key))
		}
	}

	for key, users := range map[string][]string{
		"reviewers": c.Reviewers,
		"assignees": c.Assignees,
	} {
		for _, user := range users {
			if !usernameRe.MatchString(user) {
				errs = append(errs, fmt.Errorf("%s: %q is not a valid github username", key, user))
			}
		}
	}

	return errors.Join(errs...)
}

// Parse parses the content of a configuration file and validates the result.
// The returned error wraps ErrInvalidFile, ErrNoTable or ErrInvalidConfig.
func Parse(data []byte) (*RepoConfig, error) {
	tree, err := toml.LoadBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}

	table, ok := tree.Get(tableKey).(*toml.Tree)
	if !ok {
		if tree.Has(tableKey) {
			return nil, fmt.Errorf("%w: %s is not a table", ErrInvalidConfig, tableKey)
		}

		return nil, ErrNoTable
	}

	var result RepoConfig
	if err := table.Unmarshal(&result); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if result.Reviewers == nil {
		result.Reviewers = []string{}
	}
	if result.Assignees == nil {
		result.Assignees = []string{}
	}

	if err := result.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return &result, nil
}
