package hooky

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/simplesurance/hooky/internal/githubclt"
	"github.com/simplesurance/hooky/internal/logfields"
	"github.com/simplesurance/hooky/internal/repocfg"
)

const changeFilePrefix = "[Check change file] "

// ChangeFileStatusContext is the context of the commit status that reports
// the result of the change file check.
const ChangeFileStatusContext = "change-file-checks"

const (
	statusSuccess = "success"
	statusError   = "error"
)

var changeFileActions = map[string]struct{}{
	"opened":      {},
	"edited":      {},
	"reopened":    {},
	"synchronize": {},
}

var changeFileRe = regexp.MustCompile(`^changes/(\d+)-(.+)\.md$`)

const closingKeywords = `(close|closes|closed|fix|fixes|fixed|resolve|resolves|resolved)`

// closedIssueRe returns a regular expression that matches a reference
// closing the issue with the given ID.
func closedIssueRe(id string) *regexp.Regexp {
	return regexp.MustCompile(
		closingKeywords + `\s+(#|https://github\.com/[^/]+/[^/]+/issues/)` + regexp.QuoteMeta(id) + `\b`,
	)
}

func changeFilePrecheck(ev *PullRequestUpdateEvent) *Result {
	if ev.State != "open" {
		return ignored(changeFilePrefix, "Pull Request is %s, not open", ev.State)
	}

	if _, exists := changeFileActions[ev.Action]; !exists {
		return ignored(changeFilePrefix, "file change not checked on %q", ev.Action)
	}

	if strings.HasSuffix(ev.Author, "[bot]") {
		return ignored(changeFilePrefix, "Pull Request author is a bot")
	}

	return nil
}

func (p *Processor) checkChangeFile(ctx context.Context, logger *zap.Logger, clt GithubClient, ev *PullRequestUpdateEvent) (*Result, error) {
	cfg, err := p.configs.Load(ctx, clt, &repocfg.Target{
		Owner: ev.Repo.Owner,
		Repo:  ev.Repo.Name,
		Ref:   ev.BaseRef,
	})
	if err != nil {
		return nil, fmt.Errorf("loading repository config failed: %w", err)
	}

	if !cfg.RequireChangeFile {
		return ignored(changeFilePrefix, "change file not required"), nil
	}

	body := strings.ToLower(ev.Body)
	if strings.Contains(body, strings.ToLower(cfg.NoChangeFile)) {
		return p.setStatus(ctx, logger, clt, ev, statusSuccess, fmt.Sprintf("Found %q in Pull Request body", cfg.NoChangeFile))
	}

	files, err := clt.AddedFiles(ctx, ev.Repo.Owner, ev.Repo.Name, ev.Number)
	if err != nil {
		return nil, fmt.Errorf("retrieving files of pull request failed: %w", err)
	}

	for _, f := range files {
		if match := changeFileRe.FindStringSubmatch(f); match != nil {
			state, desc := checkChangeFileContent(match, body, ev)
			return p.setStatus(ctx, logger, clt, ev, state, desc)
		}
	}

	return p.setStatus(ctx, logger, clt, ev, statusError, "No change file found")
}

// checkChangeFileContent validates the name of a change file.
// match is the submatch of changeFileRe, body the lower case pull request
// body.
func checkChangeFileContent(match []string, body string, ev *PullRequestUpdateEvent) (state, description string) {
	path, id, fileAuthor := match[0], match[1], match[2]

	if !strings.EqualFold(fileAuthor, ev.Author) {
		return statusError, fmt.Sprintf("File %q has wrong author, expected %q", path, ev.Author)
	}

	if nr, err := strconv.Atoi(id); err == nil && nr == ev.Number {
		return statusSuccess, fmt.Sprintf("Change file ID #%s matches the Pull Request", id)
	}

	if closedIssueRe(id).MatchString(body) {
		return statusSuccess, fmt.Sprintf("Change file ID #%s matches Issue closed by the Pull Request", id)
	}

	return statusError, "Change file ID does not match Pull Request or closed Issue"
}

// setStatus creates the commit status on the latest commit of the pull
// request.
func (p *Processor) setStatus(
	ctx context.Context,
	logger *zap.Logger,
	clt GithubClient,
	ev *PullRequestUpdateEvent,
	state, description string,
) (*Result, error) {
	sha, err := clt.LatestCommitSHA(ctx, ev.Repo.Owner, ev.Repo.Name, ev.Number)
	if err != nil {
		return nil, fmt.Errorf("retrieving latest commit of pull request failed: %w", err)
	}

	err = clt.CreateStatus(ctx, ev.Repo.Owner, ev.Repo.Name, sha, &githubclt.CommitStatus{
		State:       state,
		Description: description,
		TargetURL:   p.statusTargetURL,
		Context:     ChangeFileStatusContext,
	})
	if err != nil {
		return nil, fmt.Errorf("creating commit status failed: %w", err)
	}

	logger.Debug("commit status created",
		logfields.Event("commit_status_created"),
		logfields.Commit(sha),
		zap.String("state", state),
	)

	return acted(changeFilePrefix, "status set to %q with description %q", state, description), nil
}
