package app

import (
	"fmt"

	"github.com/fabien-marty/github-pr-label-tagger/internal/app/labels"
)

// Status is the terminal status of a run
type Status string

const (
	StatusPublished           Status = "published"
	StatusSkippedDocs         Status = "skipped-docs"
	StatusSkippedNoNewCommits Status = "skipped-no-new-commits"
	StatusSkippedDryRun       Status = "skipped-dry-run"
	StatusFailed              Status = "failed"
)

// IsSkipped returns true for the successful early terminations
func (s Status) IsSkipped() bool {
	return s == StatusSkippedDocs || s == StatusSkippedNoNewCommits || s == StatusSkippedDryRun
}

// RunContext holds the inputs of one run
type RunContext struct {
	RunID             string   // identifier of the run (used in logs, generated if empty)
	SHA               string   // triggering commit
	Ref               string   // triggering branch ref
	PullRequestNumber int      // pull request number (if <= 0, the pull request is found from the commit)
	Labels            []string // if not nil, labels to use (the hosting platform is not queried for labels)
}

// Validate checks that the commit and ref context is set (the returned error wraps ErrConfiguration)
func (rc *RunContext) Validate() error {
	if rc.SHA == "" {
		return fmt.Errorf("%w: the triggering commit sha is not set", ErrConfiguration)
	}
	if rc.Ref == "" {
		return fmt.Errorf("%w: the triggering ref is not set", ErrConfiguration)
	}
	return nil
}

// Result is the output of a run
type Result struct {
	Status         Status                // terminal status
	Reason         string                // failure reason (if Status is failed)
	Classification labels.Classification // classification of the labels
	Baseline       string                // tag name of the baseline (empty if not resolved)
	Version        string                // new version (empty if not computed)
	Tag            string                // new tag name (empty if not computed)
	PreRelease     bool                  // true if the new version is a pre-release
	TagObjectSHA   string                // sha of the created tag object (empty if not created)
}
