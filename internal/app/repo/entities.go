package repo

import (
	"time"

	"github.com/Masterminds/semver/v3"
)

// PullRequest represents a pull request.
type PullRequest struct {
	Number   int        // pull request number
	Title    string     // pull request title
	MergedAt *time.Time // pull request merge date (nil if not merged)
	Labels   []string   // pull request labels
	Url      string     // pull request url
}

// IsMerged returns true if the pull request is merged.
func (pr *PullRequest) IsMerged() bool {
	return pr.MergedAt != nil
}

// Release represents a release of the hosting platform (a richer wrapper around a tag).
type Release struct {
	TagName    string          // name of the tag of the release
	Name       string          // release title
	Draft      bool            // draft release
	Prerelease bool            // pre-release flag
	Semver     *semver.Version // semver version read from tag name (nil if the tag name is not in the expected format)
}

// IsStable returns true if the release is neither a draft nor a pre-release.
func (r *Release) IsStable() bool {
	return !r.Draft && !r.Prerelease
}

// ChangedFile represents a file modified by a pull request.
type ChangedFile struct {
	Filename  string
	Additions int
	Deletions int
	Changes   int
}
