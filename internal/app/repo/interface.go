package repo

import (
	"context"
	"errors"
)

// ErrRefAlreadyExists must be returned (wrapped) by CreateTagRef when the reference already exists.
var ErrRefAlreadyExists = errors.New("reference already exists")

// Port is the interface that must be implemented by repo (hosting platform) adapters.
type Port interface {

	// GetPullRequestLabels returns the names of the labels applied to the given pull request.
	GetPullRequestLabels(ctx context.Context, number int) ([]string, error)

	// GetPullRequestsForCommit returns the pull requests associated with the given commit.
	GetPullRequestsForCommit(ctx context.Context, sha string) ([]*PullRequest, error)

	// GetReleases returns all the releases of the repository (in the platform order).
	// The prefix is used to parse the semantic version of each release tag.
	GetReleases(ctx context.Context, prefix string) ([]*Release, error)

	// GetLatestRelease returns the release flagged as "latest" by the platform
	// (nil without error if there isn't any).
	GetLatestRelease(ctx context.Context, prefix string) (*Release, error)

	// TagExists returns true if a tag with this exact name exists.
	TagExists(ctx context.Context, name string) (bool, error)

	// CreateTagObject creates an annotated tag object pointing at the given commit
	// and returns the SHA of the created object.
	CreateTagObject(ctx context.Context, tag TagObject) (string, error)

	// CreateTagRef creates the refs/tags/<name> reference pointing at the given object.
	CreateTagRef(ctx context.Context, name string, objectSHA string) error

	// GetPullRequestFiles returns the files changed by the given pull request.
	GetPullRequestFiles(ctx context.Context, number int) ([]*ChangedFile, error)

	// AddLabels adds labels to the given pull request.
	AddLabels(ctx context.Context, number int, labels []string) error

	// CreateComment adds a comment to the given pull request.
	CreateComment(ctx context.Context, number int, body string) error
}

// TagObject is the payload of an annotated tag creation.
type TagObject struct {
	Name        string // tag name
	Message     string // tag message
	SHA         string // target commit
	TaggerName  string // optional tagger name
	TaggerEmail string // optional tagger email
}
