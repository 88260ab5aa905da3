package git

import "context"

// Port is the interface that must be implemented by tag listing adapters.
type Port interface {
	// GetTags returns the list of tags of the repository, the most recent first.
	// The prefix is used to parse the semantic version of each tag.
	GetTags(ctx context.Context, prefix string) ([]*Tag, error)
}
