package app

import (
	"errors"
	"fmt"
)

// ErrConfiguration is returned when the configuration or the run context is invalid (no stage is executed)
var ErrConfiguration = errors.New("configuration error")

// ErrCollaboratorRead is returned when a read call (labels, tags, releases) to the hosting platform fails
var ErrCollaboratorRead = errors.New("collaborator read error")

// ErrTagAlreadyExists is returned when the computed tag already exists
var ErrTagAlreadyExists = errors.New("tag already exists")

// PublishPhase is the mutating step during which a publish error occurred
type PublishPhase string

const (
	PhaseTagObject PublishPhase = "tag-object"
	PhaseTagRef    PublishPhase = "tag-ref"
)

// PublishError is returned when the tag object or the tag reference creation fails.
//
// When TagObjectCreated is true, an orphan tag object (TagObjectSHA) exists on the
// hosting platform without any reference: it must be cleaned up manually.
type PublishError struct {
	Phase            PublishPhase
	TagName          string
	TagObjectCreated bool
	TagObjectSHA     string
	Err              error
}

func (e *PublishError) Error() string {
	if e.TagObjectCreated {
		return fmt.Sprintf("can't publish the tag %s (phase: %s, orphan tag object: %s): %s", e.TagName, e.Phase, e.TagObjectSHA, e.Err)
	}
	return fmt.Sprintf("can't publish the tag %s (phase: %s, nothing created): %s", e.TagName, e.Phase, e.Err)
}

func (e *PublishError) Unwrap() error {
	return e.Err
}
