package git

import (
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
)

// Tag represents a git tag with its name, target commit, creation time and semantic version.
type Tag struct {
	Name   string          // tag name (without modification)
	SHA    string          // commit SHA the tag points to (empty if unknown)
	Time   time.Time       // creation time of the tag (zero if unknown)
	Semver *semver.Version // semver version read from tag name (nil if the tag name is not in the expected format)
	Prefix string          // Prefix read before the semver version
}

// ParseTag creates a new Tag instance with the given name, commit and date.
// The prefix is removed from the name before parsing the semantic version:
// if the name doesn't start with the prefix or if the rest is not a strict
// semantic version, the Semver field of the returned Tag will be nil.
func ParseTag(name string, sha string, date time.Time, prefix string) *Tag {
	if name == "" {
		return nil
	}
	tag := &Tag{
		Name:   name,
		SHA:    sha,
		Time:   date,
		Prefix: prefix,
	}
	if !strings.HasPrefix(name, prefix) {
		return tag
	}
	version, err := semver.StrictNewVersion(strings.TrimPrefix(name, prefix))
	if err == nil {
		tag.Semver = version
	}
	return tag
}

// ZeroTag returns the tag used as baseline when the repository has no tag at all.
// It is not bound to any commit.
func ZeroTag(prefix string) *Tag {
	return ParseTag(prefix+"0.0.0", "", time.Unix(0, 0), prefix)
}

// IsPrerelease returns true if the tag is a semantic pre-release.
func (t *Tag) IsPrerelease() bool {
	return t.Semver != nil && t.Semver.Prerelease() != ""
}

// LessThan compares the current Tag instance with another Tag instance and returns true if the current Tag is less than the other Tag.
// It compares the semantic versions of the tags and if they are equal, it compares the creation time of the tags.
func (t1 *Tag) LessThan(t2 *Tag) bool {
	if t1.Semver == nil {
		return true
	}
	if t2.Semver == nil {
		return false
	}
	if t1.Semver.Equal(t2.Semver) {
		return t1.Time.Before(t2.Time)
	}
	return t1.Semver.LessThan(t2.Semver)
}

// NewName returns the new name for the tag based on the provided new version
// (the prefix of the current tag is kept).
func (t *Tag) NewName(newVersion *semver.Version) string {
	return t.Prefix + newVersion.String()
}
