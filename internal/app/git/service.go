package git

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"slices"

	"github.com/Masterminds/semver/v3"
)

// Selection defines how the "latest" tag is chosen in a list of tags.
type Selection string

const (
	SelectRecent Selection = "recent" // first tag in the adapter order (most recent)
	SelectSemver Selection = "semver" // highest semantic version
)

type Service struct {
	adapter Port
	logger  *slog.Logger
}

func New(adapter Port) *Service {
	return &Service{
		adapter: adapter,
		logger:  slog.With("name", "gitService"),
	}
}

// GetTags returns the list of semantic tags (with the given prefix) in the adapter order
// (the list from the adapter is optionally filtered by the tag-regex value if not empty)
func (s *Service) GetTags(ctx context.Context, prefix string, tagRegex string) ([]*Tag, error) {
	res, err := s.adapter.GetTags(ctx, prefix)
	if err != nil {
		return nil, err
	}
	regex, err := regexp.Compile(tagRegex)
	if err != nil {
		return nil, fmt.Errorf("can't compile the regex %s: %w", tagRegex, err)
	}
	alreadyFound := map[string]bool{}
	res = slices.DeleteFunc(res, func(tag *Tag) bool {
		if tag == nil {
			return true
		}
		if alreadyFound[tag.Name] {
			return true
		}
		alreadyFound[tag.Name] = true
		if !regex.MatchString(tag.Name) {
			s.logger.Debug("tag doesn't match the regex => ignoring", slog.String("name", tag.Name), slog.String("regex", tagRegex))
			return true
		}
		if tag.Semver == nil {
			s.logger.Debug("tag doesn't have a semantic version (with the expected prefix) => ignoring", slog.String("name", tag.Name), slog.String("prefix", prefix))
			return true
		}
		return false
	})
	return res, nil
}

// Latest returns the latest tag of the list according to the selection (nil if the list is empty)
func Latest(tags []*Tag, selection Selection) *Tag {
	if len(tags) == 0 {
		return nil
	}
	if selection == SelectSemver {
		return slices.MaxFunc(tags, compare)
	}
	return tags[0]
}

// LatestStable returns the latest non-prerelease tag of the list according to the selection (nil if there isn't any)
func LatestStable(tags []*Tag, selection Selection) *Tag {
	return Latest(slices.DeleteFunc(slices.Clone(tags), (*Tag).IsPrerelease), selection)
}

// HighestPrereleaseOf returns the pre-release tag with the highest semantic version
// among the pre-releases of the given core version (nil if there isn't any)
func HighestPrereleaseOf(tags []*Tag, core *semver.Version) *Tag {
	var res *Tag
	for _, tag := range tags {
		if !tag.IsPrerelease() {
			continue
		}
		v := tag.Semver
		if v.Major() != core.Major() || v.Minor() != core.Minor() || v.Patch() != core.Patch() {
			continue
		}
		if res == nil || res.LessThan(tag) {
			res = tag
		}
	}
	return res
}

// FindByName returns the tag with the given name (nil if not found)
func FindByName(tags []*Tag, name string) *Tag {
	idx := slices.IndexFunc(tags, func(tag *Tag) bool {
		return tag.Name == name
	})
	if idx < 0 {
		return nil
	}
	return tags[idx]
}

func compare(a, b *Tag) int {
	if a.LessThan(b) {
		return -1
	}
	if b.LessThan(a) {
		return 1
	}
	return 0
}
