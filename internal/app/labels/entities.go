package labels

import (
	"errors"
	"strings"
)

// ErrNoVersionLabel is returned when none of the configured labels is applied
var ErrNoVersionLabel = errors.New("no version label found on the pull-request")

// Bump is the kind of version increment requested by the labels.
type Bump string

const (
	Major Bump = "major"
	Minor Bump = "minor"
	Patch Bump = "patch"
	Docs  Bump = "docs"
	None  Bump = "none"
)

// Channel is the pre-release identifier requested by the labels.
type Channel string

const (
	Beta         Channel = "beta"
	Alpha        Channel = "alpha"
	NoPrerelease Channel = ""
)

// precedence is the evaluation order of bump categories (first match wins)
var precedence = []Bump{Major, Minor, Patch, Docs}

// channelPrecedence is the evaluation order of pre-release channels (first match wins)
var channelPrecedence = []Channel{Beta, Alpha}

// Config holds the label names of each category.
// An empty list means that the category can never match.
type Config struct {
	Major []string // labels for a major bump
	Minor []string // labels for a minor bump
	Patch []string // labels for a patch bump
	Docs  []string // labels for a documentation only change (no bump)
	Beta  []string // labels for a beta pre-release
	Alpha []string // labels for an alpha pre-release
}

// Classification is the result of the label classification.
type Classification struct {
	Bump    Bump
	Channel Channel
}

// IsPreRelease returns true if the classification asks for a pre-release version.
func (c Classification) IsPreRelease() bool {
	return c.Channel != NoPrerelease && c.IsVersionBump()
}

// IsVersionBump returns true if the classification changes the version.
func (c Classification) IsVersionBump() bool {
	return c.Bump == Major || c.Bump == Minor || c.Bump == Patch
}

// ReleaseType returns the classical name of the increment ("major", "premajor", "docs"...).
func (c Classification) ReleaseType() string {
	if c.IsPreRelease() {
		return "pre" + string(c.Bump)
	}
	return string(c.Bump)
}

func (c Classification) String() string {
	if c.IsPreRelease() {
		return c.ReleaseType() + "/" + string(c.Channel)
	}
	return c.ReleaseType()
}

// SplitLabels splits a comma separated list of labels.
// Items are trimmed and empty items are dropped.
func SplitLabels(s string) []string {
	res := []string{}
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		res = append(res, item)
	}
	return res
}
