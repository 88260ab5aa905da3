package labels

import (
	"log/slog"
	"slices"
)

// names returns the configured label names of the given category
func (c *Config) names(bump Bump) []string {
	switch bump {
	case Major:
		return c.Major
	case Minor:
		return c.Minor
	case Patch:
		return c.Patch
	case Docs:
		return c.Docs
	}
	return nil
}

func (c *Config) channelNames(channel Channel) []string {
	switch channel {
	case Beta:
		return c.Beta
	case Alpha:
		return c.Alpha
	}
	return nil
}

// hasOneOfTheseLabels returns true if at least one of the given labels is applied
func hasOneOfTheseLabels(applied []string, labels []string) bool {
	for _, label := range labels {
		if slices.Contains(applied, label) {
			return true
		}
	}
	return false
}

// Classify maps the labels applied to a pull-request to a bump category
// and an optional pre-release channel.
//
// Categories are tested in a fixed order (major, minor, patch, docs):
// the first one with a matching label wins and lower ones are ignored.
// For major/minor/patch, the beta then the alpha labels are tested.
// If no configured label is applied, ErrNoVersionLabel is returned.
func (c *Config) Classify(applied []string) (Classification, error) {
	logger := slog.Default().With(slog.Any("labels", applied))
	for _, bump := range precedence {
		if !hasOneOfTheseLabels(applied, c.names(bump)) {
			continue
		}
		res := Classification{Bump: bump, Channel: NoPrerelease}
		if !res.IsVersionBump() {
			logger.Debug("documentation label found", slog.String("bump", string(bump)))
			return res, nil
		}
		for _, channel := range channelPrecedence {
			if hasOneOfTheseLabels(applied, c.channelNames(channel)) {
				res.Channel = channel
				break
			}
		}
		logger.Debug("version label found", slog.String("bump", string(bump)), slog.String("channel", string(res.Channel)))
		return res, nil
	}
	return Classification{Bump: None, Channel: NoPrerelease}, ErrNoVersionLabel
}
