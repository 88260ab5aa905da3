package version

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/fabien-marty/github-pr-label-tagger/internal/app/labels"
)

var ErrNoBaseline = errors.New("no baseline version")
var ErrNotAVersionBump = errors.New("the classification doesn't change the version")
var ErrNotGreater = errors.New("the next version is not greater than the baseline")

// Next computes the version following the baseline for the given classification.
//
// The target core version is computed first: the bumped component is incremented
// and the lower ones are reset, except when the baseline is a pre-release of
// exactly that target (in that case the core is kept, e.g. 2.0.0-beta.1 + major => 2.0.0).
//
// For a pre-release classification, the channel is then appended with a counter
// starting at 0. The counter of the baseline is incremented instead when the
// baseline is already a pre-release of the same target and channel.
//
// Build metadata of the baseline is always dropped. ErrNotGreater is returned when
// the result would sort below the baseline (an alpha after a beta of the same target).
func Next(baseline *semver.Version, c labels.Classification) (*semver.Version, error) {
	if baseline == nil {
		return nil, ErrNoBaseline
	}
	if !c.IsVersionBump() {
		return nil, fmt.Errorf("%w: %s", ErrNotAVersionBump, c.String())
	}
	target := targetCore(baseline, c.Bump)
	if !c.IsPreRelease() {
		return target, nil
	}
	pre := string(c.Channel) + ".0"
	if baseline.Prerelease() != "" && sameCore(baseline, target) {
		if next, ok := nextPrerelease(baseline.Prerelease(), c.Channel); ok {
			pre = next
		}
	}
	res := semver.New(target.Major(), target.Minor(), target.Patch(), pre, "")
	if !res.GreaterThan(baseline) {
		return nil, fmt.Errorf("%w: %s => %s", ErrNotGreater, baseline.String(), res.String())
	}
	return res, nil
}

// TargetCore returns the core version (without pre-release) that the given bump
// produces from the baseline.
func TargetCore(baseline *semver.Version, bump labels.Bump) *semver.Version {
	return targetCore(baseline, bump)
}

func targetCore(v *semver.Version, bump labels.Bump) *semver.Version {
	isPre := v.Prerelease() != ""
	switch bump {
	case labels.Major:
		if isPre && v.Minor() == 0 && v.Patch() == 0 {
			return semver.New(v.Major(), 0, 0, "", "")
		}
		return semver.New(v.Major()+1, 0, 0, "", "")
	case labels.Minor:
		if isPre && v.Patch() == 0 {
			return semver.New(v.Major(), v.Minor(), 0, "", "")
		}
		return semver.New(v.Major(), v.Minor()+1, 0, "", "")
	default:
		if isPre {
			return semver.New(v.Major(), v.Minor(), v.Patch(), "", "")
		}
		return semver.New(v.Major(), v.Minor(), v.Patch()+1, "", "")
	}
}

func sameCore(a *semver.Version, b *semver.Version) bool {
	return a.Major() == b.Major() && a.Minor() == b.Minor() && a.Patch() == b.Patch()
}

// nextPrerelease increments the last numeric identifier of a pre-release string
// of the given channel ("beta.3" => "beta.4", "beta" => "beta.0").
// It returns false if the pre-release string belongs to another channel.
func nextPrerelease(prerelease string, channel labels.Channel) (string, bool) {
	ids := strings.Split(prerelease, ".")
	if ids[0] != string(channel) {
		return "", false
	}
	for i := len(ids) - 1; i > 0; i-- {
		n, err := strconv.ParseUint(ids[i], 10, 64)
		if err != nil {
			continue
		}
		ids[i] = strconv.FormatUint(n+1, 10)
		return strings.Join(ids, "."), true
	}
	return strings.Join(append(ids, "0"), "."), true
}
