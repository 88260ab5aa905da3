package repo

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
)

// ReleaseSelection defines how the latest stable release is chosen.
type ReleaseSelection string

const (
	ReleaseSelectSemver ReleaseSelection = "semver" // highest semantic version among stable releases
	ReleaseSelectAPI    ReleaseSelection = "api"    // release flagged as "latest" by the hosting platform
)

type Service struct {
	adapter Port
	logger  *slog.Logger
}

func New(adapter Port) *Service {
	return &Service{
		adapter: adapter,
		logger:  slog.With("name", "repoService"),
	}
}

// GetLabels returns the labels of the pull request with the given number.
// If number is <= 0, the pull requests associated with the given commit are
// used instead (the first merged one wins, then the first one).
// An empty list is returned (without error) if no pull request is found.
func (s *Service) GetLabels(ctx context.Context, number int, sha string) ([]string, error) {
	if number > 0 {
		labels, err := s.adapter.GetPullRequestLabels(ctx, number)
		if err != nil {
			return nil, fmt.Errorf("can't get the labels of the pull request #%d: %w", number, err)
		}
		return labels, nil
	}
	if sha == "" {
		s.logger.Warn("no pull request number and no commit sha => no labels")
		return []string{}, nil
	}
	prs, err := s.adapter.GetPullRequestsForCommit(ctx, sha)
	if err != nil {
		return nil, fmt.Errorf("can't get the pull requests of the commit %s: %w", sha, err)
	}
	if len(prs) == 0 {
		s.logger.Warn("no pull request found for this commit => no labels", slog.String("sha", sha))
		return []string{}, nil
	}
	pr := prs[0]
	if idx := slices.IndexFunc(prs, (*PullRequest).IsMerged); idx >= 0 {
		pr = prs[idx]
	}
	s.logger.Debug("pull request found for this commit", slog.String("sha", sha), slog.Int("number", pr.Number), slog.Any("labels", pr.Labels))
	return pr.Labels, nil
}

// GetLatestStableRelease returns the latest stable release (non-draft, non-prerelease,
// with a semantic tag name using the given prefix) or nil if there isn't any.
func (s *Service) GetLatestStableRelease(ctx context.Context, prefix string, selection ReleaseSelection) (*Release, error) {
	if selection == ReleaseSelectAPI {
		release, err := s.adapter.GetLatestRelease(ctx, prefix)
		if err != nil {
			return nil, fmt.Errorf("can't get the latest release: %w", err)
		}
		if release == nil || !isUsable(release) {
			s.logger.Debug("no usable latest release")
			return nil, nil
		}
		return release, nil
	}
	releases, err := s.adapter.GetReleases(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("can't get the releases: %w", err)
	}
	var res *Release
	for _, release := range releases {
		if !isUsable(release) {
			s.logger.Debug("release ignored", slog.String("tag", release.TagName), slog.Bool("draft", release.Draft), slog.Bool("prerelease", release.Prerelease))
			continue
		}
		if res == nil || release.Semver.GreaterThan(res.Semver) {
			res = release
		}
	}
	return res, nil
}

func isUsable(release *Release) bool {
	return release.IsStable() && release.Semver != nil && release.Semver.Prerelease() == ""
}
