package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fabien-marty/github-pr-label-tagger/internal/app/git"
	"github.com/fabien-marty/github-pr-label-tagger/internal/app/labels"
	"github.com/fabien-marty/github-pr-label-tagger/internal/app/repo"
	"github.com/fabien-marty/github-pr-label-tagger/internal/app/version"
	"github.com/google/uuid"
)

// Service is the main application service
type Service struct {
	config      Config
	repoAdapter repo.Port
	repoService *repo.Service
	gitService  *git.Service
	logger      *slog.Logger
}

// NewService creates a new Service
func NewService(config Config, repoAdapter repo.Port, gitAdapter git.Port) *Service {
	return &Service{
		config:      config,
		repoAdapter: repoAdapter,
		repoService: repo.New(repoAdapter),
		gitService:  git.New(gitAdapter),
		logger:      slog.With("name", "appService"),
	}
}

// Run executes one run: classify the labels, resolve the baseline, compute the
// next version, check it doesn't exist yet and publish the new tag.
//
// The returned Result is never nil. When the returned error is not nil, the
// status of the result is StatusFailed.
func (s *Service) Run(ctx context.Context, rc RunContext) (*Result, error) {
	if rc.RunID == "" {
		rc.RunID = uuid.NewString()
	}
	logger := s.logger.With(slog.String("runId", rc.RunID))
	res := &Result{}
	fail := func(err error) (*Result, error) {
		res.Status = StatusFailed
		res.Reason = err.Error()
		logger.Warn("run failed", slog.String("reason", res.Reason))
		return res, err
	}
	if err := s.config.Validate(); err != nil {
		return fail(err)
	}
	if err := rc.Validate(); err != nil {
		return fail(err)
	}
	logger = logger.With(slog.String("sha", rc.SHA), slog.String("ref", rc.Ref))

	// Classified
	classification, err := s.classify(ctx, rc)
	res.Classification = classification
	if err != nil {
		return fail(err)
	}
	logger.Debug("labels classified", slog.String("classification", classification.String()))
	if classification.Bump == labels.Docs {
		logger.Info("documentation only change => no new version")
		res.Status = StatusSkippedDocs
		return res, nil
	}

	// BaselineResolved
	baseline, noNewCommits, err := s.resolveBaseline(ctx, logger, classification, rc)
	if err != nil {
		return fail(err)
	}
	res.Baseline = baseline.Name
	if noNewCommits {
		logger.Info("no new commit since the baseline => no new version", slog.String("baseline", baseline.Name))
		res.Status = StatusSkippedNoNewCommits
		return res, nil
	}

	// VersionComputed
	next, err := version.Next(baseline.Semver, classification)
	if err != nil {
		return fail(err)
	}
	res.Version = next.String()
	res.Tag = baseline.NewName(next)
	res.PreRelease = classification.IsPreRelease()
	logger = logger.With(slog.String("baseline", baseline.Name), slog.String("tag", res.Tag))
	logger.Debug("new version computed")

	// CollisionChecked
	if err := s.guard(ctx, res.Tag); err != nil {
		return fail(err)
	}
	if s.config.DryRun {
		logger.Info("dry-run mode => the tag is not published")
		res.Status = StatusSkippedDryRun
		return res, nil
	}

	// Published
	message, err := s.renderTagMessage(MessageData{
		TagName:           res.Tag,
		Version:           res.Version,
		PreviousTag:       baseline.Name,
		PreRelease:        res.PreRelease,
		ReleaseType:       classification.ReleaseType(),
		Channel:           string(classification.Channel),
		SHA:               rc.SHA,
		Ref:               rc.Ref,
		PullRequestNumber: rc.PullRequestNumber,
	})
	if err != nil {
		return fail(err)
	}
	objectSHA, err := s.publish(ctx, res.Tag, message, rc.SHA)
	res.TagObjectSHA = objectSHA
	if err != nil {
		return fail(err)
	}
	logger.Info("tag published", slog.String("tagObject", objectSHA))
	res.Status = StatusPublished
	return res, nil
}

func (s *Service) classify(ctx context.Context, rc RunContext) (labels.Classification, error) {
	applied := rc.Labels
	if applied == nil {
		var err error
		applied, err = s.repoService.GetLabels(ctx, rc.PullRequestNumber, rc.SHA)
		if err != nil {
			return labels.Classification{Bump: labels.None}, fmt.Errorf("%w: %w", ErrCollaboratorRead, err)
		}
	}
	return s.config.Labels.Classify(applied)
}

// resolveBaseline returns the baseline tag and true if the triggering commit is already tagged by it.
//
// The latest stable release is preferred (if UseReleases is set), then the latest
// stable tag, then the zero version. For a pre-release classification, the highest
// pre-release tag of the version targeted from this stable baseline is used instead
// (if any) so that pre-release counters continue.
func (s *Service) resolveBaseline(ctx context.Context, logger *slog.Logger, c labels.Classification, rc RunContext) (*git.Tag, bool, error) {
	tags, err := s.gitService.GetTags(ctx, s.config.TagPrefix, s.config.TagRegex)
	if err != nil {
		return nil, false, fmt.Errorf("%w: can't get the tags: %w", ErrCollaboratorRead, err)
	}
	logger.Debug(fmt.Sprintf("%d semantic tags found", len(tags)))
	var baseline *git.Tag
	if s.config.UseReleases {
		release, err := s.repoService.GetLatestStableRelease(ctx, s.config.TagPrefix, s.config.ReleaseSelection)
		if err != nil {
			return nil, false, fmt.Errorf("%w: %w", ErrCollaboratorRead, err)
		}
		if release != nil {
			logger.Debug("latest stable release found", slog.String("tag", release.TagName))
			baseline = git.FindByName(tags, release.TagName)
			if baseline == nil {
				logger.Debug("the tag of the release is not in the tag list => its commit is unknown and the no-new-commits check is skipped", slog.String("tag", release.TagName))
				baseline = &git.Tag{Name: release.TagName, Semver: release.Semver, Prefix: s.config.TagPrefix}
			}
		}
	}
	if baseline == nil {
		baseline = git.LatestStable(tags, s.config.TagSelection)
	}
	if baseline == nil {
		logger.Warn("no release and no tag found => let's use the zero version")
		baseline = git.ZeroTag(s.config.TagPrefix)
	}
	if baseline.SHA != "" && baseline.SHA == rc.SHA {
		return baseline, true, nil
	}
	if c.IsPreRelease() {
		target := version.TargetCore(baseline.Semver, c.Bump)
		if pre := git.HighestPrereleaseOf(tags, target); pre != nil {
			logger.Debug("pre-release tag found for the target version", slog.String("tag", pre.Name), slog.String("stable", baseline.Name), slog.String("target", target.String()))
			baseline = pre
			if baseline.SHA != "" && baseline.SHA == rc.SHA {
				return baseline, true, nil
			}
		}
	}
	logger.Debug("baseline resolved", slog.String("baseline", baseline.Name), slog.String("time", baseline.Time.Format(time.RFC3339)))
	return baseline, false, nil
}

// guard fails with ErrTagAlreadyExists if the tag already exists.
//
// The check and the publish are not atomic: two concurrent runs can both pass it.
// The loser then fails in the tag-ref phase (the platform rejects the existing ref).
func (s *Service) guard(ctx context.Context, tagName string) error {
	exists, err := s.repoAdapter.TagExists(ctx, tagName)
	if err != nil {
		return fmt.Errorf("%w: can't check if the tag %s exists: %w", ErrCollaboratorRead, tagName, err)
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrTagAlreadyExists, tagName)
	}
	return nil
}

// publish creates the annotated tag object then the reference pointing to it.
// Nothing is retried and nothing is rolled back: a failure is returned as a *PublishError.
func (s *Service) publish(ctx context.Context, tagName string, message string, sha string) (string, error) {
	objectSHA, err := s.repoAdapter.CreateTagObject(ctx, repo.TagObject{
		Name:        tagName,
		Message:     message,
		SHA:         sha,
		TaggerName:  s.config.TaggerName,
		TaggerEmail: s.config.TaggerEmail,
	})
	if err != nil {
		return "", &PublishError{Phase: PhaseTagObject, TagName: tagName, Err: err}
	}
	err = s.repoAdapter.CreateTagRef(ctx, tagName, objectSHA)
	if err != nil {
		if errors.Is(err, repo.ErrRefAlreadyExists) {
			s.logger.Warn("the tag reference has been created by a concurrent run", slog.String("tag", tagName))
		}
		return objectSHA, &PublishError{Phase: PhaseTagRef, TagName: tagName, TagObjectCreated: true, TagObjectSHA: objectSHA, Err: err}
	}
	return objectSHA, nil
}
