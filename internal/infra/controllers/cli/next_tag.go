package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/fabien-marty/github-pr-label-tagger/internal/app"
	"github.com/fabien-marty/github-pr-label-tagger/internal/app/git"
	"github.com/fabien-marty/github-pr-label-tagger/internal/app/labels"
	"github.com/fabien-marty/github-pr-label-tagger/internal/app/repo"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v2"
)

const (
	tagsSourceLocal  = "local"
	tagsSourceGithub = "github"
)

var nextTagCliFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "sha",
		Usage:   "Triggering commit sha (default to the local HEAD commit)",
		EnvVars: []string{"GPLT_SHA", "GITHUB_SHA"},
	},
	&cli.StringFlag{
		Name:    "ref",
		Usage:   "Triggering branch ref (default to the local current branch)",
		EnvVars: []string{"GPLT_REF", "GITHUB_REF"},
	},
	&cli.StringFlag{
		Name:    "labels",
		Usage:   "Coma separated list of the pull request labels (if set, labels are not read from GitHub)",
		EnvVars: []string{"GPLT_LABELS"},
	},
	&cli.StringFlag{
		Name:    "major-labels",
		Value:   "major",
		Usage:   "Coma separated list of PR labels to consider as major",
		EnvVars: []string{"GPLT_MAJOR_LABELS"},
	},
	&cli.StringFlag{
		Name:    "minor-labels",
		Value:   "minor",
		Usage:   "Coma separated list of PR labels to consider as minor",
		EnvVars: []string{"GPLT_MINOR_LABELS"},
	},
	&cli.StringFlag{
		Name:    "patch-labels",
		Value:   "patch",
		Usage:   "Coma separated list of PR labels to consider as patch",
		EnvVars: []string{"GPLT_PATCH_LABELS"},
	},
	&cli.StringFlag{
		Name:    "docs-labels",
		Value:   "docs",
		Usage:   "Coma separated list of PR labels to consider as documentation only (no new version); empty to disable",
		EnvVars: []string{"GPLT_DOCS_LABELS"},
	},
	&cli.StringFlag{
		Name:    "beta-labels",
		Value:   "beta",
		Usage:   "Coma separated list of PR labels to consider as beta pre-release; empty to disable",
		EnvVars: []string{"GPLT_BETA_LABELS"},
	},
	&cli.StringFlag{
		Name:    "alpha-labels",
		Value:   "alpha",
		Usage:   "Coma separated list of PR labels to consider as alpha pre-release; empty to disable",
		EnvVars: []string{"GPLT_ALPHA_LABELS"},
	},
	&cli.StringFlag{
		Name:    "tag-prefix",
		Value:   "",
		Usage:   "Prefix of the tag names (before the semantic version), for example: v",
		EnvVars: []string{"GPLT_TAG_PREFIX"},
	},
	&cli.StringFlag{
		Name:    "tag-regex",
		Value:   "",
		Usage:   "Regex to match tags (if empty string (default) => no filtering)",
		EnvVars: []string{"GPLT_TAG_REGEX"},
	},
	&cli.StringFlag{
		Name:    "tags-source",
		Value:   tagsSourceLocal,
		Usage:   "Where to read the tags: local (git log from the triggering commit, topological order) or github (API order)",
		EnvVars: []string{"GPLT_TAGS_SOURCE"},
	},
	&cli.StringFlag{
		Name:    "tag-selection",
		Value:   string(git.SelectRecent),
		Usage:   "How to choose the latest tag when there is no release: recent (local source only, topological order) or semver (highest version, default with the github source)",
		EnvVars: []string{"GPLT_TAG_SELECTION"},
	},
	&cli.StringFlag{
		Name:    "release-selection",
		Value:   string(repo.ReleaseSelectSemver),
		Usage:   "How to choose the latest stable release: semver (highest version) or api (GitHub latest release)",
		EnvVars: []string{"GPLT_RELEASE_SELECTION"},
	},
	&cli.BoolFlag{
		Name:    "ignore-releases",
		Value:   false,
		Usage:   "Ignore releases and use only tags for the baseline",
		EnvVars: []string{"GPLT_IGNORE_RELEASES"},
	},
	&cli.StringFlag{
		Name:    "tag-message-template",
		Value:   app.DefaultTagMessageTemplate,
		Usage:   "Golang template (with sprig functions) of the annotated tag message",
		EnvVars: []string{"GPLT_TAG_MESSAGE_TEMPLATE"},
	},
	&cli.StringFlag{
		Name:    "tagger-name",
		Usage:   "Tagger name (if not set, the token owner is used)",
		EnvVars: []string{"GPLT_TAGGER_NAME"},
	},
	&cli.StringFlag{
		Name:    "tagger-email",
		Usage:   "Tagger email (if not set, the token owner is used)",
		EnvVars: []string{"GPLT_TAGGER_EMAIL"},
	},
}

func labelsFlag(cCtx *cli.Context, name string, fromFile []string) []string {
	if !cCtx.IsSet(name) && fromFile != nil {
		return fromFile
	}
	return labels.SplitLabels(cCtx.String(name))
}

func stringFlag(cCtx *cli.Context, name string, fromFile string) string {
	if !cCtx.IsSet(name) && fromFile != "" {
		return fromFile
	}
	return cCtx.String(name)
}

// getAppConfig builds the application configuration from flags (explicitly set flags win) and from the configuration file
func getAppConfig(cCtx *cli.Context, fc *FileConfig) app.Config {
	config := app.NewDefaultConfig()
	config.Labels = labels.Config{
		Major: labelsFlag(cCtx, "major-labels", fc.Labels.Major),
		Minor: labelsFlag(cCtx, "minor-labels", fc.Labels.Minor),
		Patch: labelsFlag(cCtx, "patch-labels", fc.Labels.Patch),
		Docs:  labelsFlag(cCtx, "docs-labels", fc.Labels.Docs),
		Beta:  labelsFlag(cCtx, "beta-labels", fc.Labels.Beta),
		Alpha: labelsFlag(cCtx, "alpha-labels", fc.Labels.Alpha),
	}
	config.TagPrefix = cCtx.String("tag-prefix")
	if !cCtx.IsSet("tag-prefix") && fc.TagPrefix != nil {
		config.TagPrefix = *fc.TagPrefix
	}
	config.TagRegex = stringFlag(cCtx, "tag-regex", fc.TagRegex)
	config.TagSelection = git.Selection(stringFlag(cCtx, "tag-selection", fc.TagSelection))
	config.ReleaseSelection = repo.ReleaseSelection(stringFlag(cCtx, "release-selection", fc.ReleaseSelection))
	config.UseReleases = !cCtx.Bool("ignore-releases")
	if !cCtx.IsSet("ignore-releases") && fc.IgnoreReleases != nil {
		config.UseReleases = !*fc.IgnoreReleases
	}
	config.DryRun = cCtx.Bool("dry-run")
	config.TagMessageTemplate = stringFlag(cCtx, "tag-message-template", fc.TagMessageTemplate)
	config.TaggerName = stringFlag(cCtx, "tagger-name", fc.Tagger.Name)
	config.TaggerEmail = stringFlag(cCtx, "tagger-email", fc.Tagger.Email)
	return config
}

// resolveTagsSource returns the tags source and adapts the tag selection to it.
// The GitHub API lists tags by name (not by creation), so the recent selection
// is replaced by semver there when not explicitly asked, and rejected otherwise.
func resolveTagsSource(cCtx *cli.Context, fc *FileConfig, config *app.Config) (string, error) {
	tagsSource := stringFlag(cCtx, "tags-source", fc.TagsSource)
	switch tagsSource {
	case tagsSourceLocal:
		return tagsSource, nil
	case tagsSourceGithub:
		if config.TagSelection != git.SelectRecent {
			return tagsSource, nil
		}
		if cCtx.IsSet("tag-selection") || fc.TagSelection != "" {
			return "", fmt.Errorf("the %s tag selection can't be used with the %s tags source (tags are listed by name): use %s", git.SelectRecent, tagsSourceGithub, git.SelectSemver)
		}
		slog.Debug("github tags source => semver tag selection")
		config.TagSelection = git.SelectSemver
		return tagsSource, nil
	default:
		return "", fmt.Errorf("unknown tags source: %s", tagsSource)
	}
}

func nextTagAction(cCtx *cli.Context) error {
	setDefaultLogger(cCtx)
	ctx := cCtx.Context
	fs := afero.NewOsFs()
	fc, err := loadConfigFile(cCtx, fs)
	if err != nil {
		return err
	}
	appConfig := getAppConfig(cCtx, fc)
	gitLocalAdapter := newGitLocalAdapter(cCtx, "")
	rc := app.RunContext{
		SHA:               cCtx.String("sha"),
		Ref:               cCtx.String("ref"),
		PullRequestNumber: cCtx.Int("pr-number"),
	}
	if cCtx.IsSet("labels") {
		rc.Labels = labels.SplitLabels(cCtx.String("labels"))
	}
	if rc.SHA == "" {
		sha, err := gitLocalAdapter.HeadCommit(ctx)
		if err != nil {
			slog.Debug("can't get the local HEAD commit", slog.String("err", err.Error()))
		}
		rc.SHA = sha
	}
	if rc.Ref == "" {
		ref, err := gitLocalAdapter.CurrentRef(ctx)
		if err != nil {
			slog.Debug("can't get the local current ref", slog.String("err", err.Error()))
		}
		rc.Ref = ref
	}
	repoAdapter, err := newRepoAdapter(cCtx, gitLocalAdapter)
	if err != nil {
		return err
	}
	tagsSource, err := resolveTagsSource(cCtx, fc, &appConfig)
	if err != nil {
		return cli.Exit(err.Error(), exitCodeConfiguration)
	}
	var gitAdapter git.Port = repoAdapter
	if tagsSource == tagsSourceLocal {
		gitAdapter = newGitLocalAdapter(cCtx, rc.SHA)
	}
	service := app.NewService(appConfig, repoAdapter, gitAdapter)
	res, runErr := service.Run(ctx, rc)
	err = writeOutputs(fs, os.Stdout, cCtx.String("github-output"), resultOutputs(res))
	if err != nil {
		slog.Warn("can't write the outputs", slog.String("err", err.Error()))
	}
	if runErr != nil {
		return cli.Exit(runErr.Error(), exitCodeFor(runErr))
	}
	return nil
}
