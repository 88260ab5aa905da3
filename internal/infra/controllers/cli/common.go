package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/fabien-marty/github-pr-label-tagger/internal/app"
	"github.com/fabien-marty/github-pr-label-tagger/internal/app/labels"
	"github.com/fabien-marty/github-pr-label-tagger/internal/app/version"
	"github.com/fabien-marty/github-pr-label-tagger/internal/infra/adapters/git/gitlocal"
	repogithub "github.com/fabien-marty/github-pr-label-tagger/internal/infra/adapters/repo/github"
	"github.com/fabien-marty/slog-helpers/pkg/slogc"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v2"
)

const (
	exitCodeConfiguration   = 1
	exitCodeUsage           = 2
	exitCodeNoVersionLabel  = 3
	exitCodeCollaboratorErr = 4
	exitCodeCollision       = 5
	exitCodePublish         = 6
)

const defaultConfigFile = ".github-pr-label-tagger.yml"

var commonCliFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "log-level",
		Value:   "INFO",
		Usage:   "log level (DEBUG, INFO, WARN, ERROR)",
		EnvVars: []string{"LOG_LEVEL"},
	},
	&cli.StringFlag{
		Name:    "log-format",
		Value:   "text-human",
		Usage:   "log format (text-human, text, json, json-gcp)",
		EnvVars: []string{"LOG_FORMAT"},
	},
	&cli.StringFlag{
		Name:    "github-token",
		Usage:   "github token",
		EnvVars: []string{"GITHUB_TOKEN"},
	},
	&cli.StringFlag{
		Name:    "github-api-url",
		Usage:   "github api url (for GitHub Enterprise), default to the public api",
		EnvVars: []string{"GPLT_GITHUB_API_URL"},
	},
	&cli.StringFlag{
		Name:    "repo-owner",
		Usage:   "repository owner (organization); if not set, we are going to try to guess",
		EnvVars: []string{"GPLT_REPO_OWNER"},
	},
	&cli.StringFlag{
		Name:    "repo-name",
		Usage:   "repository name (without owner/organization part); if not set, we are going to try to guess",
		EnvVars: []string{"GPLT_REPO_NAME"},
	},
	&cli.StringFlag{
		Name:    "git-repository-local-path",
		Value:   ".",
		Usage:   "Git repository local path",
		EnvVars: []string{"GPLT_GIT_REPOSITORY_LOCAL_PATH"},
	},
	&cli.StringFlag{
		Name:    "config",
		Value:   defaultConfigFile,
		Usage:   "Path of the optional YAML configuration file (explicit flags override it)",
		EnvVars: []string{"GPLT_CONFIG"},
	},
	&cli.BoolFlag{
		Name:    "dry-run",
		Value:   false,
		Usage:   "Compute everything but don't make any mutating call",
		EnvVars: []string{"GPLT_DRY_RUN"},
	},
	&cli.IntFlag{
		Name:    "pr-number",
		Usage:   "Pull request number (if not set, the pull request associated with the commit is used)",
		EnvVars: []string{"GPLT_PR_NUMBER"},
	},
	&cli.StringFlag{
		Name:    "github-output",
		Usage:   "If set, outputs are also appended to this file (GitHub Actions outputs)",
		EnvVars: []string{"GITHUB_OUTPUT"},
	},
}

func setDefaultLogger(cCtx *cli.Context) {
	logger := slogc.GetLogger(
		slogc.WithLevel(slogc.GetLogLevelFromString(cCtx.String("log-level"))),
		slogc.WithLogFormat(slogc.GetLogFormatFromString(cCtx.String("log-format"))),
	)
	slog.SetDefault(logger)
}

func newGitLocalAdapter(cCtx *cli.Context, ref string) *gitlocal.Adapter {
	return gitlocal.NewAdapter(gitlocal.AdapterOptions{
		LocalGitPath: cCtx.String("git-repository-local-path"),
		Ref:          ref,
	})
}

func newRepoAdapter(cCtx *cli.Context, gitLocalAdapter *gitlocal.Adapter) (*repogithub.Adapter, error) {
	repoOwner, repoName, err := getRepoOwnerAndRepoName(cCtx.Context, cCtx, gitLocalAdapter)
	if err != nil {
		return nil, err
	}
	slog.Debug(fmt.Sprintf("Repository owner: %s, repository name: %s", repoOwner, repoName))
	adapter, err := repogithub.NewAdapter(repoOwner, repoName, repogithub.AdapterOptions{
		Token:   cCtx.String("github-token"),
		BaseURL: cCtx.String("github-api-url"),
	})
	if err != nil {
		return nil, cli.Exit(err.Error(), exitCodeConfiguration)
	}
	return adapter, nil
}

func getRepoOwnerAndRepoName(ctx context.Context, cCtx *cli.Context, gitLocalAdapter *gitlocal.Adapter) (repoOwner string, repoName string, err error) {
	repoOwner = cCtx.String("repo-owner")
	repoName = cCtx.String("repo-name")
	if repoOwner == "" || repoName == "" {
		repoOwner, repoName = guessGHRepoFromEnv()
		if repoOwner == "" || repoName == "" {
			repoOwner, repoName = gitLocalAdapter.GuessGHRepo(ctx)
		}
		if repoOwner == "" || repoName == "" {
			return "", "", cli.Exit("Can't guess the repository owner and name => please provide them as CLI flags", exitCodeConfiguration)
		}
	}
	return repoOwner, repoName, nil
}

func guessGHRepoFromEnv() (owner string, repo string) {
	ghOwner := os.Getenv("GITHUB_REPOSITORY_OWNER")
	ghRepository := os.Getenv("GITHUB_REPOSITORY")
	if ghOwner != "" && strings.HasPrefix(ghRepository, ghOwner+"/") {
		// we are in a GitHub Actions environment
		return ghOwner, ghRepository[len(ghOwner)+1:]
	}
	return "", ""
}

// loadConfigFile loads the YAML configuration file (a missing default file is not an error)
func loadConfigFile(cCtx *cli.Context, fs afero.Fs) (*FileConfig, error) {
	path := cCtx.String("config")
	exists, err := afero.Exists(fs, path)
	if err != nil {
		return nil, cli.Exit(err.Error(), exitCodeConfiguration)
	}
	if !exists {
		if cCtx.IsSet("config") {
			return nil, cli.Exit(fmt.Sprintf("the configuration file %s doesn't exist", path), exitCodeConfiguration)
		}
		return &FileConfig{}, nil
	}
	res, err := LoadFileConfig(fs, path)
	if err != nil {
		return nil, cli.Exit(err.Error(), exitCodeConfiguration)
	}
	slog.Debug("configuration file loaded", slog.String("path", path))
	return res, nil
}

// exitCodeFor returns the exit code corresponding to the class of the given error
func exitCodeFor(err error) int {
	var publishErr *app.PublishError
	switch {
	case errors.As(err, &publishErr):
		return exitCodePublish
	case errors.Is(err, app.ErrTagAlreadyExists), errors.Is(err, version.ErrNotGreater):
		return exitCodeCollision
	case errors.Is(err, app.ErrCollaboratorRead):
		return exitCodeCollaboratorErr
	case errors.Is(err, labels.ErrNoVersionLabel):
		return exitCodeNoVersionLabel
	default:
		return exitCodeConfiguration
	}
}
