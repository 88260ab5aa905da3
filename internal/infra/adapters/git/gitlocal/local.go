package gitlocal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/relvacode/iso8601"

	"github.com/fabien-marty/github-pr-label-tagger/internal/app/git"
)

const (
	sep       = "@@@"
	tagPrefix = "tag: "
)

var _ git.Port = &Adapter{}

type AdapterOptions struct {
	LocalGitPath     string
	OriginRemoteName string // default to "origin"
	Ref              string // if set, only tags reachable from this ref are returned
}

type Adapter struct {
	opts   AdapterOptions
	logger *slog.Logger
}

func NewAdapter(opts AdapterOptions) *Adapter {
	if opts.OriginRemoteName == "" {
		opts.OriginRemoteName = "origin"
	}
	return &Adapter{
		opts:   opts,
		logger: slog.With("name", "gitLocalAdapter"),
	}
}

func lastLine(output string) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) == 0 {
		return ""
	}
	return lines[len(lines)-1]
}

func extractGHRepoFromRemoteUrl(remoteUrl string) (owner string, repo string) {
	if strings.HasPrefix(remoteUrl, "git@github.com:") {
		url := strings.TrimSuffix(strings.TrimPrefix(remoteUrl, "git@github.com:"), ".git")
		tmp := strings.Split(url, "/")
		if len(tmp) != 2 {
			return "", ""
		}
		return tmp[0], tmp[1]
	}
	if strings.HasPrefix(remoteUrl, "https://") && strings.Contains(remoteUrl, "github.com/") {
		url := strings.TrimSuffix(strings.TrimPrefix(remoteUrl, "https://"), ".git")
		tmp := strings.Split(url, "/")
		if len(tmp) != 3 {
			return "", ""
		}
		return tmp[1], tmp[2]
	}
	return "", ""
}

func (r *Adapter) executeCmd(ctx context.Context, logger *slog.Logger, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	if r.opts.LocalGitPath != "" && r.opts.LocalGitPath != "." {
		cmd.Dir = r.opts.LocalGitPath
	}
	logger.Debug(fmt.Sprintf("executing command: %s...", cmd.String()))
	output, err := cmd.Output()
	if err != nil {
		var eerr *exec.ExitError
		if errors.As(err, &eerr) {
			logger.Debug(fmt.Sprintf("bad exit code for command: %s", cmd.String()), slog.Int("code", eerr.ExitCode()), slog.String("stdout", string(output)), slog.String("stderr", string(eerr.Stderr)))
			return "", fmt.Errorf("bad exit code (%d) for command: %s: %s", eerr.ExitCode(), cmd.String(), strings.TrimSpace(string(eerr.Stderr)))
		}
		return "", fmt.Errorf("can't execute command: %s: %w", cmd.String(), err)
	}
	return string(output), nil
}

// decode parses the output of the git log command of GetTags
// (one line per commit, several tags can point to the same commit)
func (r *Adapter) decode(output string, prefix string) []*git.Tag {
	res := []*git.Tag{}
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, sep) {
			continue
		}
		parts := strings.Split(strings.TrimPrefix(line, sep), sep)
		if len(parts) != 3 || parts[2] == "" {
			// not tagged commit
			continue
		}
		tagDate, err := iso8601.ParseString(parts[1])
		if err != nil {
			r.logger.Debug("bad iso8601 date parsing => ignoring", slog.String("date", parts[1]), slog.String("err", err.Error()))
			continue
		}
		for _, decoration := range strings.Split(parts[2], ", ") {
			if !strings.HasPrefix(decoration, tagPrefix) {
				continue
			}
			t := git.ParseTag(strings.TrimPrefix(decoration, tagPrefix), parts[0], tagDate, prefix)
			if t == nil {
				continue
			}
			res = append(res, t)
		}
	}
	return res
}

// GetTags returns the tags in topological order (the tag closest to the tip first)
func (r *Adapter) GetTags(ctx context.Context, prefix string) ([]*git.Tag, error) {
	logger := r.logger.With("ref", r.opts.Ref)
	format := fmt.Sprintf("format:%s%%H%s%%cI%s%%D", sep, sep, sep)
	args := []string{"log", "--topo-order", "--decorate-refs=refs/tags/", "--pretty=" + format}
	if r.opts.Ref != "" {
		args = append(args, r.opts.Ref)
	} else {
		args = append(args, "--tags")
	}
	output, err := r.executeCmd(ctx, logger, args...)
	if err != nil {
		return nil, fmt.Errorf("can't get the list of tags from git: %w", err)
	}
	return r.decode(output, prefix), nil
}

// HeadCommit returns the sha of the HEAD commit
func (r *Adapter) HeadCommit(ctx context.Context) (string, error) {
	output, err := r.executeCmd(ctx, r.logger.With("gitOperation", "headCommit"), "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	return lastLine(output), nil
}

// CurrentRef returns the full name of the current branch (refs/heads/...)
// or an empty string in detached mode
func (r *Adapter) CurrentRef(ctx context.Context) (string, error) {
	output, err := r.executeCmd(ctx, r.logger.With("gitOperation", "currentRef"), "rev-parse", "--symbolic-full-name", "HEAD")
	if err != nil {
		return "", err
	}
	ref := lastLine(output)
	if ref == "HEAD" {
		return "", nil
	}
	return ref, nil
}

func (r *Adapter) GuessGHRepo(ctx context.Context) (owner string, repo string) {
	output, err := r.executeCmd(ctx, r.logger.With("gitOperation", "guessRepoOwner"), "remote", "get-url", r.opts.OriginRemoteName)
	if err != nil {
		r.logger.Debug("can't get the remote url", slog.String("err", err.Error()))
		return "", ""
	}
	return extractGHRepoFromRemoteUrl(lastLine(output))
}
