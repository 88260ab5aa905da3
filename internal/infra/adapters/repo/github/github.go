package repogithub

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fabien-marty/github-pr-label-tagger/internal/app/git"
	"github.com/fabien-marty/github-pr-label-tagger/internal/app/repo"
	gh "github.com/google/go-github/v70/github"
	"golang.org/x/oauth2"
)

var _ repo.Port = &Adapter{}
var _ git.Port = &Adapter{}

const perPage = 100

type AdapterOptions struct {
	Token   string
	BaseURL string // API base url (GitHub Enterprise or tests), empty means https://api.github.com/
}

type Adapter struct {
	opts   AdapterOptions
	client *gh.Client
	owner  string
	repo   string
	logger *slog.Logger
}

func NewAdapter(owner string, repo string, opts AdapterOptions) (*Adapter, error) {
	var httpClient *http.Client
	if opts.Token != "" {
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: strings.TrimSpace(opts.Token)},
		)
		httpClient = oauth2.NewClient(context.Background(), ts)
	}
	client := gh.NewClient(httpClient)
	if opts.BaseURL != "" {
		baseURL := opts.BaseURL
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("can't parse the base url %s: %w", opts.BaseURL, err)
		}
		client.BaseURL = u
	}
	return &Adapter{
		client: client,
		opts:   opts,
		owner:  owner,
		repo:   repo,
		logger: slog.With("name", "githubAdapter", "owner", owner, "repo", repo),
	}, nil
}

// paginate calls fetch for each page (100 items per page) until there is no next page
func paginate[T any](logger *slog.Logger, what string, fetch func(opts *gh.ListOptions) ([]T, *gh.Response, error)) ([]T, error) {
	opts := &gh.ListOptions{
		Page:    1,
		PerPage: perPage,
	}
	res := []T{}
	for {
		logger := logger.With("page", opts.Page)
		logger.Debug(fmt.Sprintf("fetching %s...", what))
		items, resp, err := fetch(opts)
		if err != nil {
			return nil, err
		}
		res = append(res, items...)
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	logger.Debug(fmt.Sprintf("%s fetched", what), slog.Int("count", len(res)))
	return res, nil
}

func hasStatus(resp *gh.Response, err error, status int) bool {
	if resp != nil && resp.Response != nil && resp.StatusCode == status {
		return true
	}
	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		return ghErr.Response.StatusCode == status
	}
	return false
}

func (r *Adapter) createPullRequestFromGhPr(pr *gh.PullRequest) *repo.PullRequest {
	if pr.Number == nil {
		return nil
	}
	labels := []string{}
	for _, label := range pr.Labels {
		if label.Name == nil {
			continue
		}
		labels = append(labels, *label.Name)
	}
	var mergedAt *time.Time
	if pr.MergedAt != nil {
		mergedAt = pr.MergedAt.GetTime()
	}
	return &repo.PullRequest{
		Number:   pr.GetNumber(),
		Title:    pr.GetTitle(),
		MergedAt: mergedAt,
		Labels:   labels,
		Url:      pr.GetHTMLURL(),
	}
}

func (r *Adapter) createReleaseFromGhRelease(release *gh.RepositoryRelease, prefix string) *repo.Release {
	if release.TagName == nil {
		return nil
	}
	res := &repo.Release{
		TagName:    release.GetTagName(),
		Name:       release.GetName(),
		Draft:      release.GetDraft(),
		Prerelease: release.GetPrerelease(),
	}
	if tag := git.ParseTag(res.TagName, "", time.Time{}, prefix); tag != nil {
		res.Semver = tag.Semver
	}
	return res
}

func (r *Adapter) GetPullRequestLabels(ctx context.Context, number int) ([]string, error) {
	labels, err := paginate(r.logger.With("number", number), "labels", func(opts *gh.ListOptions) ([]*gh.Label, *gh.Response, error) {
		return r.client.Issues.ListLabelsByIssue(ctx, r.owner, r.repo, number, opts)
	})
	if err != nil {
		return nil, err
	}
	res := []string{}
	for _, label := range labels {
		if label.Name == nil {
			continue
		}
		res = append(res, *label.Name)
	}
	return res, nil
}

func (r *Adapter) GetPullRequestsForCommit(ctx context.Context, sha string) ([]*repo.PullRequest, error) {
	prs, err := paginate(r.logger.With("sha", sha), "pull-requests", func(opts *gh.ListOptions) ([]*gh.PullRequest, *gh.Response, error) {
		return r.client.PullRequests.ListPullRequestsWithCommit(ctx, r.owner, r.repo, sha, opts)
	})
	if err != nil {
		return nil, err
	}
	res := []*repo.PullRequest{}
	for _, pr := range prs {
		pro := r.createPullRequestFromGhPr(pr)
		if pro == nil {
			continue
		}
		res = append(res, pro)
	}
	return res, nil
}

func (r *Adapter) GetReleases(ctx context.Context, prefix string) ([]*repo.Release, error) {
	releases, err := paginate(r.logger, "releases", func(opts *gh.ListOptions) ([]*gh.RepositoryRelease, *gh.Response, error) {
		return r.client.Repositories.ListReleases(ctx, r.owner, r.repo, opts)
	})
	if err != nil {
		return nil, err
	}
	res := []*repo.Release{}
	for _, release := range releases {
		rel := r.createReleaseFromGhRelease(release, prefix)
		if rel == nil {
			continue
		}
		res = append(res, rel)
	}
	return res, nil
}

func (r *Adapter) GetLatestRelease(ctx context.Context, prefix string) (*repo.Release, error) {
	release, resp, err := r.client.Repositories.GetLatestRelease(ctx, r.owner, r.repo)
	if hasStatus(resp, err, http.StatusNotFound) {
		r.logger.Debug("no latest release")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r.createReleaseFromGhRelease(release, prefix), nil
}

// GetTags returns the tags of the repository in the API order (by name, not by creation)
// (no creation date is available with this API)
func (r *Adapter) GetTags(ctx context.Context, prefix string) ([]*git.Tag, error) {
	tags, err := paginate(r.logger, "tags", func(opts *gh.ListOptions) ([]*gh.RepositoryTag, *gh.Response, error) {
		return r.client.Repositories.ListTags(ctx, r.owner, r.repo, opts)
	})
	if err != nil {
		return nil, err
	}
	res := []*git.Tag{}
	for _, tag := range tags {
		t := git.ParseTag(tag.GetName(), tag.GetCommit().GetSHA(), time.Time{}, prefix)
		if t == nil {
			continue
		}
		res = append(res, t)
	}
	return res, nil
}

func (r *Adapter) TagExists(ctx context.Context, name string) (bool, error) {
	_, resp, err := r.client.Git.GetRef(ctx, r.owner, r.repo, "tags/"+name)
	if hasStatus(resp, err, http.StatusNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *Adapter) CreateTagObject(ctx context.Context, tag repo.TagObject) (string, error) {
	t := &gh.Tag{
		Tag:     gh.Ptr(tag.Name),
		Message: gh.Ptr(tag.Message),
		Object: &gh.GitObject{
			Type: gh.Ptr("commit"),
			SHA:  gh.Ptr(tag.SHA),
		},
	}
	if tag.TaggerName != "" && tag.TaggerEmail != "" {
		t.Tagger = &gh.CommitAuthor{
			Name:  gh.Ptr(tag.TaggerName),
			Email: gh.Ptr(tag.TaggerEmail),
			Date:  &gh.Timestamp{Time: time.Now()},
		}
	}
	created, _, err := r.client.Git.CreateTag(ctx, r.owner, r.repo, t)
	if err != nil {
		return "", err
	}
	if created.GetSHA() == "" {
		return "", fmt.Errorf("no sha returned for the tag object %s", tag.Name)
	}
	r.logger.Debug("tag object created", slog.String("tag", tag.Name), slog.String("sha", created.GetSHA()))
	return created.GetSHA(), nil
}

func (r *Adapter) CreateTagRef(ctx context.Context, name string, objectSHA string) error {
	_, resp, err := r.client.Git.CreateRef(ctx, r.owner, r.repo, &gh.Reference{
		Ref: gh.Ptr("refs/tags/" + name),
		Object: &gh.GitObject{
			SHA: gh.Ptr(objectSHA),
		},
	})
	if err != nil && hasStatus(resp, err, http.StatusUnprocessableEntity) && strings.Contains(strings.ToLower(err.Error()), "already exists") {
		return fmt.Errorf("%w: refs/tags/%s: %w", repo.ErrRefAlreadyExists, name, err)
	}
	return err
}

func (r *Adapter) GetPullRequestFiles(ctx context.Context, number int) ([]*repo.ChangedFile, error) {
	files, err := paginate(r.logger.With("number", number), "files", func(opts *gh.ListOptions) ([]*gh.CommitFile, *gh.Response, error) {
		return r.client.PullRequests.ListFiles(ctx, r.owner, r.repo, number, opts)
	})
	if err != nil {
		return nil, err
	}
	res := []*repo.ChangedFile{}
	for _, f := range files {
		res = append(res, &repo.ChangedFile{
			Filename:  f.GetFilename(),
			Additions: f.GetAdditions(),
			Deletions: f.GetDeletions(),
			Changes:   f.GetChanges(),
		})
	}
	return res, nil
}

func (r *Adapter) AddLabels(ctx context.Context, number int, labels []string) error {
	_, _, err := r.client.Issues.AddLabelsToIssue(ctx, r.owner, r.repo, number, labels)
	return err
}

func (r *Adapter) CreateComment(ctx context.Context, number int, body string) error {
	_, _, err := r.client.Issues.CreateComment(ctx, r.owner, r.repo, number, &gh.IssueComment{
		Body: gh.Ptr(body),
	})
	return err
}
