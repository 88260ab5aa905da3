package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/fabien-marty/github-pr-label-tagger/internal/app"
	"github.com/fabien-marty/github-pr-label-tagger/internal/app/git"
	"github.com/fabien-marty/github-pr-label-tagger/internal/app/labels"
	"github.com/fabien-marty/github-pr-label-tagger/internal/app/repo"
	"github.com/fabien-marty/github-pr-label-tagger/internal/app/version"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestExitCodeFor(t *testing.T) {
	assert.Equal(t, exitCodeConfiguration, exitCodeFor(fmt.Errorf("%w: foo", app.ErrConfiguration)))
	assert.Equal(t, exitCodeNoVersionLabel, exitCodeFor(labels.ErrNoVersionLabel))
	assert.Equal(t, exitCodeCollaboratorErr, exitCodeFor(fmt.Errorf("%w: foo", app.ErrCollaboratorRead)))
	assert.Equal(t, exitCodeCollision, exitCodeFor(fmt.Errorf("%w: v1.0.0", app.ErrTagAlreadyExists)))
	assert.Equal(t, exitCodeCollision, exitCodeFor(fmt.Errorf("%w: 2.0.0-beta.1 => 2.0.0-alpha.0", version.ErrNotGreater)))
	assert.Equal(t, exitCodePublish, exitCodeFor(&app.PublishError{Phase: app.PhaseTagRef, Err: repo.ErrRefAlreadyExists}))
	assert.Equal(t, exitCodeConfiguration, exitCodeFor(errors.New("foo")))
}

func TestWriteOutputs(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.Nil(t, afero.WriteFile(fs, "/gh/output", []byte("foo=bar\n"), 0o644))
	var stdout bytes.Buffer
	res := &app.Result{Status: app.StatusPublished, Version: "1.3.0-beta.0", Tag: "v1.3.0-beta.0", PreRelease: true}
	err := writeOutputs(fs, &stdout, "/gh/output", resultOutputs(res))
	require.Nil(t, err)
	expected := "version=1.3.0-beta.0\ntag=v1.3.0-beta.0\nprerelease=true\nstatus=published\n"
	assert.Equal(t, expected, stdout.String())
	content, err := afero.ReadFile(fs, "/gh/output")
	require.Nil(t, err)
	assert.Equal(t, "foo=bar\n"+expected, string(content))
	stdout.Reset()
	err = writeOutputs(fs, &stdout, "", resultOutputs(&app.Result{Status: app.StatusSkippedDocs}))
	require.Nil(t, err)
	assert.Equal(t, "version=\ntag=\nprerelease=false\nstatus=skipped-docs\n", stdout.String())
}

func TestLoadFileConfig(t *testing.T) {
	fs := afero.NewMemMapFs()
	content := `
labels:
  major: [breaking, major]
  docs: []
tag-prefix: ""
tag-selection: semver
ignore-releases: true
tagger:
  name: bot
  email: bot@example.com
extension-labels:
  go: golang
`
	require.Nil(t, afero.WriteFile(fs, "/conf.yml", []byte(content), 0o644))
	fc, err := LoadFileConfig(fs, "/conf.yml")
	require.Nil(t, err)
	assert.Equal(t, []string{"breaking", "major"}, fc.Labels.Major)
	assert.NotNil(t, fc.Labels.Docs)
	assert.Equal(t, 0, len(fc.Labels.Docs))
	assert.Nil(t, fc.Labels.Minor)
	require.NotNil(t, fc.TagPrefix)
	assert.Equal(t, "", *fc.TagPrefix)
	assert.Equal(t, "semver", fc.TagSelection)
	require.NotNil(t, fc.IgnoreReleases)
	assert.True(t, *fc.IgnoreReleases)
	assert.Equal(t, "bot", fc.Tagger.Name)
	assert.Equal(t, "golang", fc.ExtensionLabels["go"])
	require.Nil(t, afero.WriteFile(fs, "/bad.yml", []byte("labels: [foo"), 0o644))
	_, err = LoadFileConfig(fs, "/bad.yml")
	assert.NotNil(t, err)
	_, err = LoadFileConfig(fs, "/missing.yml")
	assert.NotNil(t, err)
}

func TestParseExtensionLabels(t *testing.T) {
	res, err := parseExtensionLabels("md=markdown, .go = golang")
	require.Nil(t, err)
	assert.Equal(t, map[string]string{"md": "markdown", "go": "golang"}, res)
	_, err = parseExtensionLabels("md")
	assert.NotNil(t, err)
	_, err = parseExtensionLabels("=foo")
	assert.NotNil(t, err)
}

func runWithFlags(t *testing.T, args []string, fc *FileConfig) app.Config {
	var config app.Config
	a := &cli.App{
		Flags: withCommonFlags(nextTagCliFlags),
		Action: func(cCtx *cli.Context) error {
			config = getAppConfig(cCtx, fc)
			return nil
		},
	}
	require.Nil(t, a.Run(append([]string{"test"}, args...)))
	return config
}

func TestGetAppConfig(t *testing.T) {
	config := runWithFlags(t, []string{}, &FileConfig{})
	assert.Equal(t, []string{"major"}, config.Labels.Major)
	assert.Equal(t, []string{"docs"}, config.Labels.Docs)
	assert.Equal(t, "", config.TagPrefix)
	assert.Equal(t, git.SelectRecent, config.TagSelection)
	assert.Equal(t, repo.ReleaseSelectSemver, config.ReleaseSelection)
	assert.True(t, config.UseReleases)
	assert.False(t, config.DryRun)
	assert.Equal(t, app.DefaultTagMessageTemplate, config.TagMessageTemplate)

	prefix := "release-"
	ignoreReleases := true
	fc := &FileConfig{
		Labels:         LabelsFileConfig{Major: []string{"breaking"}, Minor: []string{"feature"}, Docs: []string{}},
		TagPrefix:      &prefix,
		TagSelection:   "semver",
		IgnoreReleases: &ignoreReleases,
		Tagger:         TaggerFileConfig{Name: "bot"},
	}
	config = runWithFlags(t, []string{"--minor-labels", "feat, enhancement", "--dry-run"}, fc)
	assert.Equal(t, []string{"breaking"}, config.Labels.Major)
	assert.Equal(t, []string{"feat", "enhancement"}, config.Labels.Minor)
	assert.Equal(t, []string{}, config.Labels.Docs)
	assert.Equal(t, "release-", config.TagPrefix)
	assert.Equal(t, git.SelectSemver, config.TagSelection)
	assert.False(t, config.UseReleases)
	assert.True(t, config.DryRun)
	assert.Equal(t, "bot", config.TaggerName)

	config = runWithFlags(t, []string{"--tag-prefix", "v", "--tag-selection", "recent"}, fc)
	assert.Equal(t, "v", config.TagPrefix)
	assert.Equal(t, git.SelectRecent, config.TagSelection)
}

const defaultFakeTags = `[{"name": "v1.2.3", "commit": {"sha": "def"}}]`

func newFakeGithub(t *testing.T, existingTag string, tags string) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/o/r/tags", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, tags)
	})
	mux.HandleFunc("GET /repos/o/r/releases", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[]`)
	})
	mux.HandleFunc("GET /repos/o/r/git/ref/tags/"+existingTag, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"ref": "refs/tags/%s"}`, existingTag)
	})
	mux.HandleFunc("POST /repos/o/r/git/tags", func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected mutating call: %s", r.URL.Path)
		w.WriteHeader(http.StatusInternalServerError)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func nextTagArgs(server *httptest.Server, output string) []string {
	return []string{
		"github-pr-label-tagger", "next-tag",
		"--github-api-url", server.URL,
		"--repo-owner", "o",
		"--repo-name", "r",
		"--sha", "abc",
		"--ref", "refs/heads/main",
		"--labels", "minor,beta",
		"--tag-prefix", "v",
		"--tags-source", "github",
		"--dry-run",
		"--github-output", output,
	}
}

func TestNextTagDryRun(t *testing.T) {
	server := newFakeGithub(t, "v0.0.1", defaultFakeTags)
	output := filepath.Join(t.TempDir(), "output")
	err := NewApp().Run(nextTagArgs(server, output))
	require.Nil(t, err)
	content, err := os.ReadFile(output)
	require.Nil(t, err)
	assert.Equal(t, "version=1.3.0-beta.0\ntag=v1.3.0-beta.0\nprerelease=true\nstatus=skipped-dry-run\n", string(content))
}

func TestNextTagCollision(t *testing.T) {
	server := newFakeGithub(t, "v1.3.0-beta.0", defaultFakeTags)
	output := filepath.Join(t.TempDir(), "output")
	a := NewApp()
	a.ExitErrHandler = func(cCtx *cli.Context, err error) {}
	err := a.Run(nextTagArgs(server, output))
	var exitErr cli.ExitCoder
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, exitCodeCollision, exitErr.ExitCode())
	content, err := os.ReadFile(output)
	require.Nil(t, err)
	assert.Contains(t, string(content), "status=failed\n")
}

func runResolveTagsSource(t *testing.T, args []string, fc *FileConfig) (app.Config, string, error) {
	var config app.Config
	var tagsSource string
	var resolveErr error
	a := &cli.App{
		Flags: withCommonFlags(nextTagCliFlags),
		Action: func(cCtx *cli.Context) error {
			config = getAppConfig(cCtx, fc)
			tagsSource, resolveErr = resolveTagsSource(cCtx, fc, &config)
			return nil
		},
	}
	require.Nil(t, a.Run(append([]string{"test"}, args...)))
	return config, tagsSource, resolveErr
}

func TestResolveTagsSource(t *testing.T) {
	config, source, err := runResolveTagsSource(t, []string{}, &FileConfig{})
	require.Nil(t, err)
	assert.Equal(t, tagsSourceLocal, source)
	assert.Equal(t, git.SelectRecent, config.TagSelection)

	config, source, err = runResolveTagsSource(t, []string{"--tags-source", "github"}, &FileConfig{})
	require.Nil(t, err)
	assert.Equal(t, tagsSourceGithub, source)
	assert.Equal(t, git.SelectSemver, config.TagSelection)

	_, _, err = runResolveTagsSource(t, []string{"--tags-source", "github", "--tag-selection", "recent"}, &FileConfig{})
	assert.NotNil(t, err)
	_, _, err = runResolveTagsSource(t, []string{}, &FileConfig{TagsSource: "github", TagSelection: "recent"})
	assert.NotNil(t, err)

	config, _, err = runResolveTagsSource(t, []string{"--tags-source", "github", "--tag-selection", "semver"}, &FileConfig{})
	require.Nil(t, err)
	assert.Equal(t, git.SelectSemver, config.TagSelection)

	_, _, err = runResolveTagsSource(t, []string{"--tags-source", "foo"}, &FileConfig{})
	assert.NotNil(t, err)
}

func TestNextTagGithubSourceUsesHighestVersion(t *testing.T) {
	// GitHub lists tags by name: v1.9.0 comes before v1.10.0
	tags := `[{"name": "v1.9.0", "commit": {"sha": "def"}}, {"name": "v1.10.0", "commit": {"sha": "ghi"}}]`
	server := newFakeGithub(t, "v0.0.1", tags)
	output := filepath.Join(t.TempDir(), "output")
	err := NewApp().Run(append(nextTagArgs(server, output), "--labels", "patch"))
	require.Nil(t, err)
	content, err := os.ReadFile(output)
	require.Nil(t, err)
	assert.Contains(t, string(content), "tag=v1.10.1\n")
}

func TestNextTagGithubSourceWithRecentSelection(t *testing.T) {
	server := newFakeGithub(t, "v0.0.1", defaultFakeTags)
	a := NewApp()
	a.ExitErrHandler = func(cCtx *cli.Context, err error) {}
	err := a.Run(append(nextTagArgs(server, filepath.Join(t.TempDir(), "output")), "--tag-selection", "recent"))
	var exitErr cli.ExitCoder
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, exitCodeConfiguration, exitErr.ExitCode())
}

func TestRunPrintsTheError(t *testing.T) {
	a := NewApp()
	a.Writer = io.Discard
	a.ErrWriter = io.Discard
	var stderr bytes.Buffer
	code := run(a, []string{"github-pr-label-tagger", "next-tag", "--unknown-flag"}, &stderr)
	assert.Equal(t, exitCodeUsage, code)
	assert.Contains(t, stderr.String(), "bad CLI arguments: ")
	assert.Contains(t, stderr.String(), "unknown-flag")
	assert.NotContains(t, stderr.String(), "err=")
}
