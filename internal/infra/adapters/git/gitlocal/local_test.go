package gitlocal

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var output = `
@@@5555555555555555555555555555555555555555@@@2024-06-21T07:31:02+00:00@@@
@@@1111111111111111111111111111111111111111@@@2024-06-20T07:31:02+00:00@@@tag: v1.9.3
@@@2222222222222222222222222222222222222222@@@2024-06-06T13:57:29+00:00@@@tag: v1.9.2
@@@3333333333333333333333333333333333333333@@@2024-01-04T14:26:16+01:00@@@tag: v0.3.5, tag: v0.3.4, tag: foo
@@@4444444444444444444444444444444444444444@@@not-a-date@@@tag: v0.3.1
@@@6666666666666666666666666666666666666666@@@2024-01-04T12:00:59+01:00
garbage
`

func TestDecode(t *testing.T) {
	adapter := NewAdapter(AdapterOptions{})
	tags := adapter.decode(output, "v")
	require.Equal(t, 5, len(tags))
	assert.Equal(t, "v1.9.3", tags[0].Name)
	assert.Equal(t, "1111111111111111111111111111111111111111", tags[0].SHA)
	assert.Equal(t, "2024-06-20T07:31:02Z", tags[0].Time.Format(time.RFC3339))
	assert.Equal(t, "v1.9.2", tags[1].Name)
	assert.Equal(t, "v0.3.5", tags[2].Name)
	assert.Equal(t, "2024-01-04T14:26:16+01:00", tags[2].Time.Format(time.RFC3339))
	assert.Equal(t, "v0.3.4", tags[3].Name)
	assert.Equal(t, "3333333333333333333333333333333333333333", tags[3].SHA)
	assert.Equal(t, "foo", tags[4].Name)
	assert.Nil(t, tags[4].Semver)
}

func TestExtractGHRepoFromRemoteUrl(t *testing.T) {
	owner, repo := extractGHRepoFromRemoteUrl("git@github.com:fabien-marty/github-pr-label-tagger.git")
	assert.Equal(t, "fabien-marty", owner)
	assert.Equal(t, "github-pr-label-tagger", repo)
	owner, repo = extractGHRepoFromRemoteUrl("git@github.com:fabien-martygithub-pr-label-tagger.git")
	assert.Equal(t, "", owner)
	assert.Equal(t, "", repo)
	owner, repo = extractGHRepoFromRemoteUrl("foobar")
	assert.Equal(t, "", owner)
	assert.Equal(t, "", repo)
	owner, repo = extractGHRepoFromRemoteUrl("https://github.com/fabien-marty/github-pr-label-tagger.git")
	assert.Equal(t, "fabien-marty", owner)
	assert.Equal(t, "github-pr-label-tagger", repo)
	owner, repo = extractGHRepoFromRemoteUrl("https://github.com/fabien-marty/github-pr-label-tagger")
	assert.Equal(t, "fabien-marty", owner)
	assert.Equal(t, "github-pr-label-tagger", repo)
	owner, repo = extractGHRepoFromRemoteUrl("https://foo@github.com/fabien-marty/github-pr-label-tagger.git")
	assert.Equal(t, "fabien-marty", owner)
	assert.Equal(t, "github-pr-label-tagger", repo)
}

func TestLastLine(t *testing.T) {
	assert.Equal(t, "c", lastLine("a\nb\nc"))
	assert.Equal(t, "c", lastLine("  c "))
	assert.Equal(t, "", lastLine(""))
}

func runGit(t *testing.T, dir string, args ...string) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.Nil(t, err, string(out))
}

func TestWithARealRepository(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not found")
	}
	dir := t.TempDir()
	runGit(t, dir, "init", "-q")
	runGit(t, dir, "-c", "user.name=test", "-c", "user.email=test@example.com", "commit", "-q", "--allow-empty", "-m", "first")
	runGit(t, dir, "-c", "user.name=test", "-c", "user.email=test@example.com", "tag", "-a", "-m", "v1.0.0", "v1.0.0")
	runGit(t, dir, "-c", "user.name=test", "-c", "user.email=test@example.com", "commit", "-q", "--allow-empty", "-m", "second")
	runGit(t, dir, "tag", "v1.1.0-beta.0")
	adapter := NewAdapter(AdapterOptions{LocalGitPath: dir, Ref: "HEAD"})
	ctx := context.Background()
	head, err := adapter.HeadCommit(ctx)
	require.Nil(t, err)
	assert.Equal(t, 40, len(head))
	tags, err := adapter.GetTags(ctx, "v")
	require.Nil(t, err)
	require.Equal(t, 2, len(tags))
	assert.Equal(t, "v1.1.0-beta.0", tags[0].Name)
	assert.Equal(t, head, tags[0].SHA)
	assert.Equal(t, "v1.0.0", tags[1].Name)
	assert.NotEqual(t, head, tags[1].SHA)
	ref, err := adapter.CurrentRef(ctx)
	require.Nil(t, err)
	assert.Contains(t, ref, "refs/heads/")
	owner, repo := adapter.GuessGHRepo(ctx)
	assert.Equal(t, "", owner)
	assert.Equal(t, "", repo)
}
