package builder

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGitURL(t *testing.T) {
	res := parseGitURL("https://github.com/wlav/cppyy-backend@master#clingwrapper-1.4.3")
	assert.Equal(t, gitURL{
		cleanURL:    "https://github.com/wlav/cppyy-backend.git",
		branch:      "master",
		commitOrTag: "clingwrapper-1.4.3",
	}, res)

	res = parseGitURL("https://gitlab.com/a/b.git")
	assert.Equal(t, gitURL{cleanURL: "https://gitlab.com/a/b.git"}, res)
}

func TestResolveGitSource(t *testing.T) {
	u, ok, err := resolveGitSource("gh:wlav/cppyy-backend")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "https://github.com/wlav/cppyy-backend", u)

	u, ok, err = resolveGitSource("git:ssh://git@example.com/wrapper.git")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "ssh://git@example.com/wrapper.git", u)

	_, ok, err = resolveGitSource("vendor/wrapper")
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = resolveGitSource("https://example.com/wrapper.tar.gz")
	assert.ErrorIs(t, err, errUnsupportedSource)

	_, _, err = resolveGitSource("")
	assert.ErrorIs(t, err, errIllegalSource)
}

func TestFetchSourcesMissingPath(t *testing.T) {
	base := t.TempDir()
	_, err := fetchSources("nope", base, filepath.Join(base, "build", "_src"))
	assert.ErrorContains(t, err, "does not exist")
}

// initUpstream creates a local repository with two commits of src/clingwrapper.cxx
// and returns its path and the commit hashes.
func initUpstream(t *testing.T) (string, []string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "upstream.git")
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	w, err := repo.Worktree()
	require.NoError(t, err)

	var hashes []string
	for i, content := range []string{"// rev 1\n", "// rev 2\n"} {
		writeFile(t, filepath.Join(dir, "src", "clingwrapper.cxx"), content, 0o644)
		_, err = w.Add("src/clingwrapper.cxx")
		require.NoError(t, err)
		hash, err := w.Commit("rev", &git.CommitOptions{
			Author: &object.Signature{Name: "dev", Email: "dev@example.com", When: time.Unix(int64(1700000000+i), 0)},
		})
		require.NoError(t, err)
		hashes = append(hashes, hash.String())
	}
	return dir, hashes
}

func TestFetchSourcesBadRevisionLeavesNothing(t *testing.T) {
	upstream, _ := initUpstream(t)
	base := t.TempDir()
	dst := filepath.Join(base, "build", "_src")

	_, err := fetchSources("git:"+upstream+"#doesnotexist", base, dst)
	assert.ErrorContains(t, err, "doesnotexist")
	assert.NoDirExists(t, dst)

	// a retry must not pick up a half-finished checkout
	_, err = fetchSources("git:"+upstream+"#doesnotexist", base, dst)
	assert.Error(t, err)
	assert.NoDirExists(t, dst)
}

func TestFetchSourcesRefetchesChangedSpec(t *testing.T) {
	upstream, hashes := initUpstream(t)
	base := t.TempDir()
	dst := filepath.Join(base, "build", "_src")
	source := filepath.Join(dst, "src", "clingwrapper.cxx")

	dir, err := fetchSources("git:"+upstream+"#"+hashes[0], base, dst)
	require.NoError(t, err)
	assert.Equal(t, dst, dir)
	data, err := os.ReadFile(source)
	require.NoError(t, err)
	assert.Equal(t, "// rev 1\n", string(data))

	// same spec: the checkout is reused as is
	writeFile(t, filepath.Join(dst, "local.txt"), "", 0o644)
	_, err = fetchSources("git:"+upstream+"#"+hashes[0], base, dst)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dst, "local.txt"))

	// new revision: fetched from scratch
	_, err = fetchSources("git:"+upstream+"#"+hashes[1], base, dst)
	require.NoError(t, err)
	data, err = os.ReadFile(source)
	require.NoError(t, err)
	assert.Equal(t, "// rev 2\n", string(data))
	assert.NoFileExists(t, filepath.Join(dst, "local.txt"))
}
