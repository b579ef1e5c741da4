package gitinfo

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

func commitFile(t *testing.T, repo *git.Repository, dir, rel, body string, when time.Time) {
	t.Helper()
	p := filepath.Join(dir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))

	w, err := repo.Worktree()
	require.NoError(t, err)
	_, err = w.Add(rel)
	require.NoError(t, err)
	_, err = w.Commit("update "+rel, &git.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@example.com", When: when},
	})
	require.NoError(t, err)
}

func TestRepoResolver_LastModified(t *testing.T) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	first := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	second := time.Date(2024, 5, 2, 12, 0, 0, 0, time.UTC)
	commitFile(t, repo, dir, "math/1-intro.md", "# Intro", first)
	commitFile(t, repo, dir, "math/2-algebra.md", "# Algebra", first.Add(time.Hour))
	commitFile(t, repo, dir, "math/1-intro.md", "# Intro v2", second)

	// Open from a subdirectory to exercise repository discovery.
	r, err := Open(filepath.Join(dir, "math"))
	require.NoError(t, err)

	when, ok := r.LastModified(filepath.Join(dir, "math", "1-intro.md"))
	require.True(t, ok)
	require.True(t, when.Equal(second), "got %s", when)

	when, ok = r.LastModified(filepath.Join(dir, "math", "2-algebra.md"))
	require.True(t, ok)
	require.True(t, when.Equal(first.Add(time.Hour)))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "math", "draft.md"), []byte("x"), 0o600))
	_, ok = r.LastModified(filepath.Join(dir, "math", "draft.md"))
	require.False(t, ok)

	_, ok = r.LastModified(filepath.Join(t.TempDir(), "elsewhere.md"))
	require.False(t, ok)
}

func TestOpen_NotARepository(t *testing.T) {
	_, err := Open(t.TempDir())
	require.Error(t, err)
}

func TestNoopResolver(t *testing.T) {
	_, ok := NoopResolver{}.LastModified("/any")
	require.False(t, ok)
}
