// Package gitinfo derives page dates from git history.
package gitinfo

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

// DateResolver reports when a source file last changed.
type DateResolver interface {
	LastModified(path string) (time.Time, bool)
}

// NoopResolver never knows a date.
type NoopResolver struct{}

func (NoopResolver) LastModified(string) (time.Time, bool) { return time.Time{}, false }

// RepoResolver answers from the commit log of the repository containing the
// content root. Results are cached per path.
type RepoResolver struct {
	repo *git.Repository
	root string

	mu    sync.Mutex
	cache map[string]cachedDate
}

type cachedDate struct {
	when time.Time
	ok   bool
}

// Open locates the repository containing dir, searching parent directories.
func Open(dir string) (*RepoResolver, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, err
	}
	root, err := filepath.EvalSymlinks(wt.Filesystem.Root())
	if err != nil {
		return nil, err
	}
	return &RepoResolver{repo: repo, root: root, cache: make(map[string]cachedDate)}, nil
}

// Root returns the repository work tree.
func (r *RepoResolver) Root() string { return r.root }

// LastModified returns the author date of the newest commit touching path.
// Untracked files and paths outside the work tree report false.
func (r *RepoResolver) LastModified(path string) (time.Time, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.cache[path]; ok {
		return c.when, c.ok
	}
	when, ok := r.lookup(path)
	r.cache[path] = cachedDate{when: when, ok: ok}
	return when, ok
}

func (r *RepoResolver) lookup(path string) (time.Time, bool) {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return time.Time{}, false
	}
	rel, err := filepath.Rel(r.root, resolved)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return time.Time{}, false
	}
	rel = filepath.ToSlash(rel)

	iter, err := r.repo.Log(&git.LogOptions{FileName: &rel})
	if err != nil {
		return time.Time{}, false
	}
	defer iter.Close()

	var when time.Time
	err = iter.ForEach(func(c *object.Commit) error {
		when = c.Author.When
		return storer.ErrStop
	})
	if err != nil {
		return time.Time{}, false
	}
	return when, !when.IsZero()
}
