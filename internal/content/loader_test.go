package content

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/courseforge/internal/foundation/errors"
)

func TestLoad_MirrorsFilesystemSorted(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"math/2-algebra.md": "# Algebra",
		"math/1-intro.md":   "# Intro",
		"math/config.yaml":  "name: Matemática\n",
		"math/.draft.md":    "hidden",
		"math/fig.png":      "png",
		"config.yaml":       "site_name: Test\n",
	})

	tree, err := NewLoader().Load(root)
	require.NoError(t, err)
	require.Len(t, tree.Root.Children(), 1)

	math := tree.Find("math")
	require.NotNil(t, math)
	require.Equal(t, []string{"1-intro.md", "2-algebra.md", "fig.png"}, names(math.Children()))
	require.Equal(t, ".png", tree.Find("math/fig.png").Extension)
	require.Empty(t, math.Extension)
}

func TestLoad_DiscoveryPathDefaultsToSourcePath(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a/b/c/page.md": "x",
		"d/config.yaml": "name: D\n",
		"d/page.md":     "x",
	})
	tree, err := NewLoader().Load(root)
	require.NoError(t, err)
	for _, dir := range tree.Directories() {
		require.Equal(t, dir.SourcePath, dir.DiscoveryPath)
	}
}

func TestLoad_SourceRedirect(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"common/shared-module/1-basics.md":        "x",
		"courses/cs101/shared-module/config.yaml": "source: ../../../common/shared-module\n",
		"courses/cs101/shared-module/ignored.md":  "never listed",
		"courses/cs101/1-welcome.md":              "x",
	})

	tree, err := NewLoader().Load(root)
	require.NoError(t, err)

	shared := tree.Find("courses/cs101/shared-module")
	require.NotNil(t, shared)
	want := filepath.Clean(filepath.Join(tree.Root.SourcePath, "common", "shared-module"))
	require.Equal(t, want, shared.DiscoveryPath)
	require.False(t, shared.IsOrigin())
	require.Equal(t, []string{"1-basics.md"}, names(shared.Children()))
	require.Equal(t, filepath.Join(want, "1-basics.md"), shared.Children()[0].SourcePath)
}

func TestLoad_InvalidSourceRedirectIsFatal(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"course/config.yaml": "source: ../does-not-exist\n",
	})

	_, err := NewLoader().Load(root)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrInvalidSourceRedirect)
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
	require.Contains(t, err.Error(), "invalid source redirect")
}

func TestLoad_SourceRedirectToFileIsInvalid(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"notes.md":           "x",
		"course/config.yaml": "source: ../notes.md\n",
	})
	_, err := NewLoader().Load(root)
	require.ErrorIs(t, err, ErrInvalidSourceRedirect)
}

func TestLoad_RedirectCycle(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"course/unit/config.yaml": "source: ..\n",
	})
	_, err := NewLoader().Load(root)
	require.ErrorIs(t, err, ErrRedirectCycle)
}

func TestLoad_RootMustBeDirectory(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file.md")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	_, err := NewLoader().Load(file)
	require.ErrorIs(t, err, ErrNotDirectory)

	_, err = NewLoader().Load(filepath.Join(dir, "missing"))
	require.Error(t, err)
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryFileSystem))
}

func TestTree_WalkAndFind(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a/1.md":   "x",
		"a/b/2.md": "x",
		"c/3.md":   "x",
	})
	tree, err := NewLoader().Load(root)
	require.NoError(t, err)

	var visited []string
	require.NoError(t, tree.Walk(func(n *Node) error {
		visited = append(visited, n.Name)
		if n.Name == "b" {
			return filepath.SkipDir
		}
		return nil
	}))
	require.Equal(t, []string{filepath.Base(root), "a", "1", "b", "c", "3"}, visited)

	require.Same(t, tree.Root, tree.Find(""))
	require.Equal(t, "2", tree.Find("a/b/2.md").Name)
	require.Equal(t, "3", Resolve(tree.Find("a/b"), "../../c/3").Name)
	require.Nil(t, tree.Find("a/missing.md"))
}
