package content

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
)

// Tree is a loaded content hierarchy.
type Tree struct {
	Root *Node
}

// WalkFunc is called for every node visited by Tree.Walk. Returning
// fs.SkipDir from a directory skips its children.
type WalkFunc func(n *Node) error

// Walk visits every node depth-first in pre-order.
func (t *Tree) Walk(fn WalkFunc) error {
	if t == nil || t.Root == nil {
		return nil
	}
	err := walk(t.Root, fn)
	if errors.Is(err, fs.SkipDir) {
		return nil
	}
	return err
}

func walk(n *Node, fn WalkFunc) error {
	if err := fn(n); err != nil {
		if errors.Is(err, fs.SkipDir) && !n.IsFile {
			return nil
		}
		return err
	}
	for _, c := range n.children {
		if err := walk(c, fn); err != nil {
			return err
		}
	}
	return nil
}

// Directories returns every directory node in pre-order.
func (t *Tree) Directories() []*Node {
	var dirs []*Node
	_ = t.Walk(func(n *Node) error {
		if !n.IsFile {
			dirs = append(dirs, n)
		}
		return nil
	})
	return dirs
}

// Find resolves a slash-separated path relative to the root by entry base
// name, e.g. "math/1-intro.md". An empty path returns the root.
func (t *Tree) Find(relPath string) *Node {
	if t == nil || t.Root == nil {
		return nil
	}
	return Resolve(t.Root, relPath)
}

// Resolve walks relPath from dir. "." and empty segments are ignored, ".."
// moves to the parent (staying at the root). A segment matches a child's base
// file name or its display name.
func Resolve(dir *Node, relPath string) *Node {
	node := dir
	for _, part := range strings.Split(filepath.ToSlash(relPath), "/") {
		switch part {
		case "", ".":
			continue
		case "..":
			if node.parent != nil {
				node = node.parent
			}
			continue
		}
		next := childNamed(node, part)
		if next == nil {
			return nil
		}
		node = next
	}
	return node
}

func childNamed(dir *Node, name string) *Node {
	for _, c := range dir.children {
		if filepath.Base(c.SourcePath) == name {
			return c
		}
	}
	for _, c := range dir.children {
		if c.Name == name {
			return c
		}
	}
	return nil
}
