// Package content models the course source tree: directories and files
// discovered under a content root, with discovery-path redirects and alias
// detection for directories that present the same underlying content.
package content

import (
	"fmt"
	"path/filepath"
	"strings"
)

// MarkdownExt is the extension of renderable source files.
const MarkdownExt = ".md"

// SlidesDirName names the per-course slide-deck container (matched case-insensitively).
const SlidesDirName = "slides"

// Attachment is a binary asset staged on a node by a processor and flushed by
// the output writer next to the node's page.
type Attachment struct {
	Name string
	Data []byte
}

// Node is a file or directory in the content tree.
type Node struct {
	// SourcePath is the absolute filesystem path of the entry.
	SourcePath string
	// Name is the file stem for files and the directory name for directories.
	Name string
	// Extension is set for files only, including the leading dot.
	Extension string
	IsFile    bool
	// Metadata holds front matter once the file has been loaded.
	Metadata map[string]any
	// DiscoveryPath is where a directory's children are listed from.
	DiscoveryPath string

	children    []*Node
	parent      *Node
	aliasTo     *Node
	attachments []Attachment
}

// NewFile returns a file node for path.
func NewFile(path string) *Node {
	ext := filepath.Ext(path)
	return &Node{
		SourcePath: path,
		Name:       strings.TrimSuffix(filepath.Base(path), ext),
		Extension:  ext,
		IsFile:     true,
	}
}

// NewDir returns a directory node for path whose discovery path is path itself.
func NewDir(path string) *Node {
	return &Node{
		SourcePath:    path,
		Name:          filepath.Base(path),
		DiscoveryPath: path,
	}
}

// AddChild attaches child as the last child of n. It panics if child already
// has a parent.
func (n *Node) AddChild(child *Node) {
	if child.parent != nil {
		panic(fmt.Sprintf("content: node %s already attached to %s", child.SourcePath, child.parent.SourcePath))
	}
	child.parent = n
	n.children = append(n.children, child)
}

// Children returns the ordered child nodes.
func (n *Node) Children() []*Node { return n.children }

// Parent returns the owning directory, or nil for the tree root.
func (n *Node) Parent() *Node { return n.parent }

// AliasTo returns the canonical node this directory duplicates, or nil.
func (n *Node) AliasTo() *Node { return n.aliasTo }

// IsAlias reports whether n duplicates another directory's content.
func (n *Node) IsAlias() bool { return n.aliasTo != nil }

// SetAlias marks n as a duplicate view of canonical. It can be set once.
func (n *Node) SetAlias(canonical *Node) error {
	if n.aliasTo != nil {
		return fmt.Errorf("%w: %s already aliases %s", ErrAliasAlreadySet, n.SourcePath, n.aliasTo.SourcePath)
	}
	if canonical == nil || canonical == n {
		return fmt.Errorf("%w: %s", ErrInvalidAlias, n.SourcePath)
	}
	n.aliasTo = canonical
	return nil
}

// Attach stages a binary asset and returns its index. Indices are dense.
func (n *Node) Attach(name string, data []byte) int {
	n.attachments = append(n.attachments, Attachment{Name: name, Data: data})
	return len(n.attachments) - 1
}

// Attachments returns the staged assets in insertion order.
func (n *Node) Attachments() []Attachment { return n.attachments }

// IsMarkdown reports whether n is a markdown file.
func (n *Node) IsMarkdown() bool {
	return n.IsFile && strings.EqualFold(n.Extension, MarkdownExt)
}

// IsSlidesDir reports whether n is a slide-deck container.
func (n *Node) IsSlidesDir() bool {
	return !n.IsFile && strings.EqualFold(n.Name, SlidesDirName)
}

// IsRoot reports whether n has no parent.
func (n *Node) IsRoot() bool { return n.parent == nil }

// Slug returns the URL-safe form of the node name.
func (n *Node) Slug() string { return Slugify(n.Name) }

// AncestorSlugs returns the slugs of n's ancestors, root-most first, excluding the tree root.
func (n *Node) AncestorSlugs() []string {
	var slugs []string
	for p := n.parent; p != nil && p.parent != nil; p = p.parent {
		slugs = append(slugs, p.Slug())
	}
	for i, j := 0, len(slugs)-1; i < j; i, j = i+1, j-1 {
		slugs[i], slugs[j] = slugs[j], slugs[i]
	}
	return slugs
}

// Siblings returns the markdown files sharing n's parent, excluding n.
func (n *Node) Siblings() []*Node {
	if n.parent == nil {
		return nil
	}
	var out []*Node
	for _, c := range n.parent.children {
		if c != n && c.IsMarkdown() {
			out = append(out, c)
		}
	}
	return out
}

// MarkdownFiles returns the markdown file children of n in order.
func (n *Node) MarkdownFiles() []*Node {
	var out []*Node
	for _, c := range n.children {
		if c.IsMarkdown() {
			out = append(out, c)
		}
	}
	return out
}

// ContainsMarkdown reports whether n has markdown files directly or in any
// descendant directory. Slide-deck directories are only searched when
// includeSlides is set.
func (n *Node) ContainsMarkdown(includeSlides bool) bool {
	for _, c := range n.children {
		if c.IsMarkdown() {
			return true
		}
		if c.IsFile || (!includeSlides && c.IsSlidesDir()) {
			continue
		}
		if c.ContainsMarkdown(includeSlides) {
			return true
		}
	}
	return false
}

// SlidesDir returns the child slide-deck directory, if any.
func (n *Node) SlidesDir() *Node {
	for _, c := range n.children {
		if c.IsSlidesDir() {
			return c
		}
	}
	return nil
}

// Depth returns the number of ancestors of n.
func (n *Node) Depth() int {
	d := 0
	for p := n.parent; p != nil; p = p.parent {
		d++
	}
	return d
}

// Root walks parent links to the top of the tree.
func (n *Node) Root() *Node {
	r := n
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// IsOrigin reports whether a directory lists its own children rather than a redirect's.
func (n *Node) IsOrigin() bool {
	return filepath.Clean(n.SourcePath) == filepath.Clean(n.DiscoveryPath)
}

// MetaString returns a front matter value as a trimmed string.
func (n *Node) MetaString(key string) string {
	v, ok := n.Metadata[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return fmt.Sprint(v)
}

func (n *Node) String() string {
	kind := "Directory"
	if n.IsFile {
		kind = "File"
	}
	return fmt.Sprintf("<%s path=%s>", kind, n.Slug())
}
