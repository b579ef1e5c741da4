// Package output writes the generated site to disk.
package output

import (
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"git.home.luguber.info/inful/courseforge/internal/assets"
	"git.home.luguber.info/inful/courseforge/internal/content"
	ferrors "git.home.luguber.info/inful/courseforge/internal/foundation/errors"
	"git.home.luguber.info/inful/courseforge/internal/logfields"
)

// Output file and directory names.
const (
	ContentsFile    = "contents.html"
	IndexFile       = "index.html"
	SlidesIndexFile = "slides.html"
	StaticDir       = "static"
	PageExt         = ".html"
)

// Writer places build results in the output tree. Every method returns the
// written path relative to the output root, slash separated.
type Writer interface {
	// PagePath is the output path of a markdown page.
	PagePath(node *content.Node) string
	// Exists reports whether rel is present under the output root.
	Exists(rel string) bool

	// WritePage writes a rendered page and flushes the node's attachments
	// into the sibling static directory.
	WritePage(node *content.Node, html string) (string, error)
	// CopyFile copies a non-markdown source file verbatim.
	CopyFile(node *content.Node) (string, error)
	WriteContents(dir *content.Node, html string) (string, error)
	WriteSlidesIndex(slidesDir *content.Node, html string) (string, error)
	WriteIndex(html string) (string, error)
	// CopyAssets copies the template directory's static files.
	CopyAssets(templateDir string) (int, error)
}

// FSWriter writes under a root directory on the local filesystem.
type FSWriter struct {
	root     string
	minifier *assets.Minifier
}

// NewFSWriter returns a writer rooted at dir. A nil minifier disables
// minification of attachments and assets.
func NewFSWriter(dir string, m *assets.Minifier) *FSWriter {
	return &FSWriter{root: dir, minifier: m}
}

// Root returns the output root.
func (w *FSWriter) Root() string { return w.root }

func nodeDir(node *content.Node) string {
	return path.Join(node.AncestorSlugs()...)
}

func (w *FSWriter) PagePath(node *content.Node) string {
	return path.Join(nodeDir(node), node.Slug()+PageExt)
}

// CopyPath is where CopyFile places a non-markdown file.
func (w *FSWriter) CopyPath(node *content.Node) string {
	return path.Join(nodeDir(node), node.Slug()+node.Extension)
}

// ContentsPath is the table-of-contents page of a directory.
func (w *FSWriter) ContentsPath(dir *content.Node) string {
	return path.Join(nodeDir(dir), dir.Slug(), ContentsFile)
}

// SlidesIndexPath is the slide-deck index next to the course's contents directory.
func (w *FSWriter) SlidesIndexPath(slidesDir *content.Node) string {
	return path.Join(nodeDir(slidesDir), SlidesIndexFile)
}

func (w *FSWriter) Exists(rel string) bool {
	_, err := os.Stat(w.abs(rel))
	return err == nil
}

func (w *FSWriter) abs(rel string) string {
	return filepath.Join(w.root, filepath.FromSlash(rel))
}

func (w *FSWriter) WritePage(node *content.Node, html string) (string, error) {
	rel := w.PagePath(node)
	for _, a := range node.Attachments() {
		attRel := path.Join(nodeDir(node), StaticDir, a.Name)
		if err := w.writeFile(attRel, w.minify(a.Name, a.Data)); err != nil {
			return "", err
		}
		slog.Debug("Wrote attachment", logfields.Output(attRel), logfields.Path(node.SourcePath))
	}
	if err := w.writeFile(rel, []byte(html)); err != nil {
		return "", err
	}
	return rel, nil
}

func (w *FSWriter) minify(name string, data []byte) []byte {
	if w.minifier == nil {
		return data
	}
	out, _, err := w.minifier.File(name, data)
	if err != nil {
		slog.Warn("Minification failed, writing original", logfields.File(name), logfields.Error(err))
	}
	return out
}

func (w *FSWriter) CopyFile(node *content.Node) (string, error) {
	rel := w.CopyPath(node)
	data, err := os.ReadFile(node.SourcePath)
	if err != nil {
		return "", ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to read source file").
			WithContext("path", node.SourcePath).
			Build()
	}
	if err := w.writeFile(rel, data); err != nil {
		return "", err
	}
	return rel, nil
}

func (w *FSWriter) WriteContents(dir *content.Node, html string) (string, error) {
	rel := w.ContentsPath(dir)
	return rel, w.writeFile(rel, []byte(html))
}

func (w *FSWriter) WriteSlidesIndex(slidesDir *content.Node, html string) (string, error) {
	rel := w.SlidesIndexPath(slidesDir)
	return rel, w.writeFile(rel, []byte(html))
}

func (w *FSWriter) WriteIndex(html string) (string, error) {
	return IndexFile, w.writeFile(IndexFile, []byte(html))
}

func (w *FSWriter) writeFile(rel string, data []byte) error {
	dst := w.abs(rel)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to create output directory").
			WithContext("path", filepath.Dir(dst)).
			Build()
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to write output file").
			WithContext("path", dst).
			Build()
	}
	return nil
}
