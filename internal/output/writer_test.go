package output

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/courseforge/internal/assets"
	"git.home.luguber.info/inful/courseforge/internal/content"
)

func fixture() (root, course, page, slidesDir, slide, data *content.Node) {
	root = content.NewDir("/src")
	course = content.NewDir("/src/Cálculo I")
	root.AddChild(course)
	page = content.NewFile("/src/Cálculo I/1-Intro.md")
	course.AddChild(page)
	slidesDir = content.NewDir("/src/Cálculo I/slides")
	course.AddChild(slidesDir)
	slide = content.NewFile("/src/Cálculo I/slides/01 Limits.md")
	slidesDir.AddChild(slide)
	data = content.NewFile("/src/Cálculo I/data.CSV")
	course.AddChild(data)
	return root, course, page, slidesDir, slide, data
}

func readOut(t *testing.T, root, rel string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(b)
}

func TestFSWriter_Paths(t *testing.T) {
	_, course, page, slidesDir, slide, data := fixture()
	w := NewFSWriter(t.TempDir(), nil)

	require.Equal(t, "calculo-i/1-intro.html", w.PagePath(page))
	require.Equal(t, "calculo-i/slides/01-limits.html", w.PagePath(slide))
	require.Equal(t, "calculo-i/contents.html", w.ContentsPath(course))
	require.Equal(t, "calculo-i/slides.html", w.SlidesIndexPath(slidesDir))
	require.Equal(t, "calculo-i/data.CSV", w.CopyPath(data))
}

func TestFSWriter_WritePageFlushesAttachments(t *testing.T) {
	_, _, page, _, _, _ := fixture()
	out := t.TempDir()
	w := NewFSWriter(out, assets.NewMinifier())
	page.Attach("1-intro_0.svg", []byte("<svg xmlns=\"http://www.w3.org/2000/svg\">\n  <g>\n  </g>\n</svg>"))
	page.Attach("notes.txt", []byte("  keep  me  "))

	rel, err := w.WritePage(page, "<p>hi</p>")
	require.NoError(t, err)
	require.Equal(t, "calculo-i/1-intro.html", rel)
	require.True(t, w.Exists(rel))
	require.Equal(t, "<p>hi</p>", readOut(t, out, rel))

	svg := readOut(t, out, "calculo-i/static/1-intro_0.svg")
	require.NotContains(t, svg, "\n")
	require.Equal(t, "  keep  me  ", readOut(t, out, "calculo-i/static/notes.txt"))
}

func TestFSWriter_CopyContentsSlidesIndex(t *testing.T) {
	src := t.TempDir()
	root := content.NewDir(src)
	course := content.NewDir(filepath.Join(src, "math"))
	root.AddChild(course)
	file := content.NewFile(filepath.Join(src, "math", "table.csv"))
	course.AddChild(file)
	slides := content.NewDir(filepath.Join(src, "math", "slides"))
	course.AddChild(slides)
	require.NoError(t, os.MkdirAll(filepath.Join(src, "math"), 0o755))
	require.NoError(t, os.WriteFile(file.SourcePath, []byte("a,b\n1,2\n"), 0o644))

	out := t.TempDir()
	w := NewFSWriter(out, nil)

	rel, err := w.CopyFile(file)
	require.NoError(t, err)
	require.Equal(t, "a,b\n1,2\n", readOut(t, out, rel))

	rel, err = w.WriteContents(course, "toc")
	require.NoError(t, err)
	require.Equal(t, "math/contents.html", rel)
	require.Equal(t, "toc", readOut(t, out, rel))

	rel, err = w.WriteSlidesIndex(slides, "deck")
	require.NoError(t, err)
	require.Equal(t, "math/slides.html", rel)

	rel, err = w.WriteIndex("home")
	require.NoError(t, err)
	require.Equal(t, "index.html", rel)
	require.Equal(t, "home", readOut(t, out, "index.html"))
}

func TestFSWriter_CopyFileMissingSource(t *testing.T) {
	w := NewFSWriter(t.TempDir(), nil)
	_, err := w.CopyFile(content.NewFile(filepath.Join(t.TempDir(), "gone.pdf")))
	require.Error(t, err)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestFSWriter_CopyAssets(t *testing.T) {
	tmpl := t.TempDir()
	write := func(rel, body string) {
		p := filepath.Join(tmpl, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	}
	write("base.html", "<html></html>")
	write("README.md", "# readme")
	write("css/site.css", "body {\n  color: red;\n}\n")
	write("img/dark-favicon.svg", "<svg xmlns=\"http://www.w3.org/2000/svg\"></svg>")
	write("img/logo.png", "PNG")
	write(".git/config", "x")

	out := t.TempDir()
	w := NewFSWriter(out, assets.NewMinifier())
	n, err := w.CopyAssets(tmpl)
	require.NoError(t, err)
	require.Equal(t, 3, n)

	require.False(t, w.Exists("base.html"))
	require.False(t, w.Exists("README.md"))
	require.False(t, w.Exists(".git/config"))
	require.Equal(t, "body{color:red}", readOut(t, out, "css/site.css"))
	require.Equal(t, "PNG", readOut(t, out, "img/logo.png"))
	require.True(t, w.Exists("favicon.svg"))
}
