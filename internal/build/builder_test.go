package build

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/courseforge/internal/content"
	"git.home.luguber.info/inful/courseforge/internal/eventstore"
	ferrors "git.home.luguber.info/inful/courseforge/internal/foundation/errors"
	"git.home.luguber.info/inful/courseforge/internal/incremental"
	"git.home.luguber.info/inful/courseforge/internal/metrics"
	"git.home.luguber.info/inful/courseforge/internal/processors"
	"git.home.luguber.info/inful/courseforge/internal/testutil"
)

// siteFixture lays out a content root with four listed courses, one hidden
// course, an alias and a course whose files live outside the root.
func siteFixture(t *testing.T) (root, out string) {
	t.Helper()
	base := t.TempDir()
	root = filepath.Join(base, "content")
	out = filepath.Join(base, "site")
	testutil.WriteTree(t, root, map[string]string{
		"config.yaml": "site_name: Cursos\ncourses_title: Disciplinas\n",

		"math/config.yaml": "name: Matemática\nappendices_title: Apêndices\nparts:\n  - title: Parte 1\n    items: [2-limits.md]\n",
		"math/1-intro.md":  "---\ntitle: Introdução\ndate: 2024-03-01\n---\n# Hello\n\nSee [limits](2-limits.md).\n",
		"math/2-limits.md": "# Limits\n",
		"math/3-review.md": "---\ntype: slide\n---\n# Review\n\n## Part\n",
		"math/data.csv":    "a,b\n1,2\n",

		"math/slides/1-overview.md": "---\ntitle: Overview\n---\n# Overview\n",
		"math/slides/10-end.md":     "# End\n",
		"math/slides/2-middle.md":   "# Middle\n",

		"cs101/1-basics.md":     "# Basics\n",
		"cs101-old/config.yaml": "source: ../cs101\n",

		"hidden/config.yaml": "hidden: true\n",
		"hidden/a.md":        "# A\n",

		"physics/config.yaml": "source: ../../library/physics\n",
	})
	testutil.WriteTree(t, base, map[string]string{
		"library/physics/1-motion.md": "# Motion\n",
	})
	return root, out
}

type countingRecorder struct {
	metrics.NoopRecorder
	results  map[metrics.PageResult]int
	outcomes []metrics.BuildOutcome
	courses  int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{results: map[metrics.PageResult]int{}}
}

func (c *countingRecorder) IncPageResult(_ string, r metrics.PageResult) { c.results[r]++ }
func (c *countingRecorder) IncBuildOutcome(o metrics.BuildOutcome)       { c.outcomes = append(c.outcomes, o) }
func (c *countingRecorder) SetCourses(n int)                             { c.courses = n }

type memoryHistory struct {
	events []eventstore.Event
	fail   bool
}

func (m *memoryHistory) Record(_ context.Context, e eventstore.Event) error {
	if m.fail {
		return errors.New("disk full")
	}
	m.events = append(m.events, e)
	return nil
}

func (m *memoryHistory) types() []string {
	out := make([]string, 0, len(m.events))
	for _, e := range m.events {
		out = append(out, e.Type())
	}
	return out
}

func newTestBuilder(t *testing.T, out string, opts ...Option) *Builder {
	t.Helper()
	b := New(Options{OutputDir: out}, opts...)
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestExecute_BuildsSite(t *testing.T) {
	root, out := siteFixture(t)
	rec := newCountingRecorder()
	b := newTestBuilder(t, out, WithRecorder(rec))

	report, err := b.Execute(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, 9, report.Rendered)
	assert.Equal(t, 0, report.Skipped)
	assert.Equal(t, 1, report.Copied)
	assert.Equal(t, 1, report.AliasesSkipped)
	assert.Equal(t, 4, report.ContentsPages)
	assert.Equal(t, 1, report.Slides)
	assert.Equal(t, 4, report.Courses)
	assert.NotEmpty(t, report.BuildID)

	assert.Equal(t, 9, rec.results[metrics.PageRendered])
	assert.Equal(t, 1, rec.results[metrics.PageAliasSkipped])
	assert.Equal(t, []metrics.BuildOutcome{metrics.OutcomeSuccess}, rec.outcomes)
	assert.Equal(t, 4, rec.courses)

	testutil.NewSiteAssertions(t, out).
		AssertFileExists(
			"index.html",
			"math/contents.html",
			"math/1-intro.html",
			"math/2-limits.html",
			"math/3-review.html",
			"math/data.csv",
			"math/slides.html",
			"math/slides/1-overview.html",
			"math/slides/2-middle.html",
			"math/slides/10-end.html",
			"cs101/contents.html",
			"cs101/1-basics.html",
			"hidden/a.html",
			"physics/contents.html",
			"physics/1-motion.html",
		).
		AssertNotExists("cs101-old").
		AssertNotExists("math/slides/contents.html")
	assert.Equal(t, "a,b\n1,2\n", testutil.NewSiteAssertions(t, out).Content("math/data.csv"))
}

func TestExecute_IndexListsCourses(t *testing.T) {
	root, out := siteFixture(t)
	_, err := newTestBuilder(t, out).Execute(context.Background(), root)
	require.NoError(t, err)

	index := testutil.NewSiteAssertions(t, out).Content("index.html")
	assert.Contains(t, index, "<title>Cursos</title>")
	assert.Contains(t, index, "Disciplinas")
	assert.Contains(t, index, "Matemática")
	assert.Equal(t, 2, strings.Count(index, `href="cs101/contents.html"`), "alias links to the canonical course")
	assert.Contains(t, index, `class="alias"`)
	assert.Contains(t, index, `href="physics/contents.html"`)
	assert.NotContains(t, index, "hidden/")
}

func TestExecute_SingleCourseInFilenameOrder(t *testing.T) {
	base := t.TempDir()
	root, out := filepath.Join(base, "content"), filepath.Join(base, "site")
	testutil.WriteTree(t, root, map[string]string{
		"math/2-algebra.md": "# Algebra\n",
		"math/1-intro.md":   "# Intro\n",
	})

	report, err := newTestBuilder(t, out).Execute(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Courses)
	assert.Equal(t, 2, report.Rendered)

	testutil.NewSiteAssertions(t, out).
		AssertFileContains("index.html", `href="math/contents.html"`, "Math").
		AssertInOrder("math/contents.html", `href="1-intro.html"`, `href="2-algebra.html"`)
}

func TestExecute_DeeperRedirectIsSkippedAsAlias(t *testing.T) {
	base := t.TempDir()
	root, out := filepath.Join(base, "content"), filepath.Join(base, "site")
	testutil.WriteTree(t, root, map[string]string{
		"cs101/config.yaml":             "source: ../../common/cs101\n",
		"archive/cs101-old/config.yaml": "source: ../../../common/cs101\n",
	})
	testutil.WriteTree(t, base, map[string]string{
		"common/cs101/1-a.md": "# A\n",
	})

	report, err := newTestBuilder(t, out).Execute(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Rendered)
	assert.Equal(t, 1, report.AliasesSkipped)

	testutil.NewSiteAssertions(t, out).
		AssertFileExists("cs101/1-a.html").
		AssertNotExists("archive/cs101-old").
		AssertFileContains("archive/contents.html", `href="../cs101/contents.html"`)
}

func TestExecute_RedirectSortingBeforeOriginRendersOrigin(t *testing.T) {
	root, out := t.TempDir(), t.TempDir()
	testutil.WriteTree(t, root, map[string]string{
		"z-course/unit1/1-a.md": "# A\n",
		"a-copy/config.yaml":    "source: ../z-course\n",
	})

	report, err := newTestBuilder(t, out).Execute(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Rendered)
	assert.Equal(t, 1, report.AliasesSkipped)

	testutil.NewSiteAssertions(t, out).
		AssertFileExists("z-course/unit1/1-a.html", "z-course/unit1/contents.html", "z-course/contents.html").
		AssertNotExists("a-copy").
		AssertFileContains("z-course/contents.html", `href="unit1/contents.html"`).
		AssertFileContains("index.html", `href="z-course/contents.html"`)
}

func TestExecute_ChapterPage(t *testing.T) {
	root, out := siteFixture(t)
	_, err := newTestBuilder(t, out).Execute(context.Background(), root)
	require.NoError(t, err)

	testutil.NewSiteAssertions(t, out).
		AssertFileContains("math/1-intro.html",
			"Introdução",
			`<span class="chapter">I.</span>`,
			`<p class="date">2024-03-01</p>`,
			`class="next" href="2-limits.html"`,
			`<a href="../index.html">Cursos</a>`,
			`<a href="contents.html">math</a>`,
			`name="fingerprint"`,
		).
		AssertFileNotContains("math/1-intro.html", `class="prev"`).
		AssertFileContains("math/2-limits.html",
			`class="prev" href="1-intro.html"`,
			`class="next" href="3-review.html"`,
		)
}

func TestExecute_SlideTypePage(t *testing.T) {
	root, out := siteFixture(t)
	_, err := newTestBuilder(t, out).Execute(context.Background(), root)
	require.NoError(t, err)

	testutil.NewSiteAssertions(t, out).
		AssertFileContains("math/3-review.html", `class="page-slide"`).
		AssertFileNotContains("math/3-review.html", `class="chapter"`)
}

func TestExecute_ContentsGroups(t *testing.T) {
	root, out := siteFixture(t)
	_, err := newTestBuilder(t, out).Execute(context.Background(), root)
	require.NoError(t, err)

	testutil.NewSiteAssertions(t, out).
		AssertFileContains("math/contents.html", "<h1>Matemática</h1>", `href="slides.html"`).
		AssertInOrder("math/contents.html", "Parte 1", `href="2-limits.html"`, "Apêndices", `href="1-intro.html"`, `href="3-review.html"`).
		AssertFileNotContains("math/contents.html", "slides/")
}

func TestExecute_SlideDeck(t *testing.T) {
	root, out := siteFixture(t)
	_, err := newTestBuilder(t, out).Execute(context.Background(), root)
	require.NoError(t, err)

	testutil.NewSiteAssertions(t, out).
		AssertInOrder("math/slides.html",
			`href="../index.html"`,
			`href="contents.html"`,
			`href="slides/1-overview.html">Overview<`,
			`href="slides/2-middle.html"`,
			`href="slides/10-end.html"`,
		).
		AssertFileContains("math/slides/2-middle.html", `class="page-slide"`)
}

func TestExecute_SlidesOnlyCourseLinksToDeck(t *testing.T) {
	root, out := t.TempDir(), t.TempDir()
	testutil.WriteTree(t, root, map[string]string{
		"talks/slides/1-a.md":         "# A\n",
		"talks/slides/img.png":        "png",
		"talks/slides/media/clip.svg": "<svg/>",
	})

	report, err := newTestBuilder(t, out).Execute(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Courses)
	assert.Equal(t, 1, report.Slides)
	assert.Equal(t, 2, report.Copied)
	assert.Equal(t, 0, report.ContentsPages)

	testutil.NewSiteAssertions(t, out).
		AssertFileContains("index.html", `href="talks/slides.html"`).
		AssertFileNotContains("index.html", "talks/contents.html").
		AssertFileExists("talks/slides.html", "talks/slides/1-a.html", "talks/slides/img.png", "talks/slides/media/clip.svg").
		AssertFileNotContains("talks/slides.html", "contents.html").
		AssertNotExists("talks/contents.html")
}

func TestExecute_ContentsLinksToNestedSlideDeck(t *testing.T) {
	root, out := t.TempDir(), t.TempDir()
	testutil.WriteTree(t, root, map[string]string{
		"course/1-intro.md":         "# Intro\n",
		"course/talk/slides/1-a.md": "# A\n",
		"course/empty/notes.txt":    "n",
	})

	_, err := newTestBuilder(t, out).Execute(context.Background(), root)
	require.NoError(t, err)

	testutil.NewSiteAssertions(t, out).
		AssertFileContains("course/contents.html", `href="talk/slides.html"`).
		AssertFileNotContains("course/contents.html", "empty/").
		AssertFileExists("course/talk/slides.html")
}

func TestExecute_IncrementalSkip(t *testing.T) {
	root, out := siteFixture(t)
	store := incremental.NewMemoryStore()
	b := newTestBuilder(t, out, WithChecksumStore(store))

	_, err := b.Execute(context.Background(), root)
	require.NoError(t, err)

	introPath := filepath.Join(out, "math", "1-intro.html")
	require.NoError(t, os.WriteFile(introPath, []byte("untouched"), 0o600))

	report, err := b.Execute(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Rendered)
	assert.Equal(t, 9, report.Skipped)
	site := testutil.NewSiteAssertions(t, out)
	assert.Equal(t, "untouched", site.Content("math/1-intro.html"))

	// A changed source and a missing output are both rebuilt.
	testutil.WriteTree(t, root, map[string]string{"math/2-limits.md": "# Limits, revised\n"})
	require.NoError(t, os.Remove(filepath.Join(out, "cs101", "1-basics.html")))
	report, err = b.Execute(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Rendered)
	assert.Equal(t, 7, report.Skipped)
	site.AssertFileContains("math/2-limits.html", "revised")
}

func TestExecute_UnchangedPagesLoggedAtInfo(t *testing.T) {
	root, out := t.TempDir(), t.TempDir()
	testutil.WriteTree(t, root, map[string]string{"course/1-a.md": "# A\n"})
	b := newTestBuilder(t, out, WithChecksumStore(incremental.NewMemoryStore()))
	_, err := b.Execute(context.Background(), root)
	require.NoError(t, err)

	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})))
	t.Cleanup(func() { slog.SetDefault(prev) })

	report, err := b.Execute(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Skipped)
	assert.Contains(t, buf.String(), `level=INFO msg="Skipping unchanged"`)
	assert.Contains(t, buf.String(), filepath.Join(root, "course", "1-a.md"))
}

func TestExecute_ForceRendersEverything(t *testing.T) {
	root, out := siteFixture(t)
	store := incremental.NewMemoryStore()
	_, err := newTestBuilder(t, out, WithChecksumStore(store)).Execute(context.Background(), root)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(out, "math", "1-intro.html"), []byte("stale"), 0o600))

	forced := New(Options{OutputDir: out, Force: true}, WithChecksumStore(store))
	defer forced.Close()
	report, err := forced.Execute(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, 9, report.Rendered)
	assert.Equal(t, 0, report.Skipped)
	assert.NotEqual(t, "stale", testutil.NewSiteAssertions(t, out).Content("math/1-intro.html"))
}

func TestExecute_FileChecksumStore(t *testing.T) {
	root, out := siteFixture(t)
	cache := t.TempDir()

	_, err := newTestBuilder(t, out).Execute(context.Background(), root)
	require.NoError(t, err)

	first := New(Options{OutputDir: out, CacheDir: cache})
	defer first.Close()
	_, err = first.Execute(context.Background(), root)
	require.NoError(t, err)

	second := New(Options{OutputDir: out, CacheDir: cache})
	defer second.Close()
	report, err := second.Execute(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, 9, report.Skipped)
}

func TestExecute_RecordsHistory(t *testing.T) {
	root, out := siteFixture(t)
	history := &memoryHistory{}
	report, err := newTestBuilder(t, out, WithHistory(history)).Execute(context.Background(), root)
	require.NoError(t, err)

	types := history.types()
	require.NotEmpty(t, types)
	assert.Equal(t, eventstore.TypeBuildStarted, types[0])
	assert.Equal(t, eventstore.TypeBuildFinished, types[len(types)-1])
	assert.Contains(t, types, eventstore.TypeAliasSkipped)

	var finished eventstore.BuildFinishedData
	require.NoError(t, eventstore.Decode(history.events[len(history.events)-1], &finished))
	assert.Equal(t, report.Rendered, finished.Rendered)
	assert.Equal(t, report.Courses, finished.Courses)
	for _, e := range history.events {
		assert.Equal(t, report.BuildID, e.BuildID())
	}
}

func TestExecute_HistoryIntoSQLite(t *testing.T) {
	root, out := siteFixture(t)
	store, err := eventstore.NewSQLiteStore(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer store.Close()

	report, err := newTestBuilder(t, out, WithHistory(eventstore.NewStoreRecorder(store))).Execute(context.Background(), root)
	require.NoError(t, err)

	projection := eventstore.NewBuildHistoryProjection(store, 10)
	require.NoError(t, projection.Rebuild(context.Background()))
	summary, ok := projection.GetBuild(report.BuildID)
	require.True(t, ok)
	assert.Equal(t, eventstore.StatusCompleted, summary.Status)
	assert.Equal(t, 9, summary.Rendered)
	assert.Equal(t, 1, summary.Aliases)
	assert.Equal(t, 4, summary.Courses)
}

func TestExecute_HistoryFailureDoesNotAbort(t *testing.T) {
	root, out := siteFixture(t)
	history := &memoryHistory{fail: true}
	report, err := newTestBuilder(t, out, WithHistory(history)).Execute(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, 9, report.Rendered)
}

func TestExecute_ProcessorFailure(t *testing.T) {
	root, out := siteFixture(t)
	history := &memoryHistory{}
	rec := newCountingRecorder()
	boom := processors.Func{ID: "boom", Fn: func(context.Context, *content.Node, string) (string, error) {
		return "", errors.New("exploded")
	}}
	b := newTestBuilder(t, out,
		WithPreProcessors(processors.Chain{boom}),
		WithHistory(history),
		WithRecorder(rec),
	)

	_, err := b.Execute(context.Background(), root)
	require.Error(t, err)
	assert.Equal(t, ferrors.CategoryBuild, ferrors.GetCategory(err))
	assert.Equal(t, []metrics.BuildOutcome{metrics.OutcomeFailed}, rec.outcomes)

	last := history.events[len(history.events)-1]
	assert.Equal(t, eventstore.TypeBuildFailed, last.Type())
	var failed eventstore.BuildFailedData
	require.NoError(t, eventstore.Decode(last, &failed))
	assert.Contains(t, failed.Error, "exploded")
	assert.Equal(t, string(ferrors.CategoryBuild), failed.Category)
}

func TestExecute_Canceled(t *testing.T) {
	root, out := siteFixture(t)
	rec := newCountingRecorder()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestBuilder(t, out, WithRecorder(rec)).Execute(ctx, root)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []metrics.BuildOutcome{metrics.OutcomeCanceled}, rec.outcomes)
	testutil.NewSiteAssertions(t, out).AssertNotExists("index.html")
}

func TestExecute_DateFromResolver(t *testing.T) {
	root, out := siteFixture(t)
	when := time.Date(2023, 5, 17, 10, 0, 0, 0, time.UTC)
	_, err := newTestBuilder(t, out, WithDateResolver(fixedDates{when})).Execute(context.Background(), root)
	require.NoError(t, err)

	testutil.NewSiteAssertions(t, out).
		AssertFileContains("math/2-limits.html", "2023-05-17").
		AssertFileContains("math/1-intro.html", "2024-03-01")
}

type fixedDates struct{ t time.Time }

func (f fixedDates) LastModified(string) (time.Time, bool) { return f.t, true }

func TestExecute_MissingRoot(t *testing.T) {
	_, err := newTestBuilder(t, t.TempDir()).Execute(context.Background(), filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Equal(t, ferrors.CategoryFileSystem, ferrors.GetCategory(err))
}
