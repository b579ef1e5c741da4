package content

import (
	"math"
	"regexp"
	"strconv"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Introdução à Álgebra":  "introducao-a-algebra",
		"1-intro":               "1-intro",
		"Hello, World!":         "hello-world",
		"snake_case  and  tabs": "snake_case-and-tabs",
		"":                      "",
	}
	for in, want := range cases {
		require.Equal(t, want, Slugify(in), in)
	}
}

func TestChapterNumber(t *testing.T) {
	n, ok := ChapterNumber("03_vectors")
	require.True(t, ok)
	require.Equal(t, 3, n)

	_, ok = ChapterNumber("12")
	require.False(t, ok, "digits without separator")
	_, ok = ChapterNumber("intro")
	require.False(t, ok)
}

func TestDisplayName(t *testing.T) {
	require.Equal(t, "algebra linear", DisplayName("2-algebra_linear"))
	require.Equal(t, "math", DisplayName("math"))
	require.Equal(t, "2024", DisplayName("2024"))
}

func TestSlideOrder(t *testing.T) {
	require.Equal(t, 7, SlideOrder("07-deck"))
	require.Equal(t, math.MaxInt, SlideOrder("appendix"))
}

var slugShape = regexp.MustCompile(`^[a-z0-9_-]*$`)

func TestSlugProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("slug only contains url-safe characters", prop.ForAll(
		func(s string) bool {
			return slugShape.MatchString(Slugify(s))
		},
		gen.AnyString(),
	))

	properties.Property("slugify is idempotent", prop.ForAll(
		func(s string) bool {
			once := Slugify(s)
			return Slugify(once) == once
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}

func TestChapterNumberProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)
	seps := gen.OneConstOf("-", "_", ".", " ")

	properties.Property("digit prefix with separator yields the number", prop.ForAll(
		func(n int, sep string, rest string) bool {
			got, ok := ChapterNumber(strconv.Itoa(n) + sep + rest)
			return ok && got == n
		},
		gen.IntRange(0, 100000),
		seps,
		gen.AlphaString(),
	))

	properties.Property("names starting with a letter have no chapter", prop.ForAll(
		func(s string) bool {
			_, ok := ChapterNumber("x" + s)
			return !ok
		},
		gen.AnyString(),
	))

	properties.Property("display name never empty for non-empty input", prop.ForAll(
		func(n int, sep string, rest string) bool {
			name := strconv.Itoa(n) + sep + rest
			return DisplayName(name) != ""
		},
		gen.IntRange(0, 999),
		seps,
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}
