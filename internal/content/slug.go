package content

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	chapterPrefix  = regexp.MustCompile(`^(\d+)[-_.\s]`)
	numericPrefix  = regexp.MustCompile(`^(\d+)`)
	leadingNumber  = regexp.MustCompile(`^\d+[-_.\s]*`)
	slugDisallowed = regexp.MustCompile(`[^a-z0-9_-]+`)
	whitespaceRun  = regexp.MustCompile(`\s+`)
)

// Slugify folds s to ASCII, lowercases it, replaces whitespace with '-' and
// removes every character outside [a-z0-9_-].
func Slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	folded = strings.ToLower(strings.TrimSpace(folded))
	folded = whitespaceRun.ReplaceAllString(folded, "-")
	return slugDisallowed.ReplaceAllString(folded, "")
}

// ChapterNumber parses a "<digits><separator>" filename prefix.
func ChapterNumber(name string) (int, bool) {
	m := chapterPrefix.FindStringSubmatch(name)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// SlideOrder returns the leading number of a slide file name, or math.MaxInt
// when there is none so unnumbered slides sort last.
func SlideOrder(name string) int {
	m := numericPrefix.FindStringSubmatch(name)
	if m == nil {
		return math.MaxInt
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return math.MaxInt
	}
	return n
}

// DisplayName strips a leading numeric prefix and its separators, then turns
// '-' and '_' into spaces. A name that would become empty is kept as is.
func DisplayName(name string) string {
	cleaned := leadingNumber.ReplaceAllString(name, "")
	if cleaned == "" {
		return name
	}
	return strings.NewReplacer("-", " ", "_", " ").Replace(cleaned)
}
