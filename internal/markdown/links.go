package markdown

import (
	"regexp"
	"strings"
)

// Link is an inline `[text](destination)` link found in markdown source.
// Offsets are byte positions into the scanned source, End exclusive.
type Link struct {
	Text        string
	Destination string
	Image       bool
	// Start and End delimit the whole construct including a leading '!'.
	Start, End int
	// DestStart and DestEnd delimit the destination between the parentheses.
	DestStart, DestEnd int
}

var inlineLink = regexp.MustCompile(`!?\[([^\]]+)\]\(([^)]+)\)`)

// ScanLinks returns the inline links of body in source order. Fenced code
// blocks, indented code and inline code spans are ignored.
func ScanLinks(body string) []Link {
	var links []Link
	inFence := false
	fence := ""
	offset := 0
	for line := range strings.SplitAfterSeq(body, "\n") {
		lineStart := offset
		offset += len(line)

		trimmed := strings.TrimSpace(line)
		if marker := fenceMarker(trimmed); marker != "" {
			switch {
			case !inFence:
				inFence, fence = true, marker
			case marker == fence:
				inFence, fence = false, ""
			}
			continue
		}
		if inFence || strings.HasPrefix(line, "    ") || strings.HasPrefix(line, "\t") {
			continue
		}

		masked := maskCodeSpans(line)
		for _, m := range inlineLink.FindAllStringSubmatchIndex(masked, -1) {
			links = append(links, Link{
				Text:        line[m[2]:m[3]],
				Destination: line[m[4]:m[5]],
				Image:       line[m[0]] == '!',
				Start:       lineStart + m[0],
				End:         lineStart + m[1],
				DestStart:   lineStart + m[4],
				DestEnd:     lineStart + m[5],
			})
		}
	}
	return links
}

func fenceMarker(trimmed string) string {
	switch {
	case strings.HasPrefix(trimmed, "```"):
		return "```"
	case strings.HasPrefix(trimmed, "~~~"):
		return "~~~"
	default:
		return ""
	}
}

// maskCodeSpans blanks out backtick code spans, keeping byte offsets stable.
func maskCodeSpans(s string) string {
	if !strings.Contains(s, "`") {
		return s
	}
	out := []byte(s)
	for i := 0; i < len(s); {
		if s[i] != '`' {
			i++
			continue
		}
		run := 1
		for i+run < len(s) && s[i+run] == '`' {
			run++
		}
		closeRel := strings.Index(s[i+run:], strings.Repeat("`", run))
		if closeRel == -1 {
			i += run
			continue
		}
		end := i + run + closeRel + run
		for j := i; j < end; j++ {
			out[j] = ' '
		}
		i = end
	}
	return string(out)
}

// IsExternal reports whether href points outside the site.
func IsExternal(href string) bool {
	for _, p := range []string{"http://", "https://", "mailto:", "tel:", "//", "data:"} {
		if strings.HasPrefix(strings.ToLower(href), p) {
			return true
		}
	}
	return false
}
