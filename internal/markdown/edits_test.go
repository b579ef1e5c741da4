package markdown

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestApplyEdits_ReplacementsInAnyOrder(t *testing.T) {
	src := "A: ./old.md\nB: ./old.md#frag\n"
	first := strings.Index(src, "./old.md")
	second := strings.LastIndex(src, "./old.md")

	out, err := ApplyEdits(src, []Edit{
		{Start: second, End: second + len("./old.md"), Replacement: "./new.html"},
		{Start: first, End: first + len("./old.md"), Replacement: "./new.html"},
	})
	require.NoError(t, err)
	require.Equal(t, "A: ./new.html\nB: ./new.html#frag\n", out)
}

func TestApplyEdits_Insertion(t *testing.T) {
	src := "[a](x.zip) tail"
	out, err := ApplyEdits(src, []Edit{{Start: 10, End: 10, Replacement: "{.download-link}"}})
	require.NoError(t, err)
	require.Equal(t, "[a](x.zip){.download-link} tail", out)
}

func TestApplyEdits_Invalid(t *testing.T) {
	_, err := ApplyEdits("abc", []Edit{{Start: 0, End: 2}, {Start: 1, End: 3}})
	require.ErrorIs(t, err, ErrOverlappingEdits)

	_, err = ApplyEdits("abc", []Edit{{Start: 2, End: 9}})
	require.Error(t, err)

	out, err := ApplyEdits("abc", nil)
	require.NoError(t, err)
	require.Equal(t, "abc", out)
}
