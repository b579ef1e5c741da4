package normalization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type shade int

const (
	shadeNone shade = iota
	shadeLight
	shadeDark
)

func shades() *Normalizer[shade] {
	return New(map[string]shade{"Light": shadeLight, "dark": shadeDark}, shadeNone)
}

func TestNormalize(t *testing.T) {
	n := shades()
	tests := []struct {
		name  string
		input string
		want  shade
	}{
		{"exact", "dark", shadeDark},
		{"case insensitive", "DARK", shadeDark},
		{"key case ignored", "light", shadeLight},
		{"padded", "  light\t", shadeLight},
		{"unknown", "purple", shadeNone},
		{"empty", "", shadeNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Normalize(tt.input))
		})
	}
}

func TestParse(t *testing.T) {
	n := shades()

	v, err := n.Parse(" Dark ")
	require.NoError(t, err)
	assert.Equal(t, shadeDark, v)

	v, err = n.Parse("")
	require.NoError(t, err)
	assert.Equal(t, shadeNone, v)

	v, err = n.Parse("purple")
	require.Error(t, err)
	assert.Equal(t, shadeNone, v)
	assert.Contains(t, err.Error(), "dark, light")
}

func TestKeys_ReturnsCopy(t *testing.T) {
	n := shades()
	keys := n.Keys()
	assert.Equal(t, []string{"dark", "light"}, keys)
	keys[0] = "changed"
	assert.Equal(t, []string{"dark", "light"}, n.Keys())
}
