package rand

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLetterString(t *testing.T) {
	name := LetterString(20)
	require.Len(t, name, 20)
	assert.Empty(t, strings.Trim(name, "abcdefghijklmnopqrstuvwxyz0123456789"))
}

func TestText(t *testing.T) {
	text := Text(3, 8)
	lines := strings.SplitAfter(text, "\n")
	require.Len(t, lines, 4)
	for _, line := range lines[:3] {
		assert.Len(t, line, 9)
	}
	assert.Empty(t, lines[3])
}

func benchmarkLetterBytes(b *testing.B, size int) {
	for n := 0; n < b.N; n++ {
		_ = LetterBytes(size)
	}
}

func BenchmarkLetterBytes20(b *testing.B)   { benchmarkLetterBytes(b, 20) }
func BenchmarkLetterBytes1000(b *testing.B) { benchmarkLetterBytes(b, 1000) }
