package embedding

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestBuildInput(t *testing.T) {
	assert.Equal(t, "Backend Engineer\n\nGo, Postgres", BuildInput("Backend Engineer", "Go, Postgres"))
	assert.Equal(t, "Backend Engineer", BuildInput("  Backend Engineer ", ""))
	assert.Equal(t, "Go, Postgres", BuildInput("", "Go, Postgres"))
	assert.Equal(t, "", BuildInput("  ", "\n"))
}

func TestTruncate(t *testing.T) {
	text, cut := Truncate("short", 10)
	assert.Equal(t, "short", text)
	assert.False(t, cut)

	text, cut = Truncate("abcdef", 3)
	assert.Equal(t, "abc", text)
	assert.True(t, cut)

	text, cut = Truncate("ab  cdef", 4)
	assert.Equal(t, "ab", text)
	assert.True(t, cut)
}

func TestTruncate_MultiByteIsStable(t *testing.T) {
	long := strings.Repeat("日本語のテキスト", 100)

	first, cut := Truncate(long, 50)
	second, _ := Truncate(long, 50)

	assert.True(t, cut)
	assert.Equal(t, first, second)
	assert.True(t, utf8.ValidString(first))
	assert.Equal(t, 50, utf8.RuneCountInString(first))
}
