package shell

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{name: "empty", input: "", expected: []string{}},
		{name: "only spaces", input: "   \t ", expected: []string{}},
		{name: "simple command", input: "echo hello", expected: []string{"echo", "hello"}},
		{name: "collapses whitespace", input: "  ls   -a\t~ ", expected: []string{"ls", "-a", "~"}},
		{name: "mixed quotes", input: `echo "a b" 'c d' e`, expected: []string{"echo", "a b", "c d", "e"}},
		{name: "adjacent runs join", input: `a"b c"d`, expected: []string{"ab cd"}},
		{name: "escaped space", input: `echo hello\ world`, expected: []string{"echo", "hello world"}},
		{name: "escaped quote outside", input: `echo \"hi\"`, expected: []string{"echo", `"hi"`}},
		{name: "escaped quote in double quotes", input: `echo "hello \"world\""`, expected: []string{"echo", `hello "world"`}},
		{name: "escaped backslash in double quotes", input: `echo "a\\b"`, expected: []string{"echo", `a\b`}},
		{name: "other backslash kept in double quotes", input: `echo "a\nb"`, expected: []string{"echo", `a\nb`}},
		{name: "single quotes are literal", input: `echo 'a\"b'`, expected: []string{"echo", `a\"b`}},
		{name: "double quote inside single", input: `echo '"x"'`, expected: []string{"echo", `"x"`}},
		{name: "empty quotes make empty token", input: `echo "" x`, expected: []string{"echo", "", "x"}},
		{name: "unterminated double quote", input: `echo ok "never closed`, expected: []string{"echo", "ok"}},
		{name: "unterminated single quote", input: `mkdir a 'b`, expected: []string{"mkdir", "a"}},
		{name: "trailing backslash", input: `echo a b\`, expected: []string{"echo", "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, Strings(Parse(tt.input)))
		})
	}
}

func TestParse_Numbers(t *testing.T) {
	t.Parallel()

	toks := Parse(`mkdir 5 -12 1.5 0x10 "42"`)
	require.Len(t, toks, 6)

	n, ok := toks[1].Int()
	assert.True(t, ok, "5 must be numeric")
	assert.Equal(t, int64(5), n)
	assert.Equal(t, "5", toks[1].String())

	n, ok = toks[2].Int()
	assert.True(t, ok)
	assert.Equal(t, int64(-12), n)

	assert.False(t, toks[0].IsNum())
	assert.False(t, toks[3].IsNum(), "floats stay strings")
	assert.False(t, toks[4].IsNum(), "only base 10 is numeric")
	assert.True(t, toks[5].IsNum(), "quoted digits are still a number")
}

func TestParse_QuotedTokens(t *testing.T) {
	t.Parallel()

	toks := Parse(`echo ">" > out`)
	require.Len(t, toks, 4)

	assert.True(t, toks[1].quoted)
	assert.False(t, toks[2].quoted)
}

func TestTokens(t *testing.T) {
	t.Parallel()

	toks := Tokens("printf", "%d", "7")

	assert.Equal(t, []string{"printf", "%d", "7"}, Strings(toks))
	assert.True(t, toks[2].IsNum())
	assert.Equal(t, Parse("printf %d 7"), toks)
}
