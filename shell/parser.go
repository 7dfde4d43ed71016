package shell

import (
	"strconv"
	"strings"
	"unicode"
)

// Token is a single parsed argument. Tokens that parse fully as a base-10
// integer also carry the numeric value.
type Token struct {
	text   string
	num    int64
	isNum  bool
	quoted bool // any part of the token came from quotes or an escape
}

// NewToken builds an unquoted token from s, detecting integers the same way
// [Parse] does.
func NewToken(s string) Token {
	return newToken(s, false)
}

func newToken(s string, quoted bool) Token {
	t := Token{text: s, quoted: quoted}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		t.num = n
		t.isNum = true
	}
	return t
}

// String returns the token text as it was parsed
func (t Token) String() string {
	return t.text
}

// Int returns the numeric value and whether the token is numeric
func (t Token) Int() (int64, bool) {
	return t.num, t.isNum
}

// IsNum reports whether the token parsed as an integer
func (t Token) IsNum() bool {
	return t.isNum
}

// Tokens builds unquoted tokens from plain strings
func Tokens(args ...string) []Token {
	toks := make([]Token, 0, len(args))
	for _, a := range args {
		toks = append(toks, NewToken(a))
	}
	return toks
}

// Strings returns the text of every token
func Strings(toks []Token) []string {
	out := make([]string, 0, len(toks))
	for _, t := range toks {
		out = append(out, t.text)
	}
	return out
}

type parseState int

const (
	stateOutside parseState = iota
	stateSingleQuote
	stateDoubleQuote
)

// tokenBuffer accumulates the runes of the token being parsed. started is set
// once any quote has been opened so that "" still yields an empty token.
type tokenBuffer struct {
	b       strings.Builder
	started bool
	quoted  bool
}

func (tb *tokenBuffer) appendRune(r rune) {
	tb.b.WriteRune(r)
	tb.started = true
}

func (tb *tokenBuffer) flush(toks []Token) []Token {
	if tb.started {
		toks = append(toks, newToken(tb.b.String(), tb.quoted))
	}
	tb.b.Reset()
	tb.started = false
	tb.quoted = false
	return toks
}

// Parse splits line into tokens honoring shell quoting:
//   - whitespace separates tokens
//   - '…' keeps its content literally
//   - "…" keeps whitespace and resolves \" \\ \$ and \` (other backslashes stay)
//   - a backslash outside quotes escapes the next character
//   - adjacent quoted and unquoted runs join into one token
//
// Parsing is lenient: an unterminated quote or a trailing backslash drops the
// token in progress and the tokens completed before it are returned.
func Parse(line string) []Token {
	toks := []Token{}
	var tb tokenBuffer
	state := stateOutside
	escaping := false

	for _, ch := range line {
		switch state {
		case stateOutside:
			switch {
			case escaping:
				tb.appendRune(ch)
				escaping = false
			case unicode.IsSpace(ch):
				toks = tb.flush(toks)
			case ch == '\'':
				state = stateSingleQuote
				tb.started, tb.quoted = true, true
			case ch == '"':
				state = stateDoubleQuote
				tb.started, tb.quoted = true, true
			case ch == '\\':
				escaping = true
				tb.quoted = true
			default:
				tb.appendRune(ch)
			}

		case stateSingleQuote:
			if ch == '\'' {
				state = stateOutside
			} else {
				tb.appendRune(ch)
			}

		case stateDoubleQuote:
			switch {
			case escaping:
				if !strings.ContainsRune("\"\\$`", ch) {
					tb.appendRune('\\')
				}
				tb.appendRune(ch)
				escaping = false
			case ch == '"':
				state = stateOutside
			case ch == '\\':
				escaping = true
			default:
				tb.appendRune(ch)
			}
		}
	}

	if state != stateOutside || escaping {
		return toks
	}
	return tb.flush(toks)
}
