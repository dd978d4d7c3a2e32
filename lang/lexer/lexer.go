// Package lexer implements the indentation-aware tokenizer for enaml
// source text.
//
// The lexer is pull-based: each call to [Lexer.Next] returns the next
// token, synthesizing INDENT and DEDENT tokens from leading whitespace,
// suppressing blank and comment-only lines, and joining lines implicitly
// inside bracket pairs. Raw statement blocks delimited by ":: python ::"
// and ":: end ::" are captured verbatim as a single block token.
package lexer

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/deepankarsharma/enaml/lang/token"
)

// tabSize is the column multiple used to expand tab characters when
// computing indentation.
const tabSize = 8

// Error reports a lexical error with its source position.
type Error struct {
	Filename string
	Message  string
	Line     int
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.Filename, e.Line, e.Message)
}

// LogValue implements slog.LogValuer for structured logging.
func (e *Error) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("file", e.Filename),
		slog.Int("line", e.Line),
		slog.String("error", e.Message),
	)
}

// Lexer tokenizes a single enaml source buffer.
type Lexer struct {
	filename    string
	src         string
	queue       []token.Token
	indents     []int
	pos         int
	line        int
	depth       int
	atLineStart bool
	done        bool
}

// New returns a Lexer over source. The filename is used only for error
// reporting.
func New(source []byte, filename string) *Lexer {
	return &Lexer{
		filename:    filename,
		src:         string(source),
		indents:     []int{0},
		line:        1,
		atLineStart: true,
	}
}

// Next returns the next token in the stream. After the ENDMARKER token has
// been returned, subsequent calls return ENDMARKER again.
func (l *Lexer) Next() (token.Token, error) {
	for len(l.queue) == 0 {
		if l.done {
			return token.Token{Kind: token.EndMarker, Line: l.line}, nil
		}

		if err := l.scan(); err != nil {
			return token.Token{}, err
		}
	}

	tok := l.queue[0]
	l.queue = l.queue[1:]

	return tok, nil
}

func (l *Lexer) errorf(line int, format string, args ...any) error {
	return &Error{
		Filename: l.filename,
		Line:     line,
		Message:  fmt.Sprintf(format, args...),
	}
}

func (l *Lexer) emit(kind token.Kind, lit string, line int) {
	l.queue = append(l.queue, token.Token{Kind: kind, Literal: lit, Line: line})
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdent(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isStringPrefix(c byte) bool {
	switch c {
	case 'r', 'R', 'u', 'U', 'b', 'B':
		return true
	}

	return false
}

// scan consumes input until at least one token is queued or the end of
// input is reached.
func (l *Lexer) scan() error {
	src, n := l.src, len(l.src)

	if l.pos >= n {
		if !l.atLineStart {
			l.emit(token.Newline, "\n", l.line)
		}

		for len(l.indents) > 1 {
			l.indents = l.indents[:len(l.indents)-1]
			l.emit(token.Dedent, "", l.line)
		}

		l.emit(token.EndMarker, "", l.line)
		l.done = true

		return nil
	}

	if l.atLineStart && l.depth == 0 {
		return l.scanLineStart()
	}

	c := src[l.pos]

	switch {
	case c == ' ' || c == '\t':
		l.pos++

		return nil

	case c == '#':
		for l.pos < n && src[l.pos] != '\n' {
			l.pos++
		}

		return nil

	case c == '\\' && l.pos+1 < n && src[l.pos+1] == '\n':
		// Explicit line continuation.
		l.pos += 2
		l.line++

		return nil

	case c == '\n':
		l.pos++

		if l.depth > 0 {
			// Implicit line joining inside brackets.
			l.line++

			return nil
		}

		l.emit(token.Newline, "\n", l.line)
		l.line++
		l.atLineStart = true

		return nil

	case c == '\'' || c == '"' || (isStringPrefix(c) && l.stringFollows()):
		return l.scanString()

	case isDigit(c) || (c == '.' && l.pos+1 < n && isDigit(src[l.pos+1])):
		l.scanNumber()

		return nil

	case isIdentStart(c):
		start := l.pos
		for l.pos < n && isIdent(src[l.pos]) {
			l.pos++
		}

		word := src[start:l.pos]
		l.emit(token.Lookup(word), word, l.line)
		l.atLineStart = false

		return nil
	}

	if strings.HasPrefix(src[l.pos:], "...") {
		l.emit(token.Ellipsis, "...", l.line)
		l.pos += 3
		l.atLineStart = false

		return nil
	}

	if l.pos+1 < n {
		if kind, ok := operator2[src[l.pos:l.pos+2]]; ok {
			l.emit(kind, src[l.pos:l.pos+2], l.line)
			l.pos += 2
			l.atLineStart = false

			return nil
		}
	}

	if kind, ok := operator1[c]; ok {
		switch c {
		case '(', '[', '{':
			l.depth++
		case ')', ']', '}':
			if l.depth > 0 {
				l.depth--
			}
		}

		l.emit(kind, string(c), l.line)
		l.pos++
		l.atLineStart = false

		return nil
	}

	return l.errorf(l.line, "invalid character %q", string(c))
}

var operator2 = map[string]token.Kind{
	"**": token.DoubleStar,
	"//": token.DoubleSlash,
	"<<": token.LeftShift,
	">>": token.RightShift,
	"<=": token.LessEqual,
	">=": token.GreaterEqual,
	"==": token.EqEqual,
	"!=": token.NotEqual,
	"::": token.DoubleColon,
	":=": token.ColonEqual,
}

var operator1 = map[byte]token.Kind{
	'(': token.LPar,
	')': token.RPar,
	'[': token.LSqb,
	']': token.RSqb,
	'{': token.LBrace,
	'}': token.RBrace,
	',': token.Comma,
	':': token.Colon,
	'=': token.Equal,
	'<': token.Less,
	'>': token.Greater,
	'|': token.VBar,
	'^': token.Circumflex,
	'&': token.Amper,
	'+': token.Plus,
	'-': token.Minus,
	'*': token.Star,
	'/': token.Slash,
	'%': token.Percent,
	'~': token.Tilde,
	'.': token.Dot,
}

// stringFollows reports whether the characters at the current position form
// a string prefix (at most two of r/u/b in any case) followed by a quote.
func (l *Lexer) stringFollows() bool {
	i, n := l.pos, len(l.src)

	for count := 0; i < n && isStringPrefix(l.src[i]) && count < 2; count++ {
		i++
	}

	return i < n && (l.src[i] == '\'' || l.src[i] == '"')
}

// scanLineStart measures leading whitespace at the start of a logical line,
// synthesizing INDENT and DEDENT tokens against the indent stack. Blank
// lines and comment-only lines produce no tokens. A raw block marker at
// column zero hands off to scanBlock.
func (l *Lexer) scanLineStart() error {
	src, n := l.src, len(l.src)
	i := l.pos
	col := 0

	for i < n && (src[i] == ' ' || src[i] == '\t') {
		if src[i] == '\t' {
			col = (col/tabSize + 1) * tabSize
		} else {
			col++
		}

		i++
	}

	if i >= n {
		l.pos = i

		return nil
	}

	if src[i] == '\n' {
		l.pos = i + 1
		l.line++

		return nil
	}

	if src[i] == '#' {
		for i < n && src[i] != '\n' {
			i++
		}

		l.pos = i

		return nil
	}

	if col == 0 && l.lineIs(i, "::", "python", "::") {
		return l.scanBlock()
	}

	l.atLineStart = false
	l.pos = i

	if col > l.indents[len(l.indents)-1] {
		l.indents = append(l.indents, col)
		l.emit(token.Indent, "", l.line)

		return nil
	}

	for col < l.indents[len(l.indents)-1] {
		l.indents = l.indents[:len(l.indents)-1]
		l.emit(token.Dedent, "", l.line)
	}

	if col != l.indents[len(l.indents)-1] {
		return l.errorf(l.line,
			"unindent does not match any outer indentation level")
	}

	return nil
}

// lineIs reports whether the rest of the current line, split on whitespace,
// equals the given words.
func (l *Lexer) lineIs(i int, words ...string) bool {
	end := strings.IndexByte(l.src[i:], '\n')
	if end < 0 {
		end = len(l.src) - i
	}

	fields := strings.Fields(l.src[i : i+end])
	if len(fields) != len(words) {
		return false
	}

	for j, w := range words {
		if fields[j] != w {
			return false
		}
	}

	return true
}

// scanBlock consumes a raw statement block. The body between the start and
// end markers is captured verbatim into a single block token whose line is
// the first body line.
func (l *Lexer) scanBlock() error {
	src, n := l.src, len(l.src)
	startLine := l.line

	end := strings.IndexByte(src[l.pos:], '\n')
	if end < 0 {
		return l.errorf(startLine, "unterminated python block")
	}

	l.emit(token.BlockStart, "::python::", startLine)
	l.emit(token.Newline, "\n", startLine)
	l.pos += end + 1
	l.line++

	var body []string

	for {
		if l.pos >= n {
			return l.errorf(startLine, "unterminated python block")
		}

		eol := strings.IndexByte(src[l.pos:], '\n')
		if eol < 0 {
			eol = n - l.pos
		}

		text := src[l.pos : l.pos+eol]

		if fields := strings.Fields(text); len(fields) == 3 &&
			fields[0] == "::" && fields[1] == "end" && fields[2] == "::" {
			l.emit(token.Block, strings.Join(body, "\n")+"\n", startLine+1)
			l.emit(token.BlockEnd, "::end::", l.line)
			l.emit(token.Newline, "\n", l.line)
			l.pos += eol
			if l.pos < n {
				l.pos++
			}
			l.line++
			l.atLineStart = true

			return nil
		}

		body = append(body, text)
		l.pos += eol
		if l.pos < n {
			l.pos++
		}
		l.line++
	}
}

// scanString consumes a string literal, including any r/u/b prefix and
// single or triple quoting, and emits the cooked value with escape
// sequences decoded. Raw strings keep their backslashes intact.
func (l *Lexer) scanString() error {
	src, n := l.src, len(l.src)
	startLine := l.line
	raw := false

	for l.pos < n && isStringPrefix(src[l.pos]) {
		if src[l.pos] == 'r' || src[l.pos] == 'R' {
			raw = true
		}

		l.pos++
	}

	q := src[l.pos]
	closer := string(q)

	if strings.HasPrefix(src[l.pos:], strings.Repeat(closer, 3)) {
		closer = strings.Repeat(closer, 3)
		l.pos += 3
	} else {
		l.pos++
	}

	triple := len(closer) == 3

	var buf strings.Builder

	for {
		if l.pos >= n {
			return l.errorf(startLine, "unterminated string")
		}

		c := src[l.pos]

		if !triple && c == '\n' {
			return l.errorf(startLine, "unterminated string")
		}

		if strings.HasPrefix(src[l.pos:], closer) {
			l.pos += len(closer)

			break
		}

		if c == '\\' && l.pos+1 < n {
			if raw {
				buf.WriteByte(c)
				buf.WriteByte(src[l.pos+1])

				if src[l.pos+1] == '\n' {
					l.line++
				}

				l.pos += 2

				continue
			}

			buf.WriteString(l.escape())

			continue
		}

		if c == '\n' {
			l.line++
		}

		buf.WriteByte(c)
		l.pos++
	}

	l.emit(token.String, buf.String(), startLine)
	l.atLineStart = false

	return nil
}

// escape decodes one backslash escape sequence, returning its replacement
// text. Unknown escapes are preserved verbatim, matching the source
// language convention.
func (l *Lexer) escape() string {
	src := l.src
	l.pos++ // backslash
	c := src[l.pos]
	l.pos++

	switch c {
	case 'n':
		return "\n"
	case 't':
		return "\t"
	case 'r':
		return "\r"
	case '\\':
		return "\\"
	case '\'':
		return "'"
	case '"':
		return "\""
	case 'a':
		return "\a"
	case 'b':
		return "\b"
	case 'f':
		return "\f"
	case 'v':
		return "\v"
	case '0':
		return "\x00"
	case '\n':
		// Escaped newline inside a string continues the literal.
		l.line++

		return ""
	case 'x':
		if l.pos+1 < len(src) {
			hi, okHi := hexVal(src[l.pos])
			lo, okLo := hexVal(src[l.pos+1])

			if okHi && okLo {
				l.pos += 2

				return string(rune(hi<<4 | lo))
			}
		}
	}

	return "\\" + string(c)
}

func hexVal(c byte) (int, bool) {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0'), true
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10, true
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10, true
	}

	return 0, false
}

// scanNumber consumes an integer or floating point literal, including hex,
// octal, and binary forms and exponent notation. Validation of the digits
// is left to the parser.
func (l *Lexer) scanNumber() {
	src, n := l.src, len(l.src)
	start := l.pos

	if src[l.pos] == '0' && l.pos+1 < n && isBasePrefix(src[l.pos+1]) {
		l.pos += 2

		for l.pos < n && isIdent(src[l.pos]) {
			l.pos++
		}

		l.emit(token.Number, src[start:l.pos], l.line)
		l.atLineStart = false

		return
	}

	var seenDot, seenExp bool

	for l.pos < n {
		c := src[l.pos]

		switch {
		case isDigit(c):
			l.pos++

		case c == '.' && !seenDot && !seenExp:
			seenDot = true
			l.pos++

		case (c == 'e' || c == 'E') && !seenExp && l.exponentFollows():
			seenExp = true
			l.pos++

			if src[l.pos] == '+' || src[l.pos] == '-' {
				l.pos++
			}

		default:
			l.emit(token.Number, src[start:l.pos], l.line)
			l.atLineStart = false

			return
		}
	}

	l.emit(token.Number, src[start:l.pos], l.line)
	l.atLineStart = false
}

func isBasePrefix(c byte) bool {
	switch c {
	case 'x', 'X', 'o', 'O', 'b', 'B':
		return true
	}

	return false
}

// exponentFollows reports whether the character after the current e/E can
// begin a valid exponent: a digit, or a sign followed by a digit.
func (l *Lexer) exponentFollows() bool {
	src, n := l.src, len(l.src)
	i := l.pos + 1

	if i >= n {
		return false
	}

	if isDigit(src[i]) {
		return true
	}

	return (src[i] == '+' || src[i] == '-') && i+1 < n && isDigit(src[i+1])
}
