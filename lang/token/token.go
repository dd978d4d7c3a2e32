// Package token defines the lexical tokens of the enaml source language
// and the terminal symbol names used by the grammar.
package token

import "log/slog"

// Kind identifies the lexical class of a token. The String form of a Kind
// is the terminal symbol name used in grammar productions.
type Kind uint8

const (
	// EndMarker terminates every token stream.
	EndMarker Kind = iota

	// Structural tokens synthesized by the lexer.
	Newline
	Indent
	Dedent

	// Literals and identifiers.
	Name
	Number
	String

	// Keywords.
	And
	As
	Else
	For
	From
	If
	Import
	In
	Is
	Lambda
	Not
	Or
	Pass
	Print

	// Single-character operators and delimiters.
	LPar
	RPar
	LSqb
	RSqb
	LBrace
	RBrace
	Comma
	Colon
	Equal
	Less
	Greater
	VBar
	Circumflex
	Amper
	Plus
	Minus
	Star
	Slash
	Percent
	Tilde
	Dot

	// Multi-character operators.
	DoubleStar
	DoubleSlash
	LeftShift
	RightShift
	LessEqual
	GreaterEqual
	EqEqual
	NotEqual
	DoubleColon
	ColonEqual
	Ellipsis

	// Raw block tokens. BlockStart and BlockEnd delimit an embedded
	// statement block; Block carries the verbatim body text.
	BlockStart
	Block
	BlockEnd
)

// symbol maps each Kind to its grammar terminal name.
var symbol = [...]string{
	EndMarker: "ENDMARKER",
	Newline:   "NEWLINE",
	Indent:    "INDENT",
	Dedent:    "DEDENT",

	Name:   "NAME",
	Number: "NUMBER",
	String: "STRING",

	And:    "AND",
	As:     "AS",
	Else:   "ELSE",
	For:    "FOR",
	From:   "FROM",
	If:     "IF",
	Import: "IMPORT",
	In:     "IN",
	Is:     "IS",
	Lambda: "LAMBDA",
	Not:    "NOT",
	Or:     "OR",
	Pass:   "PASS",
	Print:  "PRINT",

	LPar:       "LPAR",
	RPar:       "RPAR",
	LSqb:       "LSQB",
	RSqb:       "RSQB",
	LBrace:     "LBRACE",
	RBrace:     "RBRACE",
	Comma:      "COMMA",
	Colon:      "COLON",
	Equal:      "EQUAL",
	Less:       "LESS",
	Greater:    "GREATER",
	VBar:       "VBAR",
	Circumflex: "CIRCUMFLEX",
	Amper:      "AMPER",
	Plus:       "PLUS",
	Minus:      "MINUS",
	Star:       "STAR",
	Slash:      "SLASH",
	Percent:    "PERCENT",
	Tilde:      "TILDE",
	Dot:        "DOT",

	DoubleStar:   "DOUBLESTAR",
	DoubleSlash:  "DOUBLESLASH",
	LeftShift:    "LEFTSHIFT",
	RightShift:   "RIGHTSHIFT",
	LessEqual:    "LESSEQUAL",
	GreaterEqual: "GREATEREQUAL",
	EqEqual:      "EQEQUAL",
	NotEqual:     "NOTEQUAL",
	DoubleColon:  "DOUBLECOLON",
	ColonEqual:   "COLONEQUAL",
	Ellipsis:     "ELLIPSIS",

	BlockStart: "PY_BLOCK_START",
	Block:      "PY_BLOCK",
	BlockEnd:   "PY_BLOCK_END",
}

// String returns the grammar terminal name of the kind.
func (k Kind) String() string {
	if int(k) < len(symbol) {
		return symbol[k]
	}

	return "INVALID"
}

// keywords maps reserved words to their token kinds.
var keywords = map[string]Kind{
	"and":    And,
	"as":     As,
	"else":   Else,
	"for":    For,
	"from":   From,
	"if":     If,
	"import": Import,
	"in":     In,
	"is":     Is,
	"lambda": Lambda,
	"not":    Not,
	"or":     Or,
	"pass":   Pass,
	"print":  Print,
}

// Lookup returns the keyword kind of word, or [Name] if word is not a
// reserved word.
func Lookup(word string) Kind {
	if k, ok := keywords[word]; ok {
		return k
	}

	return Name
}

// Token is a single lexical token with its source position.
//
// For [String] tokens, Literal holds the cooked value with quotes removed
// and escape sequences decoded. For [Block] tokens, Literal holds the raw
// body text of the block and Line is the line of its first body line.
type Token struct {
	Literal string
	Line    int
	Kind    Kind
}

// LogValue implements slog.LogValuer for structured logging.
func (t Token) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("kind", t.Kind.String()),
		slog.String("literal", t.Literal),
		slog.Int("line", t.Line),
	)
}
