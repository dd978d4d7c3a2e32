// Package grammar provides an LALR(1) parse table generator and the
// shift-reduce driver that evaluates semantic actions over a token stream.
//
// Grammars are described as a flat list of [Rule] values. [Build]
// constructs the canonical LR(1) item sets, merges them by core into LALR
// states, and resolves conflicts with the conventional policy: shift wins
// over reduce, and of two competing reductions the earlier rule wins.
// The resulting [Table] is independent of the semantic actions and can be
// serialized through a [TableCache] so that repeated runs skip table
// construction entirely.
package grammar

import (
	"fmt"
	"log/slog"
)

// End is the synthetic terminal appended after the token stream. It is
// distinct from any grammar terminal, so grammars are free to treat their
// own end-of-input token as an ordinary terminal.
const End = "$end"

// ActionFunc is a semantic action attached to a rule. It receives the
// values of the matched right-hand side and returns the value of the
// left-hand side. Returning an error aborts the parse.
type ActionFunc func(p *Prod) (any, error)

// Rule is a single production. A nil Action passes the first right-hand
// side value through unchanged.
type Rule struct {
	LHS    string
	RHS    []string
	Action ActionFunc
}

// Prod exposes the matched right-hand side of a rule to its semantic
// action. Values and lines are indexed from 1, following the positions of
// the symbols in the production.
type Prod struct {
	vals     []any
	lines    []int
	filename string
}

// Get returns the value of the i-th right-hand side symbol. For shifted
// tokens this is the token literal; for reduced non-terminals it is the
// value produced by that rule's action.
func (p *Prod) Get(i int) any { return p.vals[i-1] }

// Text returns the value of the i-th symbol as a string. It is a
// convenience for token literals.
func (p *Prod) Text(i int) string {
	s, _ := p.vals[i-1].(string)

	return s
}

// Line returns the source line of the i-th right-hand side symbol.
func (p *Prod) Line(i int) int { return p.lines[i-1] }

// Filename returns the name of the source being parsed.
func (p *Prod) Filename() string { return p.filename }

// UnexpectedToken is returned by the driver when no parse action exists
// for the current token.
type UnexpectedToken struct {
	Symbol  string
	Literal string
	Line    int
}

// Error implements the error interface.
func (e *UnexpectedToken) Error() string {
	if e.Literal == "" || e.Literal == "\n" {
		return fmt.Sprintf("unexpected %s at line %d", e.Symbol, e.Line)
	}

	return fmt.Sprintf("unexpected %s %q at line %d",
		e.Symbol, e.Literal, e.Line)
}

// LogValue implements slog.LogValuer for structured logging.
func (e *UnexpectedToken) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("symbol", e.Symbol),
		slog.String("literal", e.Literal),
		slog.Int("line", e.Line),
	)
}
