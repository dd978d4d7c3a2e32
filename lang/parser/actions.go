package parser

import (
	"errors"
	"strconv"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/deepankarsharma/enaml/lang/ast"
	"github.com/deepankarsharma/enaml/lang/grammar"
	"github.com/deepankarsharma/enaml/lang/pyast"
)

// Intermediate values passed between reductions. None of these survive
// into the finished tree.

// moduleVal carries the parsed module body before raw blocks have been
// resolved.
type moduleVal struct {
	doc   string
	items []any
}

// declBody carries the docstring, identifier, and items of a declaration
// body.
type declBody struct {
	doc   string
	id    string
	items []ast.DeclItem
}

// instBody carries the identifier and items of an instantiation body.
type instBody struct {
	id    string
	items []ast.InstItem
}

// rawBlock is a placeholder for a raw statement block. The parser replaces
// it with an [ast.Python] item after the enclosing module has been
// accepted, so that block bodies are parsed with the caller's table cache.
type rawBlock struct {
	text     string
	line     int
	bodyLine int
}

func (*rawBlock) moduleItem() {}

// Lineno returns the source line of the block's opening marker.
func (b *rawBlock) Lineno() int { return b.line }

// trailerKind discriminates the trailer variants folded onto an atom.
type trailerKind uint8

const (
	trailerCall trailerKind = iota
	trailerAttr
	trailerSub
)

// trailer is one postfix operation: a call, an attribute access, or a
// subscript.
type trailer struct {
	args *callArgs
	name string
	sub  pyast.Slicer
	line int
	kind trailerKind
}

// callArgs aggregates the argument forms of a call trailer.
type callArgs struct {
	args     []pyast.Expr
	keywords []*pyast.Keyword
	starArgs pyast.Expr
	kwArgs   pyast.Expr
}

// commaSeq is a comma-separated expression sequence.
type commaSeq struct {
	elts []pyast.Expr
}

// compSeq is an element with comprehension clauses.
type compSeq struct {
	elt  pyast.Expr
	gens []*pyast.Comprehension
}

// dictSeq is a comma-separated key:value sequence.
type dictSeq struct {
	keys   []pyast.Expr
	values []pyast.Expr
}

// dictCompSeq is a key:value pair with comprehension clauses.
type dictCompSeq struct {
	key   pyast.Expr
	value pyast.Expr
	gens  []*pyast.Comprehension
}

// opRand pairs a binary operator with its right operand during left fold.
type opRand struct {
	x  pyast.Expr
	op pyast.Operator
}

// cmpPair pairs a comparison operator with its comparator.
type cmpPair struct {
	x  pyast.Expr
	op pyast.CmpOp
}

// fpList accumulates lambda parameters and their defaults.
type fpList struct {
	args     []pyast.Expr
	defaults []pyast.Expr
}

// ---- value plumbing

func expr(v any) pyast.Expr { return v.(pyast.Expr) }

func exprList(v any) []pyast.Expr { return v.([]pyast.Expr) }

func anyList(v any) []any {
	if v == nil {
		return nil
	}

	return v.([]any)
}

// declItems filters nil placeholders (pass statements) out of a body item
// list.
func declItems(v any) []ast.DeclItem {
	items := anyList(v)
	out := make([]ast.DeclItem, 0, len(items))

	for _, it := range items {
		if d, ok := it.(ast.DeclItem); ok {
			out = append(out, d)
		}
	}

	return out
}

func instItems(v any) []ast.InstItem {
	items := anyList(v)
	out := make([]ast.InstItem, 0, len(items))

	for _, it := range items {
		if d, ok := it.(ast.InstItem); ok {
			out = append(out, d)
		}
	}

	return out
}

// ---- node construction

func at(line int) pyast.Pos { return pyast.Pos{Line: line} }

// exprPython wraps an expression for evaluation, fixing missing lines
// before the tree is attached to its parent.
func exprPython(e pyast.Expr, line int) *ast.Python {
	wrap := &pyast.Expression{Pos: at(line), Body: e}
	pyast.FixLines(wrap, line)

	return &ast.Python{Ast: wrap, Line: line}
}

// stmtPython wraps statements for execution.
func stmtPython(body []pyast.Stmt, line int) *ast.Python {
	mod := &pyast.Module{Pos: at(line), Body: body}
	pyast.FixLines(mod, line)

	return &ast.Python{Ast: mod, Line: line}
}

// nameExpr wraps a bare identifier as an evaluated expression, used for
// declaration bases and attribute type annotations.
func nameExpr(name string, line int) *ast.Python {
	return exprPython(&pyast.Name{Pos: at(line), ID: name, Ctx: pyast.CtxLoad}, line)
}

// tupleOrSingle collapses a one-element sequence to its element.
func tupleOrSingle(vals []pyast.Expr) pyast.Expr {
	if len(vals) > 1 {
		return &pyast.Tuple{
			Pos:  at(vals[0].Lineno()),
			Elts: vals,
			Ctx:  pyast.CtxLoad,
		}
	}

	return vals[0]
}

// foldTrailers applies postfix trailers to an atom left to right.
func foldTrailers(root pyast.Expr, trailers []trailer) pyast.Expr {
	for _, t := range trailers {
		switch t.kind {
		case trailerCall:
			root = &pyast.Call{
				Pos:      at(t.line),
				Func:     root,
				Args:     t.args.args,
				Keywords: t.args.keywords,
				StarArgs: t.args.starArgs,
				KwArgs:   t.args.kwArgs,
			}

		case trailerAttr:
			root = &pyast.Attribute{
				Pos:   at(t.line),
				Value: root,
				Attr:  t.name,
				Ctx:   pyast.CtxLoad,
			}

		case trailerSub:
			root = &pyast.Subscript{
				Pos:   at(t.line),
				Value: root,
				Slice: t.sub,
				Ctx:   pyast.CtxLoad,
			}
		}
	}

	return root
}

// foldBinOps left-folds a chain of same-precedence binary operations.
func foldBinOps(left pyast.Expr, rest []opRand) pyast.Expr {
	for _, r := range rest {
		left = &pyast.BinOp{Left: left, Op: r.op, Right: r.x}
	}

	return left
}

// splitArgs separates positional from keyword arguments in a mixed
// argument list.
func splitArgs(items []any) ([]pyast.Expr, []*pyast.Keyword) {
	var (
		args []pyast.Expr
		kws  []*pyast.Keyword
	)

	for _, it := range items {
		switch a := it.(type) {
		case *pyast.Keyword:
			kws = append(kws, a)
		case pyast.Expr:
			args = append(args, a)
		}
	}

	return args, kws
}

// compClauses folds trailing comprehension clauses into the generator
// list: each for-clause opens a new comprehension and each if-clause
// attaches to the most recent one.
func compClauses(first *pyast.Comprehension, rest []any) []*pyast.Comprehension {
	gens := []*pyast.Comprehension{first}

	for _, item := range rest {
		switch c := item.(type) {
		case *pyast.Comprehension:
			gens = append(gens, c)
		case pyast.Expr:
			last := gens[len(gens)-1]
			last.Ifs = append(last.Ifs, c)
		}
	}

	return gens
}

// storeTarget converts an expression to store context, translating target
// errors into positioned diagnostics.
func storeTarget(p *grammar.Prod, e pyast.Expr, line int) (pyast.Expr, error) {
	s, err := pyast.StoreContext(e)
	if err == nil {
		return s, nil
	}

	te := new(pyast.TargetError)
	if errors.As(err, &te) {
		errLine := te.Line
		if errLine == 0 {
			errLine = line
		}

		return nil, &TargetError{
			Filename:  p.Filename(),
			Construct: te.Construct,
			Line:      errLine,
		}
	}

	return nil, err
}

// keywordError builds an invalid keyword diagnostic, suggesting the
// closest expected keyword when the input resembles one.
func keywordError(
	file, got string,
	line int,
	expected ...string,
) *KeywordError {
	e := &KeywordError{
		Filename: file,
		Got:      got,
		Expected: expected,
		Line:     line,
	}

	if matches := fuzzy.Find(got, expected); len(matches) > 0 {
		e.Suggestion = expected[matches[0].Index]
	}

	return e
}

// buildAttrDecl validates the introducing keyword of an attribute
// declaration and assembles the node.
func buildAttrDecl(
	p *grammar.Prod,
	kw, name string,
	typ *ast.Python,
	def *ast.AttributeBinding,
	line int,
) (*ast.AttributeDeclaration, error) {
	if kw != "attr" && kw != "event" {
		return nil, keywordError(p.Filename(), kw, line, "attr", "event")
	}

	return &ast.AttributeDeclaration{
		Name:    name,
		Type:    typ,
		Default: def,
		IsEvent: kw == "event",
		Line:    line,
	}, nil
}

// evalNum converts a numeric literal to its int64 or float64 value.
func evalNum(p *grammar.Prod, lit string, line int) (any, error) {
	invalid := func() error {
		return &SyntaxError{
			Filename: p.Filename(),
			Line:     line,
			Message:  "invalid number literal " + strconv.Quote(lit),
		}
	}

	if len(lit) > 1 && lit[0] == '0' {
		var base int

		switch lit[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}

		if base != 0 {
			v, err := strconv.ParseInt(lit[2:], base, 64)
			if err != nil {
				return nil, invalid()
			}

			return v, nil
		}
	}

	if strings.ContainsAny(lit, ".eE") {
		v, err := strconv.ParseFloat(lit, 64)
		if err != nil {
			return nil, invalid()
		}

		return v, nil
	}

	v, err := strconv.ParseInt(lit, 10, 64)
	if err != nil {
		return nil, invalid()
	}

	return v, nil
}

// noArgs is the parameter list of a parameterless lambda.
func noArgs() *pyast.Arguments { return &pyast.Arguments{} }
