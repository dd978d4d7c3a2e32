package parser

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/deepankarsharma/enaml/lang/ast"
	"github.com/deepankarsharma/enaml/lang/grammar"
	"github.com/deepankarsharma/enaml/lang/pyast"
)

func parse(t *testing.T, src string) *ast.Module {
	t.Helper()

	mod, err := Make().Parse(context.Background(), []byte(src), "test.enaml")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	return mod
}

func parseFail(t *testing.T, src string) error {
	t.Helper()

	_, err := Make().Parse(context.Background(), []byte(src), "test.enaml")
	if err == nil {
		t.Fatal("expected parse error, got none")
	}

	return err
}

func firstDecl(t *testing.T, mod *ast.Module) *ast.Declaration {
	t.Helper()

	if len(mod.Body) == 0 {
		t.Fatal("expected nonempty module body")
	}

	decl, ok := mod.Body[0].(*ast.Declaration)
	if !ok {
		t.Fatalf("expected *ast.Declaration, got %T", mod.Body[0])
	}

	return decl
}

// exprOf parses one binding expression and returns its pyast body.
func exprOf(t *testing.T, src string) pyast.Expr {
	t.Helper()

	mod := parse(t, "Main(Window):\n    value = "+src+"\n")
	decl := firstDecl(t, mod)

	binding, ok := decl.Body[0].(*ast.AttributeBinding)
	if !ok {
		t.Fatalf("expected *ast.AttributeBinding, got %T", decl.Body[0])
	}

	wrap, ok := binding.Binding.Expr.Ast.(*pyast.Expression)
	if !ok {
		t.Fatalf("expected *pyast.Expression, got %T", binding.Binding.Expr.Ast)
	}

	return wrap.Body
}

// stmtsOf parses one exec binding and returns its statement list.
func stmtsOf(t *testing.T, binding string) []pyast.Stmt {
	t.Helper()

	mod := parse(t, "Main(Window):\n    "+binding+"\n")
	decl := firstDecl(t, mod)

	bound := decl.Body[0].(*ast.AttributeBinding).Binding
	if bound.Op != ast.OpExec {
		t.Fatalf("expected exec binding, got %v", bound.Op)
	}

	return bound.Expr.Ast.(*pyast.Module).Body
}

// ---- module structure

func TestParse_EmptyModule(t *testing.T) {
	for _, src := range []string{"", "\n", "# only a comment\n"} {
		mod := parse(t, src)
		if len(mod.Body) != 0 {
			t.Errorf("source %q: expected empty body, got %d items",
				src, len(mod.Body))
		}
	}
}

func TestParse_ModuleDocstring(t *testing.T) {
	mod := parse(t, "'''module doc'''\n")
	if mod.Doc != "module doc" {
		t.Errorf("expected docstring, got %q", mod.Doc)
	}

	mod = parse(t, "'''doc'''\nimport os\n")
	if mod.Doc != "doc" || len(mod.Body) != 1 {
		t.Errorf("expected docstring plus one item, got %q and %d items",
			mod.Doc, len(mod.Body))
	}
}

func TestParse_Declaration(t *testing.T) {
	mod := parse(t, "Main(Window):\n    pass\n")
	decl := firstDecl(t, mod)

	if decl.Name != "Main" {
		t.Errorf("expected name Main, got %q", decl.Name)
	}
	if decl.Line != 1 {
		t.Errorf("expected line 1, got %d", decl.Line)
	}
	if len(decl.Body) != 0 {
		t.Errorf("expected pass to contribute no items, got %d", len(decl.Body))
	}

	base := decl.Base.Ast.(*pyast.Expression).Body.(*pyast.Name)
	if base.ID != "Window" {
		t.Errorf("expected base Window, got %q", base.ID)
	}
}

func TestParse_DeclarationDocAndIdentifier(t *testing.T) {
	src := "Main(Window):\n" +
		"    '''a main window'''\n" +
		"    id: main\n" +
		"    pass\n"

	decl := firstDecl(t, parse(t, src))

	if decl.Doc != "a main window" {
		t.Errorf("expected docstring, got %q", decl.Doc)
	}
	if decl.Identifier != "main" {
		t.Errorf("expected identifier main, got %q", decl.Identifier)
	}
}

func TestParse_AttributeDeclarations(t *testing.T) {
	src := "Main(Window):\n" +
		"    attr plain\n" +
		"    attr typed: unicode\n" +
		"    attr bound = 1\n" +
		"    attr full: int = 2\n" +
		"    event clicked\n"

	decl := firstDecl(t, parse(t, src))

	if len(decl.Body) != 5 {
		t.Fatalf("expected 5 items, got %d", len(decl.Body))
	}

	plain := decl.Body[0].(*ast.AttributeDeclaration)
	if plain.Name != "plain" || plain.Type != nil ||
		plain.Default != nil || plain.IsEvent {
		t.Errorf("unexpected plain attr %+v", plain)
	}

	typed := decl.Body[1].(*ast.AttributeDeclaration)
	typeName := typed.Type.Ast.(*pyast.Expression).Body.(*pyast.Name)
	if typeName.ID != "unicode" {
		t.Errorf("expected type unicode, got %q", typeName.ID)
	}

	bound := decl.Body[2].(*ast.AttributeDeclaration)
	if bound.Default == nil || bound.Default.Name != "bound" {
		t.Errorf("unexpected default binding %+v", bound.Default)
	}
	if bound.Default.Binding.Op != ast.OpDefault {
		t.Errorf("expected = binding, got %v", bound.Default.Binding.Op)
	}

	full := decl.Body[3].(*ast.AttributeDeclaration)
	if full.Type == nil || full.Default == nil {
		t.Errorf("expected type and default on full attr")
	}

	event := decl.Body[4].(*ast.AttributeDeclaration)
	if !event.IsEvent || event.Name != "clicked" {
		t.Errorf("unexpected event %+v", event)
	}
}

func TestParse_NestedInstantiations(t *testing.T) {
	src := "Main(Window):\n" +
		"    Container:\n" +
		"        id: box\n" +
		"        Label:\n" +
		"            text = 'hi'\n"

	decl := firstDecl(t, parse(t, src))

	container := decl.Body[0].(*ast.Instantiation)
	if container.Name != "Container" || container.Identifier != "box" {
		t.Errorf("unexpected instantiation %+v", container)
	}
	if container.Line != 2 {
		t.Errorf("expected line 2, got %d", container.Line)
	}

	label := container.Body[0].(*ast.Instantiation)
	if label.Name != "Label" {
		t.Errorf("expected nested Label, got %q", label.Name)
	}

	binding := label.Body[0].(*ast.AttributeBinding)
	if binding.Name != "text" || binding.Line != 5 {
		t.Errorf("unexpected binding %+v", binding)
	}
}

func TestParse_BindingOperators(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		expected ast.BindingOp
	}{
		{"default", "value = 1", ast.OpDefault},
		{"delegate", "value := other", ast.OpDelegate},
		{"subscribe", "value << other", ast.OpSubscribe},
		{"update", "value >> other", ast.OpUpdate},
		{"exec", "value :: pass", ast.OpExec},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mod := parse(t, "Main(Window):\n    "+tt.src+"\n")
			decl := firstDecl(t, mod)

			binding := decl.Body[0].(*ast.AttributeBinding)
			if binding.Binding.Op != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, binding.Binding.Op)
			}
		})
	}
}

func TestParse_ExecBindingSuite(t *testing.T) {
	src := "Main(Window):\n" +
		"    clicked ::\n" +
		"        x = event.value\n" +
		"        print x\n"

	stmts := parse(t, src).Body[0].(*ast.Declaration).
		Body[0].(*ast.AttributeBinding).Binding.Expr.Ast.(*pyast.Module).Body

	if len(stmts) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(stmts))
	}

	assign := stmts[0].(*pyast.Assign)
	if assign.Targets[0].(*pyast.Name).Ctx != pyast.CtxStore {
		t.Error("expected assignment target in CtxStore")
	}
	if assign.Line != 3 {
		t.Errorf("expected assign on line 3, got %d", assign.Line)
	}

	if _, ok := stmts[1].(*pyast.Print); !ok {
		t.Errorf("expected print statement, got %T", stmts[1])
	}
}

func TestParse_ExecBindingSingleLine(t *testing.T) {
	stmts := stmtsOf(t, "clicked :: count = count + 1")

	assign := stmts[0].(*pyast.Assign)
	if assign.Targets[0].(*pyast.Name).ID != "count" {
		t.Errorf("unexpected target %+v", assign.Targets[0])
	}

	if _, ok := assign.Value.(*pyast.BinOp); !ok {
		t.Errorf("expected binary op value, got %T", assign.Value)
	}
}

func TestParse_TestlistAssignment(t *testing.T) {
	stmts := stmtsOf(t, "clicked :: a, b = 1, 2")

	assign := stmts[0].(*pyast.Assign)
	if len(assign.Targets) != 2 {
		t.Fatalf("expected 2 targets, got %d", len(assign.Targets))
	}

	for i, target := range assign.Targets {
		if target.(*pyast.Name).Ctx != pyast.CtxStore {
			t.Errorf("target %d not in CtxStore", i)
		}
	}

	value := assign.Value.(*pyast.Tuple)
	if len(value.Elts) != 2 || value.Ctx != pyast.CtxLoad {
		t.Errorf("unexpected value %+v", assign.Value)
	}
}

func TestParse_ChainedAssignmentRejected(t *testing.T) {
	// Statements carry at most one =, matching the testlist grammar.
	err := parseFail(t, "Main(Window):\n    clicked :: a = b = 1\n")

	var syntax *SyntaxError
	if !errors.As(err, &syntax) {
		t.Fatalf("expected *SyntaxError, got %T", err)
	}
}

// ---- imports

func TestParse_Imports(t *testing.T) {
	mod := parse(t, "import os.path as p, sys\n")

	imp := mod.Body[0].(*ast.Python).Ast.(*pyast.Module).Body[0].(*pyast.Import)
	if len(imp.Names) != 2 {
		t.Fatalf("expected 2 aliases, got %d", len(imp.Names))
	}

	if imp.Names[0].Name != "os.path" || imp.Names[0].AsName != "p" {
		t.Errorf("unexpected alias %+v", imp.Names[0])
	}
	if imp.Names[1].Name != "sys" || imp.Names[1].AsName != "" {
		t.Errorf("unexpected alias %+v", imp.Names[1])
	}
}

func TestParse_ImportFrom(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		module  string
		level   int
		aliases []pyast.Alias
	}{
		{
			"plain", "from a.b import c as d, e\n", "a.b", 0,
			[]pyast.Alias{{Name: "c", AsName: "d"}, {Name: "e"}},
		},
		{
			"parenthesized", "from a import (b, c)\n", "a", 0,
			[]pyast.Alias{{Name: "b"}, {Name: "c"}},
		},
		{
			"star", "from widgets import *\n", "widgets", 0,
			[]pyast.Alias{{Name: "*"}},
		},
		{
			"relative", "from ..pkg import mod\n", "pkg", 2,
			[]pyast.Alias{{Name: "mod"}},
		},
		{
			"dots only", "from . import mod\n", "", 1,
			[]pyast.Alias{{Name: "mod"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mod := parse(t, tt.src)

			imp := mod.Body[0].(*ast.Python).
				Ast.(*pyast.Module).Body[0].(*pyast.ImportFrom)

			if imp.Module != tt.module {
				t.Errorf("expected module %q, got %q", tt.module, imp.Module)
			}
			if imp.Level != tt.level {
				t.Errorf("expected level %d, got %d", tt.level, imp.Level)
			}
			if len(imp.Names) != len(tt.aliases) {
				t.Fatalf("expected %d aliases, got %d",
					len(tt.aliases), len(imp.Names))
			}

			for i, a := range tt.aliases {
				if imp.Names[i] != a {
					t.Errorf("alias %d: expected %+v, got %+v",
						i, a, imp.Names[i])
				}
			}
		})
	}
}

func TestParse_ImportLine(t *testing.T) {
	mod := parse(t, "\nimport os\n")

	py := mod.Body[0].(*ast.Python)
	if py.Line != 2 {
		t.Errorf("expected import on line 2, got %d", py.Line)
	}
}

// ---- expressions

func TestParse_Literals(t *testing.T) {
	if v := exprOf(t, "42").(*pyast.Num).Value; v != int64(42) {
		t.Errorf("expected int64 42, got %v", v)
	}
	if v := exprOf(t, "3.5").(*pyast.Num).Value; v != 3.5 {
		t.Errorf("expected 3.5, got %v", v)
	}
	if v := exprOf(t, "0x1F").(*pyast.Num).Value; v != int64(31) {
		t.Errorf("expected int64 31, got %v", v)
	}
	if v := exprOf(t, "'hello'").(*pyast.Str).Value; v != "hello" {
		t.Errorf("expected hello, got %q", v)
	}
	if v := exprOf(t, "'a' 'b' 'c'").(*pyast.Str).Value; v != "abc" {
		t.Errorf("expected concatenated abc, got %q", v)
	}
}

func TestParse_Precedence(t *testing.T) {
	e := exprOf(t, "1 + 2 * 3").(*pyast.BinOp)
	if e.Op != pyast.OpAdd {
		t.Fatalf("expected Add at root, got %v", e.Op)
	}

	right := e.Right.(*pyast.BinOp)
	if right.Op != pyast.OpMult {
		t.Errorf("expected Mult on right, got %v", right.Op)
	}
}

func TestParse_LeftAssociativity(t *testing.T) {
	e := exprOf(t, "1 - 2 - 3").(*pyast.BinOp)
	if e.Op != pyast.OpSub {
		t.Fatalf("expected Sub at root, got %v", e.Op)
	}

	left := e.Left.(*pyast.BinOp)
	if left.Op != pyast.OpSub || left.Left.(*pyast.Num).Value != int64(1) {
		t.Error("expected (1-2) on the left")
	}
	if e.Right.(*pyast.Num).Value != int64(3) {
		t.Error("expected 3 on the right")
	}
}

func TestParse_PowerRightAssociative(t *testing.T) {
	e := exprOf(t, "2 ** 3 ** 2").(*pyast.BinOp)
	if e.Op != pyast.OpPow {
		t.Fatalf("expected Pow at root, got %v", e.Op)
	}

	if e.Left.(*pyast.Num).Value != int64(2) {
		t.Error("expected 2 on the left")
	}

	right := e.Right.(*pyast.BinOp)
	if right.Op != pyast.OpPow {
		t.Errorf("expected nested Pow on right, got %v", right.Op)
	}
}

func TestParse_BitwiseAndShift(t *testing.T) {
	tests := []struct {
		src string
		op  pyast.Operator
	}{
		{"a | b", pyast.OpBitOr},
		{"a ^ b", pyast.OpBitXor},
		{"a & b", pyast.OpBitAnd},
		{"a << b", pyast.OpLShift},
		{"a >> b", pyast.OpRShift},
		{"a // b", pyast.OpFloorDiv},
		{"a % b", pyast.OpMod},
		{"a / b", pyast.OpDiv},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			e := exprOf(t, tt.src).(*pyast.BinOp)
			if e.Op != tt.op {
				t.Errorf("expected %v, got %v", tt.op, e.Op)
			}
		})
	}
}

func TestParse_UnaryOperators(t *testing.T) {
	tests := []struct {
		src string
		op  pyast.UnaryOpKind
	}{
		{"-x", pyast.OpUSub},
		{"+x", pyast.OpUAdd},
		{"~x", pyast.OpInvert},
		{"not x", pyast.OpNot},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			e := exprOf(t, tt.src).(*pyast.UnaryOp)
			if e.Op != tt.op {
				t.Errorf("expected %v, got %v", tt.op, e.Op)
			}
		})
	}
}

func TestParse_BoolOps(t *testing.T) {
	e := exprOf(t, "a and b and c").(*pyast.BoolOp)
	if e.Op != pyast.OpAnd || len(e.Values) != 3 {
		t.Errorf("expected 3-way And, got %v with %d values", e.Op, len(e.Values))
	}

	e = exprOf(t, "a or b").(*pyast.BoolOp)
	if e.Op != pyast.OpOr || len(e.Values) != 2 {
		t.Errorf("expected 2-way Or, got %v with %d values", e.Op, len(e.Values))
	}
}

func TestParse_ComparisonChain(t *testing.T) {
	e := exprOf(t, "1 < x <= 10").(*pyast.Compare)

	if len(e.Ops) != 2 || e.Ops[0] != pyast.OpLt || e.Ops[1] != pyast.OpLtE {
		t.Errorf("unexpected ops %v", e.Ops)
	}
	if len(e.Comparators) != 2 {
		t.Errorf("expected 2 comparators, got %d", len(e.Comparators))
	}
}

func TestParse_ComparisonOperators(t *testing.T) {
	tests := []struct {
		src string
		op  pyast.CmpOp
	}{
		{"a == b", pyast.OpEq},
		{"a != b", pyast.OpNotEq},
		{"a < b", pyast.OpLt},
		{"a > b", pyast.OpGt},
		{"a >= b", pyast.OpGtE},
		{"a is b", pyast.OpIs},
		{"a is not b", pyast.OpIsNot},
		{"a in b", pyast.OpIn},
		{"a not in b", pyast.OpNotIn},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			e := exprOf(t, tt.src).(*pyast.Compare)
			if e.Ops[0] != tt.op {
				t.Errorf("expected %v, got %v", tt.op, e.Ops[0])
			}
		})
	}
}

func TestParse_ConditionalExpression(t *testing.T) {
	e := exprOf(t, "a if ok else b").(*pyast.IfExp)

	if e.Test.(*pyast.Name).ID != "ok" {
		t.Errorf("unexpected test %+v", e.Test)
	}
	if e.Body.(*pyast.Name).ID != "a" || e.OrElse.(*pyast.Name).ID != "b" {
		t.Error("unexpected branches")
	}
}

func TestParse_Displays(t *testing.T) {
	tup := exprOf(t, "(1, 2)").(*pyast.Tuple)
	if len(tup.Elts) != 2 {
		t.Errorf("expected 2 tuple elements, got %d", len(tup.Elts))
	}

	if _, ok := exprOf(t, "(1)").(*pyast.Num); !ok {
		t.Error("expected parenthesized scalar to collapse")
	}

	// Bare tuples are statement territory; a binding takes a single test.
	stmt := stmtsOf(t, "clicked :: 1, 2, 3")[0].(*pyast.ExprStmt)
	if bare := stmt.Value.(*pyast.Tuple); len(bare.Elts) != 3 {
		t.Errorf("expected bare tuple of 3, got %d", len(bare.Elts))
	}

	parseFail(t, "Main(Window):\n    value = 1, 2, 3\n")

	list := exprOf(t, "[1, 2]").(*pyast.List)
	if len(list.Elts) != 2 {
		t.Errorf("expected 2 list elements, got %d", len(list.Elts))
	}

	if empty := exprOf(t, "[]").(*pyast.List); len(empty.Elts) != 0 {
		t.Error("expected empty list")
	}

	dict := exprOf(t, "{'a': 1, 'b': 2}").(*pyast.Dict)
	if len(dict.Keys) != 2 || len(dict.Values) != 2 {
		t.Error("expected 2 dict entries")
	}

	if empty := exprOf(t, "{}").(*pyast.Dict); len(empty.Keys) != 0 {
		t.Error("expected empty dict")
	}

	set := exprOf(t, "{1, 2}").(*pyast.Set)
	if len(set.Elts) != 2 {
		t.Errorf("expected 2 set elements, got %d", len(set.Elts))
	}
}

func TestParse_Trailers(t *testing.T) {
	attr := exprOf(t, "a.b.c").(*pyast.Attribute)
	if attr.Attr != "c" {
		t.Errorf("expected outer attr c, got %q", attr.Attr)
	}

	inner := attr.Value.(*pyast.Attribute)
	if inner.Attr != "b" || inner.Value.(*pyast.Name).ID != "a" {
		t.Error("unexpected inner attribute chain")
	}

	call := exprOf(t, "f(1, x=2)").(*pyast.Call)
	if len(call.Args) != 1 || len(call.Keywords) != 1 {
		t.Fatalf("expected 1 positional and 1 keyword, got %d and %d",
			len(call.Args), len(call.Keywords))
	}
	if call.Keywords[0].Arg != "x" {
		t.Errorf("unexpected keyword %q", call.Keywords[0].Arg)
	}

	starred := exprOf(t, "f(*args, **kwargs)").(*pyast.Call)
	if starred.StarArgs == nil || starred.KwArgs == nil {
		t.Error("expected star and double-star arguments")
	}

	sub := exprOf(t, "a[1]").(*pyast.Subscript)
	idx := sub.Slice.(*pyast.Index)
	if idx.Value.(*pyast.Num).Value != int64(1) {
		t.Errorf("unexpected index %+v", idx.Value)
	}
}

func TestParse_Slices(t *testing.T) {
	s := exprOf(t, "a[1:2]").(*pyast.Subscript).Slice.(*pyast.Slice)
	if s.Lower.(*pyast.Num).Value != int64(1) {
		t.Errorf("unexpected lower %+v", s.Lower)
	}
	if s.Upper.(*pyast.Num).Value != int64(2) {
		t.Errorf("unexpected upper %+v", s.Upper)
	}
	if s.Step != nil {
		t.Errorf("expected nil step, got %+v", s.Step)
	}

	full := exprOf(t, "a[1:10:2]").(*pyast.Subscript).Slice.(*pyast.Slice)
	if full.Step.(*pyast.Num).Value != int64(2) {
		t.Errorf("unexpected step %+v", full.Step)
	}

	open := exprOf(t, "a[:]").(*pyast.Subscript).Slice.(*pyast.Slice)
	if open.Lower != nil || open.Upper != nil || open.Step != nil {
		t.Error("expected fully open slice")
	}

	stepOnly := exprOf(t, "a[::2]").(*pyast.Subscript).Slice.(*pyast.Slice)
	if stepOnly.Lower != nil || stepOnly.Upper != nil {
		t.Error("expected open bounds")
	}
	if stepOnly.Step.(*pyast.Num).Value != int64(2) {
		t.Errorf("unexpected step %+v", stepOnly.Step)
	}

	ell := exprOf(t, "a[...]").(*pyast.Subscript)
	if _, ok := ell.Slice.(*pyast.EllipsisIndex); !ok {
		t.Errorf("expected ellipsis index, got %T", ell.Slice)
	}

	ext := exprOf(t, "a[1:2, 3]").(*pyast.Subscript).Slice.(*pyast.ExtSlice)
	if len(ext.Dims) != 2 {
		t.Fatalf("expected 2 dimensions, got %d", len(ext.Dims))
	}
}

func TestParse_Lambdas(t *testing.T) {
	lam := exprOf(t, "lambda x, y=1: x + y").(*pyast.Lambda)

	args := lam.Args
	if len(args.Args) != 2 || len(args.Defaults) != 1 {
		t.Fatalf("expected 2 params with 1 default, got %d and %d",
			len(args.Args), len(args.Defaults))
	}

	if args.Args[0].(*pyast.Name).Ctx != pyast.CtxParam {
		t.Error("expected parameter in CtxParam")
	}

	varargs := exprOf(t, "lambda *a, **k: 1").(*pyast.Lambda)
	if varargs.Args.Vararg != "a" || varargs.Args.Kwarg != "k" {
		t.Errorf("unexpected varargs %+v", varargs.Args)
	}

	bare := exprOf(t, "lambda: 0").(*pyast.Lambda)
	if len(bare.Args.Args) != 0 {
		t.Error("expected parameterless lambda")
	}
}

func TestParse_Comprehensions(t *testing.T) {
	lc := exprOf(t, "[x * 2 for x in items if x > 0]").(*pyast.ListComp)
	if len(lc.Generators) != 1 {
		t.Fatalf("expected 1 generator, got %d", len(lc.Generators))
	}

	gen := lc.Generators[0]
	if gen.Target.(*pyast.Name).Ctx != pyast.CtxStore {
		t.Error("expected comprehension target in CtxStore")
	}
	if len(gen.Ifs) != 1 {
		t.Errorf("expected 1 guard, got %d", len(gen.Ifs))
	}

	nested := exprOf(t, "[x for x in a for y in b]").(*pyast.ListComp)
	if len(nested.Generators) != 2 {
		t.Errorf("expected 2 generators, got %d", len(nested.Generators))
	}

	if _, ok := exprOf(t, "{x for x in a}").(*pyast.SetComp); !ok {
		t.Error("expected set comprehension")
	}

	dc := exprOf(t, "{k: v for k, v in pairs}").(*pyast.DictComp)
	target := dc.Generators[0].Target.(*pyast.Tuple)
	if target.Ctx != pyast.CtxStore || len(target.Elts) != 2 {
		t.Error("expected tuple target in CtxStore")
	}

	call := exprOf(t, "sum(x for x in items)").(*pyast.Call)
	if _, ok := call.Args[0].(*pyast.GeneratorExp); !ok {
		t.Errorf("expected generator argument, got %T", call.Args[0])
	}
}

// ---- raw blocks

func TestParse_RawBlock(t *testing.T) {
	src := "import os\n" +
		"\n" +
		":: python ::\n" +
		"x = 1\n" +
		"y = x + 1\n" +
		":: end ::\n"

	mod := parse(t, src)
	if len(mod.Body) != 2 {
		t.Fatalf("expected 2 items, got %d", len(mod.Body))
	}

	py := mod.Body[1].(*ast.Python)
	if py.Line != 3 {
		t.Errorf("expected block at line 3, got %d", py.Line)
	}

	block := py.Ast.(*pyast.Module)
	if len(block.Body) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(block.Body))
	}

	// Statement lines are file lines, not block-relative lines.
	if got := block.Body[0].(*pyast.Assign).Line; got != 4 {
		t.Errorf("expected first assign on line 4, got %d", got)
	}
	if got := block.Body[1].(*pyast.Assign).Line; got != 5 {
		t.Errorf("expected second assign on line 5, got %d", got)
	}
}

func TestParse_RawBlockSyntaxError(t *testing.T) {
	src := ":: python ::\n" +
		"x = 1\n" +
		"lambda\n" +
		":: end ::\n"

	err := parseFail(t, src)

	var embedded *EmbeddedError
	if !errors.As(err, &embedded) {
		t.Fatalf("expected *EmbeddedError, got %T", err)
	}

	if embedded.Line != 3 {
		t.Errorf("expected error at file line 3, got %d", embedded.Line)
	}
	if !strings.Contains(embedded.Error(), "test.enaml:3") {
		t.Errorf("expected positioned message, got %q", embedded.Error())
	}
}

// ---- diagnostics

func TestParse_SyntaxError(t *testing.T) {
	err := parseFail(t, "Main(Window)\n")

	var syntax *SyntaxError
	if !errors.As(err, &syntax) {
		t.Fatalf("expected *SyntaxError, got %T", err)
	}

	if syntax.Message != "invalid syntax" {
		t.Errorf("unexpected message %q", syntax.Message)
	}
	if syntax.Filename != "test.enaml" || syntax.Line != 1 {
		t.Errorf("unexpected position %s:%d", syntax.Filename, syntax.Line)
	}
}

func TestParse_KeywordErrorWithSuggestion(t *testing.T) {
	err := parseFail(t, "Main(Window):\n    atr title\n")

	var keyword *KeywordError
	if !errors.As(err, &keyword) {
		t.Fatalf("expected *KeywordError, got %T", err)
	}

	if keyword.Got != "atr" {
		t.Errorf("expected got atr, got %q", keyword.Got)
	}
	if keyword.Suggestion != "attr" {
		t.Errorf("expected suggestion attr, got %q", keyword.Suggestion)
	}
	if keyword.Line != 2 {
		t.Errorf("expected line 2, got %d", keyword.Line)
	}
	if !strings.Contains(keyword.Error(), "did you mean 'attr'?") {
		t.Errorf("expected suggestion in message, got %q", keyword.Error())
	}
}

func TestParse_IdentifierKeywordError(t *testing.T) {
	err := parseFail(t, "Main(Window):\n    ident: main\n")

	var keyword *KeywordError
	if !errors.As(err, &keyword) {
		t.Fatalf("expected *KeywordError, got %T", err)
	}

	if len(keyword.Expected) != 1 || keyword.Expected[0] != "id" {
		t.Errorf("expected keyword id, got %v", keyword.Expected)
	}
}

func TestParse_TargetErrors(t *testing.T) {
	tests := []struct {
		name      string
		src       string
		construct string
	}{
		{"literal", "clicked :: 1 = x", "literal"},
		{"call", "clicked :: f() = x", "function call"},
		{"operator", "clicked :: a + b = x", "operator"},
		{"comprehension target", "value = [x for x + 1 in items]", "operator"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := parseFail(t, "Main(Window):\n    "+tt.src+"\n")

			var target *TargetError
			if !errors.As(err, &target) {
				t.Fatalf("expected *TargetError, got %T: %v", err, err)
			}

			if target.Construct != tt.construct {
				t.Errorf("expected construct %q, got %q",
					tt.construct, target.Construct)
			}
		})
	}
}

func TestParse_KeywordArgumentMustBeName(t *testing.T) {
	err := parseFail(t, "Main(Window):\n    value = f(a.b=1)\n")

	var syntax *SyntaxError
	if !errors.As(err, &syntax) {
		t.Fatalf("expected *SyntaxError, got %T", err)
	}

	if syntax.Message != "keyword argument must be a name" {
		t.Errorf("unexpected message %q", syntax.Message)
	}
}

func TestParse_LambdaDefaultOrder(t *testing.T) {
	tests := []struct {
		name   string
		lambda string
		ok     bool
	}{
		{"all defaulted", "lambda x=1, y=2: x", true},
		{"defaults trail plain params", "lambda x, y=1: x", true},
		{"plain after defaulted", "lambda x=1, y: x", false},
		{"plain after defaulted then vararg", "lambda x=1, y, *a: x", false},
		{"plain after defaulted then kwarg", "lambda x=1, y, **k: x", false},
		{"plain between defaults", "lambda x, y=1, z: x", false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			src := "Main(Window):\n    value = " + test.lambda + "\n"

			if test.ok {
				fn := exprOf(t, test.lambda).(*pyast.Lambda)
				if len(fn.Args.Args) != 2 || len(fn.Args.Defaults) == 0 {
					t.Errorf("unexpected arguments %+v", fn.Args)
				}

				return
			}

			err := parseFail(t, src)

			var syntax *SyntaxError
			if !errors.As(err, &syntax) {
				t.Fatalf("expected *SyntaxError, got %T", err)
			}

			if syntax.Message != "non-default argument follows default argument" {
				t.Errorf("unexpected message %q", syntax.Message)
			}
		})
	}
}

func TestParse_LexicalErrorPassesThrough(t *testing.T) {
	err := parseFail(t, "Main(Window):\n    value = 'open\n")

	if !strings.Contains(err.Error(), "unterminated string") {
		t.Errorf("expected lexical error, got %v", err)
	}
}

// ---- configuration

func TestParser_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Make().Parse(ctx, []byte("import os\n"), "test.enaml")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestParser_WithTableCache(t *testing.T) {
	dir := t.TempDir()
	p := Make(WithTableCache(grammar.DirCache{Dir: dir}))

	src := ":: python ::\npass\n:: end ::\n"

	if _, err := p.Parse(context.Background(), []byte(src), "test.enaml"); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	// Both start symbols were exercised, so both tables are cached.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Errorf("expected 2 cached tables, found %d", len(entries))
	}

	// A second parser over the same directory must load, not rebuild.
	mod, err := Make(WithTableCache(grammar.DirCache{Dir: dir})).
		Parse(context.Background(), []byte(src), "test.enaml")
	if err != nil {
		t.Fatalf("cached Parse failed: %v", err)
	}

	if len(mod.Body) != 1 {
		t.Errorf("expected 1 item, got %d", len(mod.Body))
	}
}

func TestRules_SharedProductions(t *testing.T) {
	// Rules returns one shared slice; callers must never see differing
	// copies, or cached tables would not line up with the actions.
	a, b := Rules(), Rules()

	if len(a) == 0 {
		t.Fatal("expected nonempty rule set")
	}
	if &a[0] != &b[0] {
		t.Error("expected Rules to return the shared slice")
	}
}
