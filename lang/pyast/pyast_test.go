package pyast

import (
	"errors"
	"testing"
)

func name(id string) *Name { return &Name{ID: id} }

func TestStoreContext_RetagsTargets(t *testing.T) {
	tests := []struct {
		name string
		expr Expr
	}{
		{"name", name("x")},
		{"attribute", &Attribute{Value: name("a"), Attr: "b"}},
		{"subscript", &Subscript{Value: name("a"), Slice: &Index{Value: name("i")}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := StoreContext(tt.expr)
			if err != nil {
				t.Fatalf("StoreContext failed: %v", err)
			}

			var ctx Ctx

			switch n := out.(type) {
			case *Name:
				ctx = n.Ctx
			case *Attribute:
				ctx = n.Ctx
			case *Subscript:
				ctx = n.Ctx
			default:
				t.Fatalf("unexpected node %T", out)
			}

			if ctx != CtxStore {
				t.Errorf("expected CtxStore, got %v", ctx)
			}
		})
	}
}

func TestStoreContext_DoesNotMutateInput(t *testing.T) {
	in := name("x")

	out, err := StoreContext(in)
	if err != nil {
		t.Fatalf("StoreContext failed: %v", err)
	}

	if in.Ctx != CtxLoad {
		t.Error("expected input node to stay in CtxLoad")
	}
	if out.(*Name).Ctx != CtxStore {
		t.Error("expected output node in CtxStore")
	}
	if out == Expr(in) {
		t.Error("expected a copy, got the input node")
	}
}

func TestStoreContext_RecursesThroughSequences(t *testing.T) {
	in := &Tuple{Elts: []Expr{
		name("a"),
		&List{Elts: []Expr{name("b"), name("c")}},
	}}

	out, err := StoreContext(in)
	if err != nil {
		t.Fatalf("StoreContext failed: %v", err)
	}

	tup := out.(*Tuple)
	if tup.Ctx != CtxStore {
		t.Error("expected tuple in CtxStore")
	}
	if tup.Elts[0].(*Name).Ctx != CtxStore {
		t.Error("expected first element in CtxStore")
	}

	list := tup.Elts[1].(*List)
	if list.Ctx != CtxStore {
		t.Error("expected nested list in CtxStore")
	}
	for i, e := range list.Elts {
		if e.(*Name).Ctx != CtxStore {
			t.Errorf("expected list element %d in CtxStore", i)
		}
	}

	if in.Elts[1].(*List).Elts[0].(*Name).Ctx != CtxLoad {
		t.Error("expected nested input nodes untouched")
	}
}

func TestStoreContext_RejectsNonTargets(t *testing.T) {
	tests := []struct {
		name      string
		expr      Expr
		construct string
	}{
		{"lambda", &Lambda{Body: name("x")}, "lambda"},
		{"call", &Call{Func: name("f")}, "function call"},
		{"binop", &BinOp{Left: name("a"), Op: OpAdd, Right: name("b")}, "operator"},
		{"boolop", &BoolOp{Op: OpAnd, Values: []Expr{name("a")}}, "operator"},
		{"unaryop", &UnaryOp{Op: OpUSub, Operand: name("a")}, "operator"},
		{"generator", &GeneratorExp{Elt: name("x")}, "generator expression"},
		{"list comp", &ListComp{Elt: name("x")}, "list comprehension"},
		{"set comp", &SetComp{Elt: name("x")}, "set comprehension"},
		{"dict comp", &DictComp{Key: name("k"), Value: name("v")}, "dict comprehension"},
		{"number", &Num{Value: int64(1)}, "literal"},
		{"string", &Str{Value: "s"}, "literal"},
		{"dict", &Dict{}, "literal"},
		{"set", &Set{}, "literal"},
		{"comparison", &Compare{Left: name("a")}, "comparison"},
		{"conditional", &IfExp{Test: name("t"), Body: name("b"), OrElse: name("c")}, "conditional expression"},
		{"empty tuple", &Tuple{}, "()"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := StoreContext(tt.expr)
			if err == nil {
				t.Fatal("expected TargetError")
			}

			var target *TargetError
			if !errors.As(err, &target) {
				t.Fatalf("expected *TargetError, got %T", err)
			}

			if target.Construct != tt.construct {
				t.Errorf("expected construct %q, got %q",
					tt.construct, target.Construct)
			}
		})
	}
}

func TestStoreContext_RejectsNestedNonTarget(t *testing.T) {
	in := &Tuple{Elts: []Expr{name("a"), &Num{Value: int64(1)}}}

	_, err := StoreContext(in)

	var target *TargetError
	if !errors.As(err, &target) {
		t.Fatalf("expected *TargetError, got %v", err)
	}

	if target.Construct != "literal" {
		t.Errorf("expected construct literal, got %q", target.Construct)
	}
}

func TestTargetError_Error(t *testing.T) {
	err := &TargetError{Construct: "function call", Line: 3}

	if err.Error() != "can't assign to function call" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestFixLines_InheritsFromParent(t *testing.T) {
	mod := &Module{
		Pos: Pos{Line: 2},
		Body: []Stmt{
			&Assign{
				Pos:     Pos{Line: 5},
				Targets: []Expr{name("x")},
				Value:   &BinOp{Left: name("a"), Op: OpAdd, Right: name("b")},
			},
		},
	}

	FixLines(mod, 1)

	assign := mod.Body[0].(*Assign)
	if assign.Line != 5 {
		t.Errorf("expected assigned line preserved, got %d", assign.Line)
	}

	if got := assign.Targets[0].(*Name).Line; got != 5 {
		t.Errorf("expected target to inherit line 5, got %d", got)
	}

	binop := assign.Value.(*BinOp)
	if binop.Line != 5 || binop.Left.(*Name).Line != 5 {
		t.Error("expected value subtree to inherit line 5")
	}
}

func TestFixLines_PreservesExistingLines(t *testing.T) {
	expr := &Expression{Body: &Num{Pos: Pos{Line: 9}, Value: int64(1)}}

	FixLines(expr, 4)

	if expr.Line != 4 {
		t.Errorf("expected wrapper to take line 4, got %d", expr.Line)
	}
	if expr.Body.(*Num).Line != 9 {
		t.Errorf("expected literal to keep line 9, got %d",
			expr.Body.(*Num).Line)
	}
}

func TestFixLines_NilSafe(t *testing.T) {
	FixLines(nil, 1)
	FixLines(&Slice{}, 2) // nil Lower, Upper, Step
	FixLines(&Call{Func: name("f")}, 3)
}

func TestCtx_String(t *testing.T) {
	tests := []struct {
		ctx      Ctx
		expected string
	}{
		{CtxLoad, "Load"},
		{CtxStore, "Store"},
		{CtxParam, "Param"},
		{Ctx(9), "Unknown"},
	}

	for _, tt := range tests {
		if got := tt.ctx.String(); got != tt.expected {
			t.Errorf("expected %q, got %q", tt.expected, got)
		}
	}
}

func TestDump_TagsNodes(t *testing.T) {
	n := &BinOp{
		Pos:   Pos{Line: 3},
		Left:  &Num{Pos: Pos{Line: 3}, Value: int64(1)},
		Op:    OpMult,
		Right: name("x"),
	}

	m, ok := Dump(n).(map[string]any)
	if !ok {
		t.Fatal("expected map from Dump")
	}

	if m["node"] != "BinOp" || m["op"] != "Mult" || m["line"] != 3 {
		t.Errorf("unexpected dump %v", m)
	}

	left := m["left"].(map[string]any)
	if left["node"] != "Num" || left["value"] != int64(1) {
		t.Errorf("unexpected left %v", left)
	}

	right := m["right"].(map[string]any)
	if right["node"] != "Name" || right["id"] != "x" || right["ctx"] != "Load" {
		t.Errorf("unexpected right %v", right)
	}
	if _, ok := right["line"]; ok {
		t.Error("expected zero line omitted")
	}
}

func TestDump_Nil(t *testing.T) {
	if Dump(nil) != nil {
		t.Error("expected nil for nil node")
	}
}

func TestDump_ImportAliases(t *testing.T) {
	n := &Import{
		Pos: Pos{Line: 1},
		Names: []Alias{
			{Name: "os"},
			{Name: "sys", AsName: "system"},
		},
	}

	m := Dump(n).(map[string]any)
	names := m["names"].([]any)

	first := names[0].(map[string]any)
	if first["name"] != "os" {
		t.Errorf("unexpected alias %v", first)
	}
	if _, ok := first["asname"]; ok {
		t.Error("expected empty asname omitted")
	}

	second := names[1].(map[string]any)
	if second["asname"] != "system" {
		t.Errorf("unexpected alias %v", second)
	}
}
