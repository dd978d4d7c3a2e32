package ast

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/deepankarsharma/enaml/lang/pyast"
)

func TestTranslateOperator(t *testing.T) {
	tests := []struct {
		op       string
		expected string
	}{
		{"=", "__operator_Equal__"},
		{":=", "__operator_ColonEqual__"},
		{"<<", "__operator_LessLess__"},
		{">>", "__operator_GreaterGreater__"},
		{"::", "__operator_ColonColon__"},
	}

	for _, tt := range tests {
		t.Run(tt.op, func(t *testing.T) {
			if got := TranslateOperator(tt.op); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestBindingOpOf(t *testing.T) {
	tests := []struct {
		op       string
		expected BindingOp
	}{
		{"=", OpDefault},
		{":=", OpDelegate},
		{"<<", OpSubscribe},
		{">>", OpUpdate},
		{"::", OpExec},
	}

	for _, tt := range tests {
		t.Run(tt.op, func(t *testing.T) {
			got, ok := BindingOpOf(tt.op)
			if !ok {
				t.Fatalf("expected %q to resolve", tt.op)
			}

			if got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}

	if _, ok := BindingOpOf("=="); ok {
		t.Error("expected == to be rejected")
	}
}

func TestBindingOp_RoundTrip(t *testing.T) {
	for _, op := range []BindingOp{
		OpDefault, OpDelegate, OpSubscribe, OpUpdate, OpExec,
	} {
		got, ok := BindingOpOf(op.String())
		if !ok || got != op {
			t.Errorf("operator %v did not round-trip through %q",
				op, op.String())
		}
	}
}

func TestBindingOp_Name(t *testing.T) {
	if got := OpSubscribe.Name(); got != "__operator_LessLess__" {
		t.Errorf("unexpected name %q", got)
	}
}

// sample builds a module equivalent to:
//
//	enamldef Main(Window):
//	    attr title: unicode = 'hello'
//	    Label:
//	        text << title
func sample() *Module {
	base := &Python{
		Ast:  &pyast.Expression{Body: &pyast.Name{ID: "Window"}},
		Line: 1,
	}
	titleType := &Python{
		Ast:  &pyast.Expression{Body: &pyast.Name{ID: "unicode"}},
		Line: 2,
	}
	titleDefault := &Python{
		Ast:  &pyast.Expression{Body: &pyast.Str{Value: "hello"}},
		Line: 2,
	}
	bound := &Python{
		Ast:  &pyast.Expression{Body: &pyast.Name{ID: "title"}},
		Line: 4,
	}

	return &Module{
		Line: 1,
		Body: []Item{
			&Declaration{
				Name: "Main",
				Base: base,
				Line: 1,
				Body: []DeclItem{
					&AttributeDeclaration{
						Name: "title",
						Type: titleType,
						Default: &AttributeBinding{
							Name: "title",
							Binding: &BoundExpression{
								Op:   OpDefault,
								Expr: titleDefault,
								Line: 2,
							},
							Line: 2,
						},
						Line: 2,
					},
					&Instantiation{
						Name: "Label",
						Line: 3,
						Body: []InstItem{
							&AttributeBinding{
								Name: "text",
								Binding: &BoundExpression{
									Op:   OpSubscribe,
									Expr: bound,
									Line: 4,
								},
								Line: 4,
							},
						},
					},
				},
			},
		},
	}
}

func TestModule_ToMap_Shape(t *testing.T) {
	m := sample().ToMap()

	if m["node"] != "Module" {
		t.Errorf("expected Module tag, got %v", m["node"])
	}
	if _, ok := m["doc"]; ok {
		t.Error("expected empty doc omitted")
	}

	body := m["body"].([]any)
	if len(body) != 1 {
		t.Fatalf("expected one item, got %d", len(body))
	}

	decl := body[0].(map[string]any)
	if decl["node"] != "Declaration" || decl["name"] != "Main" {
		t.Errorf("unexpected declaration %v", decl)
	}

	base := decl["base"].(map[string]any)
	if base["node"] != "Python" {
		t.Errorf("expected embedded base expression, got %v", base)
	}

	items := decl["body"].([]any)

	attr := items[0].(map[string]any)
	if attr["node"] != "AttributeDeclaration" || attr["event"] != false {
		t.Errorf("unexpected attribute declaration %v", attr)
	}

	inst := items[1].(map[string]any)
	if inst["node"] != "Instantiation" || inst["name"] != "Label" {
		t.Errorf("unexpected instantiation %v", inst)
	}

	binding := inst["body"].([]any)[0].(map[string]any)
	bound := binding["binding"].(map[string]any)

	if bound["op"] != "<<" {
		t.Errorf("expected op <<, got %v", bound["op"])
	}
	if bound["operator"] != "__operator_LessLess__" {
		t.Errorf("expected translated operator, got %v", bound["operator"])
	}
}

func TestModule_ToMap_Doc(t *testing.T) {
	mod := &Module{Doc: "module docstring", Line: 1}

	if got := mod.ToMap()["doc"]; got != "module docstring" {
		t.Errorf("expected docstring, got %v", got)
	}
}

func TestModule_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(sample())
	if err != nil {
		t.Fatalf("MarshalJSON failed: %v", err)
	}

	s := string(data)

	for _, want := range []string{
		`"node":"Module"`,
		`"node":"Declaration"`,
		`"name":"Main"`,
		`"operator":"__operator_LessLess__"`,
	} {
		if !strings.Contains(s, want) {
			t.Errorf("expected JSON to contain %s", want)
		}
	}
}

func TestNode_Lineno(t *testing.T) {
	nodes := []Node{
		&Module{Line: 1},
		&Python{Line: 2},
		&Declaration{Line: 3},
		&Instantiation{Line: 4},
		&AttributeDeclaration{Line: 5},
		&AttributeBinding{Line: 6},
		&BoundExpression{Line: 7},
	}

	for i, n := range nodes {
		if n.Lineno() != i+1 {
			t.Errorf("node %T: expected line %d, got %d", n, i+1, n.Lineno())
		}
	}
}
