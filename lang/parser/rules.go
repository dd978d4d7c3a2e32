package parser

import (
	"strings"
	"sync"

	"github.com/deepankarsharma/enaml/lang/ast"
	"github.com/deepankarsharma/enaml/lang/grammar"
	"github.com/deepankarsharma/enaml/lang/pyast"
)

// Start symbols of the two tables built over the shared rule set: one for
// whole source files and one for the bodies of raw statement blocks.
const (
	startModule = "enaml"
	startBlock  = "py_module"
)

var (
	rulesOnce sync.Once
	ruleSet   []grammar.Rule
)

// Rules returns the shared production table. The slice is built once and
// must not be modified by callers.
func Rules() []grammar.Rule {
	rulesOnce.Do(func() { ruleSet = buildRules() })

	return ruleSet
}

// buildRules assembles the full production table. Rule order is load
// bearing: reduce/reduce conflicts resolve to the earlier rule.
func buildRules() []grammar.Rule {
	var rules []grammar.Rule

	r := func(lhs, rhs string, action grammar.ActionFunc) {
		rules = append(rules, grammar.Rule{
			LHS:    lhs,
			RHS:    strings.Fields(rhs),
			Action: action,
		})
	}

	// ---- module structure

	r("enaml", "enaml_module NEWLINE ENDMARKER", nil)
	r("enaml", "enaml_module ENDMARKER", nil)
	r("enaml", "NEWLINE ENDMARKER", func(p *grammar.Prod) (any, error) {
		return &moduleVal{}, nil
	})
	r("enaml", "ENDMARKER", func(p *grammar.Prod) (any, error) {
		return &moduleVal{}, nil
	})
	r("enaml", "STRING NEWLINE ENDMARKER", func(p *grammar.Prod) (any, error) {
		return &moduleVal{doc: p.Text(1)}, nil
	})
	r("enaml_module", "enaml_module_body", func(p *grammar.Prod) (any, error) {
		return &moduleVal{items: anyList(p.Get(1))}, nil
	})
	r("enaml_module", "STRING NEWLINE enaml_module_body",
		func(p *grammar.Prod) (any, error) {
			return &moduleVal{doc: p.Text(1), items: anyList(p.Get(3))}, nil
		})
	r("enaml_module_body", "enaml_module_body enaml_module_item",
		func(p *grammar.Prod) (any, error) {
			return append(anyList(p.Get(1)), p.Get(2)), nil
		})
	r("enaml_module_body", "enaml_module_item",
		func(p *grammar.Prod) (any, error) {
			return []any{p.Get(1)}, nil
		})
	r("enaml_module_item", "enaml_import", nil)
	r("enaml_module_item", "declaration", nil)
	r("enaml_module_item", "raw_python", nil)

	// ---- raw blocks and imports

	r("raw_python", "PY_BLOCK_START NEWLINE PY_BLOCK PY_BLOCK_END NEWLINE",
		func(p *grammar.Prod) (any, error) {
			return &rawBlock{
				text:     p.Text(3),
				line:     p.Line(1),
				bodyLine: p.Line(3),
			}, nil
		})

	r("enaml_import", "import_stmt", func(p *grammar.Prod) (any, error) {
		stmt := p.Get(1).(pyast.Stmt)

		return stmtPython([]pyast.Stmt{stmt}, stmt.Lineno()), nil
	})

	// ---- declarations

	r("declaration", "NAME LPAR NAME RPAR COLON declaration_body",
		func(p *grammar.Prod) (any, error) {
			line := p.Line(1)
			body := p.Get(6).(*declBody)

			return &ast.Declaration{
				Name:       p.Text(1),
				Base:       nameExpr(p.Text(3), line),
				Identifier: body.id,
				Doc:        body.doc,
				Body:       body.items,
				Line:       line,
			}, nil
		})

	r("declaration_body", "NEWLINE INDENT declaration_body_items DEDENT",
		func(p *grammar.Prod) (any, error) {
			return &declBody{items: declItems(p.Get(3))}, nil
		})
	r("declaration_body", "NEWLINE INDENT identifier DEDENT",
		func(p *grammar.Prod) (any, error) {
			return &declBody{id: p.Text(3)}, nil
		})
	r("declaration_body", "NEWLINE INDENT identifier declaration_body_items DEDENT",
		func(p *grammar.Prod) (any, error) {
			return &declBody{id: p.Text(3), items: declItems(p.Get(4))}, nil
		})
	r("declaration_body", "NEWLINE INDENT STRING NEWLINE declaration_body_items DEDENT",
		func(p *grammar.Prod) (any, error) {
			return &declBody{doc: p.Text(3), items: declItems(p.Get(5))}, nil
		})
	r("declaration_body", "NEWLINE INDENT STRING NEWLINE identifier DEDENT",
		func(p *grammar.Prod) (any, error) {
			return &declBody{doc: p.Text(3), id: p.Text(5)}, nil
		})
	r("declaration_body", "NEWLINE INDENT STRING NEWLINE identifier declaration_body_items DEDENT",
		func(p *grammar.Prod) (any, error) {
			return &declBody{
				doc:   p.Text(3),
				id:    p.Text(5),
				items: declItems(p.Get(6)),
			}, nil
		})
	r("declaration_body_items", "declaration_body_item",
		func(p *grammar.Prod) (any, error) {
			return []any{p.Get(1)}, nil
		})
	r("declaration_body_items", "declaration_body_items declaration_body_item",
		func(p *grammar.Prod) (any, error) {
			return append(anyList(p.Get(1)), p.Get(2)), nil
		})
	r("declaration_body_item", "attribute_declaration", nil)
	r("declaration_body_item", "attribute_binding", nil)
	r("declaration_body_item", "instantiation", nil)
	r("declaration_body_item", "PASS NEWLINE",
		func(p *grammar.Prod) (any, error) {
			return nil, nil
		})

	// ---- attribute declarations

	r("attribute_declaration", "NAME NAME NEWLINE",
		func(p *grammar.Prod) (any, error) {
			return buildAttrDecl(p, p.Text(1), p.Text(2), nil, nil, p.Line(1))
		})
	r("attribute_declaration", "NAME NAME COLON NAME NEWLINE",
		func(p *grammar.Prod) (any, error) {
			line := p.Line(1)

			return buildAttrDecl(p, p.Text(1), p.Text(2),
				nameExpr(p.Text(4), line), nil, line)
		})
	r("attribute_declaration", "NAME NAME binding",
		func(p *grammar.Prod) (any, error) {
			line := p.Line(1)
			name := p.Text(2)
			def := &ast.AttributeBinding{
				Name:    name,
				Binding: p.Get(3).(*ast.BoundExpression),
				Line:    line,
			}

			return buildAttrDecl(p, p.Text(1), name, nil, def, line)
		})
	r("attribute_declaration", "NAME NAME COLON NAME binding",
		func(p *grammar.Prod) (any, error) {
			line := p.Line(1)
			name := p.Text(2)
			def := &ast.AttributeBinding{
				Name:    name,
				Binding: p.Get(5).(*ast.BoundExpression),
				Line:    line,
			}

			return buildAttrDecl(p, p.Text(1), name,
				nameExpr(p.Text(4), line), def, line)
		})

	// ---- identifiers

	r("identifier", "NAME COLON NAME NEWLINE",
		func(p *grammar.Prod) (any, error) {
			if p.Text(1) != "id" {
				return nil, keywordError(p.Filename(), p.Text(1), p.Line(1), "id")
			}

			return p.Get(3), nil
		})

	// ---- instantiations

	r("instantiation", "NAME COLON instantiation_body",
		func(p *grammar.Prod) (any, error) {
			body := p.Get(3).(*instBody)

			return &ast.Instantiation{
				Name:       p.Text(1),
				Identifier: body.id,
				Body:       body.items,
				Line:       p.Line(1),
			}, nil
		})
	r("instantiation_body", "NEWLINE INDENT instantiation_body_items DEDENT",
		func(p *grammar.Prod) (any, error) {
			return &instBody{items: instItems(p.Get(3))}, nil
		})
	r("instantiation_body", "NEWLINE INDENT identifier DEDENT",
		func(p *grammar.Prod) (any, error) {
			return &instBody{id: p.Text(3)}, nil
		})
	r("instantiation_body", "NEWLINE INDENT identifier instantiation_body_items DEDENT",
		func(p *grammar.Prod) (any, error) {
			return &instBody{id: p.Text(3), items: instItems(p.Get(4))}, nil
		})
	r("instantiation_body_items", "instantiation_body_item",
		func(p *grammar.Prod) (any, error) {
			return []any{p.Get(1)}, nil
		})
	r("instantiation_body_items", "instantiation_body_items instantiation_body_item",
		func(p *grammar.Prod) (any, error) {
			return append(anyList(p.Get(1)), p.Get(2)), nil
		})
	r("instantiation_body_item", "instantiation", nil)
	r("instantiation_body_item", "attribute_binding", nil)
	r("instantiation_body_item", "PASS NEWLINE",
		func(p *grammar.Prod) (any, error) {
			return nil, nil
		})

	// ---- bindings

	r("attribute_binding", "NAME binding",
		func(p *grammar.Prod) (any, error) {
			return &ast.AttributeBinding{
				Name:    p.Text(1),
				Binding: p.Get(2).(*ast.BoundExpression),
				Line:    p.Line(1),
			}, nil
		})

	exprBinding := func(p *grammar.Prod) (any, error) {
		line := p.Line(1)
		op, _ := ast.BindingOpOf(p.Text(1))

		return &ast.BoundExpression{
			Op:   op,
			Expr: exprPython(expr(p.Get(2)), line),
			Line: line,
		}, nil
	}

	r("binding", "EQUAL test NEWLINE", exprBinding)
	r("binding", "COLONEQUAL test NEWLINE", exprBinding)
	r("binding", "LEFTSHIFT test NEWLINE", exprBinding)
	r("binding", "RIGHTSHIFT test NEWLINE", exprBinding)

	r("binding", "DOUBLECOLON simple_stmt_line",
		func(p *grammar.Prod) (any, error) {
			line := p.Line(1)

			return &ast.BoundExpression{
				Op:   ast.OpExec,
				Expr: stmtPython([]pyast.Stmt{p.Get(2).(pyast.Stmt)}, line),
				Line: line,
			}, nil
		})
	r("binding", "DOUBLECOLON simple_stmt_suite",
		func(p *grammar.Prod) (any, error) {
			line := p.Line(1)

			return &ast.BoundExpression{
				Op:   ast.OpExec,
				Expr: stmtPython(p.Get(2).([]pyast.Stmt), line),
				Line: line,
			}, nil
		})

	r("simple_stmt_suite", "NEWLINE INDENT simple_stmt_list DEDENT",
		func(p *grammar.Prod) (any, error) {
			return p.Get(3), nil
		})
	r("simple_stmt_list", "simple_stmt_line simple_stmt_list",
		func(p *grammar.Prod) (any, error) {
			return append(
				[]pyast.Stmt{p.Get(1).(pyast.Stmt)},
				p.Get(2).([]pyast.Stmt)...,
			), nil
		})
	r("simple_stmt_list", "simple_stmt_line",
		func(p *grammar.Prod) (any, error) {
			return []pyast.Stmt{p.Get(1).(pyast.Stmt)}, nil
		})

	r("simple_stmt_line", "simple_stmt NEWLINE",
		func(p *grammar.Prod) (any, error) {
			stmt := p.Get(1).(pyast.Stmt)
			pyast.FixLines(stmt, p.Line(1))

			return stmt, nil
		})

	// ---- simple statements

	r("simple_stmt", "small_stmt", nil)
	r("small_stmt", "expr_stmt", nil)
	r("small_stmt", "print_stmt", nil)
	r("small_stmt", "PASS", func(p *grammar.Prod) (any, error) {
		return &pyast.Pass{Pos: at(p.Line(1))}, nil
	})
	r("print_stmt", "PRINT", func(p *grammar.Prod) (any, error) {
		return &pyast.Print{Pos: at(p.Line(1)), NL: true}, nil
	})
	r("print_stmt", "PRINT testlist", func(p *grammar.Prod) (any, error) {
		return &pyast.Print{
			Pos:    at(p.Line(1)),
			Values: exprList(p.Get(2)),
			NL:     true,
		}, nil
	})

	r("expr_stmt", "testlist", func(p *grammar.Prod) (any, error) {
		return &pyast.ExprStmt{Value: tupleOrSingle(exprList(p.Get(1)))}, nil
	})
	r("expr_stmt", "testlist EQUAL testlist",
		func(p *grammar.Prod) (any, error) {
			line := p.Line(2)
			lhs := exprList(p.Get(1))
			targets := make([]pyast.Expr, len(lhs))

			for i, item := range lhs {
				t, err := storeTarget(p, item, line)
				if err != nil {
					return nil, err
				}

				targets[i] = t
			}

			return &pyast.Assign{
				Pos:     at(line),
				Targets: targets,
				Value:   tupleOrSingle(exprList(p.Get(3))),
			}, nil
		})

	r("testlist", "test", func(p *grammar.Prod) (any, error) {
		return []pyast.Expr{expr(p.Get(1))}, nil
	})
	r("testlist", "test COMMA", func(p *grammar.Prod) (any, error) {
		return []pyast.Expr{expr(p.Get(1))}, nil
	})
	r("testlist", "test testlist_list", func(p *grammar.Prod) (any, error) {
		return append([]pyast.Expr{expr(p.Get(1))}, exprList(p.Get(2))...), nil
	})
	r("testlist", "test testlist_list COMMA",
		func(p *grammar.Prod) (any, error) {
			return append([]pyast.Expr{expr(p.Get(1))}, exprList(p.Get(2))...), nil
		})
	r("testlist_list", "COMMA test", func(p *grammar.Prod) (any, error) {
		return []pyast.Expr{expr(p.Get(2))}, nil
	})
	r("testlist_list", "testlist_list COMMA test",
		func(p *grammar.Prod) (any, error) {
			return append(exprList(p.Get(1)), expr(p.Get(3))), nil
		})

	// ---- imports

	stampImport := func(p *grammar.Prod) (any, error) {
		stmt := p.Get(1).(pyast.Stmt)

		switch s := stmt.(type) {
		case *pyast.Import:
			s.Line = p.Line(1)
		case *pyast.ImportFrom:
			s.Line = p.Line(1)
		}

		return stmt, nil
	}

	r("import_stmt", "import_name NEWLINE", stampImport)
	r("import_stmt", "import_from NEWLINE", stampImport)
	r("import_name", "IMPORT dotted_as_names",
		func(p *grammar.Prod) (any, error) {
			return &pyast.Import{Names: p.Get(2).([]pyast.Alias)}, nil
		})

	starAlias := []pyast.Alias{{Name: "*"}}

	r("import_from", "FROM dotted_name IMPORT STAR",
		func(p *grammar.Prod) (any, error) {
			return &pyast.ImportFrom{Module: p.Text(2), Names: starAlias}, nil
		})
	r("import_from", "FROM dotted_name IMPORT import_as_names",
		func(p *grammar.Prod) (any, error) {
			return &pyast.ImportFrom{
				Module: p.Text(2),
				Names:  p.Get(4).([]pyast.Alias),
			}, nil
		})
	r("import_from", "FROM dotted_name IMPORT LPAR import_as_names RPAR",
		func(p *grammar.Prod) (any, error) {
			return &pyast.ImportFrom{
				Module: p.Text(2),
				Names:  p.Get(5).([]pyast.Alias),
			}, nil
		})
	r("import_from", "FROM import_from_dots dotted_name IMPORT STAR",
		func(p *grammar.Prod) (any, error) {
			return &pyast.ImportFrom{
				Module: p.Text(3),
				Names:  starAlias,
				Level:  p.Get(2).(int),
			}, nil
		})
	r("import_from", "FROM import_from_dots dotted_name IMPORT import_as_names",
		func(p *grammar.Prod) (any, error) {
			return &pyast.ImportFrom{
				Module: p.Text(3),
				Names:  p.Get(5).([]pyast.Alias),
				Level:  p.Get(2).(int),
			}, nil
		})
	r("import_from", "FROM import_from_dots dotted_name IMPORT LPAR import_as_names RPAR",
		func(p *grammar.Prod) (any, error) {
			return &pyast.ImportFrom{
				Module: p.Text(3),
				Names:  p.Get(6).([]pyast.Alias),
				Level:  p.Get(2).(int),
			}, nil
		})
	r("import_from", "FROM import_from_dots IMPORT STAR",
		func(p *grammar.Prod) (any, error) {
			return &pyast.ImportFrom{
				Names: starAlias,
				Level: p.Get(2).(int),
			}, nil
		})
	r("import_from", "FROM import_from_dots IMPORT import_as_names",
		func(p *grammar.Prod) (any, error) {
			return &pyast.ImportFrom{
				Names: p.Get(4).([]pyast.Alias),
				Level: p.Get(2).(int),
			}, nil
		})
	r("import_from", "FROM import_from_dots IMPORT LPAR import_as_names RPAR",
		func(p *grammar.Prod) (any, error) {
			return &pyast.ImportFrom{
				Names: p.Get(5).([]pyast.Alias),
				Level: p.Get(2).(int),
			}, nil
		})
	r("import_from_dots", "DOT", func(p *grammar.Prod) (any, error) {
		return 1, nil
	})
	r("import_from_dots", "import_from_dots DOT",
		func(p *grammar.Prod) (any, error) {
			return p.Get(1).(int) + 1, nil
		})
	r("import_as_name", "NAME", func(p *grammar.Prod) (any, error) {
		return pyast.Alias{Name: p.Text(1)}, nil
	})
	r("import_as_name", "NAME AS NAME", func(p *grammar.Prod) (any, error) {
		return pyast.Alias{Name: p.Text(1), AsName: p.Text(3)}, nil
	})
	r("dotted_as_name", "dotted_name", func(p *grammar.Prod) (any, error) {
		return pyast.Alias{Name: p.Text(1)}, nil
	})
	r("dotted_as_name", "dotted_name AS NAME",
		func(p *grammar.Prod) (any, error) {
			return pyast.Alias{Name: p.Text(1), AsName: p.Text(3)}, nil
		})
	r("import_as_names", "import_as_name", func(p *grammar.Prod) (any, error) {
		return []pyast.Alias{p.Get(1).(pyast.Alias)}, nil
	})
	r("import_as_names", "import_as_name COMMA",
		func(p *grammar.Prod) (any, error) {
			return []pyast.Alias{p.Get(1).(pyast.Alias)}, nil
		})
	r("import_as_names", "import_as_name import_as_names_list",
		func(p *grammar.Prod) (any, error) {
			return append(
				[]pyast.Alias{p.Get(1).(pyast.Alias)},
				p.Get(2).([]pyast.Alias)...,
			), nil
		})
	r("import_as_names", "import_as_name import_as_names_list COMMA",
		func(p *grammar.Prod) (any, error) {
			return append(
				[]pyast.Alias{p.Get(1).(pyast.Alias)},
				p.Get(2).([]pyast.Alias)...,
			), nil
		})
	r("import_as_names_list", "COMMA import_as_name",
		func(p *grammar.Prod) (any, error) {
			return []pyast.Alias{p.Get(2).(pyast.Alias)}, nil
		})
	r("import_as_names_list", "import_as_names_list COMMA import_as_name",
		func(p *grammar.Prod) (any, error) {
			return append(p.Get(1).([]pyast.Alias), p.Get(3).(pyast.Alias)), nil
		})
	r("dotted_as_names", "dotted_as_name", func(p *grammar.Prod) (any, error) {
		return []pyast.Alias{p.Get(1).(pyast.Alias)}, nil
	})
	r("dotted_as_names", "dotted_as_name dotted_as_names_list",
		func(p *grammar.Prod) (any, error) {
			return append(
				[]pyast.Alias{p.Get(1).(pyast.Alias)},
				p.Get(2).([]pyast.Alias)...,
			), nil
		})
	r("dotted_as_names_list", "COMMA dotted_as_name",
		func(p *grammar.Prod) (any, error) {
			return []pyast.Alias{p.Get(2).(pyast.Alias)}, nil
		})
	r("dotted_as_names_list", "dotted_as_names_list COMMA dotted_as_name",
		func(p *grammar.Prod) (any, error) {
			return append(p.Get(1).([]pyast.Alias), p.Get(3).(pyast.Alias)), nil
		})
	r("dotted_name", "NAME", nil)
	r("dotted_name", "NAME dotted_name_list",
		func(p *grammar.Prod) (any, error) {
			return p.Text(1) + p.Text(2), nil
		})
	r("dotted_name_list", "DOT NAME", func(p *grammar.Prod) (any, error) {
		return p.Text(1) + p.Text(2), nil
	})
	r("dotted_name_list", "dotted_name_list DOT NAME",
		func(p *grammar.Prod) (any, error) {
			return p.Text(1) + p.Text(2) + p.Text(3), nil
		})

	// ---- expressions, layered by precedence

	r("test", "or_test", nil)
	r("test", "or_test IF or_test ELSE test",
		func(p *grammar.Prod) (any, error) {
			return &pyast.IfExp{
				Test:   expr(p.Get(3)),
				Body:   expr(p.Get(1)),
				OrElse: expr(p.Get(5)),
			}, nil
		})
	r("test", "lambdef", nil)

	r("or_test", "and_test", nil)
	r("or_test", "and_test or_test_list", func(p *grammar.Prod) (any, error) {
		return &pyast.BoolOp{
			Op:     pyast.OpOr,
			Values: append([]pyast.Expr{expr(p.Get(1))}, exprList(p.Get(2))...),
		}, nil
	})
	r("or_test_list", "OR and_test", func(p *grammar.Prod) (any, error) {
		return []pyast.Expr{expr(p.Get(2))}, nil
	})
	r("or_test_list", "or_test_list OR and_test",
		func(p *grammar.Prod) (any, error) {
			return append(exprList(p.Get(1)), expr(p.Get(3))), nil
		})

	r("and_test", "not_test", nil)
	r("and_test", "not_test and_test_list", func(p *grammar.Prod) (any, error) {
		return &pyast.BoolOp{
			Op:     pyast.OpAnd,
			Values: append([]pyast.Expr{expr(p.Get(1))}, exprList(p.Get(2))...),
		}, nil
	})
	r("and_test_list", "AND not_test", func(p *grammar.Prod) (any, error) {
		return []pyast.Expr{expr(p.Get(2))}, nil
	})
	r("and_test_list", "and_test_list AND not_test",
		func(p *grammar.Prod) (any, error) {
			return append(exprList(p.Get(1)), expr(p.Get(3))), nil
		})

	r("not_test", "comparison", nil)
	r("not_test", "NOT not_test", func(p *grammar.Prod) (any, error) {
		return &pyast.UnaryOp{Op: pyast.OpNot, Operand: expr(p.Get(2))}, nil
	})

	r("comparison", "expr", nil)
	r("comparison", "expr comparison_list", func(p *grammar.Prod) (any, error) {
		pairs := p.Get(2).([]cmpPair)
		ops := make([]pyast.CmpOp, len(pairs))
		comparators := make([]pyast.Expr, len(pairs))

		for i, pair := range pairs {
			ops[i] = pair.op
			comparators[i] = pair.x
		}

		return &pyast.Compare{
			Left:        expr(p.Get(1)),
			Ops:         ops,
			Comparators: comparators,
		}, nil
	})
	r("comparison_list", "comp_op expr", func(p *grammar.Prod) (any, error) {
		return []cmpPair{{op: p.Get(1).(pyast.CmpOp), x: expr(p.Get(2))}}, nil
	})
	r("comparison_list", "comparison_list comp_op expr",
		func(p *grammar.Prod) (any, error) {
			return append(
				p.Get(1).([]cmpPair),
				cmpPair{op: p.Get(2).(pyast.CmpOp), x: expr(p.Get(3))},
			), nil
		})

	cmp := func(op pyast.CmpOp) grammar.ActionFunc {
		return func(p *grammar.Prod) (any, error) { return op, nil }
	}

	r("comp_op", "LESS", cmp(pyast.OpLt))
	r("comp_op", "GREATER", cmp(pyast.OpGt))
	r("comp_op", "EQEQUAL", cmp(pyast.OpEq))
	r("comp_op", "GREATEREQUAL", cmp(pyast.OpGtE))
	r("comp_op", "LESSEQUAL", cmp(pyast.OpLtE))
	r("comp_op", "NOTEQUAL", cmp(pyast.OpNotEq))
	r("comp_op", "IN", cmp(pyast.OpIn))
	r("comp_op", "NOT IN", cmp(pyast.OpNotIn))
	r("comp_op", "IS", cmp(pyast.OpIs))
	r("comp_op", "IS NOT", cmp(pyast.OpIsNot))

	binFold := func(p *grammar.Prod) (any, error) {
		return foldBinOps(expr(p.Get(1)), p.Get(2).([]opRand)), nil
	}
	binOp1 := func(op pyast.Operator) grammar.ActionFunc {
		return func(p *grammar.Prod) (any, error) {
			return []opRand{{op: op, x: expr(p.Get(2))}}, nil
		}
	}
	binOpN := func(op pyast.Operator) grammar.ActionFunc {
		return func(p *grammar.Prod) (any, error) {
			return append(
				p.Get(1).([]opRand),
				opRand{op: op, x: expr(p.Get(3))},
			), nil
		}
	}

	r("expr", "xor_expr", nil)
	r("expr", "xor_expr expr_list", binFold)
	r("expr_list", "VBAR xor_expr", binOp1(pyast.OpBitOr))
	r("expr_list", "expr_list VBAR xor_expr", binOpN(pyast.OpBitOr))

	r("xor_expr", "and_expr", nil)
	r("xor_expr", "and_expr xor_expr_list", binFold)
	r("xor_expr_list", "CIRCUMFLEX and_expr", binOp1(pyast.OpBitXor))
	r("xor_expr_list", "xor_expr_list CIRCUMFLEX and_expr",
		binOpN(pyast.OpBitXor))

	r("and_expr", "shift_expr", nil)
	r("and_expr", "shift_expr and_expr_list", binFold)
	r("and_expr_list", "AMPER shift_expr", binOp1(pyast.OpBitAnd))
	r("and_expr_list", "and_expr_list AMPER shift_expr",
		binOpN(pyast.OpBitAnd))

	opRand1 := func(p *grammar.Prod) (any, error) {
		return []opRand{p.Get(1).(opRand)}, nil
	}
	opRandN := func(p *grammar.Prod) (any, error) {
		return append(p.Get(1).([]opRand), p.Get(2).(opRand)), nil
	}
	rand := func(op pyast.Operator) grammar.ActionFunc {
		return func(p *grammar.Prod) (any, error) {
			return opRand{op: op, x: expr(p.Get(2))}, nil
		}
	}

	r("shift_expr", "arith_expr", nil)
	r("shift_expr", "arith_expr shift_list", binFold)
	r("shift_list", "shift_op", opRand1)
	r("shift_list", "shift_list shift_op", opRandN)
	r("shift_op", "LEFTSHIFT arith_expr", rand(pyast.OpLShift))
	r("shift_op", "RIGHTSHIFT arith_expr", rand(pyast.OpRShift))

	r("arith_expr", "term", nil)
	r("arith_expr", "term arith_expr_list", binFold)
	r("arith_expr_list", "arith_op", opRand1)
	r("arith_expr_list", "arith_expr_list arith_op", opRandN)
	r("arith_op", "PLUS term", rand(pyast.OpAdd))
	r("arith_op", "MINUS term", rand(pyast.OpSub))

	r("term", "factor", nil)
	r("term", "factor term_list", binFold)
	r("term_list", "term_op", opRand1)
	r("term_list", "term_list term_op", opRandN)
	r("term_op", "STAR factor", rand(pyast.OpMult))
	r("term_op", "SLASH factor", rand(pyast.OpDiv))
	r("term_op", "PERCENT factor", rand(pyast.OpMod))
	r("term_op", "DOUBLESLASH factor", rand(pyast.OpFloorDiv))

	unary := func(op pyast.UnaryOpKind) grammar.ActionFunc {
		return func(p *grammar.Prod) (any, error) {
			return &pyast.UnaryOp{Op: op, Operand: expr(p.Get(2))}, nil
		}
	}

	r("factor", "power", nil)
	r("factor", "PLUS factor", unary(pyast.OpUAdd))
	r("factor", "MINUS factor", unary(pyast.OpUSub))
	r("factor", "TILDE factor", unary(pyast.OpInvert))

	// Exponentiation binds tighter than its trailers on the left and is
	// right associative through the factor recursion.
	r("power", "atom", nil)
	r("power", "atom DOUBLESTAR factor", func(p *grammar.Prod) (any, error) {
		return &pyast.BinOp{
			Left:  expr(p.Get(1)),
			Op:    pyast.OpPow,
			Right: expr(p.Get(3)),
		}, nil
	})
	r("power", "atom power_list", func(p *grammar.Prod) (any, error) {
		return foldTrailers(expr(p.Get(1)), p.Get(2).([]trailer)), nil
	})
	r("power", "atom power_list DOUBLESTAR factor",
		func(p *grammar.Prod) (any, error) {
			return &pyast.BinOp{
				Left:  foldTrailers(expr(p.Get(1)), p.Get(2).([]trailer)),
				Op:    pyast.OpPow,
				Right: expr(p.Get(4)),
			}, nil
		})
	r("power_list", "trailer", func(p *grammar.Prod) (any, error) {
		return []trailer{p.Get(1).(trailer)}, nil
	})
	r("power_list", "power_list trailer", func(p *grammar.Prod) (any, error) {
		return append(p.Get(1).([]trailer), p.Get(2).(trailer)), nil
	})

	// ---- atoms

	r("atom", "LPAR RPAR", func(p *grammar.Prod) (any, error) {
		return &pyast.Tuple{Pos: at(p.Line(1)), Ctx: pyast.CtxLoad}, nil
	})
	r("atom", "LPAR testlist_comp RPAR", func(p *grammar.Prod) (any, error) {
		switch info := p.Get(2).(type) {
		case commaSeq:
			return &pyast.Tuple{Elts: info.elts, Ctx: pyast.CtxLoad}, nil
		case compSeq:
			return &pyast.GeneratorExp{
				Elt:        info.elt,
				Generators: info.gens,
			}, nil
		default:
			// Parenthesized expression.
			return info, nil
		}
	})
	r("atom", "LSQB RSQB", func(p *grammar.Prod) (any, error) {
		return &pyast.List{Pos: at(p.Line(1)), Ctx: pyast.CtxLoad}, nil
	})
	r("atom", "LSQB listmaker RSQB", func(p *grammar.Prod) (any, error) {
		switch info := p.Get(2).(type) {
		case compSeq:
			return &pyast.ListComp{Elt: info.elt, Generators: info.gens}, nil
		default:
			return &pyast.List{
				Elts: info.(commaSeq).elts,
				Ctx:  pyast.CtxLoad,
			}, nil
		}
	})
	r("atom", "LBRACE RBRACE", func(p *grammar.Prod) (any, error) {
		return &pyast.Dict{Pos: at(p.Line(1))}, nil
	})
	r("atom", "LBRACE dictorsetmaker RBRACE",
		func(p *grammar.Prod) (any, error) {
			switch info := p.Get(2).(type) {
			case dictCompSeq:
				return &pyast.DictComp{
					Key:        info.key,
					Value:      info.value,
					Generators: info.gens,
				}, nil
			case compSeq:
				return &pyast.SetComp{Elt: info.elt, Generators: info.gens}, nil
			case dictSeq:
				return &pyast.Dict{Keys: info.keys, Values: info.values}, nil
			default:
				return &pyast.Set{Elts: info.(commaSeq).elts}, nil
			}
		})
	r("atom", "NAME", func(p *grammar.Prod) (any, error) {
		return &pyast.Name{
			Pos: at(p.Line(1)),
			ID:  p.Text(1),
			Ctx: pyast.CtxLoad,
		}, nil
	})
	r("atom", "NUMBER", func(p *grammar.Prod) (any, error) {
		v, err := evalNum(p, p.Text(1), p.Line(1))
		if err != nil {
			return nil, err
		}

		return &pyast.Num{Pos: at(p.Line(1)), Value: v}, nil
	})
	r("atom", "atom_string_list", func(p *grammar.Prod) (any, error) {
		return &pyast.Str{Value: p.Text(1)}, nil
	})
	// Adjacent string literals concatenate.
	r("atom_string_list", "STRING", nil)
	r("atom_string_list", "atom_string_list STRING",
		func(p *grammar.Prod) (any, error) {
			return p.Text(1) + p.Text(2), nil
		})

	r("listmaker", "test list_for", func(p *grammar.Prod) (any, error) {
		return compSeq{
			elt:  expr(p.Get(1)),
			gens: p.Get(2).([]*pyast.Comprehension),
		}, nil
	})
	r("listmaker", "test", func(p *grammar.Prod) (any, error) {
		return commaSeq{elts: []pyast.Expr{expr(p.Get(1))}}, nil
	})
	r("listmaker", "test COMMA", func(p *grammar.Prod) (any, error) {
		return commaSeq{elts: []pyast.Expr{expr(p.Get(1))}}, nil
	})
	r("listmaker", "test listmaker_list", func(p *grammar.Prod) (any, error) {
		return commaSeq{
			elts: append([]pyast.Expr{expr(p.Get(1))}, exprList(p.Get(2))...),
		}, nil
	})
	r("listmaker", "test listmaker_list COMMA",
		func(p *grammar.Prod) (any, error) {
			return commaSeq{
				elts: append([]pyast.Expr{expr(p.Get(1))}, exprList(p.Get(2))...),
			}, nil
		})
	r("listmaker_list", "COMMA test", func(p *grammar.Prod) (any, error) {
		return []pyast.Expr{expr(p.Get(2))}, nil
	})
	r("listmaker_list", "listmaker_list COMMA test",
		func(p *grammar.Prod) (any, error) {
			return append(exprList(p.Get(1)), expr(p.Get(3))), nil
		})

	r("testlist_comp", "test comp_for", func(p *grammar.Prod) (any, error) {
		return compSeq{
			elt:  expr(p.Get(1)),
			gens: p.Get(2).([]*pyast.Comprehension),
		}, nil
	})
	r("testlist_comp", "test", nil)
	r("testlist_comp", "test COMMA", func(p *grammar.Prod) (any, error) {
		return commaSeq{elts: []pyast.Expr{expr(p.Get(1))}}, nil
	})
	r("testlist_comp", "test testlist_comp_list",
		func(p *grammar.Prod) (any, error) {
			return commaSeq{
				elts: append([]pyast.Expr{expr(p.Get(1))}, exprList(p.Get(2))...),
			}, nil
		})
	r("testlist_comp", "test testlist_comp_list COMMA",
		func(p *grammar.Prod) (any, error) {
			return commaSeq{
				elts: append([]pyast.Expr{expr(p.Get(1))}, exprList(p.Get(2))...),
			}, nil
		})
	r("testlist_comp_list", "COMMA test", func(p *grammar.Prod) (any, error) {
		return []pyast.Expr{expr(p.Get(2))}, nil
	})
	r("testlist_comp_list", "testlist_comp_list COMMA test",
		func(p *grammar.Prod) (any, error) {
			return append(exprList(p.Get(1)), expr(p.Get(3))), nil
		})

	// ---- trailers

	r("trailer", "LPAR RPAR", func(p *grammar.Prod) (any, error) {
		return trailer{kind: trailerCall, args: &callArgs{}, line: p.Line(1)}, nil
	})
	r("trailer", "LPAR arglist RPAR", func(p *grammar.Prod) (any, error) {
		return trailer{
			kind: trailerCall,
			args: p.Get(2).(*callArgs),
			line: p.Line(1),
		}, nil
	})
	r("trailer", "LSQB subscriptlist RSQB", func(p *grammar.Prod) (any, error) {
		return trailer{
			kind: trailerSub,
			sub:  p.Get(2).(pyast.Slicer),
			line: p.Line(1),
		}, nil
	})
	r("trailer", "DOT NAME", func(p *grammar.Prod) (any, error) {
		return trailer{kind: trailerAttr, name: p.Text(2), line: p.Line(1)}, nil
	})

	r("subscriptlist", "subscript", nil)
	r("subscriptlist", "subscript COMMA", func(p *grammar.Prod) (any, error) {
		return &pyast.ExtSlice{Dims: []pyast.Slicer{p.Get(1).(pyast.Slicer)}}, nil
	})
	r("subscriptlist", "subscript subscriptlist_list",
		func(p *grammar.Prod) (any, error) {
			return &pyast.ExtSlice{
				Dims: append(
					[]pyast.Slicer{p.Get(1).(pyast.Slicer)},
					p.Get(2).([]pyast.Slicer)...,
				),
			}, nil
		})
	r("subscriptlist", "subscript subscriptlist_list COMMA",
		func(p *grammar.Prod) (any, error) {
			return &pyast.ExtSlice{
				Dims: append(
					[]pyast.Slicer{p.Get(1).(pyast.Slicer)},
					p.Get(2).([]pyast.Slicer)...,
				),
			}, nil
		})
	r("subscriptlist_list", "COMMA subscript",
		func(p *grammar.Prod) (any, error) {
			return []pyast.Slicer{p.Get(2).(pyast.Slicer)}, nil
		})
	r("subscriptlist_list", "subscriptlist_list COMMA subscript",
		func(p *grammar.Prod) (any, error) {
			return append(p.Get(1).([]pyast.Slicer), p.Get(3).(pyast.Slicer)), nil
		})

	// A trailing bare colon means step None, spelled as a Name so that
	// downstream consumers see the same shape the runtime expects.
	noneName := func() pyast.Expr {
		return &pyast.Name{ID: "None", Ctx: pyast.CtxLoad}
	}
	slice := func(lower, upper, step pyast.Expr) (any, error) {
		return &pyast.Slice{Lower: lower, Upper: upper, Step: step}, nil
	}

	r("subscript", "ELLIPSIS", func(p *grammar.Prod) (any, error) {
		return &pyast.EllipsisIndex{Pos: at(p.Line(1))}, nil
	})
	r("subscript", "test", func(p *grammar.Prod) (any, error) {
		return &pyast.Index{Value: expr(p.Get(1))}, nil
	})
	r("subscript", "COLON", func(p *grammar.Prod) (any, error) {
		return slice(nil, nil, nil)
	})
	r("subscript", "DOUBLECOLON", func(p *grammar.Prod) (any, error) {
		return slice(nil, nil, noneName())
	})
	r("subscript", "test COLON", func(p *grammar.Prod) (any, error) {
		return slice(expr(p.Get(1)), nil, nil)
	})
	r("subscript", "test DOUBLECOLON", func(p *grammar.Prod) (any, error) {
		return slice(expr(p.Get(1)), nil, noneName())
	})
	r("subscript", "COLON test", func(p *grammar.Prod) (any, error) {
		return slice(nil, expr(p.Get(2)), nil)
	})
	r("subscript", "COLON test COLON", func(p *grammar.Prod) (any, error) {
		return slice(nil, expr(p.Get(2)), noneName())
	})
	r("subscript", "DOUBLECOLON test", func(p *grammar.Prod) (any, error) {
		return slice(nil, nil, expr(p.Get(2)))
	})
	r("subscript", "test COLON test", func(p *grammar.Prod) (any, error) {
		return slice(expr(p.Get(1)), expr(p.Get(3)), nil)
	})
	r("subscript", "test COLON test COLON", func(p *grammar.Prod) (any, error) {
		return slice(expr(p.Get(1)), expr(p.Get(3)), noneName())
	})
	r("subscript", "COLON test COLON test", func(p *grammar.Prod) (any, error) {
		return slice(nil, expr(p.Get(2)), expr(p.Get(4)))
	})
	r("subscript", "test COLON test COLON test",
		func(p *grammar.Prod) (any, error) {
			return slice(expr(p.Get(1)), expr(p.Get(3)), expr(p.Get(5)))
		})
	r("subscript", "test DOUBLECOLON test", func(p *grammar.Prod) (any, error) {
		return slice(expr(p.Get(1)), nil, expr(p.Get(3)))
	})

	// ---- comprehension targets

	r("exprlist", "expr", func(p *grammar.Prod) (any, error) {
		return storeTarget(p, expr(p.Get(1)), p.Line(1))
	})

	exprlistTuple := func(p *grammar.Prod, rest []pyast.Expr) (any, error) {
		elts := append([]pyast.Expr{expr(p.Get(1))}, rest...)

		return storeTarget(p, &pyast.Tuple{Elts: elts, Ctx: pyast.CtxLoad},
			p.Line(1))
	}

	r("exprlist", "expr COMMA", func(p *grammar.Prod) (any, error) {
		return exprlistTuple(p, nil)
	})
	r("exprlist", "expr exprlist_list", func(p *grammar.Prod) (any, error) {
		return exprlistTuple(p, exprList(p.Get(2)))
	})
	r("exprlist", "expr exprlist_list COMMA",
		func(p *grammar.Prod) (any, error) {
			return exprlistTuple(p, exprList(p.Get(2)))
		})
	r("exprlist_list", "COMMA expr", func(p *grammar.Prod) (any, error) {
		return []pyast.Expr{expr(p.Get(2))}, nil
	})
	r("exprlist_list", "exprlist_list COMMA expr",
		func(p *grammar.Prod) (any, error) {
			return append(exprList(p.Get(1)), expr(p.Get(3))), nil
		})

	// ---- dict and set displays

	r("dictorsetmaker", "test COLON test comp_for",
		func(p *grammar.Prod) (any, error) {
			return dictCompSeq{
				key:   expr(p.Get(1)),
				value: expr(p.Get(3)),
				gens:  p.Get(4).([]*pyast.Comprehension),
			}, nil
		})
	r("dictorsetmaker", "test COLON test", func(p *grammar.Prod) (any, error) {
		return dictSeq{
			keys:   []pyast.Expr{expr(p.Get(1))},
			values: []pyast.Expr{expr(p.Get(3))},
		}, nil
	})
	r("dictorsetmaker", "test COLON test COMMA",
		func(p *grammar.Prod) (any, error) {
			return dictSeq{
				keys:   []pyast.Expr{expr(p.Get(1))},
				values: []pyast.Expr{expr(p.Get(3))},
			}, nil
		})
	r("dictorsetmaker", "test COLON test dosm_colon_list",
		func(p *grammar.Prod) (any, error) {
			rest := p.Get(4).(dictSeq)

			return dictSeq{
				keys:   append([]pyast.Expr{expr(p.Get(1))}, rest.keys...),
				values: append([]pyast.Expr{expr(p.Get(3))}, rest.values...),
			}, nil
		})
	r("dictorsetmaker", "test COLON test dosm_colon_list COMMA",
		func(p *grammar.Prod) (any, error) {
			rest := p.Get(4).(dictSeq)

			return dictSeq{
				keys:   append([]pyast.Expr{expr(p.Get(1))}, rest.keys...),
				values: append([]pyast.Expr{expr(p.Get(3))}, rest.values...),
			}, nil
		})
	r("dictorsetmaker", "test comp_for", func(p *grammar.Prod) (any, error) {
		return compSeq{
			elt:  expr(p.Get(1)),
			gens: p.Get(2).([]*pyast.Comprehension),
		}, nil
	})
	r("dictorsetmaker", "test COMMA", func(p *grammar.Prod) (any, error) {
		return commaSeq{elts: []pyast.Expr{expr(p.Get(1))}}, nil
	})
	r("dictorsetmaker", "test dosm_comma_list",
		func(p *grammar.Prod) (any, error) {
			return commaSeq{
				elts: append([]pyast.Expr{expr(p.Get(1))}, exprList(p.Get(2))...),
			}, nil
		})
	r("dictorsetmaker", "test dosm_comma_list COMMA",
		func(p *grammar.Prod) (any, error) {
			return commaSeq{
				elts: append([]pyast.Expr{expr(p.Get(1))}, exprList(p.Get(2))...),
			}, nil
		})
	r("dosm_colon_list", "COMMA test COLON test",
		func(p *grammar.Prod) (any, error) {
			return dictSeq{
				keys:   []pyast.Expr{expr(p.Get(2))},
				values: []pyast.Expr{expr(p.Get(4))},
			}, nil
		})
	r("dosm_colon_list", "dosm_colon_list COMMA test COLON test",
		func(p *grammar.Prod) (any, error) {
			acc := p.Get(1).(dictSeq)

			return dictSeq{
				keys:   append(acc.keys, expr(p.Get(3))),
				values: append(acc.values, expr(p.Get(5))),
			}, nil
		})
	r("dosm_comma_list", "COMMA test", func(p *grammar.Prod) (any, error) {
		return []pyast.Expr{expr(p.Get(2))}, nil
	})
	r("dosm_comma_list", "dosm_comma_list COMMA test",
		func(p *grammar.Prod) (any, error) {
			return append(exprList(p.Get(1)), expr(p.Get(3))), nil
		})

	// ---- call arguments

	singleArg := func(p *grammar.Prod) (any, error) {
		switch a := p.Get(1).(type) {
		case *pyast.Keyword:
			return &callArgs{keywords: []*pyast.Keyword{a}}, nil
		default:
			return &callArgs{args: []pyast.Expr{a.(pyast.Expr)}}, nil
		}
	}

	r("arglist", "argument", singleArg)
	r("arglist", "argument COMMA", singleArg)
	r("arglist", "STAR test", func(p *grammar.Prod) (any, error) {
		return &callArgs{starArgs: expr(p.Get(2))}, nil
	})
	r("arglist", "STAR test COMMA DOUBLESTAR test",
		func(p *grammar.Prod) (any, error) {
			return &callArgs{
				starArgs: expr(p.Get(2)),
				kwArgs:   expr(p.Get(5)),
			}, nil
		})
	r("arglist", "DOUBLESTAR test", func(p *grammar.Prod) (any, error) {
		return &callArgs{kwArgs: expr(p.Get(2))}, nil
	})

	mixedArgs := func(p *grammar.Prod) (any, error) {
		args, kws := splitArgs(append(anyList(p.Get(1)), p.Get(2)))

		return &callArgs{args: args, keywords: kws}, nil
	}

	r("arglist", "arglist_list argument", mixedArgs)
	r("arglist", "arglist_list argument COMMA", mixedArgs)
	r("arglist", "arglist_list STAR test", func(p *grammar.Prod) (any, error) {
		args, kws := splitArgs(anyList(p.Get(1)))

		return &callArgs{
			args:     args,
			keywords: kws,
			starArgs: expr(p.Get(3)),
		}, nil
	})
	r("arglist", "arglist_list STAR test COMMA DOUBLESTAR test",
		func(p *grammar.Prod) (any, error) {
			args, kws := splitArgs(anyList(p.Get(1)))

			return &callArgs{
				args:     args,
				keywords: kws,
				starArgs: expr(p.Get(3)),
				kwArgs:   expr(p.Get(6)),
			}, nil
		})
	r("arglist", "arglist_list DOUBLESTAR test",
		func(p *grammar.Prod) (any, error) {
			args, kws := splitArgs(anyList(p.Get(1)))

			return &callArgs{args: args, keywords: kws, kwArgs: expr(p.Get(3))}, nil
		})
	r("arglist_list", "argument COMMA", func(p *grammar.Prod) (any, error) {
		return []any{p.Get(1)}, nil
	})
	r("arglist_list", "arglist_list argument COMMA",
		func(p *grammar.Prod) (any, error) {
			return append(anyList(p.Get(1)), p.Get(2)), nil
		})
	r("argument", "test", nil)
	r("argument", "test comp_for", func(p *grammar.Prod) (any, error) {
		return &pyast.GeneratorExp{
			Elt:        expr(p.Get(1)),
			Generators: p.Get(2).([]*pyast.Comprehension),
		}, nil
	})
	r("argument", "test EQUAL test", func(p *grammar.Prod) (any, error) {
		name, ok := p.Get(1).(*pyast.Name)
		if !ok {
			return nil, &SyntaxError{
				Filename: p.Filename(),
				Line:     p.Line(2),
				Message:  "keyword argument must be a name",
			}
		}

		return &pyast.Keyword{
			Pos:   at(name.Line),
			Arg:   name.ID,
			Value: expr(p.Get(3)),
		}, nil
	})

	// ---- comprehension clauses

	comp := func(target, iter pyast.Expr) *pyast.Comprehension {
		return &pyast.Comprehension{Target: target, Iter: iter}
	}

	r("list_for", "FOR exprlist IN testlist_safe",
		func(p *grammar.Prod) (any, error) {
			return []*pyast.Comprehension{
				comp(expr(p.Get(2)), expr(p.Get(4))),
			}, nil
		})
	r("list_for", "FOR exprlist IN testlist_safe list_iter",
		func(p *grammar.Prod) (any, error) {
			return compClauses(
				comp(expr(p.Get(2)), expr(p.Get(4))),
				anyList(p.Get(5)),
			), nil
		})
	r("list_iter", "list_for", func(p *grammar.Prod) (any, error) {
		gens := p.Get(1).([]*pyast.Comprehension)
		out := make([]any, len(gens))

		for i, g := range gens {
			out[i] = g
		}

		return out, nil
	})
	r("list_iter", "list_if", nil)
	r("list_if", "IF old_test", func(p *grammar.Prod) (any, error) {
		return []any{p.Get(2)}, nil
	})
	r("list_if", "IF old_test list_iter", func(p *grammar.Prod) (any, error) {
		return append([]any{p.Get(2)}, anyList(p.Get(3))...), nil
	})
	r("comp_for", "FOR exprlist IN or_test",
		func(p *grammar.Prod) (any, error) {
			return []*pyast.Comprehension{
				comp(expr(p.Get(2)), expr(p.Get(4))),
			}, nil
		})
	r("comp_for", "FOR exprlist IN or_test comp_iter",
		func(p *grammar.Prod) (any, error) {
			return compClauses(
				comp(expr(p.Get(2)), expr(p.Get(4))),
				anyList(p.Get(5)),
			), nil
		})
	r("comp_iter", "comp_for", func(p *grammar.Prod) (any, error) {
		gens := p.Get(1).([]*pyast.Comprehension)
		out := make([]any, len(gens))

		for i, g := range gens {
			out[i] = g
		}

		return out, nil
	})
	r("comp_iter", "comp_if", nil)
	r("comp_if", "IF old_test", func(p *grammar.Prod) (any, error) {
		return []any{p.Get(2)}, nil
	})
	r("comp_if", "IF old_test comp_iter", func(p *grammar.Prod) (any, error) {
		return append([]any{p.Get(2)}, anyList(p.Get(3))...), nil
	})
	r("testlist_safe", "old_test", nil)
	r("testlist_safe", "old_test testlist_safe_list",
		func(p *grammar.Prod) (any, error) {
			return &pyast.Tuple{
				Elts: append([]pyast.Expr{expr(p.Get(1))}, exprList(p.Get(2))...),
				Ctx:  pyast.CtxLoad,
			}, nil
		})
	r("testlist_safe", "old_test testlist_safe_list COMMA",
		func(p *grammar.Prod) (any, error) {
			return &pyast.Tuple{
				Elts: append([]pyast.Expr{expr(p.Get(1))}, exprList(p.Get(2))...),
				Ctx:  pyast.CtxLoad,
			}, nil
		})
	r("testlist_safe_list", "COMMA old_test",
		func(p *grammar.Prod) (any, error) {
			return []pyast.Expr{expr(p.Get(2))}, nil
		})
	r("testlist_safe_list", "testlist_safe_list COMMA old_test",
		func(p *grammar.Prod) (any, error) {
			return append(exprList(p.Get(1)), expr(p.Get(3))), nil
		})
	r("old_test", "or_test", nil)
	r("old_test", "old_lambdef", nil)

	// ---- lambdas

	r("old_lambdef", "LAMBDA COLON old_test",
		func(p *grammar.Prod) (any, error) {
			return &pyast.Lambda{Args: noArgs(), Body: expr(p.Get(3))}, nil
		})
	r("old_lambdef", "LAMBDA varargslist COLON old_test",
		func(p *grammar.Prod) (any, error) {
			return &pyast.Lambda{
				Args: p.Get(2).(*pyast.Arguments),
				Body: expr(p.Get(4)),
			}, nil
		})
	r("lambdef", "LAMBDA COLON test", func(p *grammar.Prod) (any, error) {
		return &pyast.Lambda{Args: noArgs(), Body: expr(p.Get(3))}, nil
	})
	r("lambdef", "LAMBDA varargslist COLON test",
		func(p *grammar.Prod) (any, error) {
			return &pyast.Lambda{
				Args: p.Get(2).(*pyast.Arguments),
				Body: expr(p.Get(4)),
			}, nil
		})

	fargs := func(args, defaults []pyast.Expr, vararg, kwarg string) any {
		return &pyast.Arguments{
			Args:     args,
			Defaults: defaults,
			Vararg:   vararg,
			Kwarg:    kwarg,
		}
	}
	one := func(p *grammar.Prod) []pyast.Expr {
		return []pyast.Expr{expr(p.Get(1))}
	}
	// defaulted unpacks the varargslist_list at symbol 4 when the first
	// parameter carried a default: every parameter after it must too,
	// or Defaults would no longer align with the trailing Args.
	defaulted := func(p *grammar.Prod) (fpList, error) {
		rest := p.Get(4).(fpList)
		if len(rest.defaults) != len(rest.args) {
			return fpList{}, &SyntaxError{
				Filename: p.Filename(),
				Line:     p.Line(4),
				Message:  "non-default argument follows default argument",
			}
		}

		return rest, nil
	}

	r("varargslist", "fpdef COMMA STAR NAME",
		func(p *grammar.Prod) (any, error) {
			return fargs(one(p), nil, p.Text(4), ""), nil
		})
	r("varargslist", "fpdef COMMA STAR NAME COMMA DOUBLESTAR NAME",
		func(p *grammar.Prod) (any, error) {
			return fargs(one(p), nil, p.Text(4), p.Text(7)), nil
		})
	r("varargslist", "fpdef COMMA DOUBLESTAR NAME",
		func(p *grammar.Prod) (any, error) {
			return fargs(one(p), nil, "", p.Text(4)), nil
		})
	r("varargslist", "fpdef", func(p *grammar.Prod) (any, error) {
		return fargs(one(p), nil, "", ""), nil
	})
	r("varargslist", "fpdef COMMA", func(p *grammar.Prod) (any, error) {
		return fargs(one(p), nil, "", ""), nil
	})
	r("varargslist", "fpdef varargslist_list COMMA STAR NAME",
		func(p *grammar.Prod) (any, error) {
			rest := p.Get(2).(fpList)

			return fargs(append(one(p), rest.args...), rest.defaults,
				p.Text(5), ""), nil
		})
	r("varargslist", "fpdef varargslist_list COMMA STAR NAME COMMA DOUBLESTAR NAME",
		func(p *grammar.Prod) (any, error) {
			rest := p.Get(2).(fpList)

			return fargs(append(one(p), rest.args...), rest.defaults,
				p.Text(5), p.Text(8)), nil
		})
	r("varargslist", "fpdef varargslist_list COMMA DOUBLESTAR NAME",
		func(p *grammar.Prod) (any, error) {
			rest := p.Get(2).(fpList)

			return fargs(append(one(p), rest.args...), rest.defaults,
				"", p.Text(5)), nil
		})
	r("varargslist", "fpdef varargslist_list",
		func(p *grammar.Prod) (any, error) {
			rest := p.Get(2).(fpList)

			return fargs(append(one(p), rest.args...), rest.defaults, "", ""), nil
		})
	r("varargslist", "fpdef varargslist_list COMMA",
		func(p *grammar.Prod) (any, error) {
			rest := p.Get(2).(fpList)

			return fargs(append(one(p), rest.args...), rest.defaults, "", ""), nil
		})
	r("varargslist", "fpdef EQUAL test COMMA STAR NAME",
		func(p *grammar.Prod) (any, error) {
			return fargs(one(p), []pyast.Expr{expr(p.Get(3))}, p.Text(6), ""), nil
		})
	r("varargslist", "fpdef EQUAL test COMMA STAR NAME COMMA DOUBLESTAR NAME",
		func(p *grammar.Prod) (any, error) {
			return fargs(one(p), []pyast.Expr{expr(p.Get(3))},
				p.Text(6), p.Text(9)), nil
		})
	r("varargslist", "fpdef EQUAL test COMMA DOUBLESTAR NAME",
		func(p *grammar.Prod) (any, error) {
			return fargs(one(p), []pyast.Expr{expr(p.Get(3))}, "", p.Text(6)), nil
		})
	r("varargslist", "fpdef EQUAL test", func(p *grammar.Prod) (any, error) {
		return fargs(one(p), []pyast.Expr{expr(p.Get(3))}, "", ""), nil
	})
	r("varargslist", "fpdef EQUAL test COMMA",
		func(p *grammar.Prod) (any, error) {
			return fargs(one(p), []pyast.Expr{expr(p.Get(3))}, "", ""), nil
		})
	r("varargslist", "fpdef EQUAL test varargslist_list COMMA STAR NAME",
		func(p *grammar.Prod) (any, error) {
			rest, err := defaulted(p)
			if err != nil {
				return nil, err
			}

			return fargs(
				append(one(p), rest.args...),
				append([]pyast.Expr{expr(p.Get(3))}, rest.defaults...),
				p.Text(7), "",
			), nil
		})
	r("varargslist", "fpdef EQUAL test varargslist_list COMMA STAR NAME COMMA DOUBLESTAR NAME",
		func(p *grammar.Prod) (any, error) {
			rest, err := defaulted(p)
			if err != nil {
				return nil, err
			}

			return fargs(
				append(one(p), rest.args...),
				append([]pyast.Expr{expr(p.Get(3))}, rest.defaults...),
				p.Text(7), p.Text(10),
			), nil
		})
	r("varargslist", "fpdef EQUAL test varargslist_list COMMA DOUBLESTAR NAME",
		func(p *grammar.Prod) (any, error) {
			rest, err := defaulted(p)
			if err != nil {
				return nil, err
			}

			return fargs(
				append(one(p), rest.args...),
				append([]pyast.Expr{expr(p.Get(3))}, rest.defaults...),
				"", p.Text(7),
			), nil
		})
	r("varargslist", "fpdef EQUAL test varargslist_list",
		func(p *grammar.Prod) (any, error) {
			rest, err := defaulted(p)
			if err != nil {
				return nil, err
			}

			return fargs(
				append(one(p), rest.args...),
				append([]pyast.Expr{expr(p.Get(3))}, rest.defaults...),
				"", "",
			), nil
		})
	r("varargslist", "fpdef EQUAL test varargslist_list COMMA",
		func(p *grammar.Prod) (any, error) {
			rest, err := defaulted(p)
			if err != nil {
				return nil, err
			}

			return fargs(
				append(one(p), rest.args...),
				append([]pyast.Expr{expr(p.Get(3))}, rest.defaults...),
				"", "",
			), nil
		})
	r("varargslist", "STAR NAME", func(p *grammar.Prod) (any, error) {
		return fargs(nil, nil, p.Text(2), ""), nil
	})
	r("varargslist", "STAR NAME COMMA DOUBLESTAR NAME",
		func(p *grammar.Prod) (any, error) {
			return fargs(nil, nil, p.Text(2), p.Text(5)), nil
		})
	r("varargslist", "DOUBLESTAR NAME", func(p *grammar.Prod) (any, error) {
		return fargs(nil, nil, "", p.Text(2)), nil
	})

	r("varargslist_list", "COMMA fpdef", func(p *grammar.Prod) (any, error) {
		return fpList{args: []pyast.Expr{expr(p.Get(2))}}, nil
	})
	r("varargslist_list", "COMMA fpdef EQUAL test",
		func(p *grammar.Prod) (any, error) {
			return fpList{
				args:     []pyast.Expr{expr(p.Get(2))},
				defaults: []pyast.Expr{expr(p.Get(4))},
			}, nil
		})
	r("varargslist_list", "varargslist_list COMMA fpdef",
		func(p *grammar.Prod) (any, error) {
			acc := p.Get(1).(fpList)

			if len(acc.defaults) > 0 {
				return nil, &SyntaxError{
					Filename: p.Filename(),
					Line:     p.Line(2),
					Message:  "non-default argument follows default argument",
				}
			}

			return fpList{args: append(acc.args, expr(p.Get(3)))}, nil
		})
	r("varargslist_list", "varargslist_list COMMA fpdef EQUAL test",
		func(p *grammar.Prod) (any, error) {
			acc := p.Get(1).(fpList)

			return fpList{
				args:     append(acc.args, expr(p.Get(3))),
				defaults: append(acc.defaults, expr(p.Get(5))),
			}, nil
		})

	r("fpdef", "NAME", func(p *grammar.Prod) (any, error) {
		return &pyast.Name{
			Pos: at(p.Line(1)),
			ID:  p.Text(1),
			Ctx: pyast.CtxParam,
		}, nil
	})
	r("fpdef", "LPAR fplist RPAR", func(p *grammar.Prod) (any, error) {
		return p.Get(2), nil
	})
	r("fplist", "fpdef", nil)
	r("fplist", "fpdef COMMA", func(p *grammar.Prod) (any, error) {
		return storeTarget(p, &pyast.Tuple{
			Elts: []pyast.Expr{expr(p.Get(1))},
			Ctx:  pyast.CtxLoad,
		}, p.Line(2))
	})
	r("fplist", "fpdef fplist_list", func(p *grammar.Prod) (any, error) {
		return storeTarget(p, &pyast.Tuple{
			Elts: append([]pyast.Expr{expr(p.Get(1))}, exprList(p.Get(2))...),
			Ctx:  pyast.CtxLoad,
		}, p.Line(1))
	})
	r("fplist", "fpdef fplist_list COMMA", func(p *grammar.Prod) (any, error) {
		return storeTarget(p, &pyast.Tuple{
			Elts: append([]pyast.Expr{expr(p.Get(1))}, exprList(p.Get(2))...),
			Ctx:  pyast.CtxLoad,
		}, p.Line(1))
	})
	r("fplist_list", "COMMA fpdef", func(p *grammar.Prod) (any, error) {
		return []pyast.Expr{expr(p.Get(2))}, nil
	})
	r("fplist_list", "fplist_list COMMA fpdef",
		func(p *grammar.Prod) (any, error) {
			return append(exprList(p.Get(1)), expr(p.Get(3))), nil
		})

	// ---- raw block statement grammar, parsed with its own start symbol

	r("py_module", "py_stmt_list ENDMARKER", func(p *grammar.Prod) (any, error) {
		return &pyast.Module{Body: p.Get(1).([]pyast.Stmt)}, nil
	})
	r("py_module", "ENDMARKER", func(p *grammar.Prod) (any, error) {
		return &pyast.Module{}, nil
	})
	r("py_stmt_list", "py_line", func(p *grammar.Prod) (any, error) {
		return []pyast.Stmt{p.Get(1).(pyast.Stmt)}, nil
	})
	r("py_stmt_list", "py_stmt_list py_line",
		func(p *grammar.Prod) (any, error) {
			return append(p.Get(1).([]pyast.Stmt), p.Get(2).(pyast.Stmt)), nil
		})
	r("py_line", "simple_stmt_line", nil)
	r("py_line", "import_stmt", nil)

	return rules
}
