package pyast

// FixLines assigns source lines to nodes that were built without one,
// inheriting from the nearest enclosing node. It runs once, after a
// subtree is fully built and before it is attached to its parent; nodes
// are not touched again afterward.
func FixLines(n Node, line int) {
	if n == nil {
		return
	}

	switch t := n.(type) {
	case *Module:
		line = inherit(&t.Pos, line)
		for _, s := range t.Body {
			FixLines(s, line)
		}

	case *Expression:
		line = inherit(&t.Pos, line)
		FixLines(t.Body, line)

	case *ExprStmt:
		line = inherit(&t.Pos, line)
		FixLines(t.Value, line)

	case *Assign:
		line = inherit(&t.Pos, line)
		for _, e := range t.Targets {
			FixLines(e, line)
		}
		FixLines(t.Value, line)

	case *Pass:
		inherit(&t.Pos, line)

	case *Print:
		line = inherit(&t.Pos, line)
		for _, e := range t.Values {
			FixLines(e, line)
		}

	case *Import:
		inherit(&t.Pos, line)

	case *ImportFrom:
		inherit(&t.Pos, line)

	case *Name:
		inherit(&t.Pos, line)

	case *Num:
		inherit(&t.Pos, line)

	case *Str:
		inherit(&t.Pos, line)

	case *Tuple:
		line = inherit(&t.Pos, line)
		for _, e := range t.Elts {
			FixLines(e, line)
		}

	case *List:
		line = inherit(&t.Pos, line)
		for _, e := range t.Elts {
			FixLines(e, line)
		}

	case *Dict:
		line = inherit(&t.Pos, line)
		for _, e := range t.Keys {
			FixLines(e, line)
		}
		for _, e := range t.Values {
			FixLines(e, line)
		}

	case *Set:
		line = inherit(&t.Pos, line)
		for _, e := range t.Elts {
			FixLines(e, line)
		}

	case *BoolOp:
		line = inherit(&t.Pos, line)
		for _, e := range t.Values {
			FixLines(e, line)
		}

	case *BinOp:
		line = inherit(&t.Pos, line)
		FixLines(t.Left, line)
		FixLines(t.Right, line)

	case *UnaryOp:
		line = inherit(&t.Pos, line)
		FixLines(t.Operand, line)

	case *Compare:
		line = inherit(&t.Pos, line)
		FixLines(t.Left, line)
		for _, e := range t.Comparators {
			FixLines(e, line)
		}

	case *IfExp:
		line = inherit(&t.Pos, line)
		FixLines(t.Test, line)
		FixLines(t.Body, line)
		FixLines(t.OrElse, line)

	case *Lambda:
		line = inherit(&t.Pos, line)
		if t.Args != nil {
			for _, e := range t.Args.Args {
				FixLines(e, line)
			}
			for _, e := range t.Args.Defaults {
				FixLines(e, line)
			}
		}
		FixLines(t.Body, line)

	case *Keyword:
		line = inherit(&t.Pos, line)
		FixLines(t.Value, line)

	case *Call:
		line = inherit(&t.Pos, line)
		FixLines(t.Func, line)
		for _, e := range t.Args {
			FixLines(e, line)
		}
		for _, k := range t.Keywords {
			FixLines(k, line)
		}
		FixLines(t.StarArgs, line)
		FixLines(t.KwArgs, line)

	case *Attribute:
		line = inherit(&t.Pos, line)
		FixLines(t.Value, line)

	case *Subscript:
		line = inherit(&t.Pos, line)
		FixLines(t.Value, line)
		FixLines(t.Slice, line)

	case *Comprehension:
		line = inherit(&t.Pos, line)
		FixLines(t.Target, line)
		FixLines(t.Iter, line)
		for _, e := range t.Ifs {
			FixLines(e, line)
		}

	case *GeneratorExp:
		line = inherit(&t.Pos, line)
		FixLines(t.Elt, line)
		for _, g := range t.Generators {
			FixLines(g, line)
		}

	case *ListComp:
		line = inherit(&t.Pos, line)
		FixLines(t.Elt, line)
		for _, g := range t.Generators {
			FixLines(g, line)
		}

	case *SetComp:
		line = inherit(&t.Pos, line)
		FixLines(t.Elt, line)
		for _, g := range t.Generators {
			FixLines(g, line)
		}

	case *DictComp:
		line = inherit(&t.Pos, line)
		FixLines(t.Key, line)
		FixLines(t.Value, line)
		for _, g := range t.Generators {
			FixLines(g, line)
		}

	case *Index:
		line = inherit(&t.Pos, line)
		FixLines(t.Value, line)

	case *Slice:
		line = inherit(&t.Pos, line)
		FixLines(t.Lower, line)
		FixLines(t.Upper, line)
		FixLines(t.Step, line)

	case *ExtSlice:
		line = inherit(&t.Pos, line)
		for _, d := range t.Dims {
			FixLines(d, line)
		}

	case *EllipsisIndex:
		inherit(&t.Pos, line)
	}
}

// inherit fills a missing line from the parent and returns the line that
// children should inherit.
func inherit(p *Pos, line int) int {
	if p.Line == 0 {
		p.Line = line
	}

	return p.Line
}
