package pyast

// Dump converts a node to a native Go structure suitable for JSON or
// YAML serialization. Each node becomes a map tagged with its kind.
func Dump(n Node) any {
	if n == nil {
		return nil
	}

	switch v := n.(type) {
	case *Module:
		return node("Module", v.Line, "body", dumpStmts(v.Body))
	case *Expression:
		return node("Expression", v.Line, "body", Dump(v.Body))

	case *ExprStmt:
		return node("ExprStmt", v.Line, "value", Dump(v.Value))
	case *Assign:
		return node("Assign", v.Line,
			"targets", dumpExprs(v.Targets),
			"value", Dump(v.Value))
	case *Pass:
		return node("Pass", v.Line)
	case *Print:
		return node("Print", v.Line,
			"values", dumpExprs(v.Values),
			"nl", v.NL)
	case *Import:
		return node("Import", v.Line, "names", dumpAliases(v.Names))
	case *ImportFrom:
		return node("ImportFrom", v.Line,
			"module", v.Module,
			"names", dumpAliases(v.Names),
			"level", v.Level)

	case *Name:
		return node("Name", v.Line, "id", v.ID, "ctx", v.Ctx.String())
	case *Num:
		return node("Num", v.Line, "value", v.Value)
	case *Str:
		return node("Str", v.Line, "value", v.Value)
	case *Tuple:
		return node("Tuple", v.Line,
			"elts", dumpExprs(v.Elts),
			"ctx", v.Ctx.String())
	case *List:
		return node("List", v.Line,
			"elts", dumpExprs(v.Elts),
			"ctx", v.Ctx.String())
	case *Set:
		return node("Set", v.Line, "elts", dumpExprs(v.Elts))
	case *Dict:
		return node("Dict", v.Line,
			"keys", dumpExprs(v.Keys),
			"values", dumpExprs(v.Values))
	case *BoolOp:
		return node("BoolOp", v.Line,
			"op", v.Op.String(),
			"values", dumpExprs(v.Values))
	case *BinOp:
		return node("BinOp", v.Line,
			"left", Dump(v.Left),
			"op", v.Op.String(),
			"right", Dump(v.Right))
	case *UnaryOp:
		return node("UnaryOp", v.Line,
			"op", v.Op.String(),
			"operand", Dump(v.Operand))
	case *Compare:
		ops := make([]any, len(v.Ops))
		for i, op := range v.Ops {
			ops[i] = op.String()
		}

		return node("Compare", v.Line,
			"left", Dump(v.Left),
			"ops", ops,
			"comparators", dumpExprs(v.Comparators))
	case *IfExp:
		return node("IfExp", v.Line,
			"test", Dump(v.Test),
			"body", Dump(v.Body),
			"orelse", Dump(v.OrElse))
	case *Lambda:
		return node("Lambda", v.Line,
			"args", dumpArguments(v.Args),
			"body", Dump(v.Body))
	case *Call:
		kws := make([]any, len(v.Keywords))
		for i, kw := range v.Keywords {
			kws[i] = Dump(kw)
		}

		return node("Call", v.Line,
			"func", Dump(v.Func),
			"args", dumpExprs(v.Args),
			"keywords", kws,
			"starargs", Dump(v.StarArgs),
			"kwargs", Dump(v.KwArgs))
	case *Keyword:
		return node("Keyword", v.Line,
			"arg", v.Arg,
			"value", Dump(v.Value))
	case *Attribute:
		return node("Attribute", v.Line,
			"value", Dump(v.Value),
			"attr", v.Attr,
			"ctx", v.Ctx.String())
	case *Subscript:
		return node("Subscript", v.Line,
			"value", Dump(v.Value),
			"slice", Dump(v.Slice),
			"ctx", v.Ctx.String())
	case *GeneratorExp:
		return node("GeneratorExp", v.Line,
			"elt", Dump(v.Elt),
			"generators", dumpComprehensions(v.Generators))
	case *ListComp:
		return node("ListComp", v.Line,
			"elt", Dump(v.Elt),
			"generators", dumpComprehensions(v.Generators))
	case *SetComp:
		return node("SetComp", v.Line,
			"elt", Dump(v.Elt),
			"generators", dumpComprehensions(v.Generators))
	case *DictComp:
		return node("DictComp", v.Line,
			"key", Dump(v.Key),
			"value", Dump(v.Value),
			"generators", dumpComprehensions(v.Generators))
	case *Comprehension:
		return node("comprehension", v.Line,
			"target", Dump(v.Target),
			"iter", Dump(v.Iter),
			"ifs", dumpExprs(v.Ifs))

	case *Index:
		return node("Index", v.Line, "value", Dump(v.Value))
	case *Slice:
		return node("Slice", v.Line,
			"lower", Dump(v.Lower),
			"upper", Dump(v.Upper),
			"step", Dump(v.Step))
	case *ExtSlice:
		dims := make([]any, len(v.Dims))
		for i, d := range v.Dims {
			dims[i] = Dump(d)
		}

		return node("ExtSlice", v.Line, "dims", dims)
	case *EllipsisIndex:
		return node("Ellipsis", v.Line)

	default:
		return nil
	}
}

// node builds the tagged map for one node from alternating key/value
// pairs.
func node(kind string, line int, pairs ...any) map[string]any {
	m := map[string]any{"node": kind}
	if line > 0 {
		m["line"] = line
	}

	for i := 0; i+1 < len(pairs); i += 2 {
		m[pairs[i].(string)] = pairs[i+1]
	}

	return m
}

func dumpExprs(exprs []Expr) []any {
	out := make([]any, len(exprs))
	for i, e := range exprs {
		out[i] = Dump(e)
	}

	return out
}

func dumpStmts(stmts []Stmt) []any {
	out := make([]any, len(stmts))
	for i, s := range stmts {
		out[i] = Dump(s)
	}

	return out
}

func dumpAliases(names []Alias) []any {
	out := make([]any, len(names))
	for i, a := range names {
		m := map[string]any{"name": a.Name}
		if a.AsName != "" {
			m["asname"] = a.AsName
		}

		out[i] = m
	}

	return out
}

func dumpComprehensions(gens []*Comprehension) []any {
	out := make([]any, len(gens))
	for i, g := range gens {
		out[i] = Dump(g)
	}

	return out
}

func dumpArguments(args *Arguments) map[string]any {
	if args == nil {
		return nil
	}

	m := map[string]any{
		"args":     dumpExprs(args.Args),
		"defaults": dumpExprs(args.Defaults),
	}

	if args.Vararg != "" {
		m["vararg"] = args.Vararg
	}

	if args.Kwarg != "" {
		m["kwarg"] = args.Kwarg
	}

	return m
}
