package pyast

// TargetError reports an expression that cannot be used as an assignment
// target, labeled with the offending construct.
type TargetError struct {
	Construct string
	Line      int
}

// Error implements the error interface.
func (e *TargetError) Error() string {
	return "can't assign to " + e.Construct
}

// StoreContext returns a copy of e re-tagged with [CtxStore], recursing
// through tuple and list targets. The input node is never mutated. An
// expression that cannot be assigned to yields a [TargetError] naming the
// construct.
func StoreContext(e Expr) (Expr, error) {
	switch n := e.(type) {
	case *Name:
		out := *n
		out.Ctx = CtxStore

		return &out, nil

	case *Attribute:
		out := *n
		out.Ctx = CtxStore

		return &out, nil

	case *Subscript:
		out := *n
		out.Ctx = CtxStore

		return &out, nil

	case *List:
		elts, err := storeAll(n.Elts)
		if err != nil {
			return nil, err
		}

		out := *n
		out.Ctx = CtxStore
		out.Elts = elts

		return &out, nil

	case *Tuple:
		if len(n.Elts) == 0 {
			return nil, &TargetError{Construct: "()", Line: n.Line}
		}

		elts, err := storeAll(n.Elts)
		if err != nil {
			return nil, err
		}

		out := *n
		out.Ctx = CtxStore
		out.Elts = elts

		return &out, nil
	}

	return nil, &TargetError{Construct: construct(e), Line: e.Lineno()}
}

func storeAll(elts []Expr) ([]Expr, error) {
	out := make([]Expr, len(elts))

	for i, e := range elts {
		s, err := StoreContext(e)
		if err != nil {
			return nil, err
		}

		out[i] = s
	}

	return out, nil
}

// construct labels an expression kind for assignment target diagnostics.
func construct(e Expr) string {
	switch e.(type) {
	case *Lambda:
		return "lambda"
	case *Call:
		return "function call"
	case *BoolOp, *BinOp, *UnaryOp:
		return "operator"
	case *GeneratorExp:
		return "generator expression"
	case *ListComp:
		return "list comprehension"
	case *SetComp:
		return "set comprehension"
	case *DictComp:
		return "dict comprehension"
	case *Dict, *Set, *Num, *Str:
		return "literal"
	case *Compare:
		return "comparison"
	case *IfExp:
		return "conditional expression"
	default:
		return "expression"
	}
}
