// Package pyast defines the abstract syntax tree for the expression and
// simple-statement sublanguage embedded in enaml source: the right-hand
// sides of attribute bindings, default values, imports, and raw statement
// blocks.
//
// This tree family is deliberately separate from the declarative tree in
// the ast package. Expression nodes carry an evaluation context tag: most
// nodes are built in [CtxLoad], assignment targets are re-tagged through
// [StoreContext], and lambda parameters are born in [CtxParam].
package pyast

// Ctx tags the evaluation context of an expression node.
type Ctx uint8

const (
	CtxLoad Ctx = iota
	CtxStore
	CtxParam
)

// String returns the context name.
func (c Ctx) String() string {
	switch c {
	case CtxLoad:
		return "Load"
	case CtxStore:
		return "Store"
	case CtxParam:
		return "Param"
	default:
		return "Unknown"
	}
}

// Node is implemented by every tree node.
type Node interface {
	Lineno() int
}

// Expr is an expression node.
type Expr interface {
	Node
	exprNode()
}

// Stmt is a statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Slicer is a subscript operand: a plain index, a slice, a slice tuple, or
// an ellipsis.
type Slicer interface {
	Node
	sliceNode()
}

// Pos is the embedded source position of a node. Nodes built mid-reduction
// may carry line zero until [FixLines] assigns positions from context.
type Pos struct {
	Line int
}

// Lineno returns the 1-based source line of the node.
func (p Pos) Lineno() int { return p.Line }

// ---- containers

// Module is a sequence of statements: the payload of an import, a raw
// block, or an executable binding.
type Module struct {
	Pos
	Body []Stmt
}

// Expression wraps a single expression for evaluation.
type Expression struct {
	Pos
	Body Expr
}

// ---- statements

// ExprStmt is an expression evaluated for effect.
type ExprStmt struct {
	Pos
	Value Expr
}

// Assign is a (possibly chained) assignment. Every target carries
// [CtxStore].
type Assign struct {
	Pos
	Targets []Expr
	Value   Expr
}

// Pass is the no-op statement.
type Pass struct {
	Pos
}

// Print writes values to standard output.
type Print struct {
	Pos
	Values []Expr
	NL     bool
}

// Alias is one name in an import, with an optional binding name.
type Alias struct {
	Name   string
	AsName string
}

// Import is a plain import statement.
type Import struct {
	Pos
	Names []Alias
}

// ImportFrom imports names from a module. Level counts leading dots for
// relative imports; a star import has a single "*" alias.
type ImportFrom struct {
	Pos
	Module string
	Names  []Alias
	Level  int
}

func (*ExprStmt) stmtNode()   {}
func (*Assign) stmtNode()     {}
func (*Pass) stmtNode()       {}
func (*Print) stmtNode()      {}
func (*Import) stmtNode()     {}
func (*ImportFrom) stmtNode() {}

// ---- operators

// BoolOpKind is a boolean connective.
type BoolOpKind uint8

const (
	OpAnd BoolOpKind = iota
	OpOr
)

func (k BoolOpKind) String() string {
	if k == OpAnd {
		return "And"
	}

	return "Or"
}

// Operator is a binary arithmetic or bitwise operator.
type Operator uint8

const (
	OpAdd Operator = iota
	OpSub
	OpMult
	OpDiv
	OpMod
	OpPow
	OpLShift
	OpRShift
	OpBitOr
	OpBitXor
	OpBitAnd
	OpFloorDiv
)

var operatorName = [...]string{
	OpAdd:      "Add",
	OpSub:      "Sub",
	OpMult:     "Mult",
	OpDiv:      "Div",
	OpMod:      "Mod",
	OpPow:      "Pow",
	OpLShift:   "LShift",
	OpRShift:   "RShift",
	OpBitOr:    "BitOr",
	OpBitXor:   "BitXor",
	OpBitAnd:   "BitAnd",
	OpFloorDiv: "FloorDiv",
}

func (o Operator) String() string { return operatorName[o] }

// UnaryOpKind is a unary operator.
type UnaryOpKind uint8

const (
	OpInvert UnaryOpKind = iota
	OpNot
	OpUAdd
	OpUSub
)

var unaryOpName = [...]string{
	OpInvert: "Invert",
	OpNot:    "Not",
	OpUAdd:   "UAdd",
	OpUSub:   "USub",
}

func (o UnaryOpKind) String() string { return unaryOpName[o] }

// CmpOp is a comparison operator.
type CmpOp uint8

const (
	OpEq CmpOp = iota
	OpNotEq
	OpLt
	OpLtE
	OpGt
	OpGtE
	OpIs
	OpIsNot
	OpIn
	OpNotIn
)

var cmpOpName = [...]string{
	OpEq:    "Eq",
	OpNotEq: "NotEq",
	OpLt:    "Lt",
	OpLtE:   "LtE",
	OpGt:    "Gt",
	OpGtE:   "GtE",
	OpIs:    "Is",
	OpIsNot: "IsNot",
	OpIn:    "In",
	OpNotIn: "NotIn",
}

func (o CmpOp) String() string { return cmpOpName[o] }

// ---- expressions

// Name is an identifier reference.
type Name struct {
	Pos
	ID  string
	Ctx Ctx
}

// Num is a numeric literal. Value is int64 or float64.
type Num struct {
	Pos
	Value any
}

// Str is a string literal holding its cooked value.
type Str struct {
	Pos
	Value string
}

// Tuple is a parenthesized or bare expression sequence.
type Tuple struct {
	Pos
	Elts []Expr
	Ctx  Ctx
}

// List is a list display.
type List struct {
	Pos
	Elts []Expr
	Ctx  Ctx
}

// Dict is a dictionary display with parallel key and value slices.
type Dict struct {
	Pos
	Keys   []Expr
	Values []Expr
}

// Set is a set display.
type Set struct {
	Pos
	Elts []Expr
}

// BoolOp folds two or more operands under one connective.
type BoolOp struct {
	Pos
	Op     BoolOpKind
	Values []Expr
}

// BinOp is a binary operation.
type BinOp struct {
	Pos
	Left  Expr
	Op    Operator
	Right Expr
}

// UnaryOp is a unary operation.
type UnaryOp struct {
	Pos
	Op      UnaryOpKind
	Operand Expr
}

// Compare is a chained comparison with parallel operator and comparator
// slices.
type Compare struct {
	Pos
	Left        Expr
	Ops         []CmpOp
	Comparators []Expr
}

// IfExp is a conditional expression: Body if Test else OrElse.
type IfExp struct {
	Pos
	Test   Expr
	Body   Expr
	OrElse Expr
}

// Arguments is a lambda parameter list. Defaults align with the trailing
// parameters of Args; Vararg and Kwarg are names, empty when absent.
type Arguments struct {
	Args     []Expr
	Defaults []Expr
	Vararg   string
	Kwarg    string
}

// Lambda is an anonymous function expression.
type Lambda struct {
	Pos
	Args *Arguments
	Body Expr
}

// Keyword is a keyword argument in a call.
type Keyword struct {
	Pos
	Arg   string
	Value Expr
}

// Call is a function call with positional, keyword, star, and double-star
// arguments.
type Call struct {
	Pos
	Func     Expr
	Args     []Expr
	Keywords []*Keyword
	StarArgs Expr
	KwArgs   Expr
}

// Attribute is a dotted attribute access.
type Attribute struct {
	Pos
	Value Expr
	Attr  string
	Ctx   Ctx
}

// Subscript is an indexing or slicing operation.
type Subscript struct {
	Pos
	Value Expr
	Slice Slicer
	Ctx   Ctx
}

// Comprehension is one for-clause of a comprehension with its guards.
type Comprehension struct {
	Pos
	Target Expr
	Iter   Expr
	Ifs    []Expr
}

// GeneratorExp is a generator expression.
type GeneratorExp struct {
	Pos
	Elt        Expr
	Generators []*Comprehension
}

// ListComp is a list comprehension.
type ListComp struct {
	Pos
	Elt        Expr
	Generators []*Comprehension
}

// SetComp is a set comprehension.
type SetComp struct {
	Pos
	Elt        Expr
	Generators []*Comprehension
}

// DictComp is a dictionary comprehension.
type DictComp struct {
	Pos
	Key        Expr
	Value      Expr
	Generators []*Comprehension
}

func (*Name) exprNode()         {}
func (*Num) exprNode()          {}
func (*Str) exprNode()          {}
func (*Tuple) exprNode()        {}
func (*List) exprNode()         {}
func (*Dict) exprNode()         {}
func (*Set) exprNode()          {}
func (*BoolOp) exprNode()       {}
func (*BinOp) exprNode()        {}
func (*UnaryOp) exprNode()      {}
func (*Compare) exprNode()      {}
func (*IfExp) exprNode()        {}
func (*Lambda) exprNode()       {}
func (*Call) exprNode()         {}
func (*Attribute) exprNode()    {}
func (*Subscript) exprNode()    {}
func (*GeneratorExp) exprNode() {}
func (*ListComp) exprNode()     {}
func (*SetComp) exprNode()      {}
func (*DictComp) exprNode()     {}

// ---- subscript operands

// Index is a plain subscript value.
type Index struct {
	Pos
	Value Expr
}

// Slice is a bounded slice with optional lower, upper, and step.
type Slice struct {
	Pos
	Lower Expr
	Upper Expr
	Step  Expr
}

// ExtSlice is a comma-separated sequence of subscript operands.
type ExtSlice struct {
	Pos
	Dims []Slicer
}

// EllipsisIndex is the ellipsis subscript operand.
type EllipsisIndex struct {
	Pos
}

func (*Index) sliceNode()         {}
func (*Slice) sliceNode()         {}
func (*ExtSlice) sliceNode()      {}
func (*EllipsisIndex) sliceNode() {}
