// Package ast defines the declarative abstract syntax tree produced by
// parsing an enaml module: component declarations, widget instantiations,
// attribute declarations, and operator bindings.
//
// Embedded expressions and statements never appear directly in this tree.
// They are wrapped in [Python] nodes holding a pyast tree, keeping the two
// tree families separate.
package ast

import "github.com/deepankarsharma/enaml/lang/pyast"

// Node is implemented by every declarative tree node.
type Node interface {
	Lineno() int
}

// Module is the root of a parsed enaml source file.
type Module struct {
	Doc  string
	Body []Item
	Line int
}

// Lineno returns the 1-based source line of the node.
func (m *Module) Lineno() int { return m.Line }

// Item is a top-level module item: an import or raw block ([Python]) or a
// component [Declaration].
type Item interface {
	Node
	moduleItem()
}

// Python wraps an embedded pyast tree: an import statement, a raw
// statement block, or a binding expression.
type Python struct {
	Ast  pyast.Node
	Line int
}

func (p *Python) Lineno() int { return p.Line }

// Declaration is a component declaration: a named body deriving from a
// base widget.
type Declaration struct {
	Name       string
	Base       *Python
	Identifier string
	Doc        string
	Body       []DeclItem
	Line       int
}

func (d *Declaration) Lineno() int { return d.Line }

// DeclItem is an item in a declaration body.
type DeclItem interface {
	Node
	declarationItem()
}

// Instantiation names a child widget and its body. It can appear inside a
// declaration or nested in another instantiation.
type Instantiation struct {
	Name       string
	Identifier string
	Body       []InstItem
	Line       int
}

func (i *Instantiation) Lineno() int { return i.Line }

// InstItem is an item in an instantiation body.
type InstItem interface {
	Node
	instantiationItem()
}

// AttributeDeclaration introduces a new attribute or event on a
// declaration, with an optional type and an optional default binding.
type AttributeDeclaration struct {
	Name    string
	Type    *Python
	Default *AttributeBinding
	IsEvent bool
	Line    int
}

func (a *AttributeDeclaration) Lineno() int { return a.Line }

// AttributeBinding binds an attribute name to an expression through a
// binding operator.
type AttributeBinding struct {
	Name    string
	Binding *BoundExpression
	Line    int
}

func (a *AttributeBinding) Lineno() int { return a.Line }

// BoundExpression pairs a binding operator with the bound expression or
// statement block.
type BoundExpression struct {
	Op   BindingOp
	Expr *Python
	Line int
}

func (b *BoundExpression) Lineno() int { return b.Line }

func (*Python) moduleItem()      {}
func (*Declaration) moduleItem() {}

func (*AttributeDeclaration) declarationItem() {}
func (*AttributeBinding) declarationItem()     {}
func (*Instantiation) declarationItem()        {}

func (*Instantiation) instantiationItem()    {}
func (*AttributeBinding) instantiationItem() {}
