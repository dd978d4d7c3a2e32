package ast

import (
	"encoding/json"

	"github.com/deepankarsharma/enaml/lang/pyast"
)

// MarshalJSON implements json.Marshaler for Module.
func (m *Module) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.ToMap())
}

// ToMap converts the module to a native Go structure suitable for JSON or
// YAML serialization. Each node becomes a map tagged with its kind, and
// embedded expression trees are expanded through [pyast.Dump].
func (m *Module) ToMap() map[string]any {
	items := make([]any, len(m.Body))
	for i, item := range m.Body {
		items[i] = dumpItem(item)
	}

	out := map[string]any{
		"node": "Module",
		"body": items,
	}

	if m.Doc != "" {
		out["doc"] = m.Doc
	}

	return out
}

func dumpItem(n Node) any {
	if n == nil {
		return nil
	}

	switch v := n.(type) {
	case *Python:
		return map[string]any{
			"node": "Python",
			"line": v.Line,
			"ast":  pyast.Dump(v.Ast),
		}

	case *Declaration:
		items := make([]any, len(v.Body))
		for i, item := range v.Body {
			items[i] = dumpItem(item)
		}

		out := map[string]any{
			"node": "Declaration",
			"line": v.Line,
			"name": v.Name,
			"base": dumpItem(v.Base),
			"body": items,
		}

		if v.Identifier != "" {
			out["identifier"] = v.Identifier
		}

		if v.Doc != "" {
			out["doc"] = v.Doc
		}

		return out

	case *Instantiation:
		items := make([]any, len(v.Body))
		for i, item := range v.Body {
			items[i] = dumpItem(item)
		}

		out := map[string]any{
			"node": "Instantiation",
			"line": v.Line,
			"name": v.Name,
			"body": items,
		}

		if v.Identifier != "" {
			out["identifier"] = v.Identifier
		}

		return out

	case *AttributeDeclaration:
		out := map[string]any{
			"node":  "AttributeDeclaration",
			"line":  v.Line,
			"name":  v.Name,
			"event": v.IsEvent,
		}

		if v.Type != nil {
			out["type"] = dumpItem(v.Type)
		}

		if v.Default != nil {
			out["default"] = dumpItem(v.Default)
		}

		return out

	case *AttributeBinding:
		return map[string]any{
			"node":    "AttributeBinding",
			"line":    v.Line,
			"name":    v.Name,
			"binding": dumpItem(v.Binding),
		}

	case *BoundExpression:
		return map[string]any{
			"node":     "BoundExpression",
			"line":     v.Line,
			"op":       v.Op.String(),
			"operator": v.Op.Name(),
			"expr":     dumpItem(v.Expr),
		}

	default:
		return nil
	}
}
