package ast

import "strings"

// BindingOp identifies one of the five binding operators.
type BindingOp uint8

const (
	// OpDefault (=) assigns the expression value once.
	OpDefault BindingOp = iota
	// OpDelegate (:=) establishes a bidirectional binding.
	OpDelegate
	// OpSubscribe (<<) re-evaluates the expression when its dependencies
	// change.
	OpSubscribe
	// OpUpdate (>>) pushes attribute changes into the expression target.
	OpUpdate
	// OpExec (::) executes a statement block when the attribute changes.
	OpExec
)

// opNameChar maps each operator character to its name fragment.
var opNameChar = map[rune]string{
	'=': "Equal",
	'<': "Less",
	'>': "Greater",
	':': "Colon",
}

// opOf maps translated operator names back to their BindingOp.
var opOf = map[string]BindingOp{
	"__operator_Equal__":          OpDefault,
	"__operator_ColonEqual__":     OpDelegate,
	"__operator_LessLess__":       OpSubscribe,
	"__operator_GreaterGreater__": OpUpdate,
	"__operator_ColonColon__":     OpExec,
}

// TranslateOperator converts a binding operator's source text into the
// dunder name under which its runtime implementation is registered:
// each character maps to a name fragment, so "<<" becomes
// "__operator_LessLess__".
func TranslateOperator(op string) string {
	var b strings.Builder

	b.WriteString("__operator_")

	for _, c := range op {
		b.WriteString(opNameChar[c])
	}

	b.WriteString("__")

	return b.String()
}

// BindingOpOf returns the operator whose source text is op.
func BindingOpOf(op string) (BindingOp, bool) {
	k, ok := opOf[TranslateOperator(op)]

	return k, ok
}

// String returns the operator's source text.
func (op BindingOp) String() string {
	switch op {
	case OpDefault:
		return "="
	case OpDelegate:
		return ":="
	case OpSubscribe:
		return "<<"
	case OpUpdate:
		return ">>"
	case OpExec:
		return "::"
	default:
		return "?"
	}
}

// Name returns the translated operator name, such as
// "__operator_Equal__" for the default binding.
func (op BindingOp) Name() string {
	return TranslateOperator(op.String())
}
