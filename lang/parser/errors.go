package parser

import (
	"fmt"
	"log/slog"
	"strings"
)

// SyntaxError reports a token stream that no grammar production accepts.
type SyntaxError struct {
	Filename string
	Message  string
	Line     int
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.Filename, e.Line, e.Message)
}

// LogValue implements slog.LogValuer for structured logging.
func (e *SyntaxError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("file", e.Filename),
		slog.Int("line", e.Line),
		slog.String("error", e.Message),
	)
}

// KeywordError reports an identifier used where one of a fixed set of
// keywords is required, such as "attr" or "event" introducing an attribute
// declaration. Suggestion holds the closest expected keyword when the
// input resembles one.
type KeywordError struct {
	Filename   string
	Got        string
	Expected   []string
	Suggestion string
	Line       int
}

// Error implements the error interface.
func (e *KeywordError) Error() string {
	quoted := make([]string, len(e.Expected))
	for i, w := range e.Expected {
		quoted[i] = "'" + w + "'"
	}

	msg := fmt.Sprintf("%s:%d: expected keyword %s, got '%s' instead",
		e.Filename, e.Line, strings.Join(quoted, " or "), e.Got)

	if e.Suggestion != "" {
		msg += fmt.Sprintf(" (did you mean '%s'?)", e.Suggestion)
	}

	return msg
}

// LogValue implements slog.LogValuer for structured logging.
func (e *KeywordError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("file", e.Filename),
		slog.Int("line", e.Line),
		slog.String("got", e.Got),
		slog.String("expected", strings.Join(e.Expected, ", ")),
		slog.String("suggestion", e.Suggestion),
	)
}

// TargetError reports an expression that cannot be assigned to, labeled
// with the offending construct.
type TargetError struct {
	Filename  string
	Construct string
	Line      int
}

// Error implements the error interface.
func (e *TargetError) Error() string {
	return fmt.Sprintf("%s:%d: can't assign to %s",
		e.Filename, e.Line, e.Construct)
}

// LogValue implements slog.LogValuer for structured logging.
func (e *TargetError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("file", e.Filename),
		slog.Int("line", e.Line),
		slog.String("construct", e.Construct),
	)
}

// EmbeddedError reports a parse failure inside a raw statement block.
// Line is already translated into the enclosing source file.
type EmbeddedError struct {
	Filename string
	Message  string
	Line     int
}

// Error implements the error interface.
func (e *EmbeddedError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.Filename, e.Line, e.Message)
}

// LogValue implements slog.LogValuer for structured logging.
func (e *EmbeddedError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("file", e.Filename),
		slog.Int("line", e.Line),
		slog.String("error", e.Message),
	)
}
