package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/deepankarsharma/enaml/lang"
	"github.com/deepankarsharma/enaml/lang/lexer"
	"github.com/deepankarsharma/enaml/lang/token"
)

// Lex scans source files and prints their token streams, one token per
// line. It is mainly a debugging aid for indentation and continuation
// issues.
type Lex struct {
	Sources []string `arg:"" default:"-" help:"Source file(s) or '-' for stdin." name:"source" optional:""`
}

// Run executes the lex command.
func (c *Lex) Run(ctx context.Context) (err error) {
	_, cancel := context.WithCancelCause(ctx)

	defer func(err *error) {
		cancel(*err)
	}(&err)

	srcs, errs := openSources(c.Sources)
	if len(errs) > 0 {
		return errs[0]
	}

	for _, src := range srcs {
		data, err := io.ReadAll(src)
		src.Close()

		if err != nil {
			return ErrReadSource.Wrap(err).
				With(slog.String("file", src.Name))
		}

		if err := scan(data, src.Name); err != nil {
			return lang.WrapError(err).
				With(slog.String("command", "lex"))
		}
	}

	return nil
}

// scan prints every token in src until the end marker.
func scan(src []byte, filename string) error {
	lx := lexer.New(src, filename)

	for {
		tok, err := lx.Next()
		if err != nil {
			return err
		}

		switch tok.Kind {
		case token.Newline:
			fmt.Printf("%4d  %s\n", tok.Line, tok.Kind)
		case token.EndMarker:
			fmt.Printf("%4d  %s\n", tok.Line, tok.Kind)

			return nil
		default:
			fmt.Printf("%4d  %-12s %q\n", tok.Line, tok.Kind, tok.Literal)
		}
	}
}
