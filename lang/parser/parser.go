// Package parser assembles declarative source files into syntax trees.
//
// The grammar is split across two start symbols sharing one production
// table: a whole source file, and the statement sublanguage allowed inside
// raw blocks. Raw block bodies are parsed after the enclosing file has
// been accepted, so both passes go through the same table cache.
package parser

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/deepankarsharma/enaml/lang/ast"
	"github.com/deepankarsharma/enaml/lang/grammar"
	"github.com/deepankarsharma/enaml/lang/lexer"
	"github.com/deepankarsharma/enaml/lang/pyast"
	"github.com/deepankarsharma/enaml/log"
)

// Parser parses declarative source files. The zero value is not usable;
// construct with [Make].
type Parser struct {
	log   log.Logger
	cache grammar.TableCache
}

// Option configures a [Parser].
type Option func(Parser) Parser

// Make returns a Parser with the given options applied.
func Make(opts ...Option) Parser {
	p := Parser{log: log.Make(io.Discard)}

	return p.Wrap(opts...)
}

// Wrap returns a copy of the Parser with additional options applied.
func (p Parser) Wrap(opts ...Option) Parser {
	for _, opt := range opts {
		if opt != nil {
			p = opt(p)
		}
	}

	return p
}

// WithLogger sets the logger used for parse tracing.
func WithLogger(l log.Logger) Option {
	return func(p Parser) Parser {
		p.log = l

		return p
	}
}

// WithTableCache sets the cache consulted for parse tables before they
// are built. A nil cache keeps the default in-process memoization.
func WithTableCache(c grammar.TableCache) Option {
	return func(p Parser) Parser {
		p.cache = c

		return p
	}
}

// Tables for the default (cacheless) configuration are built once per
// process and shared.
var (
	memoOnce  [2]sync.Once
	memoTable [2]*grammar.Table
	memoErr   [2]error
)

func (p Parser) table(start string) (*grammar.Table, error) {
	if p.cache != nil {
		return grammar.LoadOrBuild(p.cache, Rules(), start)
	}

	slot := 0
	if start == startBlock {
		slot = 1
	}

	memoOnce[slot].Do(func() {
		memoTable[slot], memoErr[slot] = grammar.LoadOrBuild(nil, Rules(), start)
	})

	return memoTable[slot], memoErr[slot]
}

// Parse parses src and returns the module tree. The filename is used only
// for diagnostics.
func (p Parser) Parse(
	ctx context.Context,
	src []byte,
	filename string,
) (*ast.Module, error) {
	tbl, err := p.table(startModule)
	if err != nil {
		return nil, err
	}

	p.log.Trace("parse",
		slog.String("file", filename),
		slog.Int("bytes", len(src)),
	)

	val, err := p.run(ctx, tbl, src, filename)
	if err != nil {
		p.log.Debug("parse failed",
			slog.String("file", filename),
			slog.Any("error", err),
		)

		return nil, err
	}

	mod, err := p.assemble(ctx, val.(*moduleVal), filename)
	if err != nil {
		return nil, err
	}

	p.log.Trace("parsed",
		slog.String("file", filename),
		slog.Int("items", len(mod.Body)),
	)

	return mod, nil
}

// run drives one table over one token stream, normalizing driver and
// lexer failures into positioned diagnostics.
func (p Parser) run(
	ctx context.Context,
	tbl *grammar.Table,
	src []byte,
	filename string,
) (any, error) {
	lx := lexer.New(src, filename)

	next := func() (string, string, int, error) {
		if err := ctx.Err(); err != nil {
			return "", "", 0, err
		}

		tok, err := lx.Next()
		if err != nil {
			return "", "", 0, err
		}

		return tok.Kind.String(), tok.Literal, tok.Line, nil
	}

	val, err := tbl.Parse(Rules(), next, filename)
	if err != nil {
		ut := new(grammar.UnexpectedToken)
		if errors.As(err, &ut) {
			return nil, &SyntaxError{
				Filename: filename,
				Message:  "invalid syntax",
				Line:     ut.Line,
			}
		}

		return nil, err
	}

	return val, nil
}

// assemble converts the intermediate module value into the finished tree,
// resolving raw block placeholders by parsing their bodies.
func (p Parser) assemble(
	ctx context.Context,
	val *moduleVal,
	filename string,
) (*ast.Module, error) {
	mod := &ast.Module{Doc: val.doc, Line: 1}

	for _, item := range val.items {
		block, ok := item.(*rawBlock)
		if !ok {
			mod.Body = append(mod.Body, item.(ast.Item))

			continue
		}

		py, err := p.parseBlock(ctx, block, filename)
		if err != nil {
			return nil, err
		}

		mod.Body = append(mod.Body, py)
	}

	return mod, nil
}

// parseBlock parses the body of a raw block with the statement start
// symbol. The body is padded with blank lines so every node and every
// diagnostic carries the line it occupies in the enclosing file.
func (p Parser) parseBlock(
	ctx context.Context,
	block *rawBlock,
	filename string,
) (*ast.Python, error) {
	tbl, err := p.table(startBlock)
	if err != nil {
		return nil, err
	}

	src := strings.Repeat("\n", block.bodyLine-1) + block.text

	val, err := p.run(ctx, tbl, []byte(src), filename)
	if err != nil {
		return nil, embeddedError(err, filename)
	}

	mod := val.(*pyast.Module)
	mod.Line = block.line

	return &ast.Python{Ast: mod, Line: block.line}, nil
}

// embeddedError rewraps a block body failure so callers can tell it apart
// from a failure in the surrounding file.
func embeddedError(err error, filename string) error {
	var (
		line int
		msg  string
	)

	switch e := err.(type) {
	case *SyntaxError:
		line, msg = e.Line, e.Message
	case *lexer.Error:
		line, msg = e.Line, e.Message
	case *TargetError:
		line, msg = e.Line, "can't assign to "+e.Construct
	default:
		return err
	}

	return &EmbeddedError{Filename: filename, Message: msg, Line: line}
}
