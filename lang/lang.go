package lang

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/klauspost/readahead"

	"github.com/deepankarsharma/enaml/lang/ast"
	"github.com/deepankarsharma/enaml/lang/grammar"
	"github.com/deepankarsharma/enaml/lang/parser"
	"github.com/deepankarsharma/enaml/log"
)

// Module is the root of a parsed source file.
type Module = ast.Module

// config carries the effective parse configuration.
type config struct {
	logger log.Logger
	cache  grammar.TableCache
}

// Option configures a parse.
type Option func(config) config

func makeConfig(opts ...Option) config {
	c := config{logger: log.Make(io.Discard)}

	for _, opt := range opts {
		if opt != nil {
			c = opt(c)
		}
	}

	return c
}

// WithLogger sets the logger used for parse tracing.
func WithLogger(l log.Logger) Option {
	return func(c config) config {
		c.logger = l

		return c
	}
}

// WithTableCache sets the cache consulted for parse tables before they
// are built, typically a [grammar.DirCache] rooted in a user cache
// directory. Without it, tables are memoized in-process only.
func WithTableCache(tc grammar.TableCache) Option {
	return func(c config) config {
		c.cache = tc

		return c
	}
}

// WithCacheDir is shorthand for WithTableCache with a persistent cache
// rooted at dir.
func WithCacheDir(dir string) Option {
	return WithTableCache(TableDirCache(dir))
}

// TableDirCache returns a persistent table cache rooted at dir.
func TableDirCache(dir string) grammar.TableCache {
	return grammar.DirCache{Dir: dir}
}

func (c config) parser() parser.Parser {
	return parser.Make(
		parser.WithLogger(c.logger),
		parser.WithTableCache(c.cache),
	)
}

// Parse parses source bytes and returns the module tree. The filename is
// used only for diagnostics. Every call parses fresh; only derived
// grammar tables are reused across parses.
func Parse(
	ctx context.Context,
	src []byte,
	filename string,
	opts ...Option,
) (*ast.Module, error) {
	return makeConfig(opts...).parser().Parse(ctx, src, filename)
}

// ParseString parses source text and returns the module tree.
func ParseString(
	ctx context.Context,
	source, filename string,
	opts ...Option,
) (*ast.Module, error) {
	return Parse(ctx, []byte(source), filename, opts...)
}

// ParseReader parses input from an io.Reader and returns the module tree.
func ParseReader(
	ctx context.Context,
	r io.Reader,
	filename string,
	opts ...Option,
) (*ast.Module, error) {
	// Wrap the reader with async read-ahead so input is fetched while
	// earlier chunks are consumed.
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadInput.Wrap(err).
			With(slog.String("file", filename))
	}

	return Parse(ctx, data, filename, opts...)
}

// ParseFile parses the named file and returns the module tree.
func ParseFile(
	ctx context.Context,
	path string,
	opts ...Option,
) (*ast.Module, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ErrReadInput.Wrap(err).
			With(slog.String("file", path))
	}
	defer f.Close()

	return ParseReader(ctx, f, path, opts...)
}
