package cmd

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/deepankarsharma/enaml/lang"
	"github.com/deepankarsharma/enaml/log"
)

// ContextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given
// kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// parseOptions builds the lang options shared by all subcommands: the
// default logger and, when a cache directory is configured, a persistent
// parse table cache beneath it.
func parseOptions(ctx context.Context) []lang.Option {
	opts := []lang.Option{lang.WithLogger(log.Default())}

	ktx := kongContextFrom(ctx)
	if ktx == nil {
		return opts
	}

	dir, ok := ktx.Model.Vars()[CacheIdentifier]
	if !ok || dir == "" {
		return opts
	}

	return append(opts, lang.WithTableCache(
		lang.TableDirCache(filepath.Join(dir, "tables")),
	))
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// Source is one input to a subcommand.
type Source struct {
	// Name is the path used in diagnostics; "<stdin>" for standard input.
	Name string

	r io.ReadCloser
}

// Read implements io.Reader.
func (s *Source) Read(p []byte) (int, error) { return s.r.Read(p) }

// Close releases the underlying file. Closing a stdin source is a no-op.
func (s *Source) Close() error {
	if s.r == os.Stdin {
		return nil
	}

	return s.r.Close()
}

// fileKey uniquely identifies a file by its device and inode numbers,
// which deduplicates across symlinks and path spellings.
type fileKey struct {
	dev uint64
	ino uint64
}

// openSources opens each named source exactly once, in order. Duplicates
// of the same underlying file are dropped, and every "-" refers to the
// single stdin source. Paths that cannot be opened are returned in errs.
func openSources(paths []string) (srcs []*Source, errs []error) {
	seen := make(map[fileKey]struct{})

	stdinInfo, _ := os.Stdin.Stat()
	stdinKey, _ := makeFileKey(stdinInfo)

	for _, path := range paths {
		if path == stdinSource {
			if _, dup := seen[stdinKey]; dup {
				continue
			}

			seen[stdinKey] = struct{}{}
			srcs = append(srcs, &Source{Name: "<stdin>", r: os.Stdin})

			continue
		}

		src, err := openUniqueFile(path, seen)
		if err != nil {
			errs = append(errs, err)

			continue
		}

		if src != nil {
			srcs = append(srcs, src)
		}
	}

	return srcs, errs
}

// openUniqueFile opens the file at path if it has not been seen before.
// A nil Source with a nil error means the file is a duplicate.
func openUniqueFile(path string, seen map[fileKey]struct{}) (*Source, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, ErrReadSource.Wrap(err)
	}

	resolved, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		return nil, ErrReadSource.Wrap(err)
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return nil, ErrReadSource.Wrap(err)
	}

	if key, ok := makeFileKey(info); ok {
		if _, dup := seen[key]; dup {
			return nil, nil
		}

		seen[key] = struct{}{}
	}

	file, err := os.Open(resolved)
	if err != nil {
		return nil, ErrReadSource.Wrap(err)
	}

	// Diagnostics keep the path as given, not the resolved one.
	return &Source{Name: path, r: file}, nil
}

// makeFileKey creates a fileKey from os.FileInfo. Returns false if the
// underlying Sys() data is not of type *syscall.Stat_t.
func makeFileKey(info os.FileInfo) (key fileKey, ok bool) {
	if info == nil {
		return key, false
	}

	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	return fileKey{dev: stat.Dev, ino: stat.Ino}, true
}
