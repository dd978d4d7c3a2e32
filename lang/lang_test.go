package lang

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/deepankarsharma/enaml/lang/ast"
)

const sampleSource = "Main(Window):\n" +
	"    id: main\n" +
	"    attr title: unicode = 'hello'\n" +
	"    Label:\n" +
	"        text << main.title\n"

func TestParse_Sample(t *testing.T) {
	mod, err := Parse(context.Background(), []byte(sampleSource), "view.enaml")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	decl, ok := mod.Body[0].(*ast.Declaration)
	if !ok {
		t.Fatalf("expected declaration, got %T", mod.Body[0])
	}

	if decl.Name != "Main" || decl.Identifier != "main" {
		t.Errorf("unexpected declaration %q id %q", decl.Name, decl.Identifier)
	}
	if len(decl.Body) != 2 {
		t.Errorf("expected 2 body items, got %d", len(decl.Body))
	}
}

func TestParse_Deterministic(t *testing.T) {
	ctx := context.Background()

	a, err := Parse(ctx, []byte(sampleSource), "view.enaml")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	b, err := ParseString(ctx, sampleSource, "view.enaml")
	if err != nil {
		t.Fatalf("ParseString failed: %v", err)
	}

	// Results are never cached, so repeated parses build fresh trees.
	if a == b {
		t.Error("expected distinct module values per parse")
	}

	aj, err := json.Marshal(a.ToMap())
	if err != nil {
		t.Fatal(err)
	}

	bj, err := json.Marshal(b.ToMap())
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(aj, bj) {
		t.Errorf("re-parse produced a different tree:\n%s\n%s", aj, bj)
	}
}

func TestParseReader(t *testing.T) {
	mod, err := ParseReader(context.Background(),
		bytes.NewReader([]byte("import os\n")), "view.enaml")
	if err != nil {
		t.Fatalf("ParseReader failed: %v", err)
	}

	if len(mod.Body) != 1 {
		t.Errorf("expected 1 item, got %d", len(mod.Body))
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("disk gone")
}

func TestParseReader_ReadFailure(t *testing.T) {
	_, err := ParseReader(context.Background(), failingReader{}, "view.enaml")
	if !errors.Is(err, ErrReadInput) {
		t.Errorf("expected ErrReadInput, got %v", err)
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "view.enaml")
	if err := os.WriteFile(path, []byte(sampleSource), 0o644); err != nil {
		t.Fatal(err)
	}

	mod, err := ParseFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ParseFile failed: %v", err)
	}

	if len(mod.Body) != 1 {
		t.Errorf("expected 1 item, got %d", len(mod.Body))
	}

	_, err = ParseFile(context.Background(),
		filepath.Join(t.TempDir(), "absent.enaml"))
	if !errors.Is(err, ErrReadInput) {
		t.Errorf("expected ErrReadInput for missing file, got %v", err)
	}
}

func TestParse_ErrorsSurfaceTypes(t *testing.T) {
	tests := []struct {
		name string
		src  string
		as   func(error) bool
	}{
		{
			"syntax error",
			"Main(Window)\n",
			func(err error) bool {
				var e *SyntaxError

				return errors.As(err, &e)
			},
		},
		{
			"lexical error",
			"Main(Window):\n    text = 'open\n",
			func(err error) bool {
				var e *LexicalError

				return errors.As(err, &e)
			},
		},
		{
			"invalid keyword",
			"Main(Window):\n    atr x\n",
			func(err error) bool {
				var e *InvalidKeyword

				return errors.As(err, &e)
			},
		},
		{
			"invalid target",
			"Main(Window):\n    clicked :: 1 = x\n",
			func(err error) bool {
				var e *InvalidAssignmentTarget

				return errors.As(err, &e)
			},
		},
		{
			"embedded error",
			":: python ::\nlambda\n:: end ::\n",
			func(err error) bool {
				var e *EmbeddedParseError

				return errors.As(err, &e)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseString(context.Background(), tt.src, "bad.enaml")
			if err == nil {
				t.Fatal("expected error")
			}

			if !tt.as(err) {
				t.Errorf("error %T did not match expected type: %v", err, err)
			}
		})
	}
}

func TestParse_ErrorsAreStable(t *testing.T) {
	ctx := context.Background()

	_, err1 := Parse(ctx, []byte("Main(Window)\n"), "bad.enaml")
	_, err2 := Parse(ctx, []byte("Main(Window)\n"), "bad.enaml")

	if err1 == nil || err2 == nil {
		t.Fatal("expected parse errors")
	}

	if err1.Error() != err2.Error() {
		t.Errorf("diagnostics differ across parses:\n%v\n%v", err1, err2)
	}
}

func TestParse_CanceledContext(t *testing.T) {
	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Parse(canceled, []byte("import sys\n"), "c.enaml")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	mod, err := Parse(context.Background(), []byte("import sys\n"), "c.enaml")
	if err != nil {
		t.Fatalf("expected fresh parse to succeed, got %v", err)
	}

	if len(mod.Body) != 1 {
		t.Errorf("expected 1 item, got %d", len(mod.Body))
	}
}

func TestParse_WithTableCachePersistsTables(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	cache := TableDirCache(dir)

	if _, err := Parse(ctx, []byte(sampleSource), "a.enaml",
		WithTableCache(cache)); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}

	if len(entries) == 0 {
		t.Error("expected persisted parse tables in the cache directory")
	}

	// A second parse loads the persisted tables.
	mod, err := Parse(ctx, []byte(sampleSource), "a.enaml",
		WithTableCache(cache))
	if err != nil {
		t.Fatal(err)
	}

	if len(mod.Body) != 1 {
		t.Errorf("expected 1 item, got %d", len(mod.Body))
	}
}

func TestError_WrapAndAttrs(t *testing.T) {
	base := NewError("something failed")

	wrapped := base.Wrap(os.ErrNotExist)
	if !errors.Is(wrapped, base) {
		t.Error("expected wrapped error to match its template")
	}
	if !errors.Is(wrapped, os.ErrNotExist) {
		t.Error("expected wrapped error to match its cause")
	}

	if !strings.Contains(wrapped.Error(), "something failed") {
		t.Errorf("unexpected message %q", wrapped.Error())
	}
}
