package cmd

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeSource creates a file under dir with the given content and
// returns its path.
func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}

	return path
}

func closeAll(srcs []*Source) {
	for _, src := range srcs {
		src.Close()
	}
}

const validSource = "Main(Window):\n    pass\n"

func TestOpenSources_PreservesOrder(t *testing.T) {
	dir := t.TempDir()
	a := writeSource(t, dir, "a.enaml", validSource)
	b := writeSource(t, dir, "b.enaml", validSource)

	srcs, errs := openSources([]string{a, b})
	defer closeAll(srcs)

	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	if len(srcs) != 2 || srcs[0].Name != a || srcs[1].Name != b {
		t.Errorf("unexpected sources: %+v", srcs)
	}
}

func TestOpenSources_DeduplicatesPaths(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "a.enaml", validSource)

	srcs, errs := openSources([]string{path, path})
	defer closeAll(srcs)

	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	if len(srcs) != 1 {
		t.Fatalf("expected 1 source, got %d", len(srcs))
	}
}

func TestOpenSources_DeduplicatesSymlinks(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "a.enaml", validSource)

	link := filepath.Join(dir, "link.enaml")
	if err := os.Symlink(path, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	srcs, errs := openSources([]string{path, link})
	defer closeAll(srcs)

	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	if len(srcs) != 1 {
		t.Fatalf("expected 1 source, got %d", len(srcs))
	}

	// The first spelling wins.
	if srcs[0].Name != path {
		t.Errorf("expected name %q, got %q", path, srcs[0].Name)
	}
}

func TestOpenSources_DeduplicatesStdin(t *testing.T) {
	srcs, errs := openSources([]string{"-", "-"})

	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	if len(srcs) != 1 || srcs[0].Name != "<stdin>" {
		t.Fatalf("expected single <stdin> source, got %+v", srcs)
	}

	// Closing the stdin source must not close os.Stdin.
	if err := srcs[0].Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}

func TestOpenSources_MissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent.enaml")

	srcs, errs := openSources([]string{missing})
	defer closeAll(srcs)

	if len(srcs) != 0 {
		t.Errorf("expected no sources, got %d", len(srcs))
	}

	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d", len(errs))
	}

	if !errors.Is(errs[0], ErrReadSource) {
		t.Errorf("expected ErrReadSource, got %v", errs[0])
	}
}

func TestSource_Read(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "a.enaml", validSource)

	srcs, errs := openSources([]string{path})
	if len(errs) != 0 || len(srcs) != 1 {
		t.Fatalf("openSources: srcs=%d errs=%v", len(srcs), errs)
	}

	data, err := io.ReadAll(srcs[0])
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}

	if string(data) != validSource {
		t.Errorf("read %q, want %q", data, validSource)
	}

	if err := srcs[0].Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}

func TestMakeFileKey_NilInfo(t *testing.T) {
	if _, ok := makeFileKey(nil); ok {
		t.Error("expected ok=false for nil FileInfo")
	}
}

func TestParseOptions_WithoutKongContext(t *testing.T) {
	opts := parseOptions(context.Background())

	// Only the logger option applies without a CLI context.
	if len(opts) != 1 {
		t.Errorf("expected 1 option, got %d", len(opts))
	}
}

func TestCheck_Run(t *testing.T) {
	dir := t.TempDir()
	good := writeSource(t, dir, "good.enaml", validSource)
	bad := writeSource(t, dir, "bad.enaml", "Main(Window:\n")

	tests := []struct {
		name    string
		sources []string
		wantErr bool
	}{
		{name: "valid source", sources: []string{good}},
		{name: "invalid source", sources: []string{bad}, wantErr: true},
		{name: "mixed sources", sources: []string{good, bad}, wantErr: true},
		{
			name:    "missing file",
			sources: []string{filepath.Join(dir, "absent.enaml")},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &Check{Quiet: true, Sources: tt.sources}

			err := cmd.Run(context.Background())
			if tt.wantErr {
				if !errors.Is(err, ErrCheckFailed) {
					t.Errorf("expected ErrCheckFailed, got %v", err)
				}

				return
			}

			if err != nil {
				t.Errorf("Run failed: %v", err)
			}
		})
	}
}

func TestParse_Run_InvalidSource(t *testing.T) {
	dir := t.TempDir()
	bad := writeSource(t, dir, "bad.enaml", "Main(Window:\n")

	cmd := &Parse{Format: "yaml", Indent: 2, Sources: []string{bad}}

	err := cmd.Run(context.Background())
	if err == nil {
		t.Fatal("expected parse error")
	}

	if !strings.Contains(err.Error(), "bad.enaml") {
		t.Errorf("error does not name the source: %v", err)
	}
}

func TestScan_LexicalError(t *testing.T) {
	err := scan([]byte("$\n"), "bad.enaml")
	if err == nil {
		t.Fatal("expected lexical error")
	}

	if !strings.Contains(err.Error(), "invalid character") {
		t.Errorf("unexpected error: %v", err)
	}
}
