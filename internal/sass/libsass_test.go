//go:build cgo

package sass

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLibsass_Deterministic(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "_variables.scss"), []byte("$accent: #0f73b9;\n"), 0644); err != nil {
		t.Fatal(err)
	}
	src := filepath.Join(dir, "style.home.scss")
	scss := `@import "variables";
// a line comment
.header {
  color: $accent;
  .logo { width: 10px; }
}
`
	if err := os.WriteFile(src, []byte(scss), 0644); err != nil {
		t.Fatal(err)
	}

	for _, compressed := range []bool{false, true} {
		opts := Options{Compressed: compressed}
		first, err := Libsass{}.Compile(src, opts)
		if err != nil {
			t.Fatalf("Compile(compressed=%v) error = %v", compressed, err)
		}
		second, err := Libsass{}.Compile(src, opts)
		if err != nil {
			t.Fatalf("second Compile(compressed=%v) error = %v", compressed, err)
		}

		if !bytes.Equal(first, second) {
			t.Errorf("compressed=%v: output differs between runs:\n%s\n---\n%s", compressed, first, second)
		}
		out := string(first)
		if strings.Contains(out, "sourceMappingURL") {
			t.Errorf("compressed=%v: output has a source map comment:\n%s", compressed, out)
		}
		if strings.Contains(out, "line ") || strings.Contains(out, "/*") {
			t.Errorf("compressed=%v: output has comments:\n%s", compressed, out)
		}
		if !strings.Contains(out, ".header .logo") || !strings.Contains(out, "#0f73b9") {
			t.Errorf("compressed=%v: unexpected output:\n%s", compressed, out)
		}
	}
}
