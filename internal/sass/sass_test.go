package sass

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type fakeCompiler struct {
	out []byte
	err error
	got Options
}

func (f *fakeCompiler) Compile(src string, opts Options) ([]byte, error) {
	f.got = opts
	return f.out, f.err
}

func TestCompileFile(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "assets", "styles", "style.home.css")
	fake := &fakeCompiler{out: []byte("body{margin:0}")}

	if err := CompileFile(fake, "style.home.scss", dst, Options{Compressed: true}); err != nil {
		t.Fatalf("CompileFile() error = %v", err)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(got) != "body{margin:0}" {
		t.Errorf("output = %q", got)
	}
	if !fake.got.Compressed {
		t.Error("options were not passed through")
	}
}

func TestCompileFile_ErrorWritesNothing(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "style.home.css")
	boom := errors.New("undefined variable")

	if err := CompileFile(&fakeCompiler{err: boom}, "style.home.scss", dst, Options{}); !errors.Is(err, boom) {
		t.Errorf("CompileFile() error = %v, want %v", err, boom)
	}
	if _, err := os.Stat(dst); !os.IsNotExist(err) {
		t.Errorf("output should not exist, stat error = %v", err)
	}
}

func TestLibsass_MissingSource(t *testing.T) {
	if _, err := (Libsass{}).Compile(filepath.Join(t.TempDir(), "nope.scss"), Options{}); err == nil {
		t.Error("Compile() expected error for missing source")
	}
}
