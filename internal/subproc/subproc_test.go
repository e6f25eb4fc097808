package subproc

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0755); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestExec_Run(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts")
	}
	dir := t.TempDir()
	script := writeScript(t, dir, "build.sh", `echo "building $1 in $(basename "$PWD") $SITEPIPE_ENV"`)

	var stream bytes.Buffer
	out, err := Exec{Stream: &stream, Env: []string{"SITEPIPE_ENV=production"}}.Run(context.Background(), Command{Name: script, Args: []string{"blog"}, Dir: dir})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	want := "building blog in " + filepath.Base(dir) + " production"
	if strings.TrimSpace(string(out)) != want {
		t.Errorf("output = %q, want %q", out, want)
	}
	if stream.String() != string(out) {
		t.Errorf("stream = %q, want %q", stream.String(), out)
	}
}

func TestExec_RunFailure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts")
	}
	dir := t.TempDir()
	script := writeScript(t, dir, "build.sh", "echo 'Liquid Exception' >&2\nexit 3\n")

	_, err := Exec{}.Run(context.Background(), Command{Name: script, Dir: dir})
	var pe *ProcessError
	if !errors.As(err, &pe) {
		t.Fatalf("Run() error = %v, want *ProcessError", err)
	}
	if pe.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", pe.ExitCode)
	}
	if !strings.Contains(pe.Error(), "Liquid Exception") {
		t.Errorf("error does not surface output: %v", pe)
	}
	if code, ok := ExitCode(err); !ok || code != 3 {
		t.Errorf("ExitCode(err) = %d, %v", code, ok)
	}
}

func TestExec_RunMissingBinary(t *testing.T) {
	_, err := Exec{}.Run(context.Background(), Command{Name: filepath.Join(t.TempDir(), "missing.sh")})
	var pe *ProcessError
	if !errors.As(err, &pe) || pe.ExitCode != -1 {
		t.Fatalf("Run() error = %v, want ProcessError with ExitCode -1", err)
	}
	if _, ok := ExitCode(err); ok {
		t.Error("ExitCode() should report no exit status for a process that never ran")
	}
}
