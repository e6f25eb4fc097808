// Package subproc runs the external site generator and helper scripts.
package subproc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

type Command struct {
	Name string
	Args []string
	// Dir is the working directory.
	Dir string
	Env []string
}

func (c Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// Runner blocks until the command exits and returns its combined output.
type Runner interface {
	Run(ctx context.Context, cmd Command) ([]byte, error)
}

// ProcessError is returned for a command that could not start or exited
// non-zero. ExitCode is -1 when the process never ran.
type ProcessError struct {
	Command  string
	ExitCode int
	Output   []byte
	Err      error
}

func (e *ProcessError) Error() string {
	msg := fmt.Sprintf("command %q failed", e.Command)
	if e.ExitCode >= 0 {
		msg = fmt.Sprintf("command %q exited with status %d", e.Command, e.ExitCode)
	}
	if out := strings.TrimSpace(string(e.Output)); out != "" {
		msg += ":\n" + out
	}
	return msg
}

func (e *ProcessError) Unwrap() error { return e.Err }

// ExitCode extracts the process exit status from err, if any.
func ExitCode(err error) (int, bool) {
	var pe *ProcessError
	if errors.As(err, &pe) && pe.ExitCode > 0 {
		return pe.ExitCode, true
	}
	return 0, false
}

// Exec runs commands with os/exec. Output is captured and, when Stream is
// set, copied there as it is produced.
type Exec struct {
	Stream io.Writer
	Env    []string
}

func (e Exec) Run(ctx context.Context, c Command) ([]byte, error) {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	if env := append(append([]string{}, e.Env...), c.Env...); len(env) > 0 {
		cmd.Env = append(cmd.Environ(), env...)
	}

	var buf bytes.Buffer
	var w io.Writer = &buf
	if e.Stream != nil {
		w = io.MultiWriter(&buf, e.Stream)
	}
	cmd.Stdout = w
	cmd.Stderr = w

	if err := cmd.Run(); err != nil {
		code := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
		return buf.Bytes(), &ProcessError{Command: c.String(), ExitCode: code, Output: buf.Bytes(), Err: err}
	}
	return buf.Bytes(), nil
}
