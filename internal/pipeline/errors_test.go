package pipeline

import (
	"errors"
	"fmt"
	"testing"

	"github.com/sitepipe/sitepipe/internal/subproc"
	"github.com/sitepipe/sitepipe/internal/taskgraph"
)

func TestExitCode(t *testing.T) {
	genErr := &taskgraph.TaskError{Task: "generate:analysis", Err: &subproc.ProcessError{Command: "./_scripts/build.sh", ExitCode: 12}}
	styleErr := &taskgraph.TaskError{Task: "styles:home", Err: errors.New("bad scss")}
	swErr := &taskgraph.TaskError{Task: "sw-urls:js-home", Err: &subproc.ProcessError{Command: "x", ExitCode: 7}}

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"plain error", errors.New("graph"), 1},
		{"subprocess", errors.Join(genErr), 12},
		{"last failing task wins", errors.Join(swErr, styleErr), 1},
		{"last failing subprocess wins", errors.Join(styleErr, swErr), 7},
		{"wrapped", fmt.Errorf("rebuild: %w", errors.Join(genErr)), 12},
		{"never started", &subproc.ProcessError{Command: "x", ExitCode: -1}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFailedTasks(t *testing.T) {
	err := errors.Join(
		&taskgraph.TaskError{Task: "purge:home", Err: errors.New("a")},
		&taskgraph.TaskError{Task: "purge:error", Err: errors.New("b")},
	)
	got := FailedTasks(err)
	if len(got) != 2 || got[0] != "purge:home" || got[1] != "purge:error" {
		t.Errorf("FailedTasks() = %v", got)
	}
	if FailedTasks(nil) != nil {
		t.Error("FailedTasks(nil) should be nil")
	}
}
