package taskgraph

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidGraph is the sentinel matched by every graph construction error.
var ErrInvalidGraph = errors.New("invalid task graph")

type graphError struct {
	msg string
}

func (e *graphError) Error() string { return ErrInvalidGraph.Error() + ": " + e.msg }
func (e *graphError) Is(target error) bool {
	return target == ErrInvalidGraph
}

func invalidf(format string, args ...any) error {
	return &graphError{msg: fmt.Sprintf(format, args...)}
}

func cycleError(path []string) error {
	if len(path) == 0 {
		return invalidf("cycle")
	}
	return invalidf("cycle: %s", strings.Join(path, " -> "))
}

// TaskError reports the failure of a single task.
type TaskError struct {
	Task string
	Err  error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("error during task %s: %v", e.Task, e.Err)
}

func (e *TaskError) Unwrap() error { return e.Err }
