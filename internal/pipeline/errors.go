package pipeline

import (
	"errors"

	"github.com/sitepipe/sitepipe/internal/subproc"
	"github.com/sitepipe/sitepipe/internal/taskgraph"
)

var errNoGroups = errors.New("no asset groups selected")

var errNoKinds = errors.New("no task kinds selected")

// ExitCode maps a run error to a process exit status: the status of the last
// failing task, which is the subprocess exit code when that task ran one and
// 1 otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	last := err
	if tes := taskErrors(err); len(tes) > 0 {
		last = tes[len(tes)-1]
	}
	if code, ok := subproc.ExitCode(last); ok {
		return code
	}
	return 1
}

// FailedTasks lists the names of the failed tasks in err, in graph order.
func FailedTasks(err error) []string {
	var names []string
	for _, te := range taskErrors(err) {
		names = append(names, te.Task)
	}
	return names
}

func taskErrors(err error) []*taskgraph.TaskError {
	var out []*taskgraph.TaskError
	var walk func(error)
	walk = func(e error) {
		if te, ok := e.(*taskgraph.TaskError); ok {
			out = append(out, te)
			return
		}
		switch x := e.(type) {
		case interface{ Unwrap() []error }:
			for _, inner := range x.Unwrap() {
				walk(inner)
			}
		case interface{ Unwrap() error }:
			if inner := x.Unwrap(); inner != nil {
				walk(inner)
			}
		}
	}
	if err != nil {
		walk(err)
	}
	return out
}
