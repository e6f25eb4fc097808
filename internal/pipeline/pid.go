package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

const pidFile = "watch.pid"

// PIDFile records the running watcher as "<pid>\n<executable>\n".
type PIDFile struct {
	stateDir string
}

func newPIDFile(stateDir string) *PIDFile {
	return &PIDFile{stateDir: stateDir}
}

func (p *PIDFile) getPIDFileRef() string {
	return filepath.Join(p.stateDir, pidFile)
}

func (p *PIDFile) writePIDFile(pid int, exe string) error {
	if err := os.MkdirAll(p.stateDir, 0755); err != nil {
		return fmt.Errorf("error creating state dir: %w", err)
	}
	content := strconv.Itoa(pid) + "\n" + exe + "\n"
	return os.WriteFile(p.getPIDFileRef(), []byte(content), 0644)
}

// readPIDFile returns 0 when there is no PID file. The executable is empty
// for files that do not record one.
func (p *PIDFile) readPIDFile() (int, string, error) {
	data, err := os.ReadFile(p.getPIDFileRef())
	if err != nil {
		if os.IsNotExist(err) {
			return 0, "", nil
		}
		return 0, "", fmt.Errorf("error reading PID file: %w", err)
	}
	lines := strings.SplitN(strings.TrimSpace(string(data)), "\n", 2)
	pid, err := strconv.Atoi(strings.TrimSpace(lines[0]))
	if err != nil {
		return 0, "", fmt.Errorf("error parsing PID file: %w", err)
	}
	var exe string
	if len(lines) == 2 {
		exe = strings.TrimSpace(lines[1])
	}
	return pid, exe, nil
}

func (p *PIDFile) deletePIDFile() error {
	err := os.Remove(p.getPIDFileRef())
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// killPriorWatcher stops a watcher left running by an earlier invocation.
// A recorded PID that is gone, or that now belongs to another program, only
// clears the stale PID file.
func (c *Config) killPriorWatcher() {
	pf := newPIDFile(c.path(c.Dirs.State))

	priorPID, exe, err := pf.readPIDFile()
	if err != nil || priorPID <= 0 || priorPID == os.Getpid() {
		return
	}
	priorProcess, err := os.FindProcess(priorPID)
	if err != nil {
		return
	}
	if err := priorProcess.Signal(syscall.Signal(0)); err != nil {
		pf.deletePIDFile()
		return
	}
	if !isSameExecutable(priorPID, exe) {
		c.logger().Warningf("pid %d from %s is not a prior watcher, leaving it running", priorPID, pf.getPIDFileRef())
		pf.deletePIDFile()
		return
	}
	if err := priorProcess.Kill(); err != nil {
		if !errors.Is(err, os.ErrProcessDone) {
			c.logger().Warningf("failed to stop prior watcher with pid %d: %v", priorPID, err)
		}
		return
	}
	c.logger().Infof("stopped prior watcher with pid %d", priorPID)
}

// isSameExecutable compares the executable recorded in the PID file with the
// one pid is running. Without /proc the recorded PID is trusted.
func isSameExecutable(pid int, recorded string) bool {
	if recorded == "" {
		return false
	}
	running, err := os.Readlink(filepath.Join("/proc", strconv.Itoa(pid), "exe"))
	if err != nil {
		if _, statErr := os.Stat("/proc/self/exe"); statErr != nil {
			return true
		}
		return false
	}
	return resolvePath(running) == resolvePath(recorded)
}

func resolvePath(p string) string {
	if resolved, err := filepath.EvalSymlinks(p); err == nil {
		return resolved
	}
	return filepath.Clean(p)
}

func currentExecutable() string {
	exe, err := os.Executable()
	if err != nil {
		return ""
	}
	return exe
}
