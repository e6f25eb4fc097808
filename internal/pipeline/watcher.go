package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounceWait = 30 * time.Millisecond

// Watch rebuilds styles whenever a file under the styles dir changes, until
// ctx is done. Failed rebuilds are logged and watching goes on.
func (c *Config) Watch(ctx context.Context) error {
	c.killPriorWatcher()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("error creating watcher: %w", err)
	}
	defer watcher.Close()

	stylesDir := c.path(c.Dirs.Styles)
	if err := addDirs(watcher, stylesDir); err != nil {
		return fmt.Errorf("error adding directories to watcher: %w", err)
	}

	pf := newPIDFile(c.path(c.Dirs.State))
	if err := pf.writePIDFile(os.Getpid(), currentExecutable()); err != nil {
		c.logger().Warningf("failed to write PID file: %v", err)
	}
	defer pf.deletePIDFile()
	c.logger().Infof("watching %s", stylesDir)

	q := newRebuildQueue()
	debouncer := newDebouncer(debounceWait, func(events []fsnotify.Event) {
		for _, dir := range newDirs(events) {
			if err := addDirs(watcher, dir); err != nil {
				c.logger().Errorf("error: failed to add directory to watcher: %v", err)
			}
		}
		if groups := c.groupsForEvents(events); len(groups) > 0 {
			q.push(groups)
		}
	})
	defer debouncer.stop()

	rebuildCtx, stopRebuilds := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.runRebuilds(rebuildCtx, q)
	}()
	defer func() {
		stopRebuilds()
		wg.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case evt, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			debouncer.addEvent(evt)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			c.logger().Errorf("watcher error: %v", err)
		}
	}
}

// runRebuilds serializes rebuilds. Groups changed while one runs are merged
// into the next.
func (c *Config) runRebuilds(ctx context.Context, q *rebuildQueue) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-q.ready:
		}
		groups := c.orderGroups(q.take())
		if len(groups) == 0 {
			continue
		}
		c.logger().Infof("change detected, rebuilding %v", groups)
		if err := c.RebuildStyles(ctx, groups); err != nil {
			c.logger().Errorf("rebuild failed: %v", err)
		}
	}
}

func (c *Config) orderGroups(set map[string]bool) []string {
	var out []string
	for _, g := range c.Groups {
		if set[g.Name] {
			out = append(out, g.Name)
		}
	}
	return out
}

type rebuildQueue struct {
	mu      sync.Mutex
	pending map[string]bool
	ready   chan struct{}
}

func newRebuildQueue() *rebuildQueue {
	return &rebuildQueue{pending: map[string]bool{}, ready: make(chan struct{}, 1)}
}

func (q *rebuildQueue) push(groups []string) {
	q.mu.Lock()
	for _, g := range groups {
		q.pending[g] = true
	}
	q.mu.Unlock()
	select {
	case q.ready <- struct{}{}:
	default:
	}
}

func (q *rebuildQueue) take() map[string]bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.pending
	q.pending = map[string]bool{}
	return out
}

func addDirs(watcher *fsnotify.Watcher, path string) error {
	return filepath.Walk(path, func(walkedPath string, info os.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("error walking path: %w", err)
		}
		if info.IsDir() {
			if err := watcher.Add(walkedPath); err != nil {
				return fmt.Errorf("error adding directory to watcher: %w", err)
			}
		}
		return nil
	})
}
