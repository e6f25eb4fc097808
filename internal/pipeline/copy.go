package pipeline

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/sjc5/kit/pkg/fsutil"
	"golang.org/x/sync/errgroup"

	"github.com/sitepipe/sitepipe/internal/imageopt"
	"github.com/sitepipe/sitepipe/internal/taskgraph"
)

func (c *Config) copyTask(folder string) taskgraph.Task {
	src, dst := c.copyDirs(folder)
	return taskgraph.Task{
		Name:    taskName(KindCopy, folder),
		Kind:    KindCopy,
		Inputs:  []string{slash(src, "**", "*.*")},
		Outputs: []string{slash(dst, "**", "*.*")},
		Run: func(ctx context.Context) error {
			n, err := c.copyChanged(ctx, folder)
			if err != nil {
				return err
			}
			c.logger().Debugf("copy:%s: %d file(s) copied", folder, n)
			return nil
		},
	}
}

func (c *Config) copyDirs(folder string) (src, dst string) {
	switch folder {
	case "images":
		src = c.Dirs.Images
	case "fonts":
		src = c.Dirs.Fonts
	case "models":
		src = c.Dirs.Models
	}
	return src, slash(c.Dirs.Assets, folder)
}

// copyChanged copies every file whose destination is missing or older than
// the source. A missing source dir copies nothing.
func (c *Config) copyChanged(ctx context.Context, folder string) (int, error) {
	srcRel, dstRel := c.copyDirs(folder)
	srcDir, dstDir := c.path(srcRel), c.path(dstRel)

	if _, err := os.Stat(srcDir); os.IsNotExist(err) {
		return 0, nil
	}

	var files []string
	err := filepath.WalkDir(srcDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.Contains(d.Name(), ".") {
			return nil
		}
		files = append(files, p)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("error walking %s: %w", srcDir, err)
	}

	optimize := c.Production && folder == "images"
	var copied atomic.Int64

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(int(c.concurrency()))
	for _, src := range files {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rel, err := filepath.Rel(srcDir, src)
			if err != nil {
				return err
			}
			dst := filepath.Join(dstDir, rel)
			changed, err := isChanged(src, dst)
			if err != nil || !changed {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
				return fmt.Errorf("error creating %s: %w", filepath.Dir(dst), err)
			}
			if optimize && imageopt.Supported(src) {
				err = c.optimizeImage(src, dst)
			} else {
				err = fsutil.CopyFile(src, dst)
			}
			if err != nil {
				return fmt.Errorf("error copying %s: %w", rel, err)
			}
			copied.Add(1)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return int(copied.Load()), err
	}
	return int(copied.Load()), nil
}

func (c *Config) optimizeImage(src, dst string) error {
	content, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	out, err := imageopt.Optimize(filepath.Base(src), content, c.Images)
	if err != nil {
		return err
	}
	if len(out) < len(content) {
		c.logger().Debugf("optimized %s: %d -> %d bytes", filepath.Base(src), len(content), len(out))
	}
	return os.WriteFile(dst, out, 0644)
}

// isChanged reports whether dst is missing or older than src.
func isChanged(src, dst string) (bool, error) {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return false, err
	}
	dstInfo, err := os.Stat(dst)
	if os.IsNotExist(err) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return dstInfo.ModTime().Before(srcInfo.ModTime()), nil
}
