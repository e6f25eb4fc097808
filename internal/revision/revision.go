// Package revision stamps asset references in HTML fragments with the content
// hash of the file they point at, so browsers refetch only changed assets.
//
// A reference is any href or src attribute whose URL carries a rev query
// parameter, e.g. <link href="/assets/styles/style.home.css?rev=@@hash">.
package revision

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// ErrDangling is returned for a reference to a file that does not exist.
var ErrDangling = errors.New("reference to missing file")

var refRegex = regexp.MustCompile(`((?:href|src)\s*=\s*["'])([^"'?\s>]+)\?rev=([^"'\s>&]*)(["'&])`)

// Hash is the short content hash used as the revision.
func Hash(content []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(content))[:12]
}

type Reference struct {
	URL  string
	File string
	Rev  string
}

// Resolver maps a reference URL to a file path.
type Resolver func(url string) (path string, ok bool)

// RootResolver resolves site-absolute URLs against root and relative ones
// against dir. URLs with a scheme or host are left alone.
func RootResolver(root, dir string) Resolver {
	return func(url string) (string, bool) {
		if strings.Contains(url, "://") || strings.HasPrefix(url, "//") {
			return "", false
		}
		if strings.HasPrefix(url, "/") {
			return filepath.Join(root, filepath.FromSlash(url)), true
		}
		return filepath.Join(dir, filepath.FromSlash(url)), true
	}
}

// Rewrite replaces the rev value of every resolvable reference in src.
func Rewrite(src []byte, resolve Resolver) ([]byte, []Reference, error) {
	var refs []Reference
	var firstErr error
	out := refRegex.ReplaceAllFunc(src, func(m []byte) []byte {
		if firstErr != nil {
			return m
		}
		parts := refRegex.FindSubmatch(m)
		url := string(parts[2])
		path, ok := resolve(url)
		if !ok {
			return m
		}
		content, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				firstErr = fmt.Errorf("%w: %s (%s)", ErrDangling, url, path)
			} else {
				firstErr = fmt.Errorf("error reading %s: %w", path, err)
			}
			return m
		}
		rev := Hash(content)
		refs = append(refs, Reference{URL: url, File: path, Rev: rev})
		return []byte(string(parts[1]) + url + "?rev=" + rev + string(parts[4]))
	})
	if firstErr != nil {
		return nil, nil, firstErr
	}
	return out, refs, nil
}

// File rewrites src into dst. Site-absolute URLs resolve against root.
func File(root, src, dst string) ([]Reference, error) {
	content, err := os.ReadFile(src)
	if err != nil {
		return nil, fmt.Errorf("error reading revision source: %w", err)
	}
	out, refs, err := Rewrite(content, RootResolver(root, filepath.Dir(src)))
	if err != nil {
		return nil, fmt.Errorf("error revisioning %s: %w", src, err)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return nil, fmt.Errorf("error creating include directory: %w", err)
	}
	if err := os.WriteFile(dst, out, 0644); err != nil {
		return nil, fmt.Errorf("error writing %s: %w", dst, err)
	}
	return refs, nil
}
