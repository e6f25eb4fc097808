// Package sass compiles SCSS entry points to CSS with libsass.
package sass

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	libsass "github.com/wellington/go-libsass"
)

type Options struct {
	Compressed   bool
	IncludePaths []string
}

// Compiler turns one SCSS entry point into CSS.
type Compiler interface {
	Compile(src string, opts Options) ([]byte, error)
}

// Libsass is the libsass-backed Compiler.
type Libsass struct{}

func (Libsass) Compile(src string, opts Options) ([]byte, error) {
	in, err := os.Open(src)
	if err != nil {
		return nil, fmt.Errorf("error opening scss source: %w", err)
	}
	defer in.Close()

	style := libsass.NESTED_STYLE
	if opts.Compressed {
		style = libsass.COMPRESSED_STYLE
	}
	includes := append([]string{filepath.Dir(src)}, opts.IncludePaths...)

	var out bytes.Buffer
	compiler, err := libsass.New(&out, in,
		libsass.IncludePaths(includes),
		libsass.OutputStyle(style),
		libsass.Comments(false),
		libsass.LineComments(false),
	)
	if err != nil {
		return nil, fmt.Errorf("error creating scss compiler: %w", err)
	}
	if err := compiler.Run(); err != nil {
		return nil, fmt.Errorf("error compiling %s: %w", src, err)
	}
	return out.Bytes(), nil
}

// CompileFile compiles src and writes the result to dst, creating parent
// directories. Nothing is written when compilation fails.
func CompileFile(c Compiler, src, dst string, opts Options) error {
	css, err := c.Compile(src, opts)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("error creating output directory: %w", err)
	}
	if err := os.WriteFile(dst, css, 0644); err != nil {
		return fmt.Errorf("error writing %s: %w", dst, err)
	}
	return nil
}
