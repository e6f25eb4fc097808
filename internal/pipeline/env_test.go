package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/sitepipe/sitepipe/internal/bundle"
	"github.com/sitepipe/sitepipe/internal/sass"
	"github.com/sitepipe/sitepipe/internal/subproc"
)

const testCSS = `.hero { color: red; }
.used { color: blue; }
.unused { color: green; }
.js-injected { display: block; }
.footer-icon { width: 1px; }
`

const testPage = `<!doctype html>
<html><head><title>t</title></head>
<body>
<header class="hero">Hi</header>
<div class="used">text</div>
<footer><span class="footer-icon"></span></footer>
</body></html>`

// testEnv is a site root with sources for every group and fakes for the
// external tools.
type testEnv struct {
	root     string
	config   *Config
	compiler *fakeCompiler
	bundler  *fakeBundler
	runner   *fakeRunner
	logs     *syncBuffer
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	root := t.TempDir()
	env := &testEnv{root: root, logs: &syncBuffer{}}

	config := DefaultConfig(root)
	config.Concurrency = 4
	env.compiler = &fakeCompiler{calls: map[string]int{}}
	env.bundler = &fakeBundler{}
	env.runner = &fakeRunner{env: env}
	config.Compiler = env.compiler
	config.Bundler = env.bundler
	config.Runner = env.runner
	config.Logger = NewLoggerTo(env.logs, "test", true)
	env.config = config

	for _, g := range config.Groups {
		env.createTestFile(t, filepath.Join("_css", g.Stylesheet+".scss"), testCSS)
		env.createTestFile(t, "dependencies-"+g.Section()+".html",
			`<link rel="stylesheet" href="/assets/styles/`+g.Stylesheet+`.css?rev=@@hash">`)
	}
	env.createTestFile(t, "_css/_variables.scss", "$accent: red;")
	for _, s := range config.Scripts {
		env.createTestFile(t, filepath.Join("_js", s.Source), "console.log('"+s.Name+"')")
		env.createTestFile(t, "dependencies-"+s.Section+".html",
			`<script src="/assets/js/`+s.Name+`.min.js?rev=@@hash" defer></script>`)
	}
	env.createTestFile(t, "_fonts/open-sans.woff2", "font")
	return env
}

// createTestFile creates a file with given content under the site root
func (env *testEnv) createTestFile(t *testing.T, relativePath, content string) string {
	t.Helper()

	fullPath := filepath.Join(env.root, relativePath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		t.Fatalf("Failed to create directory %s: %v", filepath.Dir(fullPath), err)
	}
	if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write file %s: %v", fullPath, err)
	}
	return fullPath
}

func (env *testEnv) readFile(t *testing.T, relativePath string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(env.root, relativePath))
	if err != nil {
		t.Fatalf("Failed to read %s: %v", relativePath, err)
	}
	return string(b)
}

// fakeCompiler treats SCSS sources as plain CSS.
type fakeCompiler struct {
	mu    sync.Mutex
	calls map[string]int
	fail  map[string]error
}

func (f *fakeCompiler) Compile(src string, opts sass.Options) ([]byte, error) {
	base := strings.TrimSuffix(filepath.Base(src), ".scss")
	f.mu.Lock()
	f.calls[base]++
	err := f.fail[base]
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return os.ReadFile(src)
}

func (f *fakeCompiler) count(stylesheet string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[stylesheet]
}

type fakeBundler struct {
	mu    sync.Mutex
	calls int
	opts  bundle.Options
	err   error
}

func (f *fakeBundler) Bundle(entries []bundle.Entry, opts bundle.Options) (*bundle.Result, error) {
	f.mu.Lock()
	f.calls++
	f.opts = opts
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	res := &bundle.Result{}
	for _, e := range entries {
		out := filepath.Join(opts.Outdir, e.Name+".min.js")
		if err := os.MkdirAll(opts.Outdir, 0755); err != nil {
			return nil, err
		}
		src, err := os.ReadFile(e.Source)
		if err != nil {
			return nil, err
		}
		content := string(src) + "\ndocument.body.classList.add('js-injected')\n"
		if err := os.WriteFile(out, []byte(content), 0644); err != nil {
			return nil, err
		}
		res.Outputs = append(res.Outputs, out)
	}
	return res, nil
}

// fakeRunner plays the site generator: it publishes assets into _site and
// renders every group's page. It also records precache script calls.
type fakeRunner struct {
	env *testEnv

	mu          sync.Mutex
	generations int
	// homeCSS is assets/styles/style.home.css as seen by each generator run.
	homeCSS  []string
	precache []string
	// failAt makes the n-th generator run (1-based) exit with status 3.
	failAt int
	// skipPage is never rendered.
	skipPage string
}

func (f *fakeRunner) Run(ctx context.Context, cmd subproc.Command) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if cmd.Name == f.env.config.Precache.Name {
		f.precache = append(f.precache, strings.Join(cmd.Args, " "))
		return nil, nil
	}

	f.generations++
	if f.failAt == f.generations {
		return []byte("Liquid Exception"), &subproc.ProcessError{Command: cmd.String(), ExitCode: 3, Output: []byte("Liquid Exception")}
	}

	root := f.env.root
	home, _ := os.ReadFile(filepath.Join(root, "assets", "styles", "style.home.css"))
	f.homeCSS = append(f.homeCSS, string(home))

	for _, dir := range []string{"styles", "js"} {
		entries, _ := os.ReadDir(filepath.Join(root, "assets", dir))
		for _, e := range entries {
			content, err := os.ReadFile(filepath.Join(root, "assets", dir, e.Name()))
			if err != nil {
				return nil, err
			}
			if err := writeTo(filepath.Join(root, "_site", "assets", dir, e.Name()), content); err != nil {
				return nil, err
			}
		}
	}
	for _, g := range f.env.config.Groups {
		if g.Page == f.skipPage {
			continue
		}
		if err := writeTo(filepath.Join(root, "_site", filepath.FromSlash(g.Page)), []byte(testPage)); err != nil {
			return nil, err
		}
	}
	return []byte(fmt.Sprintf("generation %d done", f.generations)), nil
}

func (f *fakeRunner) generatorRuns() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.generations
}

func writeTo(path string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, content, 0644)
}
