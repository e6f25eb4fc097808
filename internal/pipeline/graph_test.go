package pipeline

import (
	"errors"
	"slices"
	"testing"

	"github.com/sitepipe/sitepipe/internal/taskgraph"
)

func depthOf(t *testing.T, g *taskgraph.Graph, name string) int {
	t.Helper()
	d, ok := g.Depth(name)
	if !ok {
		t.Fatalf("task %s not in graph", name)
	}
	return d
}

func TestFullPlan(t *testing.T) {
	env := setupTestEnv(t)
	g, err := env.config.FullPlan()
	if err != nil {
		t.Fatalf("FullPlan() error = %v", err)
	}

	generations := 0
	for _, task := range g.Tasks() {
		switch task.Kind {
		case KindGenerateAnalysis, KindGeneratePurged, KindGenerateFinal:
			generations++
		}
	}
	if generations != 3 {
		t.Errorf("generator tasks = %d, want 3", generations)
	}

	before := [][2]string{
		{"styles:home", "generate:analysis"},
		{"scripts", "generate:analysis"},
		{"copy:images", "generate:analysis"},
		{"generate:analysis", "purge:blog-post"},
		{"purge:blog-post", "generate:purged"},
		{"generate:purged", "critical:blog-post"},
		{"critical:blog-post", "revision:css-blog-post"},
		{"revision:css-blog-post", "sw-urls:css-blog-post"},
		{"scripts", "revision:js-home"},
		{"sw-urls:css-error", "generate:final"},
		{"activation:js-blog", "generate:final"},
	}
	for _, pair := range before {
		if depthOf(t, g, pair[0]) >= depthOf(t, g, pair[1]) {
			t.Errorf("%s must run before %s", pair[0], pair[1])
		}
	}

	stages := g.Stages()
	last := stages[len(stages)-1]
	if len(last) != 1 || last[0].Name != "generate:final" {
		t.Errorf("last stage = %v, want generate:final alone", last)
	}
}

func TestWatchPlan(t *testing.T) {
	env := setupTestEnv(t)

	g, err := env.config.WatchPlan([]string{"home"})
	if err != nil {
		t.Fatalf("WatchPlan() error = %v", err)
	}
	want := []string{"styles:home", "generate:analysis", "purge:home", "generate:purged", "critical:home"}
	got := g.TopologicalOrder()
	if len(got) != len(want) {
		t.Fatalf("WatchPlan() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("WatchPlan()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
	if n := len(g.Stages()); n != 5 {
		t.Errorf("stages = %d, want 5", n)
	}

	multi, err := env.config.WatchPlan([]string{"home", "blog-post"})
	if err != nil {
		t.Fatalf("WatchPlan() error = %v", err)
	}
	if multi.Len() != 8 {
		t.Errorf("two-group plan has %d tasks, want 8", multi.Len())
	}
}

func TestWatchPlan_Errors(t *testing.T) {
	env := setupTestEnv(t)
	if _, err := env.config.WatchPlan(nil); !errors.Is(err, errNoGroups) {
		t.Errorf("WatchPlan(nil) error = %v", err)
	}
	if _, err := env.config.WatchPlan([]string{"nope"}); err == nil {
		t.Error("WatchPlan() expected error for unknown group")
	}
}

func TestGraph_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"no groups", func(c *Config) { c.Groups = nil }},
		{"duplicate group", func(c *Config) { c.Groups = append(c.Groups, c.Groups[0]) }},
		{"no generator", func(c *Config) { c.Generator.Name = "" }},
		{"duplicate section", func(c *Config) { c.Scripts[1].Section = c.Scripts[0].Section }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestEnv(t)
			tt.mutate(env.config)
			if _, err := env.config.Graph(); err == nil {
				t.Error("Graph() expected error")
			}
		})
	}
}

func TestKindPlan(t *testing.T) {
	env := setupTestEnv(t)

	tests := []struct {
		name  string
		kinds []string
		want  []string
	}{
		{"scripts", []string{"scripts"}, []string{"scripts"}},
		{"copy", []string{"copy"}, []string{"copy:images", "copy:fonts", "copy:models"}},
		{"scripts then revision", []string{"revision", "scripts"},
			[]string{"scripts", "revision:js-blog", "revision:js-home"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := env.config.KindPlan(tt.kinds)
			if err != nil {
				t.Fatalf("KindPlan() error = %v", err)
			}
			for _, name := range tt.want {
				if _, ok := g.Task(name); !ok {
					t.Errorf("KindPlan(%v) lacks %s: %v", tt.kinds, name, g.TopologicalOrder())
				}
			}
			for _, task := range g.Tasks() {
				if !slices.Contains(tt.kinds, string(task.Kind)) {
					t.Errorf("KindPlan(%v) holds %s", tt.kinds, task.Name)
				}
			}
		})
	}

	g, err := env.config.KindPlan([]string{"scripts", "revision"})
	if err != nil {
		t.Fatal(err)
	}
	if depthOf(t, g, "scripts") >= depthOf(t, g, "revision:js-home") {
		t.Error("scripts must run before its revision")
	}
}

func TestKindPlan_Errors(t *testing.T) {
	env := setupTestEnv(t)
	if _, err := env.config.KindPlan(nil); !errors.Is(err, errNoKinds) {
		t.Errorf("KindPlan(nil) error = %v", err)
	}
	if _, err := env.config.KindPlan([]string{"images"}); err == nil {
		t.Error("KindPlan() expected error for unknown kind")
	}
}
