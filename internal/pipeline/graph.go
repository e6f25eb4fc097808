package pipeline

import (
	"fmt"
	"path"
	"slices"

	"github.com/sitepipe/sitepipe/internal/taskgraph"
)

const (
	KindStyles            taskgraph.Kind = "styles"
	KindScripts           taskgraph.Kind = "scripts"
	KindCopy              taskgraph.Kind = "copy"
	KindGenerateAnalysis  taskgraph.Kind = "generate:analysis"
	KindPurge             taskgraph.Kind = "purge"
	KindGeneratePurged    taskgraph.Kind = "generate:purged"
	KindCritical          taskgraph.Kind = "critical"
	KindRevision          taskgraph.Kind = "revision"
	KindServiceWorkerURLs taskgraph.Kind = "sw-urls"
	KindActivation        taskgraph.Kind = "activation"
	KindGenerateFinal     taskgraph.Kind = "generate:final"
)

// watchKinds make up the style-only rebuild.
var watchKinds = map[taskgraph.Kind]bool{
	KindStyles:           true,
	KindGenerateAnalysis: true,
	KindPurge:            true,
	KindGeneratePurged:   true,
	KindCritical:         true,
}

// Kinds lists every task kind in pipeline order.
var Kinds = []taskgraph.Kind{
	KindStyles, KindScripts, KindCopy, KindGenerateAnalysis, KindPurge,
	KindGeneratePurged, KindCritical, KindRevision, KindServiceWorkerURLs,
	KindActivation, KindGenerateFinal,
}

var copyFolders = []string{"images", "fonts", "models"}

// Graph builds the full task graph. Both plans are derived from it.
func (c *Config) Graph() (*taskgraph.Graph, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}

	var tasks []taskgraph.Task
	var edges []taskgraph.Edge
	add := func(t taskgraph.Task, deps ...string) {
		tasks = append(tasks, t)
		for _, d := range deps {
			edges = append(edges, taskgraph.Edge{From: d, To: t.Name})
		}
	}

	// Sources. Everything here feeds the first generator run.
	var preGenerate []string
	for _, g := range c.Groups {
		t := c.stylesTask(g)
		add(t)
		preGenerate = append(preGenerate, t.Name)
	}
	scripts := c.scriptsTask()
	add(scripts)
	preGenerate = append(preGenerate, scripts.Name)

	var copies []string
	for _, folder := range copyFolders {
		t := c.copyTask(folder)
		add(t)
		copies = append(copies, t.Name)
	}
	preGenerate = append(preGenerate, copies...)

	var activations []string
	for _, s := range c.Activations {
		t := c.activationTask(s)
		add(t)
		activations = append(activations, t.Name)
	}

	// Analysis pass, purge, purged pass, critical.
	analysis := c.generateTask(KindGenerateAnalysis)
	add(analysis, preGenerate...)

	var purges []string
	for _, g := range c.Groups {
		t := c.purgeTask(g)
		add(t, analysis.Name)
		purges = append(purges, t.Name)
	}

	purged := c.generateTask(KindGeneratePurged)
	add(purged, purges...)

	var finalDeps []string
	for _, g := range c.Groups {
		crit := c.criticalTask(g)
		add(crit, purged.Name)

		rev := c.revisionTask(g.Section())
		add(rev, crit.Name)
		sw := c.serviceWorkerURLsTask(g.Section())
		add(sw, rev.Name)
		finalDeps = append(finalDeps, rev.Name, sw.Name)
	}
	for _, s := range c.Scripts {
		rev := c.revisionTask(s.Section)
		add(rev, scripts.Name)
		sw := c.serviceWorkerURLsTask(s.Section)
		add(sw, rev.Name)
		finalDeps = append(finalDeps, rev.Name, sw.Name)
	}
	finalDeps = append(finalDeps, copies...)
	finalDeps = append(finalDeps, activations...)

	add(c.generateTask(KindGenerateFinal), finalDeps...)

	return taskgraph.New(tasks, edges)
}

// FullPlan is every task.
func (c *Config) FullPlan() (*taskgraph.Graph, error) {
	return c.Graph()
}

// WatchPlan is the style-only rebuild for the given groups: compile, generate,
// purge, generate, critical. Ordering comes from the full graph.
func (c *Config) WatchPlan(groups []string) (*taskgraph.Graph, error) {
	if len(groups) == 0 {
		return nil, errNoGroups
	}
	selected := map[string]bool{}
	for _, name := range groups {
		if _, ok := c.group(name); !ok {
			return nil, fmt.Errorf("unknown group %q", name)
		}
		selected[name] = true
	}
	g, err := c.Graph()
	if err != nil {
		return nil, err
	}
	return g.Select(func(t taskgraph.Task) bool {
		if !watchKinds[t.Kind] {
			return false
		}
		return t.Group == "" || selected[t.Group]
	})
}

// KindPlan holds only the tasks of the given kinds, such as "scripts" or
// "copy", ordered as in the full graph.
func (c *Config) KindPlan(kinds []string) (*taskgraph.Graph, error) {
	if len(kinds) == 0 {
		return nil, errNoKinds
	}
	selected := map[taskgraph.Kind]bool{}
	for _, name := range kinds {
		if !slices.Contains(Kinds, taskgraph.Kind(name)) {
			return nil, fmt.Errorf("unknown task kind %q", name)
		}
		selected[taskgraph.Kind(name)] = true
	}
	g, err := c.Graph()
	if err != nil {
		return nil, err
	}
	return g.Select(func(t taskgraph.Task) bool {
		return selected[t.Kind]
	})
}

func (c *Config) validate() error {
	if len(c.Groups) == 0 {
		return errNoGroups
	}
	seen := map[string]bool{}
	for _, g := range c.Groups {
		if g.Name == "" || g.Stylesheet == "" {
			return fmt.Errorf("group needs a name and a stylesheet: %+v", g)
		}
		if seen[g.Name] {
			return fmt.Errorf("duplicate group %q", g.Name)
		}
		seen[g.Name] = true
	}
	sections := map[string]bool{}
	for _, s := range c.Sections() {
		if sections[s] {
			return fmt.Errorf("duplicate revision section %q", s)
		}
		sections[s] = true
	}
	if c.Generator.Name == "" {
		return fmt.Errorf("no generator command configured")
	}
	return nil
}

func taskName(kind taskgraph.Kind, suffix string) string {
	if suffix == "" {
		return string(kind)
	}
	return string(kind) + ":" + suffix
}

// slash joins relative path patterns for task declarations.
func slash(parts ...string) string { return path.Join(parts...) }
