// Package taskgraph models a build as a directed acyclic graph of tasks and
// runs it stage by stage, where a stage is the set of tasks sharing the same
// topological depth.
package taskgraph

import (
	"container/heap"
	"context"
	"sort"
)

type Kind string

// Task is a unit of build work. Inputs and Outputs are informational path
// patterns describing the files the task reads and writes.
type Task struct {
	Name    string
	Kind    Kind
	Group   string
	Inputs  []string
	Outputs []string
	Run     func(ctx context.Context) error
}

// Edge declares that To depends on From.
type Edge struct {
	From string
	To   string
}

// Graph is an immutable, validated DAG. Canonical order is insertion order.
type Graph struct {
	tasks    []Task
	index    map[string]int
	outgoing [][]int
	incoming [][]int
	depth    []int
}

// New builds and validates a Graph. It rejects empty or duplicate names,
// edges referencing unknown tasks, self-loops, duplicate edges and cycles.
func New(tasks []Task, edges []Edge) (*Graph, error) {
	if len(tasks) == 0 {
		return nil, invalidf("no tasks")
	}

	index := make(map[string]int, len(tasks))
	for i, t := range tasks {
		if t.Name == "" {
			return nil, invalidf("task name is required")
		}
		if _, exists := index[t.Name]; exists {
			return nil, invalidf("duplicate task name: %q", t.Name)
		}
		index[t.Name] = i
	}

	outgoing := make([][]int, len(tasks))
	incoming := make([][]int, len(tasks))
	seen := make(map[[2]int]struct{}, len(edges))
	for _, e := range edges {
		from, okFrom := index[e.From]
		to, okTo := index[e.To]
		if !okFrom {
			return nil, invalidf("edge references unknown task (from): %q", e.From)
		}
		if !okTo {
			return nil, invalidf("edge references unknown task (to): %q", e.To)
		}
		if from == to {
			return nil, invalidf("self-loop: %q", e.From)
		}
		pair := [2]int{from, to}
		if _, exists := seen[pair]; exists {
			return nil, invalidf("duplicate edge: %q -> %q", e.From, e.To)
		}
		seen[pair] = struct{}{}
		outgoing[from] = append(outgoing[from], to)
		incoming[to] = append(incoming[to], from)
	}
	for i := range tasks {
		sort.Ints(outgoing[i])
		sort.Ints(incoming[i])
	}

	g := &Graph{
		tasks:    append([]Task(nil), tasks...),
		index:    index,
		outgoing: outgoing,
		incoming: incoming,
	}

	order := g.topoOrderIndices()
	if len(order) != len(g.tasks) {
		return nil, cycleError(g.findCycle())
	}
	g.depth = g.computeDepth(order)
	return g, nil
}

// Len returns the number of tasks.
func (g *Graph) Len() int { return len(g.tasks) }

// Task returns a task by name.
func (g *Graph) Task(name string) (Task, bool) {
	i, ok := g.index[name]
	if !ok {
		return Task{}, false
	}
	return g.tasks[i], true
}

// Tasks returns the tasks in canonical order.
func (g *Graph) Tasks() []Task {
	return append([]Task(nil), g.tasks...)
}

// Dependencies returns the names of the direct dependencies of name.
func (g *Graph) Dependencies(name string) []string {
	i, ok := g.index[name]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(g.incoming[i]))
	for _, p := range g.incoming[i] {
		out = append(out, g.tasks[p].Name)
	}
	return out
}

// Depth is the length of the longest path from any root to the task.
func (g *Graph) Depth(name string) (int, bool) {
	i, ok := g.index[name]
	if !ok {
		return 0, false
	}
	return g.depth[i], true
}

// TopologicalOrder returns a deterministic topological ordering of task names.
func (g *Graph) TopologicalOrder() []string {
	order := g.topoOrderIndices()
	names := make([]string, 0, len(order))
	for _, i := range order {
		names = append(names, g.tasks[i].Name)
	}
	return names
}

// Stages groups tasks by depth. Every task in stage n depends only on tasks
// in stages before n.
func (g *Graph) Stages() [][]Task {
	maxDepth := 0
	for _, d := range g.depth {
		if d > maxDepth {
			maxDepth = d
		}
	}
	stages := make([][]Task, maxDepth+1)
	for i, t := range g.tasks {
		stages[g.depth[i]] = append(stages[g.depth[i]], t)
	}
	return stages
}

// Select returns the subgraph induced by the tasks for which keep reports
// true. Ordering through dropped tasks is preserved: if a kept task reaches
// another kept task only via dropped ones, the subgraph gets a direct edge.
func (g *Graph) Select(keep func(Task) bool) (*Graph, error) {
	kept := make([]bool, len(g.tasks))
	var tasks []Task
	for i, t := range g.tasks {
		if keep(t) {
			kept[i] = true
			tasks = append(tasks, t)
		}
	}
	if len(tasks) == 0 {
		return nil, invalidf("selection matched no tasks")
	}

	var edges []Edge
	for i := range g.tasks {
		if !kept[i] {
			continue
		}
		visited := make([]bool, len(g.tasks))
		stack := append([]int(nil), g.outgoing[i]...)
		for len(stack) > 0 {
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if visited[n] {
				continue
			}
			visited[n] = true
			if kept[n] {
				edges = append(edges, Edge{From: g.tasks[i].Name, To: g.tasks[n].Name})
				continue
			}
			stack = append(stack, g.outgoing[n]...)
		}
	}
	sort.SliceStable(edges, func(a, b int) bool {
		if edges[a].From != edges[b].From {
			return g.index[edges[a].From] < g.index[edges[b].From]
		}
		return g.index[edges[a].To] < g.index[edges[b].To]
	})
	return New(tasks, edges)
}

func (g *Graph) computeDepth(order []int) []int {
	depth := make([]int, len(g.tasks))
	for _, u := range order {
		for _, p := range g.incoming[u] {
			if depth[p]+1 > depth[u] {
				depth[u] = depth[p] + 1
			}
		}
	}
	return depth
}

type intMinHeap []int

func (h intMinHeap) Len() int           { return len(h) }
func (h intMinHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h intMinHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *intMinHeap) Push(x any)        { *h = append(*h, x.(int)) }
func (h *intMinHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// topoOrderIndices is Kahn's algorithm with a min-heap ready queue, so ties
// resolve by canonical index.
func (g *Graph) topoOrderIndices() []int {
	indeg := make([]int, len(g.tasks))
	for i := range g.tasks {
		indeg[i] = len(g.incoming[i])
	}

	ready := &intMinHeap{}
	for i, d := range indeg {
		if d == 0 {
			heap.Push(ready, i)
		}
	}

	out := make([]int, 0, len(indeg))
	for ready.Len() > 0 {
		n := heap.Pop(ready).(int)
		out = append(out, n)
		for _, m := range g.outgoing[n] {
			indeg[m]--
			if indeg[m] == 0 {
				heap.Push(ready, m)
			}
		}
	}
	return out
}

func (g *Graph) findCycle() []string {
	const (
		white = iota
		grey
		black
	)
	color := make([]int, len(g.tasks))
	var path []int
	var found []int

	var visit func(n int) bool
	visit = func(n int) bool {
		color[n] = grey
		path = append(path, n)
		for _, m := range g.outgoing[n] {
			if color[m] == grey {
				for i, p := range path {
					if p == m {
						found = append(append([]int(nil), path[i:]...), m)
						return true
					}
				}
			}
			if color[m] == white && visit(m) {
				return true
			}
		}
		path = path[:len(path)-1]
		color[n] = black
		return false
	}

	for i := range g.tasks {
		if color[i] == white && visit(i) {
			break
		}
	}
	names := make([]string, 0, len(found))
	for _, i := range found {
		names = append(names, g.tasks[i].Name)
	}
	return names
}
