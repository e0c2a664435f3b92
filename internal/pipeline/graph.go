// Package pipeline runs named build tasks in dependency order.
//
// Tasks are grouped into stages by topological depth. Every task of a stage
// runs concurrently and the next stage starts only once the whole stage has
// returned, so a task may read anything an earlier stage wrote to disk.
package pipeline

import (
	"context"
	"sort"
)

type RunFunc func(ctx context.Context) error

type Task struct {
	Name string
	Deps []string
	Run  RunFunc
}

// Graph is a validated, immutable set of tasks.
type Graph struct {
	tasks  map[string]Task
	depth  map[string]int
	stages [][]string
}

// NewGraph validates tasks and computes their stages. It rejects empty or
// duplicate names, missing Run funcs, unknown or self dependencies and cycles.
func NewGraph(tasks ...Task) (*Graph, error) {
	if len(tasks) == 0 {
		return nil, invalidf("no tasks")
	}

	byName := make(map[string]Task, len(tasks))
	for _, t := range tasks {
		if t.Name == "" {
			return nil, invalidf("task name is required")
		}
		if _, dup := byName[t.Name]; dup {
			return nil, invalidf("duplicate task name: %q", t.Name)
		}
		if t.Run == nil {
			return nil, invalidf("task %q has no run func", t.Name)
		}
		byName[t.Name] = t
	}

	indeg := make(map[string]int, len(byName))
	dependents := make(map[string][]string, len(byName))
	for _, t := range tasks {
		seen := make(map[string]struct{}, len(t.Deps))
		for _, d := range t.Deps {
			if d == t.Name {
				return nil, invalidf("task %q depends on itself", t.Name)
			}
			if _, ok := byName[d]; !ok {
				return nil, invalidf("task %q depends on unknown task %q", t.Name, d)
			}
			if _, dup := seen[d]; dup {
				continue
			}
			seen[d] = struct{}{}
			indeg[t.Name]++
			dependents[d] = append(dependents[d], t.Name)
		}
	}

	// Kahn's algorithm, one depth level at a time
	depth := make(map[string]int, len(byName))
	var stages [][]string
	var ready []string
	for name := range byName {
		if indeg[name] == 0 {
			ready = append(ready, name)
		}
	}
	placed := 0
	for level := 0; len(ready) > 0; level++ {
		sort.Strings(ready)
		stages = append(stages, ready)
		placed += len(ready)

		var next []string
		for _, name := range ready {
			depth[name] = level
			for _, m := range dependents[name] {
				indeg[m]--
				if indeg[m] == 0 {
					next = append(next, m)
				}
			}
		}
		ready = next
	}

	if placed != len(byName) {
		var stuck []string
		for name := range byName {
			if _, ok := depth[name]; !ok {
				stuck = append(stuck, name)
			}
		}
		sort.Strings(stuck)
		return nil, cycleError(stuck)
	}

	return &Graph{tasks: byName, depth: depth, stages: stages}, nil
}

// Stages returns task names grouped by depth, sorted within each stage.
func (g *Graph) Stages() [][]string {
	out := make([][]string, len(g.stages))
	for i, s := range g.stages {
		out[i] = append([]string(nil), s...)
	}
	return out
}

func (g *Graph) Depth(name string) (int, bool) {
	d, ok := g.depth[name]
	return d, ok
}

func (g *Graph) Len() int { return len(g.tasks) }
