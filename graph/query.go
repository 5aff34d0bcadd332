package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/snapsam/gradle/module"
)

// Get returns the node for a key, or nil if not found.
func (g *Graph) Get(key Key) *Node {
	return g.Modules[key]
}

// GetByID returns the node for a module identity, whatever version was
// selected. Returns nil if the module is not in the graph.
func (g *Graph) GetByID(id module.ID) *Node {
	for key, node := range g.Modules {
		if key.Group == id.Group && key.Name == id.Name {
			return node
		}
	}
	return nil
}

// Contains reports whether the graph contains the given coordinate.
func (g *Graph) Contains(key Key) bool {
	_, ok := g.Modules[key]
	return ok
}

// ContainsID reports whether any version of the module is in the graph.
func (g *Graph) ContainsID(id module.ID) bool {
	return g.GetByID(id) != nil
}

// DirectDeps returns the direct dependencies of a module.
func (g *Graph) DirectDeps(key Key) []Key {
	if node := g.Modules[key]; node != nil {
		return node.Dependencies
	}
	return nil
}

// DirectDependents returns modules that directly depend on the given module.
func (g *Graph) DirectDependents(key Key) []Key {
	if node := g.Modules[key]; node != nil {
		return node.Dependents
	}
	return nil
}

// TransitiveDeps returns all transitive dependencies of a module in
// breadth-first order.
func (g *Graph) TransitiveDeps(key Key) []Key {
	result := make([]Key, 0)
	visited := map[Key]bool{key: true}

	queue := []Key{key}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		node := g.Modules[current]
		if node == nil {
			continue
		}
		for _, dep := range node.Dependencies {
			if !visited[dep] {
				visited[dep] = true
				result = append(result, dep)
				queue = append(queue, dep)
			}
		}
	}
	return result
}

// TransitiveDependents returns all modules that transitively depend on the
// given module, closest dependents first.
func (g *Graph) TransitiveDependents(key Key) []Key {
	result := make([]Key, 0)
	visited := map[Key]bool{key: true}

	queue := []Key{key}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		node := g.Modules[current]
		if node == nil {
			continue
		}
		for _, dep := range node.Dependents {
			if !visited[dep] {
				visited[dep] = true
				result = append(result, dep)
				queue = append(queue, dep)
			}
		}
	}
	return result
}

// Path finds the shortest dependency path from one module to another.
// Returns nil if no path exists.
func (g *Graph) Path(from, to Key) []Key {
	if from == to {
		return []Key{from}
	}

	type queueItem struct {
		key  Key
		path []Key
	}

	visited := map[Key]bool{from: true}
	queue := []queueItem{{key: from, path: []Key{from}}}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		node := g.Modules[current.key]
		if node == nil {
			continue
		}
		for _, dep := range node.Dependencies {
			if dep == to {
				return append(current.path, dep)
			}
			if !visited[dep] {
				visited[dep] = true
				next := make([]Key, len(current.path)+1)
				copy(next, current.path)
				next[len(current.path)] = dep
				queue = append(queue, queueItem{key: dep, path: next})
			}
		}
	}
	return nil
}

// AllPaths finds all dependency paths from one module to another. This can
// be expensive for graphs with heavy diamond sharing.
func (g *Graph) AllPaths(from, to Key) [][]Key {
	var result [][]Key
	g.findAllPaths(from, to, []Key{from}, make(map[Key]bool), &result)
	return result
}

func (g *Graph) findAllPaths(current, target Key, path []Key, visited map[Key]bool, result *[][]Key) {
	if current == target {
		pathCopy := make([]Key, len(path))
		copy(pathCopy, path)
		*result = append(*result, pathCopy)
		return
	}

	visited[current] = true
	defer func() { visited[current] = false }()

	node := g.Modules[current]
	if node == nil {
		return
	}
	for _, dep := range node.Dependencies {
		if !visited[dep] {
			g.findAllPaths(dep, target, append(path, dep), visited, result)
		}
	}
}

// Explain returns a detailed explanation of why a module is at its selected
// version: the selection info, every root-to-module chain, and a request
// summary listing all candidates.
func (g *Graph) Explain(id module.ID) (*Explanation, error) {
	node := g.GetByID(id)
	if node == nil {
		return nil, fmt.Errorf("module %q not found in graph", id)
	}

	explanation := &Explanation{
		Module:    node.Key,
		Selection: node.Selection,
	}

	paths := g.AllPaths(g.Root, node.Key)
	for _, path := range paths {
		chain := DependencyChain{Path: path}
		if len(path) >= 2 {
			parent := path[len(path)-2]
			if requested, ok := node.Requested[Label(parent)]; ok {
				chain.RequestedVersion = requested
			}
		}
		explanation.DependencyChains = append(explanation.DependencyChains, chain)
	}

	explanation.RequestSummary = g.buildRequestSummary(node)
	return explanation, nil
}

func (g *Graph) buildRequestSummary(node *Node) string {
	if node.Selection == nil || len(node.Selection.Candidates) == 0 {
		return fmt.Sprintf("%s is at version %s", node.Key.ID(), node.Key.Version)
	}

	var parts []string
	for _, candidate := range node.Selection.Candidates {
		part := fmt.Sprintf("  %s requested by: %s",
			candidate.Version, strings.Join(candidate.RequestedBy, ", "))
		if candidate.Selected {
			part += " [SELECTED]"
		}
		parts = append(parts, part)
	}

	return fmt.Sprintf("%s version selection:\n%s\nStrategy: %s (%s)",
		node.Key.ID(),
		strings.Join(parts, "\n"),
		node.Selection.Strategy,
		node.Selection.DecidingFactor,
	)
}

// WhyIncluded returns all dependency chains that cause a module to be
// included in the graph.
func (g *Graph) WhyIncluded(id module.ID) ([]DependencyChain, error) {
	node := g.GetByID(id)
	if node == nil {
		return nil, fmt.Errorf("module %q not found in graph", id)
	}

	paths := g.AllPaths(g.Root, node.Key)
	chains := make([]DependencyChain, len(paths))
	for i, path := range paths {
		chains[i] = DependencyChain{Path: path}
	}
	return chains, nil
}

// SortedKeys returns all node keys in deterministic order, the root first.
func (g *Graph) SortedKeys() []Key {
	keys := make([]Key, 0, len(g.Modules))
	for key := range g.Modules {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i] == g.Root {
			return true
		}
		if keys[j] == g.Root {
			return false
		}
		return keys[i].String() < keys[j].String()
	})
	return keys
}

// GetStats returns statistics about the graph.
func (g *Graph) GetStats() Stats {
	stats := Stats{
		TotalModules: len(g.Modules) - 1,
	}
	if stats.TotalModules < 0 {
		stats.TotalModules = 0
	}

	if root := g.Modules[g.Root]; root != nil {
		stats.DirectDependencies = len(root.Dependencies)
	}

	stats.TransitiveDependencies = stats.TotalModules - stats.DirectDependencies
	if stats.TransitiveDependencies < 0 {
		stats.TransitiveDependencies = 0
	}

	stats.MaxDepth = g.calculateMaxDepth()
	return stats
}

func (g *Graph) calculateMaxDepth() int {
	depths := make(map[Key]int)
	onPath := make(map[Key]bool)
	var maxDepth int

	var dfs func(key Key, depth int)
	dfs = func(key Key, depth int) {
		// An edge back onto the current DFS path is a cycle back-edge.
		if onPath[key] {
			return
		}
		if existing, ok := depths[key]; ok && existing >= depth {
			return
		}
		depths[key] = depth
		if depth > maxDepth {
			maxDepth = depth
		}

		node := g.Modules[key]
		if node == nil {
			return
		}

		onPath[key] = true
		for _, dep := range node.Dependencies {
			dfs(dep, depth+1)
		}
		delete(onPath, key)
	}

	dfs(g.Root, 0)
	return maxDepth
}

// Leaves returns all nodes with no dependencies.
func (g *Graph) Leaves() []Key {
	var leaves []Key
	for key, node := range g.Modules {
		if len(node.Dependencies) == 0 {
			leaves = append(leaves, key)
		}
	}
	sort.Slice(leaves, func(i, j int) bool { return leaves[i].String() < leaves[j].String() })
	return leaves
}

// HasCycles reports whether the graph contains dependency cycles.
func (g *Graph) HasCycles() bool {
	visited := make(map[Key]bool)
	recStack := make(map[Key]bool)

	var hasCycle func(key Key) bool
	hasCycle = func(key Key) bool {
		visited[key] = true
		recStack[key] = true

		if node := g.Modules[key]; node != nil {
			for _, dep := range node.Dependencies {
				if !visited[dep] {
					if hasCycle(dep) {
						return true
					}
				} else if recStack[dep] {
					return true
				}
			}
		}

		recStack[key] = false
		return false
	}

	for key := range g.Modules {
		if !visited[key] {
			if hasCycle(key) {
				return true
			}
		}
	}
	return false
}

// FindCycles returns all dependency cycles in the graph.
func (g *Graph) FindCycles() [][]Key {
	var cycles [][]Key
	visited := make(map[Key]bool)
	recStack := make(map[Key]bool)
	path := make([]Key, 0)

	var findCycles func(key Key)
	findCycles = func(key Key) {
		visited[key] = true
		recStack[key] = true
		path = append(path, key)

		if node := g.Modules[key]; node != nil {
			for _, dep := range node.Dependencies {
				if !visited[dep] {
					findCycles(dep)
				} else if recStack[dep] {
					cycleStart := -1
					for i, k := range path {
						if k == dep {
							cycleStart = i
							break
						}
					}
					if cycleStart >= 0 {
						cycle := make([]Key, len(path)-cycleStart)
						copy(cycle, path[cycleStart:])
						cycles = append(cycles, cycle)
					}
				}
			}
		}

		path = path[:len(path)-1]
		recStack[key] = false
	}

	for _, key := range g.SortedKeys() {
		if !visited[key] {
			findCycles(key)
		}
	}
	return cycles
}
