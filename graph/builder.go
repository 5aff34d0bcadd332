package graph

import (
	"sort"
)

// Builder assembles a Graph from resolver output. The resolver adds one
// node per selected module with its forward edges; Build wires the reverse
// edges and orders every adjacency list deterministically.
type Builder struct {
	root  Key
	nodes map[Key]*Node
}

// NewBuilder creates a builder for a graph rooted at the given key.
func NewBuilder(root Key) *Builder {
	b := &Builder{
		root:  root,
		nodes: make(map[Key]*Node),
	}
	b.nodes[root] = &Node{
		Key:       root,
		Requested: make(map[string]string),
		Selection: &SelectionInfo{Strategy: StrategyRoot, DecidingFactor: "root"},
		IsRoot:    true,
	}
	return b
}

// AddModule adds a resolved module node. Calling it twice for the same key
// replaces the earlier node.
func (b *Builder) AddModule(key Key, selection *SelectionInfo, variants map[string]VariantSelection) *Node {
	node := &Node{
		Key:       key,
		Requested: make(map[string]string),
		Selection: selection,
		Variants:  variants,
	}
	b.nodes[key] = node
	return node
}

// AddEdge records a dependency edge between two added nodes, together with
// the version requirement the requester declared. Edges to or from unknown
// keys are ignored.
func (b *Builder) AddEdge(from, to Key, declared string) {
	fromNode := b.nodes[from]
	toNode := b.nodes[to]
	if fromNode == nil || toNode == nil {
		return
	}
	for _, existing := range fromNode.Dependencies {
		if existing == to {
			return
		}
	}
	fromNode.Dependencies = append(fromNode.Dependencies, to)
	toNode.Requested[Label(from)] = declared
}

// Build wires reverse edges and returns the finished graph. Adjacency lists
// come out sorted so that identical resolutions print identically.
func (b *Builder) Build() *Graph {
	g := &Graph{Root: b.root, Modules: b.nodes}

	for key, node := range g.Modules {
		sortKeys(node.Dependencies)
		for _, depKey := range node.Dependencies {
			if depNode, ok := g.Modules[depKey]; ok {
				depNode.Dependents = append(depNode.Dependents, key)
			}
		}
	}
	for _, node := range g.Modules {
		sortKeys(node.Dependents)
	}

	return g
}

func sortKeys(keys []Key) {
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
}
