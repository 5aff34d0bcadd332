// Package graph provides the resolved dependency graph representation and
// its query surface.
//
// A graph holds one node per resolved module, with forward and reverse
// edges, the version requests each node received, and an explanation of why
// its version won. It answers the questions a dependency report answers:
//
//   - Visualize the complete dependency graph
//   - Explain why a module is at a particular version
//   - Find dependency paths between modules
//   - Query direct and transitive dependencies
//
// # Building a Graph
//
// A Graph is built during resolution:
//
//	result, _ := gradle.Resolve(ctx, deps, repos)
//	g := result.Graph // already populated
//
// # Querying the Graph
//
// Once built, the graph supports various queries:
//
//	// Get direct dependencies
//	deps := g.DirectDeps(key)
//
//	// Explain version selection
//	explanation, _ := g.Explain(module.ID{Group: "com.google.guava", Name: "guava"})
//
//	// Find the shortest path between modules
//	path := g.Path(g.Root, key)
//
// # Output Formats
//
// The graph serializes to JSON, Graphviz DOT, and a human-readable tree:
//
//	jsonBytes, _ := g.ToJSON()
//	dotString := g.ToDOT()
//	textString := g.ToText()
package graph
