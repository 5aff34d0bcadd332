package graph

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/snapsam/gradle/module"
)

func key(group, name, version string) Key {
	return Key{Group: group, Name: name, Version: version}
}

// diamond builds: root -> a, b; a -> c; b -> c; c -> d.
func diamond() *Graph {
	b := NewBuilder(RootKey)

	a := key("com.x", "a", "1.0")
	bb := key("com.x", "b", "1.0")
	c := key("com.x", "c", "2.0")
	d := key("com.x", "d", "1.0")

	b.AddModule(a, &SelectionInfo{Strategy: StrategyHighest, SelectedVersion: "1.0"}, nil)
	b.AddModule(bb, &SelectionInfo{Strategy: StrategyHighest, SelectedVersion: "1.0"}, nil)
	b.AddModule(c, &SelectionInfo{
		Strategy:        StrategyHighest,
		SelectedVersion: "2.0",
		DecidingFactor:  "highest of 2 candidates",
		Candidates: []VersionCandidate{
			{Version: "2.0", RequestedBy: []string{"com.x:a:1.0"}, Selected: true},
			{Version: "1.0", RequestedBy: []string{"com.x:b:1.0"}, RejectionReason: "lost to higher version 2.0"},
		},
	}, nil)
	b.AddModule(d, &SelectionInfo{Strategy: StrategyHighest, SelectedVersion: "1.0"}, nil)

	b.AddEdge(RootKey, a, "1.0")
	b.AddEdge(RootKey, bb, "1.0")
	b.AddEdge(a, c, "2.0")
	b.AddEdge(bb, c, "1.0")
	b.AddEdge(c, d, "1.0")

	return b.Build()
}

func TestBuilderWiresEdges(t *testing.T) {
	g := diamond()

	if len(g.Modules) != 5 {
		t.Fatalf("modules = %d, want 5 (root included)", len(g.Modules))
	}

	root := g.Get(RootKey)
	if root == nil || !root.IsRoot {
		t.Fatal("root node missing or not marked")
	}
	if len(root.Dependencies) != 2 {
		t.Errorf("root dependencies = %v, want a and b", root.Dependencies)
	}

	c := g.Get(key("com.x", "c", "2.0"))
	if len(c.Dependents) != 2 {
		t.Errorf("c dependents = %v, want a and b", c.Dependents)
	}
	if got := c.Requested["com.x:a:1.0"]; got != "2.0" {
		t.Errorf("c requested by a = %q, want 2.0", got)
	}
	if got := c.Requested["com.x:b:1.0"]; got != "1.0" {
		t.Errorf("c requested by b = %q, want 1.0", got)
	}
}

func TestBuilderDedupsEdges(t *testing.T) {
	b := NewBuilder(RootKey)
	a := key("com.x", "a", "1.0")
	b.AddModule(a, nil, nil)
	b.AddEdge(RootKey, a, "1.0")
	b.AddEdge(RootKey, a, "1.0")
	b.AddEdge(RootKey, key("com.x", "ghost", "1.0"), "1.0")

	g := b.Build()
	if deps := g.DirectDeps(RootKey); len(deps) != 1 {
		t.Errorf("root dependencies = %v, want one edge to a", deps)
	}
}

func TestGetByID(t *testing.T) {
	g := diamond()

	node := g.GetByID(module.ID{Group: "com.x", Name: "c"})
	if node == nil || node.Key.Version != "2.0" {
		t.Fatalf("GetByID(c) = %v, want the 2.0 node", node)
	}
	if g.GetByID(module.ID{Group: "com.x", Name: "nope"}) != nil {
		t.Error("GetByID(nope) should be nil")
	}
	if !g.ContainsID(module.ID{Group: "com.x", Name: "d"}) {
		t.Error("ContainsID(d) = false")
	}
	if !g.Contains(key("com.x", "a", "1.0")) {
		t.Error("Contains(a:1.0) = false")
	}
	if g.Contains(key("com.x", "a", "9.9")) {
		t.Error("Contains(a:9.9) = true, want false")
	}
}

func TestTransitiveTraversal(t *testing.T) {
	g := diamond()

	deps := g.TransitiveDeps(RootKey)
	if len(deps) != 4 {
		t.Errorf("TransitiveDeps(root) = %v, want 4 modules", deps)
	}

	deps = g.TransitiveDeps(key("com.x", "a", "1.0"))
	if len(deps) != 2 {
		t.Errorf("TransitiveDeps(a) = %v, want [c d]", deps)
	}

	dependents := g.TransitiveDependents(key("com.x", "d", "1.0"))
	if len(dependents) != 4 {
		t.Errorf("TransitiveDependents(d) = %v, want c, a, b and root", dependents)
	}
}

func TestPath(t *testing.T) {
	g := diamond()
	d := key("com.x", "d", "1.0")

	path := g.Path(RootKey, d)
	if len(path) != 4 {
		t.Fatalf("Path(root, d) = %v, want length 4", path)
	}
	if path[0] != RootKey || path[3] != d {
		t.Errorf("path endpoints = %v", path)
	}

	if got := g.Path(d, RootKey); got != nil {
		t.Errorf("Path(d, root) = %v, want nil (edges are directed)", got)
	}
	if got := g.Path(d, d); len(got) != 1 {
		t.Errorf("Path(d, d) = %v, want the single node", got)
	}
}

func TestAllPaths(t *testing.T) {
	g := diamond()

	paths := g.AllPaths(RootKey, key("com.x", "c", "2.0"))
	if len(paths) != 2 {
		t.Fatalf("AllPaths(root, c) = %d paths, want 2 (via a and via b)", len(paths))
	}
	for _, p := range paths {
		if len(p) != 3 {
			t.Errorf("path = %v, want length 3", p)
		}
	}
}

func TestExplain(t *testing.T) {
	g := diamond()

	exp, err := g.Explain(module.ID{Group: "com.x", Name: "c"})
	if err != nil {
		t.Fatalf("Explain error = %v", err)
	}
	if exp.Selection == nil || exp.Selection.SelectedVersion != "2.0" {
		t.Errorf("selection = %+v, want 2.0", exp.Selection)
	}
	if len(exp.DependencyChains) != 2 {
		t.Fatalf("chains = %d, want 2", len(exp.DependencyChains))
	}
	if !strings.Contains(exp.RequestSummary, "[SELECTED]") {
		t.Errorf("request summary missing selection marker:\n%s", exp.RequestSummary)
	}

	if _, err := g.Explain(module.ID{Group: "com.x", Name: "nope"}); err == nil {
		t.Error("Explain(nope) should fail")
	}
}

func TestWhyIncluded(t *testing.T) {
	g := diamond()

	chains, err := g.WhyIncluded(module.ID{Group: "com.x", Name: "d"})
	if err != nil {
		t.Fatalf("WhyIncluded error = %v", err)
	}
	if len(chains) != 2 {
		t.Fatalf("chains = %d, want 2", len(chains))
	}
	for _, chain := range chains {
		s := chain.String()
		if !strings.HasPrefix(s, "<root> -> ") || !strings.HasSuffix(s, "com.x:d:1.0") {
			t.Errorf("chain = %q", s)
		}
	}
}

func TestGetStats(t *testing.T) {
	g := diamond()

	stats := g.GetStats()
	if stats.TotalModules != 4 {
		t.Errorf("TotalModules = %d, want 4", stats.TotalModules)
	}
	if stats.DirectDependencies != 2 {
		t.Errorf("DirectDependencies = %d, want 2", stats.DirectDependencies)
	}
	if stats.TransitiveDependencies != 2 {
		t.Errorf("TransitiveDependencies = %d, want 2", stats.TransitiveDependencies)
	}
	if stats.MaxDepth != 3 {
		t.Errorf("MaxDepth = %d, want 3 (root -> a -> c -> d)", stats.MaxDepth)
	}
}

func TestLeaves(t *testing.T) {
	g := diamond()

	leaves := g.Leaves()
	if len(leaves) != 1 || leaves[0] != key("com.x", "d", "1.0") {
		t.Errorf("Leaves() = %v, want [d]", leaves)
	}
}

func TestSortedKeysRootFirst(t *testing.T) {
	g := diamond()

	keys := g.SortedKeys()
	if keys[0] != RootKey {
		t.Fatalf("first key = %v, want root", keys[0])
	}
	for i := 2; i < len(keys); i++ {
		if keys[i-1].String() > keys[i].String() {
			t.Errorf("keys not sorted: %v before %v", keys[i-1], keys[i])
		}
	}
}

func TestCycles(t *testing.T) {
	if diamond().HasCycles() {
		t.Error("diamond graph reported a cycle")
	}

	b := NewBuilder(RootKey)
	a := key("com.x", "a", "1.0")
	c := key("com.x", "b", "1.0")
	b.AddModule(a, nil, nil)
	b.AddModule(c, nil, nil)
	b.AddEdge(RootKey, a, "1.0")
	b.AddEdge(a, c, "1.0")
	b.AddEdge(c, a, "1.0")
	g := b.Build()

	if !g.HasCycles() {
		t.Fatal("cycle not detected")
	}
	cycles := g.FindCycles()
	if len(cycles) == 0 {
		t.Fatal("FindCycles returned none")
	}
	if got := len(cycles[0]); got != 2 {
		t.Errorf("cycle length = %d, want 2 (a <-> b)", got)
	}

	// Cycle-safe stats and rendering must terminate.
	if depth := g.GetStats().MaxDepth; depth != 2 {
		t.Errorf("MaxDepth = %d, want 2", depth)
	}
	if !strings.Contains(g.ToText(), "(circular)") {
		t.Error("ToText missing circular marker")
	}
}

func TestLabel(t *testing.T) {
	if got := Label(RootKey); got != "<root>" {
		t.Errorf("Label(root) = %q", got)
	}
	if got := Label(key("com.x", "a", "1.0")); got != "com.x:a:1.0" {
		t.Errorf("Label(a) = %q", got)
	}
}

func TestToJSON(t *testing.T) {
	data, err := diamond().ToJSON()
	if err != nil {
		t.Fatalf("ToJSON error = %v", err)
	}

	var out struct {
		Root    string `json:"root"`
		Modules []struct {
			Coordinate   string            `json:"coordinate"`
			Dependencies []string          `json:"dependencies"`
			RequestedBy  map[string]string `json:"requestedBy"`
			Strategy     string            `json:"strategy"`
		} `json:"modules"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("output not valid JSON: %v", err)
	}
	if out.Root != "<root>" {
		t.Errorf("root = %q", out.Root)
	}
	if len(out.Modules) != 5 {
		t.Fatalf("modules = %d, want 5", len(out.Modules))
	}
	if out.Modules[0].Coordinate != "<root>" {
		t.Errorf("first module = %q, want the root", out.Modules[0].Coordinate)
	}
}

func TestToDOT(t *testing.T) {
	dot := diamond().ToDOT()
	if !strings.HasPrefix(dot, "digraph dependencies {") {
		t.Error("missing digraph header")
	}
	if !strings.Contains(dot, `"com.x:a:1.0" -> "com.x:c:2.0";`) {
		t.Errorf("missing edge a -> c:\n%s", dot)
	}
}

func TestToText(t *testing.T) {
	text := diamond().ToText()
	for _, want := range []string{
		"Total modules: 4",
		"Max depth: 3",
		"<root>",
		"com.x:c:2.0",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("ToText missing %q:\n%s", want, text)
		}
	}
}

func TestToExplainText(t *testing.T) {
	text, err := diamond().ToExplainText("com.x", "c")
	if err != nil {
		t.Fatalf("ToExplainText error = %v", err)
	}
	for _, want := range []string{
		"Selected version: 2.0",
		"lost to higher version 2.0",
		"Dependency Chains",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("explain text missing %q:\n%s", want, text)
		}
	}
}

func TestToModuleList(t *testing.T) {
	list := diamond().ToModuleList()
	if len(list) != 4 {
		t.Fatalf("module list = %d entries, want 4 (root excluded)", len(list))
	}
	if list[0].Name != "a" || list[3].Name != "d" {
		t.Errorf("list order = %v, want sorted by group then name", list)
	}
	c := list[2]
	if c.Name != "c" || len(c.RequiredBy) != 2 {
		t.Errorf("c entry = %+v, want two dependents", c)
	}
}
