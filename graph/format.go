package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/snapsam/gradle/module"
)

const separatorWidth = 60

// jsonGraph is the serialized shape of a resolved graph.
type jsonGraph struct {
	Root    string       `json:"root"`
	Modules []jsonModule `json:"modules"`
}

type jsonModule struct {
	Coordinate   string                      `json:"coordinate"`
	Dependencies []string                    `json:"dependencies,omitempty"`
	RequestedBy  map[string]string           `json:"requestedBy,omitempty"`
	Strategy     string                      `json:"strategy,omitempty"`
	Reason       string                      `json:"reason,omitempty"`
	Variants     map[string]VariantSelection `json:"variants,omitempty"`
}

// ToJSON serializes the graph as a flat, deterministically ordered module
// list with per-node selection details.
func (g *Graph) ToJSON() ([]byte, error) {
	out := jsonGraph{Root: Label(g.Root)}

	for _, key := range g.SortedKeys() {
		node := g.Modules[key]
		jm := jsonModule{
			Coordinate: Label(key),
			Variants:   node.Variants,
		}
		for _, dep := range node.Dependencies {
			jm.Dependencies = append(jm.Dependencies, dep.String())
		}
		if len(node.Requested) > 0 {
			jm.RequestedBy = node.Requested
		}
		if node.Selection != nil {
			jm.Strategy = string(node.Selection.Strategy)
			jm.Reason = node.Selection.DecidingFactor
		}
		out.Modules = append(out.Modules, jm)
	}

	return json.MarshalIndent(out, "", "  ")
}

// ToDOT outputs the graph in Graphviz DOT format.
func (g *Graph) ToDOT() string {
	var buf bytes.Buffer

	buf.WriteString("digraph dependencies {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  node [shape=box];\n\n")

	for _, key := range g.SortedKeys() {
		node := g.Modules[key]
		label := Label(key)
		if key.Version != "" {
			label += "\\n" + key.Version
		}
		attrs := fmt.Sprintf(`label="%s"`, label)
		if node.IsRoot {
			attrs += ", style=bold"
		}
		buf.WriteString(fmt.Sprintf("  %q [%s];\n", key.String(), attrs))
	}

	buf.WriteString("\n")

	for _, key := range g.SortedKeys() {
		for _, dep := range g.Modules[key].Dependencies {
			buf.WriteString(fmt.Sprintf("  %q -> %q;\n", key.String(), dep.String()))
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// ToText outputs a human-readable tree of the graph with summary statistics.
func (g *Graph) ToText() string {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Dependency Graph (root: %s)\n", Label(g.Root)))
	buf.WriteString(strings.Repeat("=", separatorWidth) + "\n\n")

	stats := g.GetStats()
	buf.WriteString(fmt.Sprintf("Total modules: %d\n", stats.TotalModules))
	buf.WriteString(fmt.Sprintf("Direct dependencies: %d\n", stats.DirectDependencies))
	buf.WriteString(fmt.Sprintf("Transitive dependencies: %d\n", stats.TransitiveDependencies))
	buf.WriteString(fmt.Sprintf("Max depth: %d\n", stats.MaxDepth))
	buf.WriteString("\n")

	buf.WriteString("Dependency Tree:\n")
	visited := make(map[Key]bool)
	g.printTree(&buf, g.Root, "", true, visited)

	return buf.String()
}

func (g *Graph) printTree(buf *bytes.Buffer, key Key, prefix string, isLast bool, visited map[Key]bool) {
	connector := "├── "
	if isLast {
		connector = "└── "
	}
	if prefix == "" {
		buf.WriteString(Label(key))
	} else {
		buf.WriteString(prefix + connector + Label(key))
	}

	if visited[key] {
		buf.WriteString(" (circular)\n")
		return
	}
	buf.WriteString("\n")

	visited[key] = true
	defer func() { visited[key] = false }()

	node := g.Modules[key]
	if node == nil {
		return
	}

	for i, dep := range node.Dependencies {
		isLastChild := i == len(node.Dependencies)-1
		childPrefix := prefix
		if prefix != "" {
			if isLast {
				childPrefix += "    "
			} else {
				childPrefix += "│   "
			}
		}
		g.printTree(buf, dep, childPrefix, isLastChild, visited)
	}
}

// ToExplainText renders the Explain output for one module as text.
func (g *Graph) ToExplainText(group, name string) (string, error) {
	explanation, err := g.Explain(module.ID{Group: group, Name: name})
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Explanation for: %s\n", explanation.Module.String()))
	buf.WriteString(strings.Repeat("=", separatorWidth) + "\n\n")

	if explanation.Selection != nil {
		buf.WriteString("Version Selection:\n")
		buf.WriteString(fmt.Sprintf("  Selected version: %s\n", explanation.Selection.SelectedVersion))
		buf.WriteString(fmt.Sprintf("  Strategy: %s\n", explanation.Selection.Strategy))
		buf.WriteString(fmt.Sprintf("  Deciding factor: %s\n", explanation.Selection.DecidingFactor))

		if len(explanation.Selection.Candidates) > 0 {
			buf.WriteString("\n  Candidates considered:\n")
			for _, c := range explanation.Selection.Candidates {
				status := "  "
				if c.Selected {
					status = "✓ "
				}
				buf.WriteString(fmt.Sprintf("    %s%s - requested by: %s\n",
					status, c.Version, strings.Join(c.RequestedBy, ", ")))
				if !c.Selected && c.RejectionReason != "" {
					buf.WriteString(fmt.Sprintf("      Reason not selected: %s\n", c.RejectionReason))
				}
			}
		}
	}

	if len(explanation.DependencyChains) > 0 {
		buf.WriteString("\nDependency Chains (paths from root):\n")
		for i, chain := range explanation.DependencyChains {
			buf.WriteString(fmt.Sprintf("  %d. %s\n", i+1, chain.String()))
		}
	}

	return buf.String(), nil
}

// ModuleInfo is one entry of the flat module list output.
type ModuleInfo struct {
	Group      string   `json:"group"`
	Name       string   `json:"name"`
	Version    string   `json:"version"`
	RequiredBy []string `json:"required_by,omitempty"`
}

// ToModuleList returns a flat, sorted list of resolved modules, the root
// excluded.
func (g *Graph) ToModuleList() []ModuleInfo {
	modules := make([]ModuleInfo, 0, len(g.Modules))

	for key, node := range g.Modules {
		if key == g.Root {
			continue
		}

		requiredBy := make([]string, len(node.Dependents))
		for i, dep := range node.Dependents {
			requiredBy[i] = dep.String()
		}
		sort.Strings(requiredBy)

		modules = append(modules, ModuleInfo{
			Group:      key.Group,
			Name:       key.Name,
			Version:    key.Version,
			RequiredBy: requiredBy,
		})
	}

	sort.Slice(modules, func(i, j int) bool {
		if modules[i].Group != modules[j].Group {
			return modules[i].Group < modules[j].Group
		}
		return modules[i].Name < modules[j].Name
	})

	return modules
}
