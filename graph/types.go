package graph

import (
	"fmt"

	"github.com/snapsam/gradle/module"
)

// Key is the coordinate a graph node is keyed by. Within one closed graph
// there is exactly one node per (group, name) pair.
type Key = module.Coordinate

// RootKey is the synthetic key of the root node, which represents the
// caller's declared dependency set rather than a published module.
var RootKey = Key{Name: "<root>"}

// Graph is a resolved module dependency graph. It supports bidirectional
// traversal (dependencies and dependents) and query methods for explaining
// version selections. A Graph is a read-only snapshot: the resolver hands
// it over once resolution closes and never mutates it afterwards.
type Graph struct {
	// Root is the root node key.
	Root Key

	// Modules contains all nodes, keyed by coordinate.
	Modules map[Key]*Node
}

// Node is one resolved module in the graph.
type Node struct {
	// Key is the node's coordinate with its selected, concrete version.
	Key Key

	// Dependencies are the direct dependencies (resolved coordinates).
	Dependencies []Key

	// Dependents are modules that directly depend on this one.
	Dependents []Key

	// Requested maps each requester (coordinate string, or "<root>") to
	// the version requirement it declared for this module.
	Requested map[string]string

	// Selection explains why this version was selected.
	Selection *SelectionInfo

	// Variants holds the artifact set selected per requested usage.
	Variants map[string]VariantSelection

	// IsRoot marks the synthetic root node.
	IsRoot bool
}

// VariantSelection is the outcome of variant selection for one usage.
type VariantSelection struct {
	// Name is the selected variant's name.
	Name string `json:"name"`

	// Artifacts is the selected variant's artifact set.
	Artifacts []module.Artifact `json:"artifacts,omitempty"`
}

// SelectionInfo explains why a particular version was selected.
type SelectionInfo struct {
	// Strategy is how the version was selected.
	Strategy SelectionStrategy

	// SelectedVersion is the version that won.
	SelectedVersion string

	// Candidates are all versions considered during selection.
	Candidates []VersionCandidate

	// DecidingFactor explains what determined the selection.
	DecidingFactor string
}

// SelectionStrategy indicates how a version was selected.
type SelectionStrategy string

const (
	// StrategyHighest indicates highest-wins conflict resolution.
	StrategyHighest SelectionStrategy = "highest"

	// StrategyStrict indicates a strict constraint forced the version.
	StrategyStrict SelectionStrategy = "strict"

	// StrategyRoot marks the root node (no selection needed).
	StrategyRoot SelectionStrategy = "root"
)

// VersionCandidate is one version that was considered during selection.
type VersionCandidate struct {
	// Version is the candidate version.
	Version string

	// RequestedBy lists the requesters of this version.
	RequestedBy []string

	// Selected reports whether this candidate won.
	Selected bool

	// RejectionReason explains why the candidate lost, when it did.
	RejectionReason string
}

// Explanation details why a module is at its selected version.
type Explanation struct {
	// Module is the module being explained.
	Module Key

	// Selection explains how the version was selected.
	Selection *SelectionInfo

	// DependencyChains lists all paths from the root to this module.
	DependencyChains []DependencyChain

	// RequestSummary summarizes all version requests for this module.
	RequestSummary string
}

// DependencyChain is one path of dependencies from the root to a module.
type DependencyChain struct {
	// Path is the node sequence from root to target.
	Path []Key

	// RequestedVersion is the requirement declared at the end of the chain.
	RequestedVersion string
}

// Label returns the display form of a key: the bare name for the synthetic
// root, "group:name:version" for everything else.
func Label(key Key) string {
	if key.Group == "" && key.Version == "" {
		return key.Name
	}
	return key.String()
}

// String returns a human-readable representation of the chain.
func (c DependencyChain) String() string {
	if len(c.Path) == 0 {
		return ""
	}
	result := Label(c.Path[0])
	for i := 1; i < len(c.Path); i++ {
		result += " -> " + Label(c.Path[i])
	}
	if c.RequestedVersion != "" {
		result += fmt.Sprintf(" (requested %s)", c.RequestedVersion)
	}
	return result
}

// Stats summarizes a resolved graph.
type Stats struct {
	// TotalModules counts all nodes, the root excluded.
	TotalModules int

	// DirectDependencies counts the root's direct dependencies.
	DirectDependencies int

	// TransitiveDependencies counts the remaining modules.
	TransitiveDependencies int

	// MaxDepth is the longest root-to-leaf chain, cycles ignored.
	MaxDepth int
}
