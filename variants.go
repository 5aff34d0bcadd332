package gradle

import (
	"github.com/snapsam/gradle/module"
)

// SelectedVariant is the artifact set and dependency subset chosen for one
// module and one requested usage.
type SelectedVariant struct {
	// Name is the variant name. Synthesized variants are named after
	// their usage.
	Name string `json:"name"`

	// Usage is the usage the variant was selected for.
	Usage string `json:"usage"`

	// Artifacts is the variant's artifact set.
	Artifacts []module.Artifact `json:"artifacts,omitempty"`

	// Dependencies is the variant's dependency subset, already filtered
	// to transitive, non-optional edges.
	Dependencies []module.Dependency `json:"dependencies,omitempty"`
}

// selectVariant picks the artifact set matching the requested usage.
//
// Modules with native metadata match on the declared usage attribute, with
// an api/runtime compatibility fallback when the exact usage is absent.
// POM and Ivy derived modules synthesize two variants from scopes:
// api carries compile-scoped dependencies only, runtime carries
// compile+runtime; both share the module's artifacts since those formats
// carry no per-usage artifact distinction.
func selectVariant(md *module.Metadata, usage string) (*SelectedVariant, error) {
	if len(md.Variants) > 0 {
		return selectDeclared(md, usage)
	}
	return synthesize(md, usage)
}

func selectDeclared(md *module.Metadata, usage string) (*SelectedVariant, error) {
	if v := variantByUsage(md, usage); v != nil {
		return fromDeclared(v, usage), nil
	}
	if fb, ok := compatibleUsage[usage]; ok {
		if v := variantByUsage(md, fb); v != nil {
			return fromDeclared(v, usage), nil
		}
	}
	declared := make([]string, 0, len(md.Variants))
	for _, v := range md.Variants {
		declared = append(declared, v.Usage)
	}
	return nil, &NoMatchingVariantError{
		Coordinate: md.Coordinate,
		Usage:      usage,
		Declared:   declared,
	}
}

// compatibleUsage maps a usage to its fallback when no exact variant
// exists: compile consumption can fall back to a runtime variant and
// vice versa.
var compatibleUsage = map[string]string{
	UsageAPI:     UsageRuntime,
	UsageRuntime: UsageAPI,
}

func variantByUsage(md *module.Metadata, usage string) *module.Variant {
	for i := range md.Variants {
		if md.Variants[i].Usage == usage {
			return &md.Variants[i]
		}
	}
	return nil
}

func fromDeclared(v *module.Variant, usage string) *SelectedVariant {
	return &SelectedVariant{
		Name:         v.Name,
		Usage:        usage,
		Artifacts:    v.Artifacts,
		Dependencies: traversableDependencies(v.Dependencies, nil),
	}
}

func synthesize(md *module.Metadata, usage string) (*SelectedVariant, error) {
	var scopes map[module.Scope]bool
	switch usage {
	case UsageAPI:
		scopes = map[module.Scope]bool{module.ScopeCompile: true, "": true}
	case UsageRuntime:
		scopes = map[module.Scope]bool{module.ScopeCompile: true, "": true, module.ScopeRuntime: true}
	default:
		return nil, &NoMatchingVariantError{
			Coordinate: md.Coordinate,
			Usage:      usage,
			Declared:   []string{UsageAPI, UsageRuntime},
		}
	}

	return &SelectedVariant{
		Name:         usage,
		Usage:        usage,
		Artifacts:    md.Artifacts,
		Dependencies: traversableDependencies(md.Dependencies, scopes),
	}, nil
}

// traversableDependencies filters edges to the ones graph traversal
// follows: transitive scopes (optionally narrowed to a scope set) and
// non-optional. Optional dependencies become constraints instead.
func traversableDependencies(deps []module.Dependency, scopes map[module.Scope]bool) []module.Dependency {
	out := make([]module.Dependency, 0, len(deps))
	for _, d := range deps {
		if d.Optional || !d.EffectiveScope().Transitive() {
			continue
		}
		if scopes != nil && !scopes[d.Scope] {
			continue
		}
		out = append(out, d)
	}
	return out
}
