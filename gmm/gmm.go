// Package gmm parses the native module metadata format: a JSON descriptor
// with explicit variants, usage attributes and rich version constraints
// (requires/strictly/prefers/rejects).
//
// This format has the highest constraint fidelity of the three the engine
// consumes, so the source adapter prefers it when a repository serves it.
package gmm

import (
	"encoding/json"
	"fmt"

	"github.com/snapsam/gradle/module"
)

// usageAttribute is the variant attribute carrying the consumption usage.
const usageAttribute = "org.gradle.usage"

type descriptor struct {
	FormatVersion string    `json:"formatVersion"`
	Component     component `json:"component"`
	Variants      []variant `json:"variants"`
}

type component struct {
	Group   string `json:"group"`
	Module  string `json:"module"`
	Version string `json:"version"`
}

type variant struct {
	Name                  string            `json:"name"`
	Attributes            map[string]string `json:"attributes"`
	Dependencies          []dependency      `json:"dependencies"`
	DependencyConstraints []dependency      `json:"dependencyConstraints"`
	Files                 []file            `json:"files"`
}

type dependency struct {
	Group    string      `json:"group"`
	Module   string      `json:"module"`
	Version  versionSpec `json:"version"`
	Excludes []exclude   `json:"excludes"`
}

type versionSpec struct {
	Requires string   `json:"requires"`
	Strictly string   `json:"strictly"`
	Prefers  string   `json:"prefers"`
	Rejects  []string `json:"rejects"`
}

type exclude struct {
	Group  string `json:"group"`
	Module string `json:"module"`
}

type file struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Parse parses module metadata content into metadata with explicit variants.
func Parse(data []byte) (*module.Metadata, error) {
	var d descriptor
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parse module metadata: %w", err)
	}
	if d.Component.Group == "" || d.Component.Module == "" || d.Component.Version == "" {
		return nil, fmt.Errorf("parse module metadata: incomplete component")
	}

	md := &module.Metadata{
		Coordinate: module.Coordinate{
			Group:   d.Component.Group,
			Name:    d.Component.Module,
			Version: d.Component.Version,
		},
		Source: module.FormatModule,
	}

	for _, v := range d.Variants {
		mv := module.Variant{
			Name:       v.Name,
			Usage:      usageFor(v),
			Attributes: v.Attributes,
		}

		for _, dep := range v.Dependencies {
			d, cs := toDependency(dep, md.Coordinate)
			mv.Dependencies = append(mv.Dependencies, d)
			mv.Constraints = append(mv.Constraints, cs...)
		}

		for _, dc := range v.DependencyConstraints {
			mv.Constraints = append(mv.Constraints, toConstraints(dc, md.Coordinate)...)
		}

		for _, f := range v.Files {
			mv.Artifacts = append(mv.Artifacts, module.Artifact{
				Name: f.Name,
				Type: "jar",
				URL:  f.URL,
			})
		}

		md.Variants = append(md.Variants, mv)
		md.Dependencies = append(md.Dependencies, mv.Dependencies...)
		md.Constraints = append(md.Constraints, mv.Constraints...)
	}

	return md, nil
}

// usageFor normalizes the usage attribute: "java-api" -> "api",
// "java-runtime" -> "runtime". Unknown usages pass through unchanged.
func usageFor(v variant) string {
	switch v.Attributes[usageAttribute] {
	case "java-api":
		return "api"
	case "java-runtime":
		return "runtime"
	default:
		return v.Attributes[usageAttribute]
	}
}

// toDependency converts a metadata dependency into an edge plus any
// strict/reject constraints its version spec implies.
func toDependency(d dependency, owner module.Coordinate) (module.Dependency, []module.Constraint) {
	ver := d.Version.Requires
	var cs []module.Constraint

	if d.Version.Strictly != "" {
		ver = d.Version.Strictly
		cs = append(cs, module.Constraint{
			Group:    d.Group,
			Name:     d.Module,
			Version:  d.Version.Strictly,
			Strength: module.StrengthStrict,
			Source:   "strictly:" + owner.String(),
		})
	}
	for _, r := range d.Version.Rejects {
		cs = append(cs, module.Constraint{
			Group:    d.Group,
			Name:     d.Module,
			Version:  r,
			Strength: module.StrengthReject,
			Source:   "rejects:" + owner.String(),
		})
	}

	dep := module.Dependency{
		Group:   d.Group,
		Name:    d.Module,
		Version: ver,
	}
	for _, e := range d.Excludes {
		dep.Exclusions = append(dep.Exclusions, module.Exclusion{
			Group: e.Group,
			Name:  e.Module,
		})
	}
	return dep, cs
}

// toConstraints converts a dependencyConstraints entry. A constraint entry
// never produces an edge.
func toConstraints(d dependency, owner module.Coordinate) []module.Constraint {
	var cs []module.Constraint
	source := "constraint:" + owner.String()

	if d.Version.Strictly != "" {
		cs = append(cs, module.Constraint{
			Group:    d.Group,
			Name:     d.Module,
			Version:  d.Version.Strictly,
			Strength: module.StrengthStrict,
			Source:   source,
		})
	} else if v := firstNonEmpty(d.Version.Requires, d.Version.Prefers); v != "" {
		cs = append(cs, module.Constraint{
			Group:    d.Group,
			Name:     d.Module,
			Version:  v,
			Strength: module.StrengthRequire,
			Source:   source,
		})
	}
	for _, r := range d.Version.Rejects {
		cs = append(cs, module.Constraint{
			Group:    d.Group,
			Name:     d.Module,
			Version:  r,
			Strength: module.StrengthReject,
			Source:   source,
		})
	}
	return cs
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
