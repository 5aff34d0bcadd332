// Package gradle provides dependency graph resolution for Maven-style
// module ecosystems.
//
// Given a set of declared dependencies and one or more repositories, the
// resolver builds the full transitive graph with exactly one selected
// version per module. Competing versions are resolved highest-wins, strict
// constraints override and conflict loudly, reject constraints veto, and
// exclusions prune the subtree of the edge that carries them.
//
// # Overview
//
// The package is organized around three components:
//
//   - Parsers: pom, ivy and gmm parse repository descriptors into the
//     common metadata model of the module package
//   - MetadataSource: normalizes repositories behind format preference,
//     caching and fetch coalescing
//   - Resolver: runs constraint-aware conflict resolution and variant
//     selection over the discovered graph
//
// # Quick Start
//
//	deps := []module.Dependency{
//	    {Group: "com.example", Name: "app-core", Version: "2.1"},
//	}
//	result, err := gradle.Resolve(ctx, deps, []gradle.Repository{repo},
//	    gradle.DefaultOptions()...)
//	if err != nil {
//	    return err
//	}
//	for _, coord := range result.Modules() {
//	    fmt.Println(coord)
//	}
//
// # Version Requirements
//
// Declared versions may be concrete ("1.2.3"), bracket ranges ("[1.0,2.0)"),
// prefix selectors ("1.+"), or latest-status markers ("latest.release").
// Dynamic requirements are resolved against repository version listings.
//
// # Thread Safety
//
// All public types in this package are safe for concurrent use.
package gradle

import (
	"context"
	"fmt"

	"github.com/snapsam/gradle/module"
)

// Resolve builds the dependency graph for a set of declared dependencies.
//
// Per-module failures (missing metadata, unsatisfiable constraints, variant
// mismatches) do not abort resolution; they are collected on the result.
// An error is returned only for configuration problems, context
// cancellation, or lockfile drift when drift is configured to fail.
func Resolve(ctx context.Context, deps []module.Dependency, repos []Repository, opts ...Option) (*Result, error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, fmt.Errorf("resolve: %w", err)
	}
	source, err := newMetadataSource(repos, cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve: %w", err)
	}
	return resolveWith(ctx, deps, cfg, source)
}

// ResolveCoordinates is a convenience wrapper taking bare coordinates
// instead of full dependency declarations.
func ResolveCoordinates(ctx context.Context, coords []module.Coordinate, repos []Repository, opts ...Option) (*Result, error) {
	deps := make([]module.Dependency, len(coords))
	for i, c := range coords {
		deps[i] = module.Dependency{Group: c.Group, Name: c.Name, Version: c.Version}
	}
	return Resolve(ctx, deps, repos, opts...)
}

func resolveWith(ctx context.Context, deps []module.Dependency, cfg *config, source *MetadataSource) (*Result, error) {
	result, err := newResolver(cfg, source).resolve(ctx, deps)
	if err != nil {
		return nil, err
	}

	if cfg.locks != nil && cfg.failOnLockDrift {
		if drift := cfg.locks.Diff(result.Lockfile()); !drift.IsEmpty() {
			return result, fmt.Errorf("dependency lock drift:\n%s", drift.Summary())
		}
	}
	return result, nil
}
