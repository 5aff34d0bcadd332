package gradle

import (
	"github.com/snapsam/gradle/graph"
	"github.com/snapsam/gradle/lockfile"
	"github.com/snapsam/gradle/module"
)

// Result is the outcome of one resolution run.
//
// Resolution keeps going past per-module failures: a missing or malformed
// module fails its own bucket and is collected here, while the rest of the
// graph still resolves. Callers decide whether failures are fatal.
type Result struct {
	// Graph is the resolved dependency graph, reachable modules only.
	Graph *graph.Graph

	// Conflicts reports every module where more than one version competed,
	// with the losing versions and why they lost.
	Conflicts []Conflict

	// Failures lists modules that could not be resolved.
	Failures []Failure

	// FetchCount is the number of descriptor fetches actually performed.
	// Cached, coalesced, and conflict-avoided lookups do not count.
	FetchCount int64
}

// Failed reports whether any module failed to resolve.
func (r *Result) Failed() bool {
	return len(r.Failures) > 0
}

// Modules returns the resolved coordinates in deterministic order, the root
// excluded.
func (r *Result) Modules() []module.Coordinate {
	keys := r.Graph.SortedKeys()
	out := make([]module.Coordinate, 0, len(keys))
	for _, key := range keys {
		if key == r.Graph.Root {
			continue
		}
		out = append(out, key)
	}
	return out
}

// Lockfile builds a lockfile pinning every resolved module at its selected
// version, per usage it was resolved for.
func (r *Result) Lockfile() *lockfile.Lockfile {
	lf := lockfile.New()
	for key, node := range r.Graph.Modules {
		if node.IsRoot {
			continue
		}
		for usage := range node.Variants {
			lf.Lock(key.ID(), key.Version, usage)
		}
	}
	return lf
}

// Conflict reports competing version requests for one module.
type Conflict struct {
	// ID is the module the versions competed for.
	ID module.ID `json:"id"`

	// Winner is the selected version.
	Winner string `json:"winner"`

	// Superseded lists the candidates that lost, in the order they were
	// displaced.
	Superseded []Supersession `json:"superseded"`
}

// Supersession records one displaced candidate version.
type Supersession struct {
	// Version is the candidate that was displaced.
	Version string `json:"version"`

	// Winner is the version that displaced it.
	Winner string `json:"winner"`

	// Reason explains the displacement.
	Reason string `json:"reason,omitempty"`
}

// Failure is one module that could not be resolved. The error is one of the
// typed errors of this package and matches its sentinel with errors.Is.
type Failure struct {
	// ID is the failed module.
	ID module.ID `json:"id"`

	// Err is the terminal error for this module.
	Err error `json:"-"`
}

func (f Failure) Error() string {
	return f.Err.Error()
}
