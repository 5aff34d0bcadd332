package gradle

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/snapsam/gradle/graph"
	"github.com/snapsam/gradle/module"
	"github.com/snapsam/gradle/module/version"
)

// rootRequester names the synthetic root in request bookkeeping.
const rootRequester = "<root>"

// resolver builds the dependency graph for one resolution run.
//
// Resolution is a fixpoint computation over per-module buckets. Every
// discovered (group, name) pair gets one bucket holding all version requests
// and the currently winning candidate. Proposing a dependency either creates
// a bucket, is absorbed (the candidate already wins), or supersedes the
// candidate, in which case the old version's outgoing requests are retracted
// and its subtree expansion is discarded via a generation bump.
//
// Metadata fetches run on a bounded worker pool and never hold the graph
// lock. A fetch that completes after its bucket moved on is a no-op for the
// graph; the parsed result stays cached for later runs.
type resolver struct {
	cfg    *config
	log    *slog.Logger
	source *MetadataSource
	store  *ConstraintStore

	ctx     context.Context
	tasks   chan expandTask
	pending sync.WaitGroup

	mu      sync.Mutex
	buckets map[module.ID]*bucket
	order   []module.ID
	roots   []module.Dependency
}

// bucket is the per-module resolution state.
type bucket struct {
	id module.ID

	// requests are all version requirements received so far, deduplicated
	// by (requester, declared) and kept in discovery order.
	requests []versionRequest
	seen     map[string]bool

	// filters are the distinct exclusion filters carried by edges into
	// this bucket, keyed by canonical form. Each (candidate, filter) pair
	// is expanded at most once.
	filters  map[string]exclusionFilter
	expanded map[string]bool

	// candidate is the currently winning version. generation increments on
	// every supersession so stale fetch results can be discarded.
	candidate  string
	generation int
	metadata   *module.Metadata

	// constraintsFrom records which candidate version already published
	// its constraints, so re-expansion under a second filter does not
	// record them twice.
	constraintsFrom string

	// available is the version listing, fetched lazily for dynamic
	// requirements.
	available []string
	listed    bool
	listing   bool

	selection selectionState
	failure   error
}

// versionRequest is one incoming version requirement.
type versionRequest struct {
	from     string
	declared string
	selector version.Selector
	valid    bool
}

// selectionState remembers how the current candidate was chosen.
type selectionState struct {
	strategy graph.SelectionStrategy
	reason   string
}

// expandTask asks a worker to fetch one module version and propose its
// dependencies under one exclusion filter.
type expandTask struct {
	id         module.ID
	version    string
	generation int
	filter     exclusionFilter
}

func newResolver(cfg *config, source *MetadataSource) *resolver {
	return &resolver{
		cfg:     cfg,
		log:     cfg.log(),
		source:  source,
		store:   NewConstraintStore(),
		buckets: make(map[module.ID]*bucket),
	}
}

// resolve runs the fixpoint to completion and assembles the result.
func (r *resolver) resolve(ctx context.Context, deps []module.Dependency) (*Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	r.ctx = ctx

	r.seedConstraints()

	r.tasks = make(chan expandTask, r.cfg.maxConcurrency)
	var workers sync.WaitGroup
	for i := 0; i < r.cfg.maxConcurrency; i++ {
		workers.Add(1)
		go func() {
			defer workers.Done()
			for task := range r.tasks {
				r.expand(task)
				r.pending.Done()
			}
		}()
	}

	r.mu.Lock()
	for _, dep := range deps {
		if dep.Optional {
			if r.cfg.bomSupport && dep.Version != "" {
				r.store.Record(module.Constraint{
					Group:    dep.Group,
					Name:     dep.Name,
					Version:  dep.Version,
					Strength: module.StrengthRequire,
					Source:   "optional:" + rootRequester,
				})
			}
			continue
		}
		r.roots = append(r.roots, dep)
		r.addDependency(rootRequester, dep, exclusionFilter{})
	}
	r.mu.Unlock()

	r.pending.Wait()
	close(r.tasks)
	workers.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.buildResult(), nil
}

// seedConstraints records caller-declared constraints and lockfile pins
// before any traversal happens.
func (r *resolver) seedConstraints() {
	for _, c := range r.cfg.constraints {
		if c.Source == "" {
			c.Source = "declared"
		}
		r.store.Record(c)
	}
	if r.cfg.locks == nil {
		return
	}
	for id, entry := range r.cfg.locks.Entries {
		r.store.Record(module.Constraint{
			Group:    id.Group,
			Name:     id.Name,
			Version:  entry.Version,
			Strength: module.StrengthStrict,
			Source:   "lockfile",
		})
	}
}

// enqueue hands a task to the worker pool without ever blocking: the caller
// holds the graph lock, and a blocked send would deadlock against workers
// waiting for that same lock.
func (r *resolver) enqueue(task expandTask) {
	r.pending.Add(1)
	select {
	case r.tasks <- task:
	default:
		go func() {
			select {
			case r.tasks <- task:
			case <-r.ctx.Done():
				r.pending.Done()
			}
		}()
	}
}

func (r *resolver) bucketFor(id module.ID) *bucket {
	b, ok := r.buckets[id]
	if !ok {
		b = &bucket{
			id:       id,
			seen:     make(map[string]bool),
			filters:  make(map[string]exclusionFilter),
			expanded: make(map[string]bool),
		}
		r.buckets[id] = b
		r.order = append(r.order, id)
	}
	return b
}

// addDependency proposes one edge into the graph. The path filter is the
// accumulated exclusion set in effect at the declaring side of the edge; the
// edge's own exclusions apply only below the target, never to the target
// itself. Called with the lock held.
func (r *resolver) addDependency(from string, dep module.Dependency, path exclusionFilter) {
	id := dep.ID()
	if path.excludes(id) {
		r.log.Debug("dependency excluded", "from", from, "module", id.String())
		return
	}

	b := r.bucketFor(id)
	if b.failure != nil {
		return
	}

	key := from + "\x00" + dep.Version
	if !b.seen[key] {
		b.seen[key] = true
		req := versionRequest{from: from, declared: dep.Version}
		if dep.Version != "" {
			sel, err := version.ParseSelector(dep.Version)
			if err != nil {
				r.failBucket(b, &ResolutionFailedError{
					ID:           id,
					Requirements: []string{fmt.Sprintf("%s (from %s): %v", dep.Version, from, err)},
				})
				return
			}
			req.selector = sel
			req.valid = true
		}
		b.requests = append(b.requests, req)
	}

	sub := path.with(dep.Exclusions)
	fk := sub.canonical()
	if _, ok := b.filters[fk]; !ok {
		b.filters[fk] = sub
	}

	r.reselect(b)
}

// reselect recomputes a bucket's winning version after its requests or
// constraints changed, then schedules whatever expansion the outcome needs.
// Called with the lock held.
func (r *resolver) reselect(b *bucket) {
	if b.failure != nil {
		return
	}

	target, state, err := r.choose(b)
	if err != nil {
		r.failBucket(b, err)
		return
	}
	if target == "" {
		// Nothing proposable yet: waiting on a version listing, or the
		// bucket only has unpinned edges so far. A bucket whose
		// requesters all vanished retracts its own contributions.
		if b.candidate != "" && len(b.requests) == 0 {
			old := r.coordinate(b)
			b.candidate = ""
			b.generation++
			b.metadata = nil
			b.constraintsFrom = ""
			b.expanded = make(map[string]bool)
			r.retract(old.String())
		}
		return
	}

	b.selection = state
	if target == b.candidate {
		r.expandCandidate(b)
		return
	}

	if b.candidate != "" {
		old := r.coordinate(b)
		b.generation++
		b.metadata = nil
		b.constraintsFrom = ""
		b.expanded = make(map[string]bool)
		b.candidate = target
		r.log.Debug("version superseded",
			"module", b.id.String(), "was", old.Version, "now", target, "reason", state.reason)
		r.retract(old.String())
	} else {
		b.candidate = target
	}

	r.expandCandidate(b)
}

// retract removes every request and every constraint contributed by a
// superseded module version and reselects the affected buckets, possibly
// downgrading them. The surviving constraint set is a pure function of the
// current candidates, never of the order fetches completed in.
func (r *resolver) retract(from string) {
	for _, id := range r.store.Retract(from) {
		if b, ok := r.buckets[id]; ok {
			r.reselect(b)
		}
	}
	for i := 0; i < len(r.order); i++ {
		b := r.buckets[r.order[i]]
		kept := b.requests[:0]
		changed := false
		for _, req := range b.requests {
			if req.from == from {
				delete(b.seen, req.from+"\x00"+req.declared)
				changed = true
				continue
			}
			kept = append(kept, req)
		}
		if changed {
			b.requests = kept
			r.reselect(b)
		}
	}
}

// expandCandidate schedules a fetch-and-expand for every exclusion filter
// that has not yet seen the current candidate. Called with the lock held.
func (r *resolver) expandCandidate(b *bucket) {
	if b.candidate == "" || b.failure != nil {
		return
	}
	for fk, f := range b.filters {
		key := b.candidate + "\x00" + fk
		if b.expanded[key] {
			continue
		}
		b.expanded[key] = true
		r.enqueue(expandTask{id: b.id, version: b.candidate, generation: b.generation, filter: f})
	}
}

// expand fetches one module version and proposes its dependency edges.
// The fetch runs without the lock; results for a superseded generation are
// dropped (the parsed metadata stays cached).
func (r *resolver) expand(task expandTask) {
	if r.ctx.Err() != nil {
		return
	}

	// Skip the fetch entirely when the task is already stale: a version
	// superseded while queued is never downloaded.
	r.mu.Lock()
	b := r.buckets[task.id]
	if b == nil || b.generation != task.generation || b.candidate != task.version || b.failure != nil {
		r.mu.Unlock()
		return
	}
	r.mu.Unlock()

	coord := module.Coordinate{Group: task.id.Group, Name: task.id.Name, Version: task.version}
	md, err := r.source.Lookup(r.ctx, coord)

	r.mu.Lock()
	defer r.mu.Unlock()

	b = r.buckets[task.id]
	if b == nil || b.generation != task.generation || b.candidate != task.version {
		return
	}
	if b.failure != nil {
		return
	}
	if err != nil {
		r.failBucket(b, err)
		return
	}
	b.metadata = md

	sv, err := selectVariant(md, r.cfg.primaryUsage())
	if err != nil {
		r.failBucket(b, err)
		return
	}

	if b.constraintsFrom != task.version {
		b.constraintsFrom = task.version
		r.publishConstraints(coord, md, sv)
	}

	from := coord.String()
	for _, dep := range sv.Dependencies {
		if dep.Version == "" {
			dep.Version = managedVersion(md, dep.ID())
		}
		r.addDependency(from, dep, task.filter)
	}
}

// publishConstraints records the constraints a fetched module contributes to
// the shared store and reselects every bucket they touch.
//
// Native metadata contributes the selected variant's constraints. A BOM
// contributes its whole dependency management section to the consumer side.
// Optional dependencies of descriptor formats convert into require
// constraints. A regular POM's dependency management stays local to its own
// unpinned edges and is not published.
func (r *resolver) publishConstraints(coord module.Coordinate, md *module.Metadata, sv *SelectedVariant) {
	var cs []module.Constraint

	if len(md.Variants) > 0 {
		if v := md.Variant(sv.Name); v != nil {
			cs = v.Constraints
		}
	} else if r.cfg.bomSupport {
		if md.IsBOM() {
			for _, c := range md.Constraints {
				c.Source = "bom:" + coord.String()
				cs = append(cs, c)
			}
		}
		for _, d := range md.Dependencies {
			if d.Optional && d.Version != "" {
				cs = append(cs, module.Constraint{
					Group:    d.Group,
					Name:     d.Name,
					Version:  d.Version,
					Strength: module.StrengthRequire,
					Source:   "optional:" + coord.String(),
				})
			}
		}
	}

	if len(cs) == 0 {
		return
	}
	r.store.RecordAllFrom(coord.String(), cs)
	for _, c := range cs {
		if tb, ok := r.buckets[c.ID()]; ok {
			r.reselect(tb)
		}
	}
}

// managedVersion resolves an unpinned edge against the declaring module's
// own dependency management section.
func managedVersion(md *module.Metadata, id module.ID) string {
	for _, c := range md.Constraints {
		if c.Strength == module.StrengthRequire && c.ID() == id {
			return c.Version
		}
	}
	return ""
}

// choose computes the winning version for a bucket from its requests and the
// shared constraint store. It returns "" with no error when nothing is
// proposable yet. Called with the lock held.
func (r *resolver) choose(b *bucket) (string, selectionState, error) {
	constraints := r.store.For(b.id)

	var stricts []module.Constraint
	var rejects []version.Selector
	var required []module.Constraint
	for _, c := range constraints {
		switch c.Strength {
		case module.StrengthStrict:
			stricts = append(stricts, c)
		case module.StrengthReject:
			sel, err := version.ParseSelector(c.Version)
			if err != nil {
				r.log.Debug("unparseable reject constraint ignored",
					"module", b.id.String(), "constraint", c.String())
				continue
			}
			rejects = append(rejects, sel)
		default:
			required = append(required, c)
		}
	}

	rejected := func(v string) bool {
		for _, sel := range rejects {
			if sel.Matches(v) {
				return true
			}
		}
		return false
	}

	// Strict constraints override everything. Two disagreeing strict
	// constraints fail regardless of discovery order.
	if len(stricts) > 0 {
		first := stricts[0].Version
		for _, c := range stricts[1:] {
			if c.Version != first {
				return "", selectionState{}, &StrictVersionConflictError{ID: b.id, Constraints: stricts}
			}
		}

		sel, err := version.ParseSelector(first)
		if err != nil {
			return "", selectionState{}, &ResolutionFailedError{
				ID:           b.id,
				Requirements: r.requirementStrings(b, constraints),
			}
		}
		target, concrete := sel.Exact()
		if !concrete {
			// A strict range or dynamic marker narrows against the
			// version listing like any dynamic requirement.
			if !b.listed {
				r.ensureListing(b)
				return "", selectionState{}, nil
			}
			var live []string
			for _, v := range b.available {
				if !rejected(v) {
					live = append(live, v)
				}
			}
			if best, ok := sel.Best(live); ok {
				target = best
			} else if pref, ok := sel.Preferred(); ok {
				target = pref
			} else {
				return "", selectionState{}, &ResolutionFailedError{
					ID:           b.id,
					Requirements: r.requirementStrings(b, constraints),
				}
			}
		}
		if rejected(target) {
			return "", selectionState{}, &ResolutionFailedError{
				ID:           b.id,
				Requirements: r.requirementStrings(b, constraints),
			}
		}
		for _, req := range b.requests {
			if !req.valid {
				continue
			}
			// A concrete request that disagrees with the forced version is
			// a strict conflict; range and prefix requests must accept it.
			if v, ok := req.selector.Exact(); ok {
				if version.Compare(v, target) != 0 {
					disagreeing := append([]module.Constraint{}, stricts...)
					disagreeing = append(disagreeing, module.Constraint{
						Group:    b.id.Group,
						Name:     b.id.Name,
						Version:  req.declared,
						Strength: module.StrengthRequire,
						Source:   "requested by " + req.from,
					})
					return "", selectionState{}, &StrictVersionConflictError{ID: b.id, Constraints: disagreeing}
				}
				continue
			}
			if !req.selector.Matches(target) {
				return "", selectionState{}, &ResolutionFailedError{
					ID:           b.id,
					Requirements: r.requirementStrings(b, constraints),
				}
			}
		}
		return target, selectionState{
			strategy: graph.StrategyStrict,
			reason:   "strict version from " + stricts[0].Source,
		}, nil
	}

	// Collect concrete proposals from requests and require constraints.
	type proposal struct {
		v      string
		source string
	}
	var proposals []proposal
	var unsatisfied []string
	needListing := false

	// Rejected versions are invisible to dynamic requirements: a prefix or
	// range picks the highest surviving version instead of failing.
	var listing []string
	if b.listed {
		for _, v := range b.available {
			if !rejected(v) {
				listing = append(listing, v)
			}
		}
	}

	resolveDynamic := func(sel version.Selector, raw, source string) {
		if !b.listed {
			needListing = true
			return
		}
		if best, ok := sel.Best(listing); ok {
			proposals = append(proposals, proposal{best, source})
			return
		}
		if pref, ok := sel.Preferred(); ok {
			proposals = append(proposals, proposal{pref, source})
			return
		}
		unsatisfied = append(unsatisfied, fmt.Sprintf("%s (%s): no matching version available", raw, source))
	}

	for _, req := range b.requests {
		if req.declared == "" || !req.valid {
			continue
		}
		if v, ok := req.selector.Exact(); ok {
			proposals = append(proposals, proposal{v, "requested by " + req.from})
			continue
		}
		resolveDynamic(req.selector, req.declared, "requested by "+req.from)
	}
	for _, c := range required {
		sel, err := version.ParseSelector(c.Version)
		if err != nil {
			continue
		}
		source := "constraint from " + c.Source
		if v, ok := sel.Exact(); ok {
			proposals = append(proposals, proposal{v, source})
			continue
		}
		resolveDynamic(sel, c.Version, source)
	}

	if needListing {
		r.ensureListing(b)
	}

	var viable []proposal
	for _, p := range proposals {
		if !rejected(p.v) {
			viable = append(viable, p)
		}
	}

	if len(viable) == 0 {
		if len(unsatisfied) > 0 || len(proposals) > 0 {
			return "", selectionState{}, &ResolutionFailedError{
				ID:           b.id,
				Requirements: r.requirementStrings(b, constraints),
			}
		}
		return "", selectionState{}, nil
	}

	// Highest wins, but range and prefix requests act as hard bounds: the
	// winner is the highest viable proposal every dynamic requirement
	// accepts.
	sort.SliceStable(viable, func(i, j int) bool {
		return version.Compare(viable[i].v, viable[j].v) > 0
	})
	for _, p := range viable {
		ok := true
		for _, req := range b.requests {
			if req.valid && req.selector.IsDynamic() && !req.selector.Matches(p.v) {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		if len(unsatisfied) > 0 {
			return "", selectionState{}, &ResolutionFailedError{
				ID:           b.id,
				Requirements: r.requirementStrings(b, constraints),
			}
		}
		state := selectionState{strategy: graph.StrategyHighest, reason: p.source}
		if len(viable) > 1 {
			state.reason = fmt.Sprintf("highest of %d candidates (%s)", len(viable), p.source)
		}
		return p.v, state, nil
	}

	return "", selectionState{}, &ResolutionFailedError{
		ID:           b.id,
		Requirements: r.requirementStrings(b, constraints),
	}
}

// ensureListing starts one asynchronous available-versions fetch for a
// bucket with dynamic requirements. Called with the lock held.
func (r *resolver) ensureListing(b *bucket) {
	if b.listed || b.listing {
		return
	}
	b.listing = true
	r.pending.Add(1)
	go func() {
		defer r.pending.Done()
		versions, err := r.source.Versions(r.ctx, b.id)

		r.mu.Lock()
		defer r.mu.Unlock()
		b.listing = false
		b.listed = true
		if err != nil {
			r.log.Debug("version listing unavailable", "module", b.id.String(), "error", err)
		} else {
			b.available = versions
		}
		r.reselect(b)
	}()
}

// requirementStrings renders every requirement on a bucket for failure
// messages, in discovery order.
func (r *resolver) requirementStrings(b *bucket, constraints []module.Constraint) []string {
	var out []string
	for _, req := range b.requests {
		if req.declared == "" {
			continue
		}
		out = append(out, fmt.Sprintf("%s (requested by %s)", req.declared, req.from))
	}
	for _, c := range constraints {
		out = append(out, c.String())
	}
	return out
}

func (r *resolver) failBucket(b *bucket, err error) {
	if b.failure != nil {
		return
	}
	b.failure = err
	b.candidate = ""
	b.metadata = nil
	r.log.Debug("module failed", "module", b.id.String(), "error", err)
}

func (r *resolver) coordinate(b *bucket) module.Coordinate {
	return module.Coordinate{Group: b.id.Group, Name: b.id.Name, Version: b.candidate}
}

// buildResult assembles the final graph, conflict report and failure list.
// Only buckets still reachable from the root appear in the graph; buckets
// orphaned by supersession are left out.
func (r *resolver) buildResult() *Result {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := &Result{FetchCount: r.source.FetchCount()}

	for _, id := range r.order {
		b := r.buckets[id]
		if b.failure != nil {
			result.Failures = append(result.Failures, Failure{ID: id, Err: b.failure})
			continue
		}
		if b.candidate == "" && len(b.requests) > 0 {
			// Discovered through unpinned edges but no constraint ever
			// supplied a version.
			reqs := r.requirementStrings(b, r.store.For(id))
			if len(reqs) == 0 {
				reqs = []string{"no version requirement declared on any path"}
			}
			result.Failures = append(result.Failures, Failure{
				ID:  id,
				Err: &ResolutionFailedError{ID: id, Requirements: reqs},
			})
		}
	}

	builder := graph.NewBuilder(graph.RootKey)
	added := make(map[module.ID]bool)
	visited := make(map[string]bool)

	addNode := func(b *bucket) graph.Key {
		key := graph.Key{Group: b.id.Group, Name: b.id.Name, Version: b.candidate}
		if added[b.id] {
			return key
		}
		added[b.id] = true

		variants := make(map[string]graph.VariantSelection)
		for _, usage := range r.cfg.usages {
			sv, err := selectVariant(b.metadata, usage)
			if err != nil {
				result.Failures = append(result.Failures, Failure{ID: b.id, Err: err})
				continue
			}
			variants[usage] = graph.VariantSelection{Name: sv.Name, Artifacts: sv.Artifacts}
		}
		builder.AddModule(key, r.selectionInfo(b), variants)
		return key
	}

	var walk func(fromKey graph.Key, deps []module.Dependency, owner *module.Metadata, filter exclusionFilter)
	walk = func(fromKey graph.Key, deps []module.Dependency, owner *module.Metadata, filter exclusionFilter) {
		for _, dep := range deps {
			if filter.excludes(dep.ID()) {
				continue
			}
			b, ok := r.buckets[dep.ID()]
			if !ok || b.failure != nil || b.candidate == "" || b.metadata == nil {
				continue
			}

			declared := dep.Version
			if declared == "" && owner != nil {
				declared = managedVersion(owner, dep.ID())
			}

			key := addNode(b)
			builder.AddEdge(fromKey, key, declared)

			child := filter.with(dep.Exclusions)
			vk := key.String() + "\x00" + child.canonical()
			if visited[vk] {
				continue
			}
			visited[vk] = true

			sv, err := selectVariant(b.metadata, r.cfg.primaryUsage())
			if err != nil {
				continue
			}
			walk(key, sv.Dependencies, b.metadata, child)
		}
	}
	walk(graph.RootKey, r.roots, nil, exclusionFilter{})

	result.Graph = builder.Build()

	// Conflicts come from the final candidate sets of reachable nodes, so
	// the report is independent of the order fetches happened to finish in.
	for _, key := range result.Graph.SortedKeys() {
		node := result.Graph.Modules[key]
		if node.IsRoot || node.Selection == nil {
			continue
		}
		var losers []Supersession
		for _, c := range node.Selection.Candidates {
			if c.Selected {
				continue
			}
			losers = append(losers, Supersession{
				Version: c.Version,
				Winner:  key.Version,
				Reason:  c.RejectionReason,
			})
		}
		if len(losers) > 0 {
			result.Conflicts = append(result.Conflicts, Conflict{
				ID:         key.ID(),
				Winner:     key.Version,
				Superseded: losers,
			})
		}
	}

	sort.Slice(result.Failures, func(i, j int) bool {
		return result.Failures[i].ID.String() < result.Failures[j].ID.String()
	})

	return result
}

// selectionInfo converts a bucket's request bookkeeping into the graph's
// explanation form.
func (r *resolver) selectionInfo(b *bucket) *graph.SelectionInfo {
	info := &graph.SelectionInfo{
		Strategy:        b.selection.strategy,
		SelectedVersion: b.candidate,
		DecidingFactor:  b.selection.reason,
	}

	byVersion := make(map[string][]string)
	var versionOrder []string
	record := func(declared, from string) {
		if declared == "" {
			return
		}
		if _, ok := byVersion[declared]; !ok {
			versionOrder = append(versionOrder, declared)
		}
		byVersion[declared] = append(byVersion[declared], from)
	}
	for _, req := range b.requests {
		record(req.declared, req.from)
	}
	for _, c := range r.store.For(b.id) {
		record(c.Version, "constraint "+c.Source)
	}

	for _, v := range versionOrder {
		candidate := graph.VersionCandidate{
			Version:     v,
			RequestedBy: byVersion[v],
			Selected:    satisfiedBy(v, b.candidate),
		}
		if !candidate.Selected {
			if b.selection.strategy == graph.StrategyStrict {
				candidate.RejectionReason = "overridden by strict version"
			} else {
				candidate.RejectionReason = "lost to higher version " + b.candidate
			}
		}
		info.Candidates = append(info.Candidates, candidate)
	}
	return info
}

// satisfiedBy reports whether a declared requirement agrees with the winning
// version. A range that contains the winner did not lose a conflict.
func satisfiedBy(declared, winner string) bool {
	if declared == winner {
		return true
	}
	sel, err := version.ParseSelector(declared)
	if err != nil {
		return false
	}
	return sel.Matches(winner)
}

// exclusionFilter is the accumulated exclusion set along one dependency
// path. Filters are value types; extending one never mutates the parent, so
// sibling subtrees stay unaffected.
type exclusionFilter struct {
	rules []module.Exclusion
}

// with returns the filter extended by an edge's exclusions.
func (f exclusionFilter) with(more []module.Exclusion) exclusionFilter {
	if len(more) == 0 {
		return f
	}
	rules := make([]module.Exclusion, 0, len(f.rules)+len(more))
	rules = append(rules, f.rules...)
outer:
	for _, e := range more {
		for _, have := range rules {
			if have == e {
				continue outer
			}
		}
		rules = append(rules, e)
	}
	return exclusionFilter{rules: rules}
}

// excludes reports whether the filter prunes the given module.
func (f exclusionFilter) excludes(id module.ID) bool {
	for _, e := range f.rules {
		if e.Matches(id) {
			return true
		}
	}
	return false
}

// canonical returns an order-independent key so that equal exclusion sets
// reached along different paths share one expansion.
func (f exclusionFilter) canonical() string {
	if len(f.rules) == 0 {
		return ""
	}
	parts := make([]string, len(f.rules))
	for i, e := range f.rules {
		parts[i] = e.Group + ":" + e.Name
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}
