package lockfile

import (
	"fmt"
	"sort"
	"strings"

	"github.com/snapsam/gradle/module"
)

// Diff compares this lockfile against a newer one and returns the drift.
// It answers "what changed since the versions were locked": modules that
// appeared, disappeared, or moved to a different version.
func (l *Lockfile) Diff(other *Lockfile) *Drift {
	d := &Drift{
		Added:   make(map[module.ID]string),
		Removed: make(map[module.ID]string),
		Changed: make(map[module.ID][2]string),
	}

	for id, entry := range other.Entries {
		existing, ok := l.Entries[id]
		if !ok {
			d.Added[id] = entry.Version
		} else if existing.Version != entry.Version {
			d.Changed[id] = [2]string{existing.Version, entry.Version}
		}
	}
	for id, entry := range l.Entries {
		if _, ok := other.Entries[id]; !ok {
			d.Removed[id] = entry.Version
		}
	}

	return d
}

// Drift describes the drift between two lockfiles.
type Drift struct {
	// Added holds modules present only in the newer lockfile.
	Added map[module.ID]string

	// Removed holds modules present only in the older lockfile.
	Removed map[module.ID]string

	// Changed maps modules to their [old, new] versions.
	Changed map[module.ID][2]string
}

// IsEmpty reports whether the two lockfiles agree.
func (d *Drift) IsEmpty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0
}

// Summary returns a human-readable description of the drift.
func (d *Drift) Summary() string {
	if d.IsEmpty() {
		return "no changes"
	}

	var parts []string
	for _, id := range sortedIDs(d.Added) {
		parts = append(parts, fmt.Sprintf("added %s:%s", id, d.Added[id]))
	}
	for _, id := range sortedIDs(d.Removed) {
		parts = append(parts, fmt.Sprintf("removed %s:%s", id, d.Removed[id]))
	}
	changed := make([]module.ID, 0, len(d.Changed))
	for id := range d.Changed {
		changed = append(changed, id)
	}
	sort.Slice(changed, func(i, j int) bool { return changed[i].String() < changed[j].String() })
	for _, id := range changed {
		versions := d.Changed[id]
		parts = append(parts, fmt.Sprintf("changed %s: %s -> %s", id, versions[0], versions[1]))
	}

	return strings.Join(parts, "\n")
}

func sortedIDs(m map[module.ID]string) []module.ID {
	ids := make([]module.ID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}
