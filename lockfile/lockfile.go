package lockfile

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/snapsam/gradle/module"
)

// filePermissions is the file mode for written lockfiles.
const filePermissions = 0o600

// header is written at the top of every generated lockfile.
const header = "# This file records locked dependency versions.\n" +
	"# Manual edits can break builds; regenerate it instead.\n"

// Lockfile pins every resolved module of earlier runs to an exact version.
// During resolution each entry acts as a strict version constraint, so a
// locked build either reproduces the recorded graph or fails loudly.
//
// The on-disk format is line oriented: one
// "group:name:version=usage1,usage2" entry per line, sorted, with comment
// lines starting with '#'.
type Lockfile struct {
	// Entries maps module identity to its locked state.
	Entries map[module.ID]Entry
}

// Entry is one locked module version.
type Entry struct {
	// Version is the locked, concrete version.
	Version string

	// Usages lists the usages the module was resolved for.
	Usages []string
}

// New returns an empty lockfile.
func New() *Lockfile {
	return &Lockfile{Entries: make(map[module.ID]Entry)}
}

// Lock records a module at a version for a usage, merging with any existing
// entry. Locking the same module at a different version replaces the entry.
func (l *Lockfile) Lock(id module.ID, version, usage string) {
	entry, ok := l.Entries[id]
	if !ok || entry.Version != version {
		l.Entries[id] = Entry{Version: version, Usages: []string{usage}}
		return
	}
	for _, u := range entry.Usages {
		if u == usage {
			return
		}
	}
	entry.Usages = append(entry.Usages, usage)
	sort.Strings(entry.Usages)
	l.Entries[id] = entry
}

// Get returns the locked version for a module and whether one exists.
func (l *Lockfile) Get(id module.ID) (string, bool) {
	entry, ok := l.Entries[id]
	return entry.Version, ok
}

// Len returns the number of locked modules.
func (l *Lockfile) Len() int {
	return len(l.Entries)
}

// ReadFile reads and parses a lockfile from the given path.
func ReadFile(path string) (*Lockfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lockfile: %w", err)
	}
	return Parse(data)
}

// Parse parses lockfile text.
func Parse(data []byte) (*Lockfile, error) {
	lf := New()
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		coord, usages, found := strings.Cut(line, "=")
		if !found {
			return nil, fmt.Errorf("lockfile line %d: missing '=' separator", i+1)
		}
		parts := strings.Split(coord, ":")
		if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
			return nil, fmt.Errorf("lockfile line %d: malformed coordinate %q", i+1, coord)
		}

		id := module.ID{Group: parts[0], Name: parts[1]}
		if existing, ok := lf.Entries[id]; ok && existing.Version != parts[2] {
			return nil, fmt.Errorf("lockfile line %d: %s locked at both %s and %s",
				i+1, id, existing.Version, parts[2])
		}
		for _, usage := range strings.Split(usages, ",") {
			if usage = strings.TrimSpace(usage); usage != "" {
				lf.Lock(id, parts[2], usage)
			}
		}
		if usages == "" {
			lf.Entries[id] = Entry{Version: parts[2]}
		}
	}
	return lf, nil
}

// WriteFile writes the lockfile to the given path with deterministic
// formatting.
func (l *Lockfile) WriteFile(path string) error {
	return os.WriteFile(path, l.Marshal(), filePermissions)
}

// Marshal serializes the lockfile with sorted entries for reproducibility.
func (l *Lockfile) Marshal() []byte {
	var buf bytes.Buffer
	buf.WriteString(header)

	ids := make([]module.ID, 0, len(l.Entries))
	for id := range l.Entries {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	for _, id := range ids {
		entry := l.Entries[id]
		fmt.Fprintf(&buf, "%s:%s=%s\n", id, entry.Version, strings.Join(entry.Usages, ","))
	}
	return buf.Bytes()
}
