package module

// Format identifies the descriptor format a piece of metadata was parsed
// from. Repositories advertise which formats they can serve; the source
// adapter prefers the richest available one.
type Format string

const (
	// FormatModule is the native module metadata format (JSON, explicit
	// variants and constraints). Richest constraint fidelity.
	FormatModule Format = "module"

	// FormatPOM is a Maven POM descriptor.
	FormatPOM Format = "pom"

	// FormatIvy is an Ivy descriptor.
	FormatIvy Format = "ivy"

	// FormatArtifact means the repository holds only the artifact, no
	// descriptor. Such modules resolve with zero dependencies when the
	// artifact-only fallback is enabled.
	FormatArtifact Format = "artifact"
)

// Scope classifies a dependency's usage, following POM scope names.
// Ivy configurations and module metadata usage attributes are normalized
// onto the same values.
type Scope string

const (
	ScopeCompile  Scope = "compile"
	ScopeRuntime  Scope = "runtime"
	ScopeProvided Scope = "provided"
	ScopeTest     Scope = "test"
	ScopeSystem   Scope = "system"
)

// Transitive reports whether dependencies of this scope become edges in a
// consumer's graph. Test, provided and system scoped dependencies do not.
func (s Scope) Transitive() bool {
	return s == ScopeCompile || s == ScopeRuntime || s == ""
}

// Metadata describes one resolvable module version. It is owned by the
// source adapter cache, keyed by coordinate, and immutable once constructed.
type Metadata struct {
	// Coordinate is the concrete identity of this module version.
	Coordinate Coordinate `json:"coordinate"`

	// Packaging is the POM packaging, when parsed from a POM.
	// "pom" marks a BOM: depending on it imports all of its constraint
	// entries into the consumer's constraint set.
	Packaging string `json:"packaging,omitempty"`

	// Dependencies are the declared dependency edges, in declaration order.
	// For module metadata these are the union of all variant dependencies;
	// traversal uses the selected variant's subset instead.
	Dependencies []Dependency `json:"dependencies,omitempty"`

	// Constraints are dependency management entries: version bounds that
	// never create edges by themselves.
	Constraints []Constraint `json:"constraints,omitempty"`

	// Variants are the explicitly declared variants, present only for
	// module metadata. POM and Ivy derived modules have none; the variant
	// selector synthesizes api/runtime views from scopes instead.
	Variants []Variant `json:"variants,omitempty"`

	// Artifacts are the declared artifacts for formats without variants
	// (Ivy publications, the implied POM jar, artifact-only modules).
	// Module metadata carries artifacts per variant instead.
	Artifacts []Artifact `json:"artifacts,omitempty"`

	// Source records which descriptor format produced this metadata.
	Source Format `json:"source"`
}

// IsBOM reports whether this metadata is a bill of materials.
func (m *Metadata) IsBOM() bool {
	return m.Packaging == "pom"
}

// Variant returns the declared variant with the given name, or nil.
func (m *Metadata) Variant(name string) *Variant {
	for i := range m.Variants {
		if m.Variants[i].Name == name {
			return &m.Variants[i]
		}
	}
	return nil
}

// Dependency is a declared edge from one module to a coordinate. The target
// is an identity plus a version requirement, not yet a resolved module.
type Dependency struct {
	// Group and Name identify the target module.
	Group string `json:"group"`
	Name  string `json:"name"`

	// Version is the requested version, range, or dynamic marker.
	// Empty means unpinned: the edge relies entirely on constraints.
	Version string `json:"version,omitempty"`

	// Scope is the dependency's usage scope. Empty means compile.
	Scope Scope `json:"scope,omitempty"`

	// Optional marks an optional dependency. With optional-dependency
	// support enabled it becomes a constraint instead of an edge.
	Optional bool `json:"optional,omitempty"`

	// Classifier distinguishes secondary artifacts (POM only).
	Classifier string `json:"classifier,omitempty"`

	// Exclusions prune matching modules from the subtree reached through
	// this edge. They do not affect other paths to the same modules.
	Exclusions []Exclusion `json:"exclusions,omitempty"`
}

// ID returns the target module identity.
func (d Dependency) ID() ID {
	return ID{Group: d.Group, Name: d.Name}
}

// EffectiveScope returns the scope, defaulting to compile.
func (d Dependency) EffectiveScope() Scope {
	if d.Scope == "" {
		return ScopeCompile
	}
	return d.Scope
}

// Exclusion matches modules by group and name. An empty or "*" component
// matches anything.
type Exclusion struct {
	Group string `json:"group"`
	Name  string `json:"name"`
}

// Matches reports whether the exclusion applies to the given module.
func (e Exclusion) Matches(id ID) bool {
	return matchComponent(e.Group, id.Group) && matchComponent(e.Name, id.Name)
}

func matchComponent(pattern, value string) bool {
	return pattern == "" || pattern == "*" || pattern == value
}

// Artifact is one file published by a module variant.
type Artifact struct {
	// Name is the file name, e.g. "guava-31.1-jre.jar".
	Name string `json:"name"`

	// Type is the artifact type, e.g. "jar". Defaults to "jar".
	Type string `json:"type,omitempty"`

	// Classifier distinguishes secondary artifacts, e.g. "sources".
	Classifier string `json:"classifier,omitempty"`

	// URL is the location relative to the module's repository directory.
	URL string `json:"url,omitempty"`
}

// Variant is a named subset of a module's artifacts and dependencies suited
// to one usage.
type Variant struct {
	// Name is the variant name, e.g. "apiElements".
	Name string `json:"name"`

	// Usage is the normalized usage attribute: "api" or "runtime".
	Usage string `json:"usage"`

	// Attributes carries the raw declared attributes.
	Attributes map[string]string `json:"attributes,omitempty"`

	// Dependencies is this variant's dependency subset.
	Dependencies []Dependency `json:"dependencies,omitempty"`

	// Constraints is this variant's dependency constraint subset.
	Constraints []Constraint `json:"constraints,omitempty"`

	// Artifacts is the artifact set for this variant.
	Artifacts []Artifact `json:"artifacts,omitempty"`
}
