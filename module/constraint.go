package module

// Strength classifies how strongly a constraint binds version selection.
type Strength int

const (
	// StrengthRequire is an ordinary constraint: it participates in
	// highest-wins conflict resolution like a declared version.
	StrengthRequire Strength = iota

	// StrengthStrict forces the exact version, overriding highest-wins.
	// Two strict constraints that disagree fail resolution.
	StrengthStrict

	// StrengthReject vetoes matching versions from selection.
	StrengthReject
)

// String returns the lowercase name of the strength.
func (s Strength) String() string {
	switch s {
	case StrengthStrict:
		return "strict"
	case StrengthReject:
		return "reject"
	default:
		return "require"
	}
}

// Constraint bounds version selection for a module without introducing a
// graph edge. Constraints are produced by explicit declarations, by BOM
// import expansion, and by optional-dependency conversion.
type Constraint struct {
	// Group and Name identify the constrained module.
	Group string `json:"group"`
	Name  string `json:"name"`

	// Version is the constrained version or range. For a reject
	// constraint it is the version (or range) being vetoed.
	Version string `json:"version"`

	// Strength is the constraint's binding strength.
	Strength Strength `json:"strength"`

	// Source records where the constraint came from, for diagnostics.
	// Examples: "declared", "bom:com.x:platform:1.0",
	// "optional:com.x:lib:2.0", "lockfile".
	Source string `json:"source,omitempty"`
}

// ID returns the constrained module identity.
func (c Constraint) ID() ID {
	return ID{Group: c.Group, Name: c.Name}
}

// String returns a diagnostic form like "com.x:y:1.2 (strict, from bom:...)".
func (c Constraint) String() string {
	s := c.Group + ":" + c.Name + ":" + c.Version + " (" + c.Strength.String()
	if c.Source != "" {
		s += ", from " + c.Source
	}
	return s + ")"
}
