// Package module defines the metadata model shared by every descriptor
// format the resolution engine understands: coordinates, dependencies,
// version constraints, exclusions and variants.
//
// Values in this package are plain data. They are produced by the format
// parsers (pom, ivy, gmm), consumed by the graph resolver, and immutable
// once handed over.
package module

// ID identifies a module independent of version. It is the conflict
// resolution bucket key: a closed graph contains at most one resolved
// version per ID.
type ID struct {
	// Group is the module's group (organisation in Ivy terms).
	Group string `json:"group"`

	// Name is the module's name (artifactId in POM terms).
	Name string `json:"name"`
}

// String returns the "group:name" form.
func (id ID) String() string {
	return id.Group + ":" + id.Name
}

// Coordinate identifies one concrete module version.
type Coordinate struct {
	// Group is the module's group.
	Group string `json:"group"`

	// Name is the module's name.
	Name string `json:"name"`

	// Version is the module version. In a dependency declaration this may
	// be a concrete version, a range like "[1.0,2.0)", a prefix like
	// "1.+", or a dynamic marker like "latest.release". A Coordinate held
	// by resolved metadata always carries a concrete version.
	Version string `json:"version"`
}

// ID returns the version-independent identity of the coordinate.
func (c Coordinate) ID() ID {
	return ID{Group: c.Group, Name: c.Name}
}

// String returns the "group:name:version" form.
func (c Coordinate) String() string {
	return c.Group + ":" + c.Name + ":" + c.Version
}
