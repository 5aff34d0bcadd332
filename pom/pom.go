// Package pom parses Maven POM descriptors into the common metadata model.
//
// The parser covers the subset of the POM that matters for dependency
// resolution: coordinates (with parent fallback), packaging, properties
// interpolation, dependencies with scope/optional/classifier/exclusions,
// and dependencyManagement entries, which become constraints.
package pom

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/snapsam/gradle/module"
)

// project mirrors the POM XML structure.
type project struct {
	XMLName              xml.Name     `xml:"project"`
	GroupID              string       `xml:"groupId"`
	ArtifactID           string       `xml:"artifactId"`
	Version              string       `xml:"version"`
	Packaging            string       `xml:"packaging"`
	Parent               parent       `xml:"parent"`
	Properties           properties   `xml:"properties"`
	Dependencies         []dependency `xml:"dependencies>dependency"`
	DependencyManagement []dependency `xml:"dependencyManagement>dependencies>dependency"`
}

type parent struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Version    string `xml:"version"`
}

type dependency struct {
	GroupID    string      `xml:"groupId"`
	ArtifactID string      `xml:"artifactId"`
	Version    string      `xml:"version"`
	Scope      string      `xml:"scope"`
	Type       string      `xml:"type"`
	Classifier string      `xml:"classifier"`
	Optional   string      `xml:"optional"`
	Exclusions []exclusion `xml:"exclusions>exclusion"`
}

type exclusion struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
}

// properties captures <properties> as free-form key/value pairs.
type properties map[string]string

func (p *properties) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	*p = make(map[string]string)
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch el := tok.(type) {
		case xml.StartElement:
			var value string
			if err := d.DecodeElement(&value, &el); err != nil {
				return err
			}
			(*p)[el.Name.Local] = strings.TrimSpace(value)
		case xml.EndElement:
			if el.Name == start.Name {
				return nil
			}
		}
	}
}

// Parse parses POM content into metadata.
func Parse(data []byte) (*module.Metadata, error) {
	var proj project
	if err := xml.Unmarshal(data, &proj); err != nil {
		return nil, fmt.Errorf("parse pom: %w", err)
	}

	// Inherit identity from the parent when absent.
	group := proj.GroupID
	if group == "" {
		group = proj.Parent.GroupID
	}
	ver := proj.Version
	if ver == "" {
		ver = proj.Parent.Version
	}
	if group == "" || proj.ArtifactID == "" || ver == "" {
		return nil, fmt.Errorf("parse pom: incomplete coordinates %q:%q:%q", group, proj.ArtifactID, ver)
	}

	props := proj.Properties
	if props == nil {
		props = map[string]string{}
	}
	props["project.groupId"] = group
	props["project.artifactId"] = proj.ArtifactID
	props["project.version"] = ver

	md := &module.Metadata{
		Coordinate: module.Coordinate{
			Group:   interpolate(group, props),
			Name:    proj.ArtifactID,
			Version: interpolate(ver, props),
		},
		Packaging: proj.Packaging,
		Source:    module.FormatPOM,
	}
	if md.Packaging == "" {
		md.Packaging = "jar"
	}

	for _, d := range proj.Dependencies {
		md.Dependencies = append(md.Dependencies, toDependency(d, props))
	}

	for _, d := range proj.DependencyManagement {
		md.Constraints = append(md.Constraints, module.Constraint{
			Group:    interpolate(d.GroupID, props),
			Name:     d.ArtifactID,
			Version:  interpolate(d.Version, props),
			Strength: module.StrengthRequire,
			Source:   "dependency-management:" + md.Coordinate.String(),
		})
	}

	return md, nil
}

func toDependency(d dependency, props map[string]string) module.Dependency {
	dep := module.Dependency{
		Group:      interpolate(d.GroupID, props),
		Name:       d.ArtifactID,
		Version:    interpolate(d.Version, props),
		Scope:      module.Scope(d.Scope),
		Classifier: d.Classifier,
		Optional:   strings.EqualFold(strings.TrimSpace(d.Optional), "true"),
	}
	for _, e := range d.Exclusions {
		dep.Exclusions = append(dep.Exclusions, module.Exclusion{
			Group: e.GroupID,
			Name:  e.ArtifactID,
		})
	}
	return dep
}

// interpolate substitutes ${key} references from the properties map.
// Unknown references are left as-is.
func interpolate(s string, props map[string]string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	var out strings.Builder
	for {
		start := strings.Index(s, "${")
		if start < 0 {
			out.WriteString(s)
			return out.String()
		}
		end := strings.Index(s[start:], "}")
		if end < 0 {
			out.WriteString(s)
			return out.String()
		}
		out.WriteString(s[:start])
		key := s[start+2 : start+end]
		if v, ok := props[key]; ok {
			out.WriteString(v)
		} else {
			out.WriteString(s[start : start+end+1])
		}
		s = s[start+end+1:]
	}
}
