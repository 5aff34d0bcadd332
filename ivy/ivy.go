// Package ivy parses Ivy descriptors into the common metadata model.
//
// Configuration mappings are normalized onto scopes: a dependency mapped
// only from runtime-like configurations becomes runtime scoped, test
// configurations become test scoped, everything else compile.
package ivy

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/snapsam/gradle/module"
)

type ivyModule struct {
	XMLName      xml.Name     `xml:"ivy-module"`
	Info         info         `xml:"info"`
	Publications []artifact   `xml:"publications>artifact"`
	Dependencies []dependency `xml:"dependencies>dependency"`
}

type info struct {
	Organisation string `xml:"organisation,attr"`
	Module       string `xml:"module,attr"`
	Revision     string `xml:"revision,attr"`
}

type artifact struct {
	Name string `xml:"name,attr"`
	Type string `xml:"type,attr"`
	Ext  string `xml:"ext,attr"`
}

type dependency struct {
	Org      string    `xml:"org,attr"`
	Name     string    `xml:"name,attr"`
	Rev      string    `xml:"rev,attr"`
	Conf     string    `xml:"conf,attr"`
	Excludes []exclude `xml:"exclude"`
}

type exclude struct {
	Org    string `xml:"org,attr"`
	Module string `xml:"module,attr"`
}

// Parse parses Ivy descriptor content into metadata.
func Parse(data []byte) (*module.Metadata, error) {
	var m ivyModule
	if err := xml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse ivy descriptor: %w", err)
	}
	if m.Info.Organisation == "" || m.Info.Module == "" || m.Info.Revision == "" {
		return nil, fmt.Errorf("parse ivy descriptor: incomplete info element")
	}

	md := &module.Metadata{
		Coordinate: module.Coordinate{
			Group:   m.Info.Organisation,
			Name:    m.Info.Module,
			Version: m.Info.Revision,
		},
		Source: module.FormatIvy,
	}

	for _, d := range m.Dependencies {
		dep := module.Dependency{
			Group:   d.Org,
			Name:    d.Name,
			Version: d.Rev,
			Scope:   scopeForConf(d.Conf),
		}
		for _, e := range d.Excludes {
			dep.Exclusions = append(dep.Exclusions, module.Exclusion{
				Group: e.Org,
				Name:  e.Module,
			})
		}
		md.Dependencies = append(md.Dependencies, dep)
	}

	return md, nil
}

// Artifacts returns the declared publications as artifacts. It returns nil
// when no publications are declared; the caller supplies the default jar.
func Artifacts(md *module.Metadata, data []byte) []module.Artifact {
	var m ivyModule
	if err := xml.Unmarshal(data, &m); err != nil || len(m.Publications) == 0 {
		return nil
	}
	arts := make([]module.Artifact, 0, len(m.Publications))
	for _, a := range m.Publications {
		ext := a.Ext
		if ext == "" {
			ext = "jar"
		}
		typ := a.Type
		if typ == "" {
			typ = ext
		}
		arts = append(arts, module.Artifact{
			Name: a.Name + "-" + md.Coordinate.Version + "." + ext,
			Type: typ,
		})
	}
	return arts
}

// scopeForConf maps the consumer side of a conf mapping onto a scope.
func scopeForConf(conf string) module.Scope {
	if conf == "" {
		return module.ScopeCompile
	}
	lhs := conf
	if i := strings.Index(conf, "->"); i >= 0 {
		lhs = conf[:i]
	}
	confs := strings.Split(lhs, ",")
	scope := module.Scope("")
	for _, c := range confs {
		switch strings.TrimSpace(c) {
		case "compile", "default", "master", "*":
			return module.ScopeCompile
		case "runtime":
			scope = module.ScopeRuntime
		case "test":
			if scope == "" {
				scope = module.ScopeTest
			}
		case "provided":
			if scope == "" {
				scope = module.ScopeProvided
			}
		}
	}
	if scope == "" {
		return module.ScopeCompile
	}
	return scope
}
