package gradle

import (
	"errors"
	"testing"

	"github.com/snapsam/gradle/module"
)

func TestSelectVariantDeclared(t *testing.T) {
	md := &module.Metadata{
		Coordinate: module.Coordinate{Group: "com.x", Name: "lib", Version: "1.0"},
		Source:     module.FormatModule,
		Variants: []module.Variant{
			{
				Name:         "apiElements",
				Usage:        "api",
				Dependencies: []module.Dependency{{Group: "com.x", Name: "api-dep", Version: "1.0"}},
				Artifacts:    []module.Artifact{{Name: "lib-1.0-api.jar"}},
			},
			{
				Name:         "runtimeElements",
				Usage:        "runtime",
				Dependencies: []module.Dependency{{Group: "com.x", Name: "rt-dep", Version: "1.0"}},
				Artifacts:    []module.Artifact{{Name: "lib-1.0.jar"}},
			},
		},
	}

	sv, err := selectVariant(md, UsageRuntime)
	if err != nil {
		t.Fatalf("selectVariant(runtime) error = %v", err)
	}
	if sv.Name != "runtimeElements" {
		t.Errorf("variant = %s, want runtimeElements", sv.Name)
	}
	if len(sv.Dependencies) != 1 || sv.Dependencies[0].Name != "rt-dep" {
		t.Errorf("dependencies = %v, want [rt-dep]", sv.Dependencies)
	}
}

func TestSelectVariantUsageFallback(t *testing.T) {
	md := &module.Metadata{
		Coordinate: module.Coordinate{Group: "com.x", Name: "lib", Version: "1.0"},
		Source:     module.FormatModule,
		Variants: []module.Variant{
			{Name: "runtimeElements", Usage: "runtime"},
		},
	}

	// No api variant declared: runtime is compatible.
	sv, err := selectVariant(md, UsageAPI)
	if err != nil {
		t.Fatalf("selectVariant(api) error = %v", err)
	}
	if sv.Name != "runtimeElements" {
		t.Errorf("variant = %s, want runtime fallback", sv.Name)
	}
	if sv.Usage != UsageAPI {
		t.Errorf("usage = %s, want the requested usage", sv.Usage)
	}
}

func TestSelectVariantNoMatch(t *testing.T) {
	md := &module.Metadata{
		Coordinate: module.Coordinate{Group: "com.x", Name: "lib", Version: "1.0"},
		Source:     module.FormatModule,
		Variants: []module.Variant{
			{Name: "docs", Usage: "documentation"},
		},
	}

	_, err := selectVariant(md, UsageRuntime)
	if !errors.Is(err, ErrNoMatchingVariant) {
		t.Fatalf("error = %v, want no matching variant", err)
	}
	var nmv *NoMatchingVariantError
	if !errors.As(err, &nmv) {
		t.Fatal("want typed NoMatchingVariantError")
	}
	if len(nmv.Declared) != 1 || nmv.Declared[0] != "documentation" {
		t.Errorf("declared = %v, want [documentation]", nmv.Declared)
	}
}

func TestSynthesizedVariantsFromScopes(t *testing.T) {
	md := &module.Metadata{
		Coordinate: module.Coordinate{Group: "com.x", Name: "lib", Version: "1.0"},
		Source:     module.FormatPOM,
		Artifacts:  []module.Artifact{{Name: "lib-1.0.jar", Type: "jar"}},
		Dependencies: []module.Dependency{
			{Group: "com.x", Name: "compile-dep", Version: "1.0", Scope: module.ScopeCompile},
			{Group: "com.x", Name: "default-dep", Version: "1.0"},
			{Group: "com.x", Name: "runtime-dep", Version: "1.0", Scope: module.ScopeRuntime},
			{Group: "com.x", Name: "test-dep", Version: "1.0", Scope: module.ScopeTest},
			{Group: "com.x", Name: "provided-dep", Version: "1.0", Scope: module.ScopeProvided},
			{Group: "com.x", Name: "optional-dep", Version: "1.0", Optional: true},
		},
	}

	names := func(deps []module.Dependency) map[string]bool {
		out := make(map[string]bool, len(deps))
		for _, d := range deps {
			out[d.Name] = true
		}
		return out
	}

	api, err := selectVariant(md, UsageAPI)
	if err != nil {
		t.Fatalf("selectVariant(api) error = %v", err)
	}
	got := names(api.Dependencies)
	if !got["compile-dep"] || !got["default-dep"] {
		t.Errorf("api deps = %v, want compile-scoped dependencies", got)
	}
	if got["runtime-dep"] || got["test-dep"] || got["provided-dep"] || got["optional-dep"] {
		t.Errorf("api deps = %v, must not include runtime/test/provided/optional", got)
	}

	runtime, err := selectVariant(md, UsageRuntime)
	if err != nil {
		t.Fatalf("selectVariant(runtime) error = %v", err)
	}
	got = names(runtime.Dependencies)
	if !got["compile-dep"] || !got["default-dep"] || !got["runtime-dep"] {
		t.Errorf("runtime deps = %v, want compile and runtime scopes", got)
	}
	if got["test-dep"] || got["provided-dep"] || got["optional-dep"] {
		t.Errorf("runtime deps = %v, must not include test/provided/optional", got)
	}

	if len(runtime.Artifacts) != 1 || runtime.Artifacts[0].Name != "lib-1.0.jar" {
		t.Errorf("runtime artifacts = %v, want the module's artifact", runtime.Artifacts)
	}

	_, err = selectVariant(md, "documentation")
	if !errors.Is(err, ErrNoMatchingVariant) {
		t.Errorf("selectVariant(documentation) error = %v, want no matching variant", err)
	}
}
