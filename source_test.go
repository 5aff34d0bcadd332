package gradle

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/snapsam/gradle/module"
)

func newTestSource(t *testing.T, repos []Repository, opts ...Option) *MetadataSource {
	t.Helper()
	cfg, err := newConfig(append(DefaultOptions(), opts...)...)
	if err != nil {
		t.Fatal(err)
	}
	source, err := newMetadataSource(repos, cfg)
	if err != nil {
		t.Fatal(err)
	}
	return source
}

func TestSourcePrefersRicherFormat(t *testing.T) {
	gmmJSON := `{
		"formatVersion": "1.1",
		"component": {"group": "com.x", "module": "lib", "version": "1.0"},
		"variants": [
			{"name": "runtimeElements", "attributes": {"org.gradle.usage": "java-runtime"}}
		]
	}`

	repo := newMemRepo("central", module.FormatModule, module.FormatPOM)
	repo.add(module.FormatModule, "com.x:lib:1.0", gmmJSON)
	repo.add(module.FormatPOM, "com.x:lib:1.0", pomXML("com.x", "lib", "1.0"))

	source := newTestSource(t, []Repository{repo})
	md, err := source.Lookup(context.Background(), module.Coordinate{Group: "com.x", Name: "lib", Version: "1.0"})
	if err != nil {
		t.Fatalf("Lookup error = %v", err)
	}
	if md.Source != module.FormatModule {
		t.Errorf("source format = %s, want module metadata preferred over POM", md.Source)
	}

	// With module metadata disabled the POM wins.
	source = newTestSource(t, []Repository{repo}, WithModuleMetadata(false))
	md, err = source.Lookup(context.Background(), module.Coordinate{Group: "com.x", Name: "lib", Version: "1.0"})
	if err != nil {
		t.Fatalf("Lookup error = %v", err)
	}
	if md.Source != module.FormatPOM {
		t.Errorf("source format = %s, want POM when module metadata is disabled", md.Source)
	}
}

func TestSourcePinsServingRepository(t *testing.T) {
	first := newMemRepo("first")
	second := newMemRepo("second")
	second.add(module.FormatPOM, "com.x:lib:1.0", pomXML("com.x", "lib", "1.0"))
	second.add(module.FormatPOM, "com.x:lib:2.0", pomXML("com.x", "lib", "2.0"))
	// The first repository gains the module later; the pin must keep
	// resolution on the repository that served version 1.0.
	source := newTestSource(t, []Repository{first, second})

	ctx := context.Background()
	if _, err := source.Lookup(ctx, module.Coordinate{Group: "com.x", Name: "lib", Version: "1.0"}); err != nil {
		t.Fatalf("Lookup error = %v", err)
	}

	first.add(module.FormatPOM, "com.x:lib:2.0", pomXML("com.x", "lib", "2.0"))
	if _, err := source.Lookup(ctx, module.Coordinate{Group: "com.x", Name: "lib", Version: "2.0"}); err != nil {
		t.Fatalf("Lookup error = %v", err)
	}
	if n := first.fetches("com.x:lib:2.0"); n != 0 {
		t.Errorf("pinned module consulted the first repository %d times, want 0", n)
	}
	if n := second.fetches("com.x:lib:2.0"); n != 1 {
		t.Errorf("second repository fetched %d times, want 1", n)
	}
}

func TestSourceNotFound(t *testing.T) {
	repo := newMemRepo("central")
	source := newTestSource(t, []Repository{repo})

	_, err := source.Lookup(context.Background(), module.Coordinate{Group: "com.x", Name: "nope", Version: "1.0"})
	if !errors.Is(err, ErrMetadataNotFound) {
		t.Fatalf("Lookup error = %v, want metadata not found", err)
	}
	var nf *MetadataNotFoundError
	if !errors.As(err, &nf) {
		t.Fatal("want typed MetadataNotFoundError")
	}
	if len(nf.Repositories) != 1 || nf.Repositories[0] != "central" {
		t.Errorf("repositories = %v, want [central]", nf.Repositories)
	}
}

func TestSourceRejectsMismatchedCoordinates(t *testing.T) {
	repo := newMemRepo("central")
	repo.add(module.FormatPOM, "com.x:lib:1.0", pomXML("com.other", "lib", "1.0"))

	source := newTestSource(t, []Repository{repo})
	_, err := source.Lookup(context.Background(), module.Coordinate{Group: "com.x", Name: "lib", Version: "1.0"})
	if err == nil || !strings.Contains(err.Error(), "mismatched") {
		t.Fatalf("Lookup error = %v, want coordinate mismatch", err)
	}
}

func TestSourcePrefetchWarmsCache(t *testing.T) {
	repo := newMemRepo("central")
	repo.add(module.FormatPOM, "com.x:a:1.0", pomXML("com.x", "a", "1.0"))
	repo.add(module.FormatPOM, "com.x:b:1.0", pomXML("com.x", "b", "1.0"))

	source := newTestSource(t, []Repository{repo})
	source.Prefetch(context.Background(), []module.Dependency{
		{Group: "com.x", Name: "a", Version: "1.0"},
		{Group: "com.x", Name: "b", Version: "1.0"},
		{Group: "com.x", Name: "dynamic", Version: ""}, // skipped: no concrete version
	})

	if source.FetchCount() != 2 {
		t.Fatalf("FetchCount after prefetch = %d, want 2", source.FetchCount())
	}
	if _, err := source.Lookup(context.Background(), module.Coordinate{Group: "com.x", Name: "a", Version: "1.0"}); err != nil {
		t.Fatal(err)
	}
	if source.FetchCount() != 2 {
		t.Errorf("FetchCount after cached lookup = %d, want 2", source.FetchCount())
	}
}

func TestSourceVersionsMemoized(t *testing.T) {
	repo := newMemRepo("central")
	repo.list("com.x", "lib", "1.0", "2.0")

	source := newTestSource(t, []Repository{repo})
	for i := 0; i < 2; i++ {
		vs, err := source.Versions(context.Background(), module.ID{Group: "com.x", Name: "lib"})
		if err != nil {
			t.Fatal(err)
		}
		if len(vs) != 2 {
			t.Fatalf("versions = %v", vs)
		}
	}

	_, err := source.Versions(context.Background(), module.ID{Group: "com.x", Name: "unknown"})
	if !errors.Is(err, ErrMetadataNotFound) {
		t.Errorf("Versions(unknown) error = %v, want metadata not found", err)
	}
}

func TestSourceRequiresRepositories(t *testing.T) {
	cfg, err := newConfig(DefaultOptions()...)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := newMetadataSource(nil, cfg); err == nil {
		t.Fatal("want error for empty repository list")
	}
}
