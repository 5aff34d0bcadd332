package gradle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/snapsam/gradle/gmm"
	"github.com/snapsam/gradle/ivy"
	"github.com/snapsam/gradle/module"
	"github.com/snapsam/gradle/pom"
)

// Repository is the capability contract of the external repository access
// layer. Implementations report which metadata formats they can serve and
// hand back raw descriptor bytes; parsing, format preference, caching and
// fallback are this package's concern.
//
// Descriptor and Versions return an error wrapping ErrMetadataNotFound when
// the requested data does not exist at the expected location. Transient
// errors are the implementation's concern (retry policy is external); any
// persistent failure is treated as not-found here.
type Repository interface {
	// Name identifies the repository in diagnostics.
	Name() string

	// Formats lists the metadata formats this repository can serve.
	Formats() []module.Format

	// Descriptor fetches the raw descriptor of the given format.
	Descriptor(ctx context.Context, coord module.Coordinate, format module.Format) ([]byte, error)

	// Versions lists the available versions of a module, unordered.
	Versions(ctx context.Context, group, name string) ([]string, error)

	// HasArtifact reports whether the module's primary artifact exists,
	// for the artifact-only fallback.
	HasArtifact(ctx context.Context, coord module.Coordinate) (bool, error)
}

// formatPreference is the descriptor format order the adapter tries, the
// richest first. The native module format carries explicit variants and
// constraints, so it wins when a repository serves it.
var formatPreference = []module.Format{module.FormatModule, module.FormatPOM, module.FormatIvy}

// MetadataSource normalizes repository descriptors into the common metadata
// model. It dispatches to the format parsers, applies the artifact-only
// fallback, memoizes results per coordinate and coalesces concurrent
// fetches into one.
//
// Repositories are consulted in order. The first repository that serves a
// module is pinned for all further versions of that module, keeping
// resolution deterministic when repositories shadow each other.
type MetadataSource struct {
	repos []Repository
	cfg   *config
	log   *slog.Logger
	cache *metadataCache

	mu     sync.Mutex
	pinned map[module.ID]int
}

func newMetadataSource(repos []Repository, cfg *config) (*MetadataSource, error) {
	if len(repos) == 0 {
		return nil, errors.New("no repositories configured")
	}
	cache, err := newMetadataCache(cfg.cacheSize)
	if err != nil {
		return nil, err
	}
	return &MetadataSource{
		repos:  repos,
		cfg:    cfg,
		log:    cfg.log(),
		cache:  cache,
		pinned: make(map[module.ID]int),
	}, nil
}

// Lookup fetches and parses metadata for a concrete coordinate. Concurrent
// lookups of the same coordinate share a single fetch; results (including
// not-found) are cached for the lifetime of the source.
//
// Malformed descriptors fail immediately with the parse error. A module
// absent from every repository fails with a MetadataNotFoundError unless
// the artifact-only fallback applies.
func (s *MetadataSource) Lookup(ctx context.Context, coord module.Coordinate) (*module.Metadata, error) {
	return s.cache.lookup(coord.String(), func() (*module.Metadata, error) {
		return s.fetch(ctx, coord)
	})
}

// Versions lists the available versions of a module, preferring the richest
// capable repository. Listings are memoized per module.
func (s *MetadataSource) Versions(ctx context.Context, id module.ID) ([]string, error) {
	return s.cache.listVersions(id.String(), func() ([]string, error) {
		for _, repo := range s.repoOrder(id) {
			versions, err := repo.Versions(ctx, id.Group, id.Name)
			if err != nil {
				if !errors.Is(err, ErrMetadataNotFound) {
					s.log.Debug("version listing failed",
						"module", id.String(), "repository", repo.Name(), "error", err)
				}
				continue
			}
			if len(versions) > 0 {
				return versions, nil
			}
		}
		return nil, &MetadataNotFoundError{
			Coordinate:   module.Coordinate{Group: id.Group, Name: id.Name},
			Repositories: s.repoNames(),
		}
	})
}

// Prefetch warms the cache for a set of concrete dependency declarations,
// fetching concurrently. Failures are deliberately ignored here; they
// resurface with full context when the resolver looks the modules up.
func (s *MetadataSource) Prefetch(ctx context.Context, deps []module.Dependency) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.maxConcurrency)
	for _, dep := range deps {
		coord := module.Coordinate{Group: dep.Group, Name: dep.Name, Version: dep.Version}
		if coord.Version == "" {
			continue
		}
		g.Go(func() error {
			_, _ = s.Lookup(ctx, coord)
			return nil
		})
	}
	_ = g.Wait()
}

// FetchCount returns the number of descriptor fetches actually performed.
// Cached and coalesced lookups do not count.
func (s *MetadataSource) FetchCount() int64 {
	return s.cache.fetchCount()
}

// fetch tries the pinned (or every) repository with the richest format
// first, then the artifact-only fallback.
func (s *MetadataSource) fetch(ctx context.Context, coord module.Coordinate) (*module.Metadata, error) {
	for _, repo := range s.repoOrder(coord.ID()) {
		md, err := s.fetchFrom(ctx, repo, coord)
		if err != nil {
			if errors.Is(err, ErrMetadataNotFound) {
				continue
			}
			// Malformed metadata is fatal for this coordinate: no
			// meaningful resolution of the bucket is possible.
			return nil, err
		}
		s.pin(coord.ID(), repo)
		s.log.Debug("metadata fetched",
			"coordinate", coord.String(), "repository", repo.Name(), "format", string(md.Source))
		return md, nil
	}
	return nil, &MetadataNotFoundError{Coordinate: coord, Repositories: s.repoNames()}
}

func (s *MetadataSource) fetchFrom(ctx context.Context, repo Repository, coord module.Coordinate) (*module.Metadata, error) {
	served := make(map[module.Format]bool)
	for _, f := range repo.Formats() {
		served[f] = true
	}

	for _, format := range formatPreference {
		if !served[format] {
			continue
		}
		if format == module.FormatModule && !s.cfg.moduleMetadata {
			continue
		}
		data, err := repo.Descriptor(ctx, coord, format)
		if err != nil {
			if errors.Is(err, ErrMetadataNotFound) {
				continue
			}
			s.log.Debug("descriptor fetch failed",
				"coordinate", coord.String(), "repository", repo.Name(),
				"format", string(format), "error", err)
			continue
		}
		return s.parse(coord, format, data)
	}

	if s.cfg.artifactOnly && served[module.FormatArtifact] {
		ok, err := repo.HasArtifact(ctx, coord)
		if err == nil && ok {
			return artifactOnlyMetadata(coord), nil
		}
	}

	return nil, &MetadataNotFoundError{Coordinate: coord, Repositories: []string{repo.Name()}}
}

func (s *MetadataSource) parse(coord module.Coordinate, format module.Format, data []byte) (*module.Metadata, error) {
	var md *module.Metadata
	var err error

	switch format {
	case module.FormatModule:
		md, err = gmm.Parse(data)
	case module.FormatPOM:
		md, err = pom.Parse(data)
		if err == nil {
			md.Artifacts = []module.Artifact{defaultArtifact(md.Coordinate)}
		}
	case module.FormatIvy:
		md, err = ivy.Parse(data)
		if err == nil {
			if arts := ivy.Artifacts(md, data); len(arts) > 0 {
				md.Artifacts = arts
			} else {
				md.Artifacts = []module.Artifact{defaultArtifact(md.Coordinate)}
			}
		}
	default:
		err = fmt.Errorf("unsupported descriptor format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("descriptor for %s: %w", coord, err)
	}
	if md.Coordinate != coord {
		return nil, fmt.Errorf("descriptor for %s declares mismatched coordinates %s", coord, md.Coordinate)
	}
	return md, nil
}

// repoOrder returns the repositories to consult: only the pinned one when a
// repository already served this module, otherwise all in declared order.
func (s *MetadataSource) repoOrder(id module.ID) []Repository {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx, ok := s.pinned[id]; ok {
		return []Repository{s.repos[idx]}
	}
	return s.repos
}

func (s *MetadataSource) pin(id module.ID, repo Repository) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pinned[id]; ok {
		return
	}
	for i, r := range s.repos {
		if r == repo {
			s.pinned[id] = i
			return
		}
	}
}

func (s *MetadataSource) repoNames() []string {
	names := make([]string, len(s.repos))
	for i, r := range s.repos {
		names[i] = r.Name()
	}
	return names
}

// artifactOnlyMetadata synthesizes zero-dependency metadata for a module
// that publishes only an artifact.
func artifactOnlyMetadata(coord module.Coordinate) *module.Metadata {
	return &module.Metadata{
		Coordinate: coord,
		Source:     module.FormatArtifact,
		Artifacts:  []module.Artifact{defaultArtifact(coord)},
	}
}

func defaultArtifact(coord module.Coordinate) module.Artifact {
	return module.Artifact{
		Name: coord.Name + "-" + coord.Version + ".jar",
		Type: "jar",
	}
}
