package resolver

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/vk/jarsmith/internal/config"
	"github.com/vk/jarsmith/internal/coordinate"
	"github.com/vk/jarsmith/internal/ctxlog"
	"github.com/vk/jarsmith/internal/pom"
	"github.com/vk/jarsmith/internal/repository"
	"golang.org/x/sync/errgroup"
)

// maxPasses bounds the selection fixpoint. Each pass can only raise
// versions, so real graphs settle in a handful of passes.
const maxPasses = 64

// Resolver resolves declarations against a repository chain. Descriptors,
// version listings and archive paths are memoized, so one Resolver is
// meant to serve a single build.
type Resolver struct {
	repos   repository.Chain
	workers int

	mu        sync.Mutex
	raw       map[coordinate.Coordinate]fetchedPOM
	effective map[coordinate.Coordinate]fetchedEffective
	listings  map[coordinate.Module][]string
	archives  map[coordinate.Coordinate]string
}

type fetchedPOM struct {
	project *pom.Project
	repo    string
}

type fetchedEffective struct {
	pom  *pom.Effective
	repo string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithWorkers bounds the number of parallel fetches.
func WithWorkers(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.workers = n
		}
	}
}

// New creates a resolver over repos.
func New(repos repository.Chain, opts ...Option) *Resolver {
	r := &Resolver{
		repos:     repos,
		workers:   4,
		raw:       make(map[coordinate.Coordinate]fetchedPOM),
		effective: make(map[coordinate.Coordinate]fetchedEffective),
		listings:  make(map[coordinate.Module][]string),
		archives:  make(map[coordinate.Coordinate]string),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve resolves every configuration of the model.
func (r *Resolver) Resolve(ctx context.Context, model *config.Model) (*Result, error) {
	logger := ctxlog.FromContext(ctx)

	managed, err := r.managedVersions(ctx, model.Management)
	if err != nil {
		return nil, err
	}
	logger.Debug("Collected managed versions.", "count", len(managed), "enforce", model.Management.Enforce)

	res := newResult()
	for _, cfg := range Configurations {
		roots := cfg.roots(model.Declarations)
		artifacts, err := r.resolveConfiguration(ctx, cfg, roots, managed, model.Management.Enforce)
		if err != nil {
			return nil, err
		}
		res.set(cfg.Name, artifacts)
		logger.Debug("Resolved configuration.", "configuration", cfg.Name, "declarations", len(roots), "artifacts", len(artifacts))
	}
	return res, nil
}

// Artifact fetches a single archive without its dependencies.
func (r *Resolver) Artifact(ctx context.Context, c coordinate.Coordinate) (Artifact, error) {
	if !c.HasVersion() {
		return Artifact{}, &ResolutionError{Coordinate: c, Err: ErrNoVersion}
	}
	version, err := r.concrete(ctx, c.Module(), c.Version)
	if err != nil {
		return Artifact{}, &ResolutionError{Coordinate: c, Err: err}
	}
	requested := c.Version
	c = c.WithVersion(version)
	path, err := r.archive(ctx, c, "")
	if err != nil {
		return Artifact{}, &ResolutionError{Coordinate: c, Err: err}
	}
	return Artifact{Coordinate: c, Requested: requested, Path: path}, nil
}

// LoadPOM implements pom.Loader.
func (r *Resolver) LoadPOM(ctx context.Context, c coordinate.Coordinate) (*pom.Project, error) {
	f, err := r.loadPOM(ctx, c)
	if err != nil {
		return nil, err
	}
	return f.project, nil
}

func (r *Resolver) loadPOM(ctx context.Context, c coordinate.Coordinate) (fetchedPOM, error) {
	r.mu.Lock()
	f, ok := r.raw[c]
	r.mu.Unlock()
	if ok {
		return f, nil
	}

	data, repo, err := r.repos.FetchPOM(ctx, c)
	if err != nil {
		return fetchedPOM{}, err
	}
	project, err := pom.Parse(bytes.NewReader(data))
	if err != nil {
		return fetchedPOM{}, fmt.Errorf("%s: %w", c, err)
	}
	f = fetchedPOM{project: project, repo: repo}

	r.mu.Lock()
	r.raw[c] = f
	r.mu.Unlock()
	return f, nil
}

func (r *Resolver) loadEffective(ctx context.Context, c coordinate.Coordinate) (fetchedEffective, error) {
	r.mu.Lock()
	f, ok := r.effective[c]
	r.mu.Unlock()
	if ok {
		return f, nil
	}

	raw, err := r.loadPOM(ctx, c)
	if err != nil {
		return fetchedEffective{}, err
	}
	eff, err := pom.Build(ctx, raw.project, r)
	if err != nil {
		return fetchedEffective{}, err
	}
	f = fetchedEffective{pom: eff, repo: raw.repo}

	r.mu.Lock()
	r.effective[c] = f
	r.mu.Unlock()
	return f, nil
}

// concrete turns a requested version into a concrete one, consulting the
// version listings for ranges and dynamic versions.
func (r *Resolver) concrete(ctx context.Context, m coordinate.Module, requested string) (string, error) {
	sel, err := coordinate.ParseSelector(requested)
	if err != nil {
		return "", err
	}
	if !sel.Dynamic() {
		return requested, nil
	}

	r.mu.Lock()
	versions, ok := r.listings[m]
	r.mu.Unlock()
	if !ok {
		versions, err = r.repos.ListVersions(ctx, m)
		if err != nil {
			return "", err
		}
		r.mu.Lock()
		r.listings[m] = versions
		r.mu.Unlock()
	}

	v, ok := coordinate.Highest(sel, versions)
	if !ok {
		return "", fmt.Errorf("no published version of %s matches %s: %w", m, requested, repository.ErrNotFound)
	}
	ctxlog.FromContext(ctx).Debug("Resolved dynamic version.", "module", m.String(), "requested", requested, "selected", v)
	return v, nil
}

func (r *Resolver) archive(ctx context.Context, c coordinate.Coordinate, preferred string) (string, error) {
	r.mu.Lock()
	path, ok := r.archives[c]
	r.mu.Unlock()
	if ok {
		return path, nil
	}
	path, err := r.repos.FetchArchive(ctx, c, preferred)
	if err != nil {
		return "", err
	}
	r.mu.Lock()
	r.archives[c] = path
	r.mu.Unlock()
	return path, nil
}

// managedVersions merges the build file's managed versions with those of
// imported platform BOMs. Explicit entries win, then imports in order.
func (r *Resolver) managedVersions(ctx context.Context, mgmt config.Management) (map[coordinate.Module]string, error) {
	out := make(map[coordinate.Module]string, len(mgmt.Managed))
	for m, v := range mgmt.Managed {
		out[m] = v
	}
	for _, imp := range mgmt.Imports {
		f, err := r.loadEffective(ctx, imp)
		if err != nil {
			return nil, &ResolutionError{Coordinate: imp, Err: err}
		}
		for _, m := range f.pom.ManagedKeys {
			if _, exists := out[m]; exists {
				continue
			}
			if v, ok := f.pom.ManagedVersion(m); ok {
				out[m] = v
			}
		}
		ctxlog.FromContext(ctx).Debug("Imported platform.", "bom", imp.String(), "managed", len(f.pom.ManagedKeys))
	}
	return out, nil
}

// visit is one module reached during a breadth-first walk.
type visit struct {
	coord      coordinate.Coordinate
	requested  string
	path       []coordinate.Coordinate
	exclusions []config.Exclusion
	eff        *pom.Effective
	repo       string
}

// walk is the outcome of one breadth-first pass.
type walk struct {
	visits    []*visit
	requested map[coordinate.Module][]string
}

func (r *Resolver) resolveConfiguration(
	ctx context.Context,
	cfg Configuration,
	roots []config.Declaration,
	managed map[coordinate.Module]string,
	enforce bool,
) ([]Artifact, error) {
	if len(roots) == 0 {
		return nil, nil
	}
	logger := ctxlog.FromContext(ctx).With("configuration", cfg.Name)

	forced := make(map[coordinate.Module]string)
	for _, d := range roots {
		v := d.Coordinate.Version
		if v == "" || coordinate.IsDynamic(v) {
			continue
		}
		m := d.Coordinate.Module()
		if cur, ok := forced[m]; !ok || coordinate.CompareVersions(v, cur) > 0 {
			forced[m] = v
		}
	}
	if enforce {
		for m, v := range managed {
			if _, ok := forced[m]; !ok {
				forced[m] = v
			}
		}
	}

	selected := make(map[coordinate.Module]string)
	for pass := 1; ; pass++ {
		if pass > maxPasses {
			return nil, fmt.Errorf("%s: version selection did not settle after %d passes", cfg.Name, maxPasses)
		}
		w, err := r.walk(ctx, cfg, roots, managed, forced, selected)
		if err != nil {
			return nil, err
		}

		changed := false
		for m, requests := range w.requested {
			v := highest(requests)
			if f, ok := forced[m]; ok {
				v = f
			} else if cur, ok := selected[m]; ok && coordinate.CompareVersions(cur, v) >= 0 {
				v = cur
			}
			if selected[m] != v {
				selected[m] = v
				changed = true
			}
		}
		if !changed {
			logger.Debug("Version selection settled.", "passes", pass, "modules", len(w.visits))
			return r.collect(ctx, w.visits)
		}
	}
}

// walk performs one breadth-first pass from the roots using the current
// selection. Modules not selected yet take the version of the first edge
// that reaches them.
func (r *Resolver) walk(
	ctx context.Context,
	cfg Configuration,
	roots []config.Declaration,
	managed, forced, selected map[coordinate.Module]string,
) (*walk, error) {
	w := &walk{requested: make(map[coordinate.Module][]string)}
	seen := make(map[coordinate.Module]bool)

	pick := func(m coordinate.Module, requested string) string {
		if v, ok := forced[m]; ok {
			return v
		}
		if v, ok := selected[m]; ok {
			return v
		}
		return requested
	}

	var level []*visit
	for _, d := range roots {
		m := d.Coordinate.Module()
		req := d.Coordinate.Version
		if req == "" {
			v, ok := managed[m]
			if !ok {
				return nil, &ResolutionError{Coordinate: d.Coordinate, Err: ErrNoVersion}
			}
			req = v
		}
		concrete, err := r.concrete(ctx, m, req)
		if err != nil {
			return nil, &ResolutionError{Coordinate: d.Coordinate, Err: err}
		}
		w.requested[m] = append(w.requested[m], concrete)
		if seen[m] {
			continue
		}
		seen[m] = true
		c := d.Coordinate.WithVersion(pick(m, concrete))
		level = append(level, &visit{
			coord:      c,
			requested:  req,
			path:       []coordinate.Coordinate{c},
			exclusions: d.Exclusions,
		})
	}

	for len(level) > 0 {
		if err := r.loadLevel(ctx, level); err != nil {
			return nil, err
		}

		var next []*visit
		for _, v := range level {
			w.visits = append(w.visits, v)
			for _, d := range v.eff.Dependencies {
				if !cfg.follows(d) {
					continue
				}
				m := d.Module()
				if excluded(v.exclusions, m) {
					continue
				}
				req := d.Version
				if req == "" {
					mv, ok := managed[m]
					if !ok {
						return nil, &ResolutionError{Coordinate: d.Coordinate(), Path: v.path, Err: ErrNoVersion}
					}
					req = mv
				}
				concrete, err := r.concrete(ctx, m, req)
				if err != nil {
					return nil, &ResolutionError{Coordinate: d.Coordinate(), Path: v.path, Err: err}
				}
				w.requested[m] = append(w.requested[m], concrete)
				if seen[m] {
					continue
				}
				seen[m] = true

				c := d.Coordinate().WithVersion(pick(m, concrete))
				path := make([]coordinate.Coordinate, len(v.path), len(v.path)+1)
				copy(path, v.path)
				next = append(next, &visit{
					coord:      c,
					requested:  req,
					path:       append(path, c),
					exclusions: mergeExclusions(v.exclusions, d.Exclusions),
				})
			}
		}
		level = next
	}
	return w, nil
}

// loadLevel fetches the effective descriptors of one level in parallel.
func (r *Resolver) loadLevel(ctx context.Context, level []*visit) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for _, v := range level {
		g.Go(func() error {
			f, err := r.loadEffective(gctx, v.coord)
			if err != nil {
				return &ResolutionError{Coordinate: v.coord, Path: v.path[:len(v.path)-1], Err: err}
			}
			v.eff = f.pom
			v.repo = f.repo
			return nil
		})
	}
	return g.Wait()
}

// collect fetches the archives of the final walk, in parallel, and returns
// them in walk order.
func (r *Resolver) collect(ctx context.Context, visits []*visit) ([]Artifact, error) {
	artifacts := make([]Artifact, len(visits))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, v := range visits {
		artifacts[i] = Artifact{
			Coordinate: v.coord,
			Requested:  v.requested,
			Repository: v.repo,
		}
		if !v.eff.HasArchive() {
			continue
		}
		g.Go(func() error {
			path, err := r.archive(gctx, v.coord, v.repo)
			if err != nil {
				return &ResolutionError{Coordinate: v.coord, Path: v.path[:len(v.path)-1], Err: err}
			}
			artifacts[i].Path = path
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return artifacts, nil
}

func excluded(exclusions []config.Exclusion, m coordinate.Module) bool {
	for _, e := range exclusions {
		if e.Matches(m) {
			return true
		}
	}
	return false
}

func mergeExclusions(inherited []config.Exclusion, own []pom.Exclusion) []config.Exclusion {
	if len(own) == 0 {
		return inherited
	}
	out := make([]config.Exclusion, 0, len(inherited)+len(own))
	out = append(out, inherited...)
	for _, e := range own {
		out = append(out, config.Exclusion{Group: e.GroupID, Artifact: e.ArtifactID})
	}
	return out
}

func highest(versions []string) string {
	best := versions[0]
	for _, v := range versions[1:] {
		if coordinate.CompareVersions(v, best) > 0 {
			best = v
		}
	}
	return best
}
