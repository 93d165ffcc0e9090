package resolver

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/jarsmith/internal/config"
	"github.com/vk/jarsmith/internal/coordinate"
	"github.com/vk/jarsmith/internal/repository"
	"github.com/vk/jarsmith/internal/testutil/mavenrepo"
)

func newResolver(repos ...*mavenrepo.Repo) *Resolver {
	var chain repository.Chain
	for i, r := range repos {
		chain = append(chain, repository.NewLocal([]string{"first", "second", "third"}[i], r.Root))
	}
	return New(chain, WithWorkers(2))
}

func decl(scope config.Scope, coord string, exclusions ...config.Exclusion) config.Declaration {
	return config.Declaration{Scope: scope, Coordinate: coordinate.MustParse(coord), Exclusions: exclusions}
}

func model(decls ...config.Declaration) *config.Model {
	return &config.Model{
		Declarations: decls,
		Management:   config.Management{Enforce: true, Managed: map[coordinate.Module]string{}},
	}
}

func coords(artifacts []Artifact) []string {
	out := make([]string, len(artifacts))
	for i, a := range artifacts {
		out[i] = a.Coordinate.String()
	}
	return out
}

func TestResolve_HighestVersionWinsInBreadthFirstOrder(t *testing.T) {
	repo := mavenrepo.New(t).
		Jar("org.example:b:1.0", nil).
		Jar("org.example:c:1.0", nil).
		Jar("org.example:c:2.0", nil, "org.example:e:1.0").
		Jar("org.example:e:1.0", nil).
		Jar("org.example:a:1.0", nil, "org.example:b:1.0", "org.example:c:1.0").
		Jar("org.example:d:1.0", nil, "org.example:c:2.0")

	res, err := newResolver(repo).Resolve(context.Background(), model(
		decl(config.ScopeImplementation, "org.example:a:1.0"),
		decl(config.ScopeImplementation, "org.example:d:1.0"),
	))
	require.NoError(t, err)

	want := []string{
		"org.example:a:1.0",
		"org.example:d:1.0",
		"org.example:b:1.0",
		"org.example:c:2.0",
		"org.example:e:1.0",
	}
	if diff := cmp.Diff(want, coords(res.Classpath(CompileClasspath))); diff != "" {
		t.Errorf("compile classpath mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, coords(res.Classpath(CompileClasspath)), coords(res.Classpath(RuntimeClasspath)))

	c := res.Classpath(CompileClasspath)[3]
	assert.Equal(t, "1.0", c.Requested)
	assert.Equal(t, repo.ArchivePath("org.example:c:2.0"), c.Path)
	assert.Equal(t, "first", c.Repository)
}

func TestResolve_DirectVersionOverridesHighest(t *testing.T) {
	repo := mavenrepo.New(t).
		Jar("org.example:c:1.5", nil).
		Jar("org.example:c:2.0", nil).
		Jar("org.example:a:1.0", nil, "org.example:c:2.0")

	res, err := newResolver(repo).Resolve(context.Background(), model(
		decl(config.ScopeImplementation, "org.example:a:1.0"),
		decl(config.ScopeImplementation, "org.example:c:1.5"),
	))
	require.NoError(t, err)
	assert.Equal(t, []string{"org.example:a:1.0", "org.example:c:1.5"}, coords(res.Classpath(CompileClasspath)))
}

func TestResolve_ManagedVersions(t *testing.T) {
	repo := mavenrepo.New(t).
		Jar("org.example:c:1.2", nil).
		Jar("org.example:c:2.0", nil).
		Jar("org.example:a:1.0", nil, "org.example:c:2.0")

	t.Run("enforced", func(t *testing.T) {
		m := model(decl(config.ScopeImplementation, "org.example:a:1.0"))
		m.Management.Managed[coordinate.Module{Group: "org.example", Artifact: "c"}] = "1.2"

		res, err := newResolver(repo).Resolve(context.Background(), m)
		require.NoError(t, err)
		assert.Equal(t, []string{"org.example:a:1.0", "org.example:c:1.2"}, coords(res.Classpath(CompileClasspath)))
	})

	t.Run("not enforced", func(t *testing.T) {
		m := model(decl(config.ScopeImplementation, "org.example:a:1.0"))
		m.Management.Enforce = false
		m.Management.Managed[coordinate.Module{Group: "org.example", Artifact: "c"}] = "1.2"

		res, err := newResolver(repo).Resolve(context.Background(), m)
		require.NoError(t, err)
		assert.Equal(t, []string{"org.example:a:1.0", "org.example:c:2.0"}, coords(res.Classpath(CompileClasspath)))
	})
}

func TestResolve_VersionlessFromImportedBOM(t *testing.T) {
	repo := mavenrepo.New(t).
		Jar("org.example:x:3.0", nil).
		Add(mavenrepo.Artifact{
			Coordinate: "org.example:platform:1.0",
			Packaging:  "pom",
			Managed:    []mavenrepo.Dep{{Coordinate: "org.example:x:3.0"}},
		})

	m := model(decl(config.ScopeImplementation, "org.example:x"))
	m.Management.Imports = []coordinate.Coordinate{coordinate.MustParse("org.example:platform:1.0")}

	res, err := newResolver(repo).Resolve(context.Background(), m)
	require.NoError(t, err)
	assert.Equal(t, []string{"org.example:x:3.0"}, coords(res.Classpath(CompileClasspath)))
}

func TestResolve_VersionlessWithoutManagementFails(t *testing.T) {
	repo := mavenrepo.New(t).Jar("org.example:x:3.0", nil)

	_, err := newResolver(repo).Resolve(context.Background(), model(decl(config.ScopeImplementation, "org.example:x")))
	require.Error(t, err)

	var resErr *ResolutionError
	require.True(t, errors.As(err, &resErr))
	assert.Equal(t, "org.example:x", resErr.Coordinate.String())
	assert.True(t, errors.Is(err, ErrNoVersion))
}

func TestResolve_MissingTransitiveNamesPath(t *testing.T) {
	repo := mavenrepo.New(t).
		Jar("org.example:b:1.0", nil, "org.example:missing:9.9").
		Jar("org.example:a:1.0", nil, "org.example:b:1.0")

	_, err := newResolver(repo).Resolve(context.Background(), model(decl(config.ScopeImplementation, "org.example:a:1.0")))
	require.Error(t, err)

	var resErr *ResolutionError
	require.True(t, errors.As(err, &resErr))
	assert.Equal(t, "org.example:missing:9.9", resErr.Coordinate.String())
	assert.Equal(t, []coordinate.Coordinate{
		coordinate.MustParse("org.example:a:1.0"),
		coordinate.MustParse("org.example:b:1.0"),
	}, resErr.Path)
	assert.True(t, errors.Is(err, repository.ErrNotFound))
	assert.Contains(t, err.Error(), "required by org.example:a:1.0 -> org.example:b:1.0")
}

func TestResolve_Exclusions(t *testing.T) {
	repo := mavenrepo.New(t).
		Jar("org.example:c:1.0", nil).
		Jar("org.example:d:1.0", nil).
		Jar("org.example:b:1.0", nil, "org.example:c:1.0", "org.example:d:1.0").
		Add(mavenrepo.Artifact{
			Coordinate: "org.example:a:1.0",
			Dependencies: []mavenrepo.Dep{
				{Coordinate: "org.example:b:1.0", Exclusions: []string{"org.example:d"}},
			},
		})

	res, err := newResolver(repo).Resolve(context.Background(), model(
		decl(config.ScopeImplementation, "org.example:a:1.0", config.Exclusion{Group: "org.example", Artifact: "c"}),
	))
	require.NoError(t, err)
	assert.Equal(t, []string{"org.example:a:1.0", "org.example:b:1.0"}, coords(res.Classpath(CompileClasspath)))
}

func TestResolve_ScopesPerConfiguration(t *testing.T) {
	repo := mavenrepo.New(t).
		Jar("org.example:rt:1.0", nil).
		Jar("org.example:tst:1.0", nil).
		Jar("org.example:opt:1.0", nil).
		Jar("org.example:prov:1.0", nil).
		Jar("org.example:lombok:1.0", nil).
		Jar("org.example:junit:1.0", nil).
		Jar("org.example:devtools:1.0", nil).
		Add(mavenrepo.Artifact{
			Coordinate: "org.example:a:1.0",
			Dependencies: []mavenrepo.Dep{
				{Coordinate: "org.example:rt:1.0", Scope: "runtime"},
				{Coordinate: "org.example:tst:1.0", Scope: "test"},
				{Coordinate: "org.example:prov:1.0", Scope: "provided"},
				{Coordinate: "org.example:opt:1.0", Optional: true},
			},
		})

	res, err := newResolver(repo).Resolve(context.Background(), model(
		decl(config.ScopeImplementation, "org.example:a:1.0"),
		decl(config.ScopeCompileOnly, "org.example:lombok:1.0"),
		decl(config.ScopeAnnotationProcessor, "org.example:lombok:1.0"),
		decl(config.ScopeTestImplementation, "org.example:junit:1.0"),
		decl(config.ScopeDevelopmentOnly, "org.example:devtools:1.0"),
	))
	require.NoError(t, err)

	assert.Equal(t, []string{"org.example:a:1.0", "org.example:lombok:1.0"}, coords(res.Classpath(CompileClasspath)))
	assert.Equal(t, []string{"org.example:a:1.0", "org.example:rt:1.0"}, coords(res.Classpath(RuntimeClasspath)))
	assert.Equal(t, []string{"org.example:lombok:1.0"}, coords(res.Classpath(AnnotationProcessor)))
	assert.Equal(t, []string{"org.example:a:1.0", "org.example:junit:1.0"}, coords(res.Classpath(TestCompileClasspath)))
	assert.Equal(t, []string{"org.example:a:1.0", "org.example:junit:1.0", "org.example:rt:1.0"}, coords(res.Classpath(TestRuntimeClasspath)))
	assert.Empty(t, res.Classpath(TestAnnotationProcessor))
	assert.Equal(t, []string{"org.example:devtools:1.0"}, coords(res.Classpath(DevelopmentOnly)))
}

func TestResolve_RangeAndDynamicVersions(t *testing.T) {
	repo := mavenrepo.New(t).
		Jar("org.example:r:1.0", nil).
		Jar("org.example:r:1.5", nil).
		Jar("org.example:r:2.0", nil).
		Jar("org.example:p:3.1", nil).
		Jar("org.example:p:3.9", nil).
		Jar("org.example:p:4.0", nil)

	res, err := newResolver(repo).Resolve(context.Background(), model(
		decl(config.ScopeImplementation, "org.example:r:[1.0,2.0)"),
		decl(config.ScopeImplementation, "org.example:p:3.+"),
	))
	require.NoError(t, err)
	assert.Equal(t, []string{"org.example:r:1.5", "org.example:p:3.9"}, coords(res.Classpath(CompileClasspath)))
}

func TestResolve_RangeWithoutMatchFails(t *testing.T) {
	repo := mavenrepo.New(t).Jar("org.example:r:1.0", nil)

	_, err := newResolver(repo).Resolve(context.Background(), model(decl(config.ScopeImplementation, "org.example:r:[2.0,)")))
	var resErr *ResolutionError
	require.True(t, errors.As(err, &resErr))
	assert.True(t, errors.Is(err, repository.ErrNotFound))
}

func TestResolve_PomPackagingHasNoArchive(t *testing.T) {
	repo := mavenrepo.New(t).
		Jar("org.example:impl:1.0", nil).
		Add(mavenrepo.Artifact{
			Coordinate:   "org.example:starter:1.0",
			Packaging:    "pom",
			Dependencies: []mavenrepo.Dep{{Coordinate: "org.example:impl:1.0"}},
		})

	res, err := newResolver(repo).Resolve(context.Background(), model(decl(config.ScopeImplementation, "org.example:starter:1.0")))
	require.NoError(t, err)

	cp := res.Classpath(RuntimeClasspath)
	require.Len(t, cp, 2)
	assert.False(t, cp[0].HasArchive())
	assert.True(t, cp[1].HasArchive())
	assert.Equal(t, []string{repo.ArchivePath("org.example:impl:1.0")}, res.Files(RuntimeClasspath))
}

func TestResolve_ParentInheritance(t *testing.T) {
	repo := mavenrepo.New(t).
		Jar("org.example:dep:2.1", nil).
		Add(mavenrepo.Artifact{
			Coordinate: "org.example:parent:1.0",
			Packaging:  "pom",
			Properties: map[string]string{"dep.version": "2.1"},
			Managed:    []mavenrepo.Dep{{Coordinate: "org.example:dep:${dep.version}"}},
		}).
		Add(mavenrepo.Artifact{
			Coordinate:   "org.example:child:1.0",
			Parent:       "org.example:parent:1.0",
			Dependencies: []mavenrepo.Dep{{Coordinate: "org.example:dep"}},
		})

	res, err := newResolver(repo).Resolve(context.Background(), model(decl(config.ScopeImplementation, "org.example:child:1.0")))
	require.NoError(t, err)
	assert.Equal(t, []string{"org.example:child:1.0", "org.example:dep:2.1"}, coords(res.Classpath(CompileClasspath)))
}

func TestResolve_RepositoriesInDeclarationOrder(t *testing.T) {
	first := mavenrepo.New(t).Jar("org.example:a:1.0", map[string]string{"from": "first"})
	second := mavenrepo.New(t).
		Jar("org.example:a:1.0", map[string]string{"from": "second"}).
		Jar("org.example:b:1.0", nil)

	res, err := newResolver(first, second).Resolve(context.Background(), model(
		decl(config.ScopeImplementation, "org.example:a:1.0"),
		decl(config.ScopeImplementation, "org.example:b:1.0"),
	))
	require.NoError(t, err)

	cp := res.Classpath(CompileClasspath)
	assert.Equal(t, first.ArchivePath("org.example:a:1.0"), cp[0].Path)
	assert.Equal(t, "second", cp[1].Repository)
}

func TestResolve_OneVersionPerModule(t *testing.T) {
	repo := mavenrepo.New(t).
		Jar("org.example:shared:1.0", nil).
		Jar("org.example:shared:1.1", nil).
		Jar("org.example:shared:1.2", nil).
		Jar("org.example:x:1.0", nil, "org.example:shared:1.0").
		Jar("org.example:y:1.0", nil, "org.example:shared:1.2").
		Jar("org.example:z:1.0", nil, "org.example:shared:1.1", "org.example:x:1.0")

	res, err := newResolver(repo).Resolve(context.Background(), model(
		decl(config.ScopeImplementation, "org.example:z:1.0"),
		decl(config.ScopeTestImplementation, "org.example:y:1.0"),
		decl(config.ScopeRuntimeOnly, "org.example:x:1.0"),
	))
	require.NoError(t, err)

	for _, name := range res.Configurations() {
		seen := map[coordinate.Module]string{}
		for _, a := range res.Classpath(name) {
			prev, dup := seen[a.Coordinate.Module()]
			assert.False(t, dup, "%s: %s appears as %s and %s", name, a.Coordinate.Module(), prev, a.Coordinate.Version)
			seen[a.Coordinate.Module()] = a.Coordinate.Version
		}
	}
	assert.Contains(t, coords(res.Classpath(TestRuntimeClasspath)), "org.example:shared:1.2")
	assert.Contains(t, coords(res.Classpath(CompileClasspath)), "org.example:shared:1.1")
}

func TestResolver_Artifact(t *testing.T) {
	repo := mavenrepo.New(t).
		Jar("org.junit.platform:junit-platform-console-standalone:1.9.3", nil, "org.example:ignored:1.0")

	a, err := newResolver(repo).Artifact(context.Background(), coordinate.MustParse("org.junit.platform:junit-platform-console-standalone:1.9.3"))
	require.NoError(t, err)
	assert.Equal(t, repo.ArchivePath("org.junit.platform:junit-platform-console-standalone:1.9.3"), a.Path)

	_, err = newResolver(repo).Artifact(context.Background(), coordinate.MustParse("org.example:nope:1.0"))
	assert.True(t, errors.Is(err, repository.ErrNotFound))
}

func TestResult_WriteReport(t *testing.T) {
	res := newResult()
	res.set(CompileClasspath, []Artifact{
		{Coordinate: coordinate.MustParse("org.example:a:1.0"), Requested: "1.0"},
		{Coordinate: coordinate.MustParse("org.example:c:2.0"), Requested: "1.0"},
	})
	res.set(AnnotationProcessor, nil)

	var buf bytes.Buffer
	require.NoError(t, res.WriteReport(&buf))

	want := "compileClasspath\n" +
		"+--- org.example:a:1.0\n" +
		"\\--- org.example:c:1.0 -> 2.0\n" +
		"\n" +
		"annotationProcessor\n" +
		"No dependencies\n"
	assert.Equal(t, want, buf.String())
}
