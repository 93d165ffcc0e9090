package hcl

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/jarsmith/internal/config"
	"github.com/vk/jarsmith/internal/coordinate"
)

func writeBuildFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "build.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const fullBuildFile = `
locals {
  lombok_version = "1.18.26"
  lombok         = "org.projectlombok:lombok:${local.lombok_version}"
}

project "tacocloud" {
  group                = "sia"
  version              = "0.0.1-SNAPSHOT"
  source_compatibility = "17"
}

repository "central" {
  url = "https://repo.maven.apache.org/maven2"
}

repository "local" {
  path = "./repo"
}

dependency_management {
  imports = ["org.springframework.boot:spring-boot-dependencies:3.1.0"]
  managed = { "org.jetbrains:annotations" = "24.0.0" }
}

dependencies {
  implementation       = ["org.springframework.boot:spring-boot-starter-web"]
  compile_only         = [local.lombok]
  annotation_processor = [local.lombok]
  test_implementation  = ["junit:junit:4.13.1"]
  development_only     = ["org.springframework.boot:spring-boot-devtools"]
}

dependency "implementation" "org.example:lib:1.0" {
  exclude = ["commons-logging:commons-logging", "org.unwanted"]
}

compile {
  args = ["-parameters"]
}

test {
  fail_on_failure = false
}

jar {
  main_class = "tacos.TacoCloudApplication"
  exclude    = ["META-INF/*.SF"]
  attributes = {
    "Implementation-Title"   = upper(project.name)
    "Implementation-Version" = project.version
  }
}
`

func TestLoader_FullBuildFile(t *testing.T) {
	path := writeBuildFile(t, fullBuildFile)

	model, err := NewLoader().Load(context.Background(), path)
	require.NoError(t, err)

	dir := filepath.Dir(path)
	assert.Equal(t, dir, model.Dir)
	assert.Equal(t, config.Project{
		Name:                "tacocloud",
		Group:               "sia",
		Version:             "0.0.1-SNAPSHOT",
		SourceCompatibility: "17",
	}, model.Project)

	wantRepos := []config.Repository{
		{Name: "central", URL: "https://repo.maven.apache.org/maven2"},
		{Name: "local", Path: filepath.Join(dir, "repo")},
	}
	if diff := cmp.Diff(wantRepos, model.Repositories); diff != "" {
		t.Errorf("repositories mismatch (-want +got):\n%s", diff)
	}

	assert.True(t, model.Management.Enforce)
	assert.Equal(t, []coordinate.Coordinate{coordinate.MustParse("org.springframework.boot:spring-boot-dependencies:3.1.0")}, model.Management.Imports)
	assert.Equal(t, map[coordinate.Module]string{{Group: "org.jetbrains", Artifact: "annotations"}: "24.0.0"}, model.Management.Managed)

	wantDecls := []config.Declaration{
		{Scope: config.ScopeImplementation, Coordinate: coordinate.MustParse("org.springframework.boot:spring-boot-starter-web")},
		{Scope: config.ScopeCompileOnly, Coordinate: coordinate.MustParse("org.projectlombok:lombok:1.18.26")},
		{Scope: config.ScopeAnnotationProcessor, Coordinate: coordinate.MustParse("org.projectlombok:lombok:1.18.26")},
		{Scope: config.ScopeTestImplementation, Coordinate: coordinate.MustParse("junit:junit:4.13.1")},
		{Scope: config.ScopeDevelopmentOnly, Coordinate: coordinate.MustParse("org.springframework.boot:spring-boot-devtools")},
		{
			Scope:      config.ScopeImplementation,
			Coordinate: coordinate.MustParse("org.example:lib:1.0"),
			Exclusions: []config.Exclusion{
				{Group: "commons-logging", Artifact: "commons-logging"},
				{Group: "org.unwanted", Artifact: "*"},
			},
		},
	}
	if diff := cmp.Diff(wantDecls, model.Declarations); diff != "" {
		t.Errorf("declarations mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, config.Compile{Encoding: "UTF-8", Args: []string{"-parameters"}}, model.Compile)
	assert.False(t, model.Test.FailOnFailure)
	assert.Equal(t, "junit-platform", model.Test.Platform)
	assert.Equal(t, coordinate.MustParse(config.DefaultLauncher), model.Test.Launcher)

	assert.Equal(t, "tacos.TacoCloudApplication", model.Jar.MainClass)
	assert.Equal(t, config.DuplicatesFirst, model.Jar.Duplicates)
	assert.Equal(t, []string{"META-INF/*.SF"}, model.Jar.Exclude)
	assert.Equal(t, map[string]string{
		"Implementation-Title":   "TACOCLOUD",
		"Implementation-Version": "0.0.1-SNAPSHOT",
	}, model.Jar.Attributes)
}

func TestLoader_Defaults(t *testing.T) {
	path := writeBuildFile(t, `project "app" {}`)

	model, err := NewLoader().Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "app", model.Project.Name)
	assert.Equal(t, "app.jar", model.Project.ArchiveName())
	assert.Empty(t, model.Declarations)
	assert.True(t, model.Management.Enforce)
	assert.Equal(t, config.DefaultEncoding, model.Compile.Encoding)
	assert.True(t, model.Test.FailOnFailure)
	assert.Equal(t, config.DuplicatesFirst, model.Jar.Duplicates)
}

func TestLoader_ProjectReferencesLocals(t *testing.T) {
	path := writeBuildFile(t, `
locals {
  release = format("%s.%d", local.major, 3)
  major   = "2"
}
project "app" {
  version = local.release
}
`)
	model, err := NewLoader().Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "2.3", model.Project.Version)
	assert.Equal(t, "app-2.3.jar", model.Project.ArchiveName())
}

func TestLoader_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing project",
			content: `repository "r" { url = "http://x" }`,
			wantErr: "exactly one project block",
		},
		{
			name:    "two projects",
			content: "project \"a\" {}\nproject \"b\" {}",
			wantErr: "exactly one project block",
		},
		{
			name:    "local cycle",
			content: "locals {\n a = local.b\n b = local.a\n}\nproject \"a\" {}",
			wantErr: "cycle",
		},
		{
			name:    "repository with url and path",
			content: "project \"a\" {}\nrepository \"r\" {\n url = \"http://x\"\n path = \"y\"\n}",
			wantErr: "mutually exclusive",
		},
		{
			name:    "repository without location",
			content: "project \"a\" {}\nrepository \"r\" {}",
			wantErr: "one of url or path",
		},
		{
			name:    "bad coordinate",
			content: "project \"a\" {}\ndependencies {\n implementation = [\"nope\"]\n}",
			wantErr: "invalid coordinate",
		},
		{
			name:    "unknown scope",
			content: "project \"a\" {}\ndependency \"compile\" \"g:a:1\" {}",
			wantErr: "unknown dependency scope",
		},
		{
			name:    "bad duplicates policy",
			content: "project \"a\" {}\njar {\n duplicates = \"fail\"\n}",
			wantErr: "duplicates must be",
		},
		{
			name:    "reserved manifest attribute",
			content: "project \"a\" {}\njar {\n attributes = { \"Main-Class\" = \"x\" }\n}",
			wantErr: "is generated",
		},
		{
			name:    "unsupported platform",
			content: "project \"a\" {}\ntest {\n platform = \"testng\"\n}",
			wantErr: "unsupported platform",
		},
		{
			name:    "unknown block",
			content: "project \"a\" {}\nbootRun {}",
			wantErr: "failed to decode",
		},
		{
			name:    "import without version",
			content: "project \"a\" {}\ndependency_management {\n imports = [\"g:bom\"]\n}",
			wantErr: "needs a version",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeBuildFile(t, tc.content)
			_, err := NewLoader().Load(context.Background(), path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoader_MissingFile(t *testing.T) {
	_, err := NewLoader().Load(context.Background(), filepath.Join(t.TempDir(), "build.hcl"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse build file")
}
