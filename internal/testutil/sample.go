package testutil

import (
	"fmt"
	"testing"

	"github.com/vk/jarsmith/internal/testutil/mavenrepo"
)

// Coordinates published by SampleRepository.
const (
	GreetingLib = "org.example:greeting:1.0"
	UtilLib     = "org.example:util:1.0"
	JUnitAPI    = "org.junit.jupiter:junit-jupiter-api:5.9.3"
	Launcher    = "org.junit.platform:junit-platform-console-standalone:1.9.3"
)

// SampleRepository publishes a small dependency tree: greeting depends on
// util, both ship a META-INF/LICENSE, and the test API and console launcher
// are available.
func SampleRepository(t *testing.T) *mavenrepo.Repo {
	t.Helper()
	return mavenrepo.New(t).
		Jar(UtilLib, map[string]string{
			"org/example/util/Strings.class": "util",
			"META-INF/LICENSE":               "util license",
		}).
		Jar(GreetingLib, map[string]string{
			"org/example/Greeting.class": "greeting",
			"META-INF/LICENSE":           "greeting license",
		}, UtilLib).
		Jar(JUnitAPI, map[string]string{"org/junit/jupiter/api/Test.class": "junit"}).
		Jar(Launcher, map[string]string{"org/junit/platform/console/ConsoleLauncher.class": "launcher"})
}

// SampleBuildFile renders a build file resolving from the repository at
// repoRoot. extra is appended verbatim.
func SampleBuildFile(repoRoot, extra string) string {
	return fmt.Sprintf(`
locals {
  greeting = %q
}

project "tacocloud" {
  group                = "sia"
  version              = "0.0.1-SNAPSHOT"
  source_compatibility = "17"
}

repository "local" {
  path = %q
}

dependencies {
  implementation      = [local.greeting]
  test_implementation = [%q]
}

jar {
  main_class = "tacos.TacoCloudApplication"
}
%s`, GreetingLib, repoRoot, JUnitAPI, extra)
}

// SampleSources are the project files of a passing build.
func SampleSources() map[string]string {
	return map[string]string{
		"src/main/java/tacos/TacoCloudApplication.java":     "package tacos; public class TacoCloudApplication {}",
		"src/main/java/tacos/Taco.java":                     "package tacos; public class Taco {}",
		"src/main/resources/application.properties":         "spring.thymeleaf.cache=false",
		"src/test/java/tacos/TacoCloudApplicationTest.java": "package tacos; class TacoCloudApplicationTest {}",
	}
}

// SampleProject writes the sample sources, overridden by files, and a build
// file pointing at repo. It returns the project directory.
func SampleProject(t *testing.T, repo *mavenrepo.Repo, extra string, files map[string]string) string {
	t.Helper()
	all := SampleSources()
	for name, content := range files {
		all[name] = content
	}
	all["build.hcl"] = SampleBuildFile(repo.Root, extra)
	return WriteProject(t, all)
}
