package coordinate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("with version", func(t *testing.T) {
		c, err := Parse("org.projectlombok:lombok:1.18.26")
		require.NoError(t, err)
		assert.Equal(t, Coordinate{Group: "org.projectlombok", Artifact: "lombok", Version: "1.18.26"}, c)
		assert.Equal(t, "org.projectlombok:lombok", c.Module().String())
		assert.True(t, c.HasVersion())
	})

	t.Run("without version", func(t *testing.T) {
		c, err := Parse("org.springframework.boot:spring-boot-starter-web")
		require.NoError(t, err)
		assert.False(t, c.HasVersion())
		assert.Equal(t, "org.springframework.boot:spring-boot-starter-web", c.String())
		assert.Equal(t, "org.springframework.boot:spring-boot-starter-web:3.1.0", c.WithVersion("3.1.0").String())
	})

	t.Run("error cases", func(t *testing.T) {
		for _, in := range []string{"", "lombok", "a:b:c:d", "a::1.0", ":b"} {
			_, err := Parse(in)
			assert.Error(t, err, in)
		}
	})
}

func TestParseModule(t *testing.T) {
	m, err := ParseModule("commons-logging:commons-logging")
	require.NoError(t, err)
	assert.Equal(t, Module{Group: "commons-logging", Artifact: "commons-logging"}, m)

	_, err = ParseModule("commons-logging:commons-logging:1.2")
	assert.Error(t, err)
}

func TestCompareVersions(t *testing.T) {
	ordered := []string{
		"1.0-alpha1",
		"1.0-beta1",
		"1.0-milestone1",
		"1.0-rc1",
		"1.0-SNAPSHOT",
		"1.0",
		"1.0-sp1",
		"1.0.1",
		"1.9",
		"1.10",
		"2.0",
	}
	for i := 0; i < len(ordered)-1; i++ {
		assert.Equal(t, -1, CompareVersions(ordered[i], ordered[i+1]), "%s < %s", ordered[i], ordered[i+1])
		assert.Equal(t, 1, CompareVersions(ordered[i+1], ordered[i]), "%s > %s", ordered[i+1], ordered[i])
	}

	equal := [][2]string{
		{"1", "1.0"},
		{"1.0", "1.0.0"},
		{"8.0.0.Final", "8.0.0"},
		{"1.0-ga", "1.0"},
		{"1.0-cr1", "1.0-rc1"},
		{"1.0a1", "1.0-alpha-1"},
		{"007", "7"},
	}
	for _, pair := range equal {
		assert.Equal(t, 0, CompareVersions(pair[0], pair[1]), "%s == %s", pair[0], pair[1])
	}
}

func TestVersion_IsSnapshot(t *testing.T) {
	assert.True(t, ParseVersion("0.0.1-SNAPSHOT").IsSnapshot())
	assert.False(t, ParseVersion("3.1.0").IsSnapshot())
}

func TestRepositoryPath(t *testing.T) {
	c := MustParse("org.projectlombok:lombok:1.18.26")
	assert.Equal(t, "org/projectlombok/lombok/1.18.26/lombok-1.18.26.jar", c.RepositoryPath("jar"))
	assert.Equal(t, "org/projectlombok/lombok", c.Module().RepositoryDir())
}
