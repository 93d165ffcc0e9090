package workspace

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/jarsmith/internal/config"
)

func TestLayout(t *testing.T) {
	l := NewLayout("/work/tacocloud")

	main := l.Main()
	assert.Equal(t, filepath.FromSlash("/work/tacocloud/src/main/java"), main.JavaDir)
	assert.Equal(t, filepath.FromSlash("/work/tacocloud/build/classes/java/main"), main.ClassesDir)
	assert.Equal(t, filepath.FromSlash("/work/tacocloud/build/resources/main"), main.ResourcesOut)
	assert.Equal(t, filepath.FromSlash("/work/tacocloud/build/generated/sources/annotationProcessor/java/main"), main.GeneratedDir)

	test := l.Test()
	assert.Equal(t, filepath.FromSlash("/work/tacocloud/src/test/resources"), test.ResourcesDir)
	assert.Equal(t, []string{test.ClassesDir, test.ResourcesOut}, test.Output())

	assert.Equal(t, filepath.FromSlash("/work/tacocloud/build/test-results/test"), l.TestResults())
	assert.Equal(t, filepath.FromSlash("/work/tacocloud/build/libs"), l.Libs())
}

func TestWorkspace(t *testing.T) {
	model := &config.Model{
		Dir:     "/work/tacocloud",
		Project: config.Project{Name: "tacocloud", Version: "0.0.1-SNAPSHOT"},
	}
	ws := New(model, nil, nil, nil)

	assert.Equal(t, filepath.FromSlash("/work/tacocloud/build/libs/tacocloud-0.0.1-SNAPSHOT.jar"), ws.ArchivePath())

	_, err := ws.Resolved()
	require.ErrorIs(t, err, ErrNotResolved)
	assert.Nil(t, ws.TestSummary())
	assert.Nil(t, ws.Archive())
}
