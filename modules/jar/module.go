// Package jar provides the task assembling the executable archive.
package jar

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/vk/jarsmith/internal/archive"
	"github.com/vk/jarsmith/internal/ctxlog"
	"github.com/vk/jarsmith/internal/dag"
	"github.com/vk/jarsmith/internal/registry"
	"github.com/vk/jarsmith/internal/resolver"
	"github.com/vk/jarsmith/internal/workspace"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Run merges the main output and the runtime classpath into one archive
// with a generated manifest.
func Run(ctx context.Context, ws *workspace.Workspace) (dag.Outcome, error) {
	logger := ctxlog.FromContext(ctx)

	resolved, err := ws.Resolved()
	if err != nil {
		return dag.Failed, err
	}

	dest := ws.ArchivePath()
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return dag.Failed, fmt.Errorf("create %s: %w", filepath.Dir(dest), err)
	}

	cfg := ws.Model.Jar
	summary, err := archive.Assemble(ctx, dest,
		archive.Input{
			Dirs:     ws.Layout.Main().Output(),
			Archives: resolved.Files(resolver.RuntimeClasspath),
		},
		archive.Options{
			MainClass:  cfg.MainClass,
			Attributes: cfg.Attributes,
			Duplicates: cfg.Duplicates,
			Exclude:    cfg.Exclude,
		})
	if err != nil {
		return dag.Failed, err
	}
	ws.SetArchive(summary)

	if cfg.MainClass == "" {
		logger.Warn("Archive has no Main-Class attribute.", "path", dest)
	}
	logger.Info("📦 Archive written.",
		"path", dest,
		"entries", summary.Entries,
		"duplicatesDropped", summary.Duplicates,
		"size", humanize.Bytes(uint64(summary.Size)))
	return dag.Success, nil
}

// Register registers the task with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterTask(&registry.TaskDefinition{
		Name:        "jar",
		Description: "Assembles the executable jar archive.",
		DependsOn:   []string{"classes", "test"},
		Run:         Run,
	})
}
