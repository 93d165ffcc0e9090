package hcl

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/jarsmith/internal/config"
	"github.com/vk/jarsmith/internal/ctxlog"
	"github.com/vk/jarsmith/internal/schema"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL build file loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses and evaluates the build file at path.
func (l *Loader) Load(ctx context.Context, path string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path", path)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse build file %s: %w", path, diags)
	}

	var outline schema.Outline
	if diags := gohcl.DecodeBody(file.Body, nil, &outline); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode build file %s: %w", path, diags)
	}

	locals, err := evalLocals(outline.Locals)
	if err != nil {
		return nil, fmt.Errorf("build file %s: %w", path, err)
	}
	logger.Debug("Evaluated locals.", "count", len(locals))

	if len(outline.Project) != 1 {
		return nil, fmt.Errorf("build file %s: exactly one project block is required, found %d", path, len(outline.Project))
	}
	header := outline.Project[0]

	var project schema.Project
	if diags := gohcl.DecodeBody(header.Body, newEvalContext(locals, nil), &project); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode project block in %s: %w", path, diags)
	}

	var body schema.BuildFile
	evalCtx := newEvalContext(locals, projectVars(header.Name, &project))
	if diags := gohcl.DecodeBody(outline.Remain, evalCtx, &body); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode build file %s: %w", path, diags)
	}

	dir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("resolve project directory: %w", err)
	}

	model, err := translate(dir, header.Name, &project, &body)
	if err != nil {
		return nil, fmt.Errorf("build file %s: %w", path, err)
	}

	logger.Debug("HCL loading complete.",
		"project", model.Project.Name,
		"repositories", len(model.Repositories),
		"declarations", len(model.Declarations),
	)
	return model, nil
}
