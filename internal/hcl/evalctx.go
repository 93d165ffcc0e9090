package hcl

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/jarsmith/internal/schema"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// functions available to every expression in a build file.
var functions = map[string]function.Function{
	"upper":  stdlib.UpperFunc,
	"lower":  stdlib.LowerFunc,
	"join":   stdlib.JoinFunc,
	"format": stdlib.FormatFunc,
	"concat": stdlib.ConcatFunc,
}

// newEvalContext exposes local.* and, once known, project.*.
func newEvalContext(locals map[string]cty.Value, project map[string]cty.Value) *hcl.EvalContext {
	vars := map[string]cty.Value{
		"local": cty.ObjectVal(locals),
	}
	if project != nil {
		vars["project"] = cty.ObjectVal(project)
	}
	return &hcl.EvalContext{Variables: vars, Functions: functions}
}

func projectVars(name string, p *schema.Project) map[string]cty.Value {
	return map[string]cty.Value{
		"name":                 cty.StringVal(name),
		"group":                cty.StringVal(p.Group),
		"version":              cty.StringVal(p.Version),
		"source_compatibility": cty.StringVal(p.SourceCompatibility),
	}
}

// evalLocals evaluates every local, resolving references between locals
// in dependency order. Cycles and unknown references are errors.
func evalLocals(blocks []*schema.Locals) (map[string]cty.Value, error) {
	pending := make(map[string]*hcl.Attribute)
	for _, b := range blocks {
		attrs, diags := b.Body.JustAttributes()
		if diags.HasErrors() {
			return nil, fmt.Errorf("invalid locals block: %w", diags)
		}
		for name, attr := range attrs {
			if _, dup := pending[name]; dup {
				return nil, fmt.Errorf("local %q is defined more than once", name)
			}
			pending[name] = attr
		}
	}

	values := make(map[string]cty.Value, len(pending))
	for len(pending) > 0 {
		progressed := false
		for _, name := range sortedNames(pending) {
			attr := pending[name]
			if !localsReady(attr.Expr, values) {
				continue
			}
			val, diags := attr.Expr.Value(newEvalContext(values, nil))
			if diags.HasErrors() {
				return nil, fmt.Errorf("evaluate local %q: %w", name, diags)
			}
			values[name] = val
			delete(pending, name)
			progressed = true
		}
		if !progressed {
			return nil, fmt.Errorf("locals reference each other in a cycle or reference unknown locals: %s", strings.Join(sortedNames(pending), ", "))
		}
	}
	return values, nil
}

// localsReady reports whether every local.* the expression references has
// a value already.
func localsReady(expr hcl.Expression, values map[string]cty.Value) bool {
	for _, tr := range expr.Variables() {
		if tr.RootName() != "local" || len(tr) < 2 {
			continue
		}
		attr, ok := tr[1].(hcl.TraverseAttr)
		if !ok {
			continue
		}
		if _, ok := values[attr.Name]; !ok {
			return false
		}
	}
	return true
}

func sortedNames(m map[string]*hcl.Attribute) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
