package tools

import (
	"context"
	"fmt"

	"ai-studypartner-be/pkg/llm"
)

// Tool is one external capability a generator may invoke during its tool
// loop. Invoke returns plain text; errors are converted by the loop into an
// error-carrying tool result, never a crash.
type Tool interface {
	Name() string
	Description() string
	InputSchema() map[string]interface{}
	Invoke(ctx context.Context, args map[string]interface{}) (string, error)
}

// Registry holds the process-wide tool set. Generators select from it by
// name; the registry never executes a tool that was not registered.
type Registry struct {
	tools map[string]Tool
	order []string
}

func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{
		tools: make(map[string]Tool),
	}
	for _, t := range tools {
		r.Register(t)
	}
	return r
}

func (r *Registry) Register(t Tool) {
	if _, exists := r.tools[t.Name()]; !exists {
		r.order = append(r.order, t.Name())
	}
	r.tools[t.Name()] = t
}

// Defs returns the wire-level tool declarations for the named tools. Unknown
// names are skipped. A nil or empty selection returns every registered tool.
func (r *Registry) Defs(names ...string) []llm.ToolDef {
	if len(names) == 0 {
		names = r.order
	}
	defs := make([]llm.ToolDef, 0, len(names))
	for _, name := range names {
		t, ok := r.tools[name]
		if !ok {
			continue
		}
		defs = append(defs, llm.ToolDef{
			Name:        t.Name(),
			Description: t.Description(),
			InputSchema: t.InputSchema(),
		})
	}
	return defs
}

// Invoke runs a tool by name. An unknown name returns an error the loop turns
// into a synthetic tool result.
func (r *Registry) Invoke(ctx context.Context, name string, args map[string]interface{}) (string, error) {
	t, ok := r.tools[name]
	if !ok {
		return "", fmt.Errorf("tool %q not available", name)
	}
	return t.Invoke(ctx, args)
}
