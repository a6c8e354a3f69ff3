package tools

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type fakeTool struct {
	name   string
	output string
	err    error
}

func (f fakeTool) Name() string { return f.name }
func (f fakeTool) Description() string { return f.name + " tool" }
func (f fakeTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{"type": "object"}
}
func (f fakeTool) Invoke(ctx context.Context, args map[string]interface{}) (string, error) {
	return f.output, f.err
}

func TestDefs(t *testing.T) {
	r := NewRegistry(
		fakeTool{name: "web_search"},
		fakeTool{name: "calculate"},
		fakeTool{name: "scrape_website"},
	)

	tests := []struct {
		name  string
		names []string
		want  []string
	}{
		{"empty selection returns all in registration order", nil, []string{"web_search", "calculate", "scrape_website"}},
		{"subset", []string{"calculate"}, []string{"calculate"}},
		{"unknown names are skipped", []string{"calculate", "nope", "web_search"}, []string{"calculate", "web_search"}},
		{"all unknown yields empty", []string{"nope"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defs := r.Defs(tt.names...)
			if len(defs) != len(tt.want) {
				t.Fatalf("got %d defs, want %d", len(defs), len(tt.want))
			}
			for i, d := range defs {
				if d.Name != tt.want[i] {
					t.Errorf("defs[%d].Name = %q, want %q", i, d.Name, tt.want[i])
				}
			}
		})
	}
}

func TestInvoke(t *testing.T) {
	r := NewRegistry(
		fakeTool{name: "calculate", output: "42"},
		fakeTool{name: "web_search", err: errors.New("network unreachable")},
	)

	t.Run("known tool", func(t *testing.T) {
		out, err := r.Invoke(context.Background(), "calculate", nil)
		if err != nil || out != "42" {
			t.Errorf("Invoke = (%q, %v)", out, err)
		}
	})

	t.Run("tool failure propagates", func(t *testing.T) {
		_, err := r.Invoke(context.Background(), "web_search", nil)
		if err == nil {
			t.Fatal("expected error from failing tool")
		}
	})

	t.Run("unknown tool", func(t *testing.T) {
		_, err := r.Invoke(context.Background(), "teleport", nil)
		if err == nil || !strings.Contains(err.Error(), `tool "teleport" not available`) {
			t.Errorf("unknown tool error = %v", err)
		}
	})
}

func TestRegisterOverwriteKeepsOrder(t *testing.T) {
	r := NewRegistry(fakeTool{name: "calculate", output: "old"})
	r.Register(fakeTool{name: "calculate", output: "new"})

	defs := r.Defs()
	if len(defs) != 1 {
		t.Fatalf("re-registering must not duplicate, got %d defs", len(defs))
	}
	out, err := r.Invoke(context.Background(), "calculate", nil)
	if err != nil || out != "new" {
		t.Errorf("Invoke after overwrite = (%q, %v)", out, err)
	}
}
