package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTool struct {
	def    Definition
	result *Result
	err    error
	called int
}

func (s *stubTool) Definition() Definition { return s.def }

func (s *stubTool) Execute(ctx context.Context, args map[string]any) (*Result, error) {
	s.called++
	return s.result, s.err
}

func stubDef(name string) Definition {
	return Definition{
		Name: name,
		Schema: Schema{
			Properties: map[string]Property{
				"query": {Type: "string"},
				"count": {Type: "integer"},
			},
			Required: []string{"query"},
		},
	}
}

func TestRegistry(t *testing.T) {
	ctx := context.Background()

	t.Run("Definitions In Registration Order", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.Register(&stubTool{def: stubDef("beta")}))
		require.NoError(t, r.Register(&stubTool{def: stubDef("alpha")}))

		defs := r.Definitions()
		require.Len(t, defs, 2)
		assert.Equal(t, "beta", defs[0].Name)
		assert.Equal(t, "alpha", defs[1].Name)
	})

	t.Run("Duplicate Registration Fails", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.Register(&stubTool{def: stubDef("dup")}))
		assert.Error(t, r.Register(&stubTool{def: stubDef("dup")}))
	})

	t.Run("Unnamed Tool Rejected", func(t *testing.T) {
		r := NewRegistry()
		assert.Error(t, r.Register(&stubTool{def: Definition{}}))
	})

	t.Run("Dispatch Unknown Tool", func(t *testing.T) {
		r := NewRegistry()
		_, err := r.Dispatch(ctx, "ghost", nil)
		assert.Error(t, err)
	})

	t.Run("Dispatch Validates Before Execute", func(t *testing.T) {
		tool := &stubTool{def: stubDef("t"), result: &Result{Text: "ok"}}
		r := NewRegistry()
		require.NoError(t, r.Register(tool))

		_, err := r.Dispatch(ctx, "t", map[string]any{})
		assert.Error(t, err, "missing required arg")
		assert.Zero(t, tool.called)

		res, err := r.Dispatch(ctx, "t", map[string]any{"query": "q", "count": float64(2)})
		require.NoError(t, err)
		assert.Equal(t, "ok", res.Text)
		assert.Equal(t, 1, tool.called)
	})
}

func TestValidateArgs(t *testing.T) {
	schema := stubDef("t").Schema

	tests := []struct {
		name    string
		args    map[string]any
		wantErr bool
	}{
		{"Valid", map[string]any{"query": "x"}, false},
		{"Integer As Float", map[string]any{"query": "x", "count": float64(3)}, false},
		{"Integer As Int", map[string]any{"query": "x", "count": 3}, false},
		{"Missing Required", map[string]any{"count": 1}, true},
		{"Unknown Argument", map[string]any{"query": "x", "bogus": 1}, true},
		{"Wrong String Type", map[string]any{"query": 7}, true},
		{"Fractional Integer", map[string]any{"query": "x", "count": 1.5}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateArgs(schema, tt.args)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
