package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }

func TestBuilderDefaults(t *testing.T) {
	req, err := NewUserRequestBuilder().Query("Explain tidal power").Build()
	require.NoError(t, err)

	assert.Equal(t, "Explain tidal power", req.Query)
	assert.Equal(t, 1, req.MaxDepth)
	require.Len(t, req.Agents, 1)
	assert.Equal(t, 1, req.Agents[0].Count)
	assert.Equal(t, RecursionPolicyMay, req.Agents[0].RecursionPolicy)
}

func TestBuilderFull(t *testing.T) {
	req, err := NewUserRequestBuilder().
		Query("  Compare the options  ").
		Context("city council briefing").
		StructuredData(map[string]any{"region": "north"}).
		Model("claude-3-5-sonnet-20241022", floatPtr(0.3)).
		MaxDepth(3).
		AddAgent(2, RecursionPolicyMay, "reviewer").
		AddAgent(1, RecursionPolicyMustNot, "skeptic").
		Build()
	require.NoError(t, err)

	assert.Equal(t, "Compare the options", req.Query)
	assert.Equal(t, "city council briefing", req.Context)
	assert.Equal(t, map[string]any{"region": "north"}, req.StructuredData)
	require.NotNil(t, req.ModelSpec)
	assert.Equal(t, 0.3, *req.ModelSpec.Temperature)
	assert.Equal(t, 3, req.MaxDepth)
	require.Len(t, req.Agents, 2)
	assert.Equal(t, "skeptic", req.Agents[1].Name)
}

func TestBuilderValidation(t *testing.T) {
	tests := []struct {
		name  string
		build func() (*UserRequest, error)
	}{
		{"empty query", func() (*UserRequest, error) {
			return NewUserRequestBuilder().Query("   ").Build()
		}},
		{"missing query", func() (*UserRequest, error) {
			return NewUserRequestBuilder().MaxDepth(1).Build()
		}},
		{"temperature too high", func() (*UserRequest, error) {
			return NewUserRequestBuilder().Query("q").Model("m", floatPtr(2.5)).Build()
		}},
		{"temperature negative", func() (*UserRequest, error) {
			return NewUserRequestBuilder().Query("q").Model("m", floatPtr(-0.1)).Build()
		}},
		{"depth zero", func() (*UserRequest, error) {
			return NewUserRequestBuilder().Query("q").MaxDepth(0).Build()
		}},
		{"depth beyond ceiling", func() (*UserRequest, error) {
			return NewUserRequestBuilder().Query("q").MaxDepth(MaxDepthCeiling + 1).Build()
		}},
		{"agent count zero", func() (*UserRequest, error) {
			return NewUserRequestBuilder().Query("q").AddAgent(0, RecursionPolicyMay, "").Build()
		}},
		{"bad policy spelling", func() (*UserRequest, error) {
			return NewUserRequestBuilder().Query("q").ParseAgents("a:1:sometimes").Build()
		}},
		{"bad agent count", func() (*UserRequest, error) {
			return NewUserRequestBuilder().Query("q").ParseAgents("a:two").Build()
		}},
		{"too many spec fields", func() (*UserRequest, error) {
			return NewUserRequestBuilder().Query("q").ParseAgents("a:1:may:extra").Build()
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.build()
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestParseAgents(t *testing.T) {
	req, err := NewUserRequestBuilder().
		Query("q").
		ParseAgents("optimist, skeptic:2, coordinator:1:must").
		Build()
	require.NoError(t, err)

	require.Len(t, req.Agents, 3)
	assert.Equal(t, AgentSpec{Count: 1, Name: "optimist"}, req.Agents[0])
	assert.Equal(t, AgentSpec{Count: 2, Name: "skeptic"}, req.Agents[1])
	assert.Equal(t, AgentSpec{Count: 1, RecursionPolicy: RecursionPolicyMust, Name: "coordinator"}, req.Agents[2])
}

func TestParseRecursionPolicy(t *testing.T) {
	tests := []struct {
		in   string
		want RecursionPolicy
	}{
		{"may", RecursionPolicyMay},
		{"MUST", RecursionPolicyMust},
		{"must_not", RecursionPolicyMustNot},
		{"no", RecursionPolicyMustNot},
	}
	for _, tt := range tests {
		got, err := ParseRecursionPolicy(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseRecursionPolicy("always")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestBuilderReuseDoesNotAlias(t *testing.T) {
	b := NewUserRequestBuilder().Query("q").AddAgent(1, RecursionPolicyMay, "a")
	first, err := b.Build()
	require.NoError(t, err)

	b.AddAgent(1, RecursionPolicyMust, "b")
	second, err := b.Build()
	require.NoError(t, err)

	assert.Len(t, first.Agents, 1)
	assert.Len(t, second.Agents, 2)
}
