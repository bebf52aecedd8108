package a2a

import (
	"testing"

	"github.com/a2aproject/a2a-go/a2a"
	"github.com/a2aproject/a2a-go/a2asrv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToSimulationInput(t *testing.T) {
	reqCtx := &a2asrv.RequestContext{
		TaskID:    a2a.TaskID("task-1"),
		ContextID: "ctx-1",
		Message: &a2a.Message{
			Role: a2a.MessageRoleUser,
			Parts: []a2a.Part{
				a2a.TextPart{Text: "Summarize the findings"},
				a2a.DataPart{Data: map[string]any{"domain": "energy"}},
				a2a.TextPart{Text: "in two sentences."},
			},
		},
	}

	input, err := toSimulationInput(reqCtx)
	require.NoError(t, err)

	assert.Equal(t, "ctx-1", input.ContextID)
	assert.Equal(t, "Summarize the findings\nin two sentences.", input.Query)
	assert.Equal(t, map[string]any{"domain": "energy"}, input.StructuredData)
	require.Len(t, input.Agents, 1)
	assert.Equal(t, 1, input.Agents[0].Count)
}

func TestToSimulationInputNoText(t *testing.T) {
	reqCtx := &a2asrv.RequestContext{
		ContextID: "ctx-1",
		Message: &a2a.Message{
			Role:  a2a.MessageRoleUser,
			Parts: []a2a.Part{a2a.DataPart{Data: map[string]any{"k": "v"}}},
		},
	}

	_, err := toSimulationInput(reqCtx)
	assert.Error(t, err)
}
