package orchestrator

import (
	"context"

	"github.com/quorumlabs/simcore/core"
)

// DirectStrategy invokes the reasoning engine exactly once with the assembled
// prompt and no team formation capability. It is selected only when recursion
// is explicitly forbidden for the single requested agent. Engine failures
// surface as invocation errors; the strategy never retries or downgrades.
type DirectStrategy struct {
	orch *Orchestrator
}

// ExecuteAgent implements Strategy.
func (s *DirectStrategy) ExecuteAgent(ctx context.Context, input *core.SimulationInput, spec core.AgentSpec, index int) (core.AgentResponse, error) {
	text, err := s.orch.invokeEngine(ctx, input, spec, index, "")
	if err != nil {
		return core.AgentResponse{}, err
	}
	return core.AgentResponse{
		Text:        text,
		OutputModes: []string{"text/plain"},
		Strategy:    core.StrategyDirect,
	}, nil
}
