package orchestrator

import (
	"context"
	"fmt"

	"github.com/a2aproject/a2a-go/a2a"
	"github.com/google/uuid"

	"github.com/quorumlabs/simcore/core"
	"github.com/quorumlabs/simcore/model"
)

// ProtocolMediatedStrategy executes agents through protocol Message/Task
// entities and may perform team formation with bounded recursion. Recursion
// policy handling:
//
//   - MUST_NOT never forms a team; the engine runs inside the protocol
//     wrapper.
//   - MUST requires recursion; an exhausted depth budget is a depth-exceeded
//     error, checked before any external call.
//   - MAY recurses while the depth budget allows and otherwise executes
//     locally without team formation.
type ProtocolMediatedStrategy struct {
	orch    *Orchestrator
	task    *a2a.Task
	tracker *depthTracker
}

// ExecuteAgent implements Strategy.
func (s *ProtocolMediatedStrategy) ExecuteAgent(ctx context.Context, input *core.SimulationInput, spec core.AgentSpec, index int) (core.AgentResponse, error) {
	policy := spec.RecursionPolicy
	if policy == core.RecursionPolicyUnspecified {
		policy = core.RecursionPolicyMay
	}

	switch policy {
	case core.RecursionPolicyMustNot:
		return s.executeLocal(ctx, input, spec, index)
	case core.RecursionPolicyMust:
		if input.Depth+1 > input.MaxDepth {
			return core.AgentResponse{}, fmt.Errorf(
				"%w: policy MUST requires recursion to depth %d beyond max depth %d",
				core.ErrDepthExceeded, input.Depth+1, input.MaxDepth,
			)
		}
		return s.recurse(ctx, input, spec, index)
	default:
		if input.Depth+1 > input.MaxDepth {
			return s.executeLocal(ctx, input, spec, index)
		}
		return s.recurse(ctx, input, spec, index)
	}
}

// executeLocal runs the reasoning engine within the protocol wrapper bound to
// this orchestration's task, without forming a team.
func (s *ProtocolMediatedStrategy) executeLocal(ctx context.Context, input *core.SimulationInput, spec core.AgentSpec, index int) (core.AgentResponse, error) {
	text, err := s.orch.invokeEngine(ctx, input, spec, index, s.task.ID)
	if err != nil {
		return core.AgentResponse{}, err
	}
	return core.AgentResponse{
		Text:        text,
		OutputModes: []string{"text/plain"},
		Strategy:    core.StrategyProtocol,
	}, nil
}

// recurse forms a team and executes one nested orchestration per member with
// the recursion depth incremented by one. Children complete (or fail) before
// the member responses are aggregated.
func (s *ProtocolMediatedStrategy) recurse(ctx context.Context, input *core.SimulationInput, spec core.AgentSpec, index int) (core.AgentResponse, error) {
	teamSize := s.orch.cfg.DefaultTeamSize
	members, err := s.orch.factory.New(s.orch.formation).Select(ctx, s.orch.registry, teamSize)
	if err != nil {
		return core.AgentResponse{}, err
	}
	s.orch.LogInfo("team formed",
		"context_id", input.ContextID,
		"formation", s.orch.formation.String(),
		"team_size", len(members),
		"depth", input.Depth+1,
	)

	responses := make([]core.AgentResponse, 0, len(members))
	for i, member := range members {
		child := input.Clone()
		child.ContextID = uuid.NewString()
		child.ParentContextID = input.ContextID
		child.Depth = input.Depth + 1
		child.MinDepth = 0
		child.Strategy = core.StrategyUnspecified
		child.Agents = []core.AgentSpec{{Count: 1, RecursionPolicy: core.RecursionPolicyMay, Name: member.Name}}

		out, err := s.orch.ExecuteInput(ctx, child)
		if err != nil {
			return core.AgentResponse{}, &core.TeamMemberExecutionError{Member: member.Name, Index: i, Err: err}
		}
		s.tracker.Observe(out.RecursionDepth)
		responses = append(responses, core.AgentResponse{
			Text:        model.MessageText(out.ResponseMessage),
			OutputModes: []string{"text/plain"},
			Strategy:    core.StrategyProtocol,
		})
	}

	aggregated, err := AggregateResponses(responses)
	if err != nil {
		return core.AgentResponse{}, err
	}
	aggregated.Strategy = core.StrategyProtocol
	return aggregated, nil
}
