package a2a

import (
	"context"
	"fmt"
	"strings"

	"github.com/a2aproject/a2a-go/a2a"
	"github.com/a2aproject/a2a-go/a2asrv"
	"github.com/a2aproject/a2a-go/a2asrv/eventqueue"
	"github.com/google/uuid"

	"github.com/quorumlabs/simcore/core"
)

// Simulator runs a normalized simulation input to completion.
type Simulator interface {
	ExecuteInput(ctx context.Context, input *core.SimulationInput) (*core.SimulationOutput, error)
}

// agentExecutor bridges simulations to the A2A server runtime.
//
// Event translation follows these rules:
//   - New task: emit TaskStatusUpdateEvent with TaskStateSubmitted
//   - Before execution: emit TaskStatusUpdateEvent with TaskStateWorking
//   - For each response artifact: emit TaskArtifactUpdateEvent, the last
//     one with LastChunk set
//   - On success: emit a final TaskStatusUpdateEvent with TaskStateCompleted
//   - On failure: emit a final TaskStatusUpdateEvent with TaskStateFailed
type agentExecutor struct {
	sim Simulator
}

// NewAgentExecutor wraps a simulator in an a2asrv.AgentExecutor.
func NewAgentExecutor(sim Simulator) a2asrv.AgentExecutor {
	return &agentExecutor{sim: sim}
}

// Execute runs one simulation for the incoming request and writes the
// resulting protocol events to the queue. Simulation failures are reported
// as a terminal FAILED status event, not as an Execute error.
func (ae *agentExecutor) Execute(ctx context.Context, reqCtx *a2asrv.RequestContext, queue eventqueue.Queue) error {
	if reqCtx.Message == nil {
		return fmt.Errorf("message not provided")
	}

	input, err := toSimulationInput(reqCtx)
	if err != nil {
		return fmt.Errorf("message conversion failed: %w", err)
	}

	if reqCtx.StoredTask == nil {
		event := a2a.NewStatusUpdateEvent(reqCtx, a2a.TaskStateSubmitted, nil)
		if err := queue.Write(ctx, event); err != nil {
			return fmt.Errorf("failed to write submitted event: %w", err)
		}
	}

	workingEvent := a2a.NewStatusUpdateEvent(reqCtx, a2a.TaskStateWorking, nil)
	if err := queue.Write(ctx, workingEvent); err != nil {
		return err
	}

	out, err := ae.sim.ExecuteInput(ctx, input)
	if err != nil {
		failedEvent := a2a.NewStatusUpdateEvent(reqCtx, a2a.TaskStateFailed, nil)
		failedEvent.Final = true
		failedEvent.Status.Message = statusMessage(reqCtx, err.Error())
		if writeErr := queue.Write(ctx, failedEvent); writeErr != nil {
			return fmt.Errorf("failed to write error event: %w (original: %w)", writeErr, err)
		}
		return nil
	}

	for i, art := range out.ResponseArtifacts {
		event := &a2a.TaskArtifactUpdateEvent{
			TaskID:    reqCtx.TaskID,
			ContextID: reqCtx.ContextID,
			Artifact:  art,
			LastChunk: i == len(out.ResponseArtifacts)-1,
		}
		if err := queue.Write(ctx, event); err != nil {
			return fmt.Errorf("failed to write artifact event: %w", err)
		}
	}

	completedEvent := a2a.NewStatusUpdateEvent(reqCtx, a2a.TaskStateCompleted, nil)
	completedEvent.Final = true
	completedEvent.Status.Message = out.ResponseMessage
	if err := queue.Write(ctx, completedEvent); err != nil {
		return fmt.Errorf("failed to write completed event: %w", err)
	}
	return nil
}

// Cancel publishes a terminal CANCELED status for the task. Simulations run
// to completion under their invocation context, so cancellation here only
// acknowledges the request on the wire.
func (ae *agentExecutor) Cancel(ctx context.Context, reqCtx *a2asrv.RequestContext, queue eventqueue.Queue) error {
	event := a2a.NewStatusUpdateEvent(reqCtx, a2a.TaskStateCanceled, nil)
	event.Final = true
	return queue.Write(ctx, event)
}

// toSimulationInput converts the request message into a simulation input:
// text parts become the query, data parts merge into the structured payload.
func toSimulationInput(reqCtx *a2asrv.RequestContext) (*core.SimulationInput, error) {
	msg := reqCtx.Message

	var (
		texts      []string
		structured map[string]any
	)
	for _, part := range msg.Parts {
		switch p := part.(type) {
		case a2a.TextPart:
			texts = append(texts, p.Text)
		case a2a.DataPart:
			if structured == nil {
				structured = make(map[string]any, len(p.Data))
			}
			for k, v := range p.Data {
				structured[k] = v
			}
		}
	}

	query := strings.TrimSpace(strings.Join(texts, "\n"))
	if query == "" {
		return nil, fmt.Errorf("message contains no text parts")
	}

	return &core.SimulationInput{
		ContextID:      reqCtx.ContextID,
		Query:          query,
		StructuredData: structured,
		Agents:         []core.AgentSpec{{Count: 1, RecursionPolicy: core.RecursionPolicyMay}},
	}, nil
}

func statusMessage(reqCtx *a2asrv.RequestContext, text string) *a2a.Message {
	return &a2a.Message{
		ID:        uuid.NewString(),
		ContextID: reqCtx.ContextID,
		TaskID:    reqCtx.TaskID,
		Role:      a2a.MessageRoleAgent,
		Parts:     []a2a.Part{a2a.TextPart{Text: text}},
	}
}

var _ a2asrv.AgentExecutor = (*agentExecutor)(nil)
