package core

import (
	"time"

	"github.com/a2aproject/a2a-go/a2a"
)

// ExecutionStatus is the coarse result classification of one orchestration.
type ExecutionStatus int

const (
	// ExecutionStatusUnspecified is the zero value.
	ExecutionStatusUnspecified ExecutionStatus = iota
	// ExecutionStatusSuccess marks a fully completed orchestration.
	ExecutionStatusSuccess
	// ExecutionStatusFailure marks a failed orchestration.
	ExecutionStatusFailure
)

// ExecutionResult carries the status and, on failure, a human-readable cause.
type ExecutionResult struct {
	Status    ExecutionStatus `json:"status"`
	ErrorInfo string          `json:"error_info,omitempty"`
}

// AgentResponse is the result of one logical agent execution. Responses are
// aggregated across executions before being rendered into protocol entities.
type AgentResponse struct {
	// Text is the plain response text.
	Text string `json:"text_response"`
	// OutputModes lists MIME-like mode tags in first-seen order.
	OutputModes []string `json:"output_modes,omitempty"`
	// Structured optionally carries a machine-readable payload.
	Structured map[string]any `json:"structured,omitempty"`
	// Strategy identifies the execution strategy that produced the response.
	Strategy ExecutionStrategy `json:"strategy"`
}

// SimulationOutput is the terminal result of one orchestration call. It is
// assembled once and never mutated after return.
type SimulationOutput struct {
	// ContextID always equals the input's ContextID.
	ContextID string `json:"context_id"`

	// FinalState is the terminal protocol task state.
	FinalState a2a.TaskState `json:"final_state"`

	// ResponseMessage is the single aggregated protocol message.
	ResponseMessage *a2a.Message `json:"response_message,omitempty"`
	// ResponseArtifacts preserve insertion order through aggregation.
	ResponseArtifacts []*a2a.Artifact `json:"response_artifacts,omitempty"`
	// SimulationTask is a snapshot of the protocol task that carried the
	// request through its lifecycle.
	SimulationTask *a2a.Task `json:"simulation_task,omitempty"`

	Result ExecutionResult `json:"execution_result"`

	// TotalTime is the wall-clock duration of the orchestration call.
	TotalTime time.Duration `json:"total_time"`
	// TeamSize is the sum of all AgentSpec counts.
	TeamSize int `json:"team_size"`
	// RecursionDepth is the deepest depth reached by any executed sub-call.
	RecursionDepth int `json:"recursion_depth"`
	// Strategies lists the distinct strategies actually used, in invocation
	// order.
	Strategies []ExecutionStrategy `json:"execution_strategies,omitempty"`
}
