package core

import "github.com/a2aproject/a2a-go/a2a"

// ExecutionStrategy tags how a logical agent execution is carried out.
type ExecutionStrategy int

const (
	// StrategyUnspecified lets the orchestrator pick per its selection rule.
	StrategyUnspecified ExecutionStrategy = iota
	// StrategyDirect executes a single reasoning engine call without any
	// team formation capability.
	StrategyDirect
	// StrategyProtocol executes through protocol Message/Task entities and
	// may perform team formation and bounded recursion.
	StrategyProtocol
)

// String returns a stable label for logs and output metadata.
func (s ExecutionStrategy) String() string {
	switch s {
	case StrategyDirect:
		return "direct"
	case StrategyProtocol:
		return "protocol"
	default:
		return "unspecified"
	}
}

// SimulationInput is the normalized, immutable execution request produced
// from a UserRequest. It is created once by the orchestrator and never
// mutated afterwards; recursive sub-invocations derive fresh inputs.
type SimulationInput struct {
	// ContextID correlates this request across nested executions. It must be
	// echoed unchanged in the corresponding SimulationOutput.
	ContextID string `json:"context_id"`
	// ParentContextID links a recursive call to the context that spawned it.
	ParentContextID string `json:"parent_context_id,omitempty"`

	Query          string         `json:"query"`
	Context        string         `json:"context,omitempty"`
	StructuredData map[string]any `json:"structured_data,omitempty"`
	ModelSpec      *ModelSpec     `json:"model_spec,omitempty"`

	// Strategy is the execution strategy tag; StrategyUnspecified defers to
	// the orchestrator's selection rule.
	Strategy ExecutionStrategy `json:"execution_strategy"`

	// Depth is the current recursion depth; 0 is the top-level call.
	Depth int `json:"depth"`
	// MinDepth and MaxDepth bound recursive team formation. Depth+1 beyond
	// MaxDepth is rejected before any external call is issued.
	MinDepth int `json:"min_depth"`
	MaxDepth int `json:"max_depth"`

	Agents []AgentSpec `json:"agents"`

	// InputArtifacts are supplied by the caller in order and flow into the
	// protocol Task created for this request.
	InputArtifacts []*a2a.Artifact `json:"input_artifacts,omitempty"`
}

// Clone returns a copy with its own spec and artifact slice headers so each
// execution can operate on an isolated view of the input.
func (in *SimulationInput) Clone() *SimulationInput {
	c := *in
	c.Agents = append([]AgentSpec(nil), in.Agents...)
	c.InputArtifacts = append([]*a2a.Artifact(nil), in.InputArtifacts...)
	if in.StructuredData != nil {
		c.StructuredData = make(map[string]any, len(in.StructuredData))
		for k, v := range in.StructuredData {
			c.StructuredData[k] = v
		}
	}
	return &c
}

// TeamSize returns the total number of individual executions this input
// expands to (the sum of all AgentSpec counts).
func (in *SimulationInput) TeamSize() int {
	total := 0
	for _, spec := range in.Agents {
		total += spec.Count
	}
	return total
}
