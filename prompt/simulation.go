package prompt

import (
	"github.com/quorumlabs/simcore/core"
)

const (
	simulationPrefix = "You are participating in a multi-agent simulation designed to explore complex scenarios " +
		"through coordinated interaction between specialized agents."
	simulationSuffix = "Please provide a thoughtful response that leverages your specific expertise " +
		"and contributes meaningfully to the overall simulation."
)

// SimulationPrompt creates a prompt with the standard simulation framing: a
// fixed prefix and suffix around a "## Query" core block, optionally carrying
// the agent persona and context/task identifiers as task context.
func SimulationPrompt(query string, persona *core.Persona, contextID, taskID string) *ContextualPrompt {
	b := NewBuilder().
		AddPrefix(simulationPrefix).
		SetCoreContent("## Query\n" + query).
		AddSuffix(simulationSuffix)
	if persona != nil {
		b.WithPersona(persona)
	}
	if contextID != "" {
		b.WithTaskContext("context_id", contextID)
	}
	if taskID != "" {
		b.WithTaskContext("task_id", taskID)
	}
	// Only static fragments above so Build cannot fail.
	p, _ := b.Build(nil)
	return p
}
