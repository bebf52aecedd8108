package orchestrator

import (
	"fmt"
	"strings"

	"github.com/quorumlabs/simcore/core"
)

// AggregateResponses deterministically folds N agent responses into one.
//
// The aggregated text concatenates, in input order, "Agent {i+1}: " blocks
// (1-indexed) separated by a blank line. Output modes are the de-duplicated
// union preserving first-seen order. Structured payloads merge per key with
// the first writer winning. Aggregation is identity for a single response: no
// prefix is added and its content returns unchanged. An empty input list is a
// validation error, since an orchestration must execute at least one agent.
func AggregateResponses(responses []core.AgentResponse) (core.AgentResponse, error) {
	if len(responses) == 0 {
		return core.AgentResponse{}, fmt.Errorf("%w: cannot aggregate zero agent responses", core.ErrValidation)
	}
	if len(responses) == 1 {
		return responses[0], nil
	}

	blocks := make([]string, len(responses))
	for i, resp := range responses {
		blocks[i] = fmt.Sprintf("Agent %d: %s", i+1, resp.Text)
	}

	var modes []string
	seenModes := map[string]bool{}
	var structured map[string]any
	for _, resp := range responses {
		for _, mode := range resp.OutputModes {
			if !seenModes[mode] {
				seenModes[mode] = true
				modes = append(modes, mode)
			}
		}
		for k, v := range resp.Structured {
			if structured == nil {
				structured = map[string]any{}
			}
			if _, ok := structured[k]; !ok {
				structured[k] = v
			}
		}
	}

	return core.AgentResponse{
		Text:        strings.Join(blocks, "\n\n"),
		OutputModes: modes,
		Structured:  structured,
		Strategy:    responses[0].Strategy,
	}, nil
}
