package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/a2aproject/a2a-go/a2a"

	"github.com/quorumlabs/simcore/core"
	"github.com/quorumlabs/simcore/internal/util"
	"github.com/quorumlabs/simcore/model"
	"github.com/quorumlabs/simcore/prompt"
)

// Strategy executes one logical agent against a simulation input. It must be
// pure with respect to external state except for the single external
// capability call it makes, and must tag its response with its own identity.
type Strategy interface {
	ExecuteAgent(ctx context.Context, input *core.SimulationInput, spec core.AgentSpec, index int) (core.AgentResponse, error)
}

// strategyFor constructs the per-call strategy instance for the given tag.
func (o *Orchestrator) strategyFor(tag core.ExecutionStrategy, task *a2a.Task, tracker *depthTracker) Strategy {
	if tag == core.StrategyDirect {
		return &DirectStrategy{orch: o}
	}
	return &ProtocolMediatedStrategy{orch: o, task: task, tracker: tracker}
}

// renderMemberQuery renders per-member template variables ({{.AgentName}},
// {{.AgentIndex}}) into the query text. Queries that are not valid templates
// pass through verbatim, so literal braces in user text never fail a run.
func renderMemberQuery(query string, spec core.AgentSpec, index int) string {
	name := spec.Name
	if name == "" {
		name = fmt.Sprintf("agent-%d", index+1)
	}
	rendered, err := util.RenderTemplate(query, map[string]any{
		"AgentName":  name,
		"AgentIndex": index,
	})
	if err != nil {
		return query
	}
	return rendered
}

// lookupPersona resolves the persona for a named agent spec. A missing name
// hint or an unmatched directory entry simply yields no persona; only the
// persona section is affected, never the execution itself.
func lookupPersona(ctx context.Context, registry core.Registry, name string) *core.Persona {
	if name == "" || registry == nil {
		return nil
	}
	descriptor, err := registry.FindAgent(ctx, core.FindCriteria{Name: name})
	if err != nil {
		return nil
	}
	return descriptor.Persona
}

// invokeEngine assembles the contextual prompt for one agent execution and
// performs the single reasoning engine call. The concurrency limiter is held
// only for the duration of the engine call itself, never across recursive
// child executions, so nested teams cannot starve each other of slots.
func (o *Orchestrator) invokeEngine(ctx context.Context, input *core.SimulationInput, spec core.AgentSpec, index int, taskID a2a.TaskID) (string, error) {
	query := renderMemberQuery(input.Query, spec, index)
	persona := lookupPersona(ctx, o.registry, spec.Name)

	builder := prompt.NewBuilder().
		SetCoreContent("## Query\n" + query).
		WithPersona(persona)
	if input.Context != "" {
		builder.AddPrefix(input.Context)
	}
	if input.ContextID != "" {
		builder.WithTaskContext("context_id", input.ContextID)
	}
	if taskID != "" {
		builder.WithTaskContext("task_id", string(taskID))
	}
	assembled, err := builder.Build(input)
	if err != nil {
		return "", fmt.Errorf("%w: assemble prompt: %v", core.ErrInvocation, err)
	}

	req := model.Request{
		Messages: []*a2a.Message{assembled.MessageTemplate(input.ContextID, taskID, a2a.MessageRoleUser)},
	}
	applyModelSpec(&req, input, spec, o.cfg.DefaultModel)

	if err := o.limiter.Acquire(ctx); err != nil {
		return "", fmt.Errorf("%w: acquire execution slot: %v", core.ErrInvocation, err)
	}
	defer o.limiter.Release()

	start := time.Now()
	resp, err := o.engine.Generate(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%w: reasoning engine call failed: %v", core.ErrInvocation, err)
	}
	o.LogDebug("model call completed", "model", req.Model, "duration", time.Since(start).String())
	return resp.Text, nil
}

// applyModelSpec resolves the effective model selection: the spec-level
// override wins over the request-level spec, which wins over the default.
func applyModelSpec(req *model.Request, input *core.SimulationInput, spec core.AgentSpec, defaultModel string) {
	req.Model = defaultModel
	apply := func(ms *core.ModelSpec) {
		if ms == nil {
			return
		}
		if ms.Model != "" {
			req.Model = ms.Model
		}
		if ms.Temperature != nil {
			req.Temperature = ms.Temperature
		}
	}
	apply(input.ModelSpec)
	apply(spec.ModelSpec)
}
