// Package simcore provides a high-level façade over the orchestration core
// and its supporting services (registry, artifact store & logging) enabling
// rapid construction of multi-agent simulation systems. Most applications
// interact with this package by:
//  1. Creating a Simulation via New() with a reasoning engine (optionally
//     overriding the default in-memory services)
//  2. Registering one or more agent descriptors in the capability directory
//  3. Submitting user requests (ProcessUserRequest) or pre-normalized inputs
//     (ProcessSimulationInput)
//
// The façade delegates orchestration to orchestrator.Orchestrator while
// keeping setup and usage ergonomics concise. All defaults are safe for local
// development and testing; production deployments typically supply a durable
// artifact store and a structured logger.
package simcore

import (
	"context"

	"github.com/a2aproject/a2a-go/a2a"

	"github.com/quorumlabs/simcore/config"
	"github.com/quorumlabs/simcore/core"
	"github.com/quorumlabs/simcore/logging"
	"github.com/quorumlabs/simcore/model"
	"github.com/quorumlabs/simcore/orchestrator"
	"github.com/quorumlabs/simcore/registry"
	"github.com/quorumlabs/simcore/team"
)

// Options configures the Simulation instance.
type Options struct {
	// Config supplies orchestration defaults (model, depth budget, team
	// size, concurrency). Nil falls back to config.Default().
	Config *config.Config

	// Registry is the capability directory consulted for personas and team
	// formation. Defaults to an empty in-memory registry.
	Registry core.Registry

	// ArtifactStore receives response artifacts per context. Defaults to an
	// in-memory store.
	ArtifactStore orchestrator.ArtifactStore

	// TeamFormation selects how recursive sub-invocations form their teams.
	TeamFormation team.FormationStrategy

	// Sequential runs agent executions in spec order instead of concurrently.
	Sequential bool

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// Simulation is the high-level façade aggregating the orchestrator and its
// services.
type Simulation struct {
	opts Options
	orch *orchestrator.Orchestrator
}

// New creates a new Simulation backed by the given reasoning engine. Any
// unset service is initialized with an in-memory implementation.
func New(engine model.Model, optFns ...func(o *Options)) *Simulation {
	opts := Options{
		Registry: registry.NewInMemoryRegistry(),
		Logger:   logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	orch := orchestrator.New(opts.Registry, engine, opts.Config, func(o *orchestrator.Options) {
		o.Logger = opts.Logger
		o.Sequential = opts.Sequential
		o.TeamFormation = opts.TeamFormation
		o.ArtifactStore = opts.ArtifactStore
	})

	return &Simulation{opts: opts, orch: orch}
}

// RegisterAgent adds a descriptor to the capability directory. It is a no-op
// when the configured registry does not support registration.
func (s *Simulation) RegisterAgent(agent core.AgentDescriptor) {
	if r, ok := s.opts.Registry.(interface{ Register(core.AgentDescriptor) }); ok {
		r.Register(agent)
	}
}

// ProcessUserRequest normalizes and executes a user request.
func (s *Simulation) ProcessUserRequest(ctx context.Context, req *core.UserRequest) (*core.SimulationOutput, error) {
	return s.orch.Execute(ctx, req)
}

// ProcessSimulationInput executes a pre-normalized simulation input. A
// caller-assigned context id is preserved end to end.
func (s *Simulation) ProcessSimulationInput(ctx context.Context, input *core.SimulationInput) (*core.SimulationOutput, error) {
	return s.orch.ExecuteInput(ctx, input)
}

// ProcessQuery is a convenience wrapper that builds and executes a request
// holding only a query with defaults for everything else.
func (s *Simulation) ProcessQuery(ctx context.Context, query string) (*core.SimulationOutput, error) {
	req, err := core.NewUserRequestBuilder().Query(query).Build()
	if err != nil {
		return nil, err
	}
	return s.orch.Execute(ctx, req)
}

// ContextStatus returns snapshots of every task recorded for a context id,
// oldest first.
func (s *Simulation) ContextStatus(contextID string) []*a2a.Task {
	return s.orch.TasksByContext(contextID)
}

// Task returns a snapshot of one tracked protocol task.
func (s *Simulation) Task(id a2a.TaskID) (*a2a.Task, error) {
	return s.orch.TaskByID(id)
}

// Orchestrator exposes the underlying orchestrator for advanced wiring such
// as protocol adapters.
func (s *Simulation) Orchestrator() *orchestrator.Orchestrator {
	return s.orch
}

// Health reports whether the capability directory is reachable and how many
// agents it currently lists. An empty directory is healthy; direct execution
// needs no registry entries.
func (s *Simulation) Health(ctx context.Context) (*HealthStatus, error) {
	agents, err := s.opts.Registry.ListAgents(ctx)
	if err != nil {
		return nil, err
	}
	return &HealthStatus{Healthy: true, RegisteredAgents: len(agents)}, nil
}

// HealthStatus summarizes service readiness.
type HealthStatus struct {
	Healthy          bool `json:"healthy"`
	RegisteredAgents int  `json:"registered_agents"`
}
