package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/a2aproject/a2a-go/a2a"
	"github.com/google/uuid"

	"github.com/quorumlabs/simcore/artifact"
	"github.com/quorumlabs/simcore/config"
	"github.com/quorumlabs/simcore/core"
	"github.com/quorumlabs/simcore/logging"
	"github.com/quorumlabs/simcore/model"
	"github.com/quorumlabs/simcore/team"
)

// ArtifactStore receives the response artifacts produced per context.
type ArtifactStore interface {
	Save(contextID string, artifacts ...*a2a.Artifact) error
}

// Options configures orchestrator construction.
type Options struct {
	// Logger receives orchestration events; nil means no logging.
	Logger logging.Logger

	// Sequential runs agent executions in spec order instead of concurrently.
	Sequential bool

	// TeamFormation selects how recursive sub-invocations form their teams.
	TeamFormation team.FormationStrategy

	// TeamFactory overrides the default team factory.
	TeamFactory *team.Factory

	// ArtifactStore overrides the default in-memory artifact store.
	ArtifactStore ArtifactStore
}

// WithSequential runs the per-spec executions one after another, preserving
// spec order. Useful for deterministic debugging and rate-limited engines.
func WithSequential() func(o *Options) {
	return func(o *Options) { o.Sequential = true }
}

// WithLogger attaches a logger.
func WithLogger(l logging.Logger) func(o *Options) {
	return func(o *Options) { o.Logger = l }
}

// WithTeamFormation sets the formation strategy for recursive team selection.
func WithTeamFormation(s team.FormationStrategy) func(o *Options) {
	return func(o *Options) { o.TeamFormation = s }
}

// Orchestrator converts user requests into simulation outputs. It is safe for
// concurrent use; per-call state lives on the stack of each Execute call.
type Orchestrator struct {
	*core.LoggerAdapter
	registry   core.Registry
	engine     model.Model
	cfg        *config.Config
	factory    *team.Factory
	formation  team.FormationStrategy
	limiter    *core.Limiter
	artifacts  ArtifactStore
	tasks      *taskStore
	sequential bool
}

// New creates an orchestrator backed by the given capability registry and
// reasoning engine. A nil cfg falls back to config.Default().
func New(registry core.Registry, engine model.Model, cfg *config.Config, optFns ...func(o *Options)) *Orchestrator {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}
	if cfg == nil {
		cfg = config.Default()
	}
	factory := opts.TeamFactory
	if factory == nil {
		factory = team.NewFactory(func(o *team.Options) {
			if opts.Logger != nil {
				o.Logger = opts.Logger
			}
		})
	}
	store := opts.ArtifactStore
	if store == nil {
		store = artifact.NewInMemoryStore()
	}
	return &Orchestrator{
		LoggerAdapter: core.NewLoggerAdapter(opts.Logger),
		registry:      registry,
		engine:        engine,
		cfg:           cfg,
		factory:       factory,
		formation:     opts.TeamFormation,
		limiter:       core.NewLimiter(cfg.MaxConcurrentExecutions),
		artifacts:     store,
		tasks:         newTaskStore(),
		sequential:    opts.Sequential,
	}
}

// Normalize converts a user request into a simulation input with a fresh
// context id. Query, context, structured data, model spec and max depth are
// copied verbatim; validation failures surface before any execution begins.
func (o *Orchestrator) Normalize(req *core.UserRequest) (*core.SimulationInput, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: request is nil", core.ErrValidation)
	}
	if strings.TrimSpace(req.Query) == "" {
		return nil, fmt.Errorf("%w: query cannot be empty", core.ErrValidation)
	}
	if req.ModelSpec != nil && req.ModelSpec.Temperature != nil {
		if t := *req.ModelSpec.Temperature; t < 0 || t > 2 {
			return nil, fmt.Errorf("%w: temperature must be between 0.0 and 2.0, got %v", core.ErrValidation, t)
		}
	}
	maxDepth := req.MaxDepth
	if maxDepth == 0 {
		maxDepth = o.cfg.DefaultMaxDepth
	}
	if maxDepth < 1 {
		return nil, fmt.Errorf("%w: max depth must be at least 1, got %d", core.ErrValidation, maxDepth)
	}
	if maxDepth > o.cfg.MaxDepthCeiling {
		return nil, fmt.Errorf("%w: max depth %d exceeds configured ceiling %d", core.ErrValidation, maxDepth, o.cfg.MaxDepthCeiling)
	}
	agents := req.Agents
	if len(agents) == 0 {
		agents = []core.AgentSpec{{Count: 1, RecursionPolicy: core.RecursionPolicyMay}}
	}
	for _, spec := range agents {
		if spec.Count < 1 {
			return nil, fmt.Errorf("%w: agent count must be at least 1, got %d", core.ErrValidation, spec.Count)
		}
	}

	input := &core.SimulationInput{
		ContextID:      uuid.NewString(),
		Query:          req.Query,
		Context:        req.Context,
		StructuredData: req.StructuredData,
		ModelSpec:      req.ModelSpec,
		Depth:          0,
		MaxDepth:       maxDepth,
		Agents:         append([]core.AgentSpec(nil), agents...),
	}
	input.Strategy = o.SelectStrategy(input)
	return input, nil
}

// SelectStrategy applies the deterministic strategy selection rule: exactly
// one spec with count 1 and policy MUST_NOT selects direct execution; every
// other valid input selects protocol-mediated execution. Pure and total.
func (o *Orchestrator) SelectStrategy(input *core.SimulationInput) core.ExecutionStrategy {
	if len(input.Agents) == 1 &&
		input.Agents[0].Count == 1 &&
		input.Agents[0].RecursionPolicy == core.RecursionPolicyMustNot {
		return core.StrategyDirect
	}
	return core.StrategyProtocol
}

// Execute normalizes the request and runs the resulting simulation input.
func (o *Orchestrator) Execute(ctx context.Context, req *core.UserRequest) (*core.SimulationOutput, error) {
	input, err := o.Normalize(req)
	if err != nil {
		return nil, err
	}
	return o.ExecuteInput(ctx, input)
}

// ExecuteInput runs a simulation input. It is the entry point for recursive
// sub-invocations and protocol adapters; a caller-assigned context id is
// preserved, an empty one is replaced with a fresh id. On failure it returns
// (nil, err); a partial output never escapes.
func (o *Orchestrator) ExecuteInput(ctx context.Context, input *core.SimulationInput) (*core.SimulationOutput, error) {
	if err := o.validateInput(input); err != nil {
		return nil, err
	}

	input = input.Clone()
	if input.ContextID == "" {
		input.ContextID = uuid.NewString()
	}
	if input.MaxDepth == 0 {
		input.MaxDepth = o.cfg.DefaultMaxDepth
	}
	if input.Strategy == core.StrategyUnspecified {
		input.Strategy = o.SelectStrategy(input)
	}
	if input.MinDepth > input.Depth && allMustNot(input.Agents) {
		return nil, fmt.Errorf("%w: input requires recursion to depth %d but every agent spec forbids it", core.ErrPolicyViolation, input.MinDepth)
	}

	start := time.Now()
	task := o.openTask(input)
	logger := o.Logger()
	logger.Info("simulation started",
		"context_id", input.ContextID,
		"strategy", input.Strategy.String(),
		"team_size", input.TeamSize(),
		"depth", input.Depth,
	)

	tracker := &depthTracker{max: input.Depth}
	strat := o.strategyFor(input.Strategy, task, tracker)

	responses, err := o.runAll(ctx, strat, input)
	if err != nil {
		o.failTask(task, err)
		logger.Error("simulation failed", "context_id", input.ContextID, "error", err.Error())
		return nil, err
	}

	aggregated, err := AggregateResponses(responses)
	if err != nil {
		o.failTask(task, err)
		return nil, err
	}

	responseMsg := &a2a.Message{
		ID:        uuid.NewString(),
		ContextID: input.ContextID,
		TaskID:    task.ID,
		Role:      a2a.MessageRoleAgent,
		Parts:     []a2a.Part{a2a.TextPart{Text: aggregated.Text}},
	}
	artifacts := responseArtifacts(task.ID, responses)
	if err := o.artifacts.Save(input.ContextID, artifacts...); err != nil {
		o.failTask(task, err)
		return nil, fmt.Errorf("save artifacts: %w", err)
	}

	task.History = append(task.History, responseMsg)
	task.Artifacts = artifacts
	task.Status = a2a.TaskStatus{State: a2a.TaskStateCompleted, Message: responseMsg}
	o.tasks.Save(task)

	output := &core.SimulationOutput{
		ContextID:         input.ContextID,
		FinalState:        a2a.TaskStateCompleted,
		ResponseMessage:   responseMsg,
		ResponseArtifacts: artifacts,
		SimulationTask:    o.tasks.snapshot(task),
		Result:            core.ExecutionResult{Status: core.ExecutionStatusSuccess},
		TotalTime:         time.Since(start),
		TeamSize:          input.TeamSize(),
		RecursionDepth:    tracker.Max(),
		Strategies:        distinctStrategies(responses),
	}
	logger.Info("simulation completed",
		"context_id", input.ContextID,
		"total_time", output.TotalTime.String(),
		"recursion_depth", output.RecursionDepth,
	)
	return output, nil
}

// TaskByID returns a snapshot of the tracked protocol task.
func (o *Orchestrator) TaskByID(id a2a.TaskID) (*a2a.Task, error) {
	return o.tasks.TaskByID(id)
}

// TasksByContext returns snapshots of every task recorded for a context id,
// oldest first. Recursive sub-invocations appear under their own child
// context ids.
func (o *Orchestrator) TasksByContext(contextID string) []*a2a.Task {
	return o.tasks.TasksByContext(contextID)
}

func (o *Orchestrator) validateInput(input *core.SimulationInput) error {
	if input == nil {
		return fmt.Errorf("%w: input is nil", core.ErrValidation)
	}
	if strings.TrimSpace(input.Query) == "" {
		return fmt.Errorf("%w: query cannot be empty", core.ErrValidation)
	}
	if len(input.Agents) == 0 {
		return fmt.Errorf("%w: at least one agent spec is required", core.ErrValidation)
	}
	for _, spec := range input.Agents {
		if spec.Count < 1 {
			return fmt.Errorf("%w: agent count must be at least 1, got %d", core.ErrValidation, spec.Count)
		}
	}
	if input.Depth < 0 {
		return fmt.Errorf("%w: depth cannot be negative, got %d", core.ErrValidation, input.Depth)
	}
	maxDepth := input.MaxDepth
	if maxDepth == 0 {
		maxDepth = o.cfg.DefaultMaxDepth
	}
	if maxDepth < 1 || maxDepth > o.cfg.MaxDepthCeiling {
		return fmt.Errorf("%w: max depth %d outside [1, %d]", core.ErrValidation, maxDepth, o.cfg.MaxDepthCeiling)
	}
	if input.MinDepth > maxDepth {
		return fmt.Errorf("%w: min depth %d exceeds max depth %d", core.ErrValidation, input.MinDepth, maxDepth)
	}
	if input.ModelSpec != nil && input.ModelSpec.Temperature != nil {
		if t := *input.ModelSpec.Temperature; t < 0 || t > 2 {
			return fmt.Errorf("%w: temperature must be between 0.0 and 2.0, got %v", core.ErrValidation, t)
		}
	}
	return nil
}

// openTask creates the protocol task for this orchestration, records the
// SUBMITTED snapshot and moves it to WORKING before execution begins.
func (o *Orchestrator) openTask(input *core.SimulationInput) *a2a.Task {
	requestMsg := &a2a.Message{
		ID:        uuid.NewString(),
		ContextID: input.ContextID,
		Role:      a2a.MessageRoleUser,
		Parts:     []a2a.Part{a2a.TextPart{Text: input.Query}},
	}
	task := &a2a.Task{
		ID:        a2a.TaskID(uuid.NewString()),
		ContextID: input.ContextID,
		Status:    a2a.TaskStatus{State: a2a.TaskStateSubmitted},
		History:   []*a2a.Message{requestMsg},
		Artifacts: append([]*a2a.Artifact(nil), input.InputArtifacts...),
	}
	requestMsg.TaskID = task.ID
	o.tasks.Save(task)

	task.Status = a2a.TaskStatus{State: a2a.TaskStateWorking}
	o.tasks.Save(task)
	return task
}

func (o *Orchestrator) failTask(task *a2a.Task, cause error) {
	errMsg := &a2a.Message{
		ID:        uuid.NewString(),
		ContextID: task.ContextID,
		TaskID:    task.ID,
		Role:      a2a.MessageRoleAgent,
		Parts:     []a2a.Part{a2a.TextPart{Text: cause.Error()}},
	}
	task.Status = a2a.TaskStatus{State: a2a.TaskStateFailed, Message: errMsg}
	o.tasks.Save(task)
}

// job is one individual agent execution expanded from an AgentSpec.
type job struct {
	spec core.AgentSpec
	// memberIndex is the index within the spec (0..count-1).
	memberIndex int
}

func expandJobs(input *core.SimulationInput) []job {
	jobs := make([]job, 0, input.TeamSize())
	for _, spec := range input.Agents {
		for i := 0; i < spec.Count; i++ {
			jobs = append(jobs, job{spec: spec, memberIndex: i})
		}
	}
	return jobs
}

func memberName(j job, globalIndex int) string {
	if j.spec.Name != "" {
		return j.spec.Name
	}
	return fmt.Sprintf("agent-%d", globalIndex+1)
}

// runAll executes every expanded job and collects responses keyed by their
// originating index, regardless of completion order. The first failure
// cancels in-flight siblings and is surfaced as a TeamMemberExecutionError.
func (o *Orchestrator) runAll(ctx context.Context, strat Strategy, input *core.SimulationInput) ([]core.AgentResponse, error) {
	jobs := expandJobs(input)
	results := make([]core.AgentResponse, len(jobs))

	if o.sequential {
		for i, j := range jobs {
			resp, err := strat.ExecuteAgent(ctx, input, j.spec, j.memberIndex)
			if err != nil {
				return nil, &core.TeamMemberExecutionError{Member: memberName(j, i), Index: i, Err: err}
			}
			results[i] = resp
		}
		return results, nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	fail := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		if firstErr == nil {
			firstErr = err
			cancel()
		}
	}

	for i, j := range jobs {
		wg.Add(1)
		go func(i int, j job) {
			defer wg.Done()
			resp, err := strat.ExecuteAgent(runCtx, input, j.spec, j.memberIndex)
			if err != nil {
				fail(&core.TeamMemberExecutionError{Member: memberName(j, i), Index: i, Err: err})
				return
			}
			results[i] = resp
		}(i, j)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return results, nil
}

// responseArtifacts renders one artifact per agent response, preserving
// execution index order.
func responseArtifacts(taskID a2a.TaskID, responses []core.AgentResponse) []*a2a.Artifact {
	artifacts := make([]*a2a.Artifact, len(responses))
	for i, resp := range responses {
		artifacts[i] = &a2a.Artifact{
			ID:          a2a.ArtifactID(uuid.NewString()),
			Name:        fmt.Sprintf("agent-%d-response", i+1),
			Description: fmt.Sprintf("Response of agent execution %d for task %s", i+1, taskID),
			Parts:       []a2a.Part{a2a.TextPart{Text: resp.Text}},
		}
	}
	return artifacts
}

func distinctStrategies(responses []core.AgentResponse) []core.ExecutionStrategy {
	var out []core.ExecutionStrategy
	seen := map[core.ExecutionStrategy]bool{}
	for _, r := range responses {
		if !seen[r.Strategy] {
			seen[r.Strategy] = true
			out = append(out, r.Strategy)
		}
	}
	return out
}

func allMustNot(specs []core.AgentSpec) bool {
	for _, spec := range specs {
		if spec.RecursionPolicy != core.RecursionPolicyMustNot {
			return false
		}
	}
	return true
}

// depthTracker records the deepest recursion depth reached by any sub-call of
// one orchestration.
type depthTracker struct {
	mu  sync.Mutex
	max int
}

func (t *depthTracker) Observe(depth int) {
	t.mu.Lock()
	if depth > t.max {
		t.max = depth
	}
	t.mu.Unlock()
}

func (t *depthTracker) Max() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.max
}
