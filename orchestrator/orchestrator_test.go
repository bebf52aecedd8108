package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/a2aproject/a2a-go/a2a"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quorumlabs/simcore/config"
	"github.com/quorumlabs/simcore/core"
	"github.com/quorumlabs/simcore/internal/testutil"
	"github.com/quorumlabs/simcore/model"
	"github.com/quorumlabs/simcore/team"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.DefaultTeamSize = 2
	return cfg
}

func echoModel() *testutil.ScriptedModel {
	return &testutil.ScriptedModel{Fn: func(prompt string) (string, error) {
		return "echo", nil
	}}
}

func floatPtr(f float64) *float64 { return &f }

func TestSelectStrategy(t *testing.T) {
	o := New(testutil.Directory("solo"), echoModel(), testConfig())

	tests := []struct {
		name   string
		agents []core.AgentSpec
		want   core.ExecutionStrategy
	}{
		{
			name:   "single must_not count one is direct",
			agents: []core.AgentSpec{{Count: 1, RecursionPolicy: core.RecursionPolicyMustNot}},
			want:   core.StrategyDirect,
		},
		{
			name:   "single may is protocol",
			agents: []core.AgentSpec{{Count: 1, RecursionPolicy: core.RecursionPolicyMay}},
			want:   core.StrategyProtocol,
		},
		{
			name:   "single must is protocol",
			agents: []core.AgentSpec{{Count: 1, RecursionPolicy: core.RecursionPolicyMust}},
			want:   core.StrategyProtocol,
		},
		{
			name:   "must_not with count above one is protocol",
			agents: []core.AgentSpec{{Count: 2, RecursionPolicy: core.RecursionPolicyMustNot}},
			want:   core.StrategyProtocol,
		},
		{
			name: "multiple specs are protocol",
			agents: []core.AgentSpec{
				{Count: 1, RecursionPolicy: core.RecursionPolicyMustNot},
				{Count: 1, RecursionPolicy: core.RecursionPolicyMustNot},
			},
			want: core.StrategyProtocol,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := o.SelectStrategy(&core.SimulationInput{Agents: tt.agents})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalize(t *testing.T) {
	o := New(testutil.Directory("solo"), echoModel(), testConfig())

	req := &core.UserRequest{
		Query:          "analyze the market",
		Context:        "quarterly review",
		StructuredData: map[string]any{"region": "emea"},
		ModelSpec:      &core.ModelSpec{Model: "gpt-4o-mini", Temperature: floatPtr(0.3)},
		MaxDepth:       2,
		Agents:         []core.AgentSpec{{Count: 2, RecursionPolicy: core.RecursionPolicyMay}},
	}
	input, err := o.Normalize(req)
	require.NoError(t, err)

	assert.NotEmpty(t, input.ContextID)
	assert.Equal(t, req.Query, input.Query)
	assert.Equal(t, req.Context, input.Context)
	assert.Equal(t, req.StructuredData, input.StructuredData)
	assert.Equal(t, req.ModelSpec, input.ModelSpec)
	assert.Equal(t, 2, input.MaxDepth)
	assert.Equal(t, 0, input.Depth)
	assert.Equal(t, core.StrategyProtocol, input.Strategy)

	other, err := o.Normalize(req)
	require.NoError(t, err)
	assert.NotEqual(t, input.ContextID, other.ContextID)
}

func TestNormalize_ValidationFailures(t *testing.T) {
	o := New(testutil.Directory("solo"), echoModel(), testConfig())

	tests := []struct {
		name string
		req  *core.UserRequest
	}{
		{"nil request", nil},
		{"empty query", &core.UserRequest{Query: "   "}},
		{"temperature out of range", &core.UserRequest{
			Query:     "q",
			ModelSpec: &core.ModelSpec{Temperature: floatPtr(2.5)},
		}},
		{"depth below one", &core.UserRequest{Query: "q", MaxDepth: -1}},
		{"depth above ceiling", &core.UserRequest{Query: "q", MaxDepth: 99}},
		{"agent count below one", &core.UserRequest{
			Query:  "q",
			Agents: []core.AgentSpec{{Count: 0}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := o.Normalize(tt.req)
			require.Error(t, err)
			assert.True(t, errors.Is(err, core.ErrValidation))
		})
	}
}

func TestExecute_Direct(t *testing.T) {
	calls := 0
	engine := &testutil.ScriptedModel{Fn: func(prompt string) (string, error) {
		calls++
		return "direct answer", nil
	}}
	o := New(testutil.Directory("solo"), engine, testConfig())

	req := &core.UserRequest{
		Query:  "summarize",
		Agents: []core.AgentSpec{{Count: 1, RecursionPolicy: core.RecursionPolicyMustNot}},
	}
	out, err := o.Execute(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, a2a.TaskStateCompleted, out.FinalState)
	assert.Equal(t, "direct answer", model.MessageText(out.ResponseMessage))
	assert.Equal(t, []core.ExecutionStrategy{core.StrategyDirect}, out.Strategies)
	assert.Equal(t, 1, out.TeamSize)
	assert.Equal(t, 0, out.RecursionDepth)
	assert.Equal(t, core.ExecutionStatusSuccess, out.Result.Status)
}

func TestExecute_ContextIDRoundTrip(t *testing.T) {
	o := New(testutil.Directory("solo"), echoModel(), testConfig())

	input := &core.SimulationInput{
		ContextID: "caller-assigned",
		Query:     "report status",
		MaxDepth:  1,
		Agents:    []core.AgentSpec{{Count: 1, RecursionPolicy: core.RecursionPolicyMustNot}},
	}
	out, err := o.ExecuteInput(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, "caller-assigned", out.ContextID)
	assert.Equal(t, "caller-assigned", out.SimulationTask.ContextID)
	assert.Equal(t, "caller-assigned", out.ResponseMessage.ContextID)
}

func TestExecute_ProtocolLocalMustNot(t *testing.T) {
	// Two MUST_NOT specs force protocol-mediated execution without any team
	// formation; the empty directory must never be consulted.
	engine := &testutil.ScriptedModel{Fn: func(prompt string) (string, error) {
		switch {
		case strings.Contains(prompt, "report of member-one"):
			return "first", nil
		case strings.Contains(prompt, "report of member-two"):
			return "second", nil
		default:
			return "", fmt.Errorf("unexpected prompt: %s", prompt)
		}
	}}
	o := New(testutil.Directory(), engine, testConfig())

	req := &core.UserRequest{
		Query: "report of {{.AgentName}}",
		Agents: []core.AgentSpec{
			{Count: 1, RecursionPolicy: core.RecursionPolicyMustNot, Name: "member-one"},
			{Count: 1, RecursionPolicy: core.RecursionPolicyMustNot, Name: "member-two"},
		},
	}
	out, err := o.Execute(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "Agent 1: first\n\nAgent 2: second", model.MessageText(out.ResponseMessage))
	assert.Equal(t, []core.ExecutionStrategy{core.StrategyProtocol}, out.Strategies)
	assert.Equal(t, 2, out.TeamSize)
	require.Len(t, out.ResponseArtifacts, 2)
	assert.Equal(t, "agent-1-response", out.ResponseArtifacts[0].Name)
	assert.Equal(t, "agent-2-response", out.ResponseArtifacts[1].Name)
}

func TestExecute_OrderingIndependentOfCompletion(t *testing.T) {
	// The first execution finishes last; aggregation must still present it
	// first because results are keyed by originating index.
	engine := &testutil.ScriptedModel{Fn: func(prompt string) (string, error) {
		if strings.Contains(prompt, "report of member-one") {
			time.Sleep(30 * time.Millisecond)
			return "slow", nil
		}
		return "fast", nil
	}}
	o := New(testutil.Directory(), engine, testConfig())

	req := &core.UserRequest{
		Query: "report of {{.AgentName}}",
		Agents: []core.AgentSpec{
			{Count: 1, RecursionPolicy: core.RecursionPolicyMustNot, Name: "member-one"},
			{Count: 1, RecursionPolicy: core.RecursionPolicyMustNot, Name: "member-two"},
		},
	}
	out, err := o.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "Agent 1: slow\n\nAgent 2: fast", model.MessageText(out.ResponseMessage))
}

func TestExecute_FailFast(t *testing.T) {
	engine := &testutil.ScriptedModel{Fn: func(prompt string) (string, error) {
		if strings.Contains(prompt, "report of member-two") {
			return "", errors.New("engine exploded")
		}
		return "ok", nil
	}}
	o := New(testutil.Directory(), engine, testConfig())

	req := &core.UserRequest{
		Query: "report of {{.AgentName}}",
		Agents: []core.AgentSpec{
			{Count: 1, RecursionPolicy: core.RecursionPolicyMustNot, Name: "member-one"},
			{Count: 1, RecursionPolicy: core.RecursionPolicyMustNot, Name: "member-two"},
			{Count: 1, RecursionPolicy: core.RecursionPolicyMustNot, Name: "member-three"},
		},
	}
	out, err := o.Execute(context.Background(), req)
	require.Error(t, err)
	assert.Nil(t, out)

	var memberErr *core.TeamMemberExecutionError
	require.True(t, errors.As(err, &memberErr))
	assert.Equal(t, "member-two", memberErr.Member)
	assert.Equal(t, 1, memberErr.Index)
	assert.True(t, errors.Is(err, core.ErrTeamMemberExecution))
	assert.True(t, errors.Is(err, core.ErrInvocation))
}

func TestExecute_SequentialFailFast(t *testing.T) {
	calls := 0
	engine := &testutil.ScriptedModel{Fn: func(prompt string) (string, error) {
		calls++
		if strings.Contains(prompt, "report of member-two") {
			return "", errors.New("engine exploded")
		}
		return "ok", nil
	}}
	o := New(testutil.Directory(), engine, testConfig(), WithSequential())

	req := &core.UserRequest{
		Query: "report of {{.AgentName}}",
		Agents: []core.AgentSpec{
			{Count: 1, RecursionPolicy: core.RecursionPolicyMustNot, Name: "member-one"},
			{Count: 1, RecursionPolicy: core.RecursionPolicyMustNot, Name: "member-two"},
			{Count: 1, RecursionPolicy: core.RecursionPolicyMustNot, Name: "member-three"},
		},
	}
	_, err := o.Execute(context.Background(), req)
	require.Error(t, err)
	// Sequential mode never starts executions after the failing one.
	assert.Equal(t, 2, calls)
}

func TestExecute_Recursion(t *testing.T) {
	calls := 0
	engine := &testutil.ScriptedModel{Fn: func(prompt string) (string, error) {
		calls++
		return "leaf answer", nil
	}}
	o := New(testutil.Directory("alpha", "beta"), engine, testConfig())

	req := &core.UserRequest{
		Query:    "explore scenario",
		MaxDepth: 1,
		Agents:   []core.AgentSpec{{Count: 1, RecursionPolicy: core.RecursionPolicyMust}},
	}
	out, err := o.Execute(context.Background(), req)
	require.NoError(t, err)

	// One nested orchestration per team member, each making one engine call.
	assert.Equal(t, 2, calls)
	assert.Equal(t, 1, out.RecursionDepth)
	assert.Equal(t, []core.ExecutionStrategy{core.StrategyProtocol}, out.Strategies)
	assert.Equal(t, "Agent 1: leaf answer\n\nAgent 2: leaf answer", model.MessageText(out.ResponseMessage))
}

func TestExecute_ConcurrentRecursionUnderSaturatedLimiter(t *testing.T) {
	// Two executions recurse concurrently while only two engine slots exist.
	// Slots are held per engine call, never across a nested orchestration, so
	// parents awaiting their children cannot starve those children of slots.
	cfg := testConfig()
	cfg.MaxConcurrentExecutions = 2

	var calls atomic.Int32
	engine := &testutil.ScriptedModel{Fn: func(prompt string) (string, error) {
		calls.Add(1)
		return "leaf answer", nil
	}}
	o := New(testutil.Directory("alpha", "beta"), engine, cfg)

	req := &core.UserRequest{
		Query:    "explore scenario",
		MaxDepth: 1,
		Agents:   []core.AgentSpec{{Count: 2, RecursionPolicy: core.RecursionPolicyMay}},
	}

	done := make(chan struct{})
	var (
		out *core.SimulationOutput
		err error
	)
	go func() {
		defer close(done)
		out, err = o.Execute(context.Background(), req)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("execution did not complete: recursing executions exhausted the engine slots")
	}
	require.NoError(t, err)

	// Two nested orchestrations of two members each, all executing locally.
	assert.Equal(t, int32(4), calls.Load())
	assert.Equal(t, 1, out.RecursionDepth)
	assert.Equal(t, a2a.TaskStateCompleted, out.FinalState)
}

func TestNew_DefaultTeamFactoryLogger(t *testing.T) {
	// No logger option configured; team formation must still be able to log.
	o := New(testutil.Directory("alpha", "beta"), echoModel(), testConfig())

	members, err := o.factory.New(team.FormationRandom).Select(context.Background(), o.registry, 2)
	require.NoError(t, err)
	assert.Len(t, members, 2)
}

func TestExecute_LiteralBracesInQuery(t *testing.T) {
	// Brace sequences that are not valid template syntax pass through to the
	// engine verbatim instead of failing validation.
	var prompts []string
	engine := &testutil.ScriptedModel{Fn: func(prompt string) (string, error) {
		prompts = append(prompts, prompt)
		return "rendered", nil
	}}
	o := New(testutil.Directory("solo"), engine, testConfig())

	req := &core.UserRequest{
		Query:  "explain {{mustache}} template syntax",
		Agents: []core.AgentSpec{{Count: 1, RecursionPolicy: core.RecursionPolicyMustNot}},
	}
	out, err := o.Execute(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "rendered", model.MessageText(out.ResponseMessage))
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], "explain {{mustache}} template syntax")
}

func TestExecute_DepthExceeded(t *testing.T) {
	calls := 0
	engine := &testutil.ScriptedModel{Fn: func(prompt string) (string, error) {
		calls++
		return "never", nil
	}}
	o := New(testutil.Directory("alpha", "beta"), engine, testConfig())

	input := &core.SimulationInput{
		ContextID: "nested",
		Query:     "go deeper",
		Depth:     1,
		MaxDepth:  1,
		Agents:    []core.AgentSpec{{Count: 1, RecursionPolicy: core.RecursionPolicyMust}},
	}
	out, err := o.ExecuteInput(context.Background(), input)
	require.Error(t, err)
	assert.Nil(t, out)
	assert.True(t, errors.Is(err, core.ErrDepthExceeded))
	// The violation is detected before any external call is issued.
	assert.Equal(t, 0, calls)
}

func TestExecute_PolicyViolation(t *testing.T) {
	o := New(testutil.Directory("alpha"), echoModel(), testConfig())

	input := &core.SimulationInput{
		ContextID: "forced",
		Query:     "recurse anyway",
		MinDepth:  1,
		MaxDepth:  2,
		Agents:    []core.AgentSpec{{Count: 1, RecursionPolicy: core.RecursionPolicyMustNot}},
	}
	_, err := o.ExecuteInput(context.Background(), input)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrPolicyViolation))
}

func TestExecute_ShortTeamFailsFast(t *testing.T) {
	// Directory holds a single agent but the configured team size is two.
	o := New(testutil.Directory("alpha"), echoModel(), testConfig())

	req := &core.UserRequest{
		Query:  "form a team",
		Agents: []core.AgentSpec{{Count: 1, RecursionPolicy: core.RecursionPolicyMust}},
	}
	out, err := o.Execute(context.Background(), req)
	require.Error(t, err)
	assert.Nil(t, out)
	assert.True(t, errors.Is(err, core.ErrRegistry))
}

func TestExecute_MayAtCeilingExecutesLocally(t *testing.T) {
	calls := 0
	engine := &testutil.ScriptedModel{Fn: func(prompt string) (string, error) {
		calls++
		return "local", nil
	}}
	o := New(testutil.Directory("alpha", "beta"), engine, testConfig())

	input := &core.SimulationInput{
		ContextID: "at-ceiling",
		Query:     "decide",
		Depth:     1,
		MaxDepth:  1,
		Agents:    []core.AgentSpec{{Count: 1, RecursionPolicy: core.RecursionPolicyMay}},
	}
	out, err := o.ExecuteInput(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, out.RecursionDepth)
	assert.Equal(t, "local", model.MessageText(out.ResponseMessage))
}

func TestTaskLifecycle(t *testing.T) {
	o := New(testutil.Directory(), echoModel(), testConfig())

	input := &core.SimulationInput{
		ContextID: "lifecycle",
		Query:     "run",
		MaxDepth:  1,
		Agents:    []core.AgentSpec{{Count: 1, RecursionPolicy: core.RecursionPolicyMustNot}},
	}
	out, err := o.ExecuteInput(context.Background(), input)
	require.NoError(t, err)

	task, err := o.TaskByID(out.SimulationTask.ID)
	require.NoError(t, err)
	assert.Equal(t, a2a.TaskStateCompleted, task.Status.State)
	require.Len(t, task.History, 2)
	assert.Equal(t, a2a.MessageRoleUser, task.History[0].Role)
	assert.Equal(t, a2a.MessageRoleAgent, task.History[1].Role)

	tasks := o.TasksByContext("lifecycle")
	require.Len(t, tasks, 1)
	assert.Equal(t, out.SimulationTask.ID, tasks[0].ID)
}

func TestTaskLifecycle_FailureState(t *testing.T) {
	engine := &testutil.ScriptedModel{Fn: func(prompt string) (string, error) {
		return "", errors.New("engine exploded")
	}}
	o := New(testutil.Directory(), engine, testConfig())

	input := &core.SimulationInput{
		ContextID: "failing",
		Query:     "run",
		MaxDepth:  1,
		Agents:    []core.AgentSpec{{Count: 1, RecursionPolicy: core.RecursionPolicyMustNot}},
	}
	_, err := o.ExecuteInput(context.Background(), input)
	require.Error(t, err)

	tasks := o.TasksByContext("failing")
	require.Len(t, tasks, 1)
	assert.Equal(t, a2a.TaskStateFailed, tasks[0].Status.State)
	require.NotNil(t, tasks[0].Status.Message)
	assert.Contains(t, model.MessageText(tasks[0].Status.Message), "engine exploded")
}

func TestTaskByID_NotFound(t *testing.T) {
	o := New(testutil.Directory(), echoModel(), testConfig())
	_, err := o.TaskByID("missing")
	assert.ErrorIs(t, err, ErrTaskNotFound)
}
