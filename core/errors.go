package core

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation indicates a malformed UserRequest or AgentSpec detected
	// before any execution begins.
	ErrValidation = errors.New("validation error")

	// ErrRegistry indicates the capability directory is unreachable or empty.
	ErrRegistry = errors.New("registry error")

	// ErrAgentNotFound indicates the directory is reachable but holds no
	// agent matching the requested criteria.
	ErrAgentNotFound = errors.New("agent not found")

	// ErrDepthExceeded indicates the recursion ceiling would be violated.
	ErrDepthExceeded = errors.New("recursion depth exceeded")

	// ErrPolicyViolation indicates a MUST_NOT recursion policy would be
	// bypassed by a recursive sub-invocation.
	ErrPolicyViolation = errors.New("recursion policy violation")

	// ErrInvocation indicates a reasoning-engine or protocol call failed or
	// timed out.
	ErrInvocation = errors.New("invocation error")

	// ErrTeamMemberExecution indicates one of N concurrent team member
	// executions failed. Use errors.As with *TeamMemberExecutionError to
	// recover the failing member.
	ErrTeamMemberExecution = errors.New("team member execution failed")
)

// TeamMemberExecutionError names the failing member of a multi-agent
// execution and wraps its underlying cause. The orchestrator surfaces exactly
// one per failed request (the first observed failure).
type TeamMemberExecutionError struct {
	Member string // agent name or synthesized identity of the failing member
	Index  int    // zero-based execution index within the request
	Err    error  // underlying cause
}

// Error implements the error interface.
func (e *TeamMemberExecutionError) Error() string {
	return fmt.Sprintf("team member execution failed for %s (index %d): %v", e.Member, e.Index, e.Err)
}

// Unwrap exposes both the sentinel and the underlying cause to errors.Is.
func (e *TeamMemberExecutionError) Unwrap() []error {
	return []error{ErrTeamMemberExecution, e.Err}
}

// validationErrorf wraps ErrValidation with a formatted detail message.
func validationErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrValidation}, args...)...)
}
