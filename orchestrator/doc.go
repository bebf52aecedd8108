// Package orchestrator implements the simulation orchestrator: it converts a
// user request into a normalized simulation input, selects an execution
// strategy per agent spec, runs the expanded agent executions with bounded
// concurrency, aggregates their responses deterministically and produces a
// simulation output carrying the full protocol task lifecycle.
//
// Execution is fail-fast: the first failing agent execution cancels in-flight
// siblings and the orchestration surfaces a single TeamMemberExecutionError.
// No partial output is ever returned for a failed orchestration.
package orchestrator
