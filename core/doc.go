// Package core contains the shared data model of the simulation
// orchestration system: user requests and their fluent builder, simulation
// inputs/outputs, agent specifications and recursion policies, the capability
// registry contract, and the error taxonomy used across packages.
//
// All types in this package are plain data carriers. Behavior (strategy
// selection, execution, aggregation) lives in the orchestrator package.
package core
