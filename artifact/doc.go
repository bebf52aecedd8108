// Package artifact contains concrete artifact store implementations.
//
// Stores keep the response artifacts produced during a simulation keyed by
// context id, preserving insertion order. The in-memory implementation is
// volatile and suited to tests, examples and single-process setups; durable
// backends can be swapped in without touching calling code.
package artifact
