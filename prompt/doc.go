// Package prompt assembles contextual prompts for agent executions.
//
// A ContextualPrompt is built from ordered prefix fragments, a single core
// content block, ordered suffix fragments, an optional agent persona and an
// optional keyed task context. Assemble renders the prompt as plain text and
// MessageTemplate wraps the rendered text in a protocol Message with a fresh
// message id.
//
// Fragments may be static strings or dynamic providers resolved against the
// SimulationInput at build time, so strategies can inject per-execution
// details without string plumbing.
package prompt
