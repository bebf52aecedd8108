// Package model defines the reasoning engine abstraction consumed by the
// execution strategies, plus a deterministic MockModel for tests and
// examples. Provider-specific adapters live in the subpackages
// model/anthropic and model/openai.
package model
