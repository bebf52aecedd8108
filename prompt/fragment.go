package prompt

import "github.com/quorumlabs/simcore/core"

// Provider supplies dynamic fragment text at build time.
// Implementations can derive text from the simulation input, environment, etc.
type Provider interface {
	Fragment(*core.SimulationInput) (string, error)
}

// Func is a functional adapter to allow ordinary functions to be used as Providers.
type Func func(*core.SimulationInput) (string, error)

// Fragment implements Provider.
func (f Func) Fragment(input *core.SimulationInput) (string, error) { return f(input) }

// Fragment represents either a static text fragment or a dynamic provider.
// This mirrors a union of string | provider in a Go-idiomatic way.
type Fragment struct {
	text     string
	provider Provider
}

// NewFragmentFromText creates a Fragment from a static string.
func NewFragmentFromText(text string) Fragment { return Fragment{text: text} }

// NewFragmentFromProvider creates a Fragment from a dynamic provider.
func NewFragmentFromProvider(p Provider) Fragment { return Fragment{provider: p} }

// NewFragmentFromFunc creates a Fragment from a function.
func NewFragmentFromFunc(f func(*core.SimulationInput) (string, error)) Fragment {
	return Fragment{provider: Func(f)}
}

// IsStatic returns true if the fragment is backed by a static string.
func (f Fragment) IsStatic() bool { return f.provider == nil }

// Resolve returns the fragment text, invoking the provider if needed.
func (f Fragment) Resolve(input *core.SimulationInput) (string, error) {
	if f.provider != nil {
		return f.provider.Fragment(input)
	}
	return f.text, nil
}
