package registry

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/quorumlabs/simcore/core"
)

// InMemoryRegistry is a volatile core.Registry implementation storing agent
// descriptors in a process local slice. It is safe for concurrent access and
// best suited for tests or ephemeral demo setups. Listing returns a copy so
// callers cannot mutate internal state.
type InMemoryRegistry struct {
	mu     sync.RWMutex
	agents []core.AgentDescriptor
}

// NewInMemoryRegistry constructs a registry pre-populated with the given agents.
func NewInMemoryRegistry(agents ...core.AgentDescriptor) *InMemoryRegistry {
	r := &InMemoryRegistry{}
	r.agents = append(r.agents, agents...)
	return r
}

// Register adds an agent to the directory, replacing any existing descriptor
// with the same name.
func (r *InMemoryRegistry) Register(agent core.AgentDescriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.agents {
		if existing.Name == agent.Name {
			r.agents[i] = agent
			return
		}
	}
	r.agents = append(r.agents, agent)
}

// ListAgents returns the directory contents in registration order.
func (r *InMemoryRegistry) ListAgents(ctx context.Context) ([]core.AgentDescriptor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.AgentDescriptor, len(r.agents))
	copy(out, r.agents)
	return out, nil
}

// FindAgent returns the first agent matching the criteria. Name matches are
// exact; domain matches are case-insensitive against the persona's primary
// domains.
func (r *InMemoryRegistry) FindAgent(ctx context.Context, criteria core.FindCriteria) (core.AgentDescriptor, error) {
	if err := ctx.Err(); err != nil {
		return core.AgentDescriptor{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, agent := range r.agents {
		if criteria.Name != "" && agent.Name != criteria.Name {
			continue
		}
		if criteria.Domain != "" && !hasDomain(agent, criteria.Domain) {
			continue
		}
		return agent, nil
	}
	return core.AgentDescriptor{}, fmt.Errorf("%w: no agent matching name=%q domain=%q", core.ErrAgentNotFound, criteria.Name, criteria.Domain)
}

func hasDomain(agent core.AgentDescriptor, domain string) bool {
	if agent.Persona == nil {
		return false
	}
	for _, d := range agent.Persona.PrimaryDomains {
		if strings.EqualFold(d, domain) {
			return true
		}
	}
	return false
}
