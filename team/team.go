package team

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/quorumlabs/simcore/core"
	"github.com/quorumlabs/simcore/logging"
)

// FormationStrategy selects which members a team is composed of.
type FormationStrategy int

const (
	// FormationRandom selects members uniformly without replacement.
	FormationRandom FormationStrategy = iota
	// FormationRoundRobin selects members in stable directory order.
	FormationRoundRobin
	// FormationHomogeneous repeats a single member for the whole team.
	FormationHomogeneous
)

// String returns the string representation of the formation strategy.
func (s FormationStrategy) String() string {
	switch s {
	case FormationRandom:
		return "random"
	case FormationRoundRobin:
		return "round_robin"
	case FormationHomogeneous:
		return "homogeneous"
	default:
		return "unknown"
	}
}

// ParseFormationStrategy parses a formation strategy name.
func ParseFormationStrategy(s string) (FormationStrategy, error) {
	switch s {
	case "random":
		return FormationRandom, nil
	case "round_robin", "roundrobin":
		return FormationRoundRobin, nil
	case "homogeneous":
		return FormationHomogeneous, nil
	default:
		return FormationRandom, fmt.Errorf("%w: unknown formation strategy %q", core.ErrValidation, s)
	}
}

// Team selects agent identities from a registry directory.
type Team interface {
	// Select returns exactly size descriptors or an error. The directory is
	// read once per call; an empty or short directory is an error.
	Select(ctx context.Context, registry core.Registry, size int) ([]core.AgentDescriptor, error)
}

// Options configures team construction.
type Options struct {
	// Rand supplies randomness for FormationRandom. Defaults to the shared
	// package source; inject a seeded source for deterministic tests.
	Rand *rand.Rand

	// Logger receives team formation events.
	Logger logging.Logger
}

// Factory creates teams for a given formation strategy.
type Factory struct {
	opts Options
}

// NewFactory creates a team factory.
func NewFactory(optFns ...func(o *Options)) *Factory {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Factory{opts: opts}
}

// New returns the team implementation for the given strategy.
func (f *Factory) New(strategy FormationStrategy) Team {
	switch strategy {
	case FormationRoundRobin:
		return &roundRobinTeam{logger: f.opts.Logger}
	case FormationHomogeneous:
		return &homogeneousTeam{logger: f.opts.Logger}
	default:
		return &randomTeam{rand: f.opts.Rand, logger: f.opts.Logger}
	}
}

// listDirectory reads the agent directory once and validates it against the
// requested team size.
func listDirectory(ctx context.Context, registry core.Registry, size int) ([]core.AgentDescriptor, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: team size must be >= 1, got %d", core.ErrValidation, size)
	}
	agents, err := registry.ListAgents(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list agents: %v", core.ErrRegistry, err)
	}
	if len(agents) == 0 {
		return nil, fmt.Errorf("%w: agent directory is empty", core.ErrRegistry)
	}
	return agents, nil
}

type randomTeam struct {
	rand   *rand.Rand
	logger logging.Logger
}

// Select picks size distinct members uniformly without replacement.
func (t *randomTeam) Select(ctx context.Context, registry core.Registry, size int) ([]core.AgentDescriptor, error) {
	agents, err := listDirectory(ctx, registry, size)
	if err != nil {
		return nil, err
	}
	if len(agents) < size {
		return nil, fmt.Errorf("%w: directory holds %d agents, team size %d requested", core.ErrRegistry, len(agents), size)
	}
	shuffled := make([]core.AgentDescriptor, len(agents))
	copy(shuffled, agents)
	swap := func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] }
	if t.rand != nil {
		t.rand.Shuffle(len(shuffled), swap)
	} else {
		rand.Shuffle(len(shuffled), swap)
	}
	selected := shuffled[:size]
	t.logger.Debug("team selected", "strategy", "random", "size", size)
	return selected, nil
}

type roundRobinTeam struct {
	logger logging.Logger
}

// Select picks the first size members in stable directory order.
func (t *roundRobinTeam) Select(ctx context.Context, registry core.Registry, size int) ([]core.AgentDescriptor, error) {
	agents, err := listDirectory(ctx, registry, size)
	if err != nil {
		return nil, err
	}
	if len(agents) < size {
		return nil, fmt.Errorf("%w: directory holds %d agents, team size %d requested", core.ErrRegistry, len(agents), size)
	}
	selected := make([]core.AgentDescriptor, size)
	copy(selected, agents[:size])
	t.logger.Debug("team selected", "strategy", "round_robin", "size", size)
	return selected, nil
}

type homogeneousTeam struct {
	logger logging.Logger
}

// Select repeats the first directory member size times.
func (t *homogeneousTeam) Select(ctx context.Context, registry core.Registry, size int) ([]core.AgentDescriptor, error) {
	agents, err := listDirectory(ctx, registry, size)
	if err != nil {
		return nil, err
	}
	selected := make([]core.AgentDescriptor, size)
	for i := range selected {
		selected[i] = agents[0]
	}
	t.logger.Debug("team selected", "strategy", "homogeneous", "size", size)
	return selected, nil
}
