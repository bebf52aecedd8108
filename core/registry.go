package core

import "context"

// Persona captures the characteristics of a registry agent that flow into
// prompt assembly. Every field is optional; absent fields are omitted from
// rendered prompts.
type Persona struct {
	Name               string   `json:"name,omitempty"`
	Role               string   `json:"role,omitempty"`
	CorePrinciples     []string `json:"core_principles,omitempty"`
	DecisionFramework  string   `json:"decision_framework,omitempty"`
	CommunicationStyle string   `json:"communication_style,omitempty"`
	PrimaryDomains     []string `json:"primary_domains,omitempty"`
	Methodologies      []string `json:"methodologies,omitempty"`
	SkillOverview      string   `json:"skill_overview,omitempty"`
	SignatureAbilities []string `json:"signature_abilities,omitempty"`
}

// AgentDescriptor identifies one agent in the capability directory.
type AgentDescriptor struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Version     string   `json:"version,omitempty"`
	Persona     *Persona `json:"persona,omitempty"`
}

// FindCriteria narrows a directory lookup. Name matches exactly; Domain
// matches any of the persona's primary domains.
type FindCriteria struct {
	Name   string
	Domain string
}

// Registry is the capability directory consumed by the orchestration core.
// It is read-only during a single orchestration call; owners may refresh it
// between calls.
//
// ListAgents fails with an error matching ErrRegistry when the backing
// directory is unreachable; an empty directory is a valid result and is
// rejected by team formation, not here. FindAgent fails with an error
// matching ErrAgentNotFound when the directory is reachable but holds no
// match.
type Registry interface {
	ListAgents(ctx context.Context) ([]AgentDescriptor, error)
	FindAgent(ctx context.Context, criteria FindCriteria) (AgentDescriptor, error)
}
