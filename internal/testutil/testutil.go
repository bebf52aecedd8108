// Package testutil provides shared fakes and builders for package tests.
package testutil

import (
	"context"

	"github.com/quorumlabs/simcore/core"
	"github.com/quorumlabs/simcore/model"
	"github.com/quorumlabs/simcore/registry"
)

// Directory builds an in-memory registry holding one descriptor per name.
func Directory(names ...string) *registry.InMemoryRegistry {
	agents := make([]core.AgentDescriptor, len(names))
	for i, n := range names {
		agents[i] = core.AgentDescriptor{Name: n}
	}
	return registry.NewInMemoryRegistry(agents...)
}

// PersonaAgent builds a descriptor with a minimal persona attached.
func PersonaAgent(name, role string) core.AgentDescriptor {
	return core.AgentDescriptor{
		Name:    name,
		Persona: &core.Persona{Name: name, Role: role},
	}
}

// ScriptedModel adapts a function into a model.Model. The function receives
// the concatenated text of the last request message.
type ScriptedModel struct {
	Fn func(prompt string) (string, error)
}

// Generate implements model.Model.
func (m *ScriptedModel) Generate(ctx context.Context, req model.Request) (*model.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var prompt string
	if len(req.Messages) > 0 {
		prompt = model.MessageText(req.Messages[len(req.Messages)-1])
	}
	text, err := m.Fn(prompt)
	if err != nil {
		return nil, err
	}
	return &model.Response{Text: text}, nil
}

// Info implements model.Model.
func (m *ScriptedModel) Info() model.Info {
	return model.Info{Name: "scripted", Provider: "test"}
}
