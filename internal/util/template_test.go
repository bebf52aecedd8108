package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderTemplate(t *testing.T) {
	out, err := RenderTemplate("report of {{.AgentName}} ({{.AgentIndex}})", map[string]any{
		"AgentName":  "skeptic",
		"AgentIndex": 2,
	})
	require.NoError(t, err)
	assert.Equal(t, "report of skeptic (2)", out)
}

func TestRenderTemplatePlainText(t *testing.T) {
	out, err := RenderTemplate("no markers here", nil)
	require.NoError(t, err)
	assert.Equal(t, "no markers here", out)
}

func TestRenderTemplateHelpers(t *testing.T) {
	out, err := RenderTemplate(`{{upper .name}} / {{default "none" .missing}}`, map[string]any{
		"name": "scout",
	})
	require.NoError(t, err)
	assert.Equal(t, "SCOUT / none", out)
}

func TestRenderTemplateBadSyntax(t *testing.T) {
	_, err := RenderTemplate("{{.Unclosed", nil)
	assert.Error(t, err)
}
