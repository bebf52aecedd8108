package main

import (
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/quorumlabs/simcore/config"
	"github.com/quorumlabs/simcore/model"
	anthropicmodel "github.com/quorumlabs/simcore/model/anthropic"
	openaimodel "github.com/quorumlabs/simcore/model/openai"
)

// buildEngine selects a reasoning engine from the configured default model.
// Model ids starting with "claude" route to Anthropic, everything else to
// OpenAI. The mock engine echoes prompts and needs no credentials.
func buildEngine(cfg *config.Config, mock bool) (model.Model, error) {
	if mock {
		return model.NewMockModel("mock-model", "mock"), nil
	}

	name := cfg.DefaultModel
	if strings.HasPrefix(name, "claude") {
		if cfg.Anthropic.APIKey == "" {
			return nil, fmt.Errorf("anthropic api key not configured (set ANTHROPIC_API_KEY)")
		}
		return anthropicmodel.NewModel(func(o *anthropicmodel.Options) {
			o.Model = anthropic.Model(name)
			o.Temperature = cfg.DefaultTemperature
			o.APIKey = cfg.Anthropic.APIKey
		}), nil
	}

	if cfg.OpenAI.APIKey == "" {
		return nil, fmt.Errorf("openai api key not configured (set OPENAI_API_KEY)")
	}
	client := openai.NewClient(option.WithAPIKey(cfg.OpenAI.APIKey))
	return openaimodel.NewModelFromClient(&client, func(o *openaimodel.Options) {
		o.Model = name
		o.Temperature = cfg.DefaultTemperature
	}), nil
}
