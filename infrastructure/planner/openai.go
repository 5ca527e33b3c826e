package planner

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/slaxmankiran/aitravel-app-sub008/config"
	domainPlanner "github.com/slaxmankiran/aitravel-app-sub008/domains/planner"
	domainTrip "github.com/slaxmankiran/aitravel-app-sub008/domains/trip"
	"github.com/sirupsen/logrus"
)

const DefaultOpenAIModel = "gpt-4o-mini"

// OpenAIProvider is the adapter for the OpenAI API
type OpenAIProvider struct{}

func NewOpenAIProvider() *OpenAIProvider {
	return &OpenAIProvider{}
}

func (p *OpenAIProvider) Name() string {
	return "openai"
}

func (p *OpenAIProvider) model() string {
	if config.PlannerModel != "" {
		return config.PlannerModel
	}
	return DefaultOpenAIModel
}

func (p *OpenAIProvider) CheckFeasibility(ctx context.Context, t domainTrip.Trip) (domainPlanner.FeasibilityReport, error) {
	if config.OpenAIAPIKey == "" {
		return domainPlanner.FeasibilityReport{}, fmt.Errorf("openai provider has no API key configured")
	}

	client := openai.NewClient(
		option.WithAPIKey(config.OpenAIAPIKey),
	)
	model := p.model()

	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"verdict":  map[string]any{"type": "string", "enum": []string{"yes", "no", "maybe"}},
			"score":    map[string]any{"type": "integer"},
			"summary":  map[string]any{"type": "string"},
			"concerns": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		},
		"required":             []string{"verdict", "score", "summary", "concerns"},
		"additionalProperties": false,
	}

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(feasibilitySystemPrompt),
			openai.UserMessage(feasibilityUserPrompt(t)),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   "feasibility_report",
					Schema: any(schema),
					Strict: openai.Bool(true),
				},
			},
		},
	}

	completion, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		return domainPlanner.FeasibilityReport{}, err
	}
	if len(completion.Choices) == 0 {
		return domainPlanner.FeasibilityReport{}, fmt.Errorf("no response from openai")
	}

	var report domainPlanner.FeasibilityReport
	if err := json.Unmarshal([]byte(completion.Choices[0].Message.Content), &report); err != nil {
		return domainPlanner.FeasibilityReport{}, fmt.Errorf("failed to parse feasibility JSON: %w", err)
	}
	normalizeReport(&report)

	logrus.WithFields(logrus.Fields{
		"trip_id": t.ID,
		"model":   model,
		"verdict": report.Verdict,
		"score":   report.Score,
	}).Debug("[OPENAI] Feasibility check completed")

	return report, nil
}

func (p *OpenAIProvider) GenerateDay(ctx context.Context, t domainTrip.Trip, dayNumber int, previous []domainTrip.ItineraryDay) (domainPlanner.DayPlan, error) {
	if config.OpenAIAPIKey == "" {
		return domainPlanner.DayPlan{}, fmt.Errorf("openai provider has no API key configured")
	}

	client := openai.NewClient(
		option.WithAPIKey(config.OpenAIAPIKey),
	)
	model := p.model()

	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"day_number": map[string]any{"type": "integer"},
			"summary":    map[string]any{"type": "string"},
			"activities": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"time":     map[string]any{"type": "string"},
						"title":    map[string]any{"type": "string"},
						"category": map[string]any{"type": "string", "enum": []string{"food", "sight", "transit", "lodging", "other"}},
						"notes":    map[string]any{"type": "string"},
						"lat":      map[string]any{"type": "number"},
						"lng":      map[string]any{"type": "number"},
					},
					"required":             []string{"time", "title", "category", "notes", "lat", "lng"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []string{"day_number", "summary", "activities"},
		"additionalProperties": false,
	}

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(daySystemPrompt),
			openai.UserMessage(dayUserPrompt(t, dayNumber, previous)),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   "day_plan",
					Schema: any(schema),
					Strict: openai.Bool(true),
				},
			},
		},
	}

	completion, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		return domainPlanner.DayPlan{}, err
	}
	if len(completion.Choices) == 0 {
		return domainPlanner.DayPlan{}, fmt.Errorf("no response from openai")
	}

	var plan dayPlanJSON
	if err := json.Unmarshal([]byte(completion.Choices[0].Message.Content), &plan); err != nil {
		return domainPlanner.DayPlan{}, fmt.Errorf("failed to parse day plan JSON: %w", err)
	}

	return plan.toDayPlan(dayNumber), nil
}
