package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/slaxmankiran/aitravel-app-sub008/config"
	domainPlanner "github.com/slaxmankiran/aitravel-app-sub008/domains/planner"
	domainTrip "github.com/slaxmankiran/aitravel-app-sub008/domains/trip"
	"github.com/sirupsen/logrus"
	"google.golang.org/genai"
)

const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiProvider is the adapter for the Google Gemini API
type GeminiProvider struct{}

func NewGeminiProvider() *GeminiProvider {
	return &GeminiProvider{}
}

func (p *GeminiProvider) Name() string {
	return "gemini"
}

func (p *GeminiProvider) client(ctx context.Context) (*genai.Client, error) {
	apiKey := config.GeminiAPIKey
	if apiKey == "" {
		return nil, fmt.Errorf("gemini provider has no API key configured")
	}
	return genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
}

func (p *GeminiProvider) model() string {
	if config.PlannerModel != "" {
		return config.PlannerModel
	}
	return DefaultGeminiModel
}

// CheckFeasibility asks the model for a structured verdict on the trip.
func (p *GeminiProvider) CheckFeasibility(ctx context.Context, t domainTrip.Trip) (domainPlanner.FeasibilityReport, error) {
	client, err := p.client(ctx)
	if err != nil {
		return domainPlanner.FeasibilityReport{}, err
	}
	model := p.model()

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(feasibilitySystemPrompt, ""),
		ResponseMIMEType:  "application/json",
		ResponseJsonSchema: &genai.Schema{
			Type: "object",
			Properties: map[string]*genai.Schema{
				"verdict":  {Type: "string", Enum: []string{"yes", "no", "maybe"}},
				"score":    {Type: "integer", Description: "Confidence 0-100"},
				"summary":  {Type: "string"},
				"concerns": {Type: "array", Items: &genai.Schema{Type: "string"}},
			},
			Required: []string{"verdict", "score", "summary", "concerns"},
		},
	}
	p.applyThinking(cfg, model)

	contents := []*genai.Content{{
		Role:  genai.RoleUser,
		Parts: []*genai.Part{{Text: feasibilityUserPrompt(t)}},
	}}

	start := time.Now()
	result, err := p.generateWithRetry(ctx, client, model, contents, cfg)
	if err != nil {
		return domainPlanner.FeasibilityReport{}, err
	}

	var report domainPlanner.FeasibilityReport
	if err := json.Unmarshal([]byte(result.Text()), &report); err != nil {
		return domainPlanner.FeasibilityReport{}, fmt.Errorf("failed to parse feasibility JSON: %w", err)
	}
	normalizeReport(&report)

	logrus.WithFields(logrus.Fields{
		"trip_id":     t.ID,
		"model":       model,
		"verdict":     report.Verdict,
		"score":       report.Score,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Debug("[GEMINI] Feasibility check completed")

	return report, nil
}

// GenerateDay produces the plan for one itinerary day.
func (p *GeminiProvider) GenerateDay(ctx context.Context, t domainTrip.Trip, dayNumber int, previous []domainTrip.ItineraryDay) (domainPlanner.DayPlan, error) {
	client, err := p.client(ctx)
	if err != nil {
		return domainPlanner.DayPlan{}, err
	}
	model := p.model()

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(daySystemPrompt, ""),
		ResponseMIMEType:  "application/json",
		ResponseJsonSchema: &genai.Schema{
			Type: "object",
			Properties: map[string]*genai.Schema{
				"day_number": {Type: "integer"},
				"summary":    {Type: "string"},
				"activities": {
					Type: "array",
					Items: &genai.Schema{
						Type: "object",
						Properties: map[string]*genai.Schema{
							"time":     {Type: "string"},
							"title":    {Type: "string"},
							"category": {Type: "string", Enum: []string{"food", "sight", "transit", "lodging", "other"}},
							"notes":    {Type: "string"},
							"lat":      {Type: "number"},
							"lng":      {Type: "number"},
						},
						Required: []string{"time", "title", "category"},
					},
				},
			},
			Required: []string{"day_number", "summary", "activities"},
		},
	}
	p.applyThinking(cfg, model)

	contents := []*genai.Content{{
		Role:  genai.RoleUser,
		Parts: []*genai.Part{{Text: dayUserPrompt(t, dayNumber, previous)}},
	}}

	result, err := p.generateWithRetry(ctx, client, model, contents, cfg)
	if err != nil {
		return domainPlanner.DayPlan{}, err
	}

	var plan dayPlanJSON
	if err := json.Unmarshal([]byte(result.Text()), &plan); err != nil {
		return domainPlanner.DayPlan{}, fmt.Errorf("failed to parse day plan JSON: %w", err)
	}

	return plan.toDayPlan(dayNumber), nil
}

func (p *GeminiProvider) generateWithRetry(ctx context.Context, client *genai.Client, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	for i := 0; i < 3; i++ {
		result, err := client.Models.GenerateContent(ctx, model, contents, cfg)
		if err == nil {
			return result, nil
		}
		if strings.Contains(err.Error(), "503") {
			time.Sleep(time.Duration(1<<uint(i)) * time.Second)
			continue
		}
		return nil, err
	}
	return nil, fmt.Errorf("max retries exceeded")
}

// applyThinking disables extended thinking where the model allows it;
// itinerary JSON does not benefit enough to pay the latency.
func (p *GeminiProvider) applyThinking(cfg *genai.GenerateContentConfig, model string) {
	if cfg == nil || model == "" {
		return
	}

	isG3 := strings.Contains(model, "gemini-3")
	isG25 := strings.Contains(model, "gemini-2.5")
	if !isG3 && !isG25 {
		return
	}

	if cfg.ThinkingConfig == nil {
		cfg.ThinkingConfig = &genai.ThinkingConfig{}
	}
	if isG3 {
		lvl := "minimal"
		if strings.Contains(model, "pro") {
			lvl = "low"
		}
		cfg.ThinkingConfig.ThinkingLevel = genai.ThinkingLevel(lvl)
		return
	}
	// Gemini 2.5: budget 0 turns thinking off on flash; pro cannot, use dynamic.
	if strings.Contains(model, "pro") {
		budget := int32(-1)
		cfg.ThinkingConfig.ThinkingBudget = &budget
	} else {
		budget := int32(0)
		cfg.ThinkingConfig.ThinkingBudget = &budget
	}
}
