package appsettings

import "context"

// SettingsView is what the settings screen sees. API keys are never echoed
// back, only whether one is stored.
type SettingsView struct {
	PlannerProvider           string `json:"planner_provider"`
	PlannerModel              string `json:"planner_model,omitempty"`
	GeminiAPIKeySet           bool   `json:"gemini_api_key_set"`
	OpenAIAPIKeySet           bool   `json:"openai_api_key_set"`
	SpecTriggerThreshold      int    `json:"spec_trigger_threshold"`
	SpecMaxDays               int    `json:"spec_max_days"`
	SpecRetentionMinutes      int    `json:"spec_retention_minutes"`
	SpecSweepMinutes          int    `json:"spec_sweep_minutes"`
	DirectionsCacheTTLMinutes int    `json:"directions_cache_ttl_minutes"`
	ImageryCacheTTLHours      int    `json:"imagery_cache_ttl_hours"`
}

// UpdateSettingsRequest uses pointers so PATCH semantics work: nil fields
// are left untouched.
type UpdateSettingsRequest struct {
	PlannerProvider           *string `json:"planner_provider"`
	PlannerModel              *string `json:"planner_model"`
	GeminiAPIKey              *string `json:"gemini_api_key"`
	OpenAIAPIKey              *string `json:"openai_api_key"`
	SpecTriggerThreshold      *int    `json:"spec_trigger_threshold"`
	SpecMaxDays               *int    `json:"spec_max_days"`
	SpecRetentionMinutes      *int    `json:"spec_retention_minutes"`
	SpecSweepMinutes          *int    `json:"spec_sweep_minutes"`
	DirectionsCacheTTLMinutes *int    `json:"directions_cache_ttl_minutes"`
	ImageryCacheTTLHours      *int    `json:"imagery_cache_ttl_hours"`
}

type ISettingsUsecase interface {
	Get(ctx context.Context) (SettingsView, error)
	Update(ctx context.Context, request UpdateSettingsRequest) (SettingsView, error)
}
