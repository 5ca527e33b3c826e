package domain

import "context"

// Setting represents a dynamic configuration value stored in the database.
type Setting struct {
	Key   string
	Value string
}

// ISettingsRepository defines the contract for persisting dynamic settings.
type ISettingsRepository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error

	// ListByPrefix returns every setting whose key starts with prefix
	// (empty prefix = all settings).
	ListByPrefix(ctx context.Context, prefix string) (map[string]string, error)

	// InitSchema creates the necessary tables
	InitSchema(ctx context.Context) error
}

// Common Keys defined in the system
const (
	KeyPlannerProvider           = "planner_provider"
	KeyPlannerModel              = "planner_model"
	KeyGeminiAPIKey              = "planner_gemini_api_key" // stored encrypted
	KeyOpenAIAPIKey              = "planner_openai_api_key" // stored encrypted
	KeySpecTriggerThreshold      = "spec_trigger_threshold"
	KeySpecMaxDays               = "spec_max_days"
	KeySpecRetentionMinutes      = "spec_retention_minutes"
	KeySpecSweepMinutes          = "spec_sweep_minutes"
	KeyCacheDirectionsTTLMinutes = "cache_directions_ttl_minutes"
	KeyCacheImageryTTLHours      = "cache_imagery_ttl_hours"
)
