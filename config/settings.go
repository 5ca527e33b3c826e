package config

import (
	"database/sql"
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

var (
	AppVersion             = "v1.4.0"
	AppPort                = "3000"
	AppDebug               = false
	AppBasicAuthCredential []string
	AppBasePath            = ""
	AppTrustedProxies      []string // Trusted proxy IP ranges (e.g., "0.0.0.0/0" for all, or specific CIDRs)
	AppCorsAllowedOrigins  = []string{"http://localhost:5173"}

	McpPort = "8080"
	McpHost = "localhost"

	PathStorages = "storages"
	PathStatics  = "statics"
	PathCovers   = "statics/covers"
	PathImagery  = "statics/imagery"

	DBURI = "file:storages/aitravel.db?_journal_mode=WAL&_foreign_keys=on"

	// AppSecretKey encrypts provider API keys persisted in global_settings.
	// When empty, keys are stored in plain text.
	AppSecretKey = ""

	PlannerProvider = "gemini"
	PlannerModel    = ""
	GeminiAPIKey    = ""
	OpenAIAPIKey    = ""

	// Speculative itinerary generation (tunable at runtime, persisted in DB)
	SpecTriggerThreshold = 80
	SpecMaxDays          = 3
	SpecRetentionMinutes = 10
	SpecSweepMinutes     = 5

	DirectionsCacheSize       = 100
	DirectionsCacheTTLMinutes = 30
	ImageryCacheSize          = 200
	ImageryCacheTTLHours      = 24

	RoutingBaseURL        = "https://router.project-osrm.org"
	RoutingTimeoutSeconds = 15

	ImageryAPIBaseURL     = ""
	ImageryAPIKey         = ""
	ImageryTimeoutSeconds = 20

	PlanWorkerPoolSize  = 4
	PlanWorkerQueueSize = 50

	TripMaxCoverSizeMB = 10
	TripMaxDays        = 30
)

func init() {
	if v := strings.TrimSpace(os.Getenv("GEMINI_API_KEY")); v != "" {
		GeminiAPIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("OPENAI_API_KEY")); v != "" {
		OpenAIAPIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("PLANNER_PROVIDER")); v != "" {
		SetPlannerProvider(v)
	}
	if v := strings.TrimSpace(os.Getenv("PLANNER_MODEL")); v != "" {
		PlannerModel = v
	}
	if v := strings.TrimSpace(os.Getenv("APP_SECRET_KEY")); v != "" {
		AppSecretKey = v
	}
	if n, err := strconv.Atoi(os.Getenv("SPEC_TRIGGER_THRESHOLD")); err == nil {
		SetSpecTriggerThreshold(n)
	}
	if n, err := strconv.Atoi(os.Getenv("SPEC_MAX_DAYS")); err == nil {
		SetSpecMaxDays(n)
	}
	if n, err := strconv.Atoi(os.Getenv("SPEC_RETENTION_MINUTES")); err == nil {
		SetSpecRetentionMinutes(n)
	}
	if n, err := strconv.Atoi(os.Getenv("SPEC_SWEEP_MINUTES")); err == nil {
		SetSpecSweepMinutes(n)
	}
	if n, err := strconv.Atoi(os.Getenv("DIRECTIONS_CACHE_SIZE")); err == nil && n > 0 {
		DirectionsCacheSize = n
	}
	if n, err := strconv.Atoi(os.Getenv("DIRECTIONS_CACHE_TTL_MINUTES")); err == nil {
		SetDirectionsCacheTTLMinutes(n)
	}
	if n, err := strconv.Atoi(os.Getenv("IMAGERY_CACHE_SIZE")); err == nil && n > 0 {
		ImageryCacheSize = n
	}
	if n, err := strconv.Atoi(os.Getenv("IMAGERY_CACHE_TTL_HOURS")); err == nil {
		SetImageryCacheTTLHours(n)
	}
	if n, err := strconv.Atoi(os.Getenv("PLAN_WORKER_POOL_SIZE")); err == nil && n > 0 {
		PlanWorkerPoolSize = n
	}
	if n, err := strconv.Atoi(os.Getenv("PLAN_WORKER_QUEUE_SIZE")); err == nil && n > 0 {
		PlanWorkerQueueSize = n
	}
	if v := strings.TrimSpace(os.Getenv("ROUTING_BASE_URL")); v != "" {
		RoutingBaseURL = strings.TrimRight(v, "/")
	}
	if v := strings.TrimSpace(os.Getenv("IMAGERY_API_BASE_URL")); v != "" {
		ImageryAPIBaseURL = strings.TrimRight(v, "/")
	}
	if v := strings.TrimSpace(os.Getenv("IMAGERY_API_KEY")); v != "" {
		ImageryAPIKey = v
	}
	// DB_URI must land before the DB-backed reload below; the CLI flag can
	// still replace it afterwards for the live connections.
	if v := strings.TrimSpace(os.Getenv("DB_URI")); v != "" {
		DBURI = v
	}

	loadPlannerSettingsFromDB()
}

func SetPlannerProvider(name string) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "gemini":
		PlannerProvider = "gemini"
	case "openai":
		PlannerProvider = "openai"
	}
}

func SetSpecTriggerThreshold(n int) {
	if n >= 0 && n <= 100 {
		SpecTriggerThreshold = n
	}
}

func SetSpecMaxDays(n int) {
	if n >= 1 {
		SpecMaxDays = n
	}
}

func SetSpecRetentionMinutes(n int) {
	if n >= 1 {
		SpecRetentionMinutes = n
	}
}

func SetSpecSweepMinutes(n int) {
	if n >= 1 {
		SpecSweepMinutes = n
	}
}

func SetDirectionsCacheTTLMinutes(n int) {
	if n >= 1 {
		DirectionsCacheTTLMinutes = n
	}
}

func SetImageryCacheTTLHours(n int) {
	if n >= 1 {
		ImageryCacheTTLHours = n
	}
}

func SpecRetention() time.Duration {
	return time.Duration(SpecRetentionMinutes) * time.Minute
}

func SpecSweepInterval() time.Duration {
	return time.Duration(SpecSweepMinutes) * time.Minute
}

func DirectionsCacheTTL() time.Duration {
	return time.Duration(DirectionsCacheTTLMinutes) * time.Minute
}

func ImageryCacheTTL() time.Duration {
	return time.Duration(ImageryCacheTTLHours) * time.Hour
}

// DatabaseDriver picks the database/sql driver from the configured URI.
// Postgres URIs go through lib/pq, anything else is treated as sqlite.
func DatabaseDriver() string {
	if strings.HasPrefix(DBURI, "postgres://") || strings.HasPrefix(DBURI, "postgresql://") {
		return "postgres"
	}
	return "sqlite3"
}

func openSettingsDB() (*sql.DB, error) {
	db, err := sql.Open(DatabaseDriver(), DBURI)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS global_settings (key TEXT PRIMARY KEY, value TEXT)`); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// loadPlannerSettingsFromDB re-applies tunables persisted by the settings
// service so runtime changes survive a restart. Missing DB or table is
// normal on first boot, so errors are swallowed here.
func loadPlannerSettingsFromDB() {
	db, err := openSettingsDB()
	if err != nil {
		return
	}
	defer db.Close()

	rows, err := db.Query(`SELECT key, value FROM global_settings WHERE key LIKE 'planner_%' OR key LIKE 'spec_%' OR key LIKE 'cache_%'`)
	if err != nil {
		return
	}
	defer rows.Close()

	for rows.Next() {
		var k string
		var v sql.NullString
		if err := rows.Scan(&k, &v); err != nil || !v.Valid {
			continue
		}
		applySetting(k, strings.TrimSpace(v.String))
	}
}

func applySetting(key, value string) {
	switch key {
	case "planner_provider":
		SetPlannerProvider(value)
	case "planner_model":
		PlannerModel = value
	case "spec_trigger_threshold":
		if n, err := strconv.Atoi(value); err == nil {
			SetSpecTriggerThreshold(n)
		}
	case "spec_max_days":
		if n, err := strconv.Atoi(value); err == nil {
			SetSpecMaxDays(n)
		}
	case "spec_retention_minutes":
		if n, err := strconv.Atoi(value); err == nil {
			SetSpecRetentionMinutes(n)
		}
	case "spec_sweep_minutes":
		if n, err := strconv.Atoi(value); err == nil {
			SetSpecSweepMinutes(n)
		}
	case "cache_directions_ttl_minutes":
		if n, err := strconv.Atoi(value); err == nil {
			SetDirectionsCacheTTLMinutes(n)
		}
	case "cache_imagery_ttl_hours":
		if n, err := strconv.Atoi(value); err == nil {
			SetImageryCacheTTLHours(n)
		}
	}
}

// SavePlannerSettingsToDB persists the current tunables so they survive a
// restart. Called by the settings service after applying changes.
func SavePlannerSettingsToDB() error {
	db, err := openSettingsDB()
	if err != nil {
		return err
	}
	defer db.Close()

	query := `INSERT INTO global_settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`
	if DatabaseDriver() == "postgres" {
		query = `INSERT INTO global_settings (key, value) VALUES ($1, $2) ON CONFLICT(key) DO UPDATE SET value = excluded.value`
	}

	entries := map[string]string{
		"planner_provider":             PlannerProvider,
		"planner_model":                PlannerModel,
		"spec_trigger_threshold":       strconv.Itoa(SpecTriggerThreshold),
		"spec_max_days":                strconv.Itoa(SpecMaxDays),
		"spec_retention_minutes":       strconv.Itoa(SpecRetentionMinutes),
		"spec_sweep_minutes":           strconv.Itoa(SpecSweepMinutes),
		"cache_directions_ttl_minutes": strconv.Itoa(DirectionsCacheTTLMinutes),
		"cache_imagery_ttl_hours":      strconv.Itoa(ImageryCacheTTLHours),
	}
	for k, v := range entries {
		if _, err := db.Exec(query, k, v); err != nil {
			return err
		}
	}
	return nil
}
