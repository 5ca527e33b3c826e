package mediacache

import "context"

// CacheSettings governs the on-disk janitor for derived image assets.
type CacheSettings struct {
	Enabled                bool  `json:"enabled"`
	MaxAgeDays             int   `json:"max_age_days"`
	MaxSizeMB              int64 `json:"max_size_mb"`
	CleanupIntervalMinutes int   `json:"cleanup_interval_minutes"`
}

type CacheStats struct {
	TotalSize int64  `json:"total_size"`
	HumanSize string `json:"human_size"`
	Files     int    `json:"files"`
}

type IMediaCacheUsecase interface {
	GetSettings(ctx context.Context) (CacheSettings, error)
	SaveSettings(ctx context.Context, settings CacheSettings) error
	GetStats(ctx context.Context) (CacheStats, error)
	Clear(ctx context.Context) error
	StartBackgroundCleanup(ctx context.Context)
}
