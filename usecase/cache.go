package usecase

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	"github.com/slaxmankiran/aitravel-app-sub008/config"
	domainMediaCache "github.com/slaxmankiran/aitravel-app-sub008/domains/mediacache"
)

// mediaCacheService limpia los derivados de imagen en disco (miniaturas de
// destinos). Las portadas subidas por el usuario no se tocan: pertenecen al
// viaje, no a la caché.
type mediaCacheService struct{}

func NewMediaCacheService() domainMediaCache.IMediaCacheUsecase {
	return &mediaCacheService{}
}

func (s *mediaCacheService) cacheDirs() []string {
	return []string{config.PathImagery}
}

func (s *mediaCacheService) GetSettings(ctx context.Context) (domainMediaCache.CacheSettings, error) {
	db, err := sql.Open(config.DatabaseDriver(), config.DBURI)
	if err != nil {
		return domainMediaCache.CacheSettings{}, err
	}
	defer db.Close()

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS global_settings (key TEXT PRIMARY KEY, value TEXT)`); err != nil {
		return domainMediaCache.CacheSettings{}, err
	}

	settings := domainMediaCache.CacheSettings{
		Enabled:                true,
		MaxAgeDays:             30,
		MaxSizeMB:              512,
		CleanupIntervalMinutes: 60,
	}

	rows, err := db.QueryContext(ctx, `SELECT key, value FROM global_settings WHERE key LIKE 'cache_media_%'`)
	if err != nil {
		return settings, nil
	}
	defer rows.Close()

	for rows.Next() {
		var key, val string
		if err := rows.Scan(&key, &val); err == nil {
			switch key {
			case "cache_media_enabled":
				settings.Enabled = val == "1" || val == "true"
			case "cache_media_max_age_days":
				if n, err := strconv.Atoi(val); err == nil {
					settings.MaxAgeDays = n
				}
			case "cache_media_max_size_mb":
				if n, err := strconv.ParseInt(val, 10, 64); err == nil {
					settings.MaxSizeMB = n
				}
			case "cache_media_cleanup_minutes":
				if n, err := strconv.Atoi(val); err == nil {
					settings.CleanupIntervalMinutes = n
				}
			}
		}
	}

	return settings, nil
}

func (s *mediaCacheService) SaveSettings(ctx context.Context, settings domainMediaCache.CacheSettings) error {
	db, err := sql.Open(config.DatabaseDriver(), config.DBURI)
	if err != nil {
		return err
	}
	defer db.Close()

	query := `INSERT INTO global_settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`
	if config.DatabaseDriver() == "postgres" {
		query = `INSERT INTO global_settings (key, value) VALUES ($1, $2) ON CONFLICT(key) DO UPDATE SET value = excluded.value`
	}

	save := func(key, val string) {
		db.ExecContext(ctx, query, key, val)
	}

	enabledStr := "0"
	if settings.Enabled {
		enabledStr = "1"
	}

	save("cache_media_enabled", enabledStr)
	save("cache_media_max_age_days", strconv.Itoa(settings.MaxAgeDays))
	save("cache_media_max_size_mb", strconv.FormatInt(settings.MaxSizeMB, 10))
	save("cache_media_cleanup_minutes", strconv.Itoa(settings.CleanupIntervalMinutes))

	return nil
}

func (s *mediaCacheService) StartBackgroundCleanup(ctx context.Context) {
	go func() {
		for {
			settings, err := s.GetSettings(context.Background())
			if err != nil || !settings.Enabled {
				select {
				case <-ctx.Done():
					return
				case <-time.After(5 * time.Minute):
					continue
				}
			}

			logrus.Info("[MEDIA_CACHE] Running scheduled cleanup...")
			s.runCleanup(settings)

			interval := time.Duration(settings.CleanupIntervalMinutes) * time.Minute
			if interval < 5*time.Minute {
				interval = 5 * time.Minute
			}

			select {
			case <-ctx.Done():
				return
			case <-time.After(interval):
			}
		}
	}()
}

func (s *mediaCacheService) runCleanup(settings domainMediaCache.CacheSettings) {
	maxAge := time.Duration(settings.MaxAgeDays) * 24 * time.Hour
	cutoff := time.Now().Add(-maxAge)

	for _, dir := range s.cacheDirs() {
		s.pruneByAge(dir, cutoff)
	}

	maxSizeBytes := settings.MaxSizeMB * 1024 * 1024
	if maxSizeBytes > 0 {
		s.pruneBySize(maxSizeBytes)
	}
}

func (s *mediaCacheService) pruneByAge(path string, cutoff time.Time) {
	filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() && info.Name() != ".gitignore" && info.ModTime().Before(cutoff) {
			os.Remove(p)
		}
		return nil
	})
}

type cachedFile struct {
	Path string
	Size int64
	Time time.Time
}

func (s *mediaCacheService) pruneBySize(limit int64) {
	var files []cachedFile
	var totalSize int64

	for _, dir := range s.cacheDirs() {
		filepath.Walk(dir, func(p string, info os.FileInfo, err error) error {
			if err == nil && !info.IsDir() && info.Name() != ".gitignore" {
				files = append(files, cachedFile{Path: p, Size: info.Size(), Time: info.ModTime()})
				totalSize += info.Size()
			}
			return nil
		})
	}

	if totalSize <= limit {
		return
	}

	// Los más antiguos caen primero.
	sort.Slice(files, func(i, j int) bool {
		return files[i].Time.Before(files[j].Time)
	})

	for _, f := range files {
		if totalSize <= limit {
			break
		}
		if err := os.Remove(f.Path); err == nil {
			totalSize -= f.Size
		}
	}
}

func (s *mediaCacheService) GetStats(ctx context.Context) (domainMediaCache.CacheStats, error) {
	var totalSize int64
	var count int

	for _, dir := range s.cacheDirs() {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			continue
		}
		filepath.Walk(dir, func(_ string, info os.FileInfo, err error) error {
			if err == nil && !info.IsDir() && info.Name() != ".gitignore" {
				totalSize += info.Size()
				count++
			}
			return nil
		})
	}

	return domainMediaCache.CacheStats{
		TotalSize: totalSize,
		HumanSize: humanize.Bytes(uint64(totalSize)),
		Files:     count,
	}, nil
}

func (s *mediaCacheService) Clear(ctx context.Context) error {
	for _, dir := range s.cacheDirs() {
		files, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, f := range files {
			if f.Name() == ".gitignore" {
				continue
			}
			os.RemoveAll(filepath.Join(dir, f.Name()))
		}
	}
	logrus.Info("[MEDIA_CACHE] cleared derived image assets")
	return nil
}
