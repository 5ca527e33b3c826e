package application

import (
	"context"
	"strconv"
	"strings"

	"github.com/slaxmankiran/aitravel-app-sub008/core/settings/domain"
	"github.com/slaxmankiran/aitravel-app-sub008/core/settings/infrastructure"
	"github.com/slaxmankiran/aitravel-app-sub008/pkg/crypto"
	"gorm.io/gorm"
)

// SettingsService reads display state for the settings screen and guards the
// provider API keys, which are the only values stored encrypted. Plain
// tunables (thresholds, TTLs) are persisted by the config package through
// its own loaders; this service only aggregates them for display.
type SettingsService struct {
	repo   domain.ISettingsRepository
	cipher *crypto.Cipher
}

func NewSettingsService(db *gorm.DB, cipher *crypto.Cipher) *SettingsService {
	return &SettingsService{
		repo:   infrastructure.NewSettingsGormRepository(db),
		cipher: cipher,
	}
}

type DynamicSettings struct {
	PlannerProvider           string
	PlannerModel              string
	GeminiAPIKeySet           bool
	OpenAIAPIKeySet           bool
	SpecTriggerThreshold      *int
	SpecMaxDays               *int
	SpecRetentionMinutes      *int
	SpecSweepMinutes          *int
	CacheDirectionsTTLMinutes *int
	CacheImageryTTLHours      *int
}

func (s *SettingsService) GetDynamicSettings(ctx context.Context) (*DynamicSettings, error) {
	if err := s.repo.InitSchema(ctx); err != nil {
		return nil, err
	}

	vals, err := s.repo.ListByPrefix(ctx, "")
	if err != nil {
		return nil, err
	}

	ds := &DynamicSettings{}

	if v := vals[domain.KeyPlannerProvider]; v != "" {
		ds.PlannerProvider = v
	}
	if v := vals[domain.KeyPlannerModel]; v != "" {
		ds.PlannerModel = v
	}
	ds.GeminiAPIKeySet = vals[domain.KeyGeminiAPIKey] != ""
	ds.OpenAIAPIKeySet = vals[domain.KeyOpenAIAPIKey] != ""

	ds.SpecTriggerThreshold = intPtr(vals[domain.KeySpecTriggerThreshold])
	ds.SpecMaxDays = intPtr(vals[domain.KeySpecMaxDays])
	ds.SpecRetentionMinutes = intPtr(vals[domain.KeySpecRetentionMinutes])
	ds.SpecSweepMinutes = intPtr(vals[domain.KeySpecSweepMinutes])
	ds.CacheDirectionsTTLMinutes = intPtr(vals[domain.KeyCacheDirectionsTTLMinutes])
	ds.CacheImageryTTLHours = intPtr(vals[domain.KeyCacheImageryTTLHours])

	return ds, nil
}

func intPtr(raw string) *int {
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return nil
	}
	return &n
}

// SetGeminiAPIKey stores the key encrypted; an empty value removes it.
func (s *SettingsService) SetGeminiAPIKey(ctx context.Context, v string) error {
	return s.setEncrypted(ctx, domain.KeyGeminiAPIKey, v)
}

// SetOpenAIAPIKey stores the key encrypted; an empty value removes it.
func (s *SettingsService) SetOpenAIAPIKey(ctx context.Context, v string) error {
	return s.setEncrypted(ctx, domain.KeyOpenAIAPIKey, v)
}

func (s *SettingsService) setEncrypted(ctx context.Context, key, v string) error {
	v = strings.TrimSpace(v)
	if v == "" {
		return s.repo.Delete(ctx, key)
	}
	enc, err := s.cipher.Encrypt(v)
	if err != nil {
		return err
	}
	return s.repo.Set(ctx, key, enc)
}

// LoadProviderKeys decrypts the stored provider keys. Empty strings mean no
// key is stored; the caller falls back to environment configuration.
func (s *SettingsService) LoadProviderKeys(ctx context.Context) (gemini string, openai string, err error) {
	if err = s.repo.InitSchema(ctx); err != nil {
		return "", "", err
	}

	stored, err := s.repo.Get(ctx, domain.KeyGeminiAPIKey)
	if err != nil {
		return "", "", err
	}
	if stored != "" {
		if gemini, err = s.cipher.Decrypt(stored); err != nil {
			return "", "", err
		}
	}

	stored, err = s.repo.Get(ctx, domain.KeyOpenAIAPIKey)
	if err != nil {
		return "", "", err
	}
	if stored != "" {
		if openai, err = s.cipher.Decrypt(stored); err != nil {
			return "", "", err
		}
	}

	return gemini, openai, nil
}
