package usecase

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/slaxmankiran/aitravel-app-sub008/config"
	"github.com/slaxmankiran/aitravel-app-sub008/core/settings/application"
	domainSettings "github.com/slaxmankiran/aitravel-app-sub008/domains/appsettings"
	"github.com/slaxmankiran/aitravel-app-sub008/pkg/speculation"
	"github.com/slaxmankiran/aitravel-app-sub008/validations"
)

type appSettingsService struct {
	secrets *application.SettingsService
	tracker *speculation.Tracker
}

func NewAppSettingsService(secrets *application.SettingsService, tracker *speculation.Tracker) domainSettings.ISettingsUsecase {
	return &appSettingsService{secrets: secrets, tracker: tracker}
}

func (s *appSettingsService) Get(ctx context.Context) (domainSettings.SettingsView, error) {
	dyn, err := s.secrets.GetDynamicSettings(ctx)
	if err != nil {
		return domainSettings.SettingsView{}, err
	}

	return domainSettings.SettingsView{
		PlannerProvider:           config.PlannerProvider,
		PlannerModel:              config.PlannerModel,
		GeminiAPIKeySet:           dyn.GeminiAPIKeySet || config.GeminiAPIKey != "",
		OpenAIAPIKeySet:           dyn.OpenAIAPIKeySet || config.OpenAIAPIKey != "",
		SpecTriggerThreshold:      config.SpecTriggerThreshold,
		SpecMaxDays:               config.SpecMaxDays,
		SpecRetentionMinutes:      config.SpecRetentionMinutes,
		SpecSweepMinutes:          config.SpecSweepMinutes,
		DirectionsCacheTTLMinutes: config.DirectionsCacheTTLMinutes,
		ImageryCacheTTLHours:      config.ImageryCacheTTLHours,
	}, nil
}

func (s *appSettingsService) Update(ctx context.Context, request domainSettings.UpdateSettingsRequest) (domainSettings.SettingsView, error) {
	if err := validations.ValidateUpdateSettings(ctx, request); err != nil {
		return domainSettings.SettingsView{}, err
	}

	if request.PlannerProvider != nil {
		config.SetPlannerProvider(*request.PlannerProvider)
	}
	if request.PlannerModel != nil {
		config.PlannerModel = strings.TrimSpace(*request.PlannerModel)
	}

	// Las claves viajan cifradas al almacenamiento y en claro a la
	// configuración viva, para que el próximo request ya las use.
	if request.GeminiAPIKey != nil {
		if err := s.secrets.SetGeminiAPIKey(ctx, *request.GeminiAPIKey); err != nil {
			return domainSettings.SettingsView{}, err
		}
		config.GeminiAPIKey = strings.TrimSpace(*request.GeminiAPIKey)
	}
	if request.OpenAIAPIKey != nil {
		if err := s.secrets.SetOpenAIAPIKey(ctx, *request.OpenAIAPIKey); err != nil {
			return domainSettings.SettingsView{}, err
		}
		config.OpenAIAPIKey = strings.TrimSpace(*request.OpenAIAPIKey)
	}

	if request.SpecTriggerThreshold != nil {
		config.SetSpecTriggerThreshold(*request.SpecTriggerThreshold)
	}
	if request.SpecMaxDays != nil {
		config.SetSpecMaxDays(*request.SpecMaxDays)
	}
	if request.SpecRetentionMinutes != nil {
		config.SetSpecRetentionMinutes(*request.SpecRetentionMinutes)
	}
	if request.SpecSweepMinutes != nil {
		config.SetSpecSweepMinutes(*request.SpecSweepMinutes)
	}
	if request.DirectionsCacheTTLMinutes != nil {
		config.SetDirectionsCacheTTLMinutes(*request.DirectionsCacheTTLMinutes)
	}
	if request.ImageryCacheTTLHours != nil {
		config.SetImageryCacheTTLHours(*request.ImageryCacheTTLHours)
	}

	if err := config.SavePlannerSettingsToDB(); err != nil {
		return domainSettings.SettingsView{}, err
	}

	// Los umbrales del tracker aplican en vivo. Los TTL de caché solo
	// gobiernan cachés construidas a partir de ahora, es decir, tras un
	// reinicio.
	s.tracker.Configure(speculation.Config{
		TriggerThreshold: config.SpecTriggerThreshold,
		MaxDays:          config.SpecMaxDays,
		Retention:        config.SpecRetention(),
	})

	logrus.Info("[SETTINGS] planner settings updated")
	return s.Get(ctx)
}
