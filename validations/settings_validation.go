package validations

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	domainSettings "github.com/slaxmankiran/aitravel-app-sub008/domains/appsettings"
	pkgError "github.com/slaxmankiran/aitravel-app-sub008/pkg/error"
)

func ValidateUpdateSettings(ctx context.Context, request domainSettings.UpdateSettingsRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.PlannerProvider, validation.In("gemini", "openai")),
		validation.Field(&request.PlannerModel, validation.Length(0, 100)),
		validation.Field(&request.SpecTriggerThreshold, validation.Min(0), validation.Max(100)),
		validation.Field(&request.SpecMaxDays, validation.Min(1), validation.Max(14)),
		validation.Field(&request.SpecRetentionMinutes, validation.Min(1), validation.Max(1440)),
		validation.Field(&request.SpecSweepMinutes, validation.Min(1), validation.Max(720)),
		validation.Field(&request.DirectionsCacheTTLMinutes, validation.Min(1), validation.Max(10080)),
		validation.Field(&request.ImageryCacheTTLHours, validation.Min(1), validation.Max(720)),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}
