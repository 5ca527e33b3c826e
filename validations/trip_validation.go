package validations

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	domainTrip "github.com/slaxmankiran/aitravel-app-sub008/domains/trip"
	pkgError "github.com/slaxmankiran/aitravel-app-sub008/pkg/error"
)

func ValidateCreateTrip(ctx context.Context, request domainTrip.CreateTripRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.Title, validation.Length(0, 200)),
		validation.Field(&request.Destination, validation.Required, validation.Length(2, 200)),
		validation.Field(&request.StartDate, validation.Required, validation.Date("2006-01-02")),
		validation.Field(&request.EndDate, validation.Required, validation.Date("2006-01-02")),
		validation.Field(&request.Travelers, validation.Required, validation.Min(1), validation.Max(20)),
		validation.Field(&request.Budget, validation.In("low", "medium", "high")),
		validation.Field(&request.Interests, validation.Length(0, 20), validation.Each(validation.Length(1, 50))),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}

func ValidateUpdateTrip(ctx context.Context, request domainTrip.UpdateTripRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.ID, validation.Required),
		validation.Field(&request.Title, validation.Length(0, 200)),
		validation.Field(&request.Destination, validation.Required, validation.Length(2, 200)),
		validation.Field(&request.StartDate, validation.Required, validation.Date("2006-01-02")),
		validation.Field(&request.EndDate, validation.Required, validation.Date("2006-01-02")),
		validation.Field(&request.Travelers, validation.Required, validation.Min(1), validation.Max(20)),
		validation.Field(&request.Budget, validation.In("low", "medium", "high")),
		validation.Field(&request.Interests, validation.Length(0, 20), validation.Each(validation.Length(1, 50))),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}
