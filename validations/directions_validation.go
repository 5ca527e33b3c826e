package validations

import (
	"context"
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	domainDirections "github.com/slaxmankiran/aitravel-app-sub008/domains/directions"
	pkgError "github.com/slaxmankiran/aitravel-app-sub008/pkg/error"
)

func ValidateRouteRequest(ctx context.Context, request domainDirections.RouteRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.Mode,
			validation.Required,
			validation.In(domainDirections.ModeDriving, domainDirections.ModeWalking, domainDirections.ModeCycling),
		),
		validation.Field(&request.Waypoints,
			validation.Required,
			validation.Length(2, 25),
			validation.Each(validation.By(validWaypoint)),
		),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}

func validWaypoint(value interface{}) error {
	w, ok := value.(domainDirections.LatLng)
	if !ok {
		return errors.New("must be a coordinate pair")
	}
	if w.Lat < -90 || w.Lat > 90 {
		return errors.New("latitude must be between -90 and 90")
	}
	if w.Lng < -180 || w.Lng > 180 {
		return errors.New("longitude must be between -180 and 180")
	}
	return nil
}
