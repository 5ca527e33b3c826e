package usecase

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/slaxmankiran/aitravel-app-sub008/config"
	domainTrip "github.com/slaxmankiran/aitravel-app-sub008/domains/trip"
	pkgError "github.com/slaxmankiran/aitravel-app-sub008/pkg/error"
	"github.com/slaxmankiran/aitravel-app-sub008/pkg/timeutils"
	"github.com/slaxmankiran/aitravel-app-sub008/validations"
)

type tripService struct {
	repo domainTrip.ITripRepository
}

func NewTripService(repo domainTrip.ITripRepository) domainTrip.ITripUsecase {
	return &tripService{repo: repo}
}

func (s *tripService) Create(ctx context.Context, request domainTrip.CreateTripRequest) (domainTrip.Trip, error) {
	if err := validations.ValidateCreateTrip(ctx, request); err != nil {
		return domainTrip.Trip{}, err
	}

	start, end, err := parseTripDates(request.StartDate, request.EndDate)
	if err != nil {
		return domainTrip.Trip{}, err
	}

	now := time.Now().UTC()
	t := domainTrip.Trip{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(request.Title),
		Destination: strings.TrimSpace(request.Destination),
		StartDate:   start,
		EndDate:     end,
		Travelers:   request.Travelers,
		Budget:      request.Budget,
		Interests:   request.Interests,
		Status:      domainTrip.StatusDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return domainTrip.Trip{}, err
	}

	logrus.Infof("[TRIP] created %s (%s, %d days)", t.ID, t.Destination, t.DurationDays())
	return t, nil
}

func (s *tripService) List(ctx context.Context) ([]domainTrip.Trip, error) {
	return s.repo.List(ctx)
}

func (s *tripService) GetByID(ctx context.Context, id string) (domainTrip.Trip, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domainTrip.Trip{}, err
	}

	days, err := s.repo.DaysByTrip(ctx, id)
	if err != nil {
		return domainTrip.Trip{}, err
	}
	t.Days = days
	return t, nil
}

func (s *tripService) Update(ctx context.Context, request domainTrip.UpdateTripRequest) (domainTrip.Trip, error) {
	if err := validations.ValidateUpdateTrip(ctx, request); err != nil {
		return domainTrip.Trip{}, err
	}

	t, err := s.repo.GetByID(ctx, request.ID)
	if err != nil {
		return domainTrip.Trip{}, err
	}

	start, end, err := parseTripDates(request.StartDate, request.EndDate)
	if err != nil {
		return domainTrip.Trip{}, err
	}

	// Cambiar fechas o destino invalida el itinerario ya generado.
	invalidated := !start.Equal(t.StartDate) || !end.Equal(t.EndDate) ||
		!strings.EqualFold(strings.TrimSpace(request.Destination), t.Destination)
	if invalidated && t.Status != domainTrip.StatusDraft {
		if err := s.repo.DeleteDays(ctx, t.ID); err != nil {
			return domainTrip.Trip{}, err
		}
		t.Status = domainTrip.StatusDraft
		logrus.Infof("[TRIP] %s rescheduled, itinerary discarded", t.ID)
	}

	t.Title = strings.TrimSpace(request.Title)
	t.Destination = strings.TrimSpace(request.Destination)
	t.StartDate = start
	t.EndDate = end
	t.Travelers = request.Travelers
	t.Budget = request.Budget
	t.Interests = request.Interests
	t.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, t); err != nil {
		return domainTrip.Trip{}, err
	}
	return t, nil
}

func (s *tripService) Delete(ctx context.Context, id string) error {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if t.CoverImage != "" {
		removeStaticFile(t.CoverImage)
	}
	logrus.Infof("[TRIP] deleted %s", id)
	return nil
}

func (s *tripService) SetCoverImage(ctx context.Context, id string, path string) (domainTrip.Trip, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domainTrip.Trip{}, err
	}

	if t.CoverImage != "" && t.CoverImage != path {
		removeStaticFile(t.CoverImage)
	}

	t.CoverImage = path
	t.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, t); err != nil {
		return domainTrip.Trip{}, err
	}
	return t, nil
}

func (s *tripService) GetItinerary(ctx context.Context, id string) ([]domainTrip.ItineraryDay, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.DaysByTrip(ctx, id)
}

// parseTripDates valida el rango de fechas y lo acota al máximo configurado.
func parseTripDates(startDate, endDate string) (time.Time, time.Time, error) {
	start, err := timeutils.ParseDate(startDate)
	if err != nil {
		return time.Time{}, time.Time{}, pkgError.ValidationError("start_date: " + err.Error())
	}
	end, err := timeutils.ParseDate(endDate)
	if err != nil {
		return time.Time{}, time.Time{}, pkgError.ValidationError("end_date: " + err.Error())
	}

	duration, err := timeutils.TripDurationDays(start, end)
	if err != nil {
		return time.Time{}, time.Time{}, pkgError.ValidationError("end_date must not be before start_date")
	}
	if duration > config.TripMaxDays {
		return time.Time{}, time.Time{}, pkgError.ValidationError(
			fmt.Sprintf("trip length %d days exceeds the maximum of %d", duration, config.TripMaxDays))
	}
	return start, end, nil
}

// removeStaticFile borra un asset servido bajo /statics. Un fallo aquí no es
// motivo para abortar la operación que lo originó.
func removeStaticFile(webPath string) {
	rel := strings.TrimPrefix(webPath, "/")
	if rel == "" || !strings.HasPrefix(rel, config.PathStatics) {
		return
	}
	if err := os.Remove(rel); err != nil && !os.IsNotExist(err) {
		logrus.Warnf("[TRIP] could not remove %s: %v", rel, err)
	}
}
