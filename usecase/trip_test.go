package usecase

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slaxmankiran/aitravel-app-sub008/core/database"
	domainTrip "github.com/slaxmankiran/aitravel-app-sub008/domains/trip"
	pkgError "github.com/slaxmankiran/aitravel-app-sub008/pkg/error"
	"github.com/slaxmankiran/aitravel-app-sub008/repository"
)

func newTripFixture(t *testing.T) (domainTrip.ITripUsecase, domainTrip.ITripRepository) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "trips_test.db")
	db, err := database.Open("file:"+dbPath+"?_journal_mode=WAL", false)
	require.NoError(t, err)

	repo := repository.NewTripGormRepository(db)
	require.NoError(t, repo.Init(context.Background()))

	return NewTripService(repo), repo
}

func validCreateRequest() domainTrip.CreateTripRequest {
	return domainTrip.CreateTripRequest{
		Title:       "Semana en Kioto",
		Destination: "Kyoto, Japan",
		StartDate:   "2026-09-10",
		EndDate:     "2026-09-14",
		Travelers:   2,
		Budget:      "medium",
		Interests:   []string{"templos", "gastronomía"},
	}
}

func TestCreateTripPersistsDraft(t *testing.T) {
	service, repo := newTripFixture(t)

	created, err := service.Create(context.Background(), validCreateRequest())
	assert.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, domainTrip.StatusDraft, created.Status)
	assert.Equal(t, 5, created.DurationDays())

	stored, err := repo.GetByID(context.Background(), created.ID)
	assert.NoError(t, err)
	assert.Equal(t, "Kyoto, Japan", stored.Destination)
	assert.Equal(t, []string{"templos", "gastronomía"}, stored.Interests)
}

func TestCreateTripRejectsBadDates(t *testing.T) {
	service, _ := newTripFixture(t)

	// Fin antes del inicio.
	request := validCreateRequest()
	request.StartDate = "2026-09-14"
	request.EndDate = "2026-09-10"
	_, err := service.Create(context.Background(), request)
	assert.Error(t, err)
	assert.IsType(t, pkgError.ValidationError(""), err)

	// Formato inválido.
	request = validCreateRequest()
	request.StartDate = "10/09/2026"
	_, err = service.Create(context.Background(), request)
	assert.Error(t, err)

	// Más largo que el máximo permitido.
	request = validCreateRequest()
	request.EndDate = "2026-12-31"
	_, err = service.Create(context.Background(), request)
	assert.Error(t, err)
}

func TestCreateTripRequiresDestinationAndTravelers(t *testing.T) {
	service, _ := newTripFixture(t)

	request := validCreateRequest()
	request.Destination = ""
	_, err := service.Create(context.Background(), request)
	assert.Error(t, err)

	request = validCreateRequest()
	request.Travelers = 0
	_, err = service.Create(context.Background(), request)
	assert.Error(t, err)
}

func TestUpdateReschedulingDiscardsItinerary(t *testing.T) {
	service, repo := newTripFixture(t)

	created, err := service.Create(context.Background(), validCreateRequest())
	require.NoError(t, err)

	// Simular un itinerario ya generado.
	require.NoError(t, repo.SaveDay(context.Background(), domainTrip.ItineraryDay{
		ID:        uuid.NewString(),
		TripID:    created.ID,
		DayNumber: 1,
		Date:      created.StartDate,
		Summary:   "Llegada",
		CreatedAt: time.Now().UTC(),
	}))
	created.Status = domainTrip.StatusReady
	require.NoError(t, repo.Update(context.Background(), created))

	update := domainTrip.UpdateTripRequest{
		ID:          created.ID,
		Title:       created.Title,
		Destination: created.Destination,
		StartDate:   "2026-10-01",
		EndDate:     "2026-10-05",
		Travelers:   created.Travelers,
		Budget:      created.Budget,
		Interests:   created.Interests,
	}
	updated, err := service.Update(context.Background(), update)
	assert.NoError(t, err)
	assert.Equal(t, domainTrip.StatusDraft, updated.Status, "reprogramar invalida el itinerario")

	days, err := repo.DaysByTrip(context.Background(), created.ID)
	assert.NoError(t, err)
	assert.Empty(t, days)
}

func TestUpdateKeepingScheduleKeepsItinerary(t *testing.T) {
	service, repo := newTripFixture(t)

	created, err := service.Create(context.Background(), validCreateRequest())
	require.NoError(t, err)

	require.NoError(t, repo.SaveDay(context.Background(), domainTrip.ItineraryDay{
		ID:        uuid.NewString(),
		TripID:    created.ID,
		DayNumber: 1,
		Date:      created.StartDate,
		Summary:   "Llegada",
		CreatedAt: time.Now().UTC(),
	}))
	created.Status = domainTrip.StatusReady
	require.NoError(t, repo.Update(context.Background(), created))

	// Solo cambia el título: el itinerario sobrevive.
	update := domainTrip.UpdateTripRequest{
		ID:          created.ID,
		Title:       "Kioto en otoño",
		Destination: created.Destination,
		StartDate:   "2026-09-10",
		EndDate:     "2026-09-14",
		Travelers:   created.Travelers,
		Budget:      created.Budget,
		Interests:   created.Interests,
	}
	updated, err := service.Update(context.Background(), update)
	assert.NoError(t, err)
	assert.Equal(t, domainTrip.StatusReady, updated.Status)
	assert.Equal(t, "Kioto en otoño", updated.Title)

	days, err := repo.DaysByTrip(context.Background(), created.ID)
	assert.NoError(t, err)
	assert.Len(t, days, 1)
}

func TestGetByIDAttachesItinerary(t *testing.T) {
	service, repo := newTripFixture(t)

	created, err := service.Create(context.Background(), validCreateRequest())
	require.NoError(t, err)

	for day := 1; day <= 2; day++ {
		require.NoError(t, repo.SaveDay(context.Background(), domainTrip.ItineraryDay{
			ID:        uuid.NewString(),
			TripID:    created.ID,
			DayNumber: day,
			Date:      created.StartDate.AddDate(0, 0, day-1),
			Summary:   "Día de prueba",
			CreatedAt: time.Now().UTC(),
		}))
	}

	fetched, err := service.GetByID(context.Background(), created.ID)
	assert.NoError(t, err)
	assert.Len(t, fetched.Days, 2)
}

func TestDeleteUnknownTripFails(t *testing.T) {
	service, _ := newTripFixture(t)

	err := service.Delete(context.Background(), uuid.NewString())
	assert.Error(t, err)
	assert.IsType(t, pkgError.NotFoundError(""), err)
}
