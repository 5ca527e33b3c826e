package repository

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	domainTrip "github.com/slaxmankiran/aitravel-app-sub008/domains/trip"
	pkgError "github.com/slaxmankiran/aitravel-app-sub008/pkg/error"
	"gorm.io/gorm"
)

// tripModel es el modelo de persistencia para GORM.
// Mantiene el dominio puro al no añadir tags de GORM en el struct de dominio.
type tripModel struct {
	ID          string `gorm:"primaryKey"`
	Title       string
	Destination string    `gorm:"index"`
	StartDate   time.Time `gorm:"column:start_date"`
	EndDate     time.Time `gorm:"column:end_date"`
	Travelers   int       `gorm:"not null;default:1"`
	Budget      string
	Interests   string    `gorm:"column:interests"` // CSV string
	CoverImage  string    `gorm:"column:cover_image"`
	Status      string    `gorm:"not null;default:DRAFT"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (tripModel) TableName() string {
	return "trips"
}

// itineraryDayModel persiste un día generado. Las actividades van como JSON
// para no fragmentar la lectura del itinerario completo.
type itineraryDayModel struct {
	ID          string    `gorm:"primaryKey"`
	TripID      string    `gorm:"column:trip_id;index:idx_trip_day,unique"`
	DayNumber   int       `gorm:"column:day_number;index:idx_trip_day,unique"`
	Date        time.Time `gorm:"column:date"`
	Summary     string
	Activities  string    `gorm:"column:activities"` // JSON array
	Speculative bool      `gorm:"not null;default:false"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

func (itineraryDayModel) TableName() string {
	return "itinerary_days"
}

// TripGormRepository implementa ITripRepository usando GORM.
type TripGormRepository struct {
	db *gorm.DB
}

func NewTripGormRepository(db *gorm.DB) *TripGormRepository {
	return &TripGormRepository{db: db}
}

// Init inicializa el esquema usando AutoMigrate.
func (r *TripGormRepository) Init(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&tripModel{}, &itineraryDayModel{})
}

func (r *TripGormRepository) Create(ctx context.Context, t domainTrip.Trip) error {
	model := toTripModel(t)
	return r.db.WithContext(ctx).Create(&model).Error
}

func (r *TripGormRepository) GetByID(ctx context.Context, id string) (domainTrip.Trip, error) {
	var model tripModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return domainTrip.Trip{}, pkgError.NotFoundError("trip not found")
		}
		return domainTrip.Trip{}, err
	}
	return fromTripModel(model), nil
}

// List retorna todos los trips, los más recientes primero.
func (r *TripGormRepository) List(ctx context.Context) ([]domainTrip.Trip, error) {
	var models []tripModel
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&models).Error
	if err != nil {
		return nil, err
	}

	result := make([]domainTrip.Trip, len(models))
	for i, m := range models {
		result[i] = fromTripModel(m)
	}
	return result, nil
}

func (r *TripGormRepository) Update(ctx context.Context, t domainTrip.Trip) error {
	model := toTripModel(t)
	return r.db.WithContext(ctx).Save(&model).Error
}

// Delete elimina el trip y sus días en cascada.
func (r *TripGormRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&itineraryDayModel{}, "trip_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&tripModel{}, "id = ?", id).Error
	})
}

// SaveDay inserta o reemplaza el día (trip_id, day_number es único).
func (r *TripGormRepository) SaveDay(ctx context.Context, day domainTrip.ItineraryDay) error {
	model, err := toDayModel(day)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&itineraryDayModel{}, "trip_id = ? AND day_number = ?", day.TripID, day.DayNumber).Error; err != nil {
			return err
		}
		return tx.Create(&model).Error
	})
}

func (r *TripGormRepository) DaysByTrip(ctx context.Context, tripID string) ([]domainTrip.ItineraryDay, error) {
	var models []itineraryDayModel
	err := r.db.WithContext(ctx).Order("day_number ASC").Find(&models, "trip_id = ?", tripID).Error
	if err != nil {
		return nil, err
	}

	result := make([]domainTrip.ItineraryDay, len(models))
	for i, m := range models {
		day, err := fromDayModel(m)
		if err != nil {
			return nil, err
		}
		result[i] = day
	}
	return result, nil
}

func (r *TripGormRepository) DeleteDays(ctx context.Context, tripID string) error {
	return r.db.WithContext(ctx).Delete(&itineraryDayModel{}, "trip_id = ?", tripID).Error
}

// MarkDaysConfirmed quita la marca especulativa cuando el usuario pide el
// itinerario completo y los días pregenerados pasan a ser definitivos.
func (r *TripGormRepository) MarkDaysConfirmed(ctx context.Context, tripID string) error {
	return r.db.WithContext(ctx).
		Model(&itineraryDayModel{}).
		Where("trip_id = ? AND speculative = ?", tripID, true).
		Update("speculative", false).Error
}

// Mappers manuales para mantener la pureza del dominio.
func toTripModel(t domainTrip.Trip) tripModel {
	return tripModel{
		ID:          t.ID,
		Title:       t.Title,
		Destination: t.Destination,
		StartDate:   t.StartDate,
		EndDate:     t.EndDate,
		Travelers:   t.Travelers,
		Budget:      t.Budget,
		Interests:   strings.Join(t.Interests, ","),
		CoverImage:  t.CoverImage,
		Status:      string(t.Status),
	}
}

func fromTripModel(m tripModel) domainTrip.Trip {
	var interests []string
	trimmed := strings.TrimSpace(m.Interests)
	if trimmed != "" {
		interests = strings.Split(trimmed, ",")
	}

	return domainTrip.Trip{
		ID:          m.ID,
		Title:       m.Title,
		Destination: m.Destination,
		StartDate:   m.StartDate,
		EndDate:     m.EndDate,
		Travelers:   m.Travelers,
		Budget:      m.Budget,
		Interests:   interests,
		CoverImage:  strings.TrimSpace(m.CoverImage),
		Status:      domainTrip.Status(m.Status),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func toDayModel(d domainTrip.ItineraryDay) (itineraryDayModel, error) {
	activities, err := json.Marshal(d.Activities)
	if err != nil {
		return itineraryDayModel{}, err
	}
	return itineraryDayModel{
		ID:          d.ID,
		TripID:      d.TripID,
		DayNumber:   d.DayNumber,
		Date:        d.Date,
		Summary:     d.Summary,
		Activities:  string(activities),
		Speculative: d.Speculative,
	}, nil
}

func fromDayModel(m itineraryDayModel) (domainTrip.ItineraryDay, error) {
	var activities []domainTrip.Activity
	raw := strings.TrimSpace(m.Activities)
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &activities); err != nil {
			return domainTrip.ItineraryDay{}, err
		}
	}
	return domainTrip.ItineraryDay{
		ID:          m.ID,
		TripID:      m.TripID,
		DayNumber:   m.DayNumber,
		Date:        m.Date,
		Summary:     m.Summary,
		Activities:  activities,
		Speculative: m.Speculative,
		CreatedAt:   m.CreatedAt,
	}, nil
}
