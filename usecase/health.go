package usecase

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/slaxmankiran/aitravel-app-sub008/config"
	domainDirections "github.com/slaxmankiran/aitravel-app-sub008/domains/directions"
	"github.com/slaxmankiran/aitravel-app-sub008/domains/health"
)

type healthService struct {
	db      *sql.DB
	gormDB  *gorm.DB
	routing domainDirections.IRoutingClient
}

// initHealthStorageDB abre una base sqlite local para el histórico de checks,
// separada de la base principal para que un fallo de esta última siga siendo
// observable.
func initHealthStorageDB() (*sql.DB, error) {
	connStr := fmt.Sprintf("file:%s/health.db?_journal_mode=WAL", config.PathStorages)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, err
	}

	createHealthTable := `
		CREATE TABLE IF NOT EXISTS health_checks (
			id TEXT PRIMARY KEY,
			entity_type TEXT NOT NULL,
			entity_id TEXT NOT NULL,
			status TEXT NOT NULL,
			last_message TEXT,
			last_checked TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			last_success TIMESTAMP,
			UNIQUE(entity_type, entity_id)
		);
	`

	if _, err := db.Exec(createHealthTable); err != nil {
		return nil, err
	}

	return db, nil
}

func NewHealthService(gormDB *gorm.DB, routing domainDirections.IRoutingClient) health.IHealthUsecase {
	db, err := initHealthStorageDB()
	if err != nil {
		logrus.WithError(err).Error("[Health] failed to initialize storage")
		return &healthService{db: nil, gormDB: gormDB, routing: routing}
	}
	return &healthService{
		db:      db,
		gormDB:  gormDB,
		routing: routing,
	}
}

func (s *healthService) ensureDB() error {
	if s.db == nil {
		return fmt.Errorf("health storage not initialized")
	}
	return nil
}

func (s *healthService) GetStatus(ctx context.Context) ([]health.HealthRecord, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}

	query := `SELECT id, entity_type, entity_id, status, last_message, last_checked, last_success FROM health_checks`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []health.HealthRecord
	for rows.Next() {
		var r health.HealthRecord
		var lastSuccess sql.NullTime
		if err := rows.Scan(&r.ID, &r.EntityType, &r.EntityID, &r.Status, &r.LastMessage, &r.LastChecked, &lastSuccess); err != nil {
			return nil, err
		}
		if lastSuccess.Valid {
			r.LastSuccess = &lastSuccess.Time
		}
		records = append(records, r)
	}
	return records, nil
}

func (s *healthService) getEntityStatus(ctx context.Context, entityType health.EntityType, entityID string) (health.HealthRecord, error) {
	if err := s.ensureDB(); err != nil {
		return health.HealthRecord{}, err
	}

	var r health.HealthRecord
	var lastSuccess sql.NullTime
	query := `SELECT id, entity_type, entity_id, status, last_message, last_checked, last_success FROM health_checks WHERE entity_type = ? AND entity_id = ?`
	err := s.db.QueryRowContext(ctx, query, string(entityType), entityID).Scan(&r.ID, &r.EntityType, &r.EntityID, &r.Status, &r.LastMessage, &r.LastChecked, &lastSuccess)
	if err != nil {
		if err == sql.ErrNoRows {
			return health.HealthRecord{
				EntityType: entityType,
				EntityID:   entityID,
				Status:     health.StatusUnknown,
			}, nil
		}
		return r, err
	}
	if lastSuccess.Valid {
		r.LastSuccess = &lastSuccess.Time
	}
	return r, nil
}

func (s *healthService) upsertStatus(ctx context.Context, r health.HealthRecord) error {
	if err := s.ensureDB(); err != nil {
		return err
	}

	if r.ID == "" {
		existing, _ := s.getEntityStatus(ctx, r.EntityType, r.EntityID)
		if existing.ID != "" {
			r.ID = existing.ID
		} else {
			r.ID = uuid.NewString()
		}
	}

	query := `
		INSERT INTO health_checks (id, entity_type, entity_id, status, last_message, last_checked, last_success)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(entity_type, entity_id) DO UPDATE SET
			status = excluded.status,
			last_message = excluded.last_message,
			last_checked = excluded.last_checked,
			last_success = CASE WHEN excluded.status = 'OK' THEN excluded.last_checked ELSE last_success END
	`

	now := time.Now()
	_, err := s.db.ExecContext(ctx, query, r.ID, string(r.EntityType), r.EntityID, string(r.Status), r.LastMessage, now, now)
	return err
}

// CheckProvider verifies the active planner provider is usable. A missing API
// key is the dominant failure mode, so the check stays local instead of
// spending tokens on a probe request.
func (s *healthService) CheckProvider(ctx context.Context) (health.HealthRecord, error) {
	providerName := config.PlannerProvider
	record := health.HealthRecord{
		EntityType: health.EntityProvider,
		EntityID:   providerName,
		Status:     health.StatusOk,
	}

	var keySet bool
	switch providerName {
	case "openai":
		keySet = config.OpenAIAPIKey != ""
	default:
		keySet = config.GeminiAPIKey != ""
	}

	if keySet {
		record.LastMessage = "API key configured"
	} else {
		record.Status = health.StatusError
		record.LastMessage = fmt.Sprintf("no API key configured for provider %q", providerName)
	}

	err := s.upsertStatus(ctx, record)
	return record, err
}

// CheckRouting issues a minimal fixed route request against the routing
// engine. Two points in central Berlin keep the response tiny.
func (s *healthService) CheckRouting(ctx context.Context) (health.HealthRecord, error) {
	record := health.HealthRecord{
		EntityType: health.EntityRouting,
		EntityID:   "osrm",
		Status:     health.StatusOk,
	}

	probeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := s.routing.FetchRoute(probeCtx, domainDirections.RouteRequest{
		Mode: domainDirections.ModeDriving,
		Waypoints: []domainDirections.LatLng{
			{Lat: 52.5170, Lng: 13.3888},
			{Lat: 52.5312, Lng: 13.3852},
		},
	})
	if err != nil {
		record.Status = health.StatusError
		record.LastMessage = err.Error()
	} else {
		record.LastMessage = "Route engine reachable"
	}

	err = s.upsertStatus(ctx, record)
	return record, err
}

func (s *healthService) CheckDatabase(ctx context.Context) (health.HealthRecord, error) {
	record := health.HealthRecord{
		EntityType: health.EntityDatabase,
		EntityID:   "primary",
		Status:     health.StatusOk,
	}

	sqlDB, err := s.gormDB.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		record.Status = health.StatusError
		record.LastMessage = err.Error()
	} else {
		record.LastMessage = "Connection successful"
	}

	err = s.upsertStatus(ctx, record)
	return record, err
}

// CheckAll runs every probe concurrently. Each probe records its own outcome,
// so a slow or failing target never hides the state of the others.
func (s *healthService) CheckAll(ctx context.Context) ([]health.HealthRecord, error) {
	results := make([]health.HealthRecord, 3)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		results[0], _ = s.CheckProvider(gctx)
		return nil
	})
	g.Go(func() error {
		results[1], _ = s.CheckRouting(gctx)
		return nil
	})
	g.Go(func() error {
		results[2], _ = s.CheckDatabase(gctx)
		return nil
	})
	_ = g.Wait()

	return results, nil
}

// ReportFailure lets other services push a live failure without waiting for
// the next scheduled check.
func (s *healthService) ReportFailure(ctx context.Context, entityType health.EntityType, entityID string, message string) {
	record := health.HealthRecord{
		EntityType:  entityType,
		EntityID:    entityID,
		Status:      health.StatusError,
		LastMessage: message,
	}
	if err := s.upsertStatus(ctx, record); err != nil {
		logrus.Debugf("[Health] could not record failure for %s/%s: %v", entityType, entityID, err)
	}
}

func (s *healthService) ReportSuccess(ctx context.Context, entityType health.EntityType, entityID string) {
	record := health.HealthRecord{
		EntityType:  entityType,
		EntityID:    entityID,
		Status:      health.StatusOk,
		LastMessage: "Last operation succeeded",
	}
	if err := s.upsertStatus(ctx, record); err != nil {
		logrus.Debugf("[Health] could not record success for %s/%s: %v", entityType, entityID, err)
	}
}

func (s *healthService) StartPeriodicChecks(ctx context.Context) {
	logrus.Info("[Health] starting periodic health checks loop (interval: 30m)")
	ticker := time.NewTicker(30 * time.Minute)

	// Run once at start
	go func() {
		logrus.Info("[Health] performing initial health check")
		s.CheckAll(ctx)
	}()

	go func() {
		for {
			select {
			case <-ctx.Done():
				ticker.Stop()
				return
			case <-ticker.C:
				logrus.Info("[Health] performing scheduled health check")
				s.CheckAll(ctx)
			}
		}
	}()
}
