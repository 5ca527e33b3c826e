package usecase

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/slaxmankiran/aitravel-app-sub008/config"
	domainHealth "github.com/slaxmankiran/aitravel-app-sub008/domains/health"
	domainPlanner "github.com/slaxmankiran/aitravel-app-sub008/domains/planner"
	domainTrip "github.com/slaxmankiran/aitravel-app-sub008/domains/trip"
	pkgError "github.com/slaxmankiran/aitravel-app-sub008/pkg/error"
	"github.com/slaxmankiran/aitravel-app-sub008/pkg/planworker"
	"github.com/slaxmankiran/aitravel-app-sub008/pkg/speculation"
	"github.com/slaxmankiran/aitravel-app-sub008/pkg/timeutils"
	"github.com/slaxmankiran/aitravel-app-sub008/pkg/tripmonitor"
)

// specAwaitTimeout acota cuánto espera la generación completa a un trabajo
// especulativo en curso antes de cancelarlo y seguir en primer plano.
const specAwaitTimeout = 3 * time.Minute

// NotifyFunc publica eventos de progreso hacia los clientes conectados.
type NotifyFunc func(code string, tripID string, payload any)

type plannerService struct {
	tripRepo  domainTrip.ITripRepository
	providers map[string]domainPlanner.Provider
	tracker   *speculation.Tracker
	pool      *planworker.PlanWorkerPool
	monitor   *tripmonitor.Monitor
	inflight  *inflightRegistry
	notify    NotifyFunc
	health    domainHealth.IHealthUsecase
}

func NewPlannerService(
	tripRepo domainTrip.ITripRepository,
	providers map[string]domainPlanner.Provider,
	tracker *speculation.Tracker,
	pool *planworker.PlanWorkerPool,
	monitor *tripmonitor.Monitor,
	notify NotifyFunc,
	health domainHealth.IHealthUsecase,
) domainPlanner.IPlannerUsecase {
	if notify == nil {
		notify = func(string, string, any) {}
	}
	return &plannerService{
		tripRepo:  tripRepo,
		providers: providers,
		tracker:   tracker,
		pool:      pool,
		monitor:   monitor,
		inflight:  newInflightRegistry(),
		notify:    notify,
		health:    health,
	}
}

// provider resuelve el proveedor activo según la configuración.
func (s *plannerService) provider() (domainPlanner.Provider, error) {
	name := config.PlannerProvider
	if p, ok := s.providers[name]; ok {
		return p, nil
	}
	if p, ok := s.providers["gemini"]; ok {
		logrus.Warnf("[PLANNER] unknown provider %q, falling back to gemini", name)
		return p, nil
	}
	return nil, pkgError.InternalServerError("no planner provider configured")
}

func (s *plannerService) EvaluateFeasibility(ctx context.Context, tripID string) (domainPlanner.FeasibilityResponse, error) {
	t, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return domainPlanner.FeasibilityResponse{}, err
	}

	p, err := s.provider()
	if err != nil {
		return domainPlanner.FeasibilityResponse{}, err
	}

	started := time.Now()
	report, err := p.CheckFeasibility(ctx, t)
	if err != nil {
		s.monitor.Record(tripmonitor.Event{
			TripID:   tripID,
			Provider: p.Name(),
			Stage:    tripmonitor.StageFeasibility,
			Status:   "error",
			Error:    err.Error(),
		})
		s.reportHealth(ctx, p.Name(), err)
		return domainPlanner.FeasibilityResponse{}, err
	}

	s.monitor.Record(tripmonitor.Event{
		TripID:     tripID,
		Provider:   p.Name(),
		Stage:      tripmonitor.StageFeasibility,
		Status:     "ok",
		DurationMs: time.Since(started).Milliseconds(),
		Metadata: map[string]string{
			"verdict": report.Verdict,
			"score":   strconv.Itoa(report.Score),
		},
	})
	s.reportHealth(ctx, p.Name(), nil)

	response := domainPlanner.FeasibilityResponse{TripID: tripID, Report: report}
	if s.tracker.ShouldTrigger(report.Verdict, report.Score) {
		response.SpeculationStarted = s.startSpeculation(t, p)
	}
	return response, nil
}

// startSpeculation lanza la generación adelantada de los primeros días en el
// pool de workers. El registro en el tracker ocurre antes del dispatch para
// que el primer Update del worker no caiga sobre un registro inexistente.
func (s *plannerService) startSpeculation(t domainTrip.Trip, p domainPlanner.Provider) bool {
	maxDays := s.tracker.Settings().MaxDays
	if d := t.DurationDays(); d < maxDays {
		maxDays = d
	}
	if maxDays < 1 {
		return false
	}

	genCtx, token := s.inflight.begin(context.Background(), t.ID)
	s.tracker.Start(t.ID)

	accepted := s.pool.TryDispatch(planworker.GenerationJob{
		TripID: t.ID,
		Label:  "speculation",
		Handler: func(jobCtx context.Context) error {
			defer s.inflight.finish(t.ID, token)
			return s.runSpeculation(genCtx, jobCtx, t, p, maxDays)
		},
	})
	if !accepted {
		s.inflight.finish(t.ID, token)
		s.tracker.Abort(t.ID)
		logrus.Warnf("[PLANNER] speculation for trip %s dropped, worker queue full", t.ID)
		return false
	}

	s.monitor.Record(tripmonitor.Event{
		TripID:   t.ID,
		Provider: p.Name(),
		Stage:    tripmonitor.StageSpeculation,
		Status:   "ok",
		Metadata: map[string]string{"max_days": strconv.Itoa(maxDays)},
	})
	s.notify("SPECULATION_STARTED", t.ID, map[string]any{"max_days": maxDays})
	logrus.Infof("[PLANNER] speculative generation started for trip %s (%d days)", t.ID, maxDays)
	return true
}

// runSpeculation genera días de forma secuencial dentro del worker. genCtx se
// cancela cuando el usuario aborta o una especulación nueva reemplaza a esta;
// jobCtx se cancela cuando el pool se apaga.
func (s *plannerService) runSpeculation(genCtx, jobCtx context.Context, t domainTrip.Trip, p domainPlanner.Provider, maxDays int) error {
	var previous []domainTrip.ItineraryDay

	for day := 1; day <= maxDays; day++ {
		if genCtx.Err() != nil || jobCtx.Err() != nil {
			return nil
		}

		plan, err := p.GenerateDay(genCtx, t, day, previous)
		if err != nil {
			if genCtx.Err() != nil || jobCtx.Err() != nil {
				return nil
			}
			s.tracker.Abort(t.ID)
			s.monitor.Record(tripmonitor.Event{
				TripID:   t.ID,
				Provider: p.Name(),
				Stage:    tripmonitor.StageAbort,
				Subject:  strconv.Itoa(day),
				Status:   "error",
				Error:    err.Error(),
			})
			s.notify("SPECULATION_ABORTED", t.ID, map[string]any{
				"reason":         err.Error(),
				"days_generated": day - 1,
			})
			return err
		}

		date, err := timeutils.TripDayDate(t.StartDate, day)
		if err != nil {
			s.tracker.Abort(t.ID)
			return err
		}

		entity := domainTrip.ItineraryDay{
			ID:          uuid.NewString(),
			TripID:      t.ID,
			DayNumber:   day,
			Date:        date,
			Summary:     plan.Summary,
			Activities:  plan.Activities,
			Speculative: true,
			CreatedAt:   time.Now().UTC(),
		}

		// Un trabajo cancelado nunca persiste resultados.
		if genCtx.Err() != nil {
			return nil
		}
		if err := s.tripRepo.SaveDay(genCtx, entity); err != nil {
			if genCtx.Err() != nil {
				return nil
			}
			s.tracker.Abort(t.ID)
			s.monitor.Record(tripmonitor.Event{
				TripID: t.ID,
				Stage:  tripmonitor.StageAbort,
				Status: "error",
				Error:  err.Error(),
			})
			return err
		}

		previous = append(previous, entity)
		s.tracker.Update(t.ID, day)
		s.monitor.Record(tripmonitor.Event{
			TripID:   t.ID,
			Provider: p.Name(),
			Stage:    tripmonitor.StageDay,
			Subject:  strconv.Itoa(day),
			Status:   "ok",
		})
		s.notify("SPECULATION_PROGRESS", t.ID, map[string]any{"day": day, "of": maxDays})
	}

	// Con el viaje más corto que el máximo configurado, el auto-complete del
	// tracker no llega a dispararse; lo cerramos aquí.
	s.tracker.Complete(t.ID)
	s.monitor.Record(tripmonitor.Event{
		TripID:   t.ID,
		Provider: p.Name(),
		Stage:    tripmonitor.StageComplete,
		Status:   "ok",
		Metadata: map[string]string{"days_generated": strconv.Itoa(maxDays)},
	})
	s.notify("SPECULATION_COMPLETE", t.ID, map[string]any{"days_generated": maxDays})
	logrus.Infof("[PLANNER] speculative generation complete for trip %s (%d days)", t.ID, maxDays)
	return nil
}

func (s *plannerService) GenerateItinerary(ctx context.Context, tripID string) ([]domainTrip.ItineraryDay, error) {
	t, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}

	duration := t.DurationDays()
	if duration < 1 {
		return nil, pkgError.ValidationError("trip has no days to plan")
	}

	p, err := s.provider()
	if err != nil {
		return nil, err
	}

	// Si hay especulación en curso esperamos sus resultados en lugar de
	// competir con ella por los mismos días.
	s.awaitSpeculation(ctx, tripID)

	if t.Status != domainTrip.StatusPlanning {
		t.Status = domainTrip.StatusPlanning
		t.UpdatedAt = time.Now().UTC()
		if err := s.tripRepo.Update(ctx, t); err != nil {
			return nil, err
		}
	}

	previous, err := s.tripRepo.DaysByTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}

	for day := len(previous) + 1; day <= duration; day++ {
		plan, err := p.GenerateDay(ctx, t, day, previous)
		if err != nil {
			s.monitor.Record(tripmonitor.Event{
				TripID:   tripID,
				Provider: p.Name(),
				Stage:    tripmonitor.StageDay,
				Subject:  strconv.Itoa(day),
				Status:   "error",
				Error:    err.Error(),
			})
			s.reportHealth(ctx, p.Name(), err)
			return nil, err
		}

		date, err := timeutils.TripDayDate(t.StartDate, day)
		if err != nil {
			return nil, err
		}

		entity := domainTrip.ItineraryDay{
			ID:         uuid.NewString(),
			TripID:     tripID,
			DayNumber:  day,
			Date:       date,
			Summary:    plan.Summary,
			Activities: plan.Activities,
			CreatedAt:  time.Now().UTC(),
		}
		if err := s.tripRepo.SaveDay(ctx, entity); err != nil {
			return nil, err
		}

		previous = append(previous, entity)
		s.monitor.Record(tripmonitor.Event{
			TripID:   tripID,
			Provider: p.Name(),
			Stage:    tripmonitor.StageDay,
			Subject:  strconv.Itoa(day),
			Status:   "ok",
		})
		s.notify("ITINERARY_PROGRESS", tripID, map[string]any{"day": day, "of": duration})
	}

	// Los días especulativos que sobrevivieron hasta aquí pasan a ser parte
	// del itinerario definitivo.
	if err := s.tripRepo.MarkDaysConfirmed(ctx, tripID); err != nil {
		return nil, err
	}

	t.Status = domainTrip.StatusReady
	t.UpdatedAt = time.Now().UTC()
	if err := s.tripRepo.Update(ctx, t); err != nil {
		return nil, err
	}

	days, err := s.tripRepo.DaysByTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	s.notify("ITINERARY_READY", tripID, map[string]any{"days": len(days)})
	logrus.Infof("[PLANNER] itinerary ready for trip %s (%d days)", tripID, len(days))
	return days, nil
}

// awaitSpeculation espera a que un trabajo especulativo en curso termine. Si
// sigue vivo al agotar el plazo, lo cancela para generar en primer plano.
func (s *plannerService) awaitSpeculation(ctx context.Context, tripID string) {
	if !s.tracker.HasJob(tripID) {
		return
	}

	logrus.Infof("[PLANNER] awaiting in-flight speculation for trip %s", tripID)
	deadline := time.NewTimer(specAwaitTimeout)
	defer deadline.Stop()
	poll := time.NewTicker(250 * time.Millisecond)
	defer poll.Stop()

	for {
		if !s.tracker.HasJob(tripID) {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-deadline.C:
			s.inflight.cancel(tripID)
			s.tracker.Abort(tripID)
			logrus.Warnf("[PLANNER] speculation for trip %s timed out, generating in foreground", tripID)
			return
		case <-poll.C:
		}
	}
}

func (s *plannerService) SpeculationStatus(ctx context.Context, tripID string) (domainPlanner.SpeculationState, bool) {
	job, ok := s.tracker.GetJob(tripID)
	if !ok {
		return domainPlanner.SpeculationState{}, false
	}
	return domainPlanner.SpeculationState{
		TripID:        job.TripID,
		Status:        string(job.Status),
		DaysGenerated: job.DaysGenerated,
		StartedAt:     job.StartedAt,
	}, true
}

func (s *plannerService) CancelSpeculation(ctx context.Context, tripID string) error {
	canceled := s.inflight.cancel(tripID)
	s.tracker.Abort(tripID)
	if canceled {
		s.monitor.Record(tripmonitor.Event{
			TripID:   tripID,
			Stage:    tripmonitor.StageAbort,
			Status:   "ok",
			Metadata: map[string]string{"reason": "user_request"},
		})
		s.notify("SPECULATION_ABORTED", tripID, map[string]any{"reason": "canceled"})
		logrus.Infof("[PLANNER] speculation for trip %s canceled", tripID)
	}
	return nil
}

func (s *plannerService) SweepJobs() int {
	removed := s.tracker.Sweep()
	if removed > 0 {
		s.monitor.Record(tripmonitor.Event{
			Stage:    tripmonitor.StageSweep,
			Status:   "ok",
			Metadata: map[string]string{"removed": strconv.Itoa(removed)},
		})
		logrus.Debugf("[PLANNER] swept %d speculation records", removed)
	}
	return removed
}

func (s *plannerService) SpeculationStatistics() domainPlanner.SpeculationStats {
	st := s.tracker.Stats()
	return domainPlanner.SpeculationStats{
		ActiveJobs:         st.ActiveJobs,
		CompletedJobs:      st.CompletedJobs,
		TotalDaysGenerated: st.TotalDaysGenerated,
	}
}

// StartBackgroundSweep barre registros caducados del tracker en un intervalo
// fijo. El sweep es la única vía por la que el tracker libera memoria.
func (s *plannerService) StartBackgroundSweep(ctx context.Context) {
	interval := config.SpecSweepInterval()
	logrus.Infof("[PLANNER] starting speculation sweep loop (interval: %s)", interval)

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.SweepJobs()
			}
		}
	}()
}

func (s *plannerService) reportHealth(ctx context.Context, providerName string, err error) {
	if s.health == nil {
		return
	}
	if err != nil {
		s.health.ReportFailure(ctx, domainHealth.EntityProvider, providerName, err.Error())
		return
	}
	s.health.ReportSuccess(ctx, domainHealth.EntityProvider, providerName)
}
