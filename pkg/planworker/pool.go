package planworker

import (
	"context"
	"hash/fnv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// GenerationJob representa un job de generación de itinerario para un trip
type GenerationJob struct {
	TripID  string
	Label   string // "speculation", "full", etc. Solo para logs y métricas
	Handler func(ctx context.Context) error
}

// PoolStats contiene métricas en tiempo real del worker pool
type PoolStats struct {
	NumWorkers      int            `json:"num_workers"`
	QueueSize       int            `json:"queue_size"`
	ActiveWorkers   int            `json:"active_workers"`
	TotalDispatched int64          `json:"total_dispatched"`
	TotalProcessed  int64          `json:"total_processed"`
	TotalDropped    int64          `json:"total_dropped"`
	TotalErrors     int64          `json:"total_errors"`
	WorkerStats     []WorkerStats  `json:"worker_stats"`
	ActiveTrips     map[string]int `json:"active_trips"` // tripID -> worker_id
}

// WorkerStats contiene métricas por worker individual
type WorkerStats struct {
	WorkerID      int   `json:"worker_id"`
	QueueDepth    int   `json:"queue_depth"`
	IsProcessing  bool  `json:"is_processing"`
	JobsProcessed int64 `json:"jobs_processed"`
}

type activeTripEntry struct {
	workerID  int
	updatedAt time.Time
}

// PlanWorkerPool maneja un pool de workers para generar días de itinerario.
// Los jobs se fragmentan por tripID: el mismo trip cae siempre en el mismo
// worker, así los días de un trip se generan en el orden en que se despachan.
type PlanWorkerPool struct {
	numWorkers int
	queueSize  int
	workers    []*worker
	wg         sync.WaitGroup
	stopOnce   sync.Once
	stopped    int32
	stopCh     chan struct{}

	// Métricas
	totalDispatched int64
	totalProcessed  int64
	totalDropped    int64
	totalErrors     int64
	activeTripsMu   sync.RWMutex
	activeTrips     map[string]activeTripEntry
	startTime       time.Time

	// Hooks para monitoreo externo
	OnWorkerStart func(workerID int, tripID string)
	OnWorkerEnd   func(workerID int, tripID string)
}

// worker representa un worker individual con su cola
type worker struct {
	id            int
	jobQueue      chan GenerationJob
	ctx           context.Context
	cancel        context.CancelFunc
	isProcessing  int32 // atomic: 1 if processing, 0 if idle
	jobsProcessed int64 // atomic counter
	pool          *PlanWorkerPool
}

// NewPlanWorkerPool crea un nuevo pool de workers para generación de planes
func NewPlanWorkerPool(numWorkers, queueSize int) *PlanWorkerPool {
	if numWorkers <= 0 {
		numWorkers = 4
	}
	if queueSize <= 0 {
		queueSize = 50
	}

	pool := &PlanWorkerPool{
		numWorkers:  numWorkers,
		queueSize:   queueSize,
		workers:     make([]*worker, numWorkers),
		activeTrips: make(map[string]activeTripEntry),
		stopCh:      make(chan struct{}),
		startTime:   time.Now(),
	}

	return pool
}

// Start inicia todos los workers del pool
func (p *PlanWorkerPool) Start(ctx context.Context) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		// Las generaciones LLM pueden tardar minutos; solo limpiamos entradas
		// claramente huérfanas (el camino normal es clearActiveTrip al terminar).
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-p.stopCh:
				return
			case <-ticker.C:
				now := time.Now()
				p.activeTripsMu.Lock()
				for k, v := range p.activeTrips {
					if !v.updatedAt.IsZero() && now.Sub(v.updatedAt) > 10*time.Minute {
						delete(p.activeTrips, k)
					}
				}
				p.activeTripsMu.Unlock()
			}
		}
	}()

	for i := 0; i < p.numWorkers; i++ {
		workerCtx, cancel := context.WithCancel(ctx)
		w := &worker{
			id:       i,
			jobQueue: make(chan GenerationJob, p.queueSize),
			ctx:      workerCtx,
			cancel:   cancel,
			pool:     p,
		}
		p.workers[i] = w

		p.wg.Add(1)
		go w.run(&p.wg)
	}

	logrus.Infof("[PLAN_WORKER] Started with %d workers, queue size: %d", p.numWorkers, p.queueSize)
}

// TryDispatch envía un job al worker apropiado (no bloqueante) y retorna
// si el job pudo encolarse. Útil para aplicar backpressure en endpoints HTTP.
func (p *PlanWorkerPool) TryDispatch(job GenerationJob) bool {
	if atomic.LoadInt32(&p.stopped) == 1 {
		atomic.AddInt64(&p.totalDropped, 1)
		return false
	}

	shard := p.shardForTrip(job.TripID)
	atomic.AddInt64(&p.totalDispatched, 1)

	p.activeTripsMu.Lock()
	p.activeTrips[job.TripID] = activeTripEntry{workerID: shard, updatedAt: time.Now()}
	p.activeTripsMu.Unlock()

	sent := func() (ok bool) {
		defer func() {
			if r := recover(); r != nil {
				ok = false
			}
		}()
		select {
		case p.workers[shard].jobQueue <- job:
			return true
		default:
			return false
		}
	}()

	if sent {
		return true
	}
	p.clearActiveTrip(job.TripID)

	atomic.AddInt64(&p.totalDropped, 1)
	logrus.Warnf("[PLAN_WORKER] Worker %d queue full (or stopped), dropping %s job for trip %s",
		shard, job.Label, job.TripID)
	return false
}

// Dispatch envía un job al worker apropiado (no bloqueante)
func (p *PlanWorkerPool) Dispatch(job GenerationJob) {
	_ = p.TryDispatch(job)
}

// Stop detiene el pool de forma graceful
func (p *PlanWorkerPool) Stop() {
	p.stopOnce.Do(func() {
		atomic.StoreInt32(&p.stopped, 1)
		close(p.stopCh)
		logrus.Info("[PLAN_WORKER] Stopping workers...")

		// Cancelar contextos y cerrar colas
		for _, w := range p.workers {
			w.cancel()
			close(w.jobQueue)
		}

		// Esperar a que terminen los workers
		p.wg.Wait()

		logrus.Info("[PLAN_WORKER] All workers stopped")
	})
}

// shardForTrip calcula el shard (worker) para un trip usando hash consistente
func (p *PlanWorkerPool) shardForTrip(tripID string) int {
	h := fnv.New32a()
	h.Write([]byte(tripID))
	return int(h.Sum32() % uint32(p.numWorkers))
}

func (p *PlanWorkerPool) clearActiveTrip(tripID string) {
	p.activeTripsMu.Lock()
	delete(p.activeTrips, tripID)
	p.activeTripsMu.Unlock()
}

// GetStats retorna estadísticas en tiempo real del pool
func (p *PlanWorkerPool) GetStats() PoolStats {
	workerStats := make([]WorkerStats, len(p.workers))
	activeWorkers := 0

	for i, w := range p.workers {
		isProcessing := atomic.LoadInt32(&w.isProcessing) == 1
		if isProcessing {
			activeWorkers++
		}

		workerStats[i] = WorkerStats{
			WorkerID:      w.id,
			QueueDepth:    len(w.jobQueue),
			IsProcessing:  isProcessing,
			JobsProcessed: atomic.LoadInt64(&w.jobsProcessed),
		}
	}

	p.activeTripsMu.RLock()
	activeTripsSnapshot := make(map[string]int, len(p.activeTrips))
	for k, v := range p.activeTrips {
		activeTripsSnapshot[k] = v.workerID
	}
	p.activeTripsMu.RUnlock()

	return PoolStats{
		NumWorkers:      p.numWorkers,
		QueueSize:       p.queueSize,
		ActiveWorkers:   activeWorkers,
		TotalDispatched: atomic.LoadInt64(&p.totalDispatched),
		TotalProcessed:  atomic.LoadInt64(&p.totalProcessed),
		TotalDropped:    atomic.LoadInt64(&p.totalDropped),
		TotalErrors:     atomic.LoadInt64(&p.totalErrors),
		WorkerStats:     workerStats,
		ActiveTrips:     activeTripsSnapshot,
	}
}

// run ejecuta el loop principal del worker
func (w *worker) run(wg *sync.WaitGroup) {
	defer wg.Done()

	logrus.Debugf("[PLAN_WORKER] Worker %d started", w.id)

	for {
		select {
		case job, ok := <-w.jobQueue:
			if !ok {
				// Canal cerrado, terminar
				logrus.Debugf("[PLAN_WORKER] Worker %d shutting down", w.id)
				return
			}

			// Procesar job con defer para garantizar limpieza
			func() {
				if w.pool.OnWorkerStart != nil {
					w.pool.OnWorkerStart(w.id, job.TripID)
				}
				atomic.StoreInt32(&w.isProcessing, 1)
				defer func() {
					if r := recover(); r != nil {
						atomic.AddInt64(&w.pool.totalErrors, 1)
						logrus.Errorf("[PLAN_WORKER] Worker %d panic for trip %s: %v", w.id, job.TripID, r)
					}
					if w.pool.OnWorkerEnd != nil {
						w.pool.OnWorkerEnd(w.id, job.TripID)
					}
					w.pool.clearActiveTrip(job.TripID)
					atomic.StoreInt32(&w.isProcessing, 0)
					atomic.AddInt64(&w.jobsProcessed, 1)
					atomic.AddInt64(&w.pool.totalProcessed, 1)
				}()

				err := job.Handler(w.ctx)

				if err != nil {
					atomic.AddInt64(&w.pool.totalErrors, 1)
					logrus.WithError(err).Errorf("[PLAN_WORKER] Worker %d %s job failed for trip %s",
						w.id, job.Label, job.TripID)
				}
			}()

		case <-w.ctx.Done():
			// Contexto cancelado, procesar jobs restantes antes de terminar
			logrus.Debugf("[PLAN_WORKER] Worker %d context cancelled, draining queue...", w.id)
			w.drainQueue()
			return
		}
	}
}

// drainQueue procesa jobs pendientes antes del shutdown
func (w *worker) drainQueue() {
	for {
		select {
		case job, ok := <-w.jobQueue:
			if !ok {
				return
			}
			func() {
				defer func() {
					w.pool.clearActiveTrip(job.TripID)
					if r := recover(); r != nil {
						atomic.AddInt64(&w.pool.totalErrors, 1)
						logrus.Errorf("[PLAN_WORKER] Worker %d drain panic: %v", w.id, r)
					}
				}()
				if err := job.Handler(w.ctx); err != nil {
					logrus.WithError(err).Errorf("[PLAN_WORKER] Worker %d drain job failed", w.id)
				}
			}()
		default:
			// No hay más jobs
			return
		}
	}
}
