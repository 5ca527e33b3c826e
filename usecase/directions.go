package usecase

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/slaxmankiran/aitravel-app-sub008/config"
	domainDirections "github.com/slaxmankiran/aitravel-app-sub008/domains/directions"
	"github.com/slaxmankiran/aitravel-app-sub008/pkg/lrucache"
	"github.com/slaxmankiran/aitravel-app-sub008/pkg/tripmonitor"
	"github.com/slaxmankiran/aitravel-app-sub008/validations"
)

type directionsService struct {
	cache    *lrucache.Cache[string, domainDirections.Route]
	client   domainDirections.IRoutingClient
	inflight *inflightRegistry
	monitor  *tripmonitor.Monitor
}

func NewDirectionsService(client domainDirections.IRoutingClient, monitor *tripmonitor.Monitor) domainDirections.IDirectionsUsecase {
	cache := lrucache.MustNew[string, domainDirections.Route](
		config.DirectionsCacheSize,
		lrucache.WithTTL(config.DirectionsCacheTTL()),
	)
	return &directionsService{
		cache:    cache,
		client:   client,
		inflight: newInflightRegistry(),
		monitor:  monitor,
	}
}

func (s *directionsService) GetRoute(ctx context.Context, request domainDirections.RouteRequest) (domainDirections.Route, error) {
	if err := validations.ValidateRouteRequest(ctx, request); err != nil {
		return domainDirections.Route{}, err
	}

	key := request.CacheKey()
	if route, ok := s.cache.Get(key); ok {
		s.monitor.Record(tripmonitor.Event{
			Stage:   tripmonitor.StageCacheHit,
			Subject: "directions",
			Status:  "ok",
		})
		return route, nil
	}
	s.monitor.Record(tripmonitor.Event{
		Stage:   tripmonitor.StageCacheMiss,
		Subject: "directions",
		Status:  "ok",
	})

	// Una petición nueva con la misma clave reemplaza a la anterior en vuelo.
	fetchCtx, token := s.inflight.begin(ctx, key)
	started := time.Now()
	route, err := s.client.FetchRoute(fetchCtx, request)
	latest := s.inflight.finish(key, token)
	if err != nil {
		return domainDirections.Route{}, err
	}

	// Solo la petición vigente escribe en caché; una cancelada nunca lo hace.
	if latest && fetchCtx.Err() == nil {
		s.cache.Set(key, route)
	}

	logrus.Debugf("[DIRECTIONS] fetched %s route with %d waypoints in %dms",
		request.Mode, len(request.Waypoints), time.Since(started).Milliseconds())
	return route, nil
}

func (s *directionsService) FlushCache() int {
	return s.cache.Flush()
}
