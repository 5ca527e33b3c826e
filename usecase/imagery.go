package usecase

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/slaxmankiran/aitravel-app-sub008/config"
	domainImagery "github.com/slaxmankiran/aitravel-app-sub008/domains/imagery"
	pkgError "github.com/slaxmankiran/aitravel-app-sub008/pkg/error"
	"github.com/slaxmankiran/aitravel-app-sub008/pkg/lrucache"
	"github.com/slaxmankiran/aitravel-app-sub008/pkg/tripmonitor"
)

type imageryService struct {
	cache    *lrucache.Cache[string, domainImagery.ImageSet]
	client   domainImagery.IImageryClient
	inflight *inflightRegistry
	monitor  *tripmonitor.Monitor
}

func NewImageryService(client domainImagery.IImageryClient, monitor *tripmonitor.Monitor) domainImagery.IImageryUsecase {
	cache := lrucache.MustNew[string, domainImagery.ImageSet](
		config.ImageryCacheSize,
		lrucache.WithTTL(config.ImageryCacheTTL()),
	)
	return &imageryService{
		cache:    cache,
		client:   client,
		inflight: newInflightRegistry(),
		monitor:  monitor,
	}
}

func (s *imageryService) GetImages(ctx context.Context, destination string) (domainImagery.ImageSet, error) {
	key := domainImagery.NormalizeDestination(destination)
	if key == "" {
		return domainImagery.ImageSet{}, pkgError.ValidationError("destination is required")
	}

	if set, ok := s.cache.Get(key); ok {
		s.monitor.Record(tripmonitor.Event{
			Stage:   tripmonitor.StageCacheHit,
			Subject: "imagery",
			Status:  "ok",
		})
		return set, nil
	}
	s.monitor.Record(tripmonitor.Event{
		Stage:   tripmonitor.StageCacheMiss,
		Subject: "imagery",
		Status:  "ok",
	})

	fetchCtx, token := s.inflight.begin(ctx, key)
	started := time.Now()
	set, err := s.client.FetchImages(fetchCtx, destination)
	latest := s.inflight.finish(key, token)
	if err != nil {
		return domainImagery.ImageSet{}, err
	}

	// Solo la petición vigente escribe en caché; una cancelada nunca lo hace.
	if latest && fetchCtx.Err() == nil {
		s.cache.Set(key, set)
	}

	logrus.Debugf("[IMAGERY] fetched images for %q via %s in %dms",
		key, set.Source, time.Since(started).Milliseconds())
	return set, nil
}

func (s *imageryService) FlushCache() int {
	return s.cache.Flush()
}
