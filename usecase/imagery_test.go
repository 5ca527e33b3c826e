package usecase

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	domainImagery "github.com/slaxmankiran/aitravel-app-sub008/domains/imagery"
	pkgError "github.com/slaxmankiran/aitravel-app-sub008/pkg/error"
	"github.com/slaxmankiran/aitravel-app-sub008/pkg/tripmonitor"
)

type fakeImageryClient struct {
	calls int32
	fetch func(ctx context.Context, call int32) (domainImagery.ImageSet, error)
}

func (f *fakeImageryClient) FetchImages(ctx context.Context, destination string) (domainImagery.ImageSet, error) {
	call := atomic.AddInt32(&f.calls, 1)
	if f.fetch != nil {
		return f.fetch(ctx, call)
	}
	return domainImagery.ImageSet{
		Destination: destination,
		Hero:        "https://img.example/hero.jpg",
		Source:      "api",
		FetchedAt:   time.Now(),
	}, nil
}

func (f *fakeImageryClient) callCount() int32 {
	return atomic.LoadInt32(&f.calls)
}

func TestGetImagesNormalizesDestinationKey(t *testing.T) {
	client := &fakeImageryClient{}
	monitor := tripmonitor.New(10)
	service := NewImageryService(client, monitor)

	first, err := service.GetImages(context.Background(), "  Kyoto,   Japan ")
	assert.NoError(t, err)

	// Distinta capitalización y espacios: misma clave, misma entrada en caché.
	second, err := service.GetImages(context.Background(), "kyoto, japan")
	assert.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), client.callCount(), "la variante normalizada debe salir de caché")

	stats := monitor.GetStats()
	assert.Equal(t, int64(1), stats.TotalCacheHits)
	assert.Equal(t, int64(1), stats.TotalCacheMisses)
}

func TestGetImagesRejectsBlankDestination(t *testing.T) {
	client := &fakeImageryClient{}
	service := NewImageryService(client, tripmonitor.New(10))

	for _, destination := range []string{"", "   ", "\t\n"} {
		_, err := service.GetImages(context.Background(), destination)
		assert.Error(t, err)
		assert.IsType(t, pkgError.ValidationError(""), err)
	}
	assert.Equal(t, int32(0), client.callCount())
}

func TestGetImagesSupersededFetchDoesNotWriteCache(t *testing.T) {
	release := make(chan struct{})
	firstStarted := make(chan struct{})
	client := &fakeImageryClient{}
	client.fetch = func(ctx context.Context, call int32) (domainImagery.ImageSet, error) {
		if call == 1 {
			close(firstStarted)
			<-release
			return domainImagery.ImageSet{Hero: "stale.jpg", Source: "api"}, nil
		}
		return domainImagery.ImageSet{Hero: "fresh.jpg", Source: "api"}, nil
	}

	service := NewImageryService(client, tripmonitor.New(10))

	firstDone := make(chan domainImagery.ImageSet, 1)
	go func() {
		set, _ := service.GetImages(context.Background(), "Lisbon")
		firstDone <- set
	}()
	<-firstStarted

	fresh, err := service.GetImages(context.Background(), "lisbon")
	assert.NoError(t, err)
	assert.Equal(t, "fresh.jpg", fresh.Hero)

	close(release)
	<-firstDone

	cached, err := service.GetImages(context.Background(), "LISBON")
	assert.NoError(t, err)
	assert.Equal(t, "fresh.jpg", cached.Hero, "el fetch reemplazado no pisa la caché")
	assert.Equal(t, int32(2), client.callCount())
}
