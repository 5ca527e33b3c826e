package imagery

import (
	"context"
	"strings"
	"time"
)

type ImageSet struct {
	Destination string    `json:"destination"`
	Hero        string    `json:"hero"` // remote URL
	Thumbnail   string    `json:"thumbnail,omitempty"`
	Extra       []string  `json:"extra,omitempty"`
	Attribution string    `json:"attribution,omitempty"`
	Source      string    `json:"source"` // api | scrape | none
	FetchedAt   time.Time `json:"fetched_at"`
}

// NormalizeDestination is the canonical cache key for destination imagery:
// trimmed, lowercased, inner whitespace collapsed. "  Kyoto,  Japan " and
// "kyoto, japan" share one entry.
func NormalizeDestination(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

type IImageryUsecase interface {
	GetImages(ctx context.Context, destination string) (ImageSet, error)
	FlushCache() int
}

// IImageryClient fetches imagery from the photo API or, failing that, by
// scraping the destination's public pages.
type IImageryClient interface {
	FetchImages(ctx context.Context, destination string) (ImageSet, error)
}
