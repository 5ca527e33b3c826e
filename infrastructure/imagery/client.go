package imagery

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/disintegration/imaging"
	"github.com/slaxmankiran/aitravel-app-sub008/config"
	domainImagery "github.com/slaxmankiran/aitravel-app-sub008/domains/imagery"
	"github.com/slaxmankiran/aitravel-app-sub008/pkg/utils"
	"github.com/sirupsen/logrus"

	// Some scraped og:image assets come back as webp.
	_ "golang.org/x/image/webp"
)

// Client fetches destination imagery from the configured photo API, falling
// back to scraping the destination's Wikipedia page when no API is set up
// or the API call fails.
type Client struct {
	apiBase string
	apiKey  string
	client  *http.Client
}

func NewClient() *Client {
	return &Client{
		apiBase: strings.TrimRight(config.ImageryAPIBaseURL, "/"),
		apiKey:  config.ImageryAPIKey,
		client:  &http.Client{Timeout: time.Duration(config.ImageryTimeoutSeconds) * time.Second},
	}
}

func (c *Client) FetchImages(ctx context.Context, destination string) (domainImagery.ImageSet, error) {
	if c.apiBase != "" && c.apiKey != "" {
		set, err := c.fetchFromAPI(ctx, destination)
		if err == nil {
			c.attachThumbnail(ctx, &set)
			return set, nil
		}
		logrus.WithError(err).Warnf("[IMAGERY] Photo API failed for %q, falling back to scrape", destination)
	}

	set, err := c.scrapeImages(ctx, destination)
	if err != nil {
		return domainImagery.ImageSet{
			Destination: destination,
			Source:      "none",
			FetchedAt:   time.Now().UTC(),
		}, err
	}
	c.attachThumbnail(ctx, &set)
	return set, nil
}

// Internal shape for the photo API response (Pexels-compatible).
type photoAPIResponse struct {
	Photos []struct {
		Alt          string `json:"alt"`
		Photographer string `json:"photographer"`
		Src          struct {
			Large2x string `json:"large2x"`
			Large   string `json:"large"`
			Medium  string `json:"medium"`
		} `json:"src"`
	} `json:"photos"`
}

func (c *Client) fetchFromAPI(ctx context.Context, destination string) (domainImagery.ImageSet, error) {
	endpoint := fmt.Sprintf("%s/v1/search?query=%s&per_page=5&orientation=landscape",
		c.apiBase, url.QueryEscape(destination))

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return domainImagery.ImageSet{}, err
	}
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return domainImagery.ImageSet{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return domainImagery.ImageSet{}, fmt.Errorf("photo API returned status %d", resp.StatusCode)
	}

	var raw photoAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return domainImagery.ImageSet{}, fmt.Errorf("failed to decode photo API response: %v", err)
	}
	if len(raw.Photos) == 0 {
		return domainImagery.ImageSet{}, fmt.Errorf("photo API returned no results for %q", destination)
	}

	first := raw.Photos[0]
	hero := first.Src.Large2x
	if hero == "" {
		hero = first.Src.Large
	}

	set := domainImagery.ImageSet{
		Destination: destination,
		Hero:        hero,
		Attribution: first.Photographer,
		Source:      "api",
		FetchedAt:   time.Now().UTC(),
	}
	for _, p := range raw.Photos[1:] {
		if p.Src.Medium != "" {
			set.Extra = append(set.Extra, p.Src.Medium)
		}
	}
	return set, nil
}

// scrapeImages pulls the og:image from the destination's Wikipedia article.
// "Kyoto, Japan" maps to the article "Kyoto".
func (c *Client) scrapeImages(ctx context.Context, destination string) (domainImagery.ImageSet, error) {
	title := strings.TrimSpace(strings.SplitN(destination, ",", 2)[0])
	if title == "" {
		return domainImagery.ImageSet{}, fmt.Errorf("empty destination")
	}
	pageURL := "https://en.wikipedia.org/wiki/" + url.PathEscape(strings.ReplaceAll(title, " ", "_"))

	req, err := http.NewRequestWithContext(ctx, "GET", pageURL, nil)
	if err != nil {
		return domainImagery.ImageSet{}, err
	}
	req.Header.Set("User-Agent", "aitravel-app/"+config.AppVersion)

	resp, err := c.client.Do(req)
	if err != nil {
		return domainImagery.ImageSet{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return domainImagery.ImageSet{}, fmt.Errorf("destination page returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return domainImagery.ImageSet{}, fmt.Errorf("failed to parse destination page: %v", err)
	}

	hero, ok := doc.Find(`meta[property="og:image"]`).Attr("content")
	if !ok || hero == "" {
		return domainImagery.ImageSet{}, fmt.Errorf("no og:image found for %q", destination)
	}

	return domainImagery.ImageSet{
		Destination: destination,
		Hero:        hero,
		Attribution: "Wikipedia",
		Source:      "scrape",
		FetchedAt:   time.Now().UTC(),
	}, nil
}

// attachThumbnail downloads the hero image and stores a resized local copy
// the frontend can serve without hammering the upstream host. Failures are
// non-fatal: the set keeps its remote hero URL.
func (c *Client) attachThumbnail(ctx context.Context, set *domainImagery.ImageSet) {
	if set.Hero == "" {
		return
	}

	req, err := http.NewRequestWithContext(ctx, "GET", set.Hero, nil)
	if err != nil {
		return
	}
	req.Header.Set("User-Agent", "aitravel-app/"+config.AppVersion)

	resp, err := c.client.Do(req)
	if err != nil {
		logrus.WithError(err).Debugf("[IMAGERY] Thumbnail download failed for %q", set.Destination)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return
	}

	img, err := imaging.Decode(resp.Body)
	if err != nil {
		logrus.WithError(err).Debugf("[IMAGERY] Thumbnail decode failed for %q", set.Destination)
		return
	}

	thumb := imaging.Resize(img, 480, 0, imaging.Lanczos)
	name := thumbnailName(set.Destination)
	path := filepath.Join(utils.GetImageryCachePath(), name)
	if err := imaging.Save(thumb, path, imaging.JPEGQuality(80)); err != nil {
		logrus.WithError(err).Warnf("[IMAGERY] Thumbnail save failed for %q", set.Destination)
		return
	}

	set.Thumbnail = "/" + filepath.ToSlash(path)
}

func thumbnailName(destination string) string {
	h := fnv.New64a()
	h.Write([]byte(domainImagery.NormalizeDestination(destination)))
	return fmt.Sprintf("%x.jpg", h.Sum64())
}
