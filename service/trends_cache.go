package service

import (
	"context"
	"sync"
	"time"

	"github.com/aitrendhub/backend/config"
	"github.com/aitrendhub/backend/model"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// TrendsFetcher is the part of the github service the cache depends on
type TrendsFetcher interface {
	FetchTrending(ctx context.Context) ([]model.TrendingRepository, error)
}

type TrendsResult struct {
	Repositories []model.TrendingRepository
	FetchedAt    time.Time
	Stale        bool
	Warning      string
}

type CacheStatus struct {
	HasData   bool
	LastFetch time.Time
	Age       time.Duration
	Valid     bool
}

// TrendsCache is the single slot cache fronting the github search API
// there is exactly one per process, constructed in main and passed to the controller
// the slot is replaced wholesale on every successful refresh, readers always
// observe a consistent records/timestamp pair
type TrendsCache struct {
	mu        sync.RWMutex
	records   []model.TrendingRepository
	fetchedAt time.Time

	window  time.Duration
	fetcher TrendsFetcher
	group   singleflight.Group
}

func NewTrendsCache(cfg config.Config, fetcher TrendsFetcher) *TrendsCache {
	return &TrendsCache{
		window:  time.Duration(cfg.Trends.FreshnessWindowMinutes) * time.Minute,
		fetcher: fetcher,
	}
}

// GetTrends serve the cached repositories or refresh them through the fetcher
// a fresh slot is served without any upstream call unless bypass is requested
// on refresh failure the previous slot is served stale with a warning when it exists,
// otherwise the fetch error is returned as is
func (c *TrendsCache) GetTrends(ctx context.Context, bypass bool) (TrendsResult, error) {
	c.mu.RLock()
	records, fetchedAt := c.records, c.fetchedAt
	c.mu.RUnlock()

	if !bypass && records != nil && time.Since(fetchedAt) < c.window {
		log.WithFields(log.Fields{
			"cacheAgeSeconds": int(time.Since(fetchedAt).Seconds()),
			"count":           len(records),
		}).Debug("serving trending repositories from cache")

		return TrendsResult{Repositories: records, FetchedAt: fetchedAt}, nil
	}

	// concurrent refreshes coalesce into a single upstream call
	// every waiter observes the same outcome as the request that triggered the fetch
	fresh, err, _ := c.group.Do("trends", func() (interface{}, error) {
		fetched, fetchErr := c.fetcher.FetchTrending(ctx)
		if fetchErr != nil {
			return nil, fetchErr
		}

		now := time.Now()

		c.mu.Lock()
		c.records = fetched
		c.fetchedAt = now
		c.mu.Unlock()

		return TrendsResult{Repositories: fetched, FetchedAt: now}, nil
	})

	if err == nil {
		return fresh.(TrendsResult), nil
	}

	// refresh failed: fall back on the previous slot when there is one, even if stale
	c.mu.RLock()
	records, fetchedAt = c.records, c.fetchedAt
	c.mu.RUnlock()

	if records == nil {
		log.WithError(err).Error("trending repositories refresh failed with an empty cache")
		return TrendsResult{}, err
	}

	log.WithFields(log.Fields{
		"cacheAgeSeconds": int(time.Since(fetchedAt).Seconds()),
		"reason":          err.Error(),
	}).Warning("upstream fetch failed. serving stale trending repositories")

	return TrendsResult{
		Repositories: records,
		FetchedAt:    fetchedAt,
		Stale:        true,
		Warning:      "serving cached data: the upstream fetch failed (" + err.Error() + ")",
	}, nil
}

// Status report the current cache state without ever triggering a fetch
func (c *TrendsCache) Status() CacheStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.records == nil {
		return CacheStatus{}
	}

	age := time.Since(c.fetchedAt)

	return CacheStatus{
		HasData:   true,
		LastFetch: c.fetchedAt,
		Age:       age,
		Valid:     age < c.window,
	}
}

// Window expose the freshness window, used by the API layer for cache control headers
func (c *TrendsCache) Window() time.Duration {
	return c.window
}
