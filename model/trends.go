package model

import "time"

type TrendsResponse struct {
	Repositories    []TrendingRepository `json:"repositories"`
	FetchedAt       time.Time            `json:"fetched_at"`
	Count           int                  `json:"count"`
	CacheAgeSeconds int                  `json:"cache_age_seconds"`
	Warning         string               `json:"warning,omitempty"`
}

type TrendsErrorResponse struct {
	Repositories []TrendingRepository `json:"repositories"`
	Count        int                  `json:"count"`
	Code         string               `json:"code"`
	Error        string               `json:"error"`
}

type CacheStatusResponse struct {
	HasData    bool       `json:"has_data"`
	LastFetch  *time.Time `json:"last_fetch"`
	AgeSeconds int        `json:"age_seconds"`
	Valid      bool       `json:"valid"`
}
