package controller

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aitrendhub/backend/model"
	"github.com/aitrendhub/backend/service"
	"github.com/gin-gonic/gin"
)

type APIController interface {
	GetTrends(ctx *gin.Context)
	GetCacheStatus(ctx *gin.Context)
	Summarize(ctx *gin.Context)
}

type apiController struct {
	trendsCache      *service.TrendsCache
	summarizeService service.SummarizeService
}

func NewAPIController(cache *service.TrendsCache, summarize service.SummarizeService) APIController {
	return apiController{
		trendsCache:      cache,
		summarizeService: summarize,
	}
}

// GetTrends serve the trending repositories
// presence of the refresh query parameter (whatever its value) bypasses the freshness check
func (s apiController) GetTrends(c *gin.Context) {
	_, bypass := c.GetQuery("refresh")

	result, err := s.trendsCache.GetTrends(c.Request.Context(), bypass)
	if err != nil {
		apiErr := model.NewAPIError(err)

		status := http.StatusBadGateway
		if apiErr.Code == "RATE_LIMIT_REACHED" {
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, model.TrendsErrorResponse{
			Repositories: []model.TrendingRepository{},
			Count:        0,
			Code:         apiErr.Code,
			Error:        apiErr.Message,
		})
		return
	}

	// fresh for the cache window, acceptable while stale for twice that
	maxAge := int(s.trendsCache.Window().Seconds())
	c.Header("Cache-Control", fmt.Sprintf("public, s-maxage=%d, stale-while-revalidate=%d", maxAge, 2*maxAge))

	c.JSON(http.StatusOK, model.TrendsResponse{
		Repositories:    result.Repositories,
		FetchedAt:       result.FetchedAt,
		Count:           len(result.Repositories),
		CacheAgeSeconds: int(time.Since(result.FetchedAt).Seconds()),
		Warning:         result.Warning,
	})
}

// GetCacheStatus report the cache state without triggering any fetch
func (s apiController) GetCacheStatus(c *gin.Context) {
	status := s.trendsCache.Status()

	response := model.CacheStatusResponse{
		HasData:    status.HasData,
		AgeSeconds: int(status.Age.Seconds()),
		Valid:      status.Valid,
	}

	if status.HasData {
		lastFetch := status.LastFetch
		response.LastFetch = &lastFetch
	}

	c.JSON(http.StatusOK, response)
}

// Summarize validate and dispatch a summarization request
func (s apiController) Summarize(c *gin.Context) {
	var req model.SummarizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.NewAPIError(fmt.Errorf("VALIDATION_ERROR")))
		return
	}

	result, err := s.summarizeService.Summarize(c.Request.Context(), req)
	if err != nil {
		var providerErr *model.ProviderError

		switch {
		case errors.As(err, &providerErr):
			// mirror the upstream status to the caller
			status := providerErr.StatusCode
			if status == 0 {
				status = http.StatusBadGateway
			}
			c.JSON(status, model.NewAPIError(err))

		case err.Error() == "VALIDATION_ERROR":
			c.JSON(http.StatusBadRequest, model.NewAPIError(err))

		default:
			c.JSON(http.StatusInternalServerError, model.NewAPIError(err))
		}
		return
	}

	c.JSON(http.StatusOK, result)
}
