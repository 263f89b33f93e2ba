package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"spendwise/internal/services"
	"spendwise/internal/timeframe"
)

// StatsHandler handles statistics and forecast requests.
type StatsHandler struct {
	statsService services.StatsServicer
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(statsService services.StatsServicer) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

// StatsQuery holds the timeframe selector for the stats summary.
type StatsQuery struct {
	Timeframe string `form:"timeframe"`
}

// GetStats handles the spending summary.
// @Summary     Spending statistics
// @Description Total and per-category spending for a timeframe plus a six-month trend
// @Tags        stats
// @Produce     json
// @Param       timeframe query string false "week, month (default) or year; unrecognised values mean year"
// @Success     200 {object} services.StatsSummary "Statistics"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /stats [get]
func (h *StatsHandler) GetStats(c *gin.Context) {
	var q StatsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, bindingError(err))
		return
	}

	stats, err := h.statsService.GetStats(c.Request.Context(), timeframe.Timeframe(q.Timeframe))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetForecast handles the spending forecast.
// @Summary     Spending forecast
// @Description Linear trend over the last 12 months projected 3 months ahead
// @Tags        stats
// @Produce     json
// @Success     200 {object} analytics.ForecastResult "Forecast"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /forecast [get]
func (h *StatsHandler) GetForecast(c *gin.Context) {
	forecast, err := h.statsService.GetForecast(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, forecast)
}
