package handlers

import (
	"fmt"

	"weather-api/cache"
	"weather-api/metrics"
	"weather-api/services"
	"weather-api/utils"

	"github.com/gin-gonic/gin"
)

type StatisticsHandler struct {
	cities     *services.CityDirectory
	statistics *services.StatisticsAggregator
	cache      cache.Cache
	metrics    *metrics.Metrics
}

func NewStatisticsHandler(cities *services.CityDirectory, statistics *services.StatisticsAggregator, c cache.Cache, m *metrics.Metrics) *StatisticsHandler {
	return &StatisticsHandler{cities: cities, statistics: statistics, cache: c, metrics: m}
}

// GetStatistics lists statistics, optionally narrowed by ?city= and ?from=&to=
func (h *StatisticsHandler) GetStatistics(c *gin.Context) {
	var filter services.StatisticFilter

	if name := c.Query("city"); name != "" {
		cityID, err := h.cities.Resolve(c.Request.Context(), name)
		if err != nil {
			respondError(c, err, "City")
			return
		}
		filter.CityID = &cityID
	}

	fromStr, toStr := c.Query("from"), c.Query("to")
	if (fromStr == "") != (toStr == "") {
		utils.BadRequestResponse(c, "Both from and to are required for a time window")
		return
	}
	if fromStr != "" {
		from, err := parseTimestamp(fromStr)
		if err != nil {
			utils.BadRequestResponse(c, err.Error())
			return
		}
		to, err := parseTimestamp(toStr)
		if err != nil {
			utils.BadRequestResponse(c, err.Error())
			return
		}
		filter.Window = &services.TimeWindow{From: from, To: to}
	}

	stats, err := h.statistics.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err, "Statistic")
		return
	}
	utils.SuccessResponse(c, stats)
}

// GetStatistic serves a freshly computed statistic from the cache when possible
func (h *StatisticsHandler) GetStatistic(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if cached, hit := h.cache.Get(cache.StatisticKey(id)); hit {
		utils.SuccessResponse(c, cached)
		return
	}

	stat, err := h.statistics.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Statistic")
		return
	}
	utils.SuccessResponse(c, stat)
}

// CreateStatistic aggregates all of a city's non-archived readings
func (h *StatisticsHandler) CreateStatistic(c *gin.Context) {
	h.compute(c, nil)
}

// CreateStatisticForPeriod aggregates the readings inside [from, to]
func (h *StatisticsHandler) CreateStatisticForPeriod(c *gin.Context) {
	window, ok := paramWindow(c)
	if !ok {
		return
	}
	h.compute(c, window)
}

func (h *StatisticsHandler) compute(c *gin.Context, window *services.TimeWindow) {
	cityID, err := h.cities.Resolve(c.Request.Context(), c.Param("city"))
	if err != nil {
		respondError(c, err, "City")
		return
	}

	stat, err := h.statistics.Compute(c.Request.Context(), cityID, window)
	if err != nil {
		respondError(c, err, "Measurement")
		return
	}

	if h.metrics != nil {
		kind := "all"
		if window != nil {
			kind = "range"
		}
		h.metrics.StatisticComputed(kind)
	}

	h.cache.Set(cache.StatisticKey(stat.ID), *stat)
	utils.CreatedResponse(c, fmt.Sprintf("/api/statistics/%d", stat.ID), stat)
}

func (h *StatisticsHandler) DeleteStatistic(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.statistics.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err, "Statistic")
		return
	}
	utils.NoContentResponse(c)
}
