package handlers

import (
	"weather-api/cache"
	"weather-api/models"
	"weather-api/services"
	"weather-api/utils"

	"github.com/gin-gonic/gin"
)

type MeasurementRequest struct {
	Temperature *int `json:"temperature" binding:"required"`
	IsArchived  bool `json:"is_archived"`
}

type MeasurementHandler struct {
	cities       *services.CityDirectory
	measurements *services.MeasurementStore
	cache        cache.Cache
}

func NewMeasurementHandler(cities *services.CityDirectory, measurements *services.MeasurementStore, c cache.Cache) *MeasurementHandler {
	return &MeasurementHandler{cities: cities, measurements: measurements, cache: c}
}

// resolveCity answers 404 when the :city path parameter names no city
func (h *MeasurementHandler) resolveCity(c *gin.Context) (uint, bool) {
	id, err := h.cities.Resolve(c.Request.Context(), c.Param("city"))
	if err != nil {
		respondError(c, err, "City")
		return 0, false
	}
	return id, true
}

// GetMeasurements lists every measurement ordered by city and time
func (h *MeasurementHandler) GetMeasurements(c *gin.Context) {
	measurements, err := h.measurements.List(c.Request.Context())
	if err != nil {
		respondError(c, err, "Measurement")
		return
	}
	utils.SuccessResponse(c, measurements)
}

// GetMeasurement serves a recently written reading from the cache, falling
// back to the store without populating the cache.
func (h *MeasurementHandler) GetMeasurement(c *gin.Context) {
	ts, ok := paramTimestamp(c, "timestamp")
	if !ok {
		return
	}
	city := c.Param("city")

	if cached, hit := h.cache.Get(cache.MeasurementKey(city, ts)); hit {
		utils.SuccessResponse(c, cached)
		return
	}

	cityID, ok := h.resolveCity(c)
	if !ok {
		return
	}
	m, err := h.measurements.Get(c.Request.Context(), cityID, ts)
	if err != nil {
		respondError(c, err, "Measurement")
		return
	}
	utils.SuccessResponse(c, m)
}

// GetLastMeasurement returns the current conditions for a city
func (h *MeasurementHandler) GetLastMeasurement(c *gin.Context) {
	cityID, ok := h.resolveCity(c)
	if !ok {
		return
	}
	m, err := h.measurements.Latest(c.Request.Context(), cityID)
	if err != nil {
		respondError(c, err, "Measurement")
		return
	}
	utils.SuccessResponse(c, m)
}

// GetCityMeasurements returns a city's history oldest first
func (h *MeasurementHandler) GetCityMeasurements(c *gin.Context) {
	cityID, ok := h.resolveCity(c)
	if !ok {
		return
	}
	history, err := h.measurements.History(c.Request.Context(), cityID)
	if err != nil {
		respondError(c, err, "Measurement")
		return
	}
	utils.SuccessResponse(c, history)
}

func (h *MeasurementHandler) CreateMeasurement(c *gin.Context) {
	ts, ok := paramTimestamp(c, "timestamp")
	if !ok {
		return
	}
	var req MeasurementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}
	cityID, ok := h.resolveCity(c)
	if !ok {
		return
	}

	m := models.Measurement{
		CityID:      cityID,
		Timestamp:   ts,
		Temperature: *req.Temperature,
		IsArchived:  req.IsArchived,
	}
	if err := h.measurements.Insert(c.Request.Context(), &m); err != nil {
		respondError(c, err, "Measurement")
		return
	}

	city := c.Param("city")
	h.cache.Set(cache.MeasurementKey(city, m.Timestamp), m)
	utils.CreatedResponse(c, measurementLocation(city, m.Timestamp), m)
}

// UpdateMeasurement rewrites a reading. Cached copies are not evicted and may
// be served until they expire.
func (h *MeasurementHandler) UpdateMeasurement(c *gin.Context) {
	ts, ok := paramTimestamp(c, "timestamp")
	if !ok {
		return
	}
	var req MeasurementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}
	cityID, ok := h.resolveCity(c)
	if !ok {
		return
	}

	update := services.MeasurementUpdate{Temperature: *req.Temperature, Archived: req.IsArchived}
	if err := h.measurements.Update(c.Request.Context(), cityID, ts, update); err != nil {
		respondError(c, err, "Measurement")
		return
	}
	utils.NoContentResponse(c)
}

// ArchiveMeasurements excludes a city's readings in [from, to] from statistics
func (h *MeasurementHandler) ArchiveMeasurements(c *gin.Context) {
	window, ok := paramWindow(c)
	if !ok {
		return
	}
	cityID, ok := h.resolveCity(c)
	if !ok {
		return
	}

	if _, err := h.measurements.Archive(c.Request.Context(), cityID, window.From, window.To); err != nil {
		respondError(c, err, "Measurement")
		return
	}
	utils.NoContentResponse(c)
}

func (h *MeasurementHandler) DeleteMeasurement(c *gin.Context) {
	ts, ok := paramTimestamp(c, "timestamp")
	if !ok {
		return
	}
	cityID, ok := h.resolveCity(c)
	if !ok {
		return
	}

	if err := h.measurements.Delete(c.Request.Context(), cityID, ts); err != nil {
		respondError(c, err, "Measurement")
		return
	}
	utils.NoContentResponse(c)
}
