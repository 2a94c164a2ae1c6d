package handlers

import (
	"fmt"

	"weather-api/services"
	"weather-api/utils"

	"github.com/gin-gonic/gin"
)

type CityRequest struct {
	Name string `json:"name" binding:"required"`
}

type CityHandler struct {
	cities *services.CityDirectory
}

func NewCityHandler(cities *services.CityDirectory) *CityHandler {
	return &CityHandler{cities: cities}
}

// GetCities lists all cities
func (h *CityHandler) GetCities(c *gin.Context) {
	cities, err := h.cities.List(c.Request.Context())
	if err != nil {
		respondError(c, err, "City")
		return
	}
	utils.SuccessResponse(c, cities)
}

func (h *CityHandler) GetCity(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	city, err := h.cities.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "City")
		return
	}
	utils.SuccessResponse(c, city)
}

func (h *CityHandler) CreateCity(c *gin.Context) {
	var req CityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	city, err := h.cities.Create(c.Request.Context(), req.Name)
	if err != nil {
		respondError(c, err, "City")
		return
	}
	utils.CreatedResponse(c, fmt.Sprintf("/api/cities/%d", city.ID), city)
}

// UpdateCity renames a city
func (h *CityHandler) UpdateCity(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req CityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	if err := h.cities.Update(c.Request.Context(), id, req.Name); err != nil {
		respondError(c, err, "City")
		return
	}
	utils.NoContentResponse(c)
}

// DeleteCity removes a city with all of its measurements and statistics
func (h *CityHandler) DeleteCity(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.cities.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err, "City")
		return
	}
	utils.NoContentResponse(c)
}
