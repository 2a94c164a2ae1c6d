package handlers

import (
	"errors"

	"weather-api/models"
	"weather-api/services"
	"weather-api/utils"

	"github.com/gin-gonic/gin"
)

type SummaryHandler struct {
	summary *services.SummaryService
}

func NewSummaryHandler(summary *services.SummaryService) *SummaryHandler {
	return &SummaryHandler{summary: summary}
}

// GetSystemSummary returns the periodically refreshed row counts
func (h *SummaryHandler) GetSystemSummary(c *gin.Context) {
	summary, err := h.summary.Current(c.Request.Context())
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			utils.SuccessMessageResponse(c, "Summary not yet available", models.SystemSummary{})
			return
		}

		utils.InternalErrorResponse(c, "Failed to retrieve summary")
		return
	}

	utils.SuccessResponse(c, summary)
}
