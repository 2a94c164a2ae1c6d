package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"weather-api/services"
	"weather-api/utils"

	"github.com/gin-gonic/gin"
)

// Accepted timestamp layouts; zone-less values are taken as UTC
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid ISO-8601 timestamp %q", s)
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// paramID reads a numeric path parameter, answering 400 when it is malformed
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		utils.BadRequestResponse(c, fmt.Sprintf("Invalid %s", name))
		return 0, false
	}
	return uint(id), true
}

// paramTimestamp reads an ISO-8601 path parameter, answering 400 when it is malformed
func paramTimestamp(c *gin.Context, name string) (time.Time, bool) {
	ts, err := parseTimestamp(c.Param(name))
	if err != nil {
		utils.BadRequestResponse(c, err.Error())
		return time.Time{}, false
	}
	return ts, true
}

// paramWindow reads the from/to path parameters
func paramWindow(c *gin.Context) (*services.TimeWindow, bool) {
	from, ok := paramTimestamp(c, "from")
	if !ok {
		return nil, false
	}
	to, ok := paramTimestamp(c, "to")
	if !ok {
		return nil, false
	}
	return &services.TimeWindow{From: from, To: to}, true
}

func measurementLocation(city string, ts time.Time) string {
	return fmt.Sprintf("/api/measurements/%s/at/%s", url.PathEscape(city), formatTimestamp(ts))
}

// respondError maps service errors onto HTTP statuses
func respondError(c *gin.Context, err error, entity string) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		utils.NotFoundResponse(c, entity+" not found")
	case errors.Is(err, services.ErrConflict):
		utils.ConflictResponse(c, entity+" already exists")
	case errors.Is(err, services.ErrConcurrencyConflict):
		utils.ConflictResponse(c, entity+" was modified concurrently")
	default:
		_ = c.Error(err)
		slog.Error("Request failed", "path", c.Request.URL.Path, "error", err)
		utils.InternalErrorResponse(c, "Internal server error")
	}
}
