package handlers

import (
	"context"
	"errors"
	"fieldmap-service/internal/ports"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

const maxBatchRoutes = 50

func writeError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

// errorStatus maps service errors onto HTTP statuses. Anything that is not a
// missing resource or a caller abort is an upstream failure.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, ports.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.Canceled):
		return 499
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func errorMessage(status int) string {
	switch status {
	case http.StatusNotFound:
		return "not found"
	case http.StatusGatewayTimeout:
		return "backend timed out"
	default:
		return "backend unavailable"
	}
}

func parseID(raw string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

// parseIDList parses a comma separated list of positive ids.
func parseIDList(raw string) ([]int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("ids is required")
	}

	parts := strings.Split(raw, ",")
	if len(parts) > maxBatchRoutes {
		return nil, fmt.Errorf("at most %d ids per request", maxBatchRoutes)
	}

	ids := make([]int, 0, len(parts))
	for _, p := range parts {
		id, err := parseID(p)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
