package api

import (
	"fieldmap-service/internal/api/handlers"
	"fieldmap-service/internal/services"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(maps *services.MapService, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(requestID(), accessLog(logger), gin.Recovery())

	mapHandler := &handlers.MapHandler{Maps: maps, Logger: logger}

	r.GET("/health", handlers.Health)

	m := r.Group("/maps")
	m.GET("/orders", mapHandler.Orders)
	m.GET("/orders/export.xlsx", mapHandler.ExportXLSX)
	m.GET("/clients/:clientID", mapHandler.Client)
	m.GET("/routes", mapHandler.Routes)
	m.GET("/routes/:routeID", mapHandler.Route)

	return r
}
