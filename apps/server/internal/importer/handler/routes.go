package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/tilsley/bindle/apps/server/internal/importer"
)

// Handler translates HTTP requests into calls on the importer.Service.
type Handler struct {
	svc *importer.Service
	log *slog.Logger
}

// RegisterRoutes mounts the bindle import API onto the given Gin engine.
func RegisterRoutes(r *gin.Engine, svc *importer.Service, log *slog.Logger) {
	h := &Handler{svc: svc, log: log}

	r.POST("/import", h.Import)
	r.GET("/info", h.Info)
	r.GET("/healthz", h.Healthz)
}

// Healthz handles GET /healthz.
func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(200, gin.H{"status": "ok"})
}
