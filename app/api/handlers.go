package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/reelbot/app/cfg"
	"github.com/lysyi3m/reelbot/app/database"
)

type Handler struct {
	requestRepo database.RequestRepository
	catalogRepo database.CatalogRepository
}

func NewHandler(requestRepo database.RequestRepository, catalogRepo database.CatalogRepository) *Handler {
	return &Handler{
		requestRepo: requestRepo,
		catalogRepo: catalogRepo,
	}
}

// GetRoot answers uptime pings from the hosting platform.
func (h *Handler) GetRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "ReelBot",
		"version": cfg.Get().Version,
		"status":  "alive",
	})
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if count, err := h.catalogRepo.Count(c.Request.Context()); err == nil {
		health["catalog_files"] = count
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	counts, err := h.requestRepo.CountByStatus(c.Request.Context())
	if err != nil {
		slog.Error("Database error", "operation", "count_by_status", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	requests := gin.H{"total": 0}
	total := 0
	for _, status := range database.AllStatuses() {
		requests[string(status)] = counts[status]
		total += counts[status]
	}
	requests["total"] = total

	stats := gin.H{"requests": requests}
	if count, err := h.catalogRepo.Count(c.Request.Context()); err == nil {
		stats["catalog_files"] = count
	}

	c.JSON(http.StatusOK, stats)
}
