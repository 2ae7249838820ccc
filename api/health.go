package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	storeEnabled bool
}

func NewHealthHandler(storeEnabled bool) *HealthHandler {
	return &HealthHandler{storeEnabled: storeEnabled}
}

func (h *HealthHandler) Register(router gin.IRoutes) {
	router.GET("/healthz", h.health)
}

func (h *HealthHandler) health(c *gin.Context) {
	store := "disabled"
	if h.storeEnabled {
		store = "enabled"
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "store": store})
}
