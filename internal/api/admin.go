package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thucdon/backend/internal/service"
)

// AdminHandler exposes operator actions.
type AdminHandler struct {
	refresher service.IPriceRefresher
}

// NewAdminHandler creates a new AdminHandler instance
func NewAdminHandler(refresher service.IPriceRefresher) *AdminHandler {
	return &AdminHandler{refresher: refresher}
}

// RegisterRoutes wires the admin endpoints into the given group.
func (h *AdminHandler) RegisterRoutes(router *gin.RouterGroup) {
	admin := router.Group("/admin")
	{
		admin.POST("/prices/refresh", h.RefreshPrices)
	}
}

// RefreshPrices runs a full price cache refresh immediately. The batch can
// take a while with a large ingredient table; callers should treat this as
// a manual override of the daily job, not a routine endpoint.
func (h *AdminHandler) RefreshPrices(c *gin.Context) {
	result, err := h.refresher.RefreshAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
