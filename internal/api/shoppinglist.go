package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thucdon/backend/internal/middleware"
	"github.com/thucdon/backend/internal/service"
)

// ShoppingListHandler exposes shopping list aggregation.
type ShoppingListHandler struct {
	lists service.IShoppingListService
}

// NewShoppingListHandler creates a new ShoppingListHandler instance
func NewShoppingListHandler(lists service.IShoppingListService) *ShoppingListHandler {
	return &ShoppingListHandler{lists: lists}
}

// RegisterRoutes wires the shopping list endpoints into the given group.
func (h *ShoppingListHandler) RegisterRoutes(router *gin.RouterGroup) {
	list := router.Group("/shopping-list")
	{
		list.GET("", h.FromRange)
		list.POST("", h.FromRecipes)
	}
}

type aggregateRequest struct {
	RecipeIDs []string `json:"recipe_ids" binding:"required"`
}

// FromRecipes aggregates an explicit recipe list.
func (h *ShoppingListHandler) FromRecipes(c *gin.Context) {
	if _, ok := middleware.UserID(c); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var req aggregateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	items, err := h.lists.Aggregate(c.Request.Context(), req.RecipeIDs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// FromRange aggregates every recipe planned within ?start&end.
func (h *ShoppingListHandler) FromRange(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	start, err := parseDate(c.Query("start"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start must be YYYY-MM-DD"})
		return
	}
	end, err := parseDate(c.Query("end"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end must be YYYY-MM-DD"})
		return
	}

	items, err := h.lists.AggregateRange(c.Request.Context(), userID, start, end)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}
