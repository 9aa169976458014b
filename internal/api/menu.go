package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/thucdon/backend/internal/middleware"
	"github.com/thucdon/backend/internal/service"
)

// MenuHandler exposes menu suggestion over HTTP.
type MenuHandler struct {
	menu service.IMenuService
}

// NewMenuHandler creates a new MenuHandler instance
func NewMenuHandler(menu service.IMenuService) *MenuHandler {
	return &MenuHandler{menu: menu}
}

// RegisterRoutes wires the menu endpoints into the given group.
func (h *MenuHandler) RegisterRoutes(router *gin.RouterGroup) {
	menu := router.Group("/menu")
	{
		menu.POST("/suggest", h.SuggestMenu)
		menu.GET("/meal", h.SuggestMeal)
	}
}

type suggestMenuRequest struct {
	Date               string `json:"date" binding:"required"`
	Slot               string `json:"slot" binding:"required"`
	IncludeStarter     bool   `json:"include_starter"`
	IncludeDessert     bool   `json:"include_dessert"`
	MaxCookTimeMinutes int    `json:"max_cook_time_minutes"`
	Region             string `json:"region"`
	Persist            bool   `json:"persist"`
}

// SuggestMenu composes a dish set for a day and slot, optionally persisting
// it into the meal plan.
func (h *MenuHandler) SuggestMenu(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var req suggestMenuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	suggestion, err := h.menu.SuggestMenu(c.Request.Context(), userID, date, req.Slot, service.SuggestOptions{
		IncludeStarter:     req.IncludeStarter,
		IncludeDessert:     req.IncludeDessert,
		MaxCookTimeMinutes: req.MaxCookTimeMinutes,
		Region:             req.Region,
		Persist:            req.Persist,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, suggestion)
}

// SuggestMeal returns the flat preference-driven suggestion list.
func (h *MenuHandler) SuggestMeal(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	suggestion, err := h.menu.SuggestMeal(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, suggestion)
}
