package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/thucdon/backend/internal/middleware"
	"github.com/thucdon/backend/internal/models"
	"github.com/thucdon/backend/internal/service"
)

// MealPlanHandler exposes meal plan reads, slot writes and week copying.
type MealPlanHandler struct {
	mealPlans service.IMealPlanService
}

// NewMealPlanHandler creates a new MealPlanHandler instance
func NewMealPlanHandler(mealPlans service.IMealPlanService) *MealPlanHandler {
	return &MealPlanHandler{mealPlans: mealPlans}
}

// RegisterRoutes wires the meal plan endpoints into the given group.
func (h *MealPlanHandler) RegisterRoutes(router *gin.RouterGroup) {
	plans := router.Group("/meal-plans")
	{
		plans.GET("", h.List)
		plans.GET("/:date", h.Get)
		plans.PUT("/:date", h.UpsertSlots)
		plans.PATCH("/:date/slots/:slot", h.PatchSlot)
		plans.POST("/copy-week", h.CopyWeek)
	}
}

// Get returns the plan for one day.
func (h *MealPlanHandler) Get(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	date, err := parseDate(c.Param("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	plan, err := h.mealPlans.Get(c.Request.Context(), userID, date)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

// List returns the plans within ?start=YYYY-MM-DD&end=YYYY-MM-DD.
func (h *MealPlanHandler) List(c *gin.Context) {
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

	plans, err := h.mealPlans.FindRange(c.Request.Context(), userID, start, end)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"meal_plans": plans})
}

type upsertSlotsRequest struct {
	Slots models.SlotMap `json:"slots"`
}

// UpsertSlots writes the full slot map for a day.
func (h *MealPlanHandler) UpsertSlots(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	date, err := parseDate(c.Param("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req upsertSlotsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	plan, err := h.mealPlans.UpsertSlots(c.Request.Context(), userID, date, req.Slots)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

type patchSlotRequest struct {
	RecipeIDs []string `json:"recipe_ids"`
}

// PatchSlot replaces one slot's recipe list, preserving sibling slots.
func (h *MealPlanHandler) PatchSlot(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	date, err := parseDate(c.Param("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req patchSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	plan, err := h.mealPlans.PatchSlot(c.Request.Context(), userID, date, c.Param("slot"), req.RecipeIDs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

type copyWeekRequest struct {
	From string `json:"from" binding:"required"`
	To   string `json:"to" binding:"required"`
}

// CopyWeek overwrites the destination week with the source week's plans.
func (h *MealPlanHandler) CopyWeek(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var req copyWeekRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	from, err := parseDate(req.From)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from must be YYYY-MM-DD"})
		return
	}
	to, err := parseDate(req.To)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "to must be YYYY-MM-DD"})
		return
	}

	copied, err := h.mealPlans.CopyWeek(c.Request.Context(), userID, from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"copied": copied})
}

func parseDate(raw string) (time.Time, error) {
	return time.Parse("2006-01-02", raw)
}
