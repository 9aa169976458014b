package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/thucdon/backend/internal/models"
	"github.com/thucdon/backend/internal/pricing"
)

// IMenuService defines the interface for menu composition
type IMenuService interface {
	SuggestMenu(ctx context.Context, userID uuid.UUID, date time.Time, slot string, opts SuggestOptions) (*MenuSuggestion, error)
	SuggestMeal(ctx context.Context, userID uuid.UUID) (*MealSuggestion, error)
}

// IMealPlanService defines the interface for meal plan operations
type IMealPlanService interface {
	Get(ctx context.Context, userID uuid.UUID, date time.Time) (*models.MealPlan, error)
	FindRange(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]models.MealPlan, error)
	UpsertSlots(ctx context.Context, userID uuid.UUID, date time.Time, slots models.SlotMap) (*models.MealPlan, error)
	PatchSlot(ctx context.Context, userID uuid.UUID, date time.Time, slot string, recipeIDs []string) (*models.MealPlan, error)
	CopyWeek(ctx context.Context, userID uuid.UUID, from, to time.Time) (int, error)
}

// IShoppingListService defines the interface for shopping list aggregation
type IShoppingListService interface {
	Aggregate(ctx context.Context, recipeIDs []string) ([]ShoppingListItem, error)
	AggregateRange(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]ShoppingListItem, error)
}

// IPriceRefresher defines the interface for the batch price refresh job
type IPriceRefresher interface {
	RefreshAll(ctx context.Context) (pricing.RefreshResult, error)
}
