package service

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/thucdon/backend/internal/models"
)

// ShoppingListItem is one aggregated line of a shopping list. The price
// fields are only set when a cached price is available; an unpriced line is
// never defaulted to zero.
type ShoppingListItem struct {
	IngredientID   uuid.UUID  `json:"ingredient_id"`
	Name           string     `json:"name"`
	Unit           string     `json:"unit"`
	Qty            float64    `json:"qty"`
	Checked        bool       `json:"checked"`
	UnitPrice      *float64   `json:"unit_price,omitempty"`
	Currency       string     `json:"currency,omitempty"`
	EstimatedCost  *float64   `json:"estimated_cost,omitempty"`
	PriceUpdatedAt *time.Time `json:"price_updated_at,omitempty"`
}

// PriceFresher is the on-demand price throttle consulted before pricing a
// list. Implemented by pricing.Refresher.
type PriceFresher interface {
	EnsureFresh(ctx context.Context, ingredientIDs []uuid.UUID) error
}

// ShoppingListService merges per-ingredient quantities across recipes and
// attaches cached prices. Pricing is best effort: the list always returns,
// even when the whole price pipeline is down.
type ShoppingListService struct {
	db        *gorm.DB
	mealPlans *MealPlanService
	fresher   PriceFresher
	logger    *zap.Logger
}

// NewShoppingListService creates a new ShoppingListService instance.
// fresher may be nil, in which case only already-cached prices are used.
func NewShoppingListService(db *gorm.DB, mealPlans *MealPlanService, fresher PriceFresher, logger *zap.Logger) *ShoppingListService {
	return &ShoppingListService{db: db, mealPlans: mealPlans, fresher: fresher, logger: logger}
}

// Aggregate merges the ingredient quantities of the given recipes into one
// list, keyed by ingredient id. A per-recipe-item unit override wins over
// the ingredient's stored default unit.
func (s *ShoppingListService) Aggregate(ctx context.Context, recipeIDs []string) ([]ShoppingListItem, error) {
	ids, err := parseRecipeIDs(recipeIDs)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []ShoppingListItem{}, nil
	}

	var recipeItems []models.RecipeItem
	if err := s.db.WithContext(ctx).
		Where("recipe_id IN ?", ids).
		Find(&recipeItems).Error; err != nil {
		return nil, err
	}

	// Accumulate additively per ingredient id, preserving first-seen order.
	type line struct {
		qty          float64
		unitOverride string
	}
	order := make([]uuid.UUID, 0, len(recipeItems))
	lines := make(map[uuid.UUID]*line, len(recipeItems))
	for _, it := range recipeItems {
		l, ok := lines[it.IngredientID]
		if !ok {
			l = &line{}
			lines[it.IngredientID] = l
			order = append(order, it.IngredientID)
		}
		l.qty += it.Amount
		if l.unitOverride == "" && it.Unit != "" {
			l.unitOverride = it.Unit
		}
	}

	if s.fresher != nil {
		if err := s.fresher.EnsureFresh(ctx, order); err != nil {
			// Best effort: keep whatever prices are already cached.
			s.logger.Warn("on-demand price refresh unavailable", zap.Error(err))
		}
	}

	var ingredients []models.Ingredient
	if err := s.db.WithContext(ctx).Where("id IN ?", order).Find(&ingredients).Error; err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]models.Ingredient, len(ingredients))
	for _, ing := range ingredients {
		byID[ing.ID] = ing
	}

	list := make([]ShoppingListItem, 0, len(order))
	for _, ingID := range order {
		l := lines[ingID]
		ing, ok := byID[ingID]
		if !ok {
			continue
		}

		item := ShoppingListItem{
			IngredientID: ingID,
			Name:         ing.Name,
			Unit:         ing.Unit,
			Qty:          l.qty,
		}
		if l.unitOverride != "" {
			item.Unit = l.unitOverride
		}
		if ing.PricePerUnit != nil {
			price := *ing.PricePerUnit
			cost := math.Round(price*l.qty*100) / 100
			item.UnitPrice = &price
			item.Currency = ing.PriceCurrency
			item.EstimatedCost = &cost
			item.PriceUpdatedAt = ing.PriceUpdatedAt
		}
		list = append(list, item)
	}
	return list, nil
}

// AggregateRange builds a shopping list from every recipe referenced by the
// user's meal-plan slots within [start, end], deduplicated.
func (s *ShoppingListService) AggregateRange(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]ShoppingListItem, error) {
	plans, err := s.mealPlans.FindRange(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var recipeIDs []string
	for _, plan := range plans {
		for _, id := range plan.Slots.RecipeIDs() {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			recipeIDs = append(recipeIDs, id)
		}
	}
	return s.Aggregate(ctx, recipeIDs)
}

func parseRecipeIDs(raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, r := range raw {
		id, err := uuid.Parse(r)
		if err != nil {
			return nil, NewValidationError("invalid recipe id %q", r)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
