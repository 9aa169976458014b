package service

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/thucdon/backend/internal/models"
)

const (
	// defaultCookTimeMinutes is assumed for recipes with no cook time set.
	defaultCookTimeMinutes = 30
	// defaultCandidateLimit bounds each block's candidate pool.
	defaultCandidateLimit = 20
	// breakfastDishCap caps the light breakfast subset under slot "all".
	breakfastDishCap = 3
)

// block is a menu-composition category: a tag group and a required dish
// count. Blocks exist only during suggestion and are never persisted.
type block struct {
	Name     string
	Tags     []string
	Count    int
	Optional bool
}

var menuBlocks = []block{
	{Name: "main", Tags: []string{"Main", "Mặn"}, Count: 1},
	{Name: "soup", Tags: []string{"Soup", "Canh"}, Count: 1},
	{Name: "vegetable", Tags: []string{"Vegetable", "Rau", "Xào"}, Count: 1},
	{Name: "starter", Tags: []string{"Starter", "Khai Vị"}, Count: 1, Optional: true},
	{Name: "dessert", Tags: []string{"Dessert", "Tráng Miệng"}, Count: 1, Optional: true},
}

// breakfastTags qualify a dish for the light breakfast subset.
var breakfastTags = []string{"Veggie", "Soup", "Salad"}

// SuggestOptions tunes one menu composition.
type SuggestOptions struct {
	IncludeStarter     bool   `json:"include_starter"`
	IncludeDessert     bool   `json:"include_dessert"`
	MaxCookTimeMinutes int    `json:"max_cook_time_minutes"`
	Region             string `json:"region"`
	Persist            bool   `json:"persist"`
}

// MenuSuggestion is one composed dish set for a day and slot.
type MenuSuggestion struct {
	Date   time.Time       `json:"date"`
	Slot   string          `json:"slot"`
	Dishes []models.Recipe `json:"dishes"`
}

// MealSuggestion is the flat preference-driven suggestion list.
type MealSuggestion struct {
	Recipes []models.Recipe `json:"recipes"`
	Message string          `json:"message"`
}

// MenuService composes balanced menus from per-block candidate pools. The
// random source is injected so composition is deterministic under test; a
// mutex guards it because rand.Rand is not safe for concurrent use.
type MenuService struct {
	recipes   *RecipeService
	mealPlans *MealPlanService
	prefs     *PreferenceService
	logger    *zap.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewMenuService creates a new MenuService instance
func NewMenuService(recipes *RecipeService, mealPlans *MealPlanService, prefs *PreferenceService, rng *rand.Rand, logger *zap.Logger) *MenuService {
	return &MenuService{
		recipes:   recipes,
		mealPlans: mealPlans,
		prefs:     prefs,
		rng:       rng,
		logger:    logger,
	}
}

// SuggestMenu composes a dish set for the given day and slot. Each block's
// pool is sampled uniformly without replacement and no recipe appears twice
// across the whole menu. When opts.Persist is set the selection is written
// into the day's meal-plan slots.
func (s *MenuService) SuggestMenu(ctx context.Context, userID uuid.UUID, date time.Time, slot string, opts SuggestOptions) (*MenuSuggestion, error) {
	switch slot {
	case models.SlotAll, models.SlotBreakfast, models.SlotLunch, models.SlotDinner:
	default:
		return nil, NewValidationError("unknown slot %q", slot)
	}

	pref, err := s.prefs.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	var (
		vegetarian bool
		avoid      []string
	)
	if pref != nil {
		vegetarian = isVegetarianDiet(pref.DietType)
		avoid = pref.DislikedIngredients
	}

	chosen := make([]models.Recipe, 0, len(menuBlocks))
	picked := make(map[uuid.UUID]struct{})
	dessertStart := -1

	for _, b := range menuBlocks {
		if b.Optional {
			if b.Name == "starter" && !opts.IncludeStarter {
				continue
			}
			if b.Name == "dessert" && !opts.IncludeDessert {
				continue
			}
		}

		pool, err := s.recipes.PickCandidates(ctx, CandidateQuery{
			MustTags:   b.Tags,
			AvoidNames: avoid,
			Vegetarian: vegetarian,
			Region:     opts.Region,
			Limit:      defaultCandidateLimit,
		})
		if err != nil {
			return nil, err
		}

		s.shuffle(pool)
		taken := 0
		if b.Name == "dessert" {
			dessertStart = len(chosen)
		}
		for _, r := range pool {
			if taken == b.Count {
				break
			}
			if _, dup := picked[r.ID]; dup {
				continue
			}
			picked[r.ID] = struct{}{}
			chosen = append(chosen, r)
			taken++
		}
	}

	// Over the cook-time budget the dessert selection is dropped as the
	// single remediation step; no re-search for faster substitutes.
	if opts.MaxCookTimeMinutes > 0 && totalCookTime(chosen) > opts.MaxCookTimeMinutes && dessertStart >= 0 && dessertStart < len(chosen) {
		for _, r := range chosen[dessertStart:] {
			delete(picked, r.ID)
		}
		chosen = chosen[:dessertStart]
	}

	suggestion := &MenuSuggestion{Date: normalizeDate(date), Slot: slot, Dishes: chosen}

	if opts.Persist {
		if err := s.persist(ctx, userID, suggestion); err != nil {
			return nil, err
		}
	}
	return suggestion, nil
}

// SuggestMeal resolves the user's stored preference into a flat candidate
// list. An empty result is not an error; the message explains it.
func (s *MenuService) SuggestMeal(ctx context.Context, userID uuid.UUID) (*MealSuggestion, error) {
	pref, err := s.prefs.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	q := CandidateQuery{Limit: 10}
	var kcalPerMeal float64
	if pref != nil {
		q.MustTags = pref.LikedTags
		q.AvoidNames = pref.DislikedIngredients
		q.Vegetarian = isVegetarianDiet(pref.DietType)
		if pref.DailyKcalTarget > 0 {
			kcalPerMeal = float64(pref.DailyKcalTarget) / 3
		}
	}

	candidates, err := s.recipes.PickCandidates(ctx, q)
	if err != nil {
		return nil, err
	}

	recipes := make([]models.Recipe, 0, len(candidates))
	for _, r := range candidates {
		if kcalPerMeal > 0 && r.Kcal > kcalPerMeal {
			continue
		}
		recipes = append(recipes, r)
	}

	msg := "here is what we'd cook today"
	if len(recipes) == 0 {
		msg = "no recipes in the catalog match your preferences yet; try relaxing your diet or disliked-ingredient filters"
	}
	return &MealSuggestion{Recipes: recipes, Message: msg}, nil
}

// persist writes the dish set into the day's meal-plan slots. Slot "all"
// gives lunch and dinner the full set and breakfast a light subset.
func (s *MenuService) persist(ctx context.Context, userID uuid.UUID, sg *MenuSuggestion) error {
	ids := make([]string, len(sg.Dishes))
	for i, r := range sg.Dishes {
		ids[i] = r.ID.String()
	}

	if sg.Slot != models.SlotAll {
		_, err := s.mealPlans.PatchSlot(ctx, userID, sg.Date, sg.Slot, ids)
		return err
	}

	breakfast := lightSubset(sg.Dishes)
	for slot, slotIDs := range map[string][]string{
		models.SlotBreakfast: breakfast,
		models.SlotLunch:     ids,
		models.SlotDinner:    ids,
	} {
		if _, err := s.mealPlans.PatchSlot(ctx, userID, sg.Date, slot, slotIDs); err != nil {
			return err
		}
	}
	return nil
}

// lightSubset picks breakfast-suitable dishes (Veggie/Soup/Salad, capped),
// falling back to the first two selected dishes when none qualify.
func lightSubset(dishes []models.Recipe) []string {
	var light []string
	for _, r := range dishes {
		for _, tag := range breakfastTags {
			if r.Tags.Contains(tag) {
				light = append(light, r.ID.String())
				break
			}
		}
		if len(light) == breakfastDishCap {
			break
		}
	}
	if len(light) > 0 {
		return light
	}
	n := 2
	if len(dishes) < n {
		n = len(dishes)
	}
	fallback := make([]string, 0, n)
	for _, r := range dishes[:n] {
		fallback = append(fallback, r.ID.String())
	}
	return fallback
}

// shuffle is an in-place Fisher–Yates permutation over the pool.
func (s *MenuService) shuffle(pool []models.Recipe) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(pool) - 1; i >= 1; i-- {
		j := s.rng.Intn(i + 1)
		pool[i], pool[j] = pool[j], pool[i]
	}
}

func totalCookTime(dishes []models.Recipe) int {
	total := 0
	for _, r := range dishes {
		minutes := r.CookTimeMinutes
		if minutes <= 0 {
			minutes = defaultCookTimeMinutes
		}
		total += minutes
	}
	return total
}

func isVegetarianDiet(dietType string) bool {
	switch dietType {
	case "vegan", "Vegan", "vegetarian", "Vegetarian":
		return true
	}
	return false
}
