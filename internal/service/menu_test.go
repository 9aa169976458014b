package service

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/thucdon/backend/internal/models"
)

func newMenuService(db *gorm.DB, seed int64) *MenuService {
	recipes := NewRecipeService(db)
	return NewMenuService(
		recipes,
		NewMealPlanService(db, recipes),
		NewPreferenceService(db),
		rand.New(rand.NewSource(seed)),
		zap.NewNop(),
	)
}

// seedMenuCatalog creates a small catalog covering every composition block.
func seedMenuCatalog(t *testing.T, db *gorm.DB) {
	t.Helper()
	for _, title := range []string{"Thịt kho tiêu", "Cá kho tộ", "Gà rang gừng"} {
		createRecipe(t, db, title, []string{"Main"}, 1, time.Time{})
	}
	for _, title := range []string{"Canh chua cá", "Canh bí đỏ"} {
		createRecipe(t, db, title, []string{"Soup"}, 1, time.Time{})
	}
	for _, title := range []string{"Rau muống xào tỏi", "Cải thìa luộc"} {
		createRecipe(t, db, title, []string{"Vegetable"}, 1, time.Time{})
	}
	createRecipe(t, db, "Chè đậu xanh", []string{"Dessert"}, 1, time.Time{})
	createRecipe(t, db, "Gỏi cuốn", []string{"Starter"}, 1, time.Time{})
}

func dishIDs(dishes []models.Recipe) []string {
	ids := make([]string, len(dishes))
	for i, r := range dishes {
		ids[i] = r.ID.String()
	}
	return ids
}

func TestSuggestMenuComposesOneDishPerBlock(t *testing.T) {
	db := setupTestDB(t)
	seedMenuCatalog(t, db)
	svc := newMenuService(db, 1)

	sg, err := svc.SuggestMenu(context.Background(), uuid.New(), time.Now(), models.SlotLunch, SuggestOptions{})
	require.NoError(t, err)
	require.Len(t, sg.Dishes, 3, "main, soup and vegetable by default")

	seen := make(map[uuid.UUID]bool)
	for _, r := range sg.Dishes {
		assert.False(t, seen[r.ID], "no recipe may appear twice in one menu")
		seen[r.ID] = true
	}
	assert.True(t, sg.Dishes[0].Tags.Contains("Main"))
	assert.True(t, sg.Dishes[1].Tags.Contains("Soup"))
	assert.True(t, sg.Dishes[2].Tags.Contains("Vegetable"))
}

func TestSuggestMenuOptionalBlocks(t *testing.T) {
	db := setupTestDB(t)
	seedMenuCatalog(t, db)
	svc := newMenuService(db, 1)

	sg, err := svc.SuggestMenu(context.Background(), uuid.New(), time.Now(), models.SlotDinner, SuggestOptions{
		IncludeStarter: true,
		IncludeDessert: true,
	})
	require.NoError(t, err)
	assert.Len(t, sg.Dishes, 5)
}

func TestSuggestMenuDeterministicForSeed(t *testing.T) {
	db := setupTestDB(t)
	seedMenuCatalog(t, db)

	a, err := newMenuService(db, 7).SuggestMenu(context.Background(), uuid.New(), time.Now(), models.SlotLunch, SuggestOptions{})
	require.NoError(t, err)
	b, err := newMenuService(db, 7).SuggestMenu(context.Background(), uuid.New(), time.Now(), models.SlotLunch, SuggestOptions{})
	require.NoError(t, err)

	assert.Equal(t, dishIDs(a.Dishes), dishIDs(b.Dishes), "same seed, same composition")
}

func TestSuggestMenuDropsDessertOverCookTimeBudget(t *testing.T) {
	db := setupTestDB(t)
	seedMenuCatalog(t, db)
	svc := newMenuService(db, 1)

	// Four dishes at the 30-minute default total 120, over a 100-minute
	// budget, so the dessert is dropped and nothing else is re-searched.
	sg, err := svc.SuggestMenu(context.Background(), uuid.New(), time.Now(), models.SlotLunch, SuggestOptions{
		IncludeDessert:     true,
		MaxCookTimeMinutes: 100,
	})
	require.NoError(t, err)
	require.Len(t, sg.Dishes, 3)
	for _, r := range sg.Dishes {
		assert.False(t, r.Tags.Contains("Dessert"))
	}
}

func TestSuggestMenuKeepsDessertWithinBudget(t *testing.T) {
	db := setupTestDB(t)
	seedMenuCatalog(t, db)
	svc := newMenuService(db, 1)

	sg, err := svc.SuggestMenu(context.Background(), uuid.New(), time.Now(), models.SlotLunch, SuggestOptions{
		IncludeDessert:     true,
		MaxCookTimeMinutes: 150,
	})
	require.NoError(t, err)
	assert.Len(t, sg.Dishes, 4)
}

func TestSuggestMenuRejectsUnknownSlot(t *testing.T) {
	db := setupTestDB(t)
	svc := newMenuService(db, 1)

	_, err := svc.SuggestMenu(context.Background(), uuid.New(), time.Now(), "supper", SuggestOptions{})
	assert.True(t, IsValidation(err))
}

func TestSuggestMenuPersistSingleSlot(t *testing.T) {
	db := setupTestDB(t)
	seedMenuCatalog(t, db)
	svc := newMenuService(db, 1)
	userID := uuid.New()
	date := time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)

	sg, err := svc.SuggestMenu(context.Background(), userID, date, models.SlotDinner, SuggestOptions{Persist: true})
	require.NoError(t, err)

	plan, err := svc.mealPlans.Get(context.Background(), userID, date)
	require.NoError(t, err)
	assert.Equal(t, dishIDs(sg.Dishes), plan.Slots.Dinner)
	assert.Empty(t, plan.Slots.Breakfast)
	assert.Empty(t, plan.Slots.Lunch)
}

func TestSuggestMenuPersistAllSlots(t *testing.T) {
	db := setupTestDB(t)
	seedMenuCatalog(t, db)
	svc := newMenuService(db, 1)
	userID := uuid.New()
	date := time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)

	sg, err := svc.SuggestMenu(context.Background(), userID, date, models.SlotAll, SuggestOptions{Persist: true})
	require.NoError(t, err)
	full := dishIDs(sg.Dishes)

	plan, err := svc.mealPlans.Get(context.Background(), userID, date)
	require.NoError(t, err)
	assert.Equal(t, full, plan.Slots.Lunch)
	assert.Equal(t, full, plan.Slots.Dinner)

	// Breakfast takes only the light dishes; the soup qualifies, the braised
	// main and stir-fried vegetable do not.
	require.NotEmpty(t, plan.Slots.Breakfast)
	assert.Less(t, len(plan.Slots.Breakfast), len(full))
	for _, id := range plan.Slots.Breakfast {
		assert.Contains(t, full, id)
	}
}

func TestSuggestMenuAppliesPreferences(t *testing.T) {
	db := setupTestDB(t)
	seedMenuCatalog(t, db)
	userID := uuid.New()
	require.NoError(t, db.Create(&models.UserPreference{
		UserID:              userID,
		DislikedIngredients: models.JSONBStringArray{"cá"},
	}).Error)

	svc := newMenuService(db, 1)
	sg, err := svc.SuggestMenu(context.Background(), userID, time.Now(), models.SlotLunch, SuggestOptions{})
	require.NoError(t, err)
	for _, r := range sg.Dishes {
		assert.NotContains(t, r.Title, "cá", "disliked ingredients exclude matching titles")
		assert.NotContains(t, r.Title, "Cá")
	}
}

func TestSuggestMealFiltersByKcalTarget(t *testing.T) {
	db := setupTestDB(t)
	light := createRecipe(t, db, "Salad bơ", []string{"Salad"}, 1, time.Time{})
	heavy := createRecipe(t, db, "Cơm tấm sườn", []string{"Main"}, 1, time.Time{})
	require.NoError(t, db.Model(&light).Update("kcal", 400).Error)
	require.NoError(t, db.Model(&heavy).Update("kcal", 900).Error)

	userID := uuid.New()
	require.NoError(t, db.Create(&models.UserPreference{
		UserID:          userID,
		DailyKcalTarget: 1500,
	}).Error)

	svc := newMenuService(db, 1)
	ms, err := svc.SuggestMeal(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, ms.Recipes, 1, "dishes over a third of the daily target are filtered")
	assert.Equal(t, light.ID, ms.Recipes[0].ID)
	assert.NotEmpty(t, ms.Message)
}

func TestSuggestMealEmptyCatalog(t *testing.T) {
	db := setupTestDB(t)
	svc := newMenuService(db, 1)

	ms, err := svc.SuggestMeal(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, ms.Recipes)
	assert.NotEmpty(t, ms.Message, "an empty result still carries an explanation")
}
