package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/thucdon/backend/internal/models"
)

type stubFresher struct {
	calls [][]uuid.UUID
	err   error
}

func (f *stubFresher) EnsureFresh(ctx context.Context, ids []uuid.UUID) error {
	f.calls = append(f.calls, ids)
	return f.err
}

func newShoppingListService(db *gorm.DB, fresher PriceFresher) *ShoppingListService {
	return NewShoppingListService(db, NewMealPlanService(db, NewRecipeService(db)), fresher, zap.NewNop())
}

func TestAggregateMergesQuantities(t *testing.T) {
	db := setupTestDB(t)
	svc := newShoppingListService(db, nil)

	pork := createIngredient(t, db, "thịt ba chỉ", "g", nil)
	r1 := createRecipe(t, db, "Thịt kho", []string{"Main"}, 1, time.Time{})
	r2 := createRecipe(t, db, "Thịt luộc", []string{"Main"}, 1, time.Time{})
	createRecipeItem(t, db, r1.ID, pork.ID, 500, "")
	createRecipeItem(t, db, r2.ID, pork.ID, 300, "")

	list, err := svc.Aggregate(context.Background(), []string{r1.ID.String(), r2.ID.String()})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, pork.ID, list[0].IngredientID)
	assert.Equal(t, 800.0, list[0].Qty)
	assert.Equal(t, "g", list[0].Unit)
}

func TestAggregateAttachesCachedPrices(t *testing.T) {
	db := setupTestDB(t)
	svc := newShoppingListService(db, nil)

	price := 0.09
	pork := createIngredient(t, db, "thịt ba chỉ", "g", &price)
	fishSauce := createIngredient(t, db, "nước mắm", "ml", nil)
	r := createRecipe(t, db, "Thịt kho", []string{"Main"}, 1, time.Time{})
	createRecipeItem(t, db, r.ID, pork.ID, 500, "")
	createRecipeItem(t, db, r.ID, fishSauce.ID, 30, "")

	list, err := svc.Aggregate(context.Background(), []string{r.ID.String()})
	require.NoError(t, err)
	require.Len(t, list, 2)

	priced := list[0]
	require.NotNil(t, priced.UnitPrice)
	assert.Equal(t, 0.09, *priced.UnitPrice)
	assert.Equal(t, "VND", priced.Currency)
	require.NotNil(t, priced.EstimatedCost)
	assert.Equal(t, 45.0, *priced.EstimatedCost)
	assert.NotNil(t, priced.PriceUpdatedAt)

	unpriced := list[1]
	assert.Nil(t, unpriced.UnitPrice, "lines without a cached price carry no zero placeholder")
	assert.Nil(t, unpriced.EstimatedCost)
	assert.Empty(t, unpriced.Currency)
}

func TestAggregateRecipeItemUnitOverride(t *testing.T) {
	db := setupTestDB(t)
	svc := newShoppingListService(db, nil)

	egg := createIngredient(t, db, "trứng gà", "g", nil)
	r := createRecipe(t, db, "Trứng chiên", []string{"Main"}, 1, time.Time{})
	createRecipeItem(t, db, r.ID, egg.ID, 3, "quả")

	list, err := svc.Aggregate(context.Background(), []string{r.ID.String()})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "quả", list[0].Unit, "the recipe item's unit wins over the ingredient default")
}

func TestAggregateInvalidRecipeID(t *testing.T) {
	db := setupTestDB(t)
	svc := newShoppingListService(db, nil)

	_, err := svc.Aggregate(context.Background(), []string{"oops"})
	assert.True(t, IsValidation(err))
}

func TestAggregateEmptyInput(t *testing.T) {
	db := setupTestDB(t)
	svc := newShoppingListService(db, nil)

	list, err := svc.Aggregate(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestAggregateConsultsFresher(t *testing.T) {
	db := setupTestDB(t)
	fresher := &stubFresher{}
	svc := newShoppingListService(db, fresher)

	pork := createIngredient(t, db, "thịt ba chỉ", "g", nil)
	r := createRecipe(t, db, "Thịt kho", []string{"Main"}, 1, time.Time{})
	createRecipeItem(t, db, r.ID, pork.ID, 500, "")

	_, err := svc.Aggregate(context.Background(), []string{r.ID.String()})
	require.NoError(t, err)
	require.Len(t, fresher.calls, 1)
	assert.Equal(t, []uuid.UUID{pork.ID}, fresher.calls[0])
}

func TestAggregateSurvivesFresherFailure(t *testing.T) {
	db := setupTestDB(t)
	fresher := &stubFresher{err: errors.New("market unreachable")}
	svc := newShoppingListService(db, fresher)

	price := 25000.0
	tofu := createIngredient(t, db, "đậu hũ", "gói", &price)
	r := createRecipe(t, db, "Đậu hũ sốt cà", []string{"Main"}, 1, time.Time{})
	createRecipeItem(t, db, r.ID, tofu.ID, 2, "")

	list, err := svc.Aggregate(context.Background(), []string{r.ID.String()})
	require.NoError(t, err, "a broken price pipeline must not block the list")
	require.Len(t, list, 1)
	require.NotNil(t, list[0].UnitPrice, "already-cached prices still attach")
	assert.Equal(t, 50000.0, *list[0].EstimatedCost)
}

func TestAggregateRangeDeduplicatesRecipes(t *testing.T) {
	db := setupTestDB(t)
	svc := newShoppingListService(db, nil)
	userID := uuid.New()

	pork := createIngredient(t, db, "thịt ba chỉ", "g", nil)
	r := createRecipe(t, db, "Thịt kho", []string{"Main"}, 1, time.Time{})
	createRecipeItem(t, db, r.ID, pork.ID, 500, "")

	// The same recipe planned for lunch and dinner across two days counts
	// its ingredients once.
	ids := []string{r.ID.String()}
	day1 := time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)
	_, err := svc.mealPlans.UpsertSlots(context.Background(), userID, day1, models.SlotMap{Lunch: ids, Dinner: ids})
	require.NoError(t, err)
	_, err = svc.mealPlans.UpsertSlots(context.Background(), userID, day2, models.SlotMap{Lunch: ids})
	require.NoError(t, err)

	list, err := svc.AggregateRange(context.Background(), userID, day1, day2)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 500.0, list[0].Qty)
}

func TestAggregateRangeEmptyWindow(t *testing.T) {
	db := setupTestDB(t)
	svc := newShoppingListService(db, nil)

	list, err := svc.AggregateRange(context.Background(), uuid.New(),
		time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 11, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Empty(t, list)
}
