package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thucdon/backend/internal/models"
	"github.com/thucdon/backend/internal/testhelpers"
)

// TestCandidateTagMatchingPostgres runs the tag query against real JSONB
// columns, covering the tags::text cast that SQLite never exercises.
func TestCandidateTagMatchingPostgres(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	svc := NewRecipeService(db)

	createRecipe(t, db, "Canh chua cá lóc", []string{"Soup", "Miền Nam"}, 3, time.Time{})
	createRecipe(t, db, "Rau muống xào tỏi", []string{"Vegetable"}, 1, time.Time{})

	got, err := svc.PickCandidates(context.Background(), CandidateQuery{MustTags: []string{"Soup"}})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Canh chua cá lóc", got[0].Title)
}

// TestSlotMapRoundTripPostgres verifies the slot map survives a JSONB
// write/read cycle and that patches keep sibling slots intact.
func TestSlotMapRoundTripPostgres(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	svc := NewMealPlanService(db, NewRecipeService(db))
	userID := uuid.New()
	date := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

	a := createRecipe(t, db, "Thịt kho trứng", []string{"Main"}, 1, time.Time{})
	b := createRecipe(t, db, "Canh bí đỏ", []string{"Soup"}, 1, time.Time{})

	_, err := svc.UpsertSlots(context.Background(), userID, date, models.SlotMap{
		Lunch: []string{a.ID.String(), b.ID.String()},
	})
	require.NoError(t, err)

	_, err = svc.PatchSlot(context.Background(), userID, date, models.SlotDinner, []string{a.ID.String()})
	require.NoError(t, err)

	plan, err := svc.Get(context.Background(), userID, date)
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID.String(), b.ID.String()}, plan.Slots.Lunch)
	assert.Equal(t, []string{a.ID.String()}, plan.Slots.Dinner)
}

// TestCopyWeekUniqueIndexPostgres checks the overwrite path against the real
// unique index on (user_id, date).
func TestCopyWeekUniqueIndexPostgres(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	svc := NewMealPlanService(db, NewRecipeService(db))
	userID := uuid.New()

	r := createRecipe(t, db, "Gà kho gừng", []string{"Main"}, 1, time.Time{})
	ids := []string{r.ID.String()}
	mon := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err := svc.UpsertSlots(context.Background(), userID, mon, models.SlotMap{Lunch: ids})
	require.NoError(t, err)

	dst := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
	_, err = svc.UpsertSlots(context.Background(), userID, dst, models.SlotMap{Dinner: ids})
	require.NoError(t, err)

	// Copying twice recreates the same destination rows both times; the
	// second run must not trip the unique index on leftover rows.
	for i := 0; i < 2; i++ {
		copied, err := svc.CopyWeek(context.Background(), userID, mon, dst)
		require.NoError(t, err)
		assert.Equal(t, 1, copied)
	}

	plan, err := svc.Get(context.Background(), userID, dst)
	require.NoError(t, err)
	assert.Equal(t, ids, plan.Slots.Lunch)
	assert.Empty(t, plan.Slots.Dinner)
}
