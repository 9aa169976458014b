package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/thucdon/backend/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Recipe{},
		&models.RecipeItem{},
		&models.Ingredient{},
		&models.MealPlan{},
		&models.UserPreference{},
	))
	return db
}

func createRecipe(t *testing.T, db *gorm.DB, title string, tags []string, likes int, createdAt time.Time) models.Recipe {
	r := models.Recipe{
		ID:    uuid.New(),
		Title: title,
		Tags:  tags,
		Likes: likes,
	}
	require.NoError(t, db.Create(&r).Error)
	if !createdAt.IsZero() {
		require.NoError(t, db.Model(&r).Update("created_at", createdAt).Error)
	}
	return r
}

func createIngredient(t *testing.T, db *gorm.DB, name, unit string, price *float64) models.Ingredient {
	ing := models.Ingredient{ID: uuid.New(), Name: name, Unit: unit, PricePerUnit: price}
	if price != nil {
		ing.PriceCurrency = "VND"
		now := time.Now()
		ing.PriceUpdatedAt = &now
	}
	require.NoError(t, db.Create(&ing).Error)
	return ing
}

func createRecipeItem(t *testing.T, db *gorm.DB, recipeID, ingredientID uuid.UUID, amount float64, unit string) {
	item := models.RecipeItem{
		ID:           uuid.New(),
		RecipeID:     recipeID,
		IngredientID: ingredientID,
		Amount:       amount,
		Unit:         unit,
	}
	require.NoError(t, db.Create(&item).Error)
}
