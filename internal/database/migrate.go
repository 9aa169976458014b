package database

import (
	"gorm.io/gorm"

	"github.com/thucdon/backend/internal/models"
)

// Migrate brings the schema up to date for every planning model.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Recipe{},
		&models.RecipeItem{},
		&models.Ingredient{},
		&models.MealPlan{},
		&models.UserPreference{},
	)
}
