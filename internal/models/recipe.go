package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Recipe is a catalog entry. Recipes are read-only to the planning core:
// they are created by the catalog admin tooling and never mutated here.
type Recipe struct {
	ID              uuid.UUID        `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
	DeletedAt       gorm.DeletedAt   `gorm:"index" json:"-"`
	Title           string           `gorm:"size:255;not null" json:"title"`
	Tags            JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"tags"`
	Region          string           `gorm:"size:50" json:"region"`
	CookTimeMinutes int              `gorm:"type:int" json:"cook_time_minutes"`
	Kcal            float64          `gorm:"type:float" json:"kcal"`
	Protein         float64          `gorm:"type:float" json:"protein"`
	Fat             float64          `gorm:"type:float" json:"fat"`
	Carbs           float64          `gorm:"type:float" json:"carbs"`
	Likes           int              `gorm:"type:int;default:0" json:"likes"`
	Items           []RecipeItem     `gorm:"foreignKey:RecipeID" json:"items,omitempty"`
}

// BeforeCreate assigns an id when the database does not generate one.
func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// RecipeItem links a recipe to one ingredient and the amount it consumes.
// Amount is expressed in the ingredient's base unit unless Unit overrides it.
type RecipeItem struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	RecipeID     uuid.UUID `gorm:"type:uuid;not null;index" json:"recipe_id"`
	IngredientID uuid.UUID `gorm:"type:uuid;not null;index" json:"ingredient_id"`
	Amount       float64   `gorm:"type:float;not null" json:"amount"`
	Unit         string    `gorm:"size:20" json:"unit,omitempty"`
}

// BeforeCreate assigns an id when the database does not generate one.
func (i *RecipeItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
