package models

import (
	"time"

	"github.com/google/uuid"
)

// UserPreference is the planning input resolved from the profile store.
// Read-only to this service.
type UserPreference struct {
	UserID              uuid.UUID        `gorm:"type:uuid;primary_key" json:"user_id"`
	CreatedAt           time.Time        `json:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at"`
	DailyKcalTarget     int              `gorm:"type:int" json:"daily_kcal_target"`
	DietType            string           `gorm:"size:50" json:"diet_type"`
	DislikedIngredients JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"disliked_ingredients"`
	LikedTags           JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"liked_tags"`
}
