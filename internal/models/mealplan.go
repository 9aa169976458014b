package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Slot names within a day's meal plan.
const (
	SlotBreakfast = "breakfast"
	SlotLunch     = "lunch"
	SlotDinner    = "dinner"
	SlotAll       = "all"
)

// SlotMap holds the ordered recipe-id lists for the three named slots of a
// day. It is stored as a single JSONB column so a slot patch rewrites the
// whole map; callers must read-modify-write to preserve sibling slots.
type SlotMap struct {
	Breakfast []string `json:"breakfast,omitempty"`
	Lunch     []string `json:"lunch,omitempty"`
	Dinner    []string `json:"dinner,omitempty"`
}

// Value implements the driver.Valuer interface
func (m SlotMap) Value() (driver.Value, error) {
	return json.Marshal(m)
}

// Scan implements the sql.Scanner interface
func (m *SlotMap) Scan(value interface{}) error {
	if value == nil {
		*m = SlotMap{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	return json.Unmarshal(bytes, m)
}

// Get returns the recipe-id list for a named slot.
func (m SlotMap) Get(slot string) ([]string, error) {
	switch slot {
	case SlotBreakfast:
		return m.Breakfast, nil
	case SlotLunch:
		return m.Lunch, nil
	case SlotDinner:
		return m.Dinner, nil
	}
	return nil, fmt.Errorf("unknown slot %q", slot)
}

// Set replaces the recipe-id list for a named slot.
func (m *SlotMap) Set(slot string, recipeIDs []string) error {
	switch slot {
	case SlotBreakfast:
		m.Breakfast = recipeIDs
	case SlotLunch:
		m.Lunch = recipeIDs
	case SlotDinner:
		m.Dinner = recipeIDs
	default:
		return fmt.Errorf("unknown slot %q", slot)
	}
	return nil
}

// RecipeIDs returns every recipe id referenced by any slot, in slot order.
func (m SlotMap) RecipeIDs() []string {
	ids := make([]string, 0, len(m.Breakfast)+len(m.Lunch)+len(m.Dinner))
	ids = append(ids, m.Breakfast...)
	ids = append(ids, m.Lunch...)
	ids = append(ids, m.Dinner...)
	return ids
}

// MealPlan is one user's plan for one calendar day. There is exactly one
// record per (user, date).
type MealPlan struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_meal_plans_user_date" json:"user_id"`
	Date      time.Time      `gorm:"type:date;not null;uniqueIndex:idx_meal_plans_user_date" json:"date"`
	Slots     SlotMap        `gorm:"type:jsonb;not null;default:'{}'" json:"slots"`
	Note      string         `gorm:"type:text" json:"note,omitempty"`
}

// BeforeCreate assigns an id when the database does not generate one.
func (p *MealPlan) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
