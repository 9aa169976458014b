package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Ingredient is an entry in the price cache. PricePerUnit is always in the
// base unit (g, ml, or the atomic packaged unit like "chai"/"gói"), never in
// a raw scraped unit such as "kg" or "lít".
//
// LastCheckedAt records the most recent external lookup attempt, whether or
// not it produced a price. PriceUpdatedAt moves only when a price was found.
// Keeping the two apart distinguishes "checked today, nothing found" from
// "has a fresh price".
type Ingredient struct {
	ID             uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
	Name           string         `gorm:"size:255;not null;uniqueIndex" json:"name"`
	Unit           string         `gorm:"size:20;not null;default:'g'" json:"unit"`
	PricePerUnit   *float64       `gorm:"type:float" json:"price_per_unit,omitempty"`
	PriceCurrency  string         `gorm:"size:10" json:"price_currency,omitempty"`
	PriceUpdatedAt *time.Time     `json:"price_updated_at,omitempty"`
	LastCheckedAt  *time.Time     `json:"last_checked_at,omitempty"`
}

// BeforeCreate assigns an id when the database does not generate one.
func (i *Ingredient) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
