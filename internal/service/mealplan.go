package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/thucdon/backend/internal/models"
)

// MealPlanService owns the per-(user, date) meal plan records: slot writes,
// range reads and week copying. Slot writes are read-modify-write against
// the full slot map so a patch to one slot never loses its siblings.
type MealPlanService struct {
	db      *gorm.DB
	recipes *RecipeService
}

// NewMealPlanService creates a new MealPlanService instance
func NewMealPlanService(db *gorm.DB, recipes *RecipeService) *MealPlanService {
	return &MealPlanService{db: db, recipes: recipes}
}

// Get returns the plan for one calendar day.
func (s *MealPlanService) Get(ctx context.Context, userID uuid.UUID, date time.Time) (*models.MealPlan, error) {
	day := normalizeDate(date)
	var plan models.MealPlan
	err := s.db.WithContext(ctx).
		First(&plan, "user_id = ? AND date = ?", userID, day).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMealPlanNotFound
	}
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// FindRange returns all plans with dates in [start, end], ordered by date.
func (s *MealPlanService) FindRange(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]models.MealPlan, error) {
	var plans []models.MealPlan
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND date >= ? AND date <= ?", userID, normalizeDate(start), normalizeDate(end)).
		Order("date ASC").
		Find(&plans).Error
	if err != nil {
		return nil, err
	}
	return plans, nil
}

// UpsertSlots writes the complete slot map for a day, creating the plan
// record on first write. Every referenced recipe id must exist in the
// catalog at write time.
func (s *MealPlanService) UpsertSlots(ctx context.Context, userID uuid.UUID, date time.Time, slots models.SlotMap) (*models.MealPlan, error) {
	if err := s.validateRecipeIDs(ctx, slots.RecipeIDs()); err != nil {
		return nil, err
	}

	day := normalizeDate(date)
	var plan models.MealPlan
	err := s.db.WithContext(ctx).
		First(&plan, "user_id = ? AND date = ?", userID, day).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		plan = models.MealPlan{UserID: userID, Date: day, Slots: slots}
		if err := s.db.WithContext(ctx).Create(&plan).Error; err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		plan.Slots = slots
		if err := s.db.WithContext(ctx).Model(&plan).Update("slots", slots).Error; err != nil {
			return nil, err
		}
	}
	return &plan, nil
}

// PatchSlot replaces the recipe-id list of one slot, preserving siblings.
// It reads the full current slot map, mutates only the targeted slot, and
// writes the complete map back.
func (s *MealPlanService) PatchSlot(ctx context.Context, userID uuid.UUID, date time.Time, slot string, recipeIDs []string) (*models.MealPlan, error) {
	if err := s.validateRecipeIDs(ctx, recipeIDs); err != nil {
		return nil, err
	}

	day := normalizeDate(date)
	var plan models.MealPlan
	err := s.db.WithContext(ctx).
		First(&plan, "user_id = ? AND date = ?", userID, day).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		plan = models.MealPlan{UserID: userID, Date: day}
		if setErr := plan.Slots.Set(slot, recipeIDs); setErr != nil {
			return nil, NewValidationError("%v", setErr)
		}
		if err := s.db.WithContext(ctx).Create(&plan).Error; err != nil {
			return nil, err
		}
		return &plan, nil
	}
	if err != nil {
		return nil, err
	}

	if setErr := plan.Slots.Set(slot, recipeIDs); setErr != nil {
		return nil, NewValidationError("%v", setErr)
	}
	if err := s.db.WithContext(ctx).Model(&plan).Update("slots", plan.Slots).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

// CopyWeek copies every plan of the Monday-start week containing from into
// the week containing to, preserving each plan's day offset within the
// week. The destination week is fully overwritten, not merged — but only
// when the source week holds at least one plan, so an empty source never
// wipes existing destination data.
func (s *MealPlanService) CopyWeek(ctx context.Context, userID uuid.UUID, from, to time.Time) (int, error) {
	srcStart := startOfWeek(from)
	srcEnd := srcStart.AddDate(0, 0, 6)
	source, err := s.FindRange(ctx, userID, srcStart, srcEnd)
	if err != nil {
		return 0, err
	}
	if len(source) == 0 {
		return 0, nil
	}

	dstStart := startOfWeek(to)
	dstEnd := dstStart.AddDate(0, 0, 6)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().
			Where("user_id = ? AND date >= ? AND date <= ?", userID, dstStart, dstEnd).
			Delete(&models.MealPlan{}).Error; err != nil {
			return fmt.Errorf("failed to clear destination week: %w", err)
		}

		copies := make([]models.MealPlan, 0, len(source))
		for _, plan := range source {
			offset := daysBetween(srcStart, normalizeDate(plan.Date))
			copies = append(copies, models.MealPlan{
				UserID: userID,
				Date:   dstStart.AddDate(0, 0, offset),
				Slots:  plan.Slots,
				Note:   plan.Note,
			})
		}
		return tx.Create(&copies).Error
	})
	if err != nil {
		return 0, err
	}
	return len(source), nil
}

// validateRecipeIDs checks syntax and catalog membership of slot recipe ids.
func (s *MealPlanService) validateRecipeIDs(ctx context.Context, recipeIDs []string) error {
	if len(recipeIDs) == 0 {
		return nil
	}
	seen := make(map[uuid.UUID]struct{}, len(recipeIDs))
	distinct := make([]uuid.UUID, 0, len(recipeIDs))
	for _, raw := range recipeIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return NewValidationError("invalid recipe id %q", raw)
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		distinct = append(distinct, id)
	}

	count, err := s.recipes.CountByIDs(ctx, distinct)
	if err != nil {
		return err
	}
	if count != int64(len(distinct)) {
		return NewValidationError("one or more recipe ids are not in the catalog")
	}
	return nil
}

// normalizeDate truncates a timestamp to its UTC calendar day so that all
// stored plan dates compare cleanly.
func normalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// startOfWeek returns the Monday of the week containing t, truncated.
func startOfWeek(t time.Time) time.Time {
	day := normalizeDate(t)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

func daysBetween(start, end time.Time) int {
	return int(end.Sub(start) / (24 * time.Hour))
}
