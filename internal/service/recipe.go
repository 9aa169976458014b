package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/thucdon/backend/internal/models"
)

// candidateScanLimit bounds how many ranked rows are pulled from the catalog
// before title exclusion runs, so exclusion cost stays flat no matter how
// large the catalog grows.
const candidateScanLimit = 200

// CandidateQuery describes one candidate pool request.
type CandidateQuery struct {
	// MustTags are matched with OR semantics against the recipe tag set.
	MustTags []string
	// AvoidNames excludes recipes whose title contains any of these names
	// (case-insensitive substring).
	AvoidNames []string
	// Vegetarian widens the accepted tag set with Vegan/Veggie.
	Vegetarian bool
	// Region, when set, is added to the accepted tag set. It is not a hard
	// equality filter.
	Region string
	// Limit truncates the pool after exclusion filtering.
	Limit int
}

// RecipeService reads the recipe catalog. The catalog is immutable to the
// planning core.
type RecipeService struct {
	db *gorm.DB
}

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(db *gorm.DB) *RecipeService {
	return &RecipeService{db: db}
}

// PickCandidates queries recipes matching the constraint set, ranked by
// likes descending with createdAt descending as the tie-break.
func (s *RecipeService) PickCandidates(ctx context.Context, q CandidateQuery) ([]models.Recipe, error) {
	accepted := append([]string{}, q.MustTags...)
	if q.Vegetarian {
		accepted = append(accepted, "Vegan", "Veggie")
	}
	if q.Region != "" {
		accepted = append(accepted, q.Region)
	}

	dbQuery := s.db.WithContext(ctx).Model(&models.Recipe{})
	if len(accepted) > 0 {
		tagColumn := "LOWER(tags)"
		if s.db.Dialector.Name() == "postgres" {
			tagColumn = "LOWER(tags::text)"
		}
		cond := s.db.Where(tagColumn+" LIKE ?", tagPattern(accepted[0]))
		for _, tag := range accepted[1:] {
			cond = cond.Or(tagColumn+" LIKE ?", tagPattern(tag))
		}
		dbQuery = dbQuery.Where(cond)
	}

	var recipes []models.Recipe
	if err := dbQuery.
		Order("likes DESC").
		Order("created_at DESC").
		Limit(candidateScanLimit).
		Find(&recipes).Error; err != nil {
		return nil, err
	}

	filtered := recipes[:0]
	for _, r := range recipes {
		if titleMatchesAny(r.Title, q.AvoidNames) {
			continue
		}
		filtered = append(filtered, r)
	}

	if q.Limit > 0 && len(filtered) > q.Limit {
		filtered = filtered[:q.Limit]
	}
	return filtered, nil
}

// FindByIDs loads the given recipes, preserving the input order and
// silently skipping ids that are not in the catalog.
func (s *RecipeService) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Recipe, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var recipes []models.Recipe
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&recipes).Error; err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]models.Recipe, len(recipes))
	for _, r := range recipes {
		byID[r.ID] = r
	}
	ordered := make([]models.Recipe, 0, len(ids))
	for _, id := range ids {
		if r, ok := byID[id]; ok {
			ordered = append(ordered, r)
		}
	}
	return ordered, nil
}

// CountByIDs counts how many of the given distinct ids exist in the catalog.
func (s *RecipeService) CountByIDs(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Recipe{}).
		Where("id IN ?", ids).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// tagPattern matches the quoted tag inside the stored JSON array text.
func tagPattern(tag string) string {
	return `%"` + strings.ToLower(tag) + `"%`
}

func titleMatchesAny(title string, names []string) bool {
	lower := strings.ToLower(title)
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(name)) {
			return true
		}
	}
	return false
}
