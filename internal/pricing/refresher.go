package pricing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/thucdon/backend/internal/models"
)

const (
	defaultLookupTimeout = 20 * time.Second
	defaultLookupDelay   = 500 * time.Millisecond
)

// RefreshResult reports what a batch refresh did: Updated ingredients got a
// new price, Stamped ingredients were checked but no price was found.
type RefreshResult struct {
	Updated int `json:"updated"`
	Stamped int `json:"stamped"`
}

// Refresher walks the ingredient price cache and re-verifies prices against
// an ordered chain of external sources. It backs both the daily batch job
// and the on-demand calendar-day throttle used by shopping lists.
type Refresher struct {
	db      *gorm.DB
	sources []PriceSource
	logger  *zap.Logger
	delay   time.Duration
	timeout time.Duration
	now     func() time.Time
}

// RefresherOption customizes a Refresher.
type RefresherOption func(*Refresher)

// WithLookupDelay sets the politeness delay between external lookups.
func WithLookupDelay(d time.Duration) RefresherOption {
	return func(r *Refresher) { r.delay = d }
}

// WithLookupTimeout bounds each individual external lookup.
func WithLookupTimeout(d time.Duration) RefresherOption {
	return func(r *Refresher) { r.timeout = d }
}

// WithClock overrides the clock, for tests.
func WithClock(now func() time.Time) RefresherOption {
	return func(r *Refresher) { r.now = now }
}

// NewRefresher creates a Refresher over the given source chain. Sources are
// tried in order until one yields a normalizable price.
func NewRefresher(db *gorm.DB, sources []PriceSource, logger *zap.Logger, opts ...RefresherOption) *Refresher {
	r := &Refresher{
		db:      db,
		sources: sources,
		logger:  logger,
		delay:   defaultLookupDelay,
		timeout: defaultLookupTimeout,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RefreshAll re-verifies the price of every ingredient. Misses still stamp
// the freshness timestamps so on-demand callers do not retry the ingredient
// within the same day, but never touch the stored price. A failing source
// for one ingredient does not abort the rest of the batch.
func (r *Refresher) RefreshAll(ctx context.Context) (RefreshResult, error) {
	var ingredients []models.Ingredient
	if err := r.db.WithContext(ctx).Find(&ingredients).Error; err != nil {
		return RefreshResult{}, fmt.Errorf("failed to load ingredients: %w", err)
	}

	var res RefreshResult
	for i, ing := range ingredients {
		if i > 0 {
			if err := r.pause(ctx); err != nil {
				return res, err
			}
		}

		np, err := r.lookup(ctx, ing.Name, ing.Unit)
		if err != nil {
			r.logger.Warn("price lookup failed, treating as miss",
				zap.String("ingredient", ing.Name),
				zap.Error(err))
		}

		now := r.now()
		if np != nil {
			updates := map[string]interface{}{
				"price_per_unit":   np.PricePerUnit,
				"price_currency":   np.Currency,
				"price_updated_at": now,
				"last_checked_at":  now,
			}
			if err := r.db.WithContext(ctx).Model(&models.Ingredient{}).
				Where("id = ?", ing.ID).Updates(updates).Error; err != nil {
				r.logger.Error("failed to store refreshed price",
					zap.String("ingredient", ing.Name), zap.Error(err))
				continue
			}
			res.Updated++
			continue
		}

		// Miss: stamp freshness, leave the existing price untouched.
		updates := map[string]interface{}{
			"price_updated_at": now,
			"last_checked_at":  now,
		}
		if err := r.db.WithContext(ctx).Model(&models.Ingredient{}).
			Where("id = ?", ing.ID).Updates(updates).Error; err != nil {
			r.logger.Error("failed to stamp ingredient",
				zap.String("ingredient", ing.Name), zap.Error(err))
			continue
		}
		res.Stamped++
	}

	r.logger.Info("price refresh finished",
		zap.Int("updated", res.Updated),
		zap.Int("stamped", res.Stamped),
		zap.Int("total", len(ingredients)))
	return res, nil
}

// EnsureFresh refreshes, from the given ids, only the ingredients that have
// not been checked since the start of the current calendar day. At most one
// external lookup per ingredient per day. Unlike the daily batch, a miss or
// failure here stamps nothing, so a later call can retry instead of being
// suppressed for the rest of the day.
func (r *Refresher) EnsureFresh(ctx context.Context, ingredientIDs []uuid.UUID) error {
	if len(ingredientIDs) == 0 {
		return nil
	}

	dayStart := startOfDay(r.now())
	var pending []models.Ingredient
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ingredientIDs).
		Where("last_checked_at IS NULL OR last_checked_at < ?", dayStart).
		Find(&pending).Error; err != nil {
		return fmt.Errorf("failed to load pending ingredients: %w", err)
	}

	for i, ing := range pending {
		if i > 0 {
			if err := r.pause(ctx); err != nil {
				return err
			}
		}

		np, err := r.lookup(ctx, ing.Name, ing.Unit)
		if err != nil {
			// Abandon the whole call: prices stay as-is and a later
			// call can retry once the source recovers.
			return fmt.Errorf("price source unavailable: %w", err)
		}
		if np == nil {
			continue
		}

		now := r.now()
		updates := map[string]interface{}{
			"price_per_unit":   np.PricePerUnit,
			"price_currency":   np.Currency,
			"price_updated_at": now,
			"last_checked_at":  now,
		}
		if err := r.db.WithContext(ctx).Model(&models.Ingredient{}).
			Where("id = ?", ing.ID).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to store refreshed price: %w", err)
		}
	}
	return nil
}

// lookup walks the source chain until one produces a normalizable price.
// Returns (nil, nil) when at least one source answered but no usable price
// was found, and an error only when every attempted source failed.
func (r *Refresher) lookup(ctx context.Context, name, unit string) (*NormalizedPrice, error) {
	var lastErr error
	answered := false
	for _, src := range r.sources {
		lctx, cancel := context.WithTimeout(ctx, r.timeout)
		raw, err := src.FetchRaw(lctx, name, unit)
		cancel()
		if err != nil {
			lastErr = err
			r.logger.Warn("price source failed",
				zap.String("source", src.Name()),
				zap.String("ingredient", name),
				zap.Error(err))
			continue
		}
		answered = true
		if raw == nil {
			continue
		}
		declared := raw.Unit
		if declared == "" {
			declared = unit
		}
		if np := Normalize(raw.Text, declared); np != nil {
			return np, nil
		}
	}
	if answered || lastErr == nil {
		return nil, nil
	}
	return nil, lastErr
}

func (r *Refresher) pause(ctx context.Context) error {
	if r.delay <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(r.delay):
		return nil
	}
}

// startOfDay is the throttle window boundary: local midnight of t's day.
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
