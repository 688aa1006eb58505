package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ecoquest/gamification-api/internal/models"
)

// BadgeRepository manages persistence for the badge catalog.
type BadgeRepository struct {
	db *sqlx.DB
}

// NewBadgeRepository constructs a BadgeRepository.
func NewBadgeRepository(db *sqlx.DB) *BadgeRepository {
	return &BadgeRepository{db: db}
}

const badgeColumns = `id, name, description, icon, category, rarity, points_required, active, requirements, metadata, created_at, updated_at`

// List returns active catalog badges matching the provided filters,
// cheapest threshold first.
func (r *BadgeRepository) List(ctx context.Context, filter models.BadgeFilter) ([]models.Badge, error) {
	query := fmt.Sprintf(`SELECT %s FROM badges WHERE active = true`, badgeColumns)
	var args []interface{}

	if filter.Category != "" {
		query += fmt.Sprintf(" AND category = $%d", len(args)+1)
		args = append(args, filter.Category)
	}
	if filter.Rarity != "" {
		query += fmt.Sprintf(" AND rarity = $%d", len(args)+1)
		args = append(args, filter.Rarity)
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	query += fmt.Sprintf(" ORDER BY points_required ASC LIMIT %d", limit)

	badges := []models.Badge{}
	if err := r.db.SelectContext(ctx, &badges, query, args...); err != nil {
		return nil, fmt.Errorf("list badges: %w", err)
	}
	return badges, nil
}

// FindByID fetches a catalog badge by ID regardless of active state.
func (r *BadgeRepository) FindByID(ctx context.Context, id string) (*models.Badge, error) {
	query := fmt.Sprintf(`SELECT %s FROM badges WHERE id = $1 LIMIT 1`, badgeColumns)
	var badge models.Badge
	if err := r.db.GetContext(ctx, &badge, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find badge by id: %w", err)
	}
	return &badge, nil
}

// FindActiveByName fetches an active catalog badge by its unique name.
func (r *BadgeRepository) FindActiveByName(ctx context.Context, name string) (*models.Badge, error) {
	query := fmt.Sprintf(`SELECT %s FROM badges WHERE name = $1 AND active = true LIMIT 1`, badgeColumns)
	var badge models.Badge
	if err := r.db.GetContext(ctx, &badge, query, name); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find badge by name: %w", err)
	}
	return &badge, nil
}

// FindActiveInRange returns active badges whose threshold lies in the
// half-open interval (minExclusive, maxInclusive], cheapest first.
func (r *BadgeRepository) FindActiveInRange(ctx context.Context, minExclusive, maxInclusive int) ([]models.Badge, error) {
	query := fmt.Sprintf(`SELECT %s FROM badges
        WHERE active = true AND points_required > $1 AND points_required <= $2
        ORDER BY points_required ASC`, badgeColumns)
	badges := []models.Badge{}
	if err := r.db.SelectContext(ctx, &badges, query, minExclusive, maxInclusive); err != nil {
		return nil, fmt.Errorf("find badges in range: %w", err)
	}
	return badges, nil
}

// FindAvailableForPoints returns active badges already reachable at the
// given total, highest threshold first.
func (r *BadgeRepository) FindAvailableForPoints(ctx context.Context, points int) ([]models.Badge, error) {
	query := fmt.Sprintf(`SELECT %s FROM badges
        WHERE active = true AND points_required <= $1
        ORDER BY points_required DESC`, badgeColumns)
	badges := []models.Badge{}
	if err := r.db.SelectContext(ctx, &badges, query, points); err != nil {
		return nil, fmt.Errorf("find available badges: %w", err)
	}
	return badges, nil
}

// FindNextThresholds returns the active badges with the smallest
// thresholds strictly above the given total.
func (r *BadgeRepository) FindNextThresholds(ctx context.Context, points, limit int) ([]models.Badge, error) {
	if limit <= 0 {
		limit = 5
	}
	query := fmt.Sprintf(`SELECT %s FROM badges
        WHERE active = true AND points_required > $1
        ORDER BY points_required ASC LIMIT %d`, badgeColumns, limit)
	badges := []models.Badge{}
	if err := r.db.SelectContext(ctx, &badges, query, points); err != nil {
		return nil, fmt.Errorf("find next badges: %w", err)
	}
	return badges, nil
}

// ExistsByName checks if a catalog badge with the given name exists,
// optionally excluding an ID.
func (r *BadgeRepository) ExistsByName(ctx context.Context, name string, excludeID string) (bool, error) {
	query := "SELECT 1 FROM badges WHERE name = $1"
	args := []interface{}{name}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check badge name: %w", err)
	}
	return true, nil
}

// Create inserts a new catalog badge.
func (r *BadgeRepository) Create(ctx context.Context, badge *models.Badge) error {
	if badge.ID == "" {
		badge.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if badge.CreatedAt.IsZero() {
		badge.CreatedAt = now
	}
	badge.UpdatedAt = now
	const query = `INSERT INTO badges (id, name, description, icon, category, rarity, points_required, active, requirements, metadata, created_at, updated_at)
        VALUES (:id, :name, :description, :icon, :category, :rarity, :points_required, :active, :requirements, :metadata, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, badge); err != nil {
		return fmt.Errorf("create badge: %w", err)
	}
	return nil
}

// Update modifies an existing catalog badge.
func (r *BadgeRepository) Update(ctx context.Context, badge *models.Badge) error {
	badge.UpdatedAt = time.Now().UTC()
	const query = `UPDATE badges SET name = :name, description = :description, icon = :icon, category = :category,
        rarity = :rarity, points_required = :points_required, active = :active,
        requirements = :requirements, metadata = :metadata, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, badge); err != nil {
		return fmt.Errorf("update badge: %w", err)
	}
	return nil
}

// Deactivate soft-deletes a catalog badge so it is never granted again.
func (r *BadgeRepository) Deactivate(ctx context.Context, id string) error {
	const query = `UPDATE badges SET active = false, updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("deactivate badge: %w", err)
	}
	return nil
}
