package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ecoquest/gamification-api/internal/models"
)

// UserRepository provides database access for user progress records.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, email, password_hash, name, role, school, grade, points, active, last_login, created_at, updated_at`

// FindByID returns a user by identifier.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1 LIMIT 1`, userColumns)
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &user, nil
}

// FindByEmail returns a user by email address.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE email = $1 LIMIT 1`, userColumns)
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, strings.ToLower(email)); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &user, nil
}

// IncrementPoints applies the delta as a single atomic update and returns
// the persisted record. Concurrent increments never lose updates because
// the addition happens inside the statement, not client-side.
func (r *UserRepository) IncrementPoints(ctx context.Context, id string, delta int) (*models.User, error) {
	query := fmt.Sprintf(`UPDATE users SET points = points + $2, updated_at = $3 WHERE id = $1 RETURNING %s`, userColumns)
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id, delta, time.Now().UTC()); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("increment points: %w", err)
	}
	return &user, nil
}

// UpdateLastLogin updates the last_login timestamp for a user.
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	const query = `UPDATE users SET last_login = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, ts, ts); err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}

// AppendBadge records an earned badge snapshot. The unique constraint on
// (user_id, name) makes the append idempotent; the boolean reports whether
// a row was actually inserted.
func (r *UserRepository) AppendBadge(ctx context.Context, badge *models.EarnedBadge) (bool, error) {
	if badge.ID == "" {
		badge.ID = uuid.NewString()
	}
	const query = `INSERT INTO user_badges (id, user_id, name, description, icon, category, earned_at)
        VALUES (:id, :user_id, :name, :description, :icon, :category, :earned_at)
        ON CONFLICT (user_id, name) DO NOTHING`
	result, err := r.db.NamedExecContext(ctx, query, badge)
	if err != nil {
		return false, fmt.Errorf("append badge: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("append badge rows affected: %w", err)
	}
	return affected > 0, nil
}

// ListBadges returns the earned badge snapshots for a user in grant order.
func (r *UserRepository) ListBadges(ctx context.Context, userID string) ([]models.EarnedBadge, error) {
	const query = `SELECT id, user_id, name, description, icon, category, earned_at
        FROM user_badges WHERE user_id = $1 ORDER BY earned_at ASC, name ASC`
	badges := []models.EarnedBadge{}
	if err := r.db.SelectContext(ctx, &badges, query, userID); err != nil {
		return nil, fmt.Errorf("list user badges: %w", err)
	}
	return badges, nil
}

// CountActive counts active users in the filtered population. When
// morePointsThan is non-nil only users strictly above that total count.
func (r *UserRepository) CountActive(ctx context.Context, filter models.RankQuery, morePointsThan *int) (int, error) {
	query := `SELECT COUNT(*) FROM users WHERE active = true`
	var args []interface{}

	if filter.Role != "" {
		query += fmt.Sprintf(" AND role = $%d", len(args)+1)
		args = append(args, filter.Role)
	}
	if filter.School != "" {
		query += fmt.Sprintf(" AND school = $%d", len(args)+1)
		args = append(args, filter.School)
	}
	if morePointsThan != nil {
		query += fmt.Sprintf(" AND points > $%d", len(args)+1)
		args = append(args, *morePointsThan)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, query, args...); err != nil {
		return 0, fmt.Errorf("count active users: %w", err)
	}
	return total, nil
}

// Leaderboard returns ranked active users ordered by points descending
// with the user id as a deterministic tie-break. The rank field is left
// for the caller to assign from position.
func (r *UserRepository) Leaderboard(ctx context.Context, query models.LeaderboardQuery, activeSince *time.Time) ([]models.LeaderboardEntry, error) {
	base := `SELECT u.id, u.name, u.role, u.points, u.school, u.grade, COUNT(b.id) AS badge_count
        FROM users u
        LEFT JOIN user_badges b ON b.user_id = u.id
        WHERE u.active = true`
	var args []interface{}

	if query.Role != "" {
		base += fmt.Sprintf(" AND u.role = $%d", len(args)+1)
		args = append(args, query.Role)
	}
	if query.School != "" {
		base += fmt.Sprintf(" AND u.school = $%d", len(args)+1)
		args = append(args, query.School)
	}
	if activeSince != nil {
		base += fmt.Sprintf(" AND u.last_login >= $%d", len(args)+1)
		args = append(args, *activeSince)
	}

	limit := query.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	base += fmt.Sprintf(" GROUP BY u.id ORDER BY u.points DESC, u.id ASC LIMIT %d", limit)

	entries := []models.LeaderboardEntry{}
	if err := r.db.SelectContext(ctx, &entries, base, args...); err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	return entries, nil
}
