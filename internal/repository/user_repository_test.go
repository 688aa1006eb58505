package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecoquest/gamification-api/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

func userRows(id string, points int) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "email", "password_hash", "name", "role", "school", "grade", "points", "active", "last_login", "created_at", "updated_at"}).
		AddRow(id, "user@example.com", "hash", "Andi", string(models.RoleStudent), "SMA 1", "10", points, true, now, now, now)
}

func TestUserFindByID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, email, password_hash, name, role, school, grade, points, active, last_login, created_at, updated_at FROM users WHERE id = $1 LIMIT 1")).
		WithArgs("u1").
		WillReturnRows(userRows("u1", 120))

	user, err := repo.FindByID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, 120, user.Points)
	assert.Equal(t, 2, user.Level())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserFindByEmailLowercasesInput(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery("SELECT .+ FROM users WHERE email = \\$1 LIMIT 1").
		WithArgs("user@example.com").
		WillReturnRows(userRows("u1", 0))

	user, err := repo.FindByEmail(context.Background(), "User@Example.COM")
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", user.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIncrementPointsReturnsPersistedTotal(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE users SET points = points + $2, updated_at = $3 WHERE id = $1 RETURNING id, email, password_hash, name, role, school, grade, points, active, last_login, created_at, updated_at")).
		WithArgs("u1", 10, sqlmock.AnyArg()).
		WillReturnRows(userRows("u1", 55))

	user, err := repo.IncrementPoints(context.Background(), "u1", 10)
	require.NoError(t, err)
	assert.Equal(t, 55, user.Points)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppendBadgeInsertsSnapshot(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec("INSERT INTO user_badges").WillReturnResult(sqlmock.NewResult(0, 1))

	badge := &models.EarnedBadge{UserID: "u1", Name: "Eco Starter", Category: models.CategoryMilestone, EarnedAt: time.Now()}
	inserted, err := repo.AppendBadge(context.Background(), badge)
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.NotEmpty(t, badge.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppendBadgeConflictIsNoop(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec("INSERT INTO user_badges").WillReturnResult(sqlmock.NewResult(0, 0))

	inserted, err := repo.AppendBadge(context.Background(), &models.EarnedBadge{UserID: "u1", Name: "Eco Starter"})
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListBadgesOrdersByGrantTime(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "user_id", "name", "description", "icon", "category", "earned_at"}).
		AddRow("eb1", "u1", "First Steps", "desc", "icon", string(models.CategoryParticipation), now.Add(-time.Hour)).
		AddRow("eb2", "u1", "Eco Starter", "desc", "icon", string(models.CategoryMilestone), now)
	mock.ExpectQuery("SELECT .+ FROM user_badges WHERE user_id = \\$1 ORDER BY earned_at ASC").
		WithArgs("u1").
		WillReturnRows(rows)

	badges, err := repo.ListBadges(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, badges, 2)
	assert.Equal(t, "First Steps", badges[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountActiveAppliesFilters(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	threshold := 320
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM users WHERE active = true AND role = $1 AND school = $2 AND points > $3")).
		WithArgs("student", "SMA 1", 320).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	total, err := repo.CountActive(context.Background(), models.RankQuery{Role: "student", School: "SMA 1"}, &threshold)
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeaderboardOrdersAndLimits(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "role", "points", "school", "grade", "badge_count"}).
		AddRow("u3", "Citra", string(models.RoleStudent), 500, "SMA 1", "11", 3).
		AddRow("u1", "Andi", string(models.RoleStudent), 300, "SMA 1", "10", 1)
	mock.ExpectQuery("AND u.role = \\$1 GROUP BY u.id ORDER BY u.points DESC, u.id ASC LIMIT 2").
		WithArgs("student").
		WillReturnRows(rows)

	entries, err := repo.Leaderboard(context.Background(), models.LeaderboardQuery{Role: "student", Limit: 2}, nil)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 500, entries[0].Points)
	assert.Equal(t, 3, entries[0].BadgeCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeaderboardScopesRecentActivity(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	since := time.Now().Add(-7 * 24 * time.Hour)
	mock.ExpectQuery("u.last_login >= \\$1 GROUP BY u.id ORDER BY u.points DESC, u.id ASC LIMIT 50").
		WithArgs(since).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "role", "points", "school", "grade", "badge_count"}))

	entries, err := repo.Leaderboard(context.Background(), models.LeaderboardQuery{}, &since)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.NoError(t, mock.ExpectationsWereMet())
}
