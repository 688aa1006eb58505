package repository

import (
	"context"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecoquest/gamification-api/internal/models"
)

func badgeRows(rows ...[]driverValue) *sqlmock.Rows {
	result := sqlmock.NewRows([]string{"id", "name", "description", "icon", "category", "rarity", "points_required", "active", "requirements", "metadata", "created_at", "updated_at"})
	for _, row := range rows {
		result.AddRow(row...)
	}
	return result
}

type driverValue = driver.Value

func badgeRow(id, name string, points int) []driverValue {
	now := time.Now()
	return []driverValue{id, name, "desc", "icon", string(models.CategoryMilestone), string(models.RarityCommon), points, true, []byte(`{}`), []byte(`{}`), now, now}
}

func TestBadgeListFiltersByCategory(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewBadgeRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, description, icon, category, rarity, points_required, active, requirements, metadata, created_at, updated_at FROM badges WHERE active = true AND category = $1 ORDER BY points_required ASC LIMIT 50")).
		WithArgs("milestone").
		WillReturnRows(badgeRows(badgeRow("b50", "Eco Starter", 50)))

	badges, err := repo.List(context.Background(), models.BadgeFilter{Category: "milestone"})
	require.NoError(t, err)
	require.Len(t, badges, 1)
	assert.Equal(t, "Eco Starter", badges[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBadgeFindActiveInRange(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewBadgeRepository(db)

	mock.ExpectQuery("points_required > \\$1 AND points_required <= \\$2").
		WithArgs(45, 55).
		WillReturnRows(badgeRows(badgeRow("b50", "Eco Starter", 50)))

	badges, err := repo.FindActiveInRange(context.Background(), 45, 55)
	require.NoError(t, err)
	require.Len(t, badges, 1)
	assert.Equal(t, 50, badges[0].PointsRequired)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBadgeFindNextThresholdsDefaultsLimit(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewBadgeRepository(db)

	mock.ExpectQuery("points_required > \\$1\\s+ORDER BY points_required ASC LIMIT 5").
		WithArgs(120).
		WillReturnRows(badgeRows(badgeRow("b250", "Eco Champion", 250)))

	badges, err := repo.FindNextThresholds(context.Background(), 120, 0)
	require.NoError(t, err)
	require.Len(t, badges, 1)
	assert.Equal(t, "Eco Champion", badges[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBadgeExistsByNameExcludesID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewBadgeRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM badges WHERE name = $1 AND id <> $2 LIMIT 1")).
		WithArgs("Eco Starter", "b50").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

	exists, err := repo.ExistsByName(context.Background(), "Eco Starter", "b50")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBadgeCreateGeneratesID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewBadgeRepository(db)

	mock.ExpectExec("INSERT INTO badges").WillReturnResult(sqlmock.NewResult(0, 1))

	badge := &models.Badge{Name: "Tree Planter", Category: models.CategoryEnvironmental, Rarity: models.RarityCommon, PointsRequired: 150, Active: true}
	err := repo.Create(context.Background(), badge)
	require.NoError(t, err)
	assert.NotEmpty(t, badge.ID)
	assert.False(t, badge.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBadgeDeactivate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewBadgeRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE badges SET active = false, updated_at = $2 WHERE id = $1")).
		WithArgs("b50", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Deactivate(context.Background(), "b50")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
