package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ecoquest/gamification-api/internal/models"
	appErrors "github.com/ecoquest/gamification-api/pkg/errors"
)

type mockLeaderboardRepo struct {
	user       *models.User
	entries    []models.LeaderboardEntry
	calls      int
	lastQuery  models.LeaderboardQuery
	lastSince  *time.Time
	countAll   int
	countAhead int
}

func (m *mockLeaderboardRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if m.user == nil || m.user.ID != id {
		return nil, sql.ErrNoRows
	}
	copied := *m.user
	return &copied, nil
}

func (m *mockLeaderboardRepo) CountActive(ctx context.Context, filter models.RankQuery, morePointsThan *int) (int, error) {
	if morePointsThan != nil {
		return m.countAhead, nil
	}
	return m.countAll, nil
}

func (m *mockLeaderboardRepo) Leaderboard(ctx context.Context, query models.LeaderboardQuery, activeSince *time.Time) ([]models.LeaderboardEntry, error) {
	m.calls++
	m.lastQuery = query
	m.lastSince = activeSince
	return m.entries, nil
}

type memoryCacheRepo struct {
	store map[string][]byte
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{store: map[string][]byte{}}
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.store[key] = raw
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	m.store = map[string][]byte{}
	return nil
}

func newTestLeaderboardService(repo *mockLeaderboardRepo, cacheRepo CacheRepository) *LeaderboardService {
	enabled := cacheRepo != nil
	cache := NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop(), enabled)
	return NewLeaderboardService(repo, cache, zap.NewNop(), LeaderboardServiceConfig{})
}

func TestLeaderboardAssignsRanksAndLevels(t *testing.T) {
	repo := &mockLeaderboardRepo{entries: []models.LeaderboardEntry{
		{UserID: "u3", Name: "Citra", Points: 500, Role: models.RoleStudent},
		{UserID: "u1", Name: "Andi", Points: 300, Role: models.RoleStudent},
	}}
	svc := newTestLeaderboardService(repo, nil)

	entries, cacheHit, err := svc.Leaderboard(context.Background(), models.LeaderboardQuery{Role: "student", Limit: 2})
	require.NoError(t, err)
	assert.False(t, cacheHit)
	require.Len(t, entries, 2)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, 500, entries[0].Points)
	assert.Equal(t, 6, entries[0].Level)
	assert.Equal(t, 2, entries[1].Rank)
	assert.Equal(t, 300, entries[1].Points)
	assert.Equal(t, 4, entries[1].Level)
}

func TestLeaderboardAppliesDefaultLimit(t *testing.T) {
	repo := &mockLeaderboardRepo{}
	svc := newTestLeaderboardService(repo, nil)

	_, _, err := svc.Leaderboard(context.Background(), models.LeaderboardQuery{})
	require.NoError(t, err)
	assert.Equal(t, 50, repo.lastQuery.Limit)
}

func TestLeaderboardRejectsOversizedLimit(t *testing.T) {
	svc := newTestLeaderboardService(&mockLeaderboardRepo{}, nil)

	_, _, err := svc.Leaderboard(context.Background(), models.LeaderboardQuery{Limit: 101})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestLeaderboardRejectsUnknownRole(t *testing.T) {
	svc := newTestLeaderboardService(&mockLeaderboardRepo{}, nil)

	_, _, err := svc.Leaderboard(context.Background(), models.LeaderboardQuery{Role: "wizard"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestLeaderboardRejectsUnknownTimeframe(t *testing.T) {
	svc := newTestLeaderboardService(&mockLeaderboardRepo{}, nil)

	_, _, err := svc.Leaderboard(context.Background(), models.LeaderboardQuery{Timeframe: "year"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestLeaderboardServesRepeatQueryFromCache(t *testing.T) {
	repo := &mockLeaderboardRepo{entries: []models.LeaderboardEntry{
		{UserID: "u1", Name: "Andi", Points: 300},
	}}
	svc := newTestLeaderboardService(repo, newMemoryCacheRepo())

	_, cacheHit, err := svc.Leaderboard(context.Background(), models.LeaderboardQuery{Limit: 10})
	require.NoError(t, err)
	assert.False(t, cacheHit)

	entries, cacheHit, err := svc.Leaderboard(context.Background(), models.LeaderboardQuery{Limit: 10})
	require.NoError(t, err)
	assert.True(t, cacheHit)
	assert.Equal(t, 1, repo.calls)
	require.Len(t, entries, 1)
	assert.Equal(t, 1, entries[0].Rank)
}

func TestLeaderboardWeekTimeframeScopesActivity(t *testing.T) {
	repo := &mockLeaderboardRepo{}
	svc := newTestLeaderboardService(repo, nil)
	svc.now = func() time.Time { return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC) }

	_, _, err := svc.Leaderboard(context.Background(), models.LeaderboardQuery{Timeframe: models.TimeframeWeek})
	require.NoError(t, err)
	require.NotNil(t, repo.lastSince)
	assert.Equal(t, time.Date(2026, 3, 3, 12, 0, 0, 0, time.UTC), *repo.lastSince)
}

func TestLeaderboardAllTimeframeHasNoWindow(t *testing.T) {
	repo := &mockLeaderboardRepo{}
	svc := newTestLeaderboardService(repo, nil)

	_, _, err := svc.Leaderboard(context.Background(), models.LeaderboardQuery{Timeframe: models.TimeframeAll})
	require.NoError(t, err)
	assert.Nil(t, repo.lastSince)
}

func TestUserRankComputesPercentile(t *testing.T) {
	repo := &mockLeaderboardRepo{
		user:       &models.User{ID: "u1", Points: 320, Active: true},
		countAll:   20,
		countAhead: 4,
	}
	svc := newTestLeaderboardService(repo, nil)

	rank, err := svc.UserRank(context.Background(), "u1", models.RankQuery{})
	require.NoError(t, err)
	assert.Equal(t, 5, rank.Current)
	assert.Equal(t, 20, rank.Total)
	assert.Equal(t, 80, rank.Percentile)
	assert.Equal(t, 320, rank.Points)
	assert.Equal(t, 4, rank.Level)
}

func TestUserRankTopOfEmptyPopulation(t *testing.T) {
	repo := &mockLeaderboardRepo{
		user: &models.User{ID: "u1", Points: 10, Active: true},
	}
	svc := newTestLeaderboardService(repo, nil)

	rank, err := svc.UserRank(context.Background(), "u1", models.RankQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, rank.Current)
	assert.Equal(t, 0, rank.Total)
	assert.Equal(t, 0, rank.Percentile)
}

func TestUserRankUnknownUser(t *testing.T) {
	svc := newTestLeaderboardService(&mockLeaderboardRepo{}, nil)

	_, err := svc.UserRank(context.Background(), "missing", models.RankQuery{})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestUserRankRejectsUnknownRole(t *testing.T) {
	svc := newTestLeaderboardService(&mockLeaderboardRepo{}, nil)

	_, err := svc.UserRank(context.Background(), "u1", models.RankQuery{Role: "wizard"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}
