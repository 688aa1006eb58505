package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/ecoquest/gamification-api/internal/models"
	appErrors "github.com/ecoquest/gamification-api/pkg/errors"
)

type leaderboardUserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	CountActive(ctx context.Context, filter models.RankQuery, morePointsThan *int) (int, error)
	Leaderboard(ctx context.Context, query models.LeaderboardQuery, activeSince *time.Time) ([]models.LeaderboardEntry, error)
}

// LeaderboardServiceConfig tunes ranking queries and cache behaviour.
type LeaderboardServiceConfig struct {
	CacheTTL     time.Duration
	DefaultLimit int
	MaxLimit     int
}

// LeaderboardService computes points-descending rankings over the active
// user population. Ranks are always derived from live data; Redis only
// shortcuts repeated identical queries.
type LeaderboardService struct {
	repo   leaderboardUserRepository
	cache  *CacheService
	logger *zap.Logger
	now    func() time.Time
	cfg    LeaderboardServiceConfig
}

// NewLeaderboardService constructs a LeaderboardService.
func NewLeaderboardService(repo leaderboardUserRepository, cache *CacheService, logger *zap.Logger, cfg LeaderboardServiceConfig) *LeaderboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = 50
	}
	if cfg.MaxLimit <= 0 {
		cfg.MaxLimit = 100
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 2 * time.Minute
	}
	return &LeaderboardService{repo: repo, cache: cache, logger: logger, now: time.Now, cfg: cfg}
}

// Leaderboard returns the ranked, filtered population. The boolean
// reports whether the payload came from cache.
func (s *LeaderboardService) Leaderboard(ctx context.Context, query models.LeaderboardQuery) ([]models.LeaderboardEntry, bool, error) {
	if query.Limit == 0 {
		query.Limit = s.cfg.DefaultLimit
	}
	if query.Limit < 1 || query.Limit > s.cfg.MaxLimit {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("limit must be between 1 and %d", s.cfg.MaxLimit))
	}
	if query.Role != "" && !models.ValidRole(query.Role) {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "invalid role specified")
	}
	if query.Timeframe == "" {
		query.Timeframe = models.TimeframeAll
	}
	if !models.ValidTimeframe(string(query.Timeframe)) {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "invalid timeframe specified")
	}

	cacheKey := fmt.Sprintf("leaderboard:%s:%s:%s:%d", query.Role, query.School, query.Timeframe, query.Limit)
	cached := []models.LeaderboardEntry{}
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		return cached, true, nil
	}

	entries, err := s.repo.Leaderboard(ctx, query, s.activeSince(query.Timeframe))
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to query leaderboard")
	}
	for i := range entries {
		entries[i].Rank = i + 1
		entries[i].Level = entries[i].Points/100 + 1
	}

	if err := s.cache.Set(ctx, cacheKey, entries, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("failed to cache leaderboard", zap.String("key", cacheKey), zap.Error(err))
	}

	return entries, false, nil
}

// UserRank derives a user's position by counting active users with
// strictly more points inside the same filtered population.
func (s *LeaderboardService) UserRank(ctx context.Context, userID string, query models.RankQuery) (*models.UserRank, error) {
	if query.Role != "" && !models.ValidRole(query.Role) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid role specified")
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}

	ahead, err := s.repo.CountActive(ctx, query, &user.Points)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count ranked users")
	}
	total, err := s.repo.CountActive(ctx, query, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count population")
	}

	current := ahead + 1
	percentile := 0
	if total > 0 {
		percentile = int(math.Round(float64(total-current+1) / float64(total) * 100))
	}

	return &models.UserRank{
		Current:    current,
		Total:      total,
		Percentile: percentile,
		Points:     user.Points,
		Level:      user.Level(),
	}, nil
}

func (s *LeaderboardService) activeSince(timeframe models.Timeframe) *time.Time {
	var window time.Duration
	switch timeframe {
	case models.TimeframeWeek:
		window = 7 * 24 * time.Hour
	case models.TimeframeMonth:
		window = 30 * 24 * time.Hour
	default:
		return nil
	}
	since := s.now().UTC().Add(-window)
	return &since
}
