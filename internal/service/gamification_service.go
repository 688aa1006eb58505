package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ecoquest/gamification-api/internal/models"
	appErrors "github.com/ecoquest/gamification-api/pkg/errors"
)

const (
	grantPathTransition = "transition"
	grantPathManual     = "manual"

	leaderboardCachePattern = "leaderboard:*"
)

type gamificationUserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	IncrementPoints(ctx context.Context, id string, delta int) (*models.User, error)
	AppendBadge(ctx context.Context, badge *models.EarnedBadge) (bool, error)
	ListBadges(ctx context.Context, userID string) ([]models.EarnedBadge, error)
}

type gamificationBadgeRepository interface {
	FindActiveByName(ctx context.Context, name string) (*models.Badge, error)
	FindActiveInRange(ctx context.Context, minExclusive, maxInclusive int) ([]models.Badge, error)
	FindAvailableForPoints(ctx context.Context, points int) ([]models.Badge, error)
	FindNextThresholds(ctx context.Context, points, limit int) ([]models.Badge, error)
}

// AwardPointsRequest holds payload for awarding eco-points.
type AwardPointsRequest struct {
	UserID   string                 `json:"user_id" validate:"required"`
	Points   int                    `json:"points" validate:"required,gt=0"`
	Reason   string                 `json:"reason" validate:"max=200"`
	Metadata map[string]interface{} `json:"metadata"`
}

// UnlockBadgeRequest holds payload for the manual unlock path.
type UnlockBadgeRequest struct {
	UserID    string `json:"user_id" validate:"required"`
	BadgeName string `json:"badge_name" validate:"required"`
}

// GamificationServiceConfig bounds award sizes and hint lengths.
type GamificationServiceConfig struct {
	MaxPointsPerAward int
	NextBadgesLimit   int
}

// GamificationService implements point accrual and badge unlocking.
// Points are the source of truth: badge grants are derived from point
// transitions and are never allowed to roll an increment back.
type GamificationService struct {
	users     gamificationUserRepository
	badges    gamificationBadgeRepository
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
	cfg       GamificationServiceConfig
}

// NewGamificationService constructs the gamification service.
func NewGamificationService(users gamificationUserRepository, badges gamificationBadgeRepository, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg GamificationServiceConfig) *GamificationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxPointsPerAward <= 0 {
		cfg.MaxPointsPerAward = 1000
	}
	if cfg.NextBadgesLimit <= 0 {
		cfg.NextBadgesLimit = 5
	}
	return &GamificationService{
		users:     users,
		badges:    badges,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		now:       time.Now,
		cfg:       cfg,
	}
}

// AwardPoints applies the point delta atomically, then evaluates badge
// unlocks against the (before, after] transition the award produced.
func (s *GamificationService) AwardPoints(ctx context.Context, req AwardPointsRequest) (*models.AwardPointsResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid award payload")
	}
	if req.Points > s.cfg.MaxPointsPerAward {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("points must be between 1 and %d", s.cfg.MaxPointsPerAward))
	}

	user, err := s.users.FindByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	if !user.Active {
		return nil, appErrors.Clone(appErrors.ErrInactiveAccount, "user account is deactivated")
	}

	updated, err := s.users.IncrementPoints(ctx, req.UserID, req.Points)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to award points")
	}

	s.metrics.RecordPointsAwarded(req.Points)
	s.logger.Info("points awarded",
		zap.String("user_id", updated.ID),
		zap.Int("points", req.Points),
		zap.Int("total", updated.Points),
		zap.String("reason", req.Reason),
		zap.Any("metadata", req.Metadata),
	)

	// Evaluate against the total the store actually persisted, never a
	// locally computed value.
	before := updated.Points - req.Points
	unlocked, err := s.evaluateUnlocks(ctx, updated.ID, before, updated.Points)
	if err != nil {
		// The increment is already committed; badges can be recovered on
		// the next award or through the manual unlock path.
		s.logger.Error("badge evaluation failed after point award",
			zap.String("user_id", updated.ID), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "points awarded but badge evaluation failed")
	}

	s.invalidateLeaderboards(ctx)

	return &models.AwardPointsResult{
		PointsAwarded:  req.Points,
		TotalPoints:    updated.Points,
		Level:          updated.Level(),
		BadgesUnlocked: unlocked,
		Reason:         req.Reason,
	}, nil
}

// evaluateUnlocks grants every active catalog badge whose threshold lies
// in (before, after]. A first-ever award treats the lower bound as
// inclusive so zero-threshold badges stay reachable.
func (s *GamificationService) evaluateUnlocks(ctx context.Context, userID string, before, after int) ([]models.Badge, error) {
	lower := before
	if before == 0 {
		lower = -1
	}

	candidates, err := s.badges.FindActiveInRange(ctx, lower, after)
	if err != nil {
		return nil, fmt.Errorf("load candidate badges: %w", err)
	}
	if len(candidates) == 0 {
		return []models.Badge{}, nil
	}

	earned, err := s.users.ListBadges(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load earned badges: %w", err)
	}
	owned := make(map[string]struct{}, len(earned))
	for _, badge := range earned {
		owned[badge.Name] = struct{}{}
	}

	unlocked := []models.Badge{}
	for _, badge := range candidates {
		if _, ok := owned[badge.Name]; ok {
			continue
		}
		inserted, err := s.users.AppendBadge(ctx, s.snapshot(userID, &badge))
		if err != nil {
			return nil, fmt.Errorf("grant badge %s: %w", badge.Name, err)
		}
		if !inserted {
			// A concurrent evaluation won the append; the unique
			// constraint kept the grant idempotent.
			continue
		}
		unlocked = append(unlocked, badge)
		s.logger.Info("badge unlocked",
			zap.String("user_id", userID),
			zap.String("badge", badge.Name),
			zap.Int("points_required", badge.PointsRequired),
		)
	}

	s.metrics.RecordBadgesGranted(grantPathTransition, len(unlocked))
	return unlocked, nil
}

// UnlockBadge is the administrative override: it checks the user's
// current total against the badge threshold instead of a transition.
func (s *GamificationService) UnlockBadge(ctx context.Context, req UnlockBadgeRequest) (*models.Badge, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid unlock payload")
	}

	user, err := s.users.FindByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}

	badge, err := s.badges.FindActiveByName(ctx, req.BadgeName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "badge not found or inactive")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load badge")
	}

	earned, err := s.users.ListBadges(ctx, user.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load earned badges")
	}
	for _, owned := range earned {
		if owned.Name == badge.Name {
			return nil, appErrors.Clone(appErrors.ErrAlreadyGranted, "user already has this badge")
		}
	}

	if user.Points < badge.PointsRequired {
		shortfall := badge.PointsRequired - user.Points
		return nil, appErrors.Clone(appErrors.ErrInsufficientPoints,
			fmt.Sprintf("user needs %d more points to unlock this badge", shortfall))
	}

	inserted, err := s.users.AppendBadge(ctx, s.snapshot(user.ID, badge))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to grant badge")
	}
	if !inserted {
		return nil, appErrors.Clone(appErrors.ErrAlreadyGranted, "user already has this badge")
	}

	s.metrics.RecordBadgesGranted(grantPathManual, 1)
	s.invalidateLeaderboards(ctx)
	s.logger.Info("badge unlocked manually",
		zap.String("user_id", user.ID), zap.String("badge", badge.Name))

	return badge, nil
}

// UserStats aggregates a user's progress: totals, per-category badge
// counts and the next thresholds worth chasing.
func (s *GamificationService) UserStats(ctx context.Context, userID string) (*models.UserStats, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}

	earned, err := s.users.ListBadges(ctx, user.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load earned badges")
	}

	byCategory := make(map[models.BadgeCategory]int, len(models.BadgeCategories))
	for _, category := range models.BadgeCategories {
		byCategory[category] = 0
	}
	for _, badge := range earned {
		byCategory[badge.Category]++
	}

	next, err := s.badges.FindNextThresholds(ctx, user.Points, s.cfg.NextBadgesLimit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load next badges")
	}
	nextBadges := make([]models.NextBadge, 0, len(next))
	for _, badge := range next {
		nextBadges = append(nextBadges, models.NextBadge{
			Name:           badge.Name,
			Description:    badge.Description,
			Icon:           badge.Icon,
			PointsRequired: badge.PointsRequired,
			PointsNeeded:   badge.PointsRequired - user.Points,
		})
	}

	return &models.UserStats{
		TotalPoints:      user.Points,
		Level:            user.Level(),
		TotalBadges:      len(earned),
		BadgesByCategory: byCategory,
		NextBadges:       nextBadges,
	}, nil
}

// AvailableBadges lists catalog badges the user can already claim plus
// the next thresholds above their total.
func (s *GamificationService) AvailableBadges(ctx context.Context, userID string) (*models.AvailableBadges, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}

	available, err := s.badges.FindAvailableForPoints(ctx, user.Points)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load available badges")
	}
	next, err := s.badges.FindNextThresholds(ctx, user.Points, s.cfg.NextBadgesLimit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load next badges")
	}

	return &models.AvailableBadges{
		Available:  available,
		Next:       next,
		UserPoints: user.Points,
		UserLevel:  user.Level(),
	}, nil
}

func (s *GamificationService) snapshot(userID string, badge *models.Badge) *models.EarnedBadge {
	return &models.EarnedBadge{
		UserID:      userID,
		Name:        badge.Name,
		Description: badge.Description,
		Icon:        badge.Icon,
		Category:    badge.Category,
		EarnedAt:    s.now().UTC(),
	}
}

func (s *GamificationService) invalidateLeaderboards(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, leaderboardCachePattern); err != nil {
		s.logger.Warn("failed to invalidate leaderboard cache", zap.Error(err))
	}
}
