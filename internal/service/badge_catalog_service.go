package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ecoquest/gamification-api/internal/models"
	appErrors "github.com/ecoquest/gamification-api/pkg/errors"
)

type badgeCatalogRepository interface {
	List(ctx context.Context, filter models.BadgeFilter) ([]models.Badge, error)
	FindByID(ctx context.Context, id string) (*models.Badge, error)
	ExistsByName(ctx context.Context, name string, excludeID string) (bool, error)
	Create(ctx context.Context, badge *models.Badge) error
	Update(ctx context.Context, badge *models.Badge) error
	Deactivate(ctx context.Context, id string) error
}

// CreateBadgeRequest holds payload for creating catalog badges.
type CreateBadgeRequest struct {
	Name           string          `json:"name" validate:"required,min=2,max=50"`
	Description    string          `json:"description" validate:"required,min=10,max=200"`
	Icon           string          `json:"icon" validate:"required"`
	Category       string          `json:"category" validate:"required"`
	Rarity         string          `json:"rarity"`
	PointsRequired int             `json:"points_required" validate:"gte=0"`
	Requirements   json.RawMessage `json:"requirements"`
	Metadata       json.RawMessage `json:"metadata"`
}

// UpdateBadgeRequest holds a partial update for catalog badges.
type UpdateBadgeRequest struct {
	Name           *string         `json:"name" validate:"omitempty,min=2,max=50"`
	Description    *string         `json:"description" validate:"omitempty,min=10,max=200"`
	Icon           *string         `json:"icon"`
	Category       *string         `json:"category"`
	Rarity         *string         `json:"rarity"`
	PointsRequired *int            `json:"points_required" validate:"omitempty,gte=0"`
	Active         *bool           `json:"active"`
	Requirements   json.RawMessage `json:"requirements"`
	Metadata       json.RawMessage `json:"metadata"`
}

// BadgeCatalogService manages the badge catalog. Catalog edits never
// touch earned snapshots; deactivation only stops future grants.
type BadgeCatalogService struct {
	repo      badgeCatalogRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewBadgeCatalogService constructs the catalog service.
func NewBadgeCatalogService(repo badgeCatalogRepository, validate *validator.Validate, logger *zap.Logger) *BadgeCatalogService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BadgeCatalogService{repo: repo, validator: validate, logger: logger}
}

// List returns active catalog badges matching the filter.
func (s *BadgeCatalogService) List(ctx context.Context, filter models.BadgeFilter) ([]models.Badge, error) {
	if filter.Category != "" && !models.ValidBadgeCategory(filter.Category) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid category specified")
	}
	if filter.Rarity != "" && !models.ValidBadgeRarity(filter.Rarity) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid rarity specified")
	}
	badges, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list badges")
	}
	return badges, nil
}

// Get returns a catalog badge by ID.
func (s *BadgeCatalogService) Get(ctx context.Context, id string) (*models.Badge, error) {
	badge, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "badge not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load badge")
	}
	return badge, nil
}

// Create registers a new catalog badge.
func (s *BadgeCatalogService) Create(ctx context.Context, req CreateBadgeRequest) (*models.Badge, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid badge payload")
	}
	if !models.ValidBadgeCategory(req.Category) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid category specified")
	}
	rarity := req.Rarity
	if rarity == "" {
		rarity = string(models.RarityCommon)
	}
	if !models.ValidBadgeRarity(rarity) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid rarity specified")
	}

	exists, err := s.repo.ExistsByName(ctx, req.Name, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate badge name")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "badge with this name already exists")
	}

	badge := &models.Badge{
		Name:           req.Name,
		Description:    req.Description,
		Icon:           req.Icon,
		Category:       models.BadgeCategory(req.Category),
		Rarity:         models.BadgeRarity(rarity),
		PointsRequired: req.PointsRequired,
		Active:         true,
		Requirements:   req.Requirements,
		Metadata:       req.Metadata,
	}
	if err := s.repo.Create(ctx, badge); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create badge")
	}

	s.logger.Info("badge created", zap.String("badge", badge.Name), zap.Int("points_required", badge.PointsRequired))
	return badge, nil
}

// Update applies a partial update to an existing catalog badge.
func (s *BadgeCatalogService) Update(ctx context.Context, id string, req UpdateBadgeRequest) (*models.Badge, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid badge payload")
	}

	badge, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "badge not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load badge")
	}

	if req.Name != nil && *req.Name != badge.Name {
		exists, err := s.repo.ExistsByName(ctx, *req.Name, id)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate badge name")
		}
		if exists {
			return nil, appErrors.Clone(appErrors.ErrConflict, "badge with this name already exists")
		}
		badge.Name = *req.Name
	}
	if req.Description != nil {
		badge.Description = *req.Description
	}
	if req.Icon != nil {
		badge.Icon = *req.Icon
	}
	if req.Category != nil {
		if !models.ValidBadgeCategory(*req.Category) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid category specified")
		}
		badge.Category = models.BadgeCategory(*req.Category)
	}
	if req.Rarity != nil {
		if !models.ValidBadgeRarity(*req.Rarity) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid rarity specified")
		}
		badge.Rarity = models.BadgeRarity(*req.Rarity)
	}
	if req.PointsRequired != nil {
		badge.PointsRequired = *req.PointsRequired
	}
	if req.Active != nil {
		badge.Active = *req.Active
	}
	if req.Requirements != nil {
		badge.Requirements = req.Requirements
	}
	if req.Metadata != nil {
		badge.Metadata = req.Metadata
	}

	if err := s.repo.Update(ctx, badge); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update badge")
	}
	return badge, nil
}

// Deactivate soft-deletes a catalog badge.
func (s *BadgeCatalogService) Deactivate(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "badge not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load badge")
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate badge")
	}
	s.logger.Info("badge deactivated", zap.String("badge_id", id))
	return nil
}
