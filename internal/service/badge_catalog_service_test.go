package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ecoquest/gamification-api/internal/models"
	appErrors "github.com/ecoquest/gamification-api/pkg/errors"
)

type mockBadgeCatalogRepo struct {
	badges      map[string]*models.Badge
	nameTaken   bool
	created     *models.Badge
	updated     *models.Badge
	deactivated string
}

func (m *mockBadgeCatalogRepo) List(ctx context.Context, filter models.BadgeFilter) ([]models.Badge, error) {
	result := []models.Badge{}
	for _, badge := range m.badges {
		result = append(result, *badge)
	}
	return result, nil
}

func (m *mockBadgeCatalogRepo) FindByID(ctx context.Context, id string) (*models.Badge, error) {
	badge, ok := m.badges[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *badge
	return &copied, nil
}

func (m *mockBadgeCatalogRepo) ExistsByName(ctx context.Context, name string, excludeID string) (bool, error) {
	return m.nameTaken, nil
}

func (m *mockBadgeCatalogRepo) Create(ctx context.Context, badge *models.Badge) error {
	m.created = badge
	return nil
}

func (m *mockBadgeCatalogRepo) Update(ctx context.Context, badge *models.Badge) error {
	m.updated = badge
	return nil
}

func (m *mockBadgeCatalogRepo) Deactivate(ctx context.Context, id string) error {
	m.deactivated = id
	return nil
}

func newTestCatalogService(repo *mockBadgeCatalogRepo) *BadgeCatalogService {
	return NewBadgeCatalogService(repo, validator.New(), zap.NewNop())
}

func TestBadgeCatalogCreateDefaultsRarity(t *testing.T) {
	repo := &mockBadgeCatalogRepo{badges: map[string]*models.Badge{}}
	svc := newTestCatalogService(repo)

	badge, err := svc.Create(context.Background(), CreateBadgeRequest{
		Name:           "Tree Planter",
		Description:    "Planted ten trees in a school campaign",
		Icon:           "tree",
		Category:       "environmental",
		PointsRequired: 150,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RarityCommon, badge.Rarity)
	assert.True(t, badge.Active)
	require.NotNil(t, repo.created)
	assert.Equal(t, "Tree Planter", repo.created.Name)
}

func TestBadgeCatalogCreateRejectsDuplicateName(t *testing.T) {
	repo := &mockBadgeCatalogRepo{badges: map[string]*models.Badge{}, nameTaken: true}
	svc := newTestCatalogService(repo)

	_, err := svc.Create(context.Background(), CreateBadgeRequest{
		Name:        "Tree Planter",
		Description: "Planted ten trees in a school campaign",
		Icon:        "tree",
		Category:    "environmental",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestBadgeCatalogCreateRejectsUnknownCategory(t *testing.T) {
	svc := newTestCatalogService(&mockBadgeCatalogRepo{badges: map[string]*models.Badge{}})

	_, err := svc.Create(context.Background(), CreateBadgeRequest{
		Name:        "Tree Planter",
		Description: "Planted ten trees in a school campaign",
		Icon:        "tree",
		Category:    "botany",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestBadgeCatalogUpdatePartial(t *testing.T) {
	repo := &mockBadgeCatalogRepo{badges: map[string]*models.Badge{
		"b1": {ID: "b1", Name: "Tree Planter", Description: "Planted ten trees", Icon: "tree", Category: models.CategoryEnvironmental, Rarity: models.RarityCommon, PointsRequired: 150, Active: true},
	}}
	svc := newTestCatalogService(repo)

	points := 200
	rarity := "rare"
	badge, err := svc.Update(context.Background(), "b1", UpdateBadgeRequest{
		PointsRequired: &points,
		Rarity:         &rarity,
	})
	require.NoError(t, err)
	assert.Equal(t, 200, badge.PointsRequired)
	assert.Equal(t, models.RarityRare, badge.Rarity)
	assert.Equal(t, "Tree Planter", badge.Name)
}

func TestBadgeCatalogUpdateUnknownBadge(t *testing.T) {
	svc := newTestCatalogService(&mockBadgeCatalogRepo{badges: map[string]*models.Badge{}})

	_, err := svc.Update(context.Background(), "missing", UpdateBadgeRequest{})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestBadgeCatalogListRejectsUnknownRarity(t *testing.T) {
	svc := newTestCatalogService(&mockBadgeCatalogRepo{badges: map[string]*models.Badge{}})

	_, err := svc.List(context.Background(), models.BadgeFilter{Rarity: "mythic"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestBadgeCatalogDeactivate(t *testing.T) {
	repo := &mockBadgeCatalogRepo{badges: map[string]*models.Badge{
		"b1": {ID: "b1", Name: "Tree Planter", Active: true},
	}}
	svc := newTestCatalogService(repo)

	err := svc.Deactivate(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, "b1", repo.deactivated)
}
