package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ecoquest/gamification-api/internal/models"
	"github.com/ecoquest/gamification-api/internal/service"
	appErrors "github.com/ecoquest/gamification-api/pkg/errors"
	"github.com/ecoquest/gamification-api/pkg/response"
)

type badgeCatalogService interface {
	List(ctx context.Context, filter models.BadgeFilter) ([]models.Badge, error)
	Get(ctx context.Context, id string) (*models.Badge, error)
	Create(ctx context.Context, req service.CreateBadgeRequest) (*models.Badge, error)
	Update(ctx context.Context, id string, req service.UpdateBadgeRequest) (*models.Badge, error)
	Deactivate(ctx context.Context, id string) error
}

// BadgeHandler serves the badge catalog endpoints.
type BadgeHandler struct {
	catalog badgeCatalogService
}

// NewBadgeHandler constructs BadgeHandler.
func NewBadgeHandler(catalog badgeCatalogService) *BadgeHandler {
	return &BadgeHandler{catalog: catalog}
}

// List godoc
// @Summary List active catalog badges
// @Tags Badges
// @Produce json
// @Param category query string false "Filter by category"
// @Param rarity query string false "Filter by rarity"
// @Param limit query int false "Maximum entries"
// @Success 200 {object} response.Envelope
// @Router /badges [get]
func (h *BadgeHandler) List(c *gin.Context) {
	filter := models.BadgeFilter{
		Category: c.Query("category"),
		Rarity:   c.Query("rarity"),
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "limit must be an integer"))
			return
		}
		filter.Limit = limit
	}

	badges, err := h.catalog.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, badges, nil, map[string]interface{}{"count": len(badges)})
}

// Get godoc
// @Summary Fetch a catalog badge by ID
// @Tags Badges
// @Produce json
// @Param id path string true "Badge ID"
// @Success 200 {object} response.Envelope
// @Router /badges/{id} [get]
func (h *BadgeHandler) Get(c *gin.Context) {
	badge, err := h.catalog.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, badge, nil)
}

// Create godoc
// @Summary Create a catalog badge
// @Tags Badges
// @Accept json
// @Produce json
// @Param payload body service.CreateBadgeRequest true "Badge payload"
// @Success 201 {object} response.Envelope
// @Router /badges [post]
func (h *BadgeHandler) Create(c *gin.Context) {
	var req service.CreateBadgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	badge, err := h.catalog.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, badge)
}

// Update godoc
// @Summary Partially update a catalog badge
// @Tags Badges
// @Accept json
// @Produce json
// @Param id path string true "Badge ID"
// @Param payload body service.UpdateBadgeRequest true "Badge fields to update"
// @Success 200 {object} response.Envelope
// @Router /badges/{id} [put]
func (h *BadgeHandler) Update(c *gin.Context) {
	var req service.UpdateBadgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	badge, err := h.catalog.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, badge, nil)
}

// Deactivate godoc
// @Summary Deactivate a catalog badge
// @Tags Badges
// @Produce json
// @Param id path string true "Badge ID"
// @Success 204
// @Router /badges/{id} [delete]
func (h *BadgeHandler) Deactivate(c *gin.Context) {
	if err := h.catalog.Deactivate(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
