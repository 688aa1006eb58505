package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ecoquest/gamification-api/internal/models"
	"github.com/ecoquest/gamification-api/internal/service"
	appErrors "github.com/ecoquest/gamification-api/pkg/errors"
	"github.com/ecoquest/gamification-api/pkg/response"
)

type gamificationService interface {
	AwardPoints(ctx context.Context, req service.AwardPointsRequest) (*models.AwardPointsResult, error)
	UnlockBadge(ctx context.Context, req service.UnlockBadgeRequest) (*models.Badge, error)
	UserStats(ctx context.Context, userID string) (*models.UserStats, error)
	AvailableBadges(ctx context.Context, userID string) (*models.AvailableBadges, error)
}

// GamificationHandler exposes point accrual and badge unlock endpoints.
type GamificationHandler struct {
	gamification gamificationService
}

// NewGamificationHandler constructs GamificationHandler.
func NewGamificationHandler(gamification gamificationService) *GamificationHandler {
	return &GamificationHandler{gamification: gamification}
}

// AwardPoints godoc
// @Summary Award eco-points to a user
// @Tags Gamification
// @Accept json
// @Produce json
// @Param payload body service.AwardPointsRequest true "Award payload"
// @Success 200 {object} response.Envelope
// @Router /gamification/points [post]
func (h *GamificationHandler) AwardPoints(c *gin.Context) {
	var req service.AwardPointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.gamification.AwardPoints(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// UnlockBadge godoc
// @Summary Manually unlock a badge for a user
// @Tags Gamification
// @Accept json
// @Produce json
// @Param payload body service.UnlockBadgeRequest true "Unlock payload"
// @Success 200 {object} response.Envelope
// @Router /gamification/badges/unlock [post]
func (h *GamificationHandler) UnlockBadge(c *gin.Context) {
	var req service.UnlockBadgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	badge, err := h.gamification.UnlockBadge(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, badge, nil)
}

// Stats godoc
// @Summary Gamification stats for the authenticated user
// @Tags Gamification
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /gamification/stats [get]
func (h *GamificationHandler) Stats(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	stats, err := h.gamification.UserStats(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// AvailableBadges godoc
// @Summary Badges available to the authenticated user
// @Tags Gamification
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /gamification/badges/available [get]
func (h *GamificationHandler) AvailableBadges(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	badges, err := h.gamification.AvailableBadges(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, badges, nil)
}
