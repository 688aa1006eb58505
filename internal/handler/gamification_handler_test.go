package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/ecoquest/gamification-api/internal/middleware"
	"github.com/ecoquest/gamification-api/internal/models"
	"github.com/ecoquest/gamification-api/internal/service"
	appErrors "github.com/ecoquest/gamification-api/pkg/errors"
)

type fakeGamificationSrv struct {
	awardRes    *models.AwardPointsResult
	awardErr    error
	lastAward   service.AwardPointsRequest
	unlockRes   *models.Badge
	unlockErr   error
	statsRes    *models.UserStats
	statsErr    error
	statsUserID string
	availRes    *models.AvailableBadges
	availErr    error
}

func (f *fakeGamificationSrv) AwardPoints(_ context.Context, req service.AwardPointsRequest) (*models.AwardPointsResult, error) {
	f.lastAward = req
	return f.awardRes, f.awardErr
}

func (f *fakeGamificationSrv) UnlockBadge(_ context.Context, req service.UnlockBadgeRequest) (*models.Badge, error) {
	return f.unlockRes, f.unlockErr
}

func (f *fakeGamificationSrv) UserStats(_ context.Context, userID string) (*models.UserStats, error) {
	f.statsUserID = userID
	return f.statsRes, f.statsErr
}

func (f *fakeGamificationSrv) AvailableBadges(_ context.Context, userID string) (*models.AvailableBadges, error) {
	return f.availRes, f.availErr
}

func TestGamificationHandlerAwardPoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeGamificationSrv{awardRes: &models.AwardPointsResult{PointsAwarded: 10, TotalPoints: 55, Level: 1}}
	handler := NewGamificationHandler(srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	body := `{"user_id":"u1","points":10,"reason":"recycling"}`
	c.Request = httptest.NewRequest(http.MethodPost, "/gamification/points", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.AwardPoints(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", srv.lastAward.UserID)
	assert.Equal(t, 10, srv.lastAward.Points)
	var envelope responseEnvelope
	_ = json.Unmarshal(rec.Body.Bytes(), &envelope)
	assert.Equal(t, float64(55), envelope.Data["total_points"])
}

func TestGamificationHandlerAwardPointsBadPayload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewGamificationHandler(&fakeGamificationSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/gamification/points", strings.NewReader("{"))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.AwardPoints(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGamificationHandlerAwardPointsServiceError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewGamificationHandler(&fakeGamificationSrv{
		awardErr: appErrors.Clone(appErrors.ErrNotFound, "user not found"),
	})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/gamification/points", strings.NewReader(`{"user_id":"ghost","points":10}`))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.AwardPoints(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGamificationHandlerUnlockBadgeConflict(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewGamificationHandler(&fakeGamificationSrv{
		unlockErr: appErrors.Clone(appErrors.ErrAlreadyGranted, "user already has this badge"),
	})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/gamification/badges/unlock", strings.NewReader(`{"user_id":"u1","badge_name":"Eco Starter"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.UnlockBadge(c)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestGamificationHandlerStatsUsesClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeGamificationSrv{statsRes: &models.UserStats{TotalPoints: 120, Level: 2}}
	handler := NewGamificationHandler(srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/gamification/stats", nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "u1"})

	handler.Stats(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", srv.statsUserID)
}

func TestGamificationHandlerStatsRequiresAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewGamificationHandler(&fakeGamificationSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/gamification/stats", nil)

	handler.Stats(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

type responseEnvelope struct {
	Data map[string]interface{} `json:"data"`
	Meta map[string]interface{} `json:"meta"`
}
