package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ecoquest/gamification-api/internal/models"
	appErrors "github.com/ecoquest/gamification-api/pkg/errors"
	"github.com/ecoquest/gamification-api/pkg/export"
	"github.com/ecoquest/gamification-api/pkg/response"
)

type leaderboardService interface {
	Leaderboard(ctx context.Context, query models.LeaderboardQuery) ([]models.LeaderboardEntry, bool, error)
	UserRank(ctx context.Context, userID string, query models.RankQuery) (*models.UserRank, error)
}

// LeaderboardHandler serves ranking and rank-lookup endpoints.
type LeaderboardHandler struct {
	leaderboard leaderboardService
	csv         *export.CSVExporter
	pdf         *export.PDFExporter
}

// NewLeaderboardHandler constructs LeaderboardHandler.
func NewLeaderboardHandler(leaderboard leaderboardService, csv *export.CSVExporter, pdf *export.PDFExporter) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboard: leaderboard, csv: csv, pdf: pdf}
}

func leaderboardQueryFromRequest(c *gin.Context) (models.LeaderboardQuery, error) {
	query := models.LeaderboardQuery{
		Role:      c.Query("role"),
		School:    c.Query("school"),
		Timeframe: models.Timeframe(c.DefaultQuery("timeframe", string(models.TimeframeAll))),
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return query, appErrors.Clone(appErrors.ErrValidation, "limit must be an integer")
		}
		query.Limit = limit
	}
	return query, nil
}

// List godoc
// @Summary Points-descending leaderboard
// @Tags Leaderboard
// @Produce json
// @Param limit query int false "Maximum entries (1-100)"
// @Param role query string false "Filter by role"
// @Param school query string false "Filter by school"
// @Param timeframe query string false "all, week or month"
// @Success 200 {object} response.Envelope
// @Router /leaderboard [get]
func (h *LeaderboardHandler) List(c *gin.Context) {
	query, err := leaderboardQueryFromRequest(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	entries, cacheHit, err := h.leaderboard.Leaderboard(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}

	meta := map[string]interface{}{"cache_hit": cacheHit, "count": len(entries)}
	if claims := claimsFromContext(c); claims != nil {
		rank, rankErr := h.leaderboard.UserRank(c.Request.Context(), claims.UserID, models.RankQuery{Role: query.Role, School: query.School})
		if rankErr == nil {
			meta["user_rank"] = rank
		}
	}
	response.JSON(c, http.StatusOK, entries, nil, meta)
}

// BySchool godoc
// @Summary Leaderboard restricted to one school's students
// @Tags Leaderboard
// @Produce json
// @Param school query string true "School name"
// @Param limit query int false "Maximum entries (1-100)"
// @Success 200 {object} response.Envelope
// @Router /leaderboard/school [get]
func (h *LeaderboardHandler) BySchool(c *gin.Context) {
	query, err := leaderboardQueryFromRequest(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if query.School == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "school is required"))
		return
	}
	query.Role = string(models.RoleStudent)

	entries, cacheHit, err := h.leaderboard.Leaderboard(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil, map[string]interface{}{"cache_hit": cacheHit, "count": len(entries)})
}

// ByRole godoc
// @Summary Leaderboard restricted to a single role
// @Tags Leaderboard
// @Produce json
// @Param role path string true "Role" Enums(student, teacher, ngo, admin)
// @Param limit query int false "Maximum entries (1-100)"
// @Success 200 {object} response.Envelope
// @Router /leaderboard/role/{role} [get]
func (h *LeaderboardHandler) ByRole(c *gin.Context) {
	query, err := leaderboardQueryFromRequest(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	query.Role = c.Param("role")

	entries, cacheHit, err := h.leaderboard.Leaderboard(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil, map[string]interface{}{"cache_hit": cacheHit, "count": len(entries)})
}

// Rank godoc
// @Summary Authenticated user's rank and percentile
// @Tags Leaderboard
// @Produce json
// @Param role query string false "Scope population to a role"
// @Param school query string false "Scope population to a school"
// @Success 200 {object} response.Envelope
// @Router /leaderboard/rank [get]
func (h *LeaderboardHandler) Rank(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	rank, err := h.leaderboard.UserRank(c.Request.Context(), claims.UserID, models.RankQuery{
		Role:   c.Query("role"),
		School: c.Query("school"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rank, nil)
}

// Export godoc
// @Summary Export the leaderboard as CSV or PDF
// @Tags Leaderboard
// @Produce octet-stream
// @Param format query string false "csv or pdf" default(csv)
// @Param limit query int false "Maximum entries (1-100)"
// @Param role query string false "Filter by role"
// @Param school query string false "Filter by school"
// @Success 200 {file} binary
// @Router /leaderboard/export [get]
func (h *LeaderboardHandler) Export(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")
	if format != "csv" && format != "pdf" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf"))
		return
	}

	query, err := leaderboardQueryFromRequest(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	entries, _, err := h.leaderboard.Leaderboard(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}

	dataset := export.Dataset{
		Headers: []string{"Rank", "Name", "Role", "School", "Points", "Level", "Badges"},
		Rows:    make([]map[string]string, 0, len(entries)),
	}
	for _, entry := range entries {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Rank":   strconv.Itoa(entry.Rank),
			"Name":   entry.Name,
			"Role":   string(entry.Role),
			"School": entry.School,
			"Points": strconv.Itoa(entry.Points),
			"Level":  strconv.Itoa(entry.Level),
			"Badges": strconv.Itoa(entry.BadgeCount),
		})
	}

	filename := fmt.Sprintf("leaderboard_%s.%s", time.Now().UTC().Format("20060102_150405"), format)
	var payload []byte
	var contentType string
	switch format {
	case "pdf":
		payload, err = h.pdf.Render(dataset, "Eco-Points Leaderboard")
		contentType = "application/pdf"
	default:
		payload, err = h.csv.Render(dataset)
		contentType = "text/csv"
	}
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export"))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, payload)
}
