package models

// AwardPointsResult reports the outcome of a point award, including any
// badges unlocked by the point transition.
type AwardPointsResult struct {
	PointsAwarded  int     `json:"points_awarded"`
	TotalPoints    int     `json:"total_points"`
	Level          int     `json:"level"`
	BadgesUnlocked []Badge `json:"badges_unlocked"`
	Reason         string  `json:"reason"`
}

// UserStats aggregates a user's gamification progress.
type UserStats struct {
	TotalPoints      int                   `json:"total_points"`
	Level            int                   `json:"level"`
	TotalBadges      int                   `json:"total_badges"`
	BadgesByCategory map[BadgeCategory]int `json:"badges_by_category"`
	NextBadges       []NextBadge           `json:"next_badges"`
}

// AvailableBadges pairs already-earnable catalog badges with the next
// thresholds above the user's current total.
type AvailableBadges struct {
	Available  []Badge `json:"available"`
	Next       []Badge `json:"next"`
	UserPoints int     `json:"user_points"`
	UserLevel  int     `json:"user_level"`
}
