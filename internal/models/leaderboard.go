package models

// Timeframe restricts a leaderboard to recently active users.
type Timeframe string

const (
	TimeframeAll   Timeframe = "all"
	TimeframeWeek  Timeframe = "week"
	TimeframeMonth Timeframe = "month"
)

// ValidTimeframe reports whether the given value is a known timeframe.
func ValidTimeframe(timeframe string) bool {
	switch Timeframe(timeframe) {
	case TimeframeAll, TimeframeWeek, TimeframeMonth:
		return true
	}
	return false
}

// LeaderboardQuery captures filters for a ranking request.
type LeaderboardQuery struct {
	Limit     int
	Role      string
	School    string
	Timeframe Timeframe
}

// LeaderboardEntry is a derived ranking row; it is never persisted.
type LeaderboardEntry struct {
	Rank       int      `db:"-" json:"rank"`
	UserID     string   `db:"id" json:"user_id"`
	Name       string   `db:"name" json:"name"`
	Role       UserRole `db:"role" json:"role"`
	Points     int      `db:"points" json:"points"`
	Level      int      `db:"-" json:"level"`
	BadgeCount int      `db:"badge_count" json:"badge_count"`
	School     string   `db:"school" json:"school,omitempty"`
	Grade      string   `db:"grade" json:"grade,omitempty"`
}

// RankQuery scopes a single user's rank to a filtered population.
type RankQuery struct {
	Role   string
	School string
}

// UserRank describes a user's standing within the filtered population.
type UserRank struct {
	Current    int `json:"current"`
	Total      int `json:"total"`
	Percentile int `json:"percentile"`
	Points     int `json:"points"`
	Level      int `json:"level"`
}
