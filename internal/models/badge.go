package models

import (
	"encoding/json"
	"time"
)

// BadgeCategory groups catalog badges by the kind of activity they reward.
type BadgeCategory string

const (
	CategoryParticipation BadgeCategory = "participation"
	CategoryAchievement   BadgeCategory = "achievement"
	CategoryMilestone     BadgeCategory = "milestone"
	CategorySpecial       BadgeCategory = "special"
	CategoryEnvironmental BadgeCategory = "environmental"
	CategorySocial        BadgeCategory = "social"
)

// BadgeCategories lists every known category in display order.
var BadgeCategories = []BadgeCategory{
	CategoryParticipation,
	CategoryAchievement,
	CategoryMilestone,
	CategorySpecial,
	CategoryEnvironmental,
	CategorySocial,
}

// ValidBadgeCategory reports whether the given value is a known category.
func ValidBadgeCategory(category string) bool {
	for _, c := range BadgeCategories {
		if BadgeCategory(category) == c {
			return true
		}
	}
	return false
}

// BadgeRarity expresses how hard a badge is expected to be to earn.
type BadgeRarity string

const (
	RarityCommon    BadgeRarity = "common"
	RarityUncommon  BadgeRarity = "uncommon"
	RarityRare      BadgeRarity = "rare"
	RarityEpic      BadgeRarity = "epic"
	RarityLegendary BadgeRarity = "legendary"
)

// ValidBadgeRarity reports whether the given value is a known rarity.
func ValidBadgeRarity(rarity string) bool {
	switch BadgeRarity(rarity) {
	case RarityCommon, RarityUncommon, RarityRare, RarityEpic, RarityLegendary:
		return true
	}
	return false
}

// Badge is a catalog definition. Evaluation only reads active entries;
// descriptive fields are copied onto earned records at grant time.
type Badge struct {
	ID             string          `db:"id" json:"id"`
	Name           string          `db:"name" json:"name"`
	Description    string          `db:"description" json:"description"`
	Icon           string          `db:"icon" json:"icon"`
	Category       BadgeCategory   `db:"category" json:"category"`
	Rarity         BadgeRarity     `db:"rarity" json:"rarity"`
	PointsRequired int             `db:"points_required" json:"points_required"`
	Active         bool            `db:"active" json:"active"`
	Requirements   json.RawMessage `db:"requirements" json:"requirements,omitempty"`
	Metadata       json.RawMessage `db:"metadata" json:"metadata,omitempty"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updated_at"`
}

// Difficulty buckets the badge by its point threshold.
func (b *Badge) Difficulty() string {
	switch {
	case b.PointsRequired <= 50:
		return "Easy"
	case b.PointsRequired <= 200:
		return "Medium"
	case b.PointsRequired <= 500:
		return "Hard"
	default:
		return "Expert"
	}
}

// EarnedBadge is the denormalized snapshot stored on the user at grant
// time. Snapshots are immutable; later catalog edits do not change them.
type EarnedBadge struct {
	ID          string        `db:"id" json:"id"`
	UserID      string        `db:"user_id" json:"-"`
	Name        string        `db:"name" json:"name"`
	Description string        `db:"description" json:"description"`
	Icon        string        `db:"icon" json:"icon"`
	Category    BadgeCategory `db:"category" json:"category"`
	EarnedAt    time.Time     `db:"earned_at" json:"earned_at"`
}

// BadgeFilter captures catalog listing criteria.
type BadgeFilter struct {
	Category string
	Rarity   string
	Limit    int
}

// NextBadge pairs a catalog badge with the points still missing to earn it.
type NextBadge struct {
	Name           string `json:"name"`
	Description    string `json:"description"`
	Icon           string `json:"icon"`
	PointsRequired int    `json:"points_required"`
	PointsNeeded   int    `json:"points_needed"`
}
