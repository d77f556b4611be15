package models

import (
	"time"

	"github.com/julianstephens/habitual/internal/constants"
)

// BadgeRule is one entry of the static badge catalog
type BadgeRule struct {
	ID          string              `json:"id" yaml:"id"`
	Name        string              `json:"name" yaml:"name"`
	Description string              `json:"description" yaml:"description"`
	Icon        string              `json:"icon" yaml:"icon"`
	Type        constants.BadgeType `json:"type" yaml:"type"`
	Requirement int                 `json:"requirement" yaml:"requirement"`
}

// UserBadge is an earned badge. Badges are append-only: never revoked and
// never duplicated for the same (BadgeID, scope).
type UserBadge struct {
	BadgeID    string    `json:"badge_id" db:"badge_id"`
	EarnedAt   time.Time `json:"earned_at" db:"earned_at"`
	HabitID    string    `json:"habit_id,omitempty" db:"habit_id"`
	CategoryID string    `json:"category_id,omitempty" db:"category_id"`
}

// BadgeKey is the uniqueness key of an earned badge
type BadgeKey struct {
	BadgeID string
	ScopeID string
}

// Key returns the badge id paired with its habit or category scope.
// Global badges have an empty scope.
func (b UserBadge) Key() BadgeKey {
	scope := b.HabitID
	if scope == "" {
		scope = b.CategoryID
	}
	return BadgeKey{BadgeID: b.BadgeID, ScopeID: scope}
}
