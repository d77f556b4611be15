// Package badge awards milestone badges from a static catalog of rules.
package badge

import (
	"time"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/models"
)

// Input is everything the evaluator looks at
type Input struct {
	Habits     []models.Habit
	Categories []models.Category
	Logs       []models.HabitLog
	Streaks    map[string]models.StreakData
}

// Evaluator checks activity against a catalog
type Evaluator struct {
	catalog *Catalog
}

func NewEvaluator(catalog *Catalog) *Evaluator {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &Evaluator{catalog: catalog}
}

// Catalog returns the catalog the evaluator checks against.
func (e *Evaluator) Catalog() *Catalog {
	return e.catalog
}

// Evaluate returns only the badges newly earned by in. Badges whose
// (badge id, scope) pair appears in alreadyEarned are never returned again,
// so repeated calls with unchanged input yield nothing.
func (e *Evaluator) Evaluate(in Input, alreadyEarned []models.UserBadge, now time.Time) []models.UserBadge {
	earned := make(map[models.BadgeKey]struct{}, len(alreadyEarned))
	for _, b := range alreadyEarned {
		earned[b.Key()] = struct{}{}
	}

	var delta []models.UserBadge
	award := func(b models.UserBadge) {
		if _, ok := earned[b.Key()]; ok {
			return
		}
		earned[b.Key()] = struct{}{}
		delta = append(delta, b)
	}

	streakRules := e.catalog.OfType(constants.BadgeTypeStreak)
	for _, h := range in.Habits {
		current := in.Streaks[h.ID].CurrentStreak
		for _, rule := range streakRules {
			if rule.Requirement <= current {
				award(models.UserBadge{BadgeID: rule.ID, EarnedAt: now, HabitID: h.ID})
			}
		}
	}

	habitCategory := make(map[string]string, len(in.Habits))
	for _, h := range in.Habits {
		habitCategory[h.ID] = h.CategoryID
	}
	perCategory := make(map[string]int)
	total := 0
	for _, l := range in.Logs {
		if !l.Completed {
			continue
		}
		total++
		if cat, ok := habitCategory[l.HabitID]; ok {
			perCategory[cat]++
		}
	}

	categoryRules := e.catalog.OfType(constants.BadgeTypeCategory)
	for _, c := range in.Categories {
		count := perCategory[c.ID]
		for _, rule := range categoryRules {
			if count >= rule.Requirement {
				award(models.UserBadge{BadgeID: rule.ID, EarnedAt: now, CategoryID: c.ID})
			}
		}
	}

	for _, rule := range e.catalog.OfType(constants.BadgeTypeTotal) {
		if total >= rule.Requirement {
			award(models.UserBadge{BadgeID: rule.ID, EarnedAt: now})
		}
	}

	return delta
}
