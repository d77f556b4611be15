package tracker

import "github.com/julianstephens/habitual/internal/models"

// CategorySummary aggregates completions for one category
type CategorySummary struct {
	Category       models.Category
	Habits         int
	Completed      int
	CompletedToday int
}

// Summary is a read model over the current session
type Summary struct {
	Today          string
	Categories     []CategorySummary
	ActiveHabits   int
	TotalCompleted int
	CompletedToday int
	BestCurrent    models.StreakData
	BestLongest    models.StreakData
	Badges         int
}

// Summary aggregates completion counts and the best streaks.
func (t *Tracker) Summary() Summary {
	snap := t.store.Snapshot()
	streaks := t.Streaks()
	today := t.Today()

	s := Summary{Today: today, Badges: len(snap.Badges)}

	habitCategory := make(map[string]string, len(snap.Habits))
	perCategory := make(map[string]*CategorySummary, len(snap.Categories))
	for _, c := range t.Categories() {
		s.Categories = append(s.Categories, CategorySummary{Category: c})
	}
	for i := range s.Categories {
		perCategory[s.Categories[i].Category.ID] = &s.Categories[i]
	}

	for _, h := range snap.Habits {
		habitCategory[h.ID] = h.CategoryID
		if h.Active {
			s.ActiveHabits++
		}
		if cs, ok := perCategory[h.CategoryID]; ok {
			cs.Habits++
		}
	}

	for _, l := range snap.Logs {
		if !l.Completed {
			continue
		}
		s.TotalCompleted++
		isToday := l.Date == today
		if isToday {
			s.CompletedToday++
		}
		if cs, ok := perCategory[habitCategory[l.HabitID]]; ok {
			cs.Completed++
			if isToday {
				cs.CompletedToday++
			}
		}
	}

	for _, st := range streaks {
		if better(st.CurrentStreak, st.HabitID, s.BestCurrent.CurrentStreak, s.BestCurrent.HabitID) {
			s.BestCurrent = st
		}
		if better(st.LongestStreak, st.HabitID, s.BestLongest.LongestStreak, s.BestLongest.HabitID) {
			s.BestLongest = st
		}
	}
	return s
}

// better orders by count, then by habit id so ties resolve the same way
// every time.
func better(n int, id string, bestN int, bestID string) bool {
	if n != bestN {
		return n > bestN
	}
	return n > 0 && id < bestID
}
