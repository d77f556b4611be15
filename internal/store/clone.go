package store

import "github.com/julianstephens/habitual/internal/models"

func cloneCategories(in []models.Category) []models.Category {
	if len(in) == 0 {
		return nil
	}
	out := make([]models.Category, len(in))
	copy(out, in)
	return out
}

func cloneHabits(in []models.Habit) []models.Habit {
	if len(in) == 0 {
		return nil
	}
	out := make([]models.Habit, len(in))
	copy(out, in)
	return out
}

func cloneLog(l models.HabitLog) models.HabitLog {
	if l.Value != nil {
		v := *l.Value
		l.Value = &v
	}
	return l
}

func cloneLogs(in []models.HabitLog) []models.HabitLog {
	if len(in) == 0 {
		return nil
	}
	out := make([]models.HabitLog, len(in))
	for i, l := range in {
		out[i] = cloneLog(l)
	}
	return out
}

// dedupeLogs copies in, keeping one log per (habit, date). A completed log
// beats an incomplete one; otherwise the newest timestamp wins, then the later
// position.
func dedupeLogs(in []models.HabitLog) []models.HabitLog {
	if len(in) == 0 {
		return nil
	}
	index := make(map[models.LogKey]int, len(in))
	out := make([]models.HabitLog, 0, len(in))
	for _, l := range in {
		if i, ok := index[l.Key()]; ok {
			if supersedes(l, out[i]) {
				out[i] = cloneLog(l)
			}
			continue
		}
		index[l.Key()] = len(out)
		out = append(out, cloneLog(l))
	}
	return out
}

func supersedes(l, kept models.HabitLog) bool {
	if l.Completed != kept.Completed {
		return l.Completed
	}
	return !l.Timestamp.Before(kept.Timestamp)
}

func cloneBadges(in []models.UserBadge) []models.UserBadge {
	if len(in) == 0 {
		return nil
	}
	out := make([]models.UserBadge, len(in))
	copy(out, in)
	return out
}
