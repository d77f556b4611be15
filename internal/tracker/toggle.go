package tracker

import (
	"context"

	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/store"
	"github.com/julianstephens/habitual/internal/utils"
)

// ToggleHabit flips whether habitID was completed on date (today when date
// is empty) and returns the stored log. Toggles of the same habit and day
// run one at a time, so two quick toggles never create two logs.
func (t *Tracker) ToggleHabit(ctx context.Context, habitID, date string) (models.HabitLog, error) {
	const action = "toggle habit"
	if _, ok := t.store.Habit(habitID); !ok {
		return models.HabitLog{}, invalid(action, "unknown habit %q", habitID)
	}
	if date == "" {
		date = t.Today()
	} else {
		day, err := utils.NormalizeDate(date)
		if err != nil {
			return models.HabitLog{}, invalid(action, "%v", err)
		}
		date = day
	}

	key := models.LogKey{HabitID: habitID, Date: date}
	unlock := t.locks.Lock(key.String())
	defer unlock()

	epoch := t.store.Epoch()
	userID := t.userID()

	var (
		saved models.HabitLog
		err   error
	)
	if existing, found := t.store.FindLog(habitID, date); found {
		next := existing
		next.Completed = !existing.Completed
		if next.Completed {
			next.Timestamp = t.now()
		}
		if next.ID != "" {
			saved, err = t.api.UpdateLog(ctx, next)
		} else {
			saved, err = t.api.UpsertLog(ctx, next)
		}
	} else {
		saved, err = t.api.UpsertLog(ctx, models.HabitLog{
			HabitID:   habitID,
			Date:      date,
			Completed: true,
			Timestamp: t.now(),
		})
	}
	if err != nil {
		return models.HabitLog{}, wrap(action, err)
	}

	if err := t.store.Update(epoch, func(tx *store.Tx) { tx.PutLog(saved) }); err != nil {
		return models.HabitLog{}, wrap(action, err)
	}
	t.recompute()
	t.log.Debug("habit toggled", "habit", habitID, "date", date, "completed", saved.Completed)

	t.evaluateBadges(ctx, userID, epoch)
	return saved, nil
}

// ClearLog deletes the log of habitID on date (today when date is empty),
// erasing the day from its history. It reports whether a log existed.
// Badges already earned are kept.
func (t *Tracker) ClearLog(ctx context.Context, habitID, date string) (bool, error) {
	const action = "clear log"
	if _, ok := t.store.Habit(habitID); !ok {
		return false, invalid(action, "unknown habit %q", habitID)
	}
	if date == "" {
		date = t.Today()
	} else {
		day, err := utils.NormalizeDate(date)
		if err != nil {
			return false, invalid(action, "%v", err)
		}
		date = day
	}

	key := models.LogKey{HabitID: habitID, Date: date}
	unlock := t.locks.Lock(key.String())
	defer unlock()

	epoch := t.store.Epoch()
	existing, found := t.store.FindLog(habitID, date)
	if !found || existing.ID == "" {
		return false, nil
	}
	if err := t.api.DeleteLog(ctx, existing.ID); err != nil {
		return false, wrap(action, err)
	}
	if err := t.store.Update(epoch, func(tx *store.Tx) { tx.RemoveLog(existing.ID) }); err != nil {
		return false, wrap(action, err)
	}
	t.recompute()
	t.log.Debug("habit log cleared", "habit", habitID, "date", date)
	return true, nil
}

func (t *Tracker) userID() string {
	if t.session == nil {
		return ""
	}
	return t.session.UserID()
}
