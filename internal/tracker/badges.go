package tracker

import (
	"context"

	"github.com/julianstephens/habitual/internal/badge"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/store"
)

// sessionLoaded runs after a snapshot was applied for userID. It restores
// the badges the user already earned, then awards any the loaded data now
// qualifies for.
func (t *Tracker) sessionLoaded(userID string, epoch uint64) {
	ctx := context.Background()
	if t.ledger != nil {
		earned, err := t.ledger.EarnedBadges(ctx, userID)
		if err != nil {
			t.log.Warn("failed to read badge ledger", "user", userID, "err", err)
		} else if err := t.store.Update(epoch, func(tx *store.Tx) { tx.AddBadges(earned) }); err != nil {
			return
		}
	}
	t.recompute()
	t.evaluateBadges(ctx, userID, epoch)
}

// evaluateBadges awards newly earned badges for the session at epoch and
// records them in the ledger. The delta is kept as RecentBadges.
func (t *Tracker) evaluateBadges(ctx context.Context, userID string, epoch uint64) []models.UserBadge {
	snap := t.store.Snapshot()
	if snap.Epoch != epoch {
		return nil
	}
	in := badge.Input{
		Habits:     snap.Habits,
		Categories: snap.Categories,
		Logs:       snap.Logs,
		Streaks:    t.calc.Streaks(snap.Version, snap.Habits, snap.Logs),
	}
	delta := t.evaluator.Evaluate(in, snap.Badges, t.now())

	var added []models.UserBadge
	if len(delta) > 0 {
		if err := t.store.Update(epoch, func(tx *store.Tx) { added = tx.AddBadges(delta) }); err != nil {
			return nil
		}
		t.recompute()
	}

	t.mu.Lock()
	t.recent = added
	t.mu.Unlock()

	if len(added) == 0 {
		return nil
	}
	for _, b := range added {
		t.log.Info("badge earned", "badge", b.BadgeID, "habit", b.HabitID, "category", b.CategoryID)
	}
	if t.ledger != nil && userID != "" {
		if err := t.ledger.RecordBadges(ctx, userID, added); err != nil {
			t.log.Warn("failed to record badges", "user", userID, "err", err)
		}
	}
	return added
}
