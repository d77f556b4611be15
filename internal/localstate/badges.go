package localstate

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/models"
)

// Fixed-width UTC timestamps sort chronologically as text.
const ledgerTimeFormat = "2006-01-02T15:04:05.000000000Z07:00"

type badgeRow struct {
	BadgeID    string `db:"badge_id"`
	HabitID    string `db:"habit_id"`
	CategoryID string `db:"category_id"`
	EarnedAt   string `db:"earned_at"`
}

// EarnedBadges returns the ledger for userID, oldest first.
func (s *Store) EarnedBadges(ctx context.Context, userID string) ([]models.UserBadge, error) {
	if userID == "" {
		return nil, apperrors.Validation("localstate.earned_badges", "user id is required")
	}

	query, args, err := s.sb.Select("badge_id", "habit_id", "category_id", "earned_at").
		From("badges").
		Where("user_id = ?", userID).
		OrderBy("earned_at", "badge_id", "scope_id").
		ToSql()
	if err != nil {
		return nil, err
	}

	var rows []badgeRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to read badge ledger: %w", err)
	}

	out := make([]models.UserBadge, 0, len(rows))
	for _, r := range rows {
		earned, err := time.Parse(ledgerTimeFormat, r.EarnedAt)
		if err != nil {
			s.log.Warn("skipping ledger row with bad timestamp", "badge", r.BadgeID, "earned_at", r.EarnedAt)
			continue
		}
		out = append(out, models.UserBadge{
			BadgeID:    r.BadgeID,
			EarnedAt:   earned,
			HabitID:    r.HabitID,
			CategoryID: r.CategoryID,
		})
	}
	return out, nil
}

// RecordBadges appends badges to userID's ledger. A badge already recorded
// for the same scope keeps its original timestamp.
func (s *Store) RecordBadges(ctx context.Context, userID string, badges []models.UserBadge) error {
	if userID == "" {
		return apperrors.Validation("localstate.record_badges", "user id is required")
	}
	if len(badges) == 0 {
		return nil
	}

	insert := s.sb.Insert("badges").
		Columns("id", "user_id", "badge_id", "scope_id", "habit_id", "category_id", "earned_at")
	for _, b := range badges {
		earned := b.EarnedAt
		if earned.IsZero() {
			earned = s.now()
		}
		insert = insert.Values(
			uuid.NewString(),
			userID,
			b.BadgeID,
			b.Key().ScopeID,
			b.HabitID,
			b.CategoryID,
			earned.UTC().Format(ledgerTimeFormat),
		)
	}
	query, args, err := insert.Suffix("ON CONFLICT (user_id, badge_id, scope_id) DO NOTHING").ToSql()
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to record badges: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil {
		s.log.Debug("badges recorded", "user", userID, "offered", len(badges), "new", n)
	}
	return nil
}

// ForgetUser drops userID's ledger.
func (s *Store) ForgetUser(ctx context.Context, userID string) error {
	query, args, err := s.sb.Delete("badges").Where("user_id = ?", userID).ToSql()
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to clear badge ledger: %w", err)
	}
	return nil
}
