package remote

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/julianstephens/habitual/internal/models"
)

// SnapshotSink receives a complete fetch. The Entity Store implements it.
type SnapshotSink interface {
	ApplySnapshot(epoch uint64, categories []models.Category, habits []models.Habit, logs []models.HabitLog) error
}

// RefreshAll fetches categories, habits and the most recent logs in
// parallel. The sink is written only when all three succeed; otherwise the
// first error is returned and the sink is untouched.
func (c *Client) RefreshAll(ctx context.Context, sink SnapshotSink, epoch uint64) error {
	var (
		categories []models.Category
		habits     []models.Habit
		logs       []models.HabitLog
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		categories, err = c.ListCategories(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		habits, err = c.ListHabits(gctx, HabitFilter{})
		return err
	})
	g.Go(func() error {
		var err error
		logs, err = c.ListLogs(gctx, LogFilter{Limit: c.logLimit})
		return err
	})
	if err := g.Wait(); err != nil {
		c.log.Warn("refresh failed", "epoch", epoch, "err", err)
		return err
	}

	return sink.ApplySnapshot(epoch, categories, habits, logs)
}
