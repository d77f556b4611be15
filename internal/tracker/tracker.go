// Package tracker is the engine façade consumed by the CLI. It reads from the
// entity store, issues mutations through the persistence API and keeps
// streaks and badges in step with every committed change.
package tracker

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/julianstephens/habitual/internal/badge"
	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/remote"
	"github.com/julianstephens/habitual/internal/session"
	"github.com/julianstephens/habitual/internal/store"
	"github.com/julianstephens/habitual/internal/streak"
)

// API is the subset of the persistence client the tracker mutates through
type API interface {
	CreateCategory(ctx context.Context, c models.Category) (models.Category, error)
	UpdateCategory(ctx context.Context, c models.Category) (models.Category, error)
	DeleteCategory(ctx context.Context, id string) error
	ReorderCategories(ctx context.Context, ids []string) error

	CreateHabit(ctx context.Context, h models.Habit) (models.Habit, error)
	UpdateHabit(ctx context.Context, h models.Habit) (models.Habit, error)
	DeleteHabit(ctx context.Context, id string) error
	ReorderHabits(ctx context.Context, categoryID string, ids []string) error
	ListTemplates(ctx context.Context) ([]models.HabitTemplate, error)
	CreateHabitFromTemplate(ctx context.Context, templateID, categoryID string) (models.Habit, error)

	UpsertLog(ctx context.Context, l models.HabitLog) (models.HabitLog, error)
	UpdateLog(ctx context.Context, l models.HabitLog) (models.HabitLog, error)
	DeleteLog(ctx context.Context, id string) error
}

var _ API = (*remote.Client)(nil)

// BadgeLedger persists earned badges per user across runs
type BadgeLedger interface {
	EarnedBadges(ctx context.Context, userID string) ([]models.UserBadge, error)
	RecordBadges(ctx context.Context, userID string, badges []models.UserBadge) error
}

type Tracker struct {
	store     *store.Store
	api       API
	session   *session.Controller
	calc      *streak.Calculator
	evaluator *badge.Evaluator
	ledger    BadgeLedger
	locks     *keyedMutex
	now       func() time.Time
	log       *log.Logger

	mu      sync.RWMutex
	streaks map[string]models.StreakData
	recent  []models.UserBadge
}

type Option func(*Tracker)

// WithLedger persists earned badges so they are not announced twice.
func WithLedger(l BadgeLedger) Option {
	return func(t *Tracker) { t.ledger = l }
}

// WithEvaluator replaces the evaluator built on the embedded catalog.
func WithEvaluator(e *badge.Evaluator) Option {
	return func(t *Tracker) { t.evaluator = e }
}

// WithLocation resolves "today" in loc instead of the local zone.
func WithLocation(loc *time.Location) Option {
	return func(t *Tracker) { t.calc = streak.NewCalculator(loc) }
}

// WithClock sets the time source for streaks, toggles and badge timestamps.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// New wires a tracker to its store, API client and session controller. The
// controller's snapshot loads are hooked so badges are seeded and streaks
// recomputed before the session reports Ready.
func New(st *store.Store, api API, ctrl *session.Controller, opts ...Option) *Tracker {
	t := &Tracker{
		store:   st,
		api:     api,
		session: ctrl,
		calc:    streak.NewCalculator(time.Local),
		locks:   newKeyedMutex(),
		now:     time.Now,
		log:     logger.Tracker(),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.evaluator == nil {
		t.evaluator = badge.NewEvaluator(nil)
	}
	t.calc.SetClock(t.now)
	if ctrl != nil {
		ctrl.OnLoaded(t.sessionLoaded)
	}
	return t
}

// Session returns the controller the tracker is attached to.
func (t *Tracker) Session() *session.Controller {
	return t.session
}

// Catalog returns the badge catalog used for evaluation.
func (t *Tracker) Catalog() *badge.Catalog {
	return t.evaluator.Catalog()
}

// Today is the current calendar day used for toggles and streaks.
func (t *Tracker) Today() string {
	return t.calc.Today()
}

func (t *Tracker) Loading() bool {
	return t.store.Loading()
}

// Categories returns the categories in display order.
func (t *Tracker) Categories() []models.Category {
	cats := t.store.Categories()
	sort.SliceStable(cats, func(i, j int) bool { return cats[i].Order < cats[j].Order })
	return cats
}

// Habits returns habits ordered by their category's order, then their own.
func (t *Tracker) Habits() []models.Habit {
	snap := t.store.Snapshot()
	return orderHabits(snap.Categories, snap.Habits)
}

func (t *Tracker) Habit(id string) (models.Habit, bool) {
	return t.store.Habit(id)
}

func (t *Tracker) Logs() []models.HabitLog {
	return t.store.Logs()
}

func (t *Tracker) Badges() []models.UserBadge {
	return t.store.Badges()
}

// RecentBadges returns the badges awarded by the latest evaluation.
func (t *Tracker) RecentBadges() []models.UserBadge {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]models.UserBadge(nil), t.recent...)
}

// Streaks returns the streak of every habit, keyed by habit id.
func (t *Tracker) Streaks() map[string]models.StreakData {
	t.recompute()
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[string]models.StreakData, len(t.streaks))
	for k, v := range t.streaks {
		out[k] = v
	}
	return out
}

// Streak returns one habit's streak, or the zero value for unknown habits.
func (t *Tracker) Streak(habitID string) models.StreakData {
	t.recompute()
	t.mu.RLock()
	defer t.mu.RUnlock()
	if s, ok := t.streaks[habitID]; ok {
		return s
	}
	return models.StreakData{HabitID: habitID}
}

// RefreshData reloads everything for the current identity.
func (t *Tracker) RefreshData(ctx context.Context) error {
	if err := t.session.Refresh(ctx); err != nil {
		return wrap("refresh data", err)
	}
	t.recompute()
	return nil
}

// recompute refreshes derived state. It must run after the store write it
// reflects has returned.
func (t *Tracker) recompute() {
	snap := t.store.Snapshot()
	streaks := t.calc.Streaks(snap.Version, snap.Habits, snap.Logs)
	t.mu.Lock()
	t.streaks = streaks
	t.mu.Unlock()
}

func orderHabits(categories []models.Category, habits []models.Habit) []models.Habit {
	catOrder := make(map[string]int, len(categories))
	for _, c := range categories {
		catOrder[c.ID] = c.Order
	}
	sort.SliceStable(habits, func(i, j int) bool {
		ci, cj := catOrder[habits[i].CategoryID], catOrder[habits[j].CategoryID]
		if ci != cj {
			return ci < cj
		}
		if habits[i].CategoryID != habits[j].CategoryID {
			return habits[i].CategoryID < habits[j].CategoryID
		}
		return habits[i].Order < habits[j].Order
	})
	return habits
}
