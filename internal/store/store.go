// Package store holds the in-memory entity set for one identity session.
package store

import (
	"errors"
	"sync"

	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/models"
)

// ErrStaleEpoch is returned when a snapshot was fetched for a session that
// has since been cleared.
var ErrStaleEpoch = errors.New("store: snapshot epoch is stale")

// Snapshot is a consistent copy of the store contents.
type Snapshot struct {
	Categories []models.Category
	Habits     []models.Habit
	Logs       []models.HabitLog
	Badges     []models.UserBadge
	Epoch      uint64
	Version    uint64
}

// Store is safe for concurrent use. Every write happens under the write lock,
// so readers never see a half-applied change.
type Store struct {
	mu sync.RWMutex

	categories []models.Category
	habits     []models.Habit
	logs       []models.HabitLog
	badges     []models.UserBadge

	loading   bool
	switching bool

	epoch   uint64
	version uint64
}

func New() *Store {
	return &Store{epoch: 1}
}

// Snapshot returns a deep copy of every collection.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Categories: cloneCategories(s.categories),
		Habits:     cloneHabits(s.habits),
		Logs:       cloneLogs(s.logs),
		Badges:     cloneBadges(s.badges),
		Epoch:      s.epoch,
		Version:    s.version,
	}
}

func (s *Store) Categories() []models.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneCategories(s.categories)
}

func (s *Store) Habits() []models.Habit {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneHabits(s.habits)
}

func (s *Store) Logs() []models.HabitLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneLogs(s.logs)
}

func (s *Store) Badges() []models.UserBadge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneBadges(s.badges)
}

// Epoch identifies the current session generation. It changes on Clear.
func (s *Store) Epoch() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epoch
}

// Version changes on every mutation.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Store) SetLoading(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = v
}

func (s *Store) Switching() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.switching
}

func (s *Store) SetSwitching(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.switching = v
}

// ApplySnapshot replaces categories, habits and logs in one step. Badges are
// left alone. A snapshot fetched under an older epoch is discarded.
func (s *Store) ApplySnapshot(epoch uint64, categories []models.Category, habits []models.Habit, logs []models.HabitLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if epoch != s.epoch {
		logger.Store().Debug("discarding stale snapshot", "epoch", epoch, "current", s.epoch)
		return ErrStaleEpoch
	}

	s.categories = cloneCategories(categories)
	s.habits = cloneHabits(habits)
	s.logs = dedupeLogs(logs)
	s.version++

	logger.Store().Debug("snapshot applied",
		"categories", len(s.categories),
		"habits", len(s.habits),
		"logs", len(s.logs),
		"version", s.version)
	return nil
}

// Clear empties the store and starts a new epoch, which it returns.
func (s *Store) Clear() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.categories = nil
	s.habits = nil
	s.logs = nil
	s.badges = nil
	s.loading = false
	s.switching = false
	s.epoch++
	s.version++
	return s.epoch
}

func (s *Store) Category(id string) (models.Category, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.categoryIndex(id); i >= 0 {
		return s.categories[i], true
	}
	return models.Category{}, false
}

// PutCategory inserts c or replaces the category with the same id.
func (s *Store) PutCategory(c models.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putCategoryLocked(c)
}

// RemoveCategory deletes a category together with its habits and their
// logs. It returns the ids of the habits removed.
func (s *Store) RemoveCategory(id string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeCategoryLocked(id)
}

// ReorderCategories sets each listed category's Order to its index in ids.
// Unknown ids are ignored.
func (s *Store) ReorderCategories(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reorderCategoriesLocked(ids)
}

func (s *Store) Habit(id string) (models.Habit, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.habitIndex(id); i >= 0 {
		return s.habits[i], true
	}
	return models.Habit{}, false
}

// PutHabit inserts h or replaces the habit with the same id.
func (s *Store) PutHabit(h models.Habit) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putHabitLocked(h)
}

// RemoveHabit deletes a habit and its logs. It reports whether the habit
// existed.
func (s *Store) RemoveHabit(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeHabitLocked(id)
}

// ReorderHabits sets each listed habit's Order to its index in ids. Habits
// outside categoryID are left untouched.
func (s *Store) ReorderHabits(categoryID string, ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reorderHabitsLocked(categoryID, ids)
}

// NextHabitOrder returns one past the highest Order in the category.
func (s *Store) NextHabitOrder(categoryID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	next := 0
	for _, h := range s.habits {
		if h.CategoryID == categoryID && h.Order >= next {
			next = h.Order + 1
		}
	}
	return next
}

// NextCategoryOrder returns one past the highest category Order.
func (s *Store) NextCategoryOrder() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	next := 0
	for _, c := range s.categories {
		if c.Order >= next {
			next = c.Order + 1
		}
	}
	return next
}

// FindLog returns the log for a habit on a day, if one is known.
func (s *Store) FindLog(habitID, date string) (models.HabitLog, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.logKeyIndex(models.LogKey{HabitID: habitID, Date: date}); i >= 0 {
		return cloneLog(s.logs[i]), true
	}
	return models.HabitLog{}, false
}

// PutLog upserts l. It matches first on id, then on (habit, date), so a
// (habit, date) slot never holds two logs.
func (s *Store) PutLog(l models.HabitLog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putLogLocked(l)
}

// AddBadges appends the badges not already present and returns those.
func (s *Store) AddBadges(badges []models.UserBadge) []models.UserBadge {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addBadgesLocked(badges)
}

func (s *Store) categoryIndex(id string) int {
	for i := range s.categories {
		if s.categories[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) habitIndex(id string) int {
	for i := range s.habits {
		if s.habits[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) logIndex(id string) int {
	for i := range s.logs {
		if s.logs[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) logKeyIndex(key models.LogKey) int {
	return s.logKeyIndexExcept(key, -1)
}

func (s *Store) logKeyIndexExcept(key models.LogKey, skip int) int {
	for i := range s.logs {
		if i != skip && s.logs[i].Key() == key {
			return i
		}
	}
	return -1
}

func (s *Store) removeLogsLocked(habitIDs map[string]struct{}) {
	if len(habitIDs) == 0 {
		return
	}
	kept := s.logs[:0]
	for _, l := range s.logs {
		if _, drop := habitIDs[l.HabitID]; drop {
			continue
		}
		kept = append(kept, l)
	}
	s.logs = kept
}
