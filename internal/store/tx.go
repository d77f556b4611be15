package store

import "github.com/julianstephens/habitual/internal/models"

// Tx applies several mutations under one write lock. It is only valid
// inside the Update callback.
type Tx struct {
	s *Store
}

// Update runs fn under the write lock if epoch is still current. Results of
// remote calls started before an identity change are committed this way so
// they cannot leak into the next session.
func (s *Store) Update(epoch uint64, fn func(tx *Tx)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch {
		return ErrStaleEpoch
	}
	fn(&Tx{s: s})
	return nil
}

func (tx *Tx) PutCategory(c models.Category) {
	tx.s.putCategoryLocked(c)
}

func (tx *Tx) RemoveCategory(id string) []string {
	return tx.s.removeCategoryLocked(id)
}

func (tx *Tx) ReorderCategories(ids []string) {
	tx.s.reorderCategoriesLocked(ids)
}

func (tx *Tx) PutHabit(h models.Habit) {
	tx.s.putHabitLocked(h)
}

func (tx *Tx) RemoveHabit(id string) bool {
	return tx.s.removeHabitLocked(id)
}

func (tx *Tx) PutLog(l models.HabitLog) {
	tx.s.putLogLocked(l)
}

// RemoveLog deletes the log with the given id.
func (tx *Tx) RemoveLog(id string) bool {
	return tx.s.removeLogLocked(id)
}

func (tx *Tx) ReorderHabits(categoryID string, ids []string) {
	tx.s.reorderHabitsLocked(categoryID, ids)
}

func (tx *Tx) AddBadges(badges []models.UserBadge) []models.UserBadge {
	return tx.s.addBadgesLocked(badges)
}

func (s *Store) putCategoryLocked(c models.Category) {
	if i := s.categoryIndex(c.ID); i >= 0 {
		s.categories[i] = c
	} else {
		s.categories = append(s.categories, c)
	}
	s.version++
}

func (s *Store) removeCategoryLocked(id string) []string {
	i := s.categoryIndex(id)
	if i < 0 {
		return nil
	}
	s.categories = append(s.categories[:i], s.categories[i+1:]...)

	removed := make(map[string]struct{})
	kept := s.habits[:0]
	for _, h := range s.habits {
		if h.CategoryID == id {
			removed[h.ID] = struct{}{}
			continue
		}
		kept = append(kept, h)
	}
	s.habits = kept
	s.removeLogsLocked(removed)
	s.version++

	ids := make([]string, 0, len(removed))
	for hid := range removed {
		ids = append(ids, hid)
	}
	return ids
}

func (s *Store) reorderCategoriesLocked(ids []string) {
	for order, id := range ids {
		if i := s.categoryIndex(id); i >= 0 {
			s.categories[i].Order = order
		}
	}
	s.version++
}

func (s *Store) putHabitLocked(h models.Habit) {
	if i := s.habitIndex(h.ID); i >= 0 {
		s.habits[i] = h
	} else {
		s.habits = append(s.habits, h)
	}
	s.version++
}

func (s *Store) removeHabitLocked(id string) bool {
	i := s.habitIndex(id)
	if i < 0 {
		return false
	}
	s.habits = append(s.habits[:i], s.habits[i+1:]...)
	s.removeLogsLocked(map[string]struct{}{id: {}})
	s.version++
	return true
}

func (s *Store) reorderHabitsLocked(categoryID string, ids []string) {
	for order, id := range ids {
		if i := s.habitIndex(id); i >= 0 && s.habits[i].CategoryID == categoryID {
			s.habits[i].Order = order
		}
	}
	s.version++
}

func (s *Store) putLogLocked(l models.HabitLog) {
	l = cloneLog(l)
	i := -1
	if l.ID != "" {
		i = s.logIndex(l.ID)
	}
	if i < 0 {
		i = s.logKeyIndex(l.Key())
	}
	if i >= 0 {
		s.logs[i] = l
		// An id match may have moved the log onto a key another entry holds
		if j := s.logKeyIndexExcept(l.Key(), i); j >= 0 {
			s.logs = append(s.logs[:j], s.logs[j+1:]...)
		}
	} else {
		s.logs = append(s.logs, l)
	}
	s.version++
}

func (s *Store) removeLogLocked(id string) bool {
	i := s.logIndex(id)
	if i < 0 {
		return false
	}
	s.logs = append(s.logs[:i], s.logs[i+1:]...)
	s.version++
	return true
}

func (s *Store) addBadgesLocked(badges []models.UserBadge) []models.UserBadge {
	have := make(map[models.BadgeKey]struct{}, len(s.badges))
	for _, b := range s.badges {
		have[b.Key()] = struct{}{}
	}
	var added []models.UserBadge
	for _, b := range badges {
		if _, ok := have[b.Key()]; ok {
			continue
		}
		have[b.Key()] = struct{}{}
		s.badges = append(s.badges, b)
		added = append(added, b)
	}
	if len(added) > 0 {
		s.version++
	}
	return added
}
