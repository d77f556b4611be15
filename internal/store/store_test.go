package store

import (
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/streak"
)

func seeded(t *testing.T) *Store {
	t.Helper()
	s := New()
	cats := []models.Category{{ID: "c1", Name: "Health"}, {ID: "c2", Name: "Work", Order: 1}}
	habits := []models.Habit{
		{ID: "h1", Name: "Run", CategoryID: "c1"},
		{ID: "h2", Name: "Stretch", CategoryID: "c1", Order: 1},
		{ID: "h3", Name: "Inbox zero", CategoryID: "c2"},
	}
	logs := []models.HabitLog{
		{ID: "l1", HabitID: "h1", Date: "2026-03-19", Completed: true},
		{ID: "l2", HabitID: "h2", Date: "2026-03-19", Completed: true},
		{ID: "l3", HabitID: "h3", Date: "2026-03-19", Completed: true},
	}
	if err := s.ApplySnapshot(s.Epoch(), cats, habits, logs); err != nil {
		t.Fatalf("ApplySnapshot() error = %v", err)
	}
	return s
}

func TestApplySnapshot_StaleEpoch(t *testing.T) {
	s := New()
	epoch := s.Epoch()
	s.Clear()

	err := s.ApplySnapshot(epoch, []models.Category{{ID: "c1"}}, nil, nil)
	if !errors.Is(err, ErrStaleEpoch) {
		t.Fatalf("ApplySnapshot() error = %v, want ErrStaleEpoch", err)
	}
	if got := s.Categories(); len(got) != 0 {
		t.Errorf("stale snapshot was applied: %+v", got)
	}
}

func TestApplySnapshot_CollapsesDuplicateLogs(t *testing.T) {
	morning := time.Date(2026, 3, 20, 8, 0, 0, 0, time.UTC)
	evening := morning.Add(12 * time.Hour)

	tests := []struct {
		name   string
		logs   []models.HabitLog
		wantID string
	}{
		{
			name: "completed after incomplete",
			logs: []models.HabitLog{
				{ID: "a", HabitID: "h1", Date: "2026-03-20", Completed: false},
				{ID: "b", HabitID: "h1", Date: "2026-03-20", Completed: true},
			},
			wantID: "b",
		},
		{
			name: "completed before incomplete",
			logs: []models.HabitLog{
				{ID: "b", HabitID: "h1", Date: "2026-03-20", Completed: true, Timestamp: morning},
				{ID: "a", HabitID: "h1", Date: "2026-03-20", Completed: false, Timestamp: evening},
			},
			wantID: "b",
		},
		{
			name: "newest completed wins",
			logs: []models.HabitLog{
				{ID: "late", HabitID: "h1", Date: "2026-03-20", Completed: true, Timestamp: evening},
				{ID: "early", HabitID: "h1", Date: "2026-03-20", Completed: true, Timestamp: morning},
			},
			wantID: "late",
		},
		{
			name: "equal timestamps keep the later entry",
			logs: []models.HabitLog{
				{ID: "first", HabitID: "h1", Date: "2026-03-20", Completed: false},
				{ID: "second", HabitID: "h1", Date: "2026-03-20", Completed: false},
			},
			wantID: "second",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			if err := s.ApplySnapshot(s.Epoch(), nil, nil, tt.logs); err != nil {
				t.Fatal(err)
			}
			got := s.Logs()
			if len(got) != 1 || got[0].ID != tt.wantID {
				t.Errorf("Logs() = %+v, want only log %s", got, tt.wantID)
			}
		})
	}
}

func TestApplySnapshot_DuplicateKeepsStreak(t *testing.T) {
	s := New()
	habits := []models.Habit{{ID: "h1", Name: "Run", CategoryID: "c1", Active: true}}
	logs := []models.HabitLog{
		{ID: "b", HabitID: "h1", Date: "2026-03-20", Completed: true},
		{ID: "a", HabitID: "h1", Date: "2026-03-20", Completed: false},
		{ID: "c", HabitID: "h1", Date: "2026-03-19", Completed: true},
	}
	if err := s.ApplySnapshot(s.Epoch(), nil, habits, logs); err != nil {
		t.Fatal(err)
	}

	got := streak.Compute(s.Habits(), s.Logs(), "2026-03-20")["h1"]
	if got.CurrentStreak != 2 || got.LastCompletedDate != "2026-03-20" {
		t.Errorf("streak after collapse = %+v, want current 2 ending today", got)
	}
}

func TestClear(t *testing.T) {
	s := seeded(t)
	s.SetLoading(true)
	s.SetSwitching(true)
	s.AddBadges([]models.UserBadge{{BadgeID: "total-1"}})
	before := s.Epoch()

	after := s.Clear()
	if after <= before {
		t.Errorf("Clear() epoch = %d, want > %d", after, before)
	}
	snap := s.Snapshot()
	if len(snap.Categories)+len(snap.Habits)+len(snap.Logs)+len(snap.Badges) != 0 {
		t.Errorf("Clear() left data behind: %+v", snap)
	}
	if s.Loading() || s.Switching() {
		t.Error("Clear() did not reset flags")
	}
}

func TestRemoveCategory_Cascades(t *testing.T) {
	s := seeded(t)

	removed := s.RemoveCategory("c1")
	sort.Strings(removed)
	if len(removed) != 2 || removed[0] != "h1" || removed[1] != "h2" {
		t.Errorf("RemoveCategory() removed = %v, want [h1 h2]", removed)
	}

	snap := s.Snapshot()
	for _, h := range snap.Habits {
		if h.CategoryID == "c1" {
			t.Errorf("habit %s of removed category survived", h.ID)
		}
	}
	for _, l := range snap.Logs {
		if l.HabitID == "h1" || l.HabitID == "h2" {
			t.Errorf("log %s of removed habit survived", l.ID)
		}
	}
	if len(snap.Logs) != 1 || snap.Logs[0].HabitID != "h3" {
		t.Errorf("unrelated logs were touched: %+v", snap.Logs)
	}
	if got := s.RemoveCategory("missing"); got != nil {
		t.Errorf("RemoveCategory(missing) = %v, want nil", got)
	}
}

func TestRemoveHabit_CascadesLogs(t *testing.T) {
	s := seeded(t)
	if !s.RemoveHabit("h1") {
		t.Fatal("RemoveHabit(h1) = false")
	}
	if _, ok := s.FindLog("h1", "2026-03-19"); ok {
		t.Error("log of removed habit still present")
	}
	if s.RemoveHabit("h1") {
		t.Error("second RemoveHabit(h1) = true")
	}
}

func TestPutLog_NeverDuplicatesKey(t *testing.T) {
	tests := []struct {
		name string
		put  []models.HabitLog
		want models.HabitLog
	}{
		{
			name: "same id updates in place",
			put:  []models.HabitLog{{ID: "l1", HabitID: "h1", Date: "2026-03-19", Completed: false}},
			want: models.HabitLog{ID: "l1", HabitID: "h1", Date: "2026-03-19", Completed: false},
		},
		{
			name: "new id on existing key replaces",
			put:  []models.HabitLog{{ID: "server", HabitID: "h1", Date: "2026-03-19", Completed: true}},
			want: models.HabitLog{ID: "server", HabitID: "h1", Date: "2026-03-19", Completed: true},
		},
		{
			name: "empty id on existing key replaces",
			put:  []models.HabitLog{{HabitID: "h1", Date: "2026-03-19", Completed: false}},
			want: models.HabitLog{HabitID: "h1", Date: "2026-03-19", Completed: false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := seeded(t)
			for _, l := range tt.put {
				s.PutLog(l)
			}
			count := 0
			for _, l := range s.Logs() {
				if l.Key() == tt.want.Key() {
					count++
				}
			}
			if count != 1 {
				t.Fatalf("found %d logs for %s, want 1", count, tt.want.Key())
			}
			got, _ := s.FindLog("h1", "2026-03-19")
			if got.ID != tt.want.ID || got.Completed != tt.want.Completed {
				t.Errorf("FindLog() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestPutLog_ConcurrentSameKey(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.PutLog(models.HabitLog{HabitID: "h1", Date: "2026-03-20", Completed: i%2 == 0})
		}(i)
	}
	wg.Wait()
	if n := len(s.Logs()); n != 1 {
		t.Errorf("len(Logs()) = %d, want 1", n)
	}
}

func TestAddBadges_Dedupes(t *testing.T) {
	s := New()
	first := s.AddBadges([]models.UserBadge{
		{BadgeID: "streak-3", HabitID: "h1"},
		{BadgeID: "streak-3", HabitID: "h2"},
		{BadgeID: "streak-3", HabitID: "h1"},
	})
	if len(first) != 2 {
		t.Errorf("AddBadges() added %d, want 2", len(first))
	}
	version := s.Version()
	if again := s.AddBadges([]models.UserBadge{{BadgeID: "streak-3", HabitID: "h1"}}); len(again) != 0 {
		t.Errorf("AddBadges() re-added %+v", again)
	}
	if s.Version() != version {
		t.Error("no-op AddBadges bumped the version")
	}
}

func TestReorder(t *testing.T) {
	s := seeded(t)
	s.ReorderCategories([]string{"c2", "c1"})
	c1, _ := s.Category("c1")
	c2, _ := s.Category("c2")
	if c2.Order != 0 || c1.Order != 1 {
		t.Errorf("category orders = c1:%d c2:%d, want c1:1 c2:0", c1.Order, c2.Order)
	}

	s.ReorderHabits("c1", []string{"h2", "h1", "h3"})
	h1, _ := s.Habit("h1")
	h2, _ := s.Habit("h2")
	h3, _ := s.Habit("h3")
	if h2.Order != 0 || h1.Order != 1 {
		t.Errorf("habit orders = h1:%d h2:%d, want h1:1 h2:0", h1.Order, h2.Order)
	}
	if h3.Order != 0 {
		t.Errorf("habit outside category reordered: h3.Order = %d", h3.Order)
	}
	if got := s.NextHabitOrder("c1"); got != 2 {
		t.Errorf("NextHabitOrder(c1) = %d, want 2", got)
	}
	if got := s.NextCategoryOrder(); got != 2 {
		t.Errorf("NextCategoryOrder() = %d, want 2", got)
	}
}

func TestSnapshot_IsACopy(t *testing.T) {
	s := seeded(t)
	v := 2.5
	s.PutLog(models.HabitLog{ID: "l1", HabitID: "h1", Date: "2026-03-19", Completed: true, Value: &v})

	snap := s.Snapshot()
	snap.Categories[0].Name = "mutated"
	for i := range snap.Logs {
		if snap.Logs[i].Value != nil {
			*snap.Logs[i].Value = 99
		}
	}

	c, _ := s.Category(snap.Categories[0].ID)
	if c.Name == "mutated" {
		t.Error("Snapshot() shares category storage")
	}
	l, _ := s.FindLog("h1", "2026-03-19")
	if l.Value == nil || *l.Value != 2.5 {
		t.Errorf("Snapshot() shares log values: %+v", l.Value)
	}
}

func TestUpdate_EpochGuard(t *testing.T) {
	s := seeded(t)
	epoch := s.Epoch()

	err := s.Update(epoch, func(tx *Tx) {
		tx.PutCategory(models.Category{ID: "c3", Name: "Play"})
		tx.PutHabit(models.Habit{ID: "h4", Name: "Chess", CategoryID: "c3"})
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if _, ok := s.Habit("h4"); !ok {
		t.Error("Update() did not commit")
	}

	s.Clear()
	called := false
	err = s.Update(epoch, func(tx *Tx) { called = true })
	if !errors.Is(err, ErrStaleEpoch) {
		t.Errorf("Update() with old epoch error = %v, want ErrStaleEpoch", err)
	}
	if called {
		t.Error("Update() ran the callback for a stale epoch")
	}
}
