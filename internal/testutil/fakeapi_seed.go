package testutil

import (
	"time"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/models"
)

// SeedCategory stores c for user and returns it with its assigned id.
func (f *FakeAPI) SeedCategory(user string, c models.Category) models.Category {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c.ID == "" {
		c.ID = f.nextID("cat")
	}
	d := f.data(user)
	d.categories = append(d.categories, fakeCategory{
		ID: c.ID, Name: c.Name, Description: c.Description,
		Color: c.Color, Icon: c.Icon, Order: c.Order,
	})
	return c
}

// SeedHabit stores h for user and returns it with its assigned id.
func (f *FakeAPI) SeedHabit(user string, h models.Habit) models.Habit {
	f.mu.Lock()
	defer f.mu.Unlock()
	if h.ID == "" {
		h.ID = f.nextID("habit")
	}
	if h.Frequency == "" {
		h.Frequency = constants.FrequencyDaily
	}
	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now().UTC()
	}
	d := f.data(user)
	d.habits = append(d.habits, fakeHabit{
		ID: h.ID, Name: h.Name, Description: h.Description,
		Icon: h.Icon, Color: h.Color, Category: h.CategoryID,
		Frequency: string(h.Frequency),
		Reminder:  fakeReminder{Enabled: h.ReminderEnabled, Time: h.ReminderTime},
		CreatedAt: h.CreatedAt, Order: h.Order, IsActive: h.Active,
	})
	return h
}

// SeedLog stores l for user and returns it with its assigned id.
func (f *FakeAPI) SeedLog(user string, l models.HabitLog) models.HabitLog {
	f.mu.Lock()
	defer f.mu.Unlock()
	if l.ID == "" {
		l.ID = f.nextID("log")
	}
	fl := fakeLog{ID: l.ID, Habit: l.HabitID, Date: l.Date, Completed: l.Completed, Notes: l.Notes, Value: l.Value}
	if !l.Timestamp.IsZero() {
		ts := l.Timestamp
		fl.CompletedAt = &ts
	}
	d := f.data(user)
	d.logs = append(d.logs, fl)
	return l
}

// AddTemplate makes a habit template available to every user.
func (f *FakeAPI) AddTemplate(t models.HabitTemplate) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.templates = append(f.templates, fakeTemplate{
		ID: t.ID, Name: t.Name, Description: t.Description,
		Icon: t.Icon, Color: t.Color, Frequency: string(t.Frequency),
	})
}

// Logs returns the server-side logs of user.
func (f *FakeAPI) Logs(user string) []models.HabitLog {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.HabitLog
	for _, l := range f.data(user).logs {
		out = append(out, models.HabitLog{ID: l.ID, HabitID: l.Habit, Date: l.Date, Completed: l.Completed, Notes: l.Notes})
	}
	return out
}

// HabitCount returns how many habits user has on the server.
func (f *FakeAPI) HabitCount(user string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.data(user).habits)
}

// CategoryCount returns how many categories user has on the server.
func (f *FakeAPI) CategoryCount(user string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.data(user).categories)
}
