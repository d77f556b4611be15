package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/habitual/internal/constants"
)

// Category is a named, coloured grouping of habits
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color"`
	Icon        string `json:"icon"`
	Order       int    `json:"order"`
}

func (c *Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("category name cannot be empty")
	}
	return nil
}

// Habit represents a recurring practice to track
type Habit struct {
	ID              string              `json:"id"`
	Name            string              `json:"name"`
	Description     string              `json:"description,omitempty"`
	Icon            string              `json:"icon"`
	Color           string              `json:"color"`
	CategoryID      string              `json:"category_id"`
	Frequency       constants.Frequency `json:"frequency"`
	ReminderEnabled bool                `json:"reminder_enabled"`
	ReminderTime    string              `json:"reminder_time,omitempty"` // HH:MM format
	CreatedAt       time.Time           `json:"created_at"`
	Order           int                 `json:"order"`
	Active          bool                `json:"active"`
}

func (h *Habit) Validate() error {
	if strings.TrimSpace(h.Name) == "" {
		return fmt.Errorf("habit name cannot be empty")
	}
	if h.CategoryID == "" {
		return fmt.Errorf("habit must belong to a category")
	}
	if !ValidFrequency(h.Frequency) {
		return fmt.Errorf("invalid frequency %q (expected daily, weekly or monthly)", h.Frequency)
	}
	if h.ReminderTime != "" {
		if _, err := time.Parse(constants.TimeFormat, h.ReminderTime); err != nil {
			return fmt.Errorf("invalid reminder time (expected HH:MM): %w", err)
		}
	}
	if h.ReminderEnabled && h.ReminderTime == "" {
		return fmt.Errorf("reminder time is required when reminders are enabled")
	}
	return nil
}

// ValidFrequency reports whether f is one of the supported frequencies
func ValidFrequency(f constants.Frequency) bool {
	switch f {
	case constants.FrequencyDaily, constants.FrequencyWeekly, constants.FrequencyMonthly:
		return true
	}
	return false
}

// HabitLog is a single day's completion record for a habit.
// There is at most one log per (HabitID, Date).
type HabitLog struct {
	ID        string    `json:"id"`
	HabitID   string    `json:"habit_id"`
	Date      string    `json:"date"` // YYYY-MM-DD format
	Completed bool      `json:"completed"`
	Timestamp time.Time `json:"timestamp"`
	Notes     string    `json:"notes,omitempty"`
	Value     *float64  `json:"value,omitempty"`
}

// Key identifies the (habit, day) slot the log occupies
func (l HabitLog) Key() LogKey {
	return LogKey{HabitID: l.HabitID, Date: l.Date}
}

func (l *HabitLog) Validate() error {
	if l.HabitID == "" {
		return fmt.Errorf("log must reference a habit")
	}
	if _, err := time.Parse(constants.DateFormat, l.Date); err != nil {
		return fmt.Errorf("invalid date format (expected YYYY-MM-DD): %w", err)
	}
	return nil
}

// LogKey is the uniqueness key of a habit log
type LogKey struct {
	HabitID string
	Date    string
}

func (k LogKey) String() string {
	return k.HabitID + "@" + k.Date
}

// HabitTemplate is a server-side blueprint a habit can be created from
type HabitTemplate struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description,omitempty"`
	Icon        string              `json:"icon"`
	Color       string              `json:"color"`
	Frequency   constants.Frequency `json:"frequency"`
}
