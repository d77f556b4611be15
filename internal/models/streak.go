package models

// StreakData is derived from habit logs and never persisted
type StreakData struct {
	HabitID           string `json:"habit_id"`
	CurrentStreak     int    `json:"current_streak"`
	LongestStreak     int    `json:"longest_streak"`
	LastCompletedDate string `json:"last_completed_date,omitempty"` // YYYY-MM-DD format
}
