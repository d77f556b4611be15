package constants

import "time"

const (
	AppName            = "habitual"
	DefaultKeyringUser = "session-token"
	DefaultConfigPath  = "~/.config/habitual/habitual.db"
	DefaultTokenFile   = "~/.config/habitual/session.jwt"
	Version            = "v0.3.0"

	// DateFormat is the calendar-day format used for habit logs (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the reminder time format (HH:MM)
	TimeFormat = "15:04"

	// Remote API defaults
	DefaultAPIURL      = "http://localhost:5000/api"
	DefaultHTTPTimeout = 15 * time.Second
	DefaultLogLimit    = 1000
	RequestIDHeader    = "X-Request-ID"

	// Log file constants
	LogDirName  = "logs"
	LogFileName = "habitual.log"
)

// Frequency is how often a habit is meant to be performed
type Frequency string

// BadgeType selects which rule family a catalog badge belongs to
type BadgeType string

// Theme is the local colour scheme preference
type Theme string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"

	BadgeTypeStreak   BadgeType = "streak"
	BadgeTypeCategory BadgeType = "category"
	BadgeTypeTotal    BadgeType = "total"

	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)
