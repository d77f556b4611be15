package constants

const (
	// Local settings keys
	SettingTheme    = "theme"
	SettingTimezone = "timezone"
	SettingLogLimit = "log_limit"

	// Default settings values
	DefaultTheme    = ThemeSystem
	DefaultTimezone = "Local" // Use system local timezone by default
)
