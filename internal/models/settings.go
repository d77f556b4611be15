package models

import (
	"fmt"
	"strconv"

	"github.com/julianstephens/habitual/internal/constants"
)

// Settings holds local, identity-independent preferences
type Settings struct {
	Theme    constants.Theme `json:"theme"`     // light, dark or system
	Timezone string          `json:"timezone"`  // IANA timezone name or "Local"
	LogLimit int             `json:"log_limit"` // most recent logs fetched per refresh
}

// MapToSettings converts a map of key-value pairs to a Settings struct.
func MapToSettings(data map[string]string) (Settings, error) {
	settings := Settings{}

	for key, value := range data {
		switch key {
		case constants.SettingTheme:
			settings.Theme = constants.Theme(value)
		case constants.SettingTimezone:
			settings.Timezone = value
		case constants.SettingLogLimit:
			n, err := strconv.Atoi(value)
			if err != nil {
				return Settings{}, fmt.Errorf("parsing log_limit: %w", err)
			}
			settings.LogLimit = n
		}
	}
	return settings, nil
}

// SettingsToMap converts a Settings struct to a map of key-value pairs.
func SettingsToMap(settings Settings) map[string]string {
	return map[string]string{
		constants.SettingTheme:    string(settings.Theme),
		constants.SettingTimezone: settings.Timezone,
		constants.SettingLogLimit: strconv.Itoa(settings.LogLimit),
	}
}

// ApplyDefaultSettings applies default values to missing settings.
func ApplyDefaultSettings(settings *Settings) {
	if settings.Theme == "" {
		settings.Theme = constants.DefaultTheme
	}
	if settings.Timezone == "" {
		settings.Timezone = constants.DefaultTimezone
	}
	if settings.LogLimit <= 0 {
		settings.LogLimit = constants.DefaultLogLimit
	}
}

// ValidTheme reports whether t is a supported theme
func ValidTheme(t constants.Theme) bool {
	switch t {
	case constants.ThemeLight, constants.ThemeDark, constants.ThemeSystem:
		return true
	}
	return false
}
