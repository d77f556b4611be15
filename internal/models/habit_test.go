package models

import (
	"testing"
	"time"

	"github.com/julianstephens/habitual/internal/constants"
)

func TestHabit_Validate(t *testing.T) {
	tests := []struct {
		name    string
		habit   Habit
		wantErr bool
	}{
		{
			name: "valid daily habit",
			habit: Habit{
				Name:       "Read",
				CategoryID: "cat-1",
				Frequency:  constants.FrequencyDaily,
				CreatedAt:  time.Now(),
			},
			wantErr: false,
		},
		{
			name: "valid habit with reminder",
			habit: Habit{
				Name:            "Stretch",
				CategoryID:      "cat-1",
				Frequency:       constants.FrequencyWeekly,
				ReminderEnabled: true,
				ReminderTime:    "07:30",
			},
			wantErr: false,
		},
		{
			name:    "empty name",
			habit:   Habit{Name: "  ", CategoryID: "cat-1", Frequency: constants.FrequencyDaily},
			wantErr: true,
		},
		{
			name:    "missing category",
			habit:   Habit{Name: "Read", Frequency: constants.FrequencyDaily},
			wantErr: true,
		},
		{
			name:    "unknown frequency",
			habit:   Habit{Name: "Read", CategoryID: "cat-1", Frequency: "hourly"},
			wantErr: true,
		},
		{
			name:    "invalid reminder time",
			habit:   Habit{Name: "Read", CategoryID: "cat-1", Frequency: constants.FrequencyDaily, ReminderTime: "25:00"},
			wantErr: true,
		},
		{
			name:    "reminder enabled without time",
			habit:   Habit{Name: "Read", CategoryID: "cat-1", Frequency: constants.FrequencyDaily, ReminderEnabled: true},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.habit.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Habit.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCategory_Validate(t *testing.T) {
	valid := Category{Name: "Health"}
	if err := valid.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	empty := Category{Name: "   "}
	if err := empty.Validate(); err == nil {
		t.Error("expected error for blank category name")
	}
}

func TestHabitLog_Validate(t *testing.T) {
	tests := []struct {
		name    string
		log     HabitLog
		wantErr bool
	}{
		{name: "valid", log: HabitLog{HabitID: "h1", Date: "2026-01-15"}, wantErr: false},
		{name: "missing habit", log: HabitLog{Date: "2026-01-15"}, wantErr: true},
		{name: "timestamp instead of day", log: HabitLog{HabitID: "h1", Date: "2026-01-15T10:00:00Z"}, wantErr: true},
		{name: "slashes", log: HabitLog{HabitID: "h1", Date: "2026/01/15"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.log.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("HabitLog.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestUserBadge_Key(t *testing.T) {
	tests := []struct {
		name  string
		badge UserBadge
		want  BadgeKey
	}{
		{name: "habit scope", badge: UserBadge{BadgeID: "streak-7", HabitID: "h1"}, want: BadgeKey{"streak-7", "h1"}},
		{name: "category scope", badge: UserBadge{BadgeID: "cat-10", CategoryID: "c1"}, want: BadgeKey{"cat-10", "c1"}},
		{name: "global", badge: UserBadge{BadgeID: "total-100"}, want: BadgeKey{"total-100", ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.badge.Key(); got != tt.want {
				t.Errorf("Key() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSettingsMapping(t *testing.T) {
	settings, err := MapToSettings(map[string]string{
		constants.SettingTheme:    "dark",
		constants.SettingTimezone: "Europe/London",
		constants.SettingLogLimit: "250",
		"unknown":                 "ignored",
	})
	if err != nil {
		t.Fatalf("MapToSettings() error = %v", err)
	}
	if settings.Theme != constants.ThemeDark || settings.Timezone != "Europe/London" || settings.LogLimit != 250 {
		t.Errorf("unexpected settings: %+v", settings)
	}

	back := SettingsToMap(settings)
	if back[constants.SettingLogLimit] != "250" {
		t.Errorf("SettingsToMap() log_limit = %q", back[constants.SettingLogLimit])
	}

	if _, err := MapToSettings(map[string]string{constants.SettingLogLimit: "many"}); err == nil {
		t.Error("expected error for non-numeric log_limit")
	}

	var empty Settings
	ApplyDefaultSettings(&empty)
	if empty.Theme != constants.DefaultTheme || empty.Timezone != constants.DefaultTimezone || empty.LogLimit != constants.DefaultLogLimit {
		t.Errorf("defaults not applied: %+v", empty)
	}
}
