package remote

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/habitual/internal/constants"
)

func TestRefUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare id", `"abc"`, "abc"},
		{"populated", `{"_id":"abc","name":"Health"}`, "abc"},
		{"null", `null`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r ref
			require.NoError(t, json.Unmarshal([]byte(tt.in), &r))
			assert.Equal(t, tt.want, string(r))
		})
	}

	var r ref
	assert.Error(t, json.Unmarshal([]byte(`42`), &r))
}

func TestWireHabitDefaults(t *testing.T) {
	var w wireHabit
	require.NoError(t, json.Unmarshal([]byte(`{"_id":"h1","name":"Run","category":{"_id":"c1"}}`), &w))
	h := w.model()
	assert.Equal(t, "c1", h.CategoryID)
	assert.True(t, h.Active, "habits without isActive are active")
	assert.Equal(t, constants.FrequencyDaily, h.Frequency)
	assert.False(t, h.ReminderEnabled)
}

func TestWireLogModel(t *testing.T) {
	tests := []struct {
		name    string
		date    string
		want    string
		wantErr bool
	}{
		{"plain day", "2026-03-20", "2026-03-20", false},
		{"iso timestamp", "2026-03-20T00:00:00.000Z", "2026-03-20", false},
		{"offset timestamp", "2026-03-20T23:30:00-05:00", "2026-03-20", false},
		{"garbage", "yesterday", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := wireLog{ID: "l1", Habit: "h1", Date: tt.date}.model()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, l.Date)
			assert.Equal(t, "h1", l.HabitID)
		})
	}
}
