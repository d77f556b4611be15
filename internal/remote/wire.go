package remote

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/utils"
)

// ref is a document reference that the API sends either as a bare id or as
// a populated object with an _id field.
type ref string

func (r *ref) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*r = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*r = ref(s)
		return nil
	}
	var obj struct {
		ID string `json:"_id"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return fmt.Errorf("reference is neither an id nor a document: %w", err)
	}
	*r = ref(obj.ID)
	return nil
}

type wireCategory struct {
	ID          string `json:"_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color"`
	Icon        string `json:"icon"`
	Order       int    `json:"order"`
}

func (w wireCategory) model() models.Category {
	return models.Category{
		ID:          w.ID,
		Name:        w.Name,
		Description: w.Description,
		Color:       w.Color,
		Icon:        w.Icon,
		Order:       w.Order,
	}
}

type categoryBody struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
	Icon        string `json:"icon,omitempty"`
	Order       int    `json:"order"`
}

func categoryPayload(c models.Category) categoryBody {
	return categoryBody{
		Name:        c.Name,
		Description: c.Description,
		Color:       c.Color,
		Icon:        c.Icon,
		Order:       c.Order,
	}
}

type wireReminder struct {
	Enabled bool   `json:"enabled"`
	Time    string `json:"time,omitempty"`
}

type wireHabit struct {
	ID          string              `json:"_id"`
	Name        string              `json:"name"`
	Description string              `json:"description,omitempty"`
	Icon        string              `json:"icon"`
	Color       string              `json:"color"`
	Category    ref                 `json:"category"`
	Frequency   constants.Frequency `json:"frequency"`
	Reminder    *wireReminder       `json:"reminder,omitempty"`
	CreatedAt   *time.Time          `json:"createdAt,omitempty"`
	Order       int                 `json:"order"`
	IsActive    *bool               `json:"isActive,omitempty"`
}

func (w wireHabit) model() models.Habit {
	h := models.Habit{
		ID:          w.ID,
		Name:        w.Name,
		Description: w.Description,
		Icon:        w.Icon,
		Color:       w.Color,
		CategoryID:  string(w.Category),
		Frequency:   w.Frequency,
		Order:       w.Order,
		Active:      true,
	}
	if h.Frequency == "" {
		h.Frequency = constants.FrequencyDaily
	}
	if w.Reminder != nil {
		h.ReminderEnabled = w.Reminder.Enabled
		h.ReminderTime = w.Reminder.Time
	}
	if w.CreatedAt != nil {
		h.CreatedAt = *w.CreatedAt
	}
	if w.IsActive != nil {
		h.Active = *w.IsActive
	}
	return h
}

type habitBody struct {
	Name        string              `json:"name"`
	Description string              `json:"description,omitempty"`
	Icon        string              `json:"icon,omitempty"`
	Color       string              `json:"color,omitempty"`
	Category    string              `json:"category"`
	Frequency   constants.Frequency `json:"frequency"`
	Reminder    wireReminder        `json:"reminder"`
	Order       int                 `json:"order"`
	IsActive    bool                `json:"isActive"`
}

func habitPayload(h models.Habit) habitBody {
	return habitBody{
		Name:        h.Name,
		Description: h.Description,
		Icon:        h.Icon,
		Color:       h.Color,
		Category:    h.CategoryID,
		Frequency:   h.Frequency,
		Reminder:    wireReminder{Enabled: h.ReminderEnabled, Time: h.ReminderTime},
		Order:       h.Order,
		IsActive:    h.Active,
	}
}

type wireLog struct {
	ID          string     `json:"_id"`
	Habit       ref        `json:"habit"`
	Date        string     `json:"date"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	Value       *float64   `json:"value,omitempty"`
}

// model maps a wire log, truncating a timestamp date to its calendar day.
func (w wireLog) model() (models.HabitLog, error) {
	day, err := utils.NormalizeDate(w.Date)
	if err != nil {
		return models.HabitLog{}, fmt.Errorf("log %s: %w", w.ID, err)
	}
	l := models.HabitLog{
		ID:        w.ID,
		HabitID:   string(w.Habit),
		Date:      day,
		Completed: w.Completed,
		Notes:     w.Notes,
		Value:     w.Value,
	}
	if w.CompletedAt != nil {
		l.Timestamp = *w.CompletedAt
	}
	return l, nil
}

func logModels(in []wireLog) ([]models.HabitLog, error) {
	out := make([]models.HabitLog, 0, len(in))
	for _, w := range in {
		l, err := w.model()
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

type logBody struct {
	Habit       string     `json:"habit"`
	Date        string     `json:"date"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	Value       *float64   `json:"value,omitempty"`
}

func logPayload(l models.HabitLog) logBody {
	b := logBody{
		Habit:     l.HabitID,
		Date:      l.Date,
		Completed: l.Completed,
		Notes:     l.Notes,
		Value:     l.Value,
	}
	if !l.Timestamp.IsZero() {
		ts := l.Timestamp
		b.CompletedAt = &ts
	}
	return b
}

type wireTemplate struct {
	ID          string              `json:"_id"`
	Name        string              `json:"name"`
	Description string              `json:"description,omitempty"`
	Icon        string              `json:"icon"`
	Color       string              `json:"color"`
	Frequency   constants.Frequency `json:"frequency"`
}

func (w wireTemplate) model() models.HabitTemplate {
	return models.HabitTemplate{
		ID:          w.ID,
		Name:        w.Name,
		Description: w.Description,
		Icon:        w.Icon,
		Color:       w.Color,
		Frequency:   w.Frequency,
	}
}
