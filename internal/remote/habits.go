package remote

import (
	"context"
	"net/http"
	"net/url"
	"sort"
	"strconv"

	"github.com/julianstephens/habitual/internal/constants"
	apperrors "github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/models"
)

// HabitFilter narrows ListHabits. Zero fields do not filter.
type HabitFilter struct {
	Active     *bool
	CategoryID string
	Frequency  constants.Frequency
}

func (f HabitFilter) query() url.Values {
	q := url.Values{}
	if f.Active != nil {
		q.Set("active", strconv.FormatBool(*f.Active))
	}
	if f.CategoryID != "" {
		q.Set("category", f.CategoryID)
	}
	if f.Frequency != "" {
		q.Set("frequency", string(f.Frequency))
	}
	return q
}

func (c *Client) ListHabits(ctx context.Context, filter HabitFilter) ([]models.Habit, error) {
	const op = "habits.list"
	if filter.Frequency != "" && !models.ValidFrequency(filter.Frequency) {
		return nil, apperrors.Validation(op, "invalid frequency %q", filter.Frequency)
	}
	var wire []wireHabit
	if err := c.do(ctx, op, http.MethodGet, "/habits", filter.query(), nil, &wire); err != nil {
		return nil, err
	}
	out := make([]models.Habit, 0, len(wire))
	for _, w := range wire {
		out = append(out, w.model())
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (c *Client) CreateHabit(ctx context.Context, h models.Habit) (models.Habit, error) {
	const op = "habits.create"
	if err := h.Validate(); err != nil {
		return models.Habit{}, apperrors.Validation(op, "%v", err)
	}
	var w wireHabit
	if err := c.do(ctx, op, http.MethodPost, "/habits", nil, habitPayload(h), &w); err != nil {
		return models.Habit{}, err
	}
	return w.model(), nil
}

func (c *Client) UpdateHabit(ctx context.Context, h models.Habit) (models.Habit, error) {
	const op = "habits.update"
	if err := requireID(op, "habit", h.ID); err != nil {
		return models.Habit{}, err
	}
	if err := h.Validate(); err != nil {
		return models.Habit{}, apperrors.Validation(op, "%v", err)
	}
	var w wireHabit
	if err := c.do(ctx, op, http.MethodPut, "/habits/"+h.ID, nil, habitPayload(h), &w); err != nil {
		return models.Habit{}, err
	}
	return w.model(), nil
}

// DeleteHabit deletes a habit. The API removes its logs.
func (c *Client) DeleteHabit(ctx context.Context, id string) error {
	const op = "habits.delete"
	if err := requireID(op, "habit", id); err != nil {
		return err
	}
	return c.do(ctx, op, http.MethodDelete, "/habits/"+id, nil, nil, nil)
}

func (c *Client) ReorderHabits(ctx context.Context, categoryID string, ids []string) error {
	const op = "habits.reorder"
	if err := requireID(op, "category", categoryID); err != nil {
		return err
	}
	if len(ids) == 0 {
		return apperrors.Validation(op, "no habits to reorder")
	}
	body := struct {
		CategoryID string   `json:"categoryId"`
		HabitIDs   []string `json:"habitIds"`
	}{categoryID, ids}
	return c.do(ctx, op, http.MethodPut, "/habits/reorder", nil, body, nil)
}

func (c *Client) ListTemplates(ctx context.Context) ([]models.HabitTemplate, error) {
	var wire []wireTemplate
	if err := c.do(ctx, "habits.templates", http.MethodGet, "/habits/templates", nil, nil, &wire); err != nil {
		return nil, err
	}
	out := make([]models.HabitTemplate, 0, len(wire))
	for _, w := range wire {
		out = append(out, w.model())
	}
	return out, nil
}

// CreateHabitFromTemplate asks the API to create a habit in categoryID from
// a server-side template.
func (c *Client) CreateHabitFromTemplate(ctx context.Context, templateID, categoryID string) (models.Habit, error) {
	const op = "habits.from_template"
	if err := requireID(op, "template", templateID); err != nil {
		return models.Habit{}, err
	}
	if err := requireID(op, "category", categoryID); err != nil {
		return models.Habit{}, err
	}
	body := struct {
		CategoryID string `json:"categoryId"`
	}{categoryID}
	var w wireHabit
	if err := c.do(ctx, op, http.MethodPost, "/habits/templates/"+templateID, nil, body, &w); err != nil {
		return models.Habit{}, err
	}
	return w.model(), nil
}
