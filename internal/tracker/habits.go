package tracker

import (
	"context"
	"fmt"

	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/store"
)

// AddHabit creates a habit at the end of its category.
func (t *Tracker) AddHabit(ctx context.Context, h models.Habit) (models.Habit, error) {
	const action = "add habit"
	if err := h.Validate(); err != nil {
		return models.Habit{}, invalid(action, "%v", err)
	}
	if _, ok := t.store.Category(h.CategoryID); !ok {
		return models.Habit{}, invalid(action, "unknown category %q", h.CategoryID)
	}
	h.ID = ""
	h.Order = t.store.NextHabitOrder(h.CategoryID)
	epoch := t.store.Epoch()

	created, err := t.api.CreateHabit(ctx, h)
	if err != nil {
		return models.Habit{}, wrap(action, err)
	}
	if err := t.store.Update(epoch, func(tx *store.Tx) { tx.PutHabit(created) }); err != nil {
		return models.Habit{}, wrap(action, err)
	}
	t.recompute()
	t.log.Info("habit added", "id", created.ID, "name", created.Name)
	return created, nil
}

// UpdateHabit saves changes to a habit. Moving it to another category puts
// it at the end of that category.
func (t *Tracker) UpdateHabit(ctx context.Context, h models.Habit) (models.Habit, error) {
	const action = "update habit"
	existing, ok := t.store.Habit(h.ID)
	if !ok {
		return models.Habit{}, invalid(action, "unknown habit %q", h.ID)
	}
	if err := h.Validate(); err != nil {
		return models.Habit{}, invalid(action, "%v", err)
	}
	if _, ok := t.store.Category(h.CategoryID); !ok {
		return models.Habit{}, invalid(action, "unknown category %q", h.CategoryID)
	}
	if h.CategoryID == existing.CategoryID {
		h.Order = existing.Order
	} else {
		h.Order = t.store.NextHabitOrder(h.CategoryID)
	}
	h.CreatedAt = existing.CreatedAt
	epoch := t.store.Epoch()

	updated, err := t.api.UpdateHabit(ctx, h)
	if err != nil {
		return models.Habit{}, wrap(action, err)
	}
	if err := t.store.Update(epoch, func(tx *store.Tx) { tx.PutHabit(updated) }); err != nil {
		return models.Habit{}, wrap(action, err)
	}
	t.recompute()
	return updated, nil
}

// DeleteHabit deletes a habit and its logs.
func (t *Tracker) DeleteHabit(ctx context.Context, id string) error {
	const action = "delete habit"
	if _, ok := t.store.Habit(id); !ok {
		return invalid(action, "unknown habit %q", id)
	}
	epoch := t.store.Epoch()

	if err := t.api.DeleteHabit(ctx, id); err != nil {
		return wrap(action, err)
	}
	if err := t.store.Update(epoch, func(tx *store.Tx) { tx.RemoveHabit(id) }); err != nil {
		return wrap(action, err)
	}
	t.recompute()
	t.log.Info("habit deleted", "id", id)
	return nil
}

// ReorderHabits sets the order of the habits in one category. ids must list
// every habit of the category exactly once.
func (t *Tracker) ReorderHabits(ctx context.Context, categoryID string, ids []string) error {
	const action = "reorder habits"
	if _, ok := t.store.Category(categoryID); !ok {
		return invalid(action, "unknown category %q", categoryID)
	}
	known := make(map[string]struct{})
	for _, h := range t.store.Habits() {
		if h.CategoryID == categoryID {
			known[h.ID] = struct{}{}
		}
	}
	if err := samePermutation(known, ids); err != nil {
		return invalid(action, "%v", err)
	}
	epoch := t.store.Epoch()

	if err := t.api.ReorderHabits(ctx, categoryID, ids); err != nil {
		return wrap(action, err)
	}
	if err := t.store.Update(epoch, func(tx *store.Tx) { tx.ReorderHabits(categoryID, ids) }); err != nil {
		return wrap(action, err)
	}
	t.recompute()
	return nil
}

// Templates lists the habit templates the API offers.
func (t *Tracker) Templates(ctx context.Context) ([]models.HabitTemplate, error) {
	templates, err := t.api.ListTemplates(ctx)
	if err != nil {
		return nil, wrap("list templates", err)
	}
	return templates, nil
}

// CreateHabitFromTemplate creates a habit in categoryID from a template.
func (t *Tracker) CreateHabitFromTemplate(ctx context.Context, templateID, categoryID string) (models.Habit, error) {
	const action = "create habit from template"
	if templateID == "" {
		return models.Habit{}, invalid(action, "template id is required")
	}
	if _, ok := t.store.Category(categoryID); !ok {
		return models.Habit{}, invalid(action, "unknown category %q", categoryID)
	}
	epoch := t.store.Epoch()

	created, err := t.api.CreateHabitFromTemplate(ctx, templateID, categoryID)
	if err != nil {
		return models.Habit{}, wrap(action, err)
	}
	if err := t.store.Update(epoch, func(tx *store.Tx) { tx.PutHabit(created) }); err != nil {
		return models.Habit{}, wrap(action, err)
	}
	t.recompute()
	return created, nil
}

// samePermutation checks that ids names every key of known exactly once.
func samePermutation(known map[string]struct{}, ids []string) error {
	if len(ids) != len(known) {
		return fmt.Errorf("expected %d ids, got %d", len(known), len(ids))
	}
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			return fmt.Errorf("unknown id %q", id)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("duplicate id %q", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}
