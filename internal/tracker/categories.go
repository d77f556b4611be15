package tracker

import (
	"context"

	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/store"
)

// AddCategory creates a category after the existing ones.
func (t *Tracker) AddCategory(ctx context.Context, c models.Category) (models.Category, error) {
	const action = "add category"
	if err := c.Validate(); err != nil {
		return models.Category{}, invalid(action, "%v", err)
	}
	epoch := t.store.Epoch()
	c.ID = ""
	c.Order = t.store.NextCategoryOrder()

	created, err := t.api.CreateCategory(ctx, c)
	if err != nil {
		return models.Category{}, wrap(action, err)
	}
	if err := t.store.Update(epoch, func(tx *store.Tx) { tx.PutCategory(created) }); err != nil {
		return models.Category{}, wrap(action, err)
	}
	t.recompute()
	t.log.Info("category added", "id", created.ID, "name", created.Name)
	return created, nil
}

// UpdateCategory saves changes to an existing category.
func (t *Tracker) UpdateCategory(ctx context.Context, c models.Category) (models.Category, error) {
	const action = "update category"
	existing, ok := t.store.Category(c.ID)
	if !ok {
		return models.Category{}, invalid(action, "unknown category %q", c.ID)
	}
	if err := c.Validate(); err != nil {
		return models.Category{}, invalid(action, "%v", err)
	}
	c.Order = existing.Order
	epoch := t.store.Epoch()

	updated, err := t.api.UpdateCategory(ctx, c)
	if err != nil {
		return models.Category{}, wrap(action, err)
	}
	if err := t.store.Update(epoch, func(tx *store.Tx) { tx.PutCategory(updated) }); err != nil {
		return models.Category{}, wrap(action, err)
	}
	t.recompute()
	return updated, nil
}

// DeleteCategory deletes a category with all of its habits and their logs.
func (t *Tracker) DeleteCategory(ctx context.Context, id string) error {
	const action = "delete category"
	if _, ok := t.store.Category(id); !ok {
		return invalid(action, "unknown category %q", id)
	}
	epoch := t.store.Epoch()

	if err := t.api.DeleteCategory(ctx, id); err != nil {
		return wrap(action, err)
	}
	var removed []string
	if err := t.store.Update(epoch, func(tx *store.Tx) { removed = tx.RemoveCategory(id) }); err != nil {
		return wrap(action, err)
	}
	t.recompute()
	t.log.Info("category deleted", "id", id, "habits_removed", len(removed))
	return nil
}

// ReorderCategories makes ids the display order. ids must list every
// category exactly once.
func (t *Tracker) ReorderCategories(ctx context.Context, ids []string) error {
	const action = "reorder categories"
	current := t.store.Categories()
	known := make(map[string]struct{}, len(current))
	for _, c := range current {
		known[c.ID] = struct{}{}
	}
	if err := samePermutation(known, ids); err != nil {
		return invalid(action, "%v", err)
	}
	epoch := t.store.Epoch()

	if err := t.api.ReorderCategories(ctx, ids); err != nil {
		return wrap(action, err)
	}
	if err := t.store.Update(epoch, func(tx *store.Tx) { tx.ReorderCategories(ids) }); err != nil {
		return wrap(action, err)
	}
	t.recompute()
	return nil
}
