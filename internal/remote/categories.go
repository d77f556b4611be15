package remote

import (
	"context"
	"net/http"
	"sort"

	apperrors "github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/models"
)

// ListCategories returns the user's categories in display order.
func (c *Client) ListCategories(ctx context.Context) ([]models.Category, error) {
	var wire []wireCategory
	if err := c.do(ctx, "categories.list", http.MethodGet, "/categories", nil, nil, &wire); err != nil {
		return nil, err
	}
	out := make([]models.Category, 0, len(wire))
	for _, w := range wire {
		out = append(out, w.model())
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (c *Client) CreateCategory(ctx context.Context, cat models.Category) (models.Category, error) {
	const op = "categories.create"
	if err := cat.Validate(); err != nil {
		return models.Category{}, apperrors.Validation(op, "%v", err)
	}
	var w wireCategory
	if err := c.do(ctx, op, http.MethodPost, "/categories", nil, categoryPayload(cat), &w); err != nil {
		return models.Category{}, err
	}
	return w.model(), nil
}

func (c *Client) UpdateCategory(ctx context.Context, cat models.Category) (models.Category, error) {
	const op = "categories.update"
	if err := requireID(op, "category", cat.ID); err != nil {
		return models.Category{}, err
	}
	if err := cat.Validate(); err != nil {
		return models.Category{}, apperrors.Validation(op, "%v", err)
	}
	var w wireCategory
	if err := c.do(ctx, op, http.MethodPut, "/categories/"+cat.ID, nil, categoryPayload(cat), &w); err != nil {
		return models.Category{}, err
	}
	return w.model(), nil
}

// DeleteCategory deletes a category. The API removes its habits and logs.
func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	const op = "categories.delete"
	if err := requireID(op, "category", id); err != nil {
		return err
	}
	return c.do(ctx, op, http.MethodDelete, "/categories/"+id, nil, nil, nil)
}

func (c *Client) ReorderCategories(ctx context.Context, ids []string) error {
	const op = "categories.reorder"
	if len(ids) == 0 {
		return apperrors.Validation(op, "no categories to reorder")
	}
	body := struct {
		CategoryIDs []string `json:"categoryIds"`
	}{ids}
	return c.do(ctx, op, http.MethodPut, "/categories/reorder", nil, body, nil)
}
