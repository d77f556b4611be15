package categories

import (
	"context"
	"fmt"

	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/models"
)

type CategoryListCmd struct{}

func (c *CategoryListCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	e, err := ctx.Tracker(bg)
	if err != nil {
		return err
	}

	cats := e.Categories()
	if len(cats) == 0 {
		ctx.Println("No categories yet. Add one with `habitual category add <name>`.")
		return nil
	}

	counts := make(map[string]int)
	for _, h := range e.Habits() {
		counts[h.CategoryID]++
	}

	s := ctx.Styles(bg)
	tbl := cli.NewTable(s, "ID", "NAME", "HABITS", "COLOR", "DESCRIPTION")
	for _, cat := range cats {
		tbl.AddRow(s.Muted.Render(cat.ID), cat.Name, counts[cat.ID], cat.Color, cat.Description)
	}
	ctx.Println(tbl)
	return nil
}

type CategoryAddCmd struct {
	Name        string `arg:"" help:"Category name."`
	Description string `help:"Short description."`
	Color       string `help:"Display colour (e.g. #4caf50)." default:"#607d8b"`
	Icon        string `help:"Icon name." default:"folder"`
}

func (c *CategoryAddCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	e, err := ctx.Tracker(bg)
	if err != nil {
		return err
	}

	created, err := e.AddCategory(bg, models.Category{
		Name:        c.Name,
		Description: c.Description,
		Color:       c.Color,
		Icon:        c.Icon,
	})
	if err != nil {
		return err
	}
	ctx.Printf("Added category %s (%s)\n", created.Name, created.ID)
	return nil
}

type CategoryEditCmd struct {
	Category    string  `arg:"" help:"Category id or name."`
	Name        *string `help:"New name."`
	Description *string `help:"New description."`
	Color       *string `help:"New colour."`
	Icon        *string `help:"New icon."`
}

func (c *CategoryEditCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	e, err := ctx.Tracker(bg)
	if err != nil {
		return err
	}
	cat, err := e.FindCategory(c.Category)
	if err != nil {
		return err
	}

	updated := false
	if c.Name != nil {
		cat.Name = *c.Name
		updated = true
	}
	if c.Description != nil {
		cat.Description = *c.Description
		updated = true
	}
	if c.Color != nil {
		cat.Color = *c.Color
		updated = true
	}
	if c.Icon != nil {
		cat.Icon = *c.Icon
		updated = true
	}
	if !updated {
		ctx.Println("No changes specified.")
		return nil
	}

	saved, err := e.UpdateCategory(bg, cat)
	if err != nil {
		return err
	}
	ctx.Printf("Updated category %s\n", saved.Name)
	return nil
}

type CategoryDeleteCmd struct {
	Category string `arg:"" help:"Category id or name."`
	Yes      bool   `short:"y" help:"Do not ask for confirmation."`
}

func (c *CategoryDeleteCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	e, err := ctx.Tracker(bg)
	if err != nil {
		return err
	}
	cat, err := e.FindCategory(c.Category)
	if err != nil {
		return err
	}

	var habits int
	for _, h := range e.Habits() {
		if h.CategoryID == cat.ID {
			habits++
		}
	}
	if !c.Yes && habits > 0 {
		ok, err := ctx.Confirmed(
			fmt.Sprintf("Delete %q?", cat.Name),
			fmt.Sprintf("Its %d habit(s) and their history will be deleted too.", habits),
		)
		if err != nil {
			return err
		}
		if !ok {
			ctx.Println("Cancelled.")
			return nil
		}
	}

	if err := e.DeleteCategory(bg, cat.ID); err != nil {
		return err
	}
	ctx.Printf("Deleted category %s and %d habit(s)\n", cat.Name, habits)
	return nil
}

type CategoryReorderCmd struct {
	Categories []string `arg:"" help:"Every category id or name, in the new order."`
}

func (c *CategoryReorderCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	e, err := ctx.Tracker(bg)
	if err != nil {
		return err
	}

	ids := make([]string, 0, len(c.Categories))
	for _, ref := range c.Categories {
		cat, err := e.FindCategory(ref)
		if err != nil {
			return err
		}
		ids = append(ids, cat.ID)
	}
	if err := e.ReorderCategories(bg, ids); err != nil {
		return err
	}
	ctx.Println("Categories reordered.")
	return nil
}
