package habits

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/models"
)

type HabitListCmd struct {
	All      bool   `help:"Include inactive habits."`
	Category string `help:"Only habits in this category (id or name)."`
}

func (c *HabitListCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	e, err := ctx.Tracker(bg)
	if err != nil {
		return err
	}

	var categoryID string
	if c.Category != "" {
		cat, err := e.FindCategory(c.Category)
		if err != nil {
			return err
		}
		categoryID = cat.ID
	}

	today := e.Today()
	doneToday := make(map[string]bool)
	for _, l := range e.Logs() {
		if l.Date == today && l.Completed {
			doneToday[l.HabitID] = true
		}
	}

	s := ctx.Styles(bg)
	tbl := cli.NewTable(s, "", "ID", "NAME", "CATEGORY", "FREQUENCY", "STREAK", "BEST")
	shown := 0
	for _, h := range e.Habits() {
		if !c.All && !h.Active {
			continue
		}
		if categoryID != "" && h.CategoryID != categoryID {
			continue
		}
		st := e.Streak(h.ID)
		name := h.Name
		if !h.Active {
			name = s.Muted.Render(h.Name + " (inactive)")
		}
		tbl.AddRow(s.Check(doneToday[h.ID]), s.Muted.Render(h.ID), name, e.CategoryName(h.CategoryID), h.Frequency, s.Streak(st.CurrentStreak), st.LongestStreak)
		shown++
	}

	if shown == 0 {
		ctx.Println("No habits to show.")
		return nil
	}
	ctx.Println(tbl)
	return nil
}

type HabitAddCmd struct {
	Name        string `arg:"" help:"Habit name."`
	Category    string `required:"" short:"c" help:"Category id or name."`
	Frequency   string `help:"daily, weekly or monthly." default:"daily" enum:"daily,weekly,monthly"`
	Description string `help:"Short description."`
	Color       string `help:"Display colour." default:"#4caf50"`
	Icon        string `help:"Icon name." default:"check"`
	Reminder    string `help:"Daily reminder time (HH:MM)."`
}

func (c *HabitAddCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	e, err := ctx.Tracker(bg)
	if err != nil {
		return err
	}
	cat, err := e.FindCategory(c.Category)
	if err != nil {
		return err
	}

	created, err := e.AddHabit(bg, models.Habit{
		Name:            c.Name,
		Description:     c.Description,
		Color:           c.Color,
		Icon:            c.Icon,
		CategoryID:      cat.ID,
		Frequency:       constants.Frequency(c.Frequency),
		ReminderEnabled: c.Reminder != "",
		ReminderTime:    c.Reminder,
		CreatedAt:       time.Now(),
		Active:          true,
	})
	if err != nil {
		return err
	}
	ctx.Printf("Added habit %s (%s) to %s\n", created.Name, created.ID, cat.Name)
	return nil
}

type HabitEditCmd struct {
	Habit       string  `arg:"" help:"Habit id or name."`
	Name        *string `help:"New name."`
	Category    *string `short:"c" help:"Move to this category (id or name)."`
	Frequency   *string `help:"daily, weekly or monthly."`
	Description *string `help:"New description."`
	Color       *string `help:"New colour."`
	Icon        *string `help:"New icon."`
	Reminder    *string `help:"Reminder time (HH:MM); empty disables reminders."`
	Activate    bool    `help:"Mark the habit active." xor:"active"`
	Deactivate  bool    `help:"Mark the habit inactive; it stays in history but is hidden by default." xor:"active"`
}

func (c *HabitEditCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	e, err := ctx.Tracker(bg)
	if err != nil {
		return err
	}
	h, err := e.FindHabit(c.Habit)
	if err != nil {
		return err
	}

	updated := false
	if c.Name != nil {
		h.Name = *c.Name
		updated = true
	}
	if c.Category != nil {
		cat, err := e.FindCategory(*c.Category)
		if err != nil {
			return err
		}
		h.CategoryID = cat.ID
		updated = true
	}
	if c.Frequency != nil {
		h.Frequency = constants.Frequency(*c.Frequency)
		updated = true
	}
	if c.Description != nil {
		h.Description = *c.Description
		updated = true
	}
	if c.Color != nil {
		h.Color = *c.Color
		updated = true
	}
	if c.Icon != nil {
		h.Icon = *c.Icon
		updated = true
	}
	if c.Reminder != nil {
		h.ReminderTime = *c.Reminder
		h.ReminderEnabled = *c.Reminder != ""
		updated = true
	}
	if c.Activate || c.Deactivate {
		h.Active = c.Activate
		updated = true
	}
	if !updated {
		ctx.Println("No changes specified.")
		return nil
	}

	saved, err := e.UpdateHabit(bg, h)
	if err != nil {
		return err
	}
	ctx.Printf("Updated habit %s\n", saved.Name)
	return nil
}

type HabitDeleteCmd struct {
	Habit string `arg:"" help:"Habit id or name."`
	Yes   bool   `short:"y" help:"Do not ask for confirmation."`
}

func (c *HabitDeleteCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	e, err := ctx.Tracker(bg)
	if err != nil {
		return err
	}
	h, err := e.FindHabit(c.Habit)
	if err != nil {
		return err
	}

	if !c.Yes {
		ok, err := ctx.Confirmed(fmt.Sprintf("Delete %q?", h.Name), "Its completion history will be deleted too.")
		if err != nil {
			return err
		}
		if !ok {
			ctx.Println("Cancelled.")
			return nil
		}
	}

	if err := e.DeleteHabit(bg, h.ID); err != nil {
		return err
	}
	ctx.Printf("Deleted habit %s\n", h.Name)
	return nil
}

type HabitReorderCmd struct {
	Habits []string `arg:"" help:"Every habit of one category (id or name), in the new order."`
}

func (c *HabitReorderCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	e, err := ctx.Tracker(bg)
	if err != nil {
		return err
	}

	var categoryID string
	ids := make([]string, 0, len(c.Habits))
	for _, ref := range c.Habits {
		h, err := e.FindHabit(ref)
		if err != nil {
			return err
		}
		if categoryID == "" {
			categoryID = h.CategoryID
		} else if h.CategoryID != categoryID {
			return fmt.Errorf("habit %q is in a different category", h.Name)
		}
		ids = append(ids, h.ID)
	}

	if err := e.ReorderHabits(bg, categoryID, ids); err != nil {
		return err
	}
	ctx.Printf("Habits in %s reordered.\n", e.CategoryName(categoryID))
	return nil
}
