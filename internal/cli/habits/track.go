package habits

import (
	"context"
	"sort"

	"github.com/julianstephens/habitual/internal/cli"
)

type HabitToggleCmd struct {
	Habit string `arg:"" help:"Habit id or name."`
	Date  string `help:"Day to toggle (YYYY-MM-DD), defaults to today."`
}

func (c *HabitToggleCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	e, err := ctx.Tracker(bg)
	if err != nil {
		return err
	}
	h, err := e.FindHabit(c.Habit)
	if err != nil {
		return err
	}

	log, err := e.ToggleHabit(bg, h.ID, c.Date)
	if err != nil {
		return err
	}

	s := ctx.Styles(bg)
	st := e.Streak(h.ID)
	if log.Completed {
		ctx.Printf("%s %s done for %s  streak %s\n", s.Check(true), h.Name, log.Date, s.Streak(st.CurrentStreak))
	} else {
		ctx.Printf("%s %s not done for %s  streak %s\n", s.Check(false), h.Name, log.Date, s.Streak(st.CurrentStreak))
	}
	ctx.AnnounceBadges(e, s)
	return nil
}

type HabitClearCmd struct {
	Habit string `arg:"" help:"Habit id or name."`
	Date  string `help:"Day to clear (YYYY-MM-DD), defaults to today."`
}

func (c *HabitClearCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	e, err := ctx.Tracker(bg)
	if err != nil {
		return err
	}
	h, err := e.FindHabit(c.Habit)
	if err != nil {
		return err
	}

	date := c.Date
	if date == "" {
		date = e.Today()
	}
	cleared, err := e.ClearLog(bg, h.ID, date)
	if err != nil {
		return err
	}
	if !cleared {
		ctx.Printf("Nothing recorded for %s on %s\n", h.Name, date)
		return nil
	}
	ctx.Printf("Cleared %s for %s  streak %s\n", h.Name, date, ctx.Styles(bg).Streak(e.Streak(h.ID).CurrentStreak))
	return nil
}

type HabitStreaksCmd struct {
	Sort string `help:"Order by current or longest streak." default:"current" enum:"current,longest"`
}

func (c *HabitStreaksCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	e, err := ctx.Tracker(bg)
	if err != nil {
		return err
	}

	habits := e.Habits()
	if len(habits) == 0 {
		ctx.Println("No habits yet.")
		return nil
	}

	streaks := e.Streaks()
	sort.SliceStable(habits, func(i, j int) bool {
		a, b := streaks[habits[i].ID], streaks[habits[j].ID]
		if c.Sort == "longest" {
			return a.LongestStreak > b.LongestStreak
		}
		return a.CurrentStreak > b.CurrentStreak
	})

	s := ctx.Styles(bg)
	tbl := cli.NewTable(s, "HABIT", "CURRENT", "LONGEST", "LAST DONE")
	for _, h := range habits {
		st := streaks[h.ID]
		last := st.LastCompletedDate
		if last == "" {
			last = s.Muted.Render("never")
		}
		tbl.AddRow(h.Name, s.Streak(st.CurrentStreak), st.LongestStreak, last)
	}
	ctx.Println(tbl)
	return nil
}

type HabitTemplatesCmd struct{}

func (c *HabitTemplatesCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	e, err := ctx.Tracker(bg)
	if err != nil {
		return err
	}

	templates, err := e.Templates(bg)
	if err != nil {
		return err
	}
	if len(templates) == 0 {
		ctx.Println("No templates available.")
		return nil
	}

	s := ctx.Styles(bg)
	tbl := cli.NewTable(s, "ID", "NAME", "FREQUENCY", "DESCRIPTION")
	for _, t := range templates {
		tbl.AddRow(s.Muted.Render(t.ID), t.Name, t.Frequency, t.Description)
	}
	ctx.Println(tbl)
	return nil
}

type HabitFromTemplateCmd struct {
	Template string `arg:"" help:"Template id."`
	Category string `required:"" short:"c" help:"Category id or name."`
}

func (c *HabitFromTemplateCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	e, err := ctx.Tracker(bg)
	if err != nil {
		return err
	}
	cat, err := e.FindCategory(c.Category)
	if err != nil {
		return err
	}

	h, err := e.CreateHabitFromTemplate(bg, c.Template, cat.ID)
	if err != nil {
		return err
	}
	ctx.Printf("Added habit %s (%s) to %s\n", h.Name, h.ID, cat.Name)
	return nil
}
