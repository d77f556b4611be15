package system

import (
	"context"
	"fmt"

	"github.com/julianstephens/habitual/internal/cli"
)

type RefreshCmd struct{}

func (c *RefreshCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	e, err := ctx.Tracker(bg)
	if err != nil {
		return err
	}

	s := ctx.Styles(bg)
	ctx.Printf("%s Loaded %d categories, %d habits and %d logs for %s\n",
		s.Success.Render("✓"), len(e.Categories()), len(e.Habits()), len(e.Logs()), s.Accent.Render(e.Session.UserID()))
	ctx.AnnounceBadges(e, s)
	return nil
}

type StatsCmd struct{}

func (c *StatsCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	e, err := ctx.Tracker(bg)
	if err != nil {
		return err
	}

	s := ctx.Styles(bg)
	sum := e.Summary()

	ctx.Println(s.Title.Render("Overview for " + sum.Today))
	ctx.Printf("  Active habits:      %d\n", sum.ActiveHabits)
	ctx.Printf("  Completed today:    %d\n", sum.CompletedToday)
	ctx.Printf("  Total completions:  %d\n", sum.TotalCompleted)
	ctx.Printf("  Badges earned:      %d/%d\n", sum.Badges, len(e.Catalog().Rules()))
	if sum.BestCurrent.CurrentStreak > 0 {
		ctx.Printf("  Best streak now:    %s %s\n", s.Streak(sum.BestCurrent.CurrentStreak), e.HabitName(sum.BestCurrent.HabitID))
	}
	if sum.BestLongest.LongestStreak > 0 {
		ctx.Printf("  Longest ever:       %d days %s\n", sum.BestLongest.LongestStreak, s.Muted.Render("("+e.HabitName(sum.BestLongest.HabitID)+")"))
	}

	if len(sum.Categories) == 0 {
		return nil
	}
	ctx.Println()
	tbl := cli.NewTable(s, "CATEGORY", "HABITS", "TODAY", "TOTAL")
	for _, cs := range sum.Categories {
		tbl.AddRow(cs.Category.Name, cs.Habits, fmt.Sprintf("%d/%d", cs.CompletedToday, cs.Habits), cs.Completed)
	}
	ctx.Println(tbl)
	ctx.AnnounceBadges(e, s)
	return nil
}
