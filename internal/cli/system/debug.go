package system

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/localstate"
	"github.com/julianstephens/habitual/internal/models"
)

type DebugCmd struct {
	StatePath DebugStatePathCmd `cmd:"" help:"Show where local state lives."`
	DumpHabit DebugDumpHabitCmd `cmd:"" help:"Dump a habit with its logs and streak as JSON."`
}

type DebugStatePathCmd struct{}

func (c *DebugStatePathCmd) Run(ctx *cli.Context) error {
	out := map[string]string{
		"driver": localstate.DriverSQLite,
		"path":   ctx.Config.State,
	}
	if localstate.IsPostgres(ctx.Config.State) {
		out["driver"] = localstate.DriverPostgres
	}
	return printJSON(ctx, out)
}

type DebugDumpHabitCmd struct {
	Habit string `arg:"" help:"Habit id or name."`
}

type habitDump struct {
	Habit  models.Habit      `json:"habit"`
	Logs   []models.HabitLog `json:"logs"`
	Streak models.StreakData `json:"streak"`
}

func (c *DebugDumpHabitCmd) Run(ctx *cli.Context) error {
	e, err := ctx.Tracker(context.Background())
	if err != nil {
		return err
	}
	h, err := e.FindHabit(c.Habit)
	if err != nil {
		return err
	}

	dump := habitDump{Habit: h, Logs: []models.HabitLog{}, Streak: e.Streak(h.ID)}
	for _, l := range e.Logs() {
		if l.HabitID == h.ID {
			dump.Logs = append(dump.Logs, l)
		}
	}
	return printJSON(ctx, dump)
}

func printJSON(ctx *cli.Context, v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	ctx.Println(string(b))
	return nil
}
