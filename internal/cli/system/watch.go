package system

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/julianstephens/habitual/internal/auth"
	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/session"
)

// WatchCmd follows the token file and reloads whenever the signed-in
// identity changes, until interrupted.
type WatchCmd struct {
	File string `help:"Token file to watch (defaults to --token-file)." type:"path"`
}

func (c *WatchCmd) Run(ctx *cli.Context) error {
	bg, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return c.run(bg, ctx)
}

func (c *WatchCmd) run(bg context.Context, ctx *cli.Context) error {
	path := c.File
	if path == "" {
		path = ctx.Config.TokenFile
	}
	if path == "" {
		return errors.New("no token file configured")
	}

	e, err := ctx.NewEngine(bg)
	if err != nil {
		return err
	}

	s := ctx.Styles(bg)
	e.Session.OnTransition(func(tr session.Transition) {
		switch tr.To {
		case session.Idle:
			ctx.Println(s.Muted.Render("signed out"))
		case session.Switching:
			ctx.Printf("%s %s\n", s.Muted.Render("switching to"), s.Accent.Render(tr.UserID))
		case session.Loading:
			ctx.Printf("%s %s\n", s.Muted.Render("loading"), tr.UserID)
		case session.Ready:
			sum := e.Summary()
			ctx.Printf("%s %s: %d habits, %d/%d done today\n",
				s.Success.Render("ready"), s.Accent.Render(tr.UserID), len(e.Habits()), sum.CompletedToday, sum.ActiveHabits)
			ctx.AnnounceBadges(e, s)
		}
	})

	events, err := auth.NewFileSource(path).Watch(bg)
	if err != nil {
		return err
	}
	ctx.Printf("Watching %s (Ctrl+C to stop)\n", path)

	err = e.Session.Run(bg, events)
	e.Session.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
