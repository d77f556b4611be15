package system

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/habitual/internal/auth"
	"github.com/julianstephens/habitual/internal/backup"
	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/localstate"
	"github.com/julianstephens/habitual/internal/utils"
)

// skip marks a check that could not run, with the reason.
type skip string

func (s skip) Error() string { return string(s) }

// warning is reported without failing the run.
type warning struct{ error }

type check struct {
	name string
	run  func(context.Context, *cli.Context) error
}

var checks = []check{
	{"Local state reachable", checkLocalState},
	{"Schema version", checkSchema},
	{"Settings valid", checkSettings},
	{"Backups present", checkBackups},
	{"Signed in", checkIdentity},
	{"Persistence API", checkAPI},
	{"Clock/timezone", checkClock},
}

type DoctorCmd struct{}

func (c *DoctorCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	s := ctx.Styles(bg)
	ctx.Println("Running diagnostics...")
	ctx.Println()

	failed := 0
	for _, ch := range checks {
		err := ch.run(bg, ctx)
		var (
			w  warning
			sk skip
		)
		switch {
		case err == nil:
			ctx.Printf("%s %s: OK\n", s.Success.Render("✓"), ch.name)
		case errors.As(err, &sk):
			ctx.Printf("%s %s: SKIPPED (%s)\n", s.Muted.Render("⊘"), ch.name, sk)
		case errors.As(err, &w):
			ctx.Printf("%s %s: WARNING\n   %v\n", s.Warning.Render("⚠"), ch.name, w.error)
		default:
			ctx.Printf("%s %s: FAIL\n   Error: %v\n", s.Warning.Render("❌"), ch.name, err)
			failed++
		}
	}

	ctx.Println()
	if failed > 0 {
		ctx.Println("Diagnostics completed with errors.")
		return fmt.Errorf("%d health check(s) failed", failed)
	}
	ctx.Println("All diagnostics passed!")
	return nil
}

func checkLocalState(bg context.Context, ctx *cli.Context) error {
	st, err := ctx.LocalState(bg)
	if err != nil {
		return err
	}
	return st.Ping(bg)
}

func checkSchema(bg context.Context, ctx *cli.Context) error {
	st, err := ctx.LocalState(bg)
	if err != nil {
		return skip("local state not reachable")
	}
	current, latest, err := st.SchemaVersion(bg)
	if err != nil {
		return err
	}
	switch {
	case current > latest:
		return fmt.Errorf("schema version %d is newer than supported version %d", current, latest)
	case current < latest:
		return fmt.Errorf("migrations incomplete: at version %d, latest is %d", current, latest)
	}
	return nil
}

func checkSettings(bg context.Context, ctx *cli.Context) error {
	st, err := ctx.LocalState(bg)
	if err != nil {
		return skip("local state not reachable")
	}
	settings, err := st.Settings(bg)
	if err != nil {
		return err
	}
	return localstate.ValidateSettings(settings)
}

func checkBackups(_ context.Context, ctx *cli.Context) error {
	if localstate.IsPostgres(ctx.Config.State) {
		return skip("PostgreSQL state")
	}
	snaps, err := backup.NewManager(ctx.Config.State).List()
	if err != nil {
		return warning{err}
	}
	if len(snaps) == 0 {
		return warning{errors.New("no backups found, create one with `habitual backup create`")}
	}
	return nil
}

func checkIdentity(_ context.Context, ctx *cli.Context) error {
	if ctx.Identity == nil {
		return errors.New("no identity source configured")
	}
	tok, err := ctx.Identity.Token()
	if errors.Is(err, auth.ErrNotFound) {
		return warning{errors.New("not signed in, run `habitual login <token>`")}
	}
	if err != nil {
		return err
	}
	claims, err := auth.ParseToken(tok)
	if err != nil {
		return err
	}
	if claims.Expired(now(ctx)) {
		return warning{fmt.Errorf("session for %s expired %s", claims.Subject, claims.ExpiresAt.Local().Format(time.RFC1123))}
	}
	return nil
}

func checkAPI(bg context.Context, ctx *cli.Context) error {
	ev, err := ctx.CurrentIdentity()
	if err != nil || ev.SignedOut() {
		return skip("not signed in")
	}
	e, err := ctx.Tracker(bg)
	if err != nil {
		return err
	}
	if len(e.Categories()) == 0 && len(e.Habits()) == 0 {
		return warning{errors.New("reachable, but this account has no categories or habits yet")}
	}
	return nil
}

func checkClock(bg context.Context, ctx *cli.Context) error {
	t := now(ctx)
	if t.Year() < 2020 || t.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", t.Format(time.RFC3339))
	}
	settings, err := ctx.Settings(bg)
	if err != nil {
		return skip("settings not readable")
	}
	if _, err := utils.LoadLocation(settings.Timezone); err != nil {
		return fmt.Errorf("timezone %q: %w", settings.Timezone, err)
	}
	return nil
}
