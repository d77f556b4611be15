package system

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/habitual/internal/auth"
	"github.com/julianstephens/habitual/internal/cli"
)

type LoginCmd struct {
	Token string `arg:"" help:"Session token issued by the habit service."`
}

func (c *LoginCmd) Run(ctx *cli.Context) error {
	claims, err := ctx.Identity.SignIn(c.Token)
	if err != nil {
		return fmt.Errorf("failed to sign in: %w", err)
	}

	s := ctx.Styles(context.Background())
	ctx.Printf("%s Signed in as %s\n", s.Success.Render("✓"), s.Accent.Render(claims.Subject))
	if !claims.ExpiresAt.IsZero() {
		ctx.Printf("  Session expires %s\n", claims.ExpiresAt.Local().Format(time.RFC1123))
	}
	return nil
}

type LogoutCmd struct {
	Forget bool `help:"Also delete this user's local badge history."`
}

func (c *LogoutCmd) Run(ctx *cli.Context) error {
	ev, err := ctx.CurrentIdentity()
	if err != nil {
		return err
	}
	if err := ctx.Identity.SignOut(); err != nil {
		return err
	}

	if c.Forget && !ev.SignedOut() {
		bg := context.Background()
		st, err := ctx.LocalState(bg)
		if err != nil {
			return err
		}
		if err := st.ForgetUser(bg, ev.UserID); err != nil {
			return err
		}
		ctx.Println("Local badge history deleted.")
	}

	ctx.Println("Signed out.")
	return nil
}

type WhoamiCmd struct{}

func (c *WhoamiCmd) Run(ctx *cli.Context) error {
	tok, err := ctx.Identity.Token()
	if err != nil {
		ctx.Println("Not signed in.")
		return nil
	}
	claims, err := auth.ParseToken(tok)
	if err != nil {
		return err
	}

	s := ctx.Styles(context.Background())
	ctx.Printf("User: %s\n", s.Accent.Render(claims.Subject))
	switch {
	case claims.ExpiresAt.IsZero():
		ctx.Println("Expires: never")
	case claims.Expired(now(ctx)):
		ctx.Printf("Expired: %s %s\n", claims.ExpiresAt.Local().Format(time.RFC1123), s.Warning.Render("(run `habitual login` again)"))
	default:
		ctx.Printf("Expires: %s\n", claims.ExpiresAt.Local().Format(time.RFC1123))
	}
	return nil
}

func now(ctx *cli.Context) time.Time {
	if ctx.Now != nil {
		return ctx.Now()
	}
	return time.Now()
}
