package settings

import (
	"context"
	"fmt"

	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/constants"
)

type SettingsCmd struct {
	List bool `help:"List current settings."`

	Theme    *string `help:"Colour theme: light, dark or system."`
	Timezone *string `help:"IANA timezone used to decide what \"today\" is, or Local."`
	LogLimit *int    `help:"Most recent logs fetched per refresh."`
}

func (c *SettingsCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	st, err := ctx.LocalState(bg)
	if err != nil {
		return err
	}
	settings, err := st.Settings(bg)
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	if c.List {
		s := ctx.Styles(bg)
		ctx.Println(s.Title.Render("Current Settings:"))
		ctx.Printf("  Theme:     %s\n", settings.Theme)
		ctx.Printf("  Timezone:  %s\n", settings.Timezone)
		ctx.Printf("  Log Limit: %d\n", settings.LogLimit)
		return nil
	}

	updated := false
	if c.Theme != nil {
		settings.Theme = constants.Theme(*c.Theme)
		updated = true
	}
	if c.Timezone != nil {
		settings.Timezone = *c.Timezone
		updated = true
	}
	if c.LogLimit != nil {
		settings.LogLimit = *c.LogLimit
		updated = true
	}

	if !updated {
		ctx.Println("No changes specified. Use --list to view settings or flags to update them.")
		return nil
	}
	if err := st.SaveSettings(bg, settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	ctx.Println("Settings updated successfully.")
	return nil
}
