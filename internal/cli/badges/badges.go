package badges

import (
	"context"

	"github.com/julianstephens/habitual/internal/badge"
	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/models"
)

type BadgeListCmd struct{}

func (c *BadgeListCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	e, err := ctx.Tracker(bg)
	if err != nil {
		return err
	}

	earned := e.Badges()
	if len(earned) == 0 {
		ctx.Println("No badges earned yet. Keep going!")
		return nil
	}

	s := ctx.Styles(bg)
	tbl := cli.NewTable(s, "BADGE", "FOR", "EARNED")
	for _, b := range earned {
		name := b.BadgeID
		if rule, ok := e.Catalog().Lookup(b.BadgeID); ok {
			name = rule.Name
		}
		tbl.AddRow(s.Accent.Render(name), e.BadgeScope(b), b.EarnedAt.Local().Format("2006-01-02 15:04"))
	}
	ctx.Println(tbl)
	return nil
}

// BadgeCatalogCmd lists every badge that can be earned. It needs no session.
type BadgeCatalogCmd struct{}

func (c *BadgeCatalogCmd) Run(ctx *cli.Context) error {
	s := ctx.Styles(context.Background())
	tbl := cli.NewTable(s, "ID", "NAME", "TYPE", "NEEDS", "DESCRIPTION")
	for _, r := range badge.DefaultCatalog().Rules() {
		tbl.AddRow(s.Muted.Render(r.ID), r.Name, r.Type, r.Requirement, describe(r))
	}
	ctx.Println(tbl)
	return nil
}

func describe(r models.BadgeRule) string {
	if r.Description != "" {
		return r.Description
	}
	return string(r.Type)
}
