package system

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/localstate"
	"github.com/julianstephens/habitual/internal/models"
)

type InitCmd struct {
	Force bool `help:"Delete the existing local state file before initializing."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	path := ctx.Config.State

	if c.Force {
		if localstate.IsPostgres(path) {
			return errors.New("--force only applies to a local SQLite state file")
		}
		if err := ctx.Close(); err != nil {
			return fmt.Errorf("failed to close local state: %w", err)
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to delete existing state: %w", err)
		} else if err == nil {
			ctx.Printf("Deleted existing state at: %s\n", path)
		}
	}

	st, err := ctx.LocalState(bg)
	if err != nil {
		return err
	}
	settings, err := st.Settings(bg)
	if err != nil {
		return err
	}
	models.ApplyDefaultSettings(&settings)
	if err := st.SaveSettings(bg, settings); err != nil {
		return fmt.Errorf("failed to save default settings: %w", err)
	}

	where := path
	if localstate.IsPostgres(path) {
		where = "PostgreSQL"
	}
	ctx.Printf("Initialized habitual state at: %s\n", where)
	return nil
}
