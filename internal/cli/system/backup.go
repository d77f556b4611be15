package system

import (
	"context"
	"errors"
	"fmt"

	"github.com/julianstephens/habitual/internal/backup"
	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/localstate"
)

func backupManager(ctx *cli.Context) (*backup.Manager, error) {
	if localstate.IsPostgres(ctx.Config.State) {
		return nil, errors.New("backups only apply to a local SQLite state file; use pg_dump for PostgreSQL")
	}
	return backup.NewManager(ctx.Config.State), nil
}

type BackupCreateCmd struct{}

func (c *BackupCreateCmd) Run(ctx *cli.Context) error {
	mgr, err := backupManager(ctx)
	if err != nil {
		return err
	}
	// Release the state file so the snapshot sees every committed write
	if err := ctx.Close(); err != nil {
		return err
	}

	info, err := mgr.Create(context.Background())
	if err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}
	s := ctx.Styles(context.Background())
	ctx.Printf("%s Backup created: %s\n", s.Success.Render("✓"), info.Name)
	return nil
}

type BackupListCmd struct{}

func (c *BackupListCmd) Run(ctx *cli.Context) error {
	mgr, err := backupManager(ctx)
	if err != nil {
		return err
	}
	snaps, err := mgr.List()
	if err != nil {
		return err
	}
	if len(snaps) == 0 {
		ctx.Println("No backups found.")
		ctx.Printf("Backups are stored in: %s\n", mgr.Dir())
		return nil
	}

	s := ctx.Styles(context.Background())
	ctx.Printf("Available backups (%d total, keeping the newest %d):\n\n", len(snaps), backup.DefaultKeep)
	tbl := cli.NewTable(s, "TAKEN", "FILE", "SIZE")
	for _, b := range snaps {
		tbl.AddRow(b.Timestamp.Format("2006-01-02 15:04:05"), b.Name, fmt.Sprintf("%.1f KB", float64(b.Size)/1024))
	}
	ctx.Println(tbl)
	ctx.Printf("\nBackup directory: %s\n", mgr.Dir())
	return nil
}

type BackupRestoreCmd struct {
	Backup string `arg:"" help:"Path or file name of the backup to restore."`
	Yes    bool   `short:"y" help:"Do not ask for confirmation."`
}

func (c *BackupRestoreCmd) Run(ctx *cli.Context) error {
	mgr, err := backupManager(ctx)
	if err != nil {
		return err
	}
	path, err := mgr.Resolve(c.Backup)
	if err != nil {
		return err
	}

	if !c.Yes {
		ok, err := ctx.Confirmed("Replace local state with this backup?",
			"Settings and badge history are replaced. The current state is backed up first.")
		if err != nil {
			return err
		}
		if !ok {
			ctx.Println("Restore cancelled.")
			return nil
		}
	}

	if err := ctx.Close(); err != nil {
		return err
	}
	previous, err := mgr.Restore(context.Background(), path)
	if err != nil {
		return fmt.Errorf("restore failed: %w", err)
	}

	s := ctx.Styles(context.Background())
	if previous.Name != "" {
		ctx.Printf("Backed up current state as %s\n", previous.Name)
	}
	ctx.Printf("%s Local state restored from %s\n", s.Success.Render("✓"), path)
	return nil
}
