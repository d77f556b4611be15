// Package migrations embeds the local state schema for each supported driver.
package migrations

import (
	"embed"
	"fmt"
	"io/fs"
)

//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS

// For returns the migration files for driver ("sqlite" or "postgres").
func For(driver string) (fs.FS, error) {
	switch driver {
	case "sqlite", "postgres":
		return fs.Sub(FS, driver)
	default:
		return nil, fmt.Errorf("no migrations for driver %q", driver)
	}
}
