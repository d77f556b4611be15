// Package localstate persists identity-independent preferences and the
// per-user badge ledger in a local SQLite file or a PostgreSQL database.
package localstate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/charmbracelet/log"
	"github.com/jmoiron/sqlx"
	"github.com/mitchellh/go-homedir"
	_ "modernc.org/sqlite"

	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/migration"
	"github.com/julianstephens/habitual/migrations"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Store struct {
	db  *sqlx.DB
	sb  sq.StatementBuilderType
	now func() time.Time
	log *log.Logger
}

// IsPostgres reports whether dsn addresses a PostgreSQL server rather than a
// SQLite file path.
func IsPostgres(dsn string) bool {
	dsn = strings.TrimSpace(dsn)
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return true
	}
	for _, field := range strings.Fields(dsn) {
		key, _, ok := strings.Cut(field, "=")
		if ok && (strings.EqualFold(key, "host") || strings.EqualFold(key, "dbname")) {
			return true
		}
	}
	return false
}

// Open connects to dsn, creating the SQLite file and its directory when
// needed, and migrates the schema.
func Open(ctx context.Context, dsn string) (*Store, error) {
	driver, source := DriverSQLite, dsn
	if IsPostgres(dsn) {
		if err := ValidateConnString(dsn); err != nil {
			return nil, err
		}
		driver, source = DriverPostgres, withSearchPath(dsn)
	} else {
		path, err := homedir.Expand(dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to expand database path: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("failed to create state directory: %w", err)
		}
		source = path
	}

	db, err := sqlx.ConnectContext(ctx, driver, source)
	if err != nil {
		if driver == DriverPostgres && strings.Contains(err.Error(), "SSL is not enabled") && !hasSSLMode(dsn) {
			return nil, fmt.Errorf("failed to connect to database: %w (hint: add sslmode=disable)", err)
		}
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if driver == DriverPostgres {
		db.SetMaxOpenConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
		if _, err := db.ExecContext(ctx, "CREATE SCHEMA IF NOT EXISTS "+schemaName); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	} else {
		// SQLite allows a single writer
		db.SetMaxOpenConns(1)
	}

	s := New(db)
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an open connection. The placeholder style follows db's driver.
func New(db *sqlx.DB) *Store {
	sb := sq.StatementBuilder.PlaceholderFormat(sq.Question)
	if db.DriverName() == DriverPostgres {
		sb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	}
	return &Store{
		db:  db,
		sb:  sb,
		now: time.Now,
		log: logger.DB(),
	}
}

// Migrate applies the embedded migrations for the store's driver.
func (s *Store) Migrate(ctx context.Context) error {
	files, err := migrations.For(s.db.DriverName())
	if err != nil {
		return err
	}
	if _, err := migration.NewRunner(s.db, files).Apply(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// SchemaVersion reports the applied and the newest known schema versions.
func (s *Store) SchemaVersion(ctx context.Context) (current, latest int, err error) {
	files, err := migrations.For(s.db.DriverName())
	if err != nil {
		return 0, 0, err
	}
	runner := migration.NewRunner(s.db, files)
	if current, err = runner.Current(ctx); err != nil {
		return 0, 0, err
	}
	if latest, err = runner.Latest(); err != nil {
		return 0, 0, err
	}
	return current, latest, nil
}

// Ping checks that the database answers.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Driver() string {
	return s.db.DriverName()
}

func (s *Store) Close() error {
	return s.db.Close()
}
