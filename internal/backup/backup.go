// Package backup keeps rotating snapshots of the SQLite local state, which
// holds the settings and the per-user badge ledger.
package backup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/migration"
	"github.com/julianstephens/habitual/migrations"
)

const (
	DefaultKeep = 14
	DirName     = "backups"

	filePrefix = constants.AppName + "-"
	fileSuffix = ".db"
	stampFmt   = "20060102-150405"
)

var ErrNoState = errors.New("local state does not exist")

// Info describes one snapshot file
type Info struct {
	Path      string
	Name      string
	Timestamp time.Time
	Size      int64
}

type Manager struct {
	statePath string
	dir       string
	keep      int
	now       func() time.Time
	log       *log.Logger
}

type Option func(*Manager)

// WithKeep sets how many snapshots survive rotation.
func WithKeep(n int) Option {
	return func(m *Manager) { m.keep = n }
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager keeps snapshots of statePath in a backups directory next to it.
func NewManager(statePath string, opts ...Option) *Manager {
	m := &Manager{
		statePath: statePath,
		dir:       filepath.Join(filepath.Dir(statePath), DirName),
		keep:      DefaultKeep,
		now:       time.Now,
		log:       logger.Backup(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) Dir() string {
	return m.dir
}

// Create writes a consistent snapshot of the local state and rotates old
// snapshots away.
func (m *Manager) Create(ctx context.Context) (Info, error) {
	info, err := m.create(ctx)
	if err != nil {
		return Info{}, err
	}
	if err := m.rotate(); err != nil {
		m.log.Warn("failed to rotate snapshots", "err", err)
	}
	return info, nil
}

func (m *Manager) create(ctx context.Context) (Info, error) {
	if _, err := os.Stat(m.statePath); errors.Is(err, fs.ErrNotExist) {
		return Info{}, fmt.Errorf("%w: %s", ErrNoState, m.statePath)
	}
	if err := os.MkdirAll(m.dir, 0o700); err != nil {
		return Info{}, fmt.Errorf("failed to create backup directory: %w", err)
	}

	ts := m.now()
	dest, err := m.freeName(ts)
	if err != nil {
		return Info{}, err
	}

	db, err := sqlx.ConnectContext(ctx, "sqlite", m.statePath)
	if err != nil {
		return Info{}, fmt.Errorf("failed to open local state: %w", err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, "VACUUM INTO ?", dest); err != nil {
		m.log.Debug("VACUUM INTO failed, copying file", "err", err)
		if err := copyFile(m.statePath, dest); err != nil {
			return Info{}, fmt.Errorf("failed to write snapshot: %w", err)
		}
	}

	st, err := os.Stat(dest)
	if err != nil {
		return Info{}, err
	}
	m.log.Info("snapshot created", "path", dest, "size", st.Size())
	return Info{Path: dest, Name: filepath.Base(dest), Timestamp: ts.Truncate(time.Second), Size: st.Size()}, nil
}

// freeName picks a file name for a snapshot taken at ts, adding a counter
// when several are taken within the same second.
func (m *Manager) freeName(ts time.Time) (string, error) {
	stamp := ts.Format(stampFmt)
	for i := 0; i < 100; i++ {
		name := filePrefix + stamp + fileSuffix
		if i > 0 {
			name = fmt.Sprintf("%s%s-%d%s", filePrefix, stamp, i, fileSuffix)
		}
		path := filepath.Join(m.dir, name)
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return path, nil
		}
	}
	return "", errors.New("failed to find a free snapshot name")
}

// List returns the snapshots newest first. Files that do not look like
// snapshots are ignored.
func (m *Manager) List() ([]Info, error) {
	entries, err := os.ReadDir(m.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var out []Info
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ts, ok := parseName(e.Name())
		if !ok {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, Info{Path: filepath.Join(m.dir, e.Name()), Name: e.Name(), Timestamp: ts, Size: fi.Size()})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.After(out[j].Timestamp)
		}
		return out[i].Name > out[j].Name
	})
	return out, nil
}

func parseName(name string) (time.Time, bool) {
	if !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
		return time.Time{}, false
	}
	stamp := strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileSuffix)
	if len(stamp) > len(stampFmt) && stamp[len(stampFmt)] == '-' {
		stamp = stamp[:len(stampFmt)]
	}
	ts, err := time.ParseInLocation(stampFmt, stamp, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

func (m *Manager) rotate() error {
	if m.keep <= 0 {
		return nil
	}
	snaps, err := m.List()
	if err != nil {
		return err
	}
	for _, s := range snaps[min(m.keep, len(snaps)):] {
		if err := os.Remove(s.Path); err != nil {
			return fmt.Errorf("failed to remove old snapshot %s: %w", s.Name, err)
		}
		m.log.Debug("snapshot rotated", "path", s.Path)
	}
	return nil
}

// Resolve finds a snapshot by path, or by file name inside the backup
// directory.
func (m *Manager) Resolve(ref string) (string, error) {
	candidates := []string{ref}
	if !filepath.IsAbs(ref) {
		candidates = append([]string{filepath.Join(m.dir, ref)}, ref)
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("backup not found: %s", ref)
}

// Restore replaces the local state with the snapshot at path. The current
// state is snapshotted first and is not subject to rotation. The caller must
// have closed every connection to the state file.
func (m *Manager) Restore(ctx context.Context, path string) (Info, error) {
	if err := Verify(ctx, path); err != nil {
		return Info{}, fmt.Errorf("backup is not usable: %w", err)
	}

	var previous Info
	if _, err := os.Stat(m.statePath); err == nil {
		p, err := m.create(ctx)
		if err != nil {
			return Info{}, fmt.Errorf("failed to snapshot current state: %w", err)
		}
		previous = p
	}

	tmp := m.statePath + ".restore.tmp"
	if err := copyFile(path, tmp); err != nil {
		return Info{}, fmt.Errorf("failed to copy backup: %w", err)
	}
	if err := os.Rename(tmp, m.statePath); err != nil {
		if rerr := os.Remove(tmp); rerr != nil {
			m.log.Warn("failed to remove temporary file", "path", tmp, "err", rerr)
		}
		return Info{}, fmt.Errorf("failed to restore local state: %w", err)
	}
	for _, side := range []string{"-wal", "-shm"} {
		if err := os.Remove(m.statePath + side); err != nil && !errors.Is(err, fs.ErrNotExist) {
			m.log.Warn("failed to remove stale journal", "path", m.statePath+side, "err", err)
		}
	}
	m.log.Info("local state restored", "from", path)
	return previous, nil
}

// Verify checks that path is a local state database this build can read.
func Verify(ctx context.Context, path string) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}
	db, err := sqlx.ConnectContext(ctx, "sqlite", path)
	if err != nil {
		return err
	}
	defer db.Close()

	var tables int
	if err := db.GetContext(ctx, &tables,
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('schema_version', 'settings', 'badges')"); err != nil {
		return err
	}
	if tables != 3 {
		return errors.New("not a habitual state database")
	}

	files, err := migrations.For("sqlite")
	if err != nil {
		return err
	}
	return migration.NewRunner(db, files).Validate(ctx)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
