// Package clitest builds command contexts against the fake API.
package clitest

import (
	"bytes"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/julianstephens/habitual/internal/auth"
	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/config"
	"github.com/julianstephens/habitual/internal/testutil"
)

// Now is the clock every context built here runs on.
var Now = time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)

// Buffer collects command output. Watch writes from the session goroutine.
type Buffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *Buffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *Buffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *Buffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Reset()
}

// New returns a context signed in as user against api, with its own SQLite
// state file in UTC. Confirmation prompts answer yes.
func New(t *testing.T, api *testutil.FakeAPI, user string) (*cli.Context, *Buffer) {
	t.Helper()
	var identity cli.Identity = auth.NewStatic("")
	if user != "" {
		identity = auth.NewStatic(testutil.TokenExpiring(t, user, Now.AddDate(10, 0, 0)))
	}
	return NewWithIdentity(t, api, identity)
}

// NewWithIdentity is New with a caller-supplied identity source.
func NewWithIdentity(t *testing.T, api *testutil.FakeAPI, identity cli.Identity) (*cli.Context, *Buffer) {
	t.Helper()
	cfg := config.Default()
	cfg.State = filepath.Join(t.TempDir(), "state.db")
	cfg.Timeout = 5 * time.Second
	cfg.Timezone = "UTC"
	if api != nil {
		cfg.APIURL = api.URL()
	}

	out := &Buffer{}
	ctx := &cli.Context{
		Config:   cfg,
		Out:      out,
		Identity: identity,
		Now:      func() time.Time { return Now },
	}
	t.Cleanup(func() {
		if err := ctx.Close(); err != nil {
			t.Errorf("close local state: %v", err)
		}
	})
	return ctx, out
}

// Answer makes ctx answer every confirmation with ok and returns how many
// times it was asked.
func Answer(ctx *cli.Context, ok bool) *int {
	asked := 0
	ctx.Confirm = func(string, string) (bool, error) {
		asked++
		return ok, nil
	}
	return &asked
}
