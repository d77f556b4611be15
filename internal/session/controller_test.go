package session

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/habitual/internal/auth"
	apperrors "github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/remote"
	"github.com/julianstephens/habitual/internal/store"
	"github.com/julianstephens/habitual/internal/testutil"
)

type harness struct {
	api   *testutil.FakeAPI
	store *store.Store
	ctrl  *Controller

	mu          sync.Mutex
	transitions []Transition
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	api := testutil.NewFakeAPI(t)
	holder := &auth.Holder{}
	client, err := remote.NewClient(api.URL(), holder)
	require.NoError(t, err)

	h := &harness{api: api, store: store.New()}
	h.ctrl = New(h.store, client, WithTokenHolder(holder))
	h.ctrl.OnTransition(func(tr Transition) {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.transitions = append(h.transitions, tr)
	})
	t.Cleanup(h.ctrl.Wait)
	return h
}

func (h *harness) seed(user, category string, habits ...string) {
	cat := h.api.SeedCategory(user, models.Category{Name: category})
	for _, name := range habits {
		hb := h.api.SeedHabit(user, models.Habit{Name: name, CategoryID: cat.ID, Active: true})
		h.api.SeedLog(user, models.HabitLog{HabitID: hb.ID, Date: "2026-03-20", Completed: true})
	}
}

func (h *harness) signIn(t *testing.T, user string) {
	h.ctrl.HandleEvent(context.Background(), auth.Event{UserID: user, Token: testutil.Token(t, user)})
}

func (h *harness) states() []State {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []State
	for _, tr := range h.transitions {
		out = append(out, tr.To)
	}
	return out
}

func awaitCtx(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestInitialLoad(t *testing.T) {
	h := newHarness(t)
	h.seed("alice", "Health", "Run", "Stretch")

	h.signIn(t, "alice")
	require.NoError(t, h.ctrl.Await(awaitCtx(t)))

	assert.Equal(t, Ready, h.ctrl.State())
	assert.Equal(t, "alice", h.ctrl.UserID())
	assert.False(t, h.store.Loading())
	assert.Len(t, h.store.Habits(), 2)
	assert.Len(t, h.store.Logs(), 2)
	assert.Equal(t, []State{Loading, Ready}, h.states())
}

func TestSameIdentityIsNoop(t *testing.T) {
	h := newHarness(t)
	h.seed("alice", "Health", "Run")

	h.signIn(t, "alice")
	require.NoError(t, h.ctrl.Await(awaitCtx(t)))
	calls := h.api.Calls("categories.list")

	h.signIn(t, "alice")
	assert.Equal(t, Ready, h.ctrl.State())
	assert.Equal(t, calls, h.api.Calls("categories.list"))
}

func TestSignOutClears(t *testing.T) {
	h := newHarness(t)
	h.seed("alice", "Health", "Run")

	h.signIn(t, "alice")
	require.NoError(t, h.ctrl.Await(awaitCtx(t)))

	h.ctrl.HandleEvent(context.Background(), auth.Event{})
	assert.Equal(t, Idle, h.ctrl.State())
	assert.Empty(t, h.store.Habits())
	assert.Empty(t, h.store.Categories())

	err := h.ctrl.Refresh(context.Background())
	assert.True(t, apperrors.IsKind(err, apperrors.KindAuth), "got %v", err)
}

func TestIdentitySwitchDropsInFlightFetch(t *testing.T) {
	h := newHarness(t)
	h.seed("alice", "Alice things", "Read", "Write", "Draw")
	h.seed("bob", "Bob things", "Lift")

	gate := h.api.HoldUser("logs.list", "alice")
	defer gate.Release()

	h.signIn(t, "alice")
	select {
	case <-gate.Entered():
	case <-time.After(5 * time.Second):
		t.Fatal("alice's fetch never reached the API")
	}

	h.signIn(t, "bob")
	require.NoError(t, h.ctrl.Await(awaitCtx(t)))
	require.Equal(t, Ready, h.ctrl.State())

	gate.Release()
	h.ctrl.Wait()

	habits := h.store.Habits()
	require.Len(t, habits, 1)
	assert.Equal(t, "Lift", habits[0].Name)
	cats := h.store.Categories()
	require.Len(t, cats, 1)
	assert.Equal(t, "Bob things", cats[0].Name)
	assert.Equal(t, "bob", h.ctrl.UserID())
	assert.Equal(t, []State{Loading, Switching, Loading, Ready}, h.states())
}

func TestSwitchingTransitionCarriesIncomingUser(t *testing.T) {
	h := newHarness(t)
	h.seed("alice", "Health", "Run")
	h.seed("bob", "Gym", "Lift")

	h.signIn(t, "alice")
	require.NoError(t, h.ctrl.Await(awaitCtx(t)))
	h.signIn(t, "bob")
	require.NoError(t, h.ctrl.Await(awaitCtx(t)))

	h.mu.Lock()
	defer h.mu.Unlock()
	var switching []Transition
	for _, tr := range h.transitions {
		if tr.To == Switching {
			switching = append(switching, tr)
		}
	}
	require.Len(t, switching, 1)
	assert.Equal(t, Ready, switching[0].From)
	assert.Equal(t, "bob", switching[0].UserID)
}

func TestFailedInitialLoadStaysLoading(t *testing.T) {
	h := newHarness(t)
	h.seed("alice", "Health", "Run")
	h.api.Fail("habits.list", http.StatusInternalServerError, "down")

	h.signIn(t, "alice")
	err := h.ctrl.Await(awaitCtx(t))
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNetwork))
	assert.Equal(t, Loading, h.ctrl.State())
	assert.Empty(t, h.store.Habits())

	h.api.ClearFailures()
	require.NoError(t, h.ctrl.Refresh(awaitCtx(t)))
	assert.Equal(t, Ready, h.ctrl.State())
	assert.Len(t, h.store.Habits(), 1)
}

func TestFailedRefreshKeepsData(t *testing.T) {
	h := newHarness(t)
	h.seed("alice", "Health", "Run")

	h.signIn(t, "alice")
	require.NoError(t, h.ctrl.Await(awaitCtx(t)))

	h.api.Fail("logs.list", http.StatusBadGateway, "upstream")
	err := h.ctrl.Refresh(awaitCtx(t))
	require.Error(t, err)

	assert.Equal(t, Ready, h.ctrl.State())
	assert.Len(t, h.store.Habits(), 1)
	assert.Len(t, h.store.Logs(), 1)
}

func TestOnLoadedRunsBeforeReady(t *testing.T) {
	h := newHarness(t)
	h.seed("alice", "Health", "Run")

	var seen []State
	h.ctrl.OnLoaded(func(userID string, epoch uint64) {
		assert.Equal(t, "alice", userID)
		assert.Equal(t, h.store.Epoch(), epoch)
		seen = append(seen, h.ctrl.State())
	})

	h.signIn(t, "alice")
	require.NoError(t, h.ctrl.Await(awaitCtx(t)))
	assert.Equal(t, []State{Loading}, seen)
}

func TestRun(t *testing.T) {
	h := newHarness(t)
	h.seed("alice", "Health", "Run")

	ready := make(chan struct{})
	var once sync.Once
	h.ctrl.OnTransition(func(tr Transition) {
		if tr.To == Ready {
			once.Do(func() { close(ready) })
		}
	})

	events := make(chan auth.Event, 1)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.ctrl.Run(ctx, events) }()

	events <- auth.Event{UserID: "alice", Token: testutil.Token(t, "alice")}
	select {
	case <-ready:
	case <-time.After(5 * time.Second):
		t.Fatal("controller never became ready")
	}

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "switching", Switching.String())
	assert.Equal(t, "unknown", State(42).String())
}
