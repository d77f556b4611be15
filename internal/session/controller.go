// Package session keeps the entity store in step with the signed-in identity.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/julianstephens/habitual/internal/auth"
	apperrors "github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/remote"
	"github.com/julianstephens/habitual/internal/store"
)

// ErrSuperseded is returned to waiters of a load that an identity change
// made irrelevant.
var ErrSuperseded = errors.New("session: load superseded by identity change")

// Loader fetches a full snapshot for the current identity into sink.
type Loader interface {
	RefreshAll(ctx context.Context, sink remote.SnapshotSink, epoch uint64) error
}

type loadOp struct {
	target string
	epoch  uint64
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

// Controller drives the Idle/Loading/Ready/Switching state machine. All
// methods are safe for concurrent use.
type Controller struct {
	store  *store.Store
	loader Loader
	tokens *auth.Holder
	log    *log.Logger

	mu        sync.Mutex
	state     State
	target    string
	pending   *loadOp
	observers []func(Transition)
	onLoaded  []func(userID string, epoch uint64)
	wg        sync.WaitGroup
}

type Option func(*Controller)

// WithTokenHolder makes the controller publish each event's token to h
// before loading, so the loader authenticates as the new identity.
func WithTokenHolder(h *auth.Holder) Option {
	return func(c *Controller) { c.tokens = h }
}

func New(st *store.Store, loader Loader, opts ...Option) *Controller {
	c := &Controller{
		store:  st,
		loader: loader,
		log:    logger.Session(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// UserID returns the identity the controller is loading or showing.
func (c *Controller) UserID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

// OnTransition registers fn to be called after every state change. fn runs
// on the goroutine that caused the change and must not block.
func (c *Controller) OnTransition(fn func(Transition)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, fn)
}

// OnLoaded registers fn to run after a snapshot for userID was applied and
// before the controller reports Ready.
func (c *Controller) OnLoaded(fn func(userID string, epoch uint64)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onLoaded = append(c.onLoaded, fn)
}

// HandleEvent applies an identity event from an auth source.
func (c *Controller) HandleEvent(ctx context.Context, ev auth.Event) {
	if c.tokens != nil {
		c.tokens.Set(ev.Token)
	}
	c.HandleIdentity(ctx, ev.UserID)
}

// HandleIdentity reconciles the store with userID. An empty id signs out.
// Loads run in the background; use Await to wait for one.
func (c *Controller) HandleIdentity(ctx context.Context, userID string) {
	c.mu.Lock()
	var changes []Transition

	switch {
	case userID == "":
		c.cancelPendingLocked()
		c.store.Clear()
		c.target = ""
		changes = c.setStateLocked(changes, Idle)

	case userID == c.target && (c.state == Loading || c.state == Ready):
		c.mu.Unlock()
		c.log.Debug("identity unchanged", "user", userID)
		return

	default:
		c.cancelPendingLocked()
		c.target = userID
		if c.state == Loading || c.state == Ready {
			c.store.SetSwitching(true)
			changes = c.setStateLocked(changes, Switching)
		}
		epoch := c.store.Clear()
		c.store.SetLoading(true)
		changes = c.setStateLocked(changes, Loading)
		c.startLoadLocked(ctx, userID, epoch)
	}

	observers := c.observers
	c.mu.Unlock()
	notify(observers, changes)
}

// Refresh reloads the current identity's data and waits for the result. A
// failed refresh while Ready keeps the data already loaded; a failed initial
// load leaves the controller in Loading so Refresh can be retried.
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	if c.target == "" {
		c.mu.Unlock()
		return apperrors.New("session.refresh", apperrors.KindAuth, "not signed in")
	}
	op := c.pending
	if op == nil {
		c.store.SetLoading(true)
		op = c.startLoadLocked(ctx, c.target, c.store.Epoch())
	}
	c.mu.Unlock()

	return c.wait(ctx, op)
}

// Await waits for the load in flight, if any. It returns nil when the
// controller is Ready with nothing pending.
func (c *Controller) Await(ctx context.Context) error {
	c.mu.Lock()
	op := c.pending
	state := c.state
	c.mu.Unlock()

	if op == nil {
		if state == Ready {
			return nil
		}
		if state == Idle {
			return apperrors.New("session.await", apperrors.KindAuth, "not signed in")
		}
		return apperrors.New("session.await", apperrors.KindInternal, "no data loaded")
	}
	return c.wait(ctx, op)
}

// Run consumes identity events until ctx is done or events is closed.
func (c *Controller) Run(ctx context.Context, events <-chan auth.Event) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			c.HandleEvent(ctx, ev)
		}
	}
}

// Wait blocks until every background load has finished.
func (c *Controller) Wait() {
	c.wg.Wait()
}

func (c *Controller) wait(ctx context.Context, op *loadOp) error {
	select {
	case <-op.done:
		return op.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Controller) startLoadLocked(ctx context.Context, target string, epoch uint64) *loadOp {
	lctx, cancel := context.WithCancel(ctx)
	op := &loadOp{target: target, epoch: epoch, cancel: cancel, done: make(chan struct{})}
	c.pending = op
	c.wg.Add(1)
	go c.load(lctx, op)
	return op
}

func (c *Controller) cancelPendingLocked() {
	if c.pending != nil {
		c.pending.cancel()
		c.pending = nil
	}
}

// current reports whether op still belongs to the session in effect.
func (c *Controller) currentLocked(op *loadOp) bool {
	return c.target == op.target && c.store.Epoch() == op.epoch
}

func (c *Controller) load(ctx context.Context, op *loadOp) {
	defer c.wg.Done()
	defer op.cancel()
	defer close(op.done)

	c.log.Debug("loading", "user", op.target, "epoch", op.epoch)
	err := c.loader.RefreshAll(ctx, c.store, op.epoch)

	c.mu.Lock()
	if !c.currentLocked(op) || errors.Is(err, store.ErrStaleEpoch) {
		c.mu.Unlock()
		c.log.Debug("dropping stale load", "user", op.target, "epoch", op.epoch)
		op.err = ErrSuperseded
		return
	}
	if err != nil {
		if c.pending == op {
			c.pending = nil
		}
		c.store.SetLoading(false)
		c.mu.Unlock()
		c.log.Warn("load failed", "user", op.target, "state", c.State(), "err", err)
		op.err = err
		return
	}
	hooks := c.onLoaded
	c.mu.Unlock()

	for _, fn := range hooks {
		fn(op.target, op.epoch)
	}

	c.mu.Lock()
	if !c.currentLocked(op) {
		c.mu.Unlock()
		op.err = ErrSuperseded
		return
	}
	if c.pending == op {
		c.pending = nil
	}
	c.store.SetLoading(false)
	changes := c.setStateLocked(nil, Ready)
	observers := c.observers
	c.mu.Unlock()

	c.log.Info("session ready", "user", op.target)
	notify(observers, changes)
}

func (c *Controller) setStateLocked(changes []Transition, to State) []Transition {
	if c.state == to {
		return changes
	}
	changes = append(changes, Transition{From: c.state, To: to, UserID: c.target})
	c.state = to
	return changes
}

func notify(observers []func(Transition), changes []Transition) {
	for _, t := range changes {
		for _, fn := range observers {
			fn(t)
		}
	}
}
