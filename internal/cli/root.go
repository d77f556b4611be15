package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/julianstephens/habitual/internal/auth"
	"github.com/julianstephens/habitual/internal/config"
	apperrors "github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/localstate"
	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/remote"
	"github.com/julianstephens/habitual/internal/session"
	"github.com/julianstephens/habitual/internal/store"
	"github.com/julianstephens/habitual/internal/tracker"
	"github.com/julianstephens/habitual/internal/utils"
)

// Identity is where the signed-in session token lives
type Identity interface {
	Token() (string, error)
	Current() (auth.Event, error)
	SignIn(token string) (auth.Claims, error)
	SignOut() error
	Events() <-chan auth.Event
}

var _ Identity = (*auth.KeyringProvider)(nil)

// Context is shared by every command
type Context struct {
	Config   config.Config
	Out      io.Writer
	Identity Identity

	// Confirm asks before destructive changes. Nil means always yes.
	Confirm func(title, description string) (bool, error)

	HTTPClient *http.Client
	Now        func() time.Time

	state *localstate.Store
}

// Engine is a tracker wired to the persistence API for one run
type Engine struct {
	*tracker.Tracker
	Client  *remote.Client
	Store   *store.Store
	Session *session.Controller
	Tokens  *auth.Holder
}

func (c *Context) Writer() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *Context) Printf(format string, args ...interface{}) {
	fmt.Fprintf(c.Writer(), format, args...)
}

func (c *Context) Println(args ...interface{}) {
	fmt.Fprintln(c.Writer(), args...)
}

// LocalState opens the settings and badge ledger database once per run.
func (c *Context) LocalState(ctx context.Context) (*localstate.Store, error) {
	if c.state != nil {
		return c.state, nil
	}
	st, err := localstate.Open(ctx, c.Config.State)
	if err != nil {
		return nil, fmt.Errorf("failed to open local state: %w", err)
	}
	c.state = st
	return st, nil
}

// Settings returns the stored preferences with flag overrides applied.
func (c *Context) Settings(ctx context.Context) (models.Settings, error) {
	st, err := c.LocalState(ctx)
	if err != nil {
		return models.Settings{}, err
	}
	stored, err := st.Settings(ctx)
	if err != nil {
		return models.Settings{}, err
	}
	return c.Config.Resolve(stored), nil
}

// Styles returns output styles for the stored theme, falling back to the
// system theme when local state cannot be read.
func (c *Context) Styles(ctx context.Context) Styles {
	settings, err := c.Settings(ctx)
	if err != nil {
		logger.Warn("using default theme", "error", err)
		return NewStyles("")
	}
	return NewStyles(settings.Theme)
}

// NewEngine wires a tracker without signing anybody in.
func (c *Context) NewEngine(ctx context.Context) (*Engine, error) {
	ledger, err := c.LocalState(ctx)
	if err != nil {
		return nil, err
	}
	settings, err := c.Settings(ctx)
	if err != nil {
		return nil, err
	}
	loc, err := utils.LoadLocation(settings.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", settings.Timezone, err)
	}

	holder := &auth.Holder{}
	opts := []remote.Option{remote.WithLogLimit(settings.LogLimit)}
	if c.HTTPClient != nil {
		opts = append(opts, remote.WithHTTPClient(c.HTTPClient))
	} else {
		opts = append(opts, remote.WithTimeout(c.Config.Timeout))
	}
	if c.Now != nil {
		opts = append(opts, remote.WithClock(c.Now))
	}
	client, err := remote.NewClient(c.Config.APIURL, holder, opts...)
	if err != nil {
		return nil, err
	}

	entities := store.New()
	ctrl := session.New(entities, client, session.WithTokenHolder(holder))
	ctrl.OnTransition(func(tr session.Transition) {
		logger.Debug("session transition", "from", tr.From, "to", tr.To, "user", tr.UserID)
	})

	topts := []tracker.Option{tracker.WithLedger(ledger), tracker.WithLocation(loc)}
	if c.Now != nil {
		topts = append(topts, tracker.WithClock(c.Now))
	}

	return &Engine{
		Tracker: tracker.New(entities, client, ctrl, topts...),
		Client:  client,
		Store:   entities,
		Session: ctrl,
		Tokens:  holder,
	}, nil
}

// Tracker wires an engine for the stored identity and waits until its data
// is loaded.
func (c *Context) Tracker(ctx context.Context) (*Engine, error) {
	ev, err := c.CurrentIdentity()
	if err != nil {
		return nil, err
	}
	if ev.SignedOut() {
		return nil, apperrors.New("cli.session", apperrors.KindAuth, "not signed in (run `habitual login <token>`)")
	}

	e, err := c.NewEngine(ctx)
	if err != nil {
		return nil, err
	}
	e.Session.HandleEvent(ctx, ev)
	if err := e.Session.Await(ctx); err != nil {
		return nil, fmt.Errorf("failed to load data: %w", err)
	}
	return e, nil
}

func (c *Context) CurrentIdentity() (auth.Event, error) {
	if c.Identity == nil {
		return auth.Event{}, errors.New("no identity source configured")
	}
	return c.Identity.Current()
}

// Confirmed asks for confirmation, or reports true when prompting is off.
func (c *Context) Confirmed(title, description string) (bool, error) {
	if c.Confirm == nil {
		return true, nil
	}
	return c.Confirm(title, description)
}

func (c *Context) Close() error {
	if c.state == nil {
		return nil
	}
	err := c.state.Close()
	c.state = nil
	return err
}
