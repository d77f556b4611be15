// Package remote talks to the habit persistence API.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/julianstephens/habitual/internal/auth"
	"github.com/julianstephens/habitual/internal/constants"
	apperrors "github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/logger"
)

// TokenSource supplies the bearer token for each request
type TokenSource interface {
	Token() (string, error)
}

// StaticToken is a TokenSource that always returns itself
type StaticToken string

func (t StaticToken) Token() (string, error) {
	return string(t), nil
}

// Client is a thin JSON client for the persistence API. It never retries.
type Client struct {
	baseURL  *url.URL
	http     *http.Client
	tokens   TokenSource
	now      func() time.Time
	logLimit int
	log      *log.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithClock sets the clock used to check token expiry.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// WithLogLimit bounds how many logs RefreshAll fetches.
func WithLogLimit(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.logLimit = n
		}
	}
}

func NewClient(baseURL string, tokens TokenSource, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid API URL %q", baseURL)
	}
	c := &Client{
		baseURL:  u,
		http:     &http.Client{Timeout: constants.DefaultHTTPTimeout},
		tokens:   tokens,
		now:      time.Now,
		logLimit: constants.DefaultLogLimit,
		log:      logger.Remote(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}

// bearer returns the token to send, failing fast when there is none or when
// it is a JWT that has already expired.
func (c *Client) bearer(op string) (string, error) {
	if c.tokens == nil {
		return "", apperrors.New(op, apperrors.KindAuth, "no session token")
	}
	tok, err := c.tokens.Token()
	if err != nil {
		return "", apperrors.Wrap(op, apperrors.KindAuth, err)
	}
	if strings.TrimSpace(tok) == "" {
		return "", apperrors.New(op, apperrors.KindAuth, "no session token")
	}
	if claims, err := auth.ParseToken(tok); err == nil && claims.Expired(c.now()) {
		return "", apperrors.New(op, apperrors.KindAuth, "session token expired")
	}
	return tok, nil
}

// do sends one request and decodes the envelope's data into out (if non-nil).
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body, out interface{}) error {
	tok, err := c.bearer(op)
	if err != nil {
		return err
	}

	u := *c.baseURL
	u.Path = c.baseURL.Path + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return apperrors.Wrap(op, apperrors.KindInternal, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return apperrors.Wrap(op, apperrors.KindInternal, err)
	}
	reqID := uuid.NewString()
	req.Header.Set("Authorization", "Bearer "+tok)
	req.Header.Set("Accept", "application/json")
	req.Header.Set(constants.RequestIDHeader, reqID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("request failed", "op", op, "request_id", reqID, "err", err)
		return apperrors.Wrap(op, apperrors.KindNetwork, err)
	}
	defer resp.Body.Close()

	c.log.Debug("request",
		"op", op,
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"request_id", reqID,
		"elapsed", time.Since(start))

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.Wrap(op, apperrors.KindNetwork, err)
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode >= 300 {
		e := &apperrors.Error{Op: op, Kind: kindForStatus(resp.StatusCode), Status: resp.StatusCode}
		if decodeErr == nil && env.Message != "" {
			e.Message = env.Message
		} else {
			e.Message = http.StatusText(resp.StatusCode)
		}
		return e
	}
	if decodeErr != nil {
		return apperrors.Wrap(op, apperrors.KindNetwork, fmt.Errorf("undecodable response: %w", decodeErr))
	}
	if !env.Success {
		msg := env.Message
		if msg == "" {
			msg = "request rejected"
		}
		return &apperrors.Error{Op: op, Kind: apperrors.KindValidation, Status: resp.StatusCode, Message: msg}
	}
	if out == nil {
		return nil
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return apperrors.Wrap(op, apperrors.KindNetwork, errors.New("response has no data"))
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return apperrors.Wrap(op, apperrors.KindNetwork, fmt.Errorf("undecodable response: %w", err))
	}
	return nil
}

func kindForStatus(status int) apperrors.Kind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return apperrors.KindAuth
	case status == http.StatusNotFound:
		return apperrors.KindNotFound
	case status >= 500:
		return apperrors.KindNetwork
	case status >= 400:
		return apperrors.KindValidation
	default:
		return apperrors.KindNetwork
	}
}

func requireID(op, what, id string) error {
	if strings.TrimSpace(id) == "" {
		return apperrors.Validation(op, "%s id is required", what)
	}
	return nil
}
