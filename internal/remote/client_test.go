package remote

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/habitual/internal/constants"
	apperrors "github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/testutil"
)

func newClient(t *testing.T, api *testutil.FakeAPI, user string) *Client {
	t.Helper()
	c, err := NewClient(api.URL(), StaticToken(testutil.Token(t, user)))
	require.NoError(t, err)
	return c
}

func TestNewClient_InvalidURL(t *testing.T) {
	for _, u := range []string{"", "localhost:5000", "://bad"} {
		_, err := NewClient(u, StaticToken("x"))
		assert.Error(t, err, "NewClient(%q)", u)
	}
}

func TestCategoriesRoundTrip(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	c := newClient(t, api, "alice")
	ctx := context.Background()

	created, err := c.CreateCategory(ctx, models.Category{Name: "Health", Color: "#0f0", Icon: "heart"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Health", created.Name)

	second, err := c.CreateCategory(ctx, models.Category{Name: "Work", Order: 1})
	require.NoError(t, err)

	created.Name = "Wellness"
	updated, err := c.UpdateCategory(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, "Wellness", updated.Name)

	require.NoError(t, c.ReorderCategories(ctx, []string{second.ID, created.ID}))

	list, err := c.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, created.ID, list[1].ID)

	require.NoError(t, c.DeleteCategory(ctx, second.ID))
	list, err = c.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestHabitWireMapping(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	c := newClient(t, api, "alice")
	ctx := context.Background()

	cat := api.SeedCategory("alice", models.Category{Name: "Health"})
	h, err := c.CreateHabit(ctx, models.Habit{
		Name:            "Run",
		CategoryID:      cat.ID,
		Frequency:       constants.FrequencyWeekly,
		ReminderEnabled: true,
		ReminderTime:    "07:30",
		Active:          true,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, h.ID)
	assert.Equal(t, cat.ID, h.CategoryID)
	assert.Equal(t, constants.FrequencyWeekly, h.Frequency)
	assert.True(t, h.ReminderEnabled)
	assert.Equal(t, "07:30", h.ReminderTime)
	assert.False(t, h.CreatedAt.IsZero())

	inactive := false
	api.SeedHabit("alice", models.Habit{Name: "Old", CategoryID: cat.ID})
	all, err := c.ListHabits(ctx, HabitFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	off, err := c.ListHabits(ctx, HabitFilter{Active: &inactive})
	require.NoError(t, err)
	require.Len(t, off, 1)
	assert.Equal(t, "Old", off[0].Name)
	assert.False(t, off[0].Active)
}

func TestLogDatesAreTruncated(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	c := newClient(t, api, "alice")
	ctx := context.Background()

	cat := api.SeedCategory("alice", models.Category{Name: "Health"})
	h := api.SeedHabit("alice", models.Habit{Name: "Run", CategoryID: cat.ID, Active: true})
	api.SeedLog("alice", models.HabitLog{HabitID: h.ID, Date: "2026-03-19", Completed: true})

	logs, err := c.ListLogs(ctx, LogFilter{HabitID: h.ID})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "2026-03-19", logs[0].Date)
	assert.Equal(t, h.ID, logs[0].HabitID)

	created, err := c.UpsertLog(ctx, models.HabitLog{HabitID: h.ID, Date: "2026-03-20", Completed: true, Timestamp: time.Now()})
	require.NoError(t, err)
	assert.Equal(t, "2026-03-20", created.Date)

	// Posting the same day again updates instead of creating a second log
	again, err := c.UpsertLog(ctx, models.HabitLog{HabitID: h.ID, Date: "2026-03-20", Completed: false})
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)
	assert.Len(t, api.Logs("alice"), 2)

	again.Completed = true
	flipped, err := c.UpdateLog(ctx, again)
	require.NoError(t, err)
	assert.True(t, flipped.Completed)

	require.NoError(t, c.DeleteLog(ctx, flipped.ID))
	assert.Len(t, api.Logs("alice"), 1)
}

func TestTemplates(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	c := newClient(t, api, "alice")
	ctx := context.Background()

	api.AddTemplate(models.HabitTemplate{ID: "tpl-water", Name: "Drink water", Icon: "droplet", Frequency: constants.FrequencyDaily})
	cat := api.SeedCategory("alice", models.Category{Name: "Health"})

	templates, err := c.ListTemplates(ctx)
	require.NoError(t, err)
	require.Len(t, templates, 1)
	assert.Equal(t, "Drink water", templates[0].Name)

	h, err := c.CreateHabitFromTemplate(ctx, "tpl-water", cat.ID)
	require.NoError(t, err)
	assert.Equal(t, "Drink water", h.Name)
	assert.Equal(t, cat.ID, h.CategoryID)
	assert.True(t, h.Active)

	_, err = c.CreateHabitFromTemplate(ctx, "missing", cat.ID)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound), "got %v", err)
}

func TestErrorClassification(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		status int
		kind   apperrors.Kind
	}{
		{"bad request", http.StatusBadRequest, apperrors.KindValidation},
		{"unprocessable", http.StatusUnprocessableEntity, apperrors.KindValidation},
		{"not found", http.StatusNotFound, apperrors.KindNotFound},
		{"unauthorized", http.StatusUnauthorized, apperrors.KindAuth},
		{"forbidden", http.StatusForbidden, apperrors.KindAuth},
		{"server error", http.StatusInternalServerError, apperrors.KindNetwork},
		{"bad gateway", http.StatusBadGateway, apperrors.KindNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := testutil.NewFakeAPI(t)
			api.Fail("categories.list", tt.status, "nope")
			c := newClient(t, api, "alice")

			_, err := c.ListCategories(ctx)
			require.Error(t, err)
			assert.Equal(t, tt.kind, apperrors.KindOf(err))

			var e *apperrors.Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, tt.status, e.Status)
			assert.Equal(t, "nope", e.Message)
			assert.Equal(t, "categories.list", e.Op)
		})
	}
}

func TestErrorClassification_Local(t *testing.T) {
	ctx := context.Background()
	api := testutil.NewFakeAPI(t)

	t.Run("validation before request", func(t *testing.T) {
		c := newClient(t, api, "alice")
		_, err := c.CreateCategory(ctx, models.Category{Name: "  "})
		assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
		_, err = c.CreateHabit(ctx, models.Habit{Name: "x"})
		assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
		_, err = c.ListLogs(ctx, LogFilter{StartDate: "2026-03-20", EndDate: "2026-03-01"})
		assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
		assert.True(t, apperrors.IsKind(c.DeleteHabit(ctx, ""), apperrors.KindValidation))
		assert.Zero(t, api.Calls("categories.create"))
		assert.Zero(t, api.Calls("habits.create"))
	})

	t.Run("missing token fails fast", func(t *testing.T) {
		c, err := NewClient(api.URL(), StaticToken(""))
		require.NoError(t, err)
		before := api.Calls("categories.list")
		_, err = c.ListCategories(ctx)
		assert.True(t, errors.Is(err, apperrors.ErrAuth), "got %v", err)
		assert.Equal(t, before, api.Calls("categories.list"))
	})

	t.Run("expired token fails fast", func(t *testing.T) {
		tok := testutil.TokenExpiring(t, "alice", time.Now().Add(-time.Minute))
		c, err := NewClient(api.URL(), StaticToken(tok))
		require.NoError(t, err)
		before := api.Calls("categories.list")
		_, err = c.ListCategories(ctx)
		assert.True(t, apperrors.IsKind(err, apperrors.KindAuth), "got %v", err)
		assert.Equal(t, before, api.Calls("categories.list"))
	})

	t.Run("undecodable body", func(t *testing.T) {
		api.FailRaw("habits.list", "<html>oops</html>")
		defer api.ClearFailures()
		c := newClient(t, api, "alice")
		_, err := c.ListHabits(ctx, HabitFilter{})
		assert.True(t, apperrors.IsKind(err, apperrors.KindNetwork), "got %v", err)
	})

	t.Run("transport failure", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()
		c, err := NewClient(url, StaticToken(testutil.Token(t, "alice")))
		require.NoError(t, err)
		_, err = c.ListCategories(ctx)
		assert.True(t, errors.Is(err, apperrors.ErrNetwork), "got %v", err)
	})
}

func TestRequestIDHeader(t *testing.T) {
	ids := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ids <- r.Header.Get(constants.RequestIDHeader)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":[]}`))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, StaticToken("opaque-token"))
	require.NoError(t, err)
	_, err = c.ListCategories(context.Background())
	require.NoError(t, err)
	assert.Len(t, <-ids, 36)
}
