package remote

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	apperrors "github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/utils"
)

// LogFilter narrows ListLogs. Zero fields do not filter.
type LogFilter struct {
	HabitID   string
	StartDate string // YYYY-MM-DD, inclusive
	EndDate   string // YYYY-MM-DD, inclusive
	Completed *bool
	Limit     int
}

func (f LogFilter) query(op string) (url.Values, error) {
	q := url.Values{}
	if f.HabitID != "" {
		q.Set("habit", f.HabitID)
	}
	for name, d := range map[string]string{"startDate": f.StartDate, "endDate": f.EndDate} {
		if d == "" {
			continue
		}
		if _, err := utils.ParseDate(d); err != nil {
			return nil, apperrors.Validation(op, "invalid %s %q (expected YYYY-MM-DD)", name, d)
		}
		q.Set(name, d)
	}
	if f.StartDate != "" && f.EndDate != "" && f.StartDate > f.EndDate {
		return nil, apperrors.Validation(op, "startDate %s is after endDate %s", f.StartDate, f.EndDate)
	}
	if f.Completed != nil {
		q.Set("completed", strconv.FormatBool(*f.Completed))
	}
	if f.Limit < 0 {
		return nil, apperrors.Validation(op, "limit cannot be negative")
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	return q, nil
}

// ListLogs returns logs with Date truncated to the calendar day.
func (c *Client) ListLogs(ctx context.Context, filter LogFilter) ([]models.HabitLog, error) {
	const op = "logs.list"
	q, err := filter.query(op)
	if err != nil {
		return nil, err
	}
	var wire []wireLog
	if err := c.do(ctx, op, http.MethodGet, "/logs", q, nil, &wire); err != nil {
		return nil, err
	}
	logs, err := logModels(wire)
	if err != nil {
		return nil, apperrors.Wrap(op, apperrors.KindNetwork, err)
	}
	return logs, nil
}

// UpsertLog creates the log for (HabitID, Date), or updates it if the API
// already has one for that day.
func (c *Client) UpsertLog(ctx context.Context, l models.HabitLog) (models.HabitLog, error) {
	const op = "logs.upsert"
	if err := l.Validate(); err != nil {
		return models.HabitLog{}, apperrors.Validation(op, "%v", err)
	}
	return c.sendLog(ctx, op, http.MethodPost, "/logs", l)
}

func (c *Client) UpdateLog(ctx context.Context, l models.HabitLog) (models.HabitLog, error) {
	const op = "logs.update"
	if err := requireID(op, "log", l.ID); err != nil {
		return models.HabitLog{}, err
	}
	if err := l.Validate(); err != nil {
		return models.HabitLog{}, apperrors.Validation(op, "%v", err)
	}
	return c.sendLog(ctx, op, http.MethodPut, "/logs/"+l.ID, l)
}

func (c *Client) DeleteLog(ctx context.Context, id string) error {
	const op = "logs.delete"
	if err := requireID(op, "log", id); err != nil {
		return err
	}
	return c.do(ctx, op, http.MethodDelete, "/logs/"+id, nil, nil, nil)
}

func (c *Client) sendLog(ctx context.Context, op, method, path string, l models.HabitLog) (models.HabitLog, error) {
	var w wireLog
	if err := c.do(ctx, op, method, path, nil, logPayload(l), &w); err != nil {
		return models.HabitLog{}, err
	}
	out, err := w.model()
	if err != nil {
		return models.HabitLog{}, apperrors.Wrap(op, apperrors.KindNetwork, err)
	}
	return out, nil
}
