package localstate

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/julianstephens/habitual/internal/constants"
	apperrors "github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/models"
)

type settingRow struct {
	Key   string `db:"key"`
	Value string `db:"value"`
}

// Settings returns the stored preferences with defaults filled in for
// anything never saved.
func (s *Store) Settings(ctx context.Context) (models.Settings, error) {
	query, args, err := s.sb.Select("key", "value").From("settings").ToSql()
	if err != nil {
		return models.Settings{}, err
	}

	var rows []settingRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return models.Settings{}, fmt.Errorf("failed to read settings: %w", err)
	}

	data := make(map[string]string, len(rows))
	for _, r := range rows {
		data[r.Key] = r.Value
	}
	settings, err := models.MapToSettings(data)
	if err != nil {
		return models.Settings{}, err
	}
	models.ApplyDefaultSettings(&settings)
	return settings, nil
}

// SaveSettings validates and writes every preference in one transaction.
func (s *Store) SaveSettings(ctx context.Context, settings models.Settings) error {
	if err := ValidateSettings(settings); err != nil {
		return err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for key, value := range models.SettingsToMap(settings) {
		query, args, err := s.upsertSetting(key, value).ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to save setting %s: %w", key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	s.log.Debug("settings saved", "theme", settings.Theme, "timezone", settings.Timezone, "log_limit", settings.LogLimit)
	return nil
}

// SetTheme updates only the theme preference.
func (s *Store) SetTheme(ctx context.Context, theme constants.Theme) error {
	if !models.ValidTheme(theme) {
		return apperrors.Validation("localstate.set_theme", "unknown theme %q (expected light, dark or system)", theme)
	}
	query, args, err := s.upsertSetting(constants.SettingTheme, string(theme)).ToSql()
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to save theme: %w", err)
	}
	return nil
}

// Theme returns the theme preference, "system" when unset.
func (s *Store) Theme(ctx context.Context) (constants.Theme, error) {
	settings, err := s.Settings(ctx)
	if err != nil {
		return "", err
	}
	return settings.Theme, nil
}

func (s *Store) upsertSetting(key, value string) sq.InsertBuilder {
	return s.sb.Insert("settings").
		Columns("key", "value").
		Values(key, value).
		Suffix("ON CONFLICT (key) DO UPDATE SET value = excluded.value")
}

// ValidateSettings rejects unknown themes, unloadable timezones and
// non-positive log limits.
func ValidateSettings(settings models.Settings) error {
	const op = "localstate.save_settings"
	if !models.ValidTheme(settings.Theme) {
		return apperrors.Validation(op, "unknown theme %q (expected light, dark or system)", settings.Theme)
	}
	if _, err := time.LoadLocation(settings.Timezone); err != nil {
		return apperrors.Validation(op, "unknown timezone %q", settings.Timezone)
	}
	if settings.LogLimit < 1 {
		return apperrors.Validation(op, "log limit must be at least 1, got %d", settings.LogLimit)
	}
	return nil
}
