package tracker

import (
	"errors"
	"fmt"
	"strings"

	apperrors "github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/store"
)

// ErrSessionChanged is returned when the identity changed while a mutation
// was in flight. The result is discarded.
var ErrSessionChanged = errors.New("session changed before the change could be applied")

func wrap(action string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, store.ErrStaleEpoch) {
		err = ErrSessionChanged
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}

func invalid(action, format string, args ...interface{}) error {
	return wrap(action, apperrors.Validation("tracker."+opName(action), format, args...))
}

func opName(action string) string {
	return strings.ReplaceAll(action, " ", "_")
}
