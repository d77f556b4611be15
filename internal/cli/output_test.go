package cli

import (
	"errors"
	"strings"
	"testing"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/models"
)

func TestNewStyles_UnknownThemeFollowsSystem(t *testing.T) {
	got := NewStyles("neon")
	want := NewStyles(constants.ThemeSystem)
	if got.Title.GetForeground() != want.Title.GetForeground() {
		t.Errorf("unknown theme title colour = %v, want %v", got.Title.GetForeground(), want.Title.GetForeground())
	}
	if !got.Title.GetBold() {
		t.Error("titles should be bold")
	}
}

func TestNewTable(t *testing.T) {
	tbl := NewTable(NewStyles(constants.ThemeDark), "NAME", "STREAK")
	tbl.AddRow("Read", 4)
	out := tbl.String()

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header and one row, got %d lines:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[0], "NAME") || !strings.Contains(lines[0], "STREAK") {
		t.Errorf("header row = %q", lines[0])
	}
	if !strings.Contains(lines[1], "Read") || !strings.Contains(lines[1], "4") {
		t.Errorf("data row = %q", lines[1])
	}
}

func TestStyles_Streak(t *testing.T) {
	s := NewStyles(constants.ThemeLight)
	if got := s.Streak(0); !strings.Contains(got, "0") {
		t.Errorf("Streak(0) = %q", got)
	}
	if got := s.Streak(12); !strings.Contains(got, "12") {
		t.Errorf("Streak(12) = %q", got)
	}
}

func TestStyles_BadgeLine(t *testing.T) {
	s := NewStyles(constants.ThemeLight)
	rule := models.BadgeRule{ID: "streak-7", Name: "Week Warrior"}

	if got := s.BadgeLine(rule, ""); !strings.Contains(got, "Week Warrior") || strings.Contains(got, "(") {
		t.Errorf("BadgeLine without scope = %q", got)
	}
	if got := s.BadgeLine(rule, "Read"); !strings.Contains(got, "(Read)") {
		t.Errorf("BadgeLine with scope = %q", got)
	}
}

func TestContext_Confirmed(t *testing.T) {
	ctx := &Context{}
	ok, err := ctx.Confirmed("Delete?", "")
	if err != nil || !ok {
		t.Errorf("nil Confirm should mean yes, got %v, %v", ok, err)
	}

	boom := errors.New("no tty")
	ctx.Confirm = func(string, string) (bool, error) { return false, boom }
	if _, err := ctx.Confirmed("Delete?", ""); !errors.Is(err, boom) {
		t.Errorf("expected prompt error, got %v", err)
	}
}

func TestContext_CurrentIdentityRequiresSource(t *testing.T) {
	ctx := &Context{}
	if _, err := ctx.CurrentIdentity(); err == nil {
		t.Error("expected an error without an identity source")
	}
}
