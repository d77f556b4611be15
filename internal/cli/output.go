package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/gosuri/uitable"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/models"
)

// Styles are the text styles for one theme
type Styles struct {
	Title   lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Accent  lipgloss.Style
}

type palette struct {
	title, muted, success, warning, accent lipgloss.TerminalColor
}

var palettes = map[constants.Theme]palette{
	constants.ThemeLight: {
		title:   lipgloss.Color("55"),
		muted:   lipgloss.Color("244"),
		success: lipgloss.Color("28"),
		warning: lipgloss.Color("166"),
		accent:  lipgloss.Color("25"),
	},
	constants.ThemeDark: {
		title:   lipgloss.Color("205"),
		muted:   lipgloss.Color("240"),
		success: lipgloss.Color("42"),
		warning: lipgloss.Color("214"),
		accent:  lipgloss.Color("81"),
	},
	constants.ThemeSystem: {
		title:   lipgloss.AdaptiveColor{Light: "55", Dark: "205"},
		muted:   lipgloss.AdaptiveColor{Light: "244", Dark: "240"},
		success: lipgloss.AdaptiveColor{Light: "28", Dark: "42"},
		warning: lipgloss.AdaptiveColor{Light: "166", Dark: "214"},
		accent:  lipgloss.AdaptiveColor{Light: "25", Dark: "81"},
	},
}

// NewStyles builds the styles for theme. Unknown themes follow the terminal.
func NewStyles(theme constants.Theme) Styles {
	p, ok := palettes[theme]
	if !ok {
		p = palettes[constants.ThemeSystem]
	}
	return Styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(p.title),
		Muted:   lipgloss.NewStyle().Foreground(p.muted),
		Success: lipgloss.NewStyle().Foreground(p.success),
		Warning: lipgloss.NewStyle().Foreground(p.warning),
		Accent:  lipgloss.NewStyle().Foreground(p.accent),
	}
}

// NewTable returns a table with a styled header row.
func NewTable(s Styles, headers ...string) *uitable.Table {
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 48
	tbl.Wrap = true
	if len(headers) > 0 {
		cells := make([]interface{}, len(headers))
		for i, h := range headers {
			cells[i] = s.Title.Render(h)
		}
		tbl.AddRow(cells...)
	}
	return tbl
}

// Check renders a completion mark.
func (s Styles) Check(done bool) string {
	if done {
		return s.Success.Render("✓")
	}
	return s.Muted.Render("·")
}

// Streak renders a streak count, highlighted once it is running.
func (s Styles) Streak(n int) string {
	if n == 0 {
		return s.Muted.Render("0")
	}
	return s.Warning.Render(fmt.Sprintf("%d🔥", n))
}

// BadgeLine renders an earned badge with its catalog entry.
func (s Styles) BadgeLine(rule models.BadgeRule, scope string) string {
	var b strings.Builder
	b.WriteString(s.Accent.Render(rule.Name))
	if scope != "" {
		b.WriteString(s.Muted.Render(" (" + scope + ")"))
	}
	return b.String()
}

// PromptConfirm asks a yes/no question on the terminal.
func PromptConfirm(title, description string) (bool, error) {
	var ok bool
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Yes").
				Negative("No").
				Value(&ok),
		),
	).WithTheme(huh.ThemeDracula()).Run()
	if err != nil {
		return false, err
	}
	return ok, nil
}
