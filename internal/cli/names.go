package cli

import (
	"fmt"
	"strings"

	"github.com/julianstephens/habitual/internal/models"
)

// HabitName returns the habit's name, or its id when it is not loaded.
func (e *Engine) HabitName(id string) string {
	if h, ok := e.Habit(id); ok {
		return h.Name
	}
	return id
}

// CategoryName returns the category's name, or its id when it is not loaded.
func (e *Engine) CategoryName(id string) string {
	for _, c := range e.Categories() {
		if c.ID == id {
			return c.Name
		}
	}
	return id
}

// BadgeScope names the habit or category a badge was earned for.
func (e *Engine) BadgeScope(b models.UserBadge) string {
	switch {
	case b.HabitID != "":
		return e.HabitName(b.HabitID)
	case b.CategoryID != "":
		return e.CategoryName(b.CategoryID)
	}
	return ""
}

// AnnounceBadges prints badges earned during this run.
func (c *Context) AnnounceBadges(e *Engine, s Styles) {
	for _, b := range e.RecentBadges() {
		rule, ok := e.Catalog().Lookup(b.BadgeID)
		if !ok {
			continue
		}
		c.Printf("%s %s\n", s.Success.Render("Badge earned:"), s.BadgeLine(rule, e.BadgeScope(b)))
	}
}

// FindCategory resolves ref as a category id or, failing that, a unique
// case-insensitive name.
func (e *Engine) FindCategory(ref string) (models.Category, error) {
	var matches []models.Category
	for _, c := range e.Categories() {
		if c.ID == ref {
			return c, nil
		}
		if strings.EqualFold(c.Name, ref) {
			matches = append(matches, c)
		}
	}
	switch len(matches) {
	case 0:
		return models.Category{}, fmt.Errorf("no category matches %q", ref)
	case 1:
		return matches[0], nil
	}
	return models.Category{}, fmt.Errorf("%d categories are named %q, use an id", len(matches), ref)
}

// FindHabit resolves ref as a habit id or a unique case-insensitive name.
func (e *Engine) FindHabit(ref string) (models.Habit, error) {
	var matches []models.Habit
	for _, h := range e.Habits() {
		if h.ID == ref {
			return h, nil
		}
		if strings.EqualFold(h.Name, ref) {
			matches = append(matches, h)
		}
	}
	switch len(matches) {
	case 0:
		return models.Habit{}, fmt.Errorf("no habit matches %q", ref)
	case 1:
		return matches[0], nil
	}
	return models.Habit{}, fmt.Errorf("%d habits are named %q, use an id", len(matches), ref)
}
