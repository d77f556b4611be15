// Package streak derives current and longest completion streaks from habit logs.
package streak

import (
	"sort"
	"sync"
	"time"

	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/utils"
)

// Compute returns the streak data for every habit, keyed by habit id.
// today is the caller's current calendar day (YYYY-MM-DD). Habits without
// completed logs get zero-value streaks. Frequency is not considered: every
// habit uses day-granularity gaps.
func Compute(habits []models.Habit, logs []models.HabitLog, today string) map[string]models.StreakData {
	byHabit := completedDates(logs)

	result := make(map[string]models.StreakData, len(habits))
	for _, h := range habits {
		result[h.ID] = ForDates(h.ID, byHabit[h.ID], today)
	}
	return result
}

// ForDates computes a single habit's streak from its completed dates.
// dates may be unsorted and may contain duplicates.
func ForDates(habitID string, dates []string, today string) models.StreakData {
	data := models.StreakData{HabitID: habitID}

	days := uniqueDescending(dates)
	if len(days) == 0 {
		return data
	}

	data.LastCompletedDate = days[0]
	data.CurrentStreak = current(days, today)
	data.LongestStreak = longest(days)
	return data
}

func current(days []string, today string) int {
	yesterday, err := utils.AddDays(today, -1)
	if err != nil {
		return 0
	}

	anchor := -1
	for i, d := range days {
		if d == today || d == yesterday {
			anchor = i
			break
		}
		if d < yesterday {
			break
		}
	}
	if anchor < 0 {
		return 0
	}

	count := 1
	for i := anchor + 1; i < len(days); i++ {
		if !consecutive(days[i], days[i-1]) {
			break
		}
		count++
	}
	return count
}

func longest(days []string) int {
	best, run := 1, 1
	for i := 1; i < len(days); i++ {
		if consecutive(days[i], days[i-1]) {
			run++
		} else {
			run = 1
		}
		if run > best {
			best = run
		}
	}
	return best
}

// consecutive reports whether earlier is exactly one calendar day before later
func consecutive(earlier, later string) bool {
	n, err := utils.DaysBetween(earlier, later)
	return err == nil && n == 1
}

func completedDates(logs []models.HabitLog) map[string][]string {
	out := make(map[string][]string)
	for _, l := range logs {
		if !l.Completed {
			continue
		}
		out[l.HabitID] = append(out[l.HabitID], l.Date)
	}
	return out
}

func uniqueDescending(dates []string) []string {
	seen := make(map[string]struct{}, len(dates))
	out := make([]string, 0, len(dates))
	for _, d := range dates {
		if _, err := utils.ParseDate(d); err != nil {
			continue
		}
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	// YYYY-MM-DD sorts lexically in date order
	sort.Sort(sort.Reverse(sort.StringSlice(out)))
	return out
}

// Calculator caches Compute results for a given data version. Callers bump
// the version on every habit or log change.
type Calculator struct {
	mu      sync.Mutex
	now     func() time.Time
	loc     *time.Location
	version uint64
	today   string
	cached  map[string]models.StreakData
	valid   bool
}

// NewCalculator returns a calculator that resolves "today" in loc.
func NewCalculator(loc *time.Location) *Calculator {
	if loc == nil {
		loc = time.Local
	}
	return &Calculator{now: time.Now, loc: loc}
}

// SetClock replaces the time source, mainly for tests.
func (c *Calculator) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
	c.valid = false
}

// Today returns the current calendar day in the calculator's location.
func (c *Calculator) Today() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return utils.FormatDate(c.now().In(c.loc))
}

// Streaks returns the streaks for the given data version, recomputing only
// when the version or the calendar day changed since the last call.
func (c *Calculator) Streaks(version uint64, habits []models.Habit, logs []models.HabitLog) map[string]models.StreakData {
	c.mu.Lock()
	defer c.mu.Unlock()

	today := utils.FormatDate(c.now().In(c.loc))
	if !c.valid || c.version != version || c.today != today {
		c.cached = Compute(habits, logs, today)
		c.version = version
		c.today = today
		c.valid = true
	}
	return copyStreaks(c.cached)
}

func copyStreaks(in map[string]models.StreakData) map[string]models.StreakData {
	out := make(map[string]models.StreakData, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
