package testutil

import (
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
)

func (f *FakeAPI) listCategories(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]fakeCategory{}, f.data(userOf(r)).categories...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	writeJSON(w, http.StatusOK, out)
}

func (f *FakeAPI) createCategory(w http.ResponseWriter, r *http.Request) {
	var in fakeCategory
	if !decode(w, r, &in) {
		return
	}
	if strings.TrimSpace(in.Name) == "" {
		writeError(w, http.StatusBadRequest, "Category name is required")
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	d := f.data(userOf(r))
	in.ID = f.nextID("cat")
	d.categories = append(d.categories, in)
	writeJSON(w, http.StatusCreated, in)
}

func (f *FakeAPI) updateCategory(w http.ResponseWriter, r *http.Request) {
	var in fakeCategory
	if !decode(w, r, &in) {
		return
	}
	id := mux.Vars(r)["id"]
	f.mu.Lock()
	defer f.mu.Unlock()
	d := f.data(userOf(r))
	for i := range d.categories {
		if d.categories[i].ID == id {
			in.ID = id
			d.categories[i] = in
			writeJSON(w, http.StatusOK, in)
			return
		}
	}
	writeError(w, http.StatusNotFound, "Category not found")
}

func (f *FakeAPI) deleteCategory(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	f.mu.Lock()
	defer f.mu.Unlock()
	d := f.data(userOf(r))
	idx := -1
	for i := range d.categories {
		if d.categories[i].ID == id {
			idx = i
		}
	}
	if idx < 0 {
		writeError(w, http.StatusNotFound, "Category not found")
		return
	}
	d.categories = append(d.categories[:idx], d.categories[idx+1:]...)

	removed := map[string]bool{}
	var habits []fakeHabit
	for _, h := range d.habits {
		if h.Category == id {
			removed[h.ID] = true
			continue
		}
		habits = append(habits, h)
	}
	d.habits = habits
	var logs []fakeLog
	for _, l := range d.logs {
		if !removed[l.Habit] {
			logs = append(logs, l)
		}
	}
	d.logs = logs
	writeJSON(w, http.StatusOK, nil)
}

func (f *FakeAPI) reorderCategories(w http.ResponseWriter, r *http.Request) {
	var in struct {
		CategoryIDs []string `json:"categoryIds"`
	}
	if !decode(w, r, &in) {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	d := f.data(userOf(r))
	for order, id := range in.CategoryIDs {
		for i := range d.categories {
			if d.categories[i].ID == id {
				d.categories[i].Order = order
			}
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

func (f *FakeAPI) listHabits(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []fakeHabit
	for _, h := range f.data(userOf(r)).habits {
		if v := q.Get("active"); v != "" && strconv.FormatBool(h.IsActive) != v {
			continue
		}
		if v := q.Get("category"); v != "" && h.Category != v {
			continue
		}
		if v := q.Get("frequency"); v != "" && h.Frequency != v {
			continue
		}
		out = append(out, h)
	}
	if out == nil {
		out = []fakeHabit{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (d *fakeData) hasCategory(id string) bool {
	for _, c := range d.categories {
		if c.ID == id {
			return true
		}
	}
	return false
}

func (d *fakeData) hasHabit(id string) bool {
	for _, h := range d.habits {
		if h.ID == id {
			return true
		}
	}
	return false
}

func (f *FakeAPI) createHabit(w http.ResponseWriter, r *http.Request) {
	var in fakeHabit
	if !decode(w, r, &in) {
		return
	}
	if strings.TrimSpace(in.Name) == "" {
		writeError(w, http.StatusBadRequest, "Habit name is required")
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	d := f.data(userOf(r))
	if !d.hasCategory(in.Category) {
		writeError(w, http.StatusBadRequest, "Category does not exist")
		return
	}
	in.ID = f.nextID("habit")
	in.CreatedAt = time.Now().UTC()
	d.habits = append(d.habits, in)
	writeJSON(w, http.StatusCreated, in)
}

func (f *FakeAPI) updateHabit(w http.ResponseWriter, r *http.Request) {
	var in fakeHabit
	if !decode(w, r, &in) {
		return
	}
	id := mux.Vars(r)["id"]
	f.mu.Lock()
	defer f.mu.Unlock()
	d := f.data(userOf(r))
	if !d.hasCategory(in.Category) {
		writeError(w, http.StatusBadRequest, "Category does not exist")
		return
	}
	for i := range d.habits {
		if d.habits[i].ID == id {
			in.ID = id
			in.CreatedAt = d.habits[i].CreatedAt
			d.habits[i] = in
			writeJSON(w, http.StatusOK, in)
			return
		}
	}
	writeError(w, http.StatusNotFound, "Habit not found")
}

func (f *FakeAPI) deleteHabit(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	f.mu.Lock()
	defer f.mu.Unlock()
	d := f.data(userOf(r))
	if !d.hasHabit(id) {
		writeError(w, http.StatusNotFound, "Habit not found")
		return
	}
	var habits []fakeHabit
	for _, h := range d.habits {
		if h.ID != id {
			habits = append(habits, h)
		}
	}
	d.habits = habits
	var logs []fakeLog
	for _, l := range d.logs {
		if l.Habit != id {
			logs = append(logs, l)
		}
	}
	d.logs = logs
	writeJSON(w, http.StatusOK, nil)
}

func (f *FakeAPI) reorderHabits(w http.ResponseWriter, r *http.Request) {
	var in struct {
		CategoryID string   `json:"categoryId"`
		HabitIDs   []string `json:"habitIds"`
	}
	if !decode(w, r, &in) {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	d := f.data(userOf(r))
	for order, id := range in.HabitIDs {
		for i := range d.habits {
			if d.habits[i].ID == id && d.habits[i].Category == in.CategoryID {
				d.habits[i].Order = order
			}
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

func (f *FakeAPI) listTemplates(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]fakeTemplate{}, f.templates...)
	writeJSON(w, http.StatusOK, out)
}

func (f *FakeAPI) fromTemplate(w http.ResponseWriter, r *http.Request) {
	var in struct {
		CategoryID string `json:"categoryId"`
	}
	if !decode(w, r, &in) {
		return
	}
	templateID := mux.Vars(r)["templateId"]
	f.mu.Lock()
	defer f.mu.Unlock()
	var tpl *fakeTemplate
	for i := range f.templates {
		if f.templates[i].ID == templateID {
			tpl = &f.templates[i]
		}
	}
	if tpl == nil {
		writeError(w, http.StatusNotFound, "Template not found")
		return
	}
	d := f.data(userOf(r))
	if !d.hasCategory(in.CategoryID) {
		writeError(w, http.StatusBadRequest, "Category does not exist")
		return
	}
	order := 0
	for _, h := range d.habits {
		if h.Category == in.CategoryID && h.Order >= order {
			order = h.Order + 1
		}
	}
	h := fakeHabit{
		ID:          f.nextID("habit"),
		Name:        tpl.Name,
		Description: tpl.Description,
		Icon:        tpl.Icon,
		Color:       tpl.Color,
		Category:    in.CategoryID,
		Frequency:   tpl.Frequency,
		CreatedAt:   time.Now().UTC(),
		Order:       order,
		IsActive:    true,
	}
	d.habits = append(d.habits, h)
	writeJSON(w, http.StatusCreated, h)
}

func (f *FakeAPI) listLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []fakeLog
	for _, l := range f.data(userOf(r)).logs {
		if v := q.Get("habit"); v != "" && l.Habit != v {
			continue
		}
		if v := q.Get("startDate"); v != "" && l.Date < v {
			continue
		}
		if v := q.Get("endDate"); v != "" && l.Date > v {
			continue
		}
		if v := q.Get("completed"); v != "" && strconv.FormatBool(l.Completed) != v {
			continue
		}
		out = append(out, l)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	if n, err := strconv.Atoi(q.Get("limit")); err == nil && n > 0 && len(out) > n {
		out = out[:n]
	}
	wire := make([]fakeLog, 0, len(out))
	for _, l := range out {
		wire = append(wire, wireDate(l))
	}
	writeJSON(w, http.StatusOK, wire)
}

func (f *FakeAPI) upsertLog(w http.ResponseWriter, r *http.Request) {
	var in fakeLog
	if !decode(w, r, &in) {
		return
	}
	if len(in.Date) > 10 {
		in.Date = in.Date[:10]
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	d := f.data(userOf(r))
	if !d.hasHabit(in.Habit) {
		writeError(w, http.StatusNotFound, "Habit not found")
		return
	}
	for i := range d.logs {
		if d.logs[i].Habit == in.Habit && d.logs[i].Date == in.Date {
			in.ID = d.logs[i].ID
			d.logs[i] = in
			writeJSON(w, http.StatusOK, wireDate(in))
			return
		}
	}
	in.ID = f.nextID("log")
	d.logs = append(d.logs, in)
	writeJSON(w, http.StatusCreated, wireDate(in))
}

func (f *FakeAPI) updateLog(w http.ResponseWriter, r *http.Request) {
	var in fakeLog
	if !decode(w, r, &in) {
		return
	}
	if len(in.Date) > 10 {
		in.Date = in.Date[:10]
	}
	id := mux.Vars(r)["id"]
	f.mu.Lock()
	defer f.mu.Unlock()
	d := f.data(userOf(r))
	for i := range d.logs {
		if d.logs[i].ID == id {
			in.ID = id
			d.logs[i] = in
			writeJSON(w, http.StatusOK, wireDate(in))
			return
		}
	}
	writeError(w, http.StatusNotFound, "Log not found")
}

func (f *FakeAPI) deleteLog(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	f.mu.Lock()
	defer f.mu.Unlock()
	d := f.data(userOf(r))
	for i := range d.logs {
		if d.logs[i].ID == id {
			d.logs = append(d.logs[:i], d.logs[i+1:]...)
			writeJSON(w, http.StatusOK, nil)
			return
		}
	}
	writeError(w, http.StatusNotFound, "Log not found")
}
