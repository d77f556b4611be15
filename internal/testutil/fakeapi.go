package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
)

type fakeReminder struct {
	Enabled bool   `json:"enabled"`
	Time    string `json:"time,omitempty"`
}

type fakeCategory struct {
	ID          string `json:"_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color"`
	Icon        string `json:"icon"`
	Order       int    `json:"order"`
}

type fakeHabit struct {
	ID          string       `json:"_id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Icon        string       `json:"icon"`
	Color       string       `json:"color"`
	Category    string       `json:"category"`
	Frequency   string       `json:"frequency"`
	Reminder    fakeReminder `json:"reminder"`
	CreatedAt   time.Time    `json:"createdAt"`
	Order       int          `json:"order"`
	IsActive    bool         `json:"isActive"`
}

type fakeLog struct {
	ID          string     `json:"_id"`
	Habit       string     `json:"habit"`
	Date        string     `json:"date"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	Value       *float64   `json:"value,omitempty"`
}

type fakeTemplate struct {
	ID          string `json:"_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
	Frequency   string `json:"frequency"`
}

type fakeData struct {
	categories []fakeCategory
	habits     []fakeHabit
	logs       []fakeLog
}

type failure struct {
	status  int
	message string
	raw     string
}

// Gate blocks requests for one route until released.
type Gate struct {
	entered chan struct{}
	once    sync.Once
	release chan struct{}
	closed  sync.Once
}

// Entered is closed when the first request reaches the gate.
func (g *Gate) Entered() <-chan struct{} {
	return g.entered
}

// Release lets every held and future request through.
func (g *Gate) Release() {
	g.closed.Do(func() { close(g.release) })
}

// FakeAPI is an in-memory persistence API keyed by token subject. Routes are
// named after the client operations ("categories.list", "logs.upsert", ...)
// so tests can inject failures, hold requests and count calls per route.
type FakeAPI struct {
	Server *httptest.Server

	mu        sync.Mutex
	users     map[string]*fakeData
	templates []fakeTemplate
	failures  map[string]failure
	gates     map[string]*Gate
	calls     map[string]int
	seq       int
}

// NewFakeAPI starts the fake. It is closed when the test ends.
func NewFakeAPI(t testing.TB) *FakeAPI {
	t.Helper()
	f := &FakeAPI{
		users:    make(map[string]*fakeData),
		failures: make(map[string]failure),
		gates:    make(map[string]*Gate),
		calls:    make(map[string]int),
	}

	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.Use(f.middleware)

	api.HandleFunc("/categories", f.listCategories).Methods(http.MethodGet).Name("categories.list")
	api.HandleFunc("/categories", f.createCategory).Methods(http.MethodPost).Name("categories.create")
	api.HandleFunc("/categories/reorder", f.reorderCategories).Methods(http.MethodPut).Name("categories.reorder")
	api.HandleFunc("/categories/{id}", f.updateCategory).Methods(http.MethodPut).Name("categories.update")
	api.HandleFunc("/categories/{id}", f.deleteCategory).Methods(http.MethodDelete).Name("categories.delete")

	api.HandleFunc("/habits", f.listHabits).Methods(http.MethodGet).Name("habits.list")
	api.HandleFunc("/habits", f.createHabit).Methods(http.MethodPost).Name("habits.create")
	api.HandleFunc("/habits/reorder", f.reorderHabits).Methods(http.MethodPut).Name("habits.reorder")
	api.HandleFunc("/habits/templates", f.listTemplates).Methods(http.MethodGet).Name("habits.templates")
	api.HandleFunc("/habits/templates/{templateId}", f.fromTemplate).Methods(http.MethodPost).Name("habits.from_template")
	api.HandleFunc("/habits/{id}", f.updateHabit).Methods(http.MethodPut).Name("habits.update")
	api.HandleFunc("/habits/{id}", f.deleteHabit).Methods(http.MethodDelete).Name("habits.delete")

	api.HandleFunc("/logs", f.listLogs).Methods(http.MethodGet).Name("logs.list")
	api.HandleFunc("/logs", f.upsertLog).Methods(http.MethodPost).Name("logs.upsert")
	api.HandleFunc("/logs/{id}", f.updateLog).Methods(http.MethodPut).Name("logs.update")
	api.HandleFunc("/logs/{id}", f.deleteLog).Methods(http.MethodDelete).Name("logs.delete")

	f.Server = httptest.NewServer(r)
	t.Cleanup(f.Server.Close)
	return f
}

// URL is the API base URL to hand to the client.
func (f *FakeAPI) URL() string {
	return f.Server.URL + "/api"
}

// Fail makes every request to route answer with status and message until
// ClearFailures is called.
func (f *FakeAPI) Fail(route string, status int, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[route] = failure{status: status, message: message}
}

// FailRaw makes route answer 200 with a body that is not an envelope.
func (f *FakeAPI) FailRaw(route, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[route] = failure{status: http.StatusOK, raw: body}
}

func (f *FakeAPI) ClearFailures() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures = make(map[string]failure)
}

// Hold blocks requests to route until the returned gate is released.
func (f *FakeAPI) Hold(route string) *Gate {
	f.mu.Lock()
	defer f.mu.Unlock()
	g := &Gate{entered: make(chan struct{}), release: make(chan struct{})}
	f.gates[route] = g
	return g
}

// HoldUser blocks requests to route made with user's token until the
// returned gate is released. It takes precedence over Hold for that user.
func (f *FakeAPI) HoldUser(route, user string) *Gate {
	f.mu.Lock()
	defer f.mu.Unlock()
	g := &Gate{entered: make(chan struct{}), release: make(chan struct{})}
	f.gates[route+"|"+user] = g
	return g
}

// Calls returns how many requests reached route.
func (f *FakeAPI) Calls(route string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[route]
}

func (f *FakeAPI) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := ""
		if route := mux.CurrentRoute(r); route != nil {
			name = route.GetName()
		}
		user, authed := subjectOf(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))

		f.mu.Lock()
		f.calls[name]++
		gate := f.gates[name]
		if g, ok := f.gates[name+"|"+user]; ok && authed {
			gate = g
		}
		fail, failing := f.failures[name]
		f.mu.Unlock()

		if gate != nil {
			gate.once.Do(func() { close(gate.entered) })
			select {
			case <-gate.release:
			case <-r.Context().Done():
				return
			}
		}

		if failing {
			if fail.raw != "" {
				w.WriteHeader(fail.status)
				fmt.Fprint(w, fail.raw)
				return
			}
			writeError(w, fail.status, fail.message)
			return
		}

		if !authed {
			writeError(w, http.StatusUnauthorized, "Not authorized, token failed")
			return
		}
		r.Header.Set("X-Fake-User", user)
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	body := map[string]interface{}{"success": true}
	if data != nil {
		body["data"] = data
	}
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "message": message})
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return false
	}
	return true
}

// data returns the caller's dataset. Callers hold f.mu.
func (f *FakeAPI) data(user string) *fakeData {
	d, ok := f.users[user]
	if !ok {
		d = &fakeData{}
		f.users[user] = d
	}
	return d
}

func (f *FakeAPI) nextID(prefix string) string {
	f.seq++
	return prefix + strconv.Itoa(f.seq)
}

func userOf(r *http.Request) string {
	return r.Header.Get("X-Fake-User")
}

// wireDate renders a stored day the way the API does, as a UTC timestamp.
func wireDate(l fakeLog) fakeLog {
	l.Date += "T00:00:00.000Z"
	return l
}
