package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mitchellh/go-homedir"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/models"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "https with path", mutate: func(c *Config) { c.APIURL = "https://habits.example.com/api" }},
		{name: "no scheme", mutate: func(c *Config) { c.APIURL = "localhost:5000" }, wantErr: "invalid API URL"},
		{name: "ftp", mutate: func(c *Config) { c.APIURL = "ftp://example.com" }, wantErr: "invalid API URL"},
		{name: "empty state", mutate: func(c *Config) { c.State = "" }, wantErr: "state location"},
		{name: "postgres password", mutate: func(c *Config) { c.State = "postgres://me:pw@localhost/db" }, wantErr: "password"},
		{name: "zero timeout", mutate: func(c *Config) { c.Timeout = 0 }, wantErr: "timeout"},
		{name: "negative log limit", mutate: func(c *Config) { c.LogLimit = -1 }, wantErr: "log limit"},
		{name: "bad timezone", mutate: func(c *Config) { c.Timezone = "Nowhere/Special" }, wantErr: "timezone"},
		{name: "utc", mutate: func(c *Config) { c.Timezone = "UTC" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	homedir.DisableCache = true
	t.Cleanup(func() { homedir.DisableCache = false })

	cfg := Default()
	if err := cfg.Normalize(); err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if !strings.HasPrefix(cfg.State, home) || strings.Contains(cfg.State, "~") {
		t.Errorf("State = %q, want it expanded under %q", cfg.State, home)
	}
	if !strings.HasPrefix(cfg.TokenFile, home) {
		t.Errorf("TokenFile = %q, want it expanded under %q", cfg.TokenFile, home)
	}
	if cfg.Dir() != filepath.Join(home, ".config", "habitual") {
		t.Errorf("Dir() = %q", cfg.Dir())
	}

	pg := Config{State: "postgres://me@localhost/habits"}
	if err := pg.Normalize(); err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if pg.State != "postgres://me@localhost/habits" {
		t.Errorf("postgres state rewritten to %q", pg.State)
	}
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "HABITUAL_TEST_API_URL=https://from-dotenv.example.com\nHABITUAL_TEST_PRESET=from-file\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("HABITUAL_TEST_PRESET", "from-env")
	t.Setenv("HABITUAL_TEST_API_URL", "")
	os.Unsetenv("HABITUAL_TEST_API_URL")

	if err := LoadEnv(path, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}
	if got := os.Getenv("HABITUAL_TEST_API_URL"); got != "https://from-dotenv.example.com" {
		t.Errorf("HABITUAL_TEST_API_URL = %q", got)
	}
	if got := os.Getenv("HABITUAL_TEST_PRESET"); got != "from-env" {
		t.Errorf("existing variable overwritten: HABITUAL_TEST_PRESET = %q", got)
	}
}

func TestResolve(t *testing.T) {
	stored := models.Settings{Theme: constants.ThemeDark, Timezone: "Europe/Paris", LogLimit: 200}

	got := Config{}.Resolve(stored)
	if got != stored {
		t.Errorf("Resolve() with no overrides = %+v, want %+v", got, stored)
	}

	got = Config{Timezone: "UTC", LogLimit: 5}.Resolve(stored)
	want := models.Settings{Theme: constants.ThemeDark, Timezone: "UTC", LogLimit: 5}
	if got != want {
		t.Errorf("Resolve() = %+v, want %+v", got, want)
	}

	got = Config{}.Resolve(models.Settings{})
	if got.LogLimit != constants.DefaultLogLimit || got.Timezone != constants.DefaultTimezone {
		t.Errorf("Resolve() did not apply defaults: %+v", got)
	}
}
