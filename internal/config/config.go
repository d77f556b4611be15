// Package config resolves the runtime configuration from flags, the
// environment and optional .env files.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/localstate"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/utils"
)

type Config struct {
	APIURL    string        // persistence API base URL
	State     string        // SQLite path or PostgreSQL connection string
	TokenFile string        // session token file watched by `watch --file`
	Timeout   time.Duration // per-request HTTP timeout
	LogLimit  int           // 0 defers to the stored setting
	Timezone  string        // empty defers to the stored setting
	Debug     bool
}

func Default() Config {
	return Config{
		APIURL:    constants.DefaultAPIURL,
		State:     constants.DefaultConfigPath,
		TokenFile: constants.DefaultTokenFile,
		Timeout:   constants.DefaultHTTPTimeout,
	}
}

// LoadEnv loads .env files into the process environment. Missing files are
// skipped and variables already set win.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		path, err := homedir.Expand(f)
		if err != nil {
			return err
		}
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return nil
}

// Normalize expands ~ in file paths. PostgreSQL connection strings are left
// as they are.
func (c *Config) Normalize() error {
	if !localstate.IsPostgres(c.State) {
		p, err := homedir.Expand(c.State)
		if err != nil {
			return fmt.Errorf("invalid state path: %w", err)
		}
		c.State = p
	}
	if c.TokenFile != "" {
		p, err := homedir.Expand(c.TokenFile)
		if err != nil {
			return fmt.Errorf("invalid token file path: %w", err)
		}
		c.TokenFile = p
	}
	return nil
}

func (c Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid API URL %q: expected http(s)://host[/path]", c.APIURL)
	}
	if c.State == "" {
		return errors.New("state location cannot be empty")
	}
	if localstate.IsPostgres(c.State) {
		if err := localstate.ValidateConnString(c.State); err != nil {
			return err
		}
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.LogLimit < 0 {
		return fmt.Errorf("log limit cannot be negative, got %d", c.LogLimit)
	}
	if c.Timezone != "" && !utils.ValidateTimezone(c.Timezone) {
		return fmt.Errorf("unknown timezone %q", c.Timezone)
	}
	return nil
}

// Dir is where logs are written: next to the SQLite file, or the default
// config directory when state lives in PostgreSQL.
func (c Config) Dir() string {
	if localstate.IsPostgres(c.State) {
		p, err := homedir.Expand(constants.DefaultConfigPath)
		if err != nil {
			return "."
		}
		return filepath.Dir(p)
	}
	return filepath.Dir(c.State)
}

// Resolve overlays stored settings with any values set on c.
func (c Config) Resolve(stored models.Settings) models.Settings {
	out := stored
	if c.Timezone != "" {
		out.Timezone = c.Timezone
	}
	if c.LogLimit > 0 {
		out.LogLimit = c.LogLimit
	}
	models.ApplyDefaultSettings(&out)
	return out
}
