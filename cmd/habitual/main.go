package main

import (
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/habitual/internal/auth"
	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/cli/badges"
	"github.com/julianstephens/habitual/internal/cli/categories"
	"github.com/julianstephens/habitual/internal/cli/habits"
	"github.com/julianstephens/habitual/internal/cli/settings"
	"github.com/julianstephens/habitual/internal/cli/system"
	"github.com/julianstephens/habitual/internal/config"
	"github.com/julianstephens/habitual/internal/constants"
	apperrors "github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/logger"
)

var CLI struct {
	Version   kong.VersionFlag
	Config    string        `help:"Local state file path or PostgreSQL connection string. PostgreSQL credentials must NOT be embedded; use .pgpass or PGPASSWORD." env:"HABITUAL_STATE" default:"${state}"`
	API       string        `name:"api" help:"Persistence API base URL." env:"HABITUAL_API_URL" default:"${api}"`
	TokenFile string        `help:"Session token file followed by watch." env:"HABITUAL_TOKEN_FILE" default:"${token_file}"`
	Token     string        `help:"Use this session token instead of the keyring." env:"HABITUAL_TOKEN"`
	Timeout   time.Duration `help:"Per-request timeout." env:"HABITUAL_TIMEOUT" default:"${timeout}"`
	LogLimit  int           `help:"Override the stored log limit for this run." env:"HABITUAL_LOG_LIMIT"`
	Timezone  string        `help:"Override the stored timezone for this run." env:"HABITUAL_TIMEZONE"`
	Debug     bool          `help:"Mirror debug logs to stderr." env:"HABITUAL_DEBUG"`

	Init     system.InitCmd       `cmd:"" help:"Initialize local state."`
	Login    system.LoginCmd      `cmd:"" help:"Store a session token in the OS keyring."`
	Logout   system.LogoutCmd     `cmd:"" help:"Remove the stored session token."`
	Whoami   system.WhoamiCmd     `cmd:"" help:"Show the signed-in user."`
	Refresh  system.RefreshCmd    `cmd:"" help:"Reload everything from the server."`
	Stats    system.StatsCmd      `cmd:"" help:"Show completion totals and best streaks." default:"1"`
	Watch    system.WatchCmd      `cmd:"" help:"Follow the token file and reload on every identity change."`
	Doctor   system.DoctorCmd     `cmd:"" help:"Run health checks."`
	Inspect  system.DebugCmd      `cmd:"" name:"debug" help:"Debugging helpers." hidden:""`
	Settings settings.SettingsCmd `cmd:"" help:"Manage local settings."`
	Backup   struct {
		Create  system.BackupCreateCmd  `cmd:"" help:"Snapshot the local state."`
		List    system.BackupListCmd    `cmd:"" help:"List local state snapshots." default:"1"`
		Restore system.BackupRestoreCmd `cmd:"" help:"Replace the local state with a snapshot."`
	} `cmd:"" help:"Manage local state backups."`
	Category struct {
		List    categories.CategoryListCmd    `cmd:"" help:"List categories." default:"1"`
		Add     categories.CategoryAddCmd     `cmd:"" help:"Add a category."`
		Edit    categories.CategoryEditCmd    `cmd:"" help:"Edit a category."`
		Delete  categories.CategoryDeleteCmd  `cmd:"" help:"Delete a category with its habits."`
		Reorder categories.CategoryReorderCmd `cmd:"" help:"Set the category order."`
	} `cmd:"" help:"Manage categories."`
	Habit struct {
		List         habits.HabitListCmd         `cmd:"" help:"List habits with today's status." default:"1"`
		Add          habits.HabitAddCmd          `cmd:"" help:"Add a habit."`
		Edit         habits.HabitEditCmd         `cmd:"" help:"Edit a habit."`
		Delete       habits.HabitDeleteCmd       `cmd:"" help:"Delete a habit and its history."`
		Reorder      habits.HabitReorderCmd      `cmd:"" help:"Set the habit order within a category."`
		Toggle       habits.HabitToggleCmd       `cmd:"" help:"Mark a habit done or not done for a day."`
		Clear        habits.HabitClearCmd        `cmd:"" help:"Erase a habit's record for a day."`
		Streaks      habits.HabitStreaksCmd      `cmd:"" help:"Show current and longest streaks."`
		Templates    habits.HabitTemplatesCmd    `cmd:"" help:"List habit templates."`
		FromTemplate habits.HabitFromTemplateCmd `cmd:"" name:"from-template" help:"Create a habit from a template."`
	} `cmd:"" help:"Manage and track habits."`
	Badge struct {
		List    badges.BadgeListCmd    `cmd:"" help:"List earned badges." default:"1"`
		Catalog badges.BadgeCatalogCmd `cmd:"" help:"List every badge that can be earned."`
	} `cmd:"" help:"Show achievements."`
}

func main() {
	if err := config.LoadEnv(".env", "~/.config/habitual/.env"); err != nil {
		fmt.Fprintln(os.Stderr, apperrors.Format(err))
	}

	kctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Habit tracking with streaks and badges"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":    constants.Version,
			"state":      constants.DefaultConfigPath,
			"api":        constants.DefaultAPIURL,
			"token_file": constants.DefaultTokenFile,
			"timeout":    constants.DefaultHTTPTimeout.String(),
		},
	)

	cfg := config.Config{
		APIURL:    CLI.API,
		State:     CLI.Config,
		TokenFile: CLI.TokenFile,
		Timeout:   CLI.Timeout,
		LogLimit:  CLI.LogLimit,
		Timezone:  CLI.Timezone,
		Debug:     CLI.Debug,
	}
	if err := cfg.Normalize(); err != nil {
		apperrors.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		apperrors.Fatal(err)
	}

	if err := logger.Init(logger.Config{Debug: cfg.Debug, ConfigDir: cfg.Dir()}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: file logging disabled: %v\n", err)
	}

	var identity cli.Identity = auth.NewKeyringProvider()
	if CLI.Token != "" {
		identity = auth.NewStatic(CLI.Token)
	}

	appCtx := &cli.Context{
		Config:   cfg,
		Out:      os.Stdout,
		Identity: identity,
		Confirm:  cli.PromptConfirm,
	}

	err := kctx.Run(appCtx)
	if cerr := appCtx.Close(); cerr != nil {
		logger.Warn("failed to close local state", "error", cerr)
	}
	apperrors.Fatal(err)
}
