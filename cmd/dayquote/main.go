package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/dayquote/internal/cli"
	"github.com/julianstephens/dayquote/internal/cli/backups"
	"github.com/julianstephens/dayquote/internal/cli/quotes"
	"github.com/julianstephens/dayquote/internal/cli/schedules"
	"github.com/julianstephens/dayquote/internal/cli/settings"
	"github.com/julianstephens/dayquote/internal/cli/setup"
	"github.com/julianstephens/dayquote/internal/cli/status"
	"github.com/julianstephens/dayquote/internal/cli/streaks"
	"github.com/julianstephens/dayquote/internal/cli/system"
	"github.com/julianstephens/dayquote/internal/constants"
	"github.com/julianstephens/dayquote/internal/errors"
	"github.com/julianstephens/dayquote/internal/logger"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Store path (.db for SQLite, .json for a flat file) or PostgreSQL connection string. PostgreSQL passwords must come from the environment, .pgpass, or the OS keyring." type:"string" env:"DAYQUOTE_CONFIG" default:"${default_config}"`
	Debug   bool   `help:"Log debug output to stderr."`

	Quote      quotes.QuoteCmd       `cmd:"" help:"Show today's quote." default:"1"`
	Categories quotes.CategoriesCmd  `cmd:"" help:"List or search quote categories."`
	Streak     streaks.StreakCmd     `cmd:"" help:"Show and record your daily streak."`
	Status     status.StatusCmd      `cmd:"" help:"Show streak, settings and today's schedule."`
	Schedule   schedules.ScheduleCmd `cmd:"" help:"Inspect or rebuild scheduled notifications."`
	Settings   settings.SettingsCmd  `cmd:"" help:"Manage application settings."`
	Setup      setup.SetupCmd        `cmd:"" help:"Interactive setup for preferences and delivery."`
	Permission system.PermissionCmd  `cmd:"" help:"Request or show notification permission."`
	Daemon     system.DaemonCmd      `cmd:"" help:"Run the notification daemon in the foreground."`
	Notify     system.NotifyCmd      `cmd:"" hidden:"" help:"Deliver due notifications once (used by cron and launchd)."`
	Init       system.InitCmd        `cmd:"" help:"Initialize dayquote storage."`
	Migrate    system.MigrateCmd     `cmd:"" help:"Run database migrations."`
	Doctor     system.DoctorCmd      `cmd:"" help:"Run health checks and diagnostics."`
	Backup     backups.BackupCmd     `cmd:"" help:"Manage database backups."`
	Keyring    system.KeyringCmd     `cmd:"" help:"Manage secrets in the OS keyring."`
	DebugCmd   system.DebugCmd       `cmd:"" name:"debug" help:"Debug commands for troubleshooting."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Daily quote notifications and streak tracking"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":        constants.Version,
			"default_config": constants.DefaultConfigPath,
		},
	)

	command := ctx.Selected().Name
	if err := logger.Init(logger.Config{
		Debug:     CLI.Debug,
		ConfigDir: filepath.Dir(kong.ExpandPath(constants.DefaultConfigPath)),
		Stderr:    command == "daemon",
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
	}

	store, err := cli.OpenStore(cli.ResolveConfig(CLI.Config))
	if err != nil {
		errors.Fatal(err)
	}

	// init creates the store itself
	if command != "init" {
		if err := store.Load(); err != nil {
			errors.Fatalf("failed to load %s: %v (run 'dayquote init' first?)", store.GetConfigPath(), err)
		}
	}

	appCtx := cli.NewContext(store)
	err = ctx.Run(appCtx)
	errors.Swallow("close store", appCtx.Close(context.Background()))
	errors.Fatal(err)
}
