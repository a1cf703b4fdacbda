package system

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/dayquote/internal/cli"
	"github.com/julianstephens/dayquote/internal/constants"
)

type InitCmd struct {
	Force  bool   `help:"Force reset by deleting existing database before initialization."`
	Source string `help:"Source database path or connection string to copy settings, streak log and schedule from."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		dbPath := ctx.Store.GetConfigPath()
		if c.Source != "" {
			if abs, err := filepath.Abs(dbPath); err == nil {
				dbPath = abs
			}
			if absSource, err := filepath.Abs(c.Source); err == nil && absSource == dbPath {
				return fmt.Errorf("cannot use --force when source and destination are the same: %s", dbPath)
			}
		}
		if cli.IsPostgres(dbPath) {
			return fmt.Errorf("--force only resets file-backed storage")
		}
		if _, err := os.Stat(dbPath); err == nil {
			// Close first so the file is not held open
			if err := ctx.Store.Close(); err != nil {
				return fmt.Errorf("failed to close existing database: %w", err)
			}
			if err := os.Remove(dbPath); err != nil {
				return fmt.Errorf("failed to delete existing database: %w", err)
			}
			ctx.Printf("Deleted existing database at: %s\n", dbPath)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access existing database: %w", err)
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	ctx.Printf("Initialized dayquote storage at: %s\n", ctx.Store.GetConfigPath())

	if c.Source != "" {
		ctx.Printf("Copying data from: %s\n", c.Source)
		if err := c.copyData(ctx); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		ctx.Println("Migration completed successfully!")
	}
	return nil
}

// copyData moves every stored value except the install id, then replaces the
// destination's triggers with the source's.
func (c *InitCmd) copyData(ctx *cli.Context) error {
	source, err := cli.OpenStore(cli.StoreConfig{Location: c.Source})
	if err != nil {
		return err
	}
	if err := source.Load(); err != nil {
		return fmt.Errorf("failed to load source database: %w", err)
	}
	defer source.Close()

	ctx.Println("  Copying values...")
	values, err := source.GetAllValues()
	if err != nil {
		return fmt.Errorf("failed to read values from source: %w", err)
	}
	copied := 0
	for key, value := range values {
		if key == constants.KeyInstallID {
			continue
		}
		if err := ctx.Store.SetValue(key, value); err != nil {
			return fmt.Errorf("failed to save %s: %w", key, err)
		}
		copied++
	}
	ctx.Printf("    Copied %d values\n", copied)

	ctx.Println("  Copying scheduled notifications...")
	triggers, err := source.GetAllTriggers()
	if err != nil {
		return fmt.Errorf("failed to read triggers from source: %w", err)
	}
	if _, err := ctx.Store.DeleteAllTriggers(); err != nil {
		return fmt.Errorf("failed to clear destination triggers: %w", err)
	}
	for _, t := range triggers {
		if err := ctx.Store.AddTrigger(t); err != nil {
			return fmt.Errorf("failed to add trigger %s: %w", t.ID, err)
		}
	}
	ctx.Printf("    Copied %d notifications\n", len(triggers))
	return nil
}
