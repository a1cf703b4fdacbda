package system

import (
	"fmt"

	"github.com/julianstephens/dayquote/internal/cli"
	"github.com/julianstephens/dayquote/internal/migration"
	"github.com/julianstephens/dayquote/internal/storage/postgres"
	"github.com/julianstephens/dayquote/internal/storage/sqlite"
)

// migrator is implemented by the SQL-backed stores.
type migrator interface {
	ApplyMigrations() (int, error)
	MigrationStatus() (migration.Status, error)
}

type MigrateCmd struct{}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	m, ok := ctx.Store.(migrator)
	if !ok {
		return fmt.Errorf("migrate command only supports SQLite and PostgreSQL storage")
	}

	progress := func(msg string) { ctx.Println(msg) }
	switch s := ctx.Store.(type) {
	case *sqlite.Store:
		s.Progress = progress
	case *postgres.Store:
		s.Progress = progress
	}

	count, err := m.ApplyMigrations()
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if count == 0 {
		ctx.Println("No migrations to apply. Database is up to date.")
	} else {
		ctx.Printf("\nSuccessfully applied %d migration(s).\n", count)
	}
	return nil
}
