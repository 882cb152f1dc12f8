package persistence

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"

	log "github.com/go-pkgz/lgr"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// baselineVersion is the schema version an existing unversioned database is assumed to have
const baselineVersion = 1

// MigrateOpts defines migration source and behavior for unversioned databases
type MigrateOpts struct {
	Location          string // directory with *.sql migrations, embedded migrations used if empty
	BaselineOnMigrate bool   // mark existing unversioned schema as baseline instead of failing
}

// Migrate brings the schema to the latest version. Expected to be called once on startup.
func Migrate(db *DB, opts MigrateOpts) error {
	var src fs.FS = migrationFS
	dir := "migrations"
	if opts.Location != "" {
		src, dir = os.DirFS(opts.Location), "."
	}
	source, err := iofs.New(src, dir)
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	driver, err := sqlite.WithInstance(db.db.DB, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	// the migrator is not closed, closing it would close the shared db
	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := baseline(db, m, opts.BaselineOnMigrate); err != nil {
		return err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}
	ver, _, err := m.Version()
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}
	log.Printf("[INFO] schema version %d", ver)
	return nil
}

// baseline handles a database created before migrations were tracked
func baseline(db *DB, m *migrate.Migrate, enabled bool) error {
	_, _, err := m.Version()
	if err == nil {
		return nil
	}
	if !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	var count int
	if err := db.db.Get(&count, "SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='BINARIES'"); err != nil {
		return fmt.Errorf("failed to inspect schema: %w", err)
	}
	if count == 0 {
		return nil // fresh database
	}
	if !enabled {
		return errors.New("found unversioned schema, baseline-on-migrate is disabled")
	}
	log.Printf("[INFO] baseline existing schema as version %d", baselineVersion)
	if err := m.Force(baselineVersion); err != nil {
		return fmt.Errorf("failed to baseline schema: %w", err)
	}
	return nil
}
