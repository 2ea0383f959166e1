package postgres

import (
	"embed"
	goerrors "errors"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/herbwise/fangmatch/internal/infrastructure/monitoring/logging"
	"github.com/herbwise/fangmatch/pkg/errors"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrate applies all pending schema migrations.  Migrations are embedded in
// the binary, so nothing is read from disk at runtime.  A schema that is
// already current is not an error.
func Migrate(pool *pgxpool.Pool, log logging.Logger) error {
	source, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeStoreMigration, "failed to load embedded migrations")
	}

	// golang-migrate needs a database/sql handle; stdlib bridges the pool.
	db := stdlib.OpenDBFromPool(pool)
	driver, err := migratepg.WithInstance(db, &migratepg.Config{})
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeStoreMigration, "failed to init migration driver")
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeStoreMigration, "failed to create migrator")
	}

	if err := m.Up(); err != nil {
		if goerrors.Is(err, migrate.ErrNoChange) {
			log.Debug("schema already current")
			return nil
		}
		return errors.Wrap(err, errors.ErrCodeStoreMigration, "migration failed")
	}

	version, dirty, err := m.Version()
	if err == nil {
		log.Info("schema migrated",
			logging.Any("version", version),
			logging.Bool("dirty", dirty),
		)
	}
	return nil
}
