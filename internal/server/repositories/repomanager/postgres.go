// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"

	"github.com/avelmore/deckvault/internal/dbx"
	"github.com/avelmore/deckvault/internal/server/migrations"
	"github.com/avelmore/deckvault/internal/server/repositories/decklists"
	"github.com/avelmore/deckvault/internal/server/repositories/inventory"
	"github.com/avelmore/deckvault/internal/server/repositories/missingcards"
	"github.com/avelmore/deckvault/internal/server/repositories/refreshtokens"
	"github.com/avelmore/deckvault/internal/server/repositories/reservations"
	"github.com/avelmore/deckvault/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repository implementations
// and exposes a schema migration hook.
type PostgresRepositoryManager struct{}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
func NewPostgresRepositoryManager() RepositoryManager {
	return &PostgresRepositoryManager{}
}

// Users returns a users.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

// RefreshTokens returns a refreshtokens.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository {
	return refreshtokens.NewPostgresRepository(db)
}

// Decklists returns a decklists.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Decklists(db dbx.DBTX) decklists.Repository {
	return decklists.NewPostgresRepository(db)
}

// Inventory returns an inventory.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Inventory(db dbx.DBTX) inventory.Repository {
	return inventory.NewPostgresRepository(db)
}

// Reservations returns a reservations.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Reservations(db dbx.DBTX) reservations.Repository {
	return reservations.NewPostgresRepository(db)
}

// MissingCards returns a missingcards.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) MissingCards(db dbx.DBTX) missingcards.Repository {
	return missingcards.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetDialect("pgx")
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return err
	}
	return nil
}
