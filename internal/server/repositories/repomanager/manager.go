package repomanager

import (
	"context"
	"database/sql"

	"github.com/avelmore/deckvault/internal/dbx"
	"github.com/avelmore/deckvault/internal/server/repositories/decklists"
	"github.com/avelmore/deckvault/internal/server/repositories/inventory"
	"github.com/avelmore/deckvault/internal/server/repositories/missingcards"
	"github.com/avelmore/deckvault/internal/server/repositories/refreshtokens"
	"github.com/avelmore/deckvault/internal/server/repositories/reservations"
	"github.com/avelmore/deckvault/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so the same queries
// can run against the pool or inside a transaction, and exposes the schema
// migration hook.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Decklists(db dbx.DBTX) decklists.Repository
	Inventory(db dbx.DBTX) inventory.Repository
	Reservations(db dbx.DBTX) reservations.Repository
	MissingCards(db dbx.DBTX) missingcards.Repository
}
