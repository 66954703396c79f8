// Package decklists declares the repository contract for deck templates and
// materialized deck instances, which share one table distinguished by the
// is_instance flag.
package decklists

import (
	"context"

	"github.com/avelmore/deckvault/internal/server/models"
)

type Repository interface {
	// Create inserts a new decklist row (template or instance) and fills in
	// the generated id.
	Create(ctx context.Context, d *models.Decklist) (*models.Decklist, error)

	// GetOwned returns the decklist with the given id if it belongs to
	// userID. A missing row and a row owned by someone else are both
	// reported as common.ErrorNotFound.
	GetOwned(ctx context.Context, id int64, userID string) (*models.Decklist, error)

	// ListByUser returns all of the user's decklists, templates and
	// instances alike, newest first.
	ListByUser(ctx context.Context, userID string) ([]*models.Decklist, error)

	// Update rewrites name, format, description and cards of an owned row.
	Update(ctx context.Context, d *models.Decklist) error

	// Delete removes an owned row. Missing/unowned rows are ErrorNotFound.
	Delete(ctx context.Context, id int64, userID string) error
}
