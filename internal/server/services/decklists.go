package services

import (
	"context"
	"database/sql"

	"github.com/avelmore/deckvault/internal/common"
	"github.com/avelmore/deckvault/internal/server/models"
	"github.com/avelmore/deckvault/internal/server/repositories/repomanager"
)

// DecklistService manages deck templates. Materialized instances share the
// same table but are mutated only through DeckService; edits and deletes
// here refuse instance rows.
type DecklistService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewDecklistService(db *sql.DB, m repomanager.RepositoryManager) *DecklistService {
	return &DecklistService{db: db, repomanager: m}
}

// Create stores a new template for the user.
func (s *DecklistService) Create(ctx context.Context, userID string, d *models.Decklist) (*models.Decklist, error) {
	d.UserID = userID
	d.IsInstance = false
	d.DecklistID = nil

	repo := s.repomanager.Decklists(s.db)
	return repo.Create(ctx, d)
}

// Get returns one of the user's decklists, template or instance.
func (s *DecklistService) Get(ctx context.Context, userID string, id int64) (*models.Decklist, error) {
	repo := s.repomanager.Decklists(s.db)
	return repo.GetOwned(ctx, id, userID)
}

// List returns all of the user's decklists, newest first.
func (s *DecklistService) List(ctx context.Context, userID string) ([]*models.Decklist, error) {
	repo := s.repomanager.Decklists(s.db)
	return repo.ListByUser(ctx, userID)
}

// Update rewrites a template's name, format, description and cards.
// Instances are snapshots and cannot be edited this way.
func (s *DecklistService) Update(ctx context.Context, userID string, d *models.Decklist) (*models.Decklist, error) {
	repo := s.repomanager.Decklists(s.db)

	existing, err := repo.GetOwned(ctx, d.ID, userID)
	if err != nil {
		return nil, err
	}
	if existing.IsInstance {
		return nil, common.ErrorIsInstance
	}

	d.UserID = userID
	if err := repo.Update(ctx, d); err != nil {
		return nil, err
	}
	return repo.GetOwned(ctx, d.ID, userID)
}

// Delete removes a template. Existing instances materialized from it keep
// their snapshots; their back-reference is cleared by the schema. Instances
// themselves must be released, not deleted.
func (s *DecklistService) Delete(ctx context.Context, userID string, id int64) error {
	repo := s.repomanager.Decklists(s.db)

	existing, err := repo.GetOwned(ctx, id, userID)
	if err != nil {
		return err
	}
	if existing.IsInstance {
		return common.ErrorIsInstance
	}

	return repo.Delete(ctx, id, userID)
}
