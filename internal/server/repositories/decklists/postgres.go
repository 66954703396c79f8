package decklists

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/avelmore/deckvault/internal/common"
	"github.com/avelmore/deckvault/internal/dbx"
	"github.com/avelmore/deckvault/internal/server/models"
)

// PostgresRepository implements decklist storage over a dbx.DBTX
// (*sql.DB or *sql.Tx). The cards field is stored as jsonb.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, d *models.Decklist) (*models.Decklist, error) {
	cards, err := json.Marshal(d.Cards)
	if err != nil {
		return nil, fmt.Errorf("error marshaling cards: %w", err)
	}

	query := `
		INSERT INTO decklists (user_id, name, format, description, cards, is_instance, decklist_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	err = r.db.QueryRowContext(ctx, query,
		d.UserID, d.Name, d.Format, d.Description, cards, d.IsInstance, d.DecklistID).
		Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return d, nil
}

func (r *PostgresRepository) GetOwned(ctx context.Context, id int64, userID string) (*models.Decklist, error) {
	query := `
		SELECT id, user_id, name, format, description, cards, is_instance, decklist_id, created_at, updated_at
		FROM decklists
		WHERE id = $1 AND user_id = $2
	`
	row := r.db.QueryRowContext(ctx, query, id, userID)
	return scanDecklist(row)
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.Decklist, error) {
	query := `
		SELECT id, user_id, name, format, description, cards, is_instance, decklist_id, created_at, updated_at
		FROM decklists
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select decklists: %w", err)
	}
	defer rows.Close()

	var result []*models.Decklist
	for rows.Next() {
		d, err := scanDecklist(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) Update(ctx context.Context, d *models.Decklist) error {
	cards, err := json.Marshal(d.Cards)
	if err != nil {
		return fmt.Errorf("error marshaling cards: %w", err)
	}

	query := `
		UPDATE decklists
		SET name = $1, format = $2, description = $3, cards = $4, updated_at = now()
		WHERE id = $5 AND user_id = $6
	`
	res, err := r.db.ExecContext(ctx, query, d.Name, d.Format, d.Description, cards, d.ID, d.UserID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64, userID string) error {
	query := `
		DELETE FROM decklists
		WHERE id = $1 AND user_id = $2
	`
	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// scanner is the subset of *sql.Row / *sql.Rows used by scanDecklist.
type scanner interface {
	Scan(dest ...any) error
}

func scanDecklist(row scanner) (*models.Decklist, error) {
	d := &models.Decklist{}
	var cards []byte
	err := row.Scan(&d.ID, &d.UserID, &d.Name, &d.Format, &d.Description,
		&cards, &d.IsInstance, &d.DecklistID, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if len(cards) > 0 {
		if err := json.Unmarshal(cards, &d.Cards); err != nil {
			return nil, fmt.Errorf("error unmarshaling cards: %w", err)
		}
	}
	return d, nil
}
