package missingcards

import (
	"context"
	"fmt"
	"strings"

	"github.com/avelmore/deckvault/internal/dbx"
	"github.com/avelmore/deckvault/internal/server/models"
)

// PostgresRepository implements missing-card storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) BulkInsert(ctx context.Context, instanceID int64, missing []models.MissingCard) error {
	if len(missing) == 0 {
		return nil
	}

	values := make([]string, 0, len(missing))
	args := make([]any, 0, len(missing)*4)
	for _, m := range missing {
		values = append(values, fmt.Sprintf("($%d, $%d, $%d, $%d)",
			len(args)+1, len(args)+2, len(args)+3, len(args)+4))
		args = append(args, instanceID, m.CardName, m.SetCode, m.QuantityNeeded)
	}

	query := fmt.Sprintf(`
		INSERT INTO missing_cards (deck_instance_id, card_name, set_code, quantity_needed)
		VALUES %s
	`, strings.Join(values, ", "))

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListByInstance(ctx context.Context, instanceID int64) ([]models.MissingCard, error) {
	query := `
		SELECT id, deck_instance_id, card_name, set_code, quantity_needed
		FROM missing_cards
		WHERE deck_instance_id = $1
		ORDER BY lower(btrim(card_name)), id
	`
	rows, err := r.db.QueryContext(ctx, query, instanceID)
	if err != nil {
		return nil, fmt.Errorf("failed to select missing cards: %w", err)
	}
	defer rows.Close()

	var result []models.MissingCard
	for rows.Next() {
		var m models.MissingCard
		if err := rows.Scan(&m.ID, &m.DeckInstanceID, &m.CardName, &m.SetCode, &m.QuantityNeeded); err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) DeleteByInstance(ctx context.Context, instanceID int64) error {
	query := `
		DELETE FROM missing_cards
		WHERE deck_instance_id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, instanceID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
