package reservations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/avelmore/deckvault/internal/common"
	"github.com/avelmore/deckvault/internal/dbx"
	"github.com/avelmore/deckvault/internal/server/models"
)

// PostgresRepository implements reservation storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) BulkInsert(ctx context.Context, instanceID int64, reservations []models.Reservation) error {
	if len(reservations) == 0 {
		return nil
	}

	values := make([]string, 0, len(reservations))
	args := make([]any, 0, len(reservations)*4)
	for _, res := range reservations {
		values = append(values, fmt.Sprintf("($%d, $%d, $%d, $%d)",
			len(args)+1, len(args)+2, len(args)+3, len(args)+4))
		args = append(args, instanceID, res.InventoryItemID, res.QuantityReserved, res.OriginalFolder)
	}

	query := fmt.Sprintf(`
		INSERT INTO reservations (deck_instance_id, inventory_item_id, quantity_reserved, original_folder)
		VALUES %s
	`, strings.Join(values, ", "))

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Insert(ctx context.Context, res *models.Reservation) error {
	query := `
		INSERT INTO reservations (deck_instance_id, inventory_item_id, quantity_reserved, original_folder)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		res.DeckInstanceID, res.InventoryItemID, res.QuantityReserved, res.OriginalFolder).Scan(&res.ID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id int64) (*models.Reservation, error) {
	query := `
		SELECT id, deck_instance_id, inventory_item_id, quantity_reserved, original_folder
		FROM reservations
		WHERE id = $1
	`
	res := &models.Reservation{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&res.ID, &res.DeckInstanceID, &res.InventoryItemID, &res.QuantityReserved, &res.OriginalFolder)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return res, nil
}

func (r *PostgresRepository) GetByInstanceAndItem(ctx context.Context, instanceID, itemID int64) (*models.Reservation, error) {
	query := `
		SELECT id, deck_instance_id, inventory_item_id, quantity_reserved, original_folder
		FROM reservations
		WHERE deck_instance_id = $1 AND inventory_item_id = $2
	`
	res := &models.Reservation{}
	err := r.db.QueryRowContext(ctx, query, instanceID, itemID).Scan(
		&res.ID, &res.DeckInstanceID, &res.InventoryItemID, &res.QuantityReserved, &res.OriginalFolder)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return res, nil
}

func (r *PostgresRepository) AddQuantity(ctx context.Context, id int64, delta int) error {
	query := `
		UPDATE reservations
		SET quantity_reserved = quantity_reserved + $1
		WHERE id = $2
	`
	res, err := r.db.ExecContext(ctx, query, delta, id)
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

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	query := `
		DELETE FROM reservations
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, id)
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

func (r *PostgresRepository) DeleteByInstance(ctx context.Context, instanceID int64) error {
	query := `
		DELETE FROM reservations
		WHERE deck_instance_id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, instanceID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListByInstance(ctx context.Context, instanceID int64) ([]models.ReservationDetail, error) {
	query := `
		SELECT r.id, r.deck_instance_id, r.inventory_item_id, r.quantity_reserved, r.original_folder,
		       i.name, i.set_code, i.purchase_price, i.folder
		FROM reservations r
		JOIN inventory_items i ON i.id = r.inventory_item_id
		WHERE r.deck_instance_id = $1
		ORDER BY lower(btrim(i.name)), i.purchase_price ASC NULLS LAST, i.id ASC
	`
	rows, err := r.db.QueryContext(ctx, query, instanceID)
	if err != nil {
		return nil, fmt.Errorf("failed to select reservations: %w", err)
	}
	defer rows.Close()

	var result []models.ReservationDetail
	for rows.Next() {
		var d models.ReservationDetail
		var price sql.NullFloat64
		if err := rows.Scan(&d.ID, &d.DeckInstanceID, &d.InventoryItemID, &d.QuantityReserved,
			&d.OriginalFolder, &d.CardName, &d.SetCode, &price, &d.Folder); err != nil {
			return nil, err
		}
		if price.Valid {
			d.PurchasePrice = &price.Float64
		}
		result = append(result, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) ItemIDsByInstance(ctx context.Context, instanceID int64) ([]int64, error) {
	query := `
		SELECT DISTINCT inventory_item_id
		FROM reservations
		WHERE deck_instance_id = $1
	`
	rows, err := r.db.QueryContext(ctx, query, instanceID)
	if err != nil {
		return nil, fmt.Errorf("failed to select reserved items: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}
