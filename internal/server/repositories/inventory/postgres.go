package inventory

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

// PostgresRepository implements inventory storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, item *models.InventoryItem) (*models.InventoryItem, error) {
	if item.Folder == "" {
		item.Folder = common.UnsortedFolder
	}
	query := `
		INSERT INTO inventory_items (user_id, name, set_code, quantity, purchase_price, folder)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		item.UserID, item.Name, item.SetCode, item.Quantity, item.PurchasePrice, item.Folder).
		Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return item, nil
}

func (r *PostgresRepository) GetOwned(ctx context.Context, id int64, userID string) (*models.InventoryItem, error) {
	query := `
		SELECT id, user_id, name, set_code, quantity, purchase_price, folder, created_at, updated_at
		FROM inventory_items
		WHERE id = $1 AND user_id = $2
	`
	item := &models.InventoryItem{}
	var price sql.NullFloat64
	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(
		&item.ID, &item.UserID, &item.Name, &item.SetCode, &item.Quantity,
		&price, &item.Folder, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if price.Valid {
		item.PurchasePrice = &price.Float64
	}
	return item, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.InventoryItem, error) {
	query := `
		SELECT id, user_id, name, set_code, quantity, purchase_price, folder, created_at, updated_at
		FROM inventory_items
		WHERE user_id = $1
		ORDER BY lower(btrim(name)), id
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select inventory: %w", err)
	}
	defer rows.Close()

	var result []*models.InventoryItem
	for rows.Next() {
		item := &models.InventoryItem{}
		var price sql.NullFloat64
		if err := rows.Scan(&item.ID, &item.UserID, &item.Name, &item.SetCode,
			&item.Quantity, &price, &item.Folder, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, err
		}
		if price.Valid {
			item.PurchasePrice = &price.Float64
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Patch compiles the non-nil fields of the patch into a parameterized UPDATE.
// Column names are fixed identifiers; every value travels as a placeholder.
func (r *PostgresRepository) Patch(ctx context.Context, id int64, userID string, patch *models.InventoryPatch) error {
	if patch == nil || patch.IsEmpty() {
		return nil
	}

	sets := make([]string, 0, 6)
	args := make([]any, 0, 8)
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.SetCode != nil {
		add("set_code", *patch.SetCode)
	}
	if patch.Quantity != nil {
		add("quantity", *patch.Quantity)
	}
	if patch.PurchasePrice != nil {
		add("purchase_price", *patch.PurchasePrice)
	}
	if patch.Folder != nil {
		add("folder", *patch.Folder)
	}
	sets = append(sets, "updated_at = now()")

	args = append(args, id, userID)
	query := fmt.Sprintf(
		"UPDATE inventory_items SET %s WHERE id = $%d AND user_id = $%d",
		strings.Join(sets, ", "), len(args)-1, len(args))

	res, err := r.db.ExecContext(ctx, query, args...)
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
		DELETE FROM inventory_items
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

func (r *PostgresRepository) AvailabilityByName(ctx context.Context, userID string, names []string) (map[string][]models.AvailableSKU, error) {
	result := make(map[string][]models.AvailableSKU, len(names))
	if len(names) == 0 {
		return result, nil
	}

	args := make([]any, 0, len(names)+1)
	args = append(args, userID)
	for _, n := range names {
		args = append(args, n)
	}

	query := fmt.Sprintf(`
		SELECT i.id, i.name, i.set_code,
		       i.quantity - COALESCE(SUM(r.quantity_reserved), 0) AS available,
		       i.purchase_price, i.folder
		FROM inventory_items i
		LEFT JOIN reservations r ON r.inventory_item_id = i.id
		WHERE i.user_id = $1 AND lower(btrim(i.name)) IN (%s)
		GROUP BY i.id
		HAVING i.quantity - COALESCE(SUM(r.quantity_reserved), 0) > 0
		ORDER BY lower(btrim(i.name)), i.purchase_price ASC NULLS LAST, i.id ASC
	`, placeholders(2, len(names)))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select availability: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sku models.AvailableSKU
		var price sql.NullFloat64
		if err := rows.Scan(&sku.ID, &sku.Name, &sku.SetCode, &sku.Available, &price, &sku.Folder); err != nil {
			return nil, err
		}
		if price.Valid {
			sku.PurchasePrice = &price.Float64
		}
		key := strings.ToLower(strings.TrimSpace(sku.Name))
		result[key] = append(result[key], sku)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) Available(ctx context.Context, id int64, userID string) (int, error) {
	query := `
		SELECT i.quantity - COALESCE(SUM(r.quantity_reserved), 0)
		FROM inventory_items i
		LEFT JOIN reservations r ON r.inventory_item_id = i.id
		WHERE i.id = $1 AND i.user_id = $2
		GROUP BY i.id
	`
	var available int
	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(&available)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrorNotFound
		}
		return 0, fmt.Errorf("db error: %w", err)
	}
	return available, nil
}

func (r *PostgresRepository) RestoreFolder(ctx context.Context, ids []int64, folder string) error {
	if len(ids) == 0 {
		return nil
	}

	args := make([]any, 0, len(ids)+1)
	args = append(args, folder)
	for _, id := range ids {
		args = append(args, id)
	}

	query := fmt.Sprintf(
		"UPDATE inventory_items SET folder = $1, updated_at = now() WHERE id IN (%s)",
		placeholders(2, len(ids)))

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) PriceStats(ctx context.Context, userID string, name string) (*models.CardPriceStats, error) {
	query := `
		SELECT MIN(purchase_price), AVG(purchase_price), COALESCE(SUM(quantity), 0)
		FROM inventory_items
		WHERE user_id = $1 AND lower(btrim(name)) = $2
	`
	stats := &models.CardPriceStats{}
	var minPrice, avgPrice sql.NullFloat64
	err := r.db.QueryRowContext(ctx, query, userID, name).Scan(&minPrice, &avgPrice, &stats.TotalOwned)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if minPrice.Valid {
		stats.MinPrice = &minPrice.Float64
	}
	if avgPrice.Valid {
		stats.AvgPrice = &avgPrice.Float64
	}
	return stats, nil
}

// placeholders renders "$start, $start+1, ..." for count parameters.
func placeholders(start, count int) string {
	parts := make([]string, count)
	for i := range parts {
		parts[i] = fmt.Sprintf("$%d", start+i)
	}
	return strings.Join(parts, ", ")
}
