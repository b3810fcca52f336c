package inventory

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type postgresRepo struct{ db *sql.DB }

// NewPostgresRepository creates a new PostgreSQL inventory repository.
func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

const itemColumns = `id, sku, name, category, quantity, unit, low_stock_threshold, is_active, created_at, updated_at`

func (r *postgresRepo) Create(ctx context.Context, item *Item) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO inventory_items
		  (id, sku, name, category, quantity, unit, low_stock_threshold, is_active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		item.ID, item.SKU, item.Name, item.Category, item.Quantity,
		item.Unit, item.LowStockThreshold, item.IsActive)
	return err
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*Item, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	return scanItem(r.db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM inventory_items WHERE id=$1`, uid))
}

func (r *postgresRepo) GetBySKU(ctx context.Context, sku string) (*Item, error) {
	item, err := scanItem(r.db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM inventory_items WHERE sku=$1`, sku))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return item, err
}

func (r *postgresRepo) List(ctx context.Context, category string, activeOnly bool) ([]*Item, error) {
	query := `SELECT ` + itemColumns + ` FROM inventory_items WHERE 1=1`
	var args []interface{}
	if category != "" {
		args = append(args, category)
		query += fmt.Sprintf(` AND category=$%d`, len(args))
	}
	if activeOnly {
		query += ` AND is_active=true`
	}
	query += ` ORDER BY name ASC`
	return r.queryItems(ctx, query, args...)
}

func (r *postgresRepo) ListLowStock(ctx context.Context) ([]*Item, error) {
	return r.queryItems(ctx, `
		SELECT `+itemColumns+` FROM inventory_items
		WHERE is_active=true AND quantity <= low_stock_threshold
		ORDER BY quantity ASC`)
}

func (r *postgresRepo) Update(ctx context.Context, item *Item) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE inventory_items SET
		  name=$1, category=$2, quantity=$3, unit=$4, low_stock_threshold=$5, is_active=$6, updated_at=$7
		WHERE id=$8`,
		item.Name, item.Category, item.Quantity, item.Unit,
		item.LowStockThreshold, item.IsActive, time.Now(), item.ID)
	return err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanItem(row rowScanner) (*Item, error) {
	item := &Item{}
	err := row.Scan(&item.ID, &item.SKU, &item.Name, &item.Category, &item.Quantity,
		&item.Unit, &item.LowStockThreshold, &item.IsActive, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *postgresRepo) queryItems(ctx context.Context, query string, args ...interface{}) ([]*Item, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
