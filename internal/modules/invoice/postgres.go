package invoice

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type postgresRepo struct{ db *sql.DB }

// NewPostgresRepository creates a new PostgreSQL invoice repository.
func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

const invoiceColumns = `id, invoice_number, supplier, amount, currency, status,
	message_id, file_url, issued_at, due_at, paid_at, notes, created_at, updated_at`

func (r *postgresRepo) Create(ctx context.Context, inv *Invoice) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO invoices
		  (id, invoice_number, supplier, amount, currency, status,
		   message_id, file_url, issued_at, due_at, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		inv.ID, inv.InvoiceNumber, inv.Supplier, inv.Amount, inv.Currency, inv.Status,
		nullableStr(inv.MessageID), inv.FileURL, inv.IssuedAt, inv.DueAt, inv.Notes)
	if err != nil {
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*Invoice, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	return scanInvoice(r.db.QueryRowContext(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE id=$1`, uid))
}

func (r *postgresRepo) GetByNumber(ctx context.Context, number string) (*Invoice, error) {
	return scanInvoice(r.db.QueryRowContext(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE invoice_number=$1`, number))
}

func (r *postgresRepo) GetByMessageID(ctx context.Context, messageID string) (*Invoice, error) {
	inv, err := scanInvoice(r.db.QueryRowContext(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE message_id=$1`, messageID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return inv, err
}

func (r *postgresRepo) List(ctx context.Context, supplier string, status string) ([]*Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE 1=1`
	var args []interface{}
	if supplier != "" {
		args = append(args, supplier)
		query += fmt.Sprintf(` AND supplier=$%d`, len(args))
	}
	if status != "" {
		args = append(args, status)
		query += fmt.Sprintf(` AND status=$%d`, len(args))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

func (r *postgresRepo) Update(ctx context.Context, inv *Invoice) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE invoices SET status=$1, paid_at=$2, notes=$3, updated_at=$4 WHERE id=$5`,
		inv.Status, inv.PaidAt, inv.Notes, time.Now(), inv.ID)
	return err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanInvoice(row rowScanner) (*Invoice, error) {
	inv := &Invoice{}
	var messageID sql.NullString
	err := row.Scan(
		&inv.ID, &inv.InvoiceNumber, &inv.Supplier, &inv.Amount, &inv.Currency, &inv.Status,
		&messageID, &inv.FileURL, &inv.IssuedAt, &inv.DueAt, &inv.PaidAt,
		&inv.Notes, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if messageID.Valid {
		inv.MessageID = messageID.String
	}
	return inv, nil
}

func nullableStr(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
