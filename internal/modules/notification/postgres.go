package notification

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

type postgresRepo struct{ db *sql.DB }

// NewPostgresRepository creates a new PostgreSQL notification repository.
func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) Create(ctx context.Context, n *Notification) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO notifications (id, order_id, order_number, recipient_role, event, message, read)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		n.ID, n.OrderID, n.OrderNumber, n.RecipientRole, n.Event, n.Message, n.Read)
	return err
}

func (r *postgresRepo) ListByRole(ctx context.Context, role string, unreadOnly bool) ([]*Notification, error) {
	query := `SELECT id, order_id, order_number, recipient_role, event, message, read, created_at
	          FROM notifications WHERE recipient_role=$1`
	if unreadOnly {
		query += ` AND read=false`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*Notification
	for rows.Next() {
		n := &Notification{}
		if err := rows.Scan(&n.ID, &n.OrderID, &n.OrderNumber, &n.RecipientRole,
			&n.Event, &n.Message, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *postgresRepo) MarkRead(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `UPDATE notifications SET read=true WHERE id=$1`, uid)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *postgresRepo) CountUnread(ctx context.Context, role string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE recipient_role=$1 AND read=false`, role).
		Scan(&count)
	return count, err
}
