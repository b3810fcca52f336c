package harvest

import (
	"context"
	"database/sql"
)

type postgresRepo struct{ db *sql.DB }

// NewPostgresRepository creates a new PostgreSQL harvested-messages repository.
func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) Seen(ctx context.Context, messageID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM harvested_messages WHERE message_id=$1)`, messageID).
		Scan(&exists)
	return exists, err
}

func (r *postgresRepo) Record(ctx context.Context, messageID, kind string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO harvested_messages (message_id, kind)
		VALUES ($1, $2)
		ON CONFLICT (message_id) DO NOTHING`, messageID, kind)
	return err
}
